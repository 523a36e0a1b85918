package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msdss/data-api/cmd/data-api/models"
)

var routeKeys = []string{
	"columns", "create", "delete", "id", "insert", "metadata",
	"metadata_update", "query", "rows", "search", "update",
}

func TestDefaultSettings(t *testing.T) {
	defaults := DefaultSettings("data", "user")
	require.Len(t, defaults, len(routeKeys))
	for _, key := range routeKeys {
		setting, ok := defaults[key]
		require.True(t, ok, key)
		assert.True(t, setting.Enable, key)
		assert.NotEmpty(t, setting.Path, key)
		assert.Equal(t, []string{"data", "user"}, setting.RestrictedTables, key)
		assert.Empty(t, setting.PermittedTables, key)
	}

	// Mutating routes require a superuser, read routes do not.
	for _, key := range []string{"create", "delete", "insert", "update", "metadata_update"} {
		assert.True(t, defaults[key].Scope.Superuser(), key)
	}
	for _, key := range []string{"columns", "id", "metadata", "query", "rows", "search"} {
		assert.False(t, defaults[key].Scope.Superuser(), key)
	}
}

func TestResolveScalarOverride(t *testing.T) {
	overrides, err := ParseOverrides(`{"create": {"enable": false}}`)
	require.NoError(t, err)

	resolved, err := Resolve(DefaultSettings("data", "user"), overrides)
	require.NoError(t, err)

	assert.False(t, resolved["create"].Enable)
	for _, key := range routeKeys {
		if key == "create" {
			continue
		}
		assert.True(t, resolved[key].Enable, key)
	}
}

func TestResolvePathOverride(t *testing.T) {
	path := "/:dataset/find"
	resolved, err := Resolve(DefaultSettings("data", "user"), Overrides{
		"query": {Path: &path},
	})
	require.NoError(t, err)
	assert.Equal(t, path, resolved["query"].Path)
	assert.True(t, resolved["query"].Enable)
}

func TestResolveRestrictedTablesUnion(t *testing.T) {
	resolved, err := Resolve(DefaultSettings("data", "user"), Overrides{
		"query": {RestrictedTables: []string{"secrets", "user"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"data", "user", "secrets"}, resolved["query"].RestrictedTables)
}

func TestResolvePermittedTablesSwitchMode(t *testing.T) {
	resolved, err := Resolve(DefaultSettings("data", "user"), Overrides{
		"query": {PermittedTables: []string{"public_data"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"public_data"}, resolved["query"].PermittedTables)
	assert.Empty(t, resolved["query"].RestrictedTables)
}

func TestResolveScopeMerge(t *testing.T) {
	resolved, err := Resolve(DefaultSettings("data", "user"), Overrides{
		"query":  {Scope: models.AuthScope{"superuser": true}},
		"create": {Scope: models.AuthScope{"superuser": false}},
	})
	require.NoError(t, err)
	assert.True(t, resolved["query"].Scope.Superuser())
	assert.False(t, resolved["create"].Scope.Superuser())
}

func TestResolveUnknownRoute(t *testing.T) {
	_, err := Resolve(DefaultSettings("data", "user"), Overrides{
		"export": {},
	})
	var apiErr *models.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "configuration_error", apiErr.Code)
}

func TestParseOverrides(t *testing.T) {
	overrides, err := ParseOverrides("")
	require.NoError(t, err)
	assert.Nil(t, overrides)

	_, err = ParseOverrides(`{"create": `)
	require.Error(t, err)

	overrides, err = ParseOverrides(`{"update": {"path": "/:dataset/patch", "restricted_tables": ["x"]}}`)
	require.NoError(t, err)
	require.Contains(t, overrides, "update")
	assert.Equal(t, "/:dataset/patch", *overrides["update"].Path)
	assert.Nil(t, overrides["update"].Enable)
}

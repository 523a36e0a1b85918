package router

import (
	"fmt"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/msdss/data-api/cmd/data-api/models"
)

// Setting is the resolved configuration of one dataset route: where it is
// mounted, whether it is served at all, which tables its guard blocks or
// allows, and the auth scope enforced before its handler.
type Setting struct {
	Path             string
	Enable           bool
	RestrictedTables []string
	PermittedTables  []string
	Scope            models.AuthScope
}

// Override is a partial Setting supplied through configuration. Scalar fields
// are pointers so "absent" and "zero value" stay distinguishable.
type Override struct {
	Path             *string          `json:"path"`
	Enable           *bool            `json:"enable"`
	RestrictedTables []string         `json:"restricted_tables"`
	PermittedTables  []string         `json:"permitted_tables"`
	Scope            models.AuthScope `json:"scope"`
}

// Overrides maps route keys to their overrides, decoded from the
// ROUTE_SETTINGS environment value.
type Overrides map[string]Override

// ParseOverrides decodes the JSON route settings document. An empty document
// means no overrides.
func ParseOverrides(raw string) (Overrides, error) {
	if raw == "" {
		return nil, nil
	}
	var overrides Overrides
	if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
		return nil, models.NewConfigurationError(fmt.Sprintf("route settings are not valid JSON: %s", err))
	}
	return overrides, nil
}

// DefaultSettings returns the full route table. Every route exists here;
// Resolve refuses override keys outside this set. The metadata and user
// tables are restricted on every route, so datasets can never shadow them.
func DefaultSettings(metadataTable string, userTable string) map[string]Setting {
	restricted := []string{metadataTable, userTable}
	superuser := models.AuthScope{"superuser": true}
	return map[string]Setting{
		"columns": {
			Path:             "/:dataset/columns",
			Enable:           true,
			RestrictedTables: restricted,
		},
		"create": {
			Path:             "/",
			Enable:           true,
			RestrictedTables: restricted,
			Scope:            superuser,
		},
		"delete": {
			Path:             "/:dataset",
			Enable:           true,
			RestrictedTables: restricted,
			Scope:            superuser,
		},
		"id": {
			Path:             "/:dataset/id/:id",
			Enable:           true,
			RestrictedTables: restricted,
		},
		"insert": {
			Path:             "/:dataset/insert",
			Enable:           true,
			RestrictedTables: restricted,
			Scope:            superuser,
		},
		"metadata": {
			Path:             "/:dataset/metadata",
			Enable:           true,
			RestrictedTables: restricted,
		},
		"metadata_update": {
			Path:             "/:dataset/metadata",
			Enable:           true,
			RestrictedTables: restricted,
			Scope:            superuser,
		},
		"query": {
			Path:             "/:dataset",
			Enable:           true,
			RestrictedTables: restricted,
		},
		"rows": {
			Path:             "/:dataset/rows",
			Enable:           true,
			RestrictedTables: restricted,
		},
		"search": {
			Path:             "/",
			Enable:           true,
			RestrictedTables: restricted,
		},
		"update": {
			Path:             "/:dataset",
			Enable:           true,
			RestrictedTables: restricted,
			Scope:            superuser,
		},
	}
}

// Resolve merges overrides onto the defaults. Scalars replace, restricted
// tables union with the defaults, permitted tables replace outright and flip
// the route's guard into allow-list mode, and scopes merge key by key. An
// override for a route that does not exist is a configuration error.
func Resolve(defaults map[string]Setting, overrides Overrides) (map[string]Setting, error) {
	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	resolved := make(map[string]Setting, len(defaults))
	for key, setting := range defaults {
		resolved[key] = setting
	}
	for _, key := range keys {
		setting, ok := resolved[key]
		if !ok {
			return nil, models.NewConfigurationError(fmt.Sprintf("route settings refer to unknown route %q", key))
		}
		override := overrides[key]
		if override.Path != nil {
			setting.Path = *override.Path
		}
		if override.Enable != nil {
			setting.Enable = *override.Enable
		}
		if len(override.RestrictedTables) > 0 {
			setting.RestrictedTables = unionTables(setting.RestrictedTables, override.RestrictedTables)
		}
		if len(override.PermittedTables) > 0 {
			setting.PermittedTables = append([]string{}, override.PermittedTables...)
			setting.RestrictedTables = nil
		}
		if len(override.Scope) > 0 {
			setting.Scope = setting.Scope.Merge(override.Scope)
		}
		resolved[key] = setting
	}
	return resolved, nil
}

func unionTables(base []string, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, table := range base {
		if _, ok := seen[table]; ok {
			continue
		}
		seen[table] = struct{}{}
		out = append(out, table)
	}
	for _, table := range extra {
		if _, ok := seen[table]; ok {
			continue
		}
		seen[table] = struct{}{}
		out = append(out, table)
	}
	return out
}

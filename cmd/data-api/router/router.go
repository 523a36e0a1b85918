package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/msdss/data-api/cmd/data-api/controllers"
	"github.com/msdss/data-api/cmd/data-api/identity"
	"github.com/msdss/data-api/cmd/data-api/services"
)

// Dependencies are the shared collaborators of the dataset routes. Each
// route additionally gets its own DataService so per-route restricted and
// permitted tables stay isolated.
type Dependencies struct {
	Store    services.Store
	Metadata *services.MetadataService
	Provider identity.Provider
}

// Register mounts every enabled route from the resolved settings onto the
// group. Disabled routes are skipped entirely, their paths return 404.
func Register(group *gin.RouterGroup, settings map[string]Setting, deps Dependencies) {
	mount := func(key string, register func(setting Setting, data *services.DataService)) {
		setting, ok := settings[key]
		if !ok || !setting.Enable {
			zap.S().Infof("Route %s is disabled", key)
			return
		}
		register(setting, services.NewDataService(deps.Store, setting.RestrictedTables, setting.PermittedTables))
	}
	scoped := func(setting Setting, handler gin.HandlerFunc) []gin.HandlerFunc {
		return []gin.HandlerFunc{identity.RequireScope(deps.Provider, setting.Scope), handler}
	}

	mount("query", func(setting Setting, data *services.DataService) {
		group.GET(setting.Path, scoped(setting, controllers.QueryData(data))...)
	})
	mount("id", func(setting Setting, data *services.DataService) {
		group.GET(setting.Path, scoped(setting, controllers.GetDataByID(data))...)
	})
	mount("columns", func(setting Setting, data *services.DataService) {
		group.GET(setting.Path, scoped(setting, controllers.GetColumns(data))...)
	})
	mount("rows", func(setting Setting, data *services.DataService) {
		group.GET(setting.Path, scoped(setting, controllers.GetRows(data))...)
	})
	mount("create", func(setting Setting, data *services.DataService) {
		group.POST(setting.Path, scoped(setting, controllers.CreateData(data, deps.Metadata, deps.Provider))...)
	})
	mount("insert", func(setting Setting, data *services.DataService) {
		group.PUT(setting.Path, scoped(setting, controllers.InsertData(data, deps.Metadata))...)
	})
	mount("update", func(setting Setting, data *services.DataService) {
		group.PUT(setting.Path, scoped(setting, controllers.UpdateData(data, deps.Metadata))...)
	})
	mount("delete", func(setting Setting, data *services.DataService) {
		group.DELETE(setting.Path, scoped(setting, controllers.DeleteData(data, deps.Metadata))...)
	})
	mount("metadata", func(setting Setting, data *services.DataService) {
		group.GET(setting.Path, scoped(setting, controllers.GetMetadata(data, deps.Metadata))...)
	})
	mount("metadata_update", func(setting Setting, data *services.DataService) {
		group.PUT(setting.Path, scoped(setting, controllers.UpdateMetadata(data, deps.Metadata))...)
	})
	mount("search", func(setting Setting, data *services.DataService) {
		group.GET(setting.Path, scoped(setting, controllers.SearchData(deps.Metadata))...)
	})
}

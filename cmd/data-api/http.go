package main

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/msdss/data-api/cmd/data-api/router"
)

// SetupRestAPI builds the gin engine: request and panic logging through zap,
// a plain liveness route at the root, and the dataset routes mounted under
// the configured prefix. With accounts configured the whole prefix sits
// behind basic auth; without them the API runs in open mode.
func SetupRestAPI(accounts gin.Accounts, prefix string, settings map[string]router.Setting, deps router.Dependencies) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(ginzap.Ginzap(zap.L(), time.RFC3339, true))
	engine.Use(ginzap.RecoveryWithZap(zap.L(), true))

	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "online")
	})

	var group *gin.RouterGroup
	if len(accounts) > 0 {
		group = engine.Group(prefix, gin.BasicAuth(accounts))
	} else {
		group = engine.Group(prefix)
	}
	router.Register(group, settings, deps)
	return engine
}

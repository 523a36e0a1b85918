package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/heptiolabs/healthcheck"
	"github.com/united-manufacturing-hub/umh-utils/env"
	"go.elastic.co/ecszap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/msdss/data-api/cmd/data-api/database"
	"github.com/msdss/data-api/cmd/data-api/identity"
	"github.com/msdss/data-api/cmd/data-api/router"
	"github.com/msdss/data-api/cmd/data-api/services"
)

var buildtime string

func main() {
	var logLevel = os.Getenv("LOGGING_LEVEL")
	encoderConfig := ecszap.NewDefaultEncoderConfig()
	var core zapcore.Core
	switch logLevel {
	case "DEVELOPMENT":
		core = ecszap.NewCore(encoderConfig, os.Stdout, zap.DebugLevel)
	default:
		core = ecszap.NewCore(encoderConfig, os.Stdout, zap.InfoLevel)
	}
	logger := zap.New(core, zap.AddCaller())
	zap.ReplaceGlobals(logger)
	defer func() {
		_ = logger.Sync()
	}()

	zap.S().Infof("This is data-api build date: %s", buildtime)

	apiPrefix, err := env.GetAsString("API_PREFIX", false, "/data")
	if err != nil {
		zap.S().Fatalf("Failed to get API_PREFIX from env: %s", err)
	}
	servicePort, err := env.GetAsInt("SERVICE_PORT", false, 80)
	if err != nil {
		zap.S().Fatalf("Failed to get SERVICE_PORT from env: %s", err)
	}
	metadataTable, err := env.GetAsString("METADATA_TABLE", false, services.DefaultMetadataTable)
	if err != nil {
		zap.S().Fatalf("Failed to get METADATA_TABLE from env: %s", err)
	}
	userTable, err := env.GetAsString("USER_TABLE", false, services.DefaultUserTable)
	if err != nil {
		zap.S().Fatalf("Failed to get USER_TABLE from env: %s", err)
	}
	routeSettingsJSON, err := env.GetAsString("ROUTE_SETTINGS", false, "")
	if err != nil {
		zap.S().Fatalf("Failed to get ROUTE_SETTINGS from env: %s", err)
	}

	// Loading up user accounts
	accounts := gin.Accounts{}
	var superusers []string

	zap.S().Debugf("Loading accounts from environment..")

	for i := 1; i <= 100; i++ {
		tempUser := os.Getenv("ACCOUNT_NAME_" + strconv.Itoa(i))
		tempPassword := os.Getenv("ACCOUNT_PASSWORD_" + strconv.Itoa(i))
		if tempUser != "" && tempPassword != "" {
			zap.S().Infof("Added account for %s", tempUser)
			accounts[tempUser] = tempPassword
			if superuser, _ := strconv.ParseBool(os.Getenv("ACCOUNT_SUPERUSER_" + strconv.Itoa(i))); superuser {
				superusers = append(superusers, tempUser)
			}
		}
	}

	var provider identity.Provider
	if len(accounts) > 0 {
		provider = identity.NewAccountProvider(superusers)
	} else {
		zap.S().Warnf("No accounts configured, running in open mode")
		provider = identity.AnonymousProvider{}
	}

	overrides, err := router.ParseOverrides(routeSettingsJSON)
	if err != nil {
		zap.S().Fatalf("Failed to parse ROUTE_SETTINGS: %s", err)
	}
	settings, err := router.Resolve(router.DefaultSettings(metadataTable, userTable), overrides)
	if err != nil {
		zap.S().Fatalf("Failed to resolve route settings: %s", err)
	}

	conn := database.Connect()
	zap.S().Debugf("DB initialized..")

	metadata := services.NewMetadataService(conn, metadataTable)
	ensureCtx, ensureCncl := context.WithTimeout(context.Background(), 10*time.Second)
	defer ensureCncl()
	if err := metadata.EnsureTable(ensureCtx); err != nil {
		zap.S().Fatalf("Failed to ensure metadata table %s: %s", metadataTable, err)
	}

	health := healthcheck.NewHandler()
	health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(100))
	health.AddReadinessCheck("postgres", conn.HealthCheck())
	go func() {
		if err := http.ListenAndServe("0.0.0.0:8086", health); err != nil {
			zap.S().Errorf("Healthcheck server failed: %s", err)
		}
	}()

	zap.S().Debugf("Healthcheck initialized..")

	engine := SetupRestAPI(accounts, apiPrefix, settings, router.Dependencies{
		Store:    conn,
		Metadata: metadata,
		Provider: provider,
	})
	if err := engine.Run(fmt.Sprintf(":%d", servicePort)); err != nil {
		zap.S().Fatalf("REST API failed: %s", err)
	}
}

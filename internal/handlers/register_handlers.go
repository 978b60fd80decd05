package handlers

import (
	"log/slog"
	"regexp"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
	limitermem "github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/openbooks/ledger_ingest_app/cmd/docs"
	portssvc "github.com/openbooks/ledger_ingest_app/internal/core/ports/services"
	"github.com/openbooks/ledger_ingest_app/internal/middleware"
	"github.com/openbooks/ledger_ingest_app/internal/platform/config"
	"github.com/openbooks/ledger_ingest_app/internal/utils"
)

var tenantIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// RegisterRoutes sets up all application routes, injecting dependencies
// using interfaces.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	artifacts portssvc.ArtifactStore,
	posthogClient *utils.PosthogClientWrapper,
	logger *slog.Logger,
) {
	registerValidators()

	r.Use(cors.Default())

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, cfg, services, artifacts, posthogClient, logger)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific
// entity route registrations.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	artifacts portssvc.ArtifactStore,
	posthogClient *utils.PosthogClientWrapper,
	logger *slog.Logger,
) {
	// The principal middleware consumes the identity the trusted gateway
	// established; every route below depends on its tenant set.
	v1 := r.Group("/api/v1", middleware.PrincipalMiddleware(), middleware.PosthogMiddleware(posthogClient))

	v1.GET("/example/helloworld", GetHome)

	registerTransactionRoutes(v1, services.Cache)
	registerAdminRoutes(v1, services.Cache, services.Importer)

	// Imports carry uploads and inserts; rate limit them separately.
	importGroup := v1.Group("", importRateLimiter(cfg, logger))
	RegisterImportRoutes(importGroup, services.Importer, artifacts, posthogClient)
}

// importRateLimiter builds the rate limiting middleware for import routes.
func importRateLimiter(cfg *config.Config, logger *slog.Logger) gin.HandlerFunc {
	rate, err := limiter.NewRateFromFormatted(cfg.ImportRateLimit)
	if err != nil {
		logger.Warn("Invalid IMPORT_RATE_LIMIT, falling back to 60-M", slog.String("value", cfg.ImportRateLimit))
		rate, _ = limiter.NewRateFromFormatted("60-M")
	}
	return middleware.RateLimit(limiter.New(limitermem.NewStore(), rate))
}

// registerValidators installs custom binding validators.
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("tenantid", func(fl validator.FieldLevel) bool {
			return tenantIDPattern.MatchString(fl.Field().String())
		})
	}
}

// setupSwaggerRoutes configures the swagger documentation routes.
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

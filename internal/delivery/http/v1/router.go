package v1

import (
	"go-occupational-backend/config"
	"go-occupational-backend/internal/authz"
	"go-occupational-backend/internal/delivery/http/functions"
	"go-occupational-backend/internal/delivery/http/middleware"
	"go-occupational-backend/internal/domain"
	"go-occupational-backend/internal/usecase"
	"go-occupational-backend/pkg/metrics"
	"go-occupational-backend/pkg/theme"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	LocationUC    domain.LocationUsecase
	CatalogUC     domain.CatalogUsecase
	CandidateUC   domain.CandidateUsecase
	CompanyUC     domain.CompanyUsecase
	ServiceUC     domain.MedicalServiceUsecase
	OrderUC       domain.OrderUsecase
	CertificateUC domain.CertificateUsecase
	DocumentUC    domain.DocumentUsecase
	RoleUC        domain.RoleUsecase
	UserUC        domain.UserUsecase
	SolicitudUC   domain.SolicitudUsecase
	HealthUC      usecase.HealthUsecase

	Tokens    middleware.TokenParser
	Registry  *authz.Registry
	Functions functions.Deps
	Palette   theme.Palette
	Config    *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	r := gin.New()
	// lets *gin.Context be passed as a context.Context and still expose request values
	r.ContextWithFallback = true

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins, cfg.IsProduction())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, cfg.RateLimitWindowSeconds)))

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	authenticate := middleware.AuthMiddleware(deps.Tokens, deps.UserUC)
	guard := middleware.NewGuard(deps.Registry, deps.RoleUC)

	v1 := r.Group("/v1")

	// Public routes
	NewPublicHandler(v1, deps.Palette, deps.HealthUC)

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	protected := v1.Group("")
	protected.Use(authenticate, middleware.CompanyContext(), middleware.CSRFMiddleware(cfg.IsProduction()))
	{
		NewSessionHandler(protected, deps.UserUC, cfg.IsProduction())
		NewLocationHandler(protected, deps.LocationUC)
		NewCatalogHandler(protected, guard, deps.CatalogUC)
		NewCandidateHandler(protected, guard, deps.CandidateUC)
		NewDocumentHandler(protected, guard, deps.DocumentUC, cfg.MaxUploadBytes,
			middleware.RateLimitMiddleware(middleware.UploadRateLimitConfig(cfg.UploadsPerMinute)),
			middleware.RateLimitMiddleware(middleware.UploadDailyLimitConfig(cfg.UploadsPerDay)),
		)
		NewCompanyHandler(protected, guard, deps.CompanyUC)
		NewMedicalServiceHandler(protected, guard, deps.ServiceUC)
		NewOrderHandler(protected, guard, deps.OrderUC)
		NewCertificateHandler(v1, protected, guard, deps.CertificateUC)
		NewSolicitudHandler(protected, guard, deps.SolicitudUC)
		NewRoleHandler(protected, deps.RoleUC)
		NewUserHandler(protected, guard, deps.UserUC)
	}

	// Edge functions live outside /v1 so existing clients keep their URLs
	fn := r.Group("/functions/v1")
	functions.NewHandler(fn, deps.Functions,
		[]gin.HandlerFunc{
			middleware.RateLimitMiddleware(middleware.TokenRateLimitConfig(cfg.RateLimitTokenThreshold, cfg.RateLimitWindowSeconds)),
		},
		[]gin.HandlerFunc{
			authenticate,
			middleware.RateLimitMiddleware(middleware.MailRateLimitConfig(cfg.RateLimitMailThreshold, cfg.RateLimitWindowSeconds)),
		},
	)

	return r
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-occupational-backend/config"
	_ "go-occupational-backend/docs" // Important for Swagger
	"go-occupational-backend/internal/authz"
	"go-occupational-backend/internal/delivery/http/functions"
	v1 "go-occupational-backend/internal/delivery/http/v1"
	"go-occupational-backend/internal/repository/postgres"
	"go-occupational-backend/internal/scheduler"
	"go-occupational-backend/internal/usecase"
	"go-occupational-backend/pkg/antivirus"
	"go-occupational-backend/pkg/audit"
	"go-occupational-backend/pkg/auth"
	"go-occupational-backend/pkg/cache"
	"go-occupational-backend/pkg/database"
	"go-occupational-backend/pkg/database/migrations"
	"go-occupational-backend/pkg/email"
	"go-occupational-backend/pkg/logger"
	"go-occupational-backend/pkg/redis"
	"go-occupational-backend/pkg/storage"
	"go-occupational-backend/pkg/theme"
	"go-occupational-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// @title           Occupational Health Backend API
// @version         1.0
// @description     Medical orders, aptitude certificates and candidate documents for client companies.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	auditor := audit.Init("occupational-backend", cfg.Environment)
	defer auditor.Sync()
	logger.Log.Info("Starting occupational backend", "port", cfg.Port, "env", cfg.Environment)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if cfg.AutoMigrate {
		if err := runMigrations(ctx, cfg.DBUrl); err != nil {
			logger.Log.Error("Failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	// 4. Redis (optional)
	var redisPinger usecase.Pinger
	if cfg.RedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, falling back to in-memory cache", "error", err)
		} else {
			redisPinger = usecase.PingFunc(redis.HealthCheck)
			defer redis.Close()
		}
	}
	appCache := cache.New(redis.Client(), "occupational")

	// 5. Object storage (optional)
	var store storage.ObjectStore
	if cfg.StorageConfigured() {
		s3Store, err := storage.NewS3Store(ctx, storage.Config{
			Provider:        storage.Provider(cfg.S3Provider),
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
		})
		if err != nil {
			logger.Log.Error("Failed to initialize object storage", "error", err)
			os.Exit(1)
		}
		store = s3Store
	} else {
		logger.Log.Warn("Object storage not configured - document uploads and signatures are unavailable")
	}

	var scanner antivirus.Scanner
	if cfg.ClamAVAddress != "" {
		clam := antivirus.NewClamAV(cfg.ClamAVAddress, cfg.ClamAVTimeout)
		if err := clam.Ping(ctx); err != nil {
			logger.Log.Warn("ClamAV not reachable yet, uploads will be refused until it is", "address", cfg.ClamAVAddress, "error", err)
		}
		scanner = clam
	}

	// 6. Setup Email Service
	mailer := email.NewService(email.Config{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.SMTPFromEmail,
		FromName:  cfg.SMTPFromName,
		PerSecond: cfg.MailPerSecond,
		Burst:     cfg.MailBurst,
	})
	if !mailer.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - notifications and send-email are unavailable")
	}

	// 7. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	roleRepo := postgres.NewRoleRepository(dbPool)
	locationRepo := postgres.NewLocationRepository(dbPool)
	catalogRepo := postgres.NewCatalogRepository(dbPool)
	candidateRepo := postgres.NewCandidateRepository(dbPool)
	companyRepo := postgres.NewCompanyRepository(dbPool)
	serviceRepo := postgres.NewMedicalServiceRepository(dbPool)
	orderRepo := postgres.NewOrderRepository(dbPool)
	certRepo := postgres.NewCertificateRepository(dbPool)
	docRepo := postgres.NewDocumentRepository(dbPool)
	solicitudRepo := postgres.NewSolicitudRepository(dbPool)

	// 8. Setup UseCases
	validate := validation.New()
	locationUC := usecase.NewLocationUsecase(locationRepo, appCache)
	catalogUC := usecase.NewCatalogUsecase(catalogRepo, appCache, validate)
	roleUC := usecase.NewRoleUsecase(roleRepo, appCache, auditor, validate)
	userUC := usecase.NewUserUsecase(userRepo, roleRepo, companyRepo, roleUC, auditor, cfg.DefaultRole)
	companyUC := usecase.NewCompanyUsecase(companyRepo, locationUC, auditor, validate)
	candidateUC := usecase.NewCandidateUsecase(candidateRepo, companyRepo, catalogRepo, locationUC, validate)
	serviceUC := usecase.NewMedicalServiceUsecase(serviceRepo, validate)
	orderUC := usecase.NewOrderUsecase(orderRepo, candidateRepo, companyRepo, serviceRepo, mailer, validate)
	certificateUC := usecase.NewCertificateUsecase(certRepo, orderRepo, companyRepo, store, mailer, auditor, validate)
	documentUC := usecase.NewDocumentUsecase(docRepo, candidateRepo, catalogRepo, store, scanner, auditor, validate, cfg.MaxUploadBytes)
	solicitudUC := usecase.NewSolicitudUsecase(solicitudRepo, companyRepo, candidateRepo, validate)
	healthUC := usecase.NewHealthUsecase(dbPool, redisPinger)

	// 9. Setup Auth (HS256 secret + Supabase JWKS)
	var jwksProvider *auth.Provider
	if cfg.SupabaseUrl != "" {
		jwksProvider = auth.NewProvider(cfg.SupabaseUrl + "/auth/v1/.well-known/jwks.json")
	}
	verifier := auth.NewVerifier(cfg.SupabaseJWTSecret, jwksProvider)
	signer := auth.NewSigner(cfg.TokenSigningSecret, cfg.TokenIssuer, cfg.TokenTTL, cfg.TokenMaxTTL)

	// gin binds request bodies with its own validator instance
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	}

	// 10. Setup Router
	registry := authz.NewRegistry()
	router := v1.NewRouter(v1.RouterDeps{
		LocationUC:    locationUC,
		CatalogUC:     catalogUC,
		CandidateUC:   candidateUC,
		CompanyUC:     companyUC,
		ServiceUC:     serviceUC,
		OrderUC:       orderUC,
		CertificateUC: certificateUC,
		DocumentUC:    documentUC,
		RoleUC:        roleUC,
		UserUC:        userUC,
		SolicitudUC:   solicitudUC,
		HealthUC:      healthUC,
		Tokens:        verifier,
		Registry:      registry,
		Functions: functions.Deps{
			Signer:          signer,
			FunctionKeyHash: cfg.FunctionKeyHash,
			Mailer:          mailer,
			Auditor:         auditor,
		},
		Palette: theme.Default(),
		Config:  cfg,
	})

	// Every guarded action is registered once routes are mounted
	syncCtx, cancelSync := context.WithTimeout(ctx, 10*time.Second)
	if err := roleUC.SyncPermissions(syncCtx, registry.List()); err != nil {
		logger.Log.Error("Failed to sync permission catalog", "error", err)
	}
	cancelSync()

	// 11. Scheduler
	jobs, err := scheduler.New(scheduler.Config{
		CertificateExpiryCron: cfg.CertificateExpiryCron,
		ExpiryWindowDays:      cfg.CertificateExpiryWindow,
		StaleSolicitudCron:    cfg.StaleSolicitudCron,
		StaleAfter:            cfg.StaleSolicitudAfter,
		OperationsEmail:       cfg.OperationsEmail,
	}, scheduler.Deps{
		Certificates: certRepo,
		Companies:    companyRepo,
		Users:        userRepo,
		Solicitudes:  solicitudRepo,
		Mailer:       mailer,
	})
	if err != nil {
		logger.Log.Error("Invalid scheduler configuration", "error", err)
		os.Exit(1)
	}
	jobs.Start()

	// 12. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		logger.Log.Warn("Scheduled jobs still running at shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

func runMigrations(ctx context.Context, dbURL string) error {
	db, err := database.OpenSQL(ctx, dbURL)
	if err != nil {
		return err
	}
	defer db.Close()
	return migrations.Apply(ctx, db)
}

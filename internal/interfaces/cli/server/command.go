package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	accessApp "custodia/internal/application/access"
	accessUsecases "custodia/internal/application/access/usecases"
	authUsecases "custodia/internal/application/auth/usecases"
	"custodia/internal/application/identity"
	"custodia/internal/application/ledger"
	residentUsecases "custodia/internal/application/resident/usecases"
	scannerUsecases "custodia/internal/application/scanner/usecases"
	visitorUsecases "custodia/internal/application/visitor/usecases"
	visitrequestUsecases "custodia/internal/application/visitrequest/usecases"
	infraAuth "custodia/internal/infrastructure/auth"
	"custodia/internal/infrastructure/config"
	"custodia/internal/infrastructure/database"
	"custodia/internal/infrastructure/email"
	infraLedger "custodia/internal/infrastructure/ledger"
	"custodia/internal/infrastructure/migration"
	"custodia/internal/infrastructure/qrcode"
	"custodia/internal/infrastructure/repository"
	"custodia/internal/infrastructure/scheduler"
	httpRouter "custodia/internal/interfaces/http"
	"custodia/internal/interfaces/http/handlers"
	"custodia/internal/interfaces/http/middleware"
	"custodia/internal/shared/biztime"
	"custodia/internal/shared/db"
	"custodia/internal/shared/goroutine"
	"custodia/internal/shared/logger"
)

var (
	env         string
	autoMigrate bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the Custodia HTTP server with the configured database and ledger gateway.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "debug", "Server mode (debug, release, test)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", true, "Run database migrations on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("starting server", "mode", cfg.Server.Mode, "auto_migrate", autoMigrate)

	if err := biztime.Init(cfg.Building.Timezone); err != nil {
		return fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	if autoMigrate {
		migrationManager := migration.NewManager(cfg.Server.Mode)
		if err := migrationManager.Migrate(database.Get(), migration.AutoMigrateModels()...); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	log := logger.NewLogger()

	// Repositories
	userRepo := repository.NewUserRepository(database.Get(), log.Named("users"))
	residentRepo := repository.NewResidentRepository(database.Get(), log.Named("residents"))
	visitorRepo := repository.NewVisitorRepository(database.Get(), log.Named("visitors"))
	requestRepo := repository.NewVisitRequestRepository(database.Get(), log.Named("requests"))
	blockRepo := repository.NewBlockRepository(database.Get(), log.Named("blocks"))
	entryLogRepo := repository.NewEntryLogRepository(database.Get(), log.Named("entrylogs"))

	// Infrastructure services
	txManager := db.NewTransactionManager(database.Get())
	gateway := infraLedger.NewRESTGateway(&cfg.Ledger, log.Named("ledger"))
	calls := ledger.NewCallBuilder(cfg.Ledger.Channel, cfg.Ledger.Chaincode)
	registry := identity.NewRegistry(gateway, &cfg.Ledger, log.Named("identity"))
	hasher := infraAuth.NewBcryptPasswordHasher(cfg.Auth.BcryptCost)
	jwtService := infraAuth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.AccessExpHours)
	qrGen := qrcode.NewGenerator(&cfg.QRCode, log.Named("qrcode"))
	statusResolver := accessApp.NewStatusResolver(blockRepo, log)

	var notifier visitrequestUsecases.DecisionNotifier
	if smtp := email.NewSMTPDecisionNotifier(&cfg.SMTP, userRepo, log.Named("email")); smtp != nil {
		notifier = smtp
	}

	// Use cases
	loginUC := authUsecases.NewLoginUseCase(userRepo, hasher, jwtService, registry, &cfg.Ledger, log)

	registerResidentUC := residentUsecases.NewRegisterResidentUseCase(
		residentRepo, userRepo, gateway, calls, registry, hasher, qrGen, txManager,
		&cfg.Ledger, &cfg.Building, log)
	updateResidentUC := residentUsecases.NewUpdateResidentUseCase(
		residentRepo, gateway, calls, &cfg.Ledger, &cfg.Building, log)
	deleteResidentUC := residentUsecases.NewDeleteResidentUseCase(
		residentRepo, userRepo, visitorRepo, requestRepo, blockRepo, entryLogRepo,
		qrGen, txManager, log)
	listResidentsUC := residentUsecases.NewListResidentsUseCase(residentRepo, statusResolver, log)
	getResidentUC := residentUsecases.NewGetResidentUseCase(residentRepo, statusResolver, log)

	addVisitorUC := visitorUsecases.NewAddVisitorUseCase(
		visitorRepo, residentRepo, gateway, calls, qrGen, &cfg.Ledger, &cfg.Building, log)
	updateVisitorUC := visitorUsecases.NewUpdateVisitorUseCase(
		visitorRepo, gateway, calls, &cfg.Ledger, log)
	deleteVisitorUC := visitorUsecases.NewDeleteVisitorUseCase(
		visitorRepo, blockRepo, entryLogRepo, qrGen, log)
	listVisitorsUC := visitorUsecases.NewListVisitorsUseCase(visitorRepo, statusResolver, log)
	getVisitorUC := visitorUsecases.NewGetVisitorUseCase(visitorRepo, statusResolver, log)

	createRequestUC := visitrequestUsecases.NewCreateVisitRequestUseCase(
		requestRepo, residentRepo, gateway, calls, &cfg.Ledger, log)
	decideRequestUC := visitrequestUsecases.NewDecideVisitRequestUseCase(
		requestRepo, gateway, calls, qrGen, notifier, &cfg.Ledger, log)
	listRequestsUC := visitrequestUsecases.NewListVisitRequestsUseCase(requestRepo, log)
	getRequestUC := visitrequestUsecases.NewGetVisitRequestUseCase(requestRepo, log)

	blockUC := accessUsecases.NewBlockSubjectUseCase(
		blockRepo, residentRepo, visitorRepo, gateway, calls, &cfg.Ledger, log)
	unblockUC := accessUsecases.NewUnblockSubjectUseCase(
		blockRepo, visitorRepo, gateway, calls, &cfg.Ledger, log)
	expireBlocksUC := accessUsecases.NewExpireBlocksUseCase(
		blockRepo, visitorRepo, gateway, calls, &cfg.Ledger, log)
	listEntryLogsUC := accessUsecases.NewListEntryLogsUseCase(entryLogRepo, log)

	verifyEntryUC := scannerUsecases.NewVerifyEntryUseCase(
		residentRepo, visitorRepo, requestRepo, entryLogRepo, gateway, calls,
		&cfg.Ledger, log)

	// Scheduler
	schedulerManager, err := scheduler.NewSchedulerManager(log.Named("scheduler"))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err := schedulerManager.RegisterBlockExpiryJobs(expireBlocksUC, cfg.Scheduler.BlockExpirySeconds); err != nil {
		return fmt.Errorf("failed to register block expiry jobs: %w", err)
	}
	schedulerManager.Start()
	defer schedulerManager.Stop()

	// HTTP surface
	authMiddleware := middleware.NewAuthMiddleware(jwtService, log.Named("auth"))
	router := httpRouter.NewRouter(
		cfg.Server.Mode,
		cfg.Server.AllowedOrigins,
		handlers.NewAuthHandler(loginUC, log),
		handlers.NewResidentHandler(registerResidentUC, updateResidentUC, deleteResidentUC, listResidentsUC, getResidentUC, log),
		handlers.NewVisitorHandler(addVisitorUC, updateVisitorUC, deleteVisitorUC, listVisitorsUC, getVisitorUC, log),
		handlers.NewVisitRequestHandler(createRequestUC, decideRequestUC, listRequestsUC, getRequestUC, log),
		handlers.NewAccessHandler(blockUC, unblockUC, listEntryLogsUC, log),
		handlers.NewScannerHandler(verifyEntryUC, log),
		authMiddleware,
		log,
	)
	router.SetupRoutes()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	goroutine.SafeGo("http-server", func() {
		logger.Info("server starting", "address", cfg.Server.GetAddr(), "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return err
	}

	logger.Info("server exited gracefully")
	return nil
}

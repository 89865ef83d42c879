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
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"molliebridge/internal/application/gateway"
	"molliebridge/internal/application/gateway/nonce"
	"molliebridge/internal/application/gateway/usecases"
	billingAdapter "molliebridge/internal/infrastructure/billing"
	"molliebridge/internal/infrastructure/config"
	"molliebridge/internal/infrastructure/crypto"
	"molliebridge/internal/infrastructure/database"
	mollieClient "molliebridge/internal/infrastructure/mollie"
	"molliebridge/internal/infrastructure/noncestore"
	"molliebridge/internal/infrastructure/persistence/migrations"
	"molliebridge/internal/infrastructure/repository"
	"molliebridge/internal/interfaces/http/handlers"
	"molliebridge/internal/interfaces/http/routes"
	"molliebridge/internal/shared/i18n"
	"molliebridge/internal/shared/logger"
)

var (
	configPath string
	localesDir string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the gateway HTTP server, running pending table migrations first.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the config directory (default: working directory)")
	cmd.Flags().StringVarP(&localesDir, "locales", "l", "./locales", "Path to the locale catalog directory")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	log.Infow("starting gateway server",
		"sandbox", cfg.Gateway.Sandbox, "develop", cfg.Gateway.Develop)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	if err := migrations.MigrateGatewayTables(database.Get()); err != nil {
		return fmt.Errorf("failed to migrate gateway tables: %w", err)
	}
	log.Infow("gateway tables migrated")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	translator, err := i18n.Load(localesDir)
	if err != nil {
		return fmt.Errorf("failed to load locale catalogs: %w", err)
	}

	cipher, err := crypto.NewCipher(cfg.Gateway.EncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize cipher: %w", err)
	}

	params := gateway.Params{
		Name:       cfg.Gateway.Name,
		LiveAPIKey: cfg.Gateway.LiveAPIKey,
		TestAPIKey: cfg.Gateway.TestAPIKey,
		Sandbox:    cfg.Gateway.Sandbox,
		Develop:    cfg.Gateway.Develop,
		Locale:     cfg.Gateway.Locale,
		BaseURL:    cfg.Server.BaseURL,
	}
	if !params.Active() {
		log.Warnw("no API key configured for the active mode, gateway actions will refuse to run",
			"sandbox", params.Sandbox)
	}

	db := database.Get()
	transactionRepo := repository.NewTransactionRepository(db)
	customerRepo := repository.NewCustomerRepository(db, cipher, log)
	gatewayLog := repository.NewGatewayLogRepository(db, params.Name, params.Sandbox)

	mailer := billingAdapter.NewMailer(&cfg.Email)
	billingCtx := billingAdapter.NewAdapter(db, params.Name, mailer, log)

	client := mollieClient.NewClient(params.APIKey(), log)

	nonceService := nonce.NewService(
		noncestore.NewRedisStore(redisClient),
		time.Duration(cfg.Gateway.NonceTTL)*time.Second,
	)

	captureUC := usecases.NewCaptureUseCase(params, transactionRepo, customerRepo, client, gatewayLog, translator, log)
	linkUC := usecases.NewLinkUseCase(params, transactionRepo, customerRepo, client, nonceService, gatewayLog, translator, log)
	refundUC := usecases.NewRefundUseCase(params, client, translator, log)
	adminStatusUC := usecases.NewAdminStatusUseCase(params, transactionRepo, customerRepo, client, translator, log)
	processWebhookUC := usecases.NewProcessWebhookUseCase(params, transactionRepo, client, billingCtx, gatewayLog, log)

	engine := gin.New()
	engine.Use(gin.Recovery())

	routes.SetupGatewayRoutes(engine, &routes.GatewayRouteConfig{
		WebhookHandler:    handlers.NewWebhookHandler(processWebhookUC, log),
		InvoicePayHandler: handlers.NewInvoicePayHandler(params, linkUC, billingCtx, log),
		AdminHandler:      handlers.NewAdminHandler(adminStatusUC, captureUC, refundUC, billingCtx, log),
	})

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "address", cfg.Server.GetAddr(), "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorw("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

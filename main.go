package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"daily-rewards-system/chain"
	"daily-rewards-system/config"
	"daily-rewards-system/handlers"
	"daily-rewards-system/middleware"
	"daily-rewards-system/models"
	"daily-rewards-system/services"
	"daily-rewards-system/utils"
	"daily-rewards-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration: ", err)
	}

	app := fiber.New()

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware(cfg.ServiceToken))

	allowedOriginsList := strings.Split(cfg.AllowedOrigins, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-Cron-Token, X-Service-Token",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.AwardLog{},
	); err != nil {
		log.Fatal("failed to migrate database: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Ledger client is only dialed when on-chain awarding is enabled; in
	// shadow mode the awarder never makes an external call.
	var chainCaller services.ChainAwarder
	if cfg.OnChainEnabled {
		client, err := chain.Dial(ctx, cfg.RPCEndpoint, cfg.SignerKey, cfg.ContractAddress)
		if err != nil {
			log.Fatal("failed to connect to ledger: ", err)
		}
		chainCaller = client
	}

	eligibilityService := services.NewEligibilityService(db)
	awardLogService := services.NewAwardLogService(db)
	awarder := services.NewLedgerAwarder(cfg.OnChainEnabled, chainCaller, cfg.AwardTimeout)
	orchestrator := services.NewAwardOrchestrator(
		eligibilityService, awarder, awardLogService,
		cfg.DailyActionKind, cfg.DailyAwardAmount, cfg.BatchSize, cfg.PacingDelay,
	)

	var snapshot services.SnapshotFunc
	if cfg.R2Configured() {
		if err := utils.InitR2(cfg); err != nil {
			log.Fatal("failed to initialize R2 client: ", err)
		}
		snapshot = func(ctx context.Context, periodKey string) (string, error) {
			stats, err := awardLogService.PeriodStats(periodKey, cfg.DailyActionKind)
			if err != nil {
				return "", err
			}
			payload, err := json.Marshal(stats)
			if err != nil {
				return "", err
			}
			return utils.UploadAuditSnapshot(ctx, cfg.DailyActionKind, periodKey, payload)
		}
	}

	if cfg.SyncConfigured() {
		syncWorker := workers.NewRewardUserSyncWorker(db, cfg.SyncServiceURL, "/api/v1/public/profiles", cfg.SyncServiceToken)
		syncWorker.Start(ctx)
	} else {
		log.Println("⚠️  SYNC_SERVICE_URL not set — user mirror sync disabled")
	}

	orchestrator.StartDailyScheduler(cfg.DailyRunAt, snapshot)

	handlers.SetupRewardRoutes(app, handlers.RewardDeps{
		DB:           db,
		Orchestrator: orchestrator,
		AwardLog:     awardLogService,
		CronSecret:   cfg.CronSecret,
		Snapshot:     snapshot,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
	log.Printf("✅ Daily award scheduler armed for %s UTC (%s, %d tokens, batch %d)",
		cfg.DailyRunAt, cfg.DailyActionKind, cfg.DailyAwardAmount, cfg.BatchSize)
	if cfg.OnChainEnabled {
		log.Println("✅ On-chain awarding ENABLED — submissions spend gas from the service wallet")
	} else {
		log.Println("✅ On-chain awarding disabled — running in shadow mode")
	}
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")

	<-ctx.Done()
	log.Println("Shutting down server...")
}

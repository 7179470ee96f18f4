package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"jaggery-store/cmd"
	"jaggery-store/internal/data/repository"
	"jaggery-store/internal/jobs"
	"jaggery-store/internal/wire"
	"jaggery-store/pkg/database"
	"jaggery-store/pkg/sms"
	"jaggery-store/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	config, err := utils.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App.Name, config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using zap production logger.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.String("otp_store", config.OTP.Store),
		zap.String("sms_provider", config.SMS.Provider),
	)
	if config.OTP.ExposeCode {
		logger.Warn("OTP_EXPOSE_CODE is enabled; codes are returned in API responses")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.Database.AutoMigrate {
		if err := database.Migrate(config.Database.PostgresURL()); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		logger.Info("Database migrations applied")
	}

	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Left as a nil interface unless the redis store is selected
	var rdb redis.UniversalClient
	if config.OTP.Store == utils.OTPStoreRedis {
		client, err := database.InitRedis(config.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		rdb = client
		logger.Info("Redis connected successfully", zap.String("addr", config.Redis.Addr))
	}

	phoneOTPs, err := repository.NewPhoneOTPStore(config.OTP, db, rdb, logger)
	if err != nil {
		logger.Fatal("Failed to create phone OTP store", zap.Error(err))
	}

	sender, err := sms.NewSender(config.SMS, logger)
	if err != nil {
		logger.Fatal("Failed to create SMS sender", zap.Error(err))
	}

	repos := repository.NewRepository(db, phoneOTPs, logger)

	scheduler, err := jobs.NewScheduler(ctx, logger)
	if err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}
	maintenance := jobs.NewMaintenance(repos.PhoneOTP, repos.Session, config.OTP.Retention, logger)
	if err := maintenance.Register(scheduler, config.OTP.SweepInterval); err != nil {
		logger.Fatal("Failed to register maintenance jobs", zap.Error(err))
	}

	app := wire.Wiring(repos, sender, config, logger)

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("HTTP server stopped", zap.Error(err))
	}

	logger.Info("Shutting down cron scheduler")
	if err := scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shut down scheduler", zap.Error(err))
	}
}

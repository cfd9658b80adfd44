package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArowuTest/aidhub-backend/api/routes"
	"github.com/ArowuTest/aidhub-backend/internal/config"
	"github.com/ArowuTest/aidhub-backend/internal/handlers"
	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/services"
	"github.com/ArowuTest/aidhub-backend/pkg/lock"
	"github.com/ArowuTest/aidhub-backend/pkg/logger"
	"github.com/ArowuTest/aidhub-backend/pkg/smsgateway"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		logrus.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open storage")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.close(closeCtx); err != nil {
			log.WithError(err).Error("Error closing storage")
		}
	}()

	locker := newLocker(cfg, log)

	gateways, err := newGateways(ctx, cfg, store, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to configure SMS gateways")
	}

	fee, err := decimal.NewFromString(cfg.Referral.FeeAmount)
	if err != nil {
		log.WithError(err).Fatal("Invalid referral fee amount")
	}

	// Services
	authService := services.NewAuthService(store.users, cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiresIn)*time.Second, log)
	templateService := services.NewMessageTemplateService(store.templates, log)
	notificationService := services.NewNotificationService(
		gateways,
		store.settings,
		store.smsSettings,
		store.notifications,
		templateService,
		rate.NewLimiter(rate.Limit(cfg.SMS.BulkRatePerSecond), 1),
		log,
	)
	referralService := services.NewReferralService(
		store.tx,
		locker,
		store.users,
		store.txns,
		store.codes,
		services.ReferralOptions{
			Fee:              fee,
			CodeTTL:          time.Duration(cfg.Referral.CodeTTLHours) * time.Hour,
			ExcludeCancelled: cfg.Referral.ExcludeCancelled,
		},
		log,
	)
	beneficiaryService := services.NewBeneficiaryService(store.tx, store.beneficiaries, referralService, notificationService, log)
	packageService := services.NewPackageService(store.tx, store.packages, store.dispatches, store.beneficiaries, notificationService, log)
	settingsService := services.NewSystemSettingsService(store.settings)

	if err := seed(ctx, store, authService, templateService, log); err != nil {
		log.WithError(err).Fatal("Failed to seed initial data")
	}

	gin.SetMode(cfg.Server.Mode)
	router := routes.SetupRouter(cfg, routes.HandlerDependencies{
		AuthHandler:            handlers.NewAuthHandler(authService),
		BeneficiaryHandler:     handlers.NewBeneficiaryHandler(beneficiaryService),
		ReferralHandler:        handlers.NewReferralHandler(referralService),
		PackageHandler:         handlers.NewPackageHandler(packageService),
		NotificationHandler:    handlers.NewNotificationHandler(notificationService),
		MessageTemplateHandler: handlers.NewMessageTemplateHandler(templateService),
		SettingsHandler:        handlers.NewSystemSettingsHandler(settingsService),
		Ready: func(c *gin.Context) error {
			return store.ping(c.Request.Context())
		},
	}, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	log.Info("Server exiting")
}

// newLocker returns a Redis locker when Redis is configured, otherwise a
// process-local one that is only safe with a single instance
func newLocker(cfg *config.Config, log logrus.FieldLogger) lock.Locker {
	if cfg.Redis.Addr == "" {
		log.Warn("REDIS_ADDR not set; settlement locks are process-local")
		return lock.NewLocal()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return lock.NewRedis(client, lock.RedisOptions{Prefix: "aidhub:lock:"})
}

func newGateways(ctx context.Context, cfg *config.Config, store *storage, log logrus.FieldLogger) (services.Gateways, error) {
	gateways := services.Gateways{
		models.GatewayTweetSMS: smsgateway.NewTweetSMSGateway(cfg.SMS.TweetSMS.BaseURL, services.TweetSMSCredentials(store.smsSettings)),
	}

	if cfg.SMS.Twilio.AccountSID != "" {
		gateways[models.GatewayTwilio] = smsgateway.NewTwilioGateway(cfg.SMS.Twilio.AccountSID, cfg.SMS.Twilio.AuthToken, cfg.SMS.Twilio.FromNumber)
	}

	if cfg.SMS.SNS.Region != "" {
		sns, err := smsgateway.NewSNSGateway(ctx, cfg.SMS.SNS.Region, cfg.SMS.SNS.SenderID)
		if err != nil {
			return nil, err
		}
		gateways[models.GatewaySNS] = sns
	}

	if cfg.SMS.MockSMSGateway {
		gateways[models.GatewayMock] = smsgateway.NewMockGateway(models.GatewayMock)
	}

	names := make([]string, 0, len(gateways))
	for name := range gateways {
		names = append(names, name)
	}
	log.WithField("gateways", names).Info("SMS gateways configured")
	return gateways, nil
}

// seed creates the first admin account on an empty database and installs
// the default SMS templates
func seed(ctx context.Context, store *storage, auth *services.AuthServiceImpl, templates *services.MessageTemplateServiceImpl, log logrus.FieldLogger) error {
	count, err := store.users.Count(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		email := config.GetEnv("ADMIN_EMAIL", "admin@aidhub.local")
		password := os.Getenv("ADMIN_PASSWORD")
		if password == "" {
			log.Warn("No users exist and ADMIN_PASSWORD is not set; skipping admin creation")
		} else {
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			admin := &models.SystemUser{
				Name:              config.GetEnv("ADMIN_NAME", "Administrator"),
				Email:             email,
				Role:              "admin",
				Status:            "active",
				Password:          hash,
				TotalReferralFees: decimal.Zero,
				CreatedAt:         now,
				UpdatedAt:         now,
			}
			if err := store.users.Create(ctx, admin); err != nil {
				return err
			}
			log.WithField("email", email).Info("Created initial admin user")
		}
	}

	seeded, err := templates.SeedDefaults(ctx)
	if err != nil {
		return err
	}
	if seeded > 0 {
		log.WithField("count", seeded).Info("Seeded default message templates")
	}
	return nil
}

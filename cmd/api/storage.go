package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ArowuTest/aidhub-backend/internal/config"
	"github.com/ArowuTest/aidhub-backend/internal/repositories"
	"github.com/ArowuTest/aidhub-backend/internal/repositories/memory"
	mongorepo "github.com/ArowuTest/aidhub-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/aidhub-backend/pkg/mongodb"
	"github.com/sirupsen/logrus"
)

// storage bundles every repository the services need plus the runner
// that groups their writes into one transaction
type storage struct {
	tx            repositories.TxRunner
	beneficiaries repositories.BeneficiaryRepository
	users         repositories.SystemUserRepository
	txns          repositories.ReferralTransactionRepository
	codes         repositories.ReferralCodeRepository
	packages      repositories.PackageTemplateRepository
	dispatches    repositories.PackageDispatchRepository
	smsSettings   repositories.SMSSettingsRepository
	settings      repositories.SystemSettingsRepository
	templates     repositories.MessageTemplateRepository
	notifications repositories.NotificationRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

func openStorage(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*storage, error) {
	switch cfg.Storage.Driver {
	case "memory":
		log.Warn("Using in-memory storage; data is lost on restart")
		return openMemory(cfg), nil
	case "mongo":
		return openMongo(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func openMemory(cfg *config.Config) *storage {
	store := memory.NewStore()
	return &storage{
		tx:            store,
		beneficiaries: memory.NewBeneficiaryRepository(store),
		users:         memory.NewSystemUserRepository(store),
		txns:          memory.NewReferralTransactionRepository(store),
		codes:         memory.NewReferralCodeRepository(store),
		packages:      memory.NewPackageTemplateRepository(store),
		dispatches:    memory.NewPackageDispatchRepository(store),
		smsSettings:   memory.NewSMSSettingsRepository(store),
		settings:      memory.NewSystemSettingsRepository(store, cfg.SMS.DefaultGateway),
		templates:     memory.NewMessageTemplateRepository(store),
		notifications: memory.NewNotificationRepository(store),
		ping:          func(context.Context) error { return nil },
		close:         func(context.Context) error { return nil },
	}
}

func openMongo(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*storage, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongodb.NewClient(connectCtx, cfg.MongoDB.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	db := client.Database(cfg.MongoDB.Database)

	if err := mongorepo.EnsureIndexes(connectCtx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	log.WithField("database", cfg.MongoDB.Database).Info("Connected to MongoDB")

	return &storage{
		tx:            client,
		beneficiaries: mongorepo.NewBeneficiaryRepository(db),
		users:         mongorepo.NewSystemUserRepository(db),
		txns:          mongorepo.NewReferralTransactionRepository(db),
		codes:         mongorepo.NewReferralCodeRepository(db),
		packages:      mongorepo.NewPackageTemplateRepository(db),
		dispatches:    mongorepo.NewPackageDispatchRepository(db),
		smsSettings:   mongorepo.NewSMSSettingsRepository(db, client),
		settings:      mongorepo.NewSystemSettingsRepository(db, cfg.SMS.DefaultGateway),
		templates:     mongorepo.NewMessageTemplateRepository(db),
		notifications: mongorepo.NewNotificationRepository(db),
		ping:          client.Ping,
		close:         client.Disconnect,
	}, nil
}

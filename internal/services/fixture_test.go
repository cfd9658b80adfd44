package services

import (
	"context"
	"testing"
	"time"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/repositories/memory"
	"github.com/ArowuTest/aidhub-backend/pkg/lock"
	"github.com/ArowuTest/aidhub-backend/pkg/logger"
	"github.com/ArowuTest/aidhub-backend/pkg/smsgateway"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// fixture wires every service against one in-memory store
type fixture struct {
	store *memory.Store

	users         *memory.SystemUserRepository
	beneficiaries *memory.BeneficiaryRepository
	txns          *memory.ReferralTransactionRepository
	codes         *memory.ReferralCodeRepository
	packages      *memory.PackageTemplateRepository
	dispatches    *memory.PackageDispatchRepository
	smsSettings   *memory.SMSSettingsRepository
	settings      *memory.SystemSettingsRepository
	templates     *memory.MessageTemplateRepository
	notifications *memory.NotificationRepository

	sms *smsgateway.MockGateway

	referral     *ReferralServiceImpl
	beneficiary  *BeneficiaryServiceImpl
	pkg          *PackageServiceImpl
	notification *NotificationServiceImpl
	template     *MessageTemplateServiceImpl
	auth         *AuthServiceImpl

	clock *fakeClock
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store:         store,
		users:         memory.NewSystemUserRepository(store),
		beneficiaries: memory.NewBeneficiaryRepository(store),
		txns:          memory.NewReferralTransactionRepository(store),
		codes:         memory.NewReferralCodeRepository(store),
		packages:      memory.NewPackageTemplateRepository(store),
		dispatches:    memory.NewPackageDispatchRepository(store),
		smsSettings:   memory.NewSMSSettingsRepository(store),
		settings:      memory.NewSystemSettingsRepository(store, models.GatewayMock),
		templates:     memory.NewMessageTemplateRepository(store),
		notifications: memory.NewNotificationRepository(store),
		sms:           smsgateway.NewMockGateway(models.GatewayMock),
		clock:         &fakeClock{t: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)},
	}
	log := logger.Discard()

	f.referral = NewReferralService(store, lock.NewLocal(), f.users, f.txns, f.codes, ReferralOptions{
		Fee:     decimal.NewFromInt(5),
		CodeTTL: 7 * 24 * time.Hour,
	}, log)
	f.referral.now = f.clock.now

	f.template = NewMessageTemplateService(f.templates, log)
	f.template.now = f.clock.now

	f.notification = NewNotificationService(
		Gateways{models.GatewayMock: f.sms},
		f.settings, f.smsSettings, f.notifications, f.template,
		rate.NewLimiter(rate.Inf, 1), log,
	)
	f.notification.now = f.clock.now

	f.beneficiary = NewBeneficiaryService(store, f.beneficiaries, f.referral, f.notification, log)
	f.beneficiary.now = f.clock.now

	f.pkg = NewPackageService(store, f.packages, f.dispatches, f.beneficiaries, f.notification, log)
	f.pkg.now = f.clock.now

	f.auth = NewAuthService(f.users, "test-secret", time.Hour, log)
	f.auth.now = f.clock.now
	return f
}

func (f *fixture) referrer(t *testing.T, name string) *models.SystemUser {
	t.Helper()
	u := &models.SystemUser{Name: name, Email: name + "@example.org", Role: "admin", Status: "active"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) txn(t *testing.T, referrer *models.SystemUser, at time.Time, amount int64, status models.ReferralTransactionStatus) *models.ReferralTransaction {
	t.Helper()
	txn := &models.ReferralTransaction{
		ReferrerUserID: referrer.ID,
		Amount:         decimal.NewFromInt(amount),
		Status:         status,
		CreatedAt:      at,
	}
	require.NoError(t, f.txns.Create(context.Background(), txn))
	return txn
}

package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when a lookup or conditional update matches nothing
var ErrNotFound = errors.New("document not found")

// ErrDuplicate is returned when a unique key is already taken
var ErrDuplicate = errors.New("duplicate key")

// TxRunner runs fn inside one storage transaction. Repository calls made
// with the ctx passed to fn take part in the transaction; if fn returns an
// error every write is rolled back.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// BeneficiaryRepository defines the interface for beneficiary data operations
type BeneficiaryRepository interface {
	Create(ctx context.Context, beneficiary *models.Beneficiary) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Beneficiary, error)
	FindByNationalID(ctx context.Context, nationalID string) (*models.Beneficiary, error)
	FindAll(ctx context.Context) ([]*models.Beneficiary, error)
	Update(ctx context.Context, beneficiary *models.Beneficiary) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// RecordPackage bumps totalPackages and stamps lastReceived
	RecordPackage(ctx context.Context, id primitive.ObjectID, at time.Time) error
	Count(ctx context.Context) (int64, error)
}

// SystemUserRepository defines the interface for dashboard users and referrers
type SystemUserRepository interface {
	Create(ctx context.Context, user *models.SystemUser) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.SystemUser, error)
	FindByEmail(ctx context.Context, email string) (*models.SystemUser, error)
	FindAll(ctx context.Context) ([]*models.SystemUser, error)
	Update(ctx context.Context, user *models.SystemUser) error
	UpdateLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	SetReferralCode(ctx context.Context, id primitive.ObjectID, code string) error
	IncrementReferrals(ctx context.Context, id primitive.ObjectID, n int) error
	AddReferralFees(ctx context.Context, id primitive.ObjectID, amount decimal.Decimal) error
	Count(ctx context.Context) (int64, error)
}

// ReferralTransactionRepository defines the interface for referral fee records
type ReferralTransactionRepository interface {
	Create(ctx context.Context, txn *models.ReferralTransaction) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.ReferralTransaction, error)
	// FindByReferrer returns the referrer's transactions oldest first
	FindByReferrer(ctx context.Context, referrerID primitive.ObjectID) ([]*models.ReferralTransaction, error)
	FindByReferrerAndDay(ctx context.Context, referrerID primitive.ObjectID, day string) ([]*models.ReferralTransaction, error)
	// FindAll returns every transaction, optionally restricted to one status
	FindAll(ctx context.Context, status models.ReferralTransactionStatus) ([]*models.ReferralTransaction, error)
	// MarkPaid moves the given pending transactions to paid and reports how
	// many rows changed. Rows that are no longer pending are left untouched.
	MarkPaid(ctx context.Context, ids []primitive.ObjectID, paidAt time.Time, notes string) (int64, error)
}

// ReferralCodeRepository defines the interface for referral code operations
type ReferralCodeRepository interface {
	Create(ctx context.Context, code *models.ReferralCode) error
	FindByCode(ctx context.Context, code string) (*models.ReferralCode, error)
	FindByReferrer(ctx context.Context, referrerID primitive.ObjectID) ([]*models.ReferralCode, error)
	FindActiveByReferrer(ctx context.Context, referrerID primitive.ObjectID) (*models.ReferralCode, error)
	// ExpireActive moves every active code of the referrer to expired
	ExpireActive(ctx context.Context, referrerID primitive.ObjectID) error
	// MarkUsed succeeds only while the code is still active
	MarkUsed(ctx context.Context, id primitive.ObjectID, beneficiaryID primitive.ObjectID, usedAt time.Time) error
	MarkExpired(ctx context.Context, id primitive.ObjectID) error
}

// PackageTemplateRepository defines the interface for package template operations
type PackageTemplateRepository interface {
	Create(ctx context.Context, template *models.PackageTemplate) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.PackageTemplate, error)
	// FindAll filters on type and status when they are non-empty
	FindAll(ctx context.Context, templateType, status string) ([]*models.PackageTemplate, error)
	Update(ctx context.Context, template *models.PackageTemplate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	IncrementUsage(ctx context.Context, id primitive.ObjectID) error
}

// PackageDispatchRepository defines the interface for individual send records
type PackageDispatchRepository interface {
	Create(ctx context.Context, dispatch *models.PackageDispatch) error
	// FindAll returns dispatches newest first, for one beneficiary when given
	FindAll(ctx context.Context, beneficiaryID *primitive.ObjectID) ([]*models.PackageDispatch, error)
}

// SMSSettingsRepository defines the interface for SMS credential storage
type SMSSettingsRepository interface {
	FindActive(ctx context.Context) (*models.SMSSettings, error)
	// Save deactivates the current row and stores settings as the active one
	Save(ctx context.Context, settings *models.SMSSettings) error
	UpdateBalance(ctx context.Context, id primitive.ObjectID, amount decimal.Decimal, at time.Time) error
}

// SystemSettingsRepository defines the interface for system settings operations
type SystemSettingsRepository interface {
	GetSettings(ctx context.Context) (*models.SystemSettings, error)
	UpdateSettings(ctx context.Context, settings *models.SystemSettings) error
	UpdateSMSGateway(ctx context.Context, gateway string, updatedBy string) error
}

// MessageTemplateRepository defines the interface for SMS template data operations
type MessageTemplateRepository interface {
	Create(ctx context.Context, template *models.MessageTemplate) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.MessageTemplate, error)
	// FindActive returns active templates newest first, for one category when given
	FindActive(ctx context.Context, category string) ([]*models.MessageTemplate, error)
	Update(ctx context.Context, template *models.MessageTemplate) error
	Deactivate(ctx context.Context, id primitive.ObjectID, updatedBy string) error
	IncrementUsage(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	FindByPhone(ctx context.Context, phone string, page, limit int) ([]*models.Notification, error)
	FindByStatus(ctx context.Context, status string, page, limit int) ([]*models.Notification, error)
	FindAll(ctx context.Context, page, limit int) ([]*models.Notification, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, statusMessage string) error
	Count(ctx context.Context) (int64, error)
}

package services

import (
	"context"
	"time"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/query"
	"github.com/ArowuTest/aidhub-backend/pkg/smsgateway"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	HashPassword(password string) (string, error)
}

// ReferralService defines the interface for referral codes, fees and settlement
type ReferralService interface {
	// ListReferrers returns every system user that can hand out codes
	ListReferrers(ctx context.Context) ([]*models.SystemUser, error)
	GetReferrer(ctx context.Context, referrerID primitive.ObjectID) (*models.SystemUser, error)

	// ListCodes returns the referrer's code history, newest first
	ListCodes(ctx context.Context, referrerID primitive.ObjectID) ([]*models.ReferralCode, error)
	ActiveCode(ctx context.Context, referrerID primitive.ObjectID) (*models.ReferralCode, error)

	// GenerateCode expires the referrer's active code and issues a new one
	GenerateCode(ctx context.Context, referrerID primitive.ObjectID, custom string) (*models.ReferralCode, error)

	// RedeemCode consumes an active code for a beneficiary and records the
	// fee owed to its referrer
	RedeemCode(ctx context.Context, code string, beneficiaryID primitive.ObjectID) (*models.ReferralTransaction, error)

	// DailyEarnings groups the referrer's transactions by calendar day
	DailyEarnings(ctx context.Context, referrerID primitive.ObjectID, excludeCancelled *bool) ([]models.DailyEarningsSummary, error)

	// SettleDay pays every pending transaction of one referrer and day
	SettleDay(ctx context.Context, referrerID primitive.ObjectID, day string, settledBy string, excludeCancelled *bool) (*models.SettlementResult, error)

	// SettleTransaction pays a single pending transaction
	SettleTransaction(ctx context.Context, txnID primitive.ObjectID, notes string) (*models.SettlementResult, error)

	Transactions(ctx context.Context, referrerID *primitive.ObjectID, status models.ReferralTransactionStatus) ([]*models.ReferralTransaction, error)
	Stats(ctx context.Context) (*models.ReferralStats, error)
}

// BeneficiaryService defines the interface for beneficiary operations
type BeneficiaryService interface {
	Register(ctx context.Context, input *BeneficiaryInput, createdBy string) (*models.Beneficiary, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Beneficiary, error)
	Update(ctx context.Context, id primitive.ObjectID, input *BeneficiaryInput, updatedBy string) (*models.Beneficiary, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	Query(ctx context.Context, params query.Params) (query.Result, error)
	StatusSummary(ctx context.Context, params query.Params) (*models.BeneficiaryStatusSummary, error)

	ApproveIdentity(ctx context.Context, id primitive.ObjectID, updatedBy string) (*models.Beneficiary, error)
	RejectIdentity(ctx context.Context, id primitive.ObjectID, reason, updatedBy string) (*models.Beneficiary, error)
	RequestReupload(ctx context.Context, id primitive.ObjectID, reason, updatedBy string) (*models.Beneficiary, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status, updatedBy string) (*models.Beneficiary, error)
}

// PackageService defines the interface for the package catalog and individual sends
type PackageService interface {
	ListTemplates(ctx context.Context, templateType, status string) ([]*models.PackageTemplate, error)
	GetTemplate(ctx context.Context, id primitive.ObjectID) (*models.PackageTemplate, error)
	CreateTemplate(ctx context.Context, template *models.PackageTemplate) (*models.PackageTemplate, error)
	UpdateTemplate(ctx context.Context, id primitive.ObjectID, template *models.PackageTemplate) (*models.PackageTemplate, error)
	DeleteTemplate(ctx context.Context, id primitive.ObjectID) error

	Dispatch(ctx context.Context, input *DispatchInput, createdBy string) (*models.PackageDispatch, error)
	ListDispatches(ctx context.Context, beneficiaryID *primitive.ObjectID) ([]*models.PackageDispatch, error)
	Reasons() []models.DispatchReason
}

// NotificationService defines the interface for SMS sending and logging
type NotificationService interface {
	SendSMS(ctx context.Context, msg *OutgoingSMS) (*models.Notification, error)
	SendBulk(ctx context.Context, phones []string, content string) (*BulkResult, error)
	SendTemplate(ctx context.Context, templateID primitive.ObjectID, phone string, vars map[string]string) (*models.Notification, error)
	CheckBalance(ctx context.Context) (decimal.Decimal, error)
	DeliveryStatus(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)

	// Notifications lists the SMS log filtered by phone or status
	Notifications(ctx context.Context, phone, status string, page, limit int) ([]*models.Notification, error)

	GetSMSSettings(ctx context.Context) (*models.SMSSettings, error)
	SaveSMSSettings(ctx context.Context, apiKey, senderName, savedBy string) (*models.SMSSettings, error)
}

// MessageTemplateService defines the interface for SMS template operations
type MessageTemplateService interface {
	List(ctx context.Context, category string) ([]*models.MessageTemplate, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.MessageTemplate, error)
	Create(ctx context.Context, template *models.MessageTemplate, createdBy string) (*models.MessageTemplate, error)
	Update(ctx context.Context, id primitive.ObjectID, template *models.MessageTemplate, updatedBy string) (*models.MessageTemplate, error)
	Delete(ctx context.Context, id primitive.ObjectID, deletedBy string) error
	IncrementUsage(ctx context.Context, id primitive.ObjectID) error
	SeedDefaults(ctx context.Context) (int, error)
}

// SystemSettingsService defines the interface for system settings operations
type SystemSettingsService interface {
	GetSettings(ctx context.Context) (*models.SystemSettings, error)
	UpdateSettings(ctx context.Context, settings *models.SystemSettings) error
	UpdateSMSGateway(ctx context.Context, gateway string, updatedBy string) error
}

// Clock returns the current time. Services stamp every record in UTC so
// the referral day key is stable across hosts.
type Clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}

// Gateways maps gateway identifiers (models.Gateway*) to senders
type Gateways map[string]smsgateway.Gateway

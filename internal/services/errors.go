package services

import "errors"

var (
	ErrBeneficiaryNotFound = errors.New("beneficiary not found")
	ErrDuplicateNationalID = errors.New("a beneficiary with this national id already exists")
	ErrReferrerNotFound    = errors.New("referrer not found")
	// ErrSettlementNotFound is returned when there is nothing to settle for
	// a referrer and day
	ErrSettlementNotFound  = errors.New("no referral transactions for this referrer and day")
	ErrTransactionNotFound = errors.New("referral transaction not found")
	ErrTransactionCanceled = errors.New("referral transaction is cancelled")
	ErrInvalidReferralCode = errors.New("invalid referral code")
	ErrReferralCodeExpired = errors.New("referral code has expired")
	ErrReferralCodeTaken   = errors.New("referral code already exists")
	ErrPackageNotFound     = errors.New("package template not found")
	ErrPackageInactive     = errors.New("package template is not active")
	ErrTemplateNotFound    = errors.New("message template not found")
	ErrTemplateInactive    = errors.New("message template is not active")
	ErrInvalidDay          = errors.New("invalid day, expected YYYY-MM-DD")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrSMSNotConfigured    = errors.New("no sms gateway configured")
	ErrBalanceUnsupported  = errors.New("active sms gateway does not report a balance")
	ErrValidation          = errors.New("validation failed")
)

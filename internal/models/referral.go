package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReferralTransactionStatus is the payment state of a single referral fee
type ReferralTransactionStatus string

const (
	ReferralPendingPayment ReferralTransactionStatus = "pending_payment"
	ReferralPaidToReferrer ReferralTransactionStatus = "paid_to_referrer"
	ReferralCancelled      ReferralTransactionStatus = "cancelled"
)

// DailyStatusMixed marks a day whose transactions are neither all paid nor all pending
const DailyStatusMixed = "mixed"

// ReferralCodeStatus is the lifecycle state of a referral code
type ReferralCodeStatus string

const (
	ReferralCodeActive    ReferralCodeStatus = "active"
	ReferralCodeUsed      ReferralCodeStatus = "used"
	ReferralCodeExpired   ReferralCodeStatus = "expired"
	ReferralCodeCancelled ReferralCodeStatus = "cancelled"
)

// ReferralTransaction is the fee owed to a referrer for one redeemed code.
// Day holds the calendar-date group key derived from CreatedAt.
type ReferralTransaction struct {
	ID               primitive.ObjectID        `bson:"_id,omitempty" json:"id,omitempty"`
	BeneficiaryID    primitive.ObjectID        `bson:"beneficiaryId" json:"beneficiaryId"`
	ReferrerUserID   primitive.ObjectID        `bson:"referrerUserId" json:"referrerUserId"`
	ReferralCodeID   primitive.ObjectID        `bson:"referralCodeId" json:"referralCodeId"`
	ReferralCodeUsed string                    `bson:"referralCodeUsed" json:"referralCodeUsed"`
	Amount           decimal.Decimal           `bson:"amount" json:"amount"`
	Status           ReferralTransactionStatus `bson:"status" json:"status"`
	Day              string                    `bson:"day" json:"-"`
	CreatedAt        time.Time                 `bson:"createdAt" json:"createdAt"`
	PaidAt           *time.Time                `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	Notes            string                    `bson:"notes,omitempty" json:"notes,omitempty"`
}

// ReferralCode is a code handed out by a referrer. A used code always
// carries BeneficiaryID and UsedAt.
type ReferralCode struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Code           string              `bson:"code" json:"code"`
	ReferrerUserID primitive.ObjectID  `bson:"referrerUserId" json:"referrerUserId"`
	Status         ReferralCodeStatus  `bson:"status" json:"status"`
	GeneratedAt    time.Time           `bson:"generatedAt" json:"generatedAt"`
	UsedAt         *time.Time          `bson:"usedAt,omitempty" json:"usedAt,omitempty"`
	BeneficiaryID  *primitive.ObjectID `bson:"beneficiaryId,omitempty" json:"beneficiaryId,omitempty"`
	ExpiresAt      *time.Time          `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
}

// DailyEarningsSummary is derived on every read and never persisted
type DailyEarningsSummary struct {
	Date           string                 `json:"date"`
	ReferralsCount int                    `json:"referralsCount"`
	Earnings       decimal.Decimal        `json:"earnings"`
	Status         string                 `json:"status"`
	Transactions   []*ReferralTransaction `json:"transactions"`
}

// SettlementResult describes what a settlement call changed
type SettlementResult struct {
	ReferrerUserID primitive.ObjectID `json:"referrerUserId"`
	Date           string             `json:"date"`
	SettledCount   int                `json:"settledCount"`
	SettledAmount  decimal.Decimal    `json:"settledAmount"`
	PaidAt         time.Time          `json:"paidAt"`
}

// ReferralStats are system-wide referral counters
type ReferralStats struct {
	TotalReferrals   int             `json:"totalReferrals"`
	TotalEarnings    decimal.Decimal `json:"totalEarnings"`
	PendingPayments  int             `json:"pendingPayments"`
	PaidTransactions int             `json:"paidTransactions"`
}

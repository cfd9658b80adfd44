package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SystemUser is a dashboard account. Every system user can refer
// beneficiaries and accumulates referral fees.
type SystemUser struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name              string             `bson:"name" json:"name"`
	Email             string             `bson:"email" json:"email"`
	Phone             string             `bson:"phone" json:"phone"`
	NationalID        string             `bson:"nationalId,omitempty" json:"nationalId,omitempty"`
	Role              string             `bson:"role" json:"role"`
	Status            string             `bson:"status" json:"status"` // active, inactive, suspended
	Password          string             `bson:"password" json:"-"`
	LastLogin         *time.Time         `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	ReferralCode      string             `bson:"referralCode,omitempty" json:"referralCode,omitempty"`
	TotalReferrals    int                `bson:"totalReferrals" json:"totalReferrals"`
	TotalReferralFees decimal.Decimal    `bson:"totalReferralFees" json:"totalReferralFees"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

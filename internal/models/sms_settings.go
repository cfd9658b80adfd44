package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SMSSettings holds the TweetSMS credentials. Only one row is active at a time.
type SMSSettings struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	APIKey            string             `bson:"apiKey" json:"apiKey"`
	SenderName        string             `bson:"senderName" json:"senderName"`
	IsActive          bool               `bson:"isActive" json:"isActive"`
	LastBalanceCheck  *time.Time         `bson:"lastBalanceCheck,omitempty" json:"lastBalanceCheck,omitempty"`
	LastBalanceAmount *decimal.Decimal   `bson:"lastBalanceAmount,omitempty" json:"lastBalanceAmount,omitempty"`
	CreatedBy         string             `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	UpdatedBy         string             `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification delivery states
const (
	NotificationPending = "PENDING"
	NotificationSent    = "SENT"
	NotificationFailed  = "FAILED"
)

// Notification represents an SMS sent to a phone number
type Notification struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Phone         string              `bson:"phone" json:"phone"`
	Content       string              `bson:"content" json:"content"`
	Type          string              `bson:"type" json:"type"` // GENERAL, BULK, TEMPLATE, DISPATCH, IDENTITY
	BeneficiaryID *primitive.ObjectID `bson:"beneficiaryId,omitempty" json:"beneficiaryId,omitempty"`
	TemplateID    *primitive.ObjectID `bson:"templateId,omitempty" json:"templateId,omitempty"`
	Gateway       string              `bson:"gateway" json:"gateway"`
	MessageID     string              `bson:"messageId,omitempty" json:"messageId,omitempty"`
	Status        string              `bson:"status" json:"status"`
	StatusMessage string              `bson:"statusMessage,omitempty" json:"statusMessage,omitempty"`
	SentDate      time.Time           `bson:"sentDate" json:"sentDate"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}

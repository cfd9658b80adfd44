package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageTemplate represents a reusable SMS body with {variable} placeholders
type MessageTemplate struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name       string             `bson:"name" json:"name" validate:"required"`
	Content    string             `bson:"content" json:"content" validate:"required"`
	Category   string             `bson:"category" json:"category" validate:"required"` // delivery, schedule, address, general
	Variables  []string           `bson:"variables" json:"variables"`
	IsActive   bool               `bson:"isActive" json:"isActive"`
	UsageCount int                `bson:"usageCount" json:"usageCount"`
	CreatedBy  string             `bson:"createdBy" json:"createdBy"`
	UpdatedBy  string             `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

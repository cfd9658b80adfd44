package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Package template types
const (
	PackageTypeFood      = "food"
	PackageTypeMedical   = "medical"
	PackageTypeClothing  = "clothing"
	PackageTypeHygiene   = "hygiene"
	PackageTypeEmergency = "emergency"
)

// Package template statuses
const (
	PackageStatusActive   = "active"
	PackageStatusDraft    = "draft"
	PackageStatusInactive = "inactive"
)

// DispatchStatusPending is the status of a freshly created dispatch
const DispatchStatusPending = "pending"

// PackageItem is one line of a package template
type PackageItem struct {
	ID       string  `bson:"id" json:"id"`
	Name     string  `bson:"name" json:"name" validate:"required"`
	Quantity int     `bson:"quantity" json:"quantity" validate:"gt=0"`
	Unit     string  `bson:"unit" json:"unit" validate:"required"`
	Weight   float64 `bson:"weight" json:"weight" validate:"gte=0"`
	Notes    string  `bson:"notes,omitempty" json:"notes,omitempty"`
}

// PackageTemplate describes the contents of an aid package
type PackageTemplate struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name          string             `bson:"name" json:"name" validate:"required"`
	Type          string             `bson:"type" json:"type" validate:"required,oneof=food medical clothing hygiene emergency"`
	Description   string             `bson:"description" json:"description"`
	Contents      []PackageItem      `bson:"contents" json:"contents" validate:"dive"`
	Status        string             `bson:"status" json:"status" validate:"omitempty,oneof=active draft inactive"`
	UsageCount    int                `bson:"usageCount" json:"usageCount"`
	TotalWeight   float64            `bson:"totalWeight" json:"totalWeight"`
	EstimatedCost decimal.Decimal    `bson:"estimatedCost" json:"estimatedCost"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PackageDispatch is an individual package sent outside of a distribution batch
type PackageDispatch struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TrackingNumber string             `bson:"trackingNumber" json:"trackingNumber"`
	BeneficiaryID  primitive.ObjectID `bson:"beneficiaryId" json:"beneficiaryId"`
	TemplateID     primitive.ObjectID `bson:"templateId" json:"templateId"`
	TemplateName   string             `bson:"templateName" json:"templateName"`
	Reason         string             `bson:"reason" json:"reason"`
	Priority       string             `bson:"priority" json:"priority"`
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
	EstimatedCost  decimal.Decimal    `bson:"estimatedCost" json:"estimatedCost"`
	Status         string             `bson:"status" json:"status"`
	CreatedBy      string             `bson:"createdBy" json:"createdBy"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// DispatchReason is a selectable justification for an individual send
type DispatchReason struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

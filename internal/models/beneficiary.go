package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Beneficiary account statuses
const (
	BeneficiaryStatusActive    = "active"
	BeneficiaryStatusPending   = "pending"
	BeneficiaryStatusSuspended = "suspended"
)

// Identity verification statuses
const (
	IdentityStatusVerified = "verified"
	IdentityStatusPending  = "pending"
	IdentityStatusRejected = "rejected"
)

// Eligibility statuses
const (
	EligibilityEligible    = "eligible"
	EligibilityUnderReview = "under_review"
	EligibilityRejected    = "rejected"
)

// DetailedAddress is the structured address of a beneficiary household
type DetailedAddress struct {
	Governorate    string `bson:"governorate" json:"governorate" validate:"required"`
	City           string `bson:"city" json:"city"`
	District       string `bson:"district" json:"district"`
	Street         string `bson:"street" json:"street"`
	AdditionalInfo string `bson:"additionalInfo,omitempty" json:"additionalInfo,omitempty"`
}

// GeoPoint is a lat/lng pair
type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Beneficiary represents a registered aid recipient
type Beneficiary struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Name              string              `bson:"name" json:"name" validate:"required"`
	FullName          string              `bson:"fullName" json:"fullName"`
	NationalID        string              `bson:"nationalId" json:"nationalId" validate:"required,numeric"`
	DateOfBirth       string              `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`
	Gender            string              `bson:"gender,omitempty" json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	Phone             string              `bson:"phone" json:"phone" validate:"required"`
	Address           string              `bson:"address,omitempty" json:"address,omitempty"`
	DetailedAddress   DetailedAddress     `bson:"detailedAddress" json:"detailedAddress"`
	Location          GeoPoint            `bson:"location" json:"location"`
	Profession        string              `bson:"profession,omitempty" json:"profession,omitempty"`
	MaritalStatus     string              `bson:"maritalStatus,omitempty" json:"maritalStatus,omitempty" validate:"omitempty,oneof=single married divorced widowed"`
	EconomicLevel     string              `bson:"economicLevel,omitempty" json:"economicLevel,omitempty" validate:"omitempty,oneof=very_poor poor moderate good"`
	MembersCount      int                 `bson:"membersCount" json:"membersCount" validate:"gte=0"`
	IdentityStatus    string              `bson:"identityStatus" json:"identityStatus"`
	IdentityImageURL  string              `bson:"identityImageUrl,omitempty" json:"identityImageUrl,omitempty"`
	Status            string              `bson:"status" json:"status"`
	EligibilityStatus string              `bson:"eligibilityStatus" json:"eligibilityStatus"`
	LastReceived      *time.Time          `bson:"lastReceived,omitempty" json:"lastReceived,omitempty"`
	TotalPackages     int                 `bson:"totalPackages" json:"totalPackages"`
	ReferredByCode    string              `bson:"referredByCode,omitempty" json:"referredByCode,omitempty"`
	ReferrerUserID    *primitive.ObjectID `bson:"referrerUserId,omitempty" json:"referrerUserId,omitempty"`
	CreatedAt         time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time           `bson:"updatedAt" json:"updatedAt"`
	CreatedBy         string              `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	UpdatedBy         string              `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
}

// BeneficiaryStatusSummary counts beneficiaries per verification bucket
type BeneficiaryStatusSummary struct {
	Total     int `json:"total"`
	Verified  int `json:"verified"`
	Pending   int `json:"pending"`
	Rejected  int `json:"rejected"`
	Suspended int `json:"suspended"`
}

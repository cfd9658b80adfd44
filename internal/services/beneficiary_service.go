package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/query"
	"github.com/ArowuTest/aidhub-backend/internal/repositories"
	"github.com/ArowuTest/aidhub-backend/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ BeneficiaryService = (*BeneficiaryServiceImpl)(nil)

const (
	reuploadMessage = "عزيزي %s، يرجى إعادة رفع وثائق الهوية لاستكمال التسجيل. السبب: %s"
)

// BeneficiaryInput carries the editable fields of a beneficiary
type BeneficiaryInput struct {
	Name             string                 `json:"name"`
	FullName         string                 `json:"fullName"`
	NationalID       string                 `json:"nationalId"`
	DateOfBirth      string                 `json:"dateOfBirth"`
	Gender           string                 `json:"gender"`
	Phone            string                 `json:"phone"`
	Address          string                 `json:"address"`
	DetailedAddress  models.DetailedAddress `json:"detailedAddress"`
	Location         models.GeoPoint        `json:"location"`
	Profession       string                 `json:"profession"`
	MaritalStatus    string                 `json:"maritalStatus"`
	EconomicLevel    string                 `json:"economicLevel"`
	MembersCount     int                    `json:"membersCount"`
	IdentityImageURL string                 `json:"identityImageUrl"`
	ReferralCode     string                 `json:"referralCode"`
}

func (in *BeneficiaryInput) apply(b *models.Beneficiary) {
	b.Name = strings.TrimSpace(in.Name)
	b.FullName = strings.TrimSpace(in.FullName)
	if b.FullName == "" {
		b.FullName = b.Name
	}
	b.NationalID = strings.TrimSpace(in.NationalID)
	b.DateOfBirth = in.DateOfBirth
	b.Gender = in.Gender
	b.Phone = strings.TrimSpace(in.Phone)
	b.Address = in.Address
	b.DetailedAddress = in.DetailedAddress
	b.Location = in.Location
	b.Profession = in.Profession
	b.MaritalStatus = in.MaritalStatus
	b.EconomicLevel = in.EconomicLevel
	b.MembersCount = in.MembersCount
	b.IdentityImageURL = in.IdentityImageURL
}

// BeneficiaryServiceImpl implements BeneficiaryService
type BeneficiaryServiceImpl struct {
	tx       repositories.TxRunner
	repo     repositories.BeneficiaryRepository
	referral ReferralService
	notifier NotificationService
	validate *validator.Validate
	log      logrus.FieldLogger
	now      Clock
}

// NewBeneficiaryService creates a new BeneficiaryService
func NewBeneficiaryService(
	tx repositories.TxRunner,
	repo repositories.BeneficiaryRepository,
	referral ReferralService,
	notifier NotificationService,
	log logrus.FieldLogger,
) *BeneficiaryServiceImpl {
	return &BeneficiaryServiceImpl{
		tx:       tx,
		repo:     repo,
		referral: referral,
		notifier: notifier,
		validate: validator.New(),
		log:      log,
		now:      utcNow,
	}
}

// Register creates a pending beneficiary. A referral code, when given, is
// redeemed in the same transaction and a bad code fails the registration.
func (s *BeneficiaryServiceImpl) Register(ctx context.Context, input *BeneficiaryInput, createdBy string) (*models.Beneficiary, error) {
	now := s.now()
	b := &models.Beneficiary{
		ID:                primitive.NewObjectID(),
		Status:            models.BeneficiaryStatusPending,
		IdentityStatus:    models.IdentityStatusPending,
		EligibilityStatus: models.EligibilityUnderReview,
		CreatedAt:         now,
		UpdatedAt:         now,
		CreatedBy:         createdBy,
	}
	input.apply(b)
	if err := s.validate.Struct(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	code := strings.TrimSpace(input.ReferralCode)

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		// Checked up front: a duplicate key error aborts a MongoDB transaction
		if _, err := s.repo.FindByNationalID(ctx, b.NationalID); err == nil {
			return ErrDuplicateNationalID
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}

		if code != "" {
			txn, err := s.referral.RedeemCode(ctx, code, b.ID)
			if err != nil {
				return err
			}
			referrer := txn.ReferrerUserID
			b.ReferredByCode = code
			b.ReferrerUserID = &referrer
		}

		if err := s.repo.Create(ctx, b); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return ErrDuplicateNationalID
			}
			return fmt.Errorf("failed to create beneficiary: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx, s.log).WithFields(logrus.Fields{
		"beneficiary_id": b.ID.Hex(),
		"referral_code":  b.ReferredByCode,
	}).Info("Beneficiary registered")
	return b, nil
}

// Get returns one beneficiary
func (s *BeneficiaryServiceImpl) Get(ctx context.Context, id primitive.ObjectID) (*models.Beneficiary, error) {
	b, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrBeneficiaryNotFound
	}
	return b, err
}

// Update replaces the editable fields of a beneficiary. Workflow statuses
// and referral data are kept.
func (s *BeneficiaryServiceImpl) Update(ctx context.Context, id primitive.ObjectID, input *BeneficiaryInput, updatedBy string) (*models.Beneficiary, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previousNationalID := b.NationalID
	input.apply(b)
	if err := s.validate.Struct(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if b.NationalID != previousNationalID {
		if other, err := s.repo.FindByNationalID(ctx, b.NationalID); err == nil && other.ID != id {
			return nil, ErrDuplicateNationalID
		}
	}
	b.UpdatedBy = updatedBy
	return b, s.save(ctx, b)
}

// Delete removes a beneficiary
func (s *BeneficiaryServiceImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrBeneficiaryNotFound
	}
	return err
}

// Query runs the filter, sort and paginate pipeline over all beneficiaries
func (s *BeneficiaryServiceImpl) Query(ctx context.Context, params query.Params) (query.Result, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return query.Result{}, fmt.Errorf("failed to load beneficiaries: %w", err)
	}
	return query.Beneficiaries(all, params, s.now()), nil
}

// StatusSummary counts the filtered beneficiaries per verification bucket.
// Paging parameters are ignored.
func (s *BeneficiaryServiceImpl) StatusSummary(ctx context.Context, params query.Params) (*models.BeneficiaryStatusSummary, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load beneficiaries: %w", err)
	}
	filtered := query.Filter(all, params, s.now())
	summary := &models.BeneficiaryStatusSummary{Total: len(filtered)}
	for _, b := range filtered {
		switch b.IdentityStatus {
		case models.IdentityStatusVerified:
			summary.Verified++
		case models.IdentityStatusPending:
			summary.Pending++
		case models.IdentityStatusRejected:
			summary.Rejected++
		}
		if b.Status == models.BeneficiaryStatusSuspended {
			summary.Suspended++
		}
	}
	return summary, nil
}

// ApproveIdentity marks the identity verified. Account status and
// eligibility are managed separately.
func (s *BeneficiaryServiceImpl) ApproveIdentity(ctx context.Context, id primitive.ObjectID, updatedBy string) (*models.Beneficiary, error) {
	return s.transition(ctx, id, updatedBy, func(b *models.Beneficiary) {
		b.IdentityStatus = models.IdentityStatusVerified
	})
}

// RejectIdentity marks the identity rejected
func (s *BeneficiaryServiceImpl) RejectIdentity(ctx context.Context, id primitive.ObjectID, reason, updatedBy string) (*models.Beneficiary, error) {
	b, err := s.transition(ctx, id, updatedBy, func(b *models.Beneficiary) {
		b.IdentityStatus = models.IdentityStatusRejected
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"beneficiary_id": id.Hex(), "reason": reason}).Info("Identity rejected")
	return b, nil
}

// RequestReupload rejects the identity documents and asks the beneficiary
// by SMS to upload new ones
func (s *BeneficiaryServiceImpl) RequestReupload(ctx context.Context, id primitive.ObjectID, reason, updatedBy string) (*models.Beneficiary, error) {
	b, err := s.transition(ctx, id, updatedBy, func(b *models.Beneficiary) {
		b.IdentityStatus = models.IdentityStatusRejected
		b.IdentityImageURL = ""
	})
	if err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "الوثائق غير واضحة"
	}
	s.notify(ctx, b, fmt.Sprintf(reuploadMessage, b.Name, reason))
	return b, nil
}

// UpdateStatus changes the account status
func (s *BeneficiaryServiceImpl) UpdateStatus(ctx context.Context, id primitive.ObjectID, status, updatedBy string) (*models.Beneficiary, error) {
	switch status {
	case models.BeneficiaryStatusActive, models.BeneficiaryStatusPending, models.BeneficiaryStatusSuspended:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.transition(ctx, id, updatedBy, func(b *models.Beneficiary) {
		b.Status = status
	})
}

func (s *BeneficiaryServiceImpl) transition(ctx context.Context, id primitive.ObjectID, updatedBy string, change func(b *models.Beneficiary)) (*models.Beneficiary, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	change(b)
	b.UpdatedBy = updatedBy
	return b, s.save(ctx, b)
}

func (s *BeneficiaryServiceImpl) save(ctx context.Context, b *models.Beneficiary) error {
	b.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, b); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrBeneficiaryNotFound
		}
		return fmt.Errorf("failed to update beneficiary: %w", err)
	}
	return nil
}

// notify sends an SMS without failing the caller
func (s *BeneficiaryServiceImpl) notify(ctx context.Context, b *models.Beneficiary, content string) {
	if s.notifier == nil || b.Phone == "" {
		return
	}
	id := b.ID
	if _, err := s.notifier.SendSMS(ctx, &OutgoingSMS{
		Phone:         b.Phone,
		Content:       content,
		Type:          NotificationTypeIdentity,
		BeneficiaryID: &id,
	}); err != nil {
		logger.WithContext(ctx, s.log).WithError(err).WithField("beneficiary_id", id.Hex()).Warn("Failed to notify beneficiary")
	}
}

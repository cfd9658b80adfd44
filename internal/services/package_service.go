package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/repositories"
	"github.com/ArowuTest/aidhub-backend/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ PackageService = (*PackageServiceImpl)(nil)

const dispatchMessage = "عزيزي %s، تم تجهيز طرد %s لكم. رقم الإرسالية: %s. سيتم التواصل معكم لتحديد موعد التسليم."

var dispatchReasons = []models.DispatchReason{
	{ID: "emergency", Name: "حالة طوارئ", Description: "حالة طارئة تحتاج تدخل فوري"},
	{ID: "special-needs", Name: "احتياجات خاصة", Description: "احتياجات خاصة للمستفيد"},
	{ID: "compensation", Name: "تعويض", Description: "تعويض عن طرد مفقود أو تالف"},
	{ID: "medical", Name: "حالة طبية", Description: "حالة طبية خاصة تحتاج رعاية"},
	{ID: "other", Name: "أخرى", Description: "سبب آخر غير مذكور"},
}

// DispatchInput is a request to send one package to one beneficiary
type DispatchInput struct {
	BeneficiaryID primitive.ObjectID `json:"beneficiaryId" validate:"required"`
	TemplateID    primitive.ObjectID `json:"templateId" validate:"required"`
	Reason        string             `json:"reason" validate:"required,oneof=emergency special-needs compensation medical other"`
	Priority      string             `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
	Notes         string             `json:"notes"`
}

// PackageServiceImpl implements PackageService
type PackageServiceImpl struct {
	tx            repositories.TxRunner
	templates     repositories.PackageTemplateRepository
	dispatches    repositories.PackageDispatchRepository
	beneficiaries repositories.BeneficiaryRepository
	notifier      NotificationService
	validate      *validator.Validate
	log           logrus.FieldLogger
	now           Clock
}

// NewPackageService creates a new PackageService
func NewPackageService(
	tx repositories.TxRunner,
	templates repositories.PackageTemplateRepository,
	dispatches repositories.PackageDispatchRepository,
	beneficiaries repositories.BeneficiaryRepository,
	notifier NotificationService,
	log logrus.FieldLogger,
) *PackageServiceImpl {
	return &PackageServiceImpl{
		tx:            tx,
		templates:     templates,
		dispatches:    dispatches,
		beneficiaries: beneficiaries,
		notifier:      notifier,
		validate:      validator.New(),
		log:           log,
		now:           utcNow,
	}
}

// TotalWeight sums the weight of every item in contents
func TotalWeight(contents []models.PackageItem) float64 {
	var total float64
	for _, item := range contents {
		total += item.Weight
	}
	return total
}

// ListTemplates returns templates filtered by type and status
func (s *PackageServiceImpl) ListTemplates(ctx context.Context, templateType, status string) ([]*models.PackageTemplate, error) {
	if templateType == "all" {
		templateType = ""
	}
	if status == "all" {
		status = ""
	}
	return s.templates.FindAll(ctx, templateType, status)
}

// GetTemplate returns one template
func (s *PackageServiceImpl) GetTemplate(ctx context.Context, id primitive.ObjectID) (*models.PackageTemplate, error) {
	t, err := s.templates.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrPackageNotFound
	}
	return t, err
}

// CreateTemplate stores a new template. New templates start as drafts
// unless a status is given.
func (s *PackageServiceImpl) CreateTemplate(ctx context.Context, t *models.PackageTemplate) (*models.PackageTemplate, error) {
	if err := s.prepare(t); err != nil {
		return nil, err
	}
	if t.Status == "" {
		t.Status = models.PackageStatusDraft
	}
	now := s.now()
	t.ID = primitive.NilObjectID
	t.UsageCount = 0
	t.CreatedAt = now
	t.UpdatedAt = now
	if err := s.templates.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create package template: %w", err)
	}
	return t, nil
}

// UpdateTemplate replaces the definition of a template, keeping its usage count
func (s *PackageServiceImpl) UpdateTemplate(ctx context.Context, id primitive.ObjectID, input *models.PackageTemplate) (*models.PackageTemplate, error) {
	if err := s.prepare(input); err != nil {
		return nil, err
	}
	existing, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Name = input.Name
	existing.Type = input.Type
	existing.Description = input.Description
	existing.Contents = input.Contents
	existing.TotalWeight = input.TotalWeight
	existing.EstimatedCost = input.EstimatedCost
	if input.Status != "" {
		existing.Status = input.Status
	}
	existing.UpdatedAt = s.now()
	if err := s.templates.Update(ctx, existing); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("failed to update package template: %w", err)
	}
	return existing, nil
}

func (s *PackageServiceImpl) prepare(t *models.PackageTemplate) error {
	t.Name = strings.TrimSpace(t.Name)
	if err := s.validate.Struct(t); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if t.EstimatedCost.IsNegative() {
		return fmt.Errorf("%w: estimatedCost must not be negative", ErrValidation)
	}
	for i := range t.Contents {
		if t.Contents[i].ID == "" {
			t.Contents[i].ID = uuid.NewString()
		}
	}
	t.TotalWeight = TotalWeight(t.Contents)
	return nil
}

// DeleteTemplate removes a template
func (s *PackageServiceImpl) DeleteTemplate(ctx context.Context, id primitive.ObjectID) error {
	err := s.templates.Delete(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrPackageNotFound
	}
	return err
}

// NewTrackingNumber returns "SEND-<YYYYMMDD>-<8 hex>" for the given day
func NewTrackingNumber(day string) string {
	return fmt.Sprintf("SEND-%s-%s", day, strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Dispatch records an individual package send, counts it on the template
// and the beneficiary, then notifies the beneficiary by SMS
func (s *PackageServiceImpl) Dispatch(ctx context.Context, input *DispatchInput, createdBy string) (*models.PackageDispatch, error) {
	if input.Priority == "" {
		input.Priority = "normal"
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var (
		dispatch    *models.PackageDispatch
		beneficiary *models.Beneficiary
	)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		b, err := s.beneficiaries.FindByID(ctx, input.BeneficiaryID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrBeneficiaryNotFound
			}
			return err
		}
		t, err := s.templates.FindByID(ctx, input.TemplateID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrPackageNotFound
			}
			return err
		}
		if t.Status != models.PackageStatusActive {
			return ErrPackageInactive
		}

		now := s.now()
		d := &models.PackageDispatch{
			TrackingNumber: NewTrackingNumber(now.Format("20060102")),
			BeneficiaryID:  b.ID,
			TemplateID:     t.ID,
			TemplateName:   t.Name,
			Reason:         input.Reason,
			Priority:       input.Priority,
			Notes:          input.Notes,
			EstimatedCost:  t.EstimatedCost,
			Status:         models.DispatchStatusPending,
			CreatedBy:      createdBy,
			CreatedAt:      now,
		}
		if err := s.dispatches.Create(ctx, d); err != nil {
			return fmt.Errorf("failed to create dispatch: %w", err)
		}
		if err := s.templates.IncrementUsage(ctx, t.ID); err != nil {
			return fmt.Errorf("failed to count template usage: %w", err)
		}
		if err := s.beneficiaries.RecordPackage(ctx, b.ID, now); err != nil {
			return fmt.Errorf("failed to record package on beneficiary: %w", err)
		}
		dispatch, beneficiary = d, b
		return nil
	})
	if err != nil {
		return nil, err
	}

	log := logger.WithContext(ctx, s.log).WithFields(logrus.Fields{
		"beneficiary_id":  beneficiary.ID.Hex(),
		"tracking_number": dispatch.TrackingNumber,
	})
	log.Info("Package dispatched")

	if s.notifier != nil && beneficiary.Phone != "" {
		id := beneficiary.ID
		if _, err := s.notifier.SendSMS(ctx, &OutgoingSMS{
			Phone:         beneficiary.Phone,
			Content:       fmt.Sprintf(dispatchMessage, beneficiary.Name, dispatch.TemplateName, dispatch.TrackingNumber),
			Type:          NotificationTypeDispatch,
			BeneficiaryID: &id,
		}); err != nil {
			log.WithError(err).Warn("Failed to notify beneficiary of dispatch")
		}
	}
	return dispatch, nil
}

// ListDispatches returns individual sends, newest first
func (s *PackageServiceImpl) ListDispatches(ctx context.Context, beneficiaryID *primitive.ObjectID) ([]*models.PackageDispatch, error) {
	return s.dispatches.FindAll(ctx, beneficiaryID)
}

// Reasons returns the selectable dispatch reasons
func (s *PackageServiceImpl) Reasons() []models.DispatchReason {
	return append([]models.DispatchReason(nil), dispatchReasons...)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ MessageTemplateService = (*MessageTemplateServiceImpl)(nil)

var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// DefaultMessageTemplates are seeded into an empty template store
var DefaultMessageTemplates = []models.MessageTemplate{
	{
		Name:     "تأكيد استلام الطرد",
		Content:  "عزيزي {name}، تم تأكيد استلام طردكم رقم {package_id}. شكراً لكم.",
		Category: "delivery",
	},
	{
		Name:     "إشعار بموعد التسليم",
		Content:  "عزيزي {name}، سيتم تسليم طردكم {date} بين الساعة {time}. يرجى التواجد.",
		Category: "schedule",
	},
	{
		Name:     "طلب تحديث العنوان",
		Content:  "عزيزي {name}، يرجى تحديث عنوانكم للتمكن من تسليم الطرد. اتصلوا بنا على {contact}.",
		Category: "address",
	},
	{
		Name:     "الطرد جاهز للاستلام",
		Content:  "عزيزي {name}، طردكم جاهز للاستلام من {location}. ساعات العمل: {hours}.",
		Category: "delivery",
	},
	{
		Name:     "فشل في التسليم",
		Content:  "عزيزي {name}، لم نتمكن من تسليم طردكم. السبب: {reason}. يرجى التواصل معنا.",
		Category: "delivery",
	},
}

// MessageTemplateServiceImpl implements MessageTemplateService
type MessageTemplateServiceImpl struct {
	repo     repositories.MessageTemplateRepository
	validate *validator.Validate
	log      logrus.FieldLogger
	now      Clock
}

// NewMessageTemplateService creates a new MessageTemplateService
func NewMessageTemplateService(repo repositories.MessageTemplateRepository, log logrus.FieldLogger) *MessageTemplateServiceImpl {
	return &MessageTemplateServiceImpl{
		repo:     repo,
		validate: validator.New(),
		log:      log,
		now:      utcNow,
	}
}

// ExtractVariables returns the distinct {name} placeholders of content in
// order of first appearance
func ExtractVariables(content string) []string {
	seen := make(map[string]bool)
	vars := []string{}
	for _, m := range placeholderPattern.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			vars = append(vars, m[1])
		}
	}
	return vars
}

// Render substitutes known variables. Unknown placeholders are left as they are.
func Render(content string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(content, func(m string) string {
		if v, ok := vars[m[1:len(m)-1]]; ok {
			return v
		}
		return m
	})
}

// List returns active templates, newest first
func (s *MessageTemplateServiceImpl) List(ctx context.Context, category string) ([]*models.MessageTemplate, error) {
	if category == "all" {
		category = ""
	}
	return s.repo.FindActive(ctx, category)
}

// Get returns one template, active or not
func (s *MessageTemplateServiceImpl) Get(ctx context.Context, id primitive.ObjectID) (*models.MessageTemplate, error) {
	t, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrTemplateNotFound
	}
	return t, err
}

// Create stores a new active template
func (s *MessageTemplateServiceImpl) Create(ctx context.Context, template *models.MessageTemplate, createdBy string) (*models.MessageTemplate, error) {
	template.Name = strings.TrimSpace(template.Name)
	if err := s.validate.Struct(template); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	now := s.now()
	template.ID = primitive.NilObjectID
	template.Variables = ExtractVariables(template.Content)
	template.IsActive = true
	template.UsageCount = 0
	template.CreatedBy = createdBy
	template.CreatedAt = now
	template.UpdatedAt = now
	if err := s.repo.Create(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to create message template: %w", err)
	}
	return template, nil
}

// Update replaces name, content and category of a template
func (s *MessageTemplateServiceImpl) Update(ctx context.Context, id primitive.ObjectID, input *models.MessageTemplate, updatedBy string) (*models.MessageTemplate, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Name = strings.TrimSpace(input.Name)
	existing.Content = input.Content
	existing.Category = input.Category
	existing.Variables = ExtractVariables(input.Content)
	existing.UpdatedBy = updatedBy
	existing.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, existing); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to update message template: %w", err)
	}
	return existing, nil
}

// Delete deactivates a template; sent notifications keep referring to it
func (s *MessageTemplateServiceImpl) Delete(ctx context.Context, id primitive.ObjectID, deletedBy string) error {
	err := s.repo.Deactivate(ctx, id, deletedBy)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrTemplateNotFound
	}
	return err
}

// IncrementUsage bumps the usage counter
func (s *MessageTemplateServiceImpl) IncrementUsage(ctx context.Context, id primitive.ObjectID) error {
	err := s.repo.IncrementUsage(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrTemplateNotFound
	}
	return err
}

// SeedDefaults inserts DefaultMessageTemplates when no template exists yet
// and reports how many were created
func (s *MessageTemplateServiceImpl) SeedDefaults(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	for i := range DefaultMessageTemplates {
		t := DefaultMessageTemplates[i]
		if _, err := s.Create(ctx, &t, "system"); err != nil {
			return i, err
		}
	}
	s.log.WithField("count", len(DefaultMessageTemplates)).Info("Seeded default message templates")
	return len(DefaultMessageTemplates), nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/monitoring"
	"github.com/ArowuTest/aidhub-backend/internal/repositories"
	"github.com/ArowuTest/aidhub-backend/pkg/logger"
	"github.com/ArowuTest/aidhub-backend/pkg/smsgateway"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/time/rate"
)

var _ NotificationService = (*NotificationServiceImpl)(nil)

// Notification types
const (
	NotificationTypeGeneral  = "GENERAL"
	NotificationTypeBulk     = "BULK"
	NotificationTypeTemplate = "TEMPLATE"
	NotificationTypeDispatch = "DISPATCH"
	NotificationTypeIdentity = "IDENTITY"
)

// fallbackOrder is the order remaining gateways are tried in when the
// selected one fails
var fallbackOrder = []string{models.GatewayTweetSMS, models.GatewayTwilio, models.GatewaySNS, models.GatewayMock}

// OutgoingSMS is a single message to send
type OutgoingSMS struct {
	Phone         string              `json:"phone" binding:"required"`
	Content       string              `json:"content" binding:"required"`
	Type          string              `json:"type"`
	BeneficiaryID *primitive.ObjectID `json:"beneficiaryId,omitempty"`
	TemplateID    *primitive.ObjectID `json:"-"`
}

// BulkResult summarises a bulk send
type BulkResult struct {
	Total   int              `json:"total"`
	Sent    int              `json:"sent"`
	Failed  int              `json:"failed"`
	Results []BulkItemResult `json:"results"`
}

// BulkItemResult is the outcome for one recipient of a bulk send
type BulkItemResult struct {
	Phone     string `json:"phone"`
	Status    string `json:"status"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// NotificationServiceImpl sends SMS through the configured gateway and
// keeps a log of every attempt
type NotificationServiceImpl struct {
	gateways      Gateways
	settingsRepo  repositories.SystemSettingsRepository
	smsSettings   repositories.SMSSettingsRepository
	notifications repositories.NotificationRepository
	templates     MessageTemplateService
	limiter       *rate.Limiter
	log           logrus.FieldLogger
	now           Clock
}

// NewNotificationService creates a new NotificationService. Gateways that
// are not configured are simply absent from gateways.
func NewNotificationService(
	gateways Gateways,
	settingsRepo repositories.SystemSettingsRepository,
	smsSettings repositories.SMSSettingsRepository,
	notifications repositories.NotificationRepository,
	templates MessageTemplateService,
	limiter *rate.Limiter,
	log logrus.FieldLogger,
) *NotificationServiceImpl {
	return &NotificationServiceImpl{
		gateways:      gateways,
		settingsRepo:  settingsRepo,
		smsSettings:   smsSettings,
		notifications: notifications,
		templates:     templates,
		limiter:       limiter,
		log:           log,
		now:           utcNow,
	}
}

// TweetSMSCredentials reads the active SMS settings row on every call
func TweetSMSCredentials(repo repositories.SMSSettingsRepository) smsgateway.CredentialsFunc {
	return func(ctx context.Context) (smsgateway.TweetSMSCredentials, error) {
		s, err := repo.FindActive(ctx)
		if errors.Is(err, repositories.ErrNotFound) {
			return smsgateway.TweetSMSCredentials{}, smsgateway.ErrNotConfigured
		}
		if err != nil {
			return smsgateway.TweetSMSCredentials{}, err
		}
		return smsgateway.TweetSMSCredentials{APIKey: s.APIKey, SenderName: s.SenderName}, nil
	}
}

// candidates returns the gateways to try, selected one first
func (s *NotificationServiceImpl) candidates(ctx context.Context) ([]string, error) {
	settings, err := s.settingsRepo.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get system settings: %w", err)
	}
	var names []string
	if _, ok := s.gateways[settings.SMSGateway]; ok {
		names = append(names, settings.SMSGateway)
	}
	for _, name := range fallbackOrder {
		if _, ok := s.gateways[name]; ok && name != settings.SMSGateway {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, ErrSMSNotConfigured
	}
	return names, nil
}

// SendSMS sends one message, falling back through the remaining gateways
// when the selected one fails. Each attempt is stored as a notification;
// the last one is returned.
func (s *NotificationServiceImpl) SendSMS(ctx context.Context, msg *OutgoingSMS) (*models.Notification, error) {
	phone := strings.TrimSpace(msg.Phone)
	if phone == "" || strings.TrimSpace(msg.Content) == "" {
		return nil, fmt.Errorf("%w: phone and content are required", ErrValidation)
	}
	names, err := s.candidates(ctx)
	if err != nil {
		return nil, err
	}
	msgType := msg.Type
	if msgType == "" {
		msgType = NotificationTypeGeneral
	}
	log := logger.WithContext(ctx, s.log).WithField("phone", phone)

	var (
		notification *models.Notification
		sendErr      error
	)
	for _, name := range names {
		now := s.now()
		notification = &models.Notification{
			Phone:         phone,
			Content:       msg.Content,
			Type:          msgType,
			BeneficiaryID: msg.BeneficiaryID,
			TemplateID:    msg.TemplateID,
			Gateway:       name,
			Status:        models.NotificationPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		var messageID string
		messageID, sendErr = s.gateways[name].SendSMS(ctx, phone, msg.Content)
		if sendErr == nil {
			notification.MessageID = messageID
			notification.Status = models.NotificationSent
			notification.SentDate = now
		} else {
			notification.Status = models.NotificationFailed
			notification.StatusMessage = sendErr.Error()
		}
		monitoring.SMSMessagesTotal.WithLabelValues(name, notification.Status).Inc()

		if err := s.notifications.Create(ctx, notification); err != nil {
			log.WithError(err).Error("Failed to store notification")
		}
		if sendErr == nil {
			log.WithFields(logrus.Fields{"gateway": name, "message_id": messageID}).Info("SMS sent")
			return notification, nil
		}
		log.WithError(sendErr).WithField("gateway", name).Warn("SMS gateway failed")
		if ctx.Err() != nil {
			break
		}
	}
	return notification, fmt.Errorf("all sms gateways failed: %w", sendErr)
}

// SendBulk sends content to every phone, paced by the rate limiter.
// Cancelling ctx stops the loop; recipients not reached are not counted.
func (s *NotificationServiceImpl) SendBulk(ctx context.Context, phones []string, content string) (*BulkResult, error) {
	if len(phones) == 0 {
		return nil, fmt.Errorf("%w: at least one recipient is required", ErrValidation)
	}
	result := &BulkResult{Total: len(phones), Results: make([]BulkItemResult, 0, len(phones))}
	for _, phone := range phones {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return result, err
		}
		n, err := s.SendSMS(ctx, &OutgoingSMS{Phone: phone, Content: content, Type: NotificationTypeBulk})
		item := BulkItemResult{Phone: phone}
		if err != nil {
			if errors.Is(err, ErrSMSNotConfigured) {
				return result, err
			}
			result.Failed++
			item.Status = models.NotificationFailed
			item.Error = err.Error()
		} else {
			result.Sent++
			item.Status = n.Status
			item.MessageID = n.MessageID
		}
		result.Results = append(result.Results, item)
	}
	s.log.WithFields(logrus.Fields{"total": result.Total, "sent": result.Sent, "failed": result.Failed}).Info("Bulk SMS finished")
	return result, nil
}

// SendTemplate renders an active template for one recipient and sends it
func (s *NotificationServiceImpl) SendTemplate(ctx context.Context, templateID primitive.ObjectID, phone string, vars map[string]string) (*models.Notification, error) {
	t, err := s.templates.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !t.IsActive {
		return nil, ErrTemplateInactive
	}
	n, err := s.SendSMS(ctx, &OutgoingSMS{
		Phone:      phone,
		Content:    Render(t.Content, vars),
		Type:       NotificationTypeTemplate,
		TemplateID: &templateID,
	})
	if err != nil {
		return n, err
	}
	if err := s.templates.IncrementUsage(ctx, templateID); err != nil {
		s.log.WithError(err).WithField("template_id", templateID.Hex()).Warn("Failed to count template usage")
	}
	return n, nil
}

// CheckBalance asks the selected gateway for its balance and stores the
// result on the active SMS settings
func (s *NotificationServiceImpl) CheckBalance(ctx context.Context) (decimal.Decimal, error) {
	names, err := s.candidates(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	checker, ok := s.gateways[names[0]].(smsgateway.BalanceChecker)
	if !ok {
		return decimal.Zero, ErrBalanceUnsupported
	}
	balance, err := checker.CheckBalance(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	settings, err := s.smsSettings.FindActive(ctx)
	switch {
	case err == nil:
		if err := s.smsSettings.UpdateBalance(ctx, settings.ID, balance, s.now()); err != nil {
			s.log.WithError(err).Warn("Failed to store sms balance")
		}
	case !errors.Is(err, repositories.ErrNotFound):
		s.log.WithError(err).Warn("Failed to load sms settings")
	}
	return balance, nil
}

// DeliveryStatus refreshes the status of a sent notification from its gateway
func (s *NotificationServiceImpl) DeliveryStatus(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	n, err := s.notifications.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	gw, ok := s.gateways[n.Gateway]
	if !ok || n.MessageID == "" {
		return n, nil
	}
	status, err := gw.GetDeliveryStatus(ctx, n.MessageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery status: %w", err)
	}
	if status != smsgateway.StatusUnknown && status != n.StatusMessage {
		if err := s.notifications.UpdateStatus(ctx, id, n.Status, status); err != nil {
			return nil, err
		}
		n.StatusMessage = status
	}
	return n, nil
}

// Notifications lists the SMS log by phone, by status, or all of it
func (s *NotificationServiceImpl) Notifications(ctx context.Context, phone, status string, page, limit int) ([]*models.Notification, error) {
	switch {
	case phone != "":
		return s.notifications.FindByPhone(ctx, phone, page, limit)
	case status != "":
		return s.notifications.FindByStatus(ctx, strings.ToUpper(status), page, limit)
	default:
		return s.notifications.FindAll(ctx, page, limit)
	}
}

// GetSMSSettings returns the active SMS settings
func (s *NotificationServiceImpl) GetSMSSettings(ctx context.Context) (*models.SMSSettings, error) {
	settings, err := s.smsSettings.FindActive(ctx)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrSMSNotConfigured
	}
	return settings, err
}

// SaveSMSSettings replaces the active SMS settings
func (s *NotificationServiceImpl) SaveSMSSettings(ctx context.Context, apiKey, senderName, savedBy string) (*models.SMSSettings, error) {
	apiKey = strings.TrimSpace(apiKey)
	senderName = strings.TrimSpace(senderName)
	if apiKey == "" || senderName == "" {
		return nil, fmt.Errorf("%w: apiKey and senderName are required", ErrValidation)
	}
	now := s.now()
	settings := &models.SMSSettings{
		APIKey:     apiKey,
		SenderName: senderName,
		IsActive:   true,
		CreatedBy:  savedBy,
		UpdatedBy:  savedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.smsSettings.Save(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save sms settings: %w", err)
	}
	s.log.WithField("sender", senderName).Info("SMS settings updated")
	return settings, nil
}

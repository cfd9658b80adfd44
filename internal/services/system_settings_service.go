package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/repositories"
)

var _ SystemSettingsService = (*SystemSettingsServiceImpl)(nil)

// SystemSettingsServiceImpl implements SystemSettingsService
type SystemSettingsServiceImpl struct {
	settingsRepo repositories.SystemSettingsRepository
	now          Clock
}

// NewSystemSettingsService creates a new SystemSettingsService
func NewSystemSettingsService(settingsRepo repositories.SystemSettingsRepository) *SystemSettingsServiceImpl {
	return &SystemSettingsServiceImpl{
		settingsRepo: settingsRepo,
		now:          utcNow,
	}
}

// ValidGateway reports whether name is a known gateway identifier
func ValidGateway(name string) bool {
	switch name {
	case models.GatewayTweetSMS, models.GatewayTwilio, models.GatewaySNS, models.GatewayMock:
		return true
	}
	return false
}

// GetSettings retrieves the current system settings
func (s *SystemSettingsServiceImpl) GetSettings(ctx context.Context) (*models.SystemSettings, error) {
	return s.settingsRepo.GetSettings(ctx)
}

// UpdateSettings updates all system settings
func (s *SystemSettingsServiceImpl) UpdateSettings(ctx context.Context, settings *models.SystemSettings) error {
	settings.SMSGateway = strings.ToUpper(settings.SMSGateway)
	if !ValidGateway(settings.SMSGateway) {
		return fmt.Errorf("%w: unknown sms gateway %q", ErrValidation, settings.SMSGateway)
	}
	settings.UpdatedAt = s.now()
	return s.settingsRepo.UpdateSettings(ctx, settings)
}

// UpdateSMSGateway updates only the SMS gateway setting
func (s *SystemSettingsServiceImpl) UpdateSMSGateway(ctx context.Context, gateway string, updatedBy string) error {
	gateway = strings.ToUpper(gateway)
	if !ValidGateway(gateway) {
		return fmt.Errorf("%w: unknown sms gateway %q", ErrValidation, gateway)
	}
	return s.settingsRepo.UpdateSMSGateway(ctx, gateway, updatedBy)
}

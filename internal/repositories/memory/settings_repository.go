package memory

import (
	"context"
	"time"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/repositories"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ repositories.SMSSettingsRepository    = (*SMSSettingsRepository)(nil)
	_ repositories.SystemSettingsRepository = (*SystemSettingsRepository)(nil)
)

// SMSSettingsRepository is the in-memory SMS credential store
type SMSSettingsRepository struct {
	store *Store
}

// NewSMSSettingsRepository creates a new SMSSettingsRepository
func NewSMSSettingsRepository(store *Store) *SMSSettingsRepository {
	return &SMSSettingsRepository{store: store}
}

// FindActive returns the active settings row
func (r *SMSSettingsRepository) FindActive(ctx context.Context) (*models.SMSSettings, error) {
	var out *models.SMSSettings
	err := r.store.do(ctx, func(d *data) error {
		d.smsSettings.each(func(_ primitive.ObjectID, v models.SMSSettings) bool {
			if v.IsActive {
				out = &v
			}
			return true
		})
		if out == nil {
			return repositories.ErrNotFound
		}
		return nil
	})
	return out, err
}

// Save deactivates the current row and stores settings as the active one
func (r *SMSSettingsRepository) Save(ctx context.Context, s *models.SMSSettings) error {
	return r.store.do(ctx, func(d *data) error {
		var active []primitive.ObjectID
		d.smsSettings.each(func(id primitive.ObjectID, v models.SMSSettings) bool {
			if v.IsActive {
				active = append(active, id)
			}
			return true
		})
		now := time.Now().UTC()
		for _, id := range active {
			v, _ := d.smsSettings.get(id)
			v.IsActive = false
			v.UpdatedAt = now
			d.smsSettings.put(id, v)
		}
		s.ID = primitive.NewObjectID()
		s.IsActive = true
		s.CreatedAt = now
		s.UpdatedAt = now
		d.smsSettings.put(s.ID, *s)
		return nil
	})
}

// UpdateBalance stores the last checked balance
func (r *SMSSettingsRepository) UpdateBalance(ctx context.Context, id primitive.ObjectID, amount decimal.Decimal, at time.Time) error {
	return r.store.do(ctx, func(d *data) error {
		v, ok := d.smsSettings.get(id)
		if !ok {
			return repositories.ErrNotFound
		}
		v.LastBalanceAmount = &amount
		v.LastBalanceCheck = &at
		v.UpdatedAt = time.Now().UTC()
		d.smsSettings.put(id, v)
		return nil
	})
}

// SystemSettingsRepository is the in-memory system settings document
type SystemSettingsRepository struct {
	store          *Store
	defaultGateway string
}

// NewSystemSettingsRepository creates a new SystemSettingsRepository. The
// default gateway is used when no settings have been stored yet.
func NewSystemSettingsRepository(store *Store, defaultGateway string) *SystemSettingsRepository {
	return &SystemSettingsRepository{store: store, defaultGateway: defaultGateway}
}

// GetSettings retrieves the current system settings, creating defaults on first use
func (r *SystemSettingsRepository) GetSettings(ctx context.Context) (*models.SystemSettings, error) {
	var out models.SystemSettings
	err := r.store.do(ctx, func(d *data) error {
		if d.settings == nil {
			now := time.Now().UTC()
			d.settings = &models.SystemSettings{
				ID:         primitive.NewObjectID(),
				SMSGateway: r.defaultGateway,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
		}
		out = *d.settings
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSettings updates all system settings
func (r *SystemSettingsRepository) UpdateSettings(ctx context.Context, settings *models.SystemSettings) error {
	return r.store.do(ctx, func(d *data) error {
		settings.UpdatedAt = time.Now().UTC()
		if d.settings != nil {
			settings.ID = d.settings.ID
			settings.CreatedAt = d.settings.CreatedAt
		}
		s := *settings
		d.settings = &s
		return nil
	})
}

// UpdateSMSGateway updates only the SMS gateway setting
func (r *SystemSettingsRepository) UpdateSMSGateway(ctx context.Context, gateway string, updatedBy string) error {
	if _, err := r.GetSettings(ctx); err != nil {
		return err
	}
	return r.store.do(ctx, func(d *data) error {
		d.settings.SMSGateway = gateway
		d.settings.UpdatedBy = updatedBy
		d.settings.UpdatedAt = time.Now().UTC()
		return nil
	})
}

package memory

import (
	"context"
	"sort"
	"time"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ repositories.MessageTemplateRepository = (*MessageTemplateRepository)(nil)
	_ repositories.NotificationRepository    = (*NotificationRepository)(nil)
)

// MessageTemplateRepository is the in-memory SMS template store
type MessageTemplateRepository struct {
	store *Store
}

// NewMessageTemplateRepository creates a new MessageTemplateRepository
func NewMessageTemplateRepository(store *Store) *MessageTemplateRepository {
	return &MessageTemplateRepository{store: store}
}

// Create inserts a new template
func (r *MessageTemplateRepository) Create(ctx context.Context, t *models.MessageTemplate) error {
	return r.store.do(ctx, func(d *data) error {
		if t.ID.IsZero() {
			t.ID = primitive.NewObjectID()
		}
		now := time.Now().UTC()
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		t.UpdatedAt = now
		t.Variables = append([]string(nil), t.Variables...)
		d.messageTemplates.put(t.ID, *t)
		return nil
	})
}

// FindByID finds a template by ID
func (r *MessageTemplateRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.MessageTemplate, error) {
	var out *models.MessageTemplate
	err := r.store.do(ctx, func(d *data) error {
		v, ok := d.messageTemplates.get(id)
		if !ok {
			return repositories.ErrNotFound
		}
		out = &v
		return nil
	})
	return out, err
}

// FindActive returns active templates newest first, for one category when given
func (r *MessageTemplateRepository) FindActive(ctx context.Context, category string) ([]*models.MessageTemplate, error) {
	var out []*models.MessageTemplate
	err := r.store.do(ctx, func(d *data) error {
		d.messageTemplates.each(func(_ primitive.ObjectID, v models.MessageTemplate) bool {
			if v.IsActive && (category == "" || v.Category == category) {
				out = append(out, &v)
			}
			return true
		})
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, err
}

// Update replaces an existing template
func (r *MessageTemplateRepository) Update(ctx context.Context, t *models.MessageTemplate) error {
	return r.store.do(ctx, func(d *data) error {
		if _, ok := d.messageTemplates.get(t.ID); !ok {
			return repositories.ErrNotFound
		}
		t.UpdatedAt = time.Now().UTC()
		t.Variables = append([]string(nil), t.Variables...)
		d.messageTemplates.put(t.ID, *t)
		return nil
	})
}

// Deactivate soft-deletes a template
func (r *MessageTemplateRepository) Deactivate(ctx context.Context, id primitive.ObjectID, updatedBy string) error {
	return r.store.do(ctx, func(d *data) error {
		v, ok := d.messageTemplates.get(id)
		if !ok {
			return repositories.ErrNotFound
		}
		v.IsActive = false
		v.UpdatedBy = updatedBy
		v.UpdatedAt = time.Now().UTC()
		d.messageTemplates.put(id, v)
		return nil
	})
}

// IncrementUsage bumps the template's usage counter
func (r *MessageTemplateRepository) IncrementUsage(ctx context.Context, id primitive.ObjectID) error {
	return r.store.do(ctx, func(d *data) error {
		v, ok := d.messageTemplates.get(id)
		if !ok {
			return repositories.ErrNotFound
		}
		v.UsageCount++
		d.messageTemplates.put(id, v)
		return nil
	})
}

// Count counts all templates, active or not
func (r *MessageTemplateRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.store.do(ctx, func(d *data) error {
		n = int64(d.messageTemplates.len())
		return nil
	})
	return n, err
}

// NotificationRepository is the in-memory SMS log
type NotificationRepository struct {
	store *Store
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(store *Store) *NotificationRepository {
	return &NotificationRepository{store: store}
}

// Create inserts a new notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.store.do(ctx, func(d *data) error {
		if n.ID.IsZero() {
			n.ID = primitive.NewObjectID()
		}
		now := time.Now().UTC()
		n.CreatedAt = now
		n.UpdatedAt = now
		d.notifications.put(n.ID, *n)
		return nil
	})
}

// FindByID finds a notification by ID
func (r *NotificationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	var out *models.Notification
	err := r.store.do(ctx, func(d *data) error {
		v, ok := d.notifications.get(id)
		if !ok {
			return repositories.ErrNotFound
		}
		out = &v
		return nil
	})
	return out, err
}

// FindByPhone finds notifications sent to phone, newest first
func (r *NotificationRepository) FindByPhone(ctx context.Context, phone string, page, limit int) ([]*models.Notification, error) {
	return r.find(ctx, page, limit, func(n models.Notification) bool { return n.Phone == phone })
}

// FindByStatus finds notifications in status, newest first
func (r *NotificationRepository) FindByStatus(ctx context.Context, status string, page, limit int) ([]*models.Notification, error) {
	return r.find(ctx, page, limit, func(n models.Notification) bool { return n.Status == status })
}

// FindAll returns a page of notifications, newest first
func (r *NotificationRepository) FindAll(ctx context.Context, page, limit int) ([]*models.Notification, error) {
	return r.find(ctx, page, limit, func(models.Notification) bool { return true })
}

// UpdateStatus updates the delivery status of a notification
func (r *NotificationRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, statusMessage string) error {
	return r.store.do(ctx, func(d *data) error {
		v, ok := d.notifications.get(id)
		if !ok {
			return repositories.ErrNotFound
		}
		v.Status = status
		v.StatusMessage = statusMessage
		v.UpdatedAt = time.Now().UTC()
		d.notifications.put(id, v)
		return nil
	})
}

// Count counts all notifications
func (r *NotificationRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.store.do(ctx, func(d *data) error {
		n = int64(d.notifications.len())
		return nil
	})
	return n, err
}

func (r *NotificationRepository) find(ctx context.Context, page, limit int, match func(models.Notification) bool) ([]*models.Notification, error) {
	var out []*models.Notification
	err := r.store.do(ctx, func(d *data) error {
		d.notifications.each(func(_ primitive.ObjectID, v models.Notification) bool {
			if match(v) {
				out = append(out, &v)
			}
			return true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentDate.After(out[j].SentDate) })
	return paginate(out, page, limit), nil
}

package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var _ repositories.NotificationRepository = (*NotificationRepository)(nil)

// NotificationRepository implements the repositories.NotificationRepository interface
type NotificationRepository struct {
	collection *mongo.Collection
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection(notificationsCollection),
	}
}

// Create creates a new notification
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	notification.CreatedAt = time.Now().UTC()
	notification.UpdatedAt = notification.CreatedAt
	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

// FindByID finds a notification by ID
func (r *NotificationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	var notification models.Notification
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&notification); err != nil {
		return nil, translate(err)
	}
	return &notification, nil
}

// FindByPhone finds notifications by phone with pagination
func (r *NotificationRepository) FindByPhone(ctx context.Context, phone string, page, limit int) ([]*models.Notification, error) {
	return r.find(ctx, bson.M{"phone": phone}, page, limit)
}

// FindByStatus finds notifications by status with pagination
func (r *NotificationRepository) FindByStatus(ctx context.Context, status string, page, limit int) ([]*models.Notification, error) {
	return r.find(ctx, bson.M{"status": status}, page, limit)
}

// FindAll finds all notifications with pagination
func (r *NotificationRepository) FindAll(ctx context.Context, page, limit int) ([]*models.Notification, error) {
	return r.find(ctx, bson.M{}, page, limit)
}

// UpdateStatus updates the status of a notification
func (r *NotificationRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, statusMessage string) error {
	update := bson.M{
		"$set": bson.M{
			"status":        status,
			"statusMessage": statusMessage,
			"updatedAt":     time.Now().UTC(),
		},
	}
	return matched(r.collection.UpdateOne(ctx, bson.M{"_id": id}, update))
}

// Count counts all notifications
func (r *NotificationRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *NotificationRepository) find(ctx context.Context, filter bson.M, page, limit int) ([]*models.Notification, error) {
	opts := pageOptions(page, limit).SetSort(bson.M{"sentDate": -1}) // Sort by sent date descending

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []*models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

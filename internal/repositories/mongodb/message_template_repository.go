package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.MessageTemplateRepository = (*MessageTemplateRepository)(nil)

// MessageTemplateRepository implements the repositories.MessageTemplateRepository interface
type MessageTemplateRepository struct {
	collection *mongo.Collection
}

// NewMessageTemplateRepository creates a new MessageTemplateRepository
func NewMessageTemplateRepository(db *mongo.Database) *MessageTemplateRepository {
	return &MessageTemplateRepository{
		collection: db.Collection(messageTemplatesCollection),
	}
}

// Create creates a new template
func (r *MessageTemplateRepository) Create(ctx context.Context, template *models.MessageTemplate) error {
	if template.ID.IsZero() {
		template.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if template.CreatedAt.IsZero() {
		template.CreatedAt = now
	}
	template.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, template)
	return translate(err)
}

// FindByID finds a template by ID
func (r *MessageTemplateRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.MessageTemplate, error) {
	var template models.MessageTemplate
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&template); err != nil {
		return nil, translate(err)
	}
	return &template, nil
}

// FindActive finds active templates, newest first
func (r *MessageTemplateRepository) FindActive(ctx context.Context, category string) ([]*models.MessageTemplate, error) {
	filter := bson.M{"isActive": true}
	if category != "" {
		filter["category"] = category
	}
	opts := options.Find().SetSort(bson.M{"createdAt": -1}) // Newest first

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	templates := []*models.MessageTemplate{}
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// Update updates a template
func (r *MessageTemplateRepository) Update(ctx context.Context, template *models.MessageTemplate) error {
	template.UpdatedAt = time.Now().UTC()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": template.ID}, template)
	return matched(res, err)
}

// Deactivate soft-deletes a template
func (r *MessageTemplateRepository) Deactivate(ctx context.Context, id primitive.ObjectID, updatedBy string) error {
	update := bson.M{"$set": bson.M{
		"isActive":  false,
		"updatedBy": updatedBy,
		"updatedAt": time.Now().UTC(),
	}}
	return matched(r.collection.UpdateOne(ctx, bson.M{"_id": id}, update))
}

// IncrementUsage bumps the template's usage counter
func (r *MessageTemplateRepository) IncrementUsage(ctx context.Context, id primitive.ObjectID) error {
	return matched(r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"usageCount": 1}}))
}

// Count counts all templates
func (r *MessageTemplateRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/repositories"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	_ repositories.SystemSettingsRepository = (*SystemSettingsRepository)(nil)
	_ repositories.SMSSettingsRepository    = (*SMSSettingsRepository)(nil)
)

// SystemSettingsRepository implements repositories.SystemSettingsRepository
type SystemSettingsRepository struct {
	collection     *mongo.Collection
	defaultGateway string
}

// NewSystemSettingsRepository creates a new SystemSettingsRepository
func NewSystemSettingsRepository(db *mongo.Database, defaultGateway string) *SystemSettingsRepository {
	return &SystemSettingsRepository{
		collection:     db.Collection(systemSettingsCollection),
		defaultGateway: defaultGateway,
	}
}

// GetSettings retrieves the current system settings
func (r *SystemSettingsRepository) GetSettings(ctx context.Context) (*models.SystemSettings, error) {
	var settings models.SystemSettings
	err := r.collection.FindOne(ctx, bson.M{}).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// If no settings exist, create default settings
		settings = models.SystemSettings{
			ID:         primitive.NewObjectID(),
			SMSGateway: r.defaultGateway,
			CreatedAt:  time.Now().UTC(),
			UpdatedAt:  time.Now().UTC(),
		}
		if _, err = r.collection.InsertOne(ctx, settings); err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSettings updates all system settings
func (r *SystemSettingsRepository) UpdateSettings(ctx context.Context, settings *models.SystemSettings) error {
	settings.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"smsGateway": settings.SMSGateway,
		"updatedBy":  settings.UpdatedBy,
		"updatedAt":  settings.UpdatedAt,
	}}
	_, err := r.collection.UpdateOne(ctx, bson.M{}, update, options.Update().SetUpsert(true))
	return err
}

// UpdateSMSGateway updates only the SMS gateway setting
func (r *SystemSettingsRepository) UpdateSMSGateway(ctx context.Context, gateway string, updatedBy string) error {
	update := bson.M{
		"$set": bson.M{
			"smsGateway": gateway,
			"updatedAt":  time.Now().UTC(),
			"updatedBy":  updatedBy,
		},
		"$setOnInsert": bson.M{"createdAt": time.Now().UTC()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{}, update, options.Update().SetUpsert(true))
	return err
}

// SMSSettingsRepository stores the SMS provider credentials
type SMSSettingsRepository struct {
	collection *mongo.Collection
	client     TxClient
}

// TxClient starts transactions; satisfied by *pkg/mongodb.Client
type TxClient interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// NewSMSSettingsRepository creates a new SMSSettingsRepository
func NewSMSSettingsRepository(db *mongo.Database, client TxClient) *SMSSettingsRepository {
	return &SMSSettingsRepository{
		collection: db.Collection(smsSettingsCollection),
		client:     client,
	}
}

// FindActive returns the active settings row
func (r *SMSSettingsRepository) FindActive(ctx context.Context) (*models.SMSSettings, error) {
	var settings models.SMSSettings
	opts := options.FindOne().SetSort(bson.M{"createdAt": -1})
	if err := r.collection.FindOne(ctx, bson.M{"isActive": true}, opts).Decode(&settings); err != nil {
		return nil, translate(err)
	}
	return &settings, nil
}

// Save deactivates the current row and inserts settings as the active one
func (r *SMSSettingsRepository) Save(ctx context.Context, settings *models.SMSSettings) error {
	return r.client.WithTransaction(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		if _, err := r.collection.UpdateMany(ctx,
			bson.M{"isActive": true},
			bson.M{"$set": bson.M{"isActive": false, "updatedAt": now}},
		); err != nil {
			return err
		}
		settings.ID = primitive.NewObjectID()
		settings.IsActive = true
		settings.CreatedAt = now
		settings.UpdatedAt = now
		_, err := r.collection.InsertOne(ctx, settings)
		return err
	})
}

// UpdateBalance stores the last checked balance
func (r *SMSSettingsRepository) UpdateBalance(ctx context.Context, id primitive.ObjectID, amount decimal.Decimal, at time.Time) error {
	update := bson.M{"$set": bson.M{
		"lastBalanceAmount": amount,
		"lastBalanceCheck":  at,
		"updatedAt":         time.Now().UTC(),
	}}
	return matched(r.collection.UpdateOne(ctx, bson.M{"_id": id}, update))
}

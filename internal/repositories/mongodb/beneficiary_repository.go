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

// Compile-time check to ensure BeneficiaryRepository implements the interface
var _ repositories.BeneficiaryRepository = (*BeneficiaryRepository)(nil)

// BeneficiaryRepository handles MongoDB operations for Beneficiary
type BeneficiaryRepository struct {
	collection *mongo.Collection
}

// NewBeneficiaryRepository creates a new BeneficiaryRepository
func NewBeneficiaryRepository(db *mongo.Database) *BeneficiaryRepository {
	return &BeneficiaryRepository{
		collection: db.Collection(beneficiariesCollection),
	}
}

// Create inserts a new beneficiary
func (r *BeneficiaryRepository) Create(ctx context.Context, b *models.Beneficiary) error {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, b)
	return translate(err)
}

// FindByID finds a beneficiary by ID
func (r *BeneficiaryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Beneficiary, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByNationalID finds a beneficiary by national ID
func (r *BeneficiaryRepository) FindByNationalID(ctx context.Context, nationalID string) (*models.Beneficiary, error) {
	return r.findOne(ctx, bson.M{"nationalId": nationalID})
}

// FindAll returns every beneficiary in insertion order
func (r *BeneficiaryRepository) FindAll(ctx context.Context) ([]*models.Beneficiary, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	beneficiaries := []*models.Beneficiary{}
	if err := cursor.All(ctx, &beneficiaries); err != nil {
		return nil, err
	}
	return beneficiaries, nil
}

// Update replaces an existing beneficiary
func (r *BeneficiaryRepository) Update(ctx context.Context, b *models.Beneficiary) error {
	b.UpdatedAt = time.Now().UTC()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": b.ID}, b)
	return matched(res, err)
}

// Delete removes a beneficiary
func (r *BeneficiaryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// RecordPackage bumps totalPackages and stamps lastReceived
func (r *BeneficiaryRepository) RecordPackage(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	update := bson.M{
		"$inc": bson.M{"totalPackages": 1},
		"$set": bson.M{"lastReceived": at, "updatedAt": time.Now().UTC()},
	}
	return matched(r.collection.UpdateOne(ctx, bson.M{"_id": id}, update))
}

// Count counts all beneficiaries
func (r *BeneficiaryRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *BeneficiaryRepository) findOne(ctx context.Context, filter bson.M) (*models.Beneficiary, error) {
	var b models.Beneficiary
	if err := r.collection.FindOne(ctx, filter).Decode(&b); err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

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

var (
	_ repositories.PackageTemplateRepository = (*PackageTemplateRepository)(nil)
	_ repositories.PackageDispatchRepository = (*PackageDispatchRepository)(nil)
)

// PackageTemplateRepository implements the repositories.PackageTemplateRepository interface
type PackageTemplateRepository struct {
	collection *mongo.Collection
}

// NewPackageTemplateRepository creates a new PackageTemplateRepository
func NewPackageTemplateRepository(db *mongo.Database) *PackageTemplateRepository {
	return &PackageTemplateRepository{
		collection: db.Collection(packageTemplatesCollection),
	}
}

// Create creates a new template
func (r *PackageTemplateRepository) Create(ctx context.Context, template *models.PackageTemplate) error {
	if template.ID.IsZero() {
		template.ID = primitive.NewObjectID()
	}
	template.CreatedAt = time.Now().UTC()
	template.UpdatedAt = template.CreatedAt
	_, err := r.collection.InsertOne(ctx, template)
	return translate(err)
}

// FindByID finds a template by ID
func (r *PackageTemplateRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PackageTemplate, error) {
	var template models.PackageTemplate
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&template); err != nil {
		return nil, translate(err)
	}
	return &template, nil
}

// FindAll finds templates, filtered on type and status when given
func (r *PackageTemplateRepository) FindAll(ctx context.Context, templateType, status string) ([]*models.PackageTemplate, error) {
	filter := bson.M{}
	if templateType != "" {
		filter["type"] = templateType
	}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.M{"name": 1}) // Sort by name ascending

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	templates := []*models.PackageTemplate{}
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// Update updates a template
func (r *PackageTemplateRepository) Update(ctx context.Context, template *models.PackageTemplate) error {
	template.UpdatedAt = time.Now().UTC()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": template.ID}, template)
	return matched(res, err)
}

// Delete deletes a template
func (r *PackageTemplateRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// IncrementUsage bumps the template's usage counter
func (r *PackageTemplateRepository) IncrementUsage(ctx context.Context, id primitive.ObjectID) error {
	return matched(r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"usageCount": 1}}))
}

// PackageDispatchRepository implements the repositories.PackageDispatchRepository interface
type PackageDispatchRepository struct {
	collection *mongo.Collection
}

// NewPackageDispatchRepository creates a new PackageDispatchRepository
func NewPackageDispatchRepository(db *mongo.Database) *PackageDispatchRepository {
	return &PackageDispatchRepository{
		collection: db.Collection(dispatchesCollection),
	}
}

// Create inserts a new dispatch
func (r *PackageDispatchRepository) Create(ctx context.Context, dispatch *models.PackageDispatch) error {
	if dispatch.ID.IsZero() {
		dispatch.ID = primitive.NewObjectID()
	}
	if dispatch.CreatedAt.IsZero() {
		dispatch.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, dispatch)
	return translate(err)
}

// FindAll returns dispatches newest first, for one beneficiary when given
func (r *PackageDispatchRepository) FindAll(ctx context.Context, beneficiaryID *primitive.ObjectID) ([]*models.PackageDispatch, error) {
	filter := bson.M{}
	if beneficiaryID != nil {
		filter["beneficiaryId"] = *beneficiaryID
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	dispatches := []*models.PackageDispatch{}
	if err := cursor.All(ctx, &dispatches); err != nil {
		return nil, err
	}
	return dispatches, nil
}

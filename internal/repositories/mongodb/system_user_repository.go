package mongodb

import (
	"context"
	"strings"
	"time"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/repositories"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure SystemUserRepository implements the interface
var _ repositories.SystemUserRepository = (*SystemUserRepository)(nil)

// SystemUserRepository handles MongoDB operations for SystemUser
type SystemUserRepository struct {
	collection *mongo.Collection
}

// NewSystemUserRepository creates a new SystemUserRepository
func NewSystemUserRepository(db *mongo.Database) *SystemUserRepository {
	return &SystemUserRepository{
		collection: db.Collection(systemUsersCollection),
	}
}

// Create inserts a new user
func (r *SystemUserRepository) Create(ctx context.Context, user *models.SystemUser) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	_, err := r.collection.InsertOne(ctx, user)
	return translate(err)
}

// FindByID finds a user by ID
func (r *SystemUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.SystemUser, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByEmail finds a user by email
func (r *SystemUserRepository) FindByEmail(ctx context.Context, email string) (*models.SystemUser, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

// FindAll retrieves all users
func (r *SystemUserRepository) FindAll(ctx context.Context) ([]*models.SystemUser, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []*models.SystemUser{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Update updates an existing user
func (r *SystemUserRepository) Update(ctx context.Context, user *models.SystemUser) error {
	user.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":      user.Name,
		"email":     strings.ToLower(user.Email),
		"phone":     user.Phone,
		"role":      user.Role,
		"status":    user.Status,
		"password":  user.Password,
		"updatedAt": user.UpdatedAt,
	}}
	return matched(r.collection.UpdateOne(ctx, bson.M{"_id": user.ID}, update))
}

// UpdateLastLogin stamps the user's last login time
func (r *SystemUserRepository) UpdateLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return r.set(ctx, id, bson.M{"lastLogin": at})
}

// SetReferralCode stores the user's current referral code
func (r *SystemUserRepository) SetReferralCode(ctx context.Context, id primitive.ObjectID, code string) error {
	return r.set(ctx, id, bson.M{"referralCode": code})
}

// IncrementReferrals atomically adds n to the user's referral count
func (r *SystemUserRepository) IncrementReferrals(ctx context.Context, id primitive.ObjectID, n int) error {
	update := bson.M{
		"$inc": bson.M{"totalReferrals": n},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	return matched(r.collection.UpdateOne(ctx, bson.M{"_id": id}, update))
}

// AddReferralFees atomically adds amount to the user's running fee total
func (r *SystemUserRepository) AddReferralFees(ctx context.Context, id primitive.ObjectID, amount decimal.Decimal) error {
	update := bson.M{
		"$inc": bson.M{"totalReferralFees": amount},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	return matched(r.collection.UpdateOne(ctx, bson.M{"_id": id}, update))
}

// Count counts all users
func (r *SystemUserRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *SystemUserRepository) set(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC()
	return matched(r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields}))
}

func (r *SystemUserRepository) findOne(ctx context.Context, filter bson.M) (*models.SystemUser, error) {
	var user models.SystemUser
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

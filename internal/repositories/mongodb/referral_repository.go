package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/aidhub-backend/internal/ledger"
	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	_ repositories.ReferralTransactionRepository = (*ReferralTransactionRepository)(nil)
	_ repositories.ReferralCodeRepository        = (*ReferralCodeRepository)(nil)
)

// ReferralTransactionRepository handles MongoDB operations for ReferralTransaction
type ReferralTransactionRepository struct {
	collection *mongo.Collection
}

// NewReferralTransactionRepository creates a new ReferralTransactionRepository
func NewReferralTransactionRepository(db *mongo.Database) *ReferralTransactionRepository {
	return &ReferralTransactionRepository{
		collection: db.Collection(referralTxnsCollection),
	}
}

// Create inserts a new transaction and derives its day key
func (r *ReferralTransactionRepository) Create(ctx context.Context, txn *models.ReferralTransaction) error {
	if txn.ID.IsZero() {
		txn.ID = primitive.NewObjectID()
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}
	txn.Day = ledger.DayKey(txn.CreatedAt)
	_, err := r.collection.InsertOne(ctx, txn)
	return translate(err)
}

// FindByID finds a transaction by ID
func (r *ReferralTransactionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ReferralTransaction, error) {
	var txn models.ReferralTransaction
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&txn); err != nil {
		return nil, translate(err)
	}
	return &txn, nil
}

// FindByReferrer returns the referrer's transactions oldest first
func (r *ReferralTransactionRepository) FindByReferrer(ctx context.Context, referrerID primitive.ObjectID) ([]*models.ReferralTransaction, error) {
	return r.find(ctx, bson.M{"referrerUserId": referrerID})
}

// FindByReferrerAndDay returns one day group of the referrer
func (r *ReferralTransactionRepository) FindByReferrerAndDay(ctx context.Context, referrerID primitive.ObjectID, day string) ([]*models.ReferralTransaction, error) {
	return r.find(ctx, bson.M{"referrerUserId": referrerID, "day": day})
}

// FindAll returns every transaction, optionally restricted to one status
func (r *ReferralTransactionRepository) FindAll(ctx context.Context, status models.ReferralTransactionStatus) ([]*models.ReferralTransaction, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return r.find(ctx, filter)
}

// MarkPaid moves the given pending transactions to paid. The status
// condition keeps concurrent or repeated settlements from paying twice.
func (r *ReferralTransactionRepository) MarkPaid(ctx context.Context, ids []primitive.ObjectID, paidAt time.Time, notes string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	filter := bson.M{
		"_id":    bson.M{"$in": ids},
		"status": models.ReferralPendingPayment,
	}
	set := bson.M{
		"status": models.ReferralPaidToReferrer,
		"paidAt": paidAt,
	}
	if notes != "" {
		set["notes"] = notes
	}
	res, err := r.collection.UpdateMany(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *ReferralTransactionRepository) find(ctx context.Context, filter bson.M) ([]*models.ReferralTransaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	txns := []*models.ReferralTransaction{}
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

// ReferralCodeRepository handles MongoDB operations for ReferralCode
type ReferralCodeRepository struct {
	collection *mongo.Collection
}

// NewReferralCodeRepository creates a new ReferralCodeRepository
func NewReferralCodeRepository(db *mongo.Database) *ReferralCodeRepository {
	return &ReferralCodeRepository{
		collection: db.Collection(referralCodesCollection),
	}
}

// Create inserts a new code
func (r *ReferralCodeRepository) Create(ctx context.Context, code *models.ReferralCode) error {
	if code.ID.IsZero() {
		code.ID = primitive.NewObjectID()
	}
	if code.GeneratedAt.IsZero() {
		code.GeneratedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, code)
	return translate(err)
}

// FindByCode finds a code by its text
func (r *ReferralCodeRepository) FindByCode(ctx context.Context, code string) (*models.ReferralCode, error) {
	return r.findOne(ctx, bson.M{"code": code})
}

// FindByReferrer returns the referrer's codes newest first
func (r *ReferralCodeRepository) FindByReferrer(ctx context.Context, referrerID primitive.ObjectID) ([]*models.ReferralCode, error) {
	opts := options.Find().SetSort(bson.D{{Key: "generatedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"referrerUserId": referrerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	codes := []*models.ReferralCode{}
	if err := cursor.All(ctx, &codes); err != nil {
		return nil, err
	}
	return codes, nil
}

// FindActiveByReferrer returns the referrer's active code
func (r *ReferralCodeRepository) FindActiveByReferrer(ctx context.Context, referrerID primitive.ObjectID) (*models.ReferralCode, error) {
	return r.findOne(ctx, bson.M{"referrerUserId": referrerID, "status": models.ReferralCodeActive})
}

// ExpireActive moves every active code of the referrer to expired
func (r *ReferralCodeRepository) ExpireActive(ctx context.Context, referrerID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"referrerUserId": referrerID, "status": models.ReferralCodeActive},
		bson.M{"$set": bson.M{"status": models.ReferralCodeExpired}},
	)
	return err
}

// MarkUsed records the redemption of a code that is still active
func (r *ReferralCodeRepository) MarkUsed(ctx context.Context, id, beneficiaryID primitive.ObjectID, usedAt time.Time) error {
	filter := bson.M{"_id": id, "status": models.ReferralCodeActive}
	update := bson.M{"$set": bson.M{
		"status":        models.ReferralCodeUsed,
		"usedAt":        usedAt,
		"beneficiaryId": beneficiaryID,
	}}
	return matched(r.collection.UpdateOne(ctx, filter, update))
}

// MarkExpired expires a single code
func (r *ReferralCodeRepository) MarkExpired(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"status": models.ReferralCodeExpired}}
	return matched(r.collection.UpdateOne(ctx, bson.M{"_id": id}, update))
}

func (r *ReferralCodeRepository) findOne(ctx context.Context, filter bson.M) (*models.ReferralCode, error) {
	var code models.ReferralCode
	if err := r.collection.FindOne(ctx, filter).Decode(&code); err != nil {
		return nil, translate(err)
	}
	return &code, nil
}

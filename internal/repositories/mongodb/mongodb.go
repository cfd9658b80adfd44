// Package mongodb implements the repositories on top of the MongoDB driver.
package mongodb

import (
	"context"
	"errors"

	"github.com/ArowuTest/aidhub-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	beneficiariesCollection    = "beneficiaries"
	systemUsersCollection      = "system_users"
	referralTxnsCollection     = "referral_transactions"
	referralCodesCollection    = "referral_codes"
	packageTemplatesCollection = "package_templates"
	dispatchesCollection       = "package_dispatches"
	smsSettingsCollection      = "sms_settings"
	systemSettingsCollection   = "system_settings"
	messageTemplatesCollection = "message_templates"
	notificationsCollection    = "notifications"
)

// translate maps driver errors onto the repository sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repositories.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repositories.ErrDuplicate
	default:
		return err
	}
}

// matched reports ErrNotFound when an update touched no document
func matched(res *mongo.UpdateResult, err error) error {
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func pageOptions(page, limit int) *options.FindOptions {
	if page < 1 {
		page = 1
	}
	opts := options.Find()
	if limit > 0 {
		opts.SetSkip(int64((page - 1) * limit)).SetLimit(int64(limit))
	}
	return opts
}

// EnsureIndexes creates the indexes the repositories rely on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		beneficiariesCollection: {
			{Keys: bson.D{{Key: "nationalId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		systemUsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		referralTxnsCollection: {
			{Keys: bson.D{{Key: "referrerUserId", Value: 1}, {Key: "day", Value: 1}, {Key: "status", Value: 1}}},
		},
		referralCodesCollection: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "referrerUserId", Value: 1}, {Key: "status", Value: 1}}},
		},
		notificationsCollection: {
			{Keys: bson.D{{Key: "phone", Value: 1}, {Key: "sentDate", Value: -1}}},
		},
	}
	for name, idx := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}

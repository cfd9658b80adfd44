package memory

import (
	"context"
	"sort"
	"time"

	"github.com/ArowuTest/aidhub-backend/internal/ledger"
	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ repositories.ReferralTransactionRepository = (*ReferralTransactionRepository)(nil)
	_ repositories.ReferralCodeRepository        = (*ReferralCodeRepository)(nil)
)

// ReferralTransactionRepository is the in-memory referral fee ledger
type ReferralTransactionRepository struct {
	store *Store
}

// NewReferralTransactionRepository creates a new ReferralTransactionRepository
func NewReferralTransactionRepository(store *Store) *ReferralTransactionRepository {
	return &ReferralTransactionRepository{store: store}
}

// Create inserts a new transaction
func (r *ReferralTransactionRepository) Create(ctx context.Context, t *models.ReferralTransaction) error {
	return r.store.do(ctx, func(d *data) error {
		if t.ID.IsZero() {
			t.ID = primitive.NewObjectID()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now().UTC()
		}
		t.Day = ledger.DayKey(t.CreatedAt)
		d.transactions.put(t.ID, *t)
		return nil
	})
}

// FindByID finds a transaction by ID
func (r *ReferralTransactionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ReferralTransaction, error) {
	var out *models.ReferralTransaction
	err := r.store.do(ctx, func(d *data) error {
		v, ok := d.transactions.get(id)
		if !ok {
			return repositories.ErrNotFound
		}
		out = &v
		return nil
	})
	return out, err
}

// FindByReferrer returns the referrer's transactions oldest first
func (r *ReferralTransactionRepository) FindByReferrer(ctx context.Context, referrerID primitive.ObjectID) ([]*models.ReferralTransaction, error) {
	return r.find(ctx, func(t models.ReferralTransaction) bool {
		return t.ReferrerUserID == referrerID
	})
}

// FindByReferrerAndDay returns one day group of the referrer
func (r *ReferralTransactionRepository) FindByReferrerAndDay(ctx context.Context, referrerID primitive.ObjectID, day string) ([]*models.ReferralTransaction, error) {
	return r.find(ctx, func(t models.ReferralTransaction) bool {
		return t.ReferrerUserID == referrerID && t.Day == day
	})
}

// FindAll returns every transaction, optionally restricted to one status
func (r *ReferralTransactionRepository) FindAll(ctx context.Context, status models.ReferralTransactionStatus) ([]*models.ReferralTransaction, error) {
	return r.find(ctx, func(t models.ReferralTransaction) bool {
		return status == "" || t.Status == status
	})
}

// MarkPaid moves the given pending transactions to paid
func (r *ReferralTransactionRepository) MarkPaid(ctx context.Context, ids []primitive.ObjectID, paidAt time.Time, notes string) (int64, error) {
	var n int64
	err := r.store.do(ctx, func(d *data) error {
		for _, id := range ids {
			v, ok := d.transactions.get(id)
			if !ok || v.Status != models.ReferralPendingPayment {
				continue
			}
			at := paidAt
			v.Status = models.ReferralPaidToReferrer
			v.PaidAt = &at
			if notes != "" {
				v.Notes = notes
			}
			d.transactions.put(id, v)
			n++
		}
		return nil
	})
	return n, err
}

func (r *ReferralTransactionRepository) find(ctx context.Context, match func(models.ReferralTransaction) bool) ([]*models.ReferralTransaction, error) {
	var out []*models.ReferralTransaction
	err := r.store.do(ctx, func(d *data) error {
		d.transactions.each(func(_ primitive.ObjectID, v models.ReferralTransaction) bool {
			if match(v) {
				out = append(out, &v)
			}
			return true
		})
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, err
}

// ReferralCodeRepository is the in-memory referral code store
type ReferralCodeRepository struct {
	store *Store
}

// NewReferralCodeRepository creates a new ReferralCodeRepository
func NewReferralCodeRepository(store *Store) *ReferralCodeRepository {
	return &ReferralCodeRepository{store: store}
}

// Create inserts a new code; codes are unique
func (r *ReferralCodeRepository) Create(ctx context.Context, c *models.ReferralCode) error {
	return r.store.do(ctx, func(d *data) error {
		dup := false
		d.codes.each(func(_ primitive.ObjectID, v models.ReferralCode) bool {
			dup = v.Code == c.Code
			return !dup
		})
		if dup {
			return repositories.ErrDuplicate
		}
		if c.ID.IsZero() {
			c.ID = primitive.NewObjectID()
		}
		if c.GeneratedAt.IsZero() {
			c.GeneratedAt = time.Now().UTC()
		}
		d.codes.put(c.ID, *c)
		return nil
	})
}

// FindByCode finds a code by its text
func (r *ReferralCodeRepository) FindByCode(ctx context.Context, code string) (*models.ReferralCode, error) {
	var out *models.ReferralCode
	err := r.store.do(ctx, func(d *data) error {
		d.codes.each(func(_ primitive.ObjectID, v models.ReferralCode) bool {
			if v.Code == code {
				out = &v
				return false
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

// FindByReferrer returns the referrer's codes newest first
func (r *ReferralCodeRepository) FindByReferrer(ctx context.Context, referrerID primitive.ObjectID) ([]*models.ReferralCode, error) {
	var out []*models.ReferralCode
	err := r.store.do(ctx, func(d *data) error {
		d.codes.each(func(_ primitive.ObjectID, v models.ReferralCode) bool {
			if v.ReferrerUserID == referrerID {
				out = append(out, &v)
			}
			return true
		})
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].GeneratedAt.After(out[j].GeneratedAt) })
	return out, err
}

// FindActiveByReferrer returns the referrer's active code
func (r *ReferralCodeRepository) FindActiveByReferrer(ctx context.Context, referrerID primitive.ObjectID) (*models.ReferralCode, error) {
	var out *models.ReferralCode
	err := r.store.do(ctx, func(d *data) error {
		d.codes.each(func(_ primitive.ObjectID, v models.ReferralCode) bool {
			if v.ReferrerUserID == referrerID && v.Status == models.ReferralCodeActive {
				out = &v
				return false
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

// ExpireActive moves every active code of the referrer to expired
func (r *ReferralCodeRepository) ExpireActive(ctx context.Context, referrerID primitive.ObjectID) error {
	return r.store.do(ctx, func(d *data) error {
		var ids []primitive.ObjectID
		d.codes.each(func(id primitive.ObjectID, v models.ReferralCode) bool {
			if v.ReferrerUserID == referrerID && v.Status == models.ReferralCodeActive {
				ids = append(ids, id)
			}
			return true
		})
		for _, id := range ids {
			v, _ := d.codes.get(id)
			v.Status = models.ReferralCodeExpired
			d.codes.put(id, v)
		}
		return nil
	})
}

// MarkUsed records the redemption of an active code
func (r *ReferralCodeRepository) MarkUsed(ctx context.Context, id, beneficiaryID primitive.ObjectID, usedAt time.Time) error {
	return r.store.do(ctx, func(d *data) error {
		v, ok := d.codes.get(id)
		if !ok || v.Status != models.ReferralCodeActive {
			return repositories.ErrNotFound
		}
		b := beneficiaryID
		v.Status = models.ReferralCodeUsed
		v.UsedAt = &usedAt
		v.BeneficiaryID = &b
		d.codes.put(id, v)
		return nil
	})
}

// MarkExpired expires a single code
func (r *ReferralCodeRepository) MarkExpired(ctx context.Context, id primitive.ObjectID) error {
	return r.store.do(ctx, func(d *data) error {
		v, ok := d.codes.get(id)
		if !ok {
			return repositories.ErrNotFound
		}
		v.Status = models.ReferralCodeExpired
		d.codes.put(id, v)
		return nil
	})
}

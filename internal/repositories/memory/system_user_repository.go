package memory

import (
	"context"
	"strings"
	"time"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/repositories"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ repositories.SystemUserRepository = (*SystemUserRepository)(nil)

// SystemUserRepository is the in-memory system user store
type SystemUserRepository struct {
	store *Store
}

// NewSystemUserRepository creates a new SystemUserRepository
func NewSystemUserRepository(store *Store) *SystemUserRepository {
	return &SystemUserRepository{store: store}
}

// Create inserts a new user
func (r *SystemUserRepository) Create(ctx context.Context, u *models.SystemUser) error {
	return r.store.do(ctx, func(d *data) error {
		dup := false
		d.users.each(func(_ primitive.ObjectID, v models.SystemUser) bool {
			dup = strings.EqualFold(v.Email, u.Email)
			return !dup
		})
		if dup {
			return repositories.ErrDuplicate
		}
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		now := time.Now().UTC()
		u.CreatedAt = now
		u.UpdatedAt = now
		d.users.put(u.ID, *u)
		return nil
	})
}

// FindByID finds a user by ID
func (r *SystemUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.SystemUser, error) {
	var out *models.SystemUser
	err := r.store.do(ctx, func(d *data) error {
		v, ok := d.users.get(id)
		if !ok {
			return repositories.ErrNotFound
		}
		out = &v
		return nil
	})
	return out, err
}

// FindByEmail finds a user by email, ignoring case
func (r *SystemUserRepository) FindByEmail(ctx context.Context, email string) (*models.SystemUser, error) {
	var out *models.SystemUser
	err := r.store.do(ctx, func(d *data) error {
		d.users.each(func(_ primitive.ObjectID, v models.SystemUser) bool {
			if strings.EqualFold(v.Email, email) {
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

// FindAll returns every user in insertion order
func (r *SystemUserRepository) FindAll(ctx context.Context) ([]*models.SystemUser, error) {
	var out []*models.SystemUser
	err := r.store.do(ctx, func(d *data) error {
		d.users.each(func(_ primitive.ObjectID, v models.SystemUser) bool {
			out = append(out, &v)
			return true
		})
		return nil
	})
	return out, err
}

// Update replaces an existing user
func (r *SystemUserRepository) Update(ctx context.Context, u *models.SystemUser) error {
	return r.modify(ctx, u.ID, func(v *models.SystemUser) {
		createdAt := v.CreatedAt
		*v = *u
		v.CreatedAt = createdAt
	})
}

// UpdateLastLogin stamps the user's last login time
func (r *SystemUserRepository) UpdateLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return r.modify(ctx, id, func(v *models.SystemUser) {
		v.LastLogin = &at
	})
}

// SetReferralCode stores the user's current referral code
func (r *SystemUserRepository) SetReferralCode(ctx context.Context, id primitive.ObjectID, code string) error {
	return r.modify(ctx, id, func(v *models.SystemUser) {
		v.ReferralCode = code
	})
}

// IncrementReferrals adds n to the user's referral count
func (r *SystemUserRepository) IncrementReferrals(ctx context.Context, id primitive.ObjectID, n int) error {
	return r.modify(ctx, id, func(v *models.SystemUser) {
		v.TotalReferrals += n
	})
}

// AddReferralFees adds amount to the user's running referral fee total
func (r *SystemUserRepository) AddReferralFees(ctx context.Context, id primitive.ObjectID, amount decimal.Decimal) error {
	return r.modify(ctx, id, func(v *models.SystemUser) {
		v.TotalReferralFees = v.TotalReferralFees.Add(amount)
	})
}

// Count counts all users
func (r *SystemUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.store.do(ctx, func(d *data) error {
		n = int64(d.users.len())
		return nil
	})
	return n, err
}

func (r *SystemUserRepository) modify(ctx context.Context, id primitive.ObjectID, fn func(v *models.SystemUser)) error {
	return r.store.do(ctx, func(d *data) error {
		v, ok := d.users.get(id)
		if !ok {
			return repositories.ErrNotFound
		}
		fn(&v)
		v.UpdatedAt = time.Now().UTC()
		d.users.put(id, v)
		return nil
	})
}

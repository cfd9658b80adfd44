package memory

import (
	"context"
	"time"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ repositories.BeneficiaryRepository = (*BeneficiaryRepository)(nil)

// BeneficiaryRepository is the in-memory beneficiary store
type BeneficiaryRepository struct {
	store *Store
}

// NewBeneficiaryRepository creates a new BeneficiaryRepository
func NewBeneficiaryRepository(store *Store) *BeneficiaryRepository {
	return &BeneficiaryRepository{store: store}
}

// Create inserts a new beneficiary
func (r *BeneficiaryRepository) Create(ctx context.Context, b *models.Beneficiary) error {
	return r.store.do(ctx, func(d *data) error {
		dup := false
		d.beneficiaries.each(func(_ primitive.ObjectID, v models.Beneficiary) bool {
			dup = v.NationalID == b.NationalID
			return !dup
		})
		if dup {
			return repositories.ErrDuplicate
		}
		if b.ID.IsZero() {
			b.ID = primitive.NewObjectID()
		}
		now := time.Now().UTC()
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		b.UpdatedAt = now
		d.beneficiaries.put(b.ID, *b)
		return nil
	})
}

// FindByID finds a beneficiary by ID
func (r *BeneficiaryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Beneficiary, error) {
	var out *models.Beneficiary
	err := r.store.do(ctx, func(d *data) error {
		v, ok := d.beneficiaries.get(id)
		if !ok {
			return repositories.ErrNotFound
		}
		out = &v
		return nil
	})
	return out, err
}

// FindByNationalID finds a beneficiary by national ID
func (r *BeneficiaryRepository) FindByNationalID(ctx context.Context, nationalID string) (*models.Beneficiary, error) {
	var out *models.Beneficiary
	err := r.store.do(ctx, func(d *data) error {
		d.beneficiaries.each(func(_ primitive.ObjectID, v models.Beneficiary) bool {
			if v.NationalID == nationalID {
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

// FindAll returns every beneficiary in insertion order
func (r *BeneficiaryRepository) FindAll(ctx context.Context) ([]*models.Beneficiary, error) {
	var out []*models.Beneficiary
	err := r.store.do(ctx, func(d *data) error {
		out = make([]*models.Beneficiary, 0, d.beneficiaries.len())
		d.beneficiaries.each(func(_ primitive.ObjectID, v models.Beneficiary) bool {
			out = append(out, &v)
			return true
		})
		return nil
	})
	return out, err
}

// Update replaces an existing beneficiary
func (r *BeneficiaryRepository) Update(ctx context.Context, b *models.Beneficiary) error {
	return r.store.do(ctx, func(d *data) error {
		if _, ok := d.beneficiaries.get(b.ID); !ok {
			return repositories.ErrNotFound
		}
		b.UpdatedAt = time.Now().UTC()
		d.beneficiaries.put(b.ID, *b)
		return nil
	})
}

// Delete removes a beneficiary
func (r *BeneficiaryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.store.do(ctx, func(d *data) error {
		if !d.beneficiaries.remove(id) {
			return repositories.ErrNotFound
		}
		return nil
	})
}

// RecordPackage bumps totalPackages and stamps lastReceived
func (r *BeneficiaryRepository) RecordPackage(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return r.store.do(ctx, func(d *data) error {
		v, ok := d.beneficiaries.get(id)
		if !ok {
			return repositories.ErrNotFound
		}
		v.TotalPackages++
		v.LastReceived = &at
		v.UpdatedAt = time.Now().UTC()
		d.beneficiaries.put(id, v)
		return nil
	})
}

// Count counts all beneficiaries
func (r *BeneficiaryRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.store.do(ctx, func(d *data) error {
		n = int64(d.beneficiaries.len())
		return nil
	})
	return n, err
}

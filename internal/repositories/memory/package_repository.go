package memory

import (
	"context"
	"sort"
	"time"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ repositories.PackageTemplateRepository = (*PackageTemplateRepository)(nil)
	_ repositories.PackageDispatchRepository = (*PackageDispatchRepository)(nil)
)

// PackageTemplateRepository is the in-memory package template store
type PackageTemplateRepository struct {
	store *Store
}

// NewPackageTemplateRepository creates a new PackageTemplateRepository
func NewPackageTemplateRepository(store *Store) *PackageTemplateRepository {
	return &PackageTemplateRepository{store: store}
}

// Create inserts a new template
func (r *PackageTemplateRepository) Create(ctx context.Context, t *models.PackageTemplate) error {
	return r.store.do(ctx, func(d *data) error {
		if t.ID.IsZero() {
			t.ID = primitive.NewObjectID()
		}
		now := time.Now().UTC()
		t.CreatedAt = now
		t.UpdatedAt = now
		d.packageTemplates.put(t.ID, *t)
		return nil
	})
}

// FindByID finds a template by ID
func (r *PackageTemplateRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PackageTemplate, error) {
	var out *models.PackageTemplate
	err := r.store.do(ctx, func(d *data) error {
		v, ok := d.packageTemplates.get(id)
		if !ok {
			return repositories.ErrNotFound
		}
		out = &v
		return nil
	})
	return out, err
}

// FindAll filters on type and status when they are non-empty, sorted by name
func (r *PackageTemplateRepository) FindAll(ctx context.Context, templateType, status string) ([]*models.PackageTemplate, error) {
	var out []*models.PackageTemplate
	err := r.store.do(ctx, func(d *data) error {
		d.packageTemplates.each(func(_ primitive.ObjectID, v models.PackageTemplate) bool {
			if (templateType == "" || v.Type == templateType) && (status == "" || v.Status == status) {
				out = append(out, &v)
			}
			return true
		})
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

// Update replaces an existing template
func (r *PackageTemplateRepository) Update(ctx context.Context, t *models.PackageTemplate) error {
	return r.store.do(ctx, func(d *data) error {
		if _, ok := d.packageTemplates.get(t.ID); !ok {
			return repositories.ErrNotFound
		}
		t.UpdatedAt = time.Now().UTC()
		d.packageTemplates.put(t.ID, *t)
		return nil
	})
}

// Delete removes a template
func (r *PackageTemplateRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.store.do(ctx, func(d *data) error {
		if !d.packageTemplates.remove(id) {
			return repositories.ErrNotFound
		}
		return nil
	})
}

// IncrementUsage bumps the template's usage counter
func (r *PackageTemplateRepository) IncrementUsage(ctx context.Context, id primitive.ObjectID) error {
	return r.store.do(ctx, func(d *data) error {
		v, ok := d.packageTemplates.get(id)
		if !ok {
			return repositories.ErrNotFound
		}
		v.UsageCount++
		d.packageTemplates.put(id, v)
		return nil
	})
}

// PackageDispatchRepository is the in-memory individual send log
type PackageDispatchRepository struct {
	store *Store
}

// NewPackageDispatchRepository creates a new PackageDispatchRepository
func NewPackageDispatchRepository(store *Store) *PackageDispatchRepository {
	return &PackageDispatchRepository{store: store}
}

// Create inserts a new dispatch
func (r *PackageDispatchRepository) Create(ctx context.Context, p *models.PackageDispatch) error {
	return r.store.do(ctx, func(d *data) error {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now().UTC()
		}
		d.dispatches.put(p.ID, *p)
		return nil
	})
}

// FindAll returns dispatches newest first, for one beneficiary when given
func (r *PackageDispatchRepository) FindAll(ctx context.Context, beneficiaryID *primitive.ObjectID) ([]*models.PackageDispatch, error) {
	var out []*models.PackageDispatch
	err := r.store.do(ctx, func(d *data) error {
		d.dispatches.each(func(_ primitive.ObjectID, v models.PackageDispatch) bool {
			if beneficiaryID == nil || v.BeneficiaryID == *beneficiaryID {
				out = append(out, &v)
			}
			return true
		})
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, err
}

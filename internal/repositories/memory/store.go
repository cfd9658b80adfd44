// Package memory provides process-local repository implementations used by
// the "memory" storage driver and by service tests.
package memory

import (
	"context"
	"sync"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ repositories.TxRunner = (*Store)(nil)

type txKey struct{}

// table keeps rows by id in insertion order
type table[T any] struct {
	rows  map[primitive.ObjectID]T
	order []primitive.ObjectID
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[primitive.ObjectID]T)}
}

func (t *table[T]) put(id primitive.ObjectID, v T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = v
}

func (t *table[T]) get(id primitive.ObjectID) (T, bool) {
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) remove(id primitive.ObjectID) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, o := range t.order {
		if o == id {
			t.order = append(t.order[:i:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// each visits rows in insertion order until fn returns false
func (t *table[T]) each(fn func(id primitive.ObjectID, v T) bool) {
	for _, id := range t.order {
		if !fn(id, t.rows[id]) {
			return
		}
	}
}

func (t *table[T]) len() int {
	return len(t.order)
}

func (t *table[T]) clone() *table[T] {
	c := &table[T]{
		rows:  make(map[primitive.ObjectID]T, len(t.rows)),
		order: append([]primitive.ObjectID(nil), t.order...),
	}
	for k, v := range t.rows {
		c.rows[k] = v
	}
	return c
}

type data struct {
	beneficiaries    *table[models.Beneficiary]
	users            *table[models.SystemUser]
	transactions     *table[models.ReferralTransaction]
	codes            *table[models.ReferralCode]
	packageTemplates *table[models.PackageTemplate]
	dispatches       *table[models.PackageDispatch]
	smsSettings      *table[models.SMSSettings]
	messageTemplates *table[models.MessageTemplate]
	notifications    *table[models.Notification]
	settings         *models.SystemSettings
}

func (d data) clone() data {
	c := data{
		beneficiaries:    d.beneficiaries.clone(),
		users:            d.users.clone(),
		transactions:     d.transactions.clone(),
		codes:            d.codes.clone(),
		packageTemplates: d.packageTemplates.clone(),
		dispatches:       d.dispatches.clone(),
		smsSettings:      d.smsSettings.clone(),
		messageTemplates: d.messageTemplates.clone(),
		notifications:    d.notifications.clone(),
	}
	if d.settings != nil {
		s := *d.settings
		c.settings = &s
	}
	return c
}

// Store holds every collection behind one mutex. A transaction keeps the
// mutex for its whole duration, so transactions are serialised and see no
// concurrent writes; a failed transaction restores the snapshot taken
// when it started.
type Store struct {
	mu sync.Mutex
	d  data
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{d: data{
		beneficiaries:    newTable[models.Beneficiary](),
		users:            newTable[models.SystemUser](),
		transactions:     newTable[models.ReferralTransaction](),
		codes:            newTable[models.ReferralCode](),
		packageTemplates: newTable[models.PackageTemplate](),
		dispatches:       newTable[models.PackageDispatch](),
		smsSettings:      newTable[models.SMSSettings](),
		messageTemplates: newTable[models.MessageTemplate](),
		notifications:    newTable[models.Notification](),
	}}
}

// WithTransaction implements repositories.TxRunner. Nested calls join the
// outer transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	committed := false
	defer func() {
		if !committed {
			s.d = snapshot
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// do runs fn with exclusive access to the data, joining the caller's
// transaction when ctx carries one.
func (s *Store) do(ctx context.Context, fn func(d *data) error) error {
	if !s.inTx(ctx) {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(&s.d)
}

func paginate[T any](list []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		return list
	}
	start := (page - 1) * limit
	if start >= len(list) {
		return []T{}
	}
	end := start + limit
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}

package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_TransactionRollback(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	users := NewSystemUserRepository(store)
	txns := NewReferralTransactionRepository(store)

	u := &models.SystemUser{Name: "Referrer", Email: "r@example.org"}
	require.NoError(t, users.Create(ctx, u))

	boom := errors.New("boom")
	err := store.WithTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, users.AddReferralFees(ctx, u.ID, decimal.NewFromInt(5)))
		require.NoError(t, txns.Create(ctx, &models.ReferralTransaction{ReferrerUserID: u.ID, Amount: decimal.NewFromInt(5)}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalReferralFees.IsZero())

	all, err := txns.FindAll(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStore_TransactionCommitAndNesting(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	users := NewSystemUserRepository(store)

	u := &models.SystemUser{Email: "a@example.org"}
	require.NoError(t, users.Create(ctx, u))

	err := store.WithTransaction(ctx, func(ctx context.Context) error {
		if err := users.IncrementReferrals(ctx, u.ID, 1); err != nil {
			return err
		}
		return store.WithTransaction(ctx, func(ctx context.Context) error {
			return users.IncrementReferrals(ctx, u.ID, 2)
		})
	})
	require.NoError(t, err)

	got, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalReferrals)
}

func TestStore_ConcurrentTransactionsSerialise(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	users := NewSystemUserRepository(store)

	u := &models.SystemUser{Email: "c@example.org"}
	require.NoError(t, users.Create(ctx, u))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.WithTransaction(ctx, func(ctx context.Context) error {
				cur, err := users.FindByID(ctx, u.ID)
				if err != nil {
					return err
				}
				cur.TotalReferrals++
				return users.Update(ctx, cur)
			})
		}()
	}
	wg.Wait()

	got, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.TotalReferrals)
}

func TestReferralTransactionRepository_MarkPaidOnlyPending(t *testing.T) {
	ctx := context.Background()
	repo := NewReferralTransactionRepository(NewStore())
	referrer := primitive.NewObjectID()
	created := time.Date(2024, 12, 19, 10, 0, 0, 0, time.UTC)

	pending := &models.ReferralTransaction{ReferrerUserID: referrer, Amount: decimal.NewFromInt(5), Status: models.ReferralPendingPayment, CreatedAt: created}
	cancelled := &models.ReferralTransaction{ReferrerUserID: referrer, Amount: decimal.NewFromInt(5), Status: models.ReferralCancelled, CreatedAt: created}
	require.NoError(t, repo.Create(ctx, pending))
	require.NoError(t, repo.Create(ctx, cancelled))
	assert.Equal(t, "2024-12-19", pending.Day)

	paidAt := created.Add(time.Hour)
	n, err := repo.MarkPaid(ctx, []primitive.ObjectID{pending.ID, cancelled.ID}, paidAt, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.MarkPaid(ctx, []primitive.ObjectID{pending.ID}, paidAt, "")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	day, err := repo.FindByReferrerAndDay(ctx, referrer, "2024-12-19")
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, models.ReferralPaidToReferrer, day[0].Status)
	assert.Equal(t, models.ReferralCancelled, day[1].Status)
}

func TestReferralCodeRepository_MarkUsedRequiresActive(t *testing.T) {
	ctx := context.Background()
	repo := NewReferralCodeRepository(NewStore())
	code := &models.ReferralCode{Code: "AB123-XYZ", ReferrerUserID: primitive.NewObjectID(), Status: models.ReferralCodeActive}
	require.NoError(t, repo.Create(ctx, code))
	require.ErrorIs(t, repo.Create(ctx, &models.ReferralCode{Code: "AB123-XYZ"}), repositories.ErrDuplicate)

	beneficiary := primitive.NewObjectID()
	require.NoError(t, repo.MarkUsed(ctx, code.ID, beneficiary, time.Now()))
	require.ErrorIs(t, repo.MarkUsed(ctx, code.ID, beneficiary, time.Now()), repositories.ErrNotFound)

	got, err := repo.FindByCode(ctx, "AB123-XYZ")
	require.NoError(t, err)
	assert.Equal(t, models.ReferralCodeUsed, got.Status)
	require.NotNil(t, got.BeneficiaryID)
	assert.Equal(t, beneficiary, *got.BeneficiaryID)
	assert.NotNil(t, got.UsedAt)
}

func TestSMSSettingsRepository_SingleActiveRow(t *testing.T) {
	ctx := context.Background()
	repo := NewSMSSettingsRepository(NewStore())

	_, err := repo.FindActive(ctx)
	require.ErrorIs(t, err, repositories.ErrNotFound)

	require.NoError(t, repo.Save(ctx, &models.SMSSettings{APIKey: "k1", SenderName: "Aid"}))
	require.NoError(t, repo.Save(ctx, &models.SMSSettings{APIKey: "k2", SenderName: "Aid"}))

	got, err := repo.FindActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "k2", got.APIKey)
}

package services

import (
	"context"
	"regexp"
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

func TestSettleDay_PaysOnlyPendingOfThatDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ref := f.referrer(t, "Ahmad Saleh")

	day := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	p1 := f.txn(t, ref, day, 5, models.ReferralPendingPayment)
	p2 := f.txn(t, ref, day.Add(3*time.Hour), 5, models.ReferralPendingPayment)
	paid := f.txn(t, ref, day.Add(time.Hour), 5, models.ReferralPaidToReferrer)
	other := f.txn(t, ref, day.AddDate(0, 0, 1), 5, models.ReferralPendingPayment)

	res, err := f.referral.SettleDay(ctx, ref.ID, "2024-01-10", "admin", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.SettledCount)
	assert.True(t, res.SettledAmount.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, f.clock.t, res.PaidAt)

	for _, id := range []primitive.ObjectID{p1.ID, p2.ID} {
		got, err := f.txns.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.ReferralPaidToReferrer, got.Status)
		require.NotNil(t, got.PaidAt)
		assert.Equal(t, f.clock.t, *got.PaidAt)
	}

	untouched, err := f.txns.FindByID(ctx, paid.ID)
	require.NoError(t, err)
	assert.Nil(t, untouched.PaidAt)

	next, err := f.txns.FindByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReferralPendingPayment, next.Status)

	user, err := f.users.FindByID(ctx, ref.ID)
	require.NoError(t, err)
	assert.True(t, user.TotalReferralFees.Equal(decimal.NewFromInt(10)))

	days, err := f.referral.DailyEarnings(ctx, ref.ID, nil)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2024-01-11", days[0].Date)
	assert.Equal(t, "2024-01-10", days[1].Date)
	assert.Equal(t, string(models.ReferralPaidToReferrer), days[1].Status)
}

func TestSettleDay_SecondCallIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ref := f.referrer(t, "Mona")
	f.txn(t, ref, time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC), 5, models.ReferralPendingPayment)

	_, err := f.referral.SettleDay(ctx, ref.ID, "2024-01-10", "", nil)
	require.NoError(t, err)

	res, err := f.referral.SettleDay(ctx, ref.ID, "2024-01-10", "", nil)
	require.NoError(t, err)
	assert.Zero(t, res.SettledCount)
	assert.True(t, res.SettledAmount.IsZero())

	user, err := f.users.FindByID(ctx, ref.ID)
	require.NoError(t, err)
	assert.True(t, user.TotalReferralFees.Equal(decimal.NewFromInt(5)))
}

func TestSettleDay_ConcurrentCallsCreditOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ref := f.referrer(t, "Khaled")
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		f.txn(t, ref, at.Add(time.Duration(i)*time.Minute), 5, models.ReferralPendingPayment)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		settled int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.referral.SettleDay(ctx, ref.ID, "2024-01-10", "", nil)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			settled += res.SettledCount
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, settled)
	user, err := f.users.FindByID(ctx, ref.ID)
	require.NoError(t, err)
	assert.True(t, user.TotalReferralFees.Equal(decimal.NewFromInt(25)))
}

func TestSettleDay_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ref := f.referrer(t, "Rana")

	_, err := f.referral.SettleDay(ctx, primitive.NewObjectID(), "2024-01-10", "", nil)
	assert.ErrorIs(t, err, ErrSettlementNotFound)

	_, err = f.referral.SettleDay(ctx, ref.ID, "2024-01-10", "", nil)
	assert.ErrorIs(t, err, ErrSettlementNotFound)

	_, err = f.referral.SettleDay(ctx, ref.ID, "10/01/2024", "", nil)
	assert.ErrorIs(t, err, ErrInvalidDay)
}

func TestSettleDay_CancelledOnlyGroup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ref := f.referrer(t, "Sami")
	f.txn(t, ref, time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC), 5, models.ReferralCancelled)

	res, err := f.referral.SettleDay(ctx, ref.ID, "2024-01-10", "", nil)
	require.NoError(t, err)
	assert.Zero(t, res.SettledCount)

	exclude, include := true, false
	_, err = f.referral.SettleDay(ctx, ref.ID, "2024-01-10", "", &exclude)
	assert.ErrorIs(t, err, ErrSettlementNotFound)

	f.referral.opts.ExcludeCancelled = true
	_, err = f.referral.SettleDay(ctx, ref.ID, "2024-01-10", "", nil)
	assert.ErrorIs(t, err, ErrSettlementNotFound)

	// The request override wins over the configured default
	res, err = f.referral.SettleDay(ctx, ref.ID, "2024-01-10", "", &include)
	require.NoError(t, err)
	assert.Zero(t, res.SettledCount)
}

// racedTxns pays only the first of the requested ids, as if another
// settlement got to the rest between the read and the update.
type racedTxns struct {
	repositories.ReferralTransactionRepository
}

func (r racedTxns) MarkPaid(ctx context.Context, ids []primitive.ObjectID, paidAt time.Time, notes string) (int64, error) {
	return r.ReferralTransactionRepository.MarkPaid(ctx, ids[:1], paidAt, notes)
}

func TestSettleDay_AbortsOnPartialUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ref := f.referrer(t, "Yara")
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	a := f.txn(t, ref, at, 5, models.ReferralPendingPayment)
	b := f.txn(t, ref, at.Add(time.Hour), 5, models.ReferralPendingPayment)

	f.referral.txns = racedTxns{f.txns}
	_, err := f.referral.SettleDay(ctx, ref.ID, "2024-01-10", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marked 1 of 2")

	// The transaction rolled back, nothing is paid and no fee is credited
	for _, id := range []primitive.ObjectID{a.ID, b.ID} {
		got, err := f.txns.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.ReferralPendingPayment, got.Status)
	}
	user, err := f.users.FindByID(ctx, ref.ID)
	require.NoError(t, err)
	assert.True(t, user.TotalReferralFees.IsZero())
}

func TestSettleTransaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ref := f.referrer(t, "Lina")
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	pending := f.txn(t, ref, at, 5, models.ReferralPendingPayment)
	cancelled := f.txn(t, ref, at, 5, models.ReferralCancelled)

	res, err := f.referral.SettleTransaction(ctx, pending.ID, "cash")
	require.NoError(t, err)
	assert.Equal(t, 1, res.SettledCount)
	assert.Equal(t, "2024-01-10", res.Date)

	res, err = f.referral.SettleTransaction(ctx, pending.ID, "cash")
	require.NoError(t, err)
	assert.Zero(t, res.SettledCount)

	_, err = f.referral.SettleTransaction(ctx, cancelled.ID, "")
	assert.ErrorIs(t, err, ErrTransactionCanceled)

	_, err = f.referral.SettleTransaction(ctx, primitive.NewObjectID(), "")
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	user, err := f.users.FindByID(ctx, ref.ID)
	require.NoError(t, err)
	assert.True(t, user.TotalReferralFees.Equal(decimal.NewFromInt(5)))
}

func TestGenerateReferralCode_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^AS\d{3}-[A-Z0-9]{3}$`)
	for i := 0; i < 50; i++ {
		assert.Regexp(t, pattern, GenerateReferralCode("ahmad saleh"))
	}
	assert.Regexp(t, `^REF\d{3}-`, GenerateReferralCode("  "))
}

func TestGenerateCode_ExpiresPreviousCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ref := f.referrer(t, "Omar Haddad")

	first, err := f.referral.GenerateCode(ctx, ref.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.ReferralCodeActive, first.Status)
	require.NotNil(t, first.ExpiresAt)
	assert.Equal(t, f.clock.t.Add(7*24*time.Hour), *first.ExpiresAt)

	second, err := f.referral.GenerateCode(ctx, ref.ID, "OMAR-2024")
	require.NoError(t, err)
	assert.Equal(t, "OMAR-2024", second.Code)

	codes, err := f.referral.ListCodes(ctx, ref.ID)
	require.NoError(t, err)
	require.Len(t, codes, 2)
	statuses := map[string]models.ReferralCodeStatus{}
	for _, c := range codes {
		statuses[c.Code] = c.Status
	}
	assert.Equal(t, models.ReferralCodeExpired, statuses[first.Code])
	assert.Equal(t, models.ReferralCodeActive, statuses["OMAR-2024"])

	active, err := f.referral.ActiveCode(ctx, ref.ID)
	require.NoError(t, err)
	assert.Equal(t, "OMAR-2024", active.Code)

	user, err := f.users.FindByID(ctx, ref.ID)
	require.NoError(t, err)
	assert.Equal(t, "OMAR-2024", user.ReferralCode)

	other := f.referrer(t, "Other")
	_, err = f.referral.GenerateCode(ctx, other.ID, "OMAR-2024")
	assert.ErrorIs(t, err, ErrReferralCodeTaken)

	_, err = f.referral.GenerateCode(ctx, primitive.NewObjectID(), "")
	assert.ErrorIs(t, err, ErrReferrerNotFound)
}

func TestRedeemCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ref := f.referrer(t, "Huda")

	code, err := f.referral.GenerateCode(ctx, ref.ID, "HUDA1")
	require.NoError(t, err)

	beneficiaryID := primitive.NewObjectID()
	txn, err := f.referral.RedeemCode(ctx, "HUDA1", beneficiaryID)
	require.NoError(t, err)
	assert.Equal(t, ref.ID, txn.ReferrerUserID)
	assert.Equal(t, code.ID, txn.ReferralCodeID)
	assert.Equal(t, models.ReferralPendingPayment, txn.Status)
	assert.True(t, txn.Amount.Equal(decimal.NewFromInt(5)))

	used, err := f.codes.FindByCode(ctx, "HUDA1")
	require.NoError(t, err)
	assert.Equal(t, models.ReferralCodeUsed, used.Status)
	require.NotNil(t, used.BeneficiaryID)
	assert.Equal(t, beneficiaryID, *used.BeneficiaryID)

	user, err := f.users.FindByID(ctx, ref.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, user.TotalReferrals)

	_, err = f.referral.RedeemCode(ctx, "HUDA1", primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrInvalidReferralCode)

	_, err = f.referral.RedeemCode(ctx, "NOPE", primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrInvalidReferralCode)
}

func TestRedeemCode_ExpiredCodeIsMarked(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ref := f.referrer(t, "Yara")

	_, err := f.referral.GenerateCode(ctx, ref.ID, "YARA1")
	require.NoError(t, err)

	f.clock.t = f.clock.t.Add(8 * 24 * time.Hour)
	_, err = f.referral.RedeemCode(ctx, "YARA1", primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrReferralCodeExpired)

	code, err := f.codes.FindByCode(ctx, "YARA1")
	require.NoError(t, err)
	assert.Equal(t, models.ReferralCodeExpired, code.Status)

	all, err := f.txns.FindAll(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ref := f.referrer(t, "Nour")
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	f.txn(t, ref, at, 5, models.ReferralPendingPayment)
	f.txn(t, ref, at, 5, models.ReferralPendingPayment)
	f.txn(t, ref, at, 5, models.ReferralPaidToReferrer)

	stats, err := f.referral.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalReferrals)
	assert.True(t, stats.TotalEarnings.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, 2, stats.PendingPayments)
	assert.Equal(t, 1, stats.PaidTransactions)

	pending, err := f.referral.Transactions(ctx, &ref.ID, models.ReferralPendingPayment)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/ArowuTest/aidhub-backend/internal/ledger"
	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/monitoring"
	"github.com/ArowuTest/aidhub-backend/internal/repositories"
	"github.com/ArowuTest/aidhub-backend/pkg/lock"
	"github.com/ArowuTest/aidhub-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ ReferralService = (*ReferralServiceImpl)(nil)

const (
	codeSuffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxCodeAttempts    = 10
)

// ReferralOptions holds the referral fee policy
type ReferralOptions struct {
	Fee              decimal.Decimal
	CodeTTL          time.Duration
	ExcludeCancelled bool
}

// ReferralServiceImpl implements ReferralService
type ReferralServiceImpl struct {
	tx     repositories.TxRunner
	locker lock.Locker
	users  repositories.SystemUserRepository
	txns   repositories.ReferralTransactionRepository
	codes  repositories.ReferralCodeRepository
	opts   ReferralOptions
	log    logrus.FieldLogger
	now    Clock
}

// NewReferralService creates a new ReferralService
func NewReferralService(
	tx repositories.TxRunner,
	locker lock.Locker,
	users repositories.SystemUserRepository,
	txns repositories.ReferralTransactionRepository,
	codes repositories.ReferralCodeRepository,
	opts ReferralOptions,
	log logrus.FieldLogger,
) *ReferralServiceImpl {
	return &ReferralServiceImpl{
		tx:     tx,
		locker: locker,
		users:  users,
		txns:   txns,
		codes:  codes,
		opts:   opts,
		log:    log,
		now:    utcNow,
	}
}

// ListReferrers returns all system users
func (s *ReferralServiceImpl) ListReferrers(ctx context.Context) ([]*models.SystemUser, error) {
	return s.users.FindAll(ctx)
}

// GetReferrer returns one system user
func (s *ReferralServiceImpl) GetReferrer(ctx context.Context, referrerID primitive.ObjectID) (*models.SystemUser, error) {
	user, err := s.users.FindByID(ctx, referrerID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrReferrerNotFound
	}
	return user, err
}

// ListCodes returns every code the referrer was issued
func (s *ReferralServiceImpl) ListCodes(ctx context.Context, referrerID primitive.ObjectID) ([]*models.ReferralCode, error) {
	if _, err := s.GetReferrer(ctx, referrerID); err != nil {
		return nil, err
	}
	return s.codes.FindByReferrer(ctx, referrerID)
}

// ActiveCode returns the referrer's current code. ErrInvalidReferralCode
// means the referrer has none.
func (s *ReferralServiceImpl) ActiveCode(ctx context.Context, referrerID primitive.ObjectID) (*models.ReferralCode, error) {
	code, err := s.codes.FindActiveByReferrer(ctx, referrerID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidReferralCode
	}
	return code, err
}

// GenerateCode issues a new active code for the referrer. The previous
// active code, if any, is expired in the same transaction.
func (s *ReferralServiceImpl) GenerateCode(ctx context.Context, referrerID primitive.ObjectID, custom string) (*models.ReferralCode, error) {
	l, err := s.locker.Obtain(ctx, "codes:"+referrerID.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to lock referral codes: %w", err)
	}
	defer s.release(ctx, l)

	custom = strings.TrimSpace(custom)
	var issued *models.ReferralCode
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		user, err := s.users.FindByID(ctx, referrerID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrReferrerNotFound
			}
			return err
		}

		value, err := s.pickCode(ctx, user.Name, custom)
		if err != nil {
			return err
		}
		if err := s.codes.ExpireActive(ctx, referrerID); err != nil {
			return fmt.Errorf("failed to expire active code: %w", err)
		}

		now := s.now()
		expiresAt := now.Add(s.opts.CodeTTL)
		code := &models.ReferralCode{
			Code:           value,
			ReferrerUserID: referrerID,
			Status:         models.ReferralCodeActive,
			GeneratedAt:    now,
			ExpiresAt:      &expiresAt,
		}
		if err := s.codes.Create(ctx, code); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return ErrReferralCodeTaken
			}
			return fmt.Errorf("failed to create referral code: %w", err)
		}
		if err := s.users.SetReferralCode(ctx, referrerID, value); err != nil {
			return fmt.Errorf("failed to store referral code on user: %w", err)
		}
		issued = code
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"referrer_id": referrerID.Hex(),
		"code":        issued.Code,
	}).Info("Referral code generated")
	return issued, nil
}

// pickCode returns custom when it is free, or a fresh generated code.
// Uniqueness is checked before the insert because a duplicate key error
// aborts a MongoDB transaction.
func (s *ReferralServiceImpl) pickCode(ctx context.Context, name, custom string) (string, error) {
	if custom != "" {
		taken, err := s.codeExists(ctx, custom)
		if err != nil {
			return "", err
		}
		if taken {
			return "", ErrReferralCodeTaken
		}
		return custom, nil
	}
	for i := 0; i < maxCodeAttempts; i++ {
		candidate := GenerateReferralCode(name)
		taken, err := s.codeExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique referral code after %d attempts", maxCodeAttempts)
}

func (s *ReferralServiceImpl) codeExists(ctx context.Context, code string) (bool, error) {
	_, err := s.codes.FindByCode(ctx, code)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repositories.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("failed to look up referral code: %w", err)
	}
}

// GenerateReferralCode builds "<initials><3 digits>-<3 chars>" from a name
func GenerateReferralCode(name string) string {
	var initials strings.Builder
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			initials.WriteRune(unicode.ToUpper(r))
			break
		}
	}
	if initials.Len() == 0 {
		initials.WriteString("REF")
	}
	suffix := make([]byte, 3)
	for i := range suffix {
		suffix[i] = codeSuffixAlphabet[rand.Intn(len(codeSuffixAlphabet))]
	}
	return fmt.Sprintf("%s%03d-%s", initials.String(), rand.Intn(1000), suffix)
}

// RedeemCode consumes an active referral code. An expired code is marked
// expired and ErrReferralCodeExpired is returned.
func (s *ReferralServiceImpl) RedeemCode(ctx context.Context, value string, beneficiaryID primitive.ObjectID) (*models.ReferralTransaction, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrInvalidReferralCode
	}

	var (
		txn     *models.ReferralTransaction
		expired bool
	)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		txn, expired = nil, false

		code, err := s.codes.FindByCode(ctx, value)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrInvalidReferralCode
			}
			return err
		}
		if code.Status != models.ReferralCodeActive {
			return ErrInvalidReferralCode
		}

		now := s.now()
		if code.ExpiresAt != nil && code.ExpiresAt.Before(now) {
			// Commit the expiry; the caller still gets an error
			expired = true
			return s.codes.MarkExpired(ctx, code.ID)
		}

		if err := s.codes.MarkUsed(ctx, code.ID, beneficiaryID, now); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrInvalidReferralCode
			}
			return fmt.Errorf("failed to mark code used: %w", err)
		}

		t := &models.ReferralTransaction{
			BeneficiaryID:    beneficiaryID,
			ReferrerUserID:   code.ReferrerUserID,
			ReferralCodeID:   code.ID,
			ReferralCodeUsed: code.Code,
			Amount:           s.opts.Fee,
			Status:           models.ReferralPendingPayment,
			CreatedAt:        now,
			Notes:            "new referral, awaiting payment",
		}
		if err := s.txns.Create(ctx, t); err != nil {
			return fmt.Errorf("failed to create referral transaction: %w", err)
		}
		if err := s.users.IncrementReferrals(ctx, code.ReferrerUserID, 1); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("failed to update referrer: %w", err)
		}
		txn = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, ErrReferralCodeExpired
	}

	logger.WithContext(ctx, s.log).WithFields(logrus.Fields{
		"referrer_id":    txn.ReferrerUserID.Hex(),
		"beneficiary_id": beneficiaryID.Hex(),
		"code":           value,
	}).Info("Referral code redeemed")
	return txn, nil
}

// DailyEarnings returns the referrer's earnings grouped by day, newest
// first. A nil excludeCancelled uses the configured default.
func (s *ReferralServiceImpl) DailyEarnings(ctx context.Context, referrerID primitive.ObjectID, excludeCancelled *bool) ([]models.DailyEarningsSummary, error) {
	if _, err := s.GetReferrer(ctx, referrerID); err != nil {
		return nil, err
	}
	txns, err := s.txns.FindByReferrer(ctx, referrerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load referral transactions: %w", err)
	}
	return ledger.AggregateDaily(txns, s.ledgerOptions(excludeCancelled)), nil
}

func (s *ReferralServiceImpl) ledgerOptions(excludeCancelled *bool) ledger.Options {
	opts := ledger.Options{ExcludeCancelled: s.opts.ExcludeCancelled}
	if excludeCancelled != nil {
		opts.ExcludeCancelled = *excludeCancelled
	}
	return opts
}

// SettleDay marks every pending transaction of the referrer on day as paid
// with a single paidAt and adds their sum to the referrer's fees. Settling
// a day that has nothing pending is a no-op with a zero count.
// excludeCancelled overrides the configured default when non-nil, the same
// way it does for DailyEarnings.
func (s *ReferralServiceImpl) SettleDay(ctx context.Context, referrerID primitive.ObjectID, day string, settledBy string, excludeCancelled *bool) (*models.SettlementResult, error) {
	if _, err := ledger.ParseDay(day); err != nil {
		return nil, ErrInvalidDay
	}
	log := logger.WithContext(ctx, s.log).WithFields(logrus.Fields{
		"referrer_id": referrerID.Hex(),
		"day":         day,
	})

	l, err := s.locker.Obtain(ctx, settlementLockKey(referrerID, day))
	if err != nil {
		monitoring.ReferralSettlementsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to lock settlement: %w", err)
	}
	defer s.release(ctx, l)

	var result *models.SettlementResult
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		result = &models.SettlementResult{ReferrerUserID: referrerID, Date: day, SettledAmount: decimal.Zero}

		if _, err := s.users.FindByID(ctx, referrerID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrSettlementNotFound
			}
			return err
		}
		group, err := s.txns.FindByReferrerAndDay(ctx, referrerID, day)
		if err != nil {
			return fmt.Errorf("failed to load day group: %w", err)
		}
		if s.ledgerOptions(excludeCancelled).ExcludeCancelled {
			group = withoutCancelled(group)
		}
		if len(group) == 0 {
			return ErrSettlementNotFound
		}

		pending := ledger.Pending(group)
		if len(pending) == 0 {
			return nil
		}
		notes := "paid in settlement of " + day
		if settledBy != "" {
			notes += " by " + settledBy
		}
		paidAt := s.now()
		settled, err := s.pay(ctx, referrerID, pending, paidAt, notes)
		if err != nil {
			return err
		}
		result.SettledCount = len(pending)
		result.SettledAmount = settled
		result.PaidAt = paidAt
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSettlementNotFound) {
			monitoring.ReferralSettlementsTotal.WithLabelValues("not_found").Inc()
		} else {
			monitoring.ReferralSettlementsTotal.WithLabelValues("error").Inc()
			log.WithError(err).Error("Settlement failed")
		}
		return nil, err
	}

	s.recordSettlement(log, result)
	return result, nil
}

// SettleTransaction pays one transaction. Paying an already paid
// transaction is a no-op.
func (s *ReferralServiceImpl) SettleTransaction(ctx context.Context, txnID primitive.ObjectID, notes string) (*models.SettlementResult, error) {
	txn, err := s.txns.FindByID(ctx, txnID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	day := ledger.DayKey(txn.CreatedAt)
	log := logger.WithContext(ctx, s.log).WithFields(logrus.Fields{
		"referrer_id":    txn.ReferrerUserID.Hex(),
		"day":            day,
		"transaction_id": txnID.Hex(),
	})

	l, err := s.locker.Obtain(ctx, settlementLockKey(txn.ReferrerUserID, day))
	if err != nil {
		return nil, fmt.Errorf("failed to lock settlement: %w", err)
	}
	defer s.release(ctx, l)

	var result *models.SettlementResult
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		result = &models.SettlementResult{ReferrerUserID: txn.ReferrerUserID, Date: day, SettledAmount: decimal.Zero}

		current, err := s.txns.FindByID(ctx, txnID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrTransactionNotFound
			}
			return err
		}
		switch current.Status {
		case models.ReferralPaidToReferrer:
			return nil
		case models.ReferralCancelled:
			return ErrTransactionCanceled
		}
		if notes == "" {
			notes = "paid"
		}
		paidAt := s.now()
		settled, err := s.pay(ctx, current.ReferrerUserID, []*models.ReferralTransaction{current}, paidAt, notes)
		if err != nil {
			return err
		}
		result.SettledCount = 1
		result.SettledAmount = settled
		result.PaidAt = paidAt
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrTransactionCanceled) {
			monitoring.ReferralSettlementsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	s.recordSettlement(log, result)
	return result, nil
}

// pay marks pending as paid and credits the referrer. Any row that stopped
// being pending fails the call so the surrounding transaction rolls back.
func (s *ReferralServiceImpl) pay(ctx context.Context, referrerID primitive.ObjectID, pending []*models.ReferralTransaction, paidAt time.Time, notes string) (decimal.Decimal, error) {
	ids := make([]primitive.ObjectID, len(pending))
	for i, t := range pending {
		ids[i] = t.ID
	}
	n, err := s.txns.MarkPaid(ctx, ids, paidAt, notes)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to mark transactions paid: %w", err)
	}
	if n != int64(len(ids)) {
		return decimal.Zero, fmt.Errorf("marked %d of %d transactions paid, aborting settlement", n, len(ids))
	}
	amount := ledger.Total(pending)
	if err := s.users.AddReferralFees(ctx, referrerID, amount); err != nil {
		return decimal.Zero, fmt.Errorf("failed to credit referrer: %w", err)
	}
	return amount, nil
}

func (s *ReferralServiceImpl) recordSettlement(log logrus.FieldLogger, result *models.SettlementResult) {
	if result.SettledCount == 0 {
		monitoring.ReferralSettlementsTotal.WithLabelValues("noop").Inc()
		log.Info("Nothing pending to settle")
		return
	}
	monitoring.ReferralSettlementsTotal.WithLabelValues("settled").Inc()
	monitoring.ReferralSettledAmount.Add(result.SettledAmount.InexactFloat64())
	log.WithFields(logrus.Fields{
		"count":  result.SettledCount,
		"amount": result.SettledAmount.String(),
	}).Info("Referral fees settled")
}

// Transactions lists referral transactions, optionally for one referrer
// and one status
func (s *ReferralServiceImpl) Transactions(ctx context.Context, referrerID *primitive.ObjectID, status models.ReferralTransactionStatus) ([]*models.ReferralTransaction, error) {
	if referrerID == nil {
		return s.txns.FindAll(ctx, status)
	}
	txns, err := s.txns.FindByReferrer(ctx, *referrerID)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return txns, nil
	}
	filtered := make([]*models.ReferralTransaction, 0, len(txns))
	for _, t := range txns {
		if t.Status == status {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// Stats counts every referral transaction in the system
func (s *ReferralServiceImpl) Stats(ctx context.Context) (*models.ReferralStats, error) {
	txns, err := s.txns.FindAll(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load referral transactions: %w", err)
	}
	stats := &models.ReferralStats{
		TotalReferrals: len(txns),
		TotalEarnings:  ledger.Total(txns),
	}
	for _, t := range txns {
		switch t.Status {
		case models.ReferralPendingPayment:
			stats.PendingPayments++
		case models.ReferralPaidToReferrer:
			stats.PaidTransactions++
		}
	}
	return stats, nil
}

func (s *ReferralServiceImpl) release(ctx context.Context, l lock.Lock) {
	if err := l.Release(context.WithoutCancel(ctx)); err != nil {
		s.log.WithError(err).Warn("Failed to release lock")
	}
}

func settlementLockKey(referrerID primitive.ObjectID, day string) string {
	return "settle:" + referrerID.Hex() + ":" + day
}

func withoutCancelled(txns []*models.ReferralTransaction) []*models.ReferralTransaction {
	kept := make([]*models.ReferralTransaction, 0, len(txns))
	for _, t := range txns {
		if t.Status != models.ReferralCancelled {
			kept = append(kept, t)
		}
	}
	return kept
}

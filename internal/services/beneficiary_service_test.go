package services

import (
	"context"
	"testing"
	"time"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func beneficiaryInput(name, nationalID string) *BeneficiaryInput {
	return &BeneficiaryInput{
		Name:            name,
		NationalID:      nationalID,
		Phone:           "0599123456",
		DetailedAddress: models.DetailedAddress{Governorate: "gaza", City: "gaza"},
		MembersCount:    4,
	}
}

func TestRegister_Defaults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	b, err := f.beneficiary.Register(ctx, beneficiaryInput("Mariam", "900000001"), "admin")
	require.NoError(t, err)
	assert.Equal(t, models.BeneficiaryStatusPending, b.Status)
	assert.Equal(t, models.IdentityStatusPending, b.IdentityStatus)
	assert.Equal(t, models.EligibilityUnderReview, b.EligibilityStatus)
	assert.Equal(t, "Mariam", b.FullName)
	assert.Equal(t, f.clock.t, b.CreatedAt)

	_, err = f.beneficiary.Register(ctx, beneficiaryInput("Other", "900000001"), "admin")
	assert.ErrorIs(t, err, ErrDuplicateNationalID)

	_, err = f.beneficiary.Register(ctx, beneficiaryInput("", "900000002"), "admin")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.beneficiary.Register(ctx, beneficiaryInput("Bad", "ABC"), "admin")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegister_WithReferralCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ref := f.referrer(t, "Referrer")
	_, err := f.referral.GenerateCode(ctx, ref.ID, "REF-1")
	require.NoError(t, err)

	in := beneficiaryInput("Salma", "900000010")
	in.ReferralCode = "REF-1"
	b, err := f.beneficiary.Register(ctx, in, "admin")
	require.NoError(t, err)
	require.NotNil(t, b.ReferrerUserID)
	assert.Equal(t, ref.ID, *b.ReferrerUserID)
	assert.Equal(t, "REF-1", b.ReferredByCode)

	pending, err := f.txns.FindByReferrer(ctx, ref.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, b.ID, pending[0].BeneficiaryID)

	// A used code fails the registration and nothing is stored
	again := beneficiaryInput("Late", "900000011")
	again.ReferralCode = "REF-1"
	_, err = f.beneficiary.Register(ctx, again, "admin")
	assert.ErrorIs(t, err, ErrInvalidReferralCode)

	_, err = f.beneficiaries.FindByNationalID(ctx, "900000011")
	assert.Error(t, err)
}

func TestIdentityWorkflow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b, err := f.beneficiary.Register(ctx, beneficiaryInput("Adam", "900000020"), "admin")
	require.NoError(t, err)

	got, err := f.beneficiary.RequestReupload(ctx, b.ID, "blurred photo", "admin")
	require.NoError(t, err)
	assert.Equal(t, models.IdentityStatusRejected, got.IdentityStatus)
	sent := f.sms.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "0599123456", sent[0].To)
	assert.Contains(t, sent[0].Message, "blurred photo")

	got, err = f.beneficiary.ApproveIdentity(ctx, b.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.IdentityStatusVerified, got.IdentityStatus)
	// identity actions leave account status and eligibility alone
	assert.Equal(t, models.BeneficiaryStatusPending, got.Status)
	assert.Equal(t, models.EligibilityUnderReview, got.EligibilityStatus)
	assert.Len(t, f.sms.Sent(), 1)

	stored, err := f.beneficiaries.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IdentityStatusVerified, stored.IdentityStatus)
	assert.Equal(t, models.BeneficiaryStatusPending, stored.Status)

	got, err = f.beneficiary.RejectIdentity(ctx, b.ID, "mismatch", "admin")
	require.NoError(t, err)
	assert.Equal(t, models.IdentityStatusRejected, got.IdentityStatus)
	assert.Equal(t, models.BeneficiaryStatusPending, got.Status)
	assert.Equal(t, models.EligibilityUnderReview, got.EligibilityStatus)

	got, err = f.beneficiary.UpdateStatus(ctx, b.ID, models.BeneficiaryStatusSuspended, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.BeneficiaryStatusSuspended, got.Status)

	_, err = f.beneficiary.UpdateStatus(ctx, b.ID, "deleted", "admin")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.beneficiary.ApproveIdentity(ctx, primitive.NewObjectID(), "admin")
	assert.ErrorIs(t, err, ErrBeneficiaryNotFound)
}

func TestQueryAndSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for i, name := range []string{"Zaid", "Amal", "Hala"} {
		in := beneficiaryInput(name, "90000010"+string(rune('0'+i)))
		f.clock.t = f.clock.t.Add(time.Hour)
		_, err := f.beneficiary.Register(ctx, in, "admin")
		require.NoError(t, err)
	}
	all, err := f.beneficiaries.FindAll(ctx)
	require.NoError(t, err)
	_, err = f.beneficiary.ApproveIdentity(ctx, all[0].ID, "admin")
	require.NoError(t, err)

	res, err := f.beneficiary.Query(ctx, query.Params{SortBy: query.SortName, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalCount)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "Amal", res.Items[0].Name)

	summary, err := f.beneficiary.StatusSummary(ctx, query.Params{})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Verified)
	assert.Equal(t, 2, summary.Pending)

	summary, err = f.beneficiary.StatusSummary(ctx, query.Params{IdentityStatus: models.IdentityStatusVerified})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
}

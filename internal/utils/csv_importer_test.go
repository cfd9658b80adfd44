package utils

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/repositories/memory"
	"github.com/ArowuTest/aidhub-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImporter() (*CSVImporter, *memory.BeneficiaryRepository) {
	repo := memory.NewBeneficiaryRepository(memory.NewStore())
	importer := NewCSVImporter(repo, logger.Discard())
	importer.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	return importer, repo
}

func TestImportBeneficiaries(t *testing.T) {
	importer, repo := newImporter()
	ctx := context.Background()

	csv := "Name,National ID,Phone,Governorate,City,Registration Date\n" +
		"Ahmad Saleh,401234567,+970 59-123-4567,Gaza,Gaza City,15/01/2024\n" +
		"Mona Ali,402345678,0599 111 222,Khan Younis,,2024-02-03\n" +
		"No Id,,0599000000,Gaza,,\n" +
		"Bad Date,403456789,0599000001,Gaza,,yesterday\n"

	result, err := importer.ImportBeneficiaries(ctx, strings.NewReader(csv), "importer")
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalRows)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Updated)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "Row 3")
	assert.Contains(t, result.Errors[1], "Row 4")

	b, err := repo.FindByNationalID(ctx, "401234567")
	require.NoError(t, err)
	assert.Equal(t, "970591234567", b.Phone)
	assert.Equal(t, "Gaza City", b.DetailedAddress.City)
	assert.Equal(t, models.BeneficiaryStatusPending, b.Status)
	assert.Equal(t, models.IdentityStatusPending, b.IdentityStatus)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), b.CreatedAt)
	assert.Equal(t, "importer", b.CreatedBy)
}

func TestImportBeneficiariesUpdatesExisting(t *testing.T) {
	importer, repo := newImporter()
	ctx := context.Background()

	first := "name,national id,phone,governorate\nAhmad,401234567,0599000001,Gaza\n"
	_, err := importer.ImportBeneficiaries(ctx, strings.NewReader(first), "importer")
	require.NoError(t, err)

	second := "الاسم,رقم الهوية,رقم الجوال,المحافظة\nAhmad Saleh,401234567,0599000002,Rafah\n"
	result, err := importer.ImportBeneficiaries(ctx, strings.NewReader(second), "importer")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Updated)

	b, err := repo.FindByNationalID(ctx, "401234567")
	require.NoError(t, err)
	assert.Equal(t, "Ahmad Saleh", b.Name)
	assert.Equal(t, "0599000002", b.Phone)
	assert.Equal(t, "Rafah", b.DetailedAddress.Governorate)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestImportBeneficiariesMissingColumns(t *testing.T) {
	importer, _ := newImporter()
	_, err := importer.ImportBeneficiaries(context.Background(), strings.NewReader("Name,Phone\nA,1\n"), "importer")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	cases := map[string]time.Time{
		"2024-01-15":           time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		"15/01/2024":           time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		"2024-01-15 08:30:00":  time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC),
		"2024-01-15T08:30:00Z": time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC),
		"Jan 15, 2024":         time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
	}

	_, err := ParseDate("not a date")
	assert.Error(t, err)
}

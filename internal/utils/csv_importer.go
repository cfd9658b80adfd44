package utils

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// ImportResult summarises one CSV import run
type ImportResult struct {
	TotalRows int      `json:"totalRows"`
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Errors    []string `json:"errors"`
}

func (r *ImportResult) fail(row int, format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf("Row %d: ", row)+fmt.Sprintf(format, args...))
}

// CSVImporter loads beneficiaries from spreadsheet exports. Existing
// beneficiaries, matched by national id, have their contact fields updated.
type CSVImporter struct {
	repo     repositories.BeneficiaryRepository
	validate *validator.Validate
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewCSVImporter creates a new CSVImporter
func NewCSVImporter(repo repositories.BeneficiaryRepository, log logrus.FieldLogger) *CSVImporter {
	return &CSVImporter{
		repo:     repo,
		validate: validator.New(),
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type columns struct {
	name, nationalID, phone, governorate, city, createdAt, membersCount int
}

func (c columns) get(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ImportBeneficiaries reads a header row and then one beneficiary per row.
// Row level problems are collected in the result; only an unreadable
// header or a cancelled context abort the run.
func (i *CSVImporter) ImportBeneficiaries(ctx context.Context, r io.Reader, importedBy string) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	cols := columns{
		name:         findColumnIndex(header, []string{"Name", "Full Name", "الاسم"}),
		nationalID:   findColumnIndex(header, []string{"National ID", "NationalID", "ID Number", "رقم الهوية"}),
		phone:        findColumnIndex(header, []string{"Phone", "Phone Number", "Mobile", "رقم الجوال"}),
		governorate:  findColumnIndex(header, []string{"Governorate", "المحافظة"}),
		city:         findColumnIndex(header, []string{"City", "المدينة"}),
		createdAt:    findColumnIndex(header, []string{"Created At", "Registration Date", "Date", "تاريخ التسجيل"}),
		membersCount: findColumnIndex(header, []string{"Members", "Members Count", "Family Size", "عدد الأفراد"}),
	}
	if cols.name == -1 || cols.nationalID == -1 || cols.phone == -1 {
		return nil, errors.New("name, national id and phone columns are required")
	}

	result := &ImportResult{Errors: []string{}}
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.fail(line, "unreadable: %v", err)
			continue
		}
		result.TotalRows++

		b, err := i.parseRow(cols, row, importedBy)
		if err != nil {
			result.fail(line, "%v", err)
			continue
		}

		created, err := i.upsert(ctx, b, importedBy)
		if err != nil {
			result.fail(line, "failed to save: %v", err)
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	i.log.WithFields(logrus.Fields{
		"rows":    result.TotalRows,
		"created": result.Created,
		"updated": result.Updated,
		"errors":  len(result.Errors),
	}).Info("Beneficiary import finished")
	return result, nil
}

func (i *CSVImporter) parseRow(cols columns, row []string, importedBy string) (*models.Beneficiary, error) {
	now := i.now()
	b := &models.Beneficiary{
		Name:              cols.get(row, cols.name),
		NationalID:        cols.get(row, cols.nationalID),
		Phone:             CleanPhone(cols.get(row, cols.phone)),
		DetailedAddress:   models.DetailedAddress{Governorate: cols.get(row, cols.governorate), City: cols.get(row, cols.city)},
		IdentityStatus:    models.IdentityStatusPending,
		Status:            models.BeneficiaryStatusPending,
		EligibilityStatus: models.EligibilityUnderReview,
		CreatedAt:         now,
		UpdatedAt:         now,
		CreatedBy:         importedBy,
	}
	b.FullName = b.Name

	if raw := cols.get(row, cols.membersCount); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid members count: %s", raw)
		}
		b.MembersCount = n
	}

	if raw := cols.get(row, cols.createdAt); raw != "" {
		date, err := ParseDate(raw)
		if err != nil {
			return nil, err
		}
		b.CreatedAt = date
	}

	if err := i.validate.Struct(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (i *CSVImporter) upsert(ctx context.Context, b *models.Beneficiary, importedBy string) (bool, error) {
	existing, err := i.repo.FindByNationalID(ctx, b.NationalID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return true, i.repo.Create(ctx, b)
	case err != nil:
		return false, err
	}

	existing.Name = b.Name
	if existing.FullName == "" {
		existing.FullName = b.Name
	}
	existing.Phone = b.Phone
	if b.DetailedAddress.Governorate != "" {
		existing.DetailedAddress.Governorate = b.DetailedAddress.Governorate
	}
	if b.DetailedAddress.City != "" {
		existing.DetailedAddress.City = b.DetailedAddress.City
	}
	if b.MembersCount > 0 {
		existing.MembersCount = b.MembersCount
	}
	existing.UpdatedAt = i.now()
	existing.UpdatedBy = importedBy
	return false, i.repo.Update(ctx, existing)
}

// findColumnIndex finds the index of a column by possible names
func findColumnIndex(header []string, possibleNames []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range possibleNames {
			if strings.ToLower(name) == h {
				return i
			}
		}
	}
	return -1
}

// CleanPhone strips everything but digits
func CleanPhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
}

var dateFormats = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"02/01/2006 15:04:05",
	"2/1/2006",
	"02-01-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseDate parses the date layouts seen in spreadsheet exports. Slashed
// dates are read day first.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, format := range dateFormats {
		if date, err := time.Parse(format, value); err == nil {
			return date.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", value)
}

// Package query implements the filter, sort and paginate pipeline behind
// the beneficiary status views.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/ArowuTest/aidhub-backend/internal/models"
)

// All is the sentinel that disables a categorical filter.
const All = "all"

// Date ranges
const (
	RangeToday = "today"
	RangeWeek  = "week"
	RangeMonth = "month"
)

// Sort columns
const (
	SortName         = "name"
	SortNationalID   = "nationalId"
	SortCreatedAt    = "createdAt"
	SortLastReceived = "lastReceived"
)

// DefaultPageSize is used when the requested size is not allowed
const DefaultPageSize = 20

var allowedPageSizes = map[int]bool{10: true, 20: true, 50: true, 100: true}

// Params describes one table view. Callers must reset Page to 1 whenever
// Search, Status, IdentityStatus, Governorate or DateRange changes, or the
// view can be left on a page past the end of the filtered list.
type Params struct {
	Search         string
	Status         string
	IdentityStatus string
	Governorate    string
	DateRange      string
	SortBy         string
	SortDesc       bool
	Page           int
	PageSize       int
}

// Result is one page of a filtered list.
type Result struct {
	Items      []*models.Beneficiary `json:"items"`
	TotalCount int                   `json:"totalCount"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
	TotalPages int                   `json:"totalPages"`
}

// Beneficiaries filters, sorts and pages all. The input slice is not modified.
func Beneficiaries(all []*models.Beneficiary, p Params, now time.Time) Result {
	filtered := Filter(all, p, now)
	Sort(filtered, p.SortBy, p.SortDesc)

	size := PageSize(p.PageSize)
	page := p.Page
	if page < 1 {
		page = 1
	}

	res := Result{
		TotalCount: len(filtered),
		Page:       page,
		PageSize:   size,
		TotalPages: (len(filtered) + size - 1) / size,
		Items:      []*models.Beneficiary{},
	}

	start := (page - 1) * size
	if start >= len(filtered) {
		return res
	}
	end := start + size
	if end > len(filtered) {
		end = len(filtered)
	}
	res.Items = filtered[start:end]
	return res
}

// Filter returns the members of all that satisfy every active predicate of p,
// in input order.
func Filter(all []*models.Beneficiary, p Params, now time.Time) []*models.Beneficiary {
	search := strings.TrimSpace(p.Search)
	lowered := strings.ToLower(search)
	since, hasRange := rangeStart(p.DateRange, now)

	out := make([]*models.Beneficiary, 0, len(all))
	for _, b := range all {
		if b == nil {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(b.Name), lowered) &&
			!strings.Contains(b.NationalID, search) &&
			!strings.Contains(b.Phone, search) {
			continue
		}
		if active(p.Status) && b.Status != p.Status {
			continue
		}
		if active(p.IdentityStatus) && b.IdentityStatus != p.IdentityStatus {
			continue
		}
		if active(p.Governorate) && b.DetailedAddress.Governorate != p.Governorate {
			continue
		}
		if hasRange && b.CreatedAt.Before(since) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Sort orders list in place by column. Ties keep their current order.
func Sort(list []*models.Beneficiary, column string, desc bool) {
	less := func(a, b *models.Beneficiary) bool {
		switch column {
		case SortName:
			return a.Name < b.Name
		case SortNationalID:
			return a.NationalID < b.NationalID
		case SortLastReceived:
			return receivedBefore(a.LastReceived, b.LastReceived)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if desc {
			return less(list[j], list[i])
		}
		return less(list[i], list[j])
	})
}

// receivedBefore orders beneficiaries that never received a package first
func receivedBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return b != nil
	case b == nil:
		return false
	default:
		return a.Before(*b)
	}
}

// PageSize returns size if it is one of the allowed sizes, else the default.
func PageSize(size int) int {
	if allowedPageSizes[size] {
		return size
	}
	return DefaultPageSize
}

func active(v string) bool {
	return v != "" && v != All
}

func rangeStart(r string, now time.Time) (time.Time, bool) {
	switch r {
	case RangeToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), true
	case RangeWeek:
		return now.AddDate(0, 0, -7), true
	case RangeMonth:
		return now.AddDate(0, -1, 0), true
	default:
		return time.Time{}, false
	}
}

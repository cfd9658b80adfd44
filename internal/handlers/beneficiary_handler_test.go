package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/query"
	"github.com/ArowuTest/aidhub-backend/internal/repositories/memory"
	"github.com/ArowuTest/aidhub-backend/internal/services"
	"github.com/ArowuTest/aidhub-backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBeneficiaryRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	repo := memory.NewBeneficiaryRepository(store)
	base := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	for i, name := range []string{"Oldest", "Middle", "Newest"} {
		require.NoError(t, repo.Create(context.Background(), &models.Beneficiary{
			Name:           name,
			NationalID:     "40000000" + string(rune('0'+i)),
			Phone:          "0599000000",
			Status:         models.BeneficiaryStatusPending,
			IdentityStatus: models.IdentityStatusPending,
			CreatedAt:      base.AddDate(0, 0, i),
		}))
	}

	svc := services.NewBeneficiaryService(store, repo, nil, nil, logger.Discard())
	h := NewBeneficiaryHandler(svc)
	r := gin.New()
	r.GET("/beneficiaries", h.List)
	return r
}

func listNames(t *testing.T, r *gin.Engine, rawQuery string) []string {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/beneficiaries"+rawQuery, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res query.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	names := make([]string, 0, len(res.Items))
	for _, b := range res.Items {
		names = append(names, b.Name)
	}
	return names
}

func TestListBeneficiariesSortOrder(t *testing.T) {
	r := newBeneficiaryRouter(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"default is newest first", "", []string{"Newest", "Middle", "Oldest"}},
		{"explicit desc", "?sortBy=createdAt&sortOrder=desc", []string{"Newest", "Middle", "Oldest"}},
		{"asc", "?sortBy=createdAt&sortOrder=asc", []string{"Oldest", "Middle", "Newest"}},
		{"asc is case insensitive", "?sortOrder=ASC", []string{"Oldest", "Middle", "Newest"}},
		{"by name asc", "?sortBy=name&sortOrder=asc", []string{"Middle", "Newest", "Oldest"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, listNames(t, r, tt.query))
		})
	}
}

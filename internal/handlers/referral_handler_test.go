package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/repositories/memory"
	"github.com/ArowuTest/aidhub-backend/internal/services"
	"github.com/ArowuTest/aidhub-backend/pkg/lock"
	"github.com/ArowuTest/aidhub-backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type referralEnv struct {
	router   *gin.Engine
	users    *memory.SystemUserRepository
	txns     *memory.ReferralTransactionRepository
	referrer *models.SystemUser
}

func newReferralEnv(t *testing.T) *referralEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	env := &referralEnv{
		users: memory.NewSystemUserRepository(store),
		txns:  memory.NewReferralTransactionRepository(store),
	}
	svc := services.NewReferralService(
		store,
		lock.NewLocal(),
		env.users,
		env.txns,
		memory.NewReferralCodeRepository(store),
		services.ReferralOptions{Fee: decimal.NewFromInt(5), CodeTTL: 24 * time.Hour},
		logger.Discard(),
	)
	h := NewReferralHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userEmail", "admin@example.org")
		c.Next()
	})
	r.GET("/referrers/:id/daily-earnings", h.DailyEarnings)
	r.POST("/referrers/:id/daily-earnings/:date/settle", h.SettleDay)
	r.POST("/referrers/:id/codes", h.GenerateCode)
	r.GET("/stats", h.Stats)
	env.router = r

	env.referrer = &models.SystemUser{Name: "Sara Khalil", Email: "sara@example.org", Status: "active", TotalReferralFees: decimal.Zero}
	require.NoError(t, env.users.Create(context.Background(), env.referrer))
	return env
}

func (e *referralEnv) addTxn(t *testing.T, at time.Time, status models.ReferralTransactionStatus) {
	t.Helper()
	require.NoError(t, e.txns.Create(context.Background(), &models.ReferralTransaction{
		ReferrerUserID: e.referrer.ID,
		Amount:         decimal.NewFromInt(5),
		Status:         status,
		CreatedAt:      at,
	}))
}

func (e *referralEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestSettleDayHandler(t *testing.T) {
	env := newReferralEnv(t)
	day := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	env.addTxn(t, day, models.ReferralPendingPayment)
	env.addTxn(t, day.Add(3*time.Hour), models.ReferralPendingPayment)
	env.addTxn(t, day.Add(24*time.Hour), models.ReferralPendingPayment)

	path := "/referrers/" + env.referrer.ID.Hex() + "/daily-earnings/2024-01-15/settle"

	w := env.do(http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result models.SettlementResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 2, result.SettledCount)
	assert.True(t, decimal.NewFromInt(10).Equal(result.SettledAmount))
	assert.Equal(t, "2024-01-15", result.Date)

	// Settling again changes nothing
	w = env.do(http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 0, result.SettledCount)

	user, err := env.users.FindByID(context.Background(), env.referrer.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(user.TotalReferralFees))
}

func TestSettleDayHandlerErrors(t *testing.T) {
	env := newReferralEnv(t)
	env.addTxn(t, time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), models.ReferralPendingPayment)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"invalid id", "/referrers/not-an-id/daily-earnings/2024-01-15/settle", http.StatusBadRequest},
		{"invalid day", "/referrers/" + env.referrer.ID.Hex() + "/daily-earnings/15-01-2024/settle", http.StatusBadRequest},
		{"unknown referrer", "/referrers/" + primitive.NewObjectID().Hex() + "/daily-earnings/2024-01-15/settle", http.StatusNotFound},
		{"empty day", "/referrers/" + env.referrer.ID.Hex() + "/daily-earnings/2024-01-16/settle", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, tt.path, nil)
			assert.Equal(t, tt.want, w.Code, w.Body.String())

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestSettleDayHandlerExcludeCancelled(t *testing.T) {
	env := newReferralEnv(t)
	env.addTxn(t, time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), models.ReferralCancelled)
	path := "/referrers/" + env.referrer.ID.Hex() + "/daily-earnings/2024-01-15/settle"

	// Default keeps cancelled rows, so the day exists with nothing to pay
	w := env.do(http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result models.SettlementResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 0, result.SettledCount)

	w = env.do(http.MethodPost, path+"?excludeCancelled=true", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())

	w = env.do(http.MethodPost, path+"?excludeCancelled=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDailyEarningsHandler(t *testing.T) {
	env := newReferralEnv(t)
	day := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	env.addTxn(t, day, models.ReferralPendingPayment)
	env.addTxn(t, day, models.ReferralCancelled)
	env.addTxn(t, day.Add(-24*time.Hour), models.ReferralPaidToReferrer)

	base := "/referrers/" + env.referrer.ID.Hex() + "/daily-earnings"

	w := env.do(http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var days []models.DailyEarningsSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &days))
	require.Len(t, days, 2)
	assert.Equal(t, "2024-01-15", days[0].Date)
	assert.Equal(t, 2, days[0].ReferralsCount)

	w = env.do(http.MethodGet, base+"?excludeCancelled=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &days))
	require.Len(t, days, 2)
	assert.Equal(t, 1, days[0].ReferralsCount)

	w = env.do(http.MethodGet, base+"?excludeCancelled=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateCodeHandler(t *testing.T) {
	env := newReferralEnv(t)
	path := "/referrers/" + env.referrer.ID.Hex() + "/codes"

	w := env.do(http.MethodPost, path, map[string]string{"customCode": "SARA-2024"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var code models.ReferralCode
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &code))
	assert.Equal(t, "SARA-2024", code.Code)
	assert.Equal(t, models.ReferralCodeActive, code.Status)

	// A second referrer cannot take the same custom code
	other := &models.SystemUser{Name: "Omar", Email: "omar@example.org", Status: "active", TotalReferralFees: decimal.Zero}
	require.NoError(t, env.users.Create(context.Background(), other))
	w = env.do(http.MethodPost, "/referrers/"+other.ID.Hex()+"/codes", map[string]string{"customCode": "SARA-2024"})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

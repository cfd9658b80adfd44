package handlers

import (
	"net/http"
	"strconv"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReferralHandler handles referral codes, earnings and settlement
type ReferralHandler struct {
	referralService services.ReferralService
}

// NewReferralHandler creates a new ReferralHandler
func NewReferralHandler(referralService services.ReferralService) *ReferralHandler {
	return &ReferralHandler{
		referralService: referralService,
	}
}

// ListReferrers handles GET /referrals/referrers
func (h *ReferralHandler) ListReferrers(c *gin.Context) {
	users, err := h.referralService.ListReferrers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetReferrer handles GET /referrals/referrers/:id
func (h *ReferralHandler) GetReferrer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.referralService.GetReferrer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListCodes handles GET /referrals/referrers/:id/codes
func (h *ReferralHandler) ListCodes(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	codes, err := h.referralService.ListCodes(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, codes)
}

// GenerateCode handles POST /referrals/referrers/:id/codes
func (h *ReferralHandler) GenerateCode(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var request struct {
		CustomCode string `json:"customCode"`
	}
	// An empty body asks for a generated code
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	code, err := h.referralService.GenerateCode(c.Request.Context(), id, request.CustomCode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, code)
}

// DailyEarnings handles GET /referrals/referrers/:id/daily-earnings
func (h *ReferralHandler) DailyEarnings(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	excludeCancelled, ok := excludeCancelledParam(c)
	if !ok {
		return
	}
	days, err := h.referralService.DailyEarnings(c.Request.Context(), id, excludeCancelled)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, days)
}

// SettleDay handles POST /referrals/referrers/:id/daily-earnings/:date/settle
func (h *ReferralHandler) SettleDay(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	excludeCancelled, ok := excludeCancelledParam(c)
	if !ok {
		return
	}
	result, err := h.referralService.SettleDay(c.Request.Context(), id, c.Param("date"), actor(c), excludeCancelled)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListTransactions handles GET /referrals/transactions
func (h *ReferralHandler) ListTransactions(c *gin.Context) {
	var referrerID *primitive.ObjectID
	if raw := c.Query("referrerId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid referrerId format"})
			return
		}
		referrerID = &id
	}
	status := models.ReferralTransactionStatus(c.Query("status"))
	if status == "all" {
		status = ""
	}
	txns, err := h.referralService.Transactions(c.Request.Context(), referrerID, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txns)
}

// SettleTransaction handles POST /referrals/transactions/:id/settle
func (h *ReferralHandler) SettleTransaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var request struct {
		Notes string `json:"notes"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	result, err := h.referralService.SettleTransaction(c.Request.Context(), id, request.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RedeemCode handles POST /referrals/codes/redeem
func (h *ReferralHandler) RedeemCode(c *gin.Context) {
	var request struct {
		Code          string `json:"code" binding:"required"`
		BeneficiaryID string `json:"beneficiaryId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	beneficiaryID, err := primitive.ObjectIDFromHex(request.BeneficiaryID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid beneficiaryId format"})
		return
	}
	txn, err := h.referralService.RedeemCode(c.Request.Context(), request.Code, beneficiaryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

// Stats handles GET /referrals/stats
func (h *ReferralHandler) Stats(c *gin.Context) {
	stats, err := h.referralService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// excludeCancelledParam reads the optional ?excludeCancelled override.
// nil means the configured default applies.
func excludeCancelledParam(c *gin.Context) (*bool, bool) {
	raw, set := c.GetQuery("excludeCancelled")
	if !set {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "excludeCancelled must be true or false"})
		return nil, false
	}
	return &v, true
}

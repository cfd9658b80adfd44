package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ArowuTest/aidhub-backend/internal/query"
	"github.com/ArowuTest/aidhub-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// BeneficiaryHandler handles beneficiary-related HTTP requests
type BeneficiaryHandler struct {
	beneficiaryService services.BeneficiaryService
}

// NewBeneficiaryHandler creates a new BeneficiaryHandler
func NewBeneficiaryHandler(beneficiaryService services.BeneficiaryService) *BeneficiaryHandler {
	return &BeneficiaryHandler{
		beneficiaryService: beneficiaryService,
	}
}

// queryParams reads the table view parameters from the query string.
// Without sortOrder the newest registrations come first.
func queryParams(c *gin.Context) query.Params {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(query.DefaultPageSize)))
	return query.Params{
		Search:         c.Query("search"),
		Status:         c.Query("status"),
		IdentityStatus: c.Query("identityStatus"),
		Governorate:    c.Query("governorate"),
		DateRange:      c.Query("dateRange"),
		SortBy:         c.Query("sortBy"),
		SortDesc:       !strings.EqualFold(c.DefaultQuery("sortOrder", "desc"), "asc"),
		Page:           page,
		PageSize:       pageSize,
	}
}

// List handles GET /beneficiaries
func (h *BeneficiaryHandler) List(c *gin.Context) {
	result, err := h.beneficiaryService.Query(c.Request.Context(), queryParams(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Summary handles GET /beneficiaries/summary
func (h *BeneficiaryHandler) Summary(c *gin.Context) {
	summary, err := h.beneficiaryService.StatusSummary(c.Request.Context(), queryParams(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Create handles POST /beneficiaries
func (h *BeneficiaryHandler) Create(c *gin.Context) {
	var input services.BeneficiaryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.beneficiaryService.Register(c.Request.Context(), &input, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// Get handles GET /beneficiaries/:id
func (h *BeneficiaryHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.beneficiaryService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// Update handles PUT /beneficiaries/:id
func (h *BeneficiaryHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input services.BeneficiaryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.beneficiaryService.Update(c.Request.Context(), id, &input, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// Delete handles DELETE /beneficiaries/:id
func (h *BeneficiaryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.beneficiaryService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Beneficiary deleted successfully"})
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func bindReason(c *gin.Context) (string, bool) {
	var req reasonRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return "", false
		}
	}
	return req.Reason, true
}

// ApproveIdentity handles POST /beneficiaries/:id/identity/approve
func (h *BeneficiaryHandler) ApproveIdentity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.beneficiaryService.ApproveIdentity(c.Request.Context(), id, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// RejectIdentity handles POST /beneficiaries/:id/identity/reject
func (h *BeneficiaryHandler) RejectIdentity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	reason, ok := bindReason(c)
	if !ok {
		return
	}
	b, err := h.beneficiaryService.RejectIdentity(c.Request.Context(), id, reason, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// RequestReupload handles POST /beneficiaries/:id/identity/reupload
func (h *BeneficiaryHandler) RequestReupload(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	reason, ok := bindReason(c)
	if !ok {
		return
	}
	b, err := h.beneficiaryService.RequestReupload(c.Request.Context(), id, reason, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// UpdateStatus handles PUT /beneficiaries/:id/status
func (h *BeneficiaryHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var request struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.beneficiaryService.UpdateStatus(c.Request.Context(), id, request.Status, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

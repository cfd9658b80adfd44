package handlers

import (
	"net/http"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PackageHandler handles package templates and individual sends
type PackageHandler struct {
	packageService services.PackageService
}

// NewPackageHandler creates a new PackageHandler
func NewPackageHandler(packageService services.PackageService) *PackageHandler {
	return &PackageHandler{
		packageService: packageService,
	}
}

// ListTemplates handles GET /packages/templates
func (h *PackageHandler) ListTemplates(c *gin.Context) {
	templates, err := h.packageService.ListTemplates(c.Request.Context(), c.Query("type"), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

// GetTemplate handles GET /packages/templates/:id
func (h *PackageHandler) GetTemplate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	t, err := h.packageService.GetTemplate(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// CreateTemplate handles POST /packages/templates
func (h *PackageHandler) CreateTemplate(c *gin.Context) {
	var t models.PackageTemplate
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.packageService.CreateTemplate(c.Request.Context(), &t)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateTemplate handles PUT /packages/templates/:id
func (h *PackageHandler) UpdateTemplate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var t models.PackageTemplate
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := h.packageService.UpdateTemplate(c.Request.Context(), id, &t)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteTemplate handles DELETE /packages/templates/:id
func (h *PackageHandler) DeleteTemplate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.packageService.DeleteTemplate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Package template deleted successfully"})
}

// ListDispatches handles GET /packages/dispatches
func (h *PackageHandler) ListDispatches(c *gin.Context) {
	var beneficiaryID *primitive.ObjectID
	if raw := c.Query("beneficiaryId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid beneficiaryId format"})
			return
		}
		beneficiaryID = &id
	}
	dispatches, err := h.packageService.ListDispatches(c.Request.Context(), beneficiaryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dispatches)
}

// Dispatch handles POST /packages/dispatches
func (h *PackageHandler) Dispatch(c *gin.Context) {
	var input services.DispatchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := h.packageService.Dispatch(c.Request.Context(), &input, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// Reasons handles GET /packages/dispatch-reasons
func (h *PackageHandler) Reasons(c *gin.Context) {
	c.JSON(http.StatusOK, h.packageService.Reasons())
}

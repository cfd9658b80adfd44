package handlers

import (
	"net/http"

	"github.com/ArowuTest/aidhub-backend/internal/models"
	"github.com/ArowuTest/aidhub-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// MessageTemplateHandler handles SMS template HTTP requests
type MessageTemplateHandler struct {
	templateService services.MessageTemplateService
}

// NewMessageTemplateHandler creates a new MessageTemplateHandler
func NewMessageTemplateHandler(templateService services.MessageTemplateService) *MessageTemplateHandler {
	return &MessageTemplateHandler{
		templateService: templateService,
	}
}

// List handles GET /messages/templates
func (h *MessageTemplateHandler) List(c *gin.Context) {
	templates, err := h.templateService.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

// Get handles GET /messages/templates/:id
func (h *MessageTemplateHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	t, err := h.templateService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// Create handles POST /messages/templates
func (h *MessageTemplateHandler) Create(c *gin.Context) {
	var t models.MessageTemplate
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.templateService.Create(c.Request.Context(), &t, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update handles PUT /messages/templates/:id
func (h *MessageTemplateHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var t models.MessageTemplate
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := h.templateService.Update(c.Request.Context(), id, &t, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /messages/templates/:id
func (h *MessageTemplateHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.templateService.Delete(c.Request.Context(), id, actor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message template deleted successfully"})
}

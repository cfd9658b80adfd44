package handlers

import (
	"net/http"
	"strconv"

	"github.com/ArowuTest/aidhub-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler handles SMS sending, the SMS log and SMS credentials
type NotificationHandler struct {
	notificationService services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// SendSMS handles POST /sms/send
func (h *NotificationHandler) SendSMS(c *gin.Context) {
	var request services.OutgoingSMS
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	notification, err := h.notificationService.SendSMS(c.Request.Context(), &request)
	if err != nil {
		if notification != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "notification": notification})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notification)
}

// SendBulk handles POST /sms/send-bulk
func (h *NotificationHandler) SendBulk(c *gin.Context) {
	var request struct {
		Phones  []string `json:"phones" binding:"required,min=1"`
		Content string   `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.notificationService.SendBulk(c.Request.Context(), request.Phones, request.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SendTemplate handles POST /sms/send-template
func (h *NotificationHandler) SendTemplate(c *gin.Context) {
	var request struct {
		TemplateID string            `json:"templateId" binding:"required"`
		Phone      string            `json:"phone" binding:"required"`
		Variables  map[string]string `json:"variables"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	templateID, err := primitive.ObjectIDFromHex(request.TemplateID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid templateId format"})
		return
	}
	notification, err := h.notificationService.SendTemplate(c.Request.Context(), templateID, request.Phone, request.Variables)
	if err != nil {
		if notification != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "notification": notification})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notification)
}

// CheckBalance handles POST /sms/balance
func (h *NotificationHandler) CheckBalance(c *gin.Context) {
	balance, err := h.notificationService.CheckBalance(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// Notifications handles GET /sms/notifications
func (h *NotificationHandler) Notifications(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	notifications, err := h.notificationService.Notifications(c.Request.Context(), c.Query("phone"), c.Query("status"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// DeliveryStatus handles GET /sms/notifications/:id/status
func (h *NotificationHandler) DeliveryStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	notification, err := h.notificationService.DeliveryStatus(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notification)
}

// GetSMSSettings handles GET /sms/settings
func (h *NotificationHandler) GetSMSSettings(c *gin.Context) {
	settings, err := h.notificationService.GetSMSSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// SaveSMSSettings handles PUT /sms/settings
func (h *NotificationHandler) SaveSMSSettings(c *gin.Context) {
	var request struct {
		APIKey     string `json:"apiKey" binding:"required"`
		SenderName string `json:"senderName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	settings, err := h.notificationService.SaveSMSSettings(c.Request.Context(), request.APIKey, request.SenderName, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

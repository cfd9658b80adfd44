package handlers

import (
	"errors"
	"net/http"

	"github.com/ArowuTest/aidhub-backend/internal/repositories"
	"github.com/ArowuTest/aidhub-backend/internal/services"
	"github.com/ArowuTest/aidhub-backend/pkg/lock"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrBeneficiaryNotFound),
		errors.Is(err, services.ErrReferrerNotFound),
		errors.Is(err, services.ErrSettlementNotFound),
		errors.Is(err, services.ErrTransactionNotFound),
		errors.Is(err, services.ErrPackageNotFound),
		errors.Is(err, services.ErrTemplateNotFound),
		errors.Is(err, services.ErrSMSNotConfigured),
		errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidDay),
		errors.Is(err, services.ErrInvalidReferralCode),
		errors.Is(err, services.ErrReferralCodeExpired),
		errors.Is(err, services.ErrTemplateInactive),
		errors.Is(err, services.ErrPackageInactive),
		errors.Is(err, services.ErrBalanceUnsupported):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrDuplicateNationalID),
		errors.Is(err, services.ErrReferralCodeTaken),
		errors.Is(err, services.ErrTransactionCanceled),
		errors.Is(err, repositories.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, lock.ErrNotAcquired):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": ...}. Internal errors are attached to the
// gin context for the request logger and not echoed to the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// pathID parses the named path parameter as an ObjectID, writing a 400 on failure
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// actor identifies the authenticated user for audit fields
func actor(c *gin.Context) string {
	if email, ok := c.Get("userEmail"); ok {
		if s, ok := email.(string); ok && s != "" {
			return s
		}
	}
	if id, ok := c.Get("userID"); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

package routes

import (
	"net/http"

	"github.com/ArowuTest/aidhub-backend/internal/config"
	"github.com/ArowuTest/aidhub-backend/internal/handlers"
	"github.com/ArowuTest/aidhub-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// HandlerDependencies holds every handler the router mounts
type HandlerDependencies struct {
	AuthHandler            *handlers.AuthHandler
	BeneficiaryHandler     *handlers.BeneficiaryHandler
	ReferralHandler        *handlers.ReferralHandler
	PackageHandler         *handlers.PackageHandler
	NotificationHandler    *handlers.NotificationHandler
	MessageTemplateHandler *handlers.MessageTemplateHandler
	SettingsHandler        *handlers.SystemSettingsHandler
	// Ready reports whether the storage backend is reachable
	Ready func(c *gin.Context) error
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies, log logrus.FieldLogger) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(cfg))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			if deps.Ready != nil {
				if err := deps.Ready(c); err != nil {
					c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
					return
				}
			}
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/login", deps.AuthHandler.Login)
		}
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg, log))
	{
		beneficiaries := protected.Group("/beneficiaries")
		{
			h := deps.BeneficiaryHandler
			beneficiaries.GET("", h.List)
			beneficiaries.GET("/summary", h.Summary)
			beneficiaries.POST("", h.Create)
			beneficiaries.GET("/:id", h.Get)
			beneficiaries.PUT("/:id", h.Update)
			beneficiaries.DELETE("/:id", h.Delete)
			beneficiaries.POST("/:id/identity/approve", h.ApproveIdentity)
			beneficiaries.POST("/:id/identity/reject", h.RejectIdentity)
			beneficiaries.POST("/:id/identity/reupload", h.RequestReupload)
			beneficiaries.PUT("/:id/status", h.UpdateStatus)
		}

		referrals := protected.Group("/referrals")
		{
			h := deps.ReferralHandler
			referrals.GET("/referrers", h.ListReferrers)
			referrals.GET("/referrers/:id", h.GetReferrer)
			referrals.GET("/referrers/:id/codes", h.ListCodes)
			referrals.POST("/referrers/:id/codes", h.GenerateCode)
			referrals.GET("/referrers/:id/daily-earnings", h.DailyEarnings)
			referrals.POST("/referrers/:id/daily-earnings/:date/settle", h.SettleDay)
			referrals.GET("/transactions", h.ListTransactions)
			referrals.POST("/transactions/:id/settle", h.SettleTransaction)
			referrals.POST("/codes/redeem", h.RedeemCode)
			referrals.GET("/stats", h.Stats)
		}

		packages := protected.Group("/packages")
		{
			h := deps.PackageHandler
			packages.GET("/templates", h.ListTemplates)
			packages.POST("/templates", h.CreateTemplate)
			packages.GET("/templates/:id", h.GetTemplate)
			packages.PUT("/templates/:id", h.UpdateTemplate)
			packages.DELETE("/templates/:id", h.DeleteTemplate)
			packages.GET("/dispatches", h.ListDispatches)
			packages.POST("/dispatches", h.Dispatch)
			packages.GET("/dispatch-reasons", h.Reasons)
		}

		sms := protected.Group("/sms")
		{
			h := deps.NotificationHandler
			sms.GET("/settings", h.GetSMSSettings)
			sms.PUT("/settings", h.SaveSMSSettings)
			sms.POST("/balance", h.CheckBalance)
			sms.POST("/send", h.SendSMS)
			sms.POST("/send-bulk", h.SendBulk)
			sms.POST("/send-template", h.SendTemplate)
			sms.GET("/notifications", h.Notifications)
			sms.GET("/notifications/:id/status", h.DeliveryStatus)
		}

		settings := protected.Group("/settings")
		{
			h := deps.SettingsHandler
			settings.GET("", h.GetSettings)
			settings.PUT("", h.UpdateSettings)
			settings.PUT("/sms-gateway", h.UpdateSMSGateway)
		}

		messages := protected.Group("/messages")
		{
			h := deps.MessageTemplateHandler
			messages.GET("/templates", h.List)
			messages.POST("/templates", h.Create)
			messages.GET("/templates/:id", h.Get)
			messages.PUT("/templates/:id", h.Update)
			messages.DELETE("/templates/:id", h.Delete)
		}
	}

	return router
}

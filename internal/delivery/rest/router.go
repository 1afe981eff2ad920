package rest

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(h *Handlers, adminToken string, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/healthz", h.Health)

	admin := r.Group("/admin", requireAdmin(adminToken))
	{
		admin.POST("/naver-import", h.ImportAll)
		admin.POST("/naver-import/:category", h.ImportCategory)
		admin.POST("/crawl", h.Crawl)
	}

	prices := r.Group("/prices")
	{
		prices.GET("/parts/:partId", h.GetPriceComparison)
		prices.GET("/parts/:partId/history", h.GetPriceHistory)

		alerts := prices.Group("/alerts", requireUser())
		alerts.POST("", h.CreateAlert)
		alerts.GET("", h.ListAlerts)
		alerts.DELETE("/:alertId", h.DeleteAlert)
	}

	r.GET("/sellers", h.ListSellers)

	notifications := r.Group("/notifications", requireUser())
	{
		notifications.GET("", h.ListNotifications)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.PATCH("/read-all", h.MarkAllNotificationsRead)
		notifications.PATCH("/:id/read", h.MarkNotificationRead)
	}

	r.GET("/ws/notifications", requireUser(), h.NotificationSocket)

	return r
}

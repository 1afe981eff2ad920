package rest

import (
	"net/http"
	"strconv"

	"github.com/NasaVasa/partprice/internal/delivery/ws"
	"github.com/NasaVasa/partprice/internal/usecase"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	imports *usecase.ImportUsecase
	crawls  *usecase.CrawlScheduler
	prices  *usecase.PriceUsecase
	alerts  *usecase.AlertUsecase
	inbox   *usecase.NotificationUsecase
	hub     *ws.Hub
	logger  *zap.Logger
}

func NewHandlers(imports *usecase.ImportUsecase, crawls *usecase.CrawlScheduler, prices *usecase.PriceUsecase, alerts *usecase.AlertUsecase, inbox *usecase.NotificationUsecase, hub *ws.Hub, logger *zap.Logger) *Handlers {
	return &Handlers{imports: imports, crawls: crawls, prices: prices, alerts: alerts, inbox: inbox, hub: hub, logger: logger}
}

func (h *Handlers) ImportAll(c *gin.Context) {
	result := h.imports.ImportAll(c.Request.Context())
	c.JSON(importStatus(result), result)
}

func (h *Handlers) ImportCategory(c *gin.Context) {
	result := h.imports.ImportCategory(c.Request.Context(), c.Param("category"))
	c.JSON(importStatus(result), result)
}

func (h *Handlers) Crawl(c *gin.Context) {
	report, err := h.crawls.CrawlOnce(c.Request.Context())
	if err != nil {
		h.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, "crawl complete", report)
}

func (h *Handlers) GetPriceComparison(c *gin.Context) {
	partID, ok := pathID(c, "partId")
	if !ok {
		return
	}
	comparison, err := h.prices.GetPriceComparison(c.Request.Context(), partID)
	if err != nil {
		h.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, "", comparison)
}

func (h *Handlers) GetPriceHistory(c *gin.Context) {
	partID, ok := pathID(c, "partId")
	if !ok {
		return
	}
	view, err := h.prices.GetPriceHistory(c.Request.Context(), partID, c.DefaultQuery("period", "30d"))
	if err != nil {
		h.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, "", view)
}

func (h *Handlers) ListSellers(c *gin.Context) {
	sellers, err := h.prices.GetActiveSellers(c.Request.Context())
	if err != nil {
		h.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, "", sellers)
}

type createAlertRequest struct {
	PartID      uint `json:"partId" binding:"required"`
	TargetPrice int  `json:"targetPrice"`
}

func (h *Handlers) CreateAlert(c *gin.Context) {
	var req createAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, codeInvalidInput, "invalid payload")
		return
	}
	view, err := h.alerts.CreateAlert(c.Request.Context(), currentUser(c), req.PartID, req.TargetPrice)
	if err != nil {
		h.failWith(c, err)
		return
	}
	respond(c, http.StatusCreated, "price alert created", view)
}

func (h *Handlers) ListAlerts(c *gin.Context) {
	alerts, err := h.alerts.GetMyAlerts(c.Request.Context(), currentUser(c))
	if err != nil {
		h.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, "", alerts)
}

func (h *Handlers) DeleteAlert(c *gin.Context) {
	alertID, ok := pathID(c, "alertId")
	if !ok {
		return
	}
	if err := h.alerts.DeactivateAlert(c.Request.Context(), currentUser(c), alertID); err != nil {
		h.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, "price alert deactivated", nil)
}

func (h *Handlers) ListNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	notifications, err := h.inbox.List(c.Request.Context(), currentUser(c), limit)
	if err != nil {
		h.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, "", notifications)
}

func (h *Handlers) UnreadCount(c *gin.Context) {
	count, err := h.inbox.UnreadCount(c.Request.Context(), currentUser(c))
	if err != nil {
		h.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"count": count})
}

func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	notificationID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.inbox.MarkRead(c.Request.Context(), currentUser(c), notificationID); err != nil {
		h.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, "notification marked as read", nil)
}

func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	updated, err := h.inbox.MarkAllRead(c.Request.Context(), currentUser(c))
	if err != nil {
		h.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, "notifications marked as read", gin.H{"updated": updated})
}

func (h *Handlers) NotificationSocket(c *gin.Context) {
	h.hub.ServeWS(c.Writer, c.Request, currentUser(c))
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

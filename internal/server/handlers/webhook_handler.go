package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/gelateria/internal/domain/models"
	service "github.com/mamadbah2/gelateria/internal/service/whatsapp"
)

// WebhookHandler exposes the stock query bot on /webhook. Staff send commands
// to the business number and the bot answers with ledger figures.
type WebhookHandler struct {
	bot    service.MessagingService
	logger *zap.Logger
}

func NewWebhookHandler(bot service.MessagingService, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{bot: bot, logger: logger}
}

type subscriptionQuery struct {
	Mode      string `form:"hub.mode"`
	Token     string `form:"hub.verify_token"`
	Challenge string `form:"hub.challenge"`
}

// Verify echoes the hub challenge once the verify token matches.
func (h *WebhookHandler) Verify(c *gin.Context) {
	var q subscriptionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		invalidBody(c, h.logger, err)
		return
	}

	challenge, err := h.bot.VerifyWebhookToken(q.Mode, q.Token, q.Challenge)
	if err != nil {
		h.logger.Warn("stock bot subscription refused", zap.String("mode", q.Mode), zap.Error(err))
		c.String(http.StatusForbidden, "verification failed")
		return
	}

	h.logger.Info("stock bot subscription confirmed")
	c.String(http.StatusOK, challenge)
}

// Receive answers the commands in a delivery. Failures are only logged and
// the delivery is acknowledged anyway, otherwise Meta retries it and the
// sender gets the same reply twice.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		invalidBody(c, h.logger, err)
		return
	}

	if err := h.bot.HandleWebhook(c.Request.Context(), payload); err != nil {
		h.logger.Error("stock query not answered", zap.Int("entries", len(payload.Entry)), zap.Error(err))
	}
	c.Status(http.StatusOK)
}

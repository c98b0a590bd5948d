package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/gelateria/internal/config"
	"github.com/mamadbah2/gelateria/internal/domain/models"
	"github.com/mamadbah2/gelateria/internal/service/commands"
	client "github.com/mamadbah2/gelateria/pkg/clients/whatsapp"
)

const replyTimeout = 10 * time.Second

// MessagingService describes the operations the webhook handler can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
}

// MetaWhatsAppService answers stock queries sent to the business number.
type MetaWhatsAppService struct {
	verifyToken string
	allowed     map[string]struct{}
	sender      client.Sender
	dispatcher  commands.Dispatcher
	logger      *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance. Only numbers listed in
// AllowedSenders, plus the report recipient, get answers.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, sender client.Sender, dispatcher commands.Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	if logger == nil {
		logger = zap.NewNop()
	}

	allowed := make(map[string]struct{}, len(cfg.AllowedSenders)+1)
	for _, number := range cfg.AllowedSenders {
		allowed[normalizeNumber(number)] = struct{}{}
	}
	if cfg.ReportRecipient != "" {
		allowed[normalizeNumber(cfg.ReportRecipient)] = struct{}{}
	}

	return &MetaWhatsAppService{
		verifyToken: cfg.VerifyToken,
		allowed:     allowed,
		sender:      sender,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if s.verifyToken == "" || verifyToken != s.verifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook answers every inbound message in the payload. Receipts and
// messages from unknown numbers are ignored.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	if _, ok := s.allowed[normalizeNumber(msg.From)]; !ok {
		s.logger.Warn("ignoring message from unknown number", zap.String("from", msg.From))
		return nil
	}

	text := msg.Body()
	if text == "" {
		s.logger.Debug("ignoring non-text message", zap.String("type", msg.Type))
		return nil
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	if err != nil {
		var argErr *commands.ArgumentError
		if !errors.As(err, &argErr) {
			return fmt.Errorf("dispatch %s: %w", cmd.Type, err)
		}
		reply = argErr.Hint
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()

	if _, err := s.sender.SendText(ctxWithTimeout, msg.From, reply); err != nil {
		return fmt.Errorf("reply to %s: %w", msg.From, err)
	}
	return nil
}

func normalizeNumber(number string) string {
	return strings.TrimPrefix(strings.ReplaceAll(strings.TrimSpace(number), " ", ""), "+")
}

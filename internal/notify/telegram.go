// Package notify pushes administrator notifications to Telegram.
package notify

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Notifier is told about events an administrator has to act on
type Notifier interface {
	CancellationRequested(ctx context.Context, req *model.ActionRequest, booking *model.Booking) error
}

// Noop discards notifications, used when no bot token is configured
type Noop struct{}

func (Noop) CancellationRequested(context.Context, *model.ActionRequest, *model.Booking) error {
	return nil
}

type messageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

type TelegramNotifier struct {
	sender  messageSender
	chatID  int64
	timeout time.Duration
	logger  *zap.Logger
}

// NewTelegramNotifier creates a send-only bot client; no updates are polled
func NewTelegramNotifier(token string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return newTelegramNotifier(b, chatID, logger), nil
}

func newTelegramNotifier(sender messageSender, chatID int64, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		sender:  sender,
		chatID:  chatID,
		timeout: 5 * time.Second,
		logger:  logger,
	}
}

// CancellationRequested sends the pending request summary to the admin chat
func (n *TelegramNotifier) CancellationRequested(ctx context.Context, req *model.ActionRequest, booking *model.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	_, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    n.chatID,
		Text:      FormatCancellationRequest(req, booking),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		n.logger.Error("Failed to send admin notification",
			zap.Int64("chat_id", n.chatID),
			zap.Int64("request_id", req.ID),
			zap.Error(err))
		return fmt.Errorf("send telegram message: %w", err)
	}

	n.logger.Info("Admin notified",
		zap.Int64("request_id", req.ID),
		zap.Int64("chat_id", n.chatID))
	return nil
}

// FormatCancellationRequest renders the admin message for a new request
func FormatCancellationRequest(req *model.ActionRequest, booking *model.Booking) string {
	student := "unknown"
	if booking != nil && booking.Student != nil {
		student = booking.Student.DisplayName()
	} else if req.Requester != nil {
		student = req.Requester.DisplayName()
	}

	course := "-"
	start := "-"
	if booking != nil && booking.Session != nil {
		start = booking.Session.StartTime.Format("02.01.2006 15:04")
		if booking.Session.Course != nil {
			course = booking.Session.Course.Title
		}
	}

	return fmt.Sprintf(
		"<b>Cancellation request #%d</b>\n\n"+
			"Student: %s\n"+
			"Course: %s\n"+
			"Session: %s\n\n"+
			"Review it on the admin dashboard.",
		req.ID,
		html.EscapeString(student),
		html.EscapeString(course),
		start,
	)
}

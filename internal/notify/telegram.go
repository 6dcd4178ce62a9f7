package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// TelegramSender posts wager notifications to one chat through the Bot
// API. The title lands in bold above the message body.
type TelegramSender struct {
	endpoint string
	chatID   string
	client   *http.Client
}

func NewTelegramSender(token, chatID string) *TelegramSender {
	return &TelegramSender{
		endpoint: "https://api.telegram.org/bot" + token + "/sendMessage",
		chatID:   chatID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *TelegramSender) Send(ctx context.Context, title, message string) error {
	payload := map[string]string{
		"chat_id":    t.chatID,
		"text":       fmt.Sprintf("*%s*\n%s", title, message),
		"parse_mode": "Markdown",
	}
	if err := postJSON(ctx, t.client, t.endpoint, payload); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	return nil
}

func (t *TelegramSender) Name() string {
	return "telegram"
}

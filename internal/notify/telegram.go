package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const telegramAPI = "https://api.telegram.org"

// TelegramSink posts event summaries to a Telegram chat through the bot API.
type TelegramSink struct {
	token   string
	chatID  string
	baseURL string
	client  *http.Client
}

// NewTelegramSink creates a sink for the given bot credentials.
func NewTelegramSink(token, chatID string) *TelegramSink {
	return &TelegramSink{
		token:   token,
		chatID:  chatID,
		baseURL: telegramAPI,
		client:  &http.Client{Timeout: deliveryTimeout},
	}
}

// Deliver formats the event as an HTML summary and posts it.
func (s *TelegramSink) Deliver(ctx context.Context, ev Event) error {
	form := url.Values{
		"chat_id":    {s.chatID},
		"text":       {formatEvent(ev)},
		"parse_mode": {"HTML"},
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func formatEvent(ev Event) string {
	var b strings.Builder
	switch ev.Kind {
	case EventLogin:
		b.WriteString("🔐 <b>Chat Login</b>\n")
	case EventLogout:
		b.WriteString("🚪 <b>Chat Logout</b>\n")
	case EventNicknameChange:
		b.WriteString("📝 <b>Nickname Changed</b>\n")
	default:
		fmt.Fprintf(&b, "<b>%s</b>\n", ev.Kind)
	}

	if ev.Kind == EventNicknameChange {
		fmt.Fprintf(&b, "👤 Old: %s\n", ev.OldUsername)
		fmt.Fprintf(&b, "👤 New: %s\n", ev.Username)
	} else {
		fmt.Fprintf(&b, "👤 Username: %s\n", ev.Username)
	}
	if ev.Email != "" {
		fmt.Fprintf(&b, "📧 Email: %s\n", ev.Email)
	}
	if ev.RemoteAddr != "" {
		fmt.Fprintf(&b, "🌐 IP: %s\n", ev.RemoteAddr)
	}
	if ev.UserAgent != "" {
		ua := ev.UserAgent
		if len(ua) > 100 {
			ua = ua[:100]
		}
		fmt.Fprintf(&b, "🖥️ User Agent: %s\n", ua)
	}
	fmt.Fprintf(&b, "⏰ Time: %s UTC", ev.At.UTC().Format(time.DateTime))
	return b.String()
}

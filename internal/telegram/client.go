package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/marketbrief/marketbrief/internal/fault"
	"github.com/marketbrief/marketbrief/internal/models"
)

// Client posts messages to a Telegram channel via the Bot API.
type Client struct {
	client *resty.Client
	token  string
	chatID string
	now    func() time.Time
}

func NewClient(token, chatID string, timeout time.Duration) *Client {
	client := resty.New()
	client.SetBaseURL("https://api.telegram.org")
	client.SetTimeout(timeout)

	return &Client{client: client, token: token, chatID: chatID, now: time.Now}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

type sentMessage struct {
	MessageID int64 `json:"message_id"`
}

type botInfo struct {
	Username string `json:"username"`
}

// Send posts one locale's content as an independent message and returns the
// message id. 429 and 5xx responses come back as retryable errors; any other
// rejection is terminal for this locale.
func (c *Client) Send(ctx context.Context, locale models.Locale, html string) (int64, error) {
	text := fmt.Sprintf("<b>%s Financial Summary</b>\n%s\n\n%s",
		locale.Name(), c.now().Format("2006-01-02 15:04 MST"), html)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"chat_id":                  c.chatID,
			"text":                     text,
			"parse_mode":               "HTML",
			"disable_web_page_preview": false,
		}).
		Post(fmt.Sprintf("/bot%s/sendMessage", c.token))
	if err != nil {
		return 0, &fault.TransportError{Op: "telegram send", Err: err}
	}

	var body apiResponse
	if uErr := json.Unmarshal(resp.Body(), &body); uErr != nil && resp.StatusCode() == 200 {
		return 0, fmt.Errorf("parse telegram response: %w", uErr)
	}

	retryAfter := time.Duration(0)
	if body.Parameters != nil {
		retryAfter = time.Duration(body.Parameters.RetryAfter) * time.Second
	}
	if cErr := fault.FromStatus("telegram send", resp.StatusCode(), body.Description, retryAfter); cErr != nil {
		if !fault.Retryable(cErr) {
			return 0, &fault.DeliveryError{Locale: string(locale), Err: cErr}
		}
		return 0, cErr
	}
	if !body.OK {
		return 0, &fault.DeliveryError{Locale: string(locale), Err: fmt.Errorf("telegram send: %s", body.Description)}
	}

	var msg sentMessage
	if err := json.Unmarshal(body.Result, &msg); err != nil {
		return 0, fmt.Errorf("parse telegram message: %w", err)
	}
	return msg.MessageID, nil
}

// GetMe verifies the bot token during preflight.
func (c *Client) GetMe(ctx context.Context) (string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/bot%s/getMe", c.token))
	if err != nil {
		return "", &fault.TransportError{Op: "telegram getMe", Err: err}
	}

	var body apiResponse
	if uErr := json.Unmarshal(resp.Body(), &body); uErr != nil && resp.StatusCode() == 200 {
		return "", fmt.Errorf("parse telegram response: %w", uErr)
	}

	if cErr := fault.FromStatus("telegram getMe", resp.StatusCode(), body.Description, 0); cErr != nil {
		return "", cErr
	}
	if !body.OK {
		return "", fmt.Errorf("telegram getMe: %s", body.Description)
	}

	var bot botInfo
	if err := json.Unmarshal(body.Result, &bot); err != nil {
		return "", fmt.Errorf("parse bot info: %w", err)
	}
	return bot.Username, nil
}

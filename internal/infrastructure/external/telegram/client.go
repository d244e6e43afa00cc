// Package telegram delivers faculty alerts through the Telegram Bot API.
// The client covers the single sendMessage call the alert pipeline needs;
// delivery retries with backoff so a flaky network does not drop an alert.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/edurisk/student-risk-hub/internal/application/eventhandler"
	"github.com/edurisk/student-risk-hub/pkg/logger"
	"github.com/edurisk/student-risk-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the Telegram alert client.
type ClientConfig struct {
	// Token is the Telegram Bot API token
	Token string

	// ChatID is the chat that receives high-risk alerts
	ChatID int64

	// BaseURL is the Telegram Bot API base URL (default: https://api.telegram.org)
	BaseURL string

	// Timeout is the HTTP request timeout
	Timeout time.Duration

	// RetryAttempts is the number of delivery attempts for failed requests
	RetryAttempts int

	// RetryDelay is the initial delay between retries
	RetryDelay time.Duration

	// Logger for structured logging
	Logger *logger.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(token string, chatID int64) ClientConfig {
	return ClientConfig{
		Token:         token,
		ChatID:        chatID,
		BaseURL:       "https://api.telegram.org",
		Timeout:       10 * time.Second,
		RetryAttempts: 5,
		RetryDelay:    100 * time.Millisecond,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// TELEGRAM API TYPES
// ══════════════════════════════════════════════════════════════════════════════

// sendMessageRequest is the payload for the sendMessage method.
type sendMessageRequest struct {
	ChatID              int64  `json:"chat_id"`
	Text                string `json:"text"`
	ParseMode           string `json:"parse_mode,omitempty"`
	DisableNotification bool   `json:"disable_notification,omitempty"`
}

// APIResponse is the Telegram Bot API response envelope.
type APIResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Parameters  *ResponseParams `json:"parameters,omitempty"`
}

// ResponseParams contains additional error information from the API.
type ResponseParams struct {
	RetryAfter int `json:"retry_after,omitempty"`
}

// APIError represents a Telegram Bot API error.
type APIError struct {
	Code        int
	Description string
	RetryAfter  int
}

func (e *APIError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("telegram API error %d: %s (retry after %ds)", e.Code, e.Description, e.RetryAfter)
	}
	return fmt.Sprintf("telegram API error %d: %s", e.Code, e.Description)
}

// ErrAlerterNotConfigured is returned when the client has no token or chat ID.
var ErrAlerterNotConfigured = errors.New("telegram: alert client not configured")

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client sends faculty alert messages to a fixed Telegram chat.
// Implements eventhandler.Alerter.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	retrier    *retry.Retrier
	logger     *logger.Logger
}

// NewClient creates a new Telegram alert client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Token == "" || config.ChatID == 0 {
		return nil, ErrAlerterNotConfigured
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.telegram.org"
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 5
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 100 * time.Millisecond
	}

	log := config.Logger
	if log == nil {
		log = logger.Default()
	}

	retrier := retry.New(
		retry.WithMaxAttempts(config.RetryAttempts),
		retry.WithInitialDelay(config.RetryDelay),
		retry.WithMaxDelay(5*time.Second),
		retry.WithMultiplier(1.5),
		retry.WithJitter(0.1),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			log.Warn("telegram alert delivery retrying",
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay),
				logger.Err(err),
			)
		}),
	)

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		retrier:    retrier,
		logger:     log.With(logger.String("component", "telegram_alerter")),
	}, nil
}

// SendHighRiskAlert formats and delivers a high-risk alert to the configured chat.
func (c *Client) SendHighRiskAlert(ctx context.Context, alert eventhandler.HighRiskAlert) error {
	text := formatHighRiskAlert(alert)

	err := c.retrier.Do(ctx, func(ctx context.Context) error {
		sendErr := c.sendMessage(ctx, text)
		if sendErr == nil {
			return nil
		}

		var apiErr *APIError
		if errors.As(sendErr, &apiErr) && !isRetryableCode(apiErr.Code) {
			return retry.Permanent(sendErr)
		}
		return retry.Retryable(sendErr)
	})
	if err != nil {
		return fmt.Errorf("telegram: high risk alert for assessment %s: %w", alert.AssessmentID, err)
	}

	c.logger.Info("high risk alert delivered",
		logger.String("assessment_id", alert.AssessmentID),
		logger.Int("estimated_grade", alert.EstimatedGrade),
	)
	return nil
}

// sendMessage performs a single sendMessage call.
func (c *Client) sendMessage(ctx context.Context, text string) error {
	payload := sendMessageRequest{
		ChatID:    c.config.ChatID,
		Text:      text,
		ParseMode: "HTML",
	}

	_, err := c.doAPICall(ctx, "sendMessage", payload)
	return err
}

// doAPICall performs a POST request to the Telegram Bot API.
func (c *Client) doAPICall(ctx context.Context, method string, payload interface{}) (*APIResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("telegram: marshal %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.config.BaseURL, c.config.Token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("telegram: build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram: %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("telegram: read %s response: %w", method, err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("telegram: decode %s response: %w", method, err)
	}

	if !apiResp.OK {
		apiErr := &APIError{
			Code:        apiResp.ErrorCode,
			Description: apiResp.Description,
		}
		if apiResp.Parameters != nil {
			apiErr.RetryAfter = apiResp.Parameters.RetryAfter
		}
		return nil, apiErr
	}

	return &apiResp, nil
}

// isRetryableCode reports whether an API error code is worth retrying.
// Rate limits (429) and server errors (5xx) are transient; other client
// errors (bad token, unknown chat) will not succeed on retry.
func isRetryableCode(code int) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code < 600
}

// formatHighRiskAlert renders the alert message body.
func formatHighRiskAlert(alert eventhandler.HighRiskAlert) string {
	return fmt.Sprintf(
		"🚨 <b>High Risk Student Detected</b>\n\n"+
			"Assessment: <code>%s</code>\n"+
			"Estimated final grade: <b>%d/20</b>\n"+
			"Confidence: %.0f%%\n\n"+
			"G1: %d  G2: %d\n"+
			"Past failures: %d\n"+
			"Absences: %d\n\n"+
			"Detected at %s",
		alert.AssessmentID,
		alert.EstimatedGrade,
		alert.Confidence*100,
		alert.G1, alert.G2,
		alert.Failures,
		alert.Absences,
		alert.DetectedAt.UTC().Format(time.RFC3339),
	)
}

// compile-time interface check
var _ eventhandler.Alerter = (*Client)(nil)

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/doctrace/review-engine/pkg/apperrors"
	"github.com/doctrace/review-engine/pkg/retry"
)

// Config holds CLM postback client settings.
type Config struct {
	Enabled    bool
	Mock       bool
	BaseURL    string
	ReviewPath string
	Timeout    time.Duration
	APIKey     string
	OutputFile string
	RetryCount int
}

// Client posts review payloads to the CLM endpoint. In mock mode it appends
// payloads to a JSONL file instead; when disabled it skips delivery entirely.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new postback client. The client is constructed once and
// injected wherever deliveries are made; there is no process-wide instance.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("notify"),
	}
}

var _ Notifier = (*Client)(nil)

// PostReview delivers the payload per the configured mode.
func (c *Client) PostReview(ctx context.Context, payload *ReviewNotification) (*DeliveryResult, error) {
	if !c.cfg.Enabled {
		c.logger.Debug("Postback skipped, notifications disabled",
			zap.String("document_id", payload.DocumentID))
		return &DeliveryResult{Skipped: true}, nil
	}

	if c.cfg.Mock {
		return c.writeMock(payload)
	}

	return c.post(ctx, payload)
}

// writeMock appends the payload as one JSON line to the configured file.
func (c *Client) writeMock(payload *ReviewNotification) (*DeliveryResult, error) {
	entry := struct {
		*ReviewNotification
		MockedAt time.Time `json:"mockedAt"`
	}{payload, time.Now().UTC()}

	line, err := json.Marshal(entry)
	if err != nil {
		return &DeliveryResult{Mocked: true, Error: err.Error()},
			fmt.Errorf("%w: failed to marshal mock payload: %v", apperrors.ErrNotificationFailure, err)
	}

	if dir := filepath.Dir(c.cfg.OutputFile); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &DeliveryResult{Mocked: true, Error: err.Error()},
				fmt.Errorf("%w: failed to create mock output dir: %v", apperrors.ErrNotificationFailure, err)
		}
	}

	f, err := os.OpenFile(c.cfg.OutputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &DeliveryResult{Mocked: true, Error: err.Error()},
			fmt.Errorf("%w: failed to open mock output file: %v", apperrors.ErrNotificationFailure, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return &DeliveryResult{Mocked: true, Error: err.Error()},
			fmt.Errorf("%w: failed to write mock payload: %v", apperrors.ErrNotificationFailure, err)
	}

	c.logger.Info("Postback written to mock file",
		zap.String("document_id", payload.DocumentID),
		zap.String("file", c.cfg.OutputFile))

	return &DeliveryResult{Success: true, Mocked: true, Attempts: 1}, nil
}

// post delivers the payload over HTTP with exponential backoff retries.
func (c *Client) post(ctx context.Context, payload *ReviewNotification) (*DeliveryResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return &DeliveryResult{Error: err.Error()},
			fmt.Errorf("%w: failed to marshal payload: %v", apperrors.ErrNotificationFailure, err)
	}

	endpoint := c.cfg.BaseURL + c.cfg.ReviewPath
	result := &DeliveryResult{}

	retryCfg := &retry.Config{
		MaxRetries:   c.cfg.RetryCount,
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}

	err = retry.Do(ctx, retryCfg, func() error {
		result.Attempts++

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to call CLM endpoint: %w", err)
		}
		defer resp.Body.Close()

		result.StatusCode = resp.StatusCode
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return fmt.Errorf("CLM endpoint returned status %d: %s", resp.StatusCode, string(respBody))
		}

		return nil
	})
	if err != nil {
		result.Error = err.Error()
		c.logger.Warn("Postback failed",
			zap.String("document_id", payload.DocumentID),
			zap.String("url", endpoint),
			zap.Int("attempts", result.Attempts),
			zap.Error(err))
		return result, fmt.Errorf("%w: %v", apperrors.ErrNotificationFailure, err)
	}

	result.Success = true
	c.logger.Info("Postback delivered",
		zap.String("document_id", payload.DocumentID),
		zap.String("url", endpoint),
		zap.Int("status", result.StatusCode),
		zap.Int("attempts", result.Attempts))

	return result, nil
}

// Package delivery sends metadata batches to the remote store and classifies
// every outcome into an explicit result variant consumed by the backoff loop.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/parakeep/parascan/internal/record"
)

type ResultKind string

const (
	Accepted         ResultKind = "accepted"
	RejectedClient   ResultKind = "rejected_client"
	RejectedAuth     ResultKind = "rejected_auth"
	RateLimited      ResultKind = "rate_limited"
	TransportFailure ResultKind = "transport_failure"
)

// Request is the wire payload for one batch. The (taskId, batchNumber) pair
// identifies the batch for server-side dedup, so resending after an ambiguous
// timeout cannot duplicate data.
type Request struct {
	TaskID       string              `json:"taskId"`
	BatchNumber  int                 `json:"batchNumber"`
	TotalBatches int                 `json:"totalBatches"`
	Directory    string              `json:"directory"`
	UserID       string              `json:"userId"`
	Strategy     string              `json:"strategy"`
	GeneratedAt  time.Time           `json:"generatedAt"`
	Entries      []record.FileRecord `json:"entries"`
}

// Ack is the server acknowledgment for an accepted batch.
type Ack struct {
	TaskID              string     `json:"taskId"`
	BatchNumber         int        `json:"batchNumber"`
	Status              string     `json:"status"`
	NextBatchExpectedAt *time.Time `json:"nextBatchExpectedAt,omitempty"`
}

// Result is the final outcome of delivering one batch, after any retries.
type Result struct {
	Kind       ResultKind
	Reason     string
	Ack        *Ack
	RetryAfter time.Duration
	Attempts   int
}

// Retryable reports whether the result kind may be retried. RejectedClient
// and RejectedAuth are application errors a resend cannot fix.
func (k ResultKind) Retryable() bool {
	return k == RateLimited || k == TransportFailure
}

type errorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter"`
}

type Config struct {
	BaseURL              string
	UserID               string
	AttemptTimeout       time.Duration
	MaxAttempts          int
	BackoffBase          time.Duration
	BackoffCap           time.Duration
	DefaultRateLimitWait time.Duration
}

const (
	defaultAttemptTimeout = 30 * time.Second
	defaultMaxAttempts    = 3
	defaultBackoffBase    = time.Second
	defaultBackoffCap     = 30 * time.Second
	defaultRateLimitWait  = 5 * time.Second
	snapshotEndpointPath  = "/api/snapshots"
)

// Client delivers batches over HTTP with bounded retry, exponential backoff
// on transport failures and rate-limit honoring.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = defaultAttemptTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = defaultBackoffBase
	}
	if cfg.BackoffCap <= 0 {
		cfg.BackoffCap = defaultBackoffCap
	}
	if cfg.DefaultRateLimitWait <= 0 {
		cfg.DefaultRateLimitWait = defaultRateLimitWait
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

// Deliver attempts the batch until it is accepted, rejected with a
// non-retryable error, or the attempt budget runs out. Backoff delays double
// per transport failure up to the cap; a 429 waits the server-specified
// interval instead.
func (c *Client) Deliver(ctx context.Context, req *Request) Result {
	backoff := c.cfg.BackoffBase

	for attempt := 1; ; attempt++ {
		result := c.attempt(ctx, req)
		result.Attempts = attempt

		if !result.Kind.Retryable() {
			return result
		}
		if attempt >= c.cfg.MaxAttempts {
			result.Reason = fmt.Sprintf("retries exhausted after %d attempts: %s", attempt, result.Reason)
			return result
		}

		wait := backoff
		if result.Kind == RateLimited {
			wait = result.RetryAfter
			if wait <= 0 {
				wait = c.cfg.DefaultRateLimitWait
			}
		} else {
			backoff = min(backoff*2, c.cfg.BackoffCap)
		}

		log.Printf("Batch %d/%d for task %s: %s (%s), retrying in %s (attempt %d/%d)",
			req.BatchNumber, req.TotalBatches, req.TaskID, result.Kind, result.Reason, wait, attempt, c.cfg.MaxAttempts)

		if err := sleep(ctx, wait); err != nil {
			return Result{Kind: TransportFailure, Reason: err.Error(), Attempts: attempt}
		}
	}
}

// attempt performs one POST with its own timeout and classifies the outcome.
func (c *Client) attempt(ctx context.Context, req *Request) Result {
	body, err := json.Marshal(req)
	if err != nil {
		return Result{Kind: RejectedClient, Reason: fmt.Sprintf("failed to encode batch: %v", err)}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()

	url := c.cfg.BaseURL + snapshotEndpointPath
	httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{Kind: RejectedClient, Reason: err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Result{Kind: TransportFailure, Reason: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	return classify(resp)
}

func classify(resp *http.Response) Result {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{Kind: TransportFailure, Reason: fmt.Sprintf("failed to read response: %v", err)}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var ack Ack
		if err := json.Unmarshal(data, &ack); err != nil {
			return Result{Kind: TransportFailure, Reason: fmt.Sprintf("malformed acknowledgment: %v", err)}
		}
		return Result{Kind: Accepted, Ack: &ack}

	case resp.StatusCode == http.StatusTooManyRequests:
		var er errorResponse
		_ = json.Unmarshal(data, &er)
		return Result{
			Kind:       RateLimited,
			Reason:     "rate limited by server",
			RetryAfter: time.Duration(er.RetryAfter) * time.Second,
		}

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Result{Kind: RejectedAuth, Reason: errorReason(data, resp.StatusCode)}

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return Result{Kind: RejectedClient, Reason: errorReason(data, resp.StatusCode)}

	default:
		return Result{Kind: TransportFailure, Reason: errorReason(data, resp.StatusCode)}
	}
}

func errorReason(data []byte, statusCode int) string {
	var er errorResponse
	if err := json.Unmarshal(data, &er); err == nil {
		if er.Message != "" {
			return fmt.Sprintf("%s: %s", er.Error, er.Message)
		}
		if er.Error != "" {
			return er.Error
		}
	}

	return fmt.Sprintf("status %d", statusCode)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

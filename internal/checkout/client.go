package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aquapeak/cart-service/pkg/config"
	pkgerrors "github.com/aquapeak/cart-service/pkg/errors"
	"github.com/sethvargo/go-retry"
)

// Client delivers order submissions to the farm's order endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	maxRetries uint64
	retryBase  time.Duration
}

// NewClient builds a delivery client from checkout configuration.
func NewClient(cfg config.CheckoutConfig) (*Client, error) {
	if cfg.OrderEndpoint == "" {
		return nil, fmt.Errorf("order endpoint required")
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	retryBase := cfg.RetryBase
	if retryBase <= 0 {
		retryBase = 200 * time.Millisecond
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		endpoint:   cfg.OrderEndpoint,
		maxRetries: uint64(maxRetries),
		retryBase:  retryBase,
	}, nil
}

// OrderAck is the endpoint's acknowledgement payload.
type OrderAck struct {
	OrderRef string `json:"orderRef"`
}

// Deliver posts the submission, retrying transport failures and 5xx
// responses with capped exponential backoff. Client errors are terminal.
func (c *Client) Deliver(ctx context.Context, submission *Submission) (*OrderAck, error) {
	payload, err := json.Marshal(submission)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode submission")
	}

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.retryBase))

	var ack OrderAck
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build order request")
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", submission.SubmissionID)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deliver order submission"))
		}
		defer func() {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			// tolerate endpoints that acknowledge with an empty body
			_ = json.NewDecoder(resp.Body).Decode(&ack)
			return nil
		case resp.StatusCode >= 500:
			return retry.RetryableError(pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("order endpoint returned %d", resp.StatusCode)))
		default:
			return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("order endpoint rejected submission with %d", resp.StatusCode))
		}
	})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/aquapeak/cart-service/internal/cart"
	"github.com/aquapeak/cart-service/pkg/logger"
	"github.com/aquapeak/cart-service/pkg/metrics"
	"github.com/aquapeak/cart-service/pkg/money"
)

type deliverer interface {
	Deliver(ctx context.Context, submission *Submission) (*OrderAck, error)
}

// Service drives the checkout flow: snapshot the cart, deliver the
// submission, clear the cart on success.
type Service interface {
	Submit(ctx context.Context, sessionID string, store *cart.Store) (*Receipt, error)
}

type service struct {
	delivery deliverer
	logg     *logger.Logger
	metrics  *metrics.CheckoutMetrics
	now      func() time.Time
}

// ServiceParams configure the checkout service.
type ServiceParams struct {
	Delivery deliverer
	Logger   *logger.Logger
	Metrics  *metrics.CheckoutMetrics
	Now      func() time.Time
}

// NewService builds a checkout service backed by the provided delivery client.
func NewService(params ServiceParams) (Service, error) {
	if params.Delivery == nil {
		return nil, fmt.Errorf("delivery client required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		delivery: params.Delivery,
		logg:     params.Logger,
		metrics:  params.Metrics,
		now:      params.Now,
	}, nil
}

// Receipt summarizes a delivered order submission.
type Receipt struct {
	SubmissionID string       `json:"submissionId"`
	OrderRef     string       `json:"orderRef,omitempty"`
	ItemCount    int          `json:"itemCount"`
	Subtotal     money.Amount `json:"subtotal"`
	SubmittedAt  time.Time    `json:"submittedAt"`
}

// Submit builds and delivers the submission for the session's cart. The cart
// is cleared only after the endpoint acknowledges; any failure leaves it
// intact so the caller can retry.
func (s *service) Submit(ctx context.Context, sessionID string, store *cart.Store) (*Receipt, error) {
	submission, err := BuildSubmission(sessionID, store.Items(), store.Totals(ctx), s.now())
	if err != nil {
		return nil, err
	}

	started := s.now()
	ack, err := s.delivery.Deliver(ctx, submission)
	s.metrics.ObserveSubmissionDuration(time.Since(started))
	if err != nil {
		s.metrics.IncSubmission("failure")
		s.logg.Error(s.logg.WithSessionID(ctx, sessionID), "checkout.submission_failed", err)
		return nil, err
	}
	s.metrics.IncSubmission("success")

	store.Clear(ctx)

	receipt := &Receipt{
		SubmissionID: submission.SubmissionID,
		ItemCount:    len(submission.Items),
		Subtotal:     submission.Subtotal,
		SubmittedAt:  submission.SubmittedAt,
	}
	if ack != nil {
		receipt.OrderRef = ack.OrderRef
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"session_id": sessionID,
		"order_ref":  receipt.OrderRef,
		"item_count": receipt.ItemCount,
	}), "checkout.submitted")
	return receipt, nil
}

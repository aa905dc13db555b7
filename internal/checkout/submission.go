package checkout

import (
	"time"

	"github.com/aquapeak/cart-service/internal/cart"
	"github.com/aquapeak/cart-service/internal/catalog"
	pkgerrors "github.com/aquapeak/cart-service/pkg/errors"
	"github.com/aquapeak/cart-service/pkg/money"
	"github.com/google/uuid"
)

// Product categories the order endpoint understands.
const (
	CategoryBreedingPair = "breeding_pair"
	CategoryProduct      = "product"
)

// SubmissionItem is one order line as the external order endpoint expects it.
type SubmissionItem struct {
	ProductRef      string       `json:"productRef"`
	ProductCategory string       `json:"productCategory"`
	Quantity        int          `json:"quantity"`
	Price           money.Amount `json:"price"`
}

// Submission is the full order payload delivered at checkout.
type Submission struct {
	SubmissionID string           `json:"submissionId"`
	SessionID    string           `json:"sessionId"`
	Items        []SubmissionItem `json:"items"`
	Subtotal     money.Amount     `json:"subtotal"`
	SubmittedAt  time.Time        `json:"submittedAt"`
}

// BuildSubmission maps cart lines into an order submission. An empty cart is
// a validation error; nothing is ever submitted for it.
func BuildSubmission(sessionID string, items []cart.LineItem, totals cart.Totals, now time.Time) (*Submission, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	lines := make([]SubmissionItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, SubmissionItem{
			ProductRef:      item.ID,
			ProductCategory: categoryFor(item),
			Quantity:        item.Quantity,
			Price:           item.UnitPrice,
		})
	}

	return &Submission{
		SubmissionID: uuid.NewString(),
		SessionID:    sessionID,
		Items:        lines,
		Subtotal:     totals.Subtotal,
		SubmittedAt:  now.UTC(),
	}, nil
}

// categoryFor derives the order category from the line's shape: pair-priced
// lines are breeding stock, everything else keeps its listing category.
func categoryFor(item cart.LineItem) string {
	if item.PriceSource == catalog.PriceSourcePair {
		return CategoryBreedingPair
	}
	if item.Category != "" {
		return item.Category
	}
	return CategoryProduct
}

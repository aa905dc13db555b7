package cart

import (
	"github.com/aquapeak/cart-service/internal/catalog"
	"github.com/aquapeak/cart-service/pkg/money"
)

// LineItem is one product line in the cart. UnitPrice is resolved once when
// the line is first created and never re-resolved on later adds.
type LineItem struct {
	ID              string              `json:"id"`
	DisplayName     string              `json:"displayName"`
	UnitPrice       money.Amount        `json:"unitPrice"`
	Quantity        int                 `json:"quantity"`
	StockLimit      *int                `json:"stockLimit,omitempty"`
	Category        string              `json:"category,omitempty"`
	ImageRef        string              `json:"imageRef,omitempty"`
	PriceSource     catalog.PriceSource `json:"priceSource"`
	PriceUnresolved bool                `json:"priceUnresolved,omitempty"`
}

// Totals is the derived price view of the cart. Subtotal is the final total:
// there is no tax, discount, or shipping math in this system.
type Totals struct {
	Subtotal     money.Amount `json:"subtotal"`
	SkippedLines int          `json:"skippedLines,omitempty"`
}

func newLineItem(listing catalog.Listing, qty int) LineItem {
	price, source, err := catalog.ResolvePrice(listing)
	item := LineItem{
		ID:          listing.ID,
		DisplayName: catalog.DisplayName(listing),
		UnitPrice:   price,
		Quantity:    qty,
		Category:    listing.Category,
		ImageRef:    listing.ImageRef,
		PriceSource: source,
	}
	if listing.StockLimit != nil {
		limit := *listing.StockLimit
		item.StockLimit = &limit
	}
	if err != nil {
		item.PriceUnresolved = true
	}
	return item
}

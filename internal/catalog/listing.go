package catalog

import (
	"errors"
	"strings"

	"github.com/aquapeak/cart-service/pkg/money"
)

// ErrPriceUnresolved signals a listing with no recognizable price field.
var ErrPriceUnresolved = errors.New("catalog: listing has no recognizable price field")

// PriceSource identifies which listing field priced a cart line.
type PriceSource string

const (
	PriceSourceGeneric    PriceSource = "price"
	PriceSourcePair       PriceSource = "price_per_couple"
	PriceSourceUnresolved PriceSource = "unresolved"
)

// Listing is the storefront's product record. The farm sells heterogeneous
// product types, so most fields are optional: stock fish and equipment carry
// the generic price, breeding pairs are priced per couple and often name the
// species instead of a product name.
type Listing struct {
	ID             string        `json:"id" validate:"required"`
	Name           string        `json:"name,omitempty"`
	Species        string        `json:"species,omitempty"`
	Category       string        `json:"category,omitempty"`
	ImageRef       string        `json:"imageRef,omitempty"`
	Price          *money.Amount `json:"price,omitempty"`
	PricePerCouple *money.Amount `json:"pricePerCouple,omitempty"`
	StockLimit     *int          `json:"stockLimit,omitempty"`
}

// ResolvePrice picks the unit price for a listing. The generic price field
// wins; pair-priced listings fall back to the per-couple field. A listing
// with neither returns ErrPriceUnresolved so callers can tell "priced at
// zero" apart from "price unknown".
func ResolvePrice(listing Listing) (money.Amount, PriceSource, error) {
	if listing.Price != nil {
		return *listing.Price, PriceSourceGeneric, nil
	}
	if listing.PricePerCouple != nil {
		return *listing.PricePerCouple, PriceSourcePair, nil
	}
	return money.Zero(), PriceSourceUnresolved, ErrPriceUnresolved
}

// DisplayName resolves the human-readable label across product shapes.
func DisplayName(listing Listing) string {
	if name := strings.TrimSpace(listing.Name); name != "" {
		return name
	}
	if species := strings.TrimSpace(listing.Species); species != "" {
		return species
	}
	return listing.ID
}

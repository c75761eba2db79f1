// Package catalog holds the denormalized search document shape and the
// relational projection used to enrich it, per spec §3.
package catalog

import "time"

// Offer is a single supplier's price and stock position for a variant.
type Offer struct {
	OfferID        string  `json:"offerId"`
	SupplierID     string  `json:"supplierId"`
	SupplierName   string  `json:"supplierName"`
	SupplierRating float64 `json:"supplierRating"`
	Price          float64 `json:"price"`
	Stock          int     `json:"stock"`
}

// VariantDocument is the denormalized, searchable unit indexed by the
// engine. It answers filter+facet+ranking without a relational join on
// the hot path (spec §9).
type VariantDocument struct {
	VariantID   string `json:"variantId"`
	ProductID   string `json:"productId"`
	SKU         string `json:"sku"`

	ProductName        string `json:"productName"`
	ProductDescription string `json:"productDescription"`
	Brand               string `json:"brand"`
	CategoryName        string `json:"categoryName"`
	CategoryID          string `json:"categoryId"`

	Attributes map[string]string `json:"attributes"`

	ImageURL string `json:"imageUrl"`

	PriceFrom  float64 `json:"priceFrom"`
	TotalStock int     `json:"totalStock"`
	Sales30d   int     `json:"sales30d"`

	Offers []Offer `json:"offers"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// VariantOption is the relational-store projection used to fill out
// ProductResult.variantOptions: (variantId, productId, attributes, imageUrl).
type VariantOption struct {
	VariantID  string            `json:"variantId"`
	ProductID  string            `json:"productId"`
	Attributes map[string]string `json:"attributes"`
	ImageURL   string            `json:"imageUrl"`
}

// BestInStockOffer selects the buy-box offer from a variant's offers per
// spec §4.5 step 3: lowest price among in-stock offers; if none in
// stock, lowest price among any; if no offers at all, a documented
// placeholder.
func BestInStockOffer(priceFrom float64, offers []Offer) Offer {
	if len(offers) == 0 {
		return Offer{
			OfferID:      "",
			Price:        priceFrom,
			Stock:        0,
			SupplierName: "Unknown",
		}
	}

	var bestInStock, bestAny *Offer
	for i := range offers {
		o := &offers[i]
		if bestAny == nil || o.Price < bestAny.Price {
			bestAny = o
		}
		if o.Stock > 0 && (bestInStock == nil || o.Price < bestInStock.Price) {
			bestInStock = o
		}
	}
	if bestInStock != nil {
		return *bestInStock
	}
	return *bestAny
}

// LowestOfferPrice returns the lowest offer price, or 0 if there are no
// offers, so priceFrom always reports a non-negative value per invariant 1.
func LowestOfferPrice(offers []Offer) float64 {
	if len(offers) == 0 {
		return 0
	}
	lowest := offers[0].Price
	for _, o := range offers[1:] {
		if o.Price < lowest {
			lowest = o.Price
		}
	}
	return lowest
}

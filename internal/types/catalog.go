package types

import "time"

// Product is a catalog entry. Reference is the human-facing SKU used as the
// upsert key for bulk imports.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Reference     string    `json:"reference"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category,omitempty"`
	Brand         string    `json:"brand"`
	ImageURL      string    `json:"image_url,omitempty"`
	StockQuantity int       `json:"stock_quantity"`
	MaxPerStore   int       `json:"max_per_store"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ReservationItem is a draft quantity a store has set but not yet submitted.
type ReservationItem struct {
	StoreID   string    `json:"store_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Reservation is an immutable submitted batch.
type Reservation struct {
	ID          string            `json:"id"`
	StoreID     string            `json:"store_id"`
	Status      string            `json:"status"`
	SubmittedAt time.Time         `json:"submitted_at"`
	Lines       []ReservationLine `json:"lines,omitempty"`
}

// ReservationLine is one product/quantity pair frozen at submission time.
type ReservationLine struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Reference   string `json:"reference"`
	Quantity    int    `json:"quantity"`
}

// Reservation statuses.
const (
	ReservationStatusSubmitted = "submitted"
	ReservationStatusCancelled = "cancelled"
)

// StoreSummary is one row of the cross-store order overview shown to
// superadmins.
type StoreSummary struct {
	StoreID          string     `json:"store_id"`
	StoreName        string     `json:"store_name"`
	Brand            string     `json:"brand"`
	ReservationCount int        `json:"reservation_count"`
	TotalUnits       int        `json:"total_units"`
	LastSubmittedAt  *time.Time `json:"last_submitted_at,omitempty"`
}

// ContentBlock is a CMS-editable text fragment keyed by slot, brand and
// language.
type ContentBlock struct {
	ID           string    `json:"id"`
	Key          string    `json:"key"`
	Brand        string    `json:"brand"`
	LanguageCode string    `json:"language_code"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	UpdatedAt    time.Time `json:"updated_at"`
}

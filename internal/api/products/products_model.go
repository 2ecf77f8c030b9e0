package products

// CreateProductParams is the admin-facing payload for creating a product.
type CreateProductParams struct {
	Name          string `json:"name"`
	Reference     string `json:"reference"`
	Description   string `json:"description,omitempty"`
	Category      string `json:"category,omitempty"`
	Brand         string `json:"brand"`
	ImageURL      string `json:"image_url,omitempty"`
	StockQuantity int    `json:"stock_quantity"`
	MaxPerStore   int    `json:"max_per_store"`
	Active        *bool  `json:"active,omitempty"`
}

// UpdateProductParams carries partial updates; nil fields are left untouched.
type UpdateProductParams struct {
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	Category      *string `json:"category,omitempty"`
	Brand         *string `json:"brand,omitempty"`
	ImageURL      *string `json:"image_url,omitempty"`
	StockQuantity *int    `json:"stock_quantity,omitempty"`
	MaxPerStore   *int    `json:"max_per_store,omitempty"`
	Active        *bool   `json:"active,omitempty"`
}

// ImportRow is one line of a catalog CSV, keyed by reference for upserts.
type ImportRow struct {
	Reference     string
	Name          string
	Description   string
	Category      string
	Brand         string
	ImageURL      string
	StockQuantity int
	MaxPerStore   int
	Active        bool
}

// ImportResult reports what a bulk import did.
type ImportResult struct {
	Imported int  `json:"imported"`
	Replaced bool `json:"replaced"`
}

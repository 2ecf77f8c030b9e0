package types

import "time"

// Roles recognised by the portal. "magasin" is the store-facing role created
// by the deep-link auth flow; admins and superadmins are provisioned by hand.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
	RoleMagasin    = "magasin"
)

// Canonical brand names plus the legacy short codes still found in old
// deep links.
const (
	BrandSchmidt    = "schmidt"
	BrandCuisinella = "cuisinella"
)

// NormalizeBrand maps legacy short brand codes onto their canonical long
// form. Unknown values pass through unchanged so new brands do not require a
// code change here.
func NormalizeBrand(brand string) string {
	switch brand {
	case "sch":
		return BrandSchmidt
	case "cui":
		return BrandCuisinella
	default:
		return brand
	}
}

// Profile is the durable record behind every account, store or admin.
type Profile struct {
	ID           string    `json:"id"`
	StoreName    string    `json:"store_name"`
	Role         string    `json:"role"`
	Brand        string    `json:"brand"`
	StoreID      string    `json:"store_id"`
	CountryCode  string    `json:"country_code"`
	LanguageCode string    `json:"language_code"`
	Context      string    `json:"context"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StoreIdentity is the caller-supplied identity carried by a deep link. It is
// consumed once per request and never persisted verbatim.
type StoreIdentity struct {
	StoreID      string `json:"store_id"`
	Brand        string `json:"brand"`
	CountryCode  string `json:"country_code"`
	LanguageCode string `json:"language_code"`
	Context      string `json:"context"`
}

// ProfileMetadata is the subset of Profile refreshed on every store login so
// the latest deep link always wins over stale stored values.
type ProfileMetadata struct {
	Brand        string
	CountryCode  string
	LanguageCode string
	Context      string
}

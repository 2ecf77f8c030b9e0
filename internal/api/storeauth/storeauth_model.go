package storeauth

import (
	"fmt"
	"time"
)

// Deep-link query parameter names, inherited from the CMS that mints the
// links.
const (
	ParamStoreID      = "sg_m"
	ParamToken        = "sg_p"
	ParamCountryCode  = "sg_cp"
	ParamLanguageCode = "sg_l"
	ParamContext      = "sg_ct"
	ParamBrand        = "brand"
)

// StoreLoginRequest carries the identity and token from an inbound deep link.
type StoreLoginRequest struct {
	StoreID      string `json:"store_id"`
	Token        string `json:"token"`
	Brand        string `json:"brand"`
	CountryCode  string `json:"country_code,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	Context      string `json:"context,omitempty"`
}

// StoreLoginResponse is returned once a session exists.
type StoreLoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	AccountID    string `json:"account_id"`
	StoreID      string `json:"store_id"`
	Role         string `json:"role"`
	Brand        string `json:"brand"`
	Provisioned  bool   `json:"provisioned"`
}

// Account is the credential-bearing backend record behind a store profile.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// SynthesizeEmail builds the deterministic account email for a store,
// "{storeId}@{domain}". The backend's uniqueness constraint on this email is
// the only guard against duplicate provisioning.
func SynthesizeEmail(storeID, domain string) string {
	return fmt.Sprintf("%s@%s", storeID, domain)
}

package domain

// Environment is an account-owned namespace for provider configs and connections
type Environment struct {
	ID          string `json:"id"`
	UUID        string `json:"uuid"`
	AccountID   string `json:"account_id"`
	AccountUUID string `json:"account_uuid"`
	Name        string `json:"name"`
	SecretKey   string `json:"-"`
	PublicKey   string `json:"public_key"`
	HMACEnabled bool   `json:"hmac_enabled"`
	HMACKey     string `json:"-"`
}

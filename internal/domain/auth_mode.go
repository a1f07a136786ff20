package domain

// AuthMode is the credential scheme a provider supports
type AuthMode string

const (
	AuthModeAPIKey AuthMode = "API_KEY"
	AuthModeBasic  AuthMode = "BASIC"
	AuthModeOAuth1 AuthMode = "OAUTH1"
	AuthModeOAuth2 AuthMode = "OAUTH2"
	AuthModeApp    AuthMode = "APP"
	AuthModeNone   AuthMode = "NONE"
)

// AuthTemplate describes how a provider authenticates.
// Templates are bound to ProviderConfig.Provider, not to a config key.
type AuthTemplate struct {
	Provider string   `json:"provider" bson:"provider"`
	AuthMode AuthMode `json:"auth_mode" bson:"authMode"`
}

// Supports reports whether the template accepts the given mode
func (t *AuthTemplate) Supports(mode AuthMode) bool {
	return t != nil && t.AuthMode == mode
}

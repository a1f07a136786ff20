package domain

// Credential is the static credential supplied when a connection is created.
// The set of implementations is closed: APIKeyCredential and BasicCredential.
type Credential interface {
	Mode() AuthMode
	isCredential()
}

// APIKeyCredential holds a single API key
type APIKeyCredential struct {
	APIKey string
}

// Mode returns AuthModeAPIKey
func (APIKeyCredential) Mode() AuthMode { return AuthModeAPIKey }

func (APIKeyCredential) isCredential() {}

// BasicCredential holds a username and an optional password
type BasicCredential struct {
	Username string
	Password string
}

// Mode returns AuthModeBasic
func (BasicCredential) Mode() AuthMode { return AuthModeBasic }

func (BasicCredential) isCredential() {}

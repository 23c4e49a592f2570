package domain

// SessionState is a point-in-time copy of the authoritative session.
type SessionState struct {
	Credential string
	Identity   *Identity
	Loading    bool
	LastError  string
}

// IsAuthenticated is the authentication predicate: a credential is present.
func (s SessionState) IsAuthenticated() bool {
	return s.Credential != ""
}

// Credential keys in durable storage.
const (
	KeyCredential      = "credential"
	KeyIdentity        = "identity"
	KeyIsAuthenticated = "isAuthenticated"
)

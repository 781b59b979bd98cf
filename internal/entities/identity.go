package entities

// Identity is the caller decoded from a session token.
type Identity struct {
	ID          string `json:"id"`
	Role        Role   `json:"role"`
	EmailDomain string `json:"email_domain"`
}

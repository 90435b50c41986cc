package models

// SessionIdentity is the current actor. An empty AccountID means anonymous.
type SessionIdentity struct {
	AccountID   string `json:"accountId,omitempty"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Token       string `json:"-"`
}

// Authenticated reports whether the identity refers to a signed-in account.
func (s *SessionIdentity) Authenticated() bool {
	return s != nil && s.AccountID != ""
}

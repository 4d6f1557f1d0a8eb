package models

// Identity is the principal an authenticated OAuth request acts as.
type Identity struct {
	Username    string // empty for consumer-level 2LO
	ConsumerKey string
	TwoLegged   bool
}

// IsConsumerOnly reports whether no user is bound to the identity.
func (i *Identity) IsConsumerOnly() bool {
	return i.Username == ""
}

// Principal returns the name used in logs and audit records.
func (i *Identity) Principal() string {
	if i.Username != "" {
		return i.Username
	}
	return "consumer:" + i.ConsumerKey
}

// internal/auth/credentials.go
package auth

import "golang.org/x/crypto/bcrypt"

// CredentialStore wraps password hashing and verification. It is constructed
// once with an explicit cost and injected where needed, rather than living as
// a package-level hashing context.
type CredentialStore struct {
	cost int
}

// NewCredentialStore returns a CredentialStore using the given bcrypt cost.
// Costs outside bcrypt's supported range fall back to the package default.
func NewCredentialStore(cost int) *CredentialStore {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &CredentialStore{cost: cost}
}

// Hash returns the bcrypt digest of password.
func (cs *CredentialStore) Hash(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), cs.cost)
}

// Verify reports whether password matches the stored digest.
func (cs *CredentialStore) Verify(password string, digest []byte) bool {
	return bcrypt.CompareHashAndPassword(digest, []byte(password)) == nil
}

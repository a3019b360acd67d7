package adapter

import "context"

// PasswordHasher is a slow, salted one-way credential hasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns domain.ErrInvalidCredentials on mismatch.
	Compare(hash, password string) error
}

// TokenIssuer mints a signed session token carrying the member identity.
type TokenIssuer interface {
	Mint(memberID int64, role string) (string, error)
}

// DocumentStore persists uploaded KYC documents and hands back opaque
// references to store alongside the profile row.
type DocumentStore interface {
	Save(ctx context.Context, name string, data []byte) (ref string, err error)
	Load(ctx context.Context, ref string) ([]byte, error)
}

package auth

import "golang.org/x/crypto/bcrypt"

// KeyHasher defines behavior for hashing and comparing API keys.
type KeyHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

// BcryptKeyHasher is a KeyHasher implementation using bcrypt.
type BcryptKeyHasher struct {
	cost int
}

// NewBcryptKeyHasher creates a new BcryptKeyHasher with default cost.
func NewBcryptKeyHasher() *BcryptKeyHasher {
	return &BcryptKeyHasher{
		cost: bcrypt.DefaultCost,
	}
}

// NewBcryptKeyHasherWithCost allows you to specify a custom bcrypt cost.
func NewBcryptKeyHasherWithCost(cost int) *BcryptKeyHasher {
	return &BcryptKeyHasher{
		cost: cost,
	}
}

// Hash hashes the given plain key using bcrypt.
func (h *BcryptKeyHasher) Hash(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Compare compares a bcrypt hashed key with its possible plaintext equivalent.
// Returns nil on success, or an error on failure.
func (h *BcryptKeyHasher) Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

package security

import "golang.org/x/crypto/bcrypt"

// Hasher hashes and checks passwords with bcrypt at a fixed cost.
// The zero value uses bcrypt.DefaultCost.
type Hasher struct {
	Cost int
}

func (h Hasher) Hash(plain string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Check compares a bcrypt hash with a plaintext password.
func (h Hasher) Check(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// HashPassword hashes a plain text password at the default cost.
func HashPassword(plain string) (string, error) {
	return Hasher{}.Hash(plain)
}

// Package auth holds credential handling for user accounts.
package auth

import "golang.org/x/crypto/bcrypt"

// HashCredential bcrypt-hashes a plaintext secret. Costs outside bcrypt's
// accepted range fall back to bcrypt.DefaultCost.
func HashCredential(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

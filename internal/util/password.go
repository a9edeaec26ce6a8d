package util

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the work factor the original deployment used; raising
// it only affects newly stored hashes because the cost travels inside the
// digest alongside the salt.
const bcryptCost = 10

func HashPassword(password string) ([]byte, error) {
	if len(password) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
}

// CheckPassword reports whether password matches the stored digest. A wrong
// password is not an error condition, it is simply false.
func CheckPassword(password string, hash []byte) bool {
	if len(password) == 0 || len(hash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

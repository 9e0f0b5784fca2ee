package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/wadjakorntonsri/ctrltab/pkg/core/domain"
)

type passwordHasher struct {
	cost int
}

// hash rejects passwords bcrypt cannot take (over 72 bytes) as invalid input.
func (h passwordHasher) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.Validation("password must be at most 72 bytes")
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

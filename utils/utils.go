package utils

import (
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 14

// NewID генерирует короткий случайный идентификатор для сессий и
// участников.
func NewID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand на поддерживаемых платформах не падает.
		panic(err)
	}
	return hex.EncodeToString(buf)
}

func HashPasscode(passcode string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(passcode), BcryptCost)
	return string(bytes), err
}

func CheckPasscodeHash(passcode, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(passcode))
	return err == nil
}

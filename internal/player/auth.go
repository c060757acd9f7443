package player

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"regexp"

	"golang.org/x/crypto/scrypt"
	"golang.org/x/text/cases"
)

const (
	saltLen    = 16
	keyLen     = 32
	scryptN    = 1 << 15
	scryptR    = 8
	scryptP    = 1
	maxNameLen = 24
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidName reports whether name is acceptable as a character name.
func ValidName(name string) bool {
	return len(name) > 0 && len(name) <= maxNameLen && namePattern.MatchString(name)
}

// Key returns the storage key for a character name. Names that differ only by
// case share a key.
func Key(name string) string {
	return cases.Fold().String(name)
}

// HashPassword derives a hex hash from password with a fresh random salt.
func HashPassword(password string) (salt string, hash string, err error) {
	b := make([]byte, saltLen)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generating salt: %w", err)
	}
	salt = hex.EncodeToString(b)

	hash, err = derive(password, salt)
	if err != nil {
		return "", "", err
	}
	return salt, hash, nil
}

// CheckPassword reports whether password matches the record's credentials.
func CheckPassword(r *Record, password string) (bool, error) {
	want, err := hex.DecodeString(r.Hash)
	if err != nil {
		return false, fmt.Errorf("decoding stored hash: %w", err)
	}

	got, err := derive(password, r.Salt)
	if err != nil {
		return false, err
	}
	gotBytes, _ := hex.DecodeString(got)

	return subtle.ConstantTimeCompare(gotBytes, want) == 1, nil
}

func derive(password, salt string) (string, error) {
	s, err := hex.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("decoding salt: %w", err)
	}
	key, err := scrypt.Key([]byte(password), s, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return "", fmt.Errorf("deriving key: %w", err)
	}
	return hex.EncodeToString(key), nil
}

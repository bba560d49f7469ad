package utils

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"regexp"
	"strings"
	"time"
)

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// NewObjectID returns a 24-char hex id: 4 bytes of Unix seconds followed by 8 random bytes.
func NewObjectID() (string, error) {
	b := make([]byte, 12)
	binary.BigEndian.PutUint32(b[:4], uint32(time.Now().Unix()))
	if _, err := rand.Read(b[4:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func IsObjectID(s string) bool {
	return objectIDPattern.MatchString(s)
}

// NormalizeObjectID lower-cases a well-formed id; ok is false otherwise.
func NormalizeObjectID(s string) (id string, ok bool) {
	if !IsObjectID(s) {
		return "", false
	}
	return strings.ToLower(s), true
}

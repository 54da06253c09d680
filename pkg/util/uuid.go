package util

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/google/uuid"
)

// Md5ThenHex is a quick hasher
func Md5ThenHex(value []byte) string {
	hasher := md5.New()
	hasher.Write(value)
	return hex.EncodeToString(hasher.Sum(nil))
}

// Fingerprint derives a stable name-based uuid from the md5 of value, so the same
// source bytes always map to the same id.
func Fingerprint(value []byte) string {
	hash := md5.Sum(value)
	id, err := uuid.FromBytes(hash[:])
	if err != nil {
		return ""
	}
	return id.String()
}

// SessionID returns a random id used to correlate the log lines of one decode.
func SessionID() string {
	return uuid.NewString()
}

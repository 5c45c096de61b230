package util

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// ShortUUID generates a short UUID with 22 symbols
func ShortUUID() string {
	u := uuid.New()
	return base64.RawURLEncoding.EncodeToString(u[:]) // 22 symbols
}

// RequestID returns the caller supplied id if it is a valid UUID, or a fresh one
func RequestID(supplied string) string {
	if id, err := uuid.Parse(supplied); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

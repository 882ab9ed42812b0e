package push

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingVAPIDKey is returned when no application server key is configured.
var ErrMissingVAPIDKey = errors.New("VAPID public key is not configured")

// DecodeVAPIDKey decodes a URL-safe base64 application server key, with or
// without padding, into raw bytes.
func DecodeVAPIDKey(key string) ([]byte, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrMissingVAPIDKey
	}

	std := strings.NewReplacer("-", "+", "_", "/").Replace(key)
	if rem := len(std) % 4; rem != 0 {
		std += strings.Repeat("=", 4-rem)
	}

	raw, err := base64.StdEncoding.DecodeString(std)
	if err != nil {
		return nil, fmt.Errorf("invalid VAPID public key: %w", err)
	}
	return raw, nil
}

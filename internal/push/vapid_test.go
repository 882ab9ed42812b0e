package push

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"
)

func TestDecodeVAPIDKey(t *testing.T) {
	raw := []byte{0x04, 0xfb, 0xff, 0xfe, 0x3e, 0x10}
	urlSafe := base64.RawURLEncoding.EncodeToString(raw)

	tests := []struct {
		name string
		key  string
	}{
		{"unpadded url-safe", urlSafe},
		{"padded url-safe", base64.URLEncoding.EncodeToString(raw)},
		{"standard alphabet", base64.StdEncoding.EncodeToString(raw)},
		{"surrounding whitespace", "  " + urlSafe + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeVAPIDKey(tt.key)
			if err != nil {
				t.Fatalf("DecodeVAPIDKey() error = %v", err)
			}
			if !bytes.Equal(got, raw) {
				t.Errorf("DecodeVAPIDKey() = %x, want %x", got, raw)
			}
		})
	}
}

func TestDecodeVAPIDKeyRealKey(t *testing.T) {
	got, err := DecodeVAPIDKey(testVAPIDKey)
	if err != nil {
		t.Fatalf("DecodeVAPIDKey() error = %v", err)
	}
	if len(got) != 65 || got[0] != 0x04 {
		t.Errorf("decoded key is %d bytes starting %#x, want an uncompressed P-256 point", len(got), got[0])
	}
}

func TestDecodeVAPIDKeyErrors(t *testing.T) {
	if _, err := DecodeVAPIDKey(" "); !errors.Is(err, ErrMissingVAPIDKey) {
		t.Errorf("DecodeVAPIDKey(blank) error = %v, want ErrMissingVAPIDKey", err)
	}
	if _, err := DecodeVAPIDKey("not*base64"); err == nil {
		t.Error("DecodeVAPIDKey(invalid) error = nil, want error")
	}
}

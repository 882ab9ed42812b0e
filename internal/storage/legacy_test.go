package storage

import (
	"strconv"
	"testing"

	"github.com/julianstephens/dayglow/internal/constants"
	"github.com/julianstephens/dayglow/internal/storage/memory"
)

func TestResolveLegacyValueMigratesLegacyKey(t *testing.T) {
	s := New(memory.New())
	s.Set("legacy_key", "legacy")

	got, ok := ResolveLegacyValue(s, Legacy[string]{Key: "new_key", LegacyKeys: []string{"legacy_key"}})
	if !ok || got != "legacy" {
		t.Fatalf("ResolveLegacyValue() = (%q, %v), want (\"legacy\", true)", got, ok)
	}

	if v, _ := s.Get("new_key"); v != "legacy" {
		t.Errorf("new_key = %q, want \"legacy\"", v)
	}
	if _, ok := s.Get("legacy_key"); ok {
		t.Error("legacy_key still exists after migration")
	}
}

func TestResolveLegacyValueOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		initial    map[string]string
		legacyKeys []string
		wantValue  string
		wantFound  bool
	}{
		{
			name:       "canonical wins over legacy",
			initial:    map[string]string{"key": "current", "old_a": "stale"},
			legacyKeys: []string{"old_a"},
			wantValue:  "current",
			wantFound:  true,
		},
		{
			name:       "first legacy key in order wins",
			initial:    map[string]string{"old_b": "second", "old_a": "first"},
			legacyKeys: []string{"old_a", "old_b"},
			wantValue:  "first",
			wantFound:  true,
		},
		{
			name:       "later legacy key used when earlier ones are empty",
			initial:    map[string]string{"old_c": "third"},
			legacyKeys: []string{"old_a", "old_b", "old_c"},
			wantValue:  "third",
			wantFound:  true,
		},
		{
			name:       "empty string is a value",
			initial:    map[string]string{"old_a": ""},
			legacyKeys: []string{"old_a", "old_b"},
			wantValue:  "",
			wantFound:  true,
		},
		{
			name:       "nothing stored",
			initial:    map[string]string{},
			legacyKeys: []string{"old_a", "old_b"},
			wantFound:  false,
		},
		{
			name:       "no legacy keys",
			initial:    map[string]string{"key": "only"},
			legacyKeys: nil,
			wantValue:  "only",
			wantFound:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(memory.New())
			for k, v := range tt.initial {
				s.Set(k, v)
			}
			l := Legacy[string]{Key: "key", LegacyKeys: tt.legacyKeys}

			got, found := ResolveLegacyValue(s, l)
			if got != tt.wantValue || found != tt.wantFound {
				t.Fatalf("ResolveLegacyValue() = (%q, %v), want (%q, %v)", got, found, tt.wantValue, tt.wantFound)
			}

			for _, k := range tt.legacyKeys {
				if _, ok := s.Get(k); ok {
					t.Errorf("legacy key %q remains after resolve", k)
				}
			}

			stored, ok := s.Get("key")
			if ok != tt.wantFound || stored != tt.wantValue {
				t.Errorf("canonical key = (%q, %v), want (%q, %v)", stored, ok, tt.wantValue, tt.wantFound)
			}

			// A second call is a no-op that returns the same result
			again, foundAgain := ResolveLegacyValue(s, l)
			if again != got || foundAgain != found {
				t.Errorf("second ResolveLegacyValue() = (%q, %v), want (%q, %v)", again, foundAgain, got, found)
			}
		})
	}
}

func TestResolveLegacyValueIdempotentAgainstReappearingLegacy(t *testing.T) {
	s := New(memory.New())
	l := Legacy[string]{Key: "key", LegacyKeys: []string{"old"}}

	s.Set("old", "first")
	ResolveLegacyValue(s, l)

	// An old build writing the legacy key again must not overwrite the canonical value
	s.Set("old", "second")
	got, _ := ResolveLegacyValue(s, l)
	if got != "first" {
		t.Errorf("ResolveLegacyValue() = %q, want \"first\"", got)
	}
	if _, ok := s.Get("old"); ok {
		t.Error("reappearing legacy key was not cleaned up")
	}
}

func TestResolveLegacyValueWithParser(t *testing.T) {
	s := New(memory.New())
	s.Set("highScore", "42")

	l := Legacy[int]{Key: "score", LegacyKeys: []string{"highScore"}, Parse: strconv.Atoi}
	got, ok := ResolveLegacyValue(s, l)
	if !ok || got != 42 {
		t.Fatalf("ResolveLegacyValue() = (%d, %v), want (42, true)", got, ok)
	}

	s.Set("score", "not a number")
	if got, ok := ResolveLegacyValue(s, l); ok || got != 0 {
		t.Errorf("ResolveLegacyValue() on unparsable value = (%d, %v), want (0, false)", got, ok)
	}
}

func TestResolveLegacyValueWithoutParserForNonString(t *testing.T) {
	s := New(memory.New())
	s.Set("score", "7")

	if _, ok := ResolveLegacyValue(s, Legacy[int]{Key: "score"}); ok {
		t.Error("ResolveLegacyValue() without parser for int reported success")
	}
}

func TestResolveLegacyJSON(t *testing.T) {
	fallback := profile{Name: "nobody"}

	t.Run("migrates json", func(t *testing.T) {
		s := New(memory.New())
		s.Set("user", `{"name":"ada","level":2}`)

		got := ResolveLegacyJSON(s, "dayglow.user", []string{"user"}, fallback)
		if got.Name != "ada" || got.Level != 2 {
			t.Errorf("ResolveLegacyJSON() = %+v", got)
		}
		if _, ok := s.Get("user"); ok {
			t.Error("legacy key remains")
		}
	})

	t.Run("malformed json yields fallback", func(t *testing.T) {
		s := New(memory.New())
		s.Set("user", `{"name":`)

		if got := ResolveLegacyJSON(s, "dayglow.user", []string{"user"}, fallback); got != fallback {
			t.Errorf("ResolveLegacyJSON() = %+v, want fallback", got)
		}
		if _, ok := s.Get("user"); ok {
			t.Error("legacy key remains after failed parse")
		}
	})

	t.Run("missing yields fallback", func(t *testing.T) {
		s := New(memory.New())
		if got := ResolveLegacyJSON(s, "dayglow.user", []string{"user"}, fallback); got != fallback {
			t.Errorf("ResolveLegacyJSON() = %+v, want fallback", got)
		}
	})
}

func TestResolveLegacyValueOnUnavailableStore(t *testing.T) {
	got, ok := ResolveLegacyValue(New(failingBackend{}), Legacy[string]{Key: "key", LegacyKeys: []string{"old"}})
	if ok || got != "" {
		t.Errorf("ResolveLegacyValue() = (%q, %v), want (\"\", false)", got, ok)
	}
}

func TestMigrateLegacyKeys(t *testing.T) {
	backend := memory.New()
	s := New(backend)
	s.Set("theme", "dark")
	s.Set("lastLogDate", "2026-10-17")
	s.Set(constants.KeyUser, `{"name":"ada"}`)
	s.Set("user", `{"name":"stale"}`)

	if n := MigrateLegacyKeys(s); n != 2 {
		t.Errorf("MigrateLegacyKeys() = %d, want 2", n)
	}

	if v, _ := s.Get(constants.KeyTheme); v != "dark" {
		t.Errorf("theme = %q, want \"dark\"", v)
	}
	if v, _ := s.Get(constants.KeyLastLogDate); v != "2026-10-17" {
		t.Errorf("lastLogDate = %q", v)
	}
	if v, _ := s.Get(constants.KeyUser); v != `{"name":"ada"}` {
		t.Errorf("user = %q, canonical value was overwritten", v)
	}
	for _, legacy := range constants.LegacyKeys {
		for _, k := range legacy {
			if _, ok := s.Get(k); ok {
				t.Errorf("legacy key %q remains", k)
			}
		}
	}
	if backend.Len() != 3 {
		t.Errorf("backend holds %d keys, want 3", backend.Len())
	}

	if n := MigrateLegacyKeys(s); n != 0 {
		t.Errorf("second MigrateLegacyKeys() = %d, want 0", n)
	}
}

package token

import (
	"testing"
)

func TestNew_LengthAndAlphabet(t *testing.T) {
	tok, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if len(tok) != Length {
		t.Errorf("New() returned token of length %d, want %d", len(tok), Length)
	}

	for _, r := range tok {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			t.Errorf("New() returned token with non-hex character %q: %s", r, tok)
		}
	}
}

func TestNew_TokensDoNotRepeat(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		tok, err := New()
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if _, ok := seen[tok]; ok {
			t.Fatalf("New() produced duplicate token %s", tok)
		}
		seen[tok] = struct{}{}
	}
}

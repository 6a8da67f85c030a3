package money

import (
	"strings"
	"testing"
)

func TestSEKGroupsThousands(t *testing.T) {
	got := SEK(4200)
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, got)
	if digits != "4200" || !strings.HasSuffix(got, " kr") || got == "4200 kr" {
		t.Fatalf("expected grouped amount, got %q", got)
	}
}

func TestSignedSEK(t *testing.T) {
	if got := SignedSEK(400); got != "+400 kr" {
		t.Fatalf("unexpected positive delta %q", got)
	}
	if got := SignedSEK(0); got != "0 kr" {
		t.Fatalf("unexpected zero delta %q", got)
	}
}

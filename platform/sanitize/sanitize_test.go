package sanitize

import "testing"

func TestLineCollapsesWhitespaceAndTags(t *testing.T) {
	got := Line("  Storgatan <b>1</b>\n\t 111 22  Stockholm ")
	if got != "Storgatan 1 111 22 Stockholm" {
		t.Fatalf("unexpected line: %q", got)
	}
}

func TestTextStripsEncodedTags(t *testing.T) {
	got := Text("&lt;script&gt;alert(1)&lt;/script&gt;Flytten blev inställd")
	if got != "alert(1)Flytten blev inställd" {
		t.Fatalf("unexpected text: %q", got)
	}
}

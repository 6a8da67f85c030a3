package email

import (
	"context"
	"strings"
	"testing"
)

func TestRenderBookingChangedListsSummaryAndPrice(t *testing.T) {
	html, err := renderBookingChanged(BookingChange{
		CustomerName: "Anna Svensson",
		Reference:    "NF-1A2B3C4D",
		Kind:         "address",
		Summary:      []string{"Från: Storgatan 1, Stockholm", "Till: Kungsgatan 5, Uppsala"},
		OldTotal:     3000,
		NewTotal:     3400,
		PortalURL:    "https://example.test/order-confirmation/abc",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		"Nya adresser",
		"NF-1A2B3C4D",
		"<li>Från: Storgatan 1, Stockholm</li>",
		"Nytt pris",
		"https://example.test/order-confirmation/abc",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in rendered email", want)
		}
	}
}

func TestRenderBookingChangedUnchangedPrice(t *testing.T) {
	html, err := renderBookingChanged(BookingChange{
		CustomerName: "Anna",
		Reference:    "NF-1",
		Kind:         "schedule",
		OldTotal:     3000,
		NewTotal:     3000,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "Priset är oförändrat") {
		t.Error("expected unchanged price text")
	}
	if strings.Contains(html, "Visa bokningen") {
		t.Error("call to action rendered without a portal url")
	}
}

func TestRenderEscapesCustomerInput(t *testing.T) {
	html, err := renderBookingCancelled(BookingCancellation{
		CustomerName: "Anna",
		Reference:    "NF-1",
		Reason:       "<script>alert(1)</script>",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Error("reason was not escaped")
	}
	if !strings.Contains(html, "kostnadsfri") {
		t.Error("expected free cancellation text")
	}
}

func TestRenderBookingCancelledWithFee(t *testing.T) {
	html, err := renderBookingCancelled(BookingCancellation{CustomerName: "Anna", Reference: "NF-1", Fee: 1500})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "avbokningsavgift") {
		t.Error("expected fee text")
	}
}

type emailConfig struct {
	enabled bool
	host    string
}

func (c emailConfig) GetEmailEnabled() bool       { return c.enabled }
func (c emailConfig) GetSMTPHost() string         { return c.host }
func (c emailConfig) GetSMTPPort() int            { return 587 }
func (c emailConfig) GetSMTPUsername() string     { return "" }
func (c emailConfig) GetSMTPPassword() string     { return "" }
func (c emailConfig) GetEmailFromName() string    { return "Nordflytt" }
func (c emailConfig) GetEmailFromAddress() string { return "noreply@example.test" }

func TestNewSenderDisabledWithoutSMTP(t *testing.T) {
	sender := NewSender(emailConfig{enabled: true})
	if _, ok := sender.(NoopSender); !ok {
		t.Fatalf("expected NoopSender, got %T", sender)
	}
	if err := sender.SendBookingCancelledEmail(context.Background(), "a@example.test", BookingCancellation{}); err != nil {
		t.Fatalf("noop send: %v", err)
	}

	if _, ok := NewSender(emailConfig{enabled: true, host: "smtp.example.test"}).(*SMTPSender); !ok {
		t.Fatal("expected SMTPSender when SMTP is configured")
	}
}

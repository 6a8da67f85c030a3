package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"booking_portal_backend/platform/money"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type bookingChangedEmailData struct {
	baseEmailData
	CustomerName string
	Reference    string
	Summary      []string
	OldTotal     string
	NewTotal     string
	PriceChanged bool
	PriceDelta   string
}

type bookingCancelledEmailData struct {
	baseEmailData
	CustomerName string
	Reference    string
	Fee          string
	HasFee       bool
	Reason       string
}

var changeHeadings = map[string]string{
	"address":  "Nya adresser",
	"volume":   "Ny volym",
	"schedule": "Nytt flyttdatum",
	"services": "Uppdaterade tjänster",
}

func renderBookingChanged(change BookingChange) (string, error) {
	heading, ok := changeHeadings[change.Kind]
	if !ok {
		heading = "Bokningen är uppdaterad"
	}
	data := bookingChangedEmailData{
		baseEmailData: baseEmailData{
			Title:      "Din bokning har uppdaterats",
			Heading:    heading,
			Subheading: "Bokning " + change.Reference,
		},
		CustomerName: change.CustomerName,
		Reference:    change.Reference,
		Summary:      change.Summary,
		OldTotal:     money.SEK(change.OldTotal),
		NewTotal:     money.SEK(change.NewTotal),
		PriceChanged: change.OldTotal != change.NewTotal,
		PriceDelta:   money.SignedSEK(change.NewTotal - change.OldTotal),
	}
	if change.PortalURL != "" {
		data.CTALabel = "Visa bokningen"
		data.CTAURL = change.PortalURL
	}
	return renderEmailTemplate("booking_changed.html", data)
}

func renderBookingCancelled(cancellation BookingCancellation) (string, error) {
	return renderEmailTemplate("booking_cancelled.html", bookingCancelledEmailData{
		baseEmailData: baseEmailData{
			Title:      "Din bokning är avbokad",
			Heading:    "Bokningen är avbokad",
			Subheading: "Bokning " + cancellation.Reference,
		},
		CustomerName: cancellation.CustomerName,
		Reference:    cancellation.Reference,
		Fee:          money.SEK(cancellation.Fee),
		HasFee:       cancellation.Fee > 0,
		Reason:       cancellation.Reason,
	})
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

// Package ticket renders a booking as a printable ticket.
package ticket

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/skip2/go-qrcode"
	"github.com/wolfeidau/flightdesk/internal/models"
)

// ErrNoPNR is returned when a booking has no outbound PNR to encode.
var ErrNoPNR = errors.New("booking has no PNR")

// Ticket is a booking joined with its outbound flight, which may be unknown.
type Ticket struct {
	Booking models.BookingRecord
	Flight  *models.Flight
	Airline string
}

// QR encodes the outbound PNR as a QR code drawn with half-height block
// characters.
func (t Ticket) QR() (string, error) {
	pnr := t.Booking.OutboundPNR()
	if pnr == "" {
		return "", ErrNoPNR
	}

	code, err := qrcode.New(pnr, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to encode PNR: %w", err)
	}

	return code.ToSmallString(false), nil
}

// Write prints the ticket to w. The QR code is omitted when the booking has
// no PNR.
func (t Ticket) Write(w io.Writer) error {
	b := t.Booking

	var sb strings.Builder
	line := func(label, value string) {
		if value == "" {
			value = "N/A"
		}
		fmt.Fprintf(&sb, "%-12s %s\n", label+":", value)
	}

	sb.WriteString("BOARDING PASS\n")
	sb.WriteString(strings.Repeat("=", 40) + "\n")
	line("Booking", b.BookingID)
	line("PNR", b.OutboundPNR())
	if pnr := b.ReturnPNR(); pnr != "" {
		line("Return PNR", pnr)
	}
	line("Status", b.Status)
	line("Trip", b.TripType)

	if f := t.Flight; f != nil {
		line("Flight", f.FlightNumber)
		line("Airline", t.Airline)
		line("Route", f.Route())
		line("Departs", strings.TrimSpace(f.DepartureDate+" "+f.DepartureTime))
		line("Arrives", strings.TrimSpace(f.ArrivalDate+" "+f.ArrivalTime))
	} else {
		line("Flight", b.OutboundFlightID)
	}

	line("Contact", contact(b))

	sb.WriteString(strings.Repeat("-", 40) + "\n")
	for i, p := range b.Passengers {
		fmt.Fprintf(&sb, "%d. %s (%d, %s) seat %s\n", i+1, p.Name, p.Age, p.Gender, orNA(p.Seat()))
	}

	if qr, err := t.QR(); err == nil {
		sb.WriteString("\n")
		sb.WriteString(qr)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func contact(b models.BookingRecord) string {
	switch {
	case b.ContactName != "" && b.ContactEmail != "":
		return fmt.Sprintf("%s <%s>", b.ContactName, b.ContactEmail)
	case b.ContactName != "":
		return b.ContactName
	default:
		return b.ContactEmail
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wolfeidau/flightdesk/internal/booking"
	"github.com/wolfeidau/flightdesk/internal/client"
	"github.com/wolfeidau/flightdesk/internal/guard"
	"github.com/wolfeidau/flightdesk/internal/models"
	"github.com/wolfeidau/flightdesk/internal/search"
	"github.com/wolfeidau/flightdesk/internal/ticket"
)

type BookCmd struct {
	FlightID     string   `arg:"" name:"flight-id" help:"Flight to book"`
	TripType     string   `help:"Trip type" name:"trip-type" enum:"one-way,round-trip" default:"one-way"`
	ContactName  string   `help:"Contact name" name:"contact-name"`
	ContactEmail string   `help:"Contact email, defaults to the session email" name:"contact-email"`
	Passengers   []string `help:"Passenger as name:age:gender:seat, repeat for each traveller" name:"passenger" short:"p"`
	Ticket       bool     `help:"Print the ticket after booking"`
}

func (b *BookCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open()
	if err != nil {
		return err
	}

	if err := a.navigate(guard.PathBook); err != nil {
		return err
	}

	f := booking.Form{
		FlightID:     b.FlightID,
		TripType:     b.TripType,
		ContactName:  b.ContactName,
		ContactEmail: b.ContactEmail,
	}
	if strings.TrimSpace(f.ContactEmail) == "" {
		f.ContactEmail = a.session.Email()
	}

	for _, raw := range b.Passengers {
		p, err := booking.ParsePassenger(raw)
		if err != nil {
			return a.fail(err, err.Error())
		}
		f.Passengers = append(f.Passengers, p)
	}

	seats, flight, err := a.seatMap(ctx, b.FlightID)
	if err != nil {
		return a.fail(err, "Failed to load flights.")
	}

	for i, p := range f.Passengers {
		if p.SeatOutbound == "" {
			continue
		}
		if err := seats.Toggle(p.SeatOutbound, i); err != nil {
			return a.fail(err, seatProblem(err, p.SeatOutbound))
		}
	}
	f.ApplySeats(seats)

	record, err := booking.NewService(a.api).Submit(ctx, f)
	if err != nil {
		var apiErr *client.Error
		if errors.As(err, &apiErr) && apiErr.Kind == client.KindUnexpected {
			return a.fail(err, "Unexpected response from server")
		}
		return a.fail(err, "Booking failed")
	}

	a.notifier.Success("Booking confirmed")

	fmt.Fprintf(a.out, "Booking ID:   %s\n", orDash(record.BookingID))
	fmt.Fprintf(a.out, "PNR:          %s\n", orDash(record.OutboundPNR()))
	if pnr := record.ReturnPNR(); pnr != "" {
		fmt.Fprintf(a.out, "Return PNR:   %s\n", pnr)
	}
	if record.Warnings != nil {
		fmt.Fprintf(a.out, "Warnings:     %v\n", record.Warnings)
	}

	if b.Ticket {
		airlines, _ := a.api.GetAllAirlines(ctx)
		t := ticket.Ticket{
			Booking: *record,
			Flight:  &flight,
			Airline: search.NewAirlines(airlines).NameFor(flight),
		}
		if len(t.Booking.Passengers) == 0 {
			t.Booking.Passengers = models.PassengerList(f.Request().Passengers)
		}
		fmt.Fprintln(a.out)
		if err := t.Write(a.out); err != nil {
			return fmt.Errorf("failed to print ticket: %w", err)
		}
	}

	return nil
}

func seatProblem(err error, seat string) string {
	seat = booking.NormalizeSeat(seat)
	switch {
	case errors.Is(err, booking.ErrSeatBooked):
		return fmt.Sprintf("Seat %s is already booked", seat)
	case errors.Is(err, booking.ErrSeatTaken):
		return fmt.Sprintf("Seat %s is already selected by another passenger", seat)
	case errors.Is(err, booking.ErrUnknownSeat):
		return fmt.Sprintf("Seat %s does not exist on this flight", seat)
	default:
		return err.Error()
	}
}

package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/flightdesk/internal/guard"
	"github.com/wolfeidau/flightdesk/internal/models"
	"github.com/wolfeidau/flightdesk/internal/search"
	"github.com/wolfeidau/flightdesk/internal/ticket"
)

type HistoryCmd struct {
	Ticket string `help:"Print the ticket for this booking ID or PNR"`
}

func (h *HistoryCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open()
	if err != nil {
		return err
	}

	if err := a.navigate(guard.PathHistory); err != nil {
		return err
	}

	email := a.historyEmail()
	if email == "" {
		a.notifier.Error("No email found for this session. Please log in again.")
		return fmt.Errorf("session has no email or username")
	}

	records, err := a.api.History(ctx, email)
	if err != nil {
		return a.fail(err, "Failed to load history.")
	}

	flights := a.flightIndex(ctx)

	if h.Ticket != "" {
		return h.printTicket(ctx, a, records, flights)
	}

	if len(records) == 0 {
		fmt.Fprintln(a.out, "No bookings found.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BOOKING\tPNR\tSTATUS\tTRIP\tROUTE\tPASSENGERS")
	for _, r := range records {
		route := r.OutboundFlightID
		if f, ok := flights[r.OutboundFlightID]; ok {
			route = f.Route()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			r.BookingID,
			orDash(r.OutboundPNR()),
			orDash(r.Status),
			orDash(r.TripType),
			orDash(route),
			passengerCount(r),
		)
	}
	_ = w.Flush()

	return nil
}

func (h *HistoryCmd) printTicket(ctx context.Context, a *app, records []models.BookingRecord, flights map[string]models.Flight) error {
	for _, r := range records {
		if r.BookingID != h.Ticket && !strings.EqualFold(r.OutboundPNR(), h.Ticket) {
			continue
		}

		t := ticket.Ticket{Booking: r}
		if f, ok := flights[r.OutboundFlightID]; ok {
			airlines, _ := a.api.GetAllAirlines(ctx)
			t.Flight = &f
			t.Airline = search.NewAirlines(airlines).NameFor(f)
		}

		return t.Write(a.out)
	}

	a.notifier.Error("Booking not found in history.")
	return fmt.Errorf("booking %s not found", h.Ticket)
}

// flightIndex maps every flight identifier to its flight. Failures are
// logged and yield an empty index, so records fall back to showing IDs.
func (a *app) flightIndex(ctx context.Context) map[string]models.Flight {
	index := make(map[string]models.Flight)

	flights, err := a.api.GetAllFlights(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to fetch flights")
		return index
	}

	for _, f := range flights {
		for _, id := range f.IDs() {
			index[id] = f
		}
	}
	return index
}

func passengerCount(r models.BookingRecord) int {
	if len(r.Passengers) > 0 {
		return len(r.Passengers)
	}
	return r.TotalPassengers
}

type CancelCmd struct {
	PNR string `arg:"" name:"pnr" help:"PNR of the booking to cancel"`
}

func (c *CancelCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open()
	if err != nil {
		return err
	}

	if err := a.navigate(guard.PathCancel); err != nil {
		return err
	}

	pnr := strings.TrimSpace(c.PNR)
	if pnr == "" {
		a.notifier.Error("Enter a PNR to cancel.")
		return fmt.Errorf("missing PNR")
	}

	msg, err := a.api.Cancel(ctx, pnr)
	if err != nil {
		return a.fail(err, "Cancellation failed")
	}

	if msg == "" {
		msg = "Booking cancelled"
	}
	a.notifier.Success(msg)

	return nil
}

package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/flightdesk/internal/booking"
	"github.com/wolfeidau/flightdesk/internal/guard"
	"github.com/wolfeidau/flightdesk/internal/models"
	"github.com/wolfeidau/flightdesk/internal/search"
)

type FlightsCmd struct {
	Search       FlightsSearchCmd       `cmd:"" help:"Search flights by route and date"`
	List         FlightsListCmd         `cmd:"" help:"List every scheduled flight"`
	Suggest      FlightsSuggestCmd      `cmd:"" help:"Suggest cities matching a prefix or fragment"`
	Destinations FlightsDestinationsCmd `cmd:"" help:"List popular destinations"`
}

type FlightsSearchCmd struct {
	From       string `help:"Source city"`
	To         string `help:"Destination city"`
	Date       string `help:"Departure date (YYYY-MM-DD)"`
	ReturnDate string `help:"Return date for round trips (YYYY-MM-DD)" name:"return-date"`
	TripType   string `help:"Trip type" name:"trip-type" enum:"one-way,round-trip" default:"one-way"`
}

func (s *FlightsSearchCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open()
	if err != nil {
		return err
	}

	if err := a.navigate(guard.PathFlights); err != nil {
		return err
	}

	q := search.Query{
		TripType:      s.TripType,
		From:          s.From,
		To:            s.To,
		DepartureDate: s.Date,
		ReturnDate:    s.ReturnDate,
	}
	if err := q.Validate(); err != nil {
		return a.fail(err, "")
	}

	flights, airlines, err := a.catalogue(ctx)
	if err != nil {
		return a.fail(err, "Failed to load flights.")
	}

	matches, err := search.Filter(flights, q)
	if err != nil {
		return a.fail(err, "")
	}

	if len(matches) == 0 {
		fmt.Fprintf(a.out, "No flights from %s to %s on %s.\n", strings.TrimSpace(s.From), strings.TrimSpace(s.To), s.Date)
		return nil
	}

	printFlights(a.out, matches, airlines)
	return nil
}

type FlightsListCmd struct{}

func (l *FlightsListCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open()
	if err != nil {
		return err
	}

	if err := a.navigate(guard.PathFlights); err != nil {
		return err
	}

	flights, airlines, err := a.catalogue(ctx)
	if err != nil {
		return a.fail(err, "Failed to load flights.")
	}

	if len(flights) == 0 {
		fmt.Fprintln(a.out, "No flights found.")
		return nil
	}

	printFlights(a.out, flights, airlines)
	return nil
}

type FlightsSuggestCmd struct {
	Query string `arg:"" help:"City fragment"`
}

func (s *FlightsSuggestCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open()
	if err != nil {
		return err
	}

	flights, err := a.api.GetAllFlights(ctx)
	if err != nil {
		return a.fail(err, "Failed to load flights.")
	}

	for _, city := range search.Suggestions(flights, s.Query) {
		fmt.Fprintln(a.out, city)
	}

	return nil
}

type FlightsDestinationsCmd struct{}

func (d *FlightsDestinationsCmd) Run(ctx context.Context, globals *Globals) error {
	for _, city := range search.Destinations {
		fmt.Fprintln(globals.stdout(), city)
	}
	return nil
}

// catalogue loads flights and the airline names used to display them. A
// failure to load airlines only loses the names.
func (a *app) catalogue(ctx context.Context) ([]models.Flight, search.Airlines, error) {
	flights, err := a.api.GetAllFlights(ctx)
	if err != nil {
		return nil, nil, err
	}

	list, err := a.api.GetAllAirlines(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load airlines")
	}

	return flights, search.NewAirlines(list), nil
}

func printFlights(out io.Writer, flights []models.Flight, airlines search.Airlines) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFLIGHT\tAIRLINE\tFROM\tTO\tDEPARTS\tARRIVES\tSEATS\tMEAL\tPRICE")

	for _, f := range flights {
		seats := fmt.Sprintf("%d", f.TotalSeats)
		if f.AvailableSeats != nil {
			seats = fmt.Sprintf("%d/%d", *f.AvailableSeats, f.TotalSeats)
		}

		meal := "no"
		if f.MealAvailable {
			meal = "yes"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s %s\t%s %s\t%s\t%s\t%.2f\n",
			f.PrimaryID(),
			f.FlightNumber,
			airlines.NameFor(f),
			f.SourceCity,
			f.DestinationCity,
			f.DepartureDate, f.DepartureTime,
			f.ArrivalDate, f.ArrivalTime,
			seats,
			meal,
			f.Price,
		)
	}

	_ = w.Flush()
}

// findFlight returns the flight known by id under any of its identifiers.
func findFlight(flights []models.Flight, id string) (models.Flight, bool) {
	for _, f := range flights {
		for _, fid := range f.IDs() {
			if fid == id {
				return f, true
			}
		}
	}
	return models.Flight{}, false
}

type SeatsCmd struct {
	FlightID string `arg:"" name:"flight-id" help:"Flight to show the seat map for"`
}

func (s *SeatsCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open()
	if err != nil {
		return err
	}

	if err := a.navigate(guard.PathBook); err != nil {
		return err
	}

	seats, flight, err := a.seatMap(ctx, s.FlightID)
	if err != nil {
		return a.fail(err, "Failed to load flights.")
	}

	fmt.Fprintf(a.out, "%s %s  %d of %d seats free\n\n", flight.FlightNumber, flight.Route(), seats.Available(), flight.TotalSeats)
	fmt.Fprint(a.out, seats.Render())

	return nil
}

// seatMap lays out the flight's seats, marking those already booked by the
// signed in user. History lookup failures leave every seat free.
func (a *app) seatMap(ctx context.Context, flightID string) (*booking.SeatMap, models.Flight, error) {
	flights, err := a.api.GetAllFlights(ctx)
	if err != nil {
		return nil, models.Flight{}, err
	}

	flight, ok := findFlight(flights, flightID)
	if !ok {
		return nil, models.Flight{}, fmt.Errorf("%w: %s", errFlightNotFound, flightID)
	}

	var booked []string
	if email := a.historyEmail(); email != "" {
		records, err := a.api.History(ctx, email)
		if err != nil {
			log.Debug().Err(err).Msg("failed to load booked seats")
		}
		for _, id := range flight.IDs() {
			booked = append(booked, booking.BookedSeats(records, id)...)
		}
	}

	return booking.NewSeatMap(flight.TotalSeats, booked), flight, nil
}

// historyEmail is the address bookings are filed under: the session email,
// else the username.
func (a *app) historyEmail() string {
	if email := a.session.Email(); email != "" {
		return email
	}
	return a.session.Username()
}

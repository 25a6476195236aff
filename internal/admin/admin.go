// Package admin validates and submits the airline and flight forms of the
// admin console.
package admin

import (
	"context"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/flightdesk/internal/form"
	"github.com/wolfeidau/flightdesk/internal/models"
)

var (
	airlineCodePattern  = regexp.MustCompile(`^[A-Z0-9]{2,5}$`)
	flightNumberPattern = regexp.MustCompile(`^[A-Z0-9]{2,8}$`)
)

// AirlineForm is the add-airline form.
type AirlineForm struct {
	Code string
	Name string
}

// NormalizedCode returns the code trimmed and upper-cased.
func (f AirlineForm) NormalizedCode() string {
	return strings.ToUpper(strings.TrimSpace(f.Code))
}

// Validate checks the form against the codes already registered.
func (f AirlineForm) Validate(existing []string) error {
	var errs form.Errors

	code := f.NormalizedCode()
	switch {
	case code == "":
		errs.Add("Airline code is required")
	case !airlineCodePattern.MatchString(code):
		errs.Add("Use 2-5 letters or numbers")
	case slices.Contains(existing, code):
		errs.Add("Airline already exists")
	}

	errs.Check(!form.Blank(f.Name), "Airline name is required")

	return errs.Err()
}

// Airline builds the payload.
func (f AirlineForm) Airline() models.Airline {
	return models.Airline{
		AirlineCode: f.NormalizedCode(),
		AirlineName: strings.TrimSpace(f.Name),
	}
}

// FlightForm is the add-flight form. Dates are YYYY-MM-DD and times HH:MM.
// Nil pointers are fields the admin has not filled in.
type FlightForm struct {
	AirlineCode     string
	FlightNumber    string
	SourceCity      string
	DestinationCity string
	DepartureDate   string
	DepartureTime   string
	ArrivalDate     string
	ArrivalTime     string
	TotalSeats      *int
	Price           *float64
	MealAvailable   *bool
}

// Known is what the server already has: airline codes and flight numbers.
type Known struct {
	Airlines      []string
	FlightNumbers []string
}

// NewKnown collects the upper-cased codes and flight numbers.
func NewKnown(airlines []models.Airline, flights []models.Flight) Known {
	var k Known
	for _, a := range airlines {
		if code := strings.ToUpper(strings.TrimSpace(a.AirlineCode)); code != "" {
			k.Airlines = append(k.Airlines, code)
		}
	}
	for _, f := range flights {
		if n := strings.ToUpper(strings.TrimSpace(f.FlightNumber)); n != "" {
			k.FlightNumbers = append(k.FlightNumbers, n)
		}
	}
	return k
}

// Validate checks the form. The airline must be one of known.Airlines when
// any are loaded.
func (f FlightForm) Validate(known Known) error {
	var errs form.Errors

	airline := strings.ToUpper(strings.TrimSpace(f.AirlineCode))
	number := strings.ToUpper(strings.TrimSpace(f.FlightNumber))

	switch {
	case airline == "":
		errs.Add("Select an airline")
	case len(known.Airlines) > 0 && !slices.Contains(known.Airlines, airline):
		errs.Add("Choose an airline from the list")
	}

	switch {
	case number == "":
		errs.Add("Flight number is required")
	case !flightNumberPattern.MatchString(number):
		errs.Add("Flight number must be 2-8 letters/numbers")
	case slices.Contains(known.FlightNumbers, number):
		errs.Add("Flight number already exists")
	}

	src, dst := strings.TrimSpace(f.SourceCity), strings.TrimSpace(f.DestinationCity)
	switch {
	case src == "" || dst == "":
		errs.Add("Source and destination are required")
	case src == dst:
		errs.Add("Source and destination must differ")
	}

	dep, depOK := f.departure()
	arr, arrOK := f.arrival()
	switch {
	case form.Blank(f.DepartureDate) || form.Blank(f.DepartureTime):
		errs.Add("Departure date and time are required")
	case form.Blank(f.ArrivalDate) || form.Blank(f.ArrivalTime):
		errs.Add("Arrival date and time are required")
	case !depOK || !arrOK || !arr.After(dep):
		errs.Add("Arrival must be after departure")
	}

	errs.Check(f.TotalSeats != nil && *f.TotalSeats > 0, "Total seats must be greater than 0")
	errs.Check(f.Price != nil && *f.Price > 0, "Price must be greater than 0")
	errs.Check(f.MealAvailable != nil, "Select meal availability")

	return errs.Err()
}

func (f FlightForm) departure() (time.Time, bool) {
	return parseDateTime(f.DepartureDate, f.DepartureTime)
}

func (f FlightForm) arrival() (time.Time, bool) {
	return parseDateTime(f.ArrivalDate, f.ArrivalTime)
}

func parseDateTime(date, clock string) (time.Time, bool) {
	value := strings.TrimSpace(date) + "T" + strings.TrimSpace(clock)
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Flight builds the payload. Call Validate first.
func (f FlightForm) Flight() models.Flight {
	flight := models.Flight{
		AirlineCode:     strings.ToUpper(strings.TrimSpace(f.AirlineCode)),
		FlightNumber:    strings.ToUpper(strings.TrimSpace(f.FlightNumber)),
		SourceCity:      strings.TrimSpace(f.SourceCity),
		DestinationCity: strings.TrimSpace(f.DestinationCity),
		DepartureDate:   strings.TrimSpace(f.DepartureDate),
		DepartureTime:   strings.TrimSpace(f.DepartureTime),
		ArrivalDate:     strings.TrimSpace(f.ArrivalDate),
		ArrivalTime:     strings.TrimSpace(f.ArrivalTime),
	}
	if f.TotalSeats != nil {
		flight.TotalSeats = *f.TotalSeats
	}
	if f.Price != nil {
		flight.Price = *f.Price
	}
	if f.MealAvailable != nil {
		flight.MealAvailable = *f.MealAvailable
	}
	return flight
}

// API is the slice of the backend the console uses. *client.Client satisfies it.
type API interface {
	GetAllAirlines(ctx context.Context) ([]models.Airline, error)
	GetAllFlights(ctx context.Context) ([]models.Flight, error)
	AddAirline(ctx context.Context, airline models.Airline) error
	AddFlight(ctx context.Context, flight models.Flight) error
}

// Console submits admin forms, validating against what the server already has.
type Console struct {
	api       API
	submitter form.Submitter
}

func NewConsole(api API) *Console {
	return &Console{api: api}
}

// Known loads existing airlines and flights. A failed load leaves the
// corresponding list empty, which skips that uniqueness check.
func (c *Console) Known(ctx context.Context) Known {
	airlines, err := c.api.GetAllAirlines(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load airlines")
		airlines = nil
	}

	flights, err := c.api.GetAllFlights(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load flights")
		flights = nil
	}

	return NewKnown(airlines, flights)
}

// AddAirline validates f and registers the airline.
func (c *Console) AddAirline(ctx context.Context, f AirlineForm) (models.Airline, error) {
	known := c.Known(ctx)
	if err := f.Validate(known.Airlines); err != nil {
		return models.Airline{}, err
	}

	airline := f.Airline()
	err := c.submitter.Submit(ctx, func(ctx context.Context) error {
		return c.api.AddAirline(ctx, airline)
	})
	if err != nil {
		return models.Airline{}, err
	}

	log.Info().Str("airlineCode", airline.AirlineCode).Msg("airline added")

	return airline, nil
}

// AddFlight validates f and adds the flight to the airline's inventory.
func (c *Console) AddFlight(ctx context.Context, f FlightForm) (models.Flight, error) {
	if err := f.Validate(c.Known(ctx)); err != nil {
		return models.Flight{}, err
	}

	flight := f.Flight()
	err := c.submitter.Submit(ctx, func(ctx context.Context) error {
		return c.api.AddFlight(ctx, flight)
	})
	if err != nil {
		return models.Flight{}, err
	}

	log.Info().
		Str("airlineCode", flight.AirlineCode).
		Str("flightNumber", flight.FlightNumber).
		Msg("flight added")

	return flight, nil
}

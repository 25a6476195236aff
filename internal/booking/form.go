package booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/flightdesk/internal/form"
	"github.com/wolfeidau/flightdesk/internal/models"
)

// Trip types.
const (
	TripOneWay    = "one-way"
	TripRoundTrip = "round-trip"
)

// ErrNoFlight is returned when a booking is submitted without a flight.
var ErrNoFlight = errors.New("no flight selected")

// Form is the booking form for a single flight.
type Form struct {
	FlightID     string
	TripType     string
	ContactName  string
	ContactEmail string
	Passengers   []models.Passenger
}

// AddPassenger appends a blank passenger and returns its index.
func (f *Form) AddPassenger() int {
	f.Passengers = append(f.Passengers, models.Passenger{})
	return len(f.Passengers) - 1
}

// RemovePassenger drops the passenger at index i.
func (f *Form) RemovePassenger(i int) {
	if i < 0 || i >= len(f.Passengers) {
		return
	}
	f.Passengers = append(f.Passengers[:i], f.Passengers[i+1:]...)
}

// ApplySeats copies the seat map selections into the passengers' outbound seats.
func (f *Form) ApplySeats(m *SeatMap) {
	for i := range f.Passengers {
		seat, _ := m.SeatOf(i)
		f.Passengers[i].SeatOutbound = seat
	}
}

// Validate checks every field before the booking request is issued.
func (f Form) Validate() error {
	var errs form.Errors

	errs.Check(!form.Blank(f.FlightID), "Select a flight to book")
	errs.Check(f.TripType == TripOneWay || f.TripType == TripRoundTrip, "Select a trip type")
	errs.Check(!form.Blank(f.ContactName), "Contact name is required")

	switch {
	case form.Blank(f.ContactEmail):
		errs.Add("Contact email is required")
	case !form.ValidEmail(f.ContactEmail):
		errs.Add("Enter a valid contact email")
	}

	if len(f.Passengers) == 0 {
		errs.Add("Add at least one passenger")
	}

	seats := make(map[string]int, len(f.Passengers))
	for i, p := range f.Passengers {
		n := i + 1
		errs.Check(!form.Blank(p.Name), fmt.Sprintf("Passenger %d: name is required", n))
		errs.Check(p.Age > 0, fmt.Sprintf("Passenger %d: age must be greater than 0", n))
		errs.Check(!form.Blank(p.Gender), fmt.Sprintf("Passenger %d: gender is required", n))

		seat := NormalizeSeat(p.SeatOutbound)
		if seat == "" {
			errs.Add(fmt.Sprintf("Passenger %d: seat is required", n))
			continue
		}
		if prev, ok := seats[seat]; ok {
			errs.Add(fmt.Sprintf("Passenger %d: seat %s is already assigned to passenger %d", n, seat, prev))
			continue
		}
		seats[seat] = n
	}

	return errs.Err()
}

// Request builds the booking payload with trimmed fields.
func (f Form) Request() models.BookingRequest {
	passengers := make([]models.Passenger, len(f.Passengers))
	for i, p := range f.Passengers {
		passengers[i] = models.Passenger{
			Name:         strings.TrimSpace(p.Name),
			Age:          p.Age,
			Gender:       strings.TrimSpace(p.Gender),
			SeatOutbound: NormalizeSeat(p.SeatOutbound),
			SeatReturn:   NormalizeSeat(p.SeatReturn),
		}
	}

	return models.BookingRequest{
		TripType:     f.TripType,
		ContactName:  strings.TrimSpace(f.ContactName),
		ContactEmail: strings.TrimSpace(f.ContactEmail),
		Passengers:   passengers,
	}
}

// ParsePassenger parses "name:age:gender[:seat]".
func ParsePassenger(s string) (models.Passenger, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return models.Passenger{}, fmt.Errorf("passenger %q: expected name:age:gender[:seat]", s)
	}

	age, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return models.Passenger{}, fmt.Errorf("passenger %q: invalid age: %w", s, err)
	}

	p := models.Passenger{
		Name:   strings.TrimSpace(parts[0]),
		Age:    age,
		Gender: strings.TrimSpace(parts[2]),
	}
	if len(parts) == 4 {
		p.SeatOutbound = NormalizeSeat(parts[3])
	}

	return p, nil
}

// Booker submits bookings. *client.Client satisfies it.
type Booker interface {
	Book(ctx context.Context, flightID string, req models.BookingRequest) (*models.BookingRecord, error)
}

// Service validates and submits booking forms, one at a time.
type Service struct {
	api       Booker
	submitter form.Submitter
}

func NewService(api Booker) *Service {
	return &Service{api: api}
}

// Pending reports whether a booking is being submitted.
func (s *Service) Pending() bool {
	return s.submitter.Pending()
}

// Submit validates f and, when valid, issues a single booking request.
func (s *Service) Submit(ctx context.Context, f Form) (*models.BookingRecord, error) {
	if form.Blank(f.FlightID) {
		return nil, ErrNoFlight
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	var record *models.BookingRecord
	err := s.submitter.Submit(ctx, func(ctx context.Context) error {
		var err error
		record, err = s.api.Book(ctx, strings.TrimSpace(f.FlightID), f.Request())
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("flightID", f.FlightID).
		Str("bookingID", record.BookingID).
		Int("passengers", len(f.Passengers)).
		Msg("booking created")

	return record, nil
}

// BookedSeats collects the outbound seats already held on flightID by the given bookings.
func BookedSeats(records []models.BookingRecord, flightID string) []string {
	var seats []string
	for _, r := range records {
		if r.OutboundFlightID != flightID || strings.EqualFold(r.Status, "CANCELLED") {
			continue
		}
		for _, p := range r.Passengers {
			if p.SeatOutbound != "" {
				seats = append(seats, NormalizeSeat(p.SeatOutbound))
			}
		}
	}
	return seats
}

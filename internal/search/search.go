// Package search filters the flight catalogue the way the home page does:
// substring matches on cities and an exact departure date.
package search

import (
	"strings"

	"github.com/wolfeidau/flightdesk/internal/form"
	"github.com/wolfeidau/flightdesk/internal/models"
)

// Trip types.
const (
	OneWay    = "one-way"
	RoundTrip = "round-trip"
)

// MaxSuggestions caps the number of city suggestions returned.
const MaxSuggestions = 5

// Destinations is the list of cities shown as known destinations.
var Destinations = []string{
	"Kanpur",
	"Lucknow",
	"Varanasi",
	"Delhi",
	"Bangalore",
	"Mumbai",
	"Chennai",
	"Hyderabad",
	"Pune",
	"Guwahati",
	"Coimbatore",
	"Mysore",
	"Kochi",
	"Srinagar",
}

// Query is a flight search. Dates are YYYY-MM-DD.
type Query struct {
	TripType      string
	From          string
	To            string
	DepartureDate string
	ReturnDate    string
}

// Validate checks that the required fields are present and the cities differ.
func (q Query) Validate() error {
	var errs form.Errors

	missing := form.Blank(q.From) || form.Blank(q.To) || form.Blank(q.DepartureDate) ||
		(q.TripType == RoundTrip && form.Blank(q.ReturnDate))
	if missing {
		errs.Add("Please fill From, To, and all required dates.")
		return errs.Err()
	}

	if strings.EqualFold(strings.TrimSpace(q.From), strings.TrimSpace(q.To)) {
		errs.Add("Source and destination cannot be the same.")
	}

	return errs.Err()
}

// Filter validates q and returns the flights matching it.
func Filter(flights []models.Flight, q Query) ([]models.Flight, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	from := strings.ToLower(strings.TrimSpace(q.From))
	to := strings.ToLower(strings.TrimSpace(q.To))
	date := strings.TrimSpace(q.DepartureDate)

	matches := make([]models.Flight, 0)
	for _, f := range flights {
		if !strings.Contains(strings.ToLower(f.SourceCity), from) {
			continue
		}
		if !strings.Contains(strings.ToLower(f.DestinationCity), to) {
			continue
		}
		if f.DepartureDate != date {
			continue
		}
		matches = append(matches, f)
	}

	return matches, nil
}

// Suggestions returns up to MaxSuggestions distinct source or destination
// cities containing query, in catalogue order.
func Suggestions(flights []models.Flight, query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var cities []string
	add := func(city string) {
		if city == "" || !strings.Contains(strings.ToLower(city), q) {
			return
		}
		if _, ok := seen[city]; ok {
			return
		}
		seen[city] = struct{}{}
		cities = append(cities, city)
	}

	for _, f := range flights {
		add(f.SourceCity)
		add(f.DestinationCity)
	}

	if len(cities) > MaxSuggestions {
		cities = cities[:MaxSuggestions]
	}
	return cities
}

// Airlines maps lower-cased airline codes to display names.
type Airlines map[string]string

// NewAirlines indexes the airlines that have both a code and a name.
func NewAirlines(list []models.Airline) Airlines {
	m := make(Airlines, len(list))
	for _, a := range list {
		if a.AirlineCode != "" && a.AirlineName != "" {
			m[strings.ToLower(a.AirlineCode)] = a.AirlineName
		}
	}
	return m
}

// NameFor returns the display name of the flight's airline: the flight's own
// name, then the map entry for its code or flight number, then the raw code,
// then the flight number, then "—".
func (a Airlines) NameFor(f models.Flight) string {
	if f.AirlineName != "" {
		return f.AirlineName
	}

	code := f.AirlineCode
	if code == "" {
		code = f.FlightNumber
	}
	if name, ok := a[strings.ToLower(code)]; ok {
		return name
	}

	if code != "" {
		return code
	}
	return "—"
}

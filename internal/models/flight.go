package models

import "strings"

// Flight is a scheduled flight as returned by the flight service.
// The service has used several identifier fields over time, so all of them
// are accepted.
type Flight struct {
	FlightID        string  `json:"flightId,omitempty" yaml:"flightId,omitempty"`
	ID              string  `json:"id,omitempty" yaml:"-"`
	LegacyID        string  `json:"_id,omitempty" yaml:"-"`
	FlightNumber    string  `json:"flightNumber" yaml:"flightNumber"`
	AirlineCode     string  `json:"airlineCode" yaml:"airlineCode"`
	AirlineName     string  `json:"airlineName,omitempty" yaml:"airlineName,omitempty"`
	SourceCity      string  `json:"sourceCity" yaml:"sourceCity"`
	DestinationCity string  `json:"destinationCity" yaml:"destinationCity"`
	DepartureDate   string  `json:"departureDate" yaml:"departureDate"`
	ArrivalDate     string  `json:"arrivalDate" yaml:"arrivalDate"`
	DepartureTime   string  `json:"departureTime" yaml:"departureTime"`
	ArrivalTime     string  `json:"arrivalTime" yaml:"arrivalTime"`
	MealAvailable   bool    `json:"mealAvailable" yaml:"mealAvailable"`
	TotalSeats      int     `json:"totalSeats" yaml:"totalSeats"`
	AvailableSeats  *int    `json:"availableSeats,omitempty" yaml:"availableSeats,omitempty"`
	Price           float64 `json:"price" yaml:"price"`
}

// IDs returns every non-empty identifier the flight is known by.
func (f Flight) IDs() []string {
	ids := make([]string, 0, 3)
	for _, id := range []string{f.FlightID, f.ID, f.LegacyID} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// PrimaryID returns the first available identifier.
func (f Flight) PrimaryID() string {
	ids := f.IDs()
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// Route formats the flight as "Source → Destination".
func (f Flight) Route() string {
	return strings.TrimSpace(f.SourceCity + " → " + f.DestinationCity)
}

// Airline is an operator registered with the flight service.
type Airline struct {
	AirlineCode string `json:"airlineCode"`
	AirlineName string `json:"airlineName"`
}

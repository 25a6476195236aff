package models

import (
	"bytes"
	"encoding/json"
)

// Passenger is a traveller on a booking.
type Passenger struct {
	Name         string `json:"name"`
	Age          int    `json:"age"`
	Gender       string `json:"gender"`
	SeatOutbound string `json:"seatOutbound"`
	SeatReturn   string `json:"seatReturn,omitempty"`
}

// Seat returns the outbound seat, falling back to the return seat.
func (p Passenger) Seat() string {
	if p.SeatOutbound != "" {
		return p.SeatOutbound
	}
	return p.SeatReturn
}

// BookingRequest is the payload submitted when booking a flight.
type BookingRequest struct {
	TripType     string      `json:"tripType"`
	ContactName  string      `json:"contactName"`
	ContactEmail string      `json:"contactEmail"`
	Passengers   []Passenger `json:"passengers"`
}

// BookingRecord is a booking as returned by the history endpoint.
type BookingRecord struct {
	BookingID        string        `json:"bookingId"`
	TripType         string        `json:"tripType"`
	OutboundFlightID string        `json:"outboundFlightId"`
	ReturnFlight     *string       `json:"returnFlight"`
	PNROutbound      *string       `json:"pnrOutbound"`
	PNRReturn        *string       `json:"pnrReturn"`
	Passengers       PassengerList `json:"passengers"`
	Warnings         any           `json:"warnings,omitempty"`
	ContactName      string        `json:"contactName"`
	ContactEmail     string        `json:"contactEmail"`
	TotalPassengers  int           `json:"totalPassengers"`
	Status           string        `json:"status"`
}

// OutboundPNR returns the outbound PNR or an empty string.
func (b BookingRecord) OutboundPNR() string {
	if b.PNROutbound == nil {
		return ""
	}
	return *b.PNROutbound
}

// ReturnPNR returns the return PNR or an empty string.
func (b BookingRecord) ReturnPNR() string {
	if b.PNRReturn == nil {
		return ""
	}
	return *b.PNRReturn
}

// PassengerList decodes the passengers field leniently: anything other than
// an array of passengers decodes to an empty list.
type PassengerList []Passenger

func (l *PassengerList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		*l = nil
		return nil
	}

	var passengers []Passenger
	if err := json.Unmarshal(trimmed, &passengers); err != nil {
		*l = nil
		return nil
	}

	*l = passengers
	return nil
}

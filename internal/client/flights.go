package client

import (
	"context"
	"net/http"

	"github.com/wolfeidau/flightdesk/internal/models"
)

const flightBase = "/flight/api/flight"

// GetAllFlights lists every scheduled flight.
func (c *Client) GetAllFlights(ctx context.Context) ([]models.Flight, error) {
	resp, err := c.send(ctx, c.public, http.MethodGet, flightBase+"/getAllFlights", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Flight](resp)
}

// GetAllAirlines lists every registered airline.
func (c *Client) GetAllAirlines(ctx context.Context) ([]models.Airline, error) {
	resp, err := c.send(ctx, c.public, http.MethodGet, flightBase+"/getAllAirlines", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Airline](resp)
}

// AddAirline registers a new airline. A 2xx response carrying an error field
// is treated as a rejection.
func (c *Client) AddAirline(ctx context.Context, airline models.Airline) error {
	resp, err := c.send(ctx, c.authed, http.MethodPost, flightBase+"/addAirline", airline)
	if err != nil {
		return err
	}
	if msg := embeddedError(resp.Body); msg != "" {
		return &Error{Kind: KindRejected, StatusCode: resp.StatusCode, Message: msg}
	}
	return nil
}

// AddFlight adds a flight to an airline's inventory. A 2xx response carrying
// an error field is treated as a rejection.
func (c *Client) AddFlight(ctx context.Context, flight models.Flight) error {
	resp, err := c.send(ctx, c.authed, http.MethodPost, flightBase+"/airline/inventory/add", flight)
	if err != nil {
		return err
	}
	if msg := embeddedError(resp.Body); msg != "" {
		return &Error{Kind: KindRejected, StatusCode: resp.StatusCode, Message: msg}
	}
	return nil
}

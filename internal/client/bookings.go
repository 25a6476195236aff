package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/flightdesk/internal/models"
)

const bookingBase = "/booking/api/booking"

// History lists the bookings made with the given contact email.
func (c *Client) History(ctx context.Context, email string) ([]models.BookingRecord, error) {
	resp, err := c.send(ctx, c.authed, http.MethodGet, bookingBase+"/history/"+pathSegment(email), nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.BookingRecord](resp)
}

// Book submits a booking for flightID. Only 201 Created counts as success.
func (c *Client) Book(ctx context.Context, flightID string, req models.BookingRequest) (*models.BookingRecord, error) {
	resp, err := c.send(ctx, c.authed, http.MethodPost, bookingBase+"/"+pathSegment(flightID), req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, unexpectedError(resp.StatusCode, "unexpected response from server", nil)
	}

	record := &models.BookingRecord{}
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, record); err != nil {
			// the booking exists server side, so a body we can't read is not a failure
			log.Debug().Err(err).Str("flightID", flightID).Msg("booking response not decodable")
		}
	}

	return record, nil
}

// Cancel cancels the booking with the given PNR. Servers that do not route
// DELETE (404/405) are asked again with POST on the same path.
func (c *Client) Cancel(ctx context.Context, pnr string) (string, error) {
	path := bookingBase + "/cancel/" + pathSegment(pnr)

	resp, err := c.send(ctx, c.authed, http.MethodDelete, path, nil)
	if err == nil {
		return cancelMessage(resp.Body), nil
	}

	if !notRouted(err) {
		return "", err
	}

	log.Debug().Str("pnr", pnr).Int("status", StatusCode(err)).Msg("cancel via DELETE not routed, falling back to POST")

	resp, postErr := c.send(ctx, c.authed, http.MethodPost, path, nil)
	if postErr != nil {
		// POST not routed either, so the DELETE answer is the real one (e.g. PNR not found)
		if notRouted(postErr) {
			return "", err
		}
		return "", postErr
	}

	return cancelMessage(resp.Body), nil
}

func notRouted(err error) bool {
	code := StatusCode(err)
	return code == http.StatusMethodNotAllowed || code == http.StatusNotFound
}

func cancelMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Status != "" {
			return payload.Status
		}
		return ""
	}
	return strings.TrimSpace(string(body))
}

package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/wolfeidau/flightdesk/internal/admin"
	"github.com/wolfeidau/flightdesk/internal/client"
	"github.com/wolfeidau/flightdesk/internal/guard"
)

// AdminCmd groups the admin console.
type AdminCmd struct {
	Login    AdminLoginCmd    `cmd:"" help:"Sign in as an administrator"`
	Airlines AdminAirlinesCmd `cmd:"" help:"Manage airlines"`
	Flights  AdminFlightsCmd  `cmd:"" help:"Manage flights"`
}

type AdminLoginCmd struct {
	Username string `help:"Username" required:""`
	Email    string `help:"Email address" required:""`
	Password string `help:"Password" env:"FLIGHTDESK_PASSWORD" required:""`
}

func (l *AdminLoginCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open()
	if err != nil {
		return err
	}

	if err := validateLogin(l.Username, l.Email, l.Password); err != nil {
		return a.fail(err, "")
	}

	if _, err := a.session.Login(ctx, client.LoginRequest{Username: l.Username, Password: l.Password}, l.Email); err != nil {
		return a.fail(err, "Login failed. Check your credentials.")
	}

	if !a.session.IsAdmin() {
		if err := a.session.Logout(); err != nil {
			return a.fail(err, "Failed to sign out.")
		}
		a.notifier.Error("Admin access only. Try the user login instead.")
		return fmt.Errorf("account %s is not an administrator", l.Username)
	}

	a.notifier.Success("Admin login successful.")
	return nil
}

type AdminAirlinesCmd struct {
	List AdminAirlinesListCmd `cmd:"" help:"List airlines"`
	Add  AdminAirlinesAddCmd  `cmd:"" help:"Register an airline"`
}

type AdminAirlinesListCmd struct{}

func (l *AdminAirlinesListCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open()
	if err != nil {
		return err
	}

	if err := a.navigate(guard.PathAdminAirlines); err != nil {
		return err
	}

	airlines, err := a.api.GetAllAirlines(ctx)
	if err != nil {
		return a.fail(err, "Failed to load airlines")
	}

	if len(airlines) == 0 {
		fmt.Fprintln(a.out, "No airlines found.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME")
	for _, al := range airlines {
		fmt.Fprintf(w, "%s\t%s\n", al.AirlineCode, al.AirlineName)
	}
	return w.Flush()
}

type AdminAirlinesAddCmd struct {
	Code string `help:"Airline code, 2-5 letters or numbers" required:""`
	Name string `help:"Airline name" required:""`
}

func (c *AdminAirlinesAddCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open()
	if err != nil {
		return err
	}

	if err := a.navigate(guard.PathAdminAirlines); err != nil {
		return err
	}

	airline, err := admin.NewConsole(a.api).AddAirline(ctx, admin.AirlineForm{Code: c.Code, Name: c.Name})
	if err != nil {
		return a.fail(err, "Failed to add airline")
	}

	a.notifier.Success("Airline added successfully.")
	fmt.Fprintf(a.out, "%s\t%s\n", airline.AirlineCode, airline.AirlineName)

	return nil
}

type AdminFlightsCmd struct {
	Add AdminFlightsAddCmd `cmd:"" help:"Add a flight to an airline's inventory"`
}

type AdminFlightsAddCmd struct {
	Airline       string  `help:"Airline code" required:""`
	FlightNumber  string  `help:"Flight number, 2-8 letters or numbers" name:"flight-number" required:""`
	From          string  `help:"Source city" required:""`
	To            string  `help:"Destination city" required:""`
	DepartureDate string  `help:"Departure date (YYYY-MM-DD)" name:"departure-date" required:""`
	DepartureTime string  `help:"Departure time (HH:MM)" name:"departure-time" required:""`
	ArrivalDate   string  `help:"Arrival date (YYYY-MM-DD)" name:"arrival-date" required:""`
	ArrivalTime   string  `help:"Arrival time (HH:MM)" name:"arrival-time" required:""`
	Seats         int     `help:"Total seats" required:""`
	Price         float64 `help:"Ticket price" required:""`
	Meal          string  `help:"Whether a meal is served" enum:"yes,no" required:""`
}

func (c *AdminFlightsAddCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open()
	if err != nil {
		return err
	}

	if err := a.navigate(guard.PathAdminFlights); err != nil {
		return err
	}

	meal := c.Meal == "yes"
	form := admin.FlightForm{
		AirlineCode:     c.Airline,
		FlightNumber:    c.FlightNumber,
		SourceCity:      c.From,
		DestinationCity: c.To,
		DepartureDate:   c.DepartureDate,
		DepartureTime:   c.DepartureTime,
		ArrivalDate:     c.ArrivalDate,
		ArrivalTime:     c.ArrivalTime,
		TotalSeats:      &c.Seats,
		Price:           &c.Price,
		MealAvailable:   &meal,
	}

	flight, err := admin.NewConsole(a.api).AddFlight(ctx, form)
	if err != nil {
		return a.fail(err, "Failed to add flight")
	}

	a.notifier.Success("Flight added successfully")
	fmt.Fprintf(a.out, "%s %s %s\n", flight.AirlineCode, flight.FlightNumber, flight.Route())

	return nil
}

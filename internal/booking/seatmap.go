package booking

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SeatsPerRow is the number of seats in a cabin row, lettered A-F.
const SeatsPerRow = 6

const seatLetters = "ABCDEF"

var (
	ErrUnknownSeat = errors.New("unknown seat")
	ErrSeatBooked  = errors.New("seat already booked")
	ErrSeatTaken   = errors.New("seat selected by another passenger")
)

// Seat is a single cell of the seat map. SelectedBy holds the index of the
// passenger holding the seat in this form, or nil.
type Seat struct {
	ID         string
	Booked     bool
	SelectedBy *int
}

// Available reports whether the seat is neither booked nor selected.
func (s Seat) Available() bool {
	return !s.Booked && s.SelectedBy == nil
}

// SeatMap is the in-form seat selection state. It only keeps passengers of
// this form from picking the same seat; the server decides availability.
type SeatMap struct {
	seats []Seat
	index map[string]int
}

// NewSeatMap lays out total seats in rows of six and marks the given seats booked.
func NewSeatMap(total int, booked []string) *SeatMap {
	if total < 0 {
		total = 0
	}

	m := &SeatMap{
		seats: make([]Seat, 0, total),
		index: make(map[string]int, total),
	}

	for i := range total {
		id := SeatID(i)
		m.index[id] = len(m.seats)
		m.seats = append(m.seats, Seat{ID: id})
	}

	for _, id := range booked {
		if i, ok := m.index[NormalizeSeat(id)]; ok {
			m.seats[i].Booked = true
		}
	}

	return m
}

// SeatID returns the label of the n-th seat (0-based): 0 is 1A, 6 is 2A.
func SeatID(n int) string {
	return strconv.Itoa(n/SeatsPerRow+1) + string(seatLetters[n%SeatsPerRow])
}

// NormalizeSeat upper-cases and trims a seat label.
func NormalizeSeat(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Seats returns a copy of every cell in layout order.
func (m *SeatMap) Seats() []Seat {
	out := make([]Seat, len(m.seats))
	for i, s := range m.seats {
		out[i] = s
		if s.SelectedBy != nil {
			v := *s.SelectedBy
			out[i].SelectedBy = &v
		}
	}
	return out
}

// Seat returns the cell with the given label.
func (m *SeatMap) Seat(id string) (Seat, bool) {
	i, ok := m.index[NormalizeSeat(id)]
	if !ok {
		return Seat{}, false
	}
	return m.Seats()[i], true
}

// Toggle selects seat id for passenger, or releases it when the passenger
// already holds it. Selecting a new seat releases the passenger's previous one.
func (m *SeatMap) Toggle(id string, passenger int) error {
	i, ok := m.index[NormalizeSeat(id)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSeat, id)
	}

	seat := &m.seats[i]
	if seat.Booked {
		return fmt.Errorf("%w: %s", ErrSeatBooked, seat.ID)
	}

	if seat.SelectedBy != nil {
		if *seat.SelectedBy != passenger {
			return fmt.Errorf("%w: %s", ErrSeatTaken, seat.ID)
		}
		seat.SelectedBy = nil
		return nil
	}

	m.Release(passenger)

	p := passenger
	seat.SelectedBy = &p
	return nil
}

// Release clears any seat held by passenger.
func (m *SeatMap) Release(passenger int) {
	for i := range m.seats {
		if m.seats[i].SelectedBy != nil && *m.seats[i].SelectedBy == passenger {
			m.seats[i].SelectedBy = nil
		}
	}
}

// RemovePassenger releases the passenger's seat and shifts the indexes of
// later passengers down by one, matching removal from the passenger list.
func (m *SeatMap) RemovePassenger(passenger int) {
	m.Release(passenger)
	for i := range m.seats {
		if p := m.seats[i].SelectedBy; p != nil && *p > passenger {
			v := *p - 1
			m.seats[i].SelectedBy = &v
		}
	}
}

// SeatOf returns the seat held by passenger.
func (m *SeatMap) SeatOf(passenger int) (string, bool) {
	for _, s := range m.seats {
		if s.SelectedBy != nil && *s.SelectedBy == passenger {
			return s.ID, true
		}
	}
	return "", false
}

// Available counts seats that are neither booked nor selected.
func (m *SeatMap) Available() int {
	n := 0
	for _, s := range m.seats {
		if s.Available() {
			n++
		}
	}
	return n
}

// Render draws the map one row per line: "." free, "x" booked, and the
// passenger label (see passengerLabel) for selected seats.
func (m *SeatMap) Render() string {
	var b strings.Builder

	b.WriteString("     ")
	for i := range SeatsPerRow {
		b.WriteByte(seatLetters[i])
		b.WriteByte(' ')
	}
	b.WriteByte('\n')

	for i, s := range m.seats {
		if i%SeatsPerRow == 0 {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%3d  ", i/SeatsPerRow+1)
		}

		switch {
		case s.Booked:
			b.WriteString("x ")
		case s.SelectedBy != nil:
			b.WriteString(passengerLabel(*s.SelectedBy) + " ")
		default:
			b.WriteString(". ")
		}
	}
	b.WriteByte('\n')

	return b.String()
}

// passengerLabel is the single-character cell label for a passenger index:
// 1-9 for the first nine passengers, then A-Z, then "+".
func passengerLabel(passenger int) string {
	n := passenger + 1
	if n < 1 || n >= 36 {
		return "+"
	}
	return strings.ToUpper(strconv.FormatInt(int64(n), 36))
}

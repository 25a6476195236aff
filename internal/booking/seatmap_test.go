package booking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatID(t *testing.T) {
	assert.Equal(t, "1A", SeatID(0))
	assert.Equal(t, "1F", SeatID(5))
	assert.Equal(t, "2A", SeatID(6))
	assert.Equal(t, "10D", SeatID(57))
}

func TestNewSeatMap(t *testing.T) {
	m := NewSeatMap(12, []string{"1b", " 2C ", "99Z"})

	seats := m.Seats()
	require.Len(t, seats, 12)
	assert.Equal(t, "1A", seats[0].ID)
	assert.Equal(t, "2F", seats[11].ID)

	s, ok := m.Seat("1B")
	require.True(t, ok)
	assert.True(t, s.Booked)

	s, ok = m.Seat("2c")
	require.True(t, ok)
	assert.True(t, s.Booked)

	assert.Equal(t, 10, m.Available())

	_, ok = m.Seat("99Z")
	assert.False(t, ok)

	assert.Empty(t, NewSeatMap(-1, nil).Seats())
}

func TestSeatMap_Toggle(t *testing.T) {
	t.Run("select and release", func(t *testing.T) {
		m := NewSeatMap(6, nil)

		require.NoError(t, m.Toggle("1A", 0))
		seat, ok := m.SeatOf(0)
		require.True(t, ok)
		assert.Equal(t, "1A", seat)

		require.NoError(t, m.Toggle("1a", 0))
		_, ok = m.SeatOf(0)
		assert.False(t, ok)
		assert.Equal(t, 6, m.Available())
	})

	t.Run("moving releases previous seat", func(t *testing.T) {
		m := NewSeatMap(6, nil)

		require.NoError(t, m.Toggle("1A", 0))
		require.NoError(t, m.Toggle("1C", 0))

		a, _ := m.Seat("1A")
		assert.True(t, a.Available())

		seat, _ := m.SeatOf(0)
		assert.Equal(t, "1C", seat)
	})

	t.Run("booked seat", func(t *testing.T) {
		m := NewSeatMap(6, []string{"1A"})
		err := m.Toggle("1A", 0)
		require.ErrorIs(t, err, ErrSeatBooked)
	})

	t.Run("held by another passenger", func(t *testing.T) {
		m := NewSeatMap(6, nil)
		require.NoError(t, m.Toggle("1A", 0))

		err := m.Toggle("1A", 1)
		require.ErrorIs(t, err, ErrSeatTaken)

		seat, _ := m.SeatOf(0)
		assert.Equal(t, "1A", seat)
	})

	t.Run("unknown seat", func(t *testing.T) {
		m := NewSeatMap(6, nil)
		require.ErrorIs(t, m.Toggle("7A", 0), ErrUnknownSeat)
	})
}

func TestSeatMap_RemovePassenger(t *testing.T) {
	m := NewSeatMap(6, nil)
	require.NoError(t, m.Toggle("1A", 0))
	require.NoError(t, m.Toggle("1B", 1))
	require.NoError(t, m.Toggle("1C", 2))

	m.RemovePassenger(1)

	seat, ok := m.SeatOf(0)
	require.True(t, ok)
	assert.Equal(t, "1A", seat)

	seat, ok = m.SeatOf(1)
	require.True(t, ok)
	assert.Equal(t, "1C", seat)

	_, ok = m.SeatOf(2)
	assert.False(t, ok)
}

func TestSeatMap_Render(t *testing.T) {
	m := NewSeatMap(8, []string{"1B"})
	require.NoError(t, m.Toggle("2A", 0))

	lines := strings.Split(strings.TrimRight(m.Render(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "     A B C D E F ", lines[0])
	assert.Equal(t, "  1  . x . . . . ", lines[1])
	assert.Equal(t, "  2  1 . ", lines[2])
}

func TestSeatMap_RenderManyPassengers(t *testing.T) {
	m := NewSeatMap(12, nil)
	for p := range 12 {
		require.NoError(t, m.Toggle(SeatID(p), p))
	}

	lines := strings.Split(strings.TrimRight(m.Render(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "  1  1 2 3 4 5 6 ", lines[1])
	assert.Equal(t, "  2  7 8 9 A B C ", lines[2])
}

func TestPassengerLabel(t *testing.T) {
	assert.Equal(t, "1", passengerLabel(0))
	assert.Equal(t, "9", passengerLabel(8))
	assert.Equal(t, "A", passengerLabel(9))
	assert.Equal(t, "B", passengerLabel(10))
	assert.Equal(t, "Z", passengerLabel(34))
	assert.Equal(t, "+", passengerLabel(35))
}

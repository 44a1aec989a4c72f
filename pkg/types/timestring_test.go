package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid morning", "09:30", false},
		{"valid midnight", "00:00", false},
		{"valid end of day", "23:59", false},
		{"missing leading zero", "9:30", true},
		{"out of range hour", "24:00", true},
		{"out of range minute", "12:60", true},
		{"with seconds", "12:30:00", true},
		{"empty", "", true},
		{"garbage", "noon", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := NewTimeStringFromString(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, ts.String())
		})
	}
}

func TestTimeString_Minutes(t *testing.T) {
	ts := TimeString("10:45")
	minutes, err := ts.Minutes()
	require.NoError(t, err)
	assert.Equal(t, 10*60+45, minutes)
}

func TestTimeString_AddMinutes(t *testing.T) {
	ts := TimeString("10:00")

	shifted, err := ts.AddMinutes(90)
	require.NoError(t, err)
	assert.Equal(t, TimeString("11:30"), shifted)

	// переход через полночь не поддерживается
	clamped, err := ts.AddMinutes(20 * 60)
	require.NoError(t, err)
	assert.Equal(t, TimeString("23:59"), clamped)

	negative, err := ts.AddMinutes(-11 * 60)
	require.NoError(t, err)
	assert.Equal(t, TimeString("00:00"), negative)
}

func TestTimeString_Comparison(t *testing.T) {
	early := TimeString("08:00")
	late := TimeString("19:30")

	assert.True(t, early.IsBefore(late))
	assert.False(t, late.IsBefore(early))
	assert.True(t, late.IsAfter(early))
	assert.False(t, early.IsBefore(early))
	assert.False(t, early.IsAfter(early))
}

func TestTimeString_At(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	day := time.Date(2025, 6, 15, 18, 45, 12, 0, time.UTC)
	ts := TimeString("09:00")

	at, err := ts.At(day, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 15, 9, 0, 0, 0, loc), at)
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString

	require.NoError(t, ts.Scan("14:30:00"))
	assert.Equal(t, TimeString("14:30"), ts)

	require.NoError(t, ts.Scan([]byte("08:15")))
	assert.Equal(t, TimeString("08:15"), ts)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	require.NoError(t, ts.Scan(time.Date(2025, 1, 1, 7, 5, 0, 0, time.UTC)))
	assert.Equal(t, TimeString("07:05"), ts)

	assert.Error(t, ts.Scan(42))
}

func TestTimeString_Value(t *testing.T) {
	value, err := TimeString("12:00").Value()
	require.NoError(t, err)
	assert.Equal(t, "12:00", value)

	nilValue, err := TimeString("").Value()
	require.NoError(t, err)
	assert.Nil(t, nilValue)

	_, err = TimeString("25:00").Value()
	assert.Error(t, err)
}

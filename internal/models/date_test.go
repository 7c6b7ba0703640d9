package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseCalendarDate(t *testing.T) {
	date, err := ParseCalendarDate("2026-03-05")
	require.NoError(t, err)
	require.Equal(t, "2026-03-05", date.String())

	_, err = ParseCalendarDate("05/03/2026")
	require.Error(t, err)

	_, err = ParseCalendarDate("2026-13-01")
	require.Error(t, err)
}

func TestDateOfUsesLocation(t *testing.T) {
	// 22:30 UTC is already the next day three hours east.
	instant := time.Date(2026, time.March, 1, 22, 30, 0, 0, time.UTC)
	east := time.FixedZone("EAT", 3*60*60)

	require.Equal(t, "2026-03-02", DateOf(instant, east).String())
	require.Equal(t, "2026-03-01", DateOf(instant, time.UTC).String())
	require.Equal(t, "2026-03-01", DateOf(instant, nil).String())
}

func TestCalendarDateJSONRoundTrip(t *testing.T) {
	date := NewCalendarDate(2026, time.August, 26)

	encoded, err := json.Marshal(date)
	require.NoError(t, err)
	require.Equal(t, `"2026-08-26"`, string(encoded))

	var decoded CalendarDate
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	require.True(t, date.Equal(decoded))

	var empty CalendarDate
	require.NoError(t, json.Unmarshal([]byte(`null`), &empty))
	require.True(t, empty.IsZero())

	require.Error(t, json.Unmarshal([]byte(`"not-a-date"`), &decoded))
}

func TestCalendarDateScan(t *testing.T) {
	var date CalendarDate

	require.NoError(t, date.Scan(time.Date(2001, time.June, 15, 13, 45, 0, 0, time.UTC)))
	require.Equal(t, "2001-06-15", date.String())

	require.NoError(t, date.Scan("2001-06-15 00:00:00+00:00"))
	require.Equal(t, "2001-06-15", date.String())

	require.NoError(t, date.Scan([]byte("2001-06-15")))
	require.Equal(t, "2001-06-15", date.String())

	require.NoError(t, date.Scan(nil))
	require.True(t, date.IsZero())

	require.Error(t, date.Scan(42))
}

func TestAgeAtCountsBirthdays(t *testing.T) {
	birth := NewCalendarDate(2000, time.June, 15)

	require.Equal(t, 25, birth.AgeAt(NewCalendarDate(2026, time.June, 14)))
	require.Equal(t, 26, birth.AgeAt(NewCalendarDate(2026, time.June, 15)))
	require.Equal(t, 26, birth.AgeAt(NewCalendarDate(2026, time.June, 16)))
	require.Equal(t, 25, birth.AgeAt(NewCalendarDate(2026, time.May, 20)))
}

package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

const calendarDateLayout = "2006-01-02"

// CalendarDate is a date with no time-of-day or timezone component. It is the
// type used for the ledger's uniqueness key, distinct from the full timestamp
// recorded alongside it.
type CalendarDate time.Time

// NewCalendarDate builds a CalendarDate for the given year, month and day.
func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	return CalendarDate(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf truncates an instant to the calendar date it falls on in the given
// location. The location decides what "today" means and must come from
// configuration, never implicit server-local time.
func DateOf(t time.Time, loc *time.Location) CalendarDate {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return NewCalendarDate(local.Year(), local.Month(), local.Day())
}

// ParseCalendarDate parses a YYYY-MM-DD string.
func ParseCalendarDate(value string) (CalendarDate, error) {
	parsed, err := time.Parse(calendarDateLayout, strings.TrimSpace(value))
	if err != nil {
		return CalendarDate{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return CalendarDate(parsed), nil
}

// Time returns the date as a midnight UTC instant.
func (d CalendarDate) Time() time.Time {
	t := time.Time(d)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (d CalendarDate) String() string {
	return d.Time().Format(calendarDateLayout)
}

// IsZero reports whether the date is unset.
func (d CalendarDate) IsZero() bool {
	return time.Time(d).IsZero()
}

// Equal compares two calendar dates ignoring any time component.
func (d CalendarDate) Equal(other CalendarDate) bool {
	return d.String() == other.String()
}

// AgeAt returns full years elapsed between the date (as a birth date) and the
// reference date, counting a year only once the birthday has been reached.
func (d CalendarDate) AgeAt(reference CalendarDate) int {
	birth := d.Time()
	ref := reference.Time()

	age := ref.Year() - birth.Year()
	if ref.Month() < birth.Month() || (ref.Month() == birth.Month() && ref.Day() < birth.Day()) {
		age--
	}
	return age
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a "YYYY-MM-DD" string.
func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	if value == "" || value == "null" {
		*d = CalendarDate{}
		return nil
	}
	parsed, err := ParseCalendarDate(value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer so the date persists as a SQL DATE.
func (d CalendarDate) Value() (driver.Value, error) {
	return d.Time(), nil
}

// Scan implements sql.Scanner, accepting DATE, timestamp and string columns.
func (d *CalendarDate) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = CalendarDate{}
		return nil
	case time.Time:
		*d = NewCalendarDate(v.Year(), v.Month(), v.Day())
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into CalendarDate", value)
	}
}

func (d *CalendarDate) scanString(value string) error {
	if len(value) >= len(calendarDateLayout) {
		value = value[:len(calendarDateLayout)]
	}
	parsed, err := ParseCalendarDate(value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// GormDataType tells GORM to map the field to a DATE column.
func (CalendarDate) GormDataType() string {
	return "date"
}

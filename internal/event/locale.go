package event

import (
	"time"
	_ "time/tzdata"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const DefaultTimezone = "Africa/Cairo"

// Locale renders dates and times the way the storefront's spreadsheet
// expects them: D/M/YYYY and h:mm:ss with a day-period marker, using the
// digits of the locale's numbering system.
type Locale struct {
	loc     *time.Location
	printer *message.Printer
	arabic  bool
}

func NewLocale(tag language.Tag, loc *time.Location) Locale {
	if loc == nil {
		loc = time.UTC
	}
	base, _ := tag.Base()
	return Locale{
		loc:     loc,
		printer: message.NewPrinter(tag),
		arabic:  base.String() == "ar",
	}
}

// DefaultLocale is ar-EG in the given IANA zone, falling back to UTC when
// the zone is unknown.
func DefaultLocale(timezone string) Locale {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return NewLocale(language.MustParse("ar-EG"), loc)
}

func (l Locale) Location() *time.Location {
	return l.loc
}

func (l Locale) num(v int, minDigits int) string {
	opts := []number.Option{number.NoSeparator()}
	if minDigits > 0 {
		opts = append(opts, number.MinIntegerDigits(minDigits))
	}
	return l.printer.Sprint(number.Decimal(v, opts...))
}

func (l Locale) Date(t time.Time) string {
	t = t.In(l.loc)
	return l.num(t.Day(), 0) + "/" + l.num(int(t.Month()), 0) + "/" + l.num(t.Year(), 0)
}

func (l Locale) Time(t time.Time) string {
	t = t.In(l.loc)

	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}

	return l.num(hour, 0) + ":" + l.num(t.Minute(), 2) + ":" + l.num(t.Second(), 2) + " " + l.dayPeriod(t.Hour())
}

func (l Locale) dayPeriod(hour int) string {
	switch {
	case l.arabic && hour < 12:
		return "ص"
	case l.arabic:
		return "م"
	case hour < 12:
		return "AM"
	}
	return "PM"
}

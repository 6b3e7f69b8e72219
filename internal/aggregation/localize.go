package aggregation

import (
	"time"

	"github.com/smukkama/weather-summary/internal/reading"
)

const (
	dateLayout    = "2006-01-02"
	roundedLayout = "15:04"
	clockLayout   = "03:04 PM"

	midnight = "00:00"
)

// Localized is a reading placed on the local calendar.
type Localized struct {
	reading.Reading

	Date    string // 2006-01-02
	Hour    int    // 0..23
	Rounded string // local time rounded to the configured granularity, 15:04
	Clock   string // exact local time, 03:04 PM
}

// Localizer converts epoch timestamps to local calendar positions.
type Localizer struct {
	loc     *time.Location
	roundTo time.Duration
}

// NewLocalizer creates a localizer for a fixed zone.
func NewLocalizer(loc *time.Location, roundTo time.Duration) *Localizer {
	return &Localizer{loc: loc, roundTo: roundTo}
}

// Localize assigns rd to its local date and hour. It fails with
// reading.ErrInvalidTimestamp for timestamps outside the supported range.
func (l *Localizer) Localize(rd reading.Reading) (Localized, error) {
	if err := reading.CheckTimestamp(rd.Timestamp); err != nil {
		return Localized{}, err
	}

	t := time.Unix(rd.Timestamp, 0).In(l.loc)

	return Localized{
		Reading: rd,
		Date:    t.Format(dateLayout),
		Hour:    t.Hour(),
		Rounded: t.Round(l.roundTo).Format(roundedLayout),
		Clock:   t.Format(clockLayout),
	}, nil
}

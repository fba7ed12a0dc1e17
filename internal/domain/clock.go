package domain

import "time"

// Clock supplies the current time in the deployment's reference timezone.
// All lifecycle mutations and metric computations read time through it so
// tests can substitute a fixed instant.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// ZoneClock is the production clock pinned to a fixed reference zone.
type ZoneClock struct {
	loc *time.Location
}

// NewZoneClock builds a clock for the named IANA zone, falling back to UTC
// when the zone database cannot resolve it.
func NewZoneClock(zone string) *ZoneClock {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		loc = time.UTC
	}
	return &ZoneClock{loc: loc}
}

func (c *ZoneClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *ZoneClock) Location() *time.Location {
	return c.loc
}

// FixedClock returns a constant instant. Test helper.
type FixedClock struct {
	Instant time.Time
}

func (c FixedClock) Now() time.Time {
	return c.Instant
}

func (c FixedClock) Location() *time.Location {
	return c.Instant.Location()
}

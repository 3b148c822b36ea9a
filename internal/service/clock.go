package service

import (
	"time"

	"talon/internal/models"
)

// Clock decides what "today" is for submissions and reports.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

func SystemClock(loc *time.Location) Clock {
	return Clock{Now: time.Now, Location: loc}
}

func (c Clock) Today() models.Date {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return models.Today(now(), c.Location)
}

package cron

import (
	"fmt"
	"strings"
	"time"

	robfig "github.com/robfig/cron/v3"
)

// Schedule yields the next run time strictly after t.
type Schedule interface {
	Next(t time.Time) time.Time
}

// ParseSchedule returns the standard five-field cron expression when expr is
// set (e.g. "0 */6 * * *"), otherwise a constant delay of interval.
func ParseSchedule(expr string, interval time.Duration) (Schedule, error) {
	if expr = strings.TrimSpace(expr); expr != "" {
		schedule, err := robfig.ParseStandard(expr)
		if err != nil {
			return nil, fmt.Errorf("parse cron schedule %q: %w", expr, err)
		}
		return schedule, nil
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	return robfig.Every(interval), nil
}

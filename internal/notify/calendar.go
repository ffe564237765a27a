package notify

import (
	"go.uber.org/zap"
)

// LogCalendar records calendar-add intents in the log. The deployment's
// real calendar backend plugs in behind the CalendarIntegrator interface.
type LogCalendar struct {
	logger *zap.Logger
}

// NewLogCalendar creates a LogCalendar.
func NewLogCalendar(logger *zap.Logger) *LogCalendar {
	return &LogCalendar{logger: logger}
}

// AddEvent logs the event.
func (c *LogCalendar) AddEvent(owner, title, description, startDate, endDate string) error {
	c.logger.Info("calendar event",
		zap.String("owner", owner),
		zap.String("title", title),
		zap.String("start", startDate),
		zap.String("end", endDate),
	)
	return nil
}

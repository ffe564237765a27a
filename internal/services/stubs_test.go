package services

import (
	"errors"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"kpiflow/internal/models"
)

// stubSender records sent notifications and can be told to fail.
type stubSender struct {
	mu      sync.Mutex
	sent    []sentMessage
	failAll bool
}

type sentMessage struct {
	Recipient string
	Subject   string
	Body      string
}

func (s *stubSender) Send(recipient, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return errors.New("smtp down")
	}
	s.sent = append(s.sent, sentMessage{Recipient: recipient, Subject: subject, Body: body})
	return nil
}

// stubCalendar records calendar events and can be told to fail.
type stubCalendar struct {
	events  []string
	failAll bool
}

func (c *stubCalendar) AddEvent(owner, title, description, startDate, endDate string) error {
	if c.failAll {
		return errors.New("calendar unreachable")
	}
	c.events = append(c.events, owner+":"+title)
	return nil
}

// openTestDB opens an in-memory SQLite database with the full schema.
func openTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&models.Employee{},
		&models.Department{},
		&models.Task{},
		&models.Setting{},
	); err != nil {
		return nil, err
	}
	return db, nil
}

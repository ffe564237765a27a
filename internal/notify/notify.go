package notify

// NotificationSender delivers a message to a recipient. Delivery is
// best-effort: failures are logged or reported as warnings and never block
// the workflow.
type NotificationSender interface {
	Send(recipient, subject, body string) error
}

// CalendarIntegrator writes an approved task into the owner's calendar.
// A failure does not revert the approval.
type CalendarIntegrator interface {
	AddEvent(owner, title, description, startDate, endDate string) error
}

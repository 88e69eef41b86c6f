// Package notify delivers employee events to an external endpoint after the
// change that caused them has committed.
//
// Delivery is fire-and-forget: Notify never blocks the caller, each event gets
// one attempt bounded by a timeout, and failures are logged and counted but
// never returned or retried.
package notify

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"employeeapp/pkg/domain"
)

// Actions carried by events.
const (
	ActionEmployeeCreated = "EMPLOYEE_CREATED"
	ActionSalaryDisbursed = "SALARY_DISBURSED"
)

// Subject is the employee an event is about.
type Subject struct {
	EmployeeID domain.RecordID
	FirstName  string
	LastName   string
	Email      string
	Salary     decimal.Decimal
}

// Event is the wire payload. It is built fresh for every attempt.
type Event struct {
	RequestID  string          `json:"request_id"`
	EmployeeID domain.RecordID `json:"employee_id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Salary     decimal.Decimal `json:"salary"`
	Action     string          `json:"action"`
	Timestamp  string          `json:"timestamp"`
}

// NewEvent builds the payload for subject. The request id is unique per call.
func NewEvent(subject Subject, action string, at time.Time) Event {
	return Event{
		RequestID:  "REQ-" + strings.ToUpper(action) + "-" + uuid.NewString(),
		EmployeeID: subject.EmployeeID,
		Name:       subject.FirstName + " " + subject.LastName,
		Email:      subject.Email,
		Salary:     subject.Salary,
		Action:     action,
		Timestamp:  at.UTC().Format(time.RFC3339),
	}
}

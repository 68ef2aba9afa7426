package availability

import "fmt"

// Check identifies which collaborator an availability lookup went through.
type Check string

const (
	CheckBlackout Check = "blackout"
	CheckBooking  Check = "booking"
	CheckCalendar Check = "calendar"
)

// CheckError reports a collaborator failure during an availability check.
// It carries which check failed so callers can log and alert precisely.
type CheckError struct {
	Check Check
	Err   error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("availability %s check failed: %v", e.Check, e.Err)
}

func (e *CheckError) Unwrap() error { return e.Err }

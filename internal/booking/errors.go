package booking

import "errors"

// Business-rule and state errors surfaced by the booking core. Handlers map
// these onto HTTP responses; none of them is retried automatically except the
// queue-number collision handled inside BookVisit itself.
var (
	// ErrNoScheduleForDay means the doctor has no practice hours on the
	// weekday of the requested date.
	ErrNoScheduleForDay = errors.New("doctor has no schedule for that day")

	// ErrQuotaExceeded means the schedule entry's patient quota is full.
	ErrQuotaExceeded = errors.New("patient quota for this schedule is full")

	// ErrInvalidTransition means the requested status change is not a legal
	// edge of the visit state machine. The visit row is left unchanged.
	ErrInvalidTransition = errors.New("invalid visit status transition")

	// ErrVisitNotInExamination means an examination was submitted for a
	// visit that is not currently being examined.
	ErrVisitNotInExamination = errors.New("visit is not in examination")

	// ErrPastVisitDate rejects bookings and cancellations dated before today.
	ErrPastVisitDate = errors.New("visit date is in the past")

	// ErrNotAuthorized means the acting role may not perform the operation,
	// or the actor does not own the visit.
	ErrNotAuthorized = errors.New("not authorized for this operation")

	// ErrVisitNotFound means the visit id does not exist.
	ErrVisitNotFound = errors.New("visit not found")

	// ErrQueueConflict means concurrent bookings kept colliding on the same
	// queue number and the retry budget ran out.
	ErrQueueConflict = errors.New("could not allocate a queue number, please retry")
)

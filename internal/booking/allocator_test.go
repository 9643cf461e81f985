package booking

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectScheduleLookup(mock sqlmock.Sqlmock, rows *sqlmock.Rows) {
	mock.ExpectQuery(q("SELECT * FROM `schedule_entries` WHERE doctor_id = ? AND day = ?")).
		WillReturnRows(rows)
}

func expectVisitCount(mock sqlmock.Sqlmock, n int64) {
	mock.ExpectQuery(q("SELECT count(*) FROM `visits` WHERE doctor_id = ? AND visit_date = ?")).
		WillReturnRows(countRows(n))
}

func TestBookVisitAssignsFirstQueueNumber(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	expectScheduleLookup(mock, scheduleRows(20))
	expectVisitCount(mock, 0)
	mock.ExpectExec(q("INSERT INTO `visits`")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	visit, err := svc.BookVisit(context.Background(), adminActor(), BookVisitParams{
		PatientID: "pat-1",
		DoctorID:  "doc-1",
		Date:      fixedNow,
		Time:      "08:30",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, visit.QueueNumber)
	assert.Equal(t, "waiting", string(visit.Status))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookVisitSequenceThenQuotaExceeded(t *testing.T) {
	svc, mock := newTestService(t)

	// Dr. A has a Monday schedule with quota 2: bookings get 1, 2, then fail.
	for _, existing := range []int64{0, 1} {
		mock.ExpectBegin()
		expectScheduleLookup(mock, scheduleRows(2))
		expectVisitCount(mock, existing)
		mock.ExpectExec(q("INSERT INTO `visits`")).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()
	}
	mock.ExpectBegin()
	expectScheduleLookup(mock, scheduleRows(2))
	expectVisitCount(mock, 2)
	mock.ExpectRollback()

	params := BookVisitParams{PatientID: "pat-1", DoctorID: "doc-1", Date: fixedNow}

	first, err := svc.BookVisit(context.Background(), adminActor(), params)
	require.NoError(t, err)
	assert.Equal(t, 1, first.QueueNumber)

	second, err := svc.BookVisit(context.Background(), adminActor(), params)
	require.NoError(t, err)
	assert.Equal(t, 2, second.QueueNumber)

	_, err = svc.BookVisit(context.Background(), adminActor(), params)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookVisitNoScheduleForDay(t *testing.T) {
	svc, mock := newTestService(t)

	// Empty result set: the doctor has no practice hours that weekday.
	mock.ExpectBegin()
	expectScheduleLookup(mock, sqlmock.NewRows([]string{"id", "doctor_id", "day", "start_time", "end_time", "quota"}))
	mock.ExpectRollback()

	_, err := svc.BookVisit(context.Background(), adminActor(), BookVisitParams{
		PatientID: "pat-1", DoctorID: "doc-1", Date: fixedNow,
	})
	assert.ErrorIs(t, err, ErrNoScheduleForDay)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookVisitRejectsPastDate(t *testing.T) {
	svc, mock := newTestService(t)

	_, err := svc.BookVisit(context.Background(), adminActor(), BookVisitParams{
		PatientID: "pat-1",
		DoctorID:  "doc-1",
		Date:      fixedNow.AddDate(0, 0, -1),
	})
	assert.ErrorIs(t, err, ErrPastVisitDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookVisitPatientCannotBookForOthers(t *testing.T) {
	svc, mock := newTestService(t)

	_, err := svc.BookVisit(context.Background(), patientActor("pat-2"), BookVisitParams{
		PatientID: "pat-1",
		DoctorID:  "doc-1",
		Date:      fixedNow,
	})
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookVisitRetriesOnQueueNumberCollision(t *testing.T) {
	svc, mock := newTestService(t)

	// First attempt loses the race on the unique index...
	mock.ExpectBegin()
	expectScheduleLookup(mock, scheduleRows(20))
	expectVisitCount(mock, 3)
	mock.ExpectExec(q("INSERT INTO `visits`")).
		WillReturnError(&mysqldrv.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	// ...the retry re-counts and succeeds with the next number.
	mock.ExpectBegin()
	expectScheduleLookup(mock, scheduleRows(20))
	expectVisitCount(mock, 4)
	mock.ExpectExec(q("INSERT INTO `visits`")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	visit, err := svc.BookVisit(context.Background(), adminActor(), BookVisitParams{
		PatientID: "pat-1", DoctorID: "doc-1", Date: fixedNow,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, visit.QueueNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookVisitGivesUpAfterRepeatedCollisions(t *testing.T) {
	svc, mock := newTestService(t)

	for i := 0; i < maxBookRetries; i++ {
		mock.ExpectBegin()
		expectScheduleLookup(mock, scheduleRows(20))
		expectVisitCount(mock, 3)
		mock.ExpectExec(q("INSERT INTO `visits`")).
			WillReturnError(&mysqldrv.MySQLError{Number: 1062, Message: "Duplicate entry"})
		mock.ExpectRollback()
	}

	_, err := svc.BookVisit(context.Background(), adminActor(), BookVisitParams{
		PatientID: "pat-1", DoctorID: "doc-1", Date: fixedNow,
	})
	assert.ErrorIs(t, err, ErrQueueConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookVisitSameDayWestOfUTC(t *testing.T) {
	// Server clock behind UTC while the request date parses to UTC midnight:
	// same calendar date, earlier instant. Must not count as past.
	est := time.FixedZone("EST", -5*3600)
	svc, mock := newTestServiceAt(t, time.Date(2025, 9, 1, 10, 0, 0, 0, est))

	mock.ExpectBegin()
	expectScheduleLookup(mock, scheduleRows(20))
	expectVisitCount(mock, 0)
	mock.ExpectExec(q("INSERT INTO `visits`")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	date, err := time.Parse("2006-01-02", "2025-09-01")
	require.NoError(t, err)

	visit, err := svc.BookVisit(context.Background(), adminActor(), BookVisitParams{
		PatientID: "pat-1", DoctorID: "doc-1", Date: date,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, visit.QueueNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookVisitAcceptsToday(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	expectScheduleLookup(mock, scheduleRows(20))
	expectVisitCount(mock, 0)
	mock.ExpectExec(q("INSERT INTO `visits`")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	// Same calendar day, later wall-clock time
	date := time.Date(2025, 9, 1, 23, 0, 0, 0, time.UTC)
	_, err := svc.BookVisit(context.Background(), adminActor(), BookVisitParams{
		PatientID: "pat-1", DoctorID: "doc-1", Date: date,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package booking

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"klinik-app-server/internal/models"
)

func expectLockedVisit(mock sqlmock.Sqlmock, rows *sqlmock.Rows) {
	mock.ExpectQuery(q("SELECT * FROM `visits` WHERE id = ?")).
		WillReturnRows(rows)
}

func expectStatusUpdate(mock sqlmock.Sqlmock) {
	mock.ExpectExec(q("UPDATE `visits` SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestStartExaminationMovesWaitingVisit(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	expectLockedVisit(mock, visitRow("visit-1", models.StatusWaiting, fixedNow))
	expectStatusUpdate(mock)
	mock.ExpectCommit()

	visit, err := svc.StartExamination(context.Background(), doctorActor("doc-1"), "visit-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInExamination, visit.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartExaminationRejectsCompletedVisit(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	expectLockedVisit(mock, visitRow("visit-1", models.StatusCompleted, fixedNow))
	mock.ExpectRollback()

	_, err := svc.StartExamination(context.Background(), doctorActor("doc-1"), "visit-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartExaminationRejectsCancelledVisit(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	expectLockedVisit(mock, visitRow("visit-1", models.StatusCancelled, fixedNow))
	mock.ExpectRollback()

	_, err := svc.StartExamination(context.Background(), doctorActor("doc-1"), "visit-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartExaminationOtherDoctorsVisit(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	expectLockedVisit(mock, visitRow("visit-1", models.StatusWaiting, fixedNow))
	mock.ExpectRollback()

	_, err := svc.StartExamination(context.Background(), doctorActor("doc-other"), "visit-1")
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartExaminationPatientNotAllowed(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.StartExamination(context.Background(), patientActor("pat-1"), "visit-1")
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestStartExaminationVisitNotFound(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	expectLockedVisit(mock, sqlmock.NewRows([]string{
		"id", "patient_id", "doctor_id", "visit_date", "visit_time", "queue_number", "status", "note",
	}))
	mock.ExpectRollback()

	_, err := svc.StartExamination(context.Background(), doctorActor("doc-1"), "visit-missing")
	assert.ErrorIs(t, err, ErrVisitNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelVisitByOwningPatient(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	expectLockedVisit(mock, visitRow("visit-1", models.StatusWaiting, fixedNow.AddDate(0, 0, 2)))
	expectStatusUpdate(mock)
	mock.ExpectCommit()

	visit, err := svc.CancelVisit(context.Background(), patientActor("pat-1"), "visit-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, visit.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelVisitOtherPatientsVisit(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	expectLockedVisit(mock, visitRow("visit-1", models.StatusWaiting, fixedNow))
	mock.ExpectRollback()

	_, err := svc.CancelVisit(context.Background(), patientActor("pat-other"), "visit-1")
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelVisitPastDate(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	expectLockedVisit(mock, visitRow("visit-1", models.StatusWaiting, fixedNow.AddDate(0, 0, -1)))
	mock.ExpectRollback()

	_, err := svc.CancelVisit(context.Background(), patientActor("pat-1"), "visit-1")
	assert.ErrorIs(t, err, ErrPastVisitDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelVisitAlreadyInExamination(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	expectLockedVisit(mock, visitRow("visit-1", models.StatusInExamination, fixedNow))
	mock.ExpectRollback()

	_, err := svc.CancelVisit(context.Background(), adminActor(), "visit-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelVisitManagementNotAllowed(t *testing.T) {
	svc, _ := newTestService(t)

	actor := Actor{UserID: "user-mgmt", Role: models.RoleManagement}
	_, err := svc.CancelVisit(context.Background(), actor, "visit-1")
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestCancelVisitSameDayWestOfUTC(t *testing.T) {
	// Stored visit date reads back as UTC midnight while the server clock
	// sits behind UTC on the same calendar date.
	est := time.FixedZone("EST", -5*3600)
	svc, mock := newTestServiceAt(t, time.Date(2025, 9, 1, 10, 0, 0, 0, est))

	mock.ExpectBegin()
	expectLockedVisit(mock, visitRow("visit-1", models.StatusWaiting,
		time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)))
	expectStatusUpdate(mock)
	mock.ExpectCommit()

	visit, err := svc.CancelVisit(context.Background(), patientActor("pat-1"), "visit-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, visit.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelVisitOnTheDayItself(t *testing.T) {
	svc, mock := newTestService(t)

	sameDay := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	expectLockedVisit(mock, visitRow("visit-1", models.StatusWaiting, sameDay))
	expectStatusUpdate(mock)
	mock.ExpectCommit()

	visit, err := svc.CancelVisit(context.Background(), patientActor("pat-1"), "visit-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, visit.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

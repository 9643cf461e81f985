package booking

import (
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"klinik-app-server/internal/clock"
	"klinik-app-server/internal/models"
)

// fixedNow is a Monday, so schedules with Day "Monday" match it.
var fixedNow = time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	return newTestServiceAt(t, fixedNow)
}

func newTestServiceAt(t *testing.T, now time.Time) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	svc := NewService(db, clock.Fixed(now), zerolog.New(io.Discard))
	return svc, mock
}

func q(s string) string {
	return regexp.QuoteMeta(s)
}

func scheduleRows(quota int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "doctor_id", "day", "start_time", "end_time", "quota"}).
		AddRow("sched-1", "doc-1", "Monday", "08:00", "12:00", quota)
}

func visitRow(id string, status models.VisitStatus, date time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "patient_id", "doctor_id", "visit_date", "visit_time", "queue_number", "status", "note",
	}).AddRow(id, "pat-1", "doc-1", date, "08:00", 1, string(status), "")
}

func countRows(n int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count(*)"}).AddRow(n)
}

func adminActor() Actor {
	return Actor{UserID: "user-admin", Role: models.RoleAdmin}
}

func doctorActor(doctorID string) Actor {
	return Actor{UserID: "user-doc", Role: models.RoleDoctor, DoctorID: doctorID}
}

func patientActor(patientID string) Actor {
	return Actor{UserID: "user-pat", Role: models.RolePatient, PatientID: patientID}
}

package handlers

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"klinik-app-server/internal/models"
)

func reportVisits() []models.Visit {
	date := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	return []models.Visit{
		{
			VisitDate:   date,
			VisitTime:   "08:00",
			QueueNumber: 1,
			Status:      models.StatusCompleted,
			Patient:     models.Patient{FullName: "Budi Santoso", RecordNumber: "RM-2025-0001"},
			Doctor:      models.Doctor{Name: "dr. Sari Wijaya"},
			MedicalRecord: &models.MedicalRecord{
				Diagnosis: "hypertension stage 1",
			},
		},
		{
			VisitDate:   date,
			VisitTime:   "08:30",
			QueueNumber: 2,
			Status:      models.StatusCancelled,
			Patient:     models.Patient{FullName: "Ani Lestari", RecordNumber: "RM-2025-0002"},
			Doctor:      models.Doctor{Name: "dr. Sari Wijaya"},
		},
	}
}

func TestBuildReportRows(t *testing.T) {
	rows := BuildReportRows(reportVisits())
	require.Len(t, rows, 2)

	assert.Equal(t, VisitReportRow{
		Date:         "2025-09-01",
		Time:         "08:00",
		QueueNumber:  1,
		RecordNumber: "RM-2025-0001",
		PatientName:  "Budi Santoso",
		DoctorName:   "dr. Sari Wijaya",
		Status:       "completed",
		Diagnosis:    "hypertension stage 1",
	}, rows[0])

	// No record on a cancelled visit, so diagnosis stays empty.
	assert.Empty(t, rows[1].Diagnosis)
	assert.Equal(t, "cancelled", rows[1].Status)
}

func TestBuildReportRowsEmpty(t *testing.T) {
	rows := BuildReportRows(nil)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestWriteReportCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteReportCSV(&buf, BuildReportRows(reportVisits()))
	require.NoError(t, err)

	want := "date,time,queue_number,record_number,patient,doctor,status,diagnosis\n" +
		"2025-09-01,08:00,1,RM-2025-0001,Budi Santoso,dr. Sari Wijaya,completed,hypertension stage 1\n" +
		"2025-09-01,08:30,2,RM-2025-0002,Ani Lestari,dr. Sari Wijaya,cancelled,\n"
	assert.Equal(t, want, buf.String())
}

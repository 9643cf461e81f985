package chatbot

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"klinik-app-server/internal/clock"
	"klinik-app-server/internal/models"
)

const systemPreamble = `You are the patient assistant of a primary care clinic.
Answer questions about doctors, practice schedules and today's queue using
only the snapshot below. You cannot book, change or cancel visits; direct
patients to the booking page for that. Keep answers short and friendly.`

// BuildClinicContext assembles the read-only snapshot handed to the model as
// system instruction: today's schedules, waiting-queue counts per doctor, and
// the patient's own upcoming visits when a patient id is supplied.
func BuildClinicContext(db *gorm.DB, clk clock.Clock, patientID string) (string, error) {
	now := clk.Now()
	today := clock.DateOf(now)
	day := models.WeekdayName(now)

	var b strings.Builder
	b.WriteString(systemPreamble)
	fmt.Fprintf(&b, "\n\nToday is %s, %s.\n", day, today.Format("2 January 2006"))

	entries, err := models.SchedulesForDay(db, day)
	if err != nil {
		return "", fmt.Errorf("loading today's schedules: %w", err)
	}
	if len(entries) == 0 {
		b.WriteString("\nNo doctors practice today.\n")
	} else {
		b.WriteString("\nToday's practice schedules:\n")
		for _, e := range entries {
			fmt.Fprintf(&b, "- %s (%s): %s-%s, quota %d patients\n",
				e.Doctor.Name, e.Doctor.Specialty, e.StartTime, e.EndTime, e.Quota)
		}
	}

	type queueRow struct {
		DoctorID string
		Name     string
		Waiting  int64
	}
	var queues []queueRow
	err = db.Model(&models.Visit{}).
		Select("visits.doctor_id as doctor_id, doctors.name as name, count(*) as waiting").
		Joins("JOIN doctors ON doctors.id = visits.doctor_id").
		Where("visits.visit_date = ? AND visits.status = ?", today, models.StatusWaiting).
		Group("visits.doctor_id, doctors.name").
		Scan(&queues).Error
	if err != nil {
		return "", fmt.Errorf("loading queue state: %w", err)
	}
	if len(queues) > 0 {
		b.WriteString("\nWaiting queue right now:\n")
		for _, q := range queues {
			fmt.Fprintf(&b, "- %s: %d patient(s) waiting\n", q.Name, q.Waiting)
		}
	}

	if patientID != "" {
		var visits []models.Visit
		err = db.Preload("Doctor").
			Where("patient_id = ? AND visit_date >= ? AND status = ?",
				patientID, today, models.StatusWaiting).
			Order("visit_date asc").
			Limit(5).
			Find(&visits).Error
		if err != nil {
			return "", fmt.Errorf("loading patient visits: %w", err)
		}
		if len(visits) > 0 {
			b.WriteString("\nThis patient's upcoming visits:\n")
			for _, v := range visits {
				fmt.Fprintf(&b, "- %s with %s, queue number %d\n",
					v.VisitDate.Format("2 January 2006"), v.Doctor.Name, v.QueueNumber)
			}
		}
	}

	return b.String(), nil
}

package booking

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"klinik-app-server/internal/clock"
	"klinik-app-server/internal/models"
)

// allocateQueueNumber computes the next queue number for (doctor, date)
// inside the booking transaction: find the schedule entry matching the date's
// weekday, count existing visits for that doctor and date regardless of
// status, and reject when count+1 exceeds the entry's quota.
//
// The count-then-insert pair is not atomic on its own; the composite unique
// index on (doctor_id, visit_date, queue_number) is what catches two
// transactions racing for the same slot, and BookVisit retries on that
// conflict.
func allocateQueueNumber(tx *gorm.DB, doctorID string, date time.Time) (int, error) {
	day := models.WeekdayName(date)

	var entry models.ScheduleEntry
	err := tx.Where("doctor_id = ? AND day = ?", doctorID, day).
		Order("start_time asc").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNoScheduleForDay
		}
		return 0, fmt.Errorf("looking up schedule: %w", err)
	}

	var count int64
	err = tx.Model(&models.Visit{}).
		Where("doctor_id = ? AND visit_date = ?", doctorID, clock.DateOf(date)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting visits: %w", err)
	}

	candidate := int(count) + 1
	if candidate > entry.Quota {
		return 0, ErrQuotaExceeded
	}
	return candidate, nil
}

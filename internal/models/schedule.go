package models

import (
	"time"

	"gorm.io/gorm"
)

// ScheduleEntry represents a recurring weekly availability window for a doctor:
// one weekday, a practice-hour range and a per-day patient quota.
type ScheduleEntry struct {
	BaseModel
	DoctorID  string `gorm:"size:36;index;not null" json:"doctorId"`
	Day       string `gorm:"size:10;not null" json:"day"` // weekday name, e.g. "Monday"
	StartTime string `gorm:"size:5;not null" json:"startTime"`
	EndTime   string `gorm:"size:5;not null" json:"endTime"`
	Quota     int    `gorm:"not null;default:0" json:"quota"`

	Doctor Doctor `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

// WeekdayName returns the schedule day name for a date.
func WeekdayName(t time.Time) string {
	return t.Weekday().String()
}

// SchedulesForDoctor lists a doctor's schedule entries ordered by weekday and start time.
func SchedulesForDoctor(db *gorm.DB, doctorID string) ([]ScheduleEntry, error) {
	var entries []ScheduleEntry
	err := db.Where("doctor_id = ?", doctorID).
		Order("day asc, start_time asc").
		Find(&entries).Error
	return entries, err
}

// SchedulesForDay lists all schedule entries for a weekday with their doctors preloaded.
func SchedulesForDay(db *gorm.DB, day string) ([]ScheduleEntry, error) {
	var entries []ScheduleEntry
	err := db.Preload("Doctor").
		Where("day = ?", day).
		Order("start_time asc").
		Find(&entries).Error
	return entries, err
}

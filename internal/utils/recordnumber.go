package utils

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"klinik-app-server/internal/models"
)

// RecordNumberGenerator supplies unique medical-record numbers for new
// patients. Implementations are treated as opaque; callers fall back to
// FallbackRecordNumber when a generator fails.
type RecordNumberGenerator interface {
	Next(db *gorm.DB, now time.Time) (string, error)
}

// SequentialRecordNumbers issues numbers of the form RM-<year>-<seq>,
// numbering within the calendar year by counting existing patients.
type SequentialRecordNumbers struct{}

// Next returns the next record number for the year of now.
func (SequentialRecordNumbers) Next(db *gorm.DB, now time.Time) (string, error) {
	prefix := fmt.Sprintf("RM-%d-", now.Year())
	var count int64
	err := db.Model(&models.Patient{}).
		Where("record_number LIKE ?", prefix+"%").
		Count(&count).Error
	if err != nil {
		return "", fmt.Errorf("counting record numbers: %w", err)
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}

// FallbackRecordNumber builds a timestamp-based record number for when the
// generator is unavailable.
func FallbackRecordNumber(now time.Time) string {
	return fmt.Sprintf("RM-%d", now.UnixMilli())
}

package models

import (
	"time"
)

// Patient represents a registered patient in the clinic
type Patient struct {
	BaseModel
	NationalID       string    `gorm:"uniqueIndex;size:16;not null" json:"nationalId"`
	RecordNumber     string    `gorm:"uniqueIndex;size:30;not null" json:"recordNumber"`
	FullName         string    `gorm:"size:150;not null" json:"fullName"`
	Gender           string    `gorm:"size:1" json:"gender"` // M or F
	DateOfBirth      time.Time `gorm:"type:date" json:"dateOfBirth"`
	Address          string    `gorm:"size:255" json:"address"`
	Phone            string    `gorm:"size:20" json:"phone"`
	Insured          bool      `gorm:"default:false" json:"insured"`
	EmergencyContact string    `gorm:"size:20" json:"emergencyContact"`

	// Optional portal account, one-to-one
	UserID *string `gorm:"size:36;index" json:"userId,omitempty"`

	// Relations
	Visits         []Visit         `gorm:"foreignKey:PatientID" json:"-"`
	MedicalRecords []MedicalRecord `gorm:"foreignKey:PatientID" json:"-"`
}

// Age returns the patient's age in full years at the given reference time.
func (p *Patient) Age(at time.Time) int {
	age := at.Year() - p.DateOfBirth.Year()
	if at.YearDay() < p.DateOfBirth.YearDay() {
		age--
	}
	return age
}

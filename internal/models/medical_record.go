package models

import (
	"time"
)

// MedicalRecord represents the clinical documentation of a completed visit.
// Exactly one record exists per visit; it is written while the visit is in
// examination and is not edited after the visit completes.
type MedicalRecord struct {
	BaseModel
	VisitID      string    `gorm:"size:36;uniqueIndex;not null" json:"visitId"`
	PatientID    string    `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID     string    `gorm:"size:36;index;not null" json:"doctorId"`
	RecordDate   time.Time `gorm:"type:date" json:"recordDate"`
	Complaint    string    `gorm:"type:text" json:"complaint"`
	History      string    `gorm:"type:text" json:"history"`
	Diagnosis    string    `gorm:"type:text" json:"diagnosis"`
	Procedure    string    `gorm:"type:text" json:"procedure"`
	Prescription string    `gorm:"type:text" json:"prescription"`
	Notes        string    `gorm:"type:text" json:"notes"`

	// Relations
	Visit   Visit   `gorm:"foreignKey:VisitID" json:"-"`
	Patient Patient `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  Doctor  `gorm:"foreignKey:DoctorID" json:"-"`
}

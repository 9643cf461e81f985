package models

import (
	"time"
)

// VisitStatus represents the status of a visit
type VisitStatus string

const (
	StatusWaiting       VisitStatus = "waiting"
	StatusInExamination VisitStatus = "in_examination"
	StatusCompleted     VisitStatus = "completed"
	StatusCancelled     VisitStatus = "cancelled"
)

// visitTransitions holds the legal status edges. Completed and cancelled are
// terminal.
var visitTransitions = map[VisitStatus][]VisitStatus{
	StatusWaiting:       {StatusInExamination, StatusCancelled},
	StatusInExamination: {StatusCompleted},
}

// CanTransition reports whether a status change is a legal edge.
func CanTransition(from, to VisitStatus) bool {
	for _, next := range visitTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Visit represents a single encounter between one patient and one doctor on
// one date. The queue number is a 1-based position within (doctor, date); the
// composite unique index makes concurrent bookings of the same slot fail with
// a duplicate-key error so the loser can retry with a fresh count.
type Visit struct {
	BaseModel
	PatientID   string      `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID    string      `gorm:"size:36;not null;uniqueIndex:idx_doctor_date_queue,priority:1" json:"doctorId"`
	VisitDate   time.Time   `gorm:"type:date;not null;uniqueIndex:idx_doctor_date_queue,priority:2" json:"visitDate"`
	VisitTime   string      `gorm:"size:5" json:"visitTime"`
	QueueNumber int         `gorm:"not null;uniqueIndex:idx_doctor_date_queue,priority:3" json:"queueNumber"`
	Status      VisitStatus `gorm:"size:20;default:'waiting'" json:"status"`
	Note        string      `gorm:"type:text" json:"note"`

	// Relations
	Patient       Patient        `gorm:"foreignKey:PatientID" json:"-"`
	Doctor        Doctor         `gorm:"foreignKey:DoctorID" json:"-"`
	MedicalRecord *MedicalRecord `gorm:"foreignKey:VisitID" json:"medicalRecord,omitempty"`
}

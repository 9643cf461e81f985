package models

// Doctor represents a member of the clinic's doctor roster
type Doctor struct {
	BaseModel
	Name          string `gorm:"size:150;not null" json:"name"`
	LicenseNumber string `gorm:"size:50" json:"licenseNumber"`
	Specialty     string `gorm:"size:100" json:"specialty"`
	Phone         string `gorm:"size:20" json:"phone"`

	// Relations
	Schedules []ScheduleEntry `gorm:"foreignKey:DoctorID" json:"schedules,omitempty"`
	Visits    []Visit         `gorm:"foreignKey:DoctorID" json:"-"`
}

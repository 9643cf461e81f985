package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"klinik-app-server/internal/middleware"
	"klinik-app-server/internal/models"
	"klinik-app-server/internal/utils"
)

// MedicalRecordHandler exposes read access to medical records. Records are
// only ever written through the examination workflow; there is no update or
// delete path once a visit has completed.
type MedicalRecordHandler struct {
	DB *gorm.DB
}

// NewMedicalRecordHandler creates a new MedicalRecordHandler.
func NewMedicalRecordHandler(db *gorm.DB) *MedicalRecordHandler {
	return &MedicalRecordHandler{DB: db}
}

// GetRecordForVisit fetches the record paired with a visit.
func (h *MedicalRecordHandler) GetRecordForVisit(c *gin.Context) {
	visitID := c.Param("visitId")

	var record models.MedicalRecord
	err := h.DB.Preload("Doctor").Where("visit_id = ?", visitID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "No medical record for this visit")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !h.canRead(c, &record) {
		return
	}
	utils.Success(c, "Medical record fetched successfully", record)
}

// GetRecordsForPatient fetches a patient's record history, newest first.
func (h *MedicalRecordHandler) GetRecordsForPatient(c *gin.Context) {
	patientID := c.Param("patientId")

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	if actor.Role == models.RolePatient && actor.PatientID != patientID {
		utils.Forbidden(c, "Patients can only view their own medical records")
		return
	}

	var records []models.MedicalRecord
	err := h.DB.Preload("Doctor").Preload("Visit").
		Where("patient_id = ?", patientID).
		Order("record_date desc, created_at desc").
		Find(&records).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch medical records: "+err.Error())
		return
	}
	utils.Success(c, "Medical records fetched successfully", records)
}

// canRead enforces row-level access: a patient only their own record, a
// doctor only records they authored, staff roles anything. Writes a
// Forbidden response and returns false on denial.
func (h *MedicalRecordHandler) canRead(c *gin.Context, record *models.MedicalRecord) bool {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return false
	}

	switch actor.Role {
	case models.RolePatient:
		if actor.PatientID != record.PatientID {
			utils.Forbidden(c, "You are not authorized to view this medical record")
			return false
		}
	case models.RoleDoctor:
		if actor.DoctorID != record.DoctorID {
			utils.Forbidden(c, "You are not authorized to view this medical record")
			return false
		}
	}
	return true
}

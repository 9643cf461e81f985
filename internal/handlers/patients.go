package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"klinik-app-server/internal/middleware"
	"klinik-app-server/internal/models"
	"klinik-app-server/internal/utils"
)

// PatientHandler handles the patient registry.
type PatientHandler struct {
	DB      *gorm.DB
	Log     zerolog.Logger
	RecNums utils.RecordNumberGenerator
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB, log zerolog.Logger) *PatientHandler {
	return &PatientHandler{DB: db, Log: log, RecNums: utils.SequentialRecordNumbers{}}
}

// PatientRequest represents the request body for registering or editing a patient.
type PatientRequest struct {
	NationalID       string `json:"nationalId" binding:"required" validate:"nik"`
	FullName         string `json:"fullName" binding:"required"`
	Gender           string `json:"gender" binding:"required,oneof=M F"`
	DateOfBirth      string `json:"dateOfBirth" binding:"required"` // YYYY-MM-DD
	Address          string `json:"address"`
	Phone            string `json:"phone"`
	Insured          bool   `json:"insured"`
	EmergencyContact string `json:"emergencyContact"`
}

// CreatePatient registers a patient at the front desk. The medical-record
// number comes from the generator, with a timestamp fallback when it fails.
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req PatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		utils.BadRequest(c, "Invalid date of birth, expected YYYY-MM-DD")
		return
	}

	var existing models.Patient
	if err := h.DB.Where("national_id = ?", req.NationalID).First(&existing).Error; err == nil {
		utils.BadRequest(c, "Patient with this national ID already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	now := time.Now()
	recordNumber, err := h.RecNums.Next(h.DB, now)
	if err != nil {
		h.Log.Warn().Err(err).Msg("record number generator unavailable, using fallback")
		recordNumber = utils.FallbackRecordNumber(now)
	}

	patient := models.Patient{
		NationalID:       req.NationalID,
		RecordNumber:     recordNumber,
		FullName:         req.FullName,
		Gender:           req.Gender,
		DateOfBirth:      dob,
		Address:          req.Address,
		Phone:            req.Phone,
		Insured:          req.Insured,
		EmergencyContact: req.EmergencyContact,
	}
	if err := h.DB.Create(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to create patient: "+err.Error())
		return
	}
	utils.Created(c, "Patient registered successfully", patient)
}

// GetPatients lists or searches the registry. The q parameter matches name,
// national ID or record number.
func (h *PatientHandler) GetPatients(c *gin.Context) {
	query := h.DB.Order("full_name asc")
	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where(
			"full_name LIKE ? OR national_id LIKE ? OR record_number LIKE ?",
			like, like, like)
	}

	var patients []models.Patient
	if err := query.Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}
	utils.Success(c, "Patients fetched successfully", patients)
}

// GetPatientByID fetches a single patient. Patients may only read their own
// row; staff roles may read any.
func (h *PatientHandler) GetPatientByID(c *gin.Context) {
	patientID := c.Param("id")

	role, _ := middleware.GetUserRoleFromContext(c)
	if role == models.RolePatient && c.GetString("patientID") != patientID {
		utils.Forbidden(c, "Patients can only view their own registration")
		return
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", patientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Patient fetched successfully", patient)
}

// UpdatePatient edits a registry entry. Staff only; the record number is
// never editable.
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	var req PatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		utils.BadRequest(c, "Invalid date of birth, expected YYYY-MM-DD")
		return
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	patient.NationalID = req.NationalID
	patient.FullName = req.FullName
	patient.Gender = req.Gender
	patient.DateOfBirth = dob
	patient.Address = req.Address
	patient.Phone = req.Phone
	patient.Insured = req.Insured
	patient.EmergencyContact = req.EmergencyContact
	if err := h.DB.Save(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to update patient: "+err.Error())
		return
	}
	utils.Success(c, "Patient updated successfully", patient)
}

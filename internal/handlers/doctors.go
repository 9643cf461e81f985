package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"klinik-app-server/internal/models"
	"klinik-app-server/internal/utils"
)

// DoctorHandler handles the doctor roster.
type DoctorHandler struct {
	DB *gorm.DB
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(db *gorm.DB) *DoctorHandler {
	return &DoctorHandler{DB: db}
}

// DoctorRequest represents the request body for creating or updating a doctor.
type DoctorRequest struct {
	Name          string `json:"name" binding:"required"`
	LicenseNumber string `json:"licenseNumber"`
	Specialty     string `json:"specialty"`
	Phone         string `json:"phone"`
}

// CreateDoctor adds a doctor to the roster. Admin only.
func (h *DoctorHandler) CreateDoctor(c *gin.Context) {
	var req DoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctor := models.Doctor{
		Name:          req.Name,
		LicenseNumber: req.LicenseNumber,
		Specialty:     req.Specialty,
		Phone:         req.Phone,
	}
	if err := h.DB.Create(&doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to create doctor: "+err.Error())
		return
	}
	utils.Created(c, "Doctor created successfully", doctor)
}

// GetDoctors lists the roster with schedules preloaded.
func (h *DoctorHandler) GetDoctors(c *gin.Context) {
	var doctors []models.Doctor
	if err := h.DB.Preload("Schedules").Order("name asc").Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}
	utils.Success(c, "Doctors fetched successfully", doctors)
}

// GetDoctorByID fetches a single doctor with schedules.
func (h *DoctorHandler) GetDoctorByID(c *gin.Context) {
	var doctor models.Doctor
	err := h.DB.Preload("Schedules").First(&doctor, "id = ?", c.Param("id")).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Doctor fetched successfully", doctor)
}

// UpdateDoctor edits a roster entry. Admin only.
func (h *DoctorHandler) UpdateDoctor(c *gin.Context) {
	var req DoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	doctor.Name = req.Name
	doctor.LicenseNumber = req.LicenseNumber
	doctor.Specialty = req.Specialty
	doctor.Phone = req.Phone
	if err := h.DB.Save(&doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to update doctor: "+err.Error())
		return
	}
	utils.Success(c, "Doctor updated successfully", doctor)
}

// DeleteDoctor removes a doctor and their schedule entries. Visits are kept
// for the historical record.
func (h *DoctorHandler) DeleteDoctor(c *gin.Context) {
	doctorID := c.Param("id")

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("doctor_id = ?", doctorID).Delete(&models.ScheduleEntry{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Doctor{}, "id = ?", doctorID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err == gorm.ErrRecordNotFound {
		utils.NotFound(c, "Doctor not found")
		return
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to delete doctor: "+err.Error())
		return
	}
	utils.Success(c, "Doctor deleted successfully", nil)
}

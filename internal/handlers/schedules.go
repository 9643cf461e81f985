package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"klinik-app-server/internal/models"
	"klinik-app-server/internal/utils"
)

// validDays is the accepted set of schedule weekday names.
var validDays = map[string]bool{
	"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true,
	"Friday": true, "Saturday": true, "Sunday": true,
}

// ScheduleHandler handles the schedule catalog: per-doctor weekly
// availability windows with patient quotas.
type ScheduleHandler struct {
	DB *gorm.DB
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(db *gorm.DB) *ScheduleHandler {
	return &ScheduleHandler{DB: db}
}

// ScheduleRequest represents the request body for creating or updating a
// schedule entry.
type ScheduleRequest struct {
	DoctorID  string `json:"doctorId" binding:"required,uuid"`
	Day       string `json:"day" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
	Quota     int    `json:"quota" binding:"required,min=1"`
}

func (h *ScheduleHandler) validateRequest(c *gin.Context, req *ScheduleRequest) bool {
	if !validDays[req.Day] {
		utils.BadRequest(c, "Invalid day, expected an English weekday name")
		return false
	}
	if !utils.IsValidClockTime(req.StartTime) || !utils.IsValidClockTime(req.EndTime) {
		utils.BadRequest(c, "Times must be HH:MM")
		return false
	}
	// HH:MM strings compare correctly as text
	if req.StartTime >= req.EndTime {
		utils.BadRequest(c, "Start time must be before end time")
		return false
	}
	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", req.DoctorID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return false
	}
	return true
}

// CreateSchedule adds an availability window. Admin only.
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	var req ScheduleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if !h.validateRequest(c, &req) {
		return
	}

	entry := models.ScheduleEntry{
		DoctorID:  req.DoctorID,
		Day:       req.Day,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Quota:     req.Quota,
	}
	if err := h.DB.Create(&entry).Error; err != nil {
		utils.InternalServerError(c, "Failed to create schedule: "+err.Error())
		return
	}
	utils.Created(c, "Schedule created successfully", entry)
}

// GetSchedules lists schedule entries, optionally filtered by doctorId.
func (h *ScheduleHandler) GetSchedules(c *gin.Context) {
	if doctorID := c.Query("doctorId"); doctorID != "" {
		entries, err := models.SchedulesForDoctor(h.DB, doctorID)
		if err != nil {
			utils.InternalServerError(c, "Failed to fetch schedules: "+err.Error())
			return
		}
		utils.Success(c, "Schedules fetched successfully", entries)
		return
	}

	var entries []models.ScheduleEntry
	err := h.DB.Preload("Doctor").Order("day asc, start_time asc").Find(&entries).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch schedules: "+err.Error())
		return
	}
	utils.Success(c, "Schedules fetched successfully", entries)
}

// GetSchedulesForDay lists a weekday's entries joined with their doctors, the
// same view the chat assistant snapshots.
func (h *ScheduleHandler) GetSchedulesForDay(c *gin.Context) {
	day := c.Param("day")
	if !validDays[day] {
		utils.BadRequest(c, "Invalid day, expected an English weekday name")
		return
	}

	entries, err := models.SchedulesForDay(h.DB, day)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch schedules: "+err.Error())
		return
	}
	utils.Success(c, "Schedules fetched successfully", entries)
}

// UpdateSchedule edits an availability window. Existing visits keep their
// queue numbers even if the quota shrinks below them; the quota only gates
// new bookings.
func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	var req ScheduleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if !h.validateRequest(c, &req) {
		return
	}

	var entry models.ScheduleEntry
	if err := h.DB.First(&entry, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Schedule not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	entry.DoctorID = req.DoctorID
	entry.Day = req.Day
	entry.StartTime = req.StartTime
	entry.EndTime = req.EndTime
	entry.Quota = req.Quota
	if err := h.DB.Save(&entry).Error; err != nil {
		utils.InternalServerError(c, "Failed to update schedule: "+err.Error())
		return
	}
	utils.Success(c, "Schedule updated successfully", entry)
}

// DeleteSchedule removes an availability window.
func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	result := h.DB.Delete(&models.ScheduleEntry{}, "id = ?", c.Param("id"))
	if result.Error != nil {
		utils.InternalServerError(c, "Failed to delete schedule: "+result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "Schedule not found")
		return
	}
	utils.Success(c, "Schedule deleted successfully", nil)
}

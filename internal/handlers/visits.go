package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"klinik-app-server/internal/booking"
	"klinik-app-server/internal/clock"
	"klinik-app-server/internal/middleware"
	"klinik-app-server/internal/models"
	"klinik-app-server/internal/utils"
)

// VisitHandler exposes the visit lifecycle over HTTP. All business rules
// live in the booking service; this handler binds requests, resolves the
// actor and maps core errors onto responses.
type VisitHandler struct {
	DB      *gorm.DB
	Booking *booking.Service
}

// NewVisitHandler creates a new VisitHandler.
func NewVisitHandler(db *gorm.DB, svc *booking.Service) *VisitHandler {
	return &VisitHandler{DB: db, Booking: svc}
}

// BookVisitRequest represents the request body for booking a visit.
type BookVisitRequest struct {
	PatientID string `json:"patientId" binding:"required,uuid"`
	DoctorID  string `json:"doctorId" binding:"required,uuid"`
	Date      string `json:"date" binding:"required"` // YYYY-MM-DD
	Time      string `json:"time"`
	Note      string `json:"note"`
}

// BookVisit books a visit: the patient joins the doctor's queue for the date
// and receives the next queue number, subject to the schedule quota.
func (h *VisitHandler) BookVisit(c *gin.Context) {
	var req BookVisitRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		utils.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}
	if req.Time != "" && !utils.IsValidClockTime(req.Time) {
		utils.BadRequest(c, "Time must be HH:MM")
		return
	}

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	// Verify referenced rows exist before entering the booking transaction
	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", req.DoctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error verifying doctor: "+err.Error())
		}
		return
	}
	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", req.PatientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error verifying patient: "+err.Error())
		}
		return
	}

	visit, err := h.Booking.BookVisit(c.Request.Context(), actor, booking.BookVisitParams{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Date:      date,
		Time:      req.Time,
		Note:      req.Note,
	})
	if err != nil {
		respondBookingError(c, err)
		return
	}
	utils.Created(c, "Visit booked successfully", visit)
}

// GetVisits lists visits filtered by the caller's role: patients see their
// own, doctors their roster, admin and management everything. Optional
// date and doctorId query filters.
func (h *VisitHandler) GetVisits(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	query := h.DB.Preload("Patient").Preload("Doctor").
		Order("visit_date desc, queue_number asc")

	switch actor.Role {
	case models.RolePatient:
		query = query.Where("patient_id = ?", actor.PatientID)
	case models.RoleDoctor:
		query = query.Where("doctor_id = ?", actor.DoctorID)
	case models.RoleAdmin, models.RoleManagement:
		// unrestricted
	default:
		utils.Forbidden(c, "Role not permitted to list visits")
		return
	}

	if date := c.Query("date"); date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			utils.BadRequest(c, "Invalid date filter, expected YYYY-MM-DD")
			return
		}
		query = query.Where("visit_date = ?", clock.DateOf(parsed))
	}
	if doctorID := c.Query("doctorId"); doctorID != "" {
		query = query.Where("doctor_id = ?", doctorID)
	}

	var visits []models.Visit
	if err := query.Find(&visits).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch visits: "+err.Error())
		return
	}
	utils.Success(c, "Visits fetched successfully", visits)
}

// GetVisitByID fetches a single visit with its medical record when present.
func (h *VisitHandler) GetVisitByID(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var visit models.Visit
	err := h.DB.Preload("Patient").Preload("Doctor").Preload("MedicalRecord").
		First(&visit, "id = ?", c.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Visit not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	switch actor.Role {
	case models.RolePatient:
		if actor.PatientID != visit.PatientID {
			utils.Forbidden(c, "You are not authorized to view this visit")
			return
		}
	case models.RoleDoctor:
		if actor.DoctorID != visit.DoctorID {
			utils.Forbidden(c, "You are not authorized to view this visit")
			return
		}
	}

	utils.Success(c, "Visit fetched successfully", visit)
}

// StartExamination checks a waiting patient in: waiting -> in_examination.
func (h *VisitHandler) StartExamination(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	visit, err := h.Booking.StartExamination(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	utils.Success(c, "Examination started", visit)
}

// CancelVisit cancels a waiting visit before its date has passed.
func (h *VisitHandler) CancelVisit(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	visit, err := h.Booking.CancelVisit(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	utils.Success(c, "Visit cancelled", visit)
}

// CompleteExaminationRequest carries the medical record written when an
// examination finishes.
type CompleteExaminationRequest struct {
	Complaint    string `json:"complaint" binding:"required"`
	History      string `json:"history"`
	Diagnosis    string `json:"diagnosis" binding:"required"`
	Procedure    string `json:"procedure"`
	Prescription string `json:"prescription"`
	Notes        string `json:"notes"`
}

// CompleteExamination finishes an examination, persisting the medical record
// and completing the visit as one unit.
func (h *VisitHandler) CompleteExamination(c *gin.Context) {
	var req CompleteExaminationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	record, err := h.Booking.CompleteExamination(c.Request.Context(), actor, c.Param("id"),
		booking.RecordFields{
			Complaint:    req.Complaint,
			History:      req.History,
			Diagnosis:    req.Diagnosis,
			Procedure:    req.Procedure,
			Prescription: req.Prescription,
			Notes:        req.Notes,
		})
	if err != nil {
		respondBookingError(c, err)
		return
	}
	utils.Success(c, "Examination completed", record)
}

// respondBookingError maps core booking errors onto HTTP responses.
func respondBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrNotAuthorized):
		utils.Forbidden(c, err.Error())
	case errors.Is(err, booking.ErrVisitNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, booking.ErrNoScheduleForDay),
		errors.Is(err, booking.ErrPastVisitDate):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, booking.ErrQuotaExceeded),
		errors.Is(err, booking.ErrQueueConflict):
		utils.Conflict(c, err.Error())
	case errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, booking.ErrVisitNotInExamination):
		utils.UnprocessableEntity(c, err.Error())
	default:
		utils.InternalServerError(c, err.Error())
	}
}

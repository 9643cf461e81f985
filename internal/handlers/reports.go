package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"klinik-app-server/internal/clock"
	"klinik-app-server/internal/models"
	"klinik-app-server/internal/utils"
)

// ReportHandler produces the period visit report for management.
type ReportHandler struct {
	DB *gorm.DB
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{DB: db}
}

// VisitReportRow is one line of the period report: a visit joined with
// patient, doctor and (when completed) diagnosis.
type VisitReportRow struct {
	Date         string `json:"date"`
	Time         string `json:"time"`
	QueueNumber  int    `json:"queueNumber"`
	RecordNumber string `json:"recordNumber"`
	PatientName  string `json:"patientName"`
	DoctorName   string `json:"doctorName"`
	Status       string `json:"status"`
	Diagnosis    string `json:"diagnosis"`
}

// GetVisitReport returns visits in [from, to] optionally filtered by doctor,
// as JSON or as a CSV download when format=csv.
func (h *ReportHandler) GetVisitReport(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		utils.BadRequest(c, "Invalid or missing from date, expected YYYY-MM-DD")
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		utils.BadRequest(c, "Invalid or missing to date, expected YYYY-MM-DD")
		return
	}
	if to.Before(from) {
		utils.BadRequest(c, "to date must not be before from date")
		return
	}

	query := h.DB.Preload("Patient").Preload("Doctor").Preload("MedicalRecord").
		Where("visit_date BETWEEN ? AND ?", clock.DateOf(from), clock.DateOf(to)).
		Order("visit_date asc, queue_number asc")
	if doctorID := c.Query("doctorId"); doctorID != "" {
		query = query.Where("doctor_id = ?", doctorID)
	}

	var visits []models.Visit
	if err := query.Find(&visits).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch visits: "+err.Error())
		return
	}

	rows := BuildReportRows(visits)

	if c.Query("format") == "csv" {
		filename := fmt.Sprintf("visit-report-%s-%s.csv",
			from.Format("2006-01-02"), to.Format("2006-01-02"))
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", "attachment; filename="+filename)
		if err := WriteReportCSV(c.Writer, rows); err != nil {
			utils.InternalServerError(c, "Failed to write CSV: "+err.Error())
		}
		return
	}

	completed := 0
	for _, r := range rows {
		if r.Status == string(models.StatusCompleted) {
			completed++
		}
	}
	utils.Success(c, "Report generated successfully", gin.H{
		"rows":           rows,
		"totalVisits":    len(rows),
		"completedCount": completed,
	})
}

// BuildReportRows projects visits onto report rows.
func BuildReportRows(visits []models.Visit) []VisitReportRow {
	rows := make([]VisitReportRow, 0, len(visits))
	for i := range visits {
		v := &visits[i]
		row := VisitReportRow{
			Date:         v.VisitDate.Format("2006-01-02"),
			Time:         v.VisitTime,
			QueueNumber:  v.QueueNumber,
			RecordNumber: v.Patient.RecordNumber,
			PatientName:  v.Patient.FullName,
			DoctorName:   v.Doctor.Name,
			Status:       string(v.Status),
		}
		if v.MedicalRecord != nil {
			row.Diagnosis = v.MedicalRecord.Diagnosis
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteReportCSV writes the report with a header line.
func WriteReportCSV(w io.Writer, rows []VisitReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"date", "time", "queue_number", "record_number",
		"patient", "doctor", "status", "diagnosis",
	}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			r.Date, r.Time, strconv.Itoa(r.QueueNumber), r.RecordNumber,
			r.PatientName, r.DoctorName, r.Status, r.Diagnosis,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

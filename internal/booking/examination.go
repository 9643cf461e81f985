package booking

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"klinik-app-server/internal/clock"
	"klinik-app-server/internal/models"
)

// RecordFields is the clinical documentation submitted when an examination
// is completed.
type RecordFields struct {
	Complaint    string
	History      string
	Diagnosis    string
	Procedure    string
	Prescription string
	Notes        string
}

// CompleteExamination finishes an examination: it upserts the medical record
// keyed by the visit and transitions the visit to completed, both inside one
// transaction. Either both writes commit or neither does, so a completed
// visit without a record, or a record for a visit still in examination,
// cannot be observed.
func (s *Service) CompleteExamination(ctx context.Context, actor Actor, visitID string, fields RecordFields) (*models.MedicalRecord, error) {
	if !Allowed(actor.Role, OpCompleteExamination) {
		return nil, ErrNotAuthorized
	}

	var record models.MedicalRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var visit models.Visit
		if err := lockVisit(tx, visitID, &visit); err != nil {
			return err
		}
		if actor.Role == models.RoleDoctor && actor.DoctorID != visit.DoctorID {
			return ErrNotAuthorized
		}
		if visit.Status != models.StatusInExamination {
			return ErrVisitNotInExamination
		}

		if err := s.upsertRecord(tx, &visit, fields, &record); err != nil {
			return fmt.Errorf("writing medical record: %w", err)
		}
		return s.transition(tx, &visit, models.StatusCompleted)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("visit_id", visitID).
		Str("record_id", record.ID).
		Msg("examination completed")
	return &record, nil
}

// upsertRecord inserts the record for a visit, or updates all clinical fields
// when a draft already exists from earlier in the same examination.
func (s *Service) upsertRecord(tx *gorm.DB, visit *models.Visit, fields RecordFields, record *models.MedicalRecord) error {
	err := tx.Where("visit_id = ?", visit.ID).First(record).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		*record = models.MedicalRecord{
			VisitID:      visit.ID,
			PatientID:    visit.PatientID,
			DoctorID:     visit.DoctorID,
			RecordDate:   clock.DateOf(s.clock.Now()),
			Complaint:    fields.Complaint,
			History:      fields.History,
			Diagnosis:    fields.Diagnosis,
			Procedure:    fields.Procedure,
			Prescription: fields.Prescription,
			Notes:        fields.Notes,
		}
		return tx.Create(record).Error
	case err != nil:
		return err
	}

	return tx.Model(record).Updates(map[string]interface{}{
		"complaint":    fields.Complaint,
		"history":      fields.History,
		"diagnosis":    fields.Diagnosis,
		"procedure":    fields.Procedure,
		"prescription": fields.Prescription,
		"notes":        fields.Notes,
	}).Error
}

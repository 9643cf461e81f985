// Package booking implements the core visit lifecycle: queue-number
// allocation under per-day doctor quotas, the visit status state machine, and
// the examination workflow that pairs a medical record with visit completion.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"klinik-app-server/internal/clock"
	"klinik-app-server/internal/models"
)

// queue-number collisions are rare; a couple of retries is enough to drain
// a burst of simultaneous bookings for the same slot.
const maxBookRetries = 3

// Service is the visit ledger. All mutating operations check the role policy
// and ownership before touching any row.
type Service struct {
	db    *gorm.DB
	clock clock.Clock
	log   zerolog.Logger
}

// NewService creates a booking service.
func NewService(db *gorm.DB, clk clock.Clock, log zerolog.Logger) *Service {
	return &Service{db: db, clock: clk, log: log}
}

// BookVisitParams carries the booking request.
type BookVisitParams struct {
	PatientID string
	DoctorID  string
	Date      time.Time
	Time      string
	Note      string
}

// BookVisit creates a waiting visit with the next queue number for the
// doctor and date. On a duplicate queue number (a concurrent booking won the
// slot) the whole transaction is retried with a fresh count.
func (s *Service) BookVisit(ctx context.Context, actor Actor, p BookVisitParams) (*models.Visit, error) {
	if !Allowed(actor.Role, OpBookVisit) {
		return nil, ErrNotAuthorized
	}
	if actor.Role == models.RolePatient && actor.PatientID != p.PatientID {
		return nil, ErrNotAuthorized
	}

	if clock.DateBefore(p.Date, s.clock.Now()) {
		return nil, ErrPastVisitDate
	}
	date := clock.DateOf(p.Date)

	var visit models.Visit
	for attempt := 0; attempt < maxBookRetries; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			number, err := allocateQueueNumber(tx, p.DoctorID, date)
			if err != nil {
				return err
			}
			visit = models.Visit{
				PatientID:   p.PatientID,
				DoctorID:    p.DoctorID,
				VisitDate:   date,
				VisitTime:   p.Time,
				QueueNumber: number,
				Status:      models.StatusWaiting,
				Note:        p.Note,
			}
			return tx.Create(&visit).Error
		})
		if err == nil {
			s.log.Info().
				Str("visit_id", visit.ID).
				Str("doctor_id", p.DoctorID).
				Int("queue_number", visit.QueueNumber).
				Msg("visit booked")
			return &visit, nil
		}
		if isDuplicateKey(err) {
			s.log.Debug().
				Str("doctor_id", p.DoctorID).
				Int("attempt", attempt+1).
				Msg("queue number collision, retrying")
			continue
		}
		return nil, err
	}
	return nil, ErrQueueConflict
}

// StartExamination moves a waiting visit to in_examination. Doctors may only
// start visits on their own roster.
func (s *Service) StartExamination(ctx context.Context, actor Actor, visitID string) (*models.Visit, error) {
	if !Allowed(actor.Role, OpStartExamination) {
		return nil, ErrNotAuthorized
	}

	var visit models.Visit
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockVisit(tx, visitID, &visit); err != nil {
			return err
		}
		if actor.Role == models.RoleDoctor && actor.DoctorID != visit.DoctorID {
			return ErrNotAuthorized
		}
		return s.transition(tx, &visit, models.StatusInExamination)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("visit_id", visit.ID).Msg("examination started")
	return &visit, nil
}

// CancelVisit cancels a waiting visit. Patients may only cancel their own
// visits, and only before the visit date has passed (date precision, not
// time-of-day).
func (s *Service) CancelVisit(ctx context.Context, actor Actor, visitID string) (*models.Visit, error) {
	if !Allowed(actor.Role, OpCancelVisit) {
		return nil, ErrNotAuthorized
	}

	var visit models.Visit
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockVisit(tx, visitID, &visit); err != nil {
			return err
		}
		if actor.Role == models.RolePatient && actor.PatientID != visit.PatientID {
			return ErrNotAuthorized
		}
		if clock.DateBefore(visit.VisitDate, s.clock.Now()) {
			return ErrPastVisitDate
		}
		return s.transition(tx, &visit, models.StatusCancelled)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("visit_id", visit.ID).Msg("visit cancelled")
	return &visit, nil
}

// transition applies a state-machine edge, refusing anything not in the
// legal transition table without mutating the row.
func (s *Service) transition(tx *gorm.DB, visit *models.Visit, to models.VisitStatus) error {
	if !models.CanTransition(visit.Status, to) {
		return ErrInvalidTransition
	}
	if err := tx.Model(visit).Update("status", to).Error; err != nil {
		return fmt.Errorf("updating visit status: %w", err)
	}
	visit.Status = to
	return nil
}

// lockVisit loads a visit row FOR UPDATE so concurrent transitions serialize.
func lockVisit(tx *gorm.DB, visitID string, visit *models.Visit) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(visit, "id = ?", visitID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrVisitNotFound
	}
	return err
}

// isDuplicateKey reports a MySQL 1062 duplicate-entry error, which signals a
// lost race on the (doctor, date, queue_number) unique index.
func isDuplicateKey(err error) bool {
	var mysqlErr *mysqldrv.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

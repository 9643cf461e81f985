package booking

import (
	"klinik-app-server/internal/models"
)

// Operation identifies a mutating visit-ledger operation.
type Operation string

const (
	OpBookVisit           Operation = "book_visit"
	OpStartExamination    Operation = "start_examination"
	OpCompleteExamination Operation = "complete_examination"
	OpCancelVisit         Operation = "cancel_visit"
)

// policy is the fixed role × operation table. Ownership rules (a patient may
// only touch their own visit, a doctor their own roster) are enforced on top
// of this by the individual operations.
var policy = map[models.Role]map[Operation]bool{
	models.RoleAdmin: {
		OpBookVisit:        true,
		OpStartExamination: true,
		OpCancelVisit:      true,
	},
	models.RoleDoctor: {
		OpStartExamination:    true,
		OpCompleteExamination: true,
	},
	models.RolePatient: {
		OpBookVisit:   true,
		OpCancelVisit: true,
	},
	models.RoleManagement: {}, // read-only role
}

// Allowed reports whether a role may perform an operation.
func Allowed(role models.Role, op Operation) bool {
	return policy[role][op]
}

// Actor is the already-authenticated caller of a ledger operation, as
// resolved by the identity layer. DoctorID and PatientID are only set for
// accounts linked to those rows.
type Actor struct {
	UserID    string
	Role      models.Role
	DoctorID  string
	PatientID string
}

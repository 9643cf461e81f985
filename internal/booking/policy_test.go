package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"klinik-app-server/internal/models"
)

func TestPolicyTable(t *testing.T) {
	tests := []struct {
		role models.Role
		op   Operation
		want bool
	}{
		{models.RoleAdmin, OpBookVisit, true},
		{models.RoleAdmin, OpStartExamination, true},
		{models.RoleAdmin, OpCompleteExamination, false},
		{models.RoleAdmin, OpCancelVisit, true},

		{models.RoleDoctor, OpBookVisit, false},
		{models.RoleDoctor, OpStartExamination, true},
		{models.RoleDoctor, OpCompleteExamination, true},
		{models.RoleDoctor, OpCancelVisit, false},

		{models.RolePatient, OpBookVisit, true},
		{models.RolePatient, OpStartExamination, false},
		{models.RolePatient, OpCompleteExamination, false},
		{models.RolePatient, OpCancelVisit, true},

		{models.RoleManagement, OpBookVisit, false},
		{models.RoleManagement, OpStartExamination, false},
		{models.RoleManagement, OpCompleteExamination, false},
		{models.RoleManagement, OpCancelVisit, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Allowed(tt.role, tt.op),
			"role %s op %s", tt.role, tt.op)
	}
}

func TestPolicyUnknownRole(t *testing.T) {
	assert.False(t, Allowed(models.Role("intern"), OpBookVisit))
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to VisitStatus
		want     bool
	}{
		{StatusWaiting, StatusInExamination, true},
		{StatusWaiting, StatusCancelled, true},
		{StatusWaiting, StatusCompleted, false},
		{StatusWaiting, StatusWaiting, false},

		{StatusInExamination, StatusCompleted, true},
		{StatusInExamination, StatusCancelled, false},
		{StatusInExamination, StatusWaiting, false},

		{StatusCompleted, StatusWaiting, false},
		{StatusCompleted, StatusInExamination, false},
		{StatusCompleted, StatusCancelled, false},

		{StatusCancelled, StatusWaiting, false},
		{StatusCancelled, StatusInExamination, false},
		{StatusCancelled, StatusCompleted, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	assert.False(t, CanTransition(VisitStatus("archived"), StatusCompleted))
}

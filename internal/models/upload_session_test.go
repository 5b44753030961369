package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUploadStatusTerminal(t *testing.T) {
	assert.False(t, StatusCreated.Terminal())
	assert.False(t, StatusInProgress.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusExpired.Terminal())
}

func TestUploadStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    UploadStatus
		to      UploadStatus
		allowed bool
	}{
		{"created to in_progress", StatusCreated, StatusInProgress, true},
		{"created to completed", StatusCreated, StatusCompleted, true},
		{"created to failed", StatusCreated, StatusFailed, true},
		{"created to cancelled", StatusCreated, StatusCancelled, true},
		{"created to expired", StatusCreated, StatusExpired, true},
		{"in_progress to in_progress", StatusInProgress, StatusInProgress, true},
		{"in_progress to completed", StatusInProgress, StatusCompleted, true},
		{"in_progress to cancelled", StatusInProgress, StatusCancelled, true},
		{"in_progress to expired", StatusInProgress, StatusExpired, true},
		{"in_progress to created", StatusInProgress, StatusCreated, false},
		{"completed stays completed", StatusCompleted, StatusInProgress, false},
		{"completed cannot expire", StatusCompleted, StatusExpired, false},
		{"failed cannot complete", StatusFailed, StatusCompleted, false},
		{"cancelled cannot resume", StatusCancelled, StatusInProgress, false},
		{"expired cannot complete", StatusExpired, StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
		})
	}
}

func TestNoTransitionOutOfTerminalStates(t *testing.T) {
	all := []UploadStatus{
		StatusCreated, StatusInProgress, StatusCompleted,
		StatusFailed, StatusCancelled, StatusExpired,
	}
	for _, from := range all {
		if !from.Terminal() {
			continue
		}
		for _, to := range all {
			assert.Falsef(t, from.CanTransition(to), "%s must not transition to %s", from, to)
		}
	}
}

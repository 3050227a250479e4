package models

import (
	"errors"
	"fmt"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Stage folds the draft flag and the status into one lifecycle position.
type Stage string

const (
	StageDraft    Stage = "DRAFT"
	StagePending  Stage = StatusPending
	StageApproved Stage = StatusApproved
	StageRejected Stage = StatusRejected
)

var ErrInvalidTransition = errors.New("invalid estimate status transition")

var allowedTransitions = map[Stage][]Stage{
	StageDraft:   {StagePending},
	StagePending: {StageApproved, StageRejected},
}

// ParseStage maps an API status value to a Stage.
func ParseStage(s string) (Stage, error) {
	switch Stage(s) {
	case StageDraft, StagePending, StageApproved, StageRejected:
		return Stage(s), nil
	}
	return "", fmt.Errorf("unknown estimate status %q", s)
}

// CanTransition reports whether an estimate may move from one stage to another.
// Staying in place is always allowed.
func CanTransition(from, to Stage) bool {
	if from == to {
		return true
	}
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Stage returns the lifecycle position of the estimate. Rows written with a status
// outside the known set count as pending.
func (e *Estimate) Stage() Stage {
	if e.IsDraft {
		return StageDraft
	}
	switch e.Status {
	case StatusApproved:
		return StageApproved
	case StatusRejected:
		return StageRejected
	}
	return StagePending
}

// TransitionTo moves the estimate to the given stage, updating IsDraft and Status.
func (e *Estimate) TransitionTo(to Stage) error {
	from := e.Stage()
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if to == StageDraft {
		e.IsDraft = true
		if e.Status == "" {
			e.Status = StatusPending
		}
		return nil
	}
	e.IsDraft = false
	e.Status = string(to)
	return nil
}

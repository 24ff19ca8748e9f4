package domain

import (
	"errors"
	"time"
)

var (
	ErrLeadNotFound           = errors.New("lead not found")
	ErrInvalidStage           = errors.New("invalid lead stage")
	ErrInvalidStageTransition = errors.New("invalid stage transition")
)

// Stage is a lead's position in the sales pipeline.
type Stage string

const (
	StageNew       Stage = "new"
	StageContacted Stage = "contacted"
	StageQualified Stage = "qualified"
	StageProposal  Stage = "proposal"
	StageWon       Stage = "won"
	StageLost      Stage = "lost"
)

// transitions encodes the pipeline: forward one step at a time, lost is
// reachable from any open stage, won only from proposal.
var transitions = map[Stage][]Stage{
	StageNew:       {StageContacted, StageLost},
	StageContacted: {StageQualified, StageLost},
	StageQualified: {StageProposal, StageLost},
	StageProposal:  {StageWon, StageLost},
}

func (s Stage) Valid() bool {
	switch s {
	case StageNew, StageContacted, StageQualified, StageProposal, StageWon, StageLost:
		return true
	}
	return false
}

// CanTransition reports whether a lead may move from one stage to another.
func CanTransition(from, to Stage) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Lead struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Source      string    `json:"source,omitempty"`
	Stage       Stage     `json:"stage"`
	EstimatedKW float64   `json:"estimated_kw,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

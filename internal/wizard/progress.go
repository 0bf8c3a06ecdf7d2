package wizard

import (
	"github.com/tandemhq/tandem/internal/domain"
)

// PlanningProgress is the JSON checkpoint persisted after every mutating
// planning event. Restoring it into a fresh wizard reproduces the run.
type PlanningProgress struct {
	WeekID              string       `json:"week_id"`
	Step                PlanningStep `json:"step"`
	ProcessedCandidates []string     `json:"processed_candidates,omitempty"`
	RolledCandidates    []string     `json:"rolled_candidates,omitempty"`
	ProcessedRequests   []string     `json:"processed_requests,omitempty"`
	AcceptedRequests    []string     `json:"accepted_requests,omitempty"`
	AddedTaskIDs        []string     `json:"added_task_ids,omitempty"`
}

// ReviewProgress is the JSON checkpoint persisted after every mutating
// review event.
type ReviewProgress struct {
	WeekID          string                       `json:"week_id"`
	Step            ReviewStep                   `json:"step"`
	Mode            domain.ReviewMode            `json:"mode,omitempty"`
	Rating          int                          `json:"rating,omitempty"`
	RatingNote      string                       `json:"rating_note,omitempty"`
	RatingPersisted bool                         `json:"rating_persisted,omitempty"`
	TaskIndex       int                          `json:"task_index"`
	Outcomes        map[string]domain.TaskStatus `json:"outcomes,omitempty"`
}

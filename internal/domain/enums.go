package domain

type TaskStatus string

const (
	TaskPending           TaskStatus = "pending"
	TaskPendingAcceptance TaskStatus = "pending_acceptance"
	TaskCompleted         TaskStatus = "completed"
	TaskTried             TaskStatus = "tried"
	TaskSkipped           TaskStatus = "skipped"
	TaskDeclined          TaskStatus = "declined"
)

// ValidTaskStatuses is the canonical set of accepted task status strings.
var ValidTaskStatuses = map[TaskStatus]bool{
	TaskPending: true, TaskPendingAcceptance: true, TaskCompleted: true,
	TaskTried: true, TaskSkipped: true, TaskDeclined: true,
}

// ReviewOutcomes is the closed set of statuses a weekly review may assign.
var ReviewOutcomes = map[TaskStatus]bool{
	TaskCompleted: true, TaskTried: true, TaskSkipped: true,
}

// IsReviewed reports whether the status records a review decision.
func (s TaskStatus) IsReviewed() bool {
	return s == TaskCompleted || s == TaskTried || s == TaskSkipped || s == TaskDeclined
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityNormal TaskPriority = "normal"
	PriorityHigh   TaskPriority = "high"
)

type GoalStatus string

const (
	GoalActive   GoalStatus = "active"
	GoalAchieved GoalStatus = "achieved"
	GoalArchived GoalStatus = "archived"
)

type ReviewMode string

const (
	ReviewSolo     ReviewMode = "solo"
	ReviewTogether ReviewMode = "together"
)

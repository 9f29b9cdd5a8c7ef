package repository

import "time"

// Subsystem statuses.
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusComplete   = "complete"
	StatusBlocked    = "blocked"
)

// Task priorities.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Project represents a project row.
type Project struct {
	ID           string
	Name         string
	Description  string
	StartDate    time.Time
	GoalEndDate  *time.Time
	HardDeadline *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Member represents a team_members row.
type Member struct {
	ID        string
	ProjectID string
	Username  string
	FirstName string
	LastName  string
	Email     string
	Leader    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName joins first and last name.
func (m Member) FullName() string {
	if m.LastName == "" {
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}

// Subsystem represents a subsystems row.
type Subsystem struct {
	ID                  string
	ProjectID           string
	Name                string
	Description         string
	Status              string
	ResponsibleMemberID *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Task represents a tasks row.
type Task struct {
	ID          string
	ProjectID   string
	SubsystemID string
	Title       string
	Description string
	Priority    string
	Progress    int
	StartDate   *time.Time
	EndDate     *time.Time
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// scanner handles both Row and Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

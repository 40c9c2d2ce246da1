package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// LoadRunStatus is the lifecycle state of a load run
type LoadRunStatus string

const (
	StatusPending   LoadRunStatus = "pending"
	StatusRunning   LoadRunStatus = "running"
	StatusCompleted LoadRunStatus = "completed"
	StatusFailed    LoadRunStatus = "failed"
	StatusCanceled  LoadRunStatus = "canceled"
)

// CanTransitionTo reports whether the status change is allowed.
// Terminal states (completed, failed, canceled) are final.
func (s LoadRunStatus) CanTransitionTo(next LoadRunStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusRunning || next == StatusCanceled || next == StatusFailed
	case StatusRunning:
		return next == StatusCompleted || next == StatusFailed || next == StatusCanceled
	default:
		return false
	}
}

// LoadRun represents one date-range load against the warehouse: a query
// template replayed once per day between StartDate and EndDate inclusive.
type LoadRun struct {
	ID           uint           `json:"id" gorm:"primarykey"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
	Title        string         `json:"title" gorm:"size:255;not null"`
	Query        string         `json:"query" gorm:"type:text;not null"`
	StartDate    string         `json:"start_date" gorm:"size:10;not null"`
	EndDate      string         `json:"end_date" gorm:"size:10;not null"`
	Status       LoadRunStatus  `json:"status" gorm:"size:50;not null;default:'pending'"`
	DatesTotal   int            `json:"dates_total"`
	DatesDone    int            `json:"dates_done"`
	TotalSeconds float64        `json:"total_seconds"`
	Error        string         `json:"error,omitempty" gorm:"size:1000"`
	FileKey      string         `json:"file_key,omitempty" gorm:"size:255"`
	FinishedAt   *time.Time     `json:"finished_at,omitempty"`
	Parameters   JSON           `json:"parameters,omitempty" gorm:"type:jsonb"`
	CreatedBy    string         `json:"created_by" gorm:"size:255;not null"`
	UpdatedBy    string         `json:"updated_by" gorm:"size:255;not null"`
}

// JSON is a custom type for handling JSONB data
type JSON map[string]interface{}

// Value implements the driver.Valuer interface for JSON
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface for JSON
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSON", value)
	}

	return json.Unmarshal(bytes, j)
}

// IsEmpty reports whether the parameter map carries no keys
func (j JSON) IsEmpty() bool {
	return len(j) == 0
}

// TableName specifies the table name for the LoadRun model
func (LoadRun) TableName() string {
	return "load_runs"
}

// Validate checks the fields a run must carry before it can be persisted
func (r *LoadRun) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	if r.Query == "" {
		return fmt.Errorf("query is required")
	}
	if r.StartDate == "" || r.EndDate == "" {
		return fmt.Errorf("start_date and end_date are required")
	}
	if r.CreatedBy == "" {
		return fmt.Errorf("created_by is required")
	}
	return nil
}

// IsCompleted returns true if the run finished successfully
func (r *LoadRun) IsCompleted() bool {
	return r.Status == StatusCompleted
}

// IsTerminal returns true if the run is in a final state
func (r *LoadRun) IsTerminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed || r.Status == StatusCanceled
}

// HasFile returns true if a run report file was stored
func (r *LoadRun) HasFile() bool {
	return r.FileKey != ""
}

// SetStatus updates the run status
func (r *LoadRun) SetStatus(status LoadRunStatus) {
	r.Status = status
	r.UpdatedAt = time.Now()
}

// Package rnc implements non-conformance records: lifecycle, tab-scoped
// visibility and the cached listing path.
package rnc

import "time"

// Tabs partition the listing. A record is in exactly one tab at any time.
const (
	TabActive    = "active"
	TabFinalized = "finalized"
	TabDeleted   = "deleted"
)

// ValidTab reports whether tab is one of the three listing tabs.
func ValidTab(tab string) bool {
	return tab == TabActive || tab == TabFinalized || tab == TabDeleted
}

// Workflow statuses within the active tab.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusBlocked    = "blocked"
	StatusResolved   = "resolved"
)

// ValidStatus reports whether status is a known workflow status.
func ValidStatus(status string) bool {
	switch status {
	case StatusOpen, StatusInProgress, StatusBlocked, StatusResolved:
		return true
	}
	return false
}

// Priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// ValidPriority reports whether priority is a known priority level.
func ValidPriority(priority string) bool {
	switch priority {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// DeletedRetention is how long a soft-deleted record stays restorable before
// the purge job removes it permanently.
const DeletedRetention = 30 * 24 * time.Hour

// Record is one non-conformance report. The typed columns cover the workflow
// and listing paths; Details carries the remaining form fields as stored in
// the details JSONB column.
type Record struct {
	ID             int64             `json:"id"`
	RNCNumber      string            `json:"rnc_number"`
	Title          string            `json:"title"`
	Status         string            `json:"status"`
	Priority       string            `json:"priority"`
	Department     string            `json:"department"`
	Equipment      string            `json:"equipment"`
	Client         string            `json:"client"`
	Description    string            `json:"description"`
	OwnerID        int64             `json:"owner_id"`
	AssignedUserID *int64            `json:"assigned_user_id"`
	Details        map[string]string `json:"details,omitempty"`
	IsDeleted      bool              `json:"is_deleted"`
	DeletedAt      *time.Time        `json:"deleted_at,omitempty"`
	FinalizedAt    *time.Time        `json:"finalized_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// Tab derives which tab the record currently belongs to.
func (r Record) Tab() string {
	switch {
	case r.IsDeleted:
		return TabDeleted
	case r.FinalizedAt != nil:
		return TabFinalized
	default:
		return TabActive
	}
}

// PurgeCountdown returns how much of the retention window remains for a
// deleted record. Zero means the record is due for permanent removal.
func (r Record) PurgeCountdown(now time.Time) time.Duration {
	if !r.IsDeleted || r.DeletedAt == nil {
		return 0
	}
	remaining := r.DeletedAt.Add(DeletedRetention).Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

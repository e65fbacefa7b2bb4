// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Case status values derived by the transform.
const (
	StatusPending            = "Pending"
	StatusUnderInvestigation = "Under Investigation"
	StatusResolved           = "Resolved"
)

// Case priority values derived by the transform.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// IncidentRecord is a complaint as filed by a citizen. Only the assignment fields are mutated here.
type IncidentRecord struct {
	ReferenceNumber   string    `json:"reference_number"`
	VictimName        string    `json:"victim_name"`
	Phone             string    `json:"phone"`
	IncidentType      string    `json:"incident_type"`
	IncidentDateTime  string    `json:"incident_datetime"`
	Location          string    `json:"location"`
	Description       string    `json:"description"`
	Suspects          []string  `json:"suspects"`
	Witnesses         string    `json:"witnesses"`
	PropertyDetails   string    `json:"property_details"`
	ContactEmail      string    `json:"contact_email"`
	CreatedAt         time.Time `json:"created_at"`
	AssignedOfficer   string    `json:"assigned_officer"`
	AssignedOfficerID string    `json:"assigned_officer_id,omitempty"` // empty for rows filed before officer ids existed
}

// Case is the display view of an IncidentRecord. It is recomputed on every read.
type Case struct {
	ID                string          `json:"id"`
	Type              string          `json:"type"`
	Status            string          `json:"status"`
	Priority          string          `json:"priority"`
	Complainant       string          `json:"complainant"`
	Location          string          `json:"location"`
	Date              string          `json:"date"`
	AssignedOfficer   string          `json:"assigned_officer"`
	AssignedOfficerID string          `json:"assigned_officer_id,omitempty"`
	Description       string          `json:"description"`
	Progress          int             `json:"progress"`
	LastUpdate        string          `json:"last_update"`
	CreatedAt         time.Time       `json:"created_at"`
	ResolvedAt        time.Time       `json:"resolved_at,omitempty"`
	Record            *IncidentRecord `json:"record,omitempty"`
}

// TransferLogEntry records a single reassignment. Append-only.
type TransferLogEntry struct {
	ID            uuid.UUID `json:"id"`
	CaseID        string    `json:"case_id"`
	FromOfficer   string    `json:"from_officer"`
	ToOfficer     string    `json:"to_officer"`
	Reason        string    `json:"reason"`
	TransferredAt time.Time `json:"transferred_at"`
	PerformedBy   string    `json:"performed_by"`
}

// TransferRequest is a reassignment intent handed to the repository.
type TransferRequest struct {
	CaseID        string
	ToOfficer     string
	ToOfficerID   string // may be empty when the directory has no profile for ToOfficer
	FromOfficer   string // optional; when set the current owner must match it
	Reason        string
	PerformedBy   string
	TransferredAt time.Time
	LogID         uuid.UUID
}

// DeletedRecord is a removed incident kept for audit.
type DeletedRecord struct {
	Record    IncidentRecord `json:"record"`
	Reason    string         `json:"reason"`
	DeletedAt time.Time      `json:"deleted_at"`
	DeletedBy string         `json:"deleted_by"`
}

// Role is the closed set of user roles issued by the auth provider.
type Role string

const (
	RoleCitizen Role = "citizen"
	RoleOfficer Role = "officer"
	RoleAdmin   Role = "admin"
)

// Officer availability values.
const (
	OfficerActive    = "active"
	OfficerOnLeave   = "on_leave"
	OfficerSuspended = "suspended"
)

// OfficerProfile is a directory entry merged from auth-provider identity and the profile row.
type OfficerProfile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	Badge       string    `json:"badge"`
	Department  string    `json:"department"`
	Rank        string    `json:"rank"`
	Online      bool      `json:"online"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	LastLoginAt time.Time `json:"last_login_at"`
}

// Identity is the verified subject of a bearer token.
type Identity struct {
	Subject string `json:"subject"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Role    Role   `json:"role"`
}

// AuditLogEntry is a best-effort, append-only record of an action.
type AuditLogEntry struct {
	ID         uuid.UUID      `json:"id"`
	Action     string         `json:"action"`
	TargetType string         `json:"target_type"`
	TargetID   string         `json:"target_id"`
	Actor      string         `json:"actor"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

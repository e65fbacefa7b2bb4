// Package casetransform derives display fields (status, priority, progress, last update)
// from raw incident records. Every function is pure: results depend only on the record
// and the supplied clock reading.
package casetransform

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nagarrakshak/caseledger/internal/model"
)

const day = 24 * time.Hour

type family int

const (
	familyDefault family = iota
	familyUrgent
	familyProperty
)

var (
	urgentKeywords   = []string{"missing", "violence", "assault", "kidnap"}
	propertyKeywords = []string{"theft", "fraud"}

	highPriorityKeywords   = []string{"missing", "violence", "assault", "kidnap", "murder", "rape", "abduction"}
	mediumPriorityKeywords = []string{"fraud", "cyber", "harassment", "burglary", "robbery", "cheating"}
)

// thresholds in whole days; a status applies when days is strictly greater.
// resolve < 0 means the family never resolves by age.
type thresholds struct {
	resolve     int
	investigate int
}

var familyThresholds = map[family]thresholds{
	familyDefault:  {resolve: 20, investigate: 3},
	familyUrgent:   {resolve: -1, investigate: 7},
	familyProperty: {resolve: 15, investigate: 5},
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func classify(incidentType string) family {
	t := strings.ToLower(incidentType)
	switch {
	case containsAny(t, urgentKeywords):
		return familyUrgent
	case containsAny(t, propertyKeywords):
		return familyProperty
	default:
		return familyDefault
	}
}

// DaysSince returns whole days elapsed between createdAt and now, never negative.
func DaysSince(createdAt, now time.Time) int {
	if createdAt.IsZero() || !now.After(createdAt) {
		return 0
	}
	return int(now.Sub(createdAt) / day)
}

// Status buckets a case by incident-type family and age in days.
func Status(incidentType string, days int) string {
	th := familyThresholds[classify(incidentType)]
	switch {
	case th.resolve >= 0 && days > th.resolve:
		return model.StatusResolved
	case days > th.investigate:
		return model.StatusUnderInvestigation
	default:
		return model.StatusPending
	}
}

// Priority buckets an incident type into High/Medium/Low by keyword.
func Priority(incidentType string) string {
	t := strings.ToLower(incidentType)
	switch {
	case containsAny(t, highPriorityKeywords):
		return model.PriorityHigh
	case containsAny(t, mediumPriorityKeywords):
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Progress returns a completion percentage for the status at the given age.
func Progress(status string, days int) int {
	switch status {
	case model.StatusResolved:
		return 100
	case model.StatusUnderInvestigation:
		return clamp(30+5*days, 30, 95)
	case model.StatusPending:
		return clamp(10+2*days, 10, 30)
	default:
		return 0
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// LastUpdate renders the age of a record as a relative string.
func LastUpdate(createdAt, now time.Time) string {
	d := now.Sub(createdAt)
	switch {
	case d < time.Hour:
		return "Just now"
	case d < day:
		return plural(int(d/time.Hour), "hour")
	case d < 7*day:
		return plural(int(d/day), "day")
	default:
		return plural(int(d/(7*day)), "week")
	}
}

// ResolvedAt returns the instant a case of this type crossed into Resolved, or the
// zero time for families that never resolve by age.
func ResolvedAt(incidentType string, createdAt time.Time) time.Time {
	th := familyThresholds[classify(incidentType)]
	if th.resolve < 0 || createdAt.IsZero() {
		return time.Time{}
	}
	return createdAt.Add(time.Duration(th.resolve+1) * day)
}

// Transform maps a record to its Case view as of now.
func Transform(rec model.IncidentRecord, now time.Time) model.Case {
	days := DaysSince(rec.CreatedAt, now)
	status := Status(rec.IncidentType, days)
	c := model.Case{
		ID:                rec.ReferenceNumber,
		Type:              rec.IncidentType,
		Status:            status,
		Priority:          Priority(rec.IncidentType),
		Complainant:       rec.VictimName,
		Location:          rec.Location,
		AssignedOfficer:   rec.AssignedOfficer,
		AssignedOfficerID: rec.AssignedOfficerID,
		Description:       rec.Description,
		Progress:          Progress(status, days),
		LastUpdate:        LastUpdate(rec.CreatedAt, now),
		CreatedAt:         rec.CreatedAt,
	}
	if !rec.CreatedAt.IsZero() {
		c.Date = rec.CreatedAt.Format("2006-01-02")
	}
	if status == model.StatusResolved {
		c.ResolvedAt = ResolvedAt(rec.IncidentType, rec.CreatedAt)
	}
	r := rec
	c.Record = &r
	return c
}

// TransformAll maps records and orders them by creation time, newest first.
func TransformAll(recs []model.IncidentRecord, now time.Time) []model.Case {
	out := make([]model.Case, 0, len(recs))
	for _, r := range recs {
		out = append(out, Transform(r, now))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

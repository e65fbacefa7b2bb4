// Package stats reduces case lists into dashboard counters.
package stats

import (
	"time"

	"github.com/nagarrakshak/caseledger/internal/model"
	"github.com/nagarrakshak/caseledger/internal/officername"
)

// Global holds the department-wide counters.
type Global struct {
	Total              int            `json:"total"`
	Active             int            `json:"active"`
	Resolved           int            `json:"resolved"`
	Urgent             int            `json:"urgent"`
	Pending            int            `json:"pending"`
	UnderInvestigation int            `json:"under_investigation"`
	ByPriority         map[string]int `json:"by_priority"`
	CompletionRate     float64        `json:"completion_rate"`
	AvgResolutionDays  float64        `json:"avg_resolution_days"`
}

// ComputeGlobal counts cases by status and priority. Urgent means High priority and not yet resolved.
func ComputeGlobal(cases []model.Case) Global {
	g := Global{Total: len(cases), ByPriority: map[string]int{
		model.PriorityHigh: 0, model.PriorityMedium: 0, model.PriorityLow: 0,
	}}
	var resolvedFor time.Duration
	var timed int
	for _, c := range cases {
		g.ByPriority[c.Priority]++
		switch c.Status {
		case model.StatusResolved:
			g.Resolved++
			if !c.ResolvedAt.IsZero() && !c.CreatedAt.IsZero() {
				resolvedFor += absDuration(c.ResolvedAt.Sub(c.CreatedAt))
				timed++
			}
		case model.StatusPending:
			g.Pending++
		case model.StatusUnderInvestigation:
			g.UnderInvestigation++
		}
		if c.Priority == model.PriorityHigh && c.Status != model.StatusResolved {
			g.Urgent++
		}
	}
	g.Active = g.Total - g.Resolved
	if g.Total > 0 {
		g.CompletionRate = float64(g.Resolved) / float64(g.Total)
	}
	if timed > 0 {
		g.AvgResolutionDays = resolvedFor.Hours() / 24 / float64(timed)
	}
	return g
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// Load is a case-load bucket derived from an officer's active case count.
type Load string

const (
	LoadLight      Load = "Light"
	LoadModerate   Load = "Moderate"
	LoadHeavy      Load = "Heavy"
	LoadOverloaded Load = "Overloaded"
)

// Classify buckets an active case count: Light <6, Moderate 6-10, Heavy 11-15, Overloaded >15.
func Classify(active int) Load {
	switch {
	case active > 15:
		return LoadOverloaded
	case active > 10:
		return LoadHeavy
	case active >= 6:
		return LoadModerate
	default:
		return LoadLight
	}
}

// OfficerWorkload is one row of the workload table.
type OfficerWorkload struct {
	Officer  model.OfficerProfile `json:"officer"`
	Active   int                  `json:"active"`
	Resolved int                  `json:"resolved"`
	Total    int                  `json:"total"`
	Load     Load                 `json:"load"`
}

// Workload is the per-officer breakdown plus cases no directory entry could claim.
type Workload struct {
	Officers     []OfficerWorkload `json:"officers"`
	Unattributed int               `json:"unattributed"`
}

// ComputeWorkload attributes each case to a directory officer. A case matches by stable
// officer id when it has one; otherwise by case-folded full name, then by email local part.
func ComputeWorkload(cases []model.Case, officers []model.OfficerProfile) Workload {
	w := Workload{Officers: make([]OfficerWorkload, len(officers))}
	byID := make(map[string]int, len(officers))
	byName := make(map[string]int, len(officers))
	byEmail := make(map[string]int, len(officers))
	for i, o := range officers {
		w.Officers[i] = OfficerWorkload{Officer: o}
		if o.ID != "" {
			byID[o.ID] = i
		}
		if k := officername.Key(o.Name); k != "" {
			if _, dup := byName[k]; !dup {
				byName[k] = i
			}
		}
		if k := officername.EmailLocalPart(o.Email); k != "" {
			if _, dup := byEmail[k]; !dup {
				byEmail[k] = i
			}
		}
	}

	for _, c := range cases {
		i, ok := match(c, byID, byName, byEmail)
		if !ok {
			w.Unattributed++
			continue
		}
		row := &w.Officers[i]
		row.Total++
		if c.Status == model.StatusResolved {
			row.Resolved++
		} else {
			row.Active++
		}
	}
	for i := range w.Officers {
		w.Officers[i].Load = Classify(w.Officers[i].Active)
	}
	return w
}

func match(c model.Case, byID, byName, byEmail map[string]int) (int, bool) {
	if c.AssignedOfficerID != "" {
		if i, ok := byID[c.AssignedOfficerID]; ok {
			return i, true
		}
	}
	k := officername.Key(c.AssignedOfficer)
	if k == "" {
		return 0, false
	}
	if i, ok := byName[k]; ok {
		return i, true
	}
	i, ok := byEmail[k]
	return i, ok
}

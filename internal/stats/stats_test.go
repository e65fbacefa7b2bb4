package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nagarrakshak/caseledger/internal/model"
)

func TestComputeGlobal_Empty(t *testing.T) {
	t.Parallel()
	g := ComputeGlobal(nil)
	require.Zero(t, g.Total)
	require.Zero(t, g.CompletionRate)
	require.Zero(t, g.AvgResolutionDays)
}

func TestComputeGlobal(t *testing.T) {
	t.Parallel()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := []model.Case{
		{Status: model.StatusResolved, Priority: model.PriorityLow, CreatedAt: created, ResolvedAt: created.Add(16 * 24 * time.Hour)},
		{Status: model.StatusResolved, Priority: model.PriorityMedium, CreatedAt: created, ResolvedAt: created.Add(22 * 24 * time.Hour)},
		{Status: model.StatusPending, Priority: model.PriorityHigh},
		{Status: model.StatusUnderInvestigation, Priority: model.PriorityHigh},
	}
	g := ComputeGlobal(cases)
	require.Equal(t, 4, g.Total)
	require.Equal(t, 2, g.Resolved)
	require.Equal(t, 2, g.Active)
	require.Equal(t, 2, g.Urgent)
	require.Equal(t, 1, g.Pending)
	require.Equal(t, 1, g.UnderInvestigation)
	require.Equal(t, 2, g.ByPriority[model.PriorityHigh])
	require.InDelta(t, 0.5, g.CompletionRate, 1e-9)
	require.InDelta(t, 19.0, g.AvgResolutionDays, 1e-9)
}

func TestClassify(t *testing.T) {
	t.Parallel()
	require.Equal(t, LoadLight, Classify(0))
	require.Equal(t, LoadLight, Classify(5))
	require.Equal(t, LoadModerate, Classify(6))
	require.Equal(t, LoadModerate, Classify(10))
	require.Equal(t, LoadHeavy, Classify(11))
	require.Equal(t, LoadHeavy, Classify(15))
	require.Equal(t, LoadOverloaded, Classify(16))
}

func TestComputeWorkload_Matching(t *testing.T) {
	t.Parallel()
	officers := []model.OfficerProfile{
		{ID: "off-a", Name: "Inspector Rajesh Kumar", Email: "rajesh.kumar@police.example"},
		{ID: "off-b", Name: "SI Priya Sharma", Email: "psharma@police.example"},
	}
	cases := []model.Case{
		{AssignedOfficer: "Someone Renamed", AssignedOfficerID: "off-a", Status: model.StatusPending},
		{AssignedOfficer: "inspector rajesh kumar", Status: model.StatusResolved},
		{AssignedOfficer: "psharma", Status: model.StatusUnderInvestigation},
		{AssignedOfficer: "Unknown Officer", Status: model.StatusPending},
		{AssignedOfficer: "", Status: model.StatusPending},
	}
	w := ComputeWorkload(cases, officers)
	require.Equal(t, 2, w.Unattributed)

	a := w.Officers[0]
	require.Equal(t, 2, a.Total)
	require.Equal(t, 1, a.Active)
	require.Equal(t, 1, a.Resolved)
	require.Equal(t, LoadLight, a.Load)

	b := w.Officers[1]
	require.Equal(t, 1, b.Active)
}

func TestComputeWorkload_Overloaded(t *testing.T) {
	t.Parallel()
	officers := []model.OfficerProfile{{ID: "x", Name: "ASI Vikram Singh"}}
	var cases []model.Case
	for i := 0; i < 16; i++ {
		cases = append(cases, model.Case{AssignedOfficer: "ASI Vikram Singh", Status: model.StatusPending})
	}
	w := ComputeWorkload(cases, officers)
	require.Equal(t, LoadOverloaded, w.Officers[0].Load)
}

package progress

import (
	"testing"
	"time"

	"solarops/dao/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func milestone(id uint, track model.Track, weight int, active bool) model.ProgressMilestone {
	m := model.ProgressMilestone{
		Track:  track,
		Weight: weight,
	}
	m.ID = id
	m.IsActive = active
	return m
}

func completedState(milestoneID uint) model.ProjectMilestone {
	now := time.Now()
	return model.ProjectMilestone{MilestoneID: milestoneID, CompletedAt: &now}
}

func TestSplitWeights(t *testing.T) {
	cases := []struct {
		in          int
		admin, engg int
	}{
		{60, 60, 40},
		{0, 0, 100},
		{100, 100, 0},
		{-10, 0, 100},
		{150, 100, 0},
	}
	for _, tc := range cases {
		a, e := SplitWeights(tc.in)
		assert.Equal(t, tc.admin, a)
		assert.Equal(t, tc.engg, e)
		assert.Equal(t, 100, a+e, "weights must always sum to 100")
	}
}

func TestTrackProgress(t *testing.T) {
	ms := []model.ProgressMilestone{
		milestone(1, model.TrackAdmin, 40, true),
		milestone(2, model.TrackAdmin, 60, true),
		milestone(3, model.TrackAdmin, 50, false), // inactive, ignored
	}

	assert.Equal(t, 0.0, TrackProgress(ms, nil))
	assert.Equal(t, 40.0, TrackProgress(ms, map[uint]bool{1: true}))
	assert.Equal(t, 100.0, TrackProgress(ms, map[uint]bool{1: true, 2: true}))

	// Completing an inactive milestone contributes nothing.
	assert.Equal(t, 40.0, TrackProgress(ms, map[uint]bool{1: true, 3: true}))
}

func TestTrackProgressNoActiveMilestones(t *testing.T) {
	assert.Equal(t, 0.0, TrackProgress(nil, nil))

	onlyInactive := []model.ProgressMilestone{milestone(1, model.TrackAdmin, 100, false)}
	assert.Equal(t, 0.0, TrackProgress(onlyInactive, map[uint]bool{1: true}))
}

func TestOverallWeightSplit(t *testing.T) {
	cfg := Config{AdminWeight: 60, EngineeringWeight: 40}

	// Admin track fully complete, engineering untouched.
	assert.Equal(t, 60.0, Overall(100, 0, cfg))
	assert.Equal(t, 40.0, Overall(0, 100, cfg))
	assert.Equal(t, 100.0, Overall(100, 100, cfg))
}

func TestComputeStaysInRange(t *testing.T) {
	cfg := Config{AdminWeight: 50, EngineeringWeight: 50}

	ms := []model.ProgressMilestone{
		milestone(1, model.TrackAdmin, 70, true),
		milestone(2, model.TrackAdmin, 30, true),
		milestone(3, model.TrackEngineering, 100, true),
	}
	states := []model.ProjectMilestone{
		completedState(1),
		completedState(2),
		completedState(3),
	}

	got := Compute(ms, states, cfg)
	require.GreaterOrEqual(t, got, 0.0)
	require.LessOrEqual(t, got, 100.0)
	assert.Equal(t, 100.0, got)

	// A track without active milestones contributes zero, never NaN.
	onlyAdmin := []model.ProgressMilestone{milestone(1, model.TrackAdmin, 100, true)}
	got = Compute(onlyAdmin, []model.ProjectMilestone{completedState(1)}, cfg)
	assert.Equal(t, 50.0, got)
	require.False(t, got != got, "progress must not be NaN")

	// Uncompleted state rows count as not done.
	got = Compute(onlyAdmin, []model.ProjectMilestone{{MilestoneID: 1}}, cfg)
	assert.Equal(t, 0.0, got)
}

func TestStalled(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{
		MonthsThreshold:       6,
		MinProgressOldProject: 20,
		MinProgressLateStage:  50,
		LateStages:            []model.ProjectStatus{model.ProjectGridConnection, model.ProjectOperating},
	}

	sevenMonthsAgo := now.AddDate(0, -7, 0)
	twoMonthsAgo := now.AddDate(0, -2, 0)

	// Old late-stage project below the late-stage floor is stalled.
	assert.True(t, Stalled(sevenMonthsAgo, model.ProjectGridConnection, 40, cfg, now))
	// Same project above the floor is not.
	assert.False(t, Stalled(sevenMonthsAgo, model.ProjectGridConnection, 60, cfg, now))

	// Old early-stage project is stalled only below the absolute floor.
	assert.True(t, Stalled(sevenMonthsAgo, model.ProjectPlanning, 10, cfg, now))
	assert.False(t, Stalled(sevenMonthsAgo, model.ProjectPlanning, 40, cfg, now))

	// Young projects are never stalled.
	assert.False(t, Stalled(twoMonthsAgo, model.ProjectGridConnection, 0, cfg, now))
}

// Package progress computes derived project progress from weighted
// milestone sets and classifies stalled projects. Everything here is a
// pure function over already-loaded rows; nothing is persisted.
package progress

import (
	"time"

	"solarops/dao/model"
)

// Config mirrors the admin-tunable model.ProgressConfig row.
type Config struct {
	AdminWeight       int
	EngineeringWeight int

	MonthsThreshold       int
	MinProgressOldProject float64
	MinProgressLateStage  float64
	LateStages            []model.ProjectStatus
}

// FromModel converts the stored configuration row.
func FromModel(pc *model.ProgressConfig) Config {
	return Config{
		AdminWeight:           pc.AdminWeight,
		EngineeringWeight:     pc.EngineeringWeight,
		MonthsThreshold:       pc.MonthsThreshold,
		MinProgressOldProject: float64(pc.MinProgressOldProject),
		MinProgressLateStage:  float64(pc.MinProgressLateStage),
		LateStages:            pc.LateStages,
	}
}

// SplitWeights applies the single-slider semantics: the admin weight is
// clamped to [0,100] and the engineering weight is inferred as the rest.
func SplitWeights(admin int) (adminWeight, engineeringWeight int) {
	if admin < 0 {
		admin = 0
	}
	if admin > 100 {
		admin = 100
	}
	return admin, 100 - admin
}

// TrackProgress returns, in percent, the completed share of one track:
// the weight sum of completed active milestones over the weight sum of
// all active milestones. A track with no active milestones is 0, not NaN.
func TrackProgress(milestones []model.ProgressMilestone, completed map[uint]bool) float64 {
	var total, done int
	for i := range milestones {
		m := &milestones[i]
		if !m.IsActive {
			continue
		}
		total += m.Weight
		if completed[m.ID] {
			done += m.Weight
		}
	}
	if total <= 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}

// Overall combines the two track percentages by the configured weight
// split. The result is clamped to [0,100].
func Overall(adminPct, engineeringPct float64, cfg Config) float64 {
	v := adminPct*float64(cfg.AdminWeight)/100 + engineeringPct*float64(cfg.EngineeringWeight)/100
	return clampPct(v)
}

// Compute derives a project's overall progress from the milestone catalog
// and its completion rows.
func Compute(milestones []model.ProgressMilestone, states []model.ProjectMilestone, cfg Config) float64 {
	completed := make(map[uint]bool, len(states))
	for i := range states {
		if states[i].Completed() {
			completed[states[i].MilestoneID] = true
		}
	}

	byTrack := map[model.Track][]model.ProgressMilestone{}
	for i := range milestones {
		byTrack[milestones[i].Track] = append(byTrack[milestones[i].Track], milestones[i])
	}

	adminPct := TrackProgress(byTrack[model.TrackAdmin], completed)
	engineeringPct := TrackProgress(byTrack[model.TrackEngineering], completed)
	return Overall(adminPct, engineeringPct, cfg)
}

// Stalled flags a project that has been around longer than the configured
// age threshold and is behind on progress, either absolutely or for its
// late lifecycle stage.
func Stalled(createdAt time.Time, status model.ProjectStatus, overall float64, cfg Config, now time.Time) bool {
	cutoff := createdAt.AddDate(0, cfg.MonthsThreshold, 0)
	if !now.After(cutoff) {
		return false
	}
	if overall < cfg.MinProgressOldProject {
		return true
	}
	return isLateStage(status, cfg.LateStages) && overall < cfg.MinProgressLateStage
}

func isLateStage(status model.ProjectStatus, late []model.ProjectStatus) bool {
	for _, s := range late {
		if s == status {
			return true
		}
	}
	return false
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

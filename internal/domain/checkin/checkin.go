// Package checkin decides when a user should be asked to revisit their
// preferences and how their answers change the profile.
package checkin

import (
	"time"

	"github.com/phrazzld/recall-api/internal/domain"
)

// Escalation thresholds.
const (
	WeeklyInterval          = 7 * 24 * time.Hour
	MonthlyInterval         = 30 * 24 * time.Hour
	LowEngagementMissedDays = 3
	LowRecallRate           = 0.5
)

// Status says whether a check-in is due and which kind.
type Status struct {
	Needed bool               `json:"needed"`
	Type   domain.CheckInType `json:"type,omitempty"`
	Reason string             `json:"reason,omitempty"`
}

// Evaluate returns the highest-priority check-in the profile needs at now.
// Scheduled check-ins always outrank triggered ones.
func Evaluate(p *domain.Profile, now time.Time) Status {
	if p == nil || !p.OnboardingCompleted {
		return Status{}
	}

	var sinceLast time.Duration
	if p.LastCheckInDate != nil {
		sinceLast = now.Sub(*p.LastCheckInDate)
	}

	switch {
	case p.LastCheckInDate == nil || sinceLast > WeeklyInterval:
		return Status{Needed: true, Type: domain.CheckInWeekly, Reason: domain.ReasonScheduledWeekly}
	// Unreachable while the weekly interval is the shorter one.
	case sinceLast > MonthlyInterval:
		return Status{Needed: true, Type: domain.CheckInMonthly, Reason: domain.ReasonScheduledMonthly}
	case p.ConsecutiveMissedDays >= LowEngagementMissedDays:
		return Status{Needed: true, Type: domain.CheckInTriggered, Reason: domain.ReasonLowEngagement}
	case p.AverageRecallRate > 0 && p.AverageRecallRate < LowRecallRate:
		return Status{Needed: true, Type: domain.CheckInTriggered, Reason: domain.ReasonLowRecallRate}
	}
	return Status{}
}

// Answers are the rule-relevant responses of a check-in. Any other
// responses travel with the record as raw JSON.
type Answers struct {
	WantsSlowerPace  bool `json:"wantsSlowerPace,omitempty"`
	WantsFasterPace  bool `json:"wantsFasterPace,omitempty"`
	NeedsMoreSupport bool `json:"needsMoreSupport,omitempty"`
}

// Apply edits the profile according to the answers and returns snapshots
// taken before and after. The rules are independent; when both pace
// answers are set the faster pace wins.
func Apply(p *domain.Profile, a Answers, now time.Time) (before, after domain.ProfileSnapshot) {
	before = p.Snapshot()

	if a.WantsSlowerPace {
		p.PreferredPace = domain.PaceGradual
	}
	if a.WantsFasterPace {
		p.PreferredPace = domain.PaceIntensive
	}
	if a.NeedsMoreSupport {
		p.SkillLevel = domain.SkillLevelBeginner
	}

	now = now.UTC()
	p.TotalCheckIns++
	p.LastCheckInDate = &now
	p.UpdatedAt = now

	return before, p.Snapshot()
}

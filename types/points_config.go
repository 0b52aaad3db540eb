package types

import (
	"math"
	"strings"
)

const (
	REPORT_BASE_POINTS     = 10
	COMPLETION_BASE_REWARD = 20
	COMPLETION_MIN_REWARD  = 25
)

// Canonical issue types persisted on reports.
const (
	IssuePothole       = "pothole"
	IssueStreetlight   = "streetlight"
	IssueGarbage       = "garbage"
	IssueWaterLeak     = "water_leak"
	IssueTrafficSignal = "traffic_signal"
	IssueRoadDamage    = "road_damage"
	IssueOther         = "other"
	IssueUnknown       = "unknown"
)

type ReportScoring struct {
	BasePoints     int
	TypeMultiplier map[string]float64
}

type CompletionScoring struct {
	BaseReward       int
	MinReward        int
	TypeBonus        map[string]int
	DefaultTypeBonus int
}

func GetReportScoring() ReportScoring {
	return ReportScoring{
		BasePoints: REPORT_BASE_POINTS,
		TypeMultiplier: map[string]float64{
			IssuePothole:       1.0, // standard road safety issue
			IssueStreetlight:   1.3, // safety critical at night
			IssueWaterLeak:     1.5, // high priority infrastructure
			IssueGarbage:       0.8,
			IssueTrafficSignal: 1.4, // critical for traffic safety
			IssueRoadDamage:    1.2,
			IssueOther:         0.9,
		},
	}
}

func GetCompletionScoring() CompletionScoring {
	return CompletionScoring{
		BaseReward: COMPLETION_BASE_REWARD,
		MinReward:  COMPLETION_MIN_REWARD,
		TypeBonus: map[string]int{
			IssuePothole:       6,
			IssueStreetlight:   5,
			IssueGarbage:       4,
			IssueWaterLeak:     7,
			IssueTrafficSignal: 8,
			IssueRoadDamage:    6,
		},
		DefaultTypeBonus: 3,
	}
}

// CalculateReportPoints scores a freshly submitted report:
// floor(base * typeMultiplier) + floor(severity * 2.5) + confidence bonus.
func CalculateReportPoints(issueType string, severity float64) int {
	scoring := GetReportScoring()

	multiplier, ok := scoring.TypeMultiplier[strings.ToLower(issueType)]
	if !ok {
		multiplier = 1.0
	}

	severityBonus := int(math.Floor(severity * 2.5))

	aiBonus := 1
	if severity > 7 {
		aiBonus = 3
	} else if severity > 6 {
		aiBonus = 2
	}

	return int(math.Floor(float64(scoring.BasePoints)*multiplier)) + severityBonus + aiBonus
}

// CalculateCompletionReward scores a resolved job for the contractor,
// floored at the minimum reward.
func CalculateCompletionReward(issueType string, severity float64) int {
	scoring := GetCompletionScoring()

	bonus, ok := scoring.TypeBonus[strings.ToLower(issueType)]
	if !ok {
		bonus = scoring.DefaultTypeBonus
	}

	reward := scoring.BaseReward + int(math.Round(severity*4)) + bonus
	if reward < scoring.MinReward {
		reward = scoring.MinReward
	}
	return reward
}

// MapFormIssueType translates the client-side category names onto the
// canonical issue types. Unrecognized input falls back to pothole, matching
// the submission form's default selection.
func MapFormIssueType(formValue string) string {
	mapping := map[string]string{
		"pothole":     IssuePothole,
		"streetlight": IssueStreetlight,
		"garbage":     IssueGarbage,
		"drainage":    IssueWaterLeak,
		"traffic":     IssueTrafficSignal,
		"road":        IssueRoadDamage,
		"other":       IssueOther,
	}
	if mapped, ok := mapping[strings.ToLower(formValue)]; ok {
		return mapped
	}
	return IssuePothole
}

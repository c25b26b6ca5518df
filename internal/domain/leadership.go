package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TargetKind is the closed set of metrics a designation target can test.
type TargetKind string

const (
	TargetDirectReferrals       TargetKind = "direct_referrals"
	TargetActiveDirectReferrals TargetKind = "active_direct_referrals"
	TargetTeamSize              TargetKind = "team_size"
	TargetPersonalSales         TargetKind = "personal_sales"
	TargetTeamSales             TargetKind = "team_sales"
	TargetDesignation           TargetKind = "designation"
)

var numericTargets = map[TargetKind]bool{
	TargetDirectReferrals:       true,
	TargetActiveDirectReferrals: true,
	TargetTeamSize:              true,
	TargetPersonalSales:         true,
	TargetTeamSales:             true,
}

// IsNumeric reports whether the kind compares with >=.
func (k TargetKind) IsNumeric() bool { return numericTargets[k] }

// Valid reports whether the kind is known.
func (k TargetKind) Valid() bool { return k.IsNumeric() || k == TargetDesignation }

// Target is one requirement of a designation tier.
type Target struct {
	Name    string
	Kind    TargetKind
	Numeric decimal.Decimal
	Text    string
}

// ParseTarget builds a Target from its stored kind and raw value.
func ParseTarget(name, kind, value string) (Target, error) {
	k := TargetKind(kind)
	if !k.Valid() {
		return Target{}, fmt.Errorf("%w: %q", ErrUnknownTargetKind, kind)
	}

	t := Target{Name: name, Kind: k}
	if k.IsNumeric() {
		n, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return Target{}, fmt.Errorf("%w: target %s value %q is not numeric", ErrValidation, name, value)
		}
		t.Numeric = n
		return t, nil
	}

	t.Text = value
	return t, nil
}

// SatisfiedBy compares an observed metric against the target. Numeric targets
// require actual >= value; text targets match after trimming, ignoring case.
func (t Target) SatisfiedBy(actual Metric) bool {
	if t.Kind.IsNumeric() {
		return actual.Numeric.GreaterThanOrEqual(t.Numeric)
	}
	return strings.EqualFold(strings.TrimSpace(actual.Text), strings.TrimSpace(t.Text))
}

// Metric is an observed value for a target kind.
type Metric struct {
	Numeric decimal.Decimal
	Text    string
}

// NumericMetric wraps an integer count.
func NumericMetric(n int64) Metric { return Metric{Numeric: decimal.NewFromInt(n)} }

// Designation is one rung of the leadership ladder. Level is the leadershipId a
// user holds once promoted to it.
type Designation struct {
	Level   int
	Name    string
	Targets []Target
}

// Package placement maps level-test results to a proficiency tier.
package placement

import (
	"fmt"
	"strings"
)

// Tier is one of six ordered proficiency levels, Tier1 lowest.
type Tier int

const (
	Tier1 Tier = iota + 1
	Tier2
	Tier3
	Tier4
	Tier5
	Tier6
)

var labels = [...]string{"A1", "A2", "B1", "B2", "C1", "C2"}

// thresholds are inclusive lower bounds, checked highest first.
var thresholds = []struct {
	min  float64
	tier Tier
}{
	{0.875, Tier6},
	{0.75, Tier5},
	{0.625, Tier4},
	{0.5, Tier3},
	{0.25, Tier2},
}

// Placement returns the tier for correct answers out of total.
// A zero or negative total yields Tier1.
func Placement(correct, total int) Tier {
	if total <= 0 {
		return Tier1
	}
	ratio := float64(correct) / float64(total)
	for _, t := range thresholds {
		if ratio >= t.min {
			return t.tier
		}
	}
	return Tier1
}

// String returns the CEFR label of the tier.
func (t Tier) String() string {
	if t < Tier1 || t > Tier6 {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return labels[t-1]
}

// ParseTier converts a CEFR label back into a tier.
func ParseTier(s string) (Tier, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, l := range labels {
		if l == s {
			return Tier(i + 1), nil
		}
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

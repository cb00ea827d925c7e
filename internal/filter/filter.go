package filter

import (
	"strings"

	"RentScanner/internal/domain"
)

// Rules are the post-fetch criteria the 591 query parameters cannot
// express. Each rule rejects independently; unknown or unparsed fields
// never reject, so a half-parsed record degrades to accept.
type Rules struct {
	// MinArea is the smallest acceptable size in ping; 0 disables.
	MinArea float64
	// MaxFloorNoElevator rejects walk-ups above this floor. Floor 0
	// (basement or unparsed) and unknown elevator state both pass.
	MaxFloorNoElevator int
	// OpenPlanMarkers reject layouts containing any marker substring.
	OpenPlanMarkers []string
	// MaxRent rejects listings priced above the ceiling; applied only
	// when the price actually parsed (> 0). 0 disables.
	MaxRent int
}

// DefaultRules mirror the monitored search: walk-ups capped at the 3rd
// floor, no open-plan studios, at least 15 ping, at most 30000/month.
func DefaultRules() Rules {
	return Rules{
		MinArea:            15,
		MaxFloorNoElevator: 3,
		OpenPlanMarkers:    []string{"開放式"},
		MaxRent:            30000,
	}
}

// Evaluate returns whether the listing should be kept and, when
// rejected, the rule that fired.
func (r Rules) Evaluate(l domain.Listing) (keep bool, reason string) {
	if r.MaxFloorNoElevator > 0 && l.Elevator == domain.FlagNo && l.Floor > r.MaxFloorNoElevator {
		return false, "no_elevator_high_floor"
	}

	if l.Layout != "" {
		for _, marker := range r.OpenPlanMarkers {
			marker = strings.TrimSpace(marker)
			if marker == "" {
				continue
			}
			if strings.Contains(l.Layout, marker) {
				return false, "open_plan"
			}
		}
	}

	// Area 0 means the field never parsed; that is a pass, not a
	// reject, because filters are advisory.
	if r.MinArea > 0 && l.Area > 0 && l.Area < r.MinArea {
		return false, "too_small"
	}

	if r.MaxRent > 0 && l.Price > 0 && l.Price > r.MaxRent {
		return false, "over_budget"
	}

	return true, ""
}

package filter

import (
	"testing"

	"RentScanner/internal/domain"
)

func TestElevatorRule(t *testing.T) {
	t.Parallel()

	rules := DefaultRules()

	rejected := domain.Listing{ID: "1", Area: 20, Floor: 5, Elevator: domain.FlagNo}
	if keep, reason := rules.Evaluate(rejected); keep || reason != "no_elevator_high_floor" {
		t.Fatalf("expected rejection for walk-up on 5F, got keep=%v reason=%q", keep, reason)
	}

	unknown := domain.Listing{ID: "2", Area: 20, Floor: 5, Elevator: domain.FlagUnknown}
	if keep, _ := rules.Evaluate(unknown); !keep {
		t.Fatal("unknown elevator state must not reject")
	}

	lowFloor := domain.Listing{ID: "3", Area: 20, Floor: 3, Elevator: domain.FlagNo}
	if keep, _ := rules.Evaluate(lowFloor); !keep {
		t.Fatal("3F without elevator is within the limit")
	}

	unknownFloor := domain.Listing{ID: "4", Area: 20, Floor: 0, Elevator: domain.FlagNo}
	if keep, _ := rules.Evaluate(unknownFloor); !keep {
		t.Fatal("unknown floor must not reject")
	}
}

func TestOpenPlanRule(t *testing.T) {
	t.Parallel()

	rules := DefaultRules()

	openPlan := domain.Listing{ID: "1", Area: 20, Layout: "開放式格局"}
	if keep, reason := rules.Evaluate(openPlan); keep || reason != "open_plan" {
		t.Fatalf("expected open-plan rejection, got keep=%v reason=%q", keep, reason)
	}

	rooms := domain.Listing{ID: "2", Area: 20, Layout: "3房2廳"}
	if keep, _ := rules.Evaluate(rooms); !keep {
		t.Fatal("regular layout must pass")
	}

	empty := domain.Listing{ID: "3", Area: 20}
	if keep, _ := rules.Evaluate(empty); !keep {
		t.Fatal("missing layout must pass")
	}
}

func TestAreaBoundary(t *testing.T) {
	t.Parallel()

	rules := DefaultRules()

	small := domain.Listing{ID: "1", Area: 12}
	if keep, reason := rules.Evaluate(small); keep || reason != "too_small" {
		t.Fatalf("12 ping must reject, got keep=%v reason=%q", keep, reason)
	}

	// 15 is the floor, inclusive.
	boundary := domain.Listing{ID: "2", Area: 15}
	if keep, _ := rules.Evaluate(boundary); !keep {
		t.Fatal("15 ping must pass")
	}

	unparsed := domain.Listing{ID: "3", Area: 0}
	if keep, _ := rules.Evaluate(unparsed); !keep {
		t.Fatal("unparsed area must degrade to accept")
	}
}

func TestRentCeiling(t *testing.T) {
	t.Parallel()

	rules := DefaultRules()

	over := domain.Listing{ID: "1", Area: 20, Price: 31000}
	if keep, reason := rules.Evaluate(over); keep || reason != "over_budget" {
		t.Fatalf("expected over-budget rejection, got keep=%v reason=%q", keep, reason)
	}

	exact := domain.Listing{ID: "2", Area: 20, Price: 30000}
	if keep, _ := rules.Evaluate(exact); !keep {
		t.Fatal("price at the ceiling must pass")
	}

	unparsed := domain.Listing{ID: "3", Area: 20, Price: 0}
	if keep, _ := rules.Evaluate(unparsed); !keep {
		t.Fatal("unparsed price must degrade to accept")
	}
}

func TestDisabledRules(t *testing.T) {
	t.Parallel()

	var rules Rules

	l := domain.Listing{ID: "1", Area: 5, Price: 99999, Floor: 9, Elevator: domain.FlagNo, Layout: "開放式"}
	if keep, _ := rules.Evaluate(l); !keep {
		t.Fatal("zero-valued rules must accept everything")
	}
}

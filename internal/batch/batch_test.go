package batch

import (
	"strconv"
	"testing"

	"RentScanner/internal/domain"
)

func TestOrderNewestThenAreaThenPrice(t *testing.T) {
	t.Parallel()

	newerExpensive := domain.Listing{ID: "900", Area: 20, Price: 25000}
	older := domain.Listing{ID: "100", Area: 30, Price: 20000}
	newerCheap := domain.Listing{ID: "900", Area: 20, Price: 18000}

	ordered := Order([]domain.Listing{newerExpensive, older, newerCheap})

	if len(ordered) != 3 {
		t.Fatalf("expected 3 listings, got %d", len(ordered))
	}
	// Newest first; among equally-new listings with equal area the
	// lower rent wins.
	if ordered[0].Price != 18000 {
		t.Fatalf("expected cheap fresh listing first, got %+v", ordered[0])
	}
	if ordered[1].Price != 25000 {
		t.Fatalf("expected expensive fresh listing second, got %+v", ordered[1])
	}
	if ordered[2].ID != "100" {
		t.Fatalf("expected older listing last, got %+v", ordered[2])
	}
}

func TestOrderAreaBeforePrice(t *testing.T) {
	t.Parallel()

	small := domain.Listing{ID: "500", Area: 18, Price: 15000}
	large := domain.Listing{ID: "500", Area: 28, Price: 29000}

	ordered := Order([]domain.Listing{small, large})
	if ordered[0].Area != 28 {
		t.Fatalf("larger area must outrank lower rent, got %+v", ordered[0])
	}
}

func TestOrderNonNumericIDsKeepFetchOrder(t *testing.T) {
	t.Parallel()

	first := domain.Listing{ID: "abc", Area: 10, Price: 10000}
	second := domain.Listing{ID: "def", Area: 10, Price: 10000}

	ordered := Order([]domain.Listing{first, second})
	if ordered[0].ID != "abc" || ordered[1].ID != "def" {
		t.Fatalf("stable fetch order broken: %+v", ordered)
	}
}

func TestSplitCap(t *testing.T) {
	t.Parallel()

	listings := make([]domain.Listing, 0, 14)
	for i := 0; i < 14; i++ {
		listings = append(listings, domain.Listing{ID: strconv.Itoa(1000 + i), Area: 20, Price: 20000})
	}

	now, later := Split(listings, 10)
	if len(now) != 10 {
		t.Fatalf("expected 10 to notify, got %d", len(now))
	}
	if len(later) != 4 {
		t.Fatalf("expected 4 carried over, got %d", len(later))
	}

	// The cap takes the freshest listings; the tail carries the rest.
	if now[0].ID != "1013" {
		t.Fatalf("expected newest first, got %s", now[0].ID)
	}
	if later[len(later)-1].ID != "1000" {
		t.Fatalf("expected oldest carried last, got %s", later[len(later)-1].ID)
	}
}

func TestSplitUnderCap(t *testing.T) {
	t.Parallel()

	listings := []domain.Listing{
		{ID: "1", Area: 20, Price: 20000},
		{ID: "2", Area: 20, Price: 20000},
	}

	now, later := Split(listings, 10)
	if len(now) != 2 {
		t.Fatalf("expected all listings notified, got %d", len(now))
	}
	if len(later) != 0 {
		t.Fatalf("expected empty remainder, got %d", len(later))
	}
}

func TestMergeFreshWinsOverPending(t *testing.T) {
	t.Parallel()

	pending := []domain.Listing{{ID: "7", Price: 21000}}
	fresh := []domain.Listing{{ID: "7", Price: 19000}, {ID: "8", Price: 18000}}

	merged := Merge(pending, fresh)
	if len(merged) != 2 {
		t.Fatalf("expected 2 distinct listings, got %d", len(merged))
	}
	if merged[0].ID != "7" || merged[0].Price != 19000 {
		t.Fatalf("fresh copy must replace the stale pending one, got %+v", merged[0])
	}
}

func TestMergeKeepsFirstFreshDuplicate(t *testing.T) {
	t.Parallel()

	fresh := []domain.Listing{
		{ID: "9", Source: "first-search"},
		{ID: "9", Source: "second-search"},
	}

	merged := Merge(nil, fresh)
	if len(merged) != 1 {
		t.Fatalf("expected duplicate collapse, got %d", len(merged))
	}
	if merged[0].Source != "first-search" {
		t.Fatalf("first search instance must win, got %q", merged[0].Source)
	}
}

func TestMergeDropsEmptyIDs(t *testing.T) {
	t.Parallel()

	merged := Merge([]domain.Listing{{ID: ""}}, []domain.Listing{{ID: ""}})
	if len(merged) != 0 {
		t.Fatalf("expected empty merge, got %d", len(merged))
	}
}

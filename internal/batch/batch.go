package batch

import (
	"sort"
	"strconv"

	"RentScanner/internal/domain"
)

// Merge combines this run's fresh listings with the carried-over
// pending queue and collapses duplicate IDs. A fresh instance replaces
// a stale pending copy of the same listing; among fresh duplicates the
// earliest fetch (first search configuration) wins. Input order is
// preserved for everything else, so the sort's fetch-order fallback
// stays deterministic.
func Merge(pending, fresh []domain.Listing) []domain.Listing {
	merged := make([]domain.Listing, 0, len(pending)+len(fresh))
	position := make(map[string]int, len(pending)+len(fresh))
	carried := make([]bool, 0, len(pending))

	for _, l := range pending {
		if l.ID == "" {
			continue
		}
		if _, ok := position[l.ID]; ok {
			continue
		}
		position[l.ID] = len(merged)
		merged = append(merged, l)
		carried = append(carried, true)
	}

	for _, l := range fresh {
		if l.ID == "" {
			continue
		}
		if at, ok := position[l.ID]; ok {
			// Refresh a stale pending copy; between two fresh
			// instances the first fetch wins.
			if at < len(carried) && carried[at] {
				merged[at] = l
			}
			continue
		}
		position[l.ID] = len(merged)
		merged = append(merged, l)
	}

	return merged
}

// Order sorts listings by notification priority: newest first, then
// largest area, then lowest rent. 591 assigns IDs monotonically, so
// the numeric ID doubles as the freshness rank; non-numeric IDs rank
// zero and keep their stable fetch order.
func Order(listings []domain.Listing) []domain.Listing {
	ordered := make([]domain.Listing, len(listings))
	copy(ordered, listings)

	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := freshnessRank(ordered[i]), freshnessRank(ordered[j])
		if ri != rj {
			return ri > rj
		}
		if ordered[i].Area != ordered[j].Area {
			return ordered[i].Area > ordered[j].Area
		}
		return ordered[i].Price < ordered[j].Price
	})

	return ordered
}

// Split orders the merged set and cuts it at the notify cap: the head
// is sent this run, the tail becomes the next pending queue. A
// non-positive cap sends everything.
func Split(listings []domain.Listing, cap int) (now, later []domain.Listing) {
	ordered := Order(listings)
	if cap <= 0 || len(ordered) <= cap {
		return ordered, nil
	}
	return ordered[:cap], ordered[cap:]
}

func freshnessRank(l domain.Listing) int64 {
	rank, err := strconv.ParseInt(l.ID, 10, 64)
	if err != nil {
		return 0
	}
	return rank
}

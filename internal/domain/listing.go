package domain

// Flag is a tri-state for listing attributes the source may omit.
// The zero value means "unknown" so a half-parsed record never looks
// like a definite yes or no.
type Flag int

const (
	FlagUnknown Flag = iota
	FlagNo
	FlagYes
)

// Bool builds a definite Flag from a boolean.
func Bool(v bool) Flag {
	if v {
		return FlagYes
	}
	return FlagNo
}

// Listing is the normalized representation of one rental advertisement.
// ID is the sole deduplication key; everything else is descriptive or
// feeds the filter/sort predicates.
type Listing struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Price       int      `json:"price"`
	Address     string   `json:"address"`
	AreaName    string   `json:"area"`
	Area        float64  `json:"area_num"`
	FloorName   string   `json:"floor"`
	Floor       int      `json:"floor_num"`
	Kind        string   `json:"kind_name"`
	Layout      string   `json:"layout"`
	Elevator    Flag     `json:"elevator"`
	URL         string   `json:"url"`
	Photo       string   `json:"photo,omitempty"`
	RefreshTime string   `json:"refresh_time,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Source      string   `json:"source,omitempty"`
}

// DeliveryStatus enumerates the outcome of one notification attempt.
type DeliveryStatus string

const (
	StatusSent     DeliveryStatus = "sent"
	StatusFallback DeliveryStatus = "fallback"
	StatusFailed   DeliveryStatus = "failed"
)

package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"RentScanner/internal/domain"
	"RentScanner/internal/scanner"
)

const (
	defaultListURL  = "https://rent.591.com.tw/list"
	defaultPageSize = 30
	defaultMaxPages = 5

	elevatorTag = "有電梯"
)

// extractNuxtJS digs the search results out of the Nuxt SSR payload.
// 591 embeds the rendered state in window.__NUXT__.data under an
// unstable key, so every value is probed for an items array.
const extractNuxtJS = `(() => {
	const d = window.__NUXT__ && window.__NUXT__.data;
	if (!d) return null;
	for (const v of Object.values(d)) {
		const inner = v && v.data;
		if (inner && inner.items && Array.isArray(inner.items)) {
			return {
				items: inner.items,
				total: inner.total,
				firstRow: inner.firstRow,
			};
		}
	}
	return null;
})()`

// Renderer loads a page in a JS-capable browser. Evaluate runs an
// extraction script in the page context; HTML returns rendered markup
// for the card-scraping fallback.
type Renderer interface {
	Evaluate(ctx context.Context, pageURL, script string, out any) error
	HTML(ctx context.Context, pageURL string) (string, error)
}

// Rent591Scanner walks 591 search result pages for one region/section
// and normalizes the raw Nuxt items into domain listings.
type Rent591Scanner struct {
	renderer Renderer
	logger   *slog.Logger
	limiter  *rate.Limiter

	baseURL  string
	pageSize int
	maxPages int
}

var _ scanner.Scanner = (*Rent591Scanner)(nil)

// NewRent591Scanner wires a renderer; the limiter paces page loads so
// consecutive requests stay polite.
func NewRent591Scanner(renderer Renderer, logger *slog.Logger) *Rent591Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rent591Scanner{
		renderer: renderer,
		logger:   logger,
		limiter:  rate.NewLimiter(rate.Every(3*time.Second), 1),
		baseURL:  defaultListURL,
		pageSize: defaultPageSize,
		maxPages: defaultMaxPages,
	}
}

// Name identifies the strategy inside the registry.
func (s *Rent591Scanner) Name() string {
	return "rent591"
}

// Scan pages through the search results until the site reports no more
// rows or maxPages is reached. A failure on the first page is an
// error; a failure mid-pagination keeps what was already collected.
func (s *Rent591Scanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Listing, error) {
	if s.renderer == nil {
		return nil, fmt.Errorf("renderer is not configured")
	}

	var collected []domain.Listing
	total := 0

	for page := 0; page < s.maxPages; page++ {
		pageURL, err := s.buildPageURL(req, page*s.pageSize)
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", req.Label, err)
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return collected, err
		}

		s.logger.Debug("load page", "search", req.Label, "page", page+1, "url", pageURL)

		items, pageTotal, err := s.fetchPage(ctx, pageURL)
		if err != nil {
			if page == 0 {
				return nil, fmt.Errorf("search %s: %w", req.Label, err)
			}
			s.logger.Warn("page load failed, keeping partial results",
				"search", req.Label, "page", page+1, "error", err)
			break
		}
		if len(items) == 0 {
			break
		}
		if pageTotal > 0 {
			total = pageTotal
		}

		for _, l := range items {
			if l.ID == "" {
				continue
			}
			l.Source = req.Label
			collected = append(collected, l)
		}

		s.logger.Debug("page done", "search", req.Label,
			"page", page+1, "items", len(items), "collected", len(collected), "total", total)

		if total > 0 && len(collected) >= total {
			break
		}
	}

	return collected, nil
}

type nuxtPayload struct {
	Items    []map[string]any `json:"items"`
	Total    any              `json:"total"`
	FirstRow any              `json:"firstRow"`
}

func (s *Rent591Scanner) fetchPage(ctx context.Context, pageURL string) ([]domain.Listing, int, error) {
	var payload *nuxtPayload
	if err := s.renderer.Evaluate(ctx, pageURL, extractNuxtJS, &payload); err != nil {
		return nil, 0, err
	}

	if payload == nil || len(payload.Items) == 0 {
		// The Nuxt payload shape shifts between deployments; fall
		// back to scraping the rendered cards before giving up.
		html, err := s.renderer.HTML(ctx, pageURL)
		if err != nil {
			return nil, 0, err
		}
		listings, err := parseCards(strings.NewReader(html))
		if err != nil {
			return nil, 0, err
		}
		return listings, 0, nil
	}

	listings := make([]domain.Listing, 0, len(payload.Items))
	for _, item := range payload.Items {
		listings = append(listings, parseItem(item))
	}
	return listings, coerceInt(payload.Total), nil
}

func (s *Rent591Scanner) buildPageURL(req scanner.Request, firstRow int) (string, error) {
	parsed, err := url.Parse(s.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid list url %s: %w", s.baseURL, err)
	}

	query := parsed.Query()
	for k, v := range req.Params {
		query.Set(k, v)
	}
	query.Set("region", strconv.Itoa(req.Region))
	query.Set("section", req.Section)
	if firstRow > 0 {
		query.Set("firstRow", strconv.Itoa(firstRow))
	} else {
		query.Del("firstRow")
	}

	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// parseItem converts one raw Nuxt item into a Listing. Field coercion
// is deliberately forgiving: the site mixes strings and numbers, and a
// malformed field must degrade, not drop the record.
func parseItem(item map[string]any) domain.Listing {
	id := coerceString(item["id"])
	tags := coerceStrings(item["tags"])
	floorName := coerceString(item["floor_name"])

	detailURL := coerceString(item["url"])
	if detailURL == "" && id != "" {
		detailURL = "https://rent.591.com.tw/" + id
	}

	areaName := coerceString(item["area_name"])
	if areaName == "" {
		areaName = coerceString(item["area"])
	}

	elevator := domain.FlagUnknown
	if len(tags) > 0 {
		elevator = domain.Bool(containsString(tags, elevatorTag))
	}

	return domain.Listing{
		ID:          id,
		Title:       coerceString(item["title"]),
		Price:       coerceInt(item["price"]),
		Address:     coerceString(item["address"]),
		AreaName:    areaName,
		Area:        coerceFloat(item["area"]),
		FloorName:   floorName,
		Floor:       parseFloor(floorName),
		Kind:        coerceString(item["kind_name"]),
		Layout:      coerceString(item["layoutStr"]),
		Elevator:    elevator,
		URL:         detailURL,
		Photo:       coerceString(item["cover"]),
		RefreshTime: coerceString(item["refresh_time"]),
		Tags:        tags,
	}
}

// parseFloor extracts the occupied floor from "4F/8F" style values.
// Basements ("B1F") and unparseable input map to 0, meaning unknown.
func parseFloor(floorName string) int {
	if floorName == "" {
		return 0
	}

	part := strings.ToUpper(strings.TrimSpace(strings.SplitN(floorName, "/", 2)[0]))
	if strings.HasPrefix(part, "B") {
		return 0
	}

	var digits strings.Builder
	for _, r := range part {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}

	floor, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return floor
}

func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func coerceInt(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(t), ",", "")
		n, err := strconv.Atoi(cleaned)
		if err != nil {
			return 0
		}
		return n
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	default:
		return 0
	}
}

func coerceFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func coerceStrings(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s := coerceString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func containsString(items []string, needle string) bool {
	for _, item := range items {
		if strings.Contains(item, needle) {
			return true
		}
	}
	return false
}

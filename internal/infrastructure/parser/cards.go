package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"RentScanner/internal/domain"
)

// parseCards scrapes listing cards out of rendered list-page markup.
// This is the fallback for pages where the __NUXT__ payload could not
// be located; it recovers the fields the filter and sort need.
func parseCards(r io.Reader) ([]domain.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	var listings []domain.Listing
	doc.Find(".item").Each(func(_ int, card *goquery.Selection) {
		link := card.Find("a[href*=\"rent.591.com.tw\"]").First()
		href, _ := link.Attr("href")
		if href == "" {
			if fallback, ok := card.Find("a[href]").First().Attr("href"); ok {
				href = fallback
			}
		}

		id := idFromURL(href)
		if id == "" {
			return
		}

		title := strings.TrimSpace(card.Find(".item-info-title").First().Text())
		if title == "" {
			title = strings.TrimSpace(link.Text())
		}

		price := coerceInt(digitsOnly(card.Find(".item-info-price").First().Text()))

		var tags []string
		card.Find(".item-info-tag span").Each(func(_ int, tag *goquery.Selection) {
			if text := strings.TrimSpace(tag.Text()); text != "" {
				tags = append(tags, text)
			}
		})

		// Detail row carries layout / area / floor separated by
		// interpuncts, e.g. "3房2廳 · 25坪 · 4F/8F".
		var layout, areaName, floorName string
		for _, part := range strings.FieldsFunc(card.Find(".item-info-txt").First().Text(), func(r rune) bool {
			return r == '·' || r == '|'
		}) {
			part = strings.TrimSpace(part)
			switch {
			case part == "":
			case strings.Contains(part, "坪"):
				areaName = part
			case strings.Contains(strings.ToUpper(part), "F"):
				floorName = part
			case layout == "":
				layout = part
			}
		}

		elevator := domain.FlagUnknown
		if len(tags) > 0 {
			elevator = domain.Bool(containsString(tags, elevatorTag))
		}

		listings = append(listings, domain.Listing{
			ID:        id,
			Title:     title,
			Price:     price,
			Address:   strings.TrimSpace(card.Find(".item-info-address").First().Text()),
			AreaName:  areaName,
			Area:      coerceFloat(digitsAndDot(areaName)),
			FloorName: floorName,
			Floor:     parseFloor(floorName),
			Layout:    layout,
			Elevator:  elevator,
			URL:       href,
			Tags:      tags,
		})
	})

	return listings, nil
}

func idFromURL(href string) string {
	href = strings.TrimSuffix(href, "/")
	if href == "" {
		return ""
	}
	segment := href[strings.LastIndex(href, "/")+1:]
	if idx := strings.IndexAny(segment, "?#"); idx >= 0 {
		segment = segment[:idx]
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return segment
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func digitsAndDot(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

package browser

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jobscout/platform/internal/domain/jobs"
)

// ResultsListSelector matches the list holding one <li> per job card.
const ResultsListSelector = "ul.jobs-search__results-list"

const cardSelector = ResultsListSelector + " li"

// ParseCards extracts result cards from a results page or list fragment.
// Relative hrefs are resolved against base when it is non-nil.
func ParseCards(r io.Reader, base *url.URL) ([]jobs.Card, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse results html: %w", err)
	}

	var cards []jobs.Card
	doc.Find(cardSelector).Each(func(_ int, s *goquery.Selection) {
		cards = append(cards, jobs.Card{
			Title:             text(s.Find("h3.base-search-card__title")),
			TitleFallback:     text(s.Find("h3")),
			Company:           text(s.Find("h4.base-search-card__subtitle a")),
			CompanySubtitle:   text(s.Find("h4.base-search-card__subtitle")),
			CompanyHiddenLink: text(s.Find("a.hidden-nested-link")),
			FullLink:          href(s.Find("a.base-card__full-link"), base),
			AnyLink:           href(s.Find("a"), base),
		})
	})
	return cards, nil
}

// text returns the first match's visible text with whitespace collapsed.
func text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.First().Text()), " ")
}

func href(s *goquery.Selection, base *url.URL) string {
	raw, ok := s.First().Attr("href")
	if !ok {
		return ""
	}
	raw = strings.TrimSpace(raw)
	if raw == "" || base == nil {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return base.ResolveReference(ref).String()
}

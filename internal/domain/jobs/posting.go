package jobs

import "strings"

// Posting is a single job listing collected from the results page.
type Posting struct {
	Company string `json:"company"`
	Role    string `json:"role"`
	Link    string `json:"link"`
}

// Card is the raw text of one results list entry. Each field group holds
// the candidates for one posting field, most specific selector first.
type Card struct {
	Title         string
	TitleFallback string

	Company           string
	CompanySubtitle   string
	CompanyHiddenLink string

	FullLink string
	AnyLink  string
}

// Posting resolves the card's fallbacks. ok is false for cards without a link.
func (c Card) Posting() (Posting, bool) {
	link := firstNonEmpty(c.FullLink, c.AnyLink)
	if link == "" {
		return Posting{}, false
	}
	return Posting{
		Company: firstNonEmpty(c.Company, c.CompanySubtitle, c.CompanyHiddenLink),
		Role:    firstNonEmpty(c.Title, c.TitleFallback),
		Link:    CanonicalLink(link),
	}, true
}

// CanonicalLink drops the query string, which only carries tracking data.
func CanonicalLink(raw string) string {
	raw = strings.TrimSpace(raw)
	if idx := strings.Index(raw, "?"); idx >= 0 {
		return raw[:idx]
	}
	return raw
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

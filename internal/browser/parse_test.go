package browser

import (
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobscout/platform/internal/domain/jobs"
)

func loadFixture(t *testing.T) *os.File {
	t.Helper()
	f, err := os.Open("testdata/results.html")
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestParseCards(t *testing.T) {
	base, err := url.Parse("https://www.linkedin.com/jobs/search/?keywords=Data+Scientist")
	require.NoError(t, err)

	cards, err := ParseCards(loadFixture(t), base)
	require.NoError(t, err)
	require.Len(t, cards, 4)

	assert.Equal(t, "Data Scientist", cards[0].Title)
	assert.Equal(t, "Acme Corp", cards[0].Company)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/data-scientist-at-acme-3901?refId=abc&trackingId=xyz", cards[0].FullLink)

	assert.Empty(t, cards[1].Title)
	assert.Equal(t, "Machine Learning Engineer", cards[1].TitleFallback)
	assert.Equal(t, "Globex", cards[1].CompanySubtitle)
	assert.Empty(t, cards[1].FullLink)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/ml-engineer-at-globex-3902?position=2", cards[1].AnyLink)

	assert.Empty(t, cards[2].AnyLink)
}

func TestParseCardsToPostings(t *testing.T) {
	cards, err := ParseCards(loadFixture(t), nil)
	require.NoError(t, err)

	var postings []jobs.Posting
	for _, c := range cards {
		if p, ok := c.Posting(); ok {
			postings = append(postings, p)
		}
	}

	assert.Equal(t, []jobs.Posting{
		{Company: "Acme Corp", Role: "Data Scientist", Link: "https://www.linkedin.com/jobs/view/data-scientist-at-acme-3901"},
		{Company: "Globex", Role: "Machine Learning Engineer", Link: "/jobs/view/ml-engineer-at-globex-3902"},
		{Company: "Initech", Role: "Analyst", Link: "https://www.linkedin.com/jobs/view/analyst-at-initech-3903"},
	}, postings)
}

func TestParseCardsListFragment(t *testing.T) {
	fragment := `<ul class="jobs-search__results-list"><li><a href="https://x.example/jobs/1">x</a><h3>One</h3></li></ul>`

	cards, err := ParseCards(strings.NewReader(fragment), nil)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "One", cards[0].TitleFallback)
}

func TestParseCardsWithoutList(t *testing.T) {
	cards, err := ParseCards(strings.NewReader(`<html><body><p>Sign in to continue</p></body></html>`), nil)
	require.NoError(t, err)
	assert.Empty(t, cards)
}

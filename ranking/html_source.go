package ranking

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var ErrLeagueNotFound = errors.New("league ranking page not found")

// HTMLRankingSource reads a league/season ranking table from an HTML page.
// The page URL is built from a template containing "{league}".
//
// Each ranked row is a table row carrying either a data-participant-id attribute
// or a link whose query has an id/participant_id parameter. Rows without an id
// (headers, separators) are skipped; document order is the ranking order.
type HTMLRankingSource struct {
	httpClient  *http.Client
	urlTemplate string
}

func NewHTMLRankingSource(urlTemplate string, httpClient *http.Client) *HTMLRankingSource {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				TLSHandshakeTimeout: 10 * time.Second,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConns:        10,
			},
		}
	}
	return &HTMLRankingSource{httpClient: httpClient, urlTemplate: urlTemplate}
}

func (s *HTMLRankingSource) pageURL(leagueID string) string {
	return strings.ReplaceAll(s.urlTemplate, "{league}", url.PathEscape(leagueID))
}

func (s *HTMLRankingSource) Ranking(ctx context.Context, leagueID string) ([]int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.pageURL(leagueID), nil)
	if err != nil {
		return nil, fmt.Errorf("build ranking request for league %s: %w", leagueID, err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch ranking for league %s: %w", leagueID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrLeagueNotFound, leagueID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status code for league %s: %d", leagueID, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse ranking HTML for league %s: %w", leagueID, err)
	}
	return parseRanking(doc), nil
}

func parseRanking(doc *goquery.Document) []int {
	seen := make(map[int]bool)
	ids := make([]int, 0)
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		id, ok := rowParticipantID(row)
		if !ok || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	})
	return ids
}

func rowParticipantID(row *goquery.Selection) (int, bool) {
	if raw, exists := row.Attr("data-participant-id"); exists {
		if id, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			return id, true
		}
	}

	var (
		found bool
		id    int
	)
	row.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, exists := a.Attr("href")
		if !exists {
			return true
		}
		u, err := url.Parse(href)
		if err != nil {
			return true
		}
		for _, key := range []string{"participant_id", "id"} {
			if v := u.Query().Get(key); v != "" {
				if parsed, err := strconv.Atoi(v); err == nil {
					id, found = parsed, true
					return false
				}
			}
		}
		return true
	})
	return id, found
}

package ranking

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const leaguePage = `<html><body>
<table class="ranking">
  <tr><th>#</th><th>Player</th><th>Points</th></tr>
  <tr data-participant-id="42"><td>1</td><td>Ann</td><td>120</td></tr>
  <tr><td>2</td><td><a href="/player.php?id=7">Bob</a></td><td>110</td></tr>
  <tr><td>3</td><td><a href="/profile?participant_id=13&amp;tab=stats">Cid</a></td><td>90</td></tr>
  <tr><td>-</td><td><a href="/about">nobody</a></td><td></td></tr>
  <tr data-participant-id="42"><td>4</td><td>Ann again</td><td>10</td></tr>
</table>
</body></html>`

func TestHTMLRankingSourceParsesTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/leagues/summer-2025/table":
			fmt.Fprint(w, leaguePage)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewHTMLRankingSource(srv.URL+"/leagues/{league}/table", srv.Client())

	ids, err := src.Ranking(context.Background(), "summer-2025")
	require.NoError(t, err)
	assert.Equal(t, []int{42, 7, 13}, ids)

	_, err = src.Ranking(context.Background(), "winter")
	assert.ErrorIs(t, err, ErrLeagueNotFound)
}

func TestHTMLRankingSourceServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTMLRankingSource(srv.URL+"/{league}", nil).Ranking(context.Background(), "x")
	assert.Error(t, err)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openalex

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanceresa/BigQuery/internal/httputil"
	"github.com/juanceresa/BigQuery/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

// serve points apiBase at handler for the duration of the test.
func serve(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	orig := apiBase
	apiBase = ts.URL
	t.Cleanup(func() {
		apiBase = orig
		ts.Close()
	})
	c := NewClient(types.OpenAlexConfig{PerPage: 5, MaxRetries: 2, Email: "me@example.org"}, nil)
	c.HTTP = ts.Client()
	return c
}

const authorJSON = `{
  "id": "https://openalex.org/A5023888391",
  "orcid": "https://orcid.org/0000-0001-2345-6789",
  "display_name": "Juan García López",
  "display_name_alternatives": ["J. García López", "Juan Garcia-Lopez"],
  "works_count": 42,
  "cited_by_count": 1234,
  "summary_stats": {"2yr_mean_citedness": 2.5, "h_index": 17, "i10_index": 25},
  "ids": {"openalex": "https://openalex.org/A5023888391", "scopus": "http://www.scopus.com/inward/authorDetails.url?authorID=123"},
  "affiliations": [
    {"institution": {"id": "https://openalex.org/I9617848", "display_name": "Universitat Politècnica de Catalunya", "country_code": "ES"}, "years": [2020]},
    {"institution": {"id": "https://openalex.org/I9617848"}, "years": [2019]}
  ],
  "last_known_institutions": [{"id": "https://openalex.org/I4210", "country_code": "ES"}],
  "x_concepts": [{"id": "C1", "display_name": "Computer science"}, {"id": "C2", "display_name": "Mathematics"}],
  "topics": [{"id": "T1", "display_name": "Ignored when concepts exist"}],
  "works_api_url": "https://api.openalex.org/works?filter=author.id:A5023888391"
}`

func TestSearchAuthors(t *testing.T) {
	var gotQuery string
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/authors", r.URL.Path)
		assert.Equal(t, "me@example.org", r.URL.Query().Get("mailto"))
		assert.Equal(t, "5", r.URL.Query().Get("per_page"))
		gotQuery = r.URL.Query().Get("search")
		fmt.Fprintf(w, `{"meta": {"count": 1}, "results": [%s]}`, authorJSON)
	})

	got, err := c.SearchAuthors(context.Background(), "Juan García")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Juan García", gotQuery)

	a := got[0]
	assert.Equal(t, "https://openalex.org/A5023888391", a.ID)
	assert.Equal(t, []string{"J. García López", "Juan Garcia-Lopez"}, a.Alternatives)
	assert.Equal(t, []string{"https://openalex.org/I9617848", "https://openalex.org/I4210"}, a.AffiliationIDs)
	assert.Equal(t, "ES", a.CountryCode)
	assert.Equal(t, []string{"Computer science", "Mathematics"}, a.Topics)
	assert.Equal(t, "Computer science", a.PrimaryTopic())
	assert.Equal(t, 42, a.WorksCount)
	assert.Equal(t, 17, a.SummaryStats.HIndex)
	assert.Equal(t, "https://orcid.org/0000-0001-2345-6789", a.ORCID)
	assert.Contains(t, a.Scopus, "authorID=123")
}

func TestSearchAuthors_TopicsFallback(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"results": [{"id": "A1", "display_name": "X", "topics": [{"display_name": "Ecology"}]}]}`)
	})
	got, err := c.SearchAuthors(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ecology"}, got[0].Topics)
}

func TestSearchAuthors_EmptyQueryNoRequest(t *testing.T) {
	var calls int32
	c := serve(t, func(http.ResponseWriter, *http.Request) { atomic.AddInt32(&calls, 1) })
	got, err := c.SearchAuthors(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestSearchAuthors_HTTPError(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	_, err := c.SearchAuthors(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 400")
	assert.NotContains(t, err.Error(), "me@example.org")
}

func TestSearchInstitutions(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/institutions", r.URL.Path)
		assert.Equal(t, "universitat politècnica de catalunya", r.URL.Query().Get("search"))
		fmt.Fprint(w, `{"results": [
			{"id": "https://openalex.org/I9617848", "display_name": "Universitat Politècnica de Catalunya", "country_code": "ES"},
			{"id": "https://openalex.org/I2", "display_name": "Other"}
		]}`)
	})
	got, err := c.SearchInstitutions(context.Background(), "universitat politècnica de catalunya")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "https://openalex.org/I9617848", got[0].ID)
	assert.Equal(t, "ES", got[0].CountryCode)
}

func TestLookupWorksByDOI(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/works", r.URL.Path)
		assert.Equal(t, "doi:10.1000/abc|10.1000/def", r.URL.Query().Get("filter"))
		fmt.Fprint(w, `{"results": [{"id": "https://openalex.org/W1", "doi": "https://doi.org/10.1000/abc"}]}`)
	})
	got, err := c.LookupWorksByDOI(context.Background(), []string{"10.1000/ABC", "https://doi.org/10.1000/def", "10.1000/abc", ""})
	require.NoError(t, err)
	assert.Equal(t, []types.WorkRef{{DOI: "10.1000/ABC", WorkID: "https://openalex.org/W1"}}, got)
}

func TestLookupAuthorships(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "openalex_id:W1", r.URL.Query().Get("filter"))
		fmt.Fprint(w, `{"results": [{"id": "https://openalex.org/W1", "authorships": [
			{"author": {"id": "https://openalex.org/A1"}},
			{"author": {}},
			{"author": {"id": "https://openalex.org/A3"}}
		]}]}`)
	})
	got, err := c.LookupAuthorships(context.Background(), []string{"https://openalex.org/W1"})
	require.NoError(t, err)
	assert.Equal(t, []types.Authorship{
		{WorkID: "https://openalex.org/W1", Position: types.IntPtr(1), AuthorID: "https://openalex.org/A1"},
		{WorkID: "https://openalex.org/W1", Position: types.IntPtr(3), AuthorID: "https://openalex.org/A3"},
	}, got)
}

func TestLookupAuthorDetails(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "openalex_id:A1|A2", r.URL.Query().Get("filter"))
		fmt.Fprint(w, `{"results": [{"id": "https://openalex.org/A1", "display_name": "Ana Ruiz", "display_name_alternatives": ["A. Ruiz"]}]}`)
	})
	got, err := c.LookupAuthorDetails(context.Background(), []string{"https://openalex.org/A1", "A2", "A1"})
	require.NoError(t, err)
	assert.Equal(t, []types.AuthorDetail{{AuthorID: "https://openalex.org/A1", DisplayName: "Ana Ruiz", Alternatives: []string{"A. Ruiz"}}}, got)
}

func TestBridgeLookups_EmptyInput(t *testing.T) {
	var calls int32
	c := serve(t, func(http.ResponseWriter, *http.Request) { atomic.AddInt32(&calls, 1) })
	ctx := context.Background()

	works, err := c.LookupWorksByDOI(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, works)

	auths, err := c.LookupAuthorships(ctx, []string{})
	require.NoError(t, err)
	assert.Empty(t, auths)

	details, err := c.LookupAuthorDetails(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, details)

	insts, err := c.SearchInstitutions(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, insts)

	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestLookupWorksByDOI_Batches(t *testing.T) {
	var mu sync.Mutex
	var sizes []int
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		f := strings.TrimPrefix(r.URL.Query().Get("filter"), "doi:")
		mu.Lock()
		sizes = append(sizes, len(strings.Split(f, "|")))
		mu.Unlock()
		fmt.Fprint(w, `{"results": []}`)
	})
	dois := make([]string, 120)
	for i := range dois {
		dois[i] = fmt.Sprintf("10.1/%d", i)
	}
	_, err := c.LookupWorksByDOI(context.Background(), dois)
	require.NoError(t, err)
	assert.Equal(t, []int{50, 50, 20}, sizes)
}

func TestLookupWorksByDOI_FailedBatchSkipped(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		batch := strings.Split(strings.TrimPrefix(r.URL.Query().Get("filter"), "doi:"), "|")
		if batch[0] == "10.1/50" {
			http.Error(w, "upstream timeout", http.StatusBadGateway)
			return
		}
		fmt.Fprintf(w, `{"results": [{"id": "https://openalex.org/W%d", "doi": "https://doi.org/%s"}]}`, len(batch), batch[0])
	})
	dois := make([]string, 120)
	for i := range dois {
		dois[i] = fmt.Sprintf("10.1/%d", i)
	}
	got, err := c.LookupWorksByDOI(context.Background(), dois)
	require.NoError(t, err)
	assert.Equal(t, []types.WorkRef{
		{DOI: "10.1/0", WorkID: "https://openalex.org/W50"},
		{DOI: "10.1/100", WorkID: "https://openalex.org/W20"},
	}, got)
}

func TestLookupAuthorships_FailedBatchSkipped(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Query().Get("filter"), "openalex_id:W0|") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"results": [{"id": "https://openalex.org/W99", "authorships": [{"author": {"id": "https://openalex.org/A1"}}]}]}`)
	})
	ids := make([]string, 60)
	for i := range ids {
		ids[i] = fmt.Sprintf("W%d", i)
	}
	got, err := c.LookupAuthorships(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, []types.Authorship{
		{WorkID: "https://openalex.org/W99", Position: types.IntPtr(1), AuthorID: "https://openalex.org/A1"},
	}, got)
}

func TestLookupAuthorDetails_Cancelled(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": []}`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.LookupAuthorDetails(ctx, []string{"A1"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestGetAuthorAndWorks(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/authors/A5023888391":
			fmt.Fprint(w, authorJSON)
		case r.URL.Path == "/works" && r.URL.Query().Get("cursor") == "*":
			assert.Equal(t, "author.id:A5023888391", r.URL.Query().Get("filter"))
			fmt.Fprint(w, `{"meta": {"next_cursor": "c2"}, "results": [
				{"id": "W1", "title": "One", "doi": "https://doi.org/10.1/one", "publication_year": 2020, "cited_by_count": 3}]}`)
		case r.URL.Path == "/works" && r.URL.Query().Get("cursor") == "c2":
			fmt.Fprint(w, `{"meta": {"next_cursor": "c3"}, "results": [
				{"id": "W2", "title": "Two", "cited_by_count": 4}]}`)
		case r.URL.Path == "/works" && r.URL.Query().Get("cursor") == "c3":
			fmt.Fprint(w, `{"meta": {"next_cursor": null}, "results": []}`)
		default:
			http.NotFound(w, r)
		}
	})

	a, err := c.GetAuthor(context.Background(), "https://openalex.org/A5023888391")
	require.NoError(t, err)
	assert.Equal(t, "Juan García López", a.DisplayName)

	works, err := c.AuthorWorks(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, []types.Work{
		{ID: "W1", Title: "One", DOI: "10.1/one", PublicationYear: 2020, CitedByCount: 3},
		{ID: "W2", Title: "Two", CitedByCount: 4},
	}, works)
}

func TestClient_RetriesTransient(t *testing.T) {
	var calls int32
	c := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"results": []}`)
	})
	_, err := c.SearchAuthors(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

type recordingObserver struct {
	mu     sync.Mutex
	events []string
}

func (o *recordingObserver) APIRequest(endpoint, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, endpoint+":"+outcome)
}

func TestClient_BadgerCache(t *testing.T) {
	var calls int32
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path == "/institutions" {
			fmt.Fprint(w, `{"results": [{"id": "I1"}]}`)
			return
		}
		fmt.Fprintf(w, `{"results": [%s]}`, authorJSON)
	})
	cache, err := OpenBadgerCache(filepath.Join(t.TempDir(), "cache"), time.Hour)
	require.NoError(t, err)
	defer cache.Close()
	c.Cache = cache
	obs := &recordingObserver{}
	c.Observer = obs

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		got, err := c.SearchAuthors(ctx, "juan garcia")
		require.NoError(t, err)
		require.Len(t, got, 1)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second author search is served from cache")

	for i := 0; i < 2; i++ {
		_, err := c.SearchInstitutions(ctx, "upc")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "institution searches bypass the cache")
	assert.Equal(t, []string{"authors:ok", "authors:cache_hit", "institutions:ok", "institutions:ok"}, obs.events)
}

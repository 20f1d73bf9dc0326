package tracking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solardash/internal/models"
	"solardash/internal/serp"
)

// memStore keeps competitors keyed by id, as the database does.
type memStore struct {
	mu          sync.Mutex
	competitors map[string]models.Competitor
	rankings    map[string][]models.CompetitorRanking
	upserts     int
	failUpsert  error
}

func newMemStore() *memStore {
	return &memStore{
		competitors: make(map[string]models.Competitor),
		rankings:    make(map[string][]models.CompetitorRanking),
	}
}

func (m *memStore) UpsertCompetitor(ctx context.Context, c *models.Competitor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpsert != nil {
		return m.failUpsert
	}
	m.upserts++
	m.competitors[c.ID] = *c
	return nil
}

func (m *memStore) ReplaceCompetitorRankings(ctx context.Context, location string, ids []string, rows []models.CompetitorRanking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		kept := m.rankings[id][:0]
		for _, r := range m.rankings[id] {
			if r.Location != location {
				kept = append(kept, r)
			}
		}
		m.rankings[id] = kept
	}
	for _, r := range rows {
		m.rankings[r.CompetitorID] = append(m.rankings[r.CompetitorID], r)
	}
	return nil
}

// failingSource fails every call after the first n.
type failingSource struct {
	inner serp.Source
	n     int
	calls int
}

func (f *failingSource) Search(ctx context.Context, query, location string) ([]serp.Result, error) {
	f.calls++
	if f.calls > f.n {
		return nil, errors.New("upstream blocked")
	}
	return f.inner.Search(ctx, query, location)
}

func (f *failingSource) Mode() string { return "failing" }

func newTestTracker(src serp.Source, store Store) *Tracker {
	return New(src, store, Options{Delay: -1, Seed: 7})
}

func domains(cs []models.Competitor) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Domain
	}
	return out
}

func TestTrack_RoundRockScenario(t *testing.T) {
	store := newMemStore()
	tr := newTestTracker(serp.NewSimulated(), store)

	res, err := tr.Track(context.Background(), Input{
		Area:           "Round Rock, TX",
		Keywords:       []string{"solar installation", "solar panels"},
		OperatorDomain: "https://www.hillcountrysolar.com/",
	})
	require.NoError(t, err)
	assert.Equal(t, StateDone, res.Run.State)
	assert.Empty(t, res.Run.Errors)

	got := domains(res.Competitors)
	assert.Equal(t, []string{
		"sunrun.com",
		"tesla.com",
		"sunpower.com",
		"freedomsolarpower.com",
		"semprasolar.com",
		"austinenergy.com",
		"homedepot.com",
		"txuenergy.com",
		"bluebonnetsolar.com",
		"lonestarsolarsystems.com",
		"costco.com",
	}, got)
	for _, denied := range []string{"youtube.com", "facebook.com", "yelp.com", "en.wikipedia.org", "energy.gov", "hillcountrysolar.com"} {
		assert.NotContains(t, got, denied)
	}

	// 2 discovery searches plus 11 competitors x 2 keywords.
	assert.Equal(t, 24, res.Run.SERPCalls)
	assert.Len(t, res.Rankings, 22)
	assert.Len(t, store.competitors, 11)

	sunrun := store.competitors["sunrun.com"]
	assert.Equal(t, "Sunrun", sunrun.Name)
	assert.Equal(t, models.BusinessInstaller, sunrun.BusinessType)
	assert.Equal(t, "Round Rock, TX", sunrun.Location)
	assert.Equal(t, models.BusinessEnergyCompany, store.competitors["tesla.com"].BusinessType)
	assert.Equal(t, models.BusinessRetailer, store.competitors["costco.com"].BusinessType)

	rows := store.rankings["sunpower.com"]
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].Position)
	assert.Equal(t, 4, *rows[0].Position)
}

func TestTrack_UpsertDoesNotDuplicate(t *testing.T) {
	store := newMemStore()
	tr := newTestTracker(serp.NewSimulated(), store)
	in := Input{Area: "Austin, TX", Keywords: []string{"solar installation"}}

	_, err := tr.Track(context.Background(), in)
	require.NoError(t, err)
	first := len(store.competitors)

	_, err = tr.Track(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first, len(store.competitors))
	assert.Equal(t, 2*first, store.upserts)
	for id, rows := range store.rankings {
		assert.Len(t, rows, 1, "rankings for %s should be replaced, not appended", id)
	}
}

func TestTrack_ManualDomains(t *testing.T) {
	store := newMemStore()
	tr := newTestTracker(serp.NewSimulated(), store)

	res, err := tr.Track(context.Background(), Input{
		Area:           "Austin, TX",
		Keywords:       []string{"solar installation"},
		OperatorDomain: "hillcountrysolar.com",
		ManualDomains:  []string{"https://www.Sunrun.com/", "hillcountrysolar.com", "sun-city-solar.com", "not a domain"},
	})
	require.NoError(t, err)

	byDomain := map[string]models.Competitor{}
	for _, c := range res.Competitors {
		byDomain[c.Domain] = c
	}

	assert.True(t, byDomain["sunrun.com"].Manual)
	assert.Equal(t, "Sunrun", byDomain["sunrun.com"].Name)

	// Manual entries are kept even when they match the operator's domain.
	require.Contains(t, byDomain, "hillcountrysolar.com")
	assert.True(t, byDomain["hillcountrysolar.com"].Manual)

	assert.Equal(t, "Sun City Solar", byDomain["sun-city-solar.com"].Name)
	assert.Len(t, res.Run.Errors, 1)
}

func TestTrack_SERPErrorsUseFallback(t *testing.T) {
	store := newMemStore()
	src := &failingSource{inner: serp.NewSimulated(), n: 1}
	tr := newTestTracker(src, store)

	res, err := tr.Track(context.Background(), Input{
		Area:     "Austin, TX",
		Keywords: []string{"solar installation"},
	})
	require.NoError(t, err)
	assert.Equal(t, StateDone, res.Run.State)

	require.NotEmpty(t, res.Rankings)
	assert.Equal(t, len(res.Rankings), res.Run.Fallbacks)
	assert.Len(t, res.Run.Errors, len(res.Rankings))
	for _, r := range res.Rankings {
		require.NotNil(t, r.Position)
		assert.GreaterOrEqual(t, *r.Position, 1)
		assert.LessOrEqual(t, *r.Position, serp.FallbackMaxPosition)
	}
}

func TestTrack_DiscoveryErrorIsRecorded(t *testing.T) {
	src := &failingSource{inner: serp.NewSimulated(), n: 0}
	res, err := newTestTracker(src, newMemStore()).Track(context.Background(), Input{
		Area:     "Austin, TX",
		Keywords: []string{"solar installation", "solar panels"},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Competitors)
	assert.Len(t, res.Run.Errors, 2)
	assert.Equal(t, StateDone, res.Run.State)
}

func TestTrack_Failures(t *testing.T) {
	t.Run("no keywords", func(t *testing.T) {
		res, err := newTestTracker(serp.NewSimulated(), newMemStore()).Track(context.Background(), Input{Area: "Austin, TX"})
		assert.ErrorIs(t, err, ErrNoKeywords)
		assert.True(t, IsConfigError(err))
		assert.Equal(t, StateFailed, res.Run.State)
	})

	t.Run("persistence", func(t *testing.T) {
		store := newMemStore()
		store.failUpsert = errors.New("db down")
		res, err := newTestTracker(serp.NewSimulated(), store).Track(context.Background(), Input{
			Area:     "Austin, TX",
			Keywords: []string{"solar installation"},
		})
		require.Error(t, err)
		assert.False(t, IsConfigError(err))
		assert.Equal(t, StateFailed, res.Run.State)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		res, err := newTestTracker(serp.NewSimulated(), newMemStore()).Track(ctx, Input{
			Area:     "Austin, TX",
			Keywords: []string{"solar installation"},
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, StateFailed, res.Run.State)
	})
}

func TestRefresh(t *testing.T) {
	store := newMemStore()
	tr := newTestTracker(serp.NewSimulated(), store)
	competitor := models.Competitor{ID: "tesla.com", Domain: "tesla.com", Name: "Tesla"}

	res, err := tr.Refresh(context.Background(), "Phoenix, AZ", []models.Competitor{competitor}, []string{"solar installation"})
	require.NoError(t, err)
	require.Len(t, res.Rankings, 1)
	require.NotNil(t, res.Rankings[0].Position)
	assert.Equal(t, 3, *res.Rankings[0].Position)
	// 7500 * 18.7 / 100
	assert.Equal(t, 1403, res.Rankings[0].EstimatedTraffic)
	assert.Len(t, store.rankings["tesla.com"], 1)
}

func TestTrackAll(t *testing.T) {
	store := newMemStore()
	tr := newTestTracker(serp.NewSimulated(), store)

	_, err := tr.TrackAll(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoBusinessConfig)

	_, err = tr.TrackAll(context.Background(), &models.BusinessConfig{})
	assert.ErrorIs(t, err, ErrNoServiceAreas)

	cfg := &models.BusinessConfig{
		Website:      "hillcountrysolar.com",
		ServiceAreas: []string{"Round Rock, TX", "Austin, TX"},
		Keywords:     models.NewKeywords([]string{"solar installation"}),
	}
	cfg.Keywords = cfg.Keywords.WithAreaKeywords("Austin, TX", []string{"solar panels austin"})

	out, err := tr.TrackAll(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, out.Areas, 2)
	assert.Equal(t, serp.ModeSimulated, out.Mode)
	assert.Equal(t, 1, out.Areas[0].Keywords)
	assert.Equal(t, 2, out.Areas[1].Keywords)
	assert.Equal(t, 11, out.Areas[0].Competitors)
	assert.Equal(t, StateDone, out.Areas[1].State)
	assert.Equal(t, out.Areas[0].Rankings+out.Areas[1].Rankings, out.Rankings)
}

func TestTrackAll_SharedCompetitorKeepsEveryArea(t *testing.T) {
	store := newMemStore()
	tr := newTestTracker(serp.NewSimulated(), store)
	cfg := &models.BusinessConfig{
		Website:      "hillcountrysolar.com",
		ServiceAreas: []string{"Round Rock, TX", "Austin, TX"},
		Keywords:     models.NewKeywords([]string{"solar installation"}),
	}

	_, err := tr.TrackAll(context.Background(), cfg)
	require.NoError(t, err)

	rows := store.rankings["sunrun.com"]
	require.Len(t, rows, 2)
	locations := []string{rows[0].Location, rows[1].Location}
	assert.ElementsMatch(t, cfg.ServiceAreas, locations)

	// A second pass replaces each area's rows in place.
	_, err = tr.TrackAll(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, store.rankings["sunrun.com"], 2)
}

func TestPace_WaitsBetweenCalls(t *testing.T) {
	tr := New(serp.NewSimulated(), newMemStore(), Options{Delay: time.Hour})
	p := tr.newPass("Austin, TX")

	require.NoError(t, p.pace(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.pace(ctx), context.Canceled)
}

func TestOnFinish_SeesTerminalState(t *testing.T) {
	var states []State
	tr := New(serp.NewSimulated(), newMemStore(), Options{
		Delay:    -1,
		Seed:     7,
		OnFinish: func(r *Run) { states = append(states, r.State) },
	})

	_, err := tr.Track(context.Background(), Input{Area: "Austin, TX", Keywords: []string{"solar installation"}})
	require.NoError(t, err)
	_, err = tr.Track(context.Background(), Input{Area: "Austin, TX"})
	require.Error(t, err)

	assert.Equal(t, []State{StateDone, StateFailed}, states)
}

func TestRefreshAll_GroupsByLocation(t *testing.T) {
	store := newMemStore()
	tr := newTestTracker(serp.NewSimulated(), store)

	_, err := tr.RefreshAll(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNoBusinessConfig)

	cfg := &models.BusinessConfig{
		ServiceAreas: []string{"Phoenix, AZ", "Austin, TX"},
		Keywords:     models.NewKeywords([]string{"solar installation"}),
	}
	cfg.Keywords = cfg.Keywords.WithAreaKeywords("Austin, TX", []string{"solar panels"})
	competitors := []models.Competitor{
		{ID: "tesla.com", Domain: "tesla.com", Location: "Phoenix, AZ"},
		{ID: "sunrun.com", Domain: "sunrun.com", Location: "Austin, TX"},
		{ID: "sunpower.com", Domain: "sunpower.com", Location: "Austin, TX"},
	}

	out, err := tr.RefreshAll(context.Background(), cfg, competitors)
	require.NoError(t, err)
	require.Len(t, out.Areas, 2)
	assert.Equal(t, "Austin, TX", out.Areas[0].Area)
	assert.Equal(t, 2, out.Areas[0].Keywords)
	assert.Equal(t, 4, out.Areas[0].Rankings)
	assert.Equal(t, "Phoenix, AZ", out.Areas[1].Area)
	assert.Equal(t, 1, out.Areas[1].Rankings)
	assert.Equal(t, 5, out.Rankings)
	assert.Len(t, store.rankings["sunrun.com"], 2)
}

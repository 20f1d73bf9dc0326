package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solardash/internal/models"
	"solardash/internal/serp"
	"solardash/internal/tracking"
)

type fakeReader struct {
	competitors []models.Competitor
	rankings    []models.CompetitorRanking
	current     []models.CurrentKeywordRanking
	err         error
}

func (f fakeReader) ListCompetitors(ctx context.Context) ([]models.Competitor, error) {
	return f.competitors, f.err
}

func (f fakeReader) CountCompetitorsByType(ctx context.Context) (map[string]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	counts := make(map[string]int)
	for _, c := range f.competitors {
		counts[c.BusinessType]++
	}
	return counts, nil
}

func (f fakeReader) ListCompetitorRankings(ctx context.Context) ([]models.CompetitorRanking, error) {
	return f.rankings, nil
}

func (f fakeReader) GetCurrentKeywordRankings(ctx context.Context, windowDays int) ([]models.CurrentKeywordRanking, error) {
	return f.current, nil
}

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

func TestCollector(t *testing.T) {
	reader := fakeReader{
		competitors: []models.Competitor{
			{ID: "sunrun.com", Domain: "sunrun.com", BusinessType: models.BusinessInstaller},
		},
		rankings: []models.CompetitorRanking{
			{CompetitorID: "sunrun.com", Keyword: "solar panels", Position: intPtr(1), EstimatedTraffic: 3408},
		},
		current: []models.CurrentKeywordRanking{
			{Area: "Phoenix, AZ", Keyword: "solar panels", AveragePosition: floatPtr(5.5)},
			{Area: "Phoenix, AZ", Keyword: "solar roof"},
		},
	}

	c := NewCollector(reader, 60)
	assert.Equal(t, 4, testutil.CollectAndCount(c))

	expected := `
# HELP solardash_keyword_average_position Average position of the business for a keyword over the recency window
# TYPE solardash_keyword_average_position gauge
solardash_keyword_average_position{area="Phoenix, AZ",keyword="solar panels"} 5.5
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "solardash_keyword_average_position"))

	counts := `
# HELP solardash_competitors Number of tracked competitors by business type
# TYPE solardash_competitors gauge
solardash_competitors{business_type="installer"} 1
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(counts), "solardash_competitors"))
}

func TestCollector_CompetitorErrorStillEmitsKeywords(t *testing.T) {
	reader := fakeReader{
		err: errors.New("db down"),
		current: []models.CurrentKeywordRanking{
			{Area: "Phoenix, AZ", Keyword: "solar panels", AveragePosition: floatPtr(2)},
		},
	}
	assert.Equal(t, 1, testutil.CollectAndCount(NewCollector(reader, 60)))
}

func TestInstrumentSource(t *testing.T) {
	src := InstrumentSource(serp.NewSimulated())
	assert.Equal(t, serp.ModeSimulated, src.Mode())

	before := testutil.ToFloat64(serpRequests.WithLabelValues(serp.ModeSimulated, "ok"))
	_, err := src.Search(context.Background(), "solar panels", "Phoenix, AZ")
	require.NoError(t, err)
	after := testutil.ToFloat64(serpRequests.WithLabelValues(serp.ModeSimulated, "ok"))
	assert.Equal(t, before+1, after)
}

func TestRecordRun(t *testing.T) {
	before := testutil.ToFloat64(trackingRuns.WithLabelValues(string(tracking.StateDone)))
	fallbacks := testutil.ToFloat64(trackingFallbacks)

	RecordRun(&tracking.Run{State: tracking.StateDone, Fallbacks: 2})
	RecordRun(nil)

	assert.Equal(t, before+1, testutil.ToFloat64(trackingRuns.WithLabelValues(string(tracking.StateDone))))
	assert.Equal(t, fallbacks+2, testutil.ToFloat64(trackingFallbacks))
}

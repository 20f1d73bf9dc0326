// Package tracking discovers competitors from search results, ranks them for
// the tracked keywords and summarizes the market.
package tracking

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"solardash/internal/models"
	"solardash/internal/serp"
	"solardash/internal/validation"
)

// DiscoveryMaxPosition is the deepest result considered when discovering competitors.
const DiscoveryMaxPosition = 20

// DefaultDelay is the pause between consecutive SERP calls in a run.
const DefaultDelay = time.Second

// Store persists competitors and their rankings.
type Store interface {
	UpsertCompetitor(ctx context.Context, c *models.Competitor) error
	ReplaceCompetitorRankings(ctx context.Context, location string, competitorIDs []string, rows []models.CompetitorRanking) error
}

// Options configures a Tracker.
type Options struct {
	// Delay between SERP calls. Zero uses DefaultDelay; negative disables it.
	Delay time.Duration
	// OperatorDomain is excluded from discovery unless an Input overrides it.
	OperatorDomain string
	// Seed for fallback positions. Zero seeds from the clock.
	Seed   int64
	Logger *slog.Logger
	// OnFinish is called with every Track and Refresh run once it is done or failed.
	OnFinish func(*Run)
}

// Tracker runs tracking passes. A Tracker is safe for concurrent use, but
// concurrent runs over the same competitors race on persistence and should be
// serialized by the caller.
type Tracker struct {
	src            serp.Source
	store          Store
	delay          time.Duration
	operatorDomain string
	seed           int64
	onFinish       func(*Run)
	logger         *slog.Logger
}

// New creates a Tracker.
func New(src serp.Source, store Store, opts Options) *Tracker {
	if opts.Delay == 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Tracker{
		src:            src,
		store:          store,
		delay:          opts.Delay,
		operatorDomain: validation.NormalizeDomain(opts.OperatorDomain),
		seed:           opts.Seed,
		onFinish:       opts.OnFinish,
		logger:         opts.Logger,
	}
}

// Mode reports the SERP source mode.
func (t *Tracker) Mode() string {
	return t.src.Mode()
}

func (t *Tracker) finish(run *Run) {
	if t.onFinish != nil {
		t.onFinish(run)
	}
}

// Input describes one tracking pass.
type Input struct {
	Area           string
	Keywords       []string
	ManualDomains  []string
	OperatorDomain string
}

// Result is the outcome of a tracking pass.
type Result struct {
	Run         *Run                       `json:"run"`
	Competitors []models.Competitor        `json:"competitors"`
	Rankings    []models.CompetitorRanking `json:"rankings"`
}

// pass carries per-run state.
type pass struct {
	*Tracker
	run   *Run
	rng   *rand.Rand
	calls int
}

func (t *Tracker) newPass(area string) *pass {
	seed := t.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &pass{
		Tracker: t,
		run:     newRun(area, t.logger),
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Track discovers competitors for the input keywords, ranks every competitor
// for every keyword and persists the results. SERP failures are recorded on
// the run and do not stop it; cancellation and persistence failures do.
func (t *Tracker) Track(ctx context.Context, in Input) (*Result, error) {
	p := t.newPass(validation.NormalizeArea(in.Area))
	res := &Result{Run: p.run}
	defer t.finish(p.run)

	keywords := normalizeKeywords(in.Keywords)
	if len(keywords) == 0 {
		return res, p.run.fail(ErrNoKeywords)
	}
	operator := validation.NormalizeDomain(in.OperatorDomain)
	if operator == "" {
		operator = t.operatorDomain
	}

	p.run.advance() // discovering
	competitors, err := p.discover(ctx, keywords, operator)
	if err != nil {
		return res, p.run.fail(err)
	}
	competitors = p.mergeManual(competitors, in.ManualDomains)
	res.Competitors = competitors

	p.run.advance() // ranking
	rankings, err := p.rank(ctx, competitors, keywords)
	if err != nil {
		return res, p.run.fail(err)
	}
	res.Rankings = rankings

	p.run.advance() // persisting
	if err := p.persist(ctx, competitors, rankings); err != nil {
		return res, p.run.fail(err)
	}

	p.run.advance() // done
	p.logger.Info("tracking run finished",
		"run_id", p.run.ID.String(),
		"area", p.run.Area,
		"competitors", len(competitors),
		"rankings", len(rankings),
		"serp_calls", p.run.SERPCalls,
		"errors", len(p.run.Errors),
	)
	return res, nil
}

// Refresh re-ranks already known competitors for keywords in area without
// running discovery.
func (t *Tracker) Refresh(ctx context.Context, area string, competitors []models.Competitor, keywords []string) (*Result, error) {
	p := t.newPass(validation.NormalizeArea(area))
	res := &Result{Run: p.run, Competitors: competitors}
	defer t.finish(p.run)

	keywords = normalizeKeywords(keywords)
	if len(keywords) == 0 {
		return res, p.run.fail(ErrNoKeywords)
	}

	p.run.advance() // discovering: nothing to discover
	p.run.advance() // ranking
	rankings, err := p.rank(ctx, competitors, keywords)
	if err != nil {
		return res, p.run.fail(err)
	}
	res.Rankings = rankings

	p.run.advance() // persisting
	if err := p.persist(ctx, competitors, rankings); err != nil {
		return res, p.run.fail(err)
	}
	p.run.advance() // done
	return res, nil
}

// Discover returns the competitors found in the top results for keywords in
// area, without ranking or persisting them.
func (t *Tracker) Discover(ctx context.Context, area string, keywords []string, operatorDomain string) ([]models.Competitor, *Run, error) {
	p := t.newPass(validation.NormalizeArea(area))
	operator := validation.NormalizeDomain(operatorDomain)
	if operator == "" {
		operator = t.operatorDomain
	}
	p.run.advance()
	competitors, err := p.discover(ctx, normalizeKeywords(keywords), operator)
	if err != nil {
		return nil, p.run, p.run.fail(err)
	}
	return competitors, p.run, nil
}

func (p *pass) discover(ctx context.Context, keywords []string, operator string) ([]models.Competitor, error) {
	seen := make(map[string]struct{})
	var competitors []models.Competitor

	for _, kw := range keywords {
		results, err := p.search(ctx, kw)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return competitors, ctxErr
			}
			p.run.recordError("search %q: %v", kw, err)
			continue
		}

		for _, r := range results {
			if r.Position < 1 || r.Position > DiscoveryMaxPosition {
				continue
			}
			host := r.Host()
			if !validation.ValidateDomain(host) || IsDenied(host) {
				continue
			}
			if operator != "" && validation.HostMatches(host, operator) {
				continue
			}
			if _, ok := seen[host]; ok {
				continue
			}
			seen[host] = struct{}{}
			competitors = append(competitors, models.Competitor{
				ID:           validation.DomainID(host),
				Domain:       host,
				Name:         CompetitorName(r.Title, host),
				Location:     p.run.Area,
				BusinessType: Classify(r.Title, r.Snippet),
			})
		}
	}
	return competitors, nil
}

// mergeManual adds operator-supplied competitor domains. They are kept even
// when they match the operator's own domain.
func (p *pass) mergeManual(competitors []models.Competitor, domains []string) []models.Competitor {
	index := make(map[string]int, len(competitors))
	for i, c := range competitors {
		index[c.Domain] = i
	}
	for _, raw := range domains {
		domain := validation.NormalizeDomain(raw)
		if !validation.ValidateDomain(domain) {
			p.run.recordError("invalid competitor domain %q", raw)
			continue
		}
		if i, ok := index[domain]; ok {
			competitors[i].Manual = true
			continue
		}
		index[domain] = len(competitors)
		competitors = append(competitors, models.Competitor{
			ID:           validation.DomainID(domain),
			Domain:       domain,
			Name:         NameFromDomain(domain),
			Location:     p.run.Area,
			BusinessType: models.BusinessRetailer,
			Manual:       true,
		})
	}
	return competitors
}

func (p *pass) rank(ctx context.Context, competitors []models.Competitor, keywords []string) ([]models.CompetitorRanking, error) {
	rows := make([]models.CompetitorRanking, 0, len(competitors)*len(keywords))
	for _, c := range competitors {
		for _, kw := range keywords {
			if err := p.pace(ctx); err != nil {
				return rows, err
			}
			p.run.SERPCalls++
			ranking, err := serp.FindDomainRanking(ctx, p.src, kw, c.Domain, p.run.Area)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return rows, ctxErr
				}
				p.run.recordError("rank %s for %q: %v", c.Domain, kw, err)
				p.run.Fallbacks++
				ranking = serp.FallbackRanking(p.rng, kw, p.run.Area)
			}
			rows = append(rows, models.CompetitorRanking{
				CompetitorID:     c.ID,
				Keyword:          kw,
				Position:         ranking.Position,
				URL:              ranking.URL,
				Title:            ranking.Title,
				EstimatedTraffic: ranking.EstimatedTraffic,
				Location:         p.run.Area,
				CheckedAt:        time.Now().UTC(),
			})
		}
	}
	return rows, nil
}

func (p *pass) persist(ctx context.Context, competitors []models.Competitor, rankings []models.CompetitorRanking) error {
	ids := make([]string, 0, len(competitors))
	for i := range competitors {
		if err := p.store.UpsertCompetitor(ctx, &competitors[i]); err != nil {
			return err
		}
		ids = append(ids, competitors[i].ID)
	}
	if len(ids) == 0 {
		return nil
	}
	return p.store.ReplaceCompetitorRankings(ctx, p.run.Area, ids, rankings)
}

func (p *pass) search(ctx context.Context, keyword string) ([]serp.Result, error) {
	if err := p.pace(ctx); err != nil {
		return nil, err
	}
	p.run.SERPCalls++
	return p.src.Search(ctx, keyword, p.run.Area)
}

// pace waits the configured delay before every SERP call after the first.
func (p *pass) pace(ctx context.Context) error {
	defer func() { p.calls++ }()
	if p.calls == 0 || p.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func normalizeKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = validation.NormalizeKeyword(kw)
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

// IsConfigError reports whether err comes from missing or invalid
// configuration rather than from a SERP or persistence failure.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrNoBusinessConfig) ||
		errors.Is(err, ErrNoServiceAreas) ||
		errors.Is(err, ErrNoKeywords)
}

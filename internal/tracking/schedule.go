package tracking

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"solardash/internal/models"
)

// AreaOutcome summarizes a tracking pass for one service area.
type AreaOutcome struct {
	Area        string   `json:"area"`
	RunID       string   `json:"runId"`
	State       State    `json:"state"`
	Keywords    int      `json:"keywords"`
	Competitors int      `json:"competitors"`
	Rankings    int      `json:"rankings"`
	Errors      []string `json:"errors"`
}

// ScheduleResult is the outcome of tracking every configured area.
type ScheduleResult struct {
	Mode        string        `json:"mode"`
	Areas       []AreaOutcome `json:"areas"`
	Competitors int           `json:"competitors"`
	Rankings    int           `json:"rankings"`
	Errors      []string      `json:"errors"`
}

// TrackAll runs a tracking pass for every service area in cfg. A failing area
// is recorded and the remaining areas still run; only cancellation stops the
// batch early.
func (t *Tracker) TrackAll(ctx context.Context, cfg *models.BusinessConfig) (*ScheduleResult, error) {
	if cfg == nil {
		return nil, ErrNoBusinessConfig
	}
	if len(cfg.ServiceAreas) == 0 {
		return nil, ErrNoServiceAreas
	}

	out := t.newScheduleResult()
	for _, area := range cfg.ServiceAreas {
		keywords := cfg.Keywords.ForArea(area)
		res, err := t.Track(ctx, Input{
			Area:           area,
			Keywords:       keywords,
			ManualDomains:  cfg.Keywords.CompetitorDomains(area),
			OperatorDomain: cfg.Website,
		})
		if err := out.record(area, len(keywords), res, err); err != nil {
			return out, err
		}
	}
	return out, nil
}

// RefreshAll re-ranks stored competitors area by area, using the keywords cfg
// configures for each competitor's location. Discovery is skipped.
func (t *Tracker) RefreshAll(ctx context.Context, cfg *models.BusinessConfig, competitors []models.Competitor) (*ScheduleResult, error) {
	if cfg == nil {
		return nil, ErrNoBusinessConfig
	}

	byArea := make(map[string][]models.Competitor)
	for _, c := range competitors {
		byArea[c.Location] = append(byArea[c.Location], c)
	}
	areas := make([]string, 0, len(byArea))
	for area := range byArea {
		areas = append(areas, area)
	}
	sort.Strings(areas)

	out := t.newScheduleResult()
	for _, area := range areas {
		keywords := cfg.Keywords.ForArea(area)
		res, err := t.Refresh(ctx, area, byArea[area], keywords)
		if err := out.record(area, len(keywords), res, err); err != nil {
			return out, err
		}
	}
	return out, nil
}

func (t *Tracker) newScheduleResult() *ScheduleResult {
	return &ScheduleResult{Mode: t.Mode(), Areas: []AreaOutcome{}, Errors: []string{}}
}

// record adds one area's outcome. It returns err only when the batch must
// stop because the context is done.
func (out *ScheduleResult) record(area string, keywords int, res *Result, err error) error {
	outcome := AreaOutcome{
		Area:        area,
		RunID:       res.Run.ID.String(),
		State:       res.Run.State,
		Keywords:    keywords,
		Competitors: len(res.Competitors),
		Rankings:    len(res.Rankings),
		Errors:      res.Run.Errors,
	}
	out.Areas = append(out.Areas, outcome)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		out.Errors = append(out.Errors, fmt.Sprintf("%s: %v", area, err))
		return nil
	}
	out.Competitors += outcome.Competitors
	out.Rankings += outcome.Rankings
	for _, e := range res.Run.Errors {
		out.Errors = append(out.Errors, fmt.Sprintf("%s: %s", area, e))
	}
	return nil
}

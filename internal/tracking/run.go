package tracking

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// State is the phase of a tracking run.
type State string

// Run states. A run moves forward through idle, discovering, ranking,
// persisting and done; failed can be entered from any state.
const (
	StateIdle        State = "idle"
	StateDiscovering State = "discovering"
	StateRanking     State = "ranking"
	StatePersisting  State = "persisting"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

var nextState = map[State]State{
	StateIdle:        StateDiscovering,
	StateDiscovering: StateRanking,
	StateRanking:     StatePersisting,
	StatePersisting:  StateDone,
}

// Run records the progress of one tracking pass for one area.
type Run struct {
	ID         uuid.UUID `json:"id"`
	Area       string    `json:"area"`
	State      State     `json:"state"`
	SERPCalls  int       `json:"serpCalls"`
	Fallbacks  int       `json:"fallbacks"`
	Errors     []string  `json:"errors"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt,omitzero"`

	logger *slog.Logger
}

func newRun(area string, logger *slog.Logger) *Run {
	id := uuid.New()
	return &Run{
		ID:        id,
		Area:      area,
		State:     StateIdle,
		Errors:    []string{},
		StartedAt: time.Now().UTC(),
		logger:    logger.With("run_id", id.String(), "area", area),
	}
}

// advance moves the run to its next state.
func (r *Run) advance() {
	next, ok := nextState[r.State]
	if !ok {
		panic(fmt.Sprintf("tracking: no transition from %s", r.State))
	}
	r.logger.Info("tracking run state", "from", r.State, "to", next)
	r.State = next
	if next == StateDone {
		r.FinishedAt = time.Now().UTC()
	}
}

// fail moves the run to failed and returns err wrapped with the phase it
// failed in.
func (r *Run) fail(err error) error {
	phase := r.State
	r.logger.Error("tracking run failed", "state", phase, "error", err)
	r.State = StateFailed
	r.FinishedAt = time.Now().UTC()
	return fmt.Errorf("tracking %s (%s): %w", r.Area, phase, err)
}

// recordError notes a non-fatal error; the run continues.
func (r *Run) recordError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.logger.Warn("tracking run error", "error", msg)
	r.Errors = append(r.Errors, msg)
}

package sync

import (
	"fmt"
	"strings"
	"time"

	"ncaab_v2/ingestion/internal/repository"

	"github.com/google/uuid"
)

const maxReportedErrors = 50

// RunReport collects counters and errors for one sync run. The worker
// logs it; cmd/update prints it.
type RunReport struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration

	EventsUpdated    int
	CompletedEvents  int
	SummariesFetched int
	TeamStatsRows    int
	PlayerStatsRows  int
	OddsRows         int
	PredictionRows   int
	LineScoreRows    int
	Backfilled       int
	RankingsUpdated  int
	StandingsUpdated int
	NewAthletes      int
	NewVenues        int

	Verification repository.VerificationCounts

	Errors []string
}

func newRunReport() *RunReport {
	return &RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}

// AddError records a non-fatal error, keeping the list bounded
func (r *RunReport) AddError(context string, err error) {
	if len(r.Errors) >= maxReportedErrors {
		return
	}
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", context, err))
}

// HasErrors reports whether any non-fatal error was recorded
func (r *RunReport) HasErrors() bool {
	return len(r.Errors) > 0
}

// Summary renders a human-readable run report
func (r *RunReport) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Sync run %s\n", r.RunID)
	fmt.Fprintf(&b, "  Started:            %s\n", r.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "  Duration:           %s\n", r.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "  Events updated:     %d (%d completed)\n", r.EventsUpdated, r.CompletedEvents)
	fmt.Fprintf(&b, "  Summaries fetched:  %d\n", r.SummariesFetched)
	fmt.Fprintf(&b, "  Team stat rows:     %d\n", r.TeamStatsRows)
	fmt.Fprintf(&b, "  Player stat rows:   %d\n", r.PlayerStatsRows)
	fmt.Fprintf(&b, "  Odds rows:          %d\n", r.OddsRows)
	fmt.Fprintf(&b, "  Prediction rows:    %d\n", r.PredictionRows)
	fmt.Fprintf(&b, "  Line score updates: %d\n", r.LineScoreRows)
	fmt.Fprintf(&b, "  Backfilled events:  %d\n", r.Backfilled)
	fmt.Fprintf(&b, "  Rankings rows:      %d\n", r.RankingsUpdated)
	fmt.Fprintf(&b, "  Standings rows:     %d\n", r.StandingsUpdated)
	fmt.Fprintf(&b, "  New athletes:       %d\n", r.NewAthletes)
	fmt.Fprintf(&b, "  New venues:         %d\n", r.NewVenues)

	fmt.Fprintf(&b, "  Verification:       ")
	if r.Verification.Clean() {
		fmt.Fprintf(&b, "clean\n")
	} else {
		fmt.Fprintf(&b, "%d without stats, %d without line scores, %d without scores\n",
			r.Verification.CompletedWithoutStats,
			r.Verification.CompletedWithoutLineScores,
			r.Verification.CompletedWithoutScores)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, "  Errors (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "    - %s\n", e)
		}
	}
	return b.String()
}

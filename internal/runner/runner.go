package runner

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"loadrun_srv/internal/domain/daterange"
	"loadrun_srv/internal/domain/template"
	"loadrun_srv/internal/warehouse"
)

// Progress receives one event per processed date plus a final summary.
type Progress interface {
	Step(date string, elapsed time.Duration)
	Done(total time.Duration)
}

// StepResult records the outcome of one date.
type StepResult struct {
	Date    string
	Elapsed time.Duration
}

// Result is the outcome of a whole run.
type Result struct {
	Steps []StepResult
	Total time.Duration
}

// Runner replays a date-parameterized statement once per day over an
// inclusive range, strictly in ascending order. One warehouse session is
// opened per date and released before the next date starts. The first
// failure aborts the run; rows inserted for earlier dates stay in place.
type Runner struct {
	Sessions warehouse.SessionFactory
	Logger   *logrus.Logger
}

// New builds a Runner.
func New(sessions warehouse.SessionFactory, logger *logrus.Logger) *Runner {
	return &Runner{Sessions: sessions, Logger: logger}
}

// Run executes the template for every date of the range. Cancellation is
// honored between dates only, never mid-statement.
func (r *Runner) Run(ctx context.Context, rng daterange.Range, tmpl template.Template, progress Progress) (Result, error) {
	var result Result
	start := time.Now()

	for _, date := range rng.Strings() {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		elapsed, err := r.runDate(ctx, tmpl, date)
		if err != nil {
			r.Logger.WithError(err).WithField("date", date).Error("Load step failed")
			return result, fmt.Errorf("date %s: %w", date, err)
		}

		result.Steps = append(result.Steps, StepResult{Date: date, Elapsed: elapsed})
		r.Logger.WithFields(logrus.Fields{
			"date":    date,
			"elapsed": elapsed,
		}).Debug("Load step completed")

		if progress != nil {
			progress.Step(date, elapsed)
		}
	}

	result.Total = time.Since(start)
	if progress != nil {
		progress.Done(result.Total)
	}
	return result, nil
}

// runDate scopes one session to one date.
func (r *Runner) runDate(ctx context.Context, tmpl template.Template, date string) (time.Duration, error) {
	session, err := r.Sessions.Open(ctx)
	if err != nil {
		return 0, err
	}
	defer session.Close()

	return session.Exec(ctx, tmpl.Render(date))
}

// ConsoleProgress writes the classic progress lines to w.
type ConsoleProgress struct {
	W io.Writer
}

// Step prints one line per inserted date.
func (p ConsoleProgress) Step(date string, elapsed time.Duration) {
	fmt.Fprintf(p.W, "Inserted: %s  Time Elapsed: %ss\n", date, formatSeconds(elapsed))
}

// Done prints the total-elapsed summary line.
func (p ConsoleProgress) Done(total time.Duration) {
	fmt.Fprintf(p.W, "Total Time Elapsed: %ss\n", formatSeconds(total))
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.2f", d.Seconds())
}

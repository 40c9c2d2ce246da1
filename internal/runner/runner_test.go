package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"loadrun_srv/internal/domain/daterange"
	"loadrun_srv/internal/domain/template"
	"loadrun_srv/internal/warehouse"
)

// fakeFactory records every opened session and the statements executed on it.
type fakeFactory struct {
	executed []string
	opened   int
	closed   int
	failOn   string // date substring that triggers an error
}

func (f *fakeFactory) Open(ctx context.Context) (warehouse.Session, error) {
	f.opened++
	return &fakeSession{factory: f}, nil
}

func (f *fakeFactory) Ping(ctx context.Context) error { return nil }

type fakeSession struct {
	factory *fakeFactory
	used    bool
}

func (s *fakeSession) Exec(ctx context.Context, query string) (time.Duration, error) {
	if s.used {
		return 0, errors.New("session used twice")
	}
	s.used = true
	if s.factory.failOn != "" && strings.Contains(query, s.factory.failOn) {
		return 0, errors.New("boom")
	}
	s.factory.executed = append(s.factory.executed, query)
	return 10 * time.Millisecond, nil
}

func (s *fakeSession) Close() error {
	s.factory.closed++
	return nil
}

func setupRunner(factory *fakeFactory) *Runner {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(factory, logger)
}

func mustTemplate(t *testing.T) template.Template {
	tmpl, err := template.New(`INSERT INTO tmp_daily SELECT * FROM events WHERE event_date = '{date}'`)
	assert.NoError(t, err)
	return tmpl
}

func mustRange(t *testing.T, start, end string) daterange.Range {
	rng, err := daterange.ParseRange(start, end)
	assert.NoError(t, err)
	return rng
}

func TestRunExecutesOneStatementPerDateInOrder(t *testing.T) {
	factory := &fakeFactory{}
	r := setupRunner(factory)

	result, err := r.Run(context.Background(),
		mustRange(t, "2016-08-17", "2016-08-20"), mustTemplate(t), nil)
	assert.NoError(t, err)

	assert.Equal(t, []string{
		`INSERT INTO tmp_daily SELECT * FROM events WHERE event_date = '2016-08-17'`,
		`INSERT INTO tmp_daily SELECT * FROM events WHERE event_date = '2016-08-18'`,
		`INSERT INTO tmp_daily SELECT * FROM events WHERE event_date = '2016-08-19'`,
		`INSERT INTO tmp_daily SELECT * FROM events WHERE event_date = '2016-08-20'`,
	}, factory.executed)
	assert.Len(t, result.Steps, 4)
	assert.Equal(t, "2016-08-17", result.Steps[0].Date)
	assert.Equal(t, "2016-08-20", result.Steps[3].Date)
}

func TestRunOpensAndClosesOneSessionPerDate(t *testing.T) {
	factory := &fakeFactory{}
	r := setupRunner(factory)

	_, err := r.Run(context.Background(),
		mustRange(t, "2016-08-17", "2016-08-20"), mustTemplate(t), nil)
	assert.NoError(t, err)

	assert.Equal(t, 4, factory.opened)
	assert.Equal(t, 4, factory.closed)
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	factory := &fakeFactory{failOn: "2016-08-19"}
	r := setupRunner(factory)

	result, err := r.Run(context.Background(),
		mustRange(t, "2016-08-17", "2016-08-20"), mustTemplate(t), nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "2016-08-19")

	// Dates before the failure were executed and are not rolled back.
	assert.Len(t, factory.executed, 2)
	assert.Len(t, result.Steps, 2)
	// The failing session is still released.
	assert.Equal(t, 3, factory.closed)
}

func TestRunHonorsCancellationBetweenDates(t *testing.T) {
	factory := &fakeFactory{}
	r := setupRunner(factory)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, mustRange(t, "2016-08-17", "2016-08-20"), mustTemplate(t), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, factory.executed)
}

func TestConsoleProgressFormat(t *testing.T) {
	factory := &fakeFactory{}
	r := setupRunner(factory)

	var buf bytes.Buffer
	_, err := r.Run(context.Background(),
		mustRange(t, "2016-08-17", "2016-08-18"), mustTemplate(t), ConsoleProgress{W: &buf})
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Regexp(t, `^Inserted: 2016-08-17  Time Elapsed: \d+\.\d{2}s$`, lines[0])
	assert.Regexp(t, `^Inserted: 2016-08-18  Time Elapsed: \d+\.\d{2}s$`, lines[1])
	assert.Regexp(t, `^Total Time Elapsed: \d+\.\d{2}s$`, lines[2])
}

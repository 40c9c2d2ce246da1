package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"loadrun_srv/internal/models"
	"loadrun_srv/internal/storage"
	"loadrun_srv/internal/warehouse"
)

// MockStorage is a mock implementation of the storage.Storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Save(ctx context.Context, key string, reader io.Reader) error {
	args := m.Called(ctx, key, reader)
	return args.Error(0)
}

func (m *MockStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) List(ctx context.Context, prefix string) ([]storage.FileInfo, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).([]storage.FileInfo), args.Error(1)
}

func (m *MockStorage) JoinPath(elem ...string) string {
	out := ""
	for i, e := range elem {
		if i > 0 {
			out += "/"
		}
		out += e
	}
	return out
}

// stubSessions is an always-succeeding warehouse.
type stubSessions struct {
	executed []string
}

func (s *stubSessions) Open(ctx context.Context) (warehouse.Session, error) {
	return &stubSession{parent: s}, nil
}

func (s *stubSessions) Ping(ctx context.Context) error { return nil }

type stubSession struct {
	parent *stubSessions
}

func (s *stubSession) Exec(ctx context.Context, query string) (time.Duration, error) {
	s.parent.executed = append(s.parent.executed, query)
	return time.Millisecond, nil
}

func (s *stubSession) Close() error { return nil }

func setupTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(&models.LoadRun{})
	assert.NoError(t, err)

	return db
}

func testRun() *models.LoadRun {
	return &models.LoadRun{
		Title:     "Daily events",
		Query:     `INSERT INTO tmp_daily SELECT * FROM events WHERE event_date = '{date}'`,
		StartDate: "2016-08-17",
		EndDate:   "2016-08-20",
		CreatedBy: "test-user",
		UpdatedBy: "test-user",
	}
}

func TestCreateRun(t *testing.T) {
	db := setupTestDB(t)
	mockStorage := new(MockStorage)
	mockStorage.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sessions := &stubSessions{}
	logger := setupTestLogger()
	service := NewLoadRunServiceFromDB(db, mockStorage, sessions, logger)

	run := testRun()
	err := service.CreateRun(context.Background(), run)
	assert.NoError(t, err)
	assert.NotZero(t, run.ID)
	assert.Equal(t, 4, run.DatesTotal)
}

func TestCreateRunRejectsBadRange(t *testing.T) {
	db := setupTestDB(t)
	mockStorage := new(MockStorage)
	sessions := &stubSessions{}
	logger := setupTestLogger()
	service := NewLoadRunServiceFromDB(db, mockStorage, sessions, logger)

	run := testRun()
	run.StartDate = "2016-08-20"
	run.EndDate = "2016-08-17"

	err := service.CreateRun(context.Background(), run)
	assert.Error(t, err)
}

func TestCreateRunRejectsBadTemplate(t *testing.T) {
	db := setupTestDB(t)
	mockStorage := new(MockStorage)
	sessions := &stubSessions{}
	logger := setupTestLogger()
	service := NewLoadRunServiceFromDB(db, mockStorage, sessions, logger)

	run := testRun()
	run.Query = "INSERT INTO tmp_daily SELECT 1" // no placeholder

	err := service.CreateRun(context.Background(), run)
	assert.Error(t, err)
}

func TestRunCompletesInBackground(t *testing.T) {
	db := setupTestDB(t)
	mockStorage := new(MockStorage)
	mockStorage.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sessions := &stubSessions{}
	logger := setupTestLogger()
	service := NewLoadRunServiceFromDB(db, mockStorage, sessions, logger)

	run := testRun()
	err := service.CreateRun(context.Background(), run)
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		got, err := service.GetRun(context.Background(), run.ID)
		return err == nil && got.Status == models.StatusCompleted
	}, 5*time.Second, 20*time.Millisecond)

	got, err := service.GetRun(context.Background(), run.ID)
	assert.NoError(t, err)
	assert.Equal(t, 4, got.DatesDone)
	assert.NotEmpty(t, got.FileKey)

	// One statement per date, ascending.
	assert.Equal(t, []string{
		`INSERT INTO tmp_daily SELECT * FROM events WHERE event_date = '2016-08-17'`,
		`INSERT INTO tmp_daily SELECT * FROM events WHERE event_date = '2016-08-18'`,
		`INSERT INTO tmp_daily SELECT * FROM events WHERE event_date = '2016-08-19'`,
		`INSERT INTO tmp_daily SELECT * FROM events WHERE event_date = '2016-08-20'`,
	}, sessions.executed)
}

func TestGetRun(t *testing.T) {
	db := setupTestDB(t)
	mockStorage := new(MockStorage)
	sessions := &stubSessions{}
	logger := setupTestLogger()
	service := NewLoadRunServiceFromDB(db, mockStorage, sessions, logger)

	run := testRun()
	run.Status = models.StatusCompleted
	err := db.Create(run).Error
	assert.NoError(t, err)

	retrieved, err := service.GetRun(context.Background(), run.ID)
	assert.NoError(t, err)
	assert.Equal(t, run.Title, retrieved.Title)
	assert.Equal(t, run.StartDate, retrieved.StartDate)
}

func TestGetRunNotFound(t *testing.T) {
	db := setupTestDB(t)
	mockStorage := new(MockStorage)
	sessions := &stubSessions{}
	logger := setupTestLogger()
	service := NewLoadRunServiceFromDB(db, mockStorage, sessions, logger)

	_, err := service.GetRun(context.Background(), 12345)
	assert.Error(t, err)
}

func TestListRuns(t *testing.T) {
	db := setupTestDB(t)
	mockStorage := new(MockStorage)
	sessions := &stubSessions{}
	logger := setupTestLogger()
	service := NewLoadRunServiceFromDB(db, mockStorage, sessions, logger)

	runs := []*models.LoadRun{testRun(), testRun()}
	runs[0].Status = models.StatusCompleted
	runs[1].Title = "Backfill 2016"
	runs[1].Status = models.StatusPending

	for _, r := range runs {
		assert.NoError(t, db.Create(r).Error)
	}

	result, err := service.ListRuns(context.Background(), ListRunParams{Page: 1, PageSize: 10})
	assert.NoError(t, err)
	assert.Len(t, result.Runs, 2)
	assert.Equal(t, int64(2), result.Total)

	status := models.StatusPending
	result, err = service.ListRuns(context.Background(), ListRunParams{Page: 1, PageSize: 10, Status: &status})
	assert.NoError(t, err)
	assert.Len(t, result.Runs, 1)
	assert.Equal(t, "Backfill 2016", result.Runs[0].Title)
}

func TestCancelPendingRun(t *testing.T) {
	db := setupTestDB(t)
	mockStorage := new(MockStorage)
	sessions := &stubSessions{}
	logger := setupTestLogger()
	service := NewLoadRunServiceFromDB(db, mockStorage, sessions, logger)

	run := testRun()
	run.Status = models.StatusPending
	assert.NoError(t, db.Create(run).Error)

	err := service.CancelRun(context.Background(), run.ID)
	assert.NoError(t, err)

	got, err := service.GetRun(context.Background(), run.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusCanceled, got.Status)
}

func TestCancelCompletedRunRejected(t *testing.T) {
	db := setupTestDB(t)
	mockStorage := new(MockStorage)
	sessions := &stubSessions{}
	logger := setupTestLogger()
	service := NewLoadRunServiceFromDB(db, mockStorage, sessions, logger)

	run := testRun()
	run.Status = models.StatusCompleted
	assert.NoError(t, db.Create(run).Error)

	err := service.CancelRun(context.Background(), run.ID)
	assert.Error(t, err)
}

func TestDeleteRun(t *testing.T) {
	db := setupTestDB(t)
	mockStorage := new(MockStorage)
	sessions := &stubSessions{}
	logger := setupTestLogger()
	service := NewLoadRunServiceFromDB(db, mockStorage, sessions, logger)

	run := testRun()
	run.Status = models.StatusCompleted
	run.FileKey = "runs/1/2016-08-17_2016-08-20.xlsx"
	assert.NoError(t, db.Create(run).Error)

	mockStorage.On("Delete", mock.Anything, run.FileKey).Return(nil)

	err := service.DeleteRun(context.Background(), run.ID)
	assert.NoError(t, err)

	var count int64
	db.Model(&models.LoadRun{}).Where("id = ?", run.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	mockStorage.AssertExpectations(t)
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, models.StatusPending.CanTransitionTo(models.StatusRunning))
	assert.True(t, models.StatusPending.CanTransitionTo(models.StatusCanceled))
	assert.True(t, models.StatusRunning.CanTransitionTo(models.StatusCompleted))
	assert.True(t, models.StatusRunning.CanTransitionTo(models.StatusFailed))
	assert.False(t, models.StatusCompleted.CanTransitionTo(models.StatusRunning))
	assert.False(t, models.StatusCanceled.CanTransitionTo(models.StatusRunning))
	assert.False(t, models.StatusFailed.CanTransitionTo(models.StatusPending))
}

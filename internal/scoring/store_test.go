package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mwhitfield/distress-engine/internal/logger"
	"github.com/mwhitfield/distress-engine/internal/models"
	"github.com/mwhitfield/distress-engine/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockScoreRepository is a mock implementation of ScoreRepository for testing
type MockScoreRepository struct {
	mock.Mock
}

func (m *MockScoreRepository) UpsertScore(ctx context.Context, s *models.DistressScore) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockScoreRepository) LatestScore(ctx context.Context, propertyID int64) (*models.DistressScore, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DistressScore), args.Error(1)
}

func (m *MockScoreRepository) ListLeads(ctx context.Context, f repository.LeadFilter) ([]models.Lead, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Lead), args.Error(1)
}

func newScore(propertyID int64, total float64, at time.Time) *models.DistressScore {
	return &models.DistressScore{
		PropertyID: propertyID,
		TotalScore: total,
		Tier:       TierFor(total),
		Urgency:    UrgencyFor(total),
		Qualified:  total >= 70,
		ScoreDate:  at,
	}
}

func TestSave_FirstScoreInserts(t *testing.T) {
	mockRepo := new(MockScoreRepository)
	store := NewStore(mockRepo, logger.New("test"))
	ctx := context.Background()

	score := newScore(1, 87, fixedNow)
	mockRepo.On("LatestScore", ctx, int64(1)).Return(nil, nil)
	mockRepo.On("UpsertScore", ctx, score).Return(nil)

	outcome, err := store.Save(ctx, score)

	require.NoError(t, err)
	assert.Equal(t, OutcomeSaved, outcome)
	mockRepo.AssertExpectations(t)
}

func TestSave_SameDayRescoreOverwrites(t *testing.T) {
	mockRepo := new(MockScoreRepository)
	store := NewStore(mockRepo, logger.New("test"))
	ctx := context.Background()

	// A row from earlier today exists with a different total; the new
	// score must overwrite it in place via the upsert.
	earlier := newScore(1, 80, fixedNow.Add(-3*time.Hour))
	score := newScore(1, 87, fixedNow)
	mockRepo.On("LatestScore", ctx, int64(1)).Return(earlier, nil)
	mockRepo.On("UpsertScore", ctx, score).Return(nil)

	outcome, err := store.Save(ctx, score)

	require.NoError(t, err)
	assert.Equal(t, OutcomeSaved, outcome)
	mockRepo.AssertExpectations(t)
}

func TestSave_SameDaySameScoreStillUpserts(t *testing.T) {
	mockRepo := new(MockScoreRepository)
	store := NewStore(mockRepo, logger.New("test"))
	ctx := context.Background()

	// Same day and same total: today's row is refreshed, not skipped, so
	// the row's timestamp tracks the latest run.
	earlier := newScore(1, 87, fixedNow.Add(-3*time.Hour))
	score := newScore(1, 87, fixedNow)
	mockRepo.On("LatestScore", ctx, int64(1)).Return(earlier, nil)
	mockRepo.On("UpsertScore", ctx, score).Return(nil)

	outcome, err := store.Save(ctx, score)

	require.NoError(t, err)
	assert.Equal(t, OutcomeSaved, outcome)
}

func TestSave_UnchangedAcrossDaysSkips(t *testing.T) {
	mockRepo := new(MockScoreRepository)
	store := NewStore(mockRepo, logger.New("test"))
	ctx := context.Background()

	yesterday := newScore(1, 87, fixedNow.AddDate(0, 0, -1))
	score := newScore(1, 87, fixedNow)
	mockRepo.On("LatestScore", ctx, int64(1)).Return(yesterday, nil)

	outcome, err := store.Save(ctx, score)

	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, outcome)
	mockRepo.AssertNotCalled(t, "UpsertScore", mock.Anything, mock.Anything)
}

func TestSave_ChangedAcrossDaysInserts(t *testing.T) {
	mockRepo := new(MockScoreRepository)
	store := NewStore(mockRepo, logger.New("test"))
	ctx := context.Background()

	yesterday := newScore(1, 80, fixedNow.AddDate(0, 0, -1))
	score := newScore(1, 87, fixedNow)
	mockRepo.On("LatestScore", ctx, int64(1)).Return(yesterday, nil)
	mockRepo.On("UpsertScore", ctx, score).Return(nil)

	outcome, err := store.Save(ctx, score)

	require.NoError(t, err)
	assert.Equal(t, OutcomeSaved, outcome)
}

func TestSave_LookupErrorPropagates(t *testing.T) {
	mockRepo := new(MockScoreRepository)
	store := NewStore(mockRepo, logger.New("test"))
	ctx := context.Background()

	dbErr := errors.New("connection reset")
	mockRepo.On("LatestScore", ctx, int64(1)).Return(nil, dbErr)

	_, err := store.Save(ctx, newScore(1, 87, fixedNow))

	assert.ErrorIs(t, err, dbErr)
	mockRepo.AssertNotCalled(t, "UpsertScore", mock.Anything, mock.Anything)
}

package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/mwhitfield/distress-engine/internal/config"
	"github.com/mwhitfield/distress-engine/internal/models"
	"github.com/mwhitfield/distress-engine/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPropertyRepository is a mock implementation of PropertyRepository for testing
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) FindByParcelID(ctx context.Context, parcelID string) (*models.Property, error) {
	args := m.Called(ctx, parcelID)
	return propertyResult(args)
}

func (m *MockPropertyRepository) FindByID(ctx context.Context, id int64) (*models.Property, error) {
	args := m.Called(ctx, id)
	return propertyResult(args)
}

func (m *MockPropertyRepository) FindByNormalizedAddress(ctx context.Context, key string) (*models.Property, error) {
	args := m.Called(ctx, key)
	return propertyResult(args)
}

func (m *MockPropertyRepository) AddressCandidates(ctx context.Context, limit int) ([]repository.AddressCandidate, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.AddressCandidate), args.Error(1)
}

func (m *MockPropertyRepository) FindByOwnerName(ctx context.Context, normalizedName string) (*models.Property, error) {
	args := m.Called(ctx, normalizedName)
	return propertyResult(args)
}

func (m *MockPropertyRepository) OwnerCandidatesByPattern(ctx context.Context, pattern string, limit int) ([]repository.OwnerCandidate, error) {
	args := m.Called(ctx, pattern, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.OwnerCandidate), args.Error(1)
}

func (m *MockPropertyRepository) OwnerCandidates(ctx context.Context, limit int) ([]repository.OwnerCandidate, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.OwnerCandidate), args.Error(1)
}

func (m *MockPropertyRepository) GetOwner(ctx context.Context, propertyID int64) (*models.Owner, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Owner), args.Error(1)
}

func (m *MockPropertyRepository) GetFinancial(ctx context.Context, propertyID int64) (*models.Financial, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Financial), args.Error(1)
}

func (m *MockPropertyRepository) UpsertProperty(ctx context.Context, p *models.Property) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPropertyRepository) UpsertOwner(ctx context.Context, o *models.Owner) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockPropertyRepository) UpsertFinancial(ctx context.Context, f *models.Financial) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func propertyResult(args mock.Arguments) (*models.Property, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func testMatchingConfig() config.MatchingConfig {
	return config.MatchingConfig{
		AddressThreshold:   85,
		OwnerThreshold:     75,
		AddressCandidates:  1000,
		OwnerPatternLimit:  50,
		OwnerFallbackLimit: 100,
	}
}

func TestResolve_ExactParcelID(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	resolver := New(mockRepo, testMatchingConfig())
	ctx := context.Background()

	expected := &models.Property{ID: 7, ParcelID: "U-12-34"}
	mockRepo.On("FindByParcelID", ctx, "U-12-34").Return(expected, nil)

	match, err := resolver.Resolve(ctx, Query{ParcelID: "U-12-34"})

	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, int64(7), match.Property.ID)
	assert.Equal(t, 100, match.Confidence)
	assert.Equal(t, TierParcelID, match.Tier)
	mockRepo.AssertExpectations(t)
}

func TestResolve_ExactAddressAfterParcelMiss(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	resolver := New(mockRepo, testMatchingConfig())
	ctx := context.Background()

	expected := &models.Property{ID: 9, ParcelID: "A-1"}
	mockRepo.On("FindByParcelID", ctx, "U-99-99").Return(nil, nil)
	mockRepo.On("FindByNormalizedAddress", ctx, "123 main st").Return(expected, nil)

	match, err := resolver.Resolve(ctx, Query{ParcelID: "U-99-99", Address: "123 main st"})

	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, TierExactAddress, match.Tier)
	assert.Equal(t, 100, match.Confidence)
	mockRepo.AssertExpectations(t)
}

func TestResolve_FuzzyAddress(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	resolver := New(mockRepo, testMatchingConfig())
	ctx := context.Background()

	mockRepo.On("FindByNormalizedAddress", ctx, "123 main st").Return(nil, nil)
	mockRepo.On("AddressCandidates", ctx, 1000).Return([]repository.AddressCandidate{
		{PropertyID: 1, NormalizedAddress: "999 oak ave"},
		{PropertyID: 2, NormalizedAddress: "123 mains st"},
	}, nil)
	mockRepo.On("FindByID", ctx, int64(2)).Return(&models.Property{ID: 2, ParcelID: "B-2"}, nil)

	match, err := resolver.Resolve(ctx, Query{Address: "123 main st"})

	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, TierFuzzyAddress, match.Tier)
	assert.Equal(t, int64(2), match.Property.ID)
	assert.GreaterOrEqual(t, match.Confidence, 85)
	mockRepo.AssertExpectations(t)
}

func TestResolve_FuzzyAddressTieGoesToLowestID(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	resolver := New(mockRepo, testMatchingConfig())
	ctx := context.Background()

	// Two candidates with identical normalized addresses score equally;
	// the lower property ID must win regardless of how often we run it.
	mockRepo.On("FindByNormalizedAddress", ctx, "123 main sta").Return(nil, nil)
	mockRepo.On("AddressCandidates", ctx, 1000).Return([]repository.AddressCandidate{
		{PropertyID: 3, NormalizedAddress: "123 main st"},
		{PropertyID: 8, NormalizedAddress: "123 main st"},
	}, nil)
	mockRepo.On("FindByID", ctx, int64(3)).Return(&models.Property{ID: 3, ParcelID: "C-3"}, nil)

	for i := 0; i < 5; i++ {
		match, err := resolver.Resolve(ctx, Query{Address: "123 main sta"})
		require.NoError(t, err)
		require.NotNil(t, match)
		assert.Equal(t, int64(3), match.Property.ID)
	}
}

func TestResolve_FuzzyAddressBelowThreshold(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	resolver := New(mockRepo, testMatchingConfig())
	ctx := context.Background()

	mockRepo.On("FindByNormalizedAddress", ctx, "123 main st").Return(nil, nil)
	mockRepo.On("AddressCandidates", ctx, 1000).Return([]repository.AddressCandidate{
		{PropertyID: 1, NormalizedAddress: "4875 gulf blvd"},
	}, nil)

	match, err := resolver.Resolve(ctx, Query{Address: "123 main st"})

	require.NoError(t, err)
	assert.Nil(t, match)
	mockRepo.AssertExpectations(t)
}

func TestResolve_ExactOwnerName(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	resolver := New(mockRepo, testMatchingConfig())
	ctx := context.Background()

	expected := &models.Property{ID: 4, ParcelID: "D-4"}
	mockRepo.On("FindByOwnerName", ctx, "JOHN SMITH").Return(expected, nil)

	match, err := resolver.Resolve(ctx, Query{OwnerName: "JOHN SMITH"})

	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, TierExactOwner, match.Tier)
	assert.Equal(t, 100, match.Confidence)
	mockRepo.AssertExpectations(t)
}

func TestResolve_PartialOwnerPattern(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	resolver := New(mockRepo, testMatchingConfig())
	ctx := context.Background()

	mockRepo.On("FindByOwnerName", ctx, "JOHN A SMITH").Return(nil, nil)
	mockRepo.On("OwnerCandidatesByPattern", ctx, "JOHN%SMITH", 50).Return([]repository.OwnerCandidate{
		{PropertyID: 5, NormalizedName: "SMITH JOHN"},
	}, nil)
	mockRepo.On("FindByID", ctx, int64(5)).Return(&models.Property{ID: 5, ParcelID: "E-5"}, nil)

	match, err := resolver.Resolve(ctx, Query{OwnerName: "JOHN A SMITH"})

	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, TierPartialOwner, match.Tier)
	assert.GreaterOrEqual(t, match.Confidence, 75)
	mockRepo.AssertExpectations(t)
}

func TestResolve_OwnerFallbackScan(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	resolver := New(mockRepo, testMatchingConfig())
	ctx := context.Background()

	mockRepo.On("FindByOwnerName", ctx, "JOHN SMITH").Return(nil, nil)
	mockRepo.On("OwnerCandidatesByPattern", ctx, "JOHN%SMITH", 50).Return([]repository.OwnerCandidate{}, nil)
	mockRepo.On("OwnerCandidates", ctx, 100).Return([]repository.OwnerCandidate{
		{PropertyID: 6, NormalizedName: "SMITH JOHN"},
	}, nil)
	mockRepo.On("FindByID", ctx, int64(6)).Return(&models.Property{ID: 6, ParcelID: "F-6"}, nil)

	match, err := resolver.Resolve(ctx, Query{OwnerName: "JOHN SMITH"})

	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, TierOwnerScan, match.Tier)
	mockRepo.AssertExpectations(t)
}

func TestResolve_NoMatch(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	resolver := New(mockRepo, testMatchingConfig())
	ctx := context.Background()

	mockRepo.On("FindByParcelID", ctx, "X").Return(nil, nil)
	mockRepo.On("FindByNormalizedAddress", ctx, "1 nowhere ln").Return(nil, nil)
	mockRepo.On("AddressCandidates", ctx, 1000).Return([]repository.AddressCandidate{}, nil)
	mockRepo.On("FindByOwnerName", ctx, "NOBODY HOME").Return(nil, nil)
	mockRepo.On("OwnerCandidatesByPattern", ctx, "NOBODY%HOME", 50).Return([]repository.OwnerCandidate{}, nil)
	mockRepo.On("OwnerCandidates", ctx, 100).Return([]repository.OwnerCandidate{}, nil)

	match, err := resolver.Resolve(ctx, Query{
		ParcelID:  "X",
		Address:   "1 nowhere ln",
		OwnerName: "NOBODY HOME",
	})

	require.NoError(t, err)
	assert.Nil(t, match)
	mockRepo.AssertExpectations(t)
}

func TestResolve_RepositoryErrorPropagates(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	resolver := New(mockRepo, testMatchingConfig())
	ctx := context.Background()

	dbErr := errors.New("connection reset")
	mockRepo.On("FindByParcelID", ctx, "U-1").Return(nil, dbErr)

	match, err := resolver.Resolve(ctx, Query{ParcelID: "U-1"})

	assert.Nil(t, match)
	assert.ErrorIs(t, err, dbErr)
	mockRepo.AssertExpectations(t)
}

func TestResolve_EmptyQuerySkipsAllTiers(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	resolver := New(mockRepo, testMatchingConfig())

	match, err := resolver.Resolve(context.Background(), Query{})

	require.NoError(t, err)
	assert.Nil(t, match)
	mockRepo.AssertExpectations(t)
}

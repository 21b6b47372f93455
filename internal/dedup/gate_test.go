package dedup

import (
	"context"
	"fmt"
	"testing"

	"github.com/mwhitfield/distress-engine/internal/logger"
	"github.com/mwhitfield/distress-engine/internal/models"
	"github.com/mwhitfield/distress-engine/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSignalRepository is a mock implementation of SignalRepository for testing
type MockSignalRepository struct {
	mock.Mock
}

func (m *MockSignalRepository) ExistingKeys(ctx context.Context, table, column string, filters ...repository.KeyFilter) (map[string]struct{}, error) {
	args := m.Called(ctx, table, column, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

func (m *MockSignalRepository) LegalAndLiensByProperty(ctx context.Context, propertyID int64) ([]models.LegalAndLien, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LegalAndLien), args.Error(1)
}

func (m *MockSignalRepository) ProceedingsByProperty(ctx context.Context, propertyID int64) ([]models.LegalProceeding, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LegalProceeding), args.Error(1)
}

func (m *MockSignalRepository) TaxDelinquenciesByProperty(ctx context.Context, propertyID int64) ([]models.TaxDelinquency, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TaxDelinquency), args.Error(1)
}

func (m *MockSignalRepository) PermitsByProperty(ctx context.Context, propertyID int64) ([]models.BuildingPermit, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BuildingPermit), args.Error(1)
}

func (m *MockSignalRepository) ForeclosuresByProperty(ctx context.Context, propertyID int64) ([]models.Foreclosure, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Foreclosure), args.Error(1)
}

func (m *MockSignalRepository) InsertSignals(ctx context.Context, stmts []repository.InsertStatement, batchSize int) error {
	args := m.Called(ctx, stmts, batchSize)
	return args.Error(0)
}

func (m *MockSignalRepository) ViolationsByProperty(ctx context.Context, propertyID int64) ([]models.CodeViolation, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CodeViolation), args.Error(1)
}

func (m *MockSignalRepository) PropertyIDsWithViolations(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func TestFilterNew_PartialOverlap(t *testing.T) {
	mockRepo := new(MockSignalRepository)
	gate := NewGate(mockRepo, logger.New("test"))
	ctx := context.Background()

	// 3 of 10 identity values already exist; exactly 7 must survive.
	existing := map[string]struct{}{
		"REC-002": {},
		"REC-005": {},
		"REC-008": {},
	}
	mockRepo.On("ExistingKeys", ctx, "code_violations", "record_number", mock.Anything).Return(existing, nil)

	rows := make([]models.Row, 0, 10)
	for i := 1; i <= 10; i++ {
		rows = append(rows, models.Row{"Record Number": fmt.Sprintf("REC-%03d", i)})
	}

	kept, skipped, err := gate.FilterNew(ctx, rows, "code_violations", "record_number", "Record Number")

	require.NoError(t, err)
	assert.Len(t, kept, 7)
	assert.Equal(t, 3, skipped)
	for _, row := range kept {
		key := row.Get("Record Number")
		assert.NotContains(t, existing, key)
	}
	mockRepo.AssertExpectations(t)
}

func TestFilterNew_SecondPassIsEmpty(t *testing.T) {
	mockRepo := new(MockSignalRepository)
	gate := NewGate(mockRepo, logger.New("test"))
	ctx := context.Background()

	rows := []models.Row{
		{"Record Number": "REC-001"},
		{"Record Number": "REC-002"},
	}

	// First pass: store is empty, everything is new.
	mockRepo.On("ExistingKeys", ctx, "code_violations", "record_number", mock.Anything).
		Return(map[string]struct{}{}, nil).Once()

	kept, skipped, err := gate.FilterNew(ctx, rows, "code_violations", "record_number", "Record Number")
	require.NoError(t, err)
	assert.Len(t, kept, 2)
	assert.Equal(t, 0, skipped)

	// Second pass: first pass has been persisted, nothing is new.
	mockRepo.On("ExistingKeys", ctx, "code_violations", "record_number", mock.Anything).
		Return(map[string]struct{}{"REC-001": {}, "REC-002": {}}, nil).Once()

	kept, skipped, err = gate.FilterNew(ctx, rows, "code_violations", "record_number", "Record Number")
	require.NoError(t, err)
	assert.Empty(t, kept)
	assert.Equal(t, 2, skipped)
	mockRepo.AssertExpectations(t)
}

func TestFilterNew_InBatchDuplicates(t *testing.T) {
	mockRepo := new(MockSignalRepository)
	gate := NewGate(mockRepo, logger.New("test"))
	ctx := context.Background()

	mockRepo.On("ExistingKeys", ctx, "code_violations", "record_number", mock.Anything).
		Return(map[string]struct{}{}, nil)

	rows := []models.Row{
		{"Record Number": "REC-001"},
		{"Record Number": "REC-001"},
		{"Record Number": "REC-002"},
	}

	kept, skipped, err := gate.FilterNew(ctx, rows, "code_violations", "record_number", "Record Number")

	require.NoError(t, err)
	assert.Len(t, kept, 2)
	assert.Equal(t, 1, skipped)
}

func TestFilterNew_ExtraFiltersNarrowExistingKeys(t *testing.T) {
	mockRepo := new(MockSignalRepository)
	gate := NewGate(mockRepo, logger.New("test"))
	ctx := context.Background()

	// Tax accounts repeat across years, so the seen-set is narrowed to the
	// year being loaded.
	yearFilter := repository.KeyFilter{Column: "tax_year", Value: 2023}
	mockRepo.On("ExistingKeys", ctx, "tax_delinquencies", "account_number", []repository.KeyFilter{yearFilter}).
		Return(map[string]struct{}{"ACCT-001": {}}, nil)

	rows := []models.Row{
		{"Account Number": "ACCT-001"},
		{"Account Number": "ACCT-002"},
	}

	kept, skipped, err := gate.FilterNew(ctx, rows, "tax_delinquencies", "account_number", "Account Number", yearFilter)

	require.NoError(t, err)
	assert.Len(t, kept, 1)
	assert.Equal(t, "ACCT-002", kept[0].Get("Account Number"))
	assert.Equal(t, 1, skipped)
	mockRepo.AssertExpectations(t)
}

func TestFilterNew_MissingIdentityColumnFailsLoudly(t *testing.T) {
	mockRepo := new(MockSignalRepository)
	gate := NewGate(mockRepo, logger.New("test"))
	ctx := context.Background()

	rows := []models.Row{
		{"Address": "123 Main St"},
		{"Address": "456 Oak Ave"},
	}

	kept, skipped, err := gate.FilterNew(ctx, rows, "code_violations", "record_number", "Record Number")

	assert.Nil(t, kept)
	assert.Equal(t, 0, skipped)
	assert.ErrorIs(t, err, ErrIdentityColumnMissing)
	// The store must not be consulted for a misconfigured batch.
	mockRepo.AssertNotCalled(t, "ExistingKeys", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFilterNew_BlankIdentityValuePassesThrough(t *testing.T) {
	mockRepo := new(MockSignalRepository)
	gate := NewGate(mockRepo, logger.New("test"))
	ctx := context.Background()

	mockRepo.On("ExistingKeys", ctx, "code_violations", "record_number", mock.Anything).
		Return(map[string]struct{}{"REC-001": {}}, nil)

	rows := []models.Row{
		{"Record Number": "REC-001"},
		{"Record Number": ""},
	}

	kept, skipped, err := gate.FilterNew(ctx, rows, "code_violations", "record_number", "Record Number")

	require.NoError(t, err)
	assert.Len(t, kept, 1)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, "", kept[0].Get("Record Number"))
}

func TestFilterNew_EmptyBatch(t *testing.T) {
	mockRepo := new(MockSignalRepository)
	gate := NewGate(mockRepo, logger.New("test"))

	kept, skipped, err := gate.FilterNew(context.Background(), nil, "code_violations", "record_number", "Record Number")

	require.NoError(t, err)
	assert.Empty(t, kept)
	assert.Equal(t, 0, skipped)
	mockRepo.AssertNotCalled(t, "ExistingKeys", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

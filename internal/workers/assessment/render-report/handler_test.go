package renderreport

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"move-improve-workers/internal/common/errors"
	"move-improve-workers/internal/common/logger"
	"move-improve-workers/internal/common/validation"
	"move-improve-workers/internal/scoring"
	"move-improve-workers/internal/store"
	"move-improve-workers/pkg/registry"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) LoadBundle(ctx context.Context, sessionID string) (*scoring.Bundle, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scoring.Bundle), args.Error(1)
}

func (m *MockStore) SaveResult(ctx context.Context, sessionID string, res *scoring.ScoreResult) (*store.StoredResult, error) {
	args := m.Called(ctx, sessionID, res)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.StoredResult), args.Error(1)
}

func (m *MockStore) GetResult(ctx context.Context, sessionID string) (*store.StoredResult, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.StoredResult), args.Error(1)
}

func (m *MockStore) SessionVersion(ctx context.Context, sessionID string) (string, error) {
	args := m.Called(ctx, sessionID)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Categories(ctx context.Context, versionID string) ([]scoring.Category, error) {
	args := m.Called(ctx, versionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]scoring.Category), args.Error(1)
}

func (m *MockStore) ListVersions(ctx context.Context, limit int) ([]scoring.Version, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]scoring.Version), args.Error(1)
}

func (m *MockStore) ActiveVersion(ctx context.Context) (*scoring.Version, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scoring.Version), args.Error(1)
}

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:           key,
		Type:          TaskType,
		BpmnProcessId: "assessment",
		ElementId:     "Activity_RenderReport",
		CustomHeaders: "{}",
		Worker:        "test-worker",
		Retries:       3,
		Variables:     string(variablesJSON),
	}}
}

func scoredResult(t *testing.T) *store.StoredResult {
	t.Helper()
	b := scoring.SampleBundle()
	b.Answers = []scoring.Answer{
		{QuestionID: "q1", Value: scoring.NumberAnswer(10)},
		{QuestionID: "q2", Value: scoring.NumberAnswer(10)},
		{QuestionID: "q3", Value: scoring.NAAnswer()},
	}
	res, err := scoring.NewEngine().Compute(b)
	require.NoError(t, err)

	return &store.StoredResult{
		ID:        uuid.MustParse("9c1f3a52-6a0e-4d55-9e6b-3f1a2b7c8d90"),
		SessionID: "s-1",
		VersionID: "v1",
		Result:    res,
		CreatedAt: time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC),
	}
}

func newTestHandler(t *testing.T, deps Dependencies) *Handler {
	h := NewHandler(&Config{Timeout: 5 * time.Second}, deps, logger.NewTestLogger(t))
	h.now = func() time.Time { return time.Date(2026, 10, 2, 8, 0, 0, 0, time.UTC) }
	return h
}

func TestExecute_RendersStoredResult(t *testing.T) {
	ms := new(MockStore)
	ms.On("GetResult", mock.Anything, "s-1").Return(scoredResult(t), nil)
	ms.On("Categories", mock.Anything, "v1").Return(scoring.SampleBundle().Categories, nil)

	out, err := newTestHandler(t, Dependencies{Store: ms}).Execute(context.Background(), &Input{SessionID: "s-1"})
	require.NoError(t, err)

	assert.Equal(t, FormatText, out.Format)
	assert.Equal(t, scoring.DecisionImprove, out.Decision)
	assert.Contains(t, out.Report, "Assessment ID: s-1")
	assert.Contains(t, out.Report, "Date: 2026-10-01")
	assert.Contains(t, out.Report, "Motivation & Life Stage")
	assert.Contains(t, out.Report, "Financial Considerations\nCost, income, and economic factors\n  Improve: 0.00\n  Move: 0.00\n  Leans: Neutral (0.00)\n  No questions answered in this category")
	assert.Contains(t, out.Report, "Generated on Fri, 02 Oct 2026 08:00:00 UTC")
	ms.AssertExpectations(t)
}

func TestExecute_PrefersCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := store.NewRedisResultCache(client, time.Hour, "")
	require.NoError(t, cache.Set(context.Background(), scoredResult(t)))

	ms := new(MockStore)
	ms.On("Categories", mock.Anything, "v1").Return(scoring.SampleBundle().Categories, nil)

	out, err := newTestHandler(t, Dependencies{Store: ms, Cache: cache}).Execute(context.Background(), &Input{SessionID: "s-1"})
	require.NoError(t, err)
	assert.Equal(t, scoring.DecisionImprove, out.Decision)
	ms.AssertNotCalled(t, "GetResult", mock.Anything, mock.Anything)
}

func TestExecute_CacheErrorFallsBackToStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	ms := new(MockStore)
	ms.On("GetResult", mock.Anything, "s-1").Return(scoredResult(t), nil)
	ms.On("Categories", mock.Anything, "v1").Return(scoring.SampleBundle().Categories, nil)

	cache := store.NewRedisResultCache(client, time.Hour, "")
	out, err := newTestHandler(t, Dependencies{Store: ms, Cache: cache}).Execute(context.Background(), &Input{SessionID: "s-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Report)
	ms.AssertExpectations(t)
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*MockStore)
		code  errors.ErrorCode
	}{
		{
			name: "no result yet",
			setup: func(ms *MockStore) {
				ms.On("GetResult", mock.Anything, "s-1").Return(nil, errors.NewResultNotFoundError("s-1"))
			},
			code: errors.ErrCodeResultNotFound,
		},
		{
			name: "categories unavailable",
			setup: func(ms *MockStore) {
				ms.On("GetResult", mock.Anything, "s-1").Return(scoredResult(t), nil)
				ms.On("Categories", mock.Anything, "v1").
					Return(nil, errors.NewQueryTimeoutError("categories"))
			},
			code: errors.ErrCodeQueryTimeout,
		},
		{
			name: "stored row without result",
			setup: func(ms *MockStore) {
				ms.On("GetResult", mock.Anything, "s-1").Return(&store.StoredResult{SessionID: "s-1", VersionID: "v1"}, nil)
			},
			code: errors.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := new(MockStore)
			tt.setup(ms)

			_, err := newTestHandler(t, Dependencies{Store: ms}).Execute(context.Background(), &Input{SessionID: "s-1"})
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}

func TestExecute_MissingPayloadIsNotRetried(t *testing.T) {
	ms := new(MockStore)
	ms.On("GetResult", mock.Anything, "s-1").Return(&store.StoredResult{SessionID: "s-1", VersionID: "v1"}, nil)

	_, err := newTestHandler(t, Dependencies{Store: ms}).Execute(context.Background(), &Input{SessionID: "s-1"})
	require.Error(t, err)

	stdErr, ok := errors.AsStandard(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInternal, stdErr.Code)
	assert.Contains(t, stdErr.Details, "no score payload")
	assert.Zero(t, errors.ConvertToBPMNError(stdErr).Retries)
	ms.AssertNotCalled(t, "Categories", mock.Anything, mock.Anything)
}

func TestParseInput(t *testing.T) {
	validator, err := validation.NewSchemaValidator(registry.Default())
	require.NoError(t, err)
	h := newTestHandler(t, Dependencies{Validator: validator})

	input, err := h.parseInput(createMockJob(1, map[string]interface{}{"sessionId": "s-1", "decision": "Move"}))
	require.NoError(t, err)
	assert.Equal(t, "s-1", input.SessionID)

	_, err = h.parseInput(createMockJob(2, map[string]interface{}{"sessionId": ""}))
	assert.True(t, errors.HasCode(err, errors.ErrCodeInputValidationFailed))

	job := createMockJob(3, nil)
	job.Variables = "not json"
	_, err = h.parseInput(job)
	assert.True(t, errors.HasCode(err, errors.ErrCodeParseError))
}

func TestParseInput_WithoutValidator(t *testing.T) {
	h := newTestHandler(t, Dependencies{})

	_, err := h.parseInput(createMockJob(1, map[string]interface{}{"sessionId": 7}))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInputValidationFailed))
}

// internal/workers/assessment/compute-score/handler.go
package computescore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"move-improve-workers/internal/common/errors"
	"move-improve-workers/internal/common/logger"
	"move-improve-workers/internal/common/metrics"
	"move-improve-workers/internal/common/observability"
	"move-improve-workers/internal/common/validation"
	"move-improve-workers/internal/scoring"
	"move-improve-workers/internal/store"
	"move-improve-workers/pkg/registry"
)

const (
	TaskType = registry.TaskComputeScore
)

type Dependencies struct {
	Store         store.Store
	Cache         store.ResultCache // optional
	Validator     *validation.SchemaValidator
	Observability *observability.Observability
}

type Handler struct {
	config       *Config
	engine       *scoring.Engine
	store        store.Store
	cache        store.ResultCache
	validator    *validation.SchemaValidator
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	var opts []scoring.Option
	if config.RequireAnswers {
		opts = append(opts, scoring.WithRequiredAnswers())
	}
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       scoring.NewEngine(opts...),
		store:        deps.Store,
		cache:        deps.Cache,
		validator:    deps.Validator,
		obs:          deps.Observability,
		errorHandler: errors.NewErrorHandler(scoped),
		logger:       scoped,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()
	ctx, span := observability.StartJobSpan(ctx, TaskType, job.Key, job.ProcessInstanceKey)

	output, err := h.run(ctx, job)
	observability.EndJobSpan(span, err)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.CodeOf(err))).Inc()
		h.obs.RecordJobProcessed(ctx, TaskType, "failed")
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "completed")
}

func (h *Handler) run(ctx context.Context, job entities.Job) (*Output, error) {
	input, err := h.parseInput(job)
	if err != nil {
		return nil, err
	}
	return h.execute(ctx, input)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	if h.validator != nil {
		vars, err := job.GetVariablesAsMap()
		if err != nil {
			return nil, errors.NewParseError(err)
		}
		if err := h.validator.Validate(TaskType, vars); err != nil {
			return nil, err
		}
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, errors.NewParseError(err)
	}
	if input.SessionID == "" {
		return nil, errors.NewInputValidationFailedError("sessionId is required")
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("session.id", input.SessionID))

	if cached := h.lookupCache(ctx, input.SessionID); cached != nil {
		span.SetAttributes(attribute.Bool("result.cached", true))
		return outputOf(cached, true), nil
	}

	bundle := input.Bundle
	if bundle == nil {
		var err error
		if bundle, err = h.store.LoadBundle(ctx, input.SessionID); err != nil {
			return nil, err
		}
	}

	res, err := h.engine.Compute(bundle)
	if err != nil {
		h.logger.Warn("score computation rejected", map[string]interface{}{
			"sessionId": input.SessionID,
			"errorCode": string(errors.CodeOf(err)),
			"error":     err,
		})
		return nil, err
	}

	if input.Bundle != nil {
		if err := h.checkInlineVersion(ctx, input.SessionID, res.Metadata.VersionID); err != nil {
			return nil, err
		}
	}

	stored, err := h.store.SaveResult(ctx, input.SessionID, res)
	if errors.HasCode(err, errors.ErrCodeResultAlreadyExists) {
		// A redelivered job: the first result stands.
		stored, err = h.store.GetResult(ctx, input.SessionID)
	}
	if err != nil {
		return nil, err
	}

	h.fillCache(ctx, stored)

	span.SetAttributes(
		attribute.String("score.decision", string(stored.Result.Decision)),
		attribute.String("score.lean_strength", string(stored.Result.LeanStrength)),
		attribute.Float64("score.decision_index", stored.Result.DecisionIndex),
	)

	metrics.ScoringDecisions.WithLabelValues(string(stored.Result.Decision), string(stored.Result.LeanStrength)).Inc()
	h.obs.RecordDecisionIndex(ctx, stored.Result.DecisionIndex, string(stored.Result.Decision))

	h.logger.Info("score computed", map[string]interface{}{
		"sessionId":     input.SessionID,
		"resultId":      stored.ID.String(),
		"decision":      stored.Result.Decision,
		"leanStrength":  stored.Result.LeanStrength,
		"decisionIndex": stored.Result.DecisionIndex,
		"answered":      stored.Result.Metadata.QuestionsAnswered,
	})

	return outputOf(stored, false), nil
}

// checkInlineVersion requires a job-supplied bundle to belong to the version
// its session was opened against.
func (h *Handler) checkInlineVersion(ctx context.Context, sessionID, versionID string) error {
	if versionID == "" {
		return errors.NewInputValidationFailedError("inline bundle carries no questionnaire version id").
			WithMetadata("sessionId", sessionID)
	}
	sessionVersion, err := h.store.SessionVersion(ctx, sessionID)
	if err != nil {
		return err
	}
	if sessionVersion != versionID {
		return errors.NewForeignReferenceError(
			fmt.Sprintf("inline bundle is version %s but session %s was opened against %s", versionID, sessionID, sessionVersion)).
			WithMetadata("sessionId", sessionID).
			WithMetadata("versionId", sessionVersion)
	}
	return nil
}

// lookupCache treats every cache failure as a miss.
func (h *Handler) lookupCache(ctx context.Context, sessionID string) *store.StoredResult {
	if h.cache == nil {
		return nil
	}
	cached, err := h.cache.Get(ctx, sessionID)
	switch {
	case err != nil:
		metrics.ResultCacheLookups.WithLabelValues("error").Inc()
		h.logger.Warn("result cache lookup failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err,
		})
		return nil
	case cached == nil || cached.Result == nil:
		metrics.ResultCacheLookups.WithLabelValues("miss").Inc()
		return nil
	default:
		metrics.ResultCacheLookups.WithLabelValues("hit").Inc()
		return cached
	}
}

func (h *Handler) fillCache(ctx context.Context, stored *store.StoredResult) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Set(ctx, stored); err != nil {
		h.logger.Warn("result cache write failed", map[string]interface{}{
			"sessionId": stored.SessionID,
			"error":     err,
		})
	}
}

func outputOf(stored *store.StoredResult, cached bool) *Output {
	return &Output{
		SessionID:    stored.SessionID,
		ResultID:     stored.ID.String(),
		Decision:     stored.Result.Decision,
		LeanStrength: stored.Result.LeanStrength,
		Result:       stored.Result,
		Cached:       cached,
	}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err = cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

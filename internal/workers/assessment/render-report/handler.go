// internal/workers/assessment/render-report/handler.go
package renderreport

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"move-improve-workers/internal/common/errors"
	"move-improve-workers/internal/common/logger"
	"move-improve-workers/internal/common/metrics"
	"move-improve-workers/internal/common/observability"
	"move-improve-workers/internal/common/validation"
	"move-improve-workers/internal/report"
	"move-improve-workers/internal/store"
	"move-improve-workers/pkg/registry"
)

const (
	TaskType = registry.TaskRenderReport
)

type Dependencies struct {
	Store         store.Store
	Cache         store.ResultCache // optional
	Validator     *validation.SchemaValidator
	Observability *observability.Observability
}

type Handler struct {
	config       *Config
	store        store.Store
	cache        store.ResultCache
	validator    *validation.SchemaValidator
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
	now          func() time.Time
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        deps.Store,
		cache:        deps.Cache,
		validator:    deps.Validator,
		obs:          deps.Observability,
		errorHandler: errors.NewErrorHandler(scoped),
		logger:       scoped,
		now:          time.Now,
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
	vars, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewParseError(err)
	}
	if h.validator != nil {
		if err := h.validator.Validate(TaskType, vars); err != nil {
			return nil, err
		}
	}

	sessionID, _ := vars["sessionId"].(string)
	if sessionID == "" {
		return nil, errors.NewInputValidationFailedError("sessionId is required")
	}
	return &Input{SessionID: sessionID}, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	stored, err := h.result(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if stored.Result == nil {
		return nil, errors.NewInternalError("stored result for session "+input.SessionID+" has no score payload", nil).
			WithMetadata("resultId", stored.ID.String())
	}

	categories, err := h.store.Categories(ctx, stored.VersionID)
	if err != nil {
		return nil, err
	}

	text, err := report.RenderText(report.Input{
		SessionID:   stored.SessionID,
		CreatedAt:   stored.CreatedAt,
		GeneratedAt: h.now(),
		Result:      stored.Result,
		Categories:  categories,
	})
	if err != nil {
		return nil, errors.NewInternalError("report rendering failed", err)
	}

	h.logger.Info("report rendered", map[string]interface{}{
		"sessionId": input.SessionID,
		"decision":  stored.Result.Decision,
		"bytes":     len(text),
	})

	return &Output{
		SessionID: input.SessionID,
		Format:    FormatText,
		Report:    text,
		Decision:  stored.Result.Decision,
	}, nil
}

// result prefers the cache and falls back to the store on a miss or any
// cache failure.
func (h *Handler) result(ctx context.Context, sessionID string) (*store.StoredResult, error) {
	if h.cache != nil {
		cached, err := h.cache.Get(ctx, sessionID)
		switch {
		case err != nil:
			metrics.ResultCacheLookups.WithLabelValues("error").Inc()
			h.logger.Warn("result cache lookup failed", map[string]interface{}{
				"sessionId": sessionID,
				"error":     err,
			})
		case cached != nil && cached.Result != nil:
			metrics.ResultCacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.ResultCacheLookups.WithLabelValues("miss").Inc()
		}
	}
	return h.store.GetResult(ctx, sessionID)
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

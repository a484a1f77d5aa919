// internal/common/camunda/worker.go
package camunda

import (
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"move-improve-workers/internal/common/config"
	"move-improve-workers/internal/common/logger"
)

// JobHandler is satisfied by every assessment worker handler. Handlers report
// job failures to Zeebe themselves.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// Workers tracks the job workers opened against one client so they can be
// closed together on shutdown.
type Workers struct {
	client zbc.Client
	logger logger.Logger
	open   map[string]worker.JobWorker
}

func NewWorkers(client zbc.Client, log logger.Logger) *Workers {
	return &Workers{client: client, logger: log, open: make(map[string]worker.JobWorker)}
}

// Start opens a job worker for taskType unless it is disabled. It reports
// whether a worker was opened.
func (w *Workers) Start(taskType string, wcfg config.WorkerConfig, handler JobHandler) bool {
	if !wcfg.Enabled {
		w.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}

	w.open[taskType] = w.client.NewJobWorker().
		JobType(taskType).
		Handler(handler.Handle).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	w.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return true
}

// Started lists the task types with an open worker.
func (w *Workers) Started() []string {
	out := make([]string, 0, len(w.open))
	for taskType := range w.open {
		out = append(out, taskType)
	}
	return out
}

// Stop closes every open worker and waits for in-flight jobs.
func (w *Workers) Stop() {
	for taskType, jw := range w.open {
		w.logger.Info("stopping worker", map[string]interface{}{"taskType": taskType})
		jw.Close()
		jw.AwaitClose()
	}
	w.open = make(map[string]worker.JobWorker)
}

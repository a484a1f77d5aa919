package registry

import (
	"fmt"
	"time"
)

// ActivityRegistry lists the service tasks this service can run and the
// contract of each one.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity describes one Zeebe task type. InputSchema is a JSON Schema
// applied to job variables before a handler decodes them; ErrorCodes are the
// BPMN codes the handler may throw.
type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema,omitempty"`
	ErrorCodes           []string               `json:"errorCodes"`
	Timeout              string                 `json:"timeout"`
	Retries              int                    `json:"retries"`
	Workflows            []string               `json:"workflows,omitempty"` // BPMN process ids using this task
	Tags                 []string               `json:"tags,omitempty"`
}

// TimeoutDuration parses Timeout. An empty Timeout is zero.
func (a Activity) TimeoutDuration() (time.Duration, error) {
	if a.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0, fmt.Errorf("activity %s has invalid timeout %q: %w", a.ID, a.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("activity %s has negative timeout %q", a.ID, a.Timeout)
	}
	return d, nil
}

package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// RequiredTaskTypes are the task types the worker manager registers.
var RequiredTaskTypes = []string{TaskComputeScore, TaskRenderReport}

// Validate checks that every activity has its identifying fields, that ids are
// unique and that each required task type is present.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool)
	for _, activity := range r.Activities {
		if activity.ID == "" {
			return fmt.Errorf("activity missing required field: ID")
		}
		if ids[activity.ID] {
			return fmt.Errorf("duplicate activity ID: %s", activity.ID)
		}
		ids[activity.ID] = true

		if activity.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: DisplayName", activity.ID)
		}
		if activity.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: TaskType", activity.ID)
		}
		if activity.Category == "" {
			return fmt.Errorf("activity %s missing required field: Category", activity.ID)
		}
		if _, err := activity.TimeoutDuration(); err != nil {
			return err
		}
		if activity.Retries < 0 {
			return fmt.Errorf("activity %s has negative retries", activity.ID)
		}
	}

	for _, taskType := range RequiredTaskTypes {
		if _, ok := r.Lookup(taskType); !ok {
			return fmt.Errorf("registry has no activity for task type %s", taskType)
		}
	}
	return nil
}

// Save writes the registry as indented JSON, creating parent directories.
func (r *ActivityRegistry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

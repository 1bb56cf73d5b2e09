package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/tasktrack/internal/store"
)

type jsonExport struct {
	ExportedAt string     `json:"exported_at"`
	Profile    string     `json:"profile"`
	Count      int        `json:"count"`
	Tasks      []jsonTask `json:"tasks"`
}

type jsonTask struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Subject  string `json:"subject_project,omitempty"`
	Deadline string `json:"deadline,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Status   string `json:"status"`
}

func ToJSON(tasks []store.Task, profile store.Profile, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Profile:    string(profile),
		Count:      len(tasks),
	}

	for _, t := range tasks {
		export.Tasks = append(export.Tasks, jsonTask{
			ID:       t.ID.String(),
			Type:     t.Type,
			Title:    t.Title,
			Subject:  t.Subject,
			Deadline: t.DeadlineString(),
			Notes:    t.Notes,
			Status:   string(t.Status),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

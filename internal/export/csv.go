package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/sadopc/tasktrack/internal/store"
)

// Filename is the download name for a profile's task export, e.g. Student_tasks.csv.
func Filename(profile store.Profile, ext string) string {
	return fmt.Sprintf("%s_tasks.%s", profile, ext)
}

// WriteCSV writes tasks with the public tasks table header. Row ids are not exported.
func WriteCSV(w io.Writer, tasks []store.Task) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(store.TaskColumns); err != nil {
		return err
	}
	for _, t := range tasks {
		if err := cw.Write(t.Record()); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func ToCSV(tasks []store.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, tasks); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return f.Close()
}

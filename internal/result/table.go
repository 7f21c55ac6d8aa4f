// Package result renders task lists for the terminal and exports them as
// JSON, CSV or PDF.
package result

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"taskify/internal/task"
)

const emptyMessage = "No tasks yet."

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// WriteTable prints one line per task: id, completion marker, text.
// Newlines in text are flattened so each task stays on one row.
func WriteTable(w io.Writer, tasks []task.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, emptyMessage)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tTEXT")
	for _, t := range tasks {
		text := strings.NewReplacer("\r", " ", "\n", " ").Replace(t.Text)
		fmt.Fprintf(tw, "%d\t%s\t%s\n", t.ID, checkbox(t.Completed), text)
	}
	return tw.Flush()
}

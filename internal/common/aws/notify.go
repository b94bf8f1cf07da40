// Package aws delivers run completion notices through SNS and SES.
package aws

import (
	"fmt"
	"strings"

	"figma-to-fsd/internal/models"
)

func subject(ev models.Event) string {
	if ev.Type == models.EventError {
		return "FSD generation failed"
	}
	if ev.Result != nil && ev.Result.ComponentName != "" {
		return fmt.Sprintf("FSD generated: %s", ev.Result.ComponentName)
	}
	return "FSD generated"
}

func body(ev models.Event) string {
	lines := []string{ev.Message, "", "Run: " + ev.RunID}

	if r := ev.Result; r != nil {
		if r.ParentURL != "" {
			lines = append(lines, "Story: "+r.ParentURL)
		}
		for _, u := range r.SubtaskURLs {
			lines = append(lines, "Sub-task: "+u)
		}
		if r.DocumentURL != "" {
			lines = append(lines, "Specification: "+r.DocumentURL)
		}
		if len(r.FailedTasks) > 0 {
			lines = append(lines, "", "Failed:")
			for _, f := range r.FailedTasks {
				lines = append(lines, "- "+f)
			}
		}
	}
	return strings.Join(lines, "\n")
}

func notifyEmails(ev models.Event) []string {
	switch v := ev.Data[models.DataNotifyEmails].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

package generatedocs

import "figma-to-fsd/internal/models"

// Input is the job payload: a generation request in its JSON shape.
type Input = models.GenerationRequest

// Output is what a completed job writes back to the process instance.
type Output struct {
	RunID  string
	Result *models.GenerationResult
}

// Variables flattens the result into process variables. Keys are prefixed so
// they do not collide with the request variables already in scope.
func (o *Output) Variables() map[string]interface{} {
	res := o.Result
	vars := map[string]interface{}{
		"fsdRunId":          o.RunID,
		"fsdComponentName":  res.ComponentName,
		"fsdMode":           string(res.Mode),
		"fsdSubtaskKeys":    res.SubtaskKeys,
		"fsdSubtaskUrls":    res.SubtaskURLs,
		"fsdCompletedTasks": res.CompletedTasks,
		"fsdFailedTasks":    res.FailedTasks,
		"fsdPartial":        len(res.FailedTasks) > 0,
		"fsdSummary": map[string]interface{}{
			"subtasksCreated":       res.Summary.SubtasksCreated,
			"requirementsGenerated": res.Summary.RequirementsGenerated,
			"fieldsIdentified":      res.Summary.FieldsIdentified,
		},
	}
	if res.ParentKey != "" {
		vars["fsdParentKey"] = res.ParentKey
		vars["fsdParentUrl"] = res.ParentURL
	}
	if res.DocumentURL != "" {
		vars["fsdDocumentUrl"] = res.DocumentURL
	}
	return vars
}

package workflow

import (
	"context"

	"figma-to-fsd/internal/models"
)

// stagePolicy decides what a stage failure does to the run.
type stagePolicy int

const (
	// required stages end the run on failure.
	required stagePolicy = iota
	// bestEffort stages report failure as a skipped, completed stage.
	bestEffort
)

type stageFunc func(r *run, ctx context.Context) (string, error)

type stage struct {
	name   models.StageName
	label  string
	policy stagePolicy
	exec   stageFunc
}

var (
	fetchDesignStage = stage{
		name: models.StageFetchDesign, label: "Fetching design", policy: required,
		exec: (*run).fetchDesign,
	}
	exportScreenshotsStage = stage{
		name: models.StageExportScreenshots, label: "Exporting screenshots", policy: bestEffort,
		exec: (*run).exportScreenshots,
	}
	aiAnalysisStage = stage{
		name: models.StageAIAnalysis, label: "Analysing design", policy: required,
		exec: (*run).analyze,
	}
	generateDescriptionStage = stage{
		name: models.StageGenerateDescription, label: "Writing ticket descriptions", policy: required,
		exec: (*run).describe,
	}
	createParentTicketStage = stage{
		name: models.StageCreateParentTicket, label: "Creating parent story", policy: required,
		exec: (*run).createParentTicket,
	}
	createSubtasksStage = stage{
		name: models.StageCreateSubtasks, label: "Creating sub-tasks", policy: required,
		exec: (*run).createSubtasks,
	}
	createDocumentStage = stage{
		name: models.StageCreateDocument, label: "Publishing specification", policy: required,
		exec: (*run).createDocument,
	}
)

// stagesFor returns the ordered stages a mode runs.
func stagesFor(mode models.GenerationMode) []stage {
	switch mode {
	case models.ModeJira:
		return []stage{fetchDesignStage, aiAnalysisStage, generateDescriptionStage, createParentTicketStage, createSubtasksStage}
	case models.ModeConfluence:
		return []stage{fetchDesignStage, exportScreenshotsStage, aiAnalysisStage, createDocumentStage}
	default:
		return []stage{
			fetchDesignStage, exportScreenshotsStage, aiAnalysisStage, generateDescriptionStage,
			createParentTicketStage, createSubtasksStage, createDocumentStage,
		}
	}
}

// StageNames lists the stage names a mode runs, in order.
func StageNames(mode models.GenerationMode) []models.StageName {
	stages := stagesFor(mode)
	names := make([]models.StageName, len(stages))
	for i, s := range stages {
		names[i] = s.name
	}
	return names
}

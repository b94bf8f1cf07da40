package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"figma-to-fsd/internal/common/confluence"
	apperrors "figma-to-fsd/internal/common/errors"
	"figma-to-fsd/internal/common/figma"
	"figma-to-fsd/internal/common/jira"
	"figma-to-fsd/internal/common/logger"
	"figma-to-fsd/internal/content/mapper"
	"figma-to-fsd/internal/content/prompt"
	"figma-to-fsd/internal/design/extractor"
	"figma-to-fsd/internal/design/variants"
	"figma-to-fsd/internal/models"
)

// run is the state of one generation request. Only the run goroutine touches it.
type run struct {
	o   *Orchestrator
	req models.GenerationRequest
	em  *emitter
	log logger.Logger

	// stageData is attached to the next complete transition.
	stageData map[string]interface{}

	ref       figma.DesignRef
	component *models.ExtractedComponent
	variants  models.ResponsiveVariants
	// variantFiles holds the file key of variants taken from a different file.
	variantFiles map[models.Breakpoint]string
	images       models.DesignImages
	bundle       *models.AIContentBundle
	plan         *models.TicketPlan

	issues      IssueCreator
	identity    *jira.IdentityCache
	tickets     *models.TicketSet
	documentURL string
}

func (r *run) fetchDesign(ctx context.Context) (string, error) {
	ref, err := figma.ParseURL(r.req.FigmaURL)
	if err != nil {
		return "", apperrors.NewInputValidationError(err.Error())
	}
	r.ref = ref

	root, err := r.o.figma.GetDocument(ctx, r.req.FigmaToken, ref.FileKey, ref.NodeID)
	if err != nil {
		return "", err
	}

	r.component = extractor.Extract(root, r.req.ComponentName)
	r.variants = variants.Resolve(root, r.req.ComponentName)
	r.variantFiles = make(map[models.Breakpoint]string)

	overrides := map[models.Breakpoint]string{
		models.BreakpointTablet: r.req.TabletURL,
		models.BreakpointMobile: r.req.MobileURL,
	}
	for _, bp := range models.Breakpoints {
		raw := overrides[bp]
		if raw == "" {
			continue
		}
		override, err := figma.ParseURL(raw)
		if err != nil || override.NodeID == "" {
			r.log.Warn("Ignoring breakpoint URL without a node", map[string]interface{}{
				"breakpoint": string(bp),
				"url":        raw,
			})
			continue
		}
		r.variants.Set(bp, override.NodeID)
		if override.FileKey != ref.FileKey {
			r.variantFiles[bp] = override.FileKey
		}
	}

	found := 0
	for _, bp := range models.Breakpoints {
		if r.variants.Get(bp) != "" {
			found++
		}
	}
	r.stageData = map[string]interface{}{
		"componentName": r.component.Name,
		"variants":      r.variants,
	}
	return fmt.Sprintf("Extracted %s with %d top-level elements and %d breakpoint variant(s)",
		r.component.Name, len(r.component.Children), found), nil
}

// exportScreenshots renders one image per resolved breakpoint, one call each,
// concurrently. It fails only when no image could be exported.
func (r *run) exportScreenshots(ctx context.Context) (string, error) {
	cfg := r.o.cfg.Figma

	type export struct {
		bp  models.Breakpoint
		url string
		err error
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		exports []export
	)
	for _, bp := range models.Breakpoints {
		nodeID := r.variants.Get(bp)
		if nodeID == "" {
			continue
		}
		fileKey := r.ref.FileKey
		if other, ok := r.variantFiles[bp]; ok {
			fileKey = other
		}

		wg.Add(1)
		go func(bp models.Breakpoint, fileKey, nodeID string) {
			defer wg.Done()
			images, err := r.o.figma.GetImages(ctx, r.req.FigmaToken, fileKey, []string{nodeID}, cfg.ImageFormat, cfg.ImageScale)
			e := export{bp: bp, err: err}
			if err == nil {
				e.url = images[nodeID]
				if e.url == "" {
					e.err = fmt.Errorf("figma rendered no image for node %s", nodeID)
				}
			}
			mu.Lock()
			exports = append(exports, e)
			mu.Unlock()
		}(bp, fileKey, nodeID)
	}
	wg.Wait()

	var errs []error
	for _, e := range exports {
		if e.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.bp, e.err))
			continue
		}
		r.images.Set(e.bp, e.url)
	}

	exported := len(exports) - len(errs)
	if exported == 0 {
		if len(errs) == 0 {
			return "", fmt.Errorf("no breakpoint variants to export")
		}
		return "", errors.Join(errs...)
	}
	if len(errs) > 0 {
		r.log.Warn("Some screenshots could not be exported", map[string]interface{}{"error": errors.Join(errs...).Error()})
	}

	r.stageData = map[string]interface{}{"images": r.images}
	return fmt.Sprintf("Exported %d of %d screenshot(s)", exported, len(exports)), nil
}

func (r *run) analyze(ctx context.Context) (string, error) {
	raw, err := r.o.llm.Complete(ctx, prompt.SystemPrompt, prompt.Build(r.component))
	if err != nil {
		return "", err
	}

	bundle, err := prompt.ParseResponse(raw)
	if err != nil {
		return "", err
	}
	if bundle.Description == "" {
		bundle.Description = fallbackDescription(r.component)
	}
	r.bundle = bundle

	r.stageData = map[string]interface{}{
		"requirements": bundle.RequirementCount(),
		"fields":       len(bundle.FieldRequirements),
		"stories":      len(bundle.Stories),
	}
	return fmt.Sprintf("Identified %d requirement(s) and %d authorable field(s)",
		bundle.RequirementCount(), len(bundle.FieldRequirements)), nil
}

func fallbackDescription(c *models.ExtractedComponent) string {
	return fmt.Sprintf("The %s component as designed in Figma, made up of %d top-level element(s).", c.Name, len(c.Children))
}

func (r *run) describe(ctx context.Context) (string, error) {
	plan := mapper.ToTicketPlan(r.bundle, r.component.Name, r.req.FigmaURL)
	r.plan = &plan
	return fmt.Sprintf("Prepared %q and %d sub-task(s)", plan.ParentSummary, len(models.SubtaskRoles)), nil
}

func (r *run) ticketRequest() TicketRequest {
	cfg := r.o.cfg.Atlassian
	return TicketRequest{
		ProjectKey:       r.req.ProjectKey,
		Plan:             *r.plan,
		ParentIssueType:  cfg.ParentIssueType,
		SubtaskIssueType: cfg.SubtaskIssueType,
		AutoAssign:       cfg.AutoAssign,
		Identity:         r.identity,
		Logger:           r.log,
	}
}

func (r *run) createParentTicket(ctx context.Context) (string, error) {
	r.issues = r.o.issues(r.req.Atlassian)
	r.identity = jira.NewIdentityCache()
	r.tickets = models.NewTicketSet()

	parent, err := createParent(ctx, r.issues, r.ticketRequest())
	if err != nil {
		recordParentFailure(r.tickets, err)
		return "", err
	}
	r.tickets.Parent = parent

	r.stageData = map[string]interface{}{"key": parent.Key, "url": parent.URL}
	return fmt.Sprintf("Created %s", parent.Key), nil
}

// createSubtasks never fails the run: failed sub-tasks are recorded and the
// stage completes.
func (r *run) createSubtasks(ctx context.Context) (string, error) {
	var results []subtaskResult
	for res := range startSubtasks(ctx, r.issues, r.ticketRequest(), r.tickets.Parent.Key) {
		results = append(results, res)

		if res.Err != nil {
			r.em.emit(ctx, models.Event{
				Type:      models.EventSubtask,
				StageName: models.StageCreateSubtasks,
				Status:    models.StatusError,
				Message:   fmt.Sprintf("%s sub-task failed: %s", res.Role, describeError(res.Err)),
				Data:      map[string]interface{}{"role": string(res.Role)},
				Error:     apperrors.NewSubtaskCreateFailedError(string(res.Role), res.Err),
			})
			continue
		}
		r.em.emit(ctx, models.Event{
			Type:      models.EventSubtask,
			StageName: models.StageCreateSubtasks,
			Status:    models.StatusComplete,
			Message:   fmt.Sprintf("Created %s sub-task %s", res.Role, res.Ticket.Key),
			Data: map[string]interface{}{
				"role":    string(res.Role),
				"key":     res.Ticket.Key,
				"url":     res.Ticket.URL,
				"summary": res.Ticket.Summary,
			},
		})
	}
	recordSubtasks(r.tickets, results)

	created := len(r.tickets.Subtasks())
	r.stageData = map[string]interface{}{"created": created, "failed": len(models.SubtaskRoles) - created}
	return fmt.Sprintf("Created %d of %d sub-tasks", created, len(models.SubtaskRoles)), nil
}

func (r *run) createDocument(ctx context.Context) (string, error) {
	in := mapper.FSDInput{
		Bundle:        r.bundle,
		ComponentName: r.component.Name,
		FigmaURL:      r.req.FigmaURL,
		Images:        r.images,
	}
	if r.tickets != nil {
		if r.tickets.Parent != nil {
			in.ParentURL = r.tickets.Parent.URL
		}
		for _, t := range r.tickets.Subtasks() {
			in.SubtaskURLs = append(in.SubtaskURLs, t.URL)
		}
	}

	page, err := r.o.pages(r.req.Atlassian).CreatePage(ctx, confluence.PageInput{
		SpaceKey: r.req.SpaceKey,
		Title:    mapper.DocumentTitle(r.component.Name),
		Body:     mapper.ToFSDMarkup(in),
		ParentID: r.req.ParentPageID,
	})
	if err != nil {
		return "", err
	}
	r.documentURL = page.WebURL

	r.stageData = map[string]interface{}{"pageId": page.ID, "url": page.WebURL}
	return fmt.Sprintf("Published %q", page.Title), nil
}

func (r *run) result() *models.GenerationResult {
	res := &models.GenerationResult{
		ComponentName:  r.component.Name,
		Mode:           r.req.Mode,
		SubtaskKeys:    []string{},
		SubtaskURLs:    []string{},
		DocumentURL:    r.documentURL,
		CompletedTasks: []string{},
		FailedTasks:    []string{},
	}
	if r.tickets != nil {
		if r.tickets.Parent != nil {
			res.ParentKey = r.tickets.Parent.Key
			res.ParentURL = r.tickets.Parent.URL
		}
		for _, t := range r.tickets.Subtasks() {
			res.SubtaskKeys = append(res.SubtaskKeys, t.Key)
			res.SubtaskURLs = append(res.SubtaskURLs, t.URL)
		}
		res.CompletedTasks = append(res.CompletedTasks, r.tickets.CompletedTasks...)
		res.FailedTasks = append(res.FailedTasks, r.tickets.FailedTasks...)
	}
	res.Summary = models.GenerationSummary{
		SubtasksCreated:       len(res.SubtaskKeys),
		RequirementsGenerated: r.bundle.RequirementCount(),
		FieldsIdentified:      len(r.bundle.FieldRequirements),
	}
	return res
}

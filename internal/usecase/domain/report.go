package domain

import (
	"context"
	"fmt"
	"sort"

	"project-tracker/internal/entities"
	"project-tracker/internal/repository"
)

// GenerateProgressReport counts finished tasks of a project.
func (u *Usecase) GenerateProgressReport(ctx context.Context, callerID, projectID string) (*entities.Report, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	project, tasks, err := u.reportSource(ctx, callerID, projectID)
	if err != nil {
		return nil, err
	}
	return u.persistReport(ctx, callerID, project.ID, entities.ReportProgress, entities.ReportData{Progress: progressOf(project, tasks)})
}

// GenerateTaskCompletionReport lists finished tasks of a project with their assignee.
func (u *Usecase) GenerateTaskCompletionReport(ctx context.Context, callerID, projectID string) (*entities.Report, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	project, tasks, err := u.reportSource(ctx, callerID, projectID)
	if err != nil {
		return nil, err
	}
	entries, err := completionOf(tasks)
	if err != nil {
		return nil, err
	}
	return u.persistReport(ctx, callerID, project.ID, entities.ReportTaskCompletion, entities.ReportData{TaskCompletion: entries})
}

// GenerateTimelineReport lists every task of a project with its start and due date.
func (u *Usecase) GenerateTimelineReport(ctx context.Context, callerID, projectID string) (*entities.Report, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	project, tasks, err := u.reportSource(ctx, callerID, projectID)
	if err != nil {
		return nil, err
	}
	return u.persistReport(ctx, callerID, project.ID, entities.ReportTimeline, entities.ReportData{Timeline: timelineOf(tasks)})
}

// GenerateBudgetUtilizationReport relates project expenses to its budget.
func (u *Usecase) GenerateBudgetUtilizationReport(ctx context.Context, callerID, projectID string) (*entities.Report, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if _, err := u.loadReportCaller(ctx, callerID); err != nil {
		return nil, err
	}
	project, err := u.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return u.persistReport(ctx, callerID, project.ID, entities.ReportBudgetUtilization, entities.ReportData{BudgetUtilization: budgetOf(project)})
}

// GenerateTaskUpdateReport collects the updates of a task left before its due date. Only the assignee may request it.
func (u *Usecase) GenerateTaskUpdateReport(ctx context.Context, callerID, taskID string) (*entities.Report, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	caller, err := u.loadUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if caller.Role != entities.RoleTeamMember {
		return nil, fmt.Errorf("%w: role %s required", entities.ErrForbidden, entities.RoleTeamMember)
	}
	task, err := u.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.AssignedTo != caller.ID {
		return nil, entities.ErrNotAssignee
	}

	var updates []entities.TaskUpdate
	err = u.repo.Find(ctx, entities.CollectionTaskUpdates, repository.Filter{
		repository.Eq("task", task.ID),
		repository.Lte("date", task.DueDate),
	}, &updates)
	if err != nil {
		return nil, err
	}

	return u.persistReport(ctx, callerID, task.ProjectID, entities.ReportTaskUpdate, entities.ReportData{TaskUpdate: taskUpdatesOf(task, updates)})
}

// CreateReport stores a manager supplied report for a project.
func (u *Usecase) CreateReport(ctx context.Context, callerID string, r entities.Report) (*entities.Report, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if _, err := u.loadManager(ctx, callerID); err != nil {
		return nil, err
	}
	if !r.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown report type %q", entities.ErrInvalidArgument, r.Type)
	}
	project, err := u.loadProject(ctx, r.ProjectID)
	if err != nil {
		return nil, err
	}
	return u.persistReport(ctx, callerID, project.ID, r.Type, r.Data)
}

// GetReport returns a report by id.
func (u *Usecase) GetReport(ctx context.Context, reportID string) (*entities.Report, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	r, err := u.loadReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListReports returns reports, optionally of one project.
func (u *Usecase) ListReports(ctx context.Context, projectID string) ([]entities.Report, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	var filter repository.Filter
	if projectID != "" {
		filter = append(filter, repository.Eq("project", projectID))
	}
	reports := []entities.Report{}
	if err := u.repo.Find(ctx, entities.CollectionReports, filter, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// UpdateReportData replaces the payload of a report. Managers only.
func (u *Usecase) UpdateReportData(ctx context.Context, callerID, reportID string, data entities.ReportData) (*entities.Report, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if _, err := u.loadManager(ctx, callerID); err != nil {
		return nil, err
	}
	r, err := u.loadReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	r.Data = data
	if err := u.repo.Save(ctx, r); err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteReport removes a report and unlinks it from its project. Managers only.
func (u *Usecase) DeleteReport(ctx context.Context, callerID, reportID string) error {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if _, err := u.loadManager(ctx, callerID); err != nil {
		return err
	}
	r, err := u.loadReport(ctx, reportID)
	if err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, entities.CollectionReports, r.ID); err != nil {
		return notFound(err, entities.ErrReportNotFound, r.ID)
	}
	if err := u.pullStale(ctx, entities.CollectionProjects, r.ProjectID, entities.FieldReports, r.ID); err != nil {
		u.log.Warnw("report deleted but project still references it", "error", err, "report_id", r.ID, "project_id", r.ProjectID)
	}
	return nil
}

func (u *Usecase) loadReportCaller(ctx context.Context, callerID string) (entities.User, error) {
	caller, err := u.loadUser(ctx, callerID)
	if err != nil {
		return caller, err
	}
	if !caller.Role.Valid() {
		return caller, fmt.Errorf("%w: role %q is not allowed", entities.ErrForbidden, caller.Role)
	}
	return caller, nil
}

func (u *Usecase) reportSource(ctx context.Context, callerID, projectID string) (entities.Project, []entities.Task, error) {
	if _, err := u.loadReportCaller(ctx, callerID); err != nil {
		return entities.Project{}, nil, err
	}
	project, err := u.loadProject(ctx, projectID)
	if err != nil {
		return project, nil, err
	}
	var tasks []entities.Task
	if err := u.repo.Find(ctx, entities.CollectionTasks, repository.Filter{repository.Eq("project", project.ID)}, &tasks); err != nil {
		return project, nil, err
	}
	return project, tasks, nil
}

func (u *Usecase) persistReport(ctx context.Context, callerID, projectID string, typ entities.ReportType, data entities.ReportData) (*entities.Report, error) {
	r := entities.Report{
		ID:          u.newID(),
		ProjectID:   projectID,
		Type:        typ,
		Data:        data,
		GeneratedBy: callerID,
		GeneratedAt: u.now().UTC(),
	}
	if err := u.repo.Save(ctx, r); err != nil {
		return nil, err
	}
	if err := u.repo.PushRef(ctx, entities.CollectionProjects, projectID, entities.FieldReports, r.ID); err != nil {
		u.log.Errorw("report saved but project not linked", "error", err, "report_id", r.ID, "project_id", projectID)
		return nil, fmt.Errorf("link report to project: %w", err)
	}
	u.log.Infow("report generated", "report_id", r.ID, "type", typ, "project_id", projectID)
	return &r, nil
}

func percentage(part, whole float64) *float64 {
	if whole == 0 {
		return nil
	}
	v := 100 * part / whole
	return &v
}

func progressOf(p entities.Project, tasks []entities.Task) *entities.ProgressData {
	done := 0
	for _, t := range tasks {
		if t.Status == entities.TaskDone {
			done++
		}
	}
	data := &entities.ProgressData{
		ProjectName:        p.Name,
		TotalTasks:         len(tasks),
		CompletedTasks:     done,
		ProgressPercentage: percentage(float64(done), float64(len(tasks))),
		State:              entities.ReportStateOK,
	}
	if data.TotalTasks == 0 {
		data.State = entities.ReportStateNoTasks
	}
	return data
}

func completionOf(tasks []entities.Task) ([]entities.TaskCompletionEntry, error) {
	entries := []entities.TaskCompletionEntry{}
	for _, t := range tasks {
		if t.Status != entities.TaskDone {
			continue
		}
		if t.AssignedTo == "" {
			return nil, fmt.Errorf("%w: completed task %s has no assignee", entities.ErrValidation, t.ID)
		}
		by := t.AssignedToName
		if by == "" {
			by = t.AssignedTo
		}
		entries = append(entries, entities.TaskCompletionEntry{TaskName: t.Title, CompletedBy: by, CompletedDate: t.UpdatedAt})
	}
	return entries, nil
}

func timelineOf(tasks []entities.Task) []entities.TimelineEntry {
	entries := make([]entities.TimelineEntry, 0, len(tasks))
	for _, t := range tasks {
		entries = append(entries, entities.TimelineEntry{TaskName: t.Title, StartDate: t.CreatedAt, EndDate: t.DueDate, Status: t.Status})
	}
	return entries
}

func budgetOf(p entities.Project) *entities.BudgetUtilizationData {
	data := &entities.BudgetUtilizationData{
		ProjectName:           p.Name,
		TotalBudget:           p.Budget,
		ExpensesToDate:        p.Expenses,
		UtilizationPercentage: percentage(p.Expenses, p.Budget),
		State:                 entities.ReportStateOK,
	}
	if p.Budget == 0 {
		data.State = entities.ReportStateNoBudget
	}
	return data
}

func taskUpdatesOf(t entities.Task, updates []entities.TaskUpdate) *entities.TaskUpdateData {
	sort.SliceStable(updates, func(i, j int) bool { return updates[i].Date.Before(updates[j].Date) })
	entries := make([]entities.TaskUpdateEntry, 0, len(updates))
	for _, upd := range updates {
		if upd.Date.After(t.DueDate) {
			continue
		}
		entries = append(entries, entities.TaskUpdateEntry{Date: upd.Date, Content: upd.Content})
	}
	return &entities.TaskUpdateData{
		TaskName:   t.Title,
		AssignedTo: t.AssignedToName,
		Status:     t.Status,
		DueDate:    t.DueDate,
		Updates:    entries,
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yukikurage/task-tracker/internal/constants"
	"github.com/yukikurage/task-tracker/internal/models"
	"github.com/yukikurage/task-tracker/internal/optional"
	"github.com/yukikurage/task-tracker/internal/repository"
	"gorm.io/gorm"
)

// TaskService handles task business logic
type TaskService struct {
	store      repository.Store
	categories *CategoryService
	generator  TaskGenerator
	now        func() time.Time
}

// NewTaskService creates a new TaskService. generator may be nil, in which
// case GenerateDrafts reports ErrAIServiceNotConfigured.
func NewTaskService(store repository.Store, categories *CategoryService, generator TaskGenerator) *TaskService {
	return &TaskService{
		store:      store,
		categories: categories,
		generator:  generator,
		now:        time.Now,
	}
}

// WithClock returns a copy of the service that reads the time from now.
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	clone := *s
	clone.now = now
	return &clone
}

// TaskDraft is the input for creating a task. Empty Status and Priority
// mean the defaults.
type TaskDraft struct {
	Title       string
	Description *string
	Deadline    *time.Time
	Status      string
	Priority    string
	CategoryIDs []uint64
}

// TaskPatch is a partial update. Absent fields are left alone; see Update
// for what clearing each field means.
type TaskPatch struct {
	Title          optional.Field[string]
	Description    optional.Field[string]
	Deadline       optional.Field[time.Time]
	Status         optional.Field[string]
	Priority       optional.Field[string]
	CategoryIDs    optional.Field[[]uint64]
	CategoryTitles optional.Field[[]string]
}

// TaskFilter narrows ListFiltered. Nil fields do not constrain.
type TaskFilter struct {
	Status   *string
	Priority *string
}

// Create validates draft and stores it as a new task owned by ownerID
func (s *TaskService) Create(ctx context.Context, ownerID uint64, draft TaskDraft) (*models.Task, error) {
	title, err := validateTitle(draft.Title)
	if err != nil {
		return nil, err
	}
	status, err := normalizeStatus(draft.Status)
	if err != nil {
		return nil, err
	}
	priority, err := normalizePriority(draft.Priority)
	if err != nil {
		return nil, err
	}
	if err := s.checkDeadline(draft.Deadline); err != nil {
		return nil, err
	}

	task := &models.Task{
		OwnerID:     ownerID,
		Title:       title,
		Description: cleanDescription(draft.Description),
		Deadline:    draft.Deadline,
		Status:      status,
		Priority:    priority,
	}

	var created *models.Task
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		exists, err := tx.Tasks().ExistsByTitle(ctx, ownerID, title, 0)
		if err != nil {
			return storageError("check task title", err)
		}
		if exists {
			return ErrDuplicateTask
		}

		if len(draft.CategoryIDs) > 0 {
			categories, err := s.categories.WithStore(tx).Resolve(ctx, draft.CategoryIDs)
			if err != nil {
				return err
			}
			task.Categories = categories
		}

		if err := tx.Tasks().Create(ctx, task); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateTask
			}
			return storageError("create task", err)
		}

		created, err = tx.Tasks().FindByID(ctx, task.ID)
		if err != nil {
			return storageError("load task", err)
		}
		return nil
	})
	if err != nil {
		return nil, classify("create task", err)
	}

	return created, nil
}

// Update applies patch to the task. Title, Status and Priority cannot be
// cleared; clearing Description or Deadline stores NULL; clearing the
// categories removes every link and setting them replaces the whole set.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID uint64, patch TaskPatch) (*models.Task, error) {
	if !patch.CategoryIDs.IsAbsent() && !patch.CategoryTitles.IsAbsent() {
		return nil, ErrCategorySelectors
	}

	var updated *models.Task
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		task, err := findOwnedTask(ctx, tx, ownerID, taskID)
		if err != nil {
			return err
		}

		if err := s.applyScalars(ctx, tx, task, patch); err != nil {
			return err
		}

		replace, categoryIDs, err := s.resolveCategoryPatch(ctx, tx, patch)
		if err != nil {
			return err
		}

		if err := tx.Tasks().Update(ctx, task); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateTask
			}
			return storageError("update task", err)
		}
		if replace {
			if err := tx.Tasks().ReplaceCategories(ctx, task.ID, categoryIDs); err != nil {
				return storageError("update task categories", err)
			}
		}

		updated, err = tx.Tasks().FindByID(ctx, task.ID)
		if err != nil {
			return storageError("load task", err)
		}
		return nil
	})
	if err != nil {
		return nil, classify("update task", err)
	}

	return updated, nil
}

// applyScalars validates every scalar field of patch and writes it to task.
// Nothing is persisted here.
func (s *TaskService) applyScalars(ctx context.Context, tx repository.Store, task *models.Task, patch TaskPatch) error {
	switch {
	case patch.Title.IsCleared():
		return ErrTitleEmpty
	case patch.Title.IsSet():
		raw, _ := patch.Title.Value()
		title, err := validateTitle(raw)
		if err != nil {
			return err
		}
		if title != task.Title {
			exists, err := tx.Tasks().ExistsByTitle(ctx, task.OwnerID, title, task.ID)
			if err != nil {
				return storageError("check task title", err)
			}
			if exists {
				return ErrDuplicateTask
			}
		}
		task.Title = title
	}

	if !patch.Description.IsAbsent() {
		task.Description = cleanDescription(patch.Description.Ptr())
	}

	if !patch.Deadline.IsAbsent() {
		deadline := patch.Deadline.Ptr()
		if err := s.checkDeadline(deadline); err != nil {
			return err
		}
		task.Deadline = deadline
	}

	switch {
	case patch.Status.IsCleared():
		return ErrInvalidStatus
	case patch.Status.IsSet():
		raw, _ := patch.Status.Value()
		if strings.TrimSpace(raw) == "" {
			return ErrInvalidStatus
		}
		status, err := normalizeStatus(raw)
		if err != nil {
			return err
		}
		task.Status = status
	}

	switch {
	case patch.Priority.IsCleared():
		return ErrInvalidPriority
	case patch.Priority.IsSet():
		raw, _ := patch.Priority.Value()
		if strings.TrimSpace(raw) == "" {
			return ErrInvalidPriority
		}
		priority, err := normalizePriority(raw)
		if err != nil {
			return err
		}
		task.Priority = priority
	}

	return nil
}

// resolveCategoryPatch reports whether the category set is replaced and
// with which ids.
func (s *TaskService) resolveCategoryPatch(ctx context.Context, tx repository.Store, patch TaskPatch) (bool, []uint64, error) {
	categories := s.categories.WithStore(tx)

	switch {
	case patch.CategoryIDs.IsCleared(), patch.CategoryTitles.IsCleared():
		return true, []uint64{}, nil
	case patch.CategoryIDs.IsSet():
		ids, _ := patch.CategoryIDs.Value()
		resolved, err := categories.Resolve(ctx, ids)
		if err != nil {
			return false, nil, err
		}
		return true, idsOf(resolved), nil
	case patch.CategoryTitles.IsSet():
		titles, _ := patch.CategoryTitles.Value()
		resolved, err := categories.ResolveTitles(ctx, titles)
		if err != nil {
			return false, nil, err
		}
		return true, idsOf(resolved), nil
	}
	return false, nil, nil
}

// UpdateStatus sets the task status
func (s *TaskService) UpdateStatus(ctx context.Context, ownerID, taskID uint64, status string) (*models.Task, error) {
	return s.Update(ctx, ownerID, taskID, TaskPatch{Status: optional.Set(status)})
}

// UpdatePriority sets the task priority
func (s *TaskService) UpdatePriority(ctx context.Context, ownerID, taskID uint64, priority string) (*models.Task, error) {
	return s.Update(ctx, ownerID, taskID, TaskPatch{Priority: optional.Set(priority)})
}

// UpdateDescription sets the description; nil clears it
func (s *TaskService) UpdateDescription(ctx context.Context, ownerID, taskID uint64, description *string) (*models.Task, error) {
	return s.Update(ctx, ownerID, taskID, TaskPatch{Description: optional.FromPtr(description)})
}

// UpdateDeadline sets the deadline; nil clears it
func (s *TaskService) UpdateDeadline(ctx context.Context, ownerID, taskID uint64, deadline *time.Time) (*models.Task, error) {
	return s.Update(ctx, ownerID, taskID, TaskPatch{Deadline: optional.FromPtr(deadline)})
}

// UpdateCategories replaces the task's categories with categoryIDs
func (s *TaskService) UpdateCategories(ctx context.Context, ownerID, taskID uint64, categoryIDs []uint64) (*models.Task, error) {
	if categoryIDs == nil {
		categoryIDs = []uint64{}
	}
	return s.Update(ctx, ownerID, taskID, TaskPatch{CategoryIDs: optional.Set(categoryIDs)})
}

// UpdateCategoriesByTitle replaces the task's categories with the ones
// named by titles
func (s *TaskService) UpdateCategoriesByTitle(ctx context.Context, ownerID, taskID uint64, titles []string) (*models.Task, error) {
	if titles == nil {
		titles = []string{}
	}
	return s.Update(ctx, ownerID, taskID, TaskPatch{CategoryTitles: optional.Set(titles)})
}

// ListAll returns every task of ownerID
func (s *TaskService) ListAll(ctx context.Context, ownerID uint64) ([]models.Task, error) {
	return s.ListFiltered(ctx, ownerID, TaskFilter{})
}

// ListFiltered returns the owner's tasks matching filter. Filter values
// are compared after normalization, so casing and padding do not matter.
func (s *TaskService) ListFiltered(ctx context.Context, ownerID uint64, filter TaskFilter) ([]models.Task, error) {
	repoFilter := repository.TaskFilter{OwnerID: ownerID}
	if filter.Status != nil {
		status := models.NormalizeVocabulary(*filter.Status)
		repoFilter.Status = &status
	}
	if filter.Priority != nil {
		priority := models.NormalizeVocabulary(*filter.Priority)
		repoFilter.Priority = &priority
	}

	tasks, err := s.store.Tasks().List(ctx, repoFilter)
	if err != nil {
		return nil, storageError("list tasks", err)
	}
	return tasks, nil
}

// GetByID returns one of the owner's tasks
func (s *TaskService) GetByID(ctx context.Context, ownerID, taskID uint64) (*models.Task, error) {
	return findOwnedTask(ctx, s.store, ownerID, taskID)
}

// Delete removes one of the owner's tasks
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID uint64) error {
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := findOwnedTask(ctx, tx, ownerID, taskID); err != nil {
			return err
		}
		if err := tx.Tasks().Delete(ctx, taskID); err != nil {
			return storageError("delete task", err)
		}
		return nil
	})
	return classify("delete task", err)
}

// GenerateDrafts asks the AI generator for task suggestions found in text.
// Drafts are validated like Create input but never stored: blank titles are
// dropped, past deadlines and unknown priorities are reset.
func (s *TaskService) GenerateDrafts(ctx context.Context, text string) ([]TaskDraft, error) {
	if s.generator == nil {
		return nil, ErrAIServiceNotConfigured
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrAITextEmpty
	}
	if utf8.RuneCountInString(text) > constants.MaxAIInputLength {
		return nil, ErrAITextTooLong
	}

	aiTasks, err := s.generator.GenerateTasksFromText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIRequestFailed, err)
	}
	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}

	now := s.now()
	drafts := make([]TaskDraft, 0, len(aiTasks))
	for _, aiTask := range aiTasks {
		if len(drafts) == constants.MaxAIGeneratedTasks {
			break
		}

		title, err := validateTitle(aiTask.Title)
		if err != nil {
			continue
		}

		priority, err := normalizePriority(aiTask.Priority)
		if err != nil {
			priority = models.DefaultPriority
		}

		deadline := aiTask.Deadline
		if deadline != nil && deadline.Before(now) {
			deadline = nil
		}

		drafts = append(drafts, TaskDraft{
			Title:       title,
			Description: cleanDescription(&aiTask.Description),
			Deadline:    deadline,
			Status:      models.DefaultStatus,
			Priority:    priority,
		})
	}

	if len(drafts) == 0 {
		return nil, ErrAINoValidTasks
	}

	return drafts, nil
}

// findOwnedTask loads a task and hides it unless ownerID owns it
func findOwnedTask(ctx context.Context, store repository.Store, ownerID, taskID uint64) (*models.Task, error) {
	task, err := store.Tasks().FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, storageError("find task", err)
	}
	if err := RequireOwnerID(task, ownerID); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) checkDeadline(deadline *time.Time) error {
	if deadline != nil && deadline.Before(s.now()) {
		return ErrDeadlineInPast
	}
	return nil
}

func validateTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", ErrTitleEmpty
	}
	if utf8.RuneCountInString(title) > constants.MaxTaskTitleLength {
		return "", ErrTitleTooLong
	}
	return title, nil
}

// normalizeStatus maps "" to the default status
func normalizeStatus(raw string) (string, error) {
	status := models.NormalizeVocabulary(raw)
	if status == "" {
		return models.DefaultStatus, nil
	}
	if !models.IsAllowedStatus(status) {
		return "", withDetail(ErrInvalidStatus, "allowed values are %s", strings.Join(models.AllowedStatuses, ", "))
	}
	return status, nil
}

// normalizePriority maps "" to the default priority
func normalizePriority(raw string) (string, error) {
	priority := models.NormalizeVocabulary(raw)
	if priority == "" {
		return models.DefaultPriority, nil
	}
	if !models.IsAllowedPriority(priority) {
		return "", withDetail(ErrInvalidPriority, "allowed values are %s", strings.Join(models.AllowedPriorities, ", "))
	}
	return priority, nil
}

// cleanDescription trims the description and treats blank as absent
func cleanDescription(description *string) *string {
	if description == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func idsOf(categories []models.Category) []uint64 {
	ids := make([]uint64, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}
	return ids
}

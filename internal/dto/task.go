package dto

import (
	"time"

	"github.com/yukikurage/task-tracker/internal/models"
	"github.com/yukikurage/task-tracker/internal/optional"
	"github.com/yukikurage/task-tracker/internal/services"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64        `json:"id"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	Deadline    *time.Time    `json:"deadline"`
	Status      string        `json:"status"`
	Priority    string        `json:"priority"`
	Categories  []CategoryDTO `json:"categories"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TaskDraftDTO is an unsaved task suggested by the AI generator
type TaskDraftDTO struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
}

// CreateTaskRequest is the body of POST /api/tasks
type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description *string    `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	CategoryIDs []uint64   `json:"category_ids"`
}

// ToDraft converts the request into service input
func (r CreateTaskRequest) ToDraft() services.TaskDraft {
	return services.TaskDraft{
		Title:       r.Title,
		Description: r.Description,
		Deadline:    r.Deadline,
		Status:      r.Status,
		Priority:    r.Priority,
		CategoryIDs: r.CategoryIDs,
	}
}

// UpdateTaskRequest is the body of PATCH /api/tasks/:id. A missing key
// leaves the field alone and null clears it.
type UpdateTaskRequest struct {
	Title          optional.Field[string]    `json:"title"`
	Description    optional.Field[string]    `json:"description"`
	Deadline       optional.Field[time.Time] `json:"deadline"`
	Status         optional.Field[string]    `json:"status"`
	Priority       optional.Field[string]    `json:"priority"`
	CategoryIDs    optional.Field[[]uint64]  `json:"category_ids"`
	CategoryTitles optional.Field[[]string]  `json:"category_titles"`
}

// ToPatch converts the request into service input
func (r UpdateTaskRequest) ToPatch() services.TaskPatch {
	return services.TaskPatch{
		Title:          r.Title,
		Description:    r.Description,
		Deadline:       r.Deadline,
		Status:         r.Status,
		Priority:       r.Priority,
		CategoryIDs:    r.CategoryIDs,
		CategoryTitles: r.CategoryTitles,
	}
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type PriorityRequest struct {
	Priority string `json:"priority" binding:"required"`
}

// DescriptionRequest must carry the key; null clears the description.
type DescriptionRequest struct {
	Description optional.Field[string] `json:"description"`
}

// DeadlineRequest must carry the key; null clears the deadline.
type DeadlineRequest struct {
	Deadline optional.Field[time.Time] `json:"deadline"`
}

// CategoriesRequest replaces a task's categories, by id or by title.
// Exactly one key must be present and null means no categories.
type CategoriesRequest struct {
	CategoryIDs    optional.Field[[]uint64] `json:"category_ids"`
	CategoryTitles optional.Field[[]string] `json:"category_titles"`
}

// GenerateTasksRequest is the body of POST /api/tasks/generate
type GenerateTasksRequest struct {
	Text string `json:"text" binding:"required"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Deadline:    task.Deadline,
		Status:      task.Status,
		Priority:    task.Priority,
		Categories:  ToCategoryDTOs(task.Categories),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToTaskDTOs converts a slice of tasks, never returning nil
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}

// ToTaskDraftDTOs converts generated drafts
func ToTaskDraftDTOs(drafts []services.TaskDraft) []TaskDraftDTO {
	items := make([]TaskDraftDTO, len(drafts))
	for i, d := range drafts {
		items[i] = TaskDraftDTO{
			Title:       d.Title,
			Description: d.Description,
			Deadline:    d.Deadline,
			Status:      d.Status,
			Priority:    d.Priority,
		}
	}
	return items
}

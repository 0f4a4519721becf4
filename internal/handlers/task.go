package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker/internal/dto"
	apierrors "github.com/yukikurage/task-tracker/internal/errors"
	"github.com/yukikurage/task-tracker/internal/middleware"
	"github.com/yukikurage/task-tracker/internal/models"
	"github.com/yukikurage/task-tracker/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the current user's tasks, optionally filtered by the
// status and priority query parameters
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var filter services.TaskFilter
	if status, ok := c.GetQuery("status"); ok {
		filter.Status = &status
	}
	if priority, ok := c.GetQuery("priority"); ok {
		filter.Priority = &priority
	}

	var (
		tasks []models.Task
		err   error
	)
	if filter.Status == nil && filter.Priority == nil {
		tasks, err = h.taskService.ListAll(c.Request.Context(), userID)
	} else {
		tasks, err = h.taskService.ListFiltered(c.Request.Context(), userID, filter)
	}
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDTOs(tasks),
	})
}

// GetTask returns the task loaded by RequireTaskOwnership
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.NotFound(c, "Task not found")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), userID, req.ToDraft())
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	h.respondUpdate(c, func(userID, taskID uint64) (*models.Task, error) {
		return h.taskService.Update(c.Request.Context(), userID, taskID, req.ToPatch())
	})
}

// UpdateStatus sets the task status
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	h.respondUpdate(c, func(userID, taskID uint64) (*models.Task, error) {
		return h.taskService.UpdateStatus(c.Request.Context(), userID, taskID, req.Status)
	})
}

// UpdatePriority sets the task priority
func (h *TaskHandler) UpdatePriority(c *gin.Context) {
	var req dto.PriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	h.respondUpdate(c, func(userID, taskID uint64) (*models.Task, error) {
		return h.taskService.UpdatePriority(c.Request.Context(), userID, taskID, req.Priority)
	})
}

// UpdateDescription sets or clears the description
func (h *TaskHandler) UpdateDescription(c *gin.Context) {
	var req dto.DescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if req.Description.IsAbsent() {
		apierrors.BadRequestWithDetails(c, "Missing field", gin.H{"required": []string{"description"}})
		return
	}

	h.respondUpdate(c, func(userID, taskID uint64) (*models.Task, error) {
		return h.taskService.UpdateDescription(c.Request.Context(), userID, taskID, req.Description.Ptr())
	})
}

// UpdateDeadline sets or clears the deadline
func (h *TaskHandler) UpdateDeadline(c *gin.Context) {
	var req dto.DeadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if req.Deadline.IsAbsent() {
		apierrors.BadRequestWithDetails(c, "Missing field", gin.H{"required": []string{"deadline"}})
		return
	}

	h.respondUpdate(c, func(userID, taskID uint64) (*models.Task, error) {
		return h.taskService.UpdateDeadline(c.Request.Context(), userID, taskID, req.Deadline.Ptr())
	})
}

// UpdateCategories replaces the task's categories by id or by title
func (h *TaskHandler) UpdateCategories(c *gin.Context) {
	var req dto.CategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if req.CategoryIDs.IsAbsent() && req.CategoryTitles.IsAbsent() {
		apierrors.BadRequestWithDetails(c, "Missing field", gin.H{"one_of": []string{"category_ids", "category_titles"}})
		return
	}
	if !req.CategoryIDs.IsAbsent() && !req.CategoryTitles.IsAbsent() {
		apierrors.FromService(c, services.ErrCategorySelectors)
		return
	}

	h.respondUpdate(c, func(userID, taskID uint64) (*models.Task, error) {
		if !req.CategoryTitles.IsAbsent() {
			titles, _ := req.CategoryTitles.Value()
			return h.taskService.UpdateCategoriesByTitle(c.Request.Context(), userID, taskID, titles)
		}
		ids, _ := req.CategoryIDs.Value()
		return h.taskService.UpdateCategories(c.Request.Context(), userID, taskID, ids)
	})
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	taskID, ok := currentTaskID(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), userID, taskID); err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GenerateTasks turns free text into task drafts using AI. Nothing is saved.
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	var req dto.GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.taskService.GenerateDrafts(c.Request.Context(), req.Text)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDraftDTOs(drafts),
	})
}

func (h *TaskHandler) respondUpdate(c *gin.Context, update func(userID, taskID uint64) (*models.Task, error)) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	taskID, ok := currentTaskID(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	task, err := update(userID, taskID)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

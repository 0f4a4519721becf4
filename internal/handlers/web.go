package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker/internal/constants"
	"github.com/yukikurage/task-tracker/internal/dto"
	apierrors "github.com/yukikurage/task-tracker/internal/errors"
	"github.com/yukikurage/task-tracker/internal/middleware"
	"github.com/yukikurage/task-tracker/internal/optional"
	"github.com/yukikurage/task-tracker/internal/services"
)

// deadlineLayout is what an HTML datetime-local input submits
const deadlineLayout = "2006-01-02T15:04"

// CookieOptions configures the token cookie of the browser flows.
type CookieOptions struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// WebHandler serves the browser flows. The identity token travels in an
// HttpOnly cookie and outcomes are reported as flash messages followed by a
// redirect.
type WebHandler struct {
	authService     *services.AuthService
	taskService     *services.TaskService
	categoryService *services.CategoryService
	cookie          CookieOptions
	location        *time.Location
}

func NewWebHandler(authService *services.AuthService, taskService *services.TaskService, categoryService *services.CategoryService, cookie CookieOptions) *WebHandler {
	return &WebHandler{
		authService:     authService,
		taskService:     taskService,
		categoryService: categoryService,
		cookie:          cookie,
		location:        time.Local,
	}
}

type webTaskForm struct {
	Title       string   `form:"title"`
	Description string   `form:"description"`
	Deadline    string   `form:"deadline"`
	Priority    string   `form:"priority"`
	CategoryIDs []uint64 `form:"category_ids"`
}

type webRegisterForm struct {
	Name     string `form:"name"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

type webLoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

type webCategoryForm struct {
	Title string `form:"title"`
}

type webDeleteCategoriesForm struct {
	IDs []uint64 `form:"ids"`
}

// Register handles the sign-up form and sends the user on to the login page
func (h *WebHandler) Register(c *gin.Context) {
	var form webRegisterForm
	if err := c.ShouldBind(&form); err != nil {
		h.redirectWithFlash(c, "/web/register", "Invalid form")
		return
	}

	_, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		h.redirectWithFlash(c, "/web/register", apierrors.Message(err))
		return
	}

	h.redirectWithFlash(c, "/web/login", "Registration complete, please log in")
}

// Login sets the token cookie and redirects to the task list
func (h *WebHandler) Login(c *gin.Context) {
	var form webLoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.redirectWithFlash(c, "/web/login", "Invalid form")
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		h.redirectWithFlash(c, "/web/login", apierrors.Message(err))
		return
	}

	h.setTokenCookie(c, token, int(h.cookie.MaxAge/time.Second))
	h.redirectWithFlash(c, "/web/tasks", "Welcome, "+user.Name)
}

// Logout clears the token cookie. Tokens are not revoked server side.
func (h *WebHandler) Logout(c *gin.Context) {
	h.setTokenCookie(c, "", -1)
	h.redirectWithFlash(c, "/web/login", "You have been logged out")
}

// DeleteAccount removes the current user and clears the cookie
func (h *WebHandler) DeleteAccount(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if err := h.authService.DeleteAccount(c.Request.Context(), userID); err != nil {
		h.redirectWithFlash(c, "/web/tasks", apierrors.Message(err))
		return
	}

	h.setTokenCookie(c, "", -1)
	h.redirectWithFlash(c, "/web/login", "Account deleted")
}

// ListTasks returns the current user's tasks and the category vocabulary
func (h *WebHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	tasks, err := h.taskService.ListAll(c.Request.Context(), userID)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}
	categories, err := h.categoryService.ListAll(c.Request.Context())
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":      dto.ToTaskDTOs(tasks),
		"categories": dto.ToCategoryDTOs(categories),
	})
}

// CreateTask handles the new task form
func (h *WebHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var form webTaskForm
	if err := c.ShouldBind(&form); err != nil {
		h.redirectWithFlash(c, "/web/tasks", "Invalid form")
		return
	}

	draft := services.TaskDraft{
		Title:       form.Title,
		Priority:    form.Priority,
		CategoryIDs: form.CategoryIDs,
	}
	if form.Description != "" {
		draft.Description = &form.Description
	}
	if deadline := strings.TrimSpace(form.Deadline); deadline != "" {
		parsed, err := time.ParseInLocation(deadlineLayout, deadline, h.location)
		if err != nil {
			h.redirectWithFlash(c, "/web/tasks", "Invalid deadline")
			return
		}
		draft.Deadline = &parsed
	}

	task, err := h.taskService.Create(c.Request.Context(), userID, draft)
	if err != nil {
		h.redirectWithFlash(c, "/web/tasks", apierrors.Message(err))
		return
	}

	h.redirectWithFlash(c, "/web/tasks", "Task \""+task.Title+"\" created")
}

// EditTask handles the edit form of a task. Fields missing from the form
// are left alone; a blank description or deadline clears it.
func (h *WebHandler) EditTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		h.redirectWithFlash(c, "/web/tasks", "Invalid task ID")
		return
	}

	patch, err := h.editPatch(c)
	if err != nil {
		h.redirectWithFlash(c, "/web/tasks", err.Error())
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), userID, taskID, patch)
	if err != nil {
		h.redirectWithFlash(c, "/web/tasks", apierrors.Message(err))
		return
	}

	h.redirectWithFlash(c, "/web/tasks", "Task \""+task.Title+"\" updated")
}

// editPatch maps the posted edit form onto a TaskPatch
func (h *WebHandler) editPatch(c *gin.Context) (services.TaskPatch, error) {
	var patch services.TaskPatch

	if title, ok := c.GetPostForm("title"); ok {
		patch.Title = optional.Set(title)
	}
	if description, ok := c.GetPostForm("description"); ok {
		if strings.TrimSpace(description) == "" {
			patch.Description = optional.Clear[string]()
		} else {
			patch.Description = optional.Set(description)
		}
	}
	if deadline, ok := c.GetPostForm("deadline"); ok {
		deadline = strings.TrimSpace(deadline)
		if deadline == "" {
			patch.Deadline = optional.Clear[time.Time]()
		} else {
			parsed, err := time.ParseInLocation(deadlineLayout, deadline, h.location)
			if err != nil {
				return patch, errors.New("invalid deadline")
			}
			patch.Deadline = optional.Set(parsed)
		}
	}
	// A select left on its empty option keeps the current value.
	if status := strings.TrimSpace(c.PostForm("status")); status != "" {
		patch.Status = optional.Set(status)
	}
	if priority := strings.TrimSpace(c.PostForm("priority")); priority != "" {
		patch.Priority = optional.Set(priority)
	}
	if values, ok := c.GetPostFormArray("category_ids"); ok {
		ids := make([]uint64, 0, len(values))
		for _, v := range values {
			if strings.TrimSpace(v) == "" {
				continue
			}
			id, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return patch, errors.New("invalid category")
			}
			ids = append(ids, id)
		}
		patch.CategoryIDs = optional.Set(ids)
	}

	return patch, nil
}

// DeleteTask handles the delete button of a task
func (h *WebHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		h.redirectWithFlash(c, "/web/tasks", "Invalid task ID")
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), userID, taskID); err != nil {
		h.redirectWithFlash(c, "/web/tasks", apierrors.Message(err))
		return
	}

	h.redirectWithFlash(c, "/web/tasks", "Task deleted")
}

// CreateCategory handles the admin category form
func (h *WebHandler) CreateCategory(c *gin.Context) {
	var form webCategoryForm
	if err := c.ShouldBind(&form); err != nil {
		h.redirectWithFlash(c, "/web/tasks", "Invalid form")
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), form.Title)
	if err != nil {
		h.redirectWithFlash(c, "/web/tasks", apierrors.Message(err))
		return
	}

	h.redirectWithFlash(c, "/web/tasks", "Category \""+category.Title+"\" created")
}

// DeleteCategories handles the admin bulk delete form
func (h *WebHandler) DeleteCategories(c *gin.Context) {
	var form webDeleteCategoriesForm
	if err := c.ShouldBind(&form); err != nil || len(form.IDs) == 0 {
		h.redirectWithFlash(c, "/web/tasks", "Select at least one category")
		return
	}

	if err := h.categoryService.DeleteMany(c.Request.Context(), form.IDs); err != nil {
		h.redirectWithFlash(c, "/web/tasks", apierrors.Message(err))
		return
	}

	h.redirectWithFlash(c, "/web/tasks", "Categories deleted")
}

// Flashes returns and clears the pending flash messages
func (h *WebHandler) Flashes(c *gin.Context) {
	session := sessions.Default(c)
	raw := session.Flashes(constants.FlashKey)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	messages := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			messages = append(messages, s)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
	})
}

func (h *WebHandler) setTokenCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, maxAge, "/", "", h.cookie.Secure, true)
}

func (h *WebHandler) redirectWithFlash(c *gin.Context, location, message string) {
	if err := addFlash(c, message); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}
	c.Redirect(http.StatusSeeOther, location)
}

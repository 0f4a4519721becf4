package handlers

import (
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker/internal/constants"
	"github.com/yukikurage/task-tracker/internal/middleware"
)

// parseIDParam reads a positive id from the named path parameter
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// currentTaskID returns the id of the task loaded by the ownership middleware,
// falling back to the :id parameter.
func currentTaskID(c *gin.Context) (uint64, bool) {
	if task, ok := middleware.GetTask(c); ok {
		return task.ID, true
	}
	return parseIDParam(c, "id")
}

// addFlash queues a message for the next GET /web/flashes
func addFlash(c *gin.Context, message string) error {
	session := sessions.Default(c)
	session.AddFlash(message, constants.FlashKey)
	return session.Save()
}

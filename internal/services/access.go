package services

import "github.com/yukikurage/task-tracker/internal/models"

// RequireOwner fails with ErrTaskNotFound unless user owns task. A foreign
// task is reported exactly like a missing one so its existence is not leaked.
func RequireOwner(task *models.Task, user *models.User) error {
	if user == nil {
		return ErrTaskNotFound
	}
	return RequireOwnerID(task, user.ID)
}

// RequireOwnerID is RequireOwner for callers holding only the user id.
func RequireOwnerID(task *models.Task, ownerID uint64) error {
	if task == nil || ownerID == 0 || task.OwnerID != ownerID {
		return ErrTaskNotFound
	}
	return nil
}

// RequireAdmin fails with ErrAdminRequired unless user is an administrator.
func RequireAdmin(user *models.User) error {
	if user == nil || !user.IsAdmin {
		return ErrAdminRequired
	}
	return nil
}

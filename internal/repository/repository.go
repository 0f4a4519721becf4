package repository

import (
	"context"

	"github.com/yukikurage/task-tracker/internal/models"
)

// Store groups the repositories that share one unit of work.
type Store interface {
	Users() UserRepository
	Tasks() TaskRepository
	Categories() CategoryRepository

	// Transaction runs fn against a Store bound to a single transaction.
	// The transaction commits if fn returns nil and rolls back otherwise,
	// including when fn panics.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create inserts a task and its category links
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with its categories preloaded
	FindByID(ctx context.Context, id uint64) (*models.Task, error)

	// ExistsByTitle reports whether ownerID already has a task titled title,
	// ignoring the task with excludeID
	ExistsByTitle(ctx context.Context, ownerID uint64, title string, excludeID uint64) (bool, error)

	// List retrieves an owner's tasks with optional filters
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)

	// Update writes the task's scalar fields
	Update(ctx context.Context, task *models.Task) error

	// ReplaceCategories swaps the task's category links for categoryIDs
	ReplaceCategories(ctx context.Context, taskID uint64, categoryIDs []uint64) error

	// Delete removes a task; its category links go by cascade
	Delete(ctx context.Context, id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	OwnerID  uint64
	Status   *string
	Priority *string
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	// Create creates a new category
	Create(ctx context.Context, category *models.Category) error

	// FindByID finds a category by ID
	FindByID(ctx context.Context, id uint64) (*models.Category, error)

	// FindByTitle finds a category by its normalized title
	FindByTitle(ctx context.Context, title string) (*models.Category, error)

	// FindByIDs returns the categories among ids that exist
	FindByIDs(ctx context.Context, ids []uint64) ([]models.Category, error)

	// FindByTitles returns the categories among titles that exist
	FindByTitles(ctx context.Context, titles []string) ([]models.Category, error)

	// List returns every category ordered by title
	List(ctx context.Context) ([]models.Category, error)

	// Delete removes a category and reports how many rows were deleted
	Delete(ctx context.Context, id uint64) (int64, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// Delete removes a user and reports how many rows were deleted.
	// The user's tasks go by cascade.
	Delete(ctx context.Context, id uint64) (int64, error)
}

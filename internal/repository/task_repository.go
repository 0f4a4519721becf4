package repository

import (
	"context"

	"github.com/yukikurage/task-tracker/internal/database"
	"github.com/yukikurage/task-tracker/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create inserts the task and links it to task.Categories. The categories
// themselves must already exist and are not written.
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit("Owner", "Categories.*").Create(task).Error
}

// FindByID finds a task by ID with its categories preloaded
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).
		Scopes(database.WithCategories).
		First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ExistsByTitle reports whether the owner already uses title
func (r *GormTaskRepository) ExistsByTitle(ctx context.Context, ownerID uint64, title string, excludeID uint64) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Task{}).
		Scopes(database.OwnedBy(ownerID)).
		Where("tasks.title = ?", title)
	if excludeID != 0 {
		query = query.Where("tasks.id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List retrieves an owner's tasks with optional filters
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	tasks := []models.Task{}
	err := r.db.WithContext(ctx).
		Scopes(
			database.OwnedBy(filter.OwnerID),
			database.FieldEquals("tasks.status", filter.Status),
			database.FieldEquals("tasks.priority", filter.Priority),
			database.WithCategories,
		).
		Order("tasks.id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update writes the task's scalar fields, leaving category links alone
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error
}

// ReplaceCategories swaps the task's category links for categoryIDs
func (r *GormTaskRepository) ReplaceCategories(ctx context.Context, taskID uint64, categoryIDs []uint64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("task_id = ?", taskID).Delete(&models.TaskCategory{}).Error; err != nil {
		return err
	}
	if len(categoryIDs) == 0 {
		return nil
	}

	links := make([]models.TaskCategory, len(categoryIDs))
	for i, categoryID := range categoryIDs {
		links[i] = models.TaskCategory{
			TaskID:     taskID,
			CategoryID: categoryID,
		}
	}

	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
}

// Delete removes a task; category links go by cascade
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.Task{}, id).Error
}

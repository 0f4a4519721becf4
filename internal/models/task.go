package models

import (
	"time"
)

type Task struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	OwnerID     uint64     `gorm:"not null;uniqueIndex:idx_tasks_owner_title" json:"owner_id"`
	Title       string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_tasks_owner_title" json:"title"`
	Description *string    `gorm:"type:text" json:"description"`
	Deadline    *time.Time `json:"deadline"`
	Status      string     `gorm:"type:varchar(32);not null;default:'не выполнена'" json:"status"`
	Priority    string     `gorm:"type:varchar(32);not null;default:'средний'" json:"priority"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Owner      User       `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Categories []Category `gorm:"many2many:task_categories;constraint:OnDelete:CASCADE" json:"categories"`
}

// CategoryIDs returns the ids of the preloaded categories.
func (t *Task) CategoryIDs() []uint64 {
	ids := make([]uint64, 0, len(t.Categories))
	for _, c := range t.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

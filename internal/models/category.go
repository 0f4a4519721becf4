package models

// Category is a shared tag managed by administrators. Titles are stored lowercased.
type Category struct {
	ID    uint64 `gorm:"primarykey" json:"id"`
	Title string `gorm:"type:varchar(50);uniqueIndex;not null" json:"title"`
}

// TaskCategory is the join row between a task and a category.
type TaskCategory struct {
	TaskID     uint64 `gorm:"primarykey"`
	CategoryID uint64 `gorm:"primarykey"`
}

func (TaskCategory) TableName() string {
	return "task_categories"
}

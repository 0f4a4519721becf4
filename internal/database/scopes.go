package database

import (
	"gorm.io/gorm"
)

// OwnedBy restricts a task query to one owner.
func OwnedBy(ownerID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tasks.owner_id = ?", ownerID)
	}
}

// FieldEquals filters column by value when value is non-nil. Callers pass
// normalized values; stored vocabulary values are normalized on write.
func FieldEquals(column string, value *string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if value == nil {
			return db
		}
		return db.Where(column+" = ?", *value)
	}
}

// WithCategories eager-loads task categories in a stable order.
func WithCategories(db *gorm.DB) *gorm.DB {
	return db.Preload("Categories", func(db *gorm.DB) *gorm.DB {
		return db.Order("categories.id ASC")
	})
}

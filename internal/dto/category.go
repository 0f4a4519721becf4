package dto

import "github.com/yukikurage/task-tracker/internal/models"

// CategoryDTO represents a category in API responses
type CategoryDTO struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
}

type CreateCategoryRequest struct {
	Title string `json:"title" form:"title" binding:"required"`
}

// DeleteCategoriesRequest names the categories removed in one batch
type DeleteCategoriesRequest struct {
	IDs []uint64 `json:"ids" form:"ids" binding:"required,min=1"`
}

// ToCategoryDTOs converts categories, never returning nil
func ToCategoryDTOs(categories []models.Category) []CategoryDTO {
	items := make([]CategoryDTO, len(categories))
	for i, c := range categories {
		items[i] = CategoryDTO{ID: c.ID, Title: c.Title}
	}
	return items
}

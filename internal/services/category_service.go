package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/yukikurage/task-tracker/internal/models"
	"github.com/yukikurage/task-tracker/internal/repository"
	"gorm.io/gorm"
)

const maxCategoryTitleLength = 50

// CategoryService manages the shared category vocabulary and is the only
// place that decides whether a category exists.
type CategoryService struct {
	store repository.Store
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(store repository.Store) *CategoryService {
	return &CategoryService{store: store}
}

// WithStore returns a CategoryService bound to store, typically a
// transaction opened by another service.
func (s *CategoryService) WithStore(store repository.Store) *CategoryService {
	return &CategoryService{store: store}
}

// NormalizeCategoryTitle trims and lowercases a category title.
func NormalizeCategoryTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// Create adds a category after normalizing its title
func (s *CategoryService) Create(ctx context.Context, title string) (*models.Category, error) {
	clean := NormalizeCategoryTitle(title)
	if clean == "" {
		return nil, ErrEmptyCategoryTitle
	}
	if utf8.RuneCountInString(clean) > maxCategoryTitleLength {
		return nil, ErrCategoryTooLong
	}

	category := &models.Category{Title: clean}
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		_, err := tx.Categories().FindByTitle(ctx, clean)
		switch {
		case err == nil:
			return ErrDuplicateCategory
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return storageError("check category", err)
		}

		if err := tx.Categories().Create(ctx, category); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateCategory
			}
			return storageError("create category", err)
		}
		return nil
	})
	if err != nil {
		return nil, classify("create category", err)
	}

	return category, nil
}

// ListAll returns every category ordered by title
func (s *CategoryService) ListAll(ctx context.Context) ([]models.Category, error) {
	categories, err := s.store.Categories().List(ctx)
	if err != nil {
		return nil, storageError("list categories", err)
	}
	return categories, nil
}

// Delete removes a category. Tasks keep existing; only their links to the
// category are removed.
func (s *CategoryService) Delete(ctx context.Context, categoryID uint64) error {
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		return deleteCategory(ctx, tx, categoryID)
	})
	return classify("delete category", err)
}

// DeleteMany removes all categoryIDs or none of them. The first unknown id
// aborts the batch.
func (s *CategoryService) DeleteMany(ctx context.Context, categoryIDs []uint64) error {
	ids := uniqueUint64(categoryIDs)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		for _, id := range ids {
			if err := deleteCategory(ctx, tx, id); err != nil {
				return err
			}
		}
		return nil
	})
	return classify("delete categories", err)
}

func deleteCategory(ctx context.Context, tx repository.Store, categoryID uint64) error {
	affected, err := tx.Categories().Delete(ctx, categoryID)
	if err != nil {
		return storageError("delete category", err)
	}
	if affected == 0 {
		return withDetail(ErrCategoryNotFound, "id %d", categoryID)
	}
	return nil
}

// Resolve loads the categories with the given ids, failing with
// ErrUnresolvedCategory if any of them does not exist.
func (s *CategoryService) Resolve(ctx context.Context, categoryIDs []uint64) ([]models.Category, error) {
	ids := uniqueUint64(categoryIDs)
	categories, err := s.store.Categories().FindByIDs(ctx, ids)
	if err != nil {
		return nil, storageError("resolve categories", err)
	}

	if len(categories) != len(ids) {
		found := make(map[uint64]struct{}, len(categories))
		for _, c := range categories {
			found[c.ID] = struct{}{}
		}
		missing := make([]uint64, 0, len(ids)-len(categories))
		for _, id := range ids {
			if _, ok := found[id]; !ok {
				missing = append(missing, id)
			}
		}
		return nil, withDetail(ErrUnresolvedCategory, "ids %v", missing)
	}

	return categories, nil
}

// ResolveTitles is Resolve keyed by title. Titles are normalized first.
func (s *CategoryService) ResolveTitles(ctx context.Context, titles []string) ([]models.Category, error) {
	clean := make([]string, 0, len(titles))
	seen := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		n := NormalizeCategoryTitle(t)
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		clean = append(clean, n)
	}

	categories, err := s.store.Categories().FindByTitles(ctx, clean)
	if err != nil {
		return nil, storageError("resolve categories", err)
	}

	if len(categories) != len(clean) {
		found := make(map[string]struct{}, len(categories))
		for _, c := range categories {
			found[c.Title] = struct{}{}
		}
		missing := make([]string, 0, len(clean)-len(categories))
		for _, t := range clean {
			if _, ok := found[t]; !ok {
				missing = append(missing, t)
			}
		}
		return nil, withDetail(ErrUnresolvedCategory, "%q", missing)
	}

	return categories, nil
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}

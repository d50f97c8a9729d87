package workflow

import (
	"context"
	"sort"
	"strconv"

	"github.com/Kyz7/hub/internal/apperror"
	"github.com/Kyz7/hub/internal/models"
)

// ReorderSections sets sort_order for every section in positions, keyed by
// id. Either all rows are updated or none are.
func (s *Service) ReorderSections(ctx context.Context, principal *models.User, positions map[string]int) ([]uint, error) {
	if err := s.authorize(principal, models.CapReorderSection); err != nil {
		return nil, err
	}
	return s.reorder(ctx, &models.Section{}, "Section", positions)
}

func (s *Service) ReorderContents(ctx context.Context, principal *models.User, positions map[string]int) ([]uint, error) {
	if err := s.authorize(principal, models.CapReorderContent); err != nil {
		return nil, err
	}
	return s.reorder(ctx, &models.Content{}, "Content", positions)
}

func (s *Service) reorder(ctx context.Context, model any, resource string, positions map[string]int) ([]uint, error) {
	ids := make([]uint, 0, len(positions))
	order := make(map[uint]int, len(positions))
	for key, position := range positions {
		id, err := strconv.ParseUint(key, 10, 0)
		if err != nil || id == 0 {
			return nil, apperror.Validation("Invalid identifier", map[string]string{"id": key})
		}
		if _, dup := order[uint(id)]; dup {
			return nil, apperror.Validation("Identifier given more than once", map[string]string{"id": key})
		}
		ids = append(ids, uint(id))
		order[uint(id)] = position
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) == 0 {
		return ids, nil
	}

	_, err := s.transaction(ctx, func(r *run) error {
		var existing []uint
		if err := r.tx.Model(model).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
			return err
		}
		if len(existing) != len(ids) {
			return apperror.NotFound(resource)
		}
		for _, id := range ids {
			if err := r.tx.Model(model).Where("id = ?", id).Update("sort_order", order[id]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

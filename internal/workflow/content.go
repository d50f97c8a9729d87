package workflow

import (
	"context"
	"fmt"

	"github.com/Kyz7/hub/internal/apperror"
	"github.com/Kyz7/hub/internal/models"
	"github.com/Kyz7/hub/internal/snapshot"
	"github.com/google/uuid"
)

func (r *run) loadContent(id uint) (*models.Content, models.Item, error) {
	var content models.Content
	if err := lockForUpdate(r.tx).Preload("Section.Page").First(&content, id).Error; err != nil {
		return nil, nil, notFound(err, "Content")
	}
	item, err := r.loadItem(&content)
	if err != nil {
		return nil, nil, err
	}
	return &content, item, nil
}

func (r *run) loadItem(content *models.Content) (models.Item, error) {
	item, err := models.NewItem(content.Kind)
	if err != nil {
		return nil, err
	}
	if err := lockForUpdate(r.tx).First(item, content.ObjectID).Error; err != nil {
		return nil, notFound(err, "Content item")
	}
	content.Item = item
	return item, nil
}

// removeContent deletes the link, its item and, after commit, every stored
// file the item still references.
func (r *run) removeContent(content *models.Content, item models.Item) error {
	if fileBacked(item) {
		seen := map[string]bool{}
		paths := []*string{}
		for _, u := range item.Units() {
			paths = append(paths, u.Working.Get(), u.Published.Get(), item.Snapshot().Get(u.Working.Name))
		}
		for _, p := range paths {
			if p == nil || *p == "" || seen[*p] {
				continue
			}
			seen[*p] = true
			r.deletes = append(r.deletes, *p)
		}
	}
	if err := r.tx.Delete(item).Error; err != nil {
		return err
	}
	return r.tx.Delete(content).Error
}

func contentRedirect(content *models.Content) string {
	if content.Section == nil {
		return ""
	}
	return sectionRedirect(content.Section)
}

// SubmitContent applies transitions to the item behind a content link. A
// rejection that empties a freshly added item removes it altogether.
func (s *Service) SubmitContent(ctx context.Context, principal *models.User, contentID uint, sub Submission) (*Result, error) {
	return s.transaction(ctx, func(r *run) error {
		content, item, err := r.loadContent(contentID)
		if err != nil {
			return err
		}
		if err := validate(item, sub); err != nil {
			return err
		}
		if err := s.authorize(principal, transitionCapabilities(sub.Transitions)...); err != nil {
			return err
		}

		remove, err := s.apply(ctx, r, item, sub)
		if err != nil {
			return err
		}
		r.res.Redirect = contentRedirect(content)
		if err := r.recordAll(principal, models.TargetContent, content.ID, sub.Transitions, item); err != nil {
			return err
		}

		if remove {
			r.res.Deleted = true
			return r.removeContent(content, item)
		}
		item.SetModifiedBy(principal.ID)
		return r.save(item)
	})
}

// AddContent creates an item of kind under a section. Creation is itself an
// update request, so the submission must request every unit it writes; the
// snapshot of a new item is all nulls.
func (s *Service) AddContent(ctx context.Context, principal *models.User, sectionID uint, kind models.ContentKind, sub Submission) (*models.Content, *Result, error) {
	if !kind.Valid() {
		return nil, nil, apperror.Validation("Unknown content type", map[string]string{"kind": string(kind)})
	}
	for _, t := range sub.Transitions {
		if t.Action != ActionRequestUpdate {
			return nil, nil, apperror.Validation("New content can only be submitted as an update request", map[string]string{"action": string(t.Action)})
		}
	}

	var content *models.Content
	res, err := s.transaction(ctx, func(r *run) error {
		section, err := r.loadSection(sectionID)
		if err != nil {
			return err
		}
		item, err := models.NewItem(kind)
		if err != nil {
			return err
		}
		if err := validate(item, sub); err != nil {
			return err
		}
		if err := s.authorize(principal, append([]string{models.CapAddContent}, transitionCapabilities(sub.Transitions)...)...); err != nil {
			return err
		}

		*item.Snapshot() = snapshot.Capture(item.WorkingFields()...)
		if _, err := s.apply(ctx, r, item, sub); err != nil {
			return err
		}
		item.SetTitle(fmt.Sprintf("%s-%s", kind, uuid.NewString()[:8]))
		item.SetModifiedBy(principal.ID)
		if err := r.tx.Create(item).Error; err != nil {
			return err
		}

		var last int
		if err := r.tx.Model(&models.Content{}).
			Where("section_id = ?", section.ID).
			Select("COALESCE(MAX(sort_order), 0)").
			Scan(&last).Error; err != nil {
			return err
		}
		content = &models.Content{
			SectionID: section.ID,
			Kind:      kind,
			ObjectID:  item.ItemID(),
			Status:    models.ContentHide,
			Order:     last + 1,
			Item:      item,
		}
		if err := r.tx.Create(content).Error; err != nil {
			return err
		}

		r.res.Redirect = sectionRedirect(section)
		if err := r.record(principal, models.TargetContent, content.ID, models.CapAddContent, models.LocaleNone, item); err != nil {
			return err
		}
		return r.recordAll(principal, models.TargetContent, content.ID, sub.Transitions, item)
	})
	if err != nil {
		return nil, nil, err
	}
	return content, res, nil
}

// DisplayContent publishes a fully confirmed item and shows it. Incomplete
// confirmation is reported as a warning and nothing changes.
func (s *Service) DisplayContent(ctx context.Context, principal *models.User, contentID uint) (*Result, error) {
	return s.transaction(ctx, func(r *run) error {
		content, item, err := r.loadContent(contentID)
		if err != nil {
			return err
		}
		if err := s.authorize(principal, models.CapDisplayContent); err != nil {
			return err
		}
		r.res.Redirect = contentRedirect(content)

		if !models.Confirmed(item) {
			r.res.warn("Confirm all updates before displaying")
			return nil
		}

		for _, u := range item.Units() {
			old := u.Published.Get()
			u.Publish()
			u.Clear()
			if fileBacked(item) {
				r.supersede(old, u.Published.Get(), u.Working.Get())
			}
		}
		*item.Snapshot() = nil
		item.SetModifiedBy(principal.ID)
		if err := r.save(item); err != nil {
			return err
		}

		content.Status = models.ContentDisplay
		if err := r.save(content); err != nil {
			return err
		}
		return r.record(principal, models.TargetContent, content.ID, models.CapDisplayContent, models.LocaleNone, nil)
	})
}

// HideContent hides the link and drops any pending or confirmed update. It
// needs no confirmation.
func (s *Service) HideContent(ctx context.Context, principal *models.User, contentID uint) (*Result, error) {
	return s.transaction(ctx, func(r *run) error {
		content, item, err := r.loadContent(contentID)
		if err != nil {
			return err
		}
		if err := s.authorize(principal, models.CapHideContent); err != nil {
			return err
		}

		for _, u := range item.Units() {
			u.Clear()
		}
		*item.Snapshot() = nil
		item.SetModifiedBy(principal.ID)
		if err := r.save(item); err != nil {
			return err
		}

		content.Status = models.ContentHide
		if err := r.save(content); err != nil {
			return err
		}
		r.res.Redirect = contentRedirect(content)
		return r.record(principal, models.TargetContent, content.ID, models.CapHideContent, models.LocaleNone, nil)
	})
}

func (s *Service) DeleteContent(ctx context.Context, principal *models.User, contentID uint) (*Result, error) {
	return s.transaction(ctx, func(r *run) error {
		content, item, err := r.loadContent(contentID)
		if err != nil {
			return err
		}
		if err := s.authorize(principal, models.CapDeleteContent); err != nil {
			return err
		}
		r.res.Redirect = contentRedirect(content)
		r.res.Deleted = true
		return r.removeContent(content, item)
	})
}

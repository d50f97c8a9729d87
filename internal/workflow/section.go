package workflow

import (
	"context"
	"fmt"

	"github.com/Kyz7/hub/internal/apperror"
	"github.com/Kyz7/hub/internal/models"
)

func sectionRedirect(section *models.Section) string {
	if section.Page == nil {
		return fmt.Sprintf("/sections/%d", section.ID)
	}
	return fmt.Sprintf("/pages/%s#section-%d", section.Page.Slug, section.ID)
}

func (r *run) loadSection(id uint) (*models.Section, error) {
	var section models.Section
	if err := lockForUpdate(r.tx).Preload("Page").First(&section, id).Error; err != nil {
		return nil, notFound(err, "Section")
	}
	return &section, nil
}

// SubmitSection applies request/confirm/reject transitions to the section's
// title units.
func (s *Service) SubmitSection(ctx context.Context, principal *models.User, sectionID uint, sub Submission) (*Result, error) {
	return s.transaction(ctx, func(r *run) error {
		section, err := r.loadSection(sectionID)
		if err != nil {
			return err
		}
		if err := validate(section, sub); err != nil {
			return err
		}
		if err := s.authorize(principal, transitionCapabilities(sub.Transitions)...); err != nil {
			return err
		}

		if _, err := s.apply(ctx, r, section, sub); err != nil {
			return err
		}
		section.ModifiedByID = &principal.ID
		if err := r.save(section); err != nil {
			return err
		}

		r.res.Redirect = sectionRedirect(section)
		return r.recordAll(principal, models.TargetSection, section.ID, sub.Transitions, section)
	})
}

// PublishSection copies confirmed drafts of both locales into the published
// titles. An already published or not fully confirmed section is left
// untouched and reported as a warning.
func (s *Service) PublishSection(ctx context.Context, principal *models.User, sectionID uint) (*Result, error) {
	return s.transaction(ctx, func(r *run) error {
		section, err := r.loadSection(sectionID)
		if err != nil {
			return err
		}
		if err := s.authorize(principal, models.CapPublishSection); err != nil {
			return err
		}
		r.res.Redirect = sectionRedirect(section)

		if section.Status == models.SectionPublished {
			r.res.warn("Section is already published")
			return nil
		}
		if !models.Confirmed(section) {
			r.res.warn("Confirm all updates before publishing")
			return nil
		}

		for _, u := range section.Units() {
			u.Publish()
			u.Clear()
		}
		section.OriginalData = nil
		section.Status = models.SectionPublished
		section.ModifiedByID = &principal.ID
		if err := r.save(section); err != nil {
			return err
		}
		return r.record(principal, models.TargetSection, section.ID, models.CapPublishSection, models.LocaleNone, nil)
	})
}

func (s *Service) UnpublishSection(ctx context.Context, principal *models.User, sectionID uint) (*Result, error) {
	return s.transaction(ctx, func(r *run) error {
		section, err := r.loadSection(sectionID)
		if err != nil {
			return err
		}
		if err := s.authorize(principal, models.CapUnpublishSection); err != nil {
			return err
		}
		if section.Status != models.SectionPublished {
			return apperror.InvalidState("Section is not published")
		}

		section.Status = models.SectionDraft
		section.ModifiedByID = &principal.ID
		if err := r.save(section); err != nil {
			return err
		}
		r.res.Redirect = sectionRedirect(section)
		return r.record(principal, models.TargetSection, section.ID, models.CapUnpublishSection, models.LocaleNone, nil)
	})
}

// DeleteSection removes a draft section with all its contents.
func (s *Service) DeleteSection(ctx context.Context, principal *models.User, sectionID uint) (*Result, error) {
	return s.transaction(ctx, func(r *run) error {
		section, err := r.loadSection(sectionID)
		if err != nil {
			return err
		}
		if err := s.authorize(principal, models.CapDeleteSection); err != nil {
			return err
		}
		if section.Status != models.SectionDraft {
			return apperror.InvalidState("Only draft sections can be deleted")
		}

		if err := r.deleteSection(section); err != nil {
			return err
		}
		if section.Page != nil {
			r.res.Redirect = "/pages/" + section.Page.Slug
		}
		return nil
	})
}

func (r *run) deleteSection(section *models.Section) error {
	var contents []models.Content
	if err := r.tx.Where("section_id = ?", section.ID).Find(&contents).Error; err != nil {
		return err
	}
	for i := range contents {
		item, err := r.loadItem(&contents[i])
		if err != nil {
			return err
		}
		if err := r.removeContent(&contents[i], item); err != nil {
			return err
		}
	}
	return r.tx.Delete(section).Error
}

// DeletePage removes a page with every section and content beneath it,
// whatever the sections' status.
func (s *Service) DeletePage(ctx context.Context, principal *models.User, pageID uint) (*Result, error) {
	return s.transaction(ctx, func(r *run) error {
		if err := s.authorize(principal, models.CapDeletePage); err != nil {
			return err
		}

		var page models.Page
		if err := lockForUpdate(r.tx).First(&page, pageID).Error; err != nil {
			return notFound(err, "Page")
		}

		var sections []models.Section
		if err := r.tx.Where("page_id = ?", page.ID).Find(&sections).Error; err != nil {
			return err
		}
		for i := range sections {
			if err := r.deleteSection(&sections[i]); err != nil {
				return err
			}
		}

		r.res.Redirect = "/pages"
		r.res.Deleted = true
		return r.tx.Delete(&page).Error
	})
}

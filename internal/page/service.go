// Package page manages pages and the sections created under them.
package page

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Kyz7/hub/internal/apperror"
	"github.com/Kyz7/hub/internal/models"
	"github.com/Kyz7/hub/internal/utils"
	"github.com/Kyz7/hub/internal/workflow"
	"gorm.io/gorm"
)

const slugAttempts = 10

type Input struct {
	TitleEN *string `json:"title_en"`
	TitleUK *string `json:"title_uk"`
}

func (in Input) normalize() Input {
	return Input{TitleEN: trimmed(in.TitleEN), TitleUK: trimmed(in.TitleUK)}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

type Service struct {
	db       *gorm.DB
	gate     workflow.Gate
	workflow *workflow.Service
}

func NewService(db *gorm.DB, gate workflow.Gate, wf *workflow.Service) *Service {
	return &Service{db: db, gate: gate, workflow: wf}
}

func (s *Service) authorize(principal *models.User, capability string) error {
	if principal == nil || !s.gate.HasCapability(principal, capability) {
		return apperror.Forbidden(capability)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, principal *models.User, in Input) (*models.Page, error) {
	if err := s.authorize(principal, models.CapAddPage); err != nil {
		return nil, err
	}
	in = in.normalize()

	page := &models.Page{TitleEN: in.TitleEN, TitleUK: in.TitleUK, ModifiedByID: &principal.ID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkTitles(tx, in, 0); err != nil {
			return err
		}
		slug, err := uniqueSlug(tx, in, 0)
		if err != nil {
			return err
		}
		page.Slug = slug
		return tx.Create(page).Error
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Update replaces both titles. The slug is derived again when a title
// changed or the page has none.
func (s *Service) Update(ctx context.Context, principal *models.User, id uint, in Input) (*models.Page, error) {
	if err := s.authorize(principal, models.CapChangePage); err != nil {
		return nil, err
	}
	in = in.normalize()

	var page models.Page
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&page, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Page")
			}
			return err
		}
		if err := checkTitles(tx, in, page.ID); err != nil {
			return err
		}

		changed := !sameString(page.TitleEN, in.TitleEN) || !sameString(page.TitleUK, in.TitleUK)
		if changed || page.Slug == "" {
			slug, err := uniqueSlug(tx, in, page.ID)
			if err != nil {
				return err
			}
			page.Slug = slug
		}

		page.TitleEN, page.TitleUK = in.TitleEN, in.TitleUK
		page.ModifiedByID = &principal.ID
		return tx.Omit("Sections", "ModifiedBy").Save(&page).Error
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *Service) Delete(ctx context.Context, principal *models.User, id uint) (*workflow.Result, error) {
	return s.workflow.DeletePage(ctx, principal, id)
}

// List returns pages ordered by their title in l.
func (s *Service) List(ctx context.Context, l models.Locale) ([]models.Page, error) {
	order := "COALESCE(NULLIF(title_en, ''), title_uk), id"
	if l == models.LocaleUK {
		order = "COALESCE(NULLIF(title_uk, ''), title_en), id"
	}

	var pages []models.Page
	err := s.db.WithContext(ctx).Order(order).Find(&pages).Error
	return pages, err
}

// GetBySlug loads a page with its sections and contents in display order,
// each content carrying its item.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Page, error) {
	db := s.db.WithContext(ctx)

	var page models.Page
	err := db.
		Preload("Sections", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order, id") }).
		Preload("Sections.Contents", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order, id") }).
		Where("slug = ?", slug).
		First(&page).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Page")
	}
	if err != nil {
		return nil, err
	}

	var contents []*models.Content
	for i := range page.Sections {
		for j := range page.Sections[i].Contents {
			contents = append(contents, &page.Sections[i].Contents[j])
		}
	}
	if err := attachItems(db, contents); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateSection appends a draft section to the page. The titles go into the
// working fields; they become visible once confirmed and published.
func (s *Service) CreateSection(ctx context.Context, principal *models.User, pageID uint, in Input) (*models.Section, error) {
	if err := s.authorize(principal, models.CapAddSection); err != nil {
		return nil, err
	}
	in = in.normalize()

	section := &models.Section{
		PageID:       pageID,
		TitleDraftEN: in.TitleEN,
		TitleDraftUK: in.TitleUK,
		Status:       models.SectionDraft,
		ModifiedByID: &principal.ID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var page models.Page
		if err := tx.First(&page, pageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Page")
			}
			return err
		}

		var last int
		if err := tx.Model(&models.Section{}).
			Where("page_id = ?", pageID).
			Select("COALESCE(MAX(sort_order), 0)").
			Scan(&last).Error; err != nil {
			return err
		}
		section.Order = last + 1
		return tx.Create(section).Error
	})
	if err != nil {
		return nil, err
	}
	return section, nil
}

func checkTitles(tx *gorm.DB, in Input, exclude uint) error {
	if in.TitleEN == nil && in.TitleUK == nil {
		return apperror.Validation("A page needs a title in at least one language", map[string]string{
			"title_en": "required when title_uk is empty",
			"title_uk": "required when title_en is empty",
		})
	}

	details := map[string]string{}
	for column, title := range map[string]*string{"title_en": in.TitleEN, "title_uk": in.TitleUK} {
		if title == nil {
			continue
		}
		var count int64
		if err := tx.Model(&models.Page{}).
			Where(column+" = ? AND id <> ?", *title, exclude).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			details[column] = "a page with this title already exists"
		}
	}
	if len(details) > 0 {
		return apperror.Validation("Page title is already taken", details)
	}
	return nil
}

// uniqueSlug derives the slug from the English title, falling back to the
// Ukrainian one, and appends a random suffix until it is free. Titles are
// unique per locale, so the suffix is only reached when distinct titles
// slugify alike.
func uniqueSlug(tx *gorm.DB, in Input, exclude uint) (string, error) {
	title := in.TitleEN
	if title == nil {
		title = in.TitleUK
	}
	base := utils.Slugify(*title)
	if base == "" {
		base = "page"
	}

	slug := base
	for i := 0; i < slugAttempts; i++ {
		var count int64
		if err := tx.Model(&models.Page{}).
			Where("slug = ? AND id <> ?", slug, exclude).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = utils.SlugWithSuffix(base)
	}
	return "", fmt.Errorf("page: no free slug for %q after %d attempts", base, slugAttempts)
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

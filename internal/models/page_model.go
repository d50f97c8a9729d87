package models

import (
	"time"

	"github.com/Kyz7/hub/internal/snapshot"
)

type SectionStatus string

const (
	SectionDraft     SectionStatus = "draft"
	SectionPublished SectionStatus = "published"
)

type Page struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TitleEN      *string   `gorm:"size:200;index" json:"title_en"`
	TitleUK      *string   `gorm:"size:200;index" json:"title_uk"`
	Slug         string    `gorm:"size:255;uniqueIndex" json:"slug"`
	ModifiedByID *uint     `gorm:"index" json:"modified_by,omitempty"`
	ModifiedBy   *User     `gorm:"foreignKey:ModifiedByID" json:"-"`
	Sections     []Section `gorm:"foreignKey:PageID" json:"sections,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Title returns the title in l, falling back to the other locale.
func (p *Page) Title(l Locale) string {
	first, second := p.TitleEN, p.TitleUK
	if l == LocaleUK {
		first, second = p.TitleUK, p.TitleEN
	}
	if first != nil && *first != "" {
		return *first
	}
	if second != nil {
		return *second
	}
	return ""
}

type Section struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	PageID              uint            `gorm:"index;not null" json:"page_id"`
	Page                *Page           `gorm:"foreignKey:PageID" json:"-"`
	TitleEN             *string         `gorm:"size:200" json:"title_en"`
	TitleUK             *string         `gorm:"size:200" json:"title_uk"`
	TitleDraftEN        *string         `gorm:"size:200" json:"title_draft_en"`
	TitleDraftUK        *string         `gorm:"size:200" json:"title_draft_uk"`
	IsUpdatePendingEN   bool            `gorm:"default:false" json:"is_update_pending_en"`
	IsUpdatePendingUK   bool            `gorm:"default:false" json:"is_update_pending_uk"`
	IsUpdateConfirmedEN bool            `gorm:"default:false" json:"is_update_confirmed_en"`
	IsUpdateConfirmedUK bool            `gorm:"default:false" json:"is_update_confirmed_uk"`
	Status              SectionStatus   `gorm:"size:20;default:'draft';index" json:"status"`
	OriginalData        snapshot.Values `json:"original_data"`
	Order               int             `gorm:"column:sort_order;default:0;index" json:"order"`
	ModifiedByID        *uint           `gorm:"index" json:"modified_by,omitempty"`
	Contents            []Content       `gorm:"foreignKey:SectionID" json:"contents,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func (s *Section) LocaleUnit(l Locale) Unit {
	if l == LocaleUK {
		return Unit{
			Locale:    LocaleUK,
			Pending:   &s.IsUpdatePendingUK,
			Confirmed: &s.IsUpdateConfirmedUK,
			Working:   stringField("title_draft_uk", snapshot.KindString, &s.TitleDraftUK),
			Published: stringField("title_uk", snapshot.KindString, &s.TitleUK),
		}
	}
	return Unit{
		Locale:    LocaleEN,
		Pending:   &s.IsUpdatePendingEN,
		Confirmed: &s.IsUpdateConfirmedEN,
		Working:   stringField("title_draft_en", snapshot.KindString, &s.TitleDraftEN),
		Published: stringField("title_en", snapshot.KindString, &s.TitleEN),
	}
}

func (s *Section) Units() []Unit {
	return []Unit{s.LocaleUnit(LocaleEN), s.LocaleUnit(LocaleUK)}
}

func (s *Section) WorkingFields() []snapshot.Field {
	return []snapshot.Field{s.LocaleUnit(LocaleEN).Working, s.LocaleUnit(LocaleUK).Working}
}

func (s *Section) Snapshot() *snapshot.Values {
	return &s.OriginalData
}

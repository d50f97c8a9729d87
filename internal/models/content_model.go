package models

import (
	"fmt"
	"time"

	"github.com/Kyz7/hub/internal/snapshot"
)

type ContentStatus string

const (
	ContentHide    ContentStatus = "hide"
	ContentDisplay ContentStatus = "display"
)

type ContentKind string

const (
	KindText  ContentKind = "text"
	KindFile  ContentKind = "file"
	KindImage ContentKind = "image"
	KindVideo ContentKind = "video"
	KindURL   ContentKind = "url"
)

var ContentKinds = []ContentKind{KindText, KindFile, KindImage, KindVideo, KindURL}

func (k ContentKind) Valid() bool {
	for _, known := range ContentKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Content places one typed item inside a section.
type Content struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	SectionID uint          `gorm:"index;not null" json:"section_id"`
	Section   *Section      `gorm:"foreignKey:SectionID" json:"-"`
	Kind      ContentKind   `gorm:"size:20;index:idx_content_object" json:"kind"`
	ObjectID  uint          `gorm:"index:idx_content_object" json:"object_id"`
	Status    ContentStatus `gorm:"size:20;default:'hide';index" json:"status"`
	Order     int           `gorm:"column:sort_order;default:0;index" json:"order"`
	Item      Item          `gorm:"-" json:"item,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Item is one of the closed set of content item variants.
type Item interface {
	Drafted
	ItemID() uint
	ItemKind() ContentKind
	SetTitle(title string)
	SetModifiedBy(userID uint)
}

func NewItem(kind ContentKind) (Item, error) {
	switch kind {
	case KindText:
		return &TextItem{}, nil
	case KindFile:
		return &FileItem{}, nil
	case KindImage:
		return &ImageItem{}, nil
	case KindVideo:
		return &VideoItem{}, nil
	case KindURL:
		return &URLItem{}, nil
	}
	return nil, fmt.Errorf("unknown content kind %q", kind)
}

type ItemMeta struct {
	Title        string    `gorm:"size:255" json:"title"`
	ModifiedByID *uint     `gorm:"index" json:"modified_by,omitempty"`
	CreatedAt    time.Time `json:"created"`
	UpdatedAt    time.Time `json:"updated"`
}

func (m *ItemMeta) SetTitle(title string) { m.Title = title }

func (m *ItemMeta) SetModifiedBy(userID uint) { m.ModifiedByID = &userID }

type TextItem struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	ItemMeta
	ContentEN           *string         `gorm:"type:text" json:"content_en"`
	ContentUK           *string         `gorm:"type:text" json:"content_uk"`
	ContentDraftEN      *string         `gorm:"type:text" json:"content_draft_en"`
	ContentDraftUK      *string         `gorm:"type:text" json:"content_draft_uk"`
	IsUpdatePendingEN   bool            `gorm:"default:false" json:"is_update_pending_en"`
	IsUpdatePendingUK   bool            `gorm:"default:false" json:"is_update_pending_uk"`
	IsUpdateConfirmedEN bool            `gorm:"default:false" json:"is_update_confirmed_en"`
	IsUpdateConfirmedUK bool            `gorm:"default:false" json:"is_update_confirmed_uk"`
	OriginalData        snapshot.Values `json:"original_data"`
}

func (t *TextItem) ItemID() uint          { return t.ID }
func (t *TextItem) ItemKind() ContentKind { return KindText }

func (t *TextItem) LocaleUnit(l Locale) Unit {
	if l == LocaleUK {
		return Unit{
			Locale:    LocaleUK,
			Pending:   &t.IsUpdatePendingUK,
			Confirmed: &t.IsUpdateConfirmedUK,
			Working:   stringField("content_draft_uk", snapshot.KindString, &t.ContentDraftUK),
			Published: stringField("content_uk", snapshot.KindString, &t.ContentUK),
		}
	}
	return Unit{
		Locale:    LocaleEN,
		Pending:   &t.IsUpdatePendingEN,
		Confirmed: &t.IsUpdateConfirmedEN,
		Working:   stringField("content_draft_en", snapshot.KindString, &t.ContentDraftEN),
		Published: stringField("content_en", snapshot.KindString, &t.ContentEN),
	}
}

func (t *TextItem) Units() []Unit {
	return []Unit{t.LocaleUnit(LocaleEN), t.LocaleUnit(LocaleUK)}
}

func (t *TextItem) WorkingFields() []snapshot.Field {
	return []snapshot.Field{t.LocaleUnit(LocaleEN).Working, t.LocaleUnit(LocaleUK).Working}
}

func (t *TextItem) Snapshot() *snapshot.Values { return &t.OriginalData }

// SingleDraft holds the workflow columns shared by the non-localized items.
type SingleDraft struct {
	Content           *string         `gorm:"size:500" json:"content"`
	ContentDraft      *string         `gorm:"size:500" json:"content_draft"`
	IsUpdatePending   bool            `gorm:"default:false" json:"is_update_pending"`
	IsUpdateConfirmed bool            `gorm:"default:false" json:"is_update_confirmed"`
	OriginalData      snapshot.Values `json:"original_data"`
}

func (d *SingleDraft) unit(kind snapshot.Kind) Unit {
	return Unit{
		Locale:    LocaleNone,
		Pending:   &d.IsUpdatePending,
		Confirmed: &d.IsUpdateConfirmed,
		Working:   stringField("content_draft", kind, &d.ContentDraft),
		Published: stringField("content", kind, &d.Content),
	}
}

func (d *SingleDraft) Snapshot() *snapshot.Values { return &d.OriginalData }

type FileItem struct {
	ID uint `gorm:"primaryKey" json:"id"`
	ItemMeta
	SingleDraft
}

func (f *FileItem) ItemID() uint                    { return f.ID }
func (f *FileItem) ItemKind() ContentKind           { return KindFile }
func (f *FileItem) FileBacked() bool                { return true }
func (f *FileItem) SingleUnit() Unit                { return f.unit(snapshot.KindFile) }
func (f *FileItem) Units() []Unit                   { return []Unit{f.SingleUnit()} }
func (f *FileItem) WorkingFields() []snapshot.Field { return []snapshot.Field{f.SingleUnit().Working} }

type ImageItem struct {
	ID uint `gorm:"primaryKey" json:"id"`
	ItemMeta
	SingleDraft
}

func (i *ImageItem) ItemID() uint                    { return i.ID }
func (i *ImageItem) ItemKind() ContentKind           { return KindImage }
func (i *ImageItem) FileBacked() bool                { return true }
func (i *ImageItem) SingleUnit() Unit                { return i.unit(snapshot.KindFile) }
func (i *ImageItem) Units() []Unit                   { return []Unit{i.SingleUnit()} }
func (i *ImageItem) WorkingFields() []snapshot.Field { return []snapshot.Field{i.SingleUnit().Working} }

type VideoItem struct {
	ID uint `gorm:"primaryKey" json:"id"`
	ItemMeta
	SingleDraft
}

func (v *VideoItem) ItemID() uint                    { return v.ID }
func (v *VideoItem) ItemKind() ContentKind           { return KindVideo }
func (v *VideoItem) FileBacked() bool                { return true }
func (v *VideoItem) SingleUnit() Unit                { return v.unit(snapshot.KindFile) }
func (v *VideoItem) Units() []Unit                   { return []Unit{v.SingleUnit()} }
func (v *VideoItem) WorkingFields() []snapshot.Field { return []snapshot.Field{v.SingleUnit().Working} }

type URLItem struct {
	ID uint `gorm:"primaryKey" json:"id"`
	ItemMeta
	SingleDraft
}

func (u *URLItem) ItemID() uint                    { return u.ID }
func (u *URLItem) ItemKind() ContentKind           { return KindURL }
func (u *URLItem) FileBacked() bool                { return false }
func (u *URLItem) SingleUnit() Unit                { return u.unit(snapshot.KindString) }
func (u *URLItem) Units() []Unit                   { return []Unit{u.SingleUnit()} }
func (u *URLItem) WorkingFields() []snapshot.Field { return []snapshot.Field{u.SingleUnit().Working} }

package models

import "github.com/Kyz7/hub/internal/snapshot"

// Unit is the smallest addressable piece of workflow state: one locale of a
// bilingual field, or the single field of a non-localized item.
type Unit struct {
	Locale    Locale
	Pending   *bool
	Confirmed *bool
	Working   snapshot.Field
	Published snapshot.Field
}

func (u Unit) Clear() {
	*u.Pending = false
	*u.Confirmed = false
}

func (u Unit) Publish() {
	u.Published.Set(copyString(u.Working.Get()))
}

// Drafted is implemented by every entity that goes through the
// request/confirm/reject cycle.
type Drafted interface {
	Units() []Unit
	WorkingFields() []snapshot.Field
	Snapshot() *snapshot.Values
}

// Localized entities keep independent pending/confirmed state per locale.
type Localized interface {
	Drafted
	LocaleUnit(l Locale) Unit
}

// Single entities have one unlocalized working field.
type Single interface {
	Drafted
	SingleUnit() Unit
	FileBacked() bool
}

// Confirmed reports whether every unit of d is confirmed.
func Confirmed(d Drafted) bool {
	for _, u := range d.Units() {
		if !*u.Confirmed {
			return false
		}
	}
	return true
}

// Active reports whether any unit of d is pending or confirmed.
func Active(d Drafted) bool {
	for _, u := range d.Units() {
		if *u.Pending || *u.Confirmed {
			return true
		}
	}
	return false
}

func stringField(name string, kind snapshot.Kind, p **string) snapshot.Field {
	return snapshot.Field{
		Name: name,
		Kind: kind,
		Get:  func() *string { return *p },
		Set:  func(v *string) { *p = v },
	}
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

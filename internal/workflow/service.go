// Package workflow implements the bilingual request/confirm/reject/publish
// cycle for sections and content items.
package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Kyz7/hub/internal/apperror"
	"github.com/Kyz7/hub/internal/models"
	"github.com/Kyz7/hub/internal/snapshot"
	"github.com/Kyz7/hub/internal/storage"
	"github.com/gofiber/fiber/v2/log"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Action string

const (
	ActionRequestUpdate Action = "request_update"
	ActionConfirmUpdate Action = "confirm_update"
	ActionRejectUpdate  Action = "reject_update"
)

func (a Action) valid() bool {
	return a == ActionRequestUpdate || a == ActionConfirmUpdate || a == ActionRejectUpdate
}

// Transition targets one unit: a locale of a bilingual entity, or
// models.LocaleNone for a single-field item.
type Transition struct {
	Action Action        `json:"action"`
	Locale models.Locale `json:"locale"`
}

// Capability is the permission the principal needs, e.g. "confirm_update_en".
func (t Transition) Capability() string {
	if t.Locale == models.LocaleNone {
		return string(t.Action)
	}
	return string(t.Action) + "_" + string(t.Locale)
}

var textPolicy = bluemonday.UGCPolicy()

// Submission is one form post: new working values keyed by locale plus the
// transitions to apply. Values are only written for units that are being
// requested or confirmed. File-backed items take their new value from
// Upload; a nil value in Values clears the file.
type Submission struct {
	Values      map[models.Locale]*string
	Upload      *Upload
	Transitions []Transition
}

type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

func (s Submission) has(action Action) bool {
	for _, t := range s.Transitions {
		if t.Action == action {
			return true
		}
	}
	return false
}

// Result is what the boundary shows the user after a submission.
type Result struct {
	Warnings []string `json:"warnings,omitempty"`
	Deleted  bool     `json:"deleted,omitempty"`
	Redirect string   `json:"redirect,omitempty"`
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Gate answers whether a principal holds a capability.
type Gate interface {
	HasCapability(principal *models.User, capability string) bool
}

type Service struct {
	db      *gorm.DB
	storage storage.Storage
	gate    Gate
}

func NewService(db *gorm.DB, store storage.Storage, gate Gate) *Service {
	return &Service{db: db, storage: store, gate: gate}
}

// run carries one transaction plus the file deletions to perform once it
// has committed, and the uploads to discard if it does not.
type run struct {
	tx      *gorm.DB
	res     *Result
	deletes []string
	uploads []string
}

func (s *Service) transaction(ctx context.Context, fn func(r *run) error) (*Result, error) {
	r := &run{res: &Result{}}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r.tx = tx
		return fn(r)
	})
	if err != nil {
		s.discard(ctx, r.uploads)
		return nil, err
	}
	s.discard(ctx, r.deletes)
	return r.res, nil
}

func (s *Service) discard(ctx context.Context, paths []string) {
	for _, path := range paths {
		if err := s.storage.Delete(ctx, path); err != nil {
			log.Warnf("workflow: could not delete stored file %s: %v", path, err)
		}
	}
}

func (s *Service) authorize(principal *models.User, capabilities ...string) error {
	for _, capability := range capabilities {
		if principal == nil || !s.gate.HasCapability(principal, capability) {
			return apperror.Forbidden(capability)
		}
	}
	return nil
}

func transitionCapabilities(ts []Transition) []string {
	caps := make([]string, 0, len(ts))
	for _, t := range ts {
		caps = append(caps, t.Capability())
	}
	return caps
}

// unitFor resolves the unit a transition addresses, dispatching on the
// entity's shape.
func unitFor(d models.Drafted, l models.Locale) (models.Unit, error) {
	switch e := d.(type) {
	case models.Localized:
		if !l.Valid() {
			return models.Unit{}, apperror.Validation("A locale (en or uk) is required for this item", nil)
		}
		return e.LocaleUnit(l), nil
	case models.Single:
		if l != models.LocaleNone {
			return models.Unit{}, apperror.Validation("This item is not localized", map[string]string{"locale": string(l)})
		}
		return e.SingleUnit(), nil
	}
	return models.Unit{}, fmt.Errorf("workflow: %T has no units", d)
}

func validate(d models.Drafted, sub Submission) error {
	if len(sub.Transitions) == 0 {
		return apperror.Validation("No transition requested", nil)
	}
	for _, t := range sub.Transitions {
		if !t.Action.valid() {
			return apperror.Validation("Unknown transition", map[string]string{"action": string(t.Action)})
		}
		if _, err := unitFor(d, t.Locale); err != nil {
			return err
		}
	}
	for l, v := range sub.Values {
		if _, err := unitFor(d, l); err != nil {
			return err
		}
		if v != nil && fileBacked(d) {
			return apperror.Validation("Upload a file instead of sending a path", nil)
		}
	}
	if sub.Upload != nil && !fileBacked(d) {
		return apperror.Validation("This item does not accept files", nil)
	}
	return nil
}

func fileBacked(d models.Drafted) bool {
	single, ok := d.(models.Single)
	return ok && single.FileBacked()
}

// apply runs sub against d. It reports true when a rejection shows that d
// was created in this very cycle and should be removed rather than restored.
func (s *Service) apply(ctx context.Context, r *run, d models.Drafted, sub Submission) (bool, error) {
	snap := d.Snapshot()

	if sub.has(ActionRequestUpdate) && *snap == nil {
		*snap = snapshot.Capture(d.WorkingFields()...)
	}

	values, err := s.incoming(ctx, r, d, sub)
	if err != nil {
		return false, err
	}
	for _, t := range sub.Transitions {
		if t.Action == ActionRejectUpdate {
			continue
		}
		value, ok := values[t.Locale]
		if !ok {
			continue
		}
		u, _ := unitFor(d, t.Locale)
		replaced := u.Working.Get()
		u.Working.Set(value)
		if fileBacked(d) {
			r.supersede(replaced, value, u.Published.Get(), snap.Get(u.Working.Name))
		}
	}

	rejected := false
	for _, t := range sub.Transitions {
		u, err := unitFor(d, t.Locale)
		if err != nil {
			return false, err
		}

		switch t.Action {
		case ActionRequestUpdate:
			*u.Pending = true
			*u.Confirmed = false

		case ActionConfirmUpdate:
			previous := snap.Get(u.Working.Name)
			*u.Pending = false
			*u.Confirmed = true
			*snap = snapshot.UpdateField(*snap, u.Working)
			if fileBacked(d) {
				r.supersede(previous, u.Working.Get(), u.Published.Get())
			}

		case ActionRejectUpdate:
			if *snap == nil {
				u.Clear()
				r.res.warn("There is no pending update to reject")
				continue
			}
			discarded := u.Working.Get()
			snapshot.Restore(ctx, s.storage, *snap, u.Working)
			u.Clear()
			if fileBacked(d) {
				r.supersede(discarded, u.Working.Get(), u.Published.Get())
			}
			rejected = true
		}
	}

	if !rejected {
		return false, nil
	}
	if _, isItem := d.(models.Item); isItem && snap.Empty() {
		return true, nil
	}
	if !models.Active(d) {
		*snap = nil
	}
	return false, nil
}

// incoming returns the working values sub writes: text is sanitised and an
// upload is stored once a transition will use it.
func (s *Service) incoming(ctx context.Context, r *run, d models.Drafted, sub Submission) (map[models.Locale]*string, error) {
	values := make(map[models.Locale]*string, len(sub.Values)+1)
	_, isText := d.(*models.TextItem)
	for l, v := range sub.Values {
		if isText && v != nil {
			clean := textPolicy.Sanitize(*v)
			v = &clean
		}
		values[l] = v
	}

	if sub.Upload == nil || !(sub.has(ActionRequestUpdate) || sub.has(ActionConfirmUpdate)) {
		return values, nil
	}
	path, err := s.storage.Save(ctx, sub.Upload.Filename, sub.Upload.ContentType, sub.Upload.Body)
	if err != nil {
		return nil, fmt.Errorf("workflow: store upload: %w", err)
	}
	r.uploads = append(r.uploads, path)
	values[models.LocaleNone] = &path
	return values, nil
}

// supersede schedules old for deletion unless it is still referenced by the
// working or published value.
func (r *run) supersede(old *string, keep ...*string) {
	if old == nil || *old == "" {
		return
	}
	for _, k := range keep {
		if k != nil && *k == *old {
			return
		}
	}
	r.deletes = append(r.deletes, *old)
}

func (r *run) record(principal *models.User, targetType string, targetID uint, action string, l models.Locale, d models.Drafted) error {
	entry := models.WorkflowHistory{
		TargetType: targetType,
		TargetID:   targetID,
		Action:     action,
		Locale:     l,
		ChangedBy:  principal.ID,
	}
	if d != nil {
		values := map[string]*string{}
		for _, f := range d.WorkingFields() {
			values[f.Name] = f.Get()
		}
		raw, err := json.Marshal(values)
		if err != nil {
			return err
		}
		entry.Values = datatypes.JSON(raw)
	}
	return r.tx.Create(&entry).Error
}

func (r *run) recordAll(principal *models.User, targetType string, targetID uint, ts []Transition, d models.Drafted) error {
	for _, t := range ts {
		if err := r.record(principal, targetType, targetID, string(t.Action), t.Locale, d); err != nil {
			return err
		}
	}
	return nil
}

// save writes v without touching its preloaded associations.
func (r *run) save(v any) error {
	return r.tx.Omit(clause.Associations).Save(v).Error
}

func lockForUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func notFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(resource)
	}
	return err
}

// History lists applied transitions for a section or content link, newest first.
func (s *Service) History(ctx context.Context, targetType string, targetID uint) ([]models.WorkflowHistory, error) {
	var history []models.WorkflowHistory
	err := s.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Preload("User").
		Order("created_at DESC, id DESC").
		Find(&history).Error
	return history, err
}

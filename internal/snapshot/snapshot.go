// Package snapshot captures the working fields of a drafted entity so a
// rejected update can put them back exactly as they were.
package snapshot

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2/log"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindString
	KindFile
)

// Field describes one working field of an entity. File fields hold the
// storage path of the stored object.
type Field struct {
	Name string
	Kind Kind
	Get  func() *string
	Set  func(*string)
}

// Opener is the part of the blob storage a restore needs.
type Opener interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// Values maps a field name to its captured value. A nil Values means no
// snapshot has been taken; a nil entry means the field was empty.
type Values map[string]*string

func Capture(fields ...Field) Values {
	v := make(Values, len(fields))
	for _, f := range fields {
		v[f.Name] = encode(f)
	}
	return v
}

// UpdateField re-captures one field into an existing snapshot. It does
// nothing when no snapshot exists.
func UpdateField(v Values, f Field) Values {
	if v == nil {
		return nil
	}
	v[f.Name] = encode(f)
	return v
}

// Restore writes captured values back onto the given fields. Fields the
// snapshot does not name are left alone. A stored file that can no longer
// be opened is cleared instead of failing the restore.
func Restore(ctx context.Context, opener Opener, v Values, fields ...Field) {
	if v == nil {
		return
	}
	for _, f := range fields {
		value, ok := v[f.Name]
		if !ok {
			continue
		}
		if f.Kind != KindFile || value == nil || *value == "" {
			f.Set(copyString(value))
			continue
		}
		if opener == nil {
			log.Warnf("snapshot: no storage to reopen %s for field %s", *value, f.Name)
			f.Set(nil)
			continue
		}
		rc, err := opener.Open(ctx, *value)
		if err != nil {
			log.Warnf("snapshot: stored file %s for field %s is gone: %v", *value, f.Name, err)
			f.Set(nil)
			continue
		}
		rc.Close()
		f.Set(copyString(value))
	}
}

// Empty reports whether every captured value is null or blank, which is
// what a snapshot taken for a brand-new item looks like.
func (v Values) Empty() bool {
	for _, value := range v {
		if value != nil && *value != "" {
			return false
		}
	}
	return true
}

// Get returns the captured value for a field, or nil.
func (v Values) Get(name string) *string {
	if v == nil {
		return nil
	}
	return v[name]
}

func (v Values) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(map[string]*string(v))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (v *Values) Scan(src interface{}) error {
	var raw []byte
	switch s := src.(type) {
	case nil:
		*v = nil
		return nil
	case []byte:
		raw = s
	case string:
		raw = []byte(s)
	default:
		return fmt.Errorf("snapshot: cannot scan %T", src)
	}
	if len(raw) == 0 || string(raw) == "null" {
		*v = nil
		return nil
	}
	m := map[string]*string{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	*v = m
	return nil
}

func (Values) GormDataType() string {
	return "json"
}

func encode(f Field) *string {
	switch f.Kind {
	case KindString:
		return copyString(f.Get())
	case KindFile:
		p := f.Get()
		if p == nil || *p == "" {
			return nil
		}
		return copyString(p)
	default:
		return nil
	}
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

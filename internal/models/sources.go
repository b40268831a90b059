package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// AudioSource is one voice sample reference. Producers historically wrote
// either a bare string (local path, object-store key or URL) or an object
// carrying any of gcsPath/publicUrl/path. Precedence when several fields are
// present: GCSPath over PublicURL over Path.
type AudioSource struct {
	GCSPath   string `json:"gcsPath,omitempty"`
	PublicURL string `json:"publicUrl,omitempty"`
	Path      string `json:"path,omitempty"`
}

// Ref returns the single reference string the resolver should use.
func (a AudioSource) Ref() string {
	switch {
	case a.GCSPath != "":
		return a.GCSPath
	case a.PublicURL != "":
		return a.PublicURL
	default:
		return a.Path
	}
}

func (a *AudioSource) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = AudioSource{Path: s}
		return nil
	}
	type plain AudioSource
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = AudioSource(p)
	return nil
}

// AudioSourceList is the ordered sample list stored as a JSON text column.
// Legacy shapes tolerated on read: bare string, JSON string, JSON array of
// strings or objects.
type AudioSourceList []AudioSource

func (l *AudioSourceList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*l = nil
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*l = nil
			return nil
		}
		*l = AudioSourceList{{Path: s}}
		return nil
	}
	type plain AudioSourceList
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = AudioSourceList(p)
	return nil
}

// Refs returns the non-empty reference strings in order.
func (l AudioSourceList) Refs() []string {
	refs := make([]string, 0, len(l))
	for _, s := range l {
		if r := s.Ref(); r != "" {
			refs = append(refs, r)
		}
	}
	return refs
}

// Scan implements sql.Scanner, normalizing legacy column shapes once at the
// persistence boundary.
func (l *AudioSourceList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into AudioSourceList", value)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*l = nil
		return nil
	}
	// bare non-JSON string: a single legacy path
	if raw[0] != '[' && raw[0] != '"' && raw[0] != '{' {
		*l = AudioSourceList{{Path: raw}}
		return nil
	}
	if raw[0] == '{' {
		var one AudioSource
		if err := json.Unmarshal([]byte(raw), &one); err != nil {
			return err
		}
		*l = AudioSourceList{one}
		return nil
	}
	return l.UnmarshalJSON([]byte(raw))
}

// Value implements driver.Valuer, always writing the canonical JSON array.
func (l AudioSourceList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]AudioSource(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// LanguageList is the ordered set of selected language codes, stored as a JSON
// text column. A bare string column value is treated as a single code.
type LanguageList []string

func (l *LanguageList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into LanguageList", value)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*l = nil
		return nil
	}
	if raw[0] != '[' {
		code := strings.Trim(raw, `"`)
		if code == "" {
			*l = nil
			return nil
		}
		*l = LanguageList{code}
		return nil
	}
	return json.Unmarshal([]byte(raw), (*[]string)(l))
}

func (l LanguageList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

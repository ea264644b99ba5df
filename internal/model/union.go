package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// StringOrRecord is a JSON value that is either a bare string or an object.
//
// Structured data embedded in pages spells the same field both ways, e.g.
// "logo": "https://acme.test/logo.png" and
// "logo": {"@type": "ImageObject", "url": "https://acme.test/logo.png"}.
// Numbers and booleans decode as their string form.
type StringOrRecord struct {
	str    string
	record map[string]any
}

// NewString returns a StringOrRecord holding s.
func NewString(s string) StringOrRecord {
	return StringOrRecord{str: s}
}

// NewRecord returns a StringOrRecord holding rec.
func NewRecord(rec map[string]any) StringOrRecord {
	return StringOrRecord{record: rec}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *StringOrRecord) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*v = StringOrRecord{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		return json.Unmarshal(data, &v.str)
	case '{':
		return json.Unmarshal(data, &v.record)
	case '[':
		// A single-valued field written as a list: keep the first element.
		var list []StringOrRecord
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		if len(list) > 0 {
			*v = list[0]
		}
		return nil
	default:
		var scalar any
		if err := json.Unmarshal(data, &scalar); err != nil {
			return fmt.Errorf("invalid string or record value: %w", err)
		}
		v.str = scalarString(scalar)
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (v StringOrRecord) MarshalJSON() ([]byte, error) {
	if v.record != nil {
		return json.Marshal(v.record)
	}
	if v.str == "" {
		return []byte("null"), nil
	}
	return json.Marshal(v.str)
}

// IsZero reports whether no value was present.
func (v StringOrRecord) IsZero() bool {
	return v.str == "" && v.record == nil
}

// IsRecord reports whether the value is an object.
func (v StringOrRecord) IsRecord() bool {
	return v.record != nil
}

// Field returns the string form of key in a record value.
// It returns "" for bare strings and missing keys.
func (v StringOrRecord) Field(key string) string {
	if v.record == nil {
		return ""
	}
	raw, ok := v.record[key]
	if !ok {
		return ""
	}
	// Nested records ("address": {...}) and lists yield their first useful text.
	switch val := raw.(type) {
	case map[string]any:
		return NewRecord(val).Text()
	case []any:
		for _, item := range val {
			if s := anyText(item); s != "" {
				return s
			}
		}
		return ""
	default:
		return scalarString(val)
	}
}

// Text returns the canonical text of the value: the bare string itself, or
// for a record the first non-empty of url, contentUrl, name and @id.
func (v StringOrRecord) Text() string {
	if v.record == nil {
		return v.str
	}
	for _, key := range []string{"url", "contentUrl", "name", "@id"} {
		if s := v.Field(key); s != "" {
			return s
		}
	}
	return ""
}

// StringOrRecordList decodes either a single StringOrRecord or an array of them.
type StringOrRecordList []StringOrRecord

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringOrRecordList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []StringOrRecord
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}

	var one StringOrRecord
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	if one.IsZero() {
		*l = nil
		return nil
	}
	*l = StringOrRecordList{one}
	return nil
}

// Texts returns the non-empty Text of every element, or nil.
func (l StringOrRecordList) Texts() []string {
	var out []string
	for _, v := range l {
		if s := v.Text(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// First returns the first element, or a zero value for an empty list.
func (l StringOrRecordList) First() StringOrRecord {
	if len(l) == 0 {
		return StringOrRecord{}
	}
	return l[0]
}

func anyText(v any) string {
	if m, ok := v.(map[string]any); ok {
		return NewRecord(m).Text()
	}
	return scalarString(v)
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

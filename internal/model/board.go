package model

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
	"strings"
)

// Board photo tags, used to name ingested picture files.
const (
	PhotoBefore = "before"
	PhotoAfter  = "after"
)

// Board is one tracked LED panel repair record. Optional string fields are
// omitted from the record file when empty.
type Board struct {
	BoardID string `json:"board_id"`

	// Name is the site the board belongs to.
	Name string `json:"name"`
	IC   string `json:"ic"`
	DC   string `json:"dc"`
	Size string `json:"size"`

	ModuleNumber string `json:"module_number,omitempty"`
	Pixel        string `json:"pixel,omitempty"`
	BoardCode    string `json:"board_code,omitempty"`

	// RunningNo is the tracking serial. Some records carry it split into
	// two parts instead.
	RunningNo   string `json:"running_no,omitempty"`
	RunningNoP1 string `json:"running_no_p1,omitempty"`
	RunningNoP2 string `json:"running_no_p2,omitempty"`

	// Dates are free-form, conventionally YYYY-MM-DD.
	DateRequest string `json:"date_request,omitempty"`
	DODate      string `json:"do_date,omitempty"`
	DateRepair  string `json:"date_repair,omitempty"`

	// Photo paths are relative to the data root once ingested.
	BeforePhoto string `json:"before_photo,omitempty"`
	AfterPhoto  string `json:"after_photo,omitempty"`

	Urgency bool   `json:"urgency"`
	Issues  Issues `json:"issues"`

	// CreatedBy is the operator who created or last replaced the record.
	CreatedBy string `json:"created_by,omitempty"`

	// extra holds record keys this type does not model. They are written
	// back unchanged after the known fields.
	extra map[string]json.RawMessage
}

// boardJSON has Board's fields without its JSON methods.
type boardJSON Board

// boardKeys is the set of keys Board decodes itself.
var boardKeys = func() map[string]bool {
	keys := make(map[string]bool)
	t := reflect.TypeOf(boardJSON{})
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			keys[name] = true
		}
	}
	return keys
}()

// UnmarshalJSON decodes a record line, keeping unknown keys.
func (b *Board) UnmarshalJSON(data []byte) error {
	var known boardJSON
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k := range raw {
		if boardKeys[k] {
			delete(raw, k)
		}
	}
	known.extra = nil
	if len(raw) > 0 {
		known.extra = raw
	}
	*b = Board(known)
	return nil
}

// MarshalJSON encodes the known fields in declaration order followed by any
// unknown keys in sorted order.
func (b Board) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(boardJSON(b)); err != nil {
		return nil, err
	}
	out := bytes.TrimRight(buf.Bytes(), "\n")
	if len(b.extra) == 0 {
		return out, nil
	}

	keys := make([]string, 0, len(b.extra))
	for k := range b.extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out = out[:len(out)-1]
	for _, k := range keys {
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		out = append(out, ',')
		out = append(out, name...)
		out = append(out, ':')
		out = append(out, b.extra[k]...)
	}
	return append(out, '}'), nil
}

// Extra returns the raw value of a record key Board does not model.
func (b Board) Extra(key string) (json.RawMessage, bool) {
	v, ok := b.extra[key]
	return v, ok
}

// KeepExtra copies prev's unknown keys onto b where b has none of its own,
// so a rebuilt record keeps what it was loaded with.
func (b *Board) KeepExtra(prev Board) {
	for k, v := range prev.extra {
		if _, ok := b.extra[k]; ok {
			continue
		}
		if b.extra == nil {
			b.extra = make(map[string]json.RawMessage, len(prev.extra))
		}
		b.extra[k] = v
	}
}

// RunningNumber returns the full running number, joining the split parts
// when the combined field is empty.
func (b Board) RunningNumber() string {
	if b.RunningNo != "" {
		return b.RunningNo
	}
	return b.RunningNoP1 + b.RunningNoP2
}

// RunningNoRight returns the right-hand running number fragment used on
// quotations, falling back to the combined running number.
func (b Board) RunningNoRight() string {
	if b.RunningNoP2 != "" {
		return b.RunningNoP2
	}
	return b.RunningNo
}

// MissingFields lists the required fields that are blank.
func (b Board) MissingFields() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"board_id", b.BoardID},
		{"name", b.Name},
		{"ic", b.IC},
		{"dc", b.DC},
		{"size", b.Size},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

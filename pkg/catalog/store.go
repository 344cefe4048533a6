package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"

	"github.com/fulmenhq/starcat/pkg/safeio"
)

// fieldOrder fixes key order on save; keys outside it follow, sorted.
var fieldOrder = []string{
	FieldName, FieldSize, FieldColor, FieldTexture,
	FieldType, FieldRenderMode, FieldParent, FieldEmissive,
}

// Record is one catalog element exactly as stored, including keys the entry
// schema does not know about. Numbers are kept as json.Number so they are
// written back with the same text they were read with.
type Record struct {
	fields map[string]any
}

// NewRecord builds a record from a validated entry.
func NewRecord(e Entry) Record {
	return Record{fields: e.Fields()}
}

// Fields returns a shallow copy of the record's field map.
func (r Record) Fields() map[string]any {
	out := make(map[string]any, len(r.fields))
	for k, v := range r.fields {
		out[k] = v
	}
	return out
}

// Name returns the record's name, or "" when missing or not a string.
func (r Record) Name() string {
	s, _ := r.fields[FieldName].(string)
	return s
}

// Texture returns the record's texture filename, or "" when missing or not a string.
func (r Record) Texture() string {
	s, _ := r.fields[FieldTexture].(string)
	return s
}

// Type returns the raw type value, or "" when missing.
func (r Record) Type() string {
	s, _ := r.fields[FieldType].(string)
	return s
}

// RenderMode returns the raw renderMode value, or "" when missing.
func (r Record) RenderMode() string {
	s, _ := r.fields[FieldRenderMode].(string)
	return s
}

// Has reports whether the record carries key at all.
func (r Record) Has(key string) bool {
	_, ok := r.fields[key]
	return ok
}

// MarshalJSON writes the record with the fixed key order.
func (r Record) MarshalJSON() ([]byte, error) {
	keys := orderedKeys(r.fields)
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalNoEscape(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := marshalNoEscape(r.fields[k])
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func orderedKeys(fields map[string]any) []string {
	keys := make([]string, 0, len(fields))
	known := make(map[string]bool, len(fieldOrder))
	for _, k := range fieldOrder {
		known[k] = true
		if _, ok := fields[k]; ok {
			keys = append(keys, k)
		}
	}
	var extra []string
	for k := range fields {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Catalog is the in-memory catalog document: an ordered sequence of records
// plus a name index. Order is insertion order and is preserved on save.
type Catalog struct {
	records []Record
	index   map[string]int // name -> number of records carrying it
}

// New returns a catalog holding records in the given order.
func New(records ...Record) *Catalog {
	c := &Catalog{records: append([]Record(nil), records...)}
	c.reindex()
	return c
}

func (c *Catalog) reindex() {
	c.index = make(map[string]int, len(c.records))
	for _, r := range c.records {
		if n := r.Name(); n != "" {
			c.index[n]++
		}
	}
}

// Len returns the number of records.
func (c *Catalog) Len() int { return len(c.records) }

// Records returns the records in document order.
func (c *Catalog) Records() []Record {
	return append([]Record(nil), c.records...)
}

// Names returns every record name in document order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.records))
	for _, r := range c.records {
		names = append(names, r.Name())
	}
	return names
}

// Has reports whether an entry with exactly this name exists.
func (c *Catalog) Has(name string) bool {
	return c.index[name] > 0
}

// Duplicates returns names that appear more than once, in first-seen order.
func (c *Catalog) Duplicates() []string {
	var dups []string
	seen := make(map[string]bool)
	for _, r := range c.records {
		n := r.Name()
		if n != "" && c.index[n] > 1 && !seen[n] {
			seen[n] = true
			dups = append(dups, n)
		}
	}
	return dups
}

// UpsertOutcome says what Upsert did.
type UpsertOutcome int

const (
	Inserted UpsertOutcome = iota
	Replaced
	Skipped
)

func (o UpsertOutcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Replaced:
		return "replaced"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Upsert adds e to the catalog. On a name collision policy decides: abort returns
// a *DuplicateNameError and leaves the catalog unchanged, replace removes every
// prior entry with that name and appends e at the tail, skip keeps the existing entry.
func (c *Catalog) Upsert(e Entry, policy ConflictPolicy) (UpsertOutcome, error) {
	if c.index == nil {
		c.reindex()
	}
	if !c.Has(e.Name) {
		c.records = append(c.records, NewRecord(e))
		c.index[e.Name]++
		return Inserted, nil
	}
	switch policy {
	case ConflictReplace:
		kept := c.records[:0:0]
		for _, r := range c.records {
			if r.Name() != e.Name {
				kept = append(kept, r)
			}
		}
		c.records = append(kept, NewRecord(e))
		c.reindex()
		return Replaced, nil
	case ConflictSkip:
		return Skipped, nil
	default:
		return Skipped, &DuplicateNameError{Name: e.Name}
	}
}

// PruneMissing returns a new catalog holding only records whose texture is in
// files, in original order, and how many records were dropped. c is not modified.
func (c *Catalog) PruneMissing(files []string) (*Catalog, int) {
	present := make(map[string]struct{}, len(files))
	for _, f := range files {
		present[f] = struct{}{}
	}
	kept := make([]Record, 0, len(c.records))
	for _, r := range c.records {
		if _, ok := present[r.Texture()]; ok && r.Texture() != "" {
			kept = append(kept, r)
		}
	}
	return New(kept...), len(c.records) - len(kept)
}

// Marshal renders the catalog as a 2-space indented JSON array with a trailing
// newline. The same catalog always renders to the same bytes.
func (c *Catalog) Marshal() ([]byte, error) {
	records := c.records
	if records == nil {
		records = []Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, describeParseError(data, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after the top-level array")
	}
	if raw == nil {
		return nil, errors.New("catalog should contain an array, got null")
	}

	records := make([]Record, len(raw))
	for i, m := range raw {
		if m == nil {
			return nil, fmt.Errorf("element %d is null, expected an object", i)
		}
		records[i] = Record{fields: m}
	}
	return New(records...), nil
}

func describeParseError(data []byte, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := lineCol(data, syntaxErr.Offset)
		return fmt.Errorf("line %d, column %d: %w", line, col, err)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			return fmt.Errorf("catalog should contain an array of objects, found %s", typeErr.Value)
		}
		return fmt.Errorf("unexpected %s at %s: %w", typeErr.Value, typeErr.Field, err)
	}
	if errors.Is(err, io.EOF) {
		return errors.New("document is empty")
	}
	return err
}

func lineCol(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col := 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// Load reads and parses the catalog at path. A missing file and an unparsable
// file produce distinct *StoreIOError values.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied catalog path
	if err != nil {
		return nil, &StoreIOError{Op: "load", Path: path, Missing: errors.Is(err, fs.ErrNotExist), Err: err}
	}
	c, err := Parse(data)
	if err != nil {
		return nil, &StoreIOError{Op: "parse", Path: path, Err: err}
	}
	return c, nil
}

// Save writes the catalog to path atomically.
func (c *Catalog) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return &StoreIOError{Op: "encode", Path: path, Err: err}
	}
	if err := safeio.WriteFileAtomic(path, data); err != nil {
		return &StoreIOError{Op: "save", Path: path, Err: err}
	}
	return nil
}

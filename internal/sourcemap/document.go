package sourcemap

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	serrors "github.com/srcmap-tools/srcmap/pkg/shared/errors"
	"github.com/srcmap-tools/srcmap/pkg/shared/files"
)

// SourcesKey is the top-level field holding the source paths.
const SourcesKey = "sources"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Document is a parsed source map. Only the "sources" array is decoded;
// every other field stays in its original JSON form.
type Document struct {
	raw     []byte
	sources []gjson.Result
}

// Load reads and parses the source map at path.
func Load(path string) (*Document, error) {
	if err := files.ValidatePath(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, serrors.NewNotFoundError(path, err)
		}
		return nil, serrors.NewIOError("read", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, serrors.NewIOError("read", path, err)
	}
	return Parse(path, data)
}

// Parse validates data as a source map. name is used in errors only.
func Parse(name string, data []byte) (*Document, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, serrors.NewParseError(name, "invalid UTF-8", nil)
	}
	if !gjson.ValidBytes(data) {
		return nil, serrors.NewParseError(name, "invalid JSON", nil)
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, serrors.NewParseError(name, "top-level value is not an object", nil)
	}

	count := 0
	root.ForEach(func(key, _ gjson.Result) bool {
		if key.String() == SourcesKey {
			count++
		}
		return true
	})
	if count > 1 {
		return nil, serrors.NewParseError(name, fmt.Sprintf("duplicate %q key", SourcesKey), nil)
	}

	sources := root.Get(SourcesKey)
	if !sources.Exists() {
		return nil, serrors.NewParseError(name, fmt.Sprintf("missing %q array", SourcesKey), nil)
	}
	if !sources.IsArray() {
		return nil, serrors.NewParseError(name, fmt.Sprintf("%q is not an array", SourcesKey), nil)
	}

	items := sources.Array()
	for i, item := range items {
		if item.Type != gjson.String && item.Type != gjson.Null {
			return nil, serrors.NewParseError(name, fmt.Sprintf("%s[%d] is not a string", SourcesKey, i), nil)
		}
	}

	raw := make([]byte, len(data))
	copy(raw, data)
	return &Document{raw: raw, sources: items}, nil
}

// Len returns the number of entries in "sources".
func (d *Document) Len() int {
	return len(d.sources)
}

// Sources returns a copy of the "sources" entries. Null entries are returned as "".
func (d *Document) Sources() []string {
	out := make([]string, len(d.sources))
	for i, s := range d.sources {
		out[i] = s.String()
	}
	return out
}

// Field returns a top-level value of the document.
func (d *Document) Field(name string) gjson.Result {
	return gjson.GetBytes(d.raw, gjson.Escape(name))
}

// Bytes returns the document's JSON as loaded or as produced by Rewrite.
func (d *Document) Bytes() []byte {
	return d.raw
}

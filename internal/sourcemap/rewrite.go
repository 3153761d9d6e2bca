package sourcemap

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Applier rewrites a single source path.
type Applier interface {
	Apply(string) string
}

// Change records one rewritten entry of "sources".
type Change struct {
	Index int
	Old   string
	New   string
}

// Stats summarises a Rewrite.
type Stats struct {
	Total     int
	Rewritten int
	Changes   []Change
}

// Rewrite applies a to every string entry of "sources" and returns the resulting document.
// Entry count and order are kept, null entries and unmatched entries keep their
// original JSON text, and the rest of the document is carried over untouched.
// When nothing changes the input document is returned.
func Rewrite(doc *Document, a Applier) (*Document, *Stats, error) {
	stats := &Stats{Total: len(doc.sources)}

	var arr bytes.Buffer
	arr.WriteByte('[')
	for i, item := range doc.sources {
		if i > 0 {
			arr.WriteByte(',')
		}
		if item.Type != gjson.String {
			arr.WriteString(item.Raw)
			continue
		}

		old := item.String()
		updated := a.Apply(old)
		if updated == old {
			arr.WriteString(item.Raw)
			continue
		}

		encoded, err := encodeString(updated)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode %s[%d]: %w", SourcesKey, i, err)
		}
		arr.Write(encoded)
		stats.Rewritten++
		stats.Changes = append(stats.Changes, Change{Index: i, Old: old, New: updated})
	}
	arr.WriteByte(']')

	if stats.Rewritten == 0 {
		return doc, stats, nil
	}

	raw, err := sjson.SetRawBytes(doc.raw, SourcesKey, arr.Bytes())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to replace %q: %w", SourcesKey, err)
	}

	return &Document{
		raw:     raw,
		sources: gjson.GetBytes(raw, SourcesKey).Array(),
	}, stats, nil
}

func encodeString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

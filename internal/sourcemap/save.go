package sourcemap

import (
	"strings"

	"github.com/tidwall/pretty"

	"github.com/srcmap-tools/srcmap/pkg/shared/files"
)

// DefaultIndent is the number of spaces per nesting level in written files.
const DefaultIndent = 2

// Encode formats the document with indent spaces per level, one array element
// per line and keys in their original order.
func Encode(doc *Document, indent int) []byte {
	if indent <= 0 {
		indent = DefaultIndent
	}
	out := pretty.PrettyOptions(doc.raw, &pretty.Options{
		Width:    0,
		Prefix:   "",
		Indent:   strings.Repeat(" ", indent),
		SortKeys: false,
	})
	if len(out) == 0 || out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return out
}

// Save writes the document to path through a temporary sibling file and a rename.
func Save(path string, doc *Document, indent int) error {
	return files.WriteFileAtomic(path, Encode(doc, indent), 0644)
}

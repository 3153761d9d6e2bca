package rewrite

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/srcmap-tools/srcmap/internal/remapper"
	"github.com/srcmap-tools/srcmap/internal/sourcemap"
)

type palette struct {
	added   *color.Color
	removed *color.Color
	title   *color.Color
}

func newPalette(w io.Writer) *palette {
	p := &palette{
		added:   color.New(color.FgGreen),
		removed: color.New(color.FgRed, color.CrossedOut),
		title:   color.New(color.FgCyan),
	}
	if !isTerminal(w) {
		p.added.DisableColor()
		p.removed.DisableColor()
		p.title.DisableColor()
	} else {
		p.added.EnableColor()
		p.removed.EnableColor()
		p.title.EnableColor()
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// renderChange writes a character-level diff of one rewritten entry.
func renderChange(w io.Writer, p *palette, change sourcemap.Change) {
	dmp := diffpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(change.Old, change.New, false))

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffpatch.DiffInsert:
			b.WriteString(p.added.Sprintf("{+%s+}", d.Text))
		case diffpatch.DiffDelete:
			b.WriteString(p.removed.Sprintf("[-%s-]", d.Text))
		case diffpatch.DiffEqual:
			b.WriteString(d.Text)
		}
	}
	fmt.Fprintf(w, "  %s %s\n", p.title.Sprintf("sources[%d]:", change.Index), b.String())
}

func printResult(w io.Writer, result *remapper.Result, showDiff bool) {
	p := newPalette(w)

	if showDiff {
		for _, change := range result.Stats.Changes {
			renderChange(w, p, change)
		}
	}

	fmt.Fprintf(w, "%s %d of %d source paths rewritten (%s -> %s)\n",
		p.title.Sprint("Summary:"), result.Stats.Rewritten, result.Stats.Total, result.Pattern, result.Replacement)

	switch {
	case result.Written:
		fmt.Fprintf(w, "Updated source map written to %s\n", result.OutputPath)
	case result.Stats.Rewritten == 0:
		fmt.Fprintf(w, "No changes needed for %s\n", result.MapPath)
	default:
		fmt.Fprintf(w, "Dry run, %s not written\n", result.OutputPath)
	}
}

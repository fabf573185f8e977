package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"ripple/internal/diag"
	"ripple/internal/source"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan, color.Bold)
	caretTint = color.New(color.FgRed)
)

// Pretty writes each diagnostic as
//
//	path:line:col: SEVERITY CODE: message
//
// followed by the offending source line with a caret underline sized by the
// span, then the notes. Sort the bag first for stable ordering.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		writeHeading(w, fs, d.Primary, d.Severity, d.Code, d.Message, opts)
		writeContext(w, fs, d.Primary, opts)
		if opts.ShowNotes {
			for _, note := range d.Notes {
				writeHeading(w, fs, note.Span, diag.SevInfo, d.Code, "note: "+note.Msg, opts)
				writeContext(w, fs, note.Span, opts)
			}
		}
	}
}

func writeHeading(w io.Writer, fs *source.FileSet, sp source.Span, sev diag.Severity, code diag.Code, msg string, opts PrettyOpts) {
	sevText := severityText(sev)
	if opts.Color {
		sevText = severityPainter(sev).Sprint(sevText)
	}
	fmt.Fprintf(w, "%s: %s %s: %s\n", position(fs, sp), sevText, code, msg)
}

func position(fs *source.FileSet, sp source.Span) string {
	f := fs.Get(sp.File)
	if f == nil {
		return "<unknown>"
	}
	lc, ok := fs.Resolve(sp.File, sp.Start)
	if !ok {
		return f.Path
	}
	return fmt.Sprintf("%s:%d:%d", f.Path, lc.Line, lc.Col)
}

func writeContext(w io.Writer, fs *source.FileSet, sp source.Span, opts PrettyOpts) {
	lc, ok := fs.ResolveSpan(sp)
	if !ok {
		return
	}
	lineBytes, ok := fs.Line(sp.File, lc.Line)
	if !ok {
		return
	}
	line := strings.TrimRight(string(lineBytes), "\r\n")
	if opts.Width > 0 {
		line = runewidth.Truncate(line, opts.Width, "…")
	}

	prefix := fmt.Sprintf("  %4d | ", lc.Line)
	fmt.Fprintf(w, "%s%s\n", prefix, line)

	// the caret row must line up under wide runes, so pad by display width
	before := line
	if int(lc.Col-1) <= len(line) {
		before = line[:lc.Col-1]
	}
	pad := strings.Repeat(" ", runewidth.StringWidth(before))
	underline := caretFor(sp, line, int(lc.Col-1))
	if opts.Color {
		underline = caretTint.Sprint(underline)
	}
	fmt.Fprintf(w, "  %4s | %s%s\n", "", pad, underline)
}

func caretFor(sp source.Span, line string, startByte int) string {
	n := int(sp.Len())
	if n < 1 {
		n = 1
	}
	if startByte < len(line) {
		rest := line[startByte:]
		if n > len(rest) {
			n = len(rest)
		}
		n = runewidth.StringWidth(rest[:n])
	} else {
		n = 1
	}
	if n < 1 {
		n = 1
	}
	return "^" + strings.Repeat("~", n-1)
}

func severityText(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func severityPainter(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errColor
	case diag.SevWarning:
		return warnColor
	default:
		return infoColor
	}
}

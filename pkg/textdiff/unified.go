package textdiff

import (
	"bytes"
	"fmt"
	"strings"
)

// DefaultContext is the number of unchanged lines shown around each hunk.
const DefaultContext = 3

// hunk is a run of edit operations plus surrounding context, with 1-based
// starting line numbers on each side.
type hunk struct {
	oldStart, oldCount int
	newStart, newCount int
	ops                []Op
}

// IsBinary reports whether content should be treated as binary: a NUL byte
// in the first kilobyte is the usual heuristic.
func IsBinary(content []byte) bool {
	probe := content
	if len(probe) > 1024 {
		probe = probe[:1024]
	}
	return bytes.IndexByte(probe, 0) >= 0
}

// Unified renders the difference between oldText and newText as a unified
// diff with context lines, labeled a/<path> and b/<path>. Identical inputs
// yield the empty string.
func Unified(path, oldText, newText string, context int) string {
	if oldText == newText {
		return ""
	}
	if context < 0 {
		context = DefaultContext
	}

	oldLines := SplitLines(oldText)
	newLines := SplitLines(newText)
	oldNoEOL := oldText != "" && !strings.HasSuffix(oldText, "\n")
	newNoEOL := newText != "" && !strings.HasSuffix(newText, "\n")

	ops := Diff(oldLines, newLines)
	if oldNoEOL != newNoEOL && len(ops) > 0 && ops[len(ops)-1].Kind == Equal {
		// The final line is shared but only one side ends in a newline.
		// Re-emit it as a delete/insert pair so the change is visible.
		last := ops[len(ops)-1].Line
		ops = append(ops[:len(ops)-1],
			Op{Kind: Delete, Line: last}, Op{Kind: Insert, Line: last})
	}
	hunks := groupHunks(ops, context)
	if len(hunks) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n", path)
	fmt.Fprintf(&b, "+++ b/%s\n", path)
	for _, h := range hunks {
		fmt.Fprintf(&b, "@@ -%s +%s @@\n",
			hunkRange(h.oldStart, h.oldCount), hunkRange(h.newStart, h.newCount))
		oldLn, newLn := h.oldStart, h.newStart
		for _, op := range h.ops {
			switch op.Kind {
			case Delete:
				b.WriteByte('-')
			case Insert:
				b.WriteByte('+')
			default:
				b.WriteByte(' ')
			}
			b.WriteString(op.Line)
			b.WriteByte('\n')

			// The marker goes right after the line that ends a side whose
			// text lacks a trailing newline.
			switch op.Kind {
			case Equal:
				if (oldNoEOL && oldLn == len(oldLines)) || (newNoEOL && newLn == len(newLines)) {
					b.WriteString(noEOLMarker)
				}
				oldLn++
				newLn++
			case Delete:
				if oldNoEOL && oldLn == len(oldLines) {
					b.WriteString(noEOLMarker)
				}
				oldLn++
			case Insert:
				if newNoEOL && newLn == len(newLines) {
					b.WriteString(noEOLMarker)
				}
				newLn++
			}
		}
	}
	return b.String()
}

const noEOLMarker = "\\ No newline at end of file\n"

func hunkRange(start, count int) string {
	if count == 1 {
		return fmt.Sprintf("%d", start)
	}
	if count == 0 {
		// Unified convention: a zero-length range points at the line before.
		return fmt.Sprintf("%d,0", start-1)
	}
	return fmt.Sprintf("%d,%d", start, count)
}

// groupHunks splits an edit script into hunks, keeping up to context equal
// lines on both sides of each changed run and merging runs whose context
// overlaps.
func groupHunks(ops []Op, context int) []hunk {
	// Indices of non-equal ops.
	var changed []int
	for i, op := range ops {
		if op.Kind != Equal {
			changed = append(changed, i)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	var hunks []hunk
	start := changed[0] - context
	if start < 0 {
		start = 0
	}
	end := changed[0] + context + 1

	for _, idx := range changed[1:] {
		if idx-context <= end {
			// Context windows touch: same hunk.
			end = idx + context + 1
			continue
		}
		hunks = append(hunks, sliceHunk(ops, start, end))
		start = idx - context
		end = idx + context + 1
	}
	hunks = append(hunks, sliceHunk(ops, start, end))
	return hunks
}

// sliceHunk builds a hunk from ops[start:end], computing the 1-based line
// numbers each side starts at.
func sliceHunk(ops []Op, start, end int) hunk {
	if end > len(ops) {
		end = len(ops)
	}

	oldLine, newLine := 1, 1
	for _, op := range ops[:start] {
		switch op.Kind {
		case Equal:
			oldLine++
			newLine++
		case Delete:
			oldLine++
		case Insert:
			newLine++
		}
	}

	h := hunk{oldStart: oldLine, newStart: newLine, ops: ops[start:end]}
	for _, op := range h.ops {
		switch op.Kind {
		case Equal:
			h.oldCount++
			h.newCount++
		case Delete:
			h.oldCount++
		case Insert:
			h.newCount++
		}
	}
	return h
}

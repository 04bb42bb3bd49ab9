package changes

import (
	"bytes"

	"github.com/sourcegraph/go-diff/diff"

	"impactscan/internal/engine/parser"
)

// hunkRanges maps the hunks of a zero-context diff to old-side and new-side
// line ranges. A pure insertion or deletion has no lines on one side; it is
// recorded as the two lines around the insertion point.
func hunkRanges(patch []byte) (oldRanges, newRanges []parser.LineRange, err error) {
	if len(patch) == 0 {
		return nil, nil, nil
	}
	fileDiffs, err := diff.NewMultiFileDiffReader(bytes.NewReader(patch)).ReadAllFiles()
	if err != nil {
		return nil, nil, err
	}
	for _, fd := range fileDiffs {
		for _, h := range fd.Hunks {
			oldRanges = append(oldRanges, sideRange(int(h.OrigStartLine), int(h.OrigLines)))
			newRanges = append(newRanges, sideRange(int(h.NewStartLine), int(h.NewLines)))
		}
	}
	return oldRanges, newRanges, nil
}

func sideRange(start, count int) parser.LineRange {
	if count > 0 {
		return parser.LineRange{Start: start, End: start + count - 1}
	}
	if start < 1 {
		return parser.LineRange{Start: 1, End: 1}
	}
	return parser.LineRange{Start: start, End: start + 1}
}

// Package preview computes byte-level change regions between two buffers
// and renders compact human-readable summaries of them.
//
// Regions are computed eagerly and are immutable once produced; nothing in
// this package is persisted or interpreted by the patch pipelines beyond
// reporting.
package preview

import "fmt"

// Region describes one contiguous span where two buffers diverge.
//
// Within the overlapping prefix Removed and Added have equal length; a
// trailing region caused by a length difference carries bytes in only one
// direction.
type Region struct {
	Offset  int
	Removed []byte
	Added   []byte
}

// FindChanges scans old and new index by index over their overlapping
// prefix and groups differing positions into regions.
//
// A region stays open while the current position differs or a one-step
// lookahead shows the next position differing; the tolerance merges
// near-adjacent single-byte changes into one region instead of fragmenting
// them. If the buffers differ in length, exactly one trailing region is
// appended at the end of the shorter buffer holding the longer buffer's
// extra suffix.
func FindChanges(old, new []byte) []Region {
	var changes []Region
	minLen := min(len(old), len(new))

	for i := 0; i < minLen; {
		if old[i] == new[i] {
			i++
			continue
		}

		start := i
		end := i
		for end < minLen &&
			(old[end] != new[end] || (end+1 < minLen && old[end+1] != new[end+1])) {
			end++
		}

		changes = append(changes, Region{
			Offset:  start,
			Removed: old[start:end],
			Added:   new[start:end],
		})
		i = end
	}

	switch {
	case len(new) > len(old):
		changes = append(changes, Region{
			Offset: len(old),
			Added:  new[len(old):],
		})
	case len(old) > len(new):
		changes = append(changes, Region{
			Offset:  len(new),
			Removed: old[len(new):],
		})
	}

	return changes
}

// hex dump layout: 16 bytes per row, split into two 8-byte chunks, with an
// ASCII column. Unprintable bytes render as '.'.
const (
	dumpWidth = 16
	dumpChunk = 8
)

// HexDump renders up to limit bytes of b in a fixed-width grouped
// hex+ASCII layout. If b is longer than limit, a count of the omitted
// bytes is appended.
func HexDump(b []byte, limit int) string {
	shown := b
	if len(shown) > limit {
		shown = shown[:limit]
	}

	var out []byte
	for row := 0; row < len(shown); row += dumpWidth {
		if row > 0 {
			out = append(out, '\n')
		}
		line := shown[row:min(row+dumpWidth, len(shown))]

		for i := 0; i < dumpWidth; i++ {
			if i > 0 {
				out = append(out, ' ')
				if i == dumpChunk {
					out = append(out, ' ')
				}
			}
			if i < len(line) {
				out = append(out, hexDigits[line[i]>>4], hexDigits[line[i]&0x0f])
			} else {
				out = append(out, ' ', ' ')
			}
		}

		out = append(out, ' ', ' ')
		for _, c := range line {
			if c >= 0x20 && c < 0x7f {
				out = append(out, c)
			} else {
				out = append(out, '.')
			}
		}
	}

	if len(b) > limit {
		return fmt.Sprintf("%s ... (%d more bytes)", out, len(b)-limit)
	}
	return string(out)
}

const hexDigits = "0123456789abcdef"

// Summary reports the region count and total removed/added byte counts.
// An empty slice reads as no changes at all, which is distinct from
// regions that happen to carry zero bytes.
func Summary(regions []Region) string {
	if len(regions) == 0 {
		return "no changes detected"
	}

	var removed, added int
	for _, r := range regions {
		removed += len(r.Removed)
		added += len(r.Added)
	}

	plural := "s"
	if len(regions) == 1 {
		plural = ""
	}
	return fmt.Sprintf("%d change region%s, %d bytes removed, %d bytes added",
		len(regions), plural, removed, added)
}

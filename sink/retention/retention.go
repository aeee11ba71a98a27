// Package retention implements the age- and size-based file retention
// policies a file-backed sink runs on every rotation, per §4.3. Both
// policies, when active, only ever delete a prefix of the chronologically
// sorted file list, matching the "retained files are a suffix" testable
// property. The size policy never deletes the newest file; the age policy
// deletes every file older than the cutoff, the newest included.
package retention

import (
	"os"
	"sort"
	"time"
)

// FileInfo is the subset of os.FileInfo retention needs, captured up
// front so policies operate on a stable snapshot rather than re-statting
// files mid-sweep.
type FileInfo struct {
	Path    string
	ModTime time.Time
	Size    int64
}

// Policy bundles the two independent retention dimensions. A zero Policy
// (both durations/sizes unset) retains everything.
type Policy struct {
	MaximumAge  time.Duration // <=0 disables age-based retention
	MaximumSize int64         // <=0 disables size-based retention
}

// Sweep returns the subset of files that should be deleted under p,
// evaluated against now. files need not be sorted; Sweep sorts a copy by
// ModTime ascending (oldest first) before applying each policy.
func (p Policy) Sweep(files []FileInfo, now time.Time) []FileInfo {
	sorted := make([]FileInfo, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ModTime.Before(sorted[j].ModTime) })

	toDelete := make(map[string]bool)

	if p.MaximumAge > 0 {
		cutoff := now.Add(-p.MaximumAge)
		for _, f := range sorted {
			if f.ModTime.Before(cutoff) {
				toDelete[f.Path] = true
			}
		}
	}

	if p.MaximumSize > 0 {
		// Walk newest-first, accumulating size; once the cumulative sum
		// exceeds MaximumSize, everything strictly older is deleted. The
		// newest file is never a candidate since the running sum starts
		// from zero at the newest entry.
		var cumulative int64
		exceeded := false
		for i := len(sorted) - 1; i >= 0; i-- {
			f := sorted[i]
			if exceeded {
				toDelete[f.Path] = true
				continue
			}
			cumulative += f.Size
			if cumulative > p.MaximumSize {
				exceeded = true
			}
		}
	}

	var out []FileInfo
	for _, f := range sorted {
		if toDelete[f.Path] {
			out = append(out, f)
		}
	}
	return out
}

// Apply deletes the files Sweep selects, ignoring individual removal
// errors for files that vanished between the scan and the delete (another
// process may have rotated concurrently); returns the count actually
// removed.
func (p Policy) Apply(files []FileInfo, now time.Time) int {
	doomed := p.Sweep(files, now)
	removed := 0
	for _, f := range doomed {
		if err := os.Remove(f.Path); err == nil {
			removed++
		}
	}
	return removed
}

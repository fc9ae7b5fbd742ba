// Package alphanum implements digit-run-aware ordering for version strings.
// Plain lexicographic comparison sorts "1.0.10" before "1.0.2"; splitting on
// maximal digit runs and comparing those runs numerically gives the ordering
// humans expect.
package alphanum

import (
	"sort"
	"strings"
)

// Segment is one element of a version sort key: either a text segment or a
// run of decimal digits. Digit runs are kept as strings and compared
// numerically, so keys never overflow on long runs.
type Segment struct {
	Text    string
	Numeric bool
}

// Key splits version into alternating text and digit-run segments.
// Text segments are lowercased. An empty version yields an empty key.
//
//	Key("1.2.2") -> ["", 1, ".", 2, ".", 2, ""]
//	Key("v1.0") -> ["v", 1, ".", 0, ""]
func Key(version string) []Segment {
	if version == "" {
		return nil
	}

	segs := make([]Segment, 0, 8)
	start := 0
	numeric := isDigit(version[0])
	for i := 1; i <= len(version); i++ {
		if i == len(version) || isDigit(version[i]) != numeric {
			text := version[start:i]
			if !numeric {
				text = strings.ToLower(text)
			}
			segs = append(segs, Segment{Text: text, Numeric: numeric})
			start = i
			numeric = !numeric
		}
	}

	// A key always starts and ends with a text segment, mirroring how a
	// regex split on digit runs behaves. Keeps keys of different shapes
	// structurally aligned.
	if segs[0].Numeric {
		segs = append([]Segment{{}}, segs...)
	}
	if segs[len(segs)-1].Numeric {
		segs = append(segs, Segment{})
	}
	return segs
}

// Compare returns -1, 0 or +1 ordering a relative to b.
// Rules: digit runs compare numerically, text compares lexicographically,
// a digit run sorts before text when the two keys disagree on segment type,
// and a key that is a strict prefix of another sorts first.
func Compare(a, b []Segment) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := compareSegment(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func compareSegment(a, b Segment) int {
	if a.Numeric != b.Numeric {
		if a.Numeric {
			return -1
		}
		return 1
	}
	if a.Numeric {
		return compareDigits(a.Text, b.Text)
	}
	return strings.Compare(a.Text, b.Text)
}

// compareDigits compares two digit runs as integers without parsing them:
// strip leading zeros, then a longer run is larger, then compare in place.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return strings.Compare(a, b)
}

// Less reports whether version a orders before version b.
func Less(a, b string) bool {
	return Compare(Key(a), Key(b)) < 0
}

// Sort sorts versions in place, stably, in ascending alphanumeric order.
func Sort(versions []string) {
	sort.SliceStable(versions, func(i, j int) bool {
		return Less(versions[i], versions[j])
	})
}

// Sorted returns a sorted copy, leaving the input untouched.
func Sorted(versions []string) []string {
	out := make([]string, len(versions))
	copy(out, versions)
	Sort(out)
	return out
}

// Max returns the greatest version, ignoring empty entries. When several
// entries share the maximal key (e.g. "1.0" and "1.00") the first one
// encountered wins. Returns "" when nothing valid remains.
func Max(versions []string) string {
	var (
		best    string
		bestKey []Segment
		found   bool
	)
	for _, v := range versions {
		if v == "" {
			continue
		}
		k := Key(v)
		if !found || Compare(k, bestKey) > 0 {
			best, bestKey, found = v, k, true
		}
	}
	return best
}

// Increment bumps the last digit run of version by one, dropping any leading
// zeros in that run. A version with no digits is returned unchanged.
//
//	Increment("1.0.9") -> "1.0.10"
//	Increment("v1.0") -> "v1.1"
func Increment(version string) string {
	end := -1
	for i := len(version) - 1; i >= 0; i-- {
		if isDigit(version[i]) {
			end = i + 1
			break
		}
	}
	if end < 0 {
		return version
	}
	start := end - 1
	for start > 0 && isDigit(version[start-1]) {
		start--
	}
	return version[:start] + incrementDigits(version[start:end]) + version[end:]
}

// incrementDigits adds one to a decimal digit string. Leading zeros do not
// survive the re-render ("09" -> "10").
func incrementDigits(s string) string {
	digits := []byte(strings.TrimLeft(s, "0"))
	if len(digits) == 0 {
		return "1"
	}
	for i := len(digits) - 1; i >= 0; i-- {
		if digits[i] < '9' {
			digits[i]++
			return string(digits)
		}
		digits[i] = '0'
	}
	return "1" + string(digits)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

package sink

import (
	"regexp"

	"github.com/matgreaves/evtrace/evtspec"
)

// FilterChain is a set of case-insensitive, unanchored regex patterns. An
// empty chain passes everything, matching §4.2's "empty chain passes all"
// rule.
type FilterChain struct {
	patterns []*regexp.Regexp
}

// CompileFilterChain compiles patterns case-insensitively. Validation of
// duplicates happens earlier, at LogConfig.Validate time; this only
// compiles.
func CompileFilterChain(patterns []string) (*FilterChain, error) {
	fc := &FilterChain{patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, evtspec.NewError(evtspec.InvalidArgument, "CompileFilterChain", "invalid pattern "+p, err)
		}
		fc.patterns = append(fc.patterns, re)
	}
	return fc, nil
}

// MatchLine reports whether line matches the chain, per the text/console/
// memory rule: emitted iff at least one pattern matches, or the chain is
// empty.
func (fc *FilterChain) MatchLine(line string) bool {
	if fc == nil || len(fc.patterns) == 0 {
		return true
	}
	for _, re := range fc.patterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// MatchStringParams reports whether any string-valued parameter of ev
// matches the chain: the network sink's variant of filtering, applied to
// the raw parameter values instead of a formatted line.
func (fc *FilterChain) MatchStringParams(ev evtspec.Event) bool {
	if fc == nil || len(fc.patterns) == 0 {
		return true
	}
	if ev.Parameters == nil {
		return false
	}
	for i := 0; i < ev.Parameters.Len(); i++ {
		p := ev.Parameters.At(i)
		if p.Kind != evtspec.ParamString {
			continue
		}
		for _, re := range fc.patterns {
			if re.MatchString(p.Str) {
				return true
			}
		}
	}
	return false
}

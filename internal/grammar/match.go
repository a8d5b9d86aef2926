package grammar

import "strings"

// span is a half-open byte range into the matched input.
type span struct {
	start, end int
}

// Match is one complete block found in a trace.
type Match struct {
	input string
	Start int // byte offset of the opening literal
	End   int // byte offset just past the closing literal and its separator
	spans []span
	path  []int
}

// Residue returns the captured material of the match, concatenated in
// structural order with nothing inserted between spans. Replacing
// input[Start:End] with Residue deletes the block's structural tokens and
// keeps everything else.
func (m Match) Residue() string {
	var b strings.Builder
	for _, sp := range m.spans {
		b.WriteString(m.input[sp.start:sp.end])
	}
	return b.String()
}

// Spans returns the captured gap texts in structural order. A match carries
// six spans on the short tail branch and seven on the long one.
func (m Match) Spans() []string {
	out := make([]string, len(m.spans))
	for i, sp := range m.spans {
		out[i] = m.input[sp.start:sp.end]
	}
	return out
}

// Path reports which alternative of each choice participated. middle is 0
// for the T3/T4 branch and 1 for the T2/T5 branch; tail is 0 for the T7/T8
// branch and 1 for the T6/T9/T10 branch.
func (m Match) Path() (middle, tail int) {
	return m.path[0], m.path[1]
}

// PathIndex folds Path into a route index in [0, NumPaths). The order lines
// up with the transition-invariant table: T3/T4+T7/T8, T3/T4+T6/T9/T10,
// T2/T5+T7/T8, T2/T5+T6/T9/T10.
func (m Match) PathIndex() int {
	middle, tail := m.Path()
	return middle*2 + tail
}

// Find returns the leftmost complete block starting at or after from.
// Candidate starts are occurrences of the opening literal; the first one at
// which the whole pattern matches wins.
func Find(s string, from int) (Match, bool) {
	if from < 0 {
		from = 0
	}
	for i := from; i <= len(s); {
		rel := strings.Index(s[i:], openTok)
		if rel < 0 {
			break
		}
		start := i + rel
		m := matcher{in: s}
		if end, ok := m.match(start); ok {
			return Match{input: s, Start: start, End: end, spans: m.spans, path: m.path}, true
		}
		i = start + 1
	}
	return Match{}, false
}

// Reduce performs one pass over s: every non-overlapping block match is
// replaced by its captured material and unmatched text is copied through
// verbatim. All matches are found against s itself, never against the
// partially built output. Returns the rewritten string and the matches in
// positional order; when no block matches, s comes back unchanged.
func Reduce(s string) (string, []Match) {
	m, ok := Find(s, 0)
	if !ok {
		return s, nil
	}
	var b strings.Builder
	var matches []Match
	pos := 0
	for ok {
		b.WriteString(s[pos:m.Start])
		b.WriteString(m.Residue())
		matches = append(matches, m)
		pos = m.End
		m, ok = Find(s, pos)
	}
	b.WriteString(s[pos:])
	return b.String(), matches
}

// matcher carries the capture state of one match attempt. spans and path
// grow during descent and are truncated on backtrack, so on success they
// hold exactly the participating gaps and branch indexes in structural
// order.
type matcher struct {
	in    string
	spans []span
	path  []int
}

func (m *matcher) match(start int) (end int, ok bool) {
	end = -1
	ok = m.seq(block, start, func(p int) bool {
		end = p
		return true
	})
	return end, ok
}

// seq matches elems at pos and then calls k with the position past them.
// k is the continuation for whatever follows the current elems: the rest of
// an enclosing sequence, or accepting the match at top level. Returning
// false from any level triggers backtracking in the nearest gap or choice
// above it.
func (m *matcher) seq(elems []element, pos int, k func(int) bool) bool {
	if len(elems) == 0 {
		return k(pos)
	}
	rest := elems[1:]
	switch e := elems[0].(type) {
	case lit:
		n, ok := litAt(m.in, pos, string(e))
		if !ok {
			return false
		}
		return m.seq(rest, pos+n, k)

	case gap:
		sm, pm := len(m.spans), len(m.path)
		m.spans = append(m.spans, span{pos, pos})
		for end := pos; ; end++ {
			m.spans[sm] = span{pos, end}
			if m.seq(rest, end, k) {
				return true
			}
			// Drop captures from the failed continuation, keep our span.
			m.spans = m.spans[:sm+1]
			m.path = m.path[:pm]
			if end == len(m.in) || m.in[end] == '\n' {
				break
			}
		}
		m.spans = m.spans[:sm]
		return false

	case choice:
		sm, pm := len(m.spans), len(m.path)
		for i, branch := range e {
			m.path = append(m.path, i)
			if m.seq(branch, pos, func(p int) bool { return m.seq(rest, p, k) }) {
				return true
			}
			m.spans = m.spans[:sm]
			m.path = m.path[:pm]
		}
		return false
	}
	return false
}

// litAt reports whether the structural token tok is present at pos and how
// many bytes it consumes. A token is closed by a single space separator,
// which it consumes, or by the end of the input. The separator requirement
// is what keeps "T1" from matching inside "T10" or "T11".
func litAt(s string, pos int, tok string) (int, bool) {
	end := pos + len(tok)
	if end > len(s) || s[pos:end] != tok {
		return 0, false
	}
	if end == len(s) {
		return len(tok), true
	}
	if s[end] == ' ' {
		return len(tok) + 1, true
	}
	return 0, false
}

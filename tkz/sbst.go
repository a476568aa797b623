package tkz

import "sort"

// sbstEntry is one node of a static binary search tree: a ternary trie
// whose siblings at each depth form a balanced BST over the key byte.
// Index 0 is the null sentinel. A non-empty value marks a terminal node.
type sbstEntry struct {
	key   byte
	value string
	left  uint16
	right uint16
	next  uint16
}

// SBST walks one of the prebuilt tries byte by byte. The tables are
// immutable and shared; an SBST instance only carries the walk state.
type SBST struct {
	table    []sbstEntry
	root     uint16
	matched  string
	buffered []rune
}

// Advance consumes one character case-sensitively. It returns false when
// the trie has no continuation for c; the characters consumed so far stay
// available through BufferedChars for re-emission.
func (s *SBST) Advance(c rune) bool {
	return s.advance(c, false)
}

// AdvanceCaseInsensitive lower-cases ASCII before comparing.
func (s *SBST) AdvanceCaseInsensitive(c rune) bool {
	return s.advance(c, true)
}

func (s *SBST) advance(c rune, caseInsensitive bool) bool {
	s.buffered = append(s.buffered, c)
	if c <= 0 || c > 0x7F {
		s.root = 0
		s.matched = ""
		return false
	}
	key := byte(c)
	if caseInsensitive && key >= 'A' && key <= 'Z' {
		key |= 0x20
	}

	idx := s.root
	for idx != 0 {
		e := &s.table[idx]
		switch {
		case key == e.key:
			s.root = e.next
			s.matched = e.value
			return true
		case key < e.key:
			idx = e.left
		default:
			idx = e.right
		}
	}
	s.root = 0
	s.matched = ""
	return false
}

// Match returns the terminal value of the node accepted by the latest
// Advance, or "" when the bytes consumed so far are only a prefix.
func (s *SBST) Match() string {
	return s.matched
}

// BufferedChars returns every character passed to Advance, including the
// one that failed.
func (s *SBST) BufferedChars() []rune {
	return s.buffered
}

// sbstTable owns a built table plus the index of its top-level BST.
type sbstTable struct {
	entries []sbstEntry
	root    uint16
}

func (t *sbstTable) walker() *SBST {
	return &SBST{table: t.entries, root: t.root}
}

// buildSBST flattens a key->value word list into the static entry table.
// Construction happens once at package init; the result is read-only and
// safe to share across instances and goroutines.
func buildSBST(words map[string]string) *sbstTable {
	type trie struct {
		value string
		sub   map[byte]*trie
	}
	top := &trie{sub: map[byte]*trie{}}
	for word, value := range words {
		node := top
		for i := 0; i < len(word); i++ {
			b := word[i]
			child := node.sub[b]
			if child == nil {
				child = &trie{sub: map[byte]*trie{}}
				node.sub[b] = child
			}
			node = child
		}
		node.value = value
	}

	table := &sbstTable{entries: []sbstEntry{{}}}

	var emitLevel func(level map[byte]*trie) uint16
	var emitBST func(keys []byte, level map[byte]*trie) uint16

	emitBST = func(keys []byte, level map[byte]*trie) uint16 {
		if len(keys) == 0 {
			return 0
		}
		mid := len(keys) / 2
		b := keys[mid]
		node := level[b]

		idx := uint16(len(table.entries))
		table.entries = append(table.entries, sbstEntry{key: b, value: node.value})
		table.entries[idx].next = emitLevel(node.sub)
		table.entries[idx].left = emitBST(keys[:mid], level)
		table.entries[idx].right = emitBST(keys[mid+1:], level)
		return idx
	}

	emitLevel = func(level map[byte]*trie) uint16 {
		if len(level) == 0 {
			return 0
		}
		keys := make([]byte, 0, len(level))
		for b := range level {
			keys = append(keys, b)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		return emitBST(keys, level)
	}

	table.root = emitLevel(top.sub)
	return table
}

var (
	charRefTable = buildSBST(charRefWords)

	markupDeclOpenTable = buildSBST(map[string]string{
		"--":      "--",
		"doctype": "DOCTYPE",
		"[CDATA[": "[CDATA[",
	})

	afterDoctypeNameTable = buildSBST(map[string]string{
		"public": "PUBLIC",
		"system": "SYSTEM",
	})

	ejsonKeywordsTable = buildSBST(map[string]string{
		"true":      "true",
		"false":     "false",
		"null":      "null",
		"undefined": "undefined",
		"NaN":       "NaN",
		"Infinity":  "Infinity",
	})
)

// NewCharRef starts a walk over the HTML named character references.
func NewCharRef() *SBST {
	return charRefTable.walker()
}

// NewMarkupDeclOpen starts a walk matching `--`, DOCTYPE and `[CDATA[`.
func NewMarkupDeclOpen() *SBST {
	return markupDeclOpenTable.walker()
}

// NewAfterDoctypeName starts a walk matching PUBLIC and SYSTEM; use the
// case-insensitive advance with it.
func NewAfterDoctypeName() *SBST {
	return afterDoctypeNameTable.walker()
}

// NewEJSONKeywords starts a walk over the EJSON keywords.
func NewEJSONKeywords() *SBST {
	return ejsonKeywordsTable.walker()
}

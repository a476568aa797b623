package tkz

import lru "github.com/hashicorp/golang-lru/v2"

// LineCacheMaxSize is the default number of finished source lines kept for
// error reporting.
const LineCacheMaxSize = 3

// LineCache keeps the most recent source lines so diagnostics can quote
// them. It is independent of the reader's push-back.
type LineCache struct {
	lines   *lru.Cache[int, string]
	current *Buffer
	maxSize int
}

// NewLineCache creates a cache holding at most maxSize finished lines;
// non-positive sizes fall back to LineCacheMaxSize.
func NewLineCache(maxSize int) *LineCache {
	if maxSize <= 0 {
		maxSize = LineCacheMaxSize
	}
	lines, _ := lru.New[int, string](maxSize)
	return &LineCache{
		lines:   lines,
		current: NewBuffer(),
		maxSize: maxSize,
	}
}

// AppendBytes adds raw bytes to the line under construction.
func (lc *LineCache) AppendBytes(p []byte) {
	lc.current.AppendBytes(p)
}

// Commit finalizes the current line under the given line number, evicting
// the oldest cached line when over capacity.
func (lc *LineCache) Commit(lineNum int) {
	lc.lines.Add(lineNum, lc.current.String())
	lc.current.Reset()
}

// Line returns a cached line by number.
func (lc *LineCache) Line(lineNum int) (string, bool) {
	return lc.lines.Peek(lineNum)
}

// Current returns the line under construction.
func (lc *LineCache) Current() string {
	return lc.current.String()
}

// MaxSize returns the cache capacity.
func (lc *LineCache) MaxSize() int {
	return lc.maxSize
}

// Reset drops all cached lines and the line under construction.
func (lc *LineCache) Reset() {
	lc.lines.Purge()
	lc.current.Reset()
}

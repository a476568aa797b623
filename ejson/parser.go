package ejson

import (
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/hvml/purc"
	"github.com/hvml/purc/tkz"
	"github.com/hvml/purc/vcm"
)

// DefaultMaxDepth bounds container nesting; the check runs before any
// container push.
const DefaultMaxDepth = 1024

type state int

const (
	stateData state = iota
	stateControl
	stateLeftBrace
	stateRightBrace
	stateLeftBracket
	stateRightBracket
	stateTupleEnd
	stateLeftParen
	stateRightParen
	stateDollar
	stateJsoneeVariable
	stateJsoneeKeyword
	stateAmpersand
	stateOrSign
	stateSemicolon
	stateSingleQuoted
	stateDoubleQuoted
	stateStringEscape
	stateStringEscapeHex
	stateStringEscapeU
	stateStringEscapeUBraced
	stateUnquoted
	stateKeyword
	stateByteSequence
	stateNumber
	stateBeforeName
	stateAfterName
	stateNameUnquoted
	stateNameSingleQuoted
	stateNameDoubleQuoted
	stateCjsoneeFinished
)

var stateNames = map[state]string{
	stateData:                "data",
	stateControl:             "control",
	stateLeftBrace:           "leftBrace",
	stateRightBrace:          "rightBrace",
	stateLeftBracket:         "leftBracket",
	stateRightBracket:        "rightBracket",
	stateTupleEnd:            "tupleEnd",
	stateLeftParen:           "leftParenthesis",
	stateRightParen:          "rightParenthesis",
	stateDollar:              "dollar",
	stateJsoneeVariable:      "jsoneeVariable",
	stateJsoneeKeyword:       "jsoneeKeyword",
	stateAmpersand:           "ampersand",
	stateOrSign:              "orSign",
	stateSemicolon:           "semicolon",
	stateSingleQuoted:        "singleQuoted",
	stateDoubleQuoted:        "doubleQuoted",
	stateStringEscape:        "stringEscape",
	stateStringEscapeHex:     "stringEscapeHex",
	stateStringEscapeU:       "stringEscapeU",
	stateStringEscapeUBraced: "stringEscapeUBraced",
	stateUnquoted:            "unquoted",
	stateKeyword:             "keyword",
	stateByteSequence:        "byteSequence",
	stateNumber:              "number",
	stateBeforeName:          "beforeName",
	stateAfterName:           "afterName",
	stateNameUnquoted:        "nameUnquoted",
	stateNameSingleQuoted:    "nameSingleQuoted",
	stateNameDoubleQuoted:    "nameDoubleQuoted",
	stateCjsoneeFinished:     "cjsoneeFinished",
}

// Parser is the EJSON tokenizer. It is single-shot per call: a failed
// Parse leaves it inconsistent until Reset; a successful one resets it
// for reuse.
type Parser struct {
	reader *tkz.Reader
	lc     *tkz.LineCache
	curr   tkz.UC

	state       state
	returnState state

	tempBuffer *tkz.Buffer
	rawBuffer  *tkz.Buffer
	escBuffer  *tkz.Buffer
	sbst       *tkz.SBST

	stack    []*token
	depth    int
	maxDepth int

	prevSeparator  rune
	nrSingleQuoted int
	nrDoubleQuoted int
	lastPos        int

	// IsFinished decides when the top-level expression is complete. The
	// default accepts whitespace or end of stream once the stack holds a
	// single closed node.
	IsFinished func(p *Parser, c rune) bool

	logger    *slog.Logger
	enableLog bool

	consumed bool
	done     bool
	corrupt  bool
	result   *vcm.Node
}

// NewParser creates a tokenizer with the given nesting bound;
// non-positive means DefaultMaxDepth.
func NewParser(maxDepth int) *Parser {
	p := &Parser{
		tempBuffer: tkz.NewBuffer(),
		rawBuffer:  tkz.NewBuffer(),
		escBuffer:  tkz.NewBuffer(),
		lc:         tkz.NewLineCache(tkz.LineCacheMaxSize),
		enableLog:  purc.EJSONLogEnabled(),
		logger:     slog.Default(),
	}
	p.Reset(maxDepth)
	return p
}

// Reset restores the parser to its initial state; required after a
// failed parse before the parser may be reused.
func (p *Parser) Reset(maxDepth int) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	p.state = stateData
	p.returnState = stateData
	p.tempBuffer.Reset()
	p.rawBuffer.Reset()
	p.escBuffer.Reset()
	p.lc.Reset()
	p.stack = nil
	p.depth = 0
	p.maxDepth = maxDepth
	p.prevSeparator = 0
	p.nrSingleQuoted = 0
	p.nrDoubleQuoted = 0
	p.lastPos = -1
	p.sbst = nil
	p.done = false
	p.corrupt = false
	p.result = nil
}

// SetLogger replaces the trace logger.
func (p *Parser) SetLogger(l *slog.Logger) {
	p.logger = l
}

// EnableLog switches state tracing regardless of the environment.
func (p *Parser) EnableLog(on bool) {
	p.enableLog = on
}

// CurrLine returns the cached text of the line being read, for
// diagnostics.
func (p *Parser) CurrLine() string {
	if p.reader == nil {
		return ""
	}
	return p.reader.CurrLine()
}

// Parse consumes r until the top-level expression completes and returns
// its VCM tree.
func (p *Parser) Parse(r io.Reader) (*vcm.Node, error) {
	if p.corrupt {
		return nil, purc.Errorf(purc.ErrInvalidValue, "parser needs Reset after a failed parse")
	}
	p.reader = tkz.NewReader(r)
	p.reader.SetLineCache(p.lc)
	return p.run()
}

// ParseString tokenizes s.
func (p *Parser) ParseString(s string) (*vcm.Node, error) {
	return p.Parse(strings.NewReader(s))
}

// Parse tokenizes s with the default depth bound using a fresh parser.
func Parse(s string) (*vcm.Node, error) {
	return NewParser(0).ParseString(s)
}

func (p *Parser) fail(code purc.Code) error {
	p.corrupt = true
	err := &purc.Error{
		Code:      code,
		Line:      p.curr.Line,
		Column:    p.curr.Column,
		Character: p.curr.Character,
	}
	if line := p.CurrLine(); line != "" {
		err.Detail = line
	}
	return err
}

func (p *Parser) failWith(err error) error {
	p.corrupt = true
	if pe, ok := err.(*purc.Error); ok && pe.Line == 0 {
		pe.Line = p.curr.Line
		pe.Column = p.curr.Column
		pe.Character = p.curr.Character
	}
	return err
}

func (p *Parser) advanceTo(s state) {
	p.state = s
	p.consumed = true
}

func (p *Parser) reconsumeIn(s state) {
	p.state = s
	p.consumed = false
}

func (p *Parser) incDepth() bool {
	p.depth++
	return p.depth <= p.maxDepth
}

func (p *Parser) decDepth() {
	if p.depth > 0 {
		p.depth--
	}
}

// inStringState reports whether the next character lands inside a string
// literal, where separators carry no structure.
func (p *Parser) inStringState() bool {
	switch p.state {
	case stateSingleQuoted, stateDoubleQuoted,
		stateStringEscape, stateStringEscapeHex,
		stateStringEscapeU, stateStringEscapeUBraced,
		stateNameSingleQuoted, stateNameDoubleQuoted:
		return true
	}
	return false
}

// afterExprState resumes the double-quoted body when the completed
// expression belongs to a concat-string, and the control state otherwise.
// Completed expressions stay on the stack unfolded so a following `.`,
// `[` or `(` can extend them; separators fold them later.
func (p *Parser) afterExprState() state {
	n := len(p.stack)
	if n == 0 {
		return stateControl
	}
	top := p.stack[n-1]
	if top.typ == '"' {
		return stateDoubleQuoted
	}
	if n >= 2 && top.node != nil && top.node.IsClosed() && p.stack[n-2].typ == '"' {
		return stateDoubleQuoted
	}
	return stateControl
}

func (p *Parser) isFinishedAt(c rune) bool {
	if p.IsFinished != nil {
		return p.IsFinished(p, c)
	}
	if c != tkz.EndOfFile && !tkz.IsWhitespace(c) {
		return false
	}
	// whitespace and end of stream are separators: fold what is pending
	p.updateTkzStack()
	top := p.stackTop()
	return len(p.stack) == 1 && top.node != nil && top.node.IsClosed()
}

func (p *Parser) finish() error {
	p.updateTkzStack()
	if len(p.stack) != 1 {
		return p.fail(purc.ErrUnexpectedEOF)
	}
	tok := p.stackPop()
	if tok.node == nil || !tok.node.IsClosed() {
		return p.fail(purc.ErrUnexpectedEOF)
	}
	p.result = tok.node
	p.done = true
	return nil
}

func (p *Parser) run() (*vcm.Node, error) {
	for {
		uc := p.reader.NextChar()
		p.curr = uc
		c := uc.Character

		if c == tkz.InvalidCharacter {
			return nil, p.fail(purc.ErrBadEncoding)
		}

		fresh := uc.Position > p.lastPos
		if fresh && c != tkz.EndOfFile {
			p.lastPos = uc.Position
			p.rawBuffer.AppendRune(c)
			if !p.inStringState() {
				if tkz.IsSeparator(c) {
					if p.prevSeparator == ',' && c == ',' {
						return nil, p.fail(purc.ErrUnexpectedComma)
					}
					p.prevSeparator = c
				} else if !tkz.IsWhitespace(c) {
					p.prevSeparator = 0
				}
			}
		}

		for {
			if p.enableLog {
				p.trace(c)
			}
			p.consumed = true
			if err := p.step(c); err != nil {
				return nil, err
			}
			if p.done {
				result := p.result
				p.Reset(p.maxDepth)
				return result, nil
			}
			if p.consumed {
				break
			}
		}
	}
}

func (p *Parser) trace(c rune) {
	topType := "-"
	if top := p.stackTop(); top != nil {
		topType = string(top.typ)
	}
	p.logger.Debug("ejson tokenizer",
		"state", stateNames[p.state],
		"char", string(c),
		"hex", strconv.FormatInt(int64(c), 16),
		"stackSize", len(p.stack),
		"stackTop", topType,
		"depth", p.depth)
}

func (p *Parser) step(c rune) error {
	switch p.state {
	case stateData:
		return p.stepData(c)
	case stateControl:
		return p.stepControl(c)
	case stateLeftBrace:
		return p.stepLeftBrace(c)
	case stateRightBrace:
		return p.stepRightBrace(c)
	case stateLeftBracket:
		return p.stepLeftBracket(c)
	case stateRightBracket:
		return p.stepRightBracket(c)
	case stateTupleEnd:
		return p.stepTupleEnd(c)
	case stateLeftParen:
		return p.stepLeftParen(c)
	case stateRightParen:
		return p.stepRightParen(c)
	case stateDollar:
		return p.stepDollar(c)
	case stateJsoneeVariable:
		return p.stepJsoneeVariable(c)
	case stateJsoneeKeyword:
		return p.stepJsoneeKeyword(c)
	case stateAmpersand:
		return p.stepChainOp(c, '&', vcm.NodeCJSONEEOpAnd)
	case stateOrSign:
		return p.stepChainOp(c, '|', vcm.NodeCJSONEEOpOr)
	case stateSemicolon:
		return p.stepSemicolon(c)
	case stateSingleQuoted:
		return p.stepSingleQuoted(c)
	case stateDoubleQuoted:
		return p.stepDoubleQuoted(c)
	case stateStringEscape:
		return p.stepStringEscape(c)
	case stateStringEscapeHex:
		return p.stepStringEscapeHex(c)
	case stateStringEscapeU:
		return p.stepStringEscapeU(c)
	case stateStringEscapeUBraced:
		return p.stepStringEscapeUBraced(c)
	case stateUnquoted:
		return p.stepUnquoted(c)
	case stateKeyword:
		return p.stepKeyword(c)
	case stateByteSequence:
		return p.stepByteSequence(c)
	case stateNumber:
		return p.stepNumber(c)
	case stateBeforeName:
		return p.stepBeforeName(c)
	case stateAfterName:
		return p.stepAfterName(c)
	case stateNameUnquoted:
		return p.stepNameUnquoted(c)
	case stateNameSingleQuoted:
		return p.stepNameQuoted(c, '\'')
	case stateNameDoubleQuoted:
		return p.stepNameQuoted(c, '"')
	case stateCjsoneeFinished:
		return p.stepCjsoneeFinished(c)
	}
	return p.fail(purc.ErrInvalidValue)
}

func (p *Parser) stepData(c rune) error {
	if tkz.IsEOF(c) {
		return p.fail(purc.ErrUnexpectedEOF)
	}
	if tkz.IsWhitespace(c) || c == tkz.BOM {
		p.advanceTo(stateData)
		return nil
	}
	p.reconsumeIn(stateControl)
	return nil
}

func (p *Parser) stepControl(c rune) error {
	if p.isFinishedAt(c) {
		return p.finish()
	}
	switch {
	case tkz.IsWhitespace(c):
		p.advanceTo(stateControl)
	case tkz.IsEOF(c):
		return p.fail(purc.ErrUnexpectedEOF)
	case c == '{':
		p.reconsumeIn(stateLeftBrace)
	case c == '}':
		p.reconsumeIn(stateRightBrace)
	case c == '[':
		p.advanceTo(stateLeftBracket)
	case c == ']':
		p.reconsumeIn(stateRightBracket)
	case c == '(':
		p.advanceTo(stateLeftParen)
	case c == ')':
		p.reconsumeIn(stateRightParen)
	case c == '$':
		p.reconsumeIn(stateDollar)
	case c == '&':
		p.advanceTo(stateAmpersand)
	case c == '|':
		p.advanceTo(stateOrSign)
	case c == ';':
		p.reconsumeIn(stateSemicolon)
	case c == '\'':
		p.nrSingleQuoted++
		p.tempBuffer.Reset()
		p.advanceTo(stateSingleQuoted)
	case c == '"':
		p.nrDoubleQuoted++
		p.tempBuffer.Reset()
		p.advanceTo(stateDoubleQuoted)
	case c == ',':
		p.updateTkzStack()
		if top := p.stackTop(); top != nil && top.typ == '{' {
			p.advanceTo(stateBeforeName)
		} else {
			p.advanceTo(stateControl)
		}
	case c == '.':
		top := p.stackTop()
		if top == nil || top.node == nil || !top.node.IsClosed() {
			return p.fail(purc.ErrUnexpectedCharacter)
		}
		base := p.stackPop()
		tok := p.stackPush('.', vcm.NewGetElement())
		_ = tok.node.AppendChild(base.node)
		p.tempBuffer.Reset()
		p.advanceTo(stateJsoneeKeyword)
	case c == '!':
		p.advanceTo(stateTupleEnd)
	case c == ':':
		return p.fail(purc.ErrUnexpectedCharacter)
	default:
		p.reconsumeIn(stateUnquoted)
	}
	return nil
}

func (p *Parser) stepLeftBrace(c rune) error {
	if c == '{' {
		p.stackPush('P', nil)
		p.advanceTo(stateLeftBrace)
		return nil
	}
	if c == '$' {
		p.reconsumeIn(stateDollar)
		return nil
	}
	top := p.stackTop()
	if top == nil || top.typ != 'P' {
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	if !p.incDepth() {
		return p.fail(purc.ErrMaxDepthExceeded)
	}
	if tkz.IsWhitespace(c) {
		p.stackPop()
		if next := p.stackTop(); next != nil && next.typ == 'P' {
			p.stackPop()
			p.stackPush('C', vcm.NewCJSONEE())
			p.advanceTo(stateControl)
			return nil
		}
		p.stackPush('{', vcm.NewObject())
		p.reconsumeIn(stateBeforeName)
		return nil
	}
	p.stackPop()
	p.stackPush('{', vcm.NewObject())
	p.reconsumeIn(stateBeforeName)
	return nil
}

func (p *Parser) stepRightBrace(c rune) error {
	if tkz.IsEOF(c) {
		return p.fail(purc.ErrUnexpectedEOF)
	}
	if c != '}' {
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	p.updateTkzStack()
	top := p.stackTop()
	if top == nil {
		return p.fail(purc.ErrUnexpectedRightBrace)
	}
	switch {
	case top.typ == 'C' && !top.node.IsClosed():
		p.tempBuffer.Reset()
		p.reconsumeIn(stateCjsoneeFinished)
	case top.typ == '{' && !top.node.IsClosed():
		if top.node.ChildrenCount()%2 != 0 {
			return p.fail(purc.ErrUnexpectedCharacter)
		}
		top.node.SetClosed(true)
		p.decDepth()
		p.advanceTo(stateControl)
	case top.node != nil && top.node.IsClosed() &&
		len(p.stack) >= 2 && p.stack[len(p.stack)-2].typ == 'P':
		closed := p.stackPop()
		p.stackPop() // the P marker
		closed.node.Extra ^= vcm.ExtraProtectFlag
		p.stack = append(p.stack, closed)
		p.advanceTo(p.afterExprState())
	default:
		return p.fail(purc.ErrUnexpectedRightBrace)
	}
	return nil
}

func (p *Parser) stepLeftBracket(c rune) error {
	if tkz.IsEOF(c) {
		return p.fail(purc.ErrUnexpectedEOF)
	}
	if c == '!' {
		if !p.incDepth() {
			return p.fail(purc.ErrMaxDepthExceeded)
		}
		p.stackPush('T', vcm.NewTuple())
		p.advanceTo(stateControl)
		return nil
	}
	top := p.stackTop()
	if top != nil && top.node != nil && top.node.IsClosed() {
		// attribute access on a completed expression
		base := p.stackPop()
		tok := p.stackPush('.', vcm.NewGetElement())
		_ = tok.node.AppendChild(base.node)
		p.reconsumeIn(stateControl)
		return nil
	}
	if !p.incDepth() {
		return p.fail(purc.ErrMaxDepthExceeded)
	}
	p.stackPush('[', vcm.NewArray())
	p.reconsumeIn(stateControl)
	return nil
}

func (p *Parser) stepRightBracket(c rune) error {
	if tkz.IsEOF(c) {
		return p.fail(purc.ErrUnexpectedEOF)
	}
	if c != ']' {
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	p.updateTkzStack()
	top := p.stackTop()
	if top == nil {
		return p.fail(purc.ErrUnexpectedRightBracket)
	}
	switch {
	case top.typ == '[' && !top.node.IsClosed():
		top.node.SetClosed(true)
		p.decDepth()
		p.advanceTo(stateControl)
	case top.typ == '.' && !top.node.IsClosed():
		top.node.SetClosed(true)
		p.advanceTo(p.afterExprState())
	default:
		return p.fail(purc.ErrUnexpectedRightBracket)
	}
	return nil
}

func (p *Parser) stepTupleEnd(c rune) error {
	if c != ']' {
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	p.updateTkzStack()
	top := p.stackTop()
	if top == nil || top.typ != 'T' || top.node.IsClosed() {
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	top.node.SetClosed(true)
	p.decDepth()
	p.advanceTo(stateControl)
	return nil
}

func (p *Parser) stepLeftParen(c rune) error {
	if tkz.IsEOF(c) {
		return p.fail(purc.ErrUnexpectedEOF)
	}
	top := p.stackTop()
	if top == nil || top.node == nil || !top.node.IsClosed() {
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	if !p.incDepth() {
		return p.fail(purc.ErrMaxDepthExceeded)
	}
	base := p.stackPop()
	if c == '!' {
		tok := p.stackPush('<', vcm.NewCallSetter())
		_ = tok.node.AppendChild(base.node)
		p.advanceTo(stateControl)
		return nil
	}
	tok := p.stackPush('(', vcm.NewCallGetter())
	_ = tok.node.AppendChild(base.node)
	p.reconsumeIn(stateControl)
	return nil
}

func (p *Parser) stepRightParen(c rune) error {
	if c != ')' {
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	p.updateTkzStack()
	top := p.stackTop()
	if top == nil || (top.typ != '(' && top.typ != '<') || top.node.IsClosed() {
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	top.node.SetClosed(true)
	p.decDepth()
	p.advanceTo(p.afterExprState())
	return nil
}

func (p *Parser) stepDollar(c rune) error {
	if tkz.IsEOF(c) {
		return p.fail(purc.ErrUnexpectedEOF)
	}
	if tkz.IsWhitespace(c) {
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	if c == '$' {
		p.stackPush('$', vcm.NewGetVariable())
		p.advanceTo(stateDollar)
		return nil
	}
	if c == '{' {
		p.stackPush('P', nil)
		p.tempBuffer.Reset()
		p.advanceTo(stateJsoneeVariable)
		return nil
	}
	p.tempBuffer.Reset()
	p.reconsumeIn(stateJsoneeVariable)
	return nil
}

func isContextVariable(c rune) bool {
	switch c {
	case '?', '@', '!', '^', ':', '=', '%', '<', '~':
		return true
	}
	return false
}

func (p *Parser) stepJsoneeVariable(c rune) error {
	if tkz.IsASCIIAlphaNumeric(c) || c == '_' {
		p.tempBuffer.AppendRune(c)
		p.advanceTo(stateJsoneeVariable)
		return nil
	}
	if p.tempBuffer.IsEmpty() && isContextVariable(c) {
		p.tempBuffer.AppendRune(c)
		p.advanceTo(stateJsoneeVariable)
		return nil
	}
	if p.tempBuffer.IsEmpty() {
		return p.fail(purc.ErrUnexpectedCharacter)
	}

	name := vcm.NewString(p.tempBuffer.String())
	p.tempBuffer.Reset()

	top := p.stackTop()
	if top != nil && top.typ == 'P' && c == '}' {
		// the ${name} form: the marker sits on the getter
		p.stackPop()
		top = p.stackTop()
		if top == nil || top.typ != '$' {
			return p.fail(purc.ErrUnexpectedCharacter)
		}
		_ = top.node.AppendChild(name)
		top.node.SetClosed(true)
		p.advanceTo(p.afterExprState())
		return nil
	}
	if top == nil || top.typ != '$' {
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	_ = top.node.AppendChild(name)
	top.node.SetClosed(true)
	p.reconsumeIn(p.afterExprState())
	return nil
}

func (p *Parser) stepJsoneeKeyword(c rune) error {
	if tkz.IsASCIIAlphaNumeric(c) || c == '_' || c == '-' {
		p.tempBuffer.AppendRune(c)
		p.advanceTo(stateJsoneeKeyword)
		return nil
	}
	if p.tempBuffer.IsEmpty() {
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	top := p.stackTop()
	if top == nil || top.typ != '.' {
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	_ = top.node.AppendChild(vcm.NewString(p.tempBuffer.String()))
	p.tempBuffer.Reset()
	top.node.SetClosed(true)
	p.reconsumeIn(p.afterExprState())
	return nil
}

func (p *Parser) stepChainOp(c rune, expect rune, kind vcm.NodeKind) error {
	if c != expect {
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	p.updateTkzStack()
	top := p.stackTop()
	if top == nil || top.typ != 'C' {
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	_ = top.node.AppendChild(vcm.NewCJSONEEOp(kind))
	p.advanceTo(stateControl)
	return nil
}

func (p *Parser) stepSemicolon(c rune) error {
	if c != ';' {
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	p.updateTkzStack()
	top := p.stackTop()
	if top == nil || top.typ != 'C' {
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	_ = top.node.AppendChild(vcm.NewCJSONEEOp(vcm.NodeCJSONEEOpSemicolon))
	p.advanceTo(stateControl)
	return nil
}

func (p *Parser) stepSingleQuoted(c rune) error {
	switch {
	case c == '\'':
		node := vcm.NewString(p.tempBuffer.String())
		p.tempBuffer.Reset()
		p.pushValue(node)
		p.advanceTo(stateControl)
	case c == '\\':
		p.returnState = stateSingleQuoted
		p.advanceTo(stateStringEscape)
	case tkz.IsEOF(c):
		return p.fail(purc.ErrUnexpectedEOF)
	default:
		p.tempBuffer.AppendRune(c)
		p.advanceTo(stateSingleQuoted)
	}
	return nil
}

func (p *Parser) stepDoubleQuoted(c rune) error {
	// a completed substitution expression folds into the concat before
	// the next body character is handled
	if top := p.stackTop(); top != nil && top.typ != '"' &&
		top.node != nil && top.node.IsClosed() {
		p.updateTkzStack()
	}
	switch {
	case c == '"':
		top := p.stackTop()
		if top != nil && top.typ == '"' {
			if !p.tempBuffer.IsEmpty() {
				_ = top.node.AppendChild(vcm.NewString(p.tempBuffer.String()))
				p.tempBuffer.Reset()
			}
			top.node.SetClosed(true)
			p.updateTkzStack()
			p.advanceTo(stateControl)
			return nil
		}
		node := vcm.NewString(p.tempBuffer.String())
		p.tempBuffer.Reset()
		p.pushValue(node)
		p.advanceTo(stateControl)
	case c == '\\':
		p.returnState = stateDoubleQuoted
		p.advanceTo(stateStringEscape)
	case c == '$':
		top := p.stackTop()
		if top == nil || top.typ != '"' {
			top = p.stackPush('"', vcm.NewConcatString())
		}
		if !p.tempBuffer.IsEmpty() {
			_ = top.node.AppendChild(vcm.NewString(p.tempBuffer.String()))
			p.tempBuffer.Reset()
		}
		p.reconsumeIn(stateDollar)
	case tkz.IsEOF(c):
		return p.fail(purc.ErrUnexpectedEOF)
	default:
		p.tempBuffer.AppendRune(c)
		p.advanceTo(stateDoubleQuoted)
	}
	return nil
}

func (p *Parser) stepStringEscape(c rune) error {
	switch c {
	case 'n':
		p.tempBuffer.AppendRune('\n')
	case 't':
		p.tempBuffer.AppendRune('\t')
	case 'r':
		p.tempBuffer.AppendRune('\r')
	case 'b':
		p.tempBuffer.AppendRune('\b')
	case 'f':
		p.tempBuffer.AppendRune('\f')
	case '"', '\'', '\\', '/', '$':
		p.tempBuffer.AppendRune(c)
	case 'x':
		p.escBuffer.Reset()
		p.advanceTo(stateStringEscapeHex)
		return nil
	case 'u':
		p.escBuffer.Reset()
		p.advanceTo(stateStringEscapeU)
		return nil
	default:
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	p.advanceTo(p.returnState)
	return nil
}

func (p *Parser) stepStringEscapeHex(c rune) error {
	if !tkz.IsASCIIHexDigit(c) {
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	p.escBuffer.AppendRune(c)
	if p.escBuffer.SizeChars() < 2 {
		p.advanceTo(stateStringEscapeHex)
		return nil
	}
	v, err := strconv.ParseUint(p.escBuffer.String(), 16, 32)
	if err != nil {
		return p.fail(purc.ErrBadEncoding)
	}
	p.tempBuffer.AppendRune(rune(v))
	p.advanceTo(p.returnState)
	return nil
}

func (p *Parser) stepStringEscapeU(c rune) error {
	if c == '{' && p.escBuffer.IsEmpty() {
		p.advanceTo(stateStringEscapeUBraced)
		return nil
	}
	if !tkz.IsASCIIHexDigit(c) {
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	p.escBuffer.AppendRune(c)
	if p.escBuffer.SizeChars() < 4 {
		p.advanceTo(stateStringEscapeU)
		return nil
	}
	v, err := strconv.ParseUint(p.escBuffer.String(), 16, 32)
	if err != nil {
		return p.fail(purc.ErrBadEncoding)
	}
	p.tempBuffer.AppendRune(rune(v))
	p.advanceTo(p.returnState)
	return nil
}

func (p *Parser) stepStringEscapeUBraced(c rune) error {
	if c == '}' {
		if p.escBuffer.IsEmpty() {
			return p.fail(purc.ErrUnexpectedCharacter)
		}
		v, err := strconv.ParseUint(p.escBuffer.String(), 16, 32)
		if err != nil || v > 0x10FFFF {
			return p.fail(purc.ErrBadEncoding)
		}
		p.tempBuffer.AppendRune(rune(v))
		p.advanceTo(p.returnState)
		return nil
	}
	if !tkz.IsASCIIHexDigit(c) {
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	p.escBuffer.AppendRune(c)
	p.advanceTo(stateStringEscapeUBraced)
	return nil
}

func (p *Parser) stepUnquoted(c rune) error {
	switch {
	case c == 'b':
		p.tempBuffer.Reset()
		p.tempBuffer.AppendRune('b')
		p.advanceTo(stateByteSequence)
	case c == 't' || c == 'f' || c == 'n' || c == 'u' || c == 'N' || c == 'I':
		p.sbst = tkz.NewEJSONKeywords()
		p.reconsumeIn(stateKeyword)
	case tkz.IsASCIIDigit(c) || c == '-' || c == '+':
		p.tempBuffer.Reset()
		p.reconsumeIn(stateNumber)
	default:
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	return nil
}

// lexemeDelimiter ends an unquoted lexeme; `!` closes tuples.
func lexemeDelimiter(c rune) bool {
	return tkz.IsDelimiter(c) || c == '!'
}

func (p *Parser) stepKeyword(c rune) error {
	if lexemeDelimiter(c) {
		m := p.sbst.Match()
		p.sbst = nil
		node := keywordNode(m)
		if node == nil {
			return p.fail(purc.ErrUnexpectedCharacter)
		}
		p.pushValue(node)
		p.reconsumeIn(stateControl)
		return nil
	}
	if !p.sbst.Advance(c) {
		p.sbst = nil
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	p.advanceTo(stateKeyword)
	return nil
}

func (p *Parser) stepByteSequence(c rune) error {
	if lexemeDelimiter(c) {
		node, err := byteSequenceNode(p.tempBuffer.String())
		p.tempBuffer.Reset()
		if err != nil {
			return p.failWith(err)
		}
		p.pushValue(node)
		p.reconsumeIn(stateControl)
		return nil
	}
	if tkz.IsASCIIAlphaNumeric(c) || c == '.' || c == '=' || c == '+' || c == '/' {
		p.tempBuffer.AppendRune(c)
		p.advanceTo(stateByteSequence)
		return nil
	}
	return p.fail(purc.ErrUnexpectedCharacter)
}

func (p *Parser) stepNumber(c rune) error {
	if lexemeDelimiter(c) {
		node, err := numberNode(p.tempBuffer.String())
		p.tempBuffer.Reset()
		if err != nil {
			return p.failWith(err)
		}
		p.pushValue(node)
		p.reconsumeIn(stateControl)
		return nil
	}
	if tkz.IsASCIIAlphaNumeric(c) || c == '.' || c == '+' || c == '-' {
		p.tempBuffer.AppendRune(c)
		p.advanceTo(stateNumber)
		return nil
	}
	return p.fail(purc.ErrUnexpectedCharacter)
}

func (p *Parser) stepBeforeName(c rune) error {
	switch {
	case tkz.IsWhitespace(c):
		p.advanceTo(stateBeforeName)
	case tkz.IsEOF(c):
		return p.fail(purc.ErrUnexpectedEOF)
	case c == '"':
		p.nrDoubleQuoted++
		p.tempBuffer.Reset()
		p.advanceTo(stateNameDoubleQuoted)
	case c == '\'':
		p.nrSingleQuoted++
		p.tempBuffer.Reset()
		p.advanceTo(stateNameSingleQuoted)
	case c == '}':
		p.reconsumeIn(stateRightBrace)
	case tkz.IsASCIIAlphaNumeric(c) || c == '_' || c == '-':
		p.tempBuffer.Reset()
		p.reconsumeIn(stateNameUnquoted)
	default:
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	return nil
}

func (p *Parser) appendName() error {
	top := p.stackTop()
	if top == nil || top.typ != '{' {
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	if err := top.node.AppendChild(vcm.NewString(p.tempBuffer.String())); err != nil {
		return p.failWith(err)
	}
	p.tempBuffer.Reset()
	return nil
}

func (p *Parser) stepNameUnquoted(c rune) error {
	switch {
	case tkz.IsASCIIAlphaNumeric(c) || c == '_' || c == '-':
		p.tempBuffer.AppendRune(c)
		p.advanceTo(stateNameUnquoted)
	case tkz.IsWhitespace(c):
		p.advanceTo(stateAfterName)
	case c == ':':
		if err := p.appendName(); err != nil {
			return err
		}
		p.advanceTo(stateControl)
	case tkz.IsEOF(c):
		return p.fail(purc.ErrUnexpectedEOF)
	default:
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	return nil
}

func (p *Parser) stepAfterName(c rune) error {
	switch {
	case tkz.IsWhitespace(c):
		p.advanceTo(stateAfterName)
	case c == ':':
		if err := p.appendName(); err != nil {
			return err
		}
		p.advanceTo(stateControl)
	case tkz.IsEOF(c):
		return p.fail(purc.ErrUnexpectedEOF)
	default:
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	return nil
}

func (p *Parser) stepNameQuoted(c rune, quote rune) error {
	switch {
	case c == quote:
		p.advanceTo(stateAfterName)
	case c == '\\':
		if quote == '"' {
			p.returnState = stateNameDoubleQuoted
		} else {
			p.returnState = stateNameSingleQuoted
		}
		p.advanceTo(stateStringEscape)
	case tkz.IsEOF(c):
		return p.fail(purc.ErrUnexpectedEOF)
	default:
		p.tempBuffer.AppendRune(c)
		if quote == '"' {
			p.advanceTo(stateNameDoubleQuoted)
		} else {
			p.advanceTo(stateNameSingleQuoted)
		}
	}
	return nil
}

func (p *Parser) stepCjsoneeFinished(c rune) error {
	if c != '}' {
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	p.tempBuffer.AppendRune('}')
	if p.tempBuffer.SizeChars() < 2 {
		p.advanceTo(stateCjsoneeFinished)
		return nil
	}
	p.tempBuffer.Reset()
	top := p.stackTop()
	if top == nil || top.typ != 'C' {
		return p.fail(purc.ErrUnexpectedCharacter)
	}
	top.node.SetClosed(true)
	p.decDepth()
	p.advanceTo(stateControl)
	return nil
}

func keywordNode(m string) *vcm.Node {
	switch m {
	case "true":
		return vcm.NewBoolean(true)
	case "false":
		return vcm.NewBoolean(false)
	case "null":
		return vcm.NewNull()
	case "undefined":
		return vcm.NewUndefined()
	case "NaN":
		return vcm.NewNumber(math.NaN())
	case "Infinity":
		return vcm.NewNumber(math.Inf(1))
	}
	return nil
}

// byteSequenceNode decodes a byte-sequence lexeme: the `bx`, `bb` and
// `b64` prefixes select hex, binary and base64 decoders.
func byteSequenceNode(s string) (*vcm.Node, error) {
	switch {
	case strings.HasPrefix(s, "bx"):
		return vcm.NewByteSequenceFromBx(s[2:])
	case strings.HasPrefix(s, "bb"):
		return vcm.NewByteSequenceFromBb(s[2:])
	case strings.HasPrefix(s, "b64"):
		return vcm.NewByteSequenceFromB64(s[3:])
	}
	return nil, purc.Errorf(purc.ErrUnexpectedCharacter, "bad byte sequence %q", s)
}

// numberNode classifies a numeric lexeme: the L/UL/FL suffixes select
// longint, ulongint and longdouble; Infinity and NaN keep their sign.
func numberNode(s string) (*vcm.Node, error) {
	switch s {
	case "Infinity", "+Infinity":
		return vcm.NewNumber(math.Inf(1)), nil
	case "-Infinity":
		return vcm.NewNumber(math.Inf(-1)), nil
	case "NaN":
		return vcm.NewNumber(math.NaN()), nil
	}
	switch {
	case strings.HasSuffix(s, "UL"):
		u, err := strconv.ParseUint(strings.TrimPrefix(s[:len(s)-2], "+"), 10, 64)
		if err != nil {
			return nil, purc.Errorf(purc.ErrUnexpectedCharacter, "bad ulongint %q", s)
		}
		return vcm.NewULongInt(u), nil
	case strings.HasSuffix(s, "FL"):
		f, err := strconv.ParseFloat(s[:len(s)-2], 64)
		if err != nil {
			return nil, purc.Errorf(purc.ErrUnexpectedCharacter, "bad longdouble %q", s)
		}
		return vcm.NewLongDouble(f), nil
	case strings.HasSuffix(s, "L"):
		i, err := strconv.ParseInt(s[:len(s)-1], 10, 64)
		if err != nil {
			return nil, purc.Errorf(purc.ErrUnexpectedCharacter, "bad longint %q", s)
		}
		return vcm.NewLongInt(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, purc.Errorf(purc.ErrUnexpectedCharacter, "bad number %q", s)
	}
	return vcm.NewNumber(f), nil
}

// Package ejson implements the EJSON/JSONEE tokenizer: a pushdown state
// machine consuming a Unicode character stream and producing a VCM tree.
package ejson

import "github.com/hvml/purc/vcm"

// token is one entry of the tokenizer stack: the tag describes what kind
// of construct is open ('{', '[', '(', '<', '$', '.', 'P' for a protected
// sub-expression, 'C' for a CJSONEE, 'T' for a tuple, '"' for a
// concat-string, 'V' for a completed value) together with the VCM node
// under construction. Marker tokens ('P') carry no node.
type token struct {
	typ  rune
	node *vcm.Node
}

func (p *Parser) stackPush(typ rune, node *vcm.Node) *token {
	tok := &token{typ: typ, node: node}
	p.stack = append(p.stack, tok)
	return tok
}

func (p *Parser) stackPop() *token {
	if len(p.stack) == 0 {
		return nil
	}
	tok := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return tok
}

func (p *Parser) stackTop() *token {
	if len(p.stack) == 0 {
		return nil
	}
	return p.stack[len(p.stack)-1]
}

func (p *Parser) stackSize() int {
	return len(p.stack)
}

// updateTkzStack folds bottom-up: a closed node on top of the stack is
// appended into the construct below it. Containers absorb one value and
// stay open; `$` chains collapse into nested get-variable applications;
// a get-element absorbs its member and waits for its terminator; `P`
// markers act as barriers.
func (p *Parser) updateTkzStack() {
	for len(p.stack) > 1 {
		top := p.stack[len(p.stack)-1]
		if top.node == nil || !top.node.IsClosed() {
			return
		}
		parent := p.stack[len(p.stack)-2]
		switch parent.typ {
		case '{', '[', 'T', '(', '<', 'C', '"':
			if parent.node.AppendChild(top.node) != nil {
				return
			}
			p.stack = p.stack[:len(p.stack)-1]
			return
		case '$':
			if parent.node.IsClosed() {
				return
			}
			p.stack = p.stack[:len(p.stack)-1]
			_ = parent.node.AppendChild(top.node)
			parent.node.SetClosed(true)
		case '.':
			if parent.node.IsClosed() {
				return
			}
			p.stack = p.stack[:len(p.stack)-1]
			_ = parent.node.AppendChild(top.node)
			return
		default:
			return
		}
	}
}

// pushValue pushes a completed value token and folds it.
func (p *Parser) pushValue(node *vcm.Node) {
	p.stackPush('V', node)
	p.updateTkzStack()
}

package docrender

import (
	"fmt"
	"strings"
)

// Node is one element of a parsed fragment.
type Node interface {
	render(st *renderState, row *rowFrame, out *strings.Builder) error
	String() string
}

// TextNode represents literal fragment content
type TextNode struct {
	Content string
}

func (n *TextNode) String() string {
	return fmt.Sprintf("Text(%q)", n.Content)
}

func (n *TextNode) render(_ *renderState, _ *rowFrame, out *strings.Builder) error {
	out.WriteString(n.Content)
	return nil
}

// VariableNode represents a {name} placeholder
type VariableNode struct {
	Name string
	Raw  string
	Pos  int
}

func (n *VariableNode) String() string {
	return fmt.Sprintf("Var(%s)", n.Name)
}

// GuardNode is a {field && expr} form. It always renders as nothing.
type GuardNode struct {
	Raw string
}

func (n *GuardNode) String() string {
	return fmt.Sprintf("Guard(%q)", n.Raw)
}

func (n *GuardNode) render(_ *renderState, _ *rowFrame, _ *strings.Builder) error {
	return nil
}

// IfNode represents an {IF cond}...{ELSE}...{ENDIF} block
type IfNode struct {
	Condition Condition
	ThenBody  []Node
	ElseBody  []Node
}

func (n *IfNode) String() string {
	if len(n.ElseBody) > 0 {
		return fmt.Sprintf("If(%s) Else", n.Condition.String())
	}
	return fmt.Sprintf("If(%s)", n.Condition.String())
}

func (n *IfNode) render(st *renderState, row *rowFrame, out *strings.Builder) error {
	if n.Condition.Evaluate(st, row) {
		return renderNodes(n.ThenBody, st, row, out)
	}
	return renderNodes(n.ElseBody, st, row, out)
}

// RepeatNode represents a {{#table NAME}} or {{#each NAME}} block
type RepeatNode struct {
	Mode RepeatMode
	Name string
	Body []Node
	Raw  string
}

func (n *RepeatNode) String() string {
	return fmt.Sprintf("Repeat(%s %s)", n.Mode, n.Name)
}

// renderNodes renders a list of nodes in order
func renderNodes(nodes []Node, st *renderState, row *rowFrame, out *strings.Builder) error {
	for _, node := range nodes {
		if err := node.render(st, row, out); err != nil {
			return err
		}
	}
	return nil
}

// SyntaxIssue describes a marker that could not be paired. The marker is kept
// as literal text.
type SyntaxIssue struct {
	Pos     int
	Raw     string
	Message string
}

type openBlock struct {
	index     int
	elseIndex int
}

// balanceTokens demotes unpaired control markers to text so the parser only
// sees well-nested input: a stray {ELSE} or {ENDIF}, an {IF} or repeat block
// that is never closed, and a closing tag that does not match the innermost
// open block.
func balanceTokens(tokens []Token) ([]Token, []SyntaxIssue) {
	out := make([]Token, len(tokens))
	copy(out, tokens)

	var issues []SyntaxIssue
	demote := func(i int, msg string) {
		tok := out[i]
		issues = append(issues, SyntaxIssue{Pos: tok.Pos, Raw: tok.Raw, Message: msg})
		out[i] = Token{Type: TokenText, Value: tok.Raw, Raw: tok.Raw, Pos: tok.Pos}
	}

	var stack []openBlock
	top := func() (Token, bool) {
		if len(stack) == 0 {
			return Token{}, false
		}
		return out[stack[len(stack)-1].index], true
	}

	for i, tok := range out {
		switch tok.Type {
		case TokenIf, TokenRepeatStart:
			stack = append(stack, openBlock{index: i, elseIndex: -1})
		case TokenElse:
			t, ok := top()
			if !ok || t.Type != TokenIf || stack[len(stack)-1].elseIndex >= 0 {
				demote(i, "{ELSE} without a matching {IF}")
				continue
			}
			stack[len(stack)-1].elseIndex = i
		case TokenEndIf:
			t, ok := top()
			if !ok || t.Type != TokenIf {
				demote(i, "{ENDIF} without a matching {IF}")
				continue
			}
			stack = stack[:len(stack)-1]
		case TokenRepeatEnd:
			t, ok := top()
			if !ok || t.Type != TokenRepeatStart || t.Mode != tok.Mode {
				demote(i, fmt.Sprintf("{{/%s}} does not close the innermost block", tok.Mode))
				continue
			}
			stack = stack[:len(stack)-1]
		}
	}

	for j := len(stack) - 1; j >= 0; j-- {
		open := stack[j]
		if out[open.index].Type == TokenIf {
			demote(open.index, "{IF} is never closed by {ENDIF}")
		} else {
			demote(open.index, fmt.Sprintf("{{#%s}} is never closed", out[open.index].Mode))
		}
		if open.elseIndex >= 0 {
			demote(open.elseIndex, "{ELSE} belongs to an unclosed {IF}")
		}
	}
	return out, issues
}

// ControlParser parses balanced tokens into nodes
type ControlParser struct {
	tokens []Token
	pos    int
}

// Parse tokenizes and parses a fragment. Unpaired markers are reported as
// issues and kept as text; parsing itself never fails.
func Parse(content string) ([]Node, []SyntaxIssue) {
	tokens, issues := balanceTokens(Tokenize(content))
	parser := &ControlParser{tokens: tokens}
	return parser.parseUntil(), issues
}

func (p *ControlParser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenText}
	}
	return p.tokens[p.pos]
}

func (p *ControlParser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

// parseUntil consumes nodes until one of the stop types or the end of input.
// The stop token itself is left for the caller.
func (p *ControlParser) parseUntil(stops ...TokenType) []Node {
	var nodes []Node
	for p.pos < len(p.tokens) {
		token := p.current()
		for _, stop := range stops {
			if token.Type == stop {
				return nodes
			}
		}

		switch token.Type {
		case TokenText:
			if token.Value != "" {
				if n := len(nodes); n > 0 {
					if prev, ok := nodes[n-1].(*TextNode); ok {
						prev.Content += token.Value
						p.advance()
						continue
					}
				}
				nodes = append(nodes, &TextNode{Content: token.Value})
			}
			p.advance()
		case TokenVariable:
			nodes = append(nodes, &VariableNode{Name: token.Value, Raw: token.Raw, Pos: token.Pos})
			p.advance()
		case TokenGuard:
			nodes = append(nodes, &GuardNode{Raw: token.Raw})
			p.advance()
		case TokenIf:
			nodes = append(nodes, p.parseIf())
		case TokenRepeatStart:
			nodes = append(nodes, p.parseRepeat())
		default:
			// Balanced input never reaches here; keep the marker visible.
			nodes = append(nodes, &TextNode{Content: token.Raw})
			p.advance()
		}
	}
	return nodes
}

func (p *ControlParser) parseIf() *IfNode {
	node := &IfNode{Condition: ParseCondition(p.current().Value)}
	p.advance()

	node.ThenBody = p.parseUntil(TokenElse, TokenEndIf)
	if p.current().Type == TokenElse {
		p.advance()
		node.ElseBody = p.parseUntil(TokenEndIf)
	}
	p.advance() // consume {ENDIF}
	return node
}

func (p *ControlParser) parseRepeat() *RepeatNode {
	start := p.current()
	p.advance()
	node := &RepeatNode{Mode: start.Mode, Name: start.Value, Raw: start.Raw}
	node.Body = p.parseUntil(TokenRepeatEnd)
	p.advance() // consume the closing tag
	return node
}

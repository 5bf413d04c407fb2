package docrender

import (
	"html"
	"regexp"
	"strings"
)

// TokenType represents the type of a template token
type TokenType int

const (
	TokenText TokenType = iota
	TokenVariable
	TokenIf
	TokenElse
	TokenEndIf
	TokenGuard
	TokenRepeatStart
	TokenRepeatEnd
)

func (t TokenType) String() string {
	switch t {
	case TokenText:
		return "text"
	case TokenVariable:
		return "variable"
	case TokenIf:
		return "if"
	case TokenElse:
		return "else"
	case TokenEndIf:
		return "endif"
	case TokenGuard:
		return "guard"
	case TokenRepeatStart:
		return "repeat-start"
	case TokenRepeatEnd:
		return "repeat-end"
	default:
		return "unknown"
	}
}

// RepeatMode distinguishes {{#table}} from {{#each}} blocks.
type RepeatMode string

const (
	RepeatTable RepeatMode = "table"
	RepeatEach  RepeatMode = "each"
)

// Token represents a parsed template token
type Token struct {
	Type  TokenType
	Value string
	Mode  RepeatMode
	Raw   string
	Pos   int
}

// Keywords that are never substituted as variables.
const (
	keywordIf    = "IF"
	keywordElse  = "ELSE"
	keywordEndIf = "ENDIF"
)

var (
	// Regular expression to match template tokens: repeat open, repeat close,
	// then any single-brace group without nested braces.
	tokenRegex = regexp.MustCompile(`\{\{#(table|each)\s+([^{}\s]+)\s*\}\}|\{\{/(table|each)\s*\}\}|\{([^{}\n]*)\}`)

	identifierRegex = regexp.MustCompile(`^(?:\.|@?[\p{L}_][\p{L}\p{N}_\-]*(?:\.[\p{L}\p{N}_\-]+)*)$`)

	// Attributes whose placeholders belong to a later pass.
	protectedAttrRegex = regexp.MustCompile(`(?i)data-logo-var\s*=\s*["'][^"']*$`)
)

// protectedLookback bounds the attribute scan before a placeholder.
const protectedLookback = 150

// Tokenize parses a template fragment into tokens
func Tokenize(input string) []Token {
	var tokens []Token
	lastEnd := 0

	logger := GetLogger()
	if logger.IsDebugMode() {
		logger.WithField("input_length", len(input)).Debug("Starting tokenization")
	}

	appendText := func(s string, pos int) {
		if s == "" {
			return
		}
		if n := len(tokens); n > 0 && tokens[n-1].Type == TokenText {
			tokens[n-1].Value += s
			tokens[n-1].Raw += s
			return
		}
		tokens = append(tokens, Token{Type: TokenText, Value: s, Raw: s, Pos: pos})
	}

	for _, match := range tokenRegex.FindAllStringSubmatchIndex(input, -1) {
		start, end := match[0], match[1]
		appendText(input[lastEnd:start], lastEnd)
		raw := input[start:end]
		lastEnd = end

		switch {
		case match[2] >= 0:
			tokens = append(tokens, Token{
				Type:  TokenRepeatStart,
				Mode:  RepeatMode(input[match[2]:match[3]]),
				Value: input[match[4]:match[5]],
				Raw:   raw,
				Pos:   start,
			})
		case match[6] >= 0:
			tokens = append(tokens, Token{
				Type: TokenRepeatEnd,
				Mode: RepeatMode(input[match[6]:match[7]]),
				Raw:  raw,
				Pos:  start,
			})
		default:
			if inProtectedAttr(input, start) {
				appendText(raw, start)
				continue
			}
			token, ok := parseToken(input[match[8]:match[9]])
			if !ok {
				appendText(raw, start)
				continue
			}
			token.Raw = raw
			token.Pos = start
			if logger.IsDebugMode() {
				logger.WithFields(Fields{
					"type":    token.Type.String(),
					"content": token.Value,
				}).Debug("Found token")
			}
			tokens = append(tokens, token)
		}
	}

	appendText(input[lastEnd:], lastEnd)

	if logger.IsDebugMode() {
		logger.WithField("token_count", len(tokens)).Debug("Tokenization complete")
	}
	return tokens
}

// parseToken classifies the content of a single-brace group. Content that is
// neither a keyword, a guard nor an identifier (CSS rules, prose) stays text.
func parseToken(content string) (Token, bool) {
	trimmed := strings.TrimSpace(content)
	switch {
	case trimmed == keywordElse:
		return Token{Type: TokenElse}, true
	case trimmed == keywordEndIf:
		return Token{Type: TokenEndIf}, true
	case strings.HasPrefix(trimmed, keywordIf+" "):
		cond := strings.TrimSpace(strings.TrimPrefix(trimmed, keywordIf))
		// Rich-text editors entity-encode quotes inside conditions.
		return Token{Type: TokenIf, Value: html.UnescapeString(cond)}, true
	case strings.Contains(html.UnescapeString(trimmed), "&&"):
		return Token{Type: TokenGuard, Value: trimmed}, true
	case trimmed != content:
		// "{ name }" is prose or CSS, never a placeholder.
		return Token{}, false
	case trimmed == keywordIf:
		// A bare {IF} carries no condition and is preserved as text.
		return Token{}, false
	case identifierRegex.MatchString(trimmed):
		return Token{Type: TokenVariable, Value: trimmed}, true
	}
	return Token{}, false
}

// inProtectedAttr reports whether pos sits inside an attribute value whose
// placeholders are resolved by a later pass.
func inProtectedAttr(input string, pos int) bool {
	from := pos - protectedLookback
	if from < 0 {
		from = 0
	}
	return protectedAttrRegex.MatchString(input[from:pos])
}

// FindTemplateTokens finds all template tokens in a string
// This is a utility function for debugging and analysis
func FindTemplateTokens(input string) []string {
	var out []string
	for _, tok := range Tokenize(input) {
		if tok.Type != TokenText {
			out = append(out, tok.Raw)
		}
	}
	if out == nil {
		return []string{}
	}
	return out
}

package docrender

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)

func newTestState(vars map[string]any, policy UnresolvedPolicy) *renderState {
	return &renderState{
		flat:       Flatten(vars),
		fixed:      FixedReplacements(testNow, "02/01/2006"),
		policy:     policy,
		dateLayout: "02/01/2006",
		fragment:   FragmentBody,
		logger:     NewLogger(io.Discard, LogOff),
	}
}

func renderText(t *testing.T, text string, vars map[string]any) string {
	t.Helper()
	out, err := renderTextWithPolicy(text, vars, UnresolvedDrop)
	require.NoError(t, err)
	return out
}

func renderTextWithPolicy(text string, vars map[string]any, policy UnresolvedPolicy) (string, error) {
	nodes, _ := Parse(text)
	var b strings.Builder
	err := renderNodes(nodes, newTestState(vars, policy), nil, &b)
	return b.String(), err
}

func TestParse_Structure(t *testing.T) {
	nodes, issues := Parse("{IF a}A{IF b}B{ENDIF}{ELSE}C{ENDIF}")
	require.Empty(t, issues)
	require.Len(t, nodes, 1)

	outer, ok := nodes[0].(*IfNode)
	require.True(t, ok)
	assert.Equal(t, "a", outer.Condition.Field)
	require.Len(t, outer.ThenBody, 2)
	inner, ok := outer.ThenBody[1].(*IfNode)
	require.True(t, ok)
	assert.Equal(t, "b", inner.Condition.Field)
	require.Len(t, outer.ElseBody, 1)
	assert.Equal(t, &TextNode{Content: "C"}, outer.ElseBody[0])
}

func TestParse_Repeat(t *testing.T) {
	nodes, issues := Parse("<ul>{{#each items}}<li>{this}</li>{{/each}}</ul>")
	require.Empty(t, issues)
	require.Len(t, nodes, 3)

	repeat, ok := nodes[1].(*RepeatNode)
	require.True(t, ok)
	assert.Equal(t, RepeatEach, repeat.Mode)
	assert.Equal(t, "items", repeat.Name)
	assert.Len(t, repeat.Body, 3)
}

func TestParse_UnbalancedMarkers(t *testing.T) {
	testCases := []struct {
		name       string
		input      string
		wantIssues int
		wantText   string
	}{
		{
			name:       "stray else",
			input:      "{ELSE}a",
			wantIssues: 1,
			wantText:   "{ELSE}a",
		},
		{
			name:       "stray endif",
			input:      "a{ENDIF}",
			wantIssues: 1,
			wantText:   "a{ENDIF}",
		},
		{
			name:       "unclosed if",
			input:      "{IF a}x",
			wantIssues: 1,
			wantText:   "{IF a}x",
		},
		{
			name:       "unclosed if with else",
			input:      "{IF a}x{ELSE}y",
			wantIssues: 2,
			wantText:   "{IF a}x{ELSE}y",
		},
		{
			name:       "mismatched repeat close",
			input:      "{{#each a}}x{{/table}}",
			wantIssues: 2,
			wantText:   "{{#each a}}x{{/table}}",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			nodes, issues := Parse(tc.input)
			assert.Len(t, issues, tc.wantIssues)
			require.Len(t, nodes, 1)
			assert.Equal(t, &TextNode{Content: tc.wantText}, nodes[0])
		})
	}
}

func TestParse_SecondElseIsText(t *testing.T) {
	nodes, issues := Parse("{IF a}1{ELSE}2{ELSE}3{ENDIF}")
	assert.Len(t, issues, 1)
	require.Len(t, nodes, 1)
	node := nodes[0].(*IfNode)
	assert.Equal(t, []Node{&TextNode{Content: "2{ELSE}3"}}, node.ElseBody)
}

func TestParseCondition(t *testing.T) {
	testCases := []struct {
		expr string
		want Condition
	}{
		{expr: "paid", want: Condition{Raw: "paid", Field: "paid", Valid: true}},
		{expr: "!paid", want: Condition{Raw: "!paid", Field: "paid", Negate: true, Valid: true}},
		{expr: `status == "active"`, want: Condition{Raw: `status == "active"`, Field: "status", Op: OpEqual, Literal: "active", Valid: true}},
		{expr: `status != 'draft'`, want: Condition{Raw: `status != 'draft'`, Field: "status", Op: OpNotEqual, Literal: "draft", Valid: true}},
		{expr: "count == 3", want: Condition{Raw: "count == 3", Field: "count", Op: OpEqual, Literal: "3", Valid: true}},
		{expr: "student.name", want: Condition{Raw: "student.name", Field: "student.name", Valid: true}},
		{expr: "a > b", want: Condition{Raw: "a > b"}},
		{expr: "", want: Condition{}},
	}

	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseCondition(tc.expr))
		})
	}
}

func TestConditionals(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		vars  map[string]any
		want  string
	}{
		{name: "true branch", input: "{IF paid}Paid{ELSE}Due{ENDIF}", vars: map[string]any{"paid": true}, want: "Paid"},
		{name: "false string", input: "{IF paid}Paid{ELSE}Due{ENDIF}", vars: map[string]any{"paid": "false"}, want: "Due"},
		{name: "missing field", input: "{IF paid}Paid{ELSE}Due{ENDIF}", want: "Due"},
		{name: "negation", input: "{IF !paid}Due{ENDIF}", want: "Due"},
		{name: "equality", input: `{IF status == "active"}A{ENDIF}`, vars: map[string]any{"status": "active"}, want: "A"},
		{name: "inequality", input: `{IF status != "active"}A{ENDIF}`, vars: map[string]any{"status": "active"}, want: ""},
		{name: "number literal", input: "{IF count == 3}three{ENDIF}", vars: map[string]any{"count": 3}, want: "three"},
		{name: "nested", input: "{IF a}[{IF b}b{ELSE}nb{ENDIF}]{ENDIF}", vars: map[string]any{"a": 1}, want: "[nb]"},
		{name: "unsupported condition", input: "{IF a > b}X{ENDIF}", vars: map[string]any{"a": 2, "b": 1}, want: ""},
		{name: "stray endif kept", input: "{ENDIF} text", want: "{ENDIF} text"},
		{name: "bare IF kept", input: "{IF} text", want: "{IF} text"},
		{name: "guard stripped", input: "a{paid && amount}b", vars: map[string]any{"paid": true}, want: "ab"},
		{name: "values inside branch", input: "{IF name}Hi {name}{ENDIF}", vars: map[string]any{"name": "Awa"}, want: "Hi Awa"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, renderText(t, tc.input, tc.vars))
		})
	}
}

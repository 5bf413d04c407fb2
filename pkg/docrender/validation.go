package docrender

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/arafateouronile-glitch/EDUZEN-sub009/pkg/docrender/codegen"
	"github.com/arafateouronile-glitch/EDUZEN-sub009/pkg/docrender/markup"
)

// IssueSeverity indicates template issue severity.
type IssueSeverity string

const (
	IssueSeverityError   IssueSeverity = "error"
	IssueSeverityWarning IssueSeverity = "warning"
)

// IssueCode classifies template issues.
type IssueCode string

const (
	IssueCodeControlBlockMismatch IssueCode = "CONTROL_BLOCK_MISMATCH"
	IssueCodeUnsupportedExpr      IssueCode = "UNSUPPORTED_EXPRESSION"
	IssueCodeNestedRepeat         IssueCode = "NESTED_REPEAT"
	IssueCodeUnknownCodeType      IssueCode = "UNKNOWN_CODE_TYPE"
)

// TemplateIssue is one problem found in a template fragment.
type TemplateIssue struct {
	ID       string        `json:"id"`
	Severity IssueSeverity `json:"severity"`
	Code     IssueCode     `json:"code"`
	Message  string        `json:"message"`
	Fragment string        `json:"fragment"`
	Offset   int           `json:"offset"`
	Raw      string        `json:"raw,omitempty"`
}

// ValidationSummary contains validation counters.
type ValidationSummary struct {
	CheckedFragments int `json:"checkedFragments"`
	ErrorCount       int `json:"errorCount"`
	WarningCount     int `json:"warningCount"`
}

// ValidationResult is the outcome of a static template check. Valid is false
// only when an error-severity issue exists.
type ValidationResult struct {
	Valid        bool              `json:"valid"`
	Summary      ValidationSummary `json:"summary"`
	Issues       []TemplateIssue   `json:"issues"`
	References   []string          `json:"references"`
	DocumentHash string            `json:"documentHash"`
}

// Names bound by repeat blocks rather than by the variables.
var rowScopedNames = map[string]bool{
	"index": true, "@index": true, "row_number": true, "this": true, ".": true,
}

// ValidateTemplate checks header, body and footer for unbalanced control
// markers, nested repeat blocks, unsupported conditions and barcode types.
func ValidateTemplate(tpl *Template) *ValidationResult {
	result := &ValidationResult{Valid: true, Issues: []TemplateIssue{}, References: []string{}}
	if tpl == nil {
		return result
	}

	body, _ := tpl.bodyText(nil)
	fragments := []struct{ name, text string }{
		{FragmentHeader, tpl.HeaderText()},
		{FragmentBody, body},
		{FragmentFooter, tpl.FooterText()},
	}

	refs := make(map[string]bool)
	hash := sha256.New()
	for _, f := range fragments {
		hash.Write([]byte(f.text))
		if strings.TrimSpace(f.text) == "" {
			continue
		}
		result.Summary.CheckedFragments++
		result.Issues = append(result.Issues, validateFragment(f.name, f.text, refs)...)
	}

	sortTemplateIssues(result.Issues)
	for i := range result.Issues {
		result.Issues[i].ID = fmt.Sprintf("iss_%03d", i+1)
		if result.Issues[i].Severity == IssueSeverityError {
			result.Summary.ErrorCount++
		} else {
			result.Summary.WarningCount++
		}
	}
	result.Valid = result.Summary.ErrorCount == 0

	for name := range refs {
		result.References = append(result.References, name)
	}
	sort.Strings(result.References)
	result.DocumentHash = "sha256:" + hex.EncodeToString(hash.Sum(nil))
	return result
}

func validateFragment(fragment, text string, refs map[string]bool) []TemplateIssue {
	var issues []TemplateIssue
	nodes, syntax := Parse(text)
	for _, s := range syntax {
		issues = append(issues, TemplateIssue{
			Severity: IssueSeverityError,
			Code:     IssueCodeControlBlockMismatch,
			Message:  s.Message,
			Fragment: fragment,
			Offset:   s.Pos,
			Raw:      s.Raw,
		})
	}

	walkNodes(nodes, 0, func(n Node, depth int) {
		switch node := n.(type) {
		case *VariableNode:
			addReference(refs, node.Name)
		case *IfNode:
			if !node.Condition.Valid {
				issues = append(issues, TemplateIssue{
					Severity: IssueSeverityWarning,
					Code:     IssueCodeUnsupportedExpr,
					Message:  fmt.Sprintf("condition %q is not supported and evaluates to false", node.Condition.Raw),
					Fragment: fragment,
					Raw:      node.Condition.Raw,
				})
				return
			}
			addReference(refs, node.Condition.Field)
		case *RepeatNode:
			addReference(refs, node.Name)
			if depth > 0 {
				issues = append(issues, TemplateIssue{
					Severity: IssueSeverityWarning,
					Code:     IssueCodeNestedRepeat,
					Message:  fmt.Sprintf("repeat block %q is nested inside another repeat block", node.Name),
					Fragment: fragment,
					Raw:      node.Raw,
				})
			}
		}
	})

	for _, t := range markup.FindTags(text, "img") {
		if !t.HasClass(barcodeClass) {
			continue
		}
		kind, _ := t.Get(barcodeTypeAttr)
		if !codegen.SupportedBarcodeType(kind) {
			issues = append(issues, TemplateIssue{
				Severity: IssueSeverityWarning,
				Code:     IssueCodeUnknownCodeType,
				Message:  fmt.Sprintf("barcode type %q cannot be drawn inline", kind),
				Fragment: fragment,
				Offset:   t.Start,
				Raw:      text[t.Start:t.End],
			})
		}
	}
	return issues
}

// walkNodes visits nodes depth first. depth counts enclosing repeat blocks.
func walkNodes(nodes []Node, depth int, visit func(Node, int)) {
	for _, n := range nodes {
		visit(n, depth)
		switch node := n.(type) {
		case *IfNode:
			walkNodes(node.ThenBody, depth, visit)
			walkNodes(node.ElseBody, depth, visit)
		case *RepeatNode:
			walkNodes(node.Body, depth+1, visit)
		}
	}
}

func addReference(refs map[string]bool, name string) {
	if rowScopedNames[name] || strings.HasPrefix(name, "item.") {
		return
	}
	refs[name] = true
}

var fragmentOrder = map[string]int{FragmentHeader: 0, FragmentBody: 1, FragmentFooter: 2}

func sortTemplateIssues(issues []TemplateIssue) {
	sort.SliceStable(issues, func(i, j int) bool {
		left := issues[i]
		right := issues[j]

		if left.Fragment != right.Fragment {
			return fragmentOrder[left.Fragment] < fragmentOrder[right.Fragment]
		}
		if left.Offset != right.Offset {
			return left.Offset < right.Offset
		}
		if left.Code != right.Code {
			return left.Code < right.Code
		}
		return left.Message < right.Message
	})
}

// Err reports the error-severity issues as *TemplateError values collected in
// a MultiError. It returns nil for a valid template.
func (r *ValidationResult) Err() error {
	errs := NewMultiError()
	for _, issue := range r.Issues {
		if issue.Severity != IssueSeverityError {
			continue
		}
		errs.Add(&TemplateError{Fragment: issue.Fragment, Offset: issue.Offset, Message: issue.Message})
	}
	return errs.Err()
}

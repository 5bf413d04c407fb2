package docrender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTemplate(t *testing.T) {
	tpl := &Template{
		Header: &Section{Content: "<h1>{ecole_nom}</h1>{IF logo}"},
		Content: Content{HTML: `{{#table modules}}<tr><td>{row_number}</td><td>{title}</td>` +
			`{{#each tags}}{this}{{/each}}</tr>{{/table}}` +
			`{IF a > b}x{ENDIF}` +
			`<img class="barcode-dynamic" data-barcode-data="{student.id}" data-barcode-type="PDF417">`},
		Footer: &Section{Content: "{ENDIF}"},
	}

	result := ValidateTemplate(tpl)
	require.NotNil(t, result)
	assert.False(t, result.Valid)
	assert.Equal(t, 3, result.Summary.CheckedFragments)
	assert.Equal(t, 2, result.Summary.ErrorCount)
	assert.Equal(t, 3, result.Summary.WarningCount)

	codes := make([]IssueCode, 0, len(result.Issues))
	for _, issue := range result.Issues {
		codes = append(codes, issue.Code)
	}
	assert.Equal(t, []IssueCode{
		IssueCodeControlBlockMismatch, // header {IF logo}
		IssueCodeNestedRepeat,
		IssueCodeUnsupportedExpr,
		IssueCodeUnknownCodeType,
		IssueCodeControlBlockMismatch, // footer {ENDIF}
	}, codes)
	assert.Equal(t, "iss_001", result.Issues[0].ID)
	assert.Equal(t, FragmentHeader, result.Issues[0].Fragment)
	assert.Equal(t, FragmentFooter, result.Issues[4].Fragment)

	assert.Equal(t, []string{"ecole_nom", "modules", "student.id", "tags", "title"}, result.References)
	assert.Contains(t, result.DocumentHash, "sha256:")

	err := result.Err()
	require.Error(t, err)
	assert.True(t, IsTemplateError(err))
	var multi *MultiError
	require.ErrorAs(t, err, &multi)
	assert.Equal(t, 2, multi.Len())
}

func TestValidateTemplate_Valid(t *testing.T) {
	e := newTestEngine()
	result := e.Validate(bodyTemplate(`{IF paid}{amount}{ELSE}-{ENDIF}<img class="barcode-dynamic" data-barcode-type="code39">`))
	assert.True(t, result.Valid)
	assert.Empty(t, result.Issues)
	assert.Equal(t, []string{"amount", "paid"}, result.References)
	assert.NoError(t, result.Err())

	assert.True(t, ValidateTemplate(nil).Valid)
}

package docrender

import (
	"html"
	"strconv"
	"strings"
	"time"
)

// Placeholders with a built-in value used when the variables do not define
// them.
const (
	PlaceholderCurrentDate = "current_date"
	PlaceholderDateDuJour  = "date_du_jour"
	PlaceholderCurrentYear = "current_year"
	PlaceholderPageNumber  = "page_number"
	PlaceholderTotalPages  = "total_pages"

	pageNumberSpan = `<span class="page-number"></span>`
	totalPagesSpan = `<span class="total-pages"></span>`
)

// FixedReplacements returns the built-in placeholder values for a render
// started at now.
func FixedReplacements(now time.Time, dateLayout string) map[string]string {
	date := now.Format(dateLayout)
	return map[string]string{
		PlaceholderCurrentDate: date,
		PlaceholderDateDuJour:  date,
		PlaceholderCurrentYear: strconv.Itoa(now.Year()),
		PlaceholderPageNumber:  pageNumberSpan,
		PlaceholderTotalPages:  totalPagesSpan,
	}
}

// renderState carries the values shared by every node of one fragment render.
type renderState struct {
	flat       FlatMap
	fixed      map[string]string
	policy     UnresolvedPolicy
	dateLayout string
	fragment   string
	logger     *Logger
}

// rowFrame is the scope introduced by one iteration of a repeat block.
// Frames chain to the enclosing block so inner rows shadow outer ones.
type rowFrame struct {
	parent *rowFrame
	mode   RepeatMode
	index  int
	item   any
	fields FlatMap
}

func (f *rowFrame) lookup(name string) (any, bool) {
	switch name {
	case "index", "@index":
		return f.index, true
	case "row_number":
		if f.mode == RepeatTable {
			return f.index + 1, true
		}
	}

	if f.fields == nil {
		if name == "this" || name == "." {
			return f.item, true
		}
		return nil, false
	}
	if v, ok := f.fields[name]; ok {
		return v, true
	}
	if rest, ok := strings.CutPrefix(name, "item."); ok {
		if v, ok := f.fields[rest]; ok {
			return v, true
		}
	}
	return nil, false
}

// resolve finds name in the row scopes, then the global variables, then the
// built-in replacements. raw reports whether the value is inserted without
// HTML escaping.
func (st *renderState) resolve(name string, row *rowFrame) (v any, raw, found bool) {
	for f := row; f != nil; f = f.parent {
		if v, ok := f.lookup(name); ok {
			return v, true, true
		}
	}
	if v, ok := st.flat[name]; ok {
		return v, false, true
	}
	if s, ok := st.fixed[name]; ok {
		return s, true, true
	}
	return nil, false, false
}

func (st *renderState) lookup(name string, row *rowFrame) (any, bool) {
	v, _, found := st.resolve(name, row)
	return v, found
}

func (n *VariableNode) render(st *renderState, row *rowFrame, out *strings.Builder) error {
	v, raw, found := st.resolve(n.Name, row)
	if found {
		s := formatValue(v, st.dateLayout)
		if !raw {
			s = html.EscapeString(s)
		}
		out.WriteString(s)
		return nil
	}

	switch st.policy {
	case UnresolvedKeep:
		out.WriteString(n.Raw)
	case UnresolvedError:
		return &UnresolvedPlaceholderError{Name: n.Name, Offset: n.Pos}
	default:
		if st.logger.IsDebugMode() {
			st.logger.WithFields(Fields{"fragment": st.fragment, "placeholder": n.Name}).Debug("unresolved placeholder dropped")
		}
	}
	return nil
}

package docrender

import "strings"

// render expands the block body once per array element. A missing, null or
// malformed source renders as nothing.
func (n *RepeatNode) render(st *renderState, row *rowFrame, out *strings.Builder) error {
	v, found := st.lookup(n.Name, row)
	if !found || v == nil {
		if st.logger.IsDebugMode() {
			st.logger.WithFields(Fields{"fragment": st.fragment, "block": n.Name}).Debug("repeat source missing, block removed")
		}
		return nil
	}

	items, err := asArray(v)
	if err != nil {
		st.logger.WithFields(Fields{"fragment": st.fragment, "block": n.Name}).WithError(err).Warn("repeat source is not an array, block removed")
		return nil
	}

	for i, item := range items {
		frame := &rowFrame{parent: row, mode: n.Mode, index: i, item: item}
		if obj, ok := asObject(item); ok {
			frame.fields = rowFields(obj)
		}
		if err := renderNodes(n.Body, st, frame, out); err != nil {
			return err
		}
	}
	return nil
}

// rowFields exposes a row's own keys plus the dotted paths of its nested
// objects. Own keys win over flattened paths of the same name.
func rowFields(obj map[string]any) FlatMap {
	fields := Flatten(obj)
	for k, v := range obj {
		fields[k] = v
	}
	return fields
}

package grid

// Action is a bulk operation over the selected rows.
type Action[T any] struct {
	Label string
	Icon  string
	// AlwaysEnabled actions run even with nothing selected.
	AlwaysEnabled bool
	Run           func(selected []T)
}

// ActionState is an action as the rendering layer sees it.
type ActionState struct {
	Label   string `json:"label"`
	Icon    string `json:"icon,omitempty"`
	Enabled bool   `json:"enabled"`
}

// Actions returns the action bar. It is empty in view-only mode or when
// the selection column is hidden.
func (e *Engine[T]) Actions() []ActionState {
	if e.props.ViewOnly || !e.props.ShowSelection {
		return nil
	}
	selected := len(selectedIndices(e.state.Selection, len(e.props.Data))) > 0
	out := make([]ActionState, 0, len(e.props.Actions))
	for _, a := range e.props.Actions {
		out = append(out, ActionState{
			Label:   a.Label,
			Icon:    a.Icon,
			Enabled: a.AlwaysEnabled || selected,
		})
	}
	return out
}

// RunAction runs the first enabled action with the given label against
// the selected rows. It reports whether an action ran.
func (e *Engine[T]) RunAction(label string) bool {
	for i, st := range e.Actions() {
		if st.Label != label {
			continue
		}
		if !st.Enabled {
			return false
		}
		if run := e.props.Actions[i].Run; run != nil {
			e.log.Debug("grid: run action", "action", label)
			run(e.SelectedRows())
		}
		return true
	}
	return false
}

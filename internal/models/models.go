// Package models holds the view-models behind the list panes: ordered
// rows loaded from the store, scoped by a parent or owning contact, with
// reset notifications fired whenever the rows are reloaded.
package models

// NoContact is the scope that selects no rows
const NoContact int64 = -1

// resetNotifier fans a model reset out to subscribers
type resetNotifier struct {
	handlers []func()
}

// OnReset registers fn to run after every reload of the model
func (n *resetNotifier) OnReset(fn func()) {
	n.handlers = append(n.handlers, fn)
}

func (n *resetNotifier) notify() {
	for _, fn := range n.handlers {
		fn()
	}
}

func validRow(row, n int) bool {
	return row >= 0 && row < n
}

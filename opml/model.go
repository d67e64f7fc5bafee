package opml

import (
	"strings"

	"github.com/ammiranda/feed_service/models"
)

// PathSeparator separates titles in the paths accepted by UncheckPath
const PathSeparator = "/"

// Model is an import tree with a checked flag per node
type Model struct {
	Title string

	root    *models.Node
	checked map[*models.Node]bool
}

// NewModel wraps root in a model with every node unchecked
func NewModel(root *models.Node) *Model {
	return &Model{
		root:    root,
		checked: make(map[*models.Node]bool),
	}
}

// Root returns the root of the import tree
func (m *Model) Root() *models.Node {
	return m.root
}

// IsChecked reports whether node is selected for import
func (m *Model) IsChecked(node *models.Node) bool {
	return m.checked[node]
}

// SetChecked sets the flag of node and all its descendants. Checking a node
// also checks its ancestors so that the merge walk can reach it.
func (m *Model) SetChecked(node *models.Node, checked bool) {
	node.Walk(func(n *models.Node) bool {
		m.checked[n] = checked
		return true
	})
	if checked {
		for p := node.Parent(); p != nil; p = p.Parent() {
			m.checked[p] = true
		}
	}
}

// CheckAll selects every node of the tree
func (m *Model) CheckAll() {
	m.SetChecked(m.root, true)
}

// CheckedCount returns how many categories and feeds are selected
func (m *Model) CheckedCount() int {
	count := 0
	m.root.Walk(func(n *models.Node) bool {
		if n != m.root && m.checked[n] {
			count++
		}
		return true
	})
	return count
}

// Find returns the node addressed by a slash separated title path, or nil
func (m *Model) Find(path string) *models.Node {
	current := m.root
	for _, title := range strings.Split(strings.Trim(path, PathSeparator), PathSeparator) {
		var next *models.Node
		for _, child := range current.Children {
			if child.Title == title {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		current = next
	}
	return current
}

// UncheckPath deselects the node addressed by path and its descendants.
// It reports whether the path was found.
func (m *Model) UncheckPath(path string) bool {
	node := m.Find(path)
	if node == nil || node == m.root {
		return false
	}
	m.SetChecked(node, false)
	return true
}

package models

import (
	"errors"
)

// NoParentID is the parent id of top-level categories and feeds
const NoParentID int64 = -1

// Kind identifies the variant of a Node
type Kind int

const (
	KindRoot Kind = iota
	KindCategory
	KindFeed
	KindRecycleBin
)

// String returns the lower-case name of the kind
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindCategory:
		return "category"
	case KindFeed:
		return "feed"
	case KindRecycleBin:
		return "recycle-bin"
	default:
		return "unknown"
	}
}

// FeedType is the syndication format of a feed as stored in the Feeds table
type FeedType int

const (
	FeedTypeAtom10 FeedType = 0
	FeedTypeRdf    FeedType = 1
	FeedTypeRss0X  FeedType = 2
	FeedTypeRss2X  FeedType = 3
)

// Known reports whether t is one of the supported syndication formats
func (t FeedType) Known() bool {
	switch t {
	case FeedTypeAtom10, FeedTypeRdf, FeedTypeRss0X, FeedTypeRss2X:
		return true
	}
	return false
}

// String returns the OPML version attribute for the feed type
func (t FeedType) String() string {
	switch t {
	case FeedTypeAtom10:
		return "ATOM"
	case FeedTypeRdf:
		return "RDF"
	case FeedTypeRss0X:
		return "RSS0X"
	case FeedTypeRss2X:
		return "RSS"
	default:
		return "UNKNOWN"
	}
}

var (
	// ErrCannotHoldChildren is returned when appending below a feed or the recycle bin
	ErrCannotHoldChildren = errors.New("node cannot hold children")
	// ErrAlreadyAttached is returned when appending a node that already has a parent
	ErrAlreadyAttached = errors.New("node already has a parent")
)

// Node is a single element of the feed hierarchy.
//
// A node exclusively owns its Children. The parent link is a non-owning
// back-reference maintained by AppendChild and RemoveChild only.
type Node struct {
	ID          int64
	Kind        Kind
	Title       string
	Description string
	Children    []*Node

	// Feed payload, meaningful only when Kind == KindFeed.
	URL      string
	Encoding string
	Type     FeedType

	parent *Node
}

// NewRoot creates an empty root node
func NewRoot(title string) *Node {
	return &Node{
		ID:       NoParentID,
		Kind:     KindRoot,
		Title:    title,
		Children: make([]*Node, 0),
	}
}

// NewCategory creates a detached category node
func NewCategory(id int64, title string) *Node {
	return &Node{
		ID:       id,
		Kind:     KindCategory,
		Title:    title,
		Children: make([]*Node, 0),
	}
}

// NewFeed creates a detached feed node
func NewFeed(id int64, title, url string, feedType FeedType) *Node {
	return &Node{
		ID:    id,
		Kind:  KindFeed,
		Title: title,
		URL:   url,
		Type:  feedType,
	}
}

// NewRecycleBin creates the recycle bin node
func NewRecycleBin() *Node {
	return &Node{
		Kind:     KindRecycleBin,
		Title:    "Recycle bin",
		Children: make([]*Node, 0),
	}
}

// Parent returns the node this node is attached to, or nil
func (n *Node) Parent() *Node {
	return n.parent
}

// CanHoldChildren reports whether categories or feeds may be appended below n
func (n *Node) CanHoldChildren() bool {
	return n.Kind == KindRoot || n.Kind == KindCategory
}

// AppendChild attaches child as the last child of n
func (n *Node) AppendChild(child *Node) error {
	if !n.CanHoldChildren() {
		return ErrCannotHoldChildren
	}
	if child.parent != nil {
		return ErrAlreadyAttached
	}
	child.parent = n
	n.Children = append(n.Children, child)
	return nil
}

// RemoveChild detaches child from n. It reports whether child was found.
func (n *Node) RemoveChild(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// ChildByTitle returns the first direct child of the given kind with the given title
func (n *Node) ChildByTitle(kind Kind, title string) *Node {
	for _, c := range n.Children {
		if c.Kind == kind && c.Title == title {
			return c
		}
	}
	return nil
}

// Clone returns a detached value copy of n without children
func (n *Node) Clone() *Node {
	clone := *n
	clone.parent = nil
	clone.Children = nil
	if n.Kind != KindFeed {
		clone.Children = make([]*Node, 0)
	}
	return &clone
}

// ParentID returns the storage parent id of n: the parent's id for categories,
// NoParentID for children of the root or for detached nodes
func (n *Node) ParentID() int64 {
	if n.parent == nil || n.parent.Kind != KindCategory {
		return NoParentID
	}
	return n.parent.ID
}

// Walk visits n and all its descendants breadth-first until fn returns false
func (n *Node) Walk(fn func(*Node) bool) {
	queue := []*Node{n}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if !fn(current) {
			return
		}
		queue = append(queue, current.Children...)
	}
}

// Count returns the number of nodes of the given kind below n
func (n *Node) Count(kind Kind) int {
	count := 0
	n.Walk(func(node *Node) bool {
		if node != n && node.Kind == kind {
			count++
		}
		return true
	})
	return count
}

// NodeView is the serializable form of a hierarchy used by the API and the caches
type NodeView struct {
	ID          int64       `json:"id" dynamodbav:"id"`
	Kind        string      `json:"kind" dynamodbav:"kind"`
	Title       string      `json:"title" dynamodbav:"title"`
	Description string      `json:"description,omitempty" dynamodbav:"description,omitempty"`
	URL         string      `json:"url,omitempty" dynamodbav:"url,omitempty"`
	Encoding    string      `json:"encoding,omitempty" dynamodbav:"encoding,omitempty"`
	Type        string      `json:"type,omitempty" dynamodbav:"type,omitempty"`
	Children    []*NodeView `json:"children,omitempty" dynamodbav:"children,omitempty"`
}

// View builds a detached NodeView copy of n and its descendants
func (n *Node) View() *NodeView {
	view := &NodeView{
		ID:          n.ID,
		Kind:        n.Kind.String(),
		Title:       n.Title,
		Description: n.Description,
	}
	if n.Kind == KindFeed {
		view.URL = n.URL
		view.Encoding = n.Encoding
		view.Type = n.Type.String()
	}
	for _, child := range n.Children {
		view.Children = append(view.Children, child.View())
	}
	return view
}

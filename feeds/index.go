package feeds

import (
	"github.com/ammiranda/feed_service/models"
)

// index maps storage ids to the attached nodes of the hierarchy
type index struct {
	categories map[int64]*models.Node
	feeds      map[int64]*models.Node
}

func newIndex() *index {
	return &index{
		categories: make(map[int64]*models.Node),
		feeds:      make(map[int64]*models.Node),
	}
}

func (ix *index) register(node *models.Node) {
	switch node.Kind {
	case models.KindCategory:
		ix.categories[node.ID] = node
	case models.KindFeed:
		ix.feeds[node.ID] = node
	}
}

func (ix *index) rebuild(root *models.Node) {
	ix.categories = make(map[int64]*models.Node)
	ix.feeds = make(map[int64]*models.Node)
	root.Walk(func(node *models.Node) bool {
		ix.register(node)
		return true
	})
}

// CategoriesForItem collects every category below root keyed by id.
// Only categories are descended into.
func CategoriesForItem(root *models.Node) map[int64]*models.Node {
	categories := make(map[int64]*models.Node)
	parents := append([]*models.Node(nil), root.Children...)

	for len(parents) > 0 {
		item := parents[0]
		parents = parents[1:]

		if item.Kind != models.KindCategory {
			continue
		}
		if _, ok := categories[item.ID]; !ok {
			categories[item.ID] = item
		}
		parents = append(parents, item.Children...)
	}
	return categories
}

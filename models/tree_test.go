package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendChild(t *testing.T) {
	root := NewRoot("feeds")
	category := NewCategory(1, "Tech")
	feed := NewFeed(2, "Go Blog", "https://go.dev/blog/feed.atom", FeedTypeAtom10)

	require.NoError(t, root.AppendChild(category))
	require.NoError(t, category.AppendChild(feed))

	assert.Same(t, root, category.Parent())
	assert.Same(t, category, feed.Parent())
	assert.Equal(t, NoParentID, category.ParentID())
	assert.Equal(t, int64(1), feed.ParentID())

	assert.ErrorIs(t, feed.AppendChild(NewFeed(3, "Nested", "https://example.com", FeedTypeRss2X)), ErrCannotHoldChildren)
	assert.ErrorIs(t, NewRecycleBin().AppendChild(NewCategory(4, "Binned")), ErrCannotHoldChildren)
	assert.ErrorIs(t, root.AppendChild(feed), ErrAlreadyAttached)
	assert.Len(t, root.Children, 1)
}

func TestRemoveChild(t *testing.T) {
	root := NewRoot("feeds")
	first := NewCategory(1, "First")
	second := NewCategory(2, "Second")
	require.NoError(t, root.AppendChild(first))
	require.NoError(t, root.AppendChild(second))

	assert.True(t, root.RemoveChild(first))
	assert.Nil(t, first.Parent())
	assert.Equal(t, []*Node{second}, root.Children)
	assert.False(t, root.RemoveChild(first))

	// A detached node can be attached again
	require.NoError(t, root.AppendChild(first))
	assert.Equal(t, []*Node{second, first}, root.Children)
}

func TestChildByTitle(t *testing.T) {
	root := NewRoot("feeds")
	category := NewCategory(1, "News")
	feed := NewFeed(2, "News", "https://example.com/news.xml", FeedTypeRss2X)
	require.NoError(t, root.AppendChild(feed))
	require.NoError(t, root.AppendChild(category))

	assert.Same(t, category, root.ChildByTitle(KindCategory, "News"))
	assert.Same(t, feed, root.ChildByTitle(KindFeed, "News"))
	assert.Nil(t, root.ChildByTitle(KindCategory, "Sports"))
}

func TestClone(t *testing.T) {
	root := NewRoot("feeds")
	category := NewCategory(1, "Tech")
	category.Description = "Technology"
	require.NoError(t, root.AppendChild(category))
	require.NoError(t, category.AppendChild(NewFeed(2, "Go Blog", "https://go.dev/blog/feed.atom", FeedTypeAtom10)))

	clone := category.Clone()
	assert.NotSame(t, category, clone)
	assert.Nil(t, clone.Parent())
	assert.Empty(t, clone.Children)
	assert.NotNil(t, clone.Children)
	assert.Equal(t, "Technology", clone.Description)
	assert.Len(t, category.Children, 1)

	feedClone := category.Children[0].Clone()
	assert.Nil(t, feedClone.Children)
	assert.Equal(t, "https://go.dev/blog/feed.atom", feedClone.URL)
	require.NoError(t, root.AppendChild(feedClone))
}

func TestWalkAndCount(t *testing.T) {
	root := NewRoot("feeds")
	tech := NewCategory(1, "Tech")
	golang := NewCategory(2, "Go")
	require.NoError(t, root.AppendChild(tech))
	require.NoError(t, tech.AppendChild(golang))
	require.NoError(t, golang.AppendChild(NewFeed(3, "Go Blog", "https://go.dev/blog/feed.atom", FeedTypeAtom10)))
	require.NoError(t, root.AppendChild(NewFeed(4, "Top", "https://example.com/top.xml", FeedTypeRss2X)))

	var visited []string
	root.Walk(func(n *Node) bool {
		visited = append(visited, n.Title)
		return true
	})
	assert.Equal(t, []string{"feeds", "Tech", "Top", "Go", "Go Blog"}, visited)

	visited = nil
	root.Walk(func(n *Node) bool {
		visited = append(visited, n.Title)
		return n.Kind != KindCategory
	})
	assert.Equal(t, []string{"feeds", "Tech"}, visited)

	assert.Equal(t, 2, root.Count(KindCategory))
	assert.Equal(t, 2, root.Count(KindFeed))
	assert.Equal(t, 1, tech.Count(KindCategory))
}

func TestFeedType(t *testing.T) {
	testCases := []struct {
		feedType FeedType
		known    bool
		name     string
	}{
		{FeedTypeAtom10, true, "ATOM"},
		{FeedTypeRdf, true, "RDF"},
		{FeedTypeRss0X, true, "RSS0X"},
		{FeedTypeRss2X, true, "RSS"},
		{FeedType(99), false, "UNKNOWN"},
		{FeedType(-1), false, "UNKNOWN"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.known, tc.feedType.Known())
			assert.Equal(t, tc.name, tc.feedType.String())
		})
	}
}

func TestView(t *testing.T) {
	root := NewRoot("feeds")
	category := NewCategory(1, "Tech")
	feed := NewFeed(2, "Go Blog", "https://go.dev/blog/feed.atom", FeedTypeAtom10)
	feed.Encoding = "UTF-8"
	require.NoError(t, root.AppendChild(category))
	require.NoError(t, category.AppendChild(feed))
	require.NoError(t, root.AppendChild(NewRecycleBin()))

	view := root.View()
	assert.Equal(t, "root", view.Kind)
	require.Len(t, view.Children, 2)
	assert.Equal(t, "recycle-bin", view.Children[1].Kind)

	feedView := view.Children[0].Children[0]
	assert.Equal(t, &NodeView{
		ID:       2,
		Kind:     "feed",
		Title:    "Go Blog",
		URL:      "https://go.dev/blog/feed.atom",
		Encoding: "UTF-8",
		Type:     "ATOM",
	}, feedView)

	// The view is detached from the tree
	feed.Title = "Renamed"
	assert.Equal(t, "Go Blog", feedView.Title)
}

package opml

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ammiranda/feed_service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOPML = `<?xml version="1.0" encoding="UTF-8"?>
<opml version="2.0">
  <head><title>Sample</title></head>
  <body>
    <outline text="News">
      <outline text="World" type="rss" version="RSS" xmlUrl="https://example.com/world.xml"/>
      <outline text="Science">
        <outline title="Space" type="rss" version="ATOM" xmlUrl="https://example.com/space.atom" encoding="UTF-8"/>
      </outline>
    </outline>
    <outline text="Blog" type="rss" version="RDF" xmlUrl="https://example.com/blog.rdf"/>
  </body>
</opml>`

func TestParse(t *testing.T) {
	model, err := Parse(strings.NewReader(sampleOPML))
	require.NoError(t, err)

	assert.Equal(t, "Sample", model.Title)
	root := model.Root()
	require.Len(t, root.Children, 2)

	news := root.Children[0]
	assert.Equal(t, models.KindCategory, news.Kind)
	assert.Equal(t, "News", news.Title)
	require.Len(t, news.Children, 2)
	assert.Equal(t, models.FeedTypeRss2X, news.Children[0].Type)

	space := model.Find("News/Science/Space")
	require.NotNil(t, space)
	assert.Equal(t, models.KindFeed, space.Kind)
	assert.Equal(t, models.FeedTypeAtom10, space.Type)
	assert.Equal(t, "UTF-8", space.Encoding)
	assert.Same(t, news.Children[1], space.Parent())

	blog := root.Children[1]
	assert.Equal(t, models.KindFeed, blog.Kind)
	assert.Equal(t, models.FeedTypeRdf, blog.Type)

	assert.Equal(t, 0, model.CheckedCount())
}

func TestParseInvalid(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"Not XML", "definitely not xml"},
		{"Missing body", `<opml version="2.0"><head/></opml>`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.input))
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestCheckedFlags(t *testing.T) {
	model, err := Parse(strings.NewReader(sampleOPML))
	require.NoError(t, err)

	model.CheckAll()
	assert.Equal(t, 5, model.CheckedCount())

	assert.True(t, model.UncheckPath("News/Science"))
	assert.False(t, model.IsChecked(model.Find("News/Science")))
	assert.False(t, model.IsChecked(model.Find("News/Science/Space")))
	assert.True(t, model.IsChecked(model.Find("News/World")))
	assert.Equal(t, 3, model.CheckedCount())

	assert.False(t, model.UncheckPath("News/Missing"))
}

func TestSetCheckedChecksAncestors(t *testing.T) {
	model, err := Parse(strings.NewReader(sampleOPML))
	require.NoError(t, err)

	model.SetChecked(model.Find("News/Science/Space"), true)

	assert.True(t, model.IsChecked(model.Find("News")))
	assert.True(t, model.IsChecked(model.Find("News/Science")))
	assert.False(t, model.IsChecked(model.Find("News/World")))
	assert.False(t, model.IsChecked(model.Find("Blog")))
}

func TestExportRoundTrip(t *testing.T) {
	root := models.NewRoot("feeds")
	tech := models.NewCategory(1, "Tech")
	require.NoError(t, root.AppendChild(tech))
	feed := models.NewFeed(2, "Go Blog", "https://go.dev/blog/feed.atom", models.FeedTypeAtom10)
	require.NoError(t, tech.AppendChild(feed))
	require.NoError(t, root.AppendChild(models.NewRecycleBin()))

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, root, "My feeds"))
	assert.True(t, strings.HasPrefix(buf.String(), "<?xml"))
	assert.NotContains(t, buf.String(), "Recycle bin")

	model, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, "My feeds", model.Title)

	exported := model.Find("Tech/Go Blog")
	require.NotNil(t, exported)
	assert.Equal(t, "https://go.dev/blog/feed.atom", exported.URL)
	assert.Equal(t, models.FeedTypeAtom10, exported.Type)
}

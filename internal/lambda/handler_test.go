package lambda

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ammiranda/feed_service/cache"
	"github.com/ammiranda/feed_service/feeds"
	"github.com/ammiranda/feed_service/models"
	"github.com/ammiranda/feed_service/repository"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, *repository.MockRepository) {
	t.Helper()
	repo := repository.NewMockRepository()
	repo.SeedCategory(repository.CategoryRow{ID: 1, ParentID: models.NoParentID, Title: "News"})
	repo.SeedFeed(repository.FeedRow{ID: 2, ParentID: 1, Title: "A", URL: "https://example.com/a.xml", Type: int(models.FeedTypeRss2X)})

	service := feeds.NewServiceRoot(repo, feeds.Options{})
	_, err := service.LoadFromDatabase(context.Background())
	require.NoError(t, err)

	require.NoError(t, cache.SetProvider(cache.NewMemoryCache()))
	t.Cleanup(cache.ResetProvider)

	return NewHandler(service, nil), repo
}

func TestHandleGetTree(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp, err := handler.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/api/tree"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var tree models.NodeView
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &tree))
	require.Len(t, tree.Children, 2)
	assert.Equal(t, "News", tree.Children[0].Title)

	cached, found := cache.GetTree()
	require.True(t, found)
	assert.Equal(t, &tree, cached)
}

func TestHandleImport(t *testing.T) {
	handler, repo := newTestHandler(t)
	document := `<opml version="2.0"><head/><body>
		<outline text="News"><outline text="B" xmlUrl="https://example.com/b.xml"/></outline>
	</body></opml>`

	body, err := json.Marshal(models.ImportRequest{OPML: document})
	require.NoError(t, err)

	// Prime the cache so the import has something to invalidate
	_, err = handler.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/api/tree"})
	require.NoError(t, err)

	resp, err := handler.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/api/import",
		Body:       string(body),
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)

	var response models.ImportResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &response))
	assert.True(t, response.Success)
	assert.Equal(t, feeds.MergeMessageComplete, response.Message)

	rows, err := repo.GetAllFeeds(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[1].ParentID)

	_, found := cache.GetTree()
	assert.False(t, found)
}

func TestHandleErrors(t *testing.T) {
	handler, _ := newTestHandler(t)

	testCases := []struct {
		name         string
		request      events.APIGatewayProxyRequest
		expectedCode int
	}{
		{"Unknown route", events.APIGatewayProxyRequest{HTTPMethod: http.MethodDelete, Path: "/api/tree"}, http.StatusNotFound},
		{"Malformed body", events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost, Path: "/api/import", Body: "{"}, http.StatusBadRequest},
		{"Missing document", events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost, Path: "/api/import", Body: "{}"}, http.StatusBadRequest},
		{"Invalid document", events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost, Path: "/api/import", Body: `{"opml":"plain text"}`}, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := handler.Handle(context.Background(), tc.request)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedCode, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

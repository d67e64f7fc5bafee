package feeds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ammiranda/feed_service/events"
	"github.com/ammiranda/feed_service/logger"
	"github.com/ammiranda/feed_service/models"
	"github.com/ammiranda/feed_service/opml"
	"github.com/ammiranda/feed_service/repository"
)

var (
	// ErrLoadFailed wraps storage failures of the initial load. It is fatal to callers.
	ErrLoadFailed = errors.New("loading feeds from storage failed")
	// ErrUnsupportedKind is returned when attaching a node that is neither a category nor a feed
	ErrUnsupportedKind = errors.New("unsupported node kind")
)

// DefaultTitle is the title of the root when none is configured
const DefaultTitle = "Feeds"

// Options configures a ServiceRoot
type Options struct {
	Title string
	// MaxAssemblyPasses bounds the category assembly scan, 0 means one pass per category
	MaxAssemblyPasses int
	Logger            *logger.Logger
	Publisher         events.Publisher
}

// ServiceRoot owns the feed hierarchy of the standard feed service and keeps
// it in sync with the repository
type ServiceRoot struct {
	mu         sync.RWMutex
	root       *models.Node
	recycleBin *models.Node
	index      *index

	repo      repository.Repository
	log       *logger.Logger
	publisher events.Publisher
	title     string
	maxPasses int
}

// LoadReport summarizes a load from storage
type LoadReport struct {
	Categories           int
	Feeds                int
	SkippedFeeds         int
	UnresolvedCategories []CategoryAssignment
	LooseFeeds           []FeedAssignment
}

// NewServiceRoot creates a service root with an empty hierarchy
func NewServiceRoot(repo repository.Repository, opts Options) *ServiceRoot {
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Publisher == nil {
		opts.Publisher = events.NoopPublisher{}
	}

	s := &ServiceRoot{
		repo:      repo,
		log:       opts.Logger.WithComponent("service_root"),
		publisher: opts.Publisher,
		title:     opts.Title,
		maxPasses: opts.MaxAssemblyPasses,
	}
	s.reset()
	return s
}

func (s *ServiceRoot) reset() {
	s.root = models.NewRoot(s.title)
	s.recycleBin = models.NewRecycleBin()
	s.index = newIndex()
}

// LoadFromDatabase rebuilds the hierarchy from the category and feed rows of
// the repository. Query failures are returned wrapped in ErrLoadFailed.
func (s *ServiceRoot) LoadFromDatabase(ctx context.Context) (*LoadReport, error) {
	categoryRows, err := s.repo.GetAllCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: query for obtaining categories: %w", ErrLoadFailed, err)
	}

	feedRows, err := s.repo.GetAllFeeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: query for obtaining feeds: %w", ErrLoadFailed, err)
	}

	categories := make([]CategoryAssignment, 0, len(categoryRows))
	for _, row := range categoryRows {
		category := models.NewCategory(row.ID, row.Title)
		category.Description = row.Description
		categories = append(categories, CategoryAssignment{ParentID: row.ParentID, Category: category})
	}

	report := &LoadReport{}
	feeds := make([]FeedAssignment, 0, len(feedRows))
	for _, row := range feedRows {
		feedType := models.FeedType(row.Type)
		if !feedType.Known() {
			report.SkippedFeeds++
			continue
		}
		feed := models.NewFeed(row.ID, row.Title, row.URL, feedType)
		feed.Description = row.Description
		feed.Encoding = row.Encoding
		feeds = append(feeds, FeedAssignment{ParentID: row.ParentID, Feed: feed})
	}

	s.mu.Lock()
	s.reset()
	report.UnresolvedCategories = s.assembleCategories(categories)
	report.LooseFeeds = s.assembleFeeds(feeds)
	// The recycle bin is always the last child of the root.
	_ = s.root.AppendChild(s.recycleBin)
	s.index.rebuild(s.root)
	report.Categories = len(s.index.categories)
	report.Feeds = len(s.index.feeds)
	s.mu.Unlock()

	s.log.Zerolog().Info().
		Int("categories", report.Categories).
		Int("feeds", report.Feeds).
		Int("skipped_feeds", report.SkippedFeeds).
		Int("unresolved_categories", len(report.UnresolvedCategories)).
		Int("loose_feeds", len(report.LooseFeeds)).
		Msg("feed hierarchy loaded")

	return report, nil
}

// Start seeds an empty hierarchy from the OPML file at initialFeedsPath.
// It reports whether anything was imported. Unreadable files are logged and ignored.
func (s *ServiceRoot) Start(ctx context.Context, initialFeedsPath string) bool {
	if initialFeedsPath == "" {
		return false
	}

	s.mu.RLock()
	empty := len(s.index.categories) == 0 && len(s.index.feeds) == 0
	s.mu.RUnlock()
	if !empty {
		return false
	}

	file, err := os.Open(initialFeedsPath)
	if err != nil {
		s.log.Error(err, "error when loading initial feeds")
		return false
	}
	defer file.Close()

	model, err := opml.Parse(file)
	if err != nil {
		s.log.Error(err, "error when loading initial feeds")
		return false
	}
	model.CheckAll()

	ok, message := s.MergeImportModel(ctx, model)
	s.log.Zerolog().Info().Bool("success", ok).Str("path", initialFeedsPath).Msg(message)
	return true
}

// Title returns the title of the root node
func (s *ServiceRoot) Title() string {
	return s.title
}

// RecycleBin returns the recycle bin node
func (s *ServiceRoot) RecycleBin() *models.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recycleBin
}

// Snapshot returns a detached copy of the hierarchy
func (s *ServiceRoot) Snapshot() *models.NodeView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root.View()
}

// Counts returns the number of categories and feeds in the hierarchy
func (s *ServiceRoot) Counts() (categories, feeds int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index.categories), len(s.index.feeds)
}

// AllCategories returns every category of the hierarchy keyed by id
func (s *ServiceRoot) AllCategories() map[int64]*models.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CategoriesForItem(s.root)
}

// ExportOPML writes the hierarchy as an OPML 2.0 document
func (s *ServiceRoot) ExportOPML(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return opml.Export(w, s.root, s.title)
}

// AddCategory creates a category below parentID, or at the top level for models.NoParentID
func (s *ServiceRoot) AddCategory(ctx context.Context, parentID int64, title, description string) (int64, error) {
	s.mu.Lock()
	parent, err := s.parentFor(parentID)
	if err != nil {
		s.mu.Unlock()
		return 0, err
	}
	category := models.NewCategory(0, title)
	category.Description = description
	err = s.addItem(ctx, category, parent)
	s.mu.Unlock()

	if err != nil {
		return 0, err
	}
	s.publish(ctx, events.NewTreeChanged(events.OperationAddCategory, true, category.Title))
	return category.ID, nil
}

// AddFeed creates a feed below parentID, or at the top level for models.NoParentID
func (s *ServiceRoot) AddFeed(ctx context.Context, parentID int64, feed *models.Node) (int64, error) {
	if feed == nil || feed.Kind != models.KindFeed || !feed.Type.Known() {
		return 0, repository.ErrInvalidInput
	}

	s.mu.Lock()
	parent, err := s.parentFor(parentID)
	if err != nil {
		s.mu.Unlock()
		return 0, err
	}
	err = s.addItem(ctx, feed, parent)
	s.mu.Unlock()

	if err != nil {
		return 0, err
	}
	s.publish(ctx, events.NewTreeChanged(events.OperationAddFeed, true, feed.Title))
	return feed.ID, nil
}

// parentFor resolves a storage parent id to an attached node. Callers hold s.mu.
func (s *ServiceRoot) parentFor(parentID int64) (*models.Node, error) {
	if parentID == models.NoParentID {
		return s.root, nil
	}
	parent, ok := s.index.categories[parentID]
	if !ok {
		return nil, repository.ErrNodeNotFound
	}
	return parent, nil
}

// addItem persists node and attaches it below parent. Callers hold s.mu.
//
// Attaching fails when parent cannot hold children, when parent already has
// a child of the same kind and title, or when the repository rejects the row.
func (s *ServiceRoot) addItem(ctx context.Context, node, parent *models.Node) error {
	if !parent.CanHoldChildren() {
		return models.ErrCannotHoldChildren
	}
	if parent.ChildByTitle(node.Kind, node.Title) != nil {
		return repository.ErrDuplicateTitle
	}

	parentID := models.NoParentID
	if parent.Kind == models.KindCategory {
		parentID = parent.ID
	}

	var (
		id  int64
		err error
	)
	switch node.Kind {
	case models.KindCategory:
		id, err = s.repo.CreateCategory(ctx, parentID, node.Title, node.Description)
	case models.KindFeed:
		id, err = s.repo.CreateFeed(ctx, &repository.FeedRow{
			ParentID:    parentID,
			Title:       node.Title,
			Description: node.Description,
			URL:         node.URL,
			Encoding:    node.Encoding,
			Type:        int(node.Type),
		})
	default:
		return ErrUnsupportedKind
	}
	if err != nil {
		return err
	}

	node.ID = id
	if err := parent.AppendChild(node); err != nil {
		return err
	}
	if parent == s.root {
		s.keepRecycleBinLast()
	}
	s.index.register(node)
	return nil
}

func (s *ServiceRoot) keepRecycleBinLast() {
	if s.root.RemoveChild(s.recycleBin) {
		_ = s.root.AppendChild(s.recycleBin)
	}
}

func (s *ServiceRoot) publish(ctx context.Context, event events.TreeChanged) {
	event.Categories, event.Feeds = s.Counts()
	if err := s.publisher.PublishTreeChanged(ctx, event); err != nil {
		s.log.Error(err, "error publishing tree change")
	}
}

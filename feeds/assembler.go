package feeds

import (
	"github.com/ammiranda/feed_service/logger"
	"github.com/ammiranda/feed_service/models"
)

// CategoryAssignment pairs a loaded category with the id of its parent
type CategoryAssignment struct {
	ParentID int64
	Category *models.Node
}

// FeedAssignment pairs a loaded feed with the id of its parent category
type FeedAssignment struct {
	ParentID int64
	Feed     *models.Node
}

func (s *ServiceRoot) assembleCategories(assignments []CategoryAssignment) []CategoryAssignment {
	return AssembleCategories(s.root, assignments, s.maxPasses, s.log)
}

func (s *ServiceRoot) assembleFeeds(assignments []FeedAssignment) []FeedAssignment {
	return AssembleFeeds(s.root, assignments, s.log)
}

// AssembleCategories attaches categories below root in any input order.
//
// Each pass attaches every pending category whose parent is already attached.
// Assembly stops when nothing is pending, when a pass attaches nothing or
// after maxPasses passes. A maxPasses of 0 allows one pass per assignment.
// Categories that could not be attached are returned.
func AssembleCategories(root *models.Node, assignments []CategoryAssignment, maxPasses int, log *logger.Logger) []CategoryAssignment {
	if log == nil {
		log = logger.Nop()
	}
	if maxPasses <= 0 {
		maxPasses = len(assignments)
	}

	attached := map[int64]*models.Node{models.NoParentID: root}
	pending := append([]CategoryAssignment(nil), assignments...)

	for pass := 0; pass < maxPasses && len(pending) > 0; pass++ {
		remaining := pending[:0]
		for _, assignment := range pending {
			parent, ok := attached[assignment.ParentID]
			if !ok {
				remaining = append(remaining, assignment)
				continue
			}
			if _, dup := attached[assignment.Category.ID]; dup {
				log.Zerolog().Warn().
					Int64("category_id", assignment.Category.ID).
					Msg("category id is already attached, skipping it")
				continue
			}
			if err := parent.AppendChild(assignment.Category); err != nil {
				log.Zerolog().Warn().Err(err).
					Int64("category_id", assignment.Category.ID).
					Msg("category could not be attached, skipping it")
				continue
			}
			attached[assignment.Category.ID] = assignment.Category
		}

		progressed := len(remaining) < len(pending)
		pending = remaining
		if !progressed {
			break
		}
	}

	for _, assignment := range pending {
		log.Zerolog().Warn().
			Int64("category_id", assignment.Category.ID).
			Int64("parent_id", assignment.ParentID).
			Str("title", assignment.Category.Title).
			Msg("category parent never resolved, dropping it")
	}
	return pending
}

// AssembleFeeds attaches feeds below root or their parent category in a
// single pass. Feeds whose parent category is unknown are returned.
func AssembleFeeds(root *models.Node, assignments []FeedAssignment, log *logger.Logger) []FeedAssignment {
	if log == nil {
		log = logger.Nop()
	}

	categories := CategoriesForItem(root)
	var loose []FeedAssignment

	for _, assignment := range assignments {
		parent := root
		if assignment.ParentID != models.NoParentID {
			category, ok := categories[assignment.ParentID]
			if !ok {
				log.Zerolog().Warn().
					Int64("feed_id", assignment.Feed.ID).
					Int64("parent_id", assignment.ParentID).
					Str("title", assignment.Feed.Title).
					Msg("feed is loose, skipping it")
				loose = append(loose, assignment)
				continue
			}
			parent = category
		}

		if err := parent.AppendChild(assignment.Feed); err != nil {
			log.Zerolog().Warn().Err(err).
				Int64("feed_id", assignment.Feed.ID).
				Msg("feed could not be attached, skipping it")
			loose = append(loose, assignment)
		}
	}
	return loose
}

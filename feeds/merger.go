package feeds

import (
	"context"
	"io"

	"github.com/ammiranda/feed_service/events"
	"github.com/ammiranda/feed_service/models"
	"github.com/ammiranda/feed_service/opml"
)

const (
	MergeMessageComplete = "Import was completely successful."
	MergeMessagePartial  = "Import successful, but some feeds/categories were not imported due to error."
)

// ImportSource is a tree of import candidates with a selection flag per node
type ImportSource interface {
	Root() *models.Node
	IsChecked(node *models.Node) bool
}

type mergeFrame struct {
	target *models.Node
	source *models.Node
}

// MergeImportModel merges the checked nodes of source into the hierarchy and
// persists them. Unchecked nodes are skipped together with their descendants.
// A category whose title already exists at the destination continues into the
// existing category. The result is false when at least one node could not be
// attached.
func (s *ServiceRoot) MergeImportModel(ctx context.Context, source ImportSource) (bool, string) {
	conflicts := 0

	s.mu.Lock()
	stack := []mergeFrame{{target: s.root, source: source.Root()}}
	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, child := range frame.source.Children {
			if !source.IsChecked(child) {
				continue
			}

			switch child.Kind {
			case models.KindCategory:
				clone := child.Clone()
				err := s.addItem(ctx, clone, frame.target)
				if err == nil {
					stack = append(stack, mergeFrame{target: clone, source: child})
					continue
				}

				existing := frame.target.ChildByTitle(models.KindCategory, child.Title)
				if existing != nil {
					stack = append(stack, mergeFrame{target: existing, source: child})
					continue
				}
				conflicts++
				s.log.Zerolog().Warn().Err(err).Str("title", child.Title).Msg("category was not imported")

			case models.KindFeed:
				if err := s.addItem(ctx, child.Clone(), frame.target); err != nil {
					conflicts++
					s.log.Zerolog().Warn().Err(err).Str("title", child.Title).Str("url", child.URL).Msg("feed was not imported")
				}
			}
		}
	}
	s.mu.Unlock()

	ok := conflicts == 0
	message := MergeMessageComplete
	if !ok {
		message = MergeMessagePartial
	}
	s.publish(ctx, events.NewTreeChanged(events.OperationImport, ok, message))
	return ok, message
}

// ImportOPML parses an OPML document, selects every outline except those
// addressed by the unchecked title paths and merges the selection.
// Only an unreadable document is reported as an error.
func (s *ServiceRoot) ImportOPML(ctx context.Context, r io.Reader, unchecked []string) (bool, string, error) {
	model, err := opml.Parse(r)
	if err != nil {
		return false, "", err
	}

	model.CheckAll()
	for _, path := range unchecked {
		if !model.UncheckPath(path) {
			s.log.Zerolog().Warn().Str("path", path).Msg("unchecked path not found in import")
		}
	}

	ok, message := s.MergeImportModel(ctx, model)
	return ok, message, nil
}

package opml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ammiranda/feed_service/models"
)

// ErrInvalidDocument is returned for input that is not an OPML document with a body
var ErrInvalidDocument = errors.New("invalid OPML document")

type document struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    head     `xml:"head"`
	Body    *body    `xml:"body"`
}

type head struct {
	Title       string `xml:"title,omitempty"`
	DateCreated string `xml:"dateCreated,omitempty"`
}

type body struct {
	Outlines []outline `xml:"outline"`
}

type outline struct {
	Text        string    `xml:"text,attr"`
	Title       string    `xml:"title,attr,omitempty"`
	Description string    `xml:"description,attr,omitempty"`
	Type        string    `xml:"type,attr,omitempty"`
	Version     string    `xml:"version,attr,omitempty"`
	XMLURL      string    `xml:"xmlUrl,attr,omitempty"`
	HTMLURL     string    `xml:"htmlUrl,attr,omitempty"`
	Encoding    string    `xml:"encoding,attr,omitempty"`
	Outlines    []outline `xml:"outline"`
}

// Parse reads an OPML 2.0 document into an unchecked import model.
// Outlines carrying an xmlUrl become feeds, every other outline a category.
func Parse(r io.Reader) (*Model, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.Body == nil {
		return nil, fmt.Errorf("%w: missing body element", ErrInvalidDocument)
	}

	root := models.NewRoot(doc.Head.Title)
	appendOutlines(root, doc.Body.Outlines)

	model := NewModel(root)
	model.Title = doc.Head.Title
	return model, nil
}

func appendOutlines(parent *models.Node, outlines []outline) {
	for _, o := range outlines {
		var node *models.Node
		if o.XMLURL != "" {
			node = models.NewFeed(0, titleOf(o, o.XMLURL), o.XMLURL, feedTypeFromVersion(o.Version))
			node.Encoding = o.Encoding
		} else {
			node = models.NewCategory(0, titleOf(o, "Untitled"))
		}
		node.Description = o.Description

		// Feed outlines never hold children, nested outlines below them are dropped.
		if err := parent.AppendChild(node); err != nil {
			continue
		}
		if node.Kind == models.KindCategory {
			appendOutlines(node, o.Outlines)
		}
	}
}

func titleOf(o outline, fallback string) string {
	if t := strings.TrimSpace(o.Text); t != "" {
		return t
	}
	if t := strings.TrimSpace(o.Title); t != "" {
		return t
	}
	return fallback
}

func feedTypeFromVersion(version string) models.FeedType {
	switch strings.ToUpper(strings.TrimSpace(version)) {
	case "ATOM", "ATOM10":
		return models.FeedTypeAtom10
	case "RDF", "RSS1":
		return models.FeedTypeRdf
	case "RSS0X", "RSS09", "RSS091":
		return models.FeedTypeRss0X
	default:
		return models.FeedTypeRss2X
	}
}

// Export writes the categories and feeds below root as an OPML 2.0 document.
// The recycle bin is not exported.
func Export(w io.Writer, root *models.Node, title string) error {
	doc := document{
		Version: "2.0",
		Head: head{
			Title:       title,
			DateCreated: time.Now().UTC().Format(time.RFC1123Z),
		},
		Body: &body{Outlines: outlinesOf(root)},
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("error encoding OPML: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func outlinesOf(parent *models.Node) []outline {
	var result []outline
	for _, child := range parent.Children {
		switch child.Kind {
		case models.KindCategory:
			result = append(result, outline{
				Text:        child.Title,
				Title:       child.Title,
				Description: child.Description,
				Outlines:    outlinesOf(child),
			})
		case models.KindFeed:
			result = append(result, outline{
				Text:        child.Title,
				Title:       child.Title,
				Description: child.Description,
				Type:        "rss",
				Version:     child.Type.String(),
				XMLURL:      child.URL,
				Encoding:    child.Encoding,
			})
		}
	}
	return result
}

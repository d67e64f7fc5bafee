package models

import (
	"github.com/go-playground/validator/v10"
)

// CreateCategoryRequest represents the request body for creating a category
type CreateCategoryRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=1000"`
	ParentID    int64  `json:"parentId" validate:"omitempty,gt=0"`
}

// CreateFeedRequest represents the request body for creating a feed
type CreateFeedRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=1000"`
	URL         string `json:"url" validate:"required,url"`
	Encoding    string `json:"encoding" validate:"omitempty,max=40"`
	Type        int    `json:"type" validate:"min=0,max=3"`
	ParentID    int64  `json:"parentId" validate:"omitempty,gt=0"`
}

// ImportRequest represents the request body for merging an OPML document.
// Unchecked holds slash separated title paths excluded from the merge.
type ImportRequest struct {
	OPML      string   `json:"opml" validate:"required"`
	Unchecked []string `json:"unchecked" validate:"omitempty,dive,required"`
}

// ImportResponse is returned after a merge
type ImportResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Validate validates the create category request
func (r *CreateCategoryRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the create feed request
func (r *CreateFeedRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the import request
func (r *ImportRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// ParentOrRoot maps an omitted parent id to NoParentID
func ParentOrRoot(parentID int64) int64 {
	if parentID <= 0 {
		return NoParentID
	}
	return parentID
}

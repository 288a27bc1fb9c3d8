package post

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/user"
)

const PerPage = 5

type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Access    string    `json:"access"` // target class section
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Paginated is one reverse-chronological page of posts.
type Paginated struct {
	Results []Post `json:"results"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	Total   int    `json:"total"`
	Pages   int    `json:"pages"`
}

// NewPost contains information needed to publish a new Post.
type NewPost struct {
	Title       string `json:"title" validate:"required"`
	Content     string `json:"content" validate:"required"`
	TargetClass string `json:"target_class" validate:"required"`
}

func (np *NewPost) Validate(validate *validator.Validate, codes user.CodeRegistry) error {
	np.Title = core.CleanString(np.Title)
	np.Content = core.CleanString(np.Content)
	np.TargetClass = strings.ToUpper(core.CleanString(np.TargetClass))

	if err := validate.Struct(np); err != nil {
		return err
	}
	if !codes.IsClass(np.TargetClass) {
		return core.NewValidationError(nil, core.FieldError{Field: "target_class", Error: "unknown class"})
	}
	return nil
}

// UpdatePost defines the fields a post's author may change.
type UpdatePost struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

func (up *UpdatePost) Validate(validate *validator.Validate) error {
	up.Title = core.CleanString(up.Title)
	up.Content = core.CleanString(up.Content)
	return validate.Struct(up)
}

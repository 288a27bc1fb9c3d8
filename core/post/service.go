package post

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/user"
)

var (
	// errors
	ErrNotFound  = errors.New("post not found")
	ErrNotAuthor = errors.New("only the author may modify a post")
)

type (
	// QueryFilter narrows a post listing; zero fields are ignored.
	QueryFilter struct {
		Access   string
		AuthorID string
	}

	Repository interface {
		CreatePost(ctx context.Context, p Post) (Post, error)
		GetPostByID(ctx context.Context, id string) (Post, error)
		// FilterPosts returns the requested 1-based page of matching posts,
		// newest first, along with the total match count.
		FilterPosts(ctx context.Context, filter QueryFilter, page, perPage int) ([]Post, int, error)
		UpdatePost(ctx context.Context, p Post) (Post, error)
		DeletePost(ctx context.Context, id string) error
	}

	Service interface {
		// Feed returns the viewer's home feed: students only see posts
		// targeted at their own class section, teachers see everything.
		Feed(ctx context.Context, viewer user.User, page int) (Paginated, error)
		Create(ctx context.Context, author user.User, np NewPost) (Post, error)
		Get(ctx context.Context, id string) (Post, error)
		Update(ctx context.Context, actor user.User, id string, up UpdatePost) (Post, error)
		Delete(ctx context.Context, actor user.User, id string) error
		ByAuthor(ctx context.Context, author user.User, page int) (Paginated, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Feed(ctx context.Context, viewer user.User, page int) (Paginated, error) {
	var filter QueryFilter
	if !viewer.IsTeacher() {
		filter.Access = viewer.Access
	}
	return svc.paginate(ctx, filter, page)
}

func (svc *service) Create(ctx context.Context, author user.User, np NewPost) (Post, error) {
	p := Post{
		Title:     np.Title,
		Content:   np.Content,
		Access:    np.TargetClass,
		AuthorID:  author.ID,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreatePost(ctx, p)
}

func (svc *service) Get(ctx context.Context, id string) (Post, error) {
	return svc.repo.GetPostByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, actor user.User, id string, up UpdatePost) (Post, error) {
	p, err := svc.repo.GetPostByID(ctx, id)
	if err != nil {
		return Post{}, err
	}
	if p.AuthorID != actor.ID {
		return Post{}, ErrNotAuthor
	}
	p.Title = up.Title
	p.Content = up.Content
	return svc.repo.UpdatePost(ctx, p)
}

func (svc *service) Delete(ctx context.Context, actor user.User, id string) error {
	p, err := svc.repo.GetPostByID(ctx, id)
	if err != nil {
		return err
	}
	if p.AuthorID != actor.ID {
		return ErrNotAuthor
	}
	return svc.repo.DeletePost(ctx, id)
}

func (svc *service) ByAuthor(ctx context.Context, author user.User, page int) (Paginated, error) {
	return svc.paginate(ctx, QueryFilter{AuthorID: author.ID}, page)
}

func (svc *service) paginate(ctx context.Context, filter QueryFilter, page int) (Paginated, error) {
	if page < 1 {
		page = 1
	}
	posts, total, err := svc.repo.FilterPosts(ctx, filter, page, PerPage)
	if err != nil {
		return Paginated{}, errors.Wrap(err, "filtering posts")
	}
	if posts == nil {
		posts = []Post{}
	}
	pages := (total + PerPage - 1) / PerPage
	if pages < 1 {
		pages = 1
	}
	return Paginated{
		Results: posts,
		Page:    page,
		PerPage: PerPage,
		Total:   total,
		Pages:   pages,
	}, nil
}

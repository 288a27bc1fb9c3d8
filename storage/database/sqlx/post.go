package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/post"
)

type postRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	Access    string    `db:"access"`
	AuthorID  string    `db:"author_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (r postRow) unpack() post.Post {
	return post.Post(r)
}

type postRepository struct {
	db *sqlx.DB
}

var _ post.Repository = (*postRepository)(nil) // interface compliance check

func NewPostRepository(db *sqlx.DB) *postRepository {
	return &postRepository{db: db}
}

func (repo postRepository) CreatePost(ctx context.Context, p post.Post) (post.Post, error) {
	p.ID = uuid.New().String()
	query := `
INSERT INTO post (id, title, content, access, author_id, created_at)
VALUES (:id, :title, :content, :access, :author_id, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, postRow(p)); err != nil {
		return post.Post{}, errors.Wrap(err, "inserting post")
	}
	return p, nil
}

func (repo postRepository) GetPostByID(ctx context.Context, id string) (post.Post, error) {
	var row postRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM post WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return post.Post{}, post.ErrNotFound
		}
		return post.Post{}, errors.Wrap(err, "getting post by id")
	}
	return row.unpack(), nil
}

func (repo postRepository) FilterPosts(ctx context.Context, filter post.QueryFilter, page, perPage int) ([]post.Post, int, error) {
	where := make([]string, 0, 2)
	args := make([]interface{}, 0, 4)
	if filter.Access != "" {
		args = append(args, filter.Access)
		where = append(where, fmt.Sprintf("access = $%d", len(args)))
	}
	if filter.AuthorID != "" {
		args = append(args, filter.AuthorID)
		where = append(where, fmt.Sprintf("author_id = $%d", len(args)))
	}
	var whereClause string
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := repo.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM post"+whereClause, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting posts")
	}

	args = append(args, perPage, (page-1)*perPage)
	query := fmt.Sprintf(
		"SELECT * FROM post%s%s LIMIT $%d OFFSET $%d",
		whereClause, core.OrderBy(core.DBOrdering{Field: "created_at"}), len(args)-1, len(args),
	)
	var rows []postRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "filtering posts")
	}

	posts := make([]post.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.unpack())
	}
	return posts, total, nil
}

func (repo postRepository) UpdatePost(ctx context.Context, p post.Post) (post.Post, error) {
	query := `UPDATE post SET title = :title, content = :content WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, postRow(p))
	if err != nil {
		return post.Post{}, errors.Wrap(err, "updating post")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return post.Post{}, post.ErrNotFound
	}
	return repo.GetPostByID(ctx, p.ID)
}

func (repo postRepository) DeletePost(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM post WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting post")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return post.ErrNotFound
	}
	return nil
}

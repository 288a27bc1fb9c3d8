package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/darasahq/darasa/core/post"
)

type postRepository struct {
	db *postTable
}

var _ post.Repository = (*postRepository)(nil) // interface compliance check

func NewPostRepository(db *DB) post.Repository {
	return &postRepository{db: db.post}
}

func (repo *postRepository) CreatePost(_ context.Context, p post.Post) (post.Post, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	p.ID = uuid.New().String()
	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *postRepository) GetPostByID(_ context.Context, id string) (post.Post, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.table[id]; ok {
		return *p, nil
	}
	return post.Post{}, post.ErrNotFound
}

func (repo *postRepository) FilterPosts(_ context.Context, filter post.QueryFilter, page, perPage int) ([]post.Post, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var matches []post.Post
	for _, p := range repo.db.table {
		if filter.Access != "" && p.Access != filter.Access {
			continue
		}
		if filter.AuthorID != "" && p.AuthorID != filter.AuthorID {
			continue
		}
		matches = append(matches, *p)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })

	total := len(matches)
	lo := (page - 1) * perPage
	if lo > total {
		lo = total
	}
	hi := lo + perPage
	if hi > total {
		hi = total
	}
	return matches[lo:hi], total, nil
}

func (repo *postRepository) UpdatePost(_ context.Context, p post.Post) (post.Post, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[p.ID]
	if !ok {
		return post.Post{}, post.ErrNotFound
	}
	orig.Title = p.Title
	orig.Content = p.Content
	return *orig, nil
}

func (repo *postRepository) DeletePost(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return post.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

package post_test

import (
	"context"
	"testing"
	"time"

	"github.com/darasahq/darasa/core/post"
	"github.com/darasahq/darasa/core/user"
	dummydb "github.com/darasahq/darasa/storage/database/dummy"
)

func newTestService(t *testing.T) (post.Service, post.Repository) {
	t.Helper()
	repo := dummydb.NewPostRepository(dummydb.Open())
	return post.NewService(repo), repo
}

func seedPost(t *testing.T, repo post.Repository, authorID, title, access string, createdAt time.Time) post.Post {
	t.Helper()
	p, err := repo.CreatePost(context.Background(), post.Post{
		Title:     title,
		Content:   "content",
		Access:    access,
		AuthorID:  authorID,
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("CreatePost(): %v", err)
	}
	return p
}

func TestService_Feed(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	now := time.Now().UTC()
	c1old := seedPost(t, repo, "t1", "C1 old", "C1", now.Add(-time.Hour))
	c1new := seedPost(t, repo, "t1", "C1 new", "C1", now)
	c2 := seedPost(t, repo, "t1", "C2 only", "C2", now.Add(-time.Minute))

	studentC1 := user.User{ID: "s1", Role: user.RoleStudent, Access: "C1"}
	teacher := user.User{ID: "t1", Role: user.RoleTeacher, Access: "T1"}

	tests := []struct {
		name   string
		viewer user.User
		want   []post.Post
	}{
		{name: "student sees own section only, newest first", viewer: studentC1, want: []post.Post{c1new, c1old}},
		{name: "teacher sees all sections", viewer: teacher, want: []post.Post{c1new, c2, c1old}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.Feed(ctx, tt.viewer, 1)
			if err != nil {
				t.Fatalf("Feed(): %v", err)
			}
			if len(page.Results) != len(tt.want) {
				t.Fatalf("got %d posts; want %d", len(page.Results), len(tt.want))
			}
			for i, p := range page.Results {
				if p.ID != tt.want[i].ID {
					t.Errorf("results[%d] = %q; want %q", i, p.Title, tt.want[i].Title)
				}
			}
			if page.Total != len(tt.want) {
				t.Errorf("Total = %d; want %d", page.Total, len(tt.want))
			}
		})
	}
}

func TestService_FeedPagination(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for i := 0; i < post.PerPage+2; i++ {
		seedPost(t, repo, "t1", "post", "C1", now.Add(time.Duration(i)*time.Second))
	}
	teacher := user.User{ID: "t1", Role: user.RoleTeacher}

	tests := []struct {
		name                 string
		page                 int
		wantLen, wantPage    int
		wantTotal, wantPages int
	}{
		{name: "first page is full", page: 1, wantLen: post.PerPage, wantPage: 1, wantTotal: post.PerPage + 2, wantPages: 2},
		{name: "second page holds the remainder", page: 2, wantLen: 2, wantPage: 2, wantTotal: post.PerPage + 2, wantPages: 2},
		{name: "page past the end is empty", page: 5, wantLen: 0, wantPage: 5, wantTotal: post.PerPage + 2, wantPages: 2},
		{name: "page < 1 falls back to first", page: 0, wantLen: post.PerPage, wantPage: 1, wantTotal: post.PerPage + 2, wantPages: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.Feed(ctx, teacher, tt.page)
			if err != nil {
				t.Fatalf("Feed(): %v", err)
			}
			if len(page.Results) != tt.wantLen {
				t.Errorf("len(Results) = %d; want %d", len(page.Results), tt.wantLen)
			}
			if page.Page != tt.wantPage {
				t.Errorf("Page = %d; want %d", page.Page, tt.wantPage)
			}
			if page.Total != tt.wantTotal {
				t.Errorf("Total = %d; want %d", page.Total, tt.wantTotal)
			}
			if page.Pages != tt.wantPages {
				t.Errorf("Pages = %d; want %d", page.Pages, tt.wantPages)
			}
		})
	}
}

func TestService_AuthorOnlyMutation(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	author := user.User{ID: "a1", Role: user.RoleStudent, Access: "C1"}
	intruder := user.User{ID: "i1", Role: user.RoleStudent, Access: "C1"}
	p := seedPost(t, repo, author.ID, "Mine", "C1", time.Now().UTC())

	if _, err := svc.Update(ctx, intruder, p.ID, post.UpdatePost{Title: "Stolen", Content: "ha"}); err != post.ErrNotAuthor {
		t.Errorf("Update() err = %v; want ErrNotAuthor", err)
	}
	if err := svc.Delete(ctx, intruder, p.ID); err != post.ErrNotAuthor {
		t.Errorf("Delete() err = %v; want ErrNotAuthor", err)
	}

	// the row must be untouched
	got, err := repo.GetPostByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPostByID(): %v", err)
	}
	if got.Title != p.Title || got.Content != p.Content {
		t.Errorf("post modified: %+v", got)
	}

	// not-found wins over forbidden
	if _, err := svc.Update(ctx, intruder, "nope", post.UpdatePost{Title: "x", Content: "y"}); err != post.ErrNotFound {
		t.Errorf("Update() err = %v; want ErrNotFound", err)
	}

	if _, err := svc.Update(ctx, author, p.ID, post.UpdatePost{Title: "Mine v2", Content: "edited"}); err != nil {
		t.Errorf("Update() by author: %v", err)
	}
	if err := svc.Delete(ctx, author, p.ID); err != nil {
		t.Errorf("Delete() by author: %v", err)
	}
}

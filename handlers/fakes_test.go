package handlers

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"folio/api/apperr"
	"folio/api/models"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

// fakePosts is an in-memory PostStore.
type fakePosts struct {
	mu    sync.Mutex
	posts map[string]*models.BlogPost
	err   error
}

func newFakePosts() *fakePosts {
	return &fakePosts{posts: map[string]*models.BlogPost{}}
}

func (f *fakePosts) ListPublished(_ context.Context, q models.ListPostsQuery) (*models.PostList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	posts := []models.BlogPost{}
	for _, p := range f.posts {
		if p.Published {
			posts = append(posts, *p)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID > posts[j].ID })
	total := len(posts)
	if len(posts) > q.Limit {
		posts = posts[:q.Limit]
	}
	return &models.PostList{
		Posts:      posts,
		Pagination: models.Pagination{Page: q.Page, Limit: q.Limit, Total: total, TotalPages: (total + q.Limit - 1) / q.Limit},
	}, nil
}

func (f *fakePosts) Create(_ context.Context, authorID *int64, in models.PostInput) (*models.BlogPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[in.Slug]; ok {
		return nil, apperr.Conflict("A post with slug %q already exists", in.Slug)
	}
	p := &models.BlogPost{
		ID:        int64(len(f.posts) + 1),
		Title:     in.Title,
		Slug:      in.Slug,
		Content:   in.Content,
		Published: in.Published,
		AuthorID:  authorID,
		Tags:      []models.Tag{},
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	f.posts[in.Slug] = p
	cp := *p
	return &cp, nil
}

func (f *fakePosts) GetBySlug(_ context.Context, slug string) (*models.BlogPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[slug]
	if !ok {
		return nil, apperr.NotFound("Blog post")
	}
	cp := *p
	return &cp, nil
}

func (f *fakePosts) IncrementViews(_ context.Context, slug string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[slug]
	if !ok {
		return 0, apperr.NotFound("Blog post")
	}
	p.Views++
	return p.Views, nil
}

func (f *fakePosts) Update(_ context.Context, slug string, patch models.PostPatch) (*models.BlogPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[slug]
	if !ok {
		return nil, apperr.NotFound("Blog post")
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Published != nil {
		p.Published = *patch.Published
	}
	cp := *p
	return &cp, nil
}

func (f *fakePosts) Delete(_ context.Context, slug string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[slug]; !ok {
		return apperr.NotFound("Blog post")
	}
	delete(f.posts, slug)
	return nil
}

// fakeMessages is an in-memory MessageStore.
type fakeMessages struct {
	mu       sync.Mutex
	messages []models.ContactMessage
	err      error
}

func (f *fakeMessages) Create(_ context.Context, msg *models.ContactMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	msg.ID = int64(len(f.messages) + 1)
	msg.CreatedAt = testNow
	msg.UpdatedAt = testNow
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeMessages) List(_ context.Context, status string, limit int) ([]models.ContactMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []models.ContactMessage{}
	for i := len(f.messages) - 1; i >= 0 && len(out) < limit; i-- {
		if status == "" || f.messages[i].Status == status {
			out = append(out, f.messages[i])
		}
	}
	return out, nil
}

func (f *fakeMessages) UpdateStatus(_ context.Context, id int64, status string) (*models.ContactMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.messages {
		if f.messages[i].ID == id {
			f.messages[i].Status = status
			m := f.messages[i]
			return &m, nil
		}
	}
	return nil, apperr.NotFound("Message")
}

type fakeNotifier struct {
	calls int
	err   error
}

func (f *fakeNotifier) NotifyContact(context.Context, *models.ContactMessage) error {
	f.calls++
	return f.err
}

type fakeSummarizer struct {
	summary *models.AnalyticsSummary
	err     error
}

func (f fakeSummarizer) Summarize(context.Context, int) (*models.AnalyticsSummary, error) {
	return f.summary, f.err
}

type fakeUsers struct {
	users map[string]*models.User
}

func (f fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("User")
}

// brokenEvents is an EventWriter whose every insert fails.
type brokenEvents struct{ calls int }

func (b *brokenEvents) InsertEvent(context.Context, *models.TrackedEvent) error {
	b.calls++
	return errBoom
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

var errBoom = errors.New("boom")

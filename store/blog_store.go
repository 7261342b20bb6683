package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"folio/api/apperr"
	"folio/api/models"
	"folio/api/utils"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const postColumns = `
	p.id, p.title, p.slug, p.excerpt, p.content, p.cover_image, p.published, p.featured,
	p.meta_title, p.meta_description, p.views, p.published_at, p.author_id, u.name,
	p.created_at, p.updated_at`

// Listings leave the body out.
const postListColumns = `
	p.id, p.title, p.slug, p.excerpt, '' AS content, p.cover_image, p.published, p.featured,
	p.meta_title, p.meta_description, p.views, p.published_at, p.author_id, u.name,
	p.created_at, p.updated_at`

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

type BlogStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewBlogStore(db *sql.DB) *BlogStore {
	return &BlogStore{db: db, now: time.Now}
}

// ListPublished returns one page of published posts, newest first.
func (s *BlogStore) ListPublished(ctx context.Context, q models.ListPostsQuery) (*models.PostList, error) {
	q = q.WithDefaults()

	conds := []string{"p.published = TRUE"}
	var args []any
	if q.Featured {
		conds = append(conds, "p.featured = TRUE")
	}
	if q.Tag != "" {
		args = append(args, q.Tag)
		conds = append(conds, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM blog_post_tags pt JOIN tags t ON t.id = pt.tag_id
			WHERE pt.post_id = p.id AND t.slug = $%d)`, len(args)))
	}
	where := strings.Join(conds, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM blog_posts p WHERE "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count blog posts: %w", err)
	}

	pageArgs := append(append([]any{}, args...), q.Limit, (q.Page-1)*q.Limit)
	query := fmt.Sprintf(`
		SELECT %s
		FROM blog_posts p
		LEFT JOIN users u ON u.id = p.author_id
		WHERE %s
		ORDER BY p.published_at DESC NULLS LAST, p.id DESC
		LIMIT $%d OFFSET $%d
	`, postListColumns, where, len(args)+1, len(args)+2)

	rows, err := s.db.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to list blog posts: %w", err)
	}
	defer rows.Close()

	posts := []models.BlogPost{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blog post rows: %w", err)
	}

	if err := s.attachTags(ctx, s.db, posts); err != nil {
		return nil, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + q.Limit - 1) / q.Limit
	}
	return &models.PostList{
		Posts: posts,
		Pagination: models.Pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// Create inserts a post and upserts its tags by name in one transaction.
func (s *BlogStore) Create(ctx context.Context, authorID *int64, in models.PostInput) (*models.BlogPost, error) {
	var publishedAt *time.Time
	if in.Published {
		now := s.now()
		publishedAt = &now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	post := &models.BlogPost{
		Title:           in.Title,
		Slug:            in.Slug,
		Excerpt:         in.Excerpt,
		Content:         in.Content,
		CoverImage:      in.CoverImage,
		Published:       in.Published,
		Featured:        in.Featured,
		MetaTitle:       in.MetaTitle,
		MetaDescription: in.MetaDescription,
		PublishedAt:     publishedAt,
		AuthorID:        authorID,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO blog_posts (
			title, slug, excerpt, content, cover_image, published, featured,
			meta_title, meta_description, published_at, author_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, views, created_at, updated_at
	`, in.Title, in.Slug, in.Excerpt, in.Content, in.CoverImage, in.Published, in.Featured,
		in.MetaTitle, in.MetaDescription, publishedAt, authorID,
	).Scan(&post.ID, &post.Views, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("A blog post with slug %q already exists", in.Slug)
		}
		return nil, fmt.Errorf("failed to create blog post: %w", err)
	}

	post.Tags, err = s.setTags(ctx, tx, post.ID, in.Tags)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit blog post: %w", err)
	}
	return post, nil
}

func (s *BlogStore) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	return s.getBySlug(ctx, s.db, slug)
}

func (s *BlogStore) getBySlug(ctx context.Context, q queryer, slug string) (*models.BlogPost, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+postColumns+`
		FROM blog_posts p
		LEFT JOIN users u ON u.id = p.author_id
		WHERE p.slug = $1
	`, slug)

	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Blog post")
		}
		return nil, err
	}

	posts := []models.BlogPost{*post}
	if err := s.attachTags(ctx, q, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// IncrementViews bumps the view counter and returns the new value.
func (s *BlogStore) IncrementViews(ctx context.Context, slug string) (int64, error) {
	var views int64
	err := s.db.QueryRowContext(ctx, `
		UPDATE blog_posts SET views = views + 1 WHERE slug = $1 RETURNING views
	`, slug).Scan(&views)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperr.NotFound("Blog post")
		}
		return 0, fmt.Errorf("failed to increment views for %q: %w", slug, err)
	}
	return views, nil
}

// Update applies the non-nil fields of patch. Tags, when present, replace
// the existing set.
func (s *BlogStore) Update(ctx context.Context, slug string, patch models.PostPatch) (*models.BlogPost, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Slug != nil {
		set("slug", *patch.Slug)
	}
	if patch.Excerpt != nil {
		set("excerpt", *patch.Excerpt)
	}
	if patch.Content != nil {
		set("content", *patch.Content)
	}
	if patch.CoverImage != nil {
		set("cover_image", *patch.CoverImage)
	}
	if patch.Published != nil {
		set("published", *patch.Published)
		if *patch.Published {
			set("published_at", s.now())
		} else {
			set("published_at", nil)
		}
	}
	if patch.Featured != nil {
		set("featured", *patch.Featured)
	}
	if patch.MetaTitle != nil {
		set("meta_title", *patch.MetaTitle)
	}
	if patch.MetaDescription != nil {
		set("meta_description", *patch.MetaDescription)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, slug)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		postID  int64
		newSlug string
	)
	query := fmt.Sprintf("UPDATE blog_posts SET %s WHERE slug = $%d RETURNING id, slug", strings.Join(sets, ", "), len(args))
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&postID, &newSlug); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, apperr.NotFound("Blog post")
		case isUniqueViolation(err) && patch.Slug != nil:
			return nil, apperr.Conflict("A blog post with slug %q already exists", *patch.Slug)
		}
		return nil, fmt.Errorf("failed to update blog post %q: %w", slug, err)
	}

	if patch.Tags != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM blog_post_tags WHERE post_id = $1`, postID); err != nil {
			return nil, fmt.Errorf("failed to clear tags of post %d: %w", postID, err)
		}
		if _, err := s.setTags(ctx, tx, postID, patch.Tags); err != nil {
			return nil, err
		}
	}

	post, err := s.getBySlug(ctx, tx, newSlug)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit blog post update: %w", err)
	}
	return post, nil
}

func (s *BlogStore) Delete(ctx context.Context, slug string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("failed to delete blog post %q: %w", slug, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("Blog post")
	}
	return nil
}

// setTags upserts tags by name and links them to postID.
func (s *BlogStore) setTags(ctx context.Context, q queryer, postID int64, names []string) ([]models.Tag, error) {
	tags := []models.Tag{}
	seen := map[string]bool{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		var tag models.Tag
		err := q.QueryRowContext(ctx, `
			INSERT INTO tags (name, slug) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id, name, slug
		`, name, utils.TagSlug(name)).Scan(&tag.ID, &tag.Name, &tag.Slug)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert tag %q: %w", name, err)
		}

		if _, err := q.ExecContext(ctx, `
			INSERT INTO blog_post_tags (post_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING
		`, postID, tag.ID); err != nil {
			return nil, fmt.Errorf("failed to link tag %q to post %d: %w", name, postID, err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// attachTags loads the tags of every post in one query.
func (s *BlogStore) attachTags(ctx context.Context, q queryer, posts []models.BlogPost) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]int64, len(posts))
	index := make(map[int64]int, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
		index[posts[i].ID] = i
		posts[i].Tags = []models.Tag{}
	}

	rows, err := q.QueryContext(ctx, `
		SELECT pt.post_id, t.id, t.name, t.slug
		FROM blog_post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ANY($1)
		ORDER BY t.name ASC
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID int64
			tag    models.Tag
		)
		if err := rows.Scan(&postID, &tag.ID, &tag.Name, &tag.Slug); err != nil {
			return fmt.Errorf("failed to scan tag row: %w", err)
		}
		if i, ok := index[postID]; ok {
			posts[i].Tags = append(posts[i].Tags, tag)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating tag rows: %w", err)
	}
	return nil
}

func scanPost(row rowScanner) (*models.BlogPost, error) {
	var (
		p                                               models.BlogPost
		excerpt, cover, metaTitle, metaDesc, authorName sql.NullString
		publishedAt                                     sql.NullTime
		authorID                                        sql.NullInt64
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &excerpt, &p.Content, &cover, &p.Published, &p.Featured,
		&metaTitle, &metaDesc, &p.Views, &publishedAt, &authorID, &authorName,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan blog post: %w", err)
	}

	p.Excerpt = stringPtr(excerpt)
	p.CoverImage = stringPtr(cover)
	p.MetaTitle = stringPtr(metaTitle)
	p.MetaDescription = stringPtr(metaDesc)
	p.PublishedAt = timePtr(publishedAt)
	p.AuthorID = int64Ptr(authorID)
	if authorName.Valid {
		p.Author = &models.Author{Name: authorName.String}
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

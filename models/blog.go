package models

import "time"

type Tag struct {
	ID   int64  `json:"-"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Author struct {
	Name string `json:"name"`
}

type BlogPost struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Excerpt         *string    `json:"excerpt"`
	Content         string     `json:"content,omitempty"`
	CoverImage      *string    `json:"coverImage"`
	Published       bool       `json:"published"`
	Featured        bool       `json:"featured"`
	MetaTitle       *string    `json:"metaTitle,omitempty"`
	MetaDescription *string    `json:"metaDescription,omitempty"`
	Views           int64      `json:"views"`
	PublishedAt     *time.Time `json:"publishedAt"`
	AuthorID        *int64     `json:"-"`
	Author          *Author    `json:"author,omitempty"`
	Tags            []Tag      `json:"tags"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// PostInput is the body of POST /api/blog.
type PostInput struct {
	Title           string   `json:"title" binding:"required,min=5"`
	Slug            string   `json:"slug" binding:"required,slug"`
	Excerpt         *string  `json:"excerpt"`
	Content         string   `json:"content" binding:"required,min=50"`
	CoverImage      *string  `json:"coverImage" binding:"omitnil,url"`
	Published       bool     `json:"published"`
	Featured        bool     `json:"featured"`
	MetaTitle       *string  `json:"metaTitle"`
	MetaDescription *string  `json:"metaDescription"`
	Tags            []string `json:"tags" binding:"omitempty,dive,required"`
}

// PostPatch is the body of PUT /api/blog/:slug. Nil fields are left alone;
// a non-nil Tags replaces the post's tags wholesale.
type PostPatch struct {
	Title           *string  `json:"title" binding:"omitnil,min=5"`
	Slug            *string  `json:"slug" binding:"omitnil,slug"`
	Excerpt         *string  `json:"excerpt"`
	Content         *string  `json:"content" binding:"omitnil,min=50"`
	CoverImage      *string  `json:"coverImage" binding:"omitnil,url"`
	Published       *bool    `json:"published"`
	Featured        *bool    `json:"featured"`
	MetaTitle       *string  `json:"metaTitle"`
	MetaDescription *string  `json:"metaDescription"`
	Tags            []string `json:"tags" binding:"omitempty,dive,required"`
}

// ListPostsQuery holds the query string of GET /api/blog.
type ListPostsQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Tag      string `form:"tag"`
	Featured bool   `form:"featured"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type PostList struct {
	Posts      []BlogPost `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

const (
	DefaultPostsPage  = 1
	DefaultPostsLimit = 10
)

// WithDefaults fills in page and limit when they were not supplied.
func (q ListPostsQuery) WithDefaults() ListPostsQuery {
	if q.Page <= 0 {
		q.Page = DefaultPostsPage
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPostsLimit
	}
	return q
}

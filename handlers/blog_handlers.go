package handlers

import (
	"context"
	"net/http"

	"folio/api/middleware"
	"folio/api/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PostStore is the blog persistence used by BlogHandlers.
type PostStore interface {
	ListPublished(ctx context.Context, q models.ListPostsQuery) (*models.PostList, error)
	Create(ctx context.Context, authorID *int64, in models.PostInput) (*models.BlogPost, error)
	GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	IncrementViews(ctx context.Context, slug string) (int64, error)
	Update(ctx context.Context, slug string, patch models.PostPatch) (*models.BlogPost, error)
	Delete(ctx context.Context, slug string) error
}

// PageViewTracker records page views without failing the caller.
type PageViewTracker interface {
	TrackPageView(ctx context.Context, in models.PageViewRequest, client models.ClientInfo)
}

type BlogHandlers struct {
	Posts   PostStore
	Tracker PageViewTracker
	Log     logrus.FieldLogger
}

func NewBlogHandlers(posts PostStore, tracker PageViewTracker, log logrus.FieldLogger) *BlogHandlers {
	return &BlogHandlers{Posts: posts, Tracker: tracker, Log: log}
}

func (h *BlogHandlers) List(c *gin.Context) {
	var q models.ListPostsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindingError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
	defer cancel()

	list, err := h.Posts.ListPublished(ctx, q.WithDefaults())
	if err != nil {
		writeError(c, h.Log, err, "Failed to fetch blog posts")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *BlogHandlers) Create(c *gin.Context) {
	var in models.PostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeBindingError(c, err)
		return
	}

	var authorID *int64
	if id, ok := middleware.UserID(c); ok {
		authorID = &id
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), writeTimeout)
	defer cancel()

	post, err := h.Posts.Create(ctx, authorID, in)
	if err != nil {
		writeError(c, h.Log, err, "Failed to create blog post")
		return
	}

	h.Log.WithFields(logrus.Fields{"slug": post.Slug, "post_id": post.ID}).Info("blog post created")
	c.JSON(http.StatusCreated, models.PostResponse{Success: true, Post: post})
}

// Get returns a post and counts the view. Unknown slugs get a 404 and
// nothing is recorded.
func (h *BlogHandlers) Get(c *gin.Context) {
	slug := c.Param("slug")

	ctx, cancel := context.WithTimeout(c.Request.Context(), writeTimeout)
	defer cancel()

	post, err := h.Posts.GetBySlug(ctx, slug)
	if err != nil {
		writeError(c, h.Log, err, "Failed to fetch blog post")
		return
	}

	views, err := h.Posts.IncrementViews(ctx, slug)
	if err != nil {
		writeError(c, h.Log, err, "Failed to fetch blog post")
		return
	}
	post.Views = views

	title := post.Title
	h.Tracker.TrackPageView(ctx, models.PageViewRequest{Path: "/blog/" + slug, Title: &title}, clientInfo(c))

	c.JSON(http.StatusOK, models.PostResponse{Post: post})
}

func (h *BlogHandlers) Update(c *gin.Context) {
	var patch models.PostPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeBindingError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), writeTimeout)
	defer cancel()

	post, err := h.Posts.Update(ctx, c.Param("slug"), patch)
	if err != nil {
		writeError(c, h.Log, err, "Failed to update blog post")
		return
	}
	c.JSON(http.StatusOK, models.PostResponse{Success: true, Post: post})
}

func (h *BlogHandlers) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), writeTimeout)
	defer cancel()

	if err := h.Posts.Delete(ctx, c.Param("slug")); err != nil {
		writeError(c, h.Log, err, "Failed to delete blog post")
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "Blog post deleted"})
}

package handlers

import (
	"context"
	"net/http"

	"github.com/energycommunities/backend/internal/auth/middleware"
	"github.com/energycommunities/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NewsService is the interface that wraps methods for news business logic.
type NewsService interface {
	// Method List returns all news articles, newest first.
	List(ctx context.Context) ([]models.News, error)
	// Method GetByID returns a news article by its ID.
	//
	// If the article does not exist, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, id string) (*models.News, error)
	// Method Create publishes a news article authored by an administrator.
	//
	// If the author is not an administrator, or required fields are missing, the error will be returned together with "nil" value.
	Create(ctx context.Context, author models.Identity, req *models.CreateNewsRequest) (*models.News, error)
}

// CarouselService is the interface that wraps methods for carousel business logic.
type CarouselService interface {
	// Method ListActive returns the active slides in display order.
	ListActive(ctx context.Context) ([]models.CarouselSlide, error)
	// Method Create adds an active slide.
	//
	// If the actor is not an administrator, or required fields are missing, the error will be returned together with "nil" value.
	Create(ctx context.Context, actor models.Identity, req *models.CreateCarouselSlideRequest) (*models.CarouselSlide, error)
}

// ContentHandler handles news and carousel HTTP requests
type ContentHandler struct {
	BaseHandler
	newsService     NewsService
	carouselService CarouselService
}

// NewContentHandler creates a new content handler
func NewContentHandler(newsService NewsService, carouselService CarouselService, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{
		BaseHandler:     BaseHandler{Logger: logger},
		newsService:     newsService,
		carouselService: carouselService,
	}
}

// RegisterRoutes registers the public content routes and the administrator-only create routes
func (h *ContentHandler) RegisterRoutes(r chi.Router, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/news", func(r chi.Router) {
		r.Get("/", h.ListNews)
		r.Get("/{id}", h.GetNews)
		r.With(adminMiddleware).Post("/", h.CreateNews)
	})
	r.Route("/carousel", func(r chi.Router) {
		r.Get("/", h.ListCarousel)
		r.With(adminMiddleware).Post("/", h.CreateCarouselSlide)
	})
}

// ListNews handles GET /news
// @Summary List news
// @Tags news
// @Produce json
// @Success 200 {array} models.News
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /news [get]
func (h *ContentHandler) ListNews(w http.ResponseWriter, r *http.Request) {
	news, err := h.newsService.List(r.Context())
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, news)
}

// GetNews handles GET /news/{id}
// @Summary Get news article
// @Tags news
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} models.News
// @Failure 404 {object} map[string]string "Article not found"
// @Router /news/{id} [get]
func (h *ContentHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	article, err := h.newsService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, article)
}

// CreateNews handles POST /news
// @Summary Publish news article
// @Tags news
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreateNewsRequest true "Article"
// @Success 201 {object} models.News
// @Failure 400 {object} map[string]string "Missing fields"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Router /news [post]
func (h *ContentHandler) CreateNews(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.CreateNewsRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	article, err := h.newsService.Create(r.Context(), identity, &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, article)
}

// ListCarousel handles GET /carousel
// @Summary List active carousel slides
// @Tags carousel
// @Produce json
// @Success 200 {array} models.CarouselSlide
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /carousel [get]
func (h *ContentHandler) ListCarousel(w http.ResponseWriter, r *http.Request) {
	slides, err := h.carouselService.ListActive(r.Context())
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, slides)
}

// CreateCarouselSlide handles POST /carousel
// @Summary Create carousel slide
// @Tags carousel
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreateCarouselSlideRequest true "Slide"
// @Success 201 {object} models.CarouselSlide
// @Failure 400 {object} map[string]string "Missing fields"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Router /carousel [post]
func (h *ContentHandler) CreateCarouselSlide(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.CreateCarouselSlideRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	slide, err := h.carouselService.Create(r.Context(), identity, &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, slide)
}

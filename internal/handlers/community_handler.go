package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/energycommunities/backend/internal/auth/middleware"
	"github.com/energycommunities/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// multipartMemory is the part of a multipart body kept in memory, the rest spills to temp files
const multipartMemory = 8 << 20

// CommunityService is the interface that wraps methods for the community application workflow.
type CommunityService interface {
	// Method Submit validates and stores a new community application in pending status.
	//
	// "owner" parameter is the identity submitting the application.
	// "req" parameter contains the application fields.
	// "documents" parameter contains the uploaded documents by category.
	//
	// If validation fails, or some other error occurs, the error will be returned together with "nil" value.
	Submit(ctx context.Context, owner models.Identity, req *models.SubmitCommunityRequest, documents map[models.DocumentCategory]models.DocumentUpload) (*models.Community, error)
	// Method ListVisibleTo returns all applications for administrators and only owned ones for other users.
	ListVisibleTo(ctx context.Context, identity models.Identity) ([]models.Community, error)
	// Method GetVisible returns an application if the identity may see it.
	//
	// If the application does not exist or belongs to another user, the error will be returned together with "nil" value.
	GetVisible(ctx context.Context, identity models.Identity, id string) (*models.Community, error)
	// Method OpenDocument opens a document of an application the identity may see.
	//
	// The caller must close the returned reader.
	OpenDocument(ctx context.Context, identity models.Identity, id string, category models.DocumentCategory) (io.ReadCloser, string, error)
	// Method Decide applies an administrator decision to a pending application.
	//
	// "decision" parameter must be approved or rejected.
	//
	// If the actor is not an administrator, or the application does not exist or was already decided, the error will be returned together with "nil" value.
	Decide(ctx context.Context, id string, decision models.CommunityStatus, actor models.Identity) (*models.Community, error)
}

// CommunityHandler handles community application HTTP requests
type CommunityHandler struct {
	BaseHandler
	communityService CommunityService
}

// NewCommunityHandler creates a new community handler
func NewCommunityHandler(communityService CommunityService, logger *zap.Logger) *CommunityHandler {
	return &CommunityHandler{
		BaseHandler:      BaseHandler{Logger: logger},
		communityService: communityService,
	}
}

// RegisterRoutes registers all community handler routes behind the given auth middleware
func (h *CommunityHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/communities", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.List)
		r.Post("/", h.Submit)
		r.Get("/{id}", h.Get)
		r.Get("/{id}/documents/{category}", h.DownloadDocument)
		r.With(adminMiddleware).Patch("/{id}/status", h.UpdateStatus)
	})
}

// List handles GET /communities
// @Summary List community applications
// @Description Administrators see every application, other users only their own. Newest first.
// @Tags communities
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Community
// @Failure 401 {object} map[string]string "Missing or invalid token"
// @Router /communities [get]
func (h *CommunityHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	communities, err := h.communityService.ListVisibleTo(r.Context(), identity)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, communities)
}

// Get handles GET /communities/{id}
// @Summary Get community application
// @Tags communities
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Application ID"
// @Success 200 {object} models.Community
// @Failure 403 {object} map[string]string "Application belongs to another user"
// @Failure 404 {object} map[string]string "Application not found"
// @Router /communities/{id} [get]
func (h *CommunityHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	community, err := h.communityService.GetVisible(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, community)
}

// Submit handles POST /communities
// @Summary Submit community application
// @Description Submit a new energy community application with its supporting documents.
// @Tags communities
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param name formData string true "Community name"
// @Param type formData string true "Energy type (solar, wind, hydraulic, biomass, mixed)"
// @Param location formData string true "Location"
// @Param capacity formData int true "Capacity in kW"
// @Param description formData string true "Description (at least 10 characters)"
// @Param technical_study formData file false "Technical study"
// @Param economic_analysis formData file false "Economic analysis"
// @Param legal_docs formData file false "Legal documents"
// @Success 201 {object} models.Community
// @Failure 400 {object} map[string]string "Invalid application or documents"
// @Failure 413 {object} map[string]string "Request too large"
// @Router /communities [post]
func (h *CommunityHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		h.Logger.Debug("failed to parse multipart form", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "failed to parse request")
		return
	}
	defer r.MultipartForm.RemoveAll()

	capacity := 0
	if raw := strings.TrimSpace(r.FormValue("capacity")); raw != "" {
		var err error
		if capacity, err = strconv.Atoi(raw); err != nil {
			h.RespondError(w, http.StatusBadRequest, "capacity must be an integer")
			return
		}
	}

	req := &models.SubmitCommunityRequest{
		Name:        r.FormValue("name"),
		Type:        models.EnergyType(r.FormValue("type")),
		Location:    r.FormValue("location"),
		Capacity:    capacity,
		Description: r.FormValue("description"),
	}

	documents, files, err := documentsFromForm(r.MultipartForm)
	defer closeFiles(files)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	community, err := h.communityService.Submit(r.Context(), identity, req, documents)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, community)
}

// UpdateStatus handles PATCH /communities/{id}/status
// @Summary Decide community application
// @Description Approve or reject a pending application. Administrators only.
// @Tags communities
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Application ID"
// @Param request body models.UpdateStatusRequest true "Decision"
// @Success 200 {object} models.Community
// @Failure 400 {object} map[string]string "Invalid status or application already decided"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Failure 404 {object} map[string]string "Application not found"
// @Router /communities/{id}/status [patch]
func (h *CommunityHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req models.UpdateStatusRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	community, err := h.communityService.Decide(r.Context(), chi.URLParam(r, "id"), req.Status, identity)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, community)
}

// DownloadDocument handles GET /communities/{id}/documents/{category}
// @Summary Download application document
// @Tags communities
// @Produce octet-stream
// @Security ApiKeyAuth
// @Param id path string true "Application ID"
// @Param category path string true "Document category (technical_study, economic_analysis, legal_docs)"
// @Success 200 {file} file
// @Failure 403 {object} map[string]string "Application belongs to another user"
// @Failure 404 {object} map[string]string "Application or document not found"
// @Router /communities/{id}/documents/{category} [get]
func (h *CommunityHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	category := models.DocumentCategory(chi.URLParam(r, "category"))
	content, name, err := h.communityService.OpenDocument(r.Context(), identity, chi.URLParam(r, "id"), category)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}
	defer content.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, content); err != nil {
		h.Logger.Warn("failed to stream document", zap.String("document", name), zap.Error(err))
	}
}

func (h *CommunityHandler) identity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
	}
	return identity, ok
}

// documentsFromForm collects the uploaded documents by category.
// Opened files are returned so the caller can close them whatever the outcome.
func documentsFromForm(form *multipart.Form) (map[models.DocumentCategory]models.DocumentUpload, []multipart.File, error) {
	documents := make(map[models.DocumentCategory]models.DocumentUpload)
	var files []multipart.File

	for field, headers := range form.File {
		category := models.DocumentCategory(field)
		if !category.IsValid() {
			return nil, files, models.NewValidationError(fmt.Sprintf("unknown document category: %s", field))
		}
		if len(headers) > 1 {
			return nil, files, models.NewValidationError(fmt.Sprintf("only one file allowed for %s", field))
		}

		file, err := headers[0].Open()
		if err != nil {
			return nil, files, fmt.Errorf("failed to open uploaded file: %w", err)
		}
		files = append(files, file)

		documents[category] = models.DocumentUpload{
			Filename: headers[0].Filename,
			Size:     headers[0].Size,
			Content:  file,
		}
	}

	return documents, files, nil
}

func closeFiles(files []multipart.File) {
	for _, f := range files {
		f.Close()
	}
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/energycommunities/backend/internal/auth/middleware"
	"github.com/energycommunities/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var (
	adminIdentity  = models.Identity{ID: "admin-1", Role: models.RoleAdministrator, Username: "admin"}
	memberIdentity = models.Identity{ID: "member-1", Role: models.RoleCommunityMember, Username: "ana"}
)

// withIdentity stands in for the access gate
func withIdentity(identity models.Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithIdentity(r.Context(), identity)))
		})
	}
}

func passThrough(next http.Handler) http.Handler { return next }

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedMessage string
	}{
		{"validation", models.NewValidationError("name is required"), http.StatusBadRequest, "name is required"},
		{"conflict", models.ErrDuplicateEmail, http.StatusBadRequest, "email already exists"},
		{"invalid transition", models.ErrStatusNotPending, http.StatusBadRequest, models.ErrStatusNotPending.Message},
		{"unauthenticated", models.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"forbidden", models.NewForbiddenError("no"), http.StatusForbidden, "no"},
		{"not found", models.ErrCommunityNotFound, http.StatusNotFound, "community not found"},
		{"internal", errors.New("dial tcp: connection refused"), http.StatusInternalServerError, "internal server error"},
	}

	h := &BaseHandler{Logger: zap.NewNop()}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.RespondServiceError(w, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedMessage, decodeError(t, w))
		})
	}
}

// mockAuthService is a mock implementation of AuthService
type mockAuthService struct {
	registerFunc func(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	loginFunc    func(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
}

func (m *mockAuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	return m.registerFunc(ctx, req)
}

func (m *mockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	return m.loginFunc(ctx, req)
}

func newAuthRouter(svc AuthService) chi.Router {
	r := chi.NewRouter()
	NewAuthHandler(svc, zap.NewNop()).RegisterRoutes(r, withIdentity(memberIdentity), passThrough)
	return r
}

func TestAuthHandler_Login(t *testing.T) {
	svc := &mockAuthService{
		loginFunc: func(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
			if req.Username == "ana" && req.Password == "secret1" {
				return &models.AuthResponse{Token: "tok", User: models.UserResponse{ID: "member-1", Username: "ana"}}, nil
			}
			return nil, models.ErrInvalidCredentials
		},
	}

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{"success", `{"username":"ana","password":"secret1"}`, http.StatusOK},
		{"invalid credentials", `{"username":"nouser","password":"x"}`, http.StatusUnauthorized},
		{"invalid body", `{"username":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newAuthRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body)))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp models.AuthResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "tok", resp.Token)
				assert.Equal(t, "ana", resp.User.Username)
			} else {
				assert.NotContains(t, w.Body.String(), "token")
			}
		})
	}
}

func TestAuthHandler_Register(t *testing.T) {
	svc := &mockAuthService{
		registerFunc: func(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
			if req.Username == "taken" {
				return nil, models.ErrDuplicateUsername
			}
			return &models.AuthResponse{Token: "tok", User: models.UserResponse{ID: "u-1", Username: req.Username}}, nil
		},
	}

	w := httptest.NewRecorder()
	newAuthRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"username":"ana","email":"ana@example.com","password":"secret1","name":"Ana"}`)))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	newAuthRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"username":"taken","email":"t@example.com","password":"secret1","name":"T"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "username already exists", decodeError(t, w))
}

func TestAuthHandler_Register_LeavesAuditLogToStore(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc := &mockAuthService{
		registerFunc: func(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
			return &models.AuthResponse{Token: "tok", User: models.UserResponse{ID: "u-1", Username: req.Username}}, nil
		},
	}

	r := chi.NewRouter()
	NewAuthHandler(svc, zap.New(core)).RegisterRoutes(r, withIdentity(memberIdentity), passThrough)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"username":"ana","email":"ana@example.com","password":"secret1","name":"Ana"}`)))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Zero(t, logs.FilterMessage("user registered").Len())
}

func TestAuthHandler_Verify(t *testing.T) {
	w := httptest.NewRecorder()
	newAuthRouter(&mockAuthService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/verify", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]models.Identity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, memberIdentity, body["user"])
}

// mockCommunityService is a mock implementation of CommunityService
type mockCommunityService struct {
	submitted      *models.SubmitCommunityRequest
	submittedDocs  map[models.DocumentCategory]string
	submitErr      error
	communities    []models.Community
	decideFunc     func(id string, decision models.CommunityStatus, actor models.Identity) (*models.Community, error)
	documentBody   string
	documentName   string
	documentErr    error
	visibleErr     error
	listedIdentity models.Identity
}

func (m *mockCommunityService) Submit(ctx context.Context, owner models.Identity, req *models.SubmitCommunityRequest, documents map[models.DocumentCategory]models.DocumentUpload) (*models.Community, error) {
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	m.submitted = req
	m.submittedDocs = make(map[models.DocumentCategory]string)
	for category, upload := range documents {
		content, err := io.ReadAll(upload.Content)
		if err != nil {
			return nil, err
		}
		m.submittedDocs[category] = upload.Filename + ":" + string(content)
	}
	return &models.Community{ID: "c-1", Name: req.Name, OwnerID: owner.ID, Status: models.CommunityStatusPending}, nil
}

func (m *mockCommunityService) ListVisibleTo(ctx context.Context, identity models.Identity) ([]models.Community, error) {
	m.listedIdentity = identity
	return m.communities, nil
}

func (m *mockCommunityService) GetVisible(ctx context.Context, identity models.Identity, id string) (*models.Community, error) {
	if m.visibleErr != nil {
		return nil, m.visibleErr
	}
	return &models.Community{ID: id}, nil
}

func (m *mockCommunityService) OpenDocument(ctx context.Context, identity models.Identity, id string, category models.DocumentCategory) (io.ReadCloser, string, error) {
	if m.documentErr != nil {
		return nil, "", m.documentErr
	}
	return io.NopCloser(strings.NewReader(m.documentBody)), m.documentName, nil
}

func (m *mockCommunityService) Decide(ctx context.Context, id string, decision models.CommunityStatus, actor models.Identity) (*models.Community, error) {
	return m.decideFunc(id, decision, actor)
}

func newCommunityRouter(svc CommunityService, identity models.Identity) chi.Router {
	r := chi.NewRouter()
	NewCommunityHandler(svc, zap.NewNop()).RegisterRoutes(r, withIdentity(identity), passThrough)
	return r
}

type formFile struct {
	field, name, content string
}

func multipartBody(t *testing.T, fields map[string]string, files []formFile) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func validFields() map[string]string {
	return map[string]string{
		"name":        "Solar Valle",
		"type":        "solar",
		"location":    "Valle",
		"capacity":    "150",
		"description": "Comunidad solar del valle",
	}
}

func TestCommunityHandler_Submit(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockCommunityService{}
		body, contentType := multipartBody(t, validFields(), []formFile{{"technical_study", "study.pdf", "pdf bytes"}})
		req := httptest.NewRequest(http.MethodPost, "/communities", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		newCommunityRouter(svc, memberIdentity).ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 150, svc.submitted.Capacity)
		assert.Equal(t, models.EnergyTypeSolar, svc.submitted.Type)
		assert.Equal(t, "study.pdf:pdf bytes", svc.submittedDocs[models.DocumentTechnicalStudy])

		var community models.Community
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &community))
		assert.Equal(t, models.CommunityStatusPending, community.Status)
		assert.Equal(t, memberIdentity.ID, community.OwnerID)
	})

	tests := []struct {
		name            string
		fields          map[string]string
		files           []formFile
		submitErr       error
		expectedMessage string
	}{
		{
			name:            "non-integer capacity",
			fields:          map[string]string{"name": "x", "capacity": "lots"},
			expectedMessage: "capacity must be an integer",
		},
		{
			name:            "unknown document field",
			fields:          validFields(),
			files:           []formFile{{"photo", "a.pdf", "x"}},
			expectedMessage: "unknown document category: photo",
		},
		{
			name:            "two files for one category",
			fields:          validFields(),
			files:           []formFile{{"legal_docs", "a.pdf", "x"}, {"legal_docs", "b.pdf", "y"}},
			expectedMessage: "only one file allowed for legal_docs",
		},
		{
			name:            "service validation",
			fields:          validFields(),
			submitErr:       models.NewValidationError("capacity must be greater than 0"),
			expectedMessage: "capacity must be greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockCommunityService{submitErr: tt.submitErr}
			body, contentType := multipartBody(t, tt.fields, tt.files)
			req := httptest.NewRequest(http.MethodPost, "/communities", body)
			req.Header.Set("Content-Type", contentType)

			w := httptest.NewRecorder()
			newCommunityRouter(svc, memberIdentity).ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.expectedMessage, decodeError(t, w))
			assert.Nil(t, svc.submitted)
		})
	}

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/communities", strings.NewReader(`{"name":"x"}`))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		newCommunityRouter(&mockCommunityService{}, memberIdentity).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCommunityHandler_List(t *testing.T) {
	svc := &mockCommunityService{communities: []models.Community{{ID: "c-2"}, {ID: "c-1"}}}

	w := httptest.NewRecorder()
	newCommunityRouter(svc, adminIdentity).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/communities", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var communities []models.Community
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &communities))
	assert.Len(t, communities, 2)
	assert.Equal(t, adminIdentity, svc.listedIdentity)
}

func TestCommunityHandler_Get(t *testing.T) {
	tests := []struct {
		name           string
		visibleErr     error
		expectedStatus int
	}{
		{"visible", nil, http.StatusOK},
		{"other owner", models.NewForbiddenError("you do not have access to this community application"), http.StatusForbidden},
		{"missing", models.ErrCommunityNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newCommunityRouter(&mockCommunityService{visibleErr: tt.visibleErr}, memberIdentity).
				ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/communities/c-1", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestCommunityHandler_UpdateStatus(t *testing.T) {
	svc := &mockCommunityService{
		decideFunc: func(id string, decision models.CommunityStatus, actor models.Identity) (*models.Community, error) {
			switch {
			case id == "missing":
				return nil, models.ErrCommunityNotFound
			case id == "decided":
				return nil, models.ErrStatusNotPending
			case !decision.IsDecision():
				return nil, models.NewValidationError("status must be approved or rejected")
			}
			return &models.Community{ID: id, Status: decision}, nil
		},
	}

	tests := []struct {
		name           string
		id             string
		body           string
		expectedStatus int
	}{
		{"approve", "c-1", `{"status":"approved"}`, http.StatusOK},
		{"invalid status", "c-1", `{"status":"pending"}`, http.StatusBadRequest},
		{"already decided", "decided", `{"status":"rejected"}`, http.StatusBadRequest},
		{"not found", "missing", `{"status":"approved"}`, http.StatusNotFound},
		{"invalid body", "c-1", `status`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newCommunityRouter(svc, adminIdentity).ServeHTTP(w,
				httptest.NewRequest(http.MethodPatch, "/communities/"+tt.id+"/status", strings.NewReader(tt.body)))

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestCommunityHandler_DownloadDocument(t *testing.T) {
	t.Run("streams document", func(t *testing.T) {
		svc := &mockCommunityService{documentBody: "pdf bytes", documentName: "abc.pdf"}

		w := httptest.NewRecorder()
		newCommunityRouter(svc, memberIdentity).ServeHTTP(w,
			httptest.NewRequest(http.MethodGet, "/communities/c-1/documents/technical_study", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "abc.pdf")
		assert.Equal(t, "pdf bytes", w.Body.String())
	})

	t.Run("document missing", func(t *testing.T) {
		svc := &mockCommunityService{documentErr: &models.Error{Kind: models.KindNotFound, Message: "document not found"}}

		w := httptest.NewRecorder()
		newCommunityRouter(svc, memberIdentity).ServeHTTP(w,
			httptest.NewRequest(http.MethodGet, "/communities/c-1/documents/legal_docs", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

// mockNewsService is a mock implementation of NewsService
type mockNewsService struct {
	articles []models.News
}

func (m *mockNewsService) List(ctx context.Context) ([]models.News, error) {
	return m.articles, nil
}

func (m *mockNewsService) GetByID(ctx context.Context, id string) (*models.News, error) {
	for i := range m.articles {
		if m.articles[i].ID == id {
			return &m.articles[i], nil
		}
	}
	return nil, models.ErrNewsNotFound
}

func (m *mockNewsService) Create(ctx context.Context, author models.Identity, req *models.CreateNewsRequest) (*models.News, error) {
	if !author.IsAdministrator() {
		return nil, models.NewForbiddenError("only administrators can publish news")
	}
	if req.Title == "" {
		return nil, models.NewValidationError("title is required")
	}
	return &models.News{ID: "n-new", Title: req.Title, AuthorID: author.ID}, nil
}

// mockCarouselService is a mock implementation of CarouselService
type mockCarouselService struct {
	slides []models.CarouselSlide
}

func (m *mockCarouselService) ListActive(ctx context.Context) ([]models.CarouselSlide, error) {
	return m.slides, nil
}

func (m *mockCarouselService) Create(ctx context.Context, actor models.Identity, req *models.CreateCarouselSlideRequest) (*models.CarouselSlide, error) {
	return &models.CarouselSlide{ID: "s-new", Title: req.Title, Order: *req.Order, IsActive: true}, nil
}

func newContentRouter(identity models.Identity) chi.Router {
	news := &mockNewsService{articles: []models.News{{ID: "n-1", Title: "Primera"}}}
	carousel := &mockCarouselService{slides: []models.CarouselSlide{{ID: "s-1", Order: 0}}}

	r := chi.NewRouter()
	NewContentHandler(news, carousel, zap.NewNop()).RegisterRoutes(r, withIdentity(identity))
	return r
}

func TestContentHandler_News(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		identity       models.Identity
		expectedStatus int
	}{
		{"list", http.MethodGet, "/news", "", memberIdentity, http.StatusOK},
		{"get", http.MethodGet, "/news/n-1", "", memberIdentity, http.StatusOK},
		{"get missing", http.MethodGet, "/news/n-9", "", memberIdentity, http.StatusNotFound},
		{"create", http.MethodPost, "/news", `{"title":"Nueva"}`, adminIdentity, http.StatusCreated},
		{"create as member", http.MethodPost, "/news", `{"title":"Nueva"}`, memberIdentity, http.StatusForbidden},
		{"create without title", http.MethodPost, "/news", `{}`, adminIdentity, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}

			w := httptest.NewRecorder()
			newContentRouter(tt.identity).ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, body))

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestContentHandler_Carousel(t *testing.T) {
	w := httptest.NewRecorder()
	newContentRouter(memberIdentity).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/carousel", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var slides []models.CarouselSlide
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &slides))
	assert.Len(t, slides, 1)

	w = httptest.NewRecorder()
	newContentRouter(adminIdentity).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/carousel",
		strings.NewReader(`{"title":"Sol","content":"c","icon":"sun","backgroundColor":"#fff","order":2}`)))
	require.Equal(t, http.StatusCreated, w.Code)

	var slide models.CarouselSlide
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &slide))
	assert.Equal(t, 2, slide.Order)
	assert.True(t, slide.IsActive)
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name           string
		checks         map[string]HealthCheck
		expectedStatus int
	}{
		{
			name:           "healthy",
			checks:         map[string]HealthCheck{"database": func(ctx context.Context) error { return nil }},
			expectedStatus: http.StatusOK,
		},
		{
			name: "database down",
			checks: map[string]HealthCheck{
				"database": func(ctx context.Context) error { return errors.New("connection refused") },
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHealthHandler(tt.checks, zap.NewNop()).Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

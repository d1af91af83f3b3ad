package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"peoplework/internal/domain"
	"peoplework/internal/repository"
	"peoplework/internal/service"
)

type mockUserRepo struct {
	usersByID    map[string]domain.User
	usersByEmail map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok || user.IsDeleted {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	id, ok := m.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	var out []domain.User
	for _, user := range m.usersByID {
		if user.IsDeleted || user.Role == domain.RoleAdmin {
			continue
		}
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		out = append(out, user)
	}
	return out, len(out), nil
}

func (m *mockUserRepo) Update(_ context.Context, id string, update repository.UserUpdate) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok || user.IsDeleted {
		return domain.User{}, pgx.ErrNoRows
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	if update.Address != nil {
		user.Address = *update.Address
	}
	if update.Speciality != nil {
		user.Speciality = *update.Speciality
	}
	if update.Keywords != nil {
		user.Keywords = *update.Keywords
	}
	if update.Role != nil {
		user.Role = *update.Role
	}
	if update.Status != nil {
		user.Status = *update.Status
	}
	if update.IsVerified != nil {
		user.IsVerified = *update.IsVerified
	}
	m.usersByID[id] = user
	return user, nil
}

func (m *mockUserRepo) UpdatePasswordHash(_ context.Context, id, passwordHash string) error {
	user, ok := m.usersByID[id]
	if !ok || user.IsDeleted {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) MarkVerified(_ context.Context, id string) error {
	user, ok := m.usersByID[id]
	if !ok || user.IsDeleted {
		return pgx.ErrNoRows
	}
	user.IsVerified = true
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) SoftDelete(_ context.Context, id string) error {
	user, ok := m.usersByID[id]
	if !ok || user.IsDeleted {
		return pgx.ErrNoRows
	}
	user.IsDeleted = true
	m.usersByID[id] = user
	return nil
}

type mockEmailSender struct {
	lastTo        string
	lastCode      string
	lastResetCode string
	err           error
}

func (m *mockEmailSender) SendVerificationOTP(_ context.Context, toEmail, code string, _ time.Time) error {
	m.lastTo = toEmail
	m.lastCode = code
	return m.err
}

func (m *mockEmailSender) SendPasswordResetOTP(_ context.Context, toEmail, code string, _ time.Time) error {
	m.lastTo = toEmail
	m.lastResetCode = code
	return m.err
}

func setupAuthRouter(repo *mockUserRepo, sender *mockEmailSender) (*gin.Engine, *service.JWTService) {
	gin.SetMode(gin.TestMode)
	authSvc := service.NewAuthService(zap.NewNop(), repo, sender, nil, nil)
	jwtSvc := service.NewJWTService("test-secret", time.Hour)
	h := NewAuthHandler(zap.NewNop(), authSvc, jwtSvc)

	r := gin.New()
	auth := r.Group("/api/auth")
	auth.POST("/register", h.Register)
	auth.POST("/send-otp", h.SendOTP)
	auth.POST("/verify-otp", h.VerifyOTP)
	auth.POST("/login", h.Login)
	auth.POST("/forgot", h.ForgotPassword)
	auth.POST("/reset", h.ResetPassword)
	return r, jwtSvc
}

func buildJSONRequest(method, path string, body any) *http.Request {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func performRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, buildJSONRequest(method, path, body))
	return rec
}

func decodeJSON(t *testing.T, body []byte, out any) {
	t.Helper()
	if err := json.Unmarshal(body, out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func registerBody(email string) map[string]string {
	return map[string]string{
		"name":     "Jane Doe",
		"phone":    "555-0100",
		"email":    email,
		"password": "secret123",
		"role":     "customer",
	}
}

func TestAuthHandlerRegister_Success(t *testing.T) {
	repo := newMockUserRepo()
	sender := &mockEmailSender{}
	r, _ := setupAuthRouter(repo, sender)

	rec := performRequest(r, http.MethodPost, "/api/auth/register", registerBody("jane@example.com"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if sender.lastTo != "jane@example.com" || sender.lastCode == "" {
		t.Fatalf("expected otp sent on register")
	}

	var resp struct {
		Message string `json:"message"`
		User    struct {
			Name       string `json:"name"`
			IsVerified bool   `json:"isVerified"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "User registered successfully!" {
		t.Fatalf("unexpected message: %s", resp.Message)
	}
	if resp.User.Name != "JANE DOE" {
		t.Fatalf("expected uppercased name, got %s", resp.User.Name)
	}
	if resp.User.IsVerified {
		t.Fatalf("expected unverified user in response")
	}
}

func TestAuthHandlerRegister_DuplicateEmail(t *testing.T) {
	repo := newMockUserRepo()
	r, _ := setupAuthRouter(repo, &mockEmailSender{})

	if rec := performRequest(r, http.MethodPost, "/api/auth/register", registerBody("jane@example.com")); rec.Code != http.StatusCreated {
		t.Fatalf("first register failed: %d", rec.Code)
	}
	rec := performRequest(r, http.MethodPost, "/api/auth/register", registerBody("jane@example.com"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate, got %d", rec.Code)
	}
}

func TestAuthHandlerRegister_InvalidBody(t *testing.T) {
	repo := newMockUserRepo()
	r, _ := setupAuthRouter(repo, &mockEmailSender{})

	rec := performRequest(r, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "not-an-email",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandlerVerifyOTP_IssuesToken(t *testing.T) {
	repo := newMockUserRepo()
	sender := &mockEmailSender{}
	r, jwtSvc := setupAuthRouter(repo, sender)

	if rec := performRequest(r, http.MethodPost, "/api/auth/register", registerBody("jane@example.com")); rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d", rec.Code)
	}

	rec := performRequest(r, http.MethodPost, "/api/auth/verify-otp", map[string]string{
		"email": "jane@example.com",
		"otp":   sender.lastCode,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("expected token in verify response")
	}
	claims, err := jwtSvc.Verify(resp.Token)
	if err != nil {
		t.Fatalf("expected verifiable token, got %v", err)
	}
	if claims.Role != domain.RoleCustomer {
		t.Fatalf("expected customer role in token, got %s", claims.Role)
	}
	if resp.User.Email != "jane@example.com" {
		t.Fatalf("expected user in response, got %s", resp.User.Email)
	}
}

func TestAuthHandlerVerifyOTP_WrongCode(t *testing.T) {
	repo := newMockUserRepo()
	sender := &mockEmailSender{}
	r, _ := setupAuthRouter(repo, sender)

	if rec := performRequest(r, http.MethodPost, "/api/auth/register", registerBody("jane@example.com")); rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d", rec.Code)
	}

	wrong := "000000"
	if wrong == sender.lastCode {
		wrong = "000001"
	}
	rec := performRequest(r, http.MethodPost, "/api/auth/verify-otp", map[string]string{
		"email": "jane@example.com",
		"otp":   wrong,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandlerLogin_FullFlow(t *testing.T) {
	repo := newMockUserRepo()
	sender := &mockEmailSender{}
	r, _ := setupAuthRouter(repo, sender)

	if rec := performRequest(r, http.MethodPost, "/api/auth/register", registerBody("jane@example.com")); rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d", rec.Code)
	}

	// Login antes de verificar queda bloqueado.
	rec := performRequest(r, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "secret123",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 before verification, got %d", rec.Code)
	}

	if rec := performRequest(r, http.MethodPost, "/api/auth/verify-otp", map[string]string{
		"email": "jane@example.com",
		"otp":   sender.lastCode,
	}); rec.Code != http.StatusOK {
		t.Fatalf("verify failed: %d", rec.Code)
	}

	rec = performRequest(r, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "secret123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after verification, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Message string `json:"message"`
		Token   string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "Login successful!" || resp.Token == "" {
		t.Fatalf("unexpected login response: %s", rec.Body.String())
	}
}

func TestAuthHandlerLogin_InvalidCredentials(t *testing.T) {
	repo := newMockUserRepo()
	r, _ := setupAuthRouter(repo, &mockEmailSender{})

	rec := performRequest(r, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "Invalid credentials." {
		t.Fatalf("unexpected message: %s", resp.Message)
	}
}

func TestAuthHandlerForgotPassword_UnknownUser(t *testing.T) {
	repo := newMockUserRepo()
	r, _ := setupAuthRouter(repo, &mockEmailSender{})

	rec := performRequest(r, http.MethodPost, "/api/auth/forgot", map[string]string{
		"email": "nobody@example.com",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAuthHandlerResetPassword_FullFlow(t *testing.T) {
	repo := newMockUserRepo()
	sender := &mockEmailSender{}
	r, _ := setupAuthRouter(repo, sender)

	if rec := performRequest(r, http.MethodPost, "/api/auth/register", registerBody("jane@example.com")); rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d", rec.Code)
	}
	if rec := performRequest(r, http.MethodPost, "/api/auth/verify-otp", map[string]string{
		"email": "jane@example.com",
		"otp":   sender.lastCode,
	}); rec.Code != http.StatusOK {
		t.Fatalf("verify failed: %d", rec.Code)
	}

	if rec := performRequest(r, http.MethodPost, "/api/auth/forgot", map[string]string{
		"email": "jane@example.com",
	}); rec.Code != http.StatusOK {
		t.Fatalf("forgot failed: %d", rec.Code)
	}
	if sender.lastResetCode == "" {
		t.Fatalf("expected reset code sent")
	}

	if rec := performRequest(r, http.MethodPost, "/api/auth/reset", map[string]string{
		"email":       "jane@example.com",
		"otp":         sender.lastResetCode,
		"newPassword": "newsecret",
	}); rec.Code != http.StatusOK {
		t.Fatalf("reset failed: %d", rec.Code)
	}

	rec := performRequest(r, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "newsecret",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected login with new password, got %d", rec.Code)
	}
}

// Package client implementa el SDK Go del API de PeopleWork: un cliente HTTP
// tipado, almacenamiento de sesión y un guard de navegación por roles.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"peoplework/internal/domain"
)

// APIError transporta el mensaje y el status devueltos por el backend.
// Los mensajes se muestran tal cual al usuario final.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d message=%s", e.StatusCode, e.Message)
}

// Client es el cliente HTTP del API. Seguro para uso concurrente.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken fija el bearer token que acompaña las peticiones protegidas.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address,omitempty"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// AuthResponse es la respuesta de login y verify-otp.
type AuthResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    domain.PublicUser `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (domain.User, error) {
	var resp struct {
		Message string      `json:"message"`
		User    domain.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &resp); err != nil {
		return domain.User{}, err
	}
	return resp.User, nil
}

func (c *Client) SendOTP(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/api/auth/send-otp", body, &messageResponse{})
}

func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (AuthResponse, error) {
	body := map[string]string{"email": email, "otp": otp}
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/verify-otp", body, &resp); err != nil {
		return AuthResponse{}, err
	}
	return resp, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return AuthResponse{}, err
	}
	return resp, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/api/auth/forgot", body, &messageResponse{})
}

func (c *Client) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	body := map[string]string{"email": email, "otp": otp, "newPassword": newPassword}
	return c.do(ctx, http.MethodPost, "/api/auth/reset", body, &messageResponse{})
}

// UserList es una página del listado público de usuarios.
type UserList struct {
	Users       []domain.User `json:"users"`
	TotalUsers  int           `json:"totalUsers"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
}

// ListSellers consulta el listado público filtrado por rol seller.
func (c *Client) ListSellers(ctx context.Context, keyword string, page, limit int) (UserList, error) {
	params := url.Values{}
	params.Set("role", string(domain.RoleSeller))
	if keyword != "" {
		params.Set("keyword", keyword)
	}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var list UserList
	if err := c.do(ctx, http.MethodGet, "/api/users?"+params.Encode(), nil, &list); err != nil {
		return UserList{}, err
	}
	return list, nil
}

type AppointmentRequest struct {
	SellerID        string    `json:"seller"`
	ServiceType     string    `json:"serviceType"`
	AppointmentDate time.Time `json:"appointmentDate"`
	Notes           string    `json:"notes,omitempty"`
}

// dataEnvelope es la envoltura {success, data} de citas y reseñas.
type dataEnvelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

func (c *Client) CreateAppointment(ctx context.Context, req AppointmentRequest) (domain.Appointment, error) {
	var resp dataEnvelope[domain.Appointment]
	if err := c.do(ctx, http.MethodPost, "/api/appointments", req, &resp); err != nil {
		return domain.Appointment{}, err
	}
	return resp.Data, nil
}

func (c *Client) ListAppointments(ctx context.Context) ([]domain.Appointment, error) {
	var resp dataEnvelope[[]domain.Appointment]
	if err := c.do(ctx, http.MethodGet, "/api/appointments", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

type ReviewRequest struct {
	SellerID      string `json:"seller"`
	AppointmentID string `json:"appointment"`
	Rating        int    `json:"rating"`
	Comment       string `json:"comment,omitempty"`
}

func (c *Client) CreateReview(ctx context.Context, req ReviewRequest) (domain.Review, error) {
	var resp dataEnvelope[domain.Review]
	if err := c.do(ctx, http.MethodPost, "/api/reviews", req, &resp); err != nil {
		return domain.Review{}, err
	}
	return resp.Data, nil
}

// Profile recupera el perfil del usuario autenticado.
func (c *Client) Profile(ctx context.Context) (domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/api/users/profile", nil, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    extractMessage(respBody),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// extractMessage busca el mensaje humano tanto en respuestas {message} como
// en el envelope {status:"FAILED", error:{message}}.
func extractMessage(body []byte) string {
	var plain struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &plain); err != nil {
		return "request failed"
	}
	if plain.Message != "" {
		return plain.Message
	}
	if plain.Error.Message != "" {
		return plain.Error.Message
	}
	return "request failed"
}

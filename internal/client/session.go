package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"peoplework/internal/domain"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// Session mantiene el estado de autenticación del cliente: token, usuario
// actual y flag de carga inicial. Es seguro para uso concurrente.
type Session struct {
	mu      sync.RWMutex
	api     *Client
	storage TokenStorage
	user    *domain.User
	token   string
	loading bool
}

func NewSession(api *Client, storage TokenStorage) *Session {
	if storage == nil {
		storage = NewMemoryTokenStorage()
	}
	return &Session{
		api:     api,
		storage: storage,
		loading: true,
	}
}

// Restore carga el token persistido y resuelve la identidad contra el
// backend. Un token inválido o vencido deja la sesión limpia sin error.
func (s *Session) Restore(ctx context.Context) error {
	defer s.setLoading(false)

	token, err := s.storage.Load()
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	if token == "" {
		return nil
	}

	s.api.SetToken(token)
	user, err := s.api.Profile(ctx)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 401 {
			s.api.SetToken("")
			_ = s.storage.Clear()
			return nil
		}
		return fmt.Errorf("restore session: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()
	return nil
}

// Login autentica contra el backend y persiste el token resultante.
func (s *Session) Login(ctx context.Context, email, password string) (domain.PublicUser, error) {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return domain.PublicUser{}, err
	}
	if err := s.adopt(ctx, resp); err != nil {
		return domain.PublicUser{}, err
	}
	return resp.User, nil
}

// CompleteVerification canjea el OTP de registro y deja la sesión iniciada,
// igual que un login.
func (s *Session) CompleteVerification(ctx context.Context, email, otp string) (domain.PublicUser, error) {
	resp, err := s.api.VerifyOTP(ctx, email, otp)
	if err != nil {
		return domain.PublicUser{}, err
	}
	if err := s.adopt(ctx, resp); err != nil {
		return domain.PublicUser{}, err
	}
	return resp.User, nil
}

func (s *Session) adopt(ctx context.Context, resp AuthResponse) error {
	s.api.SetToken(resp.Token)
	user, err := s.api.Profile(ctx)
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}

	s.mu.Lock()
	s.token = resp.Token
	s.user = &user
	s.mu.Unlock()

	if err := s.storage.Save(resp.Token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

// Logout descarta el token y la identidad en memoria y en el storage.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	s.api.SetToken("")
	if err := s.storage.Clear(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// IsAuthenticated informa si hay una sesión activa.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Loading informa si la restauración inicial sigue en curso.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// CurrentUser devuelve una copia del usuario autenticado.
func (s *Session) CurrentUser() (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, ErrNotAuthenticated
	}
	return *s.user, nil
}

// HasPermission indica si el rol de la sesión está dentro de los permitidos.
// Sin roles requeridos basta con estar autenticado.
func (s *Session) HasPermission(roles ...domain.Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if s.user.Role == r {
			return true
		}
	}
	return false
}

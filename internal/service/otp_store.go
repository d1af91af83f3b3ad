package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPStore guarda códigos de un solo uso por email. A lo sumo un código vivo
// por email; un Put posterior pisa el anterior.
type OTPStore interface {
	Put(email, code string, ttl time.Duration) error
	Get(email string) (string, bool, error)
	Delete(email string) error
}

type otpEntry struct {
	code      string
	expiresAt time.Time
}

type memoryOTPStore struct {
	mu    sync.Mutex
	items map[string]otpEntry
}

// NewMemoryOTPStore crea un store en memoria para despliegues de una sola
// instancia. Los códigos se pierden al reiniciar el proceso.
func NewMemoryOTPStore() OTPStore {
	return &memoryOTPStore{
		items: make(map[string]otpEntry),
	}
}

func (s *memoryOTPStore) Put(email, code string, ttl time.Duration) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[email] = otpEntry{
		code:      code,
		expiresAt: time.Now().UTC().Add(ttl),
	}
	return nil
}

func (s *memoryOTPStore) Get(email string) (string, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[email]
	if !ok {
		return "", false, nil
	}
	if time.Now().UTC().After(entry.expiresAt) {
		delete(s.items, email)
		return "", false, nil
	}
	return entry.code, true, nil
}

func (s *memoryOTPStore) Delete(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, email)
	return nil
}

type redisOTPStore struct {
	client *redis.Client
	prefix string
}

// NewRedisOTPStore crea un store respaldado en Redis para despliegues con
// varias instancias del servidor.
func NewRedisOTPStore(client *redis.Client) OTPStore {
	if client == nil {
		return nil
	}
	return &redisOTPStore{
		client: client,
		prefix: "auth:otp:",
	}
}

func (s *redisOTPStore) Put(email, code string, ttl time.Duration) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return s.client.Set(ctx, s.prefix+email, code, ttl).Err()
}

func (s *redisOTPStore) Get(email string) (string, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	code, err := s.client.Get(ctx, s.prefix+email).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return code, true, nil
}

func (s *redisOTPStore) Delete(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return s.client.Del(ctx, s.prefix+email).Err()
}

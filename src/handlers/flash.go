package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/username/bankconv/src/security/validation"
)

const flashCookieName = "flash_session"

// Flash is a one-shot message shown on the next page render.
type Flash struct {
	Category string
	Message  string
}

// FlashStore keeps pending flash messages in memory, keyed by a per-browser session id cookie.
type FlashStore struct {
	mu    sync.Mutex
	cache *cache.Cache
	ttl   time.Duration
}

func NewFlashStore(ttl time.Duration) *FlashStore {
	return &FlashStore{
		cache: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

func (s *FlashStore) sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(flashCookieName); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			return cookie.Value
		}
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    id,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		Secure:   r.TLS != nil,
	})
	return id
}

// Add queues a sanitized message for the requesting browser.
func (s *FlashStore) Add(w http.ResponseWriter, r *http.Request, category, message string) {
	id := s.sessionID(w, r)
	flash := Flash{Category: category, Message: validation.SanitizeText(message)}

	s.mu.Lock()
	defer s.mu.Unlock()
	var pending []Flash
	if cached, found := s.cache.Get(id); found {
		pending = cached.([]Flash)
	}
	s.cache.Set(id, append(pending, flash), s.ttl)
}

// Pop returns and clears the pending messages of the requesting browser.
func (s *FlashStore) Pop(r *http.Request) []Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cached, found := s.cache.Get(cookie.Value)
	if !found {
		return nil
	}
	s.cache.Delete(cookie.Value)
	return cached.([]Flash)
}

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-authgate/applink/internal/core"
	"github.com/go-authgate/applink/internal/models"
	"github.com/go-authgate/applink/internal/util"
)

var _ core.TokenStore = (*MemoryTokenStore)(nil)

// MemoryTokenStore keeps tokens in process memory. Tokens do not survive a
// restart and are not shared between instances.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]models.Token
	clock  core.Clock
}

func NewMemoryTokenStore(clock core.Clock) *MemoryTokenStore {
	if clock == nil {
		clock = util.SystemClock{}
	}
	return &MemoryTokenStore{
		tokens: make(map[string]models.Token),
		clock:  clock,
	}
}

func (m *MemoryTokenStore) GetToken(_ context.Context, value string) (*models.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	token, ok := m.tokens[value]
	if !ok || token.IsExpiredAt(m.clock.Now()) {
		return nil, ErrRecordNotFound
	}
	return &token, nil
}

func (m *MemoryTokenStore) GetRenewableToken(_ context.Context, value string) (*models.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	token, ok := m.tokens[value]
	if !ok || !token.IsRenewableAt(m.clock.Now()) {
		return nil, ErrRecordNotFound
	}
	return &token, nil
}

func (m *MemoryTokenStore) PutToken(_ context.Context, token *models.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens[token.Value] = *token
	return nil
}

// AuthorizeRequestToken checks and updates under the write lock.
func (m *MemoryTokenStore) AuthorizeRequestToken(
	_ context.Context,
	value, authorizedBy, verifier string,
	at time.Time,
) (*models.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, err := m.pendingLocked(value)
	if err != nil {
		return nil, err
	}
	token.AuthorizedBy = authorizedBy
	token.Verifier = verifier
	token.AuthorizedAt = &at
	m.tokens[value] = token
	return &token, nil
}

func (m *MemoryTokenStore) RemovePendingRequestToken(_ context.Context, value string) (*models.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, err := m.pendingLocked(value)
	if err != nil {
		return nil, err
	}
	delete(m.tokens, value)
	return &token, nil
}

// pendingLocked returns a live, unapproved request token. m.mu must be held.
func (m *MemoryTokenStore) pendingLocked(value string) (models.Token, error) {
	token, ok := m.tokens[value]
	if !ok || token.IsExpiredAt(m.clock.Now()) {
		return models.Token{}, ErrRecordNotFound
	}
	if err := pendingState(&token); err != nil {
		return models.Token{}, err
	}
	return token, nil
}

func (m *MemoryTokenStore) RemoveToken(_ context.Context, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tokens[value]; !ok {
		return ErrRecordNotFound
	}
	delete(m.tokens, value)
	return nil
}

func (m *MemoryTokenStore) RemoveTokensByConsumer(_ context.Context, consumerKey string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for value, token := range m.tokens {
		if token.ConsumerKey == consumerKey {
			delete(m.tokens, value)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryTokenStore) RemoveExpiredTokens(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	var removed int64
	for value, token := range m.tokens {
		if !now.Before(token.SessionExpiresAt) {
			delete(m.tokens, value)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryTokenStore) ListAccessTokensByUser(
	_ context.Context,
	username string,
	offset, limit int,
) ([]models.Token, int64, error) {
	m.mu.RLock()
	now := m.clock.Now()
	var matched []models.Token
	for _, token := range m.tokens {
		if token.AuthorizedBy == username && token.IsRenewableAt(now) {
			matched = append(matched, token)
		}
	}
	m.mu.RUnlock()

	return pageTokens(matched, offset, limit), int64(len(matched)), nil
}

func (m *MemoryTokenStore) CountActiveTokens(_ context.Context, kind models.TokenKind) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.clock.Now()
	var count int64
	for _, token := range m.tokens {
		if token.Kind == kind && !token.IsExpiredAt(now) {
			count++
		}
	}
	return count, nil
}

// pageTokens sorts newest first and returns the requested window.
func pageTokens(tokens []models.Token, offset, limit int) []models.Token {
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].Timestamp.After(tokens[j].Timestamp)
	})
	if offset >= len(tokens) {
		return []models.Token{}
	}
	end := len(tokens)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return tokens[offset:end]
}

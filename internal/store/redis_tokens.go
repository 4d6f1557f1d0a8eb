package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-authgate/applink/internal/core"
	"github.com/go-authgate/applink/internal/models"
	"github.com/go-authgate/applink/internal/util"

	"github.com/redis/go-redis/v9"
)

var _ core.TokenStore = (*RedisTokenStore)(nil)

const (
	keyTypeToken    = "token"
	keyTypeUser     = "user"
	keyTypeConsumer = "consumer"

	// DefaultRedisKeyPrefix namespaces every key written by RedisTokenStore.
	DefaultRedisKeyPrefix = "applink:"
)

// RedisTokenStore shares tokens between instances through Redis. Each token
// lives under its own key with a TTL at the end of its session window.
// Per-user sorted sets and per-consumer sets act as secondary indexes.
type RedisTokenStore struct {
	client    redis.UniversalClient
	keyPrefix string
	clock     core.Clock
}

// storedToken carries the fields models.Token hides from JSON.
type storedToken struct {
	Value            string     `json:"value"`
	Secret           string     `json:"secret"`
	ConsumerKey      string     `json:"consumer_key"`
	Kind             string     `json:"kind"`
	CallbackURL      string     `json:"callback_url,omitempty"`
	Verifier         string     `json:"verifier,omitempty"`
	AuthorizedBy     string     `json:"authorized_by,omitempty"`
	AuthorizedAt     *time.Time `json:"authorized_at,omitempty"`
	SessionHandle    string     `json:"session_handle,omitempty"`
	Timestamp        time.Time  `json:"timestamp"`
	ExpiresAt        time.Time  `json:"expires_at"`
	SessionExpiresAt time.Time  `json:"session_expires_at"`
}

func toStored(t *models.Token) storedToken {
	return storedToken{
		Value:            t.Value,
		Secret:           t.Secret,
		ConsumerKey:      t.ConsumerKey,
		Kind:             string(t.Kind),
		CallbackURL:      t.CallbackURL,
		Verifier:         t.Verifier,
		AuthorizedBy:     t.AuthorizedBy,
		AuthorizedAt:     t.AuthorizedAt,
		SessionHandle:    t.SessionHandle,
		Timestamp:        t.Timestamp,
		ExpiresAt:        t.ExpiresAt,
		SessionExpiresAt: t.SessionExpiresAt,
	}
}

func (s storedToken) toModel() *models.Token {
	return &models.Token{
		Value:            s.Value,
		Secret:           s.Secret,
		ConsumerKey:      s.ConsumerKey,
		Kind:             models.TokenKind(s.Kind),
		CallbackURL:      s.CallbackURL,
		Verifier:         s.Verifier,
		AuthorizedBy:     s.AuthorizedBy,
		AuthorizedAt:     s.AuthorizedAt,
		SessionHandle:    s.SessionHandle,
		Timestamp:        s.Timestamp,
		ExpiresAt:        s.ExpiresAt,
		SessionExpiresAt: s.SessionExpiresAt,
	}
}

// NewRedisTokenStore wraps an existing client. An empty prefix selects
// DefaultRedisKeyPrefix.
func NewRedisTokenStore(client redis.UniversalClient, keyPrefix string, clock core.Clock) *RedisTokenStore {
	if keyPrefix == "" {
		keyPrefix = DefaultRedisKeyPrefix
	}
	if clock == nil {
		clock = util.SystemClock{}
	}
	return &RedisTokenStore{client: client, keyPrefix: keyPrefix, clock: clock}
}

func (s *RedisTokenStore) key(keyType, id string) string {
	return s.keyPrefix + keyType + ":" + id
}

// load reads a token regardless of expiry.
func (s *RedisTokenStore) load(ctx context.Context, value string) (*models.Token, error) {
	data, err := s.client.Get(ctx, s.key(keyTypeToken, value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	var stored storedToken
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return stored.toModel(), nil
}

func (s *RedisTokenStore) GetToken(ctx context.Context, value string) (*models.Token, error) {
	token, err := s.load(ctx, value)
	if err != nil {
		return nil, err
	}
	if token.IsExpiredAt(s.clock.Now()) {
		return nil, ErrRecordNotFound
	}
	return token, nil
}

func (s *RedisTokenStore) GetRenewableToken(ctx context.Context, value string) (*models.Token, error) {
	token, err := s.load(ctx, value)
	if err != nil {
		return nil, err
	}
	if !token.IsRenewableAt(s.clock.Now()) {
		return nil, ErrRecordNotFound
	}
	return token, nil
}

func (s *RedisTokenStore) PutToken(ctx context.Context, token *models.Token) error {
	data, err := json.Marshal(toStored(token))
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	ttl := token.SessionExpiresAt.Sub(s.clock.Now())
	if ttl <= 0 {
		ttl = time.Second
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(keyTypeToken, token.Value), data, ttl)
	pipe.SAdd(ctx, s.key(keyTypeConsumer, token.ConsumerKey), token.Value)
	if token.IsAccessToken() && token.AuthorizedBy != "" {
		pipe.ZAdd(ctx, s.key(keyTypeUser, token.AuthorizedBy), redis.Z{
			Score:  float64(token.Timestamp.UnixNano()),
			Member: token.Value,
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// maxWatchRetries bounds optimistic retries of WATCH transactions.
const maxWatchRetries = 3

// AuthorizeRequestToken rewrites the token inside a WATCH/MULTI transaction.
// A concurrent write to the key aborts the transaction, and the retry then
// sees the other writer's result.
func (s *RedisTokenStore) AuthorizeRequestToken(
	ctx context.Context,
	value, authorizedBy, verifier string,
	at time.Time,
) (*models.Token, error) {
	key := s.key(keyTypeToken, value)
	var authorized *models.Token

	err := s.watchPending(ctx, key, func(tx *redis.Tx, token *models.Token) error {
		token.AuthorizedBy = authorizedBy
		token.Verifier = verifier
		token.AuthorizedAt = &at
		data, err := json.Marshal(toStored(token))
		if err != nil {
			return fmt.Errorf("failed to marshal token: %w", err)
		}
		ttl := token.SessionExpiresAt.Sub(s.clock.Now())
		if ttl <= 0 {
			ttl = time.Second
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, ttl)
			return nil
		})
		authorized = token
		return err
	})
	if err != nil {
		return nil, err
	}
	return authorized, nil
}

// RemovePendingRequestToken deletes the key inside a WATCH/MULTI transaction.
func (s *RedisTokenStore) RemovePendingRequestToken(ctx context.Context, value string) (*models.Token, error) {
	key := s.key(keyTypeToken, value)
	var removed *models.Token

	err := s.watchPending(ctx, key, func(tx *redis.Tx, token *models.Token) error {
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		removed = token
		return err
	})
	if err != nil {
		return nil, err
	}
	s.dropIndexes(ctx, removed)
	return removed, nil
}

// watchPending runs fn with the pending request token stored at key while
// the key is watched.
func (s *RedisTokenStore) watchPending(
	ctx context.Context,
	key string,
	fn func(tx *redis.Tx, token *models.Token) error,
) error {
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrRecordNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get token: %w", err)
		}
		var stored storedToken
		if err := json.Unmarshal(data, &stored); err != nil {
			return fmt.Errorf("failed to unmarshal token: %w", err)
		}
		token := stored.toModel()
		if token.IsExpiredAt(s.clock.Now()) {
			return ErrRecordNotFound
		}
		if err := pendingState(token); err != nil {
			return err
		}
		return fn(tx, token)
	}

	for range maxWatchRetries {
		err := s.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("failed to update token: %w", redis.TxFailedErr)
}

// RemoveToken relies on the DEL reply so that only one concurrent caller wins.
func (s *RedisTokenStore) RemoveToken(ctx context.Context, value string) error {
	token, err := s.load(ctx, value)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return err
	}

	deleted, err := s.client.Del(ctx, s.key(keyTypeToken, value)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	if deleted == 0 {
		return ErrRecordNotFound
	}

	if token != nil {
		s.dropIndexes(ctx, token)
	}
	return nil
}

// dropIndexes is best effort; stale members are skipped on read.
func (s *RedisTokenStore) dropIndexes(ctx context.Context, token *models.Token) {
	_ = s.client.SRem(ctx, s.key(keyTypeConsumer, token.ConsumerKey), token.Value).Err()
	if token.AuthorizedBy != "" {
		_ = s.client.ZRem(ctx, s.key(keyTypeUser, token.AuthorizedBy), token.Value).Err()
	}
}

func (s *RedisTokenStore) RemoveTokensByConsumer(ctx context.Context, consumerKey string) (int64, error) {
	setKey := s.key(keyTypeConsumer, consumerKey)
	values, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("failed to list consumer tokens: %w", err)
	}

	var removed int64
	for _, value := range values {
		err := s.RemoveToken(ctx, value)
		switch {
		case err == nil:
			removed++
		case errors.Is(err, ErrRecordNotFound):
		default:
			return removed, err
		}
	}
	_ = s.client.Del(ctx, setKey).Err()
	return removed, nil
}

// RemoveExpiredTokens removes tokens whose session window has closed by the
// store clock. Redis TTLs normally get there first.
func (s *RedisTokenStore) RemoveExpiredTokens(ctx context.Context) (int64, error) {
	now := s.clock.Now()
	var removed int64
	err := s.scanTokens(ctx, func(token *models.Token) error {
		if now.Before(token.SessionExpiresAt) {
			return nil
		}
		err := s.RemoveToken(ctx, token.Value)
		if err == nil {
			removed++
			return nil
		}
		if errors.Is(err, ErrRecordNotFound) {
			return nil
		}
		return err
	})
	return removed, err
}

func (s *RedisTokenStore) ListAccessTokensByUser(
	ctx context.Context,
	username string,
	offset, limit int,
) ([]models.Token, int64, error) {
	setKey := s.key(keyTypeUser, username)
	values, err := s.client.ZRevRange(ctx, setKey, 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, fmt.Errorf("failed to list user tokens: %w", err)
	}

	now := s.clock.Now()
	var matched []models.Token
	for _, value := range values {
		token, err := s.load(ctx, value)
		if errors.Is(err, ErrRecordNotFound) {
			_ = s.client.ZRem(ctx, setKey, value).Err()
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		if token.IsRenewableAt(now) {
			matched = append(matched, *token)
		}
	}
	return pageTokens(matched, offset, limit), int64(len(matched)), nil
}

func (s *RedisTokenStore) CountActiveTokens(ctx context.Context, kind models.TokenKind) (int64, error) {
	now := s.clock.Now()
	var count int64
	err := s.scanTokens(ctx, func(token *models.Token) error {
		if token.Kind == kind && !token.IsExpiredAt(now) {
			count++
		}
		return nil
	})
	return count, err
}

func (s *RedisTokenStore) scanTokens(ctx context.Context, fn func(*models.Token) error) error {
	iter := s.client.Scan(ctx, 0, s.key(keyTypeToken, "*"), 100).Iterator()
	for iter.Next(ctx) {
		value := iter.Val()[len(s.key(keyTypeToken, "")):]
		token, err := s.load(ctx, value)
		if errors.Is(err, ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := fn(token); err != nil {
			return err
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan tokens: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *RedisTokenStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *RedisTokenStore) Close() error {
	return s.client.Close()
}

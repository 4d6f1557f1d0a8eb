package services

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-authgate/applink/internal/cache"
	"github.com/go-authgate/applink/internal/config"
	"github.com/go-authgate/applink/internal/core"
	"github.com/go-authgate/applink/internal/metrics"
	"github.com/go-authgate/applink/internal/models"
	"github.com/go-authgate/applink/internal/oauth1"
	"github.com/go-authgate/applink/internal/oauth1/oauth1test"
	"github.com/go-authgate/applink/internal/store"
	"github.com/go-authgate/applink/internal/util"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testEpoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

const (
	testConsumerKey       = "jenkins"
	testConsumerSecret    = "jenkins-secret" //nolint:gosec // test fixture
	testResourceURL       = "http://build.example.com/rest/api/1.0/whoami"
	testSecureResourceURL = "https://build.example.com/rest/api/1.0/whoami"
)

// fakeConsumers is an in-memory ConsumerStore.
type fakeConsumers struct {
	mu        sync.Mutex
	consumers map[string]models.Consumer
	err       error
}

func newFakeConsumers(consumers ...models.Consumer) *fakeConsumers {
	f := &fakeConsumers{consumers: make(map[string]models.Consumer)}
	for _, c := range consumers {
		f.consumers[c.Key] = c
	}
	return f
}

func (f *fakeConsumers) GetConsumer(_ context.Context, key string) (*models.Consumer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.consumers[key]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	return &c, nil
}

func (f *fakeConsumers) SaveConsumer(_ context.Context, consumer *models.Consumer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consumers[consumer.Key] = *consumer
	return nil
}

func (f *fakeConsumers) ListConsumers(context.Context) ([]models.Consumer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Consumer, 0, len(f.consumers))
	for _, c := range f.consumers {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeConsumers) DeleteConsumer(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.consumers[key]; !ok {
		return store.ErrRecordNotFound
	}
	delete(f.consumers, key)
	return nil
}

// scriptedRandom hands out fixed values in order.
type scriptedRandom struct {
	mu     sync.Mutex
	values []string
}

func (r *scriptedRandom) RandomAlphanumeric(int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		return "", errors.New("scripted randomizer exhausted")
	}
	v := r.values[0]
	r.values = r.values[1:]
	return v, nil
}

func testConfig() *config.Config {
	return &config.Config{
		RequestTokenTTL: 10 * time.Minute,
		AccessTokenTTL:  24 * time.Hour,
		SessionTTL:      30 * 24 * time.Hour,
		TimestampSkew:   5 * time.Minute,
		NonceTTL:        24 * time.Hour,
		MaxPages:        3,
		PageSize:        2,
	}
}

type testEnv struct {
	clock     *util.FixedClock
	cfg       *config.Config
	tokens    *store.MemoryTokenStore
	consumers *fakeConsumers
	nonces    *cache.MemoryCache[bool]
	audit     *AuditService

	tokenService  *TokenService
	authzService  *AuthorizationService
	authenticator *AuthenticatorService
}

func newTestEnv(t *testing.T, random core.Randomizer) *testEnv {
	t.Helper()
	if random == nil {
		random = util.CryptoRandomizer{}
	}

	env := &testEnv{
		clock: &util.FixedClock{T: testEpoch},
		cfg:   testConfig(),
		consumers: newFakeConsumers(models.Consumer{
			Key:           testConsumerKey,
			Name:          "Jenkins",
			Secret:        testConsumerSecret,
			TwoLOAllowed:  true,
			TwoLOExecutor: "builder",
		}),
		nonces: cache.NewMemoryCache[bool](),
		audit:  NewAuditService(nil, false, 0),
	}
	env.tokens = store.NewMemoryTokenStore(env.clock)
	m := metrics.NewNoopMetrics()

	env.tokenService = NewTokenService(
		env.tokens, env.consumers, random, env.clock, env.cfg, env.audit, m,
	)
	env.authzService = NewAuthorizationService(
		env.tokens, env.consumers, random, env.clock, env.audit, m,
	)
	env.authenticator = NewAuthenticatorService(
		env.tokens, env.consumers, env.nonces, env.clock, env.cfg, env.audit, m, zap.NewNop(),
	)
	return env
}

// authorizedRequestToken runs issuance and approval for alice.
func (e *testEnv) authorizedRequestToken(t *testing.T) *models.Token {
	t.Helper()
	ctx := context.Background()
	consumer, err := e.consumers.GetConsumer(ctx, testConsumerKey)
	require.NoError(t, err)

	rt, err := e.tokenService.IssueRequestToken(ctx, consumer, "https://jenkins.example.com/cb")
	require.NoError(t, err)
	authorized, err := e.authzService.Approve(ctx, rt.Value, &models.User{ID: "u-1", Username: "alice"})
	require.NoError(t, err)
	return authorized
}

// accessToken runs the whole dance and returns alice's access token.
func (e *testEnv) accessToken(t *testing.T) *models.Token {
	t.Helper()
	rt := e.authorizedRequestToken(t)
	at, err := e.tokenService.ExchangeRequestToken(
		context.Background(), testConsumerKey, rt.Value, rt.Verifier,
	)
	require.NoError(t, err)
	return at
}

// signedRequest builds and parses a request signed by signer at the env's
// current time.
func (e *testEnv) signedRequest(
	t *testing.T,
	method, target string,
	signer *oauth1test.Signer,
) *oauth1.Request {
	t.Helper()
	if signer.Timestamp.IsZero() {
		signer.Timestamp = e.clock.Now()
	}
	r := httptest.NewRequest(method, target, nil)
	signer.Sign(r)

	req, err := oauth1.ParseRequest(r, nil)
	require.NoError(t, err)
	return req
}

func consumerSigner() *oauth1test.Signer {
	return &oauth1test.Signer{ConsumerKey: testConsumerKey, ConsumerSecret: testConsumerSecret}
}

func nonce(i int) string {
	return fmt.Sprintf("nonce-%d", i)
}

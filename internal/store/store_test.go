package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-authgate/applink/internal/config"
	"github.com/go-authgate/applink/internal/core"
	"github.com/go-authgate/applink/internal/models"
	"github.com/go-authgate/applink/internal/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
)

// getTestConfig returns a minimal config for testing
func getTestConfig() *config.Config {
	return &config.Config{
		DefaultAdminPassword: "", // Use random password in tests
	}
}

// TestStoreWithSQLite tests store operations with SQLite
func TestStoreWithSQLite(t *testing.T) {
	testBasicOperations(t, "sqlite", nil)
}

// TestStoreWithPostgres tests store operations with PostgreSQL
func TestStoreWithPostgres(t *testing.T) {
	// Skip if running short tests or Docker is not available
	if testing.Short() {
		t.Skip("Skipping PostgreSQL integration test in short mode")
	}

	// Recover from panic if Docker is not available
	defer func() {
		if r := recover(); r != nil {
			t.Skipf("Skipping PostgreSQL test: Docker not available (panic: %v)", r)
		}
	}()

	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Skipf("Skipping PostgreSQL test: Docker not available (%v)", err)
		return
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	testBasicOperations(t, "postgres", pgContainer)

	t.Run("TokenStore", func(t *testing.T) {
		runTokenStoreSuite(t, func(t *testing.T, clock core.Clock) core.TokenStore {
			return createFreshStore(t, "postgres", pgContainer, WithClock(clock))
		})
	})
}

// createFreshStore creates a new store instance for test isolation
// For SQLite, each call creates a fresh :memory: database
// For PostgreSQL, each call creates a uniquely-named database in the container
func createFreshStore(
	t *testing.T,
	driver string,
	pgContainer *postgres.PostgresContainer,
	opts ...Option,
) *Store {
	t.Helper()

	var dsn string
	switch driver {
	case "sqlite":
		// SQLite :memory: creates a fresh database for each connection
		dsn = ":memory:"
	case "postgres":
		// Create a unique database name for this subtest using UUID
		dbName := "test_" + uuid.New().String()[:8] // Use first 8 chars of UUID

		ctx := context.Background()

		// Create the database
		createDBCmd := fmt.Sprintf("CREATE DATABASE %s", dbName)
		_, _, err := pgContainer.Exec(
			ctx,
			[]string{"psql", "-U", "testuser", "-d", "testdb", "-c", createDBCmd},
		)
		require.NoError(t, err)

		// Build connection string for the new database
		host, err := pgContainer.Host(ctx)
		require.NoError(t, err)
		port, err := pgContainer.MappedPort(ctx, "5432")
		require.NoError(t, err)
		dsn = fmt.Sprintf(
			"host=%s port=%s user=testuser password=testpass dbname=%s sslmode=disable",
			host, port.Port(), dbName,
		)

		// Clean up database after test
		t.Cleanup(func() {
			dropDBCmd := fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName)
			_, _, _ = pgContainer.Exec(
				context.Background(),
				[]string{"psql", "-U", "testuser", "-d", "testdb", "-c", dropDBCmd},
			)
		})
	default:
		t.Fatalf("unsupported driver: %s", driver)
	}

	store, err := New(driver, dsn, getTestConfig(), opts...)
	require.NoError(t, err)
	require.NotNil(t, store)

	return store
}

// testBasicOperations tests basic CRUD operations on the store
// Each subtest creates a fresh store instance for isolation
func testBasicOperations(t *testing.T, driver string, pgContainer *postgres.PostgresContainer) {
	ctx := context.Background()

	t.Run("CreateAndGetUser", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		user := &models.User{
			ID:           uuid.New().String(),
			Username:     "testuser",
			Email:        "testuser@example.com",
			PasswordHash: "hashedpassword",
			Role:         "user",
		}
		require.NoError(t, store.CreateUser(user))

		retrieved, err := store.GetUserByUsername("testuser")
		require.NoError(t, err)
		assert.Equal(t, user.ID, retrieved.ID)

		byID, err := store.GetUserByID(user.ID)
		require.NoError(t, err)
		assert.Equal(t, "testuser", byID.Username)
	})

	t.Run("CreateUser_UsernameConflict", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		err := store.CreateUser(&models.User{
			ID:       uuid.New().String(),
			Username: "admin",
			Email:    "other@example.com",
		})
		assert.ErrorIs(t, err, ErrUsernameConflict)
	})

	t.Run("GetUser_NotFound", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		_, err := store.GetUserByUsername("nobody")
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("SaveAndGetConsumer", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		consumer := &models.Consumer{
			Key:           "jenkins",
			Name:          "Jenkins",
			Secret:        "s3cret",
			CallbackURL:   "https://jenkins.example.com/oauth/callback",
			TwoLOAllowed:  true,
			TwoLOExecutor: "builder",
		}
		require.NoError(t, store.SaveConsumer(ctx, consumer))

		retrieved, err := store.GetConsumer(ctx, "jenkins")
		require.NoError(t, err)
		assert.Equal(t, "s3cret", retrieved.Secret)
		assert.True(t, retrieved.TwoLOAllowed)
		assert.Equal(t, "builder", retrieved.TwoLOExecutor)

		consumer.Name = "Jenkins CI"
		require.NoError(t, store.SaveConsumer(ctx, consumer))

		all, err := store.ListConsumers(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "Jenkins CI", all[0].Name)

		require.NoError(t, store.DeleteConsumer(ctx, "jenkins"))
		assert.ErrorIs(t, store.DeleteConsumer(ctx, "jenkins"), ErrRecordNotFound)

		_, err = store.GetConsumer(ctx, "jenkins")
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("AuditLogBatchAndCleanup", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		old := time.Now().Add(-48 * time.Hour)
		entries := []*models.AuditLog{
			{
				ID:        uuid.New().String(),
				EventType: models.EventRequestTokenIssued,
				EventTime: old,
				Severity:  models.SeverityInfo,
				Action:    "issue",
				Success:   true,
				CreatedAt: old,
			},
			{
				ID:        uuid.New().String(),
				EventType: models.EventNonceReplay,
				EventTime: time.Now(),
				Severity:  models.SeverityWarning,
				Action:    "replay",
				Details:   models.AuditDetails{"nonce": "abc"},
				CreatedAt: time.Now(),
			},
		}
		require.NoError(t, store.CreateAuditLogBatch(entries))

		replays, err := store.ListAuditLogs(AuditFilter{EventType: models.EventNonceReplay, Limit: 10})
		require.NoError(t, err)
		require.Len(t, replays, 1)
		assert.Equal(t, "abc", replays[0].Details["nonce"])

		deleted, err := store.DeleteOldAuditLogs(time.Now().Add(-24 * time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
	})

	t.Run("HealthCheck", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		assert.NoError(t, store.Health(ctx))
	})

	t.Run("ClockOption", func(t *testing.T) {
		clock := &util.FixedClock{T: testEpoch}
		store := createFreshStore(t, driver, pgContainer, WithClock(clock))

		require.NoError(t, store.PutToken(ctx, requestToken("req1", "jenkins", time.Minute)))
		_, err := store.GetToken(ctx, "req1")
		require.NoError(t, err)

		clock.Advance(time.Minute)
		_, err = store.GetToken(ctx, "req1")
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestGetDialector(t *testing.T) {
	tests := []struct {
		name        string
		driver      string
		dsn         string
		expectError bool
	}{
		{name: "sqlite memory", driver: "sqlite", dsn: ":memory:"},
		{name: "sqlite file", driver: "sqlite", dsn: "applink.db"},
		{name: "postgres", driver: "postgres", dsn: "host=localhost dbname=applink"},
		{name: "unsupported driver", driver: "mysql", dsn: "user:pass@tcp(localhost:3306)/db", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialector, err := GetDialector(tt.driver, tt.dsn)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, dialector)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, dialector)
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, ":memory:", sqliteDSN(":memory:"))
	assert.Equal(t, "applink.db?_busy_timeout=5000", sqliteDSN("applink.db"))
	assert.Equal(t, "file:applink.db?mode=rwc&_busy_timeout=5000", sqliteDSN("file:applink.db?mode=rwc"))
	assert.Equal(t, "applink.db?_busy_timeout=100", sqliteDSN("applink.db?_busy_timeout=100"))
}

func TestPagination(t *testing.T) {
	req := NewPageRequest(0, 10, 3)
	assert.Equal(t, 1, req.Number)
	assert.Equal(t, 0, req.Offset())

	req = NewPageRequest(7, 10, 3)
	assert.Equal(t, 3, req.Number, "clamped to MaxPages")
	assert.Equal(t, 20, req.Offset())

	p := CalculatePagination(45, NewPageRequest(2, 10, 100))
	assert.Equal(t, 5, p.TotalPages)
	assert.True(t, p.HasPrev)
	assert.True(t, p.HasNext)
	assert.Equal(t, 1, p.PrevPage)
	assert.Equal(t, 3, p.NextPage)

	p = CalculatePagination(45, NewPageRequest(3, 10, 3))
	assert.Equal(t, int64(45), p.Total)
	assert.Equal(t, 3, p.TotalPages, "capped at MaxPages")
	assert.False(t, p.HasNext)

	p = CalculatePagination(0, NewPageRequest(1, 10, 3))
	assert.Equal(t, 0, p.TotalPages)
	assert.Equal(t, 1, p.CurrentPage)
	assert.False(t, p.HasPrev)
	assert.False(t, p.HasNext)
}

// BenchmarkStoreOperations benchmarks basic store operations
func BenchmarkStoreOperations(b *testing.B) {
	store, err := New("sqlite", ":memory:", getTestConfig())
	require.NoError(b, err)

	b.Run("CreateUser", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			user := &models.User{
				ID:           uuid.New().String(),
				Username:     fmt.Sprintf("user%d", i),
				Email:        fmt.Sprintf("user%d@example.com", i),
				PasswordHash: "hashedpassword",
				Role:         "user",
			}
			_ = store.db.Create(user).Error
		}
	})

	b.Run("GetUserByUsername", func(b *testing.B) {
		// Create a user first
		user := &models.User{
			ID:           uuid.New().String(),
			Username:     "benchuser",
			Email:        "benchuser@example.com",
			PasswordHash: "hashedpassword",
			Role:         "user",
		}
		_ = store.db.Create(user).Error

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = store.GetUserByUsername("benchuser")
		}
	})
}

// TestDefaultAdminPassword_WhitespaceHandling tests that whitespace-only passwords are treated as empty
func TestDefaultAdminPassword_WhitespaceHandling(t *testing.T) {
	tests := []struct {
		name                 string
		defaultAdminPassword string
		shouldUseConfigured  bool
	}{
		{
			name:                 "valid password",
			defaultAdminPassword: "MyPassword123",
			shouldUseConfigured:  true,
		},
		{
			name:                 "password with leading/trailing spaces",
			defaultAdminPassword: "  MyPassword123  ",
			shouldUseConfigured:  true,
		},
		{
			name:                 "empty string",
			defaultAdminPassword: "",
			shouldUseConfigured:  false,
		},
		{
			name:                 "only spaces",
			defaultAdminPassword: "   ",
			shouldUseConfigured:  false,
		},
		{
			name:                 "only tabs",
			defaultAdminPassword: "\t\t\t",
			shouldUseConfigured:  false,
		},
		{
			name:                 "mixed whitespace",
			defaultAdminPassword: " \t\n\r ",
			shouldUseConfigured:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				DefaultAdminPassword: tt.defaultAdminPassword,
			}

			store, err := New("sqlite", ":memory:", cfg)
			require.NoError(t, err)
			require.NotNil(t, store)

			// Get the created admin user
			admin, err := store.GetUserByUsername("admin")
			require.NoError(t, err)
			require.NotNil(t, admin)

			// Verify the password works
			if tt.shouldUseConfigured {
				// Should use the trimmed configured password
				err = bcrypt.CompareHashAndPassword(
					[]byte(admin.PasswordHash),
					[]byte(strings.TrimSpace(tt.defaultAdminPassword)),
				)
				assert.NoError(t, err, "configured password should work after trimming")
			} else {
				// Should have generated a random password (we can't verify the exact password,
				// but we can verify it's not an empty password)
				assert.NotEmpty(t, admin.PasswordHash)

				// Verify that whitespace-only password does NOT work
				if tt.defaultAdminPassword != "" {
					err = bcrypt.CompareHashAndPassword(
						[]byte(admin.PasswordHash),
						[]byte(tt.defaultAdminPassword),
					)
					assert.Error(t, err, "whitespace-only password should not work")
				}
			}
		})
	}
}

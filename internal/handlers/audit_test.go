package handlers

import (
	"context"
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"github.com/go-authgate/applink/internal/models"
	"github.com/go-authgate/applink/internal/services"
	"github.com/go-authgate/applink/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withAuditRoutes(t *testing.T, app *testApp) *testApp {
	t.Helper()
	audit := services.NewAuditService(app.db, true, 10)
	t.Cleanup(func() { _ = audit.Shutdown(context.Background()) })

	for _, entry := range []services.AuditLogEntry{
		{
			EventType:     models.EventNonceReplay,
			Severity:      models.SeverityWarning,
			ConsumerKey:   "jenkins",
			ActorUsername: "consumer:jenkins",
			ActorIP:       "10.0.0.1",
			Action:        "Nonce replayed",
		},
		{
			EventType:     models.EventNonceReplay,
			Severity:      models.SeverityWarning,
			ConsumerKey:   "bamboo",
			ActorUsername: "consumer:bamboo",
			ActorIP:       "10.0.0.2",
			Action:        "Nonce replayed",
		},
		{
			EventType:     models.EventAccessTokenIssued,
			ConsumerKey:   "jenkins",
			ActorUsername: "alice",
			Action:        "Request token exchanged for access token",
			Success:       true,
		},
		{
			EventType:     models.EventLogout,
			ActorUsername: "alice",
			Action:        "Logged out",
			Success:       true,
		},
	} {
		require.NoError(t, audit.LogSync(context.Background(), entry))
	}

	h := NewAuditHandler(audit)
	app.router.GET("/admin/audit", h.ListEvents)
	app.router.GET("/admin/audit/export", h.ExportEvents)
	return app
}

func TestAuditHandler_ListEvents(t *testing.T) {
	app := withAuditRoutes(t, newTestApp(t))

	w := app.get("/admin/audit?event_type=NONCE_REPLAY")

	require.Equal(t, http.StatusOK, w.Code)
	got := decodeJSON(t, w)
	assert.Equal(t, "NONCE_REPLAY", got["event_type"])
	assert.EqualValues(t, 2, got["count"])
	logs, ok := got["logs"].([]any)
	require.True(t, ok)
	require.Len(t, logs, 2)
	for _, l := range logs {
		entry, ok := l.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "NONCE_REPLAY", entry["event_type"])
	}

	w = app.get("/admin/audit?event_type=NONCE_REPLAY&limit=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeJSON(t, w)["count"])

	w = app.get("/admin/audit?event_type=CONSUMER_REMOVED")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decodeJSON(t, w)["logs"])
}

func TestAuditHandler_ListEventsByConsumer(t *testing.T) {
	app := withAuditRoutes(t, newTestApp(t))

	w := app.get("/admin/audit?consumer_key=jenkins")
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeJSON(t, w)
	assert.EqualValues(t, 2, got["count"])

	w = app.get("/admin/audit?consumer_key=jenkins&event_type=NONCE_REPLAY")
	require.Equal(t, http.StatusOK, w.Code)
	got = decodeJSON(t, w)
	assert.EqualValues(t, 1, got["count"])
	logs, ok := got["logs"].([]any)
	require.True(t, ok)
	entry, ok := logs[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "jenkins", entry["consumer_key"])
	assert.Equal(t, "10.0.0.1", entry["actor_ip"])
}

func TestAuditHandler_RequiresFilter(t *testing.T) {
	app := withAuditRoutes(t, newTestApp(t))

	assert.Equal(t, http.StatusBadRequest, app.get("/admin/audit").Code)
	assert.Equal(t, http.StatusBadRequest, app.get("/admin/audit/export").Code)
}

func TestAuditHandler_ExportEvents(t *testing.T) {
	app := withAuditRoutes(t, newTestApp(t))

	w := app.get("/admin/audit/export?event_type=NONCE_REPLAY")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "audit_NONCE_REPLAY_")

	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Event Type", records[0][1])
	assert.Equal(t, "Consumer", records[0][3])

	consumers := []string{records[1][3], records[2][3]}
	assert.ElementsMatch(t, []string{"jenkins", "bamboo"}, consumers)
	ips := []string{records[1][5], records[2][5]}
	assert.ElementsMatch(t, []string{"10.0.0.1", "10.0.0.2"}, ips)
	assert.Equal(t, "No", records[1][9])
}

func TestExportName(t *testing.T) {
	assert.Equal(t, "NONCE_REPLAY", exportName(store.AuditFilter{EventType: models.EventNonceReplay}))
	assert.Equal(t, "jenkins_NONCE_REPLAY", exportName(store.AuditFilter{
		ConsumerKey: "jenkins",
		EventType:   models.EventNonceReplay,
	}))
	assert.Equal(t, "a_b_c", exportName(store.AuditFilter{ConsumerKey: "a/b\\"+"c"}))
}

package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nestline/nestline/pkg/domain/post"
	handlers "github.com/nestline/nestline/pkg/handlers/http"
	"github.com/nestline/nestline/pkg/infra/broadcast"
	"github.com/nestline/nestline/pkg/ratelimit"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blacklistResponse struct {
	BlacklistedIPs []struct {
		IP            string `json:"ip"`
		BlacklistedAt int64  `json:"blacklistedAt"`
		TimeRemaining int    `json:"timeRemaining"`
		RequestCount  int    `json:"requestCount"`
	} `json:"blacklistedIPs"`
}

func newAdminApp(ledger *ratelimit.Ledger, repo post.Repository, now func() time.Time) *fiber.App {
	app := fiber.New()
	logger := logrus.New()
	app.Delete("/api/admin/posts/:post_id", handlers.NewDeletePostHandler(logger, repo, broadcast.NewHub(logger)).Handle)
	app.Get("/api/admin/blacklist", handlers.NewListBlacklistHandler(logger, ledger, now).Handle)
	app.Post("/api/admin/blacklist", handlers.NewBlacklistActionHandler(logger, ledger, now).Handle)
	return app
}

func TestDeletePostHandler(t *testing.T) {
	repo := newFakeRepository()
	p := post.New("Victim", "@v", "delete me", time.Unix(1740730536, 0))
	require.NoError(t, repo.Save(context.Background(), p))
	app := newAdminApp(ratelimit.NewLedger(ratelimit.DefaultConfig(), nil), repo, time.Now)

	req := httptest.NewRequest(fiber.MethodDelete, "/api/admin/posts/"+p.ID, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = repo.Get(context.Background(), p.ID)
	assert.ErrorIs(t, err, post.ErrNotFound)

	req = httptest.NewRequest(fiber.MethodDelete, "/api/admin/posts/"+p.ID, nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListBlacklistHandler(t *testing.T) {
	fixed := time.Unix(1740730536, 0)
	ledger := ratelimit.NewLedger(ratelimit.DefaultConfig(), nil)
	ledger.ForceBlacklist("203.0.113.7", fixed)
	app := newAdminApp(ledger, newFakeRepository(), func() time.Time { return fixed.Add(30 * time.Minute) })

	req := httptest.NewRequest(fiber.MethodGet, "/api/admin/blacklist", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body blacklistResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.BlacklistedIPs, 1)
	entry := body.BlacklistedIPs[0]
	assert.Equal(t, "203.0.113.7", entry.IP)
	assert.Equal(t, fixed.UnixMilli(), entry.BlacklistedAt)
	assert.Equal(t, 1800, entry.TimeRemaining)
}

func TestListBlacklistHandler_EmptyList(t *testing.T) {
	app := newAdminApp(ratelimit.NewLedger(ratelimit.DefaultConfig(), nil), newFakeRepository(), time.Now)

	req := httptest.NewRequest(fiber.MethodGet, "/api/admin/blacklist", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw := make(map[string]json.RawMessage)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	// An empty list serializes as [], not null.
	assert.JSONEq(t, `[]`, string(raw["blacklistedIPs"]))
}

func TestBlacklistActionHandler_Blacklist(t *testing.T) {
	fixed := time.Unix(1740730536, 0)
	ledger := ratelimit.NewLedger(ratelimit.DefaultConfig(), nil)
	app := newAdminApp(ledger, newFakeRepository(), func() time.Time { return fixed })

	resp := postJSON(t, app, "/api/admin/blacklist", map[string]string{
		"ip":     "198.51.100.1",
		"action": "blacklist",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	outcome := ledger.Admit("198.51.100.1", fixed.Add(time.Second))
	assert.Equal(t, ratelimit.StatusBlacklisted, outcome.Status)
}

func TestBlacklistActionHandler_Unblacklist(t *testing.T) {
	fixed := time.Unix(1740730536, 0)
	ledger := ratelimit.NewLedger(ratelimit.DefaultConfig(), nil)
	ledger.ForceBlacklist("198.51.100.2", fixed)
	app := newAdminApp(ledger, newFakeRepository(), func() time.Time { return fixed })

	resp := postJSON(t, app, "/api/admin/blacklist", map[string]string{
		"ip":     "198.51.100.2",
		"action": "unblacklist",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	outcome := ledger.Admit("198.51.100.2", fixed.Add(time.Second))
	assert.Equal(t, ratelimit.StatusAllowed, outcome.Status)
}

func TestBlacklistActionHandler_Validation(t *testing.T) {
	app := newAdminApp(ratelimit.NewLedger(ratelimit.DefaultConfig(), nil), newFakeRepository(), time.Now)

	resp := postJSON(t, app, "/api/admin/blacklist", map[string]string{"action": "blacklist"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, app, "/api/admin/blacklist", map[string]string{"ip": "1.2.3.4"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, app, "/api/admin/blacklist", map[string]string{
		"ip":     "1.2.3.4",
		"action": "obliterate",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBlacklistActionHandler_UnblacklistUnknown(t *testing.T) {
	app := newAdminApp(ratelimit.NewLedger(ratelimit.DefaultConfig(), nil), newFakeRepository(), time.Now)

	resp := postJSON(t, app, "/api/admin/blacklist", map[string]string{
		"ip":     "203.0.113.250",
		"action": "unblacklist",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

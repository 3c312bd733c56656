package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raydebug/puretexaspoker-sub003/engine"
	"github.com/raydebug/puretexaspoker-sub003/internal/session"
	"github.com/raydebug/puretexaspoker-sub003/internal/storage"
	"github.com/raydebug/puretexaspoker-sub003/internal/ws"
	"github.com/raydebug/puretexaspoker-sub003/models"
)

type fixture struct {
	server *Server
	store  *storage.MemoryStore
	writer *storage.AsyncWriter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := log.New(io.Discard)

	store := storage.NewMemoryStore()
	writer := storage.NewAsyncWriter(store, logger)
	t.Cleanup(writer.Stop)

	registry := engine.NewRegistry(writer)
	hub := ws.NewHub(registry, logger)
	go hub.Run()
	t.Cleanup(hub.Close)
	return &fixture{
		server: New(registry, store, session.NewMemoryRegistry(), hub, logger),
		store:  store,
		writer: writer,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)
	return rec
}

func (f *fixture) decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func (f *fixture) createTable(t *testing.T, tableID string) {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/tables", gin.H{
		"tableId": tableID,
		"config": models.TableConfig{
			SmallBlind: 5,
			BigBlind:   10,
			MaxPlayers: 6,
			MinBuyIn:   100,
			MaxBuyIn:   2000,
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func (f *fixture) seatPlayer(t *testing.T, tableID, playerID string, seat, buyIn int) {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/tables/"+tableID+"/join", gin.H{"playerId": playerID})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/tables/"+tableID+"/seat", gin.H{
		"playerId": playerID, "seatNumber": seat, "buyIn": buyIn,
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateTableRejectsBadConfig(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/tables", gin.H{
		"tableId": "table-1",
		"config":  models.TableConfig{SmallBlind: 5, BigBlind: 10, MaxPlayers: -3},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Class string `json:"class"`
		Code  string `json:"code"`
	}
	f.decode(t, rec, &body)
	assert.Equal(t, "validation", body.Class)
	assert.Equal(t, "INVALID_CONFIG", body.Code)
}

func TestTableLifecycle(t *testing.T) {
	f := newFixture(t)
	f.createTable(t, "table-1")

	// Duplicate creation is a rule violation.
	rec := f.do(t, http.MethodPost, "/api/tables", gin.H{
		"tableId": "table-1",
		"config":  models.TableConfig{SmallBlind: 5, BigBlind: 10, MaxPlayers: 6},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	f.seatPlayer(t, "table-1", "alice", 1, 500)
	f.seatPlayer(t, "table-1", "bob", 2, 500)

	var tables []struct {
		TableID   string `json:"tableId"`
		Observers int    `json:"observers"`
		Seated    int    `json:"seated"`
	}
	rec = f.do(t, http.MethodGet, "/api/tables", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	f.decode(t, rec, &tables)
	require.Len(t, tables, 1)
	assert.Equal(t, 2, tables[0].Seated)
	assert.Equal(t, 0, tables[0].Observers)

	rec = f.do(t, http.MethodDelete, "/api/tables/table-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodDelete, "/api/tables/table-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSingleTableMembership(t *testing.T) {
	f := newFixture(t)
	f.createTable(t, "table-1")
	f.createTable(t, "table-2")

	rec := f.do(t, http.MethodPost, "/api/tables/table-1/join", gin.H{"playerId": "alice"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/tables/table-2/join", gin.H{"playerId": "alice"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	var body struct {
		Code string `json:"code"`
	}
	f.decode(t, rec, &body)
	assert.Equal(t, "ALREADY_JOINED", body.Code)

	// Seating requires membership.
	rec = f.do(t, http.MethodPost, "/api/tables/table-2/seat", gin.H{
		"playerId": "alice", "seatNumber": 1, "buyIn": 500,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// After leaving, joining elsewhere works.
	rec = f.do(t, http.MethodPost, "/api/tables/table-1/leave", gin.H{"playerId": "alice"})
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/tables/table-2/join", gin.H{"playerId": "alice"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandFlowAndRedaction(t *testing.T) {
	f := newFixture(t)
	f.createTable(t, "table-1")
	f.seatPlayer(t, "table-1", "alice", 1, 500)
	f.seatPlayer(t, "table-1", "bob", 2, 500)

	rec := f.do(t, http.MethodPost, "/api/tables/table-1/start", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var snapshot models.Table
	rec = f.do(t, http.MethodGet, "/api/tables/table-1/state?playerId=alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	f.decode(t, rec, &snapshot)
	require.NotNil(t, snapshot.CurrentHand)
	assert.NotEmpty(t, snapshot.CurrentHand.DeckCommitHash)

	for _, p := range snapshot.Players {
		if p == nil {
			continue
		}
		if p.PlayerID == "alice" {
			assert.Len(t, p.Cards, 2, "viewer sees own cards")
		} else {
			assert.Empty(t, p.Cards, "opponent cards are hidden")
		}
	}

	// A player acting out of turn is rejected with the taxonomy intact.
	current := snapshot.CurrentHand.CurrentPosition
	var actor, other string
	if snapshot.Players[current].PlayerID == "alice" {
		actor, other = "alice", "bob"
	} else {
		actor, other = "bob", "alice"
	}
	rec = f.do(t, http.MethodPost, "/api/tables/table-1/action", gin.H{
		"playerId": other, "action": "call",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/tables/table-1/action", gin.H{
		"playerId": actor, "action": "call",
	})
	assert.Equal(t, http.StatusAccepted, rec.Code)

	// Unknown action types die at the boundary.
	rec = f.do(t, http.MethodPost, "/api/tables/table-1/action", gin.H{
		"playerId": actor, "action": "splash",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyEndpoint(t *testing.T) {
	f := newFixture(t)

	commitment, err := engine.Commit("hand-1")
	require.NoError(t, err)

	order := make([]string, len(commitment.CardOrder))
	for i, card := range commitment.CardOrder {
		order[i] = card.String()
	}

	var result struct {
		Valid bool `json:"valid"`
	}
	rec := f.do(t, http.MethodPost, "/api/verify", gin.H{
		"handId":    "hand-1",
		"seed":      commitment.SeedHex(),
		"cardOrder": order,
		"hash":      commitment.Hash,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	f.decode(t, rec, &result)
	assert.True(t, result.Valid)

	// Swapping two cards invalidates the reveal.
	swapped := append([]string(nil), order...)
	swapped[0], swapped[1] = swapped[1], swapped[0]
	rec = f.do(t, http.MethodPost, "/api/verify", gin.H{
		"handId":    "hand-1",
		"seed":      commitment.SeedHex(),
		"cardOrder": swapped,
		"hash":      commitment.Hash,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	f.decode(t, rec, &result)
	assert.False(t, result.Valid)

	// Without an explicit hash the stored commitment is used.
	require.NoError(t, f.store.CommitDeck(context.Background(), "table-1", "hand-1", commitment.Hash))
	rec = f.do(t, http.MethodPost, "/api/verify", gin.H{
		"handId":    "hand-1",
		"seed":      commitment.SeedHex(),
		"cardOrder": order,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	f.decode(t, rec, &result)
	assert.True(t, result.Valid)
}

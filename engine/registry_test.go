package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raydebug/puretexaspoker-sub003/models"
)

type sinkLog struct {
	mu      sync.Mutex
	records []models.ActionRecord
	commits []string
	reveals []string
	upserts int
	seats   []string
	vacated []string
}

func (s *sinkLog) RecordAction(record models.ActionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
}

func (s *sinkLog) CommitDeck(tableID string, commitment Commitment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits = append(s.commits, commitment.HandID)
}

func (s *sinkLog) RevealDeck(handID, seedHex string, cardOrder []models.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reveals = append(s.reveals, handID)
}

func (s *sinkLog) UpsertSeat(tableID string, seatNumber int, player *models.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if player == nil {
		s.vacated = append(s.vacated, tableID)
		return
	}
	s.seats = append(s.seats, player.PlayerID)
}

func (s *sinkLog) UpsertTable(snapshot models.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
}

func registryConfig() models.TableConfig {
	return models.TableConfig{SmallBlind: 5, BigBlind: 10, MaxPlayers: 6, MinBuyIn: 100, MaxBuyIn: 2000}
}

func seatViaRegistry(t *testing.T, r *Registry, tableID, playerID string, seatNumber int) {
	t.Helper()
	require.NoError(t, r.Join(tableID, playerID, playerID))
	require.NoError(t, r.TakeSeat(tableID, playerID, seatNumber, 500))
}

func TestRegistryTableLifecycle(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.CreateTable("table-1", registryConfig()))

	assertCode(t, r.CreateTable("table-1", registryConfig()), models.CodeInvalidAction)
	assertCode(t, r.DestroyTable("table-x"), models.CodeTableNotFound)
	assert.Equal(t, []string{"table-1"}, r.ListTables())

	require.NoError(t, r.DestroyTable("table-1"))
	assert.Empty(t, r.ListTables())
}

func TestRegistrySingleTableMembership(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.CreateTable("table-1", registryConfig()))
	require.NoError(t, r.CreateTable("table-2", registryConfig()))

	require.NoError(t, r.Join("table-1", "alice", "alice"))
	// Joining the same table again is idempotent.
	require.NoError(t, r.Join("table-1", "alice", "alice"))
	assertCode(t, r.Join("table-2", "alice", "alice"), models.CodeAlreadyJoined)

	require.NoError(t, r.Leave("table-1", "alice"))
	require.NoError(t, r.Join("table-2", "alice", "alice"))
}

func TestRegistrySeatingRequiresMembership(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.CreateTable("table-1", registryConfig()))

	assertCode(t, r.TakeSeat("table-1", "alice", 0, 500), models.CodeNotAMember)
	assertCode(t, r.StandUp("table-1", "alice"), models.CodeNotAMember)
	assertCode(t, r.DispatchAction("table-1", "alice", models.Action{Type: models.ActionFold}), models.CodeNotAMember)

	seatViaRegistry(t, r, "table-1", "alice", 0)
	observers, seated, err := r.Counts("table-1")
	require.NoError(t, err)
	assert.Equal(t, 0, observers)
	assert.Equal(t, 1, seated)

	// Standing up keeps observer membership.
	require.NoError(t, r.StandUp("table-1", "alice"))
	assertCode(t, r.StandUp("table-1", "alice"), models.CodeNotSeated)
	observers, seated, err = r.Counts("table-1")
	require.NoError(t, err)
	assert.Equal(t, 1, observers)
	assert.Equal(t, 0, seated)
	assert.ElementsMatch(t, []string{"alice"}, r.Members("table-1"))
}

func TestRegistryDestroyReleasesMembership(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.CreateTable("table-1", registryConfig()))
	require.NoError(t, r.Join("table-1", "alice", "alice"))

	require.NoError(t, r.DestroyTable("table-1"))

	require.NoError(t, r.CreateTable("table-2", registryConfig()))
	require.NoError(t, r.Join("table-2", "alice", "alice"))
}

func drainEvents(r *Registry) []models.Event {
	var out []models.Event
	for {
		select {
		case e := <-r.Events():
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestRegistryDispatchDrivesHandAndPersistence(t *testing.T) {
	sink := &sinkLog{}
	r := NewRegistry(sink)
	require.NoError(t, r.CreateTable("table-1", registryConfig()))
	seatViaRegistry(t, r, "table-1", "alice", 0)
	seatViaRegistry(t, r, "table-1", "bob", 1)

	require.NoError(t, r.StartHand("table-1"))

	sink.mu.Lock()
	require.Len(t, sink.commits, 1)
	handID := sink.commits[0]
	assert.Equal(t, 2, sink.upserts, "snapshot persisted per seating")
	assert.Equal(t, []string{"alice", "bob"}, sink.seats)
	sink.mu.Unlock()

	// One player folds: the hand finishes and the reveal is persisted.
	snap, err := r.SnapshotFor("table-1", "alice")
	require.NoError(t, err)
	actorPos := snap.CurrentHand.CurrentPosition
	actor := snap.Players[actorPos].PlayerID

	require.NoError(t, r.DispatchAction("table-1", actor, models.Action{Type: models.ActionFold}))

	sink.mu.Lock()
	assert.Equal(t, []string{handID}, sink.reveals)
	assert.NotEmpty(t, sink.records)
	sink.mu.Unlock()

	events := drainEvents(r)
	names := make(map[string]int)
	for _, e := range events {
		names[e.Event]++
	}
	assert.NotZero(t, names["deckCommitted"])
	assert.NotZero(t, names["handFinished"])
	assert.NotZero(t, names["gameState"], "state rebroadcast after accepted mutation")
}

func TestRegistryCreateTableValidatesConfig(t *testing.T) {
	r := NewRegistry(nil)

	for name, config := range map[string]models.TableConfig{
		"negative seats":  {SmallBlind: 5, BigBlind: 10, MaxPlayers: -3},
		"one seat":        {SmallBlind: 5, BigBlind: 10, MaxPlayers: 1},
		"too many seats":  {SmallBlind: 5, BigBlind: 10, MaxPlayers: 23},
		"zero blinds":     {MaxPlayers: 6},
		"inverted blinds": {SmallBlind: 20, BigBlind: 10, MaxPlayers: 6},
		"inverted buy-in": {SmallBlind: 5, BigBlind: 10, MaxPlayers: 6, MinBuyIn: 500, MaxBuyIn: 100},
	} {
		err := r.CreateTable("table-x", config)
		require.Error(t, err, name)
		ge, ok := models.AsGameError(err)
		require.True(t, ok, name)
		assert.Equal(t, models.ClassValidation, ge.Class, name)
		assert.Equal(t, models.CodeInvalidConfig, ge.Code, name)
	}

	require.NoError(t, r.CreateTable("table-x", registryConfig()))
}

func TestRegistryCountsAfterMidHandLeave(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.CreateTable("table-1", registryConfig()))
	seatViaRegistry(t, r, "table-1", "alice", 0)
	seatViaRegistry(t, r, "table-1", "bob", 1)
	require.NoError(t, r.StartHand("table-1"))

	// Mid-hand the leaver's seat stays occupied until the hand boundary,
	// but their membership ends immediately.
	require.NoError(t, r.Leave("table-1", "alice"))

	observers, seated, err := r.Counts("table-1")
	require.NoError(t, err)
	assert.Equal(t, 0, observers, "observer count never goes negative")
	assert.Equal(t, 2, seated)
}

func TestRegistryStandUpClearsSeatRecord(t *testing.T) {
	sink := &sinkLog{}
	r := NewRegistry(sink)
	require.NoError(t, r.CreateTable("table-1", registryConfig()))
	seatViaRegistry(t, r, "table-1", "alice", 0)

	require.NoError(t, r.StandUp("table-1", "alice"))

	sink.mu.Lock()
	assert.Equal(t, []string{"table-1"}, sink.vacated)
	sink.mu.Unlock()
}

func TestRegistryDisconnectExpiryReleasesSeat(t *testing.T) {
	r := NewRegistry(nil)
	r.Supervisor().SetGrace(20 * time.Millisecond)
	require.NoError(t, r.CreateTable("table-1", registryConfig()))
	seatViaRegistry(t, r, "table-1", "alice", 0)

	r.Disconnected("alice")
	assert.Eventually(t, func() bool {
		_, seated, err := r.Counts("table-1")
		return err == nil && seated == 0
	}, time.Second, 5*time.Millisecond)

	// Back to observer, not ejected from the table.
	assert.ElementsMatch(t, []string{"alice"}, r.Members("table-1"))
}

func TestRegistryReconnectKeepsSeat(t *testing.T) {
	r := NewRegistry(nil)
	r.Supervisor().SetGrace(30 * time.Millisecond)
	require.NoError(t, r.CreateTable("table-1", registryConfig()))
	seatViaRegistry(t, r, "table-1", "alice", 0)

	r.Disconnected("alice")
	r.Reconnected("alice")
	time.Sleep(80 * time.Millisecond)

	_, seated, err := r.Counts("table-1")
	require.NoError(t, err)
	assert.Equal(t, 1, seated)
}

func TestRegistryDisconnectedObserverIsDropped(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.CreateTable("table-1", registryConfig()))
	require.NoError(t, r.Join("table-1", "alice", "alice"))

	r.Disconnected("alice")
	assert.Empty(t, r.Members("table-1"))
	// Unknown players are ignored.
	r.Disconnected("ghost")
}

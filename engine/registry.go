package engine

import (
	"fmt"
	"sync"

	"github.com/raydebug/puretexaspoker-sub003/models"
)

// Store is the write-behind persistence contract the registry feeds. Calls
// are fire-and-forget from the core's perspective: implementations retry in
// the background and a storage failure never corrupts in-memory authority.
type Store interface {
	RecordAction(record models.ActionRecord)
	CommitDeck(tableID string, commitment Commitment)
	RevealDeck(handID, seedHex string, cardOrder []models.Card)
	UpsertSeat(tableID string, seatNumber int, player *models.Player)
	UpsertTable(snapshot models.Table)
}

type tableEntry struct {
	table   *Table
	members map[string]string // playerID -> nickname, observers and seated alike
}

// Registry owns the set of tables, the membership per table, and routes
// actions to the right hand state machine. Its own lookup map is guarded by
// its own lock, independent of the per-table serialization each Table holds.
type Registry struct {
	mu         sync.RWMutex
	tables     map[string]*tableEntry
	membership map[string]string // playerID -> tableID, single table per player
	store      Store
	supervisor *Supervisor
	events     chan models.Event
}

func NewRegistry(store Store) *Registry {
	r := &Registry{
		tables:     make(map[string]*tableEntry),
		membership: make(map[string]string),
		store:      store,
		events:     make(chan models.Event, 256),
	}
	r.supervisor = NewSupervisor(DefaultGracePeriod, r.handleDisconnectExpiry)
	return r
}

// Supervisor exposes the disconnect supervisor for liveness wiring.
func (r *Registry) Supervisor() *Supervisor {
	return r.supervisor
}

// Events is the outbound stream the transport layer consumes for broadcast.
func (r *Registry) Events() <-chan models.Event {
	return r.events
}

func (r *Registry) CreateTable(tableID string, config models.TableConfig) error {
	if err := ValidateConfig(config); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tables[tableID]; exists {
		return models.NewRuleViolation(models.CodeInvalidAction, fmt.Sprintf("table %s already exists", tableID))
	}

	onTimeout := func(playerID string) {
		r.mu.RLock()
		entry := r.tables[tableID]
		r.mu.RUnlock()
		if entry == nil {
			return
		}
		if err := entry.table.HandleTimeout(playerID); err == nil {
			r.broadcastState(tableID)
		}
	}

	table := NewTable(tableID, config, onTimeout, func(event models.Event) {
		r.forwardEvent(event)
	})
	if r.store != nil {
		table.Game().SetRecordSink(r.store.RecordAction)
		table.Game().SetCommitSink(func(c Commitment) {
			r.store.CommitDeck(tableID, c)
		})
	}
	r.tables[tableID] = &tableEntry{table: table, members: make(map[string]string)}
	return nil
}

func (r *Registry) DestroyTable(tableID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.tables[tableID]
	if !exists {
		return models.NewNotFoundError(models.CodeTableNotFound, fmt.Sprintf("table %s not found", tableID))
	}
	for playerID := range entry.members {
		delete(r.membership, playerID)
	}
	delete(r.tables, tableID)
	return nil
}

// Join makes the player an observer of the table. A player may be joined to
// at most one table across the whole system.
func (r *Registry) Join(tableID, playerID, nickname string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.tables[tableID]
	if !exists {
		return models.NewNotFoundError(models.CodeTableNotFound, fmt.Sprintf("table %s not found", tableID))
	}
	if joined, ok := r.membership[playerID]; ok && joined != tableID {
		return models.NewRuleViolation(models.CodeAlreadyJoined,
			fmt.Sprintf("player %s already joined table %s", playerID, joined))
	}
	r.membership[playerID] = tableID
	entry.members[playerID] = nickname
	return nil
}

// Leave removes the player from the table entirely: seat first if they hold
// one, then observer membership.
func (r *Registry) Leave(tableID, playerID string) error {
	r.mu.Lock()
	entry, exists := r.tables[tableID]
	if !exists {
		r.mu.Unlock()
		return models.NewNotFoundError(models.CodeTableNotFound, fmt.Sprintf("table %s not found", tableID))
	}
	if _, member := entry.members[playerID]; !member {
		r.mu.Unlock()
		return models.NewRuleViolation(models.CodeNotAMember,
			fmt.Sprintf("player %s is not a member of table %s", playerID, tableID))
	}
	delete(entry.members, playerID)
	delete(r.membership, playerID)
	table := entry.table
	r.mu.Unlock()

	if table.IsSeated(playerID) {
		_, seatNumber, _ := table.Seat(playerID)
		if err := table.RemovePlayer(playerID); err != nil {
			return err
		}
		r.persistSeatRelease(tableID, playerID, table, seatNumber)
		r.broadcastState(tableID)
	}
	return nil
}

// TakeSeat seats a joined observer. Membership is required first.
func (r *Registry) TakeSeat(tableID, playerID string, seatNumber, buyIn int) error {
	entry, nickname, err := r.memberEntry(tableID, playerID)
	if err != nil {
		return err
	}
	if err := entry.table.AddPlayer(playerID, nickname, seatNumber, buyIn); err != nil {
		return err
	}
	if r.store != nil {
		if seat, num, ok := entry.table.Seat(playerID); ok {
			r.store.UpsertSeat(tableID, num, &seat)
		}
		r.store.UpsertTable(entry.table.Game().Snapshot())
	}
	r.broadcastState(tableID)
	return nil
}

// StandUp releases the player's seat; they remain an observer.
func (r *Registry) StandUp(tableID, playerID string) error {
	entry, _, err := r.memberEntry(tableID, playerID)
	if err != nil {
		return err
	}
	if !entry.table.IsSeated(playerID) {
		return models.NewRuleViolation(models.CodeNotSeated,
			fmt.Sprintf("player %s is not seated at table %s", playerID, tableID))
	}
	_, seatNumber, _ := entry.table.Seat(playerID)
	if err := entry.table.RemovePlayer(playerID); err != nil {
		return err
	}
	r.persistSeatRelease(tableID, playerID, entry.table, seatNumber)
	r.broadcastState(tableID)
	return nil
}

func (r *Registry) StartHand(tableID string) error {
	entry, err := r.entry(tableID)
	if err != nil {
		return err
	}
	if err := entry.table.StartHand(); err != nil {
		return err
	}
	r.broadcastState(tableID)
	return nil
}

// DispatchAction forwards one validated player intent to the table's hand
// state machine and rebroadcasts the resulting snapshot on success.
func (r *Registry) DispatchAction(tableID, playerID string, action models.Action) error {
	entry, _, err := r.memberEntry(tableID, playerID)
	if err != nil {
		return err
	}
	if err := entry.table.ApplyAction(playerID, action); err != nil {
		return err
	}
	r.broadcastState(tableID)
	return nil
}

// SnapshotFor returns the table state redacted for one viewer.
func (r *Registry) SnapshotFor(tableID, viewerID string) (models.Table, error) {
	entry, err := r.entry(tableID)
	if err != nil {
		return models.Table{}, err
	}
	return entry.table.Game().SnapshotFor(viewerID), nil
}

// Members lists every joined player id for a table, seated and observing.
func (r *Registry) Members(tableID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, exists := r.tables[tableID]
	if !exists {
		return nil
	}
	out := make([]string, 0, len(entry.members))
	for playerID := range entry.members {
		out = append(out, playerID)
	}
	return out
}

// Counts reports observers (members without a seat) and seated players, used
// for monitoring.
func (r *Registry) Counts(tableID string) (observers, seated int, err error) {
	entry, err := r.entry(tableID)
	if err != nil {
		return 0, 0, err
	}
	r.mu.RLock()
	memberIDs := make([]string, 0, len(entry.members))
	for id := range entry.members {
		memberIDs = append(memberIDs, id)
	}
	r.mu.RUnlock()

	// Counted per member: a seat can outlive membership until the hand
	// boundary when its player left mid-hand, so subtraction would go wrong.
	for _, id := range memberIDs {
		if !entry.table.IsSeated(id) {
			observers++
		}
	}
	return observers, entry.table.SeatedCount(), nil
}

func (r *Registry) ListTables() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.tables))
	for id := range r.tables {
		ids = append(ids, id)
	}
	return ids
}

// Disconnected starts the grace-period clock for a seated player. Observers
// are dropped immediately; there is nothing to protect for them.
func (r *Registry) Disconnected(playerID string) {
	r.mu.RLock()
	tableID, joined := r.membership[playerID]
	var entry *tableEntry
	if joined {
		entry = r.tables[tableID]
	}
	r.mu.RUnlock()

	if entry == nil {
		return
	}
	if !entry.table.IsSeated(playerID) {
		_ = r.Leave(tableID, playerID)
		return
	}
	r.supervisor.Disconnected(playerID)
}

// Reconnected cancels any pending grace timer; seat and hole cards are left
// untouched.
func (r *Registry) Reconnected(playerID string) {
	r.supervisor.Reconnected(playerID)
}

// handleDisconnectExpiry fires when a grace period runs out: the player is
// folded out of any live hand, their seat is released at the hand boundary
// and they drop back to observer.
func (r *Registry) handleDisconnectExpiry(playerID string) {
	r.mu.RLock()
	tableID, joined := r.membership[playerID]
	var entry *tableEntry
	if joined {
		entry = r.tables[tableID]
	}
	r.mu.RUnlock()

	if entry == nil || !entry.table.IsSeated(playerID) {
		return
	}
	_, seatNumber, _ := entry.table.Seat(playerID)
	if err := entry.table.RemovePlayer(playerID); err != nil {
		return
	}
	r.persistSeatRelease(tableID, playerID, entry.table, seatNumber)
	r.broadcastState(tableID)
}

// persistSeatRelease clears the seat record once the seat actually frees.
// Mid-hand removals are deferred to the hand boundary, so the seat may still
// be occupied here; the table snapshot carries the interim state either way.
func (r *Registry) persistSeatRelease(tableID, playerID string, table *Table, seatNumber int) {
	if r.store == nil {
		return
	}
	if !table.IsSeated(playerID) {
		r.store.UpsertSeat(tableID, seatNumber, nil)
	}
	r.store.UpsertTable(table.Game().Snapshot())
}

func (r *Registry) entry(tableID string) (*tableEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, exists := r.tables[tableID]
	if !exists {
		return nil, models.NewNotFoundError(models.CodeTableNotFound, fmt.Sprintf("table %s not found", tableID))
	}
	return entry, nil
}

func (r *Registry) memberEntry(tableID, playerID string) (*tableEntry, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, exists := r.tables[tableID]
	if !exists {
		return nil, "", models.NewNotFoundError(models.CodeTableNotFound, fmt.Sprintf("table %s not found", tableID))
	}
	nickname, member := entry.members[playerID]
	if !member {
		return nil, "", models.NewRuleViolation(models.CodeNotAMember,
			fmt.Sprintf("player %s is not a member of table %s", playerID, tableID))
	}
	return entry, nickname, nil
}

// broadcastState queues a state-changed notification; the transport layer
// pulls per-viewer redacted snapshots. Broadcast is fire-and-forget and never
// blocks the next action.
func (r *Registry) broadcastState(tableID string) {
	select {
	case r.events <- models.Event{Event: "gameState", TableID: tableID}:
	default:
	}
}

// forwardEvent relays engine events outward, tapping the ones persistence
// cares about on the way through.
func (r *Registry) forwardEvent(event models.Event) {
	if r.store != nil && event.Event == "handFinished" {
		if data, ok := event.Data.(models.HandFinishedEvent); ok {
			r.store.RevealDeck(data.HandID, data.Seed, data.CardOrder)
		}
	}
	select {
	case r.events <- event:
	default:
	}
}

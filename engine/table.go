package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/raydebug/puretexaspoker-sub003/models"
)

// Table owns one table's seats and its hand state machine. Every mutation,
// seat changes included, runs under the same per-table mutex the game holds
// across its validate-mutate sequence, so no two actions against one table
// ever interleave.
type Table struct {
	model *models.Table
	game  *Game
	mu    *sync.Mutex
}

// maxSeats is the most players one deck can serve: two hole cards each plus
// three burns and five community cards must fit in 52.
const maxSeats = 22

// ValidateConfig rejects table configurations a hand could never run under.
func ValidateConfig(config models.TableConfig) error {
	if config.MaxPlayers < 2 || config.MaxPlayers > maxSeats {
		return models.NewValidationError(models.CodeInvalidConfig,
			fmt.Sprintf("maxPlayers must be between 2 and %d, got %d", maxSeats, config.MaxPlayers))
	}
	if config.SmallBlind <= 0 || config.BigBlind <= 0 {
		return models.NewValidationError(models.CodeInvalidConfig,
			fmt.Sprintf("blinds must be positive, got %d/%d", config.SmallBlind, config.BigBlind))
	}
	if config.SmallBlind > config.BigBlind {
		return models.NewValidationError(models.CodeInvalidConfig,
			fmt.Sprintf("small blind %d exceeds big blind %d", config.SmallBlind, config.BigBlind))
	}
	if config.MinBuyIn < 0 || config.MaxBuyIn < 0 {
		return models.NewValidationError(models.CodeInvalidConfig, "buy-in limits cannot be negative")
	}
	if config.MaxBuyIn > 0 && config.MinBuyIn > config.MaxBuyIn {
		return models.NewValidationError(models.CodeInvalidConfig,
			fmt.Sprintf("min buy-in %d exceeds max buy-in %d", config.MinBuyIn, config.MaxBuyIn))
	}
	return nil
}

func NewTable(tableID string, config models.TableConfig, onTimeout func(string), onEvent func(models.Event)) *Table {
	if config.ActionTimeout < 0 {
		config.ActionTimeout = 0
	}

	model := &models.Table{
		TableID:   tableID,
		Config:    config,
		Players:   make([]*models.Player, config.MaxPlayers),
		CreatedAt: time.Now(),
		CurrentHand: &models.CurrentHand{
			Phase:          models.PhaseWaiting,
			DealerPosition: -1,
			CommunityCards: make([]models.Card, 0, 5),
			Pot:            models.Pot{Main: 0, Side: []models.SidePot{}},
		},
	}

	mu := &sync.Mutex{}
	t := &Table{model: model, mu: mu}
	t.game = newGameWithLock(model, mu, onTimeout, onEvent)
	return t
}

// AddPlayer seats a player. Seat numbers count from zero up to maxSeats-1;
// the buy-in must land inside the table's configured range.
func (t *Table) AddPlayer(playerID, playerName string, seatNumber, buyIn int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if seatNumber < 0 || seatNumber >= t.model.Config.MaxPlayers {
		return models.NewValidationError(models.CodeSeatOutOfRange,
			fmt.Sprintf("seat %d out of range 0..%d", seatNumber, t.model.Config.MaxPlayers-1))
	}
	if t.model.Players[seatNumber] != nil {
		return models.NewRuleViolation(models.CodeSeatTaken, fmt.Sprintf("seat %d already occupied", seatNumber))
	}
	for i, p := range t.model.Players {
		if p != nil && p.PlayerID == playerID {
			return models.NewRuleViolation(models.CodeAlreadySeated,
				fmt.Sprintf("player %s is already seated at position %d", playerID, i))
		}
	}
	if buyIn <= 0 {
		return models.NewRuleViolation(models.CodeInvalidBuyIn, "buy-in must be positive")
	}
	if t.model.Config.MinBuyIn > 0 && buyIn < t.model.Config.MinBuyIn {
		return models.NewRuleViolation(models.CodeInvalidBuyIn,
			fmt.Sprintf("buy-in %d is below minimum %d", buyIn, t.model.Config.MinBuyIn))
	}
	if t.model.Config.MaxBuyIn > 0 && buyIn > t.model.Config.MaxBuyIn {
		return models.NewRuleViolation(models.CodeInvalidBuyIn,
			fmt.Sprintf("buy-in %d exceeds maximum %d", buyIn, t.model.Config.MaxBuyIn))
	}

	player := models.NewPlayer(playerID, playerName, seatNumber, buyIn)
	if t.model.HandInProgress() {
		// Joiners mid-hand wait for the next deal.
		player.Status = models.StatusSittingOut
		player.JoinPending = true
	}
	t.model.Players[seatNumber] = player
	return nil
}

// RemovePlayer releases a seat. Mid-hand the player is folded and the release
// is deferred to the hand boundary so chips they already committed stay in the
// pot; between hands the seat frees immediately.
func (t *Table) RemovePlayer(playerID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, player := range t.model.Players {
		if player == nil || player.PlayerID != playerID {
			continue
		}
		if t.model.HandInProgress() && player.Status != models.StatusSittingOut {
			t.game.foldLocked(player)
			player.LeavePending = true
			return nil
		}
		t.model.Players[i] = nil
		return nil
	}
	return models.NewNotFoundError(models.CodePlayerNotFound, fmt.Sprintf("player %s not seated", playerID))
}

func (t *Table) SitOut(playerID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	player := findPlayerByID(t.model.Players, playerID)
	if player == nil {
		return models.NewNotFoundError(models.CodePlayerNotFound, fmt.Sprintf("player %s not seated", playerID))
	}
	if t.model.HandInProgress() && player.Status == models.StatusActive {
		t.game.foldLocked(player)
	}
	player.Status = models.StatusSittingOut
	return nil
}

func (t *Table) SitIn(playerID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	player := findPlayerByID(t.model.Players, playerID)
	if player == nil {
		return models.NewNotFoundError(models.CodePlayerNotFound, fmt.Sprintf("player %s not seated", playerID))
	}
	if player.Chips > 0 && player.Status == models.StatusSittingOut {
		player.Status = models.StatusActive
	}
	return nil
}

func (t *Table) AddChips(playerID string, amount int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if amount <= 0 {
		return models.NewValidationError(models.CodeInvalidAmount, "amount must be positive")
	}
	player := findPlayerByID(t.model.Players, playerID)
	if player == nil {
		return models.NewNotFoundError(models.CodePlayerNotFound, fmt.Sprintf("player %s not seated", playerID))
	}
	if t.model.Config.MaxBuyIn > 0 && player.Chips+amount > t.model.Config.MaxBuyIn {
		return models.NewRuleViolation(models.CodeInvalidBuyIn,
			fmt.Sprintf("adding %d chips would exceed max buy-in of %d (current: %d)",
				amount, t.model.Config.MaxBuyIn, player.Chips))
	}
	player.AddChips(amount)
	return nil
}

func (t *Table) StartHand() error {
	return t.game.StartNewHand()
}

func (t *Table) ApplyAction(playerID string, action models.Action) error {
	return t.game.ApplyAction(playerID, action)
}

func (t *Table) HandleTimeout(playerID string) error {
	return t.game.HandleTimeout(playerID)
}

func (t *Table) Game() *Game {
	return t.game
}

// SeatedCount returns the number of occupied seats.
func (t *Table) SeatedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	count := 0
	for _, p := range t.model.Players {
		if p != nil {
			count++
		}
	}
	return count
}

// IsSeated reports whether the player occupies a seat at this table.
func (t *Table) IsSeated(playerID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return findPlayerByID(t.model.Players, playerID) != nil
}

// Seat returns a copy of the player's seat record and its number.
func (t *Table) Seat(playerID string) (models.Player, int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	player := findPlayerByID(t.model.Players, playerID)
	if player == nil {
		return models.Player{}, 0, false
	}
	out := *player
	out.Cards = append([]models.Card(nil), player.Cards...)
	return out, player.SeatNumber, true
}

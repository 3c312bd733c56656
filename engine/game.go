package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raydebug/puretexaspoker-sub003/models"
)

// Game runs one table's hands end to end: deck commitment, blinds, betting
// rounds, showdown and payout. Every mutation goes through g.mu so actions
// against one table are fully serialized even when requests arrive
// concurrently from different connections.
type Game struct {
	table       *models.Table
	commitment  *Commitment
	startStacks map[string]int
	baseline    int
	actionTimer *time.Timer
	timerGen    uint64
	onTimeout   func(playerID string)
	onEvent     func(models.Event)
	onRecord    func(models.ActionRecord)
	onCommit    func(Commitment)
	mu          *sync.Mutex
}

func NewGame(table *models.Table, onTimeout func(string), onEvent func(models.Event)) *Game {
	return newGameWithLock(table, &sync.Mutex{}, onTimeout, onEvent)
}

// newGameWithLock shares the table's serialization mutex: seat changes and
// hand actions for one table are mutually exclusive by construction.
func newGameWithLock(table *models.Table, mu *sync.Mutex, onTimeout func(string), onEvent func(models.Event)) *Game {
	return &Game{
		table:     table,
		mu:        mu,
		onTimeout: onTimeout,
		onEvent:   onEvent,
	}
}

// SetRecordSink registers the append-only sink for accepted actions.
func (g *Game) SetRecordSink(fn func(models.ActionRecord)) {
	g.onRecord = fn
}

// SetCommitSink registers the sink that persists deck commitments.
func (g *Game) SetCommitSink(fn func(Commitment)) {
	g.onCommit = fn
}

// StartNewHand begins the next hand: it requires at least two eligible
// players, commits a fresh deck before anything is dealt, rotates the button,
// posts blinds (capped at the short stack, which is an implicit all-in) and
// deals two hole cards per active seat.
func (g *Game) StartNewHand() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.table.HandInProgress() {
		return models.NewRuleViolation(models.CodeHandInProgress, "current hand still in progress")
	}

	g.table.Winners = nil

	// Seats that busted or left during the last hand free up before the
	// next deal.
	for i, p := range g.table.Players {
		if p == nil {
			continue
		}
		if p.LeavePending {
			g.table.Players[i] = nil
			continue
		}
		if p.Chips <= 0 {
			g.table.Players[i] = nil
			g.emit(models.Event{
				Event:   "playerBusted",
				TableID: g.table.TableID,
				Data:    models.PlayerBustedEvent{PlayerID: p.PlayerID, PlayerName: p.PlayerName},
			})
			continue
		}
		if p.JoinPending {
			p.JoinPending = false
			p.Status = models.StatusActive
		}
	}

	if countPlayers(g.table.Players, isEligibleForHand) < 2 {
		g.setWaiting()
		return models.NewRuleViolation(models.CodeNotEnoughPlayers, "need at least 2 players to start a hand")
	}

	for _, p := range g.table.Players {
		if p != nil {
			p.Reset()
		}
	}

	handID := uuid.NewString()
	commitment, err := Commit(handID)
	if err != nil {
		g.setWaiting()
		return fmt.Errorf("commit deck: %w", err)
	}
	g.commitment = commitment
	g.table.Deck = models.NewDeckFromOrder(commitment.CardOrder)

	// Conservation baseline and rollback snapshot, taken before any chip
	// moves for this hand.
	g.baseline = 0
	g.startStacks = make(map[string]int)
	for _, p := range g.table.Players {
		if p != nil {
			g.baseline += p.Chips
			g.startStacks[p.PlayerID] = p.Chips
		}
	}

	pf := newPositionFinder(g.table.Players)
	prevDealer := -1
	handNumber := 1
	if g.table.CurrentHand != nil {
		prevDealer = g.table.CurrentHand.DealerPosition
		handNumber = g.table.CurrentHand.HandNumber + 1
	}
	dealerPos := pf.findNextDealer(prevDealer)
	activePlayers := countPlayers(g.table.Players, isEligibleForHand)
	sbPos, bbPos := pf.calculateBlindPositions(dealerPos, activePlayers)

	g.table.Players[dealerPos].IsDealer = true

	sb := g.table.Players[sbPos]
	sb.IsSmallBlind = true
	sb.PlaceBet(g.table.Config.SmallBlind)
	sb.HasActedThisRound = true

	bb := g.table.Players[bbPos]
	bb.IsBigBlind = true
	bb.PlaceBet(g.table.Config.BigBlind)
	// The big blind keeps the option to raise.
	bb.HasActedThisRound = false

	g.table.CurrentHand = &models.CurrentHand{
		HandID:             handID,
		HandNumber:         handNumber,
		Phase:              models.PhasePreflop,
		DealerPosition:     dealerPos,
		SmallBlindPosition: sbPos,
		BigBlindPosition:   bbPos,
		CommunityCards:     make([]models.Card, 0, 5),
		BurnedCards:        make([]models.Card, 0, 3),
		Pot:                BuildPots(g.table.Players),
		CurrentBet:         g.table.Config.BigBlind,
		MinRaise:           g.table.Config.BigBlind,
		DeckCommitHash:     commitment.Hash,
	}

	// The hash is public before any card leaves the deck.
	if g.onCommit != nil {
		g.onCommit(*commitment)
	}
	g.emit(models.Event{
		Event:   "deckCommitted",
		TableID: g.table.TableID,
		Data: models.DeckCommittedEvent{
			HandID:     handID,
			HandNumber: handNumber,
			CommitHash: commitment.Hash,
		},
	})

	if err := g.dealHoleCards(dealerPos); err != nil {
		g.setWaiting()
		return fmt.Errorf("deal hole cards: %v", err)
	}

	if g.isBettingRoundComplete() {
		// Blinds can put everyone all-in before anyone gets to act.
		g.advanceToNextRound()
		return nil
	}

	g.table.CurrentHand.CurrentPosition = newPositionFinder(g.table.Players).findNextActor(bbPos)
	g.startActionTimer()
	return nil
}

// dealHoleCards hands out two cards per active seat, one at a time, starting
// left of the button.
func (g *Game) dealHoleCards(dealerPos int) error {
	pf := newPositionFinder(g.table.Players)
	order := make([]*models.Player, 0, len(g.table.Players))
	pos := dealerPos
	for i := 0; i < len(g.table.Players); i++ {
		pos = pf.findNext(pos, isActive)
		p := g.table.Players[pos]
		if p == nil || containsPlayer(order, p) {
			continue
		}
		order = append(order, p)
	}
	for round := 0; round < 2; round++ {
		for _, p := range order {
			card, err := g.table.Deck.Deal()
			if err != nil {
				return err
			}
			p.Cards = append(p.Cards, card)
		}
	}
	return nil
}

func containsPlayer(list []*models.Player, p *models.Player) bool {
	for _, q := range list {
		if q == p {
			return true
		}
	}
	return false
}

// ApplyAction validates and applies one player action. Illegal actions are
// rejected synchronously with a typed error and no state mutation.
func (g *Game) ApplyAction(playerID string, action models.Action) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.table.HandInProgress() {
		return models.NewRuleViolation(models.CodeNoActiveHand, "hand is not in progress")
	}

	hand := g.table.CurrentHand
	player := findPlayerByID(g.table.Players, playerID)
	if player == nil {
		return models.NewNotFoundError(models.CodePlayerNotFound, fmt.Sprintf("player %s not at table", playerID))
	}

	current := g.table.Players[hand.CurrentPosition]
	if current == nil || current.PlayerID != playerID {
		return models.NewRuleViolation(models.CodeNotYourTurn, "not your turn")
	}
	if !canAct(player) {
		return models.NewRuleViolation(models.CodeNotYourTurn, "player cannot act in current state")
	}

	if err := g.applyValidatedAction(player, action); err != nil {
		return err
	}

	g.stopActionTimer()
	player.HasActedThisRound = true
	g.recordAction(player)
	hand.Pot = BuildPots(g.table.Players)

	if err := g.checkConservation(); err != nil {
		g.abortHand(err)
		return err
	}

	if g.isBettingRoundComplete() {
		g.advanceToNextRound()
	} else {
		hand.CurrentPosition = newPositionFinder(g.table.Players).findNextActor(hand.CurrentPosition)
		g.startActionTimer()
	}
	return nil
}

// applyValidatedAction checks legality for the action type and mutates only
// once the action is known to be legal.
func (g *Game) applyValidatedAction(player *models.Player, action models.Action) error {
	hand := g.table.CurrentHand

	switch action.Type {
	case models.ActionFold:
		player.Status = models.StatusFolded
		player.LastAction = models.ActionFold
		player.LastActionAmount = 0

	case models.ActionCheck:
		if player.Bet < hand.CurrentBet {
			return models.NewRuleViolation(models.CodeCannotCheck, "cannot check - must call, raise, or fold")
		}
		player.LastAction = models.ActionCheck
		player.LastActionAmount = 0

	case models.ActionCall:
		callAmount := hand.CurrentBet - player.Bet
		if callAmount >= player.Chips {
			// Short call is an all-in for the remaining stack.
			callAmount = player.Chips
			player.PlaceBet(callAmount)
			player.LastAction = models.ActionAllIn
			player.LastActionAmount = callAmount
		} else {
			player.PlaceBet(callAmount)
			player.LastAction = models.ActionCall
			player.LastActionAmount = callAmount
		}

	case models.ActionBet:
		if hand.CurrentBet > 0 {
			return models.NewRuleViolation(models.CodeInvalidAction, "cannot bet into an open bet - raise instead")
		}
		return g.applyRaiseTo(player, action.Amount)

	case models.ActionRaise:
		return g.applyRaiseTo(player, action.Amount)

	case models.ActionAllIn:
		if player.Chips <= 0 {
			return models.NewRuleViolation(models.CodeInsufficientChips, "player has no chips to go all-in")
		}
		g.applyAllIn(player)

	default:
		return models.NewValidationError(models.CodeInvalidAction, fmt.Sprintf("unknown action %q", action.Type))
	}
	return nil
}

// applyRaiseTo handles bet and raise with "raise to" semantics: amount is the
// player's target total bet for the street.
func (g *Game) applyRaiseTo(player *models.Player, amount int) error {
	hand := g.table.CurrentHand

	if amount <= hand.CurrentBet {
		return models.NewRuleViolation(models.CodeRaiseTooSmall,
			fmt.Sprintf("raise to %d does not exceed current bet %d", amount, hand.CurrentBet))
	}
	amountToAdd := amount - player.Bet
	if amountToAdd <= 0 {
		return models.NewRuleViolation(models.CodeRaiseTooSmall,
			fmt.Sprintf("raise to %d is not above the %d already committed", amount, player.Bet))
	}

	if amountToAdd >= player.Chips {
		// Not enough behind for the stated raise: it becomes an all-in.
		g.applyAllIn(player)
		return nil
	}

	minTotalBet := hand.CurrentBet + hand.MinRaise
	if amount < minTotalBet {
		return models.NewRuleViolation(models.CodeRaiseTooSmall,
			fmt.Sprintf("raise must be at least %d (current bet %d + min raise %d)",
				minTotalBet, hand.CurrentBet, hand.MinRaise))
	}

	player.PlaceBet(amountToAdd)
	player.LastAction = models.ActionRaise
	player.LastActionAmount = amountToAdd
	hand.MinRaise = player.Bet - hand.CurrentBet
	hand.CurrentBet = player.Bet
	g.reopenBetting(player)
	return nil
}

// applyAllIn commits the whole stack. A full raise reopens the betting round;
// a short all-in only lifts the current bet without giving earlier actors a
// fresh option.
func (g *Game) applyAllIn(player *models.Player) {
	hand := g.table.CurrentHand
	minTotalBet := hand.CurrentBet + hand.MinRaise

	allInAmount := player.Chips
	player.PlaceBet(allInAmount)
	player.LastAction = models.ActionAllIn
	player.LastActionAmount = allInAmount

	if player.Bet >= minTotalBet {
		hand.MinRaise = player.Bet - hand.CurrentBet
		hand.CurrentBet = player.Bet
		g.reopenBetting(player)
	} else if player.Bet > hand.CurrentBet {
		hand.CurrentBet = player.Bet
	}
}

func (g *Game) reopenBetting(except *models.Player) {
	for _, p := range g.table.Players {
		if p != nil && p != except && canAct(p) {
			p.HasActedThisRound = false
		}
	}
}

// isBettingRoundComplete reports whether every non-folded, non-all-in player
// has matched the current bet and acted since the last full raise.
func (g *Game) isBettingRoundComplete() bool {
	hand := g.table.CurrentHand
	activeCount := 0
	needToAct := 0
	for _, p := range g.table.Players {
		if !isActive(p) {
			continue
		}
		activeCount++
		if p.Status == models.StatusAllIn {
			continue
		}
		if !p.HasActedThisRound || p.Bet < hand.CurrentBet {
			needToAct++
		}
	}
	return activeCount <= 1 || needToAct == 0
}

// advanceToNextRound closes a betting round: collect bets into pots, burn a
// card, deal the street, and hand the action to the first active seat after
// the button. Early exits: a single contender wins uncontested; when at most
// one player can still act, the remaining streets run out with no betting.
func (g *Game) advanceToNextRound() {
	hand := g.table.CurrentHand
	hand.Pot = BuildPots(g.table.Players)

	for _, p := range g.table.Players {
		if p != nil {
			p.Bet = 0
			if p.Status != models.StatusAllIn {
				p.HasActedThisRound = false
			}
		}
	}
	hand.CurrentBet = 0
	hand.MinRaise = g.table.Config.BigBlind

	if countPlayers(g.table.Players, isNotFolded) <= 1 {
		g.completeHand()
		return
	}

	if countPlayers(g.table.Players, canAct) <= 1 {
		if err := g.runRemainingStreets(); err != nil {
			g.abortHand(models.NewIntegrityFailure(models.CodeDeckMismatch, err.Error()))
			return
		}
		g.completeHand()
		return
	}

	if hand.Phase == models.PhaseRiver {
		g.completeHand()
		return
	}

	if err := g.dealNextStreet(); err != nil {
		g.abortHand(models.NewIntegrityFailure(models.CodeDeckMismatch, err.Error()))
		return
	}

	hand.CurrentPosition = newPositionFinder(g.table.Players).findNextActor(hand.DealerPosition)
	g.startActionTimer()
}

// dealNextStreet burns one card and deals the next phase's community cards.
func (g *Game) dealNextStreet() error {
	hand := g.table.CurrentHand

	burn, err := g.table.Deck.Deal()
	if err != nil {
		return err
	}
	hand.BurnedCards = append(hand.BurnedCards, burn)

	switch hand.Phase {
	case models.PhasePreflop:
		cards, err := g.table.Deck.DealMultiple(3)
		if err != nil {
			return err
		}
		hand.CommunityCards = append(hand.CommunityCards, cards...)
		hand.Phase = models.PhaseFlop
	case models.PhaseFlop:
		card, err := g.table.Deck.Deal()
		if err != nil {
			return err
		}
		hand.CommunityCards = append(hand.CommunityCards, card)
		hand.Phase = models.PhaseTurn
	case models.PhaseTurn:
		card, err := g.table.Deck.Deal()
		if err != nil {
			return err
		}
		hand.CommunityCards = append(hand.CommunityCards, card)
		hand.Phase = models.PhaseRiver
	default:
		return fmt.Errorf("no street to deal from phase %s", hand.Phase)
	}
	return nil
}

func (g *Game) runRemainingStreets() error {
	for g.table.CurrentHand.Phase != models.PhaseRiver {
		if err := g.dealNextStreet(); err != nil {
			return err
		}
	}
	return nil
}

// completeHand settles and distributes the pots, applies payouts, verifies
// chip conservation and reveals the deck commitment for verification.
func (g *Game) completeHand() {
	hand := g.table.CurrentHand
	hand.Phase = models.PhaseShowdown
	g.stopActionTimer()

	tiers := SettlePots(g.table.Players)
	hand.Pot = BuildPots(g.table.Players)
	g.table.Winners = DistributePots(tiers, g.table.Players, hand.CommunityCards, hand.DealerPosition)

	for _, winner := range g.table.Winners {
		if p := findPlayerByID(g.table.Players, winner.PlayerID); p != nil {
			p.Chips += winner.Amount
		}
	}

	total := 0
	for _, p := range g.table.Players {
		if p != nil {
			total += p.Chips
		}
	}
	if total != g.baseline {
		g.abortHand(models.NewIntegrityFailure(models.CodePotConservation,
			fmt.Sprintf("payout conservation violated: stacks %d, committed %d", total, g.baseline)))
		return
	}

	hand.Phase = models.PhaseFinished

	finished := models.HandFinishedEvent{
		HandID:     hand.HandID,
		Winners:    g.table.Winners,
		CommitHash: hand.DeckCommitHash,
	}
	if g.commitment != nil {
		finished.Seed = g.commitment.SeedHex()
		finished.CardOrder = g.commitment.CardOrder
	}
	g.emit(models.Event{Event: "handFinished", TableID: g.table.TableID, Data: finished})
}

// checkConservation enforces the conservation law: live stacks plus all
// committed chips must equal the chips present at hand start.
func (g *Game) checkConservation() error {
	total := 0
	for _, p := range g.table.Players {
		if p != nil {
			total += p.Chips + p.TotalInvested
		}
	}
	if total != g.baseline {
		return models.NewIntegrityFailure(models.CodePotConservation,
			fmt.Sprintf("chips in play %d do not match committed %d", total, g.baseline))
	}
	return nil
}

// abortHand is the integrity-failure path: the hand is voided, every stack is
// restored to its pre-hand value and the failure is surfaced, never swallowed.
func (g *Game) abortHand(cause error) {
	g.stopActionTimer()
	for _, p := range g.table.Players {
		if p == nil {
			continue
		}
		if stack, ok := g.startStacks[p.PlayerID]; ok {
			p.Chips = stack
		}
		p.Bet = 0
		p.TotalInvested = 0
	}
	g.table.Winners = nil
	hand := g.table.CurrentHand
	hand.Phase = models.PhaseFinished
	hand.Pot = models.Pot{Main: 0, Side: []models.SidePot{}}

	data := models.IntegrityFailureEvent{HandID: hand.HandID, Message: cause.Error()}
	if ge, ok := models.AsGameError(cause); ok {
		data.Code = string(ge.Code)
	}
	g.emit(models.Event{Event: "integrityFailure", TableID: g.table.TableID, Data: data})
}

func (g *Game) recordAction(player *models.Player) {
	hand := g.table.CurrentHand
	hand.ActionSequence++
	totalCommitted := 0
	for _, p := range g.table.Players {
		if p != nil {
			totalCommitted += p.TotalInvested
		}
	}
	record := models.ActionRecord{
		ID:           uuid.NewString(),
		HandID:       hand.HandID,
		TableID:      g.table.TableID,
		PlayerID:     player.PlayerID,
		SeatNumber:   player.SeatNumber,
		Phase:        hand.Phase,
		Action:       player.LastAction,
		Amount:       player.LastActionAmount,
		ResultingPot: totalCommitted,
		Sequence:     hand.ActionSequence,
		CreatedAt:    time.Now(),
	}
	if g.onRecord != nil {
		g.onRecord(record)
	}
}

// foldLocked folds a player outside the normal action path (seat release,
// sit-out, disconnect expiry). The caller already holds the table mutex.
// All-in players have no live action to forfeit and are left in the hand.
func (g *Game) foldLocked(player *models.Player) {
	if !canAct(player) {
		return
	}
	player.Status = models.StatusFolded
	player.LastAction = models.ActionFold
	player.LastActionAmount = 0
	player.HasActedThisRound = true

	if !g.table.HandInProgress() {
		return
	}
	hand := g.table.CurrentHand
	wasActing := hand.CurrentPosition >= 0 &&
		hand.CurrentPosition < len(g.table.Players) &&
		g.table.Players[hand.CurrentPosition] == player
	if wasActing {
		g.stopActionTimer()
	}
	if g.isBettingRoundComplete() {
		g.advanceToNextRound()
	} else if wasActing {
		hand.CurrentPosition = newPositionFinder(g.table.Players).findNextActor(hand.CurrentPosition)
		g.startActionTimer()
	}
}

// HandleTimeout auto-acts for the seat that let its action clock expire:
// check when checking is legal, fold otherwise.
func (g *Game) HandleTimeout(playerID string) error {
	g.mu.Lock()
	if !g.table.HandInProgress() {
		g.mu.Unlock()
		return nil
	}
	player := findPlayerByID(g.table.Players, playerID)
	auto := models.ActionFold
	if player != nil && player.Bet >= g.table.CurrentHand.CurrentBet {
		auto = models.ActionCheck
	}
	g.mu.Unlock()
	return g.ApplyAction(playerID, models.Action{Type: auto})
}

// CurrentActorID returns the seat currently on the clock, or empty when no
// betting round is open. Exactly one actor exists while a round is open.
func (g *Game) CurrentActorID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.table.HandInProgress() {
		return ""
	}
	pos := g.table.CurrentHand.CurrentPosition
	if pos < 0 || pos >= len(g.table.Players) {
		return ""
	}
	if p := g.table.Players[pos]; p != nil && canAct(p) {
		return p.PlayerID
	}
	return ""
}

// Commitment returns the current hand's deck commitment.
func (g *Game) Commitment() *Commitment {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.commitment
}

func (g *Game) setWaiting() {
	if g.table.CurrentHand == nil {
		g.table.CurrentHand = &models.CurrentHand{Phase: models.PhaseWaiting, DealerPosition: -1}
		return
	}
	g.table.CurrentHand.Phase = models.PhaseWaiting
}

func (g *Game) emit(event models.Event) {
	if g.onEvent != nil {
		g.onEvent(event)
	}
}

func (g *Game) startActionTimer() {
	if g.table.Config.ActionTimeout <= 0 {
		return
	}
	hand := g.table.CurrentHand
	pos := hand.CurrentPosition
	if pos < 0 || pos >= len(g.table.Players) {
		return
	}
	current := g.table.Players[pos]
	if current == nil || !canAct(current) {
		return
	}

	timeout := time.Duration(g.table.Config.ActionTimeout) * time.Second
	deadline := time.Now().Add(timeout)
	hand.ActionDeadline = &deadline

	g.emit(models.Event{
		Event:   "actionRequired",
		TableID: g.table.TableID,
		Data: models.ActionRequiredEvent{
			PlayerID: current.PlayerID,
			Deadline: deadline.Format(time.RFC3339),
		},
	})

	g.timerGen++
	gen := g.timerGen
	playerID := current.PlayerID
	g.actionTimer = time.AfterFunc(timeout, func() {
		g.mu.Lock()
		stale := gen != g.timerGen
		g.mu.Unlock()
		if stale {
			return
		}
		if g.onTimeout != nil {
			g.onTimeout(playerID)
		}
	})
}

func (g *Game) stopActionTimer() {
	g.timerGen++
	if g.actionTimer != nil {
		g.actionTimer.Stop()
		g.actionTimer = nil
	}
	if g.table.CurrentHand != nil {
		g.table.CurrentHand.ActionDeadline = nil
	}
}

package engine

import "github.com/raydebug/puretexaspoker-sub003/models"

type playerFilter func(*models.Player) bool

func isActive(p *models.Player) bool {
	return p != nil && p.Status != models.StatusFolded && p.Status != models.StatusSittingOut
}

func isNotFolded(p *models.Player) bool {
	return p != nil && p.Status != models.StatusFolded
}

func canAct(p *models.Player) bool {
	return isActive(p) && p.Status != models.StatusAllIn
}

func isEligibleForHand(p *models.Player) bool {
	return p != nil && p.Status != models.StatusSittingOut && p.Chips > 0
}

func countPlayers(players []*models.Player, filter playerFilter) int {
	count := 0
	for _, p := range players {
		if filter(p) {
			count++
		}
	}
	return count
}

func findPlayerByID(players []*models.Player, playerID string) *models.Player {
	for _, p := range players {
		if p != nil && p.PlayerID == playerID {
			return p
		}
	}
	return nil
}

// positionFinder computes acting order over the table's seat slice. Seats are
// scanned clockwise (ascending seat number, wrapping).
type positionFinder struct {
	players []*models.Player
}

func newPositionFinder(players []*models.Player) *positionFinder {
	return &positionFinder{players: players}
}

func (pf *positionFinder) findNext(currentPos int, filter playerFilter) int {
	maxPlayers := len(pf.players)
	if maxPlayers == 0 {
		return 0
	}
	nextPos := (currentPos + 1) % maxPlayers
	for checked := 0; checked < maxPlayers; checked++ {
		if filter(pf.players[nextPos]) {
			return nextPos
		}
		nextPos = (nextPos + 1) % maxPlayers
	}
	return currentPos
}

func (pf *positionFinder) findNextActive(currentPos int) int {
	return pf.findNext(currentPos, isActive)
}

func (pf *positionFinder) findNextActor(currentPos int) int {
	return pf.findNext(currentPos, canAct)
}

// findNextDealer rotates the button clockwise to the next seat that can play
// a hand, skipping empty and busted seats. A negative position means this is
// the first hand and the button goes to the first eligible seat.
func (pf *positionFinder) findNextDealer(dealerPos int) int {
	maxPlayers := len(pf.players)
	if maxPlayers == 0 {
		return 0
	}
	if dealerPos < 0 || dealerPos >= maxPlayers {
		for i, p := range pf.players {
			if isEligibleForHand(p) {
				return i
			}
		}
		return 0
	}
	return pf.findNext(dealerPos, isEligibleForHand)
}

// calculateBlindPositions returns the small and big blind seats for a dealer
// position. Heads-up the dealer posts the small blind and the other player
// the big blind.
func (pf *positionFinder) calculateBlindPositions(dealerPos, activePlayers int) (int, int) {
	if len(pf.players) == 0 {
		return 0, 0
	}
	if activePlayers == 2 {
		return dealerPos, pf.findNextActive(dealerPos)
	}
	sbPos := pf.findNextActive(dealerPos)
	bbPos := pf.findNextActive(sbPos)
	return sbPos, bbPos
}

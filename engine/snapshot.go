package engine

import "github.com/raydebug/puretexaspoker-sub003/models"

// Snapshot returns an immutable deep copy of the table state, safe to hand to
// the transport layer while the table keeps mutating.
func (g *Game) Snapshot() models.Table {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

// SnapshotFor returns a snapshot redacted for one recipient: hole cards other
// than the viewer's stay hidden until the hand finishes, at which point the
// non-folded contenders' cards are revealed.
func (g *Game) SnapshotFor(viewerID string) models.Table {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := g.snapshotLocked()
	finished := snap.CurrentHand == nil || snap.CurrentHand.Phase == models.PhaseFinished ||
		snap.CurrentHand.Phase == models.PhaseShowdown
	for _, p := range snap.Players {
		if p == nil || p.PlayerID == viewerID {
			continue
		}
		if finished && p.Status != models.StatusFolded && p.Status != models.StatusSittingOut {
			continue
		}
		p.Cards = nil
	}
	return snap
}

func (g *Game) snapshotLocked() models.Table {
	snap := *g.table
	snap.Deck = nil

	snap.Players = make([]*models.Player, len(g.table.Players))
	for i, p := range g.table.Players {
		if p == nil {
			continue
		}
		cp := *p
		cp.Cards = append([]models.Card(nil), p.Cards...)
		snap.Players[i] = &cp
	}

	if g.table.CurrentHand != nil {
		hand := *g.table.CurrentHand
		hand.CommunityCards = append([]models.Card(nil), g.table.CurrentHand.CommunityCards...)
		hand.BurnedCards = nil
		hand.Pot = models.Pot{
			Main: g.table.CurrentHand.Pot.Main,
			Side: append([]models.SidePot(nil), g.table.CurrentHand.Pot.Side...),
		}
		snap.CurrentHand = &hand
	}

	snap.Winners = append([]models.Winner(nil), g.table.Winners...)
	return snap
}

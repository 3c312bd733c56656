package models

import "fmt"

type Suit string
type Rank string

const (
	Hearts   Suit = "h"
	Diamonds Suit = "d"
	Clubs    Suit = "c"
	Spades   Suit = "s"
)

const (
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "T"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
	Ace   Rank = "A"
)

type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

func (c Card) Value() int {
	switch c.Rank {
	case Two:
		return 2
	case Three:
		return 3
	case Four:
		return 4
	case Five:
		return 5
	case Six:
		return 6
	case Seven:
		return 7
	case Eight:
		return 8
	case Nine:
		return 9
	case Ten:
		return 10
	case Jack:
		return 11
	case Queen:
		return 12
	case King:
		return 13
	case Ace:
		return 14
	}
	return 0
}

// ParseCard reads the two-character wire form, e.g. "Ah" or "Ts".
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	card := Card{Rank: Rank(s[:1]), Suit: Suit(s[1:])}
	if card.Value() == 0 {
		return Card{}, fmt.Errorf("invalid card rank in %q", s)
	}
	switch card.Suit {
	case Hearts, Diamonds, Clubs, Spades:
	default:
		return Card{}, fmt.Errorf("invalid card suit in %q", s)
	}
	return card, nil
}

// StandardDeck returns the 52 unique cards in a fixed canonical order.
// Shuffling is the shuffle service's job, never the deck's.
func StandardDeck() []Card {
	cards := make([]Card, 0, 52)
	suits := []Suit{Hearts, Diamonds, Clubs, Spades}
	ranks := []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}
	for _, suit := range suits {
		for _, rank := range ranks {
			cards = append(cards, Card{Rank: rank, Suit: suit})
		}
	}
	return cards
}

// Deck draws from the front of a committed card order. It is created once per
// hand from the shuffle service's commitment and is never reshuffled.
type Deck struct {
	cards []Card
}

func NewDeckFromOrder(order []Card) *Deck {
	cards := make([]Card, len(order))
	copy(cards, order)
	return &Deck{cards: cards}
}

func (d *Deck) Deal() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, fmt.Errorf("deck is empty - no more cards to deal")
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, nil
}

func (d *Deck) DealMultiple(n int) ([]Card, error) {
	if len(d.cards) < n {
		return nil, fmt.Errorf("not enough cards in deck: requested %d, available %d", n, len(d.cards))
	}
	cards := make([]Card, n)
	for i := 0; i < n; i++ {
		card, err := d.Deal()
		if err != nil {
			return nil, err
		}
		cards[i] = card
	}
	return cards, nil
}

func (d *Deck) CardsRemaining() int {
	return len(d.cards)
}

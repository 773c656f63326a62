package settlement

import (
	"errors"
	"testing"

	"github.com/fastprodman/wagerledger/internal/games"
	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func round(g model.GameType, mutate func(*model.Settings)) model.Round {
	s := games.Defaults(g)
	if mutate != nil {
		mutate(&s)
	}

	return model.Round{ID: uuid.New(), GameType: g, Settings: s}
}

func wager(userID uint64, stake int64, sel model.Selection) model.Wager {
	return model.Wager{
		ID:        uuid.New(),
		UserID:    userID,
		Stake:     stake,
		Currency:  model.CurrencyPoints,
		Selection: sel,
		Status:    model.WagerPending,
	}
}

func TestTwoOutcomeMarket(t *testing.T) {
	t.Parallel()

	rnd := round(model.GameVersus, nil)
	o := model.Outcome{WinningTeam: 1}

	w := wager(1, 100, model.Selection{Team: 1})
	w.LockedOdds = decimal.NewNullDecimal(decimal.RequireFromString("2.00"))

	c, err := TwoOutcomeMarket{}.Classify(rnd, o, w)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if c.Status != model.WagerWon || c.Payout() != 180 || c.Fee != 20 {
		t.Fatalf("winner: %+v", c)
	}

	w.Selection.Team = 2
	c, err = TwoOutcomeMarket{}.Classify(rnd, o, w)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if c.Status != model.WagerLost || c.Payout() != 0 {
		t.Fatalf("loser: %+v", c)
	}

	w.Selection.Team = 1
	w.LockedOdds = decimal.NullDecimal{}
	_, err = TwoOutcomeMarket{}.Classify(rnd, o, w)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("missing odds: want ErrValidation, got %v", err)
	}
}

func TestTieredNumberMatch_Lucky2(t *testing.T) {
	t.Parallel()

	rnd := round(model.GameLucky2, func(s *model.Settings) { s.Jackpot = 1000 })
	o := model.Outcome{Numbers: []int{7, 45}}

	tests := []struct {
		name     string
		numbers  []int
		status   model.WagerStatus
		tier     string
		payout   int64
		currency model.Currency
	}{
		{name: "one_match", numbers: []int{7, 50}, status: model.WagerWon, tier: games.TierMatch, payout: 250, currency: model.CurrencyPoints},
		{name: "two_matches", numbers: []int{45, 7}, status: model.WagerWon, tier: games.TierJackpot, payout: 1000, currency: model.CurrencyCash},
		{name: "no_match", numbers: []int{1, 2}, status: model.WagerLost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := TieredNumberMatch{}.Classify(rnd, o, wager(1, 10, model.Selection{Numbers: tt.numbers}))
			if err != nil {
				t.Fatalf("classify: %v", err)
			}
			if c.Status != tt.status || c.Tier != tt.tier || c.Payout() != tt.payout || c.Currency() != tt.currency {
				t.Fatalf("got %+v", c)
			}
		})
	}
}

func TestTieredNumberMatch_Lucky2WithoutJackpot(t *testing.T) {
	t.Parallel()

	rnd := round(model.GameLucky2, nil)

	c, err := TieredNumberMatch{}.Classify(rnd, model.Outcome{Numbers: []int{7, 45}}, wager(1, 10, model.Selection{Numbers: []int{7, 45}}))
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if c.Status != model.WagerWon || c.Tier != games.TierJackpot || len(c.Credits) != 0 {
		t.Fatalf("unfunded jackpot: %+v", c)
	}
}

func TestTieredNumberMatch_HorseRace(t *testing.T) {
	t.Parallel()

	rnd := round(model.GameHorseRace, nil)
	o := model.Outcome{Placings: &model.Placings{
		Grand:          []int{7},
		FirstRunnerUp:  []int{8, 9},
		SecondRunnerUp: []int{10, 11, 12, 13, 14},
		Consolation: []int{
			20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31, 32,
			33, 34, 35, 36, 37, 38, 39, 40, 41, 42, 43, 44,
		},
	}}

	t.Run("mixed_ticket", func(t *testing.T) {
		t.Parallel()

		w := wager(1, 55, model.Selection{Picks: []model.NumberPick{
			{Number: 42, Amount: 30},
			{Number: 7, Amount: 20},
			{Number: 99, Amount: 5},
		}})

		c, err := TieredNumberMatch{}.Classify(rnd, o, w)
		if err != nil {
			t.Fatalf("classify: %v", err)
		}
		if c.Status != model.WagerWon || c.Tier != games.TierGrand {
			t.Fatalf("verdict: %+v", c)
		}
		if len(c.Credits) != 2 {
			t.Fatalf("credits: %+v", c.Credits)
		}
		if c.Credits[0] != (Credit{Currency: model.CurrencyCash, Amount: 2000, Tier: games.TierGrand}) {
			t.Fatalf("grand credit: %+v", c.Credits[0])
		}
		if c.Credits[1] != (Credit{Currency: model.CurrencyPoints, Amount: 300, Tier: games.TierConsolation}) {
			t.Fatalf("consolation credit: %+v", c.Credits[1])
		}
		// the points credit is not folded into the cash payout
		if c.Currency() != model.CurrencyCash || c.Payout() != 2000 {
			t.Fatalf("wager payout: %d %s", c.Payout(), c.Currency())
		}
	})

	t.Run("runner_up_only", func(t *testing.T) {
		t.Parallel()

		c, err := TieredNumberMatch{}.Classify(rnd, o, wager(1, 10, model.Selection{Picks: []model.NumberPick{{Number: 12, Amount: 10}}}))
		if err != nil {
			t.Fatalf("classify: %v", err)
		}
		if c.Tier != games.TierSecondRunnerUp || c.Payout() != 250 || c.Currency() != model.CurrencyCash {
			t.Fatalf("got %+v", c)
		}
	})

	t.Run("no_placing", func(t *testing.T) {
		t.Parallel()

		c, err := TieredNumberMatch{}.Classify(rnd, o, wager(1, 10, model.Selection{Picks: []model.NumberPick{{Number: 1, Amount: 10}}}))
		if err != nil {
			t.Fatalf("classify: %v", err)
		}
		if c.Status != model.WagerLost {
			t.Fatalf("got %+v", c)
		}
	})
}

func TestPatternMatch(t *testing.T) {
	t.Parallel()

	rnd := round(model.GameBingo, nil)
	rnd.StakesTotal = 200

	winner := wager(1, 100, model.Selection{Card: games.NewCard(nil)})
	other := wager(2, 100, model.Selection{Card: games.NewCard(nil)})
	pending := []model.Wager{winner, other}

	// first row, centre not needed
	called := winner.Selection.Card[:games.CardSide]

	claim := winner.ID
	o := model.Outcome{ClaimWagerID: &claim, Called: called}

	err := PatternMatch{}.Check(rnd, o, pending)
	if err != nil {
		t.Fatalf("valid claim rejected: %v", err)
	}

	c, err := PatternMatch{}.Classify(rnd, o, winner)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if c.Status != model.WagerWon || c.Payout() != 200 || c.Currency() != model.CurrencyPoints {
		t.Fatalf("claimant: %+v", c)
	}

	c, err = PatternMatch{}.Classify(rnd, o, other)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if c.Status != model.WagerLost {
		t.Fatalf("other card: %+v", c)
	}

	err = PatternMatch{}.Check(rnd, model.Outcome{ClaimWagerID: &claim, Called: called[:4]}, pending)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("short line: want ErrValidation, got %v", err)
	}

	stranger := uuid.New()
	err = PatternMatch{}.Check(rnd, model.Outcome{ClaimWagerID: &stranger, Called: called}, pending)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("unknown card: want ErrValidation, got %v", err)
	}
}

func TestSymmetricDuel(t *testing.T) {
	t.Parallel()

	rnd := round(model.GameRPS, func(s *model.Settings) { s.FixedStake = 100 })
	host := wager(1, 100, model.Selection{Role: model.RoleHost})
	guest := wager(2, 100, model.Selection{Role: model.RoleGuest})

	tests := []struct {
		name        string
		moves       map[uint64]model.Move
		hostStatus  model.WagerStatus
		hostPayout  int64
		guestPayout int64
	}{
		{
			name:        "host_wins",
			moves:       map[uint64]model.Move{1: model.MoveRock, 2: model.MoveScissors},
			hostStatus:  model.WagerWon,
			hostPayout:  190,
			guestPayout: 0,
		},
		{
			name:        "guest_wins",
			moves:       map[uint64]model.Move{1: model.MovePaper, 2: model.MoveScissors},
			hostStatus:  model.WagerLost,
			hostPayout:  0,
			guestPayout: 190,
		},
		{
			name:        "draw_refunds",
			moves:       map[uint64]model.Move{1: model.MovePaper, 2: model.MovePaper},
			hostStatus:  model.WagerRefunded,
			hostPayout:  100,
			guestPayout: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			o := model.Outcome{Moves: tt.moves}

			err := SymmetricDuel{}.Check(rnd, o, []model.Wager{host, guest})
			if err != nil {
				t.Fatalf("check: %v", err)
			}

			h, err := SymmetricDuel{}.Classify(rnd, o, host)
			if err != nil {
				t.Fatalf("classify host: %v", err)
			}
			g, err := SymmetricDuel{}.Classify(rnd, o, guest)
			if err != nil {
				t.Fatalf("classify guest: %v", err)
			}

			if h.Status != tt.hostStatus || h.Payout() != tt.hostPayout || g.Payout() != tt.guestPayout {
				t.Fatalf("host %+v guest %+v", h, g)
			}
		})
	}

	err := SymmetricDuel{}.Check(rnd, model.Outcome{Moves: map[uint64]model.Move{1: model.MoveRock}}, []model.Wager{host, guest})
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("missing move: want ErrValidation, got %v", err)
	}
}

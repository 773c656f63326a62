package games

import (
	"errors"
	"testing"

	"github.com/fastprodman/wagerledger/internal/model"
	"github.com/google/uuid"
)

func TestValidateSelection(t *testing.T) {
	t.Parallel()

	versus := Defaults(model.GameVersus)
	lucky2 := Defaults(model.GameLucky2)
	race := Defaults(model.GameHorseRace)
	bingo := Defaults(model.GameBingo)
	rps := Defaults(model.GameRPS)
	rps.FixedStake = 20

	tests := []struct {
		name    string
		game    model.GameType
		set     model.Settings
		sel     model.Selection
		stake   int64
		want    int64
		wantErr bool
	}{
		{name: "versus_ok", game: model.GameVersus, set: versus, sel: model.Selection{Team: 2}, stake: 10, want: 10},
		{name: "versus_no_team", game: model.GameVersus, set: versus, sel: model.Selection{}, stake: 10, wantErr: true},
		{name: "versus_below_min", game: model.GameVersus, set: versus, sel: model.Selection{Team: 1}, stake: 9, wantErr: true},
		{name: "lucky2_ok", game: model.GameLucky2, set: lucky2, sel: model.Selection{Numbers: []int{7, 45}}, stake: 50, want: 50},
		{name: "lucky2_over_max", game: model.GameLucky2, set: lucky2, sel: model.Selection{Numbers: []int{7, 45}}, stake: 51, wantErr: true},
		{name: "lucky2_same_number", game: model.GameLucky2, set: lucky2, sel: model.Selection{Numbers: []int{7, 7}}, stake: 10, wantErr: true},
		{name: "lucky2_out_of_range", game: model.GameLucky2, set: lucky2, sel: model.Selection{Numbers: []int{0, 61}}, stake: 10, wantErr: true},
		{name: "lucky2_one_number", game: model.GameLucky2, set: lucky2, sel: model.Selection{Numbers: []int{7}}, stake: 10, wantErr: true},
		{name: "race_sum_of_picks", game: model.GameHorseRace, set: race, sel: picks(3, 10, 99, 40), want: 50},
		{name: "race_stake_mismatch", game: model.GameHorseRace, set: race, sel: picks(3, 10), stake: 20, wantErr: true},
		{name: "race_pick_over_max", game: model.GameHorseRace, set: race, sel: picks(3, 1001), wantErr: true},
		{name: "race_repeated_number", game: model.GameHorseRace, set: race, sel: picks(3, 10, 3, 10), wantErr: true},
		{name: "race_empty", game: model.GameHorseRace, set: race, sel: model.Selection{}, wantErr: true},
		{name: "bingo_buy_in", game: model.GameBingo, set: bingo, sel: model.Selection{}, want: BingoBuyIn},
		{name: "bingo_own_card", game: model.GameBingo, set: bingo, sel: model.Selection{Card: []int{1}}, wantErr: true},
		{name: "bingo_wrong_stake", game: model.GameBingo, set: bingo, sel: model.Selection{}, stake: 5, wantErr: true},
		{name: "rps_host", game: model.GameRPS, set: rps, sel: model.Selection{Role: model.RoleHost}, want: 20},
		{name: "rps_no_role", game: model.GameRPS, set: rps, sel: model.Selection{}, wantErr: true},
		{name: "unknown_game", game: model.GameType("poker"), set: versus, sel: model.Selection{Team: 1}, stake: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ValidateSelection(tt.game, tt.set, tt.sel, tt.stake)
			if tt.wantErr {
				if !errors.Is(err, model.ErrValidation) {
					t.Fatalf("want validation error, got %v", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("debited stake: want %d, got %d", tt.want, got)
			}
		})
	}
}

func TestValidateOutcome(t *testing.T) {
	t.Parallel()

	claim := uuid.New()
	placings := &model.Placings{
		Grand:          []int{1},
		FirstRunnerUp:  []int{2, 3},
		SecondRunnerUp: []int{4, 5, 6, 7, 8},
		Consolation:    seq(9, 25),
	}
	overlapping := *placings
	overlapping.Grand = []int{2}

	tests := []struct {
		name    string
		game    model.GameType
		outcome model.Outcome
		wantErr bool
	}{
		{name: "versus_ok", game: model.GameVersus, outcome: model.Outcome{WinningTeam: 1}},
		{name: "versus_missing_team", game: model.GameVersus, outcome: model.Outcome{}, wantErr: true},
		{name: "lucky2_ok", game: model.GameLucky2, outcome: model.Outcome{Numbers: []int{7, 45}}},
		{name: "lucky2_duplicate", game: model.GameLucky2, outcome: model.Outcome{Numbers: []int{7, 7}}, wantErr: true},
		{name: "race_ok", game: model.GameHorseRace, outcome: model.Outcome{Placings: placings}},
		{name: "race_missing", game: model.GameHorseRace, outcome: model.Outcome{}, wantErr: true},
		{name: "race_number_in_two_placings", game: model.GameHorseRace, outcome: model.Outcome{Placings: &overlapping}, wantErr: true},
		{name: "bingo_claim", game: model.GameBingo, outcome: model.Outcome{ClaimWagerID: &claim}},
		{name: "bingo_no_claim", game: model.GameBingo, outcome: model.Outcome{}, wantErr: true},
		{name: "rps_moves_from_store", game: model.GameRPS, outcome: model.Outcome{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateOutcome(tt.game, tt.outcome)
			if tt.wantErr != (err != nil) {
				t.Fatalf("wantErr %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	s, err := Normalize(model.GameLucky2, model.Settings{Jackpot: 5000})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if s.MinBet != Lucky2MinBet || s.MaxBet != Lucky2MaxBet || s.Jackpot != 5000 {
		t.Fatalf("lucky2 settings: %+v", s)
	}
	if s.JackpotCurrency != model.CurrencyCash || s.StakeCurrency != model.CurrencyPoints {
		t.Fatalf("lucky2 currencies: %+v", s)
	}

	bad := []struct {
		name string
		game model.GameType
		in   model.Settings
	}{
		{name: "unknown_game", game: "poker"},
		{name: "inverted_range", game: model.GameVersus, in: model.Settings{MinBet: 50, MaxBet: 20}},
		{name: "three_teams", game: model.GameVersus, in: model.Settings{Teams: []string{"a", "b", "c"}}},
		{name: "negative_jackpot", game: model.GameLucky2, in: model.Settings{Jackpot: -1}},
		{name: "cheap_duel", game: model.GameRPS, in: model.Settings{FixedStake: 5}},
		{name: "odd_currency", game: model.GameBingo, in: model.Settings{StakeCurrency: "gold"}},
	}

	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Normalize(tt.game, tt.in)
			if !errors.Is(err, model.ErrValidation) {
				t.Fatalf("want validation error, got %v", err)
			}
		})
	}
}

func TestTransactionTypes(t *testing.T) {
	t.Parallel()

	rematch := model.Round{GameType: model.GameRPS, ParentID: uuid.NullUUID{UUID: uuid.New(), Valid: true}}

	if got := BetType(model.Round{GameType: model.GameRPS}); got != model.TxRPSStake {
		t.Fatalf("rps stake type: %s", got)
	}
	if got := BetType(rematch); got != model.TxRPSRematchStake {
		t.Fatalf("rematch stake type: %s", got)
	}
	if got := CreditType(model.GameLucky2, TierJackpot); got != model.TxLucky2Jackpot {
		t.Fatalf("lucky2 jackpot type: %s", got)
	}
	if got := CreditType(model.GameLucky2, TierMatch); got != model.TxLucky2Win {
		t.Fatalf("lucky2 match type: %s", got)
	}
	if got := CreditType(model.GameRPS, TierDraw); got != model.TxRPSDraw {
		t.Fatalf("rps draw type: %s", got)
	}
	if got := Describe(model.GameHorseRace, "bet on %d numbers", 3); got != "Horse Race bet on 3 numbers" {
		t.Fatalf("description: %q", got)
	}
}

// picks builds a horse race ticket from number, amount pairs.
func picks(pairs ...int) model.Selection {
	var sel model.Selection
	for i := 0; i+1 < len(pairs); i += 2 {
		sel.Picks = append(sel.Picks, model.NumberPick{Number: pairs[i], Amount: int64(pairs[i+1])})
	}

	return sel
}

func seq(from, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = from + i
	}

	return out
}

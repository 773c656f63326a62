package model

type GameType string

const (
	GameVersus    GameType = "versus"
	GameLucky2    GameType = "lucky2"
	GameHorseRace GameType = "horse_race"
	GameBingo     GameType = "bingo"
	GameRPS       GameType = "rps"
)

func (g GameType) Valid() bool {
	switch g {
	case GameVersus, GameLucky2, GameHorseRace, GameBingo, GameRPS:
		return true
	default:
		return false
	}
}

type Currency string

const (
	CurrencyPoints Currency = "points"
	CurrencyCash   Currency = "cash"
)

func (c Currency) Valid() bool {
	return c == CurrencyPoints || c == CurrencyCash
}

type RoundStatus string

const (
	RoundOpen      RoundStatus = "open"
	RoundClosed    RoundStatus = "closed"
	RoundCompleted RoundStatus = "completed"
	RoundReset     RoundStatus = "reset"
)

type WagerStatus string

const (
	WagerPending  WagerStatus = "pending"
	WagerWon      WagerStatus = "won"
	WagerLost     WagerStatus = "lost"
	WagerRefunded WagerStatus = "refunded"
)

// Move is a rock-paper-scissors hand.
type Move string

const (
	MoveRock     Move = "rock"
	MovePaper    Move = "paper"
	MoveScissors Move = "scissors"
)

func (m Move) Valid() bool {
	return m == MoveRock || m == MovePaper || m == MoveScissors
}

// Transaction types written to the audit log.
const (
	TxLucky2Bet         = "bet"
	TxLucky2Win         = "lucky2_win"
	TxLucky2Jackpot     = "lucky2_jackpot"
	TxHorseRaceBet      = "horse_race_bet"
	TxHorseRaceWin      = "horse_race_win"
	TxBingoBuyIn        = "bingo_buy_in"
	TxBingoWin          = "bingo_win"
	TxVersusBet         = "versus_bet"
	TxVersusWin         = "versus_win"
	TxRPSStake          = "rps_stake"
	TxRPSRematchStake   = "rps_rematch_stake"
	TxRPSWin            = "rps_win"
	TxRPSDraw           = "rps_draw"
	TxAdminProfit       = "admin_profit"
	TxAdminPointsAdjust = "admin_points_update"
	TxAdminCashAdjust   = "admin_cash_update"
	TxWithdrawal        = "withdrawal"
	TxWithdrawalDecline = "withdrawal_declined"
	TxLoanApproved      = "loan_approved"
)

// RefundType returns the "<game>_refund" transaction type.
func RefundType(g GameType) string {
	return string(g) + "_refund"
}

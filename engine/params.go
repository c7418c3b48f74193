package engine

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Params holds every tunable constant used by move ordering and search.
// A Params value is built once at startup and shared read-only by all
// workers; nothing writes to it while a search is running.
type Params struct {
	// SEEValues is indexed by gm.PieceType, 0 = empty, 6 = king.
	SEEValues [7]int `json:"see_values"`

	PawnAttackedCoef int    `json:"pawn_attacked_coef"`
	PawnPushBonus    int    `json:"pawn_push_bonus"`
	KingAttackBonus  int    `json:"king_attack_bonus"`
	NodesSearchedDiv uint64 `json:"nodes_searched_div"`
	QueenPromoBonus  int    `json:"queen_promo_bonus"`
	OrderingBias     int    `json:"ordering_bias"`

	// Search knobs
	StopCheckInterval   uint64 `json:"stop_check_interval"`
	QuiescenceSEEMargin int    `json:"quiescence_see_margin"`
	HistoryMax          int    `json:"history_max"`
	AspirationWindow    int32  `json:"aspiration_window"`
	NullMoveMinDepth    int8   `json:"null_move_min_depth"`
	RFPMargin           int32  `json:"rfp_margin"`
	LMPBase             int    `json:"lmp_base"`
}

// DefaultParams returns the built-in tuning.
func DefaultParams() *Params {
	return &Params{
		SEEValues:           [7]int{0, 93, 308, 346, 521, 994, 20000},
		PawnAttackedCoef:    36,
		PawnPushBonus:       9520,
		KingAttackBonus:     3579,
		NodesSearchedDiv:    10000,
		QueenPromoBonus:     10000,
		OrderingBias:        1000000,
		StopCheckInterval:   1024,
		QuiescenceSEEMargin: 0,
		HistoryMax:          16384,
		AspirationWindow:    35,
		NullMoveMinDepth:    2,
		RFPMargin:           90,
		LMPBase:             3,
	}
}

// Validate rejects values that would break ordering or search invariants.
func (p *Params) Validate() error {
	if p.NodesSearchedDiv == 0 {
		return errors.New("nodes_searched_div must be positive")
	}
	if p.StopCheckInterval == 0 || p.StopCheckInterval&(p.StopCheckInterval-1) != 0 {
		return errors.Errorf("stop_check_interval must be a power of two, got %d", p.StopCheckInterval)
	}
	if p.HistoryMax <= 0 {
		return errors.Errorf("history_max must be positive, got %d", p.HistoryMax)
	}
	if p.SEEValues[0] != 0 {
		return errors.New("see_values[0] (empty square) must be zero")
	}
	for pt := 1; pt < len(p.SEEValues); pt++ {
		if p.SEEValues[pt] <= 0 {
			return errors.Errorf("see_values[%d] must be positive", pt)
		}
	}
	// Quiet scores must stay below noisy scores.
	if p.OrderingBias <= 0 {
		return errors.New("ordering_bias must be positive")
	}
	return nil
}

// LoadParams reads a JSON file on top of DefaultParams. Keys missing from the
// file keep their default value.
func LoadParams(path string) (*Params, error) {
	p := DefaultParams()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read params")
	}
	if err := json.Unmarshal(b, p); err != nil {
		return nil, errors.Wrapf(err, "decode params %s", path)
	}
	if err := p.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid params %s", path)
	}
	return p, nil
}

// SaveJSON writes the params atomically (tmp file + rename).
func (p *Params) SaveJSON(path string) error {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode params")
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return errors.Wrap(err, "write params")
	}
	return os.Rename(tmp, path)
}

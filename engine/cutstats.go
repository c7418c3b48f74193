package engine

import (
	"fmt"
	"io"
)

// CutStatistics collects counts for each pruning/cutoff mechanism. Each
// worker keeps its own copy; the coordinator sums them after a search.
type CutStatistics struct {
	TTCutoffs         uint64
	NullMoveCutoffs   uint64
	StaticNullCutoffs uint64
	FutilityPrunes    uint64
	LateMovePrunes    uint64
	BetaCutoffs       uint64
	FirstMoveCutoffs  uint64
	QStandPatCutoffs  uint64
	QBetaCutoffs      uint64
}

func (c *CutStatistics) add(o *CutStatistics) {
	c.TTCutoffs += o.TTCutoffs
	c.NullMoveCutoffs += o.NullMoveCutoffs
	c.StaticNullCutoffs += o.StaticNullCutoffs
	c.FutilityPrunes += o.FutilityPrunes
	c.LateMovePrunes += o.LateMovePrunes
	c.BetaCutoffs += o.BetaCutoffs
	c.FirstMoveCutoffs += o.FirstMoveCutoffs
	c.QStandPatCutoffs += o.QStandPatCutoffs
	c.QBetaCutoffs += o.QBetaCutoffs
}

// Dump writes the statistics as UCI "info string" lines.
func (c *CutStatistics) Dump(w io.Writer) {
	fmt.Fprintln(w, "info string Cut statistics:")
	fmt.Fprintf(w, "info string   TT cutoffs: %d\n", c.TTCutoffs)
	fmt.Fprintf(w, "info string   Null-move cutoffs: %d\n", c.NullMoveCutoffs)
	fmt.Fprintf(w, "info string   Static null cutoffs: %d\n", c.StaticNullCutoffs)
	fmt.Fprintf(w, "info string   Futility prunes: %d\n", c.FutilityPrunes)
	fmt.Fprintf(w, "info string   Late move prunes: %d\n", c.LateMovePrunes)
	fmt.Fprintf(w, "info string   Beta cutoffs: %d\n", c.BetaCutoffs)
	if c.BetaCutoffs > 0 {
		fmt.Fprintf(w, "info string   First-move cutoff rate: %.1f%%\n", 100*float64(c.FirstMoveCutoffs)/float64(c.BetaCutoffs))
	}
	fmt.Fprintf(w, "info string   QStandPat cutoffs: %d\n", c.QStandPatCutoffs)
	fmt.Fprintf(w, "info string   QBeta cutoffs: %d\n", c.QBetaCutoffs)
}

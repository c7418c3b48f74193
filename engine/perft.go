package engine

import (
	gm "github.com/Oliverans/GooseEngineMG/goosemg"
)

// PickerPerft counts leaf nodes like gm.Perft, but every move is obtained
// from a MovePicker. Agreement with gm.Perft means the picker emits each
// legal move exactly once in every node of the tree.
func PickerPerft(b *gm.Board, depth int, params *Params) uint64 {
	if depth <= 0 {
		return 1
	}
	hist := new(History)
	pickers := make([]MovePicker, depth)
	return pickerPerft(b, depth, 0, hist, params, pickers)
}

func pickerPerft(b *gm.Board, depth, ply int, hist *History, params *Params, pickers []MovePicker) uint64 {
	mp := &pickers[ply]
	mp.Init(PickerContext{Pos: b, Hist: hist, Params: params}, NoMove, NoMove, NoMove, 0)

	var nodes uint64
	for m := mp.Next(false, false); m != NoMove; m = mp.Next(false, false) {
		if depth == 1 {
			nodes++
			continue
		}
		ok, st := b.MakeMove(m)
		if !ok {
			continue
		}
		nodes += pickerPerft(b, depth-1, ply+1, hist, params, pickers)
		b.UnmakeMove(m, st)
	}
	return nodes
}

// PickerPerftDivide splits PickerPerft by root move.
func PickerPerftDivide(b *gm.Board, depth int, params *Params) map[gm.Move]uint64 {
	out := map[gm.Move]uint64{}
	if depth <= 0 {
		return out
	}
	hist := new(History)
	pickers := make([]MovePicker, depth)
	mp := NewMovePicker(PickerContext{Pos: b, Hist: hist, Params: params}, NoMove, NoMove, NoMove, 0)
	for m := mp.Next(false, false); m != NoMove; m = mp.Next(false, false) {
		ok, st := b.MakeMove(m)
		if !ok {
			continue
		}
		out[m] = pickerPerft(b, depth-1, 0, hist, params, pickers)
		b.UnmakeMove(m, st)
	}
	return out
}

package obj

import (
	"fmt"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/dbalatoni13/decomp-toolkit/metrics"
)

// SymbolTable is the dual-indexed symbol store shared by all analysis
// passes. Symbols live in an append-only arena addressed by
// SymbolIndex; an address index and a name index are maintained
// together on every mutation so the two views never diverge. Entries
// are never deleted, only replaced in place.
//
// The table is not safe for concurrent mutation; the toolchain runs
// passes sequentially against one table.
type SymbolTable struct {
	symbols   []Symbol
	byAddress SortedMap[uint32, []SymbolIndex]
	byName    map[string][]SymbolIndex

	logger  log.Logger
	metrics *metrics.ObjMetrics // may be nil for tests
}

func NewSymbolTable(logger log.Logger, m *metrics.ObjMetrics, syms []Symbol) *SymbolTable {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	t := &SymbolTable{
		byName:  make(map[string][]SymbolIndex),
		logger:  logger,
		metrics: m,
	}
	for _, s := range syms {
		t.AddDirect(s)
	}
	return t
}

// Add inserts a symbol, folding it into an existing entry at the same
// address when one qualifies: the kinds match, or the existing entry is
// a placeholder label awaiting a real symbol. Absolute symbols with
// different names never fold into each other even when they collide at
// one address.
//
// With merge unset the existing entry wins, except that a newly known
// size upgrades it in place. With merge set the incoming fields win;
// conflicting known sizes are reported to the diagnostic sink and the
// incoming size is kept. Either way the existing entry's index is
// returned. A symbol with no qualifying entry is appended.
func (t *SymbolTable) Add(in Symbol, merge bool) (SymbolIndex, error) {
	existingIdx := SymbolIndex(-1)
	for _, idx := range t.AtAddress(in.Address) {
		sym := &t.symbols[idx]
		kindMatch := sym.Kind == in.Kind ||
			(sym.Kind == SymbolUnknown && strings.HasPrefix(sym.Name, labelPrefix))
		if kindMatch && (sym.Section != nil || sym.Name == in.Name) {
			existingIdx = idx
			break
		}
	}
	if existingIdx == -1 {
		in.SizeKnown = in.Size != 0
		return t.AddDirect(in), nil
	}

	existing := t.symbols[existingIdx]
	size := existing.Size
	if existing.SizeKnown && in.SizeKnown && existing.Size != in.Size {
		level.Warn(t.logger).Log(
			"msg", "conflicting symbol size",
			"symbol", existing.Name,
			"was", fmt.Sprintf("%#x", existing.Size),
			"now", fmt.Sprintf("%#x", in.Size),
		)
		if t.metrics != nil {
			t.metrics.SymbolSizeConflicts.Inc()
		}
		if merge {
			size = in.Size
		}
	} else if in.SizeKnown {
		size = in.Size
	}

	if !merge {
		// Keep the existing symbol, but a newly known size still
		// upgrades it.
		if in.SizeKnown && !existing.SizeKnown {
			updated := existing
			updated.Size = in.Size
			updated.SizeKnown = true
			if err := t.Replace(existingIdx, updated); err != nil {
				return 0, err
			}
		}
		return existingIdx, nil
	}

	merged := Symbol{
		Name:          in.Name,
		DemangledName: in.DemangledName,
		Address:       in.Address,
		Section:       in.Section,
		Size:          size,
		SizeKnown:     existing.SizeKnown || in.Size != 0,
		Flags:         in.Flags,
		Kind:          in.Kind,
		Align:         in.Align,
		DataKind:      in.DataKind,
	}
	if merged.Align == nil {
		merged.Align = existing.Align
	}
	if merged.DataKind == DataUnknown {
		merged.DataKind = existing.DataKind
	}
	if !existing.equal(&merged) {
		level.Debug(t.logger).Log(
			"msg", "replacing symbol",
			"index", existingIdx,
			"name", merged.Name,
			"address", fmt.Sprintf("%#010x", merged.Address),
		)
		if err := t.Replace(existingIdx, merged); err != nil {
			return 0, err
		}
	}
	return existingIdx, nil
}

// AddDirect appends a symbol unconditionally, bypassing merge
// semantics. Used when bootstrapping the table from a format reader.
func (t *SymbolTable) AddDirect(in Symbol) SymbolIndex {
	idx := len(t.symbols)
	bucket, _ := t.byAddress.Get(in.Address)
	t.byAddress.Set(in.Address, append(bucket, idx))
	if in.Name != "" {
		t.byName[in.Name] = append(t.byName[in.Name], idx)
	}
	t.symbols = append(t.symbols, in)
	if t.metrics != nil {
		t.metrics.SymbolsAdded.Inc()
	}
	return idx
}

// At returns the symbol at idx. The result points into the table;
// callers must not mutate it, use Replace instead.
func (t *SymbolTable) At(idx SymbolIndex) *Symbol { return &t.symbols[idx] }

func (t *SymbolTable) AddressOf(idx SymbolIndex) uint32 { return t.symbols[idx].Address }

func (t *SymbolTable) Count() int { return len(t.symbols) }

// AtAddress returns the indexes of all symbols at exactly addr, in
// insertion order. The slice is shared with the table; callers must
// not modify it.
func (t *SymbolTable) AtAddress(addr uint32) []SymbolIndex {
	bucket, _ := t.byAddress.Get(addr)
	return bucket
}

// KindAt returns the symbol of the given kind at addr. More than one
// such symbol indicates corrupted input and is reported as an error,
// never arbitrated. A nil symbol with nil error means no match.
func (t *SymbolTable) KindAt(addr uint32, kind SymbolKind) (SymbolIndex, *Symbol, error) {
	found := SymbolIndex(-1)
	for _, idx := range t.AtAddress(addr) {
		if t.symbols[idx].Kind != kind {
			continue
		}
		if found != -1 {
			return 0, nil, errors.Errorf("multiple %s symbols at address %#010x", kind, addr)
		}
		found = idx
	}
	if found == -1 {
		return 0, nil, nil
	}
	return found, &t.symbols[found], nil
}

// ForEachOrdered visits every symbol in address-ascending order,
// including absolute symbols, preserving insertion order within one
// address.
func (t *SymbolTable) ForEachOrdered(fn func(idx SymbolIndex, sym *Symbol) bool) {
	t.byAddress.Ascend(func(_ uint32, bucket []SymbolIndex) bool {
		for _, idx := range bucket {
			if !fn(idx, &t.symbols[idx]) {
				return false
			}
		}
		return true
	})
}

// ForRange returns the indexes of symbols with start <= address < end
// in address-ascending order, excluding absolute symbols.
func (t *SymbolTable) ForRange(start, end uint32) []SymbolIndex {
	var out []SymbolIndex
	t.byAddress.AscendRange(start, end, func(_ uint32, bucket []SymbolIndex) bool {
		for _, idx := range bucket {
			if t.symbols[idx].Section != nil {
				out = append(out, idx)
			}
		}
		return true
	})
	return out
}

// BucketsForRange visits the address buckets with start <= addr < end
// in ascending order. Buckets are shared with the table; callers must
// not modify them.
func (t *SymbolTable) BucketsForRange(start, end uint32, fn func(addr uint32, idxs []SymbolIndex) bool) {
	t.byAddress.AscendRange(start, end, fn)
}

// ForSection returns the indexes of symbols within the section's
// address span that reference the section.
func (t *SymbolTable) ForSection(sec *Section) []SymbolIndex {
	var out []SymbolIndex
	for _, idx := range t.ForRange(sec.Address, sec.Address+sec.Size) {
		if s := t.symbols[idx].Section; s != nil && *s == sec.Index {
			out = append(out, idx)
		}
	}
	return out
}

// ForName returns the indexes of all symbols named name, in insertion
// order.
func (t *SymbolTable) ForName(name string) []SymbolIndex { return t.byName[name] }

// ByName returns the single symbol named name. Multiple symbols
// sharing the name is an error; ambiguity is never silently resolved.
// A nil symbol with nil error means no match.
func (t *SymbolTable) ByName(name string) (SymbolIndex, *Symbol, error) {
	idxs := t.byName[name]
	if len(idxs) == 0 {
		return 0, nil, nil
	}
	if len(idxs) > 1 {
		first, second := &t.symbols[idxs[0]], &t.symbols[idxs[1]]
		return 0, nil, errors.Errorf(
			"multiple symbols with name %s: %d %s %#010x and %d %s %#010x",
			name, idxs[0], first.Kind, first.Address, idxs[1], second.Kind, second.Address,
		)
	}
	return idxs[0], &t.symbols[idxs[0]], nil
}

// ByKind returns the indexes of all symbols of the given kind, in
// table order.
func (t *SymbolTable) ByKind(kind SymbolKind) []SymbolIndex {
	var out []SymbolIndex
	for idx := range t.symbols {
		if t.symbols[idx].Kind == kind {
			out = append(out, idx)
		}
	}
	return out
}

// Replace overwrites the symbol at idx, preserving its index. The
// address may not change. The name index is updated before the record
// itself so an external reader never observes the two out of sync.
func (t *SymbolTable) Replace(idx SymbolIndex, sym Symbol) error {
	existing := &t.symbols[idx]
	if existing.Address != sym.Address {
		return errors.New("cannot modify a symbol's address with Replace")
	}
	if existing.Name != sym.Name {
		if existing.Name != "" {
			t.removeName(existing.Name, idx)
		}
		if sym.Name != "" {
			t.byName[sym.Name] = append(t.byName[sym.Name], idx)
		}
	}
	*existing = sym
	return nil
}

func (t *SymbolTable) removeName(name string, idx SymbolIndex) {
	idxs := t.byName[name]
	for i, v := range idxs {
		if v == idx {
			idxs = append(idxs[:i], idxs[i+1:]...)
			break
		}
	}
	if len(idxs) == 0 {
		delete(t.byName, name)
		return
	}
	t.byName[name] = idxs
}

// ForRelocation resolves a relocation target address to a symbol,
// scanning address buckets downward from the bucket at or below the
// target. A bucket with several candidates is ranked by
// relocationRank, insertion order breaking ties. The winner is taken
// when it sits exactly at the target or its known size covers the
// target; a sized winner that falls short ends the scan, a zero-sized
// winner defers to the next lower bucket. Returns a nil symbol when
// the scan exhausts the table.
func (t *SymbolTable) ForRelocation(target uint32, kind RelocKind) (SymbolIndex, *Symbol) {
	resultIdx := SymbolIndex(-1)
	t.byAddress.DescendLessOrEqual(target, func(_ uint32, bucket []SymbolIndex) bool {
		if len(bucket) == 0 {
			return true
		}
		idx := bucket[0]
		if len(bucket) > 1 {
			ranked := slices.Clone(bucket)
			slices.SortStableFunc(ranked, func(a, b SymbolIndex) int {
				return relocationRank(&t.symbols[b], kind) - relocationRank(&t.symbols[a], kind)
			})
			idx = ranked[0]
		}
		sym := &t.symbols[idx]
		if sym.Address == target {
			resultIdx = idx
			return false
		}
		if sym.Size > 0 {
			// Widen so a span reaching the top of the address space
			// does not wrap.
			if uint64(sym.Address)+uint64(sym.Size) > uint64(target) {
				resultIdx = idx
			}
			return false
		}
		return true
	})
	if resultIdx == -1 {
		if t.metrics != nil {
			t.metrics.RelocationTargetMisses.Inc()
		}
		return 0, nil
	}
	return resultIdx, &t.symbols[resultIdx]
}

// relocationRank totally orders candidate symbols sharing one address
// for relocation binding; higher wins. Functions and objects are
// preferred for address-taking modes, bare labels for high/low address
// computations, except jump table labels which rank with section
// symbols at the bottom. A known nonzero size earns one extra point.
func relocationRank(sym *Symbol, kind RelocKind) int {
	var rank int
	switch sym.Kind {
	case SymbolFunction, SymbolObject:
		if kind.isAddressComputation() {
			rank = 1
		} else {
			rank = 2
		}
	case SymbolUnknown:
		if kind.isAddressComputation() && !strings.HasPrefix(sym.Name, jumpTableLabelPrefix) {
			rank = 3
		} else {
			rank = 1
		}
	case SymbolSection:
		rank = -1
	}
	if sym.Size > 0 {
		rank++
	}
	return rank
}

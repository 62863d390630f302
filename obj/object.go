package obj

import (
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/dbalatoni13/decomp-toolkit/metrics"
)

// ObjectKind distinguishes fully linked modules from ones expecting
// further address fixups at load time.
type ObjectKind uint8

const (
	Executable ObjectKind = iota
	Relocatable
)

// Architecture tags the fixed 32-bit RISC target.
type Architecture uint8

const (
	ArchPowerPC Architecture = iota
)

// Object aggregates everything recovered from one linked executable or
// relocatable module: sections, the symbol table, and module-wide
// metadata. One mutable Object is shared by all analysis passes, run
// sequentially.
type Object struct {
	Kind         ObjectKind
	Architecture Architecture
	Name         string
	Symbols      *SymbolTable
	Sections     []Section
	Entry        uint32
	// Comment is the compiler metadata block, attached once and not
	// interpreted here.
	Comment []byte

	// Linker-synthesized addresses, cached as the matching well-known
	// symbol names are observed via AddSymbol.
	SdaBase      *uint32
	Sda2Base     *uint32
	StackAddress *uint32
	StackEnd     *uint32
	DbStackAddr  *uint32
	ArenaLo      *uint32
	ArenaHi      *uint32

	// NamedSections overrides the section name at an address.
	NamedSections SortedMap[uint32, string]
	// LinkOrder is the recovered unit link order.
	LinkOrder []string
	// BlockedRanges maps range start to exclusive end; blocked ranges
	// are excluded from analysis.
	BlockedRanges SortedMap[uint32, uint32]
	// KnownFunctions maps function start addresses to sizes, sourced
	// from exception table data.
	KnownFunctions SortedMap[uint32, uint32]

	// ModuleID is 0 for the main executable.
	ModuleID uint32
	// UnresolvedRelocations reference symbols outside this module;
	// only populated for relocatable modules.
	UnresolvedRelocations []RelReloc

	splits SortedMap[uint32, []Split]
	logger log.Logger
}

func NewObject(logger log.Logger, m *metrics.ObjMetrics, kind ObjectKind, arch Architecture,
	name string, syms []Symbol, sections []Section) *Object {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Object{
		Kind:         kind,
		Architecture: arch,
		Name:         name,
		Symbols:      NewSymbolTable(logger, m, syms),
		Sections:     sections,
		logger:       logger,
	}
}

// AddSymbol delegates to the symbol table's Add, additionally caching
// the addresses of well-known linker-synthesized symbols on the object
// for constant-time access.
func (o *Object) AddSymbol(in Symbol, merge bool) (SymbolIndex, error) {
	switch in.Name {
	case "_SDA_BASE_":
		o.SdaBase = lo.ToPtr(in.Address)
	case "_SDA2_BASE_":
		o.Sda2Base = lo.ToPtr(in.Address)
	case "_stack_addr":
		o.StackAddress = lo.ToPtr(in.Address)
	case "_stack_end":
		o.StackEnd = lo.ToPtr(in.Address)
	case "_db_stack_addr":
		o.DbStackAddr = lo.ToPtr(in.Address)
	case "__ArenaLo":
		o.ArenaLo = lo.ToPtr(in.Address)
	case "__ArenaHi":
		o.ArenaHi = lo.ToPtr(in.Address)
	}
	return o.Symbols.Add(in, merge)
}

// SectionAt returns the section containing addr.
func (o *Object) SectionAt(addr uint32) (*Section, error) {
	for i := range o.Sections {
		if o.Sections[i].Contains(addr) {
			return &o.Sections[i], nil
		}
	}
	return nil, errors.Errorf("failed to locate section @ %#010x", addr)
}

// SectionForRange returns the section containing the half-open range
// [start, end).
func (o *Object) SectionForRange(start, end uint32) (*Section, error) {
	for i := range o.Sections {
		if o.Sections[i].ContainsRange(start, end) {
			return &o.Sections[i], nil
		}
	}
	return nil, errors.Errorf("failed to locate section @ %#010x-%#010x", start, end)
}

// SectionData returns the section containing start and its raw bytes
// for [start, end). end == 0 means to the end of the section's
// available bytes; an end past them is clamped.
func (o *Object) SectionData(start, end uint32) (*Section, []byte, error) {
	sec, err := o.SectionAt(start)
	if err != nil {
		return nil, nil, err
	}
	off := int(start - sec.Address)
	if end == 0 {
		return sec, sec.Data[off:], nil
	}
	stop := min(len(sec.Data), int(end-sec.Address))
	return sec, sec.Data[off:stop], nil
}

// AddSplit records a decompilation unit boundary at address. Adjacent
// splits for the same unit are kept as separate records rather than
// merged; readers must tolerate duplicate and overlapping records.
func (o *Object) AddSplit(address uint32, split Split) {
	level.Debug(o.logger).Log(
		"msg", "adding split",
		"address", fmt.Sprintf("%#010x", address),
		"unit", split.Unit,
	)
	bucket, _ := o.splits.Get(address)
	o.splits.Set(address, append(bucket, split))
}

// SplitFor locates the split covering address, honoring unbounded
// (End == 0) splits that extend to the next split or the section end.
// A nil split means no split covers the address.
func (o *Object) SplitFor(address uint32) (uint32, *Split) {
	var addr uint32
	var found *Split
	o.splits.DescendLessOrEqual(address, func(k uint32, bucket []Split) bool {
		addr = k
		found = &bucket[len(bucket)-1]
		return false
	})
	if found == nil || (found.End != 0 && found.End <= address) {
		return 0, nil
	}
	return addr, found
}

// SplitsForRange visits the splits whose start address falls in
// [start, end), in ascending address order.
func (o *Object) SplitsForRange(start, end uint32, fn func(addr uint32, split Split) bool) {
	o.splits.AscendRange(start, end, func(addr uint32, bucket []Split) bool {
		for i := range bucket {
			if !fn(addr, bucket[i]) {
				return false
			}
		}
		return true
	})
}

// AddBlockedRange excludes the half-open range [start, end) from
// analysis.
func (o *Object) AddBlockedRange(start, end uint32) {
	o.BlockedRanges.Set(start, end)
}

// IsBlocked reports whether addr falls inside a recorded blocked
// range.
func (o *Object) IsBlocked(addr uint32) bool {
	if _, end, ok := o.BlockedRanges.Floor(addr); ok {
		return addr < end
	}
	return false
}

// AddKnownFunction records a function start address and size sourced
// from exception table data.
func (o *Object) AddKnownFunction(addr, size uint32) {
	o.KnownFunctions.Set(addr, size)
}

// KnownFunctionAt returns the recorded size of the function starting
// exactly at addr.
func (o *Object) KnownFunctionAt(addr uint32) (uint32, bool) {
	return o.KnownFunctions.Get(addr)
}

// AddNamedSection records an overriding section name for addr.
func (o *Object) AddNamedSection(addr uint32, name string) {
	o.NamedSections.Set(addr, name)
}

// NamedSectionAt returns the overriding section name recorded for
// addr.
func (o *Object) NamedSectionAt(addr uint32) (string, bool) {
	return o.NamedSections.Get(addr)
}

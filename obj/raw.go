package obj

import "github.com/ianlancetaylor/demangle"

// Raw records mirror what the object-format reader supplies before the
// model takes over. Converting them is the only place format-native
// attributes (bind, visibility) are interpreted; everything past this
// seam deals in FlagSet and SectionKind.

// SymbolBind is a format-native binding attribute.
type SymbolBind uint8

const (
	BindGlobal SymbolBind = iota
	BindLocal
	BindWeak
)

type RawSymbol struct {
	Name    string
	Address uint32
	Size    uint32
	Bind    SymbolBind
	Hidden  bool
	Kind    SymbolKind
	Section *int
	Align   *uint32
}

// SymbolFromRaw builds a table-ready symbol from a reader record,
// mapping the binding and visibility onto the flag set and demangling
// the name when possible.
func SymbolFromRaw(raw RawSymbol) Symbol {
	var flags FlagSet
	switch raw.Bind {
	case BindLocal:
		flags.SetLocal()
	case BindWeak:
		flags.Set(SymbolFlagWeak)
	default:
		flags.SetGlobal()
	}
	if raw.Hidden {
		flags.Set(SymbolFlagHidden)
	}
	sym := Symbol{
		Name:      raw.Name,
		Address:   raw.Address,
		Section:   raw.Section,
		Size:      raw.Size,
		SizeKnown: raw.Size != 0,
		Flags:     flags,
		Kind:      raw.Kind,
		Align:     raw.Align,
	}
	if d := demangle.Filter(raw.Name); d != raw.Name {
		sym.DemangledName = d
	}
	return sym
}

type RawReloc struct {
	// Kind is the format-native addressing-mode code, already decoded
	// to the internal enumeration by the reader.
	Kind RelocKind
	// Address is the byte address within the owning section.
	Address uint32
	// TargetSymbol references the seeded symbol table.
	TargetSymbol SymbolIndex
	Addend       int64
}

// RelocFromRaw builds a section relocation from a reader record. The
// mapping is direct; it exists so the reader hands the model raw
// records across the same seam as symbols and sections.
func RelocFromRaw(raw RawReloc) Reloc {
	return Reloc{
		Kind:         raw.Kind,
		Address:      raw.Address,
		TargetSymbol: raw.TargetSymbol,
		Addend:       raw.Addend,
	}
}

type RawSection struct {
	Name    string
	Address uint32
	Size    uint32
	Data    []byte
	Align   uint32
	// OrigIndex is the section's index in the source format's table.
	OrigIndex  int
	FileOffset uint64
}

// SectionFromRaw classifies and numbers a reader-supplied section.
// index is the section's position in Object.Sections. An unrecognized
// name fails; formats without meaningful section names construct
// Sections directly with KindKnown unset.
func SectionFromRaw(raw RawSection, index int) (Section, error) {
	kind, err := SectionKindFor(raw.Name)
	if err != nil {
		return Section{}, err
	}
	return Section{
		Name:            raw.Name,
		Kind:            kind,
		Address:         raw.Address,
		Size:            raw.Size,
		Data:            raw.Data,
		Align:           raw.Align,
		Index:           index,
		OrigIndex:       raw.OrigIndex,
		OriginalAddress: raw.Address,
		FileOffset:      raw.FileOffset,
		KindKnown:       true,
	}, nil
}

package obj

import "github.com/ianlancetaylor/demangle"

// SymbolKind classifies a symbol table entry.
type SymbolKind uint8

const (
	// SymbolUnknown is a bare label with no recovered type.
	SymbolUnknown SymbolKind = iota
	SymbolFunction
	SymbolObject
	SymbolSection
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolFunction:
		return "function"
	case SymbolObject:
		return "object"
	case SymbolSection:
		return "section"
	default:
		return "unknown"
	}
}

// DataKind describes the layout of an Object-kind symbol's data. It is
// ignored for other kinds.
type DataKind uint8

const (
	DataUnknown DataKind = iota
	DataByte
	DataByte2
	DataByte4
	DataByte8
	DataFloat
	DataDouble
	DataString
	DataString16
	DataStringTable
	DataString16Table
)

// SymbolIndex is a stable position in the symbol table. Indices are
// never reused or invalidated; Replace overwrites an entry in place.
type SymbolIndex = int

// labelPrefix marks auto-generated placeholder names, eligible for
// replacement once a real symbol is known.
const labelPrefix = "lbl_"

// jumpTableLabelPrefix marks compiler-generated jump table labels.
const jumpTableLabelPrefix = ".."

type Symbol struct {
	Name          string
	DemangledName string
	// Address is immutable once the symbol is in a table.
	Address uint32
	// Section is the owning section's index; nil for absolute symbols.
	Section *int
	Size    uint32
	// SizeKnown distinguishes a true zero size from a size that was
	// never observed.
	SizeKnown bool
	Flags     FlagSet
	Kind      SymbolKind
	Align     *uint32
	DataKind  DataKind
}

// Demangled returns the recorded demangled name, deriving one from the
// mangled name when none was recorded. Falls back to Name.
func (s *Symbol) Demangled() string {
	if s.DemangledName != "" {
		return s.DemangledName
	}
	if d := demangle.Filter(s.Name); d != s.Name {
		return d
	}
	return s.Name
}

func (s *Symbol) equal(o *Symbol) bool {
	return s.Name == o.Name &&
		s.DemangledName == o.DemangledName &&
		s.Address == o.Address &&
		ptrEq(s.Section, o.Section) &&
		s.Size == o.Size &&
		s.SizeKnown == o.SizeKnown &&
		s.Flags == o.Flags &&
		s.Kind == o.Kind &&
		ptrEq(s.Align, o.Align) &&
		s.DataKind == o.DataKind
}

func ptrEq[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

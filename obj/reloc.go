package obj

// RelocKind is the addressing-mode code of a relocation.
type RelocKind uint8

const (
	RelocAbsolute RelocKind = iota
	RelocAddr16Hi
	RelocAddr16Ha
	RelocAddr16Lo
	RelocRel24
	RelocRel14
	RelocEmbSda21
)

func (k RelocKind) String() string {
	switch k {
	case RelocAbsolute:
		return "Absolute"
	case RelocAddr16Hi:
		return "Addr16Hi"
	case RelocAddr16Ha:
		return "Addr16Ha"
	case RelocAddr16Lo:
		return "Addr16Lo"
	case RelocRel24:
		return "Rel24"
	case RelocRel14:
		return "Rel14"
	case RelocEmbSda21:
		return "EmbSda21"
	default:
		return "invalid"
	}
}

// isAddressComputation reports whether kind computes a high/low half of
// an address rather than taking the address itself.
func (k RelocKind) isAddressComputation() bool {
	switch k {
	case RelocAddr16Hi, RelocAddr16Ha, RelocAddr16Lo:
		return true
	default:
		return false
	}
}

// Reloc is a relocation within a section, applied at Address (relative
// to the module address space) and bound to a symbol table entry.
type Reloc struct {
	Kind         RelocKind
	Address      uint32
	TargetSymbol SymbolIndex
	Addend       int64
}

// RelReloc is a relocation whose target lives in another module. Only
// relocatable modules carry these; the main executable resolves
// everything at link time.
type RelReloc struct {
	Kind RelocKind
	// Section and Address locate the relocation in this module.
	Section uint8
	Address uint32
	// Module and TargetSection identify the target in the other module.
	Module        uint32
	TargetSection uint8
	Addend        uint32
}

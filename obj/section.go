package obj

import "github.com/pkg/errors"

// SectionKind is the internal classification of a section.
type SectionKind uint8

const (
	SectionCode SectionKind = iota
	SectionData
	SectionReadOnlyData
	SectionBss
)

func (k SectionKind) String() string {
	switch k {
	case SectionCode:
		return "code"
	case SectionData:
		return "data"
	case SectionReadOnlyData:
		return "rodata"
	case SectionBss:
		return "bss"
	default:
		return "invalid"
	}
}

// Section is an addressed, named byte range. Sections are created once
// at object construction and never removed; relocation lists are
// appended during relocation extraction. The address range is
// half-open: [Address, Address+Size).
type Section struct {
	Name    string
	Kind    SectionKind
	Address uint32
	Size    uint32
	// Data is empty for bss sections.
	Data  []byte
	Align uint32
	// Index is the section's position in Object.Sections.
	Index int
	// OrigIndex is the section index in the source format's table;
	// relocatable modules reference sections by it.
	OrigIndex   int
	Relocations []Reloc
	// OriginalAddress is the address recorded before this module's
	// addressing was finalized.
	OriginalAddress uint32
	FileOffset      uint64
	// KindKnown is unset when Kind is a best guess rather than a
	// confident classification.
	KindKnown bool
}

// Contains reports whether addr falls within the section.
func (s *Section) Contains(addr uint32) bool {
	return uint64(addr) >= uint64(s.Address) && uint64(addr) < uint64(s.Address)+uint64(s.Size)
}

// ContainsRange reports whether the half-open range [start, end) falls
// entirely within the section.
func (s *Section) ContainsRange(start, end uint32) bool {
	return uint64(start) >= uint64(s.Address) && uint64(end) <= uint64(s.Address)+uint64(s.Size)
}

// BuildRelocationMap indexes the section's relocations by address. Two
// relocations at one address mean an earlier pass produced a corrupt
// relocation list, and fail the build.
func (s *Section) BuildRelocationMap() (*SortedMap[uint32, int], error) {
	m := &SortedMap[uint32, int]{}
	for i := range s.Relocations {
		addr := s.Relocations[i].Address
		if _, ok := m.Get(addr); ok {
			return nil, errors.Errorf("duplicate relocation @ %#010x in section %s", addr, s.Name)
		}
		m.Set(addr, i)
	}
	return m, nil
}

// BuildRelocationMapCloned is BuildRelocationMap with relocation copies
// as values instead of list positions.
func (s *Section) BuildRelocationMapCloned() (*SortedMap[uint32, Reloc], error) {
	m := &SortedMap[uint32, Reloc]{}
	for _, reloc := range s.Relocations {
		if _, ok := m.Get(reloc.Address); ok {
			return nil, errors.Errorf("duplicate relocation @ %#010x in section %s", reloc.Address, s.Name)
		}
		m.Set(reloc.Address, reloc)
	}
	return m, nil
}

// SectionKindFor classifies a format-native section name. This is the
// boundary between raw naming and internal semantics: the mapping is
// closed and an unrecognized name is a hard error.
func SectionKindFor(name string) (SectionKind, error) {
	switch name {
	case ".init", ".text", ".dbgtext", ".vmtext":
		return SectionCode, nil
	case ".ctors", ".dtors", ".rodata", ".sdata2", "extab", "extabindex":
		return SectionReadOnlyData, nil
	case ".bss", ".sbss", ".sbss2":
		return SectionBss, nil
	case ".data", ".sdata":
		return SectionData, nil
	default:
		return 0, errors.Errorf("unknown section %s", name)
	}
}

package obj

// SymbolFlag is a single symbol attribute bit.
type SymbolFlag uint8

const (
	SymbolFlagGlobal SymbolFlag = 1 << iota
	SymbolFlagLocal
	SymbolFlagWeak
	SymbolFlagCommon
	SymbolFlagHidden
	SymbolFlagForceActive
)

// FlagSet holds a symbol's attribute bits. Mutation goes through the
// Set* methods, which keep Global and Local mutually exclusive;
// callers never manipulate raw bits.
type FlagSet struct {
	bits SymbolFlag
}

func NewFlagSet(flags ...SymbolFlag) FlagSet {
	var fs FlagSet
	for _, f := range flags {
		fs.Set(f)
	}
	return fs
}

func (f FlagSet) Has(flag SymbolFlag) bool { return f.bits&flag != 0 }

func (f FlagSet) IsLocal() bool { return f.Has(SymbolFlagLocal) }

// IsGlobal reports the absence of Local; a symbol with no binding
// recorded is treated as global.
func (f FlagSet) IsGlobal() bool { return !f.IsLocal() }

func (f FlagSet) IsWeak() bool { return f.Has(SymbolFlagWeak) }

func (f FlagSet) IsCommon() bool { return f.Has(SymbolFlagCommon) }

func (f FlagSet) IsHidden() bool { return f.Has(SymbolFlagHidden) }

func (f FlagSet) IsForceActive() bool { return f.Has(SymbolFlagForceActive) }

// SetGlobal clears Local and Weak before setting Global.
func (f *FlagSet) SetGlobal() {
	f.bits = f.bits&^(SymbolFlagLocal|SymbolFlagWeak) | SymbolFlagGlobal
}

// SetLocal clears Global and Weak before setting Local.
func (f *FlagSet) SetLocal() {
	f.bits = f.bits&^(SymbolFlagGlobal|SymbolFlagWeak) | SymbolFlagLocal
}

// Set adds flag, routing Global and Local through their dedicated
// mutators so the exclusivity invariant holds.
func (f *FlagSet) Set(flag SymbolFlag) {
	switch flag {
	case SymbolFlagGlobal:
		f.SetGlobal()
	case SymbolFlagLocal:
		f.SetLocal()
	default:
		f.bits |= flag
	}
}

package obj

// Split marks a decompilation unit boundary in the address space.
// Splits are keyed by start address in the object's split map; one
// start address may carry several splits for nested or overlapping
// unit annotations.
type Split struct {
	// Unit is the decompilation unit (source file) name.
	Unit string
	// End is the exclusive end address; 0 means unbounded, extending
	// to the next split or the end of the section.
	End   uint32
	Align *uint32
	// Common marks a block merged across units.
	Common bool
}

package format

// CellMask is CellSize-1, for rounding to cell boundaries.
const CellMask = CellSize - 1

// CellsFor returns the number of cells needed to hold n bytes.
//
// Example:
//
//	CellsFor(1)  = 1
//	CellsFor(32) = 1
//	CellsFor(33) = 2
func CellsFor(n uintptr) uintptr {
	return (n + CellMask) / CellSize
}

// CellFloor returns n rounded down to a whole number of cells.
func CellFloor(n uintptr) uintptr {
	return n &^ CellMask
}

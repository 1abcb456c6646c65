package config

// Version is the current interpreter version.
// Set at build time via -ldflags or by writing to this file.
var Version = "0.1.0"

// Shared limits and tuning constants for the interpreter core.

const (
	// MaxLevelDepth bounds the Level stack. The trampoline itself is
	// stackless, so this only guards runaway user recursion.
	MaxLevelDepth = 100000

	// MinFlexCapacity is the smallest dynamic allocation a Flex makes.
	MinFlexCapacity = 8

	// BookmarkThreshold is the traversal distance (in codepoints) above
	// which a strand index lookup records a bookmark.
	BookmarkThreshold = 64

	// MapLoadNumerator / MapLoadDenominator: a map rehashes when the pair
	// count exceeds capacity * numerator / denominator.
	MapLoadNumerator   = 1
	MapLoadDenominator = 2

	// MoldRecursionLimit caps molding depth for cyclic structures that
	// slip past the pointer-stack check.
	MoldRecursionLimit = 1000
)

// HashPrimes are the hashlist sizes, each roughly doubling. Probe skips are
// chosen coprime to these, so every slot is eventually visited.
var HashPrimes = []int{
	13, 31, 67, 127, 257, 521, 1049, 2099, 4201, 8419, 16843,
	33703, 67409, 134837, 269683, 539389, 1078787, 2157587, 4315183,
	8630387, 17260781, 34521589, 69043189, 138086407,
}

// SourceFileExtensions are the extensions the CLI treats as scripts.
var SourceFileExtensions = []string{".ren", ".reb", ".r3"}

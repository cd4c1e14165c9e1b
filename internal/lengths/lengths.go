// Package lengths defines the word-count contracts that accepted readings
// must satisfy, one contract per reading kind. Both the generation
// orchestrator and callers consume these constants.
package lengths

import "strings"

// ReadingKind identifies which kind of reading is being generated.
type ReadingKind string

const (
	KindIndividual ReadingKind = "individual"
	KindSynastry   ReadingKind = "synastry"
	KindVerdict    ReadingKind = "verdict"
)

// Contract defines the acceptance thresholds for one reading kind.
// HardFloorWords is the rejection boundary: a reading below it is expanded
// until it passes or the generation fails.
type Contract struct {
	Min            int
	Target         int
	Max            int
	HardFloorWords int
}

// Per-kind contracts. These are load-bearing numbers: the composer embeds
// them into the output-length layer and the orchestrator enforces the floor.
var (
	IndividualContract = Contract{Min: 4000, Target: 5000, Max: 7000, HardFloorWords: 4000}
	SynastryContract   = Contract{Min: 3500, Target: 4500, Max: 6500, HardFloorWords: 3500}
	VerdictContract    = Contract{Min: 2500, Target: 3200, Max: 5000, HardFloorWords: 2500}
)

// ContractFor returns the contract for the given reading kind.
// Unknown kinds get the individual contract.
func ContractFor(kind ReadingKind) Contract {
	switch kind {
	case KindSynastry:
		return SynastryContract
	case KindVerdict:
		return VerdictContract
	default:
		return IndividualContract
	}
}

// CountWords counts whitespace-separated words in prose text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

package validator

import (
	"fmt"
	"sort"
)

type FindingKind string

const (
	// TamperedBlock: the stored hash differs from the digest recomputed over the block.
	TamperedBlock FindingKind = "tampered_block"
	// BrokenLink: previousBlockHash differs from the stored hash of the block before it.
	BrokenLink FindingKind = "broken_link"
)

// Finding is one integrity violation. Findings are data, not errors.
type Finding struct {
	Kind     FindingKind `json:"kind"`
	Height   int64       `json:"height"`
	Expected string      `json:"expected"`
	Actual   string      `json:"actual"`
}

func (f Finding) String() string {
	switch f.Kind {
	case TamperedBlock:
		return fmt.Sprintf("Block [%d]: tampered, stored hash %s does not match recomputed %s", f.Height, f.Actual, f.Expected)
	case BrokenLink:
		return fmt.Sprintf("Block [%d]: previous block hash %s does not match previous block's hash %s", f.Height, f.Actual, f.Expected)
	default:
		return fmt.Sprintf("Block [%d]: %s", f.Height, f.Kind)
	}
}

// Report is the outcome of one validation run.
type Report struct {
	// Height is the height of the last block in the validated snapshot, -1 if empty.
	Height   int64     `json:"height"`
	Checked  int       `json:"checked"`
	Findings []Finding `json:"findings"`
	// Incomplete is set when the run was cancelled before every block was checked.
	Incomplete bool `json:"incomplete"`
}

func (r Report) Valid() bool {
	return len(r.Findings) == 0 && !r.Incomplete
}

// CountByKind groups findings per kind.
func (r Report) CountByKind() map[string]int {
	counts := make(map[string]int)
	for _, f := range r.Findings {
		counts[string(f.Kind)]++
	}
	return counts
}

// Messages renders the report as audit log lines.
func (r Report) Messages() []string {
	if r.Valid() {
		return []string{fmt.Sprintf("Chain valid: %d blocks checked, no tampering detected", r.Checked)}
	}
	lines := make([]string, 0, len(r.Findings)+1)
	for _, f := range r.Findings {
		lines = append(lines, f.String())
	}
	if r.Incomplete {
		lines = append(lines, fmt.Sprintf("Validation interrupted after %d blocks", r.Checked))
	}
	return lines
}

func sortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Height != findings[j].Height {
			return findings[i].Height < findings[j].Height
		}
		return findings[i].Kind > findings[j].Kind
	})
}

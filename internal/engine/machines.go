package engine

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// machineIndex maps normalized machine names to machine ids.
type machineIndex map[string]string

// normalizeMachineName folds a machine name for matching: NFC, trimmed,
// upper-cased.
func normalizeMachineName(name string) string {
	return cases.Upper(language.Und).String(norm.NFC.String(strings.TrimSpace(name)))
}

// loadMachines reads the machine directory. Without a directory, or when it
// cannot be read, the index is empty and every legacy name stays unresolved.
func (e *Engine) loadMachines(ctx context.Context) machineIndex {
	idx := machineIndex{}
	if e.machines == nil {
		return idx
	}
	machines, err := e.machines.Machines(ctx)
	if err != nil {
		e.logger.Warn("machine directory unavailable; legacy machine names left unresolved", "error", err)
		return idx
	}
	for _, m := range machines {
		idx[normalizeMachineName(m.Name)] = m.ID
	}
	return idx
}

// resolve turns a plan's machine hint into a machine id. Hints that already
// look like ids are kept; names are looked up; anything else is "".
func (idx machineIndex) resolve(hint string) string {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return ""
	}
	if isMachineID(hint) {
		return hint
	}
	return idx[normalizeMachineName(hint)]
}

// isMachineID reports whether s is a canonical hyphenated UUID.
func isMachineID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

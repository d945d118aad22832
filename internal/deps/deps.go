// Package deps inventories the external bioinformatics tools a run
// relies on.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external tool ampliflow shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the tools the pipeline stages invoke.
func Requirements() []Requirement {
	return []Requirement{
		{
			Name:        "artic",
			Command:     "artic",
			Description: "Required for per-sample consensus and variant calling",
		},
		{
			Name:        "seqkit",
			Command:     "seqkit",
			Description: "Required for read QC statistics",
		},
		{
			Name:        "nextclade",
			Command:     "nextclade",
			Description: "Assigns clades to the combined consensus; the report degrades without it",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

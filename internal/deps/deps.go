// Package deps reports the availability of the external tools photodelta
// shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"photodelta/internal/config"
)

// Requirement defines one external binary dependency.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// Optional requirements degrade a run instead of blocking it.
	Optional bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the binaries the given configuration would invoke.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "dcraw",
			Command:     cfg.Tools.DcrawBinary,
			Description: "Raw photo (NEF) conversion; without it raw files are skipped",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements against PATH.
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
		switch {
		case cmd == "":
			status.Detail = "command not configured"
		default:
			if _, err := exec.LookPath(cmd); err != nil {
				status.Detail = fmt.Sprintf("binary %q not found", cmd)
			} else {
				status.Available = true
			}
		}
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of unavailable non-optional
// dependencies.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s.Name)
		}
	}
	return missing
}

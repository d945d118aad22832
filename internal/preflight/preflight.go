// Package preflight verifies the environment before any task is
// scheduled: external tool availability and directory access.
package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"ampliflow/internal/config"
	"ampliflow/internal/deps"
)

// Result is one named check outcome.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// CheckDirectoryAccess verifies that the directory exists and is
// readable and writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckInputAccess verifies that the input directory is readable.
func CheckInputAccess(path string) Result {
	const name = "input directory"
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (readable)", path)}
}

// CheckTools evaluates the external tool requirements.
func CheckTools() []deps.Status {
	return deps.CheckBinaries(deps.Requirements())
}

// RequiredToolsAvailable reports whether every non-optional tool is on
// the PATH, listing the missing ones.
func RequiredToolsAvailable() (bool, []string) {
	var missing []string
	for _, status := range CheckTools() {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return len(missing) == 0, missing
}

// CheckAll runs directory checks against the configuration plus the tool
// checks, for the preflight command's table.
func CheckAll(cfg *config.Config, inputDir string) []Result {
	results := []Result{}
	if inputDir != "" {
		results = append(results, CheckInputAccess(inputDir))
	}
	results = append(results,
		CheckDirectoryAccess("output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("work directory", cfg.Paths.WorkDir),
	)
	for _, status := range CheckTools() {
		result := Result{Name: status.Name, Passed: status.Available, Detail: status.Description}
		if !status.Available {
			result.Detail = status.Detail
			if status.Optional {
				result.Detail += " (optional)"
			}
		}
		results = append(results, result)
	}
	return results
}

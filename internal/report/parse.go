package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// RunStats is the summary-statistics document the per-sample compute
// stage emits.
type RunStats struct {
	ReadsMapped int `json:"reads_mapped"`
	Variants    int `json:"variants"`
}

// ParseRunStats loads a per-sample summary statistics document.
func ParseRunStats(path string) (*RunStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var stats RunStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &stats, nil
}

// coverageFloor is the depth above which a position counts as covered.
const coverageFloor = 20

// DepthSummary condenses a per-position depth table.
type DepthSummary struct {
	Positions int
	MeanDepth float64
	// Coverage is the fraction of positions at or above the floor.
	Coverage float64
}

// ParseDepthTSV summarizes a two-column position/depth table.
func ParseDepthTSV(path string) (*DepthSummary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var positions, covered int
	var total int64
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%s: malformed depth line %q", path, line)
		}
		depth, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil {
			return nil, fmt.Errorf("%s: malformed depth value %q", path, fields[len(fields)-1])
		}
		positions++
		total += int64(depth)
		if depth >= coverageFloor {
			covered++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	summary := &DepthSummary{Positions: positions}
	if positions > 0 {
		summary.MeanDepth = float64(total) / float64(positions)
		summary.Coverage = float64(covered) / float64(positions)
	}
	return summary, nil
}

// ParseReadCount sums the num_seqs column of a tab-separated seqkit
// stats table.
func ParseReadCount(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	column := -1
	total := 0
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if column < 0 {
			for i, name := range fields {
				if name == "num_seqs" {
					column = i
					break
				}
			}
			if column < 0 {
				return 0, fmt.Errorf("%s: no num_seqs column", path)
			}
			continue
		}
		if len(fields) <= column {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(fields[column]))
		if err != nil {
			return 0, fmt.Errorf("%s: malformed num_seqs value %q", path, fields[column])
		}
		total += count
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return total, nil
}

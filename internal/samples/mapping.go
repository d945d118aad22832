package samples

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"ampliflow/internal/services"
)

// mappingTable holds the id -> display name table in file order.
type mappingTable struct {
	names map[string]string
	order []string
}

// loadOrSynthesizeMapping loads the mapping file when one is supplied and
// otherwise synthesizes the identity mapping over the discovered containers.
func loadOrSynthesizeMapping(containers []string, path string) (*mappingTable, error) {
	if strings.TrimSpace(path) == "" {
		table := &mappingTable{names: make(map[string]string, len(containers))}
		for _, dir := range containers {
			table.names[dir] = dir
			table.order = append(table.order, dir)
		}
		return table, nil
	}
	return loadMapping(path)
}

// loadMapping parses a tabular sample mapping with columns id and
// display_name. Comma and tab delimiters are both accepted; a header row
// is skipped when present.
func loadMapping(path string) (*mappingTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrResolution, "samples", "open mapping", path, err)
	}
	defer file.Close()

	probe := make([]byte, 4096)
	n, _ := file.Read(probe)
	delimiter := ','
	if strings.ContainsRune(string(probe[:n]), '\t') {
		delimiter = '\t'
	}
	if _, err := file.Seek(0, 0); err != nil {
		return nil, services.Wrap(services.ErrResolution, "samples", "read mapping", path, err)
	}

	reader := csv.NewReader(file)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, services.Wrap(services.ErrResolution, "samples", "parse mapping", path, err)
	}

	table := &mappingTable{names: make(map[string]string, len(records))}
	for i, record := range records {
		if len(record) == 0 || (len(record) == 1 && strings.TrimSpace(record[0]) == "") {
			continue
		}
		if len(record) < 2 {
			return nil, services.Wrap(services.ErrResolution, "samples", "parse mapping",
				fmt.Sprintf("%s: line %d has %d column(s), want 2", path, i+1, len(record)), nil)
		}
		id := strings.TrimSpace(record[0])
		display := strings.TrimSpace(record[1])
		if i == 0 && isHeaderRow(id) {
			continue
		}
		if id == "" {
			continue
		}
		if _, dup := table.names[id]; dup {
			return nil, services.Wrap(services.ErrResolution, "samples", "parse mapping",
				fmt.Sprintf("%s: duplicate sample id %q", path, id), nil)
		}
		if display == "" {
			display = id
		}
		table.names[id] = display
		table.order = append(table.order, id)
	}
	return table, nil
}

func isHeaderRow(first string) bool {
	switch strings.ToLower(first) {
	case "id", "barcode", "sample", "sample_id":
		return true
	}
	return false
}

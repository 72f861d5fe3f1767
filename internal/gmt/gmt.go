// Package gmt reads and writes the GMT (gene matrix transposed) geneset
// exchange format: one pathway per line, tab-separated, with the pathway
// name, a description slot carrying the backend identifier, and the member
// symbols.
package gmt

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"compath/pkg/domain"
)

const separator = "\t"

// Parse reads GMT lines into pathway records. Blank lines and lines starting
// with '#' are skipped. A line needs at least the name and description
// columns; an empty description falls back to the name as identifier.
func Parse(r io.Reader) ([]domain.PathwayRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var records []domain.PathwayRecord
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r\n")
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, separator)
		if len(fields) < 2 {
			return nil, fmt.Errorf("gmt: line %d: expected at least name and description columns", line)
		}
		name := fields[0]
		identifier := fields[1]
		if identifier == "" || identifier == "na" {
			identifier = name
		}
		var symbols []string
		for _, symbol := range fields[2:] {
			if symbol == "" {
				continue
			}
			symbols = append(symbols, symbol)
		}
		records = append(records, domain.PathwayRecord{
			Identifier: identifier,
			Name:       name,
			Symbols:    symbols,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("gmt: read: %w", err)
	}
	return records, nil
}

// Write renders a name-keyed geneset mapping as GMT, sorted by pathway name
// with sorted symbols, so output is deterministic. The description column is
// written as "na" because the name-keyed export has no identifier.
func Write(w io.Writer, genesets map[string]domain.GeneSet) error {
	names := make([]string, 0, len(genesets))
	for name := range genesets {
		names = append(names, name)
	}
	sort.Strings(names)
	bw := bufio.NewWriter(w)
	for _, name := range names {
		row := append([]string{name, "na"}, genesets[name].Sorted()...)
		if _, err := bw.WriteString(strings.Join(row, separator) + "\n"); err != nil {
			return fmt.Errorf("gmt: write %s: %w", name, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("gmt: flush: %w", err)
	}
	return nil
}

// WriteRecords renders populated records as GMT, preserving identifiers in
// the description column. Records are sorted by identifier.
func WriteRecords(w io.Writer, records []domain.PathwayRecord) error {
	sorted := make([]domain.PathwayRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Identifier < sorted[j].Identifier })
	bw := bufio.NewWriter(w)
	for _, rec := range sorted {
		symbols := domain.NewGeneSet(rec.Symbols...).Sorted()
		row := append([]string{rec.Name, rec.Identifier}, symbols...)
		if _, err := bw.WriteString(strings.Join(row, separator) + "\n"); err != nil {
			return fmt.Errorf("gmt: write %s: %w", rec.Identifier, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("gmt: flush: %w", err)
	}
	return nil
}

package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// maxLoggedCellErrors caps the invalid cells logged per file.
const maxLoggedCellErrors = 5

// ReadCSV parses a seed CSV for def. Invalid cells become nil and are
// returned alongside the rows.
func ReadCSV(r io.Reader, def TableDefinition) ([]TableRow, []ValidationError, error) {
	cr := NewCSVReader(r)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	headerIdx, err := ValidateHeaders(header, def.FieldSpecs)
	if err != nil {
		return nil, nil, err
	}

	parser := NewRowParser(def.FieldSpecs, headerIdx)
	var (
		rows []TableRow
		errs []ValidationError
	)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if blankRecord(record) {
			continue
		}

		row, cellErrs := parser.ParseRow(record)
		for _, ce := range cellErrs {
			ce.Line = line
			errs = append(errs, ce)
		}
		rows = append(rows, row)
	}
	return rows, errs, nil
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if CleanCell(cell) != "" {
			return false
		}
	}
	return true
}

// LoadDir seeds the source from CSV files laid out as
// dir/<Group>/<Directory>/*.csv for every registered table. Files are read
// in name order. Tables without a folder are left empty.
func (m *MemorySource) LoadDir(ctx context.Context, dir string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	for _, def := range All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		folder := def.Info.Directory
		if folder == "" {
			folder = def.Info.Key
		}
		files, err := filepath.Glob(filepath.Join(dir, def.Info.Group, folder, "*.csv"))
		if err != nil {
			return fmt.Errorf("glob %s: %w", def.Info.Key, err)
		}
		sort.Strings(files)

		for _, path := range files {
			n, err := m.loadFile(path, def, logger)
			if err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}
			logger.Info("seeded table", "table", def.Info.Key, "file", filepath.Base(path), "rows", n)
		}
	}
	return nil
}

func (m *MemorySource) loadFile(path string, def TableDefinition, logger *slog.Logger) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	rows, cellErrs, err := ReadCSV(f, def)
	if err != nil {
		return 0, err
	}
	if len(cellErrs) > 0 {
		logger.Warn("invalid seed cells",
			"table", def.Info.Key,
			"file", filepath.Base(path),
			"count", len(cellErrs),
		)
		for _, ce := range cellErrs[:min(len(cellErrs), maxLoggedCellErrors)] {
			logger.Debug("invalid seed cell", "table", def.Info.Key, "error", ce.Error(), "value", ce.Value)
		}
	}

	m.Append(def.Info.Key, rows)
	return len(rows), nil
}

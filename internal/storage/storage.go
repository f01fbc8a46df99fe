package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/maltedev/deal-scraper/internal/cleaning"
	"github.com/maltedev/deal-scraper/internal/models"
)

// Store reads and writes the raw and clean deal tables.
type Store struct {
	RawPath   string
	CleanPath string
}

func NewStore(rawPath, cleanPath string) *Store {
	return &Store{RawPath: rawPath, CleanPath: cleanPath}
}

// Merge appends batch to existing. Nothing is deduplicated or modified; the
// result always has len(existing)+len(batch) rows, existing first.
func Merge(existing, batch []models.RawProduct) []models.RawProduct {
	out := make([]models.RawProduct, 0, len(existing)+len(batch))
	out = append(out, existing...)
	return append(out, batch...)
}

// LoadRaw reads the raw table. A missing file is an empty table.
func (s *Store) LoadRaw() ([]models.RawProduct, error) {
	records, err := readTable(s.RawPath, models.RawColumns)
	if err != nil {
		return nil, err
	}

	rows := make([]models.RawProduct, 0, len(records))
	for _, r := range records {
		rows = append(rows, models.RawProduct{
			Timestamp:     r["timestamp"],
			Title:         r["title"],
			Price:         r["price"],
			OriginalPrice: r["original_price"],
			Shipping:      r["shipping"],
			ItemURL:       r["item_url"],
		})
	}
	return rows, nil
}

// AppendRaw merges batch onto the stored raw table and rewrites it. It
// returns the total row count after the append.
func (s *Store) AppendRaw(batch []models.RawProduct) (int, error) {
	existing, err := s.LoadRaw()
	if err != nil {
		return 0, err
	}

	combined := Merge(existing, batch)

	rows := make([][]string, 0, len(combined))
	for _, p := range combined {
		rows = append(rows, p.Values())
	}

	if err := writeTable(s.RawPath, models.RawColumns, rows); err != nil {
		return 0, err
	}
	return len(combined), nil
}

// WriteClean replaces the clean table with rows.
func (s *Store) WriteClean(rows []models.CleanProduct) error {
	out := make([][]string, 0, len(rows))
	for _, p := range rows {
		out = append(out, []string{
			p.Timestamp,
			p.Title,
			formatOptional(p.Price),
			formatOptional(p.OriginalPrice),
			p.Shipping,
			p.ItemURL,
			formatOptional(p.DiscountPercentage),
		})
	}
	return writeTable(s.CleanPath, models.CleanColumns, out)
}

// LoadClean reads the clean table. A missing file is an empty table.
func (s *Store) LoadClean() ([]models.CleanProduct, error) {
	records, err := readTable(s.CleanPath, models.CleanColumns)
	if err != nil {
		return nil, err
	}

	rows := make([]models.CleanProduct, 0, len(records))
	for i, r := range records {
		p := models.CleanProduct{
			Timestamp: r["timestamp"],
			Title:     r["title"],
			Shipping:  r["shipping"],
			ItemURL:   r["item_url"],
		}
		if p.Price, err = parseOptional(r["price"]); err != nil {
			return nil, fmt.Errorf("row %d: price: %w", i+1, err)
		}
		if p.OriginalPrice, err = parseOptional(r["original_price"]); err != nil {
			return nil, fmt.Errorf("row %d: original_price: %w", i+1, err)
		}
		if p.DiscountPercentage, err = parseOptional(r["discount_percentage"]); err != nil {
			return nil, fmt.Errorf("row %d: discount_percentage: %w", i+1, err)
		}
		rows = append(rows, p)
	}
	return rows, nil
}

func readTable(path string, columns []string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, c := range columns {
		if _, ok := index[c]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", path, c)
		}
	}

	var records []map[string]string
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		rec := make(map[string]string, len(columns))
		for _, c := range columns {
			if i := index[c]; i < len(fields) {
				rec[c] = fields[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// writeTable writes to a temp file first and renames it over path, so a
// failed write never truncates the existing table.
func writeTable(path string, header []string, rows [][]string) error {
	tmpFile := path + ".tmp"

	f, err := os.Create(tmpFile)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmpFile, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("failed to write rows: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to close %s: %w", tmpFile, err)
	}

	return os.Rename(tmpFile, path)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return cleaning.FormatNumber(*v)
}

func parseOptional(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Package importer turns bank statement exports into transaction drafts.
package importer

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/faheemho18/monefy-pwa-clone/internal/ledger"
	"github.com/faheemho18/monefy-pwa-clone/internal/model"
)

// Row is one line of a bank statement. Amount is unsigned; Kind says which
// way the money moved (expense for money out).
type Row struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Kind        model.Kind
}

// Parser reads one bank's CSV layout.
type Parser interface {
	Parse(r io.Reader) ([]Row, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats lists the registered format names, sorted.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	r.Register(&GenericParser{})
	return r
}

// Targets names the categories imported rows are filed under.
type Targets struct {
	ExpenseCategoryID string
	IncomeCategoryID  string
}

// ToDrafts maps rows to transaction drafts filed under the target category
// for their kind. Zero-amount rows are skipped. Descriptions are cut to the
// model limit.
func ToDrafts(rows []Row, to Targets) []ledger.TransactionDraft {
	drafts := make([]ledger.TransactionDraft, 0, len(rows))
	for _, row := range rows {
		if row.Amount.IsZero() {
			continue
		}
		category := to.IncomeCategoryID
		if row.Kind == model.KindExpense {
			category = to.ExpenseCategoryID
		}
		drafts = append(drafts, ledger.TransactionDraft{
			Amount:      row.Amount,
			Kind:        row.Kind,
			CategoryID:  category,
			Description: truncate(row.Description, model.MaxDescriptionLen),
			OccurredAt:  row.Date,
		})
	}
	return drafts
}

// parseAmount reads a statement amount such as "-4.00", "$1,234.56" or
// "(12.34)" and returns its magnitude with the kind its sign implies.
func parseAmount(s string) (decimal.Decimal, model.Kind, error) {
	raw := strings.TrimSpace(s)
	clean := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		negative = true
		clean = clean[1 : len(clean)-1]
	}
	amount, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, "", fmt.Errorf("parsing amount %q: %w", raw, err)
	}
	if negative {
		amount = amount.Neg()
	}
	if amount.IsNegative() {
		return amount.Abs(), model.KindExpense, nil
	}
	return amount, model.KindIncome, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// FileInfo describes a CSV file waiting in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

const (
	importDir    = "import"
	processedDir = "import/processed"
)

// Scan returns CSV files in <dataDir>/import/.
func Scan(dataDir string) ([]FileInfo, error) {
	dir := filepath.Join(dataDir, importDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{Name: e.Name(), Path: filepath.Join(dir, e.Name()), Size: info.Size()})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/ so it is not
// imported twice.
func MarkProcessed(dataDir, fileName string) error {
	dstDir := filepath.Join(dataDir, processedDir)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}
	if err := os.Rename(filepath.Join(dataDir, importDir, fileName), filepath.Join(dstDir, fileName)); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}

package ledger

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/faheemho18/monefy-pwa-clone/internal/id"
	"github.com/faheemho18/monefy-pwa-clone/internal/model"
	"github.com/faheemho18/monefy-pwa-clone/internal/store"
)

var (
	// ErrNotFound is returned for an unknown transaction or category id.
	ErrNotFound = errors.New("not found")

	// ErrKindChange is returned when an edit tries to switch expense and income.
	ErrKindChange = errors.New("kind cannot be changed")
)

// Service provides record-level operations over the store's collections.
// Every mutation reads the full collection, changes it and writes it back.
type Service struct {
	store       *store.Store
	now         func() time.Time
	householdID string
	userID      string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithOwner stamps new records with a household and user.
func WithOwner(householdID, userID string) Option {
	return func(s *Service) {
		s.householdID = householdID
		s.userID = userID
	}
}

func NewService(st *store.Store, opts ...Option) *Service {
	s := &Service{store: st, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// TransactionDraft holds the caller-supplied fields of a transaction.
type TransactionDraft struct {
	Amount      decimal.Decimal
	Kind        model.Kind
	CategoryID  string
	Description string
	OccurredAt  time.Time
}

// CategoryDraft holds the user-editable fields of a category. A zero Order on
// add places the category after the existing ones of its kind.
type CategoryDraft struct {
	Name  string
	Icon  string
	Color string
	Kind  model.Kind
	Order int
}

// AddTransaction validates the draft, assigns an id and timestamps, and
// stores it. New transactions are marked synced.
func (s *Service) AddTransaction(d TransactionDraft) (model.Transaction, error) {
	added, err := s.AddTransactions([]TransactionDraft{d})
	if err != nil {
		var verrs model.ValidationErrors
		if errors.As(err, &verrs) {
			return model.Transaction{}, verrs
		}
		return model.Transaction{}, err
	}
	return added[0], nil
}

// AddTransactions stores several drafts with one write. Nothing is stored if
// any draft is invalid.
func (s *Service) AddTransactions(drafts []TransactionDraft) ([]model.Transaction, error) {
	now := s.now().UTC()
	added := make([]model.Transaction, 0, len(drafts))
	for i, d := range drafts {
		txn := model.Transaction{
			ID:           id.New(),
			Amount:       d.Amount,
			Kind:         d.Kind,
			CategoryID:   d.CategoryID,
			Description:  strings.TrimSpace(d.Description),
			OccurredAt:   d.OccurredAt.UTC(),
			HouseholdID:  s.householdID,
			UserID:       s.userID,
			SyncStatus:   model.SyncSynced,
			CreatedAt:    now,
			LastModified: now,
		}
		if err := model.ValidateTransaction(txn, now); err != nil {
			return nil, fmt.Errorf("draft %d: %w", i+1, err)
		}
		added = append(added, txn)
	}
	if len(added) == 0 {
		return added, nil
	}

	txns := append(s.store.Transactions(), added...)
	if err := s.store.SetTransactions(sortTransactions(txns)); err != nil {
		return nil, fmt.Errorf("saving transactions: %w", err)
	}
	return added, nil
}

// UpdateTransaction replaces the editable fields of a transaction. The id,
// CreatedAt and kind are kept; LastModified is bumped.
func (s *Service) UpdateTransaction(txnID string, d TransactionDraft) (model.Transaction, error) {
	txns := s.store.Transactions()
	i := slices.IndexFunc(txns, func(t model.Transaction) bool { return t.ID == txnID })
	if i < 0 {
		return model.Transaction{}, fmt.Errorf("transaction %q: %w", txnID, ErrNotFound)
	}
	old := txns[i]
	if d.Kind != "" && d.Kind != old.Kind {
		return model.Transaction{}, fmt.Errorf("transaction %q is %s: %w", txnID, old.Kind, ErrKindChange)
	}

	now := s.now().UTC()
	updated := old
	updated.Amount = d.Amount
	updated.CategoryID = d.CategoryID
	updated.Description = strings.TrimSpace(d.Description)
	updated.OccurredAt = d.OccurredAt.UTC()
	updated.LastModified = now
	if err := model.ValidateTransaction(updated, now); err != nil {
		return model.Transaction{}, err
	}

	txns[i] = updated
	if err := s.store.SetTransactions(sortTransactions(txns)); err != nil {
		return model.Transaction{}, fmt.Errorf("saving transaction: %w", err)
	}
	return updated, nil
}

// DeleteTransaction removes a transaction. It cannot be recovered except from
// a backup.
func (s *Service) DeleteTransaction(txnID string) error {
	txns := s.store.Transactions()
	n := len(txns)
	kept := slices.DeleteFunc(txns, func(t model.Transaction) bool { return t.ID == txnID })
	if len(kept) == n {
		return fmt.Errorf("transaction %q: %w", txnID, ErrNotFound)
	}
	if err := s.store.SetTransactions(kept); err != nil {
		return fmt.Errorf("saving transactions: %w", err)
	}
	return nil
}

// Transaction returns one transaction by id. A unique id prefix is accepted.
func (s *Service) Transaction(ref string) (model.Transaction, error) {
	if full, err := id.Parse(ref); err == nil {
		ref = full
	}
	var match []model.Transaction
	for _, t := range s.store.Transactions() {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			match = append(match, t)
		}
	}
	switch len(match) {
	case 1:
		return match[0], nil
	case 0:
		return model.Transaction{}, fmt.Errorf("transaction %q: %w", ref, ErrNotFound)
	default:
		return model.Transaction{}, fmt.Errorf("transaction prefix %q matches %d transactions", ref, len(match))
	}
}

// MergeTransactions adds records read back from a spreadsheet export. Records
// whose id is already stored are skipped; a missing or malformed id is
// replaced. Ownership fields are taken from the service, an empty sync status
// becomes synced, and missing timestamps are set to now. Nothing is stored if
// any record is invalid. Returns how many were added.
func (s *Service) MergeTransactions(txns []model.Transaction) (int, error) {
	now := s.now().UTC()
	current := s.store.Transactions()
	seen := make(map[string]bool, len(current))
	for _, t := range current {
		seen[t.ID] = true
	}

	var added []model.Transaction
	for i, t := range txns {
		if !id.Valid(t.ID) {
			t.ID = id.New()
		} else {
			t.ID, _ = id.Parse(t.ID)
		}
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true

		t.HouseholdID, t.UserID = s.householdID, s.userID
		if t.SyncStatus == "" {
			t.SyncStatus = model.SyncSynced
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		if t.LastModified.IsZero() {
			t.LastModified = now
		}
		if err := model.ValidateTransaction(t, now); err != nil {
			return 0, fmt.Errorf("record %d: %w", i+1, err)
		}
		added = append(added, t)
	}
	if len(added) == 0 {
		return 0, nil
	}
	if err := s.store.SetTransactions(sortTransactions(append(current, added...))); err != nil {
		return 0, fmt.Errorf("saving transactions: %w", err)
	}
	return len(added), nil
}

// Transactions returns every transaction, newest first.
func (s *Service) Transactions() []model.Transaction {
	return sortTransactions(s.store.Transactions())
}

// Categories returns every category, expenses first, then by display order.
func (s *Service) Categories() []model.Category {
	return sortCategories(s.store.Categories())
}

// CategoryIndex returns a lookup over the stored categories.
func (s *Service) CategoryIndex() *Categories {
	return NewCategories(s.Categories())
}

// CategoryFor resolves the category of t, falling back to an Unknown placeholder.
func (s *Service) CategoryFor(t model.Transaction) model.Category {
	return s.CategoryIndex().For(t)
}

// AddCategory validates the draft and stores a new user category.
func (s *Service) AddCategory(d CategoryDraft) (model.Category, error) {
	cats := s.store.Categories()
	cat := model.Category{
		ID:          id.New(),
		Name:        strings.TrimSpace(d.Name),
		Icon:        d.Icon,
		Color:       d.Color,
		Kind:        d.Kind,
		HouseholdID: s.householdID,
		Order:       d.Order,
	}
	if err := model.ValidateCategory(cat); err != nil {
		return model.Category{}, err
	}
	if _, dup := NewCategories(cats).ByName(cat.Kind, cat.Name); dup {
		return model.Category{}, model.ValidationErrors{{Field: "name", Message: fmt.Sprintf("%s category %q already exists", cat.Kind, cat.Name)}}
	}
	if cat.Order == 0 {
		for _, c := range cats {
			if c.Kind == cat.Kind {
				cat.Order = max(cat.Order, c.Order)
			}
		}
		cat.Order++
	}

	if err := s.store.SetCategories(append(cats, cat)); err != nil {
		return model.Category{}, fmt.Errorf("saving category: %w", err)
	}
	return cat, nil
}

// UpdateCategory replaces the editable fields of a category. Its kind is fixed.
func (s *Service) UpdateCategory(catID string, d CategoryDraft) (model.Category, error) {
	cats := s.store.Categories()
	i := slices.IndexFunc(cats, func(c model.Category) bool { return c.ID == catID })
	if i < 0 {
		return model.Category{}, fmt.Errorf("category %q: %w", catID, ErrNotFound)
	}
	if d.Kind != "" && d.Kind != cats[i].Kind {
		return model.Category{}, fmt.Errorf("category %q is %s: %w", catID, cats[i].Kind, ErrKindChange)
	}

	updated := cats[i]
	updated.Name = strings.TrimSpace(d.Name)
	updated.Icon = d.Icon
	updated.Color = d.Color
	updated.Order = d.Order
	if err := model.ValidateCategory(updated); err != nil {
		return model.Category{}, err
	}

	cats[i] = updated
	if err := s.store.SetCategories(cats); err != nil {
		return model.Category{}, fmt.Errorf("saving category: %w", err)
	}
	return updated, nil
}

// DeleteCategory removes a category and reports how many transactions still
// reference it. Those transactions keep the dangling id.
func (s *Service) DeleteCategory(catID string) (int, error) {
	cats := s.store.Categories()
	kept := slices.DeleteFunc(slices.Clone(cats), func(c model.Category) bool { return c.ID == catID })
	if len(kept) == len(cats) {
		return 0, fmt.Errorf("category %q: %w", catID, ErrNotFound)
	}
	if err := s.store.SetCategories(kept); err != nil {
		return 0, fmt.Errorf("saving categories: %w", err)
	}

	orphaned := 0
	for _, t := range s.store.Transactions() {
		if t.CategoryID == catID {
			orphaned++
		}
	}
	return orphaned, nil
}

// SeedDefaultCategories stores the default categories if none exist yet.
// Returns how many were added.
func (s *Service) SeedDefaultCategories() (int, error) {
	if len(s.store.Categories()) > 0 {
		return 0, nil
	}
	cats := DefaultCategories()
	for i := range cats {
		cats[i].ID = id.New()
		cats[i].HouseholdID = s.householdID
	}
	if err := s.store.SetCategories(cats); err != nil {
		return 0, fmt.Errorf("seeding categories: %w", err)
	}
	return len(cats), nil
}

func sortTransactions(txns []model.Transaction) []model.Transaction {
	slices.SortStableFunc(txns, func(a, b model.Transaction) int {
		if c := b.OccurredAt.Compare(a.OccurredAt); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return txns
}

func sortCategories(cats []model.Category) []model.Category {
	rank := func(k model.Kind) int {
		if k == model.KindExpense {
			return 0
		}
		return 1
	}
	slices.SortStableFunc(cats, func(a, b model.Category) int {
		return cmp.Or(
			cmp.Compare(rank(a.Kind), rank(b.Kind)),
			cmp.Compare(a.Order, b.Order),
			strings.Compare(a.Name, b.Name),
		)
	})
	return cats
}

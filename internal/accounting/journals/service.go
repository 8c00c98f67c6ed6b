package journals

import (
	"context"
	"fmt"
	"time"

	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/accounts"
	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/fiscalyears"
	acctshared "github.com/grandlivre-erp/grandlivre-erp/internal/accounting/shared"
	"github.com/grandlivre-erp/grandlivre-erp/internal/shared"
)

// AccountLookup resolves chart-of-accounts numbers.
type AccountLookup interface {
	GetByNumber(ctx context.Context, orgID int64, number string) (accounts.Account, error)
}

// FiscalYearLookup resolves the exercise covering a date. The repository
// re-checks under a row lock inside the posting transaction; this lookup is
// the fast-fail path.
type FiscalYearLookup interface {
	FindByDate(ctx context.Context, orgID int64, date time.Time) (fiscalyears.FiscalYear, error)
}

// AuditPort records journal lifecycle events.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CachePort invalidates cached ledger aggregates after a write.
type CachePort interface {
	Bump(ctx context.Context, orgID int64) error
}

// Service coordinates journal entry lifecycle.
type Service struct {
	repo     Repository
	accounts AccountLookup
	years    FiscalYearLookup
	audit    AuditPort
	cache    CachePort
	now      func() time.Time
}

// NewService constructs the journal service.
func NewService(repo Repository, accounts AccountLookup, years FiscalYearLookup, audit AuditPort, cache CachePort) *Service {
	return &Service{
		repo:     repo,
		accounts: accounts,
		years:    years,
		audit:    audit,
		cache:    cache,
		now:      time.Now,
	}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Post validates and posts an entry in one step. The entry number is
// allocated inside the posting transaction, so a validation failure never
// consumes a number.
func (s *Service) Post(ctx context.Context, actorID int64, in EntryInput) (Entry, error) {
	entry, err := s.prepare(ctx, actorID, in)
	if err != nil {
		return Entry{}, err
	}
	fy, err := s.years.FindByDate(ctx, entry.OrgID, entry.EntryDate)
	if err != nil {
		return Entry{}, err
	}
	if fy.IsClosed {
		return Entry{}, acctshared.ErrFiscalYearClosed
	}

	saved, err := s.repo.PostEntry(ctx, entry, s.now())
	if err != nil {
		return Entry{}, err
	}
	s.record(ctx, saved, actorID, "journal.post")
	s.bump(ctx, saved.OrgID)
	return saved, nil
}

// SaveDraft validates and stores an entry without posting it. Drafts carry
// no number and are excluded from every report.
func (s *Service) SaveDraft(ctx context.Context, actorID int64, in EntryInput) (Entry, error) {
	entry, err := s.prepare(ctx, actorID, in)
	if err != nil {
		return Entry{}, err
	}
	saved, err := s.repo.InsertDraft(ctx, entry)
	if err != nil {
		return Entry{}, err
	}
	s.record(ctx, saved, actorID, "journal.draft")
	return saved, nil
}

// UpdateDraft replaces a draft's header and lines. Posted entries are
// immutable and rejected by the repository.
func (s *Service) UpdateDraft(ctx context.Context, actorID, id int64, in EntryInput) (Entry, error) {
	entry, err := s.prepare(ctx, actorID, in)
	if err != nil {
		return Entry{}, err
	}
	entry.ID = id
	saved, err := s.repo.UpdateDraft(ctx, entry)
	if err != nil {
		return Entry{}, err
	}
	s.record(ctx, saved, actorID, "journal.draft.update")
	return saved, nil
}

// PostDraft promotes an existing draft to posted.
func (s *Service) PostDraft(ctx context.Context, orgID, actorID, id int64) (Entry, error) {
	current, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return Entry{}, err
	}
	if current.Status != StatusDraft {
		return Entry{}, acctshared.ErrInvalidStatus
	}
	if err := validateBalance(current); err != nil {
		return Entry{}, err
	}
	saved, err := s.repo.PostDraft(ctx, orgID, id, s.now())
	if err != nil {
		return Entry{}, err
	}
	s.record(ctx, saved, actorID, "journal.post")
	s.bump(ctx, orgID)
	return saved, nil
}

// Cancel flips a posted entry to cancelled. Cancelled entries stay in the
// journal for audit but drop out of ledgers and reports. Entries dated
// inside a closed fiscal year cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, orgID, actorID, id int64) (Entry, error) {
	current, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return Entry{}, err
	}
	if current.Status != StatusPosted {
		return Entry{}, acctshared.ErrInvalidStatus
	}
	fy, err := s.years.FindByDate(ctx, orgID, current.EntryDate)
	if err == nil && fy.IsClosed {
		return Entry{}, acctshared.ErrFiscalYearClosed
	}
	saved, err := s.repo.CancelEntry(ctx, orgID, id, s.now())
	if err != nil {
		return Entry{}, err
	}
	s.record(ctx, saved, actorID, "journal.cancel")
	s.bump(ctx, orgID)
	return saved, nil
}

// DeleteDraft removes a draft permanently. Posted and cancelled entries can
// never be deleted.
func (s *Service) DeleteDraft(ctx context.Context, orgID, actorID, id int64) error {
	if err := s.repo.DeleteDraft(ctx, orgID, id); err != nil {
		return err
	}
	s.record(ctx, Entry{ID: id, OrgID: orgID}, actorID, "journal.draft.delete")
	return nil
}

// Get fetches an entry with its lines.
func (s *Service) Get(ctx context.Context, orgID, id int64) (Entry, error) {
	return s.repo.Get(ctx, orgID, id)
}

// List returns entries matching the filter plus the total match count.
func (s *Service) List(ctx context.Context, orgID int64, filter ListFilter) ([]Entry, int, error) {
	if filter.Journal != "" && !filter.Journal.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown journal %q", acctshared.ErrInvalidInput, filter.Journal)
	}
	return s.repo.List(ctx, orgID, filter)
}

// prepare validates the input and resolves every referenced account.
func (s *Service) prepare(ctx context.Context, actorID int64, in EntryInput) (Entry, error) {
	entry, err := in.Validate()
	if err != nil {
		return Entry{}, err
	}
	for _, line := range entry.Lines {
		account, err := s.accounts.GetByNumber(ctx, entry.OrgID, line.AccountNumber)
		if err != nil {
			return Entry{}, fmt.Errorf("line account %s: %w", line.AccountNumber, err)
		}
		if !account.IsActive {
			return Entry{}, fmt.Errorf("%w: account %s is inactive", acctshared.ErrInvalidInput, line.AccountNumber)
		}
	}
	entry.CreatedBy = actorID
	return entry, nil
}

func validateBalance(entry Entry) error {
	if len(entry.Lines) < 2 {
		return acctshared.ErrTooFewLines
	}
	debit, credit := entry.TotalDebit(), entry.TotalCredit()
	diff := debit - credit
	if diff < 0 {
		diff = -diff
	}
	if diff > acctshared.BalanceTolerance {
		return &acctshared.UnbalancedEntryError{TotalDebit: debit, TotalCredit: credit}
	}
	return nil
}

func (s *Service) record(ctx context.Context, entry Entry, actorID int64, action string) {
	if s.audit == nil {
		return
	}
	meta := map[string]any{"journal": string(entry.Journal)}
	if entry.Number != nil {
		meta["number"] = *entry.Number
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		OrgID:    entry.OrgID,
		ActorID:  actorID,
		Action:   action,
		Entity:   "journal_entry",
		EntityID: fmt.Sprintf("%d", entry.ID),
		Meta:     meta,
		At:       s.now(),
	})
}

func (s *Service) bump(ctx context.Context, orgID int64) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Bump(ctx, orgID)
}

package journals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/accounts"
	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/fiscalyears"
	acctshared "github.com/grandlivre-erp/grandlivre-erp/internal/accounting/shared"
	_ "github.com/grandlivre-erp/grandlivre-erp/testing"
)

type stubRepo struct {
	entries    map[int64]Entry
	nextID     int64
	nextNumber int64
	yearClosed bool
}

func newStubRepo() *stubRepo {
	return &stubRepo{entries: make(map[int64]Entry), nextID: 1, nextNumber: 1}
}

func (r *stubRepo) Get(ctx context.Context, orgID, id int64) (Entry, error) {
	e, ok := r.entries[id]
	if !ok {
		return Entry{}, acctshared.ErrJournalNotFound
	}
	return e, nil
}

func (r *stubRepo) List(ctx context.Context, orgID int64, filter ListFilter) ([]Entry, int, error) {
	var out []Entry
	for _, e := range r.entries {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, e)
	}
	return out, len(out), nil
}

func (r *stubRepo) InsertDraft(ctx context.Context, entry Entry) (Entry, error) {
	entry.ID = r.nextID
	r.nextID++
	entry.Status = StatusDraft
	r.entries[entry.ID] = entry
	return entry, nil
}

func (r *stubRepo) UpdateDraft(ctx context.Context, entry Entry) (Entry, error) {
	current, ok := r.entries[entry.ID]
	if !ok {
		return Entry{}, acctshared.ErrJournalNotFound
	}
	if current.Status != StatusDraft {
		return Entry{}, acctshared.ErrInvalidStatus
	}
	entry.Status = StatusDraft
	r.entries[entry.ID] = entry
	return entry, nil
}

func (r *stubRepo) DeleteDraft(ctx context.Context, orgID, id int64) error {
	current, ok := r.entries[id]
	if !ok {
		return acctshared.ErrJournalNotFound
	}
	if current.Status != StatusDraft {
		return acctshared.ErrInvalidStatus
	}
	delete(r.entries, id)
	return nil
}

func (r *stubRepo) PostEntry(ctx context.Context, entry Entry, at time.Time) (Entry, error) {
	if r.yearClosed {
		return Entry{}, acctshared.ErrFiscalYearClosed
	}
	entry.ID = r.nextID
	r.nextID++
	number := r.nextNumber
	r.nextNumber++
	entry.Number = &number
	entry.Status = StatusPosted
	entry.PostedAt = &at
	r.entries[entry.ID] = entry
	return entry, nil
}

func (r *stubRepo) PostDraft(ctx context.Context, orgID, id int64, at time.Time) (Entry, error) {
	current, ok := r.entries[id]
	if !ok {
		return Entry{}, acctshared.ErrJournalNotFound
	}
	if current.Status != StatusDraft {
		return Entry{}, acctshared.ErrInvalidStatus
	}
	if r.yearClosed {
		return Entry{}, acctshared.ErrFiscalYearClosed
	}
	number := r.nextNumber
	r.nextNumber++
	current.Number = &number
	current.Status = StatusPosted
	current.PostedAt = &at
	r.entries[id] = current
	return current, nil
}

func (r *stubRepo) CancelEntry(ctx context.Context, orgID, id int64, at time.Time) (Entry, error) {
	current, ok := r.entries[id]
	if !ok {
		return Entry{}, acctshared.ErrJournalNotFound
	}
	if current.Status != StatusPosted {
		return Entry{}, acctshared.ErrInvalidStatus
	}
	current.Status = StatusCancelled
	current.CancelledAt = &at
	r.entries[id] = current
	return current, nil
}

type stubAccounts struct {
	inactive map[string]bool
	missing  map[string]bool
}

func (a *stubAccounts) GetByNumber(ctx context.Context, orgID int64, number string) (accounts.Account, error) {
	if a.missing[number] {
		return accounts.Account{}, acctshared.ErrAccountNotFound
	}
	return accounts.Account{Number: number, IsActive: !a.inactive[number]}, nil
}

type stubYears struct {
	closed bool
}

func (y *stubYears) FindByDate(ctx context.Context, orgID int64, date time.Time) (fiscalyears.FiscalYear, error) {
	return fiscalyears.FiscalYear{
		ID:        1,
		OrgID:     orgID,
		StartDate: time.Date(date.Year(), 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(date.Year(), 12, 31, 0, 0, 0, 0, time.UTC),
		IsClosed:  y.closed,
	}, nil
}

type stubCache struct {
	bumps int
}

func (c *stubCache) Bump(ctx context.Context, orgID int64) error {
	c.bumps++
	return nil
}

func newTestService(repo *stubRepo, accountsStub *stubAccounts, years *stubYears, cache *stubCache) *Service {
	if accountsStub == nil {
		accountsStub = &stubAccounts{}
	}
	if years == nil {
		years = &stubYears{}
	}
	// A nil *stubCache must reach NewService as a nil interface, otherwise
	// the service's cache guard never trips and Bump panics.
	var cachePort CachePort
	if cache != nil {
		cachePort = cache
	}
	svc := NewService(repo, accountsStub, years, nil, cachePort)
	svc.WithNow(func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) })
	return svc
}

func balancedInput() EntryInput {
	return EntryInput{
		OrgID:     1,
		EntryDate: "2026-03-10",
		Journal:   "sales",
		Lines: []LineInput{
			{AccountNumber: "411", Label: "Client Dupont", Debit: 1200},
			{AccountNumber: "701", Label: "Prestation", Credit: 1000},
			{AccountNumber: "44571", Label: "TVA 20%", Credit: 200},
		},
	}
}

func TestPostAssignsSequentialNumbers(t *testing.T) {
	repo := newStubRepo()
	service := newTestService(repo, nil, nil, nil)

	first, err := service.Post(context.Background(), 1, balancedInput())
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	second, err := service.Post(context.Background(), 1, balancedInput())
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if first.Number == nil || *first.Number != 1 {
		t.Fatalf("expected number 1, got %v", first.Number)
	}
	if second.Number == nil || *second.Number != 2 {
		t.Fatalf("expected number 2, got %v", second.Number)
	}
	if first.Status != StatusPosted {
		t.Fatalf("expected posted status, got %s", first.Status)
	}
}

func TestPostRejectsUnbalancedEntry(t *testing.T) {
	repo := newStubRepo()
	service := newTestService(repo, nil, nil, nil)

	in := EntryInput{
		OrgID:     1,
		EntryDate: "2026-03-10",
		Journal:   "general",
		Lines: []LineInput{
			{AccountNumber: "601", Debit: 100},
			{AccountNumber: "401", Credit: 99},
		},
	}
	_, err := service.Post(context.Background(), 1, in)
	if !errors.Is(err, acctshared.ErrUnbalanced) {
		t.Fatalf("expected ErrUnbalanced, got %v", err)
	}
	var unbalanced *acctshared.UnbalancedEntryError
	if !errors.As(err, &unbalanced) {
		t.Fatalf("expected UnbalancedEntryError, got %T", err)
	}
	if got := unbalanced.Discrepancy(); got < 0.99 || got > 1.01 {
		t.Fatalf("expected discrepancy ~1.00, got %v", got)
	}
	if len(repo.entries) != 0 {
		t.Fatal("rejected entry must not be stored")
	}
	if repo.nextNumber != 1 {
		t.Fatal("rejected entry must not consume a sequence number")
	}
}

func TestPostToleratesRoundingDiscrepancy(t *testing.T) {
	repo := newStubRepo()
	service := newTestService(repo, nil, nil, nil)

	in := EntryInput{
		OrgID:     1,
		EntryDate: "2026-03-10",
		Journal:   "general",
		Lines: []LineInput{
			{AccountNumber: "601", Debit: 100.005},
			{AccountNumber: "401", Credit: 100.00},
		},
	}
	if _, err := service.Post(context.Background(), 1, in); err != nil {
		t.Fatalf("discrepancy within tolerance must post: %v", err)
	}
}

func TestPostRejectsSingleLine(t *testing.T) {
	repo := newStubRepo()
	service := newTestService(repo, nil, nil, nil)

	in := EntryInput{
		OrgID:     1,
		EntryDate: "2026-03-10",
		Journal:   "general",
		Lines:     []LineInput{{AccountNumber: "601", Debit: 100}},
	}
	_, err := service.Post(context.Background(), 1, in)
	if !errors.Is(err, acctshared.ErrTooFewLines) {
		t.Fatalf("expected ErrTooFewLines, got %v", err)
	}
}

func TestPostRejectsLineWithBothSides(t *testing.T) {
	repo := newStubRepo()
	service := newTestService(repo, nil, nil, nil)

	in := EntryInput{
		OrgID:     1,
		EntryDate: "2026-03-10",
		Journal:   "general",
		Lines: []LineInput{
			{AccountNumber: "601", Debit: 100, Credit: 100},
			{AccountNumber: "401", Credit: 0},
		},
	}
	_, err := service.Post(context.Background(), 1, in)
	if !errors.Is(err, acctshared.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPostRejectsUnknownAccount(t *testing.T) {
	repo := newStubRepo()
	service := newTestService(repo, &stubAccounts{missing: map[string]bool{"999999": true}}, nil, nil)

	in := EntryInput{
		OrgID:     1,
		EntryDate: "2026-03-10",
		Journal:   "general",
		Lines: []LineInput{
			{AccountNumber: "999999", Debit: 50},
			{AccountNumber: "401", Credit: 50},
		},
	}
	_, err := service.Post(context.Background(), 1, in)
	if !errors.Is(err, acctshared.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestPostRejectsClosedFiscalYear(t *testing.T) {
	repo := newStubRepo()
	service := newTestService(repo, nil, &stubYears{closed: true}, nil)

	_, err := service.Post(context.Background(), 1, balancedInput())
	if !errors.Is(err, acctshared.ErrFiscalYearClosed) {
		t.Fatalf("expected ErrFiscalYearClosed, got %v", err)
	}
}

func TestPostBumpsLedgerCache(t *testing.T) {
	repo := newStubRepo()
	cache := &stubCache{}
	service := newTestService(repo, nil, nil, cache)

	if _, err := service.Post(context.Background(), 1, balancedInput()); err != nil {
		t.Fatalf("post: %v", err)
	}
	if cache.bumps != 1 {
		t.Fatalf("expected 1 cache bump, got %d", cache.bumps)
	}
}

func TestPostSucceedsWithoutCacheWired(t *testing.T) {
	repo := newStubRepo()
	service := newTestService(repo, nil, nil, nil)

	posted, err := service.Post(context.Background(), 1, balancedInput())
	if err != nil {
		t.Fatalf("post without cache: %v", err)
	}
	if posted.Status != StatusPosted {
		t.Fatalf("expected posted entry, got %s", posted.Status)
	}
}

func TestDraftLifecycle(t *testing.T) {
	repo := newStubRepo()
	service := newTestService(repo, nil, nil, nil)

	draft, err := service.SaveDraft(context.Background(), 1, balancedInput())
	if err != nil {
		t.Fatalf("save draft: %v", err)
	}
	if draft.Status != StatusDraft || draft.Number != nil {
		t.Fatalf("draft must be unnumbered, got %+v", draft)
	}

	posted, err := service.PostDraft(context.Background(), 1, 1, draft.ID)
	if err != nil {
		t.Fatalf("post draft: %v", err)
	}
	if posted.Status != StatusPosted || posted.Number == nil {
		t.Fatalf("expected numbered posted entry, got %+v", posted)
	}

	// Posted entries cannot be posted again or deleted.
	if _, err := service.PostDraft(context.Background(), 1, 1, draft.ID); !errors.Is(err, acctshared.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if err := service.DeleteDraft(context.Background(), 1, 1, draft.ID); !errors.Is(err, acctshared.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus on delete, got %v", err)
	}
}

func TestCancelOnlyPostedEntries(t *testing.T) {
	repo := newStubRepo()
	cache := &stubCache{}
	service := newTestService(repo, nil, nil, cache)

	draft, err := service.SaveDraft(context.Background(), 1, balancedInput())
	if err != nil {
		t.Fatalf("save draft: %v", err)
	}
	if _, err := service.Cancel(context.Background(), 1, 1, draft.ID); !errors.Is(err, acctshared.ErrInvalidStatus) {
		t.Fatalf("draft cancel should fail, got %v", err)
	}

	posted, err := service.Post(context.Background(), 1, balancedInput())
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	cancelled, err := service.Cancel(context.Background(), 1, 1, posted.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != StatusCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("expected cancelled entry, got %+v", cancelled)
	}
	if cancelled.Number == nil {
		t.Fatal("cancelled entry keeps its number")
	}

	// Cancel again must fail; the entry is never deleted.
	if _, err := service.Cancel(context.Background(), 1, 1, posted.ID); !errors.Is(err, acctshared.ErrInvalidStatus) {
		t.Fatalf("double cancel should fail, got %v", err)
	}
	if _, ok := repo.entries[posted.ID]; !ok {
		t.Fatal("cancelled entry must remain stored")
	}
}

func TestCancelRejectsClosedFiscalYear(t *testing.T) {
	repo := newStubRepo()
	years := &stubYears{}
	service := newTestService(repo, nil, years, nil)

	posted, err := service.Post(context.Background(), 1, balancedInput())
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	years.closed = true
	_, err = service.Cancel(context.Background(), 1, 1, posted.ID)
	if !errors.Is(err, acctshared.ErrFiscalYearClosed) {
		t.Fatalf("expected ErrFiscalYearClosed, got %v", err)
	}
}

func TestUpdateDraftRejectsPostedEntry(t *testing.T) {
	repo := newStubRepo()
	service := newTestService(repo, nil, nil, nil)

	posted, err := service.Post(context.Background(), 1, balancedInput())
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	_, err = service.UpdateDraft(context.Background(), 1, posted.ID, balancedInput())
	if !errors.Is(err, acctshared.ErrInvalidStatus) {
		t.Fatalf("posted entries are immutable, got %v", err)
	}
}

func TestJournalCodes(t *testing.T) {
	cases := map[JournalType]string{
		JournalSales:     "VE",
		JournalPurchases: "AC",
		JournalBank:      "BQ",
		JournalGeneral:   "OD",
	}
	for journal, want := range cases {
		if got := journal.Code(); got != want {
			t.Fatalf("%s: expected code %s, got %s", journal, want, got)
		}
	}
}

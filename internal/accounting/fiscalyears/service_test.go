package fiscalyears

import (
	"context"
	"errors"
	"testing"
	"time"

	acctshared "github.com/grandlivre-erp/grandlivre-erp/internal/accounting/shared"
	_ "github.com/grandlivre-erp/grandlivre-erp/testing"
)

type stubRepo struct {
	years  map[int64]FiscalYear
	nextID int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{years: make(map[int64]FiscalYear), nextID: 1}
}

func (r *stubRepo) List(ctx context.Context, orgID int64) ([]FiscalYear, error) {
	var out []FiscalYear
	for _, fy := range r.years {
		out = append(out, fy)
	}
	return out, nil
}

func (r *stubRepo) Get(ctx context.Context, orgID, id int64) (FiscalYear, error) {
	fy, ok := r.years[id]
	if !ok {
		return FiscalYear{}, acctshared.ErrFiscalYearNotFound
	}
	return fy, nil
}

func (r *stubRepo) FindByDate(ctx context.Context, orgID int64, date time.Time) (FiscalYear, error) {
	for _, fy := range r.years {
		if fy.Covers(date) {
			return fy, nil
		}
	}
	return FiscalYear{}, acctshared.ErrFiscalYearNotFound
}

func (r *stubRepo) Insert(ctx context.Context, fy FiscalYear) (FiscalYear, error) {
	fy.ID = r.nextID
	r.nextID++
	r.years[fy.ID] = fy
	return fy, nil
}

func (r *stubRepo) SetClosed(ctx context.Context, orgID, id int64, closed bool, at time.Time) error {
	fy, ok := r.years[id]
	if !ok {
		return acctshared.ErrFiscalYearNotFound
	}
	fy.IsClosed = closed
	if closed {
		fy.ClosedAt = &at
	} else {
		fy.ClosedAt = nil
	}
	r.years[id] = fy
	return nil
}

func TestCreateRejectsOverlap(t *testing.T) {
	repo := newStubRepo()
	service := NewService(repo, nil)

	_, err := service.Create(context.Background(), 1, CreateInput{
		OrgID: 1, Label: "2026", StartDate: "2026-01-01", EndDate: "2026-12-31",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = service.Create(context.Background(), 1, CreateInput{
		OrgID: 1, Label: "2026 bis", StartDate: "2026-07-01", EndDate: "2027-06-30",
	})
	if !errors.Is(err, acctshared.ErrInvalidInput) {
		t.Fatalf("expected overlap rejection, got %v", err)
	}
}

func TestCreateRejectsInvertedDates(t *testing.T) {
	repo := newStubRepo()
	service := NewService(repo, nil)

	_, err := service.Create(context.Background(), 1, CreateInput{
		OrgID: 1, Label: "broken", StartDate: "2026-12-31", EndDate: "2026-01-01",
	})
	if !errors.Is(err, acctshared.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCloseIsIdempotentRejected(t *testing.T) {
	repo := newStubRepo()
	service := NewService(repo, nil)

	fy, err := service.Create(context.Background(), 1, CreateInput{
		OrgID: 1, Label: "2025", StartDate: "2025-01-01", EndDate: "2025-12-31",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := service.Close(context.Background(), 1, 1, fy.ID); err != nil {
		t.Fatalf("close: %v", err)
	}
	err = service.Close(context.Background(), 1, 1, fy.ID)
	if !errors.Is(err, acctshared.ErrFiscalYearClosed) {
		t.Fatalf("expected ErrFiscalYearClosed on second close, got %v", err)
	}
}

func TestReopenRequiresClosedYear(t *testing.T) {
	repo := newStubRepo()
	service := NewService(repo, nil)

	fy, err := service.Create(context.Background(), 1, CreateInput{
		OrgID: 1, Label: "2025", StartDate: "2025-01-01", EndDate: "2025-12-31",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	err = service.Reopen(context.Background(), 1, 1, fy.ID)
	if !errors.Is(err, acctshared.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	if err := service.Close(context.Background(), 1, 1, fy.ID); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := service.Reopen(context.Background(), 1, 1, fy.ID); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := repo.Get(context.Background(), 1, fy.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.IsClosed || got.ClosedAt != nil {
		t.Fatalf("expected reopened year, got %+v", got)
	}
}

func TestCovers(t *testing.T) {
	fy := FiscalYear{
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	if !fy.Covers(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("start date should be covered")
	}
	if !fy.Covers(time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("end date should be covered")
	}
	if fy.Covers(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("day after end must not be covered")
	}
}

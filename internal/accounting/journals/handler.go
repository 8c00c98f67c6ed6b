package journals

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	acctshared "github.com/grandlivre-erp/grandlivre-erp/internal/accounting/shared"
	"github.com/grandlivre-erp/grandlivre-erp/internal/observability"
	"github.com/grandlivre-erp/grandlivre-erp/internal/platform/httpx"
	"github.com/grandlivre-erp/grandlivre-erp/internal/rbac"
	"github.com/grandlivre-erp/grandlivre-erp/internal/shared"
)

// Handler wires journal entry HTTP endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	rbac      rbac.Middleware
	metrics   *observability.Metrics
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
		rbac:      rbacMW,
		metrics:   metrics,
	}
}

// MountRoutes registers journal routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(shared.PermJournalView, shared.PermJournalPost)).Get("/", h.List)
	r.With(h.rbac.RequireAny(shared.PermJournalView, shared.PermJournalPost)).Get("/{id}", h.Get)
	r.With(h.rbac.RequireAny(shared.PermJournalPost)).Post("/", h.Post)
	r.With(h.rbac.RequireAny(shared.PermJournalPost)).Post("/drafts", h.SaveDraft)
	r.With(h.rbac.RequireAny(shared.PermJournalPost)).Put("/drafts/{id}", h.UpdateDraft)
	r.With(h.rbac.RequireAny(shared.PermJournalPost)).Delete("/drafts/{id}", h.DeleteDraft)
	r.With(h.rbac.RequireAny(shared.PermJournalPost)).Post("/{id}/post", h.PostDraft)
	r.With(h.rbac.RequireAny(shared.PermJournalCancel)).Post("/{id}/cancel", h.Cancel)
}

// List returns entries matching the query filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing identity")
		return
	}
	filter, err := parseListFilter(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entries, total, err := h.service.List(r.Context(), principal.OrganizationID, filter)
	if err != nil {
		h.logger.Error("list journal entries", slog.Any("error", err))
		acctshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"entries":    toViews(entries),
		"pagination": shared.NewPagination(filter.Page, filter.PerPage, total),
	})
}

// Get returns a single entry with its lines.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing identity")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid entry id")
		return
	}
	entry, err := h.service.Get(r.Context(), principal.OrganizationID, id)
	if err != nil {
		acctshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(entry))
}

// Post validates and posts an entry in one step.
func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing identity")
		return
	}
	var in EntryInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	in.OrgID = principal.OrganizationID
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.Post(r.Context(), principal.UserID, in)
	if err != nil {
		h.metrics.CountPosting("post", "error")
		h.logger.Warn("post journal entry", slog.Any("error", err))
		acctshared.RespondError(w, err)
		return
	}
	h.metrics.CountPosting("post", "ok")
	httpx.JSON(w, http.StatusCreated, toView(entry))
}

// SaveDraft stores an entry without posting it.
func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing identity")
		return
	}
	var in EntryInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	in.OrgID = principal.OrganizationID
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.SaveDraft(r.Context(), principal.UserID, in)
	if err != nil {
		h.logger.Warn("save draft", slog.Any("error", err))
		acctshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(entry))
}

// UpdateDraft replaces a draft's content.
func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing identity")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid entry id")
		return
	}
	var in EntryInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	in.OrgID = principal.OrganizationID
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.UpdateDraft(r.Context(), principal.UserID, id, in)
	if err != nil {
		h.logger.Warn("update draft", slog.Any("error", err))
		acctshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(entry))
}

// PostDraft promotes a draft to posted.
func (h *Handler) PostDraft(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "post", func(req *http.Request, p shared.Principal, id int64) (Entry, error) {
		return h.service.PostDraft(req.Context(), p.OrganizationID, p.UserID, id)
	})
}

// Cancel flips a posted entry to cancelled.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "cancel", func(req *http.Request, p shared.Principal, id int64) (Entry, error) {
		return h.service.Cancel(req.Context(), p.OrganizationID, p.UserID, id)
	})
}

// DeleteDraft removes a draft.
func (h *Handler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing identity")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid entry id")
		return
	}
	if err := h.service.DeleteDraft(r.Context(), principal.OrganizationID, principal.UserID, id); err != nil {
		h.logger.Warn("delete draft", slog.Any("error", err))
		acctshared.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, action string, fn func(*http.Request, shared.Principal, int64) (Entry, error)) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing identity")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid entry id")
		return
	}
	entry, err := fn(r, principal, id)
	if err != nil {
		h.metrics.CountPosting(action, "error")
		h.logger.Warn("journal "+action, slog.Any("error", err))
		acctshared.RespondError(w, err)
		return
	}
	h.metrics.CountPosting(action, "ok")
	httpx.JSON(w, http.StatusOK, toView(entry))
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()
	filter := ListFilter{
		Journal: JournalType(q.Get("journal")),
		Status:  EntryStatus(q.Get("status")),
	}
	if v := q.Get("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return ListFilter{}, err
		}
		filter.DateFrom = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return ListFilter{}, err
		}
		filter.DateTo = &t
	}
	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return ListFilter{}, err
		}
		filter.Page = page
	}
	if v := q.Get("per_page"); v != "" {
		perPage, err := strconv.Atoi(v)
		if err != nil {
			return ListFilter{}, err
		}
		filter.PerPage = perPage
	}
	return filter, nil
}

type lineView struct {
	AccountNumber string  `json:"account_number"`
	Label         string  `json:"label,omitempty"`
	Debit         float64 `json:"debit"`
	Credit        float64 `json:"credit"`
}

type entryView struct {
	ID            int64      `json:"id"`
	Number        *int64     `json:"number"`
	EntryDate     string     `json:"entry_date"`
	Journal       string     `json:"journal"`
	Description   string     `json:"description,omitempty"`
	ReferenceType string     `json:"reference_type"`
	ReferenceID   string     `json:"reference_id,omitempty"`
	Status        string     `json:"status"`
	TotalDebit    float64    `json:"total_debit"`
	TotalCredit   float64    `json:"total_credit"`
	PostedAt      *time.Time `json:"posted_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	Lines         []lineView `json:"lines,omitempty"`
}

func toView(e Entry) entryView {
	v := entryView{
		ID:            e.ID,
		Number:        e.Number,
		EntryDate:     e.EntryDate.Format("2006-01-02"),
		Journal:       string(e.Journal),
		Description:   e.Description,
		ReferenceType: string(e.ReferenceType),
		Status:        string(e.Status),
		TotalDebit:    e.TotalDebit(),
		TotalCredit:   e.TotalCredit(),
		PostedAt:      e.PostedAt,
		CancelledAt:   e.CancelledAt,
	}
	if e.ReferenceID != nil {
		v.ReferenceID = e.ReferenceID.String()
	}
	for _, l := range e.Lines {
		v.Lines = append(v.Lines, lineView{
			AccountNumber: l.AccountNumber,
			Label:         l.Label,
			Debit:         l.Debit,
			Credit:        l.Credit,
		})
	}
	return v
}

func toViews(entries []Entry) []entryView {
	out := make([]entryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, toView(e))
	}
	return out
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/cwrk-planet/thread-service/internal/audit"
	"github.com/cwrk-planet/thread-service/internal/domain"
	"github.com/cwrk-planet/thread-service/internal/identity"
	"github.com/cwrk-planet/thread-service/internal/service"
	"github.com/cwrk-planet/thread-service/internal/transport/http/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// AuditReader - последние записи журнала; nil отключает /api/admin/audit.
type AuditReader interface {
	Recent(ctx context.Context, limit int) ([]audit.Entry, error)
}

// AuditGate решает, может ли текущий актор читать журнал.
type AuditGate interface {
	CanRead(ctx context.Context) error
}

type Handler struct {
	reactionSvc *service.ReactionService
	callSvc     *service.CallService
	statusSvc   *service.StatusService
	audit       AuditReader
	auditGate   AuditGate

	validate *validator.Validate
}

func NewHandler(reactions *service.ReactionService, calls *service.CallService, statuses *service.StatusService, auditLog AuditReader, auditGate AuditGate) *Handler {
	return &Handler{
		reactionSvc: reactions,
		callSvc:     calls,
		statusSvc:   statuses,
		audit:       auditLog,
		auditGate:   auditGate,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidJSON
	}
	return h.validate.Struct(dst)
}

var errInvalidJSON = errors.New("invalid json")

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, errInvalidJSON) {
		httputil.Error(r.Context(), w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	writeError(r.Context(), w, op, err)
}

// POST /api/heartbeat
func (h *Handler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	var req HeartbeatRequest
	if err := h.decode(r, &req); err != nil {
		h.badRequest(w, r, "Heartbeat", err)
		return
	}
	if err := h.statusSvc.Heartbeat(r.Context(), identity.ActorFrom(r.Context()), *req.Away); err != nil {
		writeError(r.Context(), w, "Heartbeat", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/providers/{type}/{id}/status
func (h *Handler) ProviderStatus(w http.ResponseWriter, r *http.Request) {
	ref := domain.ActorRef{Type: chi.URLParam(r, "type"), ID: chi.URLParam(r, "id")}
	view, err := h.statusSvc.Status(r.Context(), ref)
	if err != nil {
		writeError(r.Context(), w, "ProviderStatus", err)
		return
	}
	httputil.JSON(w, http.StatusOK, view)
}

// GET /api/threads/{thread}/messages/{message}/reactions?limit=&cursor=
func (h *Handler) ListReactions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	list, next, err := h.reactionSvc.List(r.Context(), identity.ActorFrom(r.Context()),
		chi.URLParam(r, "thread"), chi.URLParam(r, "message"), r.URL.Query().Get("cursor"), limit)
	if err != nil {
		writeError(r.Context(), w, "ListReactions", err)
		return
	}
	httputil.JSON(w, http.StatusOK, ReactionListResponse{
		Data:       lo.Map(list, func(r domain.Reaction, _ int) ReactionItem { return toReactionItem(r) }),
		NextCursor: next,
	})
}

// POST /api/threads/{thread}/messages/{message}/reactions
func (h *Handler) AddReaction(w http.ResponseWriter, r *http.Request) {
	var req AddReactionRequest
	if err := h.decode(r, &req); err != nil {
		h.badRequest(w, r, "AddReaction", err)
		return
	}
	reaction, err := h.reactionSvc.Add(r.Context(), identity.ActorFrom(r.Context()),
		chi.URLParam(r, "thread"), chi.URLParam(r, "message"), req.Reaction)
	if err != nil {
		writeError(r.Context(), w, "AddReaction", err)
		return
	}
	httputil.JSON(w, http.StatusCreated, toReactionItem(*reaction))
}

// DELETE /api/threads/{thread}/messages/{message}/reactions/{reaction}
func (h *Handler) RemoveReaction(w http.ResponseWriter, r *http.Request) {
	res, err := h.reactionSvc.Remove(r.Context(), identity.ActorFrom(r.Context()),
		chi.URLParam(r, "thread"), chi.URLParam(r, "message"), chi.URLParam(r, "reaction"))
	if err != nil {
		writeError(r.Context(), w, "RemoveReaction", err)
		return
	}
	httputil.JSON(w, http.StatusOK, res)
}

// POST /api/threads/{thread}/calls/{call}/leave
func (h *Handler) LeaveCall(w http.ResponseWriter, r *http.Request) {
	res, err := h.callSvc.Leave(r.Context(), identity.ActorFrom(r.Context()),
		chi.URLParam(r, "thread"), chi.URLParam(r, "call"))
	if err != nil {
		writeError(r.Context(), w, "LeaveCall", err)
		return
	}
	httputil.JSON(w, http.StatusOK, res)
}

// GET /api/admin/audit?limit=
func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		httputil.Error(r.Context(), w, http.StatusNotFound, "audit log is disabled", nil)
		return
	}
	if h.auditGate == nil {
		writeError(r.Context(), w, "Audit", domain.ErrForbidden)
		return
	}
	if err := h.auditGate.CanRead(r.Context()); err != nil {
		writeError(r.Context(), w, "Audit", err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.audit.Recent(r.Context(), limit)
	if err != nil {
		writeError(r.Context(), w, "Audit", err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]any{"data": entries})
}

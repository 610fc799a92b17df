package httptransport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ApprovalBot/internal/domain"
	ghplatform "ApprovalBot/internal/platform/github"
	"ApprovalBot/internal/service"
)

type Handler struct {
	service       service.Service
	webhookSecret []byte
}

func NewHandler(svc service.Service, webhookSecret string) *Handler {
	return &Handler{
		service:       svc,
		webhookSecret: []byte(webhookSecret),
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Route("/proposals", func(r chi.Router) {
		r.Post("/evaluate", h.Evaluate)
		r.Post("/timeout", h.TimeOut)
		r.Get("/preview", h.Preview)
	})

	r.Post("/webhook/github", h.GitHubWebhook)

	r.Post("/roster/set", h.SetRoster)
	r.Post("/comments/add", h.AddComment)
	r.Get("/labels/get", h.GetLabels)

	r.Get("/health", h.Health)

	return r
}

func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	h.evaluate(w, r, false)
}

func (h *Handler) TimeOut(w http.ResponseWriter, r *http.Request) {
	h.evaluate(w, r, true)
}

func (h *Handler) evaluate(w http.ResponseWriter, r *http.Request, forceTimeout bool) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	kind, err := req.validate()
	if err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	out, err := h.service.Evaluate(r.Context(), service.EvaluateRequest{
		Thread:           req.Thread,
		Kind:             kind,
		TimedOut:         req.TimedOut || forceTimeout,
		ClosedNotPlanned: req.ClosedNotPlanned,
	})
	if err != nil {
		h.handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"outcome": mapOutcome(out),
	})
}

func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	thread, err := strconv.Atoi(r.URL.Query().Get("thread"))
	if err != nil || thread <= 0 {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "thread must be a positive number")
		return
	}
	kind, err := domain.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	out, err := h.service.Preview(r.Context(), thread, kind)
	if err != nil {
		h.handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"outcome": mapOutcome(out),
	})
}

func (h *Handler) GitHubWebhook(w http.ResponseWriter, r *http.Request) {
	event, ok, err := ghplatform.ParseEvent(r, h.webhookSecret)
	if errors.Is(err, ghplatform.ErrWebhookSecretMissing) {
		respondError(w, http.StatusServiceUnavailable, "WEBHOOK_DISABLED", err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, "BAD_WEBHOOK", err.Error())
		return
	}
	if !ok {
		respondJSON(w, http.StatusAccepted, map[string]string{"status": "ignored"})
		return
	}

	out, err := h.service.Evaluate(r.Context(), service.EvaluateRequest{
		Thread:           event.Thread,
		Kind:             event.Kind,
		TimedOut:         event.TimedOut,
		ClosedNotPlanned: event.ClosedNotPlanned,
	})
	if err != nil {
		h.handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"outcome": mapOutcome(out),
	})
}

func (h *Handler) SetRoster(w http.ResponseWriter, r *http.Request) {
	var req setRosterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	role, err := req.validate()
	if err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	if err := h.service.SetRoster(r.Context(), role, req.Members); err != nil {
		h.handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"role":    string(role),
		"members": nonNil(req.Members),
	})
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	comment, err := h.service.AddComment(r.Context(), req.Thread, req.Author, req.body())
	if err != nil {
		h.handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"comment": mapComment(req.Thread, comment),
	})
}

func (h *Handler) GetLabels(w http.ResponseWriter, r *http.Request) {
	thread, err := strconv.Atoi(r.URL.Query().Get("thread"))
	if err != nil || thread <= 0 {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "thread must be a positive number")
		return
	}

	labels, err := h.service.Labels(r.Context(), thread)
	if err != nil {
		h.handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"thread": thread,
		"labels": nonNil(labels),
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Health(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, "UNHEALTHY", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, domain.ErrRosterFetch), errors.Is(err, domain.ErrCommentFetch):
		respondError(w, http.StatusBadGateway, "UPSTREAM_FAILED", err.Error())
	case errors.Is(err, domain.ErrUnknownKind), errors.Is(err, domain.ErrUnknownRole):
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
	case errors.Is(err, domain.ErrIngestUnsupported):
		respondError(w, http.StatusNotImplemented, "NOT_SUPPORTED", "platform does not accept ingestion")
	case errors.Is(err, domain.ErrCommentNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
	default:
		slog.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}

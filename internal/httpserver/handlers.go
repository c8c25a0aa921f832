package httpserver

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"loopwise-go/internal/eventbus"
	"loopwise-go/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type statusRequest struct {
	Status models.SubscriptionStatus `json:"status" validate:"required,oneof=active paused cancelled"`
}

type planRequest struct {
	PlanId string `json:"planId" validate:"required"`
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type notesRequest struct {
	Notes string `json:"notes" validate:"max=500"`
}

type messageRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

type inviteRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=Admin Member"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type avatarRequest struct {
	AvatarUrl string `json:"avatarUrl" validate:"required"`
}

type viewRequest struct {
	View models.View `json:"view" validate:"required"`
}

type preferencesRequest struct {
	Language string       `json:"language" validate:"required"`
	TimeZone string       `json:"timeZone" validate:"required"`
	Theme    models.Theme `json:"theme" validate:"required,oneof=light dark system"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.HealthCheck(r.Context()); err != nil {
		sendJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
		return
	}
	sendJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, s.controller.Snapshot())
}

// getEvents returns recent events, oldest first. ?kind= filters and ?limit= caps.
func (s *Server) getEvents(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			sendError(w, "limit must be a non-negative integer", http.StatusBadRequest, nil)
			return
		}
		limit = n
	}
	events := s.controller.Bus().Recent(eventbus.Kind(r.URL.Query().Get("kind")), limit)
	if events == nil {
		events = []eventbus.Event{}
	}
	sendJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) setView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if !req.View.Valid() {
		sendError(w, "unknown view", http.StatusBadRequest, nil)
		return
	}
	s.controller.SetView(req.View)
	w.WriteHeader(http.StatusNoContent)
}

// ---------- session ----------

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := s.controller.Login(r.Context(), req.Email, req.Password); err != nil {
		sendError(w, "Failed to load your data. Please try again.", http.StatusBadGateway, nil)
		return
	}
	sendJSON(w, http.StatusOK, s.controller.Snapshot())
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	user, err := s.controller.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		sendError(w, "Sign up failed. Please try again.", http.StatusBadGateway, nil)
		return
	}
	sendJSON(w, http.StatusCreated, user)
}

func (s *Server) checkUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	available, err := s.controller.CheckUsername(r.Context(), username)
	if err != nil {
		sendControllerError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{"username": username, "available": available})
}

func (s *Server) completeProfileSetup(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileUpdate
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := s.controller.CompleteProfileSetup(r.Context(), req); err != nil {
		sendControllerError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, s.controller.Snapshot())
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.controller.Logout()
	w.WriteHeader(http.StatusNoContent)
}

// ---------- suggestions & subscriptions ----------

func (s *Server) refreshSuggestions(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.RefreshSuggestions(r.Context()); err != nil {
		sendError(w, "Could not fetch AI suggestions.", http.StatusBadGateway, nil)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{"suggestions": s.controller.Snapshot().Suggestions})
}

func (s *Server) applySuggestion(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.ApplySuggestion(chi.URLParam(r, "id")); err != nil {
		sendControllerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) dismissSuggestion(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.DismissSuggestion(chi.URLParam(r, "id")); err != nil {
		sendControllerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) changeStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	change, err := s.controller.ChangeSubscriptionStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		sendControllerError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, change)
}

func (s *Server) changePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	change, err := s.controller.ChangePlan(r.Context(), chi.URLParam(r, "id"), req.PlanId)
	if err != nil {
		sendControllerError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, change)
}

// ---------- funds ----------

func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	currency := r.URL.Query().Get("currency")
	if currency == "" {
		currency = models.DefaultCurrency
	}
	bal, err := s.controller.Balance(currency)
	if err != nil {
		sendControllerError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{"currency": currency, "balance": bal})
}

func (s *Server) addFunds(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	tx, err := s.controller.AddFunds(r.Context(), req.Amount)
	if err != nil {
		sendControllerError(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, tx)
}

func (s *Server) schedulePayment(w http.ResponseWriter, r *http.Request) {
	var req models.ScheduledPayment
	if !s.decodeJSON(w, r, &req) {
		return
	}
	tx, err := s.controller.SchedulePayment(req)
	if err != nil {
		sendControllerError(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, tx)
}

func (s *Server) sendFunds(w http.ResponseWriter, r *http.Request) {
	var req models.SendFundsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	res, err := s.controller.SendFunds(r.Context(), req)
	if err != nil {
		sendControllerError(w, err)
		return
	}
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	sendJSON(w, status, res)
}

func (s *Server) settle(w http.ResponseWriter, r *http.Request) {
	report, err := s.controller.ReconcilePendingTransfers(r.Context())
	if err != nil {
		sendControllerError(w, err)
		return
	}
	report.DuePaymentsSettled = s.controller.SettleDuePayments(r.Context())
	sendJSON(w, http.StatusOK, report)
}

func (s *Server) setNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := s.controller.SetTransactionNotes(chi.URLParam(r, "id"), req.Notes); err != nil {
		sendControllerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------- chat ----------

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	reply, err := s.controller.SendMessage(r.Context(), req.Text)
	if err != nil {
		sendControllerError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, reply)
}

// ---------- team, profile & settings ----------

func (s *Server) inviteMember(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	sendJSON(w, http.StatusCreated, s.controller.InviteMember(req.Email, req.Role))
}

func (s *Server) resendInvite(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	s.controller.ResendInvite(req.Email)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) removeMember(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.RemoveMember(chi.URLParam(r, "id")); err != nil {
		sendControllerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileUpdate
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := s.controller.UpdateProfile(req); err != nil {
		sendControllerError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, s.controller.Snapshot().User)
}

func (s *Server) updateAvatar(w http.ResponseWriter, r *http.Request) {
	var req avatarRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := s.controller.UpdateAvatar(req.AvatarUrl); err != nil {
		sendControllerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) revokeSession(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.RevokeSession(chi.URLParam(r, "id")); err != nil {
		sendControllerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateNotificationSettings(w http.ResponseWriter, r *http.Request) {
	var req models.NotificationSettings
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := s.controller.UpdateNotificationSettings(r.Context(), req); err != nil {
		sendControllerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updatePreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	p := models.Preferences{Language: req.Language, TimeZone: req.TimeZone, Theme: req.Theme}
	if err := s.controller.UpdatePreferences(r.Context(), p); err != nil {
		sendControllerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := s.controller.ToggleTheme(r.Context())
	if err != nil {
		sendControllerError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]models.Theme{"theme": theme})
}

func (s *Server) markNotificationsRead(w http.ResponseWriter, r *http.Request) {
	s.controller.MarkNotificationsRead()
	w.WriteHeader(http.StatusNoContent)
}

// ---------- audit ----------

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.controller.ExportCSV(&buf); err != nil {
		sendControllerError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="loopwise-transactions.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// importCSV takes the raw file as the request body.
func (s *Server) importCSV(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		sendError(w, "Cannot read the file.", http.StatusBadRequest, nil)
		return
	}
	res, err := s.controller.ImportCSV(r.Context(), data)
	if err != nil {
		sendControllerError(w, err)
		return
	}
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	sendJSON(w, status, res)
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, s.controller.Summary())
}

package http

import (
	"net/http"

	"budgetku/internal/core"
)

type settingsResponse struct {
	core.Settings
	SupportedCurrencies []string `json:"supportedCurrencies"`
}

func (s *Server) settingsView() settingsResponse {
	return settingsResponse{Settings: s.store.Settings(), SupportedCurrencies: core.SupportedCurrencies}
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	NewJSONResponse().Data(s.settingsView()).Write(w)
}

func (s *Server) handleSetCurrency(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Currency string `json:"currency"`
	}
	if err := DecodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.store.SetCurrency(sanitizeInput(req.Currency))
	NewJSONResponse().Data(s.settingsView()).Write(w)
}

func (s *Server) handleSetPeriod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Period string `json:"period"`
	}
	if err := DecodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := core.ParsePeriod(req.Period)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.SetSelectedPeriod(p); err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(s.settingsView()).Write(w)
}

func (s *Server) handleUpdateNotifications(w http.ResponseWriter, r *http.Request) {
	var patch core.NotificationSettingsPatch
	if err := DecodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(s.store.UpdateNotificationSettings(patch)).Write(w)
}

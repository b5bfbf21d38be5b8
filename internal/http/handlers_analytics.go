package http

import (
	"net/http"

	"budgetku/internal/core"
)

type analyticsResponse struct {
	Period core.Period `json:"period"`
	Window core.Window `json:"window"`
	core.Analytics
	Error bool `json:"error,omitempty"`
}

// handleAnalytics never fails once the query parses: a panic while
// aggregating yields zeroed analytics with the error flag set.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	params, err := s.windowParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	window, _ := core.WindowFor(params.Period, params.Ref)

	resp := analyticsResponse{Period: params.Period, Window: window}
	resp.Analytics, resp.Error = s.safeAnalytics(r, params)
	NewJSONResponse().Data(resp).Write(w)
}

func (s *Server) safeAnalytics(r *http.Request, params WindowParams) (a core.Analytics, failed bool) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.ErrorContext(r.Context(), "Analytics computation panicked", "panic", rec)
			a = core.Analytics{ExpenseByCategory: map[string]float64{}}
			failed = true
		}
	}()
	return s.store.Analytics(params.Period, params.Ref), false
}

func (s *Server) handleExpenseByTag(w http.ResponseWriter, r *http.Request) {
	params, err := s.windowParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(s.store.ExpenseByTag(params.Period, params.Ref)).Write(w)
}

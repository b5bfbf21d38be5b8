package http

import (
	"fmt"
	"net/http"

	"budgetku/internal/core"
	"budgetku/internal/log"
)

type budgetResponse struct {
	Month    core.Month          `json:"month"`
	Limits   map[string]float64  `json:"limits"`
	Progress core.BudgetProgress `json:"progress"`
	Items    []core.BudgetItem   `json:"items"`
}

func (s *Server) budgetView(month core.Month) budgetResponse {
	limits := s.store.Budgets(month)
	if limits == nil {
		limits = map[string]float64{}
	}
	return budgetResponse{
		Month:    month,
		Limits:   limits,
		Progress: s.store.BudgetProgress(month),
		Items:    s.store.BudgetItems(month),
	}
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonthParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(s.budgetView(month)).Write(w)
}

// handleSetBudget replaces the month's limits with the body, a tag to
// limit object.
func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonthParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var limits map[string]float64
	if err := DecodeJSON(w, r, &limits); err != nil {
		s.writeError(w, r, err)
		return
	}
	for tag, limit := range limits {
		if limit < 0 {
			s.writeError(w, r, fmt.Errorf("%w: negative limit for %q", core.ErrInvalidAmount, tag))
			return
		}
	}
	if err := s.store.SetBudget(month, limits); err != nil {
		s.writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Budget replaced",
		log.FieldMonth, month.String(),
		"tags", len(limits))
	NewJSONResponse().Data(s.budgetView(month)).Write(w)
}

func (s *Server) handleRemoveBudget(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonthParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !s.store.RemoveBudget(month, r.PathValue("tag")) {
		NotFoundError("no budget for tag").Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleUnbudgetedTags(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonthParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(s.store.TagsWithoutBudget(month)).Write(w)
}

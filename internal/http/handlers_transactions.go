package http

import (
	"net/http"
	"strconv"
	"strings"

	"budgetku/internal/core"
	"budgetku/internal/log"
)

func (s *Server) windowParams(r *http.Request) (WindowParams, error) {
	return ParseWindowParams(r, s.store.Settings().Period, s.store.Now(), s.store.Location())
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var in core.TransactionInput
	if err := DecodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	in.Category = sanitizeInput(in.Category)

	tx, err := s.store.AddTransaction(in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction recorded",
		log.FieldTransactionID, tx.ID,
		log.FieldKind, string(tx.Type))
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+strconv.FormatInt(tx.ID, 10)).
		Data(tx).
		Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tx, ok := s.store.Transaction(id)
	if !ok {
		NotFoundError("transaction not found").Write(w)
		return
	}
	NewJSONResponse().Data(tx).Write(w)
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var patch core.TransactionPatch
	if err := DecodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	if patch.Category != nil {
		c := sanitizeInput(*patch.Category)
		patch.Category = &c
	}

	tx, found, err := s.store.EditTransaction(id, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !found {
		NotFoundError("transaction not found").Write(w)
		return
	}
	NewJSONResponse().Data(tx).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !s.store.DeleteTransaction(id) {
		NotFoundError("transaction not found").Write(w)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction deleted", log.FieldTransactionID, id)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// handleListTransactions filters by ?tag= when present, otherwise by the
// period window.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	if tag := strings.TrimSpace(r.URL.Query().Get("tag")); tag != "" {
		NewJSONResponse().Data(s.store.TransactionsByTag(tag)).Write(w)
		return
	}

	params, err := s.windowParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(s.store.TransactionsByPeriod(params.Period, params.Ref)).Write(w)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	params, err := s.windowParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(s.store.History(params.Period, params.Ref)).Write(w)
}

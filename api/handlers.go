package api

import (
	"errors"
	"net/http"

	"github.com/aqlanhadi/kwgn-sms/extractor"
	"github.com/aqlanhadi/kwgn-sms/extractor/common"
	"github.com/aqlanhadi/kwgn-sms/pipeline"
	"github.com/aqlanhadi/kwgn-sms/reconcile"
	"github.com/aqlanhadi/kwgn-sms/report"
	"github.com/aqlanhadi/kwgn-sms/store"
	"github.com/go-chi/chi/v5"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type compileRequest struct {
	Messages []common.Message `json:"messages"`
	Accounts []common.Account `json:"accounts"`
}

// handleCompile compiles messages without touching the store. Stored or
// configured accounts are used when the request carries none.
func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	var req compileRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid compile request", err)
		return
	}

	accounts := req.Accounts
	if len(accounts) == 0 {
		var err error
		if accounts, err = s.syncer.Accounts(r.Context()); err != nil {
			writeError(w, r, http.StatusInternalServerError, "could not load accounts", err)
			return
		}
	}

	writeJSON(w, http.StatusOK, s.compiler.Compile(req.Messages, accounts))
}

type extractRequest struct {
	Message common.Message `json:"message"`
	Account common.Account `json:"account"`
}

type extractResponse struct {
	Matched     bool                `json:"matched"`
	Groups      map[string]string   `json:"groups,omitempty"`
	Transaction *common.Transaction `json:"transaction,omitempty"`
	Errors      []string            `json:"errors,omitempty"`
}

// handleExtract shows what one account's templates capture from a message.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid extract request", err)
		return
	}

	var resp extractResponse
	for _, err := range s.compiler.Patterns.Validate(req.Account) {
		resp.Errors = append(resp.Errors, err.Error())
	}
	resp.Groups, resp.Matched = s.compiler.Patterns.Extract(req.Message.Body, req.Account)
	if tx, ok := s.compiler.CompileMessage(req.Message, req.Account); ok {
		resp.Transaction = &tx
	}
	writeJSON(w, http.StatusOK, resp)
}

type mergeRequest struct {
	Candidates []common.Transaction `json:"candidates"`
	Existing   []common.Transaction `json:"existing"`
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid merge request", err)
		return
	}
	writeJSON(w, http.StatusOK, reconcile.MergeReport(req.Candidates, req.Existing, s.config.Window))
}

func (s *Server) handleAddMessage(w http.ResponseWriter, r *http.Request) {
	var msg common.Message
	if err := decodeBody(w, r, &msg); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid message", err)
		return
	}
	if msg.ID == "" || msg.Sender == "" {
		writeError(w, r, http.StatusBadRequest, "message id and sender are required", nil)
		return
	}

	res, err := s.syncer.AddMessage(r.Context(), msg)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "could not add message", err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	res, err := s.syncer.Sync(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "sync failed", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if err := report.ValidateMonth(month); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid month", err)
		return
	}

	txs, err := s.syncer.Transactions(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "could not load transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, report.FilterByMonth(txs, month))
}

// handleAddTransaction stores a manual entry. Duplicates are rejected with 409.
func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var tx common.Transaction
	if err := decodeBody(w, r, &tx); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid transaction", err)
		return
	}
	if !tx.Amount.Valid || tx.Account == "" {
		writeError(w, r, http.StatusBadRequest, "account and amount are required", nil)
		return
	}
	if _, err := common.ParseTimestamp(tx.Date, tx.Time); err != nil {
		writeError(w, r, http.StatusBadRequest, "date and time must be YYYY-MM-DD and HH:MM:SS", err)
		return
	}

	tx.ID = coalesce(tx.ID, extractor.NewTransactionID())
	tx.Category = coalesce(tx.Category, common.DefaultCategory)
	tx.Type = common.TransactionType(coalesce(string(tx.Type), string(common.TransactionTypeDebit)))
	if !tx.Type.Valid() {
		writeError(w, r, http.StatusBadRequest, "type must be credit or debit", nil)
		return
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = s.compiler.Now().UTC()
	}

	added, err := s.syncer.AddTransaction(r.Context(), tx)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "could not add transaction", err)
		return
	}
	if !added {
		writeError(w, r, http.StatusConflict, "duplicate transaction", nil)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

// handleRecompile extracts a stored transaction again from its message.
func (s *Server) handleRecompile(w http.ResponseWriter, r *http.Request) {
	tx, ok, err := s.syncer.Recompile(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, pipeline.ErrTransactionNotFound), errors.Is(err, pipeline.ErrMessageNotFound):
		writeError(w, r, http.StatusNotFound, "not found", err)
		return
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "recompile failed", err)
		return
	case !ok:
		writeError(w, r, http.StatusUnprocessableEntity, "message no longer matches a template", nil)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

type summaryResponse struct {
	Month   string         `json:"month,omitempty"`
	GroupBy report.GroupBy `json:"groupBy"`
	Total   string         `json:"total"`
	Groups  []report.Group `json:"groups"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	month := q.Get("month")
	if err := report.ValidateMonth(month); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid month", err)
		return
	}
	groupBy, err := report.ParseGroupBy(coalesce(q.Get("group_by"), string(report.GroupByCategory)))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid group_by", err)
		return
	}

	ctx := r.Context()
	txs, err := s.syncer.Transactions(ctx)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "could not load transactions", err)
		return
	}
	accounts, err := s.syncer.Accounts(ctx)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "could not load accounts", err)
		return
	}
	categories, err := s.syncer.Categories(ctx)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "could not load categories", err)
		return
	}
	if len(categories) == 0 {
		categories = s.config.Categories
	}

	filtered := report.FilterByMonth(txs, month)
	groups := report.Summarize(filtered, groupBy, accounts, categories)
	for i := range groups {
		groups[i].Transactions = nil
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Month:   month,
		GroupBy: groupBy,
		Total:   report.Total(filtered).StringFixed(2),
		Groups:  groups,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.syncer.Export(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "export failed", err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="kwgn-sms-export.json"`)
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var doc store.Document
	if err := decodeBody(w, r, &doc); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid import document", err)
		return
	}
	if err := s.syncer.Import(r.Context(), doc); err != nil {
		writeError(w, r, http.StatusBadRequest, "import failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"keys": len(doc)})
}

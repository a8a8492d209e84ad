package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/hatlonely/hms/admin"
	"github.com/hatlonely/hms/catalog"
	"github.com/hatlonely/hms/database"
	"github.com/hatlonely/hms/query"
	"github.com/pkg/errors"
)

const (
	operatorHeader  = "X-Operator"
	defaultOperator = "anonymous"
	maxBodyBytes    = 1 << 20
)

type errorResponse struct {
	Error string `json:"error"`
}

type entityView struct {
	Name       string   `json:"name"`
	PrimaryKey string   `json:"primaryKey"`
	Fields     []string `json:"fields"`
}

type categoryView struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Queries     int    `json:"queries"`
}

type queryView struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Category string   `json:"category"`
	Columns  []string `json:"columns"`
}

type runQueryRequest struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Label    string `json:"label"`
}

type customQueryRequest struct {
	SQL      string `json:"sql"`
	Operator string `json:"operator"`
}

// statusCode 错误分类到 HTTP 状态码
func statusCode(err error) int {
	var nf *admin.NotFoundError
	switch {
	case errors.Is(err, catalog.ErrUnknownEntity),
		errors.Is(err, query.ErrUnknownCategory),
		errors.Is(err, query.ErrUnknownQuery):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrValidation), errors.Is(err, catalog.ErrUnknownColumn):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrDuplicateKey), errors.Is(err, database.ErrForeignKeyViolation):
		return http.StatusConflict
	case errors.As(err, &nf), errors.Is(err, database.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, admin.ErrCustomQueryDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusCode(err)
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
	}
	writeJSON(w, status, errorResponse{Error: admin.Message(err)})
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	d := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	d.UseNumber()
	return d.Decode(v)
}

// decodeForm 表单值统一转成字符串，和界面层提交的原始文本一致
func decodeForm(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	var body map[string]any
	if err := decodeBody(w, r, &body); err != nil {
		return nil, err
	}
	form := make(map[string]string, len(body))
	for k, v := range body {
		switch val := v.(type) {
		case nil:
			form[k] = ""
		case string:
			form[k] = val
		case json.Number, bool:
			form[k] = fmt.Sprint(val)
		default:
			return nil, errors.Errorf("field %s must be a scalar", k)
		}
	}
	return form, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	views := make([]entityView, 0, len(s.service.Entities()))
	for _, name := range s.service.Entities() {
		schema, err := s.service.Schema(name)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		views = append(views, entityView{Name: schema.Name, PrimaryKey: schema.PrimaryKey, Fields: schema.FieldNames()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"entities": views})
}

func (s *Server) handleReadAll(w http.ResponseWriter, r *http.Request) {
	rs, err := s.service.ReadAll(r.Context(), r.PathValue("entity"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	row, err := s.service.Get(r.Context(), r.PathValue("entity"), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	form, err := decodeForm(w, r)
	if err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	outcome, err := s.service.Create(r.Context(), r.PathValue("entity"), form)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, outcome)
}

// handleCheckField 请求体 {"field": 列名, "value": 值}，只做校验不写库
func (s *Server) handleCheckField(w http.ResponseWriter, r *http.Request) {
	body, err := decodeForm(w, r)
	if err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if body["field"] == "" {
		badRequest(w, "field is required")
		return
	}
	if err := s.service.CheckField(r.PathValue("entity"), body["field"], body["value"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	form, err := decodeForm(w, r)
	if err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	outcome, err := s.service.Update(r.Context(), r.PathValue("entity"), r.PathValue("id"), form)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.service.Delete(r.Context(), r.PathValue("entity"), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories := s.service.Categories()
	views := make([]categoryView, 0, len(categories))
	for _, c := range categories {
		description, _ := query.Describe(c)
		defs, _ := s.service.Queries(c)
		views = append(views, categoryView{Name: string(c), Description: description, Queries: len(defs)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": views, "policy": s.service.Policy()})
}

func (s *Server) handleListQueries(w http.ResponseWriter, r *http.Request) {
	defs, err := s.service.Queries(query.Category(r.PathValue("category")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views := make([]queryView, 0, len(defs))
	for _, def := range defs {
		views = append(views, queryView{ID: def.ID, Label: def.Label, Category: string(def.Category), Columns: def.Columns})
	}
	writeJSON(w, http.StatusOK, map[string]any{"queries": views})
}

func (s *Server) handleRunQuery(w http.ResponseWriter, r *http.Request) {
	var req runQueryRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	var rs *database.ResultSet
	var err error
	switch {
	case req.ID != "":
		rs, err = s.service.RunQueryByID(r.Context(), req.ID)
	case req.Category != "" && req.Label != "":
		rs, err = s.service.RunQuery(r.Context(), query.Category(req.Category), req.Label)
	default:
		badRequest(w, "id or category and label are required")
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

func (s *Server) handleRunCustom(w http.ResponseWriter, r *http.Request) {
	var req customQueryRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	operator := req.Operator
	if operator == "" {
		operator = r.Header.Get(operatorHeader)
	}
	if operator == "" {
		operator = defaultOperator
	}

	rs, err := s.service.RunCustom(r.Context(), operator, req.SQL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	n := 50
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			badRequest(w, "n must be a non-negative integer")
			return
		}
		n = v
	}

	entries, err := s.service.Audit(r.Context(), n)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

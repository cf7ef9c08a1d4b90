package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"vanta/internal/auth"
	"vanta/internal/controller"
	"vanta/internal/core"
	"vanta/internal/log"
	"vanta/internal/services"
	"vanta/internal/store"
)

// resourceHandler serves the CRUD routes of one entity type.
type resourceHandler[T core.Record[T]] struct {
	s   *Server
	svc *services.RecordService[T]
}

func registerResource[T core.Record[T]](s *Server, mux *http.ServeMux, svc *services.RecordService[T]) {
	h := &resourceHandler[T]{s: s, svc: svc}
	base := "/api/" + svc.Resource()
	mux.HandleFunc("GET "+base, h.list)
	mux.HandleFunc("POST "+base, h.create)
	mux.HandleFunc("GET "+base+"/export.csv", h.exportCSV)
	mux.HandleFunc("GET "+base+"/{id}", h.get)
	mux.HandleFunc("PUT "+base+"/{id}", h.update)
	mux.HandleFunc("DELETE "+base+"/{id}", h.remove)
}

func (h *resourceHandler[T]) list(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	prefix := h.svc.Resource() + "?"
	key := prefix + "skip=" + strconv.Itoa(opts.Skip) + "&limit=" + strconv.Itoa(opts.Limit)
	var gen uint64
	if h.s.lists != nil {
		gen = h.s.lists.Generation(prefix)
		if body, ok := h.s.lists.Get(key); ok {
			w.Header().Set("X-Cache", "HIT")
			writeRaw(w, http.StatusOK, body)
			return
		}
	}

	recs, err := h.svc.List(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if recs == nil {
		recs = []T{}
	}
	body, err := json.Marshal(recs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if h.s.lists != nil {
		// a write committed during the read leaves this body stale
		h.s.lists.SetIfGeneration(key, prefix, gen, body)
		w.Header().Set("X-Cache", "MISS")
	}
	writeRaw(w, http.StatusOK, body)
}

func (h *resourceHandler[T]) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *resourceHandler[T]) create(w http.ResponseWriter, r *http.Request) {
	draft, err := decodeBody[T](w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := h.svc.Create(r.Context(), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logChanged(r, log.OpCreate, h.svc.Resource(), rec.RecordID())
	w.Header().Set("Location", "/api/"+h.svc.Resource()+"/"+strconv.FormatInt(rec.RecordID(), 10))
	writeJSON(w, http.StatusCreated, rec)
}

func (h *resourceHandler[T]) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := decodeBody[T](w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.svc.Update(r.Context(), id, rec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logChanged(r, log.OpUpdate, h.svc.Resource(), id)
	writeJSON(w, http.StatusOK, out)
}

func (h *resourceHandler[T]) remove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	logChanged(r, log.OpDelete, h.svc.Resource(), id)
	w.WriteHeader(http.StatusNoContent)
}

// exportCSV renders the filtered, ordered view of the whole collection.
func (h *resourceHandler[T]) exportCSV(w http.ResponseWriter, r *http.Request) {
	schema := h.svc.Schema()
	f := filterFromQuery(r)
	if err := f.Check(schema.Kinds, schema.Kind != nil, schema.Date != nil); err != nil {
		writeError(w, r, err)
		return
	}
	recs, err := h.svc.List(r.Context(), store.ListOptions{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	view := controller.Apply(schema, recs, f)
	rows := make([][]string, len(view))
	for i, rec := range view {
		rows[i] = schema.Row(rec)
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+schema.Resource+`.csv"`)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, controller.EncodeCSV(schema.Header(), rows))
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	schema := s.services.Transactions.Schema()
	f := filterFromQuery(r)
	if err := f.Check(schema.Kinds, true, true); err != nil {
		writeError(w, r, err)
		return
	}
	txs, err := s.services.Transactions.List(r.Context(), store.ListOptions{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, core.SummarizeTransactions(controller.Apply(schema, txs, f)))
}

func logChanged(r *http.Request, op, resource string, id int64) {
	p, _ := auth.FromContext(r.Context())
	log.NewStructuredLogger(log.FromContext(r.Context())).LogRecordChanged(r.Context(), op, resource, id, p.Subject)
}

func decodeBody[T core.Record[T]](w http.ResponseWriter, r *http.Request) (T, error) {
	var zero T
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return zero, &core.ValidationError{Reason: "request body too large"}
		}
		return zero, &core.ValidationError{Reason: "unreadable request body"}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return zero, &core.ValidationError{Reason: "request body is empty"}
	}
	return core.DecodeRecord[T](data)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &core.ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	return id, nil
}

func listOptions(r *http.Request) (store.ListOptions, error) {
	var opts store.ListOptions
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *int
	}{{"skip", &opts.Skip}, {"limit", &opts.Limit}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, &core.ValidationError{Field: p.name, Reason: "must be a non-negative integer"}
		}
		*p.dst = n
	}
	return opts, nil
}

func filterFromQuery(r *http.Request) controller.Filter {
	q := r.URL.Query()
	return controller.Filter{
		Kind:      q.Get("kind"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		Search:    q.Get("search"),
	}
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

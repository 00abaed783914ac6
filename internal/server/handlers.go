package server

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"billgen/internal/invoice"
	"billgen/internal/logger"
	"billgen/pkg/models"
)

var formFields = []string{"description", "quantity", "unit_price"}

type rowView struct {
	Index       int
	Description string
	Quantity    string
	UnitPrice   string
	Amount      string
}

type pageView struct {
	OrgName  string
	State    models.InvoiceState
	Rows     []rowView
	VATLabel string
	Totals   [][2]string
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	s.renderForm(w, r, invoice.NewEditor())
}

// formHandler replays the posted form into an Editor and applies the
// pressed button.
func (s *Server) formHandler(w http.ResponseWriter, r *http.Request) {
	log := logger.WithContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		log.Warn().Err(err).Msg("Failed to parse invoice form")
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	editor := editorFromForm(r.PostForm)
	action := r.PostForm.Get("action")

	switch {
	case action == "add":
		editor.AddLineItem()
	case strings.HasPrefix(action, "remove-"):
		if index, err := strconv.Atoi(strings.TrimPrefix(action, "remove-")); err == nil {
			editor.RemoveLineItem(index)
		}
	case action == "download":
		s.sendPDF(w, r, editor.Snapshot())
		return
	}

	s.renderForm(w, r, editor)
}

// editorFromForm rebuilds the state from parallel description, quantity and
// unit_price values. Short columns are padded with blanks.
func editorFromForm(form url.Values) *invoice.Editor {
	editor := invoice.NewEditorFromState(models.InvoiceState{
		CustomerName: form.Get("customer_name"),
		Date:         form.Get("date"),
		VATIncluded:  form.Get("vat") != "",
	})

	rows := 0
	for _, name := range formFields {
		if n := len(form[name]); n > rows {
			rows = n
		}
	}
	for i := 0; i < rows; i++ {
		index := editor.AddLineItem()
		for _, name := range formFields {
			values := form[name]
			if i >= len(values) {
				continue
			}
			field, err := invoice.ParseField(name)
			if err != nil {
				continue
			}
			editor.UpdateField(index, field, values[i])
		}
	}
	return editor
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, editor *invoice.Editor) {
	state := editor.Snapshot()
	summary := invoice.Compute(state, s.renderer.Options())

	view := pageView{
		OrgName:  s.renderer.Profile().Organization.Name,
		State:    state,
		Rows:     make([]rowView, 0, len(state.LineItems)),
		VATLabel: summary.VATLabel(),
		Totals:   summary.TotalLines(),
	}
	for i, item := range state.LineItems {
		view.Rows = append(view.Rows, rowView{
			Index:       i,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      editor.Amount(i),
		})
	}

	var buf bytes.Buffer
	if err := s.form.Execute(&buf, view); err != nil {
		logger.WithContext(r.Context()).Error().Err(err).Msg("Failed to render invoice form")
		http.Error(w, "failed to render form", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) sendPDF(w http.ResponseWriter, r *http.Request, state models.InvoiceState) {
	log := logger.WithContext(r.Context())

	doc, err := s.renderer.Render(r.Context(), state)
	if err != nil {
		log.Error().Err(err).Msg("Invoice generation failed")
		http.Error(w, "failed to generate invoice", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	_, _ = w.Write(doc.Data)
}

type amountResponse struct {
	Quantity  string `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Amount    string `json:"amount"`
}

func (s *Server) amountHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, amountResponse{
		Quantity:  q.Get("quantity"),
		UnitPrice: q.Get("unit_price"),
		Amount:    invoice.ComputeAmount(q.Get("quantity"), q.Get("unit_price")),
	})
}

// invoiceHandler takes a JSON InvoiceState and answers with the PDF, or
// with the computed report when ?format=json.
func (s *Server) invoiceHandler(w http.ResponseWriter, r *http.Request) {
	log := logger.WithContext(r.Context())

	var state models.InvoiceState
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(&state); err != nil {
		log.Warn().Err(err).Msg("Invalid invoice JSON")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid invoice JSON: " + err.Error()})
		return
	}

	if r.URL.Query().Get("format") == "json" {
		summary := invoice.Compute(state, s.renderer.Options())
		writeJSON(w, http.StatusOK, summary.Report())
		return
	}
	s.sendPDF(w, r, state)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

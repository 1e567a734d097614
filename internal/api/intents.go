package api

import (
	"net/http"
	"strings"

	"github.com/Kerhoff/hearth/internal/executor"
	"github.com/Kerhoff/hearth/internal/intent"
)

type parseIntentRequest struct {
	Text     string `json:"text"`
	Document bool   `json:"document"`
	Filename string `json:"filename"`
}

// executeIntentsRequest carries either free text to parse or already
// structured items, e.g. a parse result the user has edited.
type executeIntentsRequest struct {
	parseIntentRequest
	Items []intent.Wire `json:"items"`
}

type executeIntentsResponse struct {
	Parsed *intent.Envelope      `json:"parsed,omitempty"`
	Report *executor.BatchReport `json:"report"`
}

func (s *Server) parse(r *http.Request, req parseIntentRequest) *intent.Envelope {
	if req.Document {
		return s.parser.ParseDocument(r.Context(), req.Text, req.Filename)
	}
	return s.parser.Parse(r.Context(), req.Text)
}

func (s *Server) handleParseIntent(w http.ResponseWriter, r *http.Request) {
	if s.household(w, r) == nil {
		return
	}
	var req parseIntentRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.respondError(w, http.StatusBadRequest, "text is required")
		return
	}
	s.respondJSON(w, http.StatusOK, s.parse(r, req))
}

func (s *Server) handleExecuteIntents(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	var req executeIntentsRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	var (
		resp    executeIntentsResponse
		intents []intent.Intent
	)
	switch {
	case len(req.Items) > 0:
		loc := hh.Location()
		for _, wi := range req.Items {
			intents = append(intents, intent.FromWire(wi, loc))
		}
	case strings.TrimSpace(req.Text) != "":
		resp.Parsed = s.parse(r, req.parseIntentRequest)
		intents = resp.Parsed.Items
	default:
		s.respondError(w, http.StatusBadRequest, "text or items is required")
		return
	}

	resp.Report = s.exec.ExecuteBatch(r.Context(), hh.ID, intents)
	s.respondJSON(w, http.StatusOK, resp)
}

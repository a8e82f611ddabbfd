package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"StockLens/internal/model"
	"StockLens/internal/simulator"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "stocklens",
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"name":     s.userName,
		"greeting": "환영합니다, " + s.userName + "님!",
	})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	company := r.URL.Query().Get("company")
	code, err := s.dash.Resolve(r.Context(), company)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"company": strings.TrimSpace(company), "code": code})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end, err := parseRange(q.Get("start"), q.Get("end"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := s.dash.Analyze(r.Context(), q.Get("company"), start, end)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

type simulationRequest struct {
	Company string          `json:"company"`
	BuyDate string          `json:"buy_date"`
	Amount  decimal.Decimal `json:"amount"`
}

type simulationResponse struct {
	Company string                  `json:"company"`
	Code    string                  `json:"code"`
	Result  *model.SimulationResult `json:"result"`
	Verdict simulator.Verdict       `json:"verdict"`
	Message string                  `json:"message"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, model.NewInvalidInput("body", err.Error()))
		return
	}
	var buyDate time.Time
	if req.BuyDate != "" {
		d, err := model.ParseDate(req.BuyDate)
		if err != nil {
			s.writeError(w, r, model.NewInvalidInput("buy_date", "use YYYY-MM-DD"))
			return
		}
		buyDate = d
	}

	sim, err := s.dash.Simulate(r.Context(), req.Company, buyDate, req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, simulationResponse{
		Company: sim.Company,
		Code:    sim.Code,
		Result:  sim.Result,
		Verdict: sim.Verdict,
		Message: verdictMessages[sim.Verdict],
	})
}

func (s *Server) handleListingRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.listing.Refresh(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "refreshed",
		"fetched_at": s.listing.FetchedAt(),
	})
}

// parseRange parses YYYY-MM-DD bounds. An empty bound stays zero and is
// rejected by the dashboard.
func parseRange(start, end string) (time.Time, time.Time, error) {
	var out [2]time.Time
	for i, v := range []string{start, end} {
		if v == "" {
			continue
		}
		d, err := model.ParseDate(v)
		if err != nil {
			return time.Time{}, time.Time{}, model.NewInvalidInput("date_range", "use YYYY-MM-DD")
		}
		out[i] = d
	}
	return out[0], out[1], nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// writeError maps err to a user message. The cause is logged, never sent.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := describe(err)
	ev := s.log.Warn()
	if status >= http.StatusInternalServerError {
		ev = s.log.Error()
	}
	ev.Err(err).Str("path", r.URL.Path).Str("kind", body.Kind).Msg("request failed")
	s.writeJSON(w, status, body)
}

package server

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"StockLens/internal/dashboard"
	"StockLens/internal/model"
)

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// handleExport streams the analysed series as CSV, newest first, with one
// column per moving-average window.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
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

	name := fmt.Sprintf("%s_%s.csv", a.Company, model.Today(s.now).Format(model.DateLayout))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, quoteReplacer.Replace(name), url.PathEscape(name)))
	w.WriteHeader(http.StatusOK)

	// BOM so spreadsheet apps detect UTF-8 company names.
	_, _ = w.Write([]byte("\ufeff"))
	if err := writeCSV(csv.NewWriter(w), a); err != nil {
		s.log.Error().Err(err).Str("code", a.Code).Msg("csv export failed")
	}
}

func writeCSV(cw *csv.Writer, a *dashboard.Analysis) error {
	header := []string{"Date", "Open", "High", "Low", "Close", "Volume"}
	for _, win := range a.Indicators.Windows {
		header = append(header, fmt.Sprintf("MA%d", win))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	bars := a.Series.Bars
	for i := len(bars) - 1; i >= 0; i-- {
		b := bars[i]
		row := []string{
			b.Date.Format(model.DateLayout),
			b.Open.String(), b.High.String(), b.Low.String(), b.Close.String(),
			strconv.FormatInt(b.Volume, 10),
		}
		for _, win := range a.Indicators.Windows {
			if v, ok := a.Indicators.MA(i, win); ok {
				row = append(row, v.StringFixed(2))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

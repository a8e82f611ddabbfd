package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"StockLens/internal/dashboard"
	"StockLens/internal/model"
	"StockLens/internal/server"
)

var resolveCMD = &cobra.Command{
	Use:   "resolve <company>",
	Short: "Print the exchange code for a company name or code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfgPath)
		if err != nil {
			return err
		}
		defer a.Close()

		code, err := a.service.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), code)
		return nil
	},
}

var (
	analyzeStart string
	analyzeEnd   string
	analyzeRows  int
)

var analyzeCMD = &cobra.Command{
	Use:   "analyze <company>",
	Short: "Summarise prices and moving averages over a date range",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := parseFlagDate("start", analyzeStart)
		if err != nil {
			return err
		}
		end, err := parseFlagDate("end", analyzeEnd)
		if err != nil {
			return err
		}

		a, err := newApp(cfgPath)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.service.Analyze(cmd.Context(), args[0], start, end)
		if err != nil {
			return err
		}
		printAnalysis(cmd.OutOrStdout(), res, analyzeRows)
		return nil
	},
}

var (
	simBuyDate string
	simAmount  string
)

var simulateCMD = &cobra.Command{
	Use:   "simulate <company>",
	Short: "Simulate a buy-and-hold investment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		buyDate, err := parseFlagDate("buy_date", simBuyDate)
		if err != nil {
			return err
		}
		amount, err := decimal.NewFromString(simAmount)
		if err != nil {
			return model.NewInvalidInput("amount", "not a number")
		}

		a, err := newApp(cfgPath)
		if err != nil {
			return err
		}
		defer a.Close()

		sim, err := a.service.Simulate(cmd.Context(), args[0], buyDate, amount)
		if err != nil {
			return err
		}
		printSimulation(cmd.OutOrStdout(), sim)
		return nil
	},
}

func init() {
	now := time.Now().In(model.KST)
	analyzeCMD.Flags().StringVar(&analyzeStart, "start", now.AddDate(-1, 0, 0).Format(model.DateLayout), "first date (YYYY-MM-DD)")
	analyzeCMD.Flags().StringVar(&analyzeEnd, "end", now.Format(model.DateLayout), "last date (YYYY-MM-DD)")
	analyzeCMD.Flags().IntVar(&analyzeRows, "rows", 10, "number of most recent bars to print")

	simulateCMD.Flags().StringVar(&simBuyDate, "buy-date", now.AddDate(-1, 0, 0).Format(model.DateLayout), "purchase date (YYYY-MM-DD)")
	simulateCMD.Flags().StringVar(&simAmount, "amount", "1000000", "investment amount in KRW")
}

func parseFlagDate(field, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	d, err := model.ParseDate(v)
	if err != nil {
		if field == "start" || field == "end" {
			field = "date_range"
		}
		return time.Time{}, model.NewInvalidInput(field, "use YYYY-MM-DD")
	}
	return d, nil
}

func printAnalysis(w io.Writer, a *dashboard.Analysis, rows int) {
	s := a.Summary
	fmt.Fprintf(w, "%s (%s)\n", a.Company, a.Code)
	fmt.Fprintf(w, "종가 %s원 (%s%%) | 기간 내 변동 %s원 | 최고가 %s원 | 최저가 %s원 | 거래일 %d\n\n",
		s.LastClose.StringFixed(0), s.ChangePct.StringFixed(2), s.Change.StringFixed(0),
		s.High.StringFixed(0), s.Low.StringFixed(0), s.TradingDays)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "Date\tOpen\tHigh\tLow\tClose\tVolume")
	for _, win := range a.Indicators.Windows {
		fmt.Fprintf(tw, "\tMA%d", win)
	}
	fmt.Fprintln(tw, "\t")

	bars := a.Series.Bars
	from := len(bars) - rows
	if rows <= 0 || from < 0 {
		from = 0
	}
	for i := len(bars) - 1; i >= from; i-- {
		b := bars[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d", b.Date.Format(model.DateLayout),
			b.Open.StringFixed(0), b.High.StringFixed(0), b.Low.StringFixed(0), b.Close.StringFixed(0), b.Volume)
		for _, win := range a.Indicators.Windows {
			if v, ok := a.Indicators.MA(i, win); ok {
				fmt.Fprintf(tw, "\t%s", v.StringFixed(2))
			} else {
				fmt.Fprint(tw, "\t-")
			}
		}
		fmt.Fprintln(tw, "\t")
	}
	tw.Flush()
}

func printSimulation(w io.Writer, sim *dashboard.Simulation) {
	r := sim.Result
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "종목\t%s (%s)\n", sim.Company, sim.Code)
	fmt.Fprintf(tw, "매수일\t%s\n", r.BuyDate.Format(model.DateLayout))
	fmt.Fprintf(tw, "매수가\t%s원\n", r.BuyPrice.StringFixed(0))
	fmt.Fprintf(tw, "투자금\t%s원\n", r.Investment.StringFixed(0))
	fmt.Fprintf(tw, "보유 주식\t%d주\n", r.Shares)
	fmt.Fprintf(tw, "잔금\t%s원\n", r.Remainder.StringFixed(0))
	fmt.Fprintf(tw, "평가일\t%s (종가 %s원)\n", r.LastDate.Format(model.DateLayout), r.LastClose.StringFixed(0))
	fmt.Fprintf(tw, "평가금액\t%s원\n", r.FinalValue.StringFixed(0))
	fmt.Fprintf(tw, "수익\t%s원 (%s%%)\n", r.Profit.StringFixed(0), r.ReturnRatePct.StringFixed(2))
	tw.Flush()
	fmt.Fprintln(w, server.VerdictMessage(sim.Verdict))
}

package backtest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Report 回测报告，写出为 JSON。
type Report struct {
	Symbols    []string `json:"symbols"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
	Strategies []Result `json:"strategies"`
	Timestamp  string   `json:"timestamp"`
}

// NewReport 组装报告，时间戳为 RFC3339。
func NewReport(req Request, results []Result, now time.Time) Report {
	symbols := req.Symbols
	if symbols == nil {
		symbols = []string{}
	}
	return Report{
		Symbols:    symbols,
		StartDate:  req.Start,
		EndDate:    req.End,
		Strategies: results,
		Timestamp:  now.UTC().Format(time.RFC3339),
	}
}

// WriteJSON 写出带缩进的 JSON 报告，必要时创建目录。
func WriteJSON(path string, report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// SummaryLine 单个策略的控制台摘要。
func SummaryLine(r Result) string {
	return fmt.Sprintf("  %s: Sharpe=%.2f, DD=%.2f%%, Win=%.1f%%",
		r.Strategy, r.Sharpe, r.MaxDrawdown*100, r.WinRate*100)
}

// WriteSummaryCSV 写出策略汇总 CSV，数值保留 6 位小数。
func WriteSummaryCSV(path string, results []Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no summary data")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	header := []string{"strategy", "trades", "sharpe", "maxDrawdown", "winRate", "totalReturn"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		record := []string{
			r.Strategy,
			strconv.Itoa(r.Trades),
			decimal.NewFromFloat(r.Sharpe).StringFixed(6),
			decimal.NewFromFloat(r.MaxDrawdown).StringFixed(6),
			decimal.NewFromFloat(r.WinRate).StringFixed(6),
			decimal.NewFromFloat(r.TotalReturn).StringFixed(6),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

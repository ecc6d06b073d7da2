// backtest 命令行回测：按策略并行生成模拟收益，输出 JSON 报告并打印摘要。
// 用法：
//
//	go run ./cmd/backtest --symbols BTC,ETH --start 2024-01-01 --end 2024-06-30 --strategies momentum,mean_reversion --iters 500 --out reports/backtest.json
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"risk-engine-go/backtest"
	"risk-engine-go/infrastructure/logger"
)

func main() {
	symbols := flag.String("symbols", "", "逗号分隔的标的列表")
	start := flag.String("start", "", "开始日期 YYYY-MM-DD")
	end := flag.String("end", "", "结束日期 YYYY-MM-DD")
	strategies := flag.String("strategies", "", "逗号分隔的策略名")
	iters := flag.Int("iters", 500, "每个策略的模拟次数")
	out := flag.String("out", "", "JSON 报告输出路径")
	seed := flag.Int64("seed", -1, "随机种子，<0 表示不固定")
	workers := flag.Int("workers", 0, "并发数，0 表示 CPU 核数")
	csvPath := flag.String("csv", "", "若指定则写入 CSV 汇总")
	flag.Parse()

	log, err := logger.New(logger.Config{Level: "info", Outputs: []string{"stderr"}, Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	if *start == "" || *end == "" || *out == "" {
		log.Error("missing required flags", zap.Strings("required", []string{"--start", "--end", "--strategies", "--out"}))
		flag.Usage()
		os.Exit(2)
	}

	req := backtest.Request{
		Symbols:    splitList(*symbols),
		Strategies: splitList(*strategies),
		Start:      *start,
		End:        *end,
		Iterations: *iters,
	}
	if *seed >= 0 {
		s := uint64(*seed)
		req.Seed = &s
	}
	if err := req.Validate(0); err != nil {
		log.Error("invalid backtest request", zap.Error(err))
		os.Exit(2)
	}

	fmt.Printf("Starting backtest: %d strategies on %d symbols\n", len(req.Strategies), len(req.Symbols))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	began := time.Now()
	results, err := backtest.Run(ctx, req, *workers)
	if err != nil {
		log.Error("backtest failed", zap.Error(err))
		os.Exit(1)
	}
	log.LogBacktest(len(req.Strategies), req.Iterations)

	report := backtest.NewReport(req, results, time.Now())
	if err := backtest.WriteJSON(*out, report); err != nil {
		log.Error("write report failed", zap.Error(err))
		os.Exit(1)
	}

	fmt.Printf("Backtest complete: %s\n", *out)
	for _, r := range results {
		fmt.Println(backtest.SummaryLine(r))
	}

	if *csvPath != "" {
		if err := backtest.WriteSummaryCSV(*csvPath, results); err != nil {
			log.Error("write summary csv failed", zap.Error(err))
			os.Exit(1)
		}
		log.Info("summary written", zap.String("path", *csvPath))
	}
	log.Info("backtest finished", zap.Duration("elapsed", time.Since(began)))
}

func splitList(arg string) []string {
	var out []string
	for _, p := range strings.Split(arg, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

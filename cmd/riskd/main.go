// riskd 风控服务守护进程：HTTP 接口、状态推送、指标与配置热更新。
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"

	"risk-engine-go/config"
	"risk-engine-go/internal/container"
)

// version 由 -ldflags "-X main.version=..." 注入。
var version = "dev"

func main() {
	cfgPath := flag.String("config", "", "配置文件路径，留空则使用默认值与 RISK_* 环境变量")
	addr := flag.String("addr", "", "HTTP 监听地址，覆盖配置")
	metricsAddr := flag.String("metrics", "", "Prometheus metrics 监听地址，覆盖配置")
	flag.Parse()

	cfg, err := config.LoadWithEnvOverrides(*cfgPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *metricsAddr != "" {
		cfg.Server.MetricsAddr = *metricsAddr
	}

	c, err := container.New(cfg, container.Options{ConfigPath: *cfgPath, Version: version})
	if err != nil {
		log.Fatalf("初始化容器失败: %v", err)
	}
	if err := c.Build(); err != nil {
		log.Fatalf("构建组件失败: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Start(ctx); err != nil {
		log.Fatalf("启动失败: %v", err)
	}
	// 非 systemd 环境下 SdNotify 返回 false, nil
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Printf("sd_notify ready 失败: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	daemon.SdNotify(false, daemon.SdNotifyStopping)
	cancel()
	if err := c.Stop(); err != nil {
		log.Printf("停止组件出错: %v", err)
		os.Exit(1)
	}
}

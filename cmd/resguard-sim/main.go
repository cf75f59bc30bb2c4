// Package main 提供 resguard-sim 命令行入口
//
// resguard-sim 在本地模拟一个被寄生访问模式侵蚀的宿主服务，
// 用于观察引擎在不同模式与阈值下的检测与处置行为。
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	dto "github.com/prometheus/client_model/go"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-resguard"
	"github.com/dep2p/go-resguard/pkg/interfaces/guard"
	"github.com/dep2p/go-resguard/pkg/lib/log"
	"github.com/dep2p/go-resguard/pkg/types"
)

var logger = log.Logger("resguard/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
//
//	命令行参数：运行时覆盖 / 快速测试（「这次运行」想怎么跑）
//	JSON 配置文件：持久化配置 / 长期运行（「这个部署」的固定配置）
var (
	// ─────────────────────────────────────────────────────────────────────
	// 运行时参数（快速指定）
	// ─────────────────────────────────────────────────────────────────────
	configFile = flag.String("config", "", "配置文件路径（JSON）")
	preset     = flag.String("preset", "test", "预设配置 (observe/enforce/test)")
	mode       = flag.String("mode", "", "全局模式覆盖 (disabled/dry_run/detect/full)")

	// ─────────────────────────────────────────────────────────────────────
	// 负载参数
	// ─────────────────────────────────────────────────────────────────────
	workers   = flag.Int("workers", 4, "模拟负载的并发协程数")
	ops       = flag.Int("ops", 1000, "每个协程发起的操作数（0 = 持续运行直到中断）")
	leakRatio = flag.Float64("leak-ratio", 0.1, "寄生操作占比 (0.0 - 1.0)")

	// ─────────────────────────────────────────────────────────────────────
	// 信息显示
	// ─────────────────────────────────────────────────────────────────────
	showVersion = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Println(resguard.VersionInfo())
		return nil
	}

	if *leakRatio < 0 || *leakRatio > 1 {
		return fmt.Errorf("leak-ratio 必须在 [0, 1] 内: %v", *leakRatio)
	}

	opts := []resguard.Option{resguard.WithPreset(*preset)}

	// 配置文件叠加在预设之上
	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			return fmt.Errorf("读取配置文件: %w", err)
		}
		var uc resguard.UserConfig
		if err := json.Unmarshal(data, &uc); err != nil {
			return fmt.Errorf("解析配置文件: %w", err)
		}
		opts = append(opts, resguard.WithUserConfig(&uc))
	}

	// 命令行模式覆盖优先级最高
	if *mode != "" {
		m, err := types.ParseMode(*mode)
		if err != nil {
			return err
		}
		opts = append(opts, resguard.WithMode(m))
	}

	g, err := resguard.New(opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := g.Start(ctx); err != nil {
		return err
	}
	defer g.Close()

	logger.Info("模拟负载开始",
		"workers", *workers,
		"ops", *ops,
		"leakRatio", *leakRatio)

	stats := &simStats{}
	eg, egCtx := errgroup.WithContext(ctx)
	for w := 0; w < *workers; w++ {
		w := w
		eg.Go(func() error {
			return simulate(egCtx, g, w, stats)
		})
	}
	if err := eg.Wait(); err != nil && egCtx.Err() == nil {
		return err
	}

	// 给后台清理一个收尾窗口
	if err := g.Drain(5 * time.Second); err != nil {
		logger.Warn("drain 未能清空在途清理", "error", err)
	}

	printSummary(g, stats)
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// 模拟负载
// ═══════════════════════════════════════════════════════════════════════════

// simStats 负载侧统计
type simStats struct {
	total       atomic.Int64
	leaky       atomic.Int64
	intercepted atomic.Int64
	cleaned     atomic.Int64
}

// simConn 模拟连接句柄
type simConn struct {
	id    string
	state guard.ConnState
	stats *simStats
}

func (c *simConn) ID() string               { return c.id }
func (c *simConn) Kind() types.ResourceKind { return types.KindConnection }
func (c *simConn) Origin() string           { return "sim/conn" }
func (c *simConn) Cleanup(_ context.Context) error {
	c.stats.cleaned.Add(1)
	return nil
}
func (c *simConn) ConnState() guard.ConnState { return c.state }

// simulate 以固定节奏发送模拟操作
//
// 每次操作随机决定是健康连接还是超时未确认的寄生连接。
// 寄生句柄复用同一批 ID，验证去重后清理只发生一次。
func simulate(ctx context.Context, g *resguard.Guard, worker int, stats *simStats) error {
	rng := rand.New(rand.NewSource(int64(worker) + 1))

	handler := func(_ context.Context, op *guard.Operation) (*guard.Response, error) {
		return &guard.Response{Shape: op.Shape, HandleID: op.Handle.ID()}, nil
	}

	for n := 0; *ops == 0 || n < *ops; n++ {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		now := time.Now()
		conn := &simConn{stats: stats}
		if rng.Float64() < *leakRatio {
			// 寄生：发了很久没有任何确认
			conn.id = fmt.Sprintf("sim-leak-%d-%d", worker, n%8)
			conn.state = guard.ConnState{
				LastSend: now.Add(-time.Hour),
				Sent:     uint64(n + 1),
			}
			stats.leaky.Add(1)
		} else {
			conn.id = fmt.Sprintf("sim-ok-%d-%d", worker, n)
			conn.state = guard.ConnState{
				LastSend: now,
				LastAck:  now,
				Sent:     uint64(n + 1),
				Acked:    uint64(n + 1),
			}
		}

		resp, err := g.Intercept(ctx, &guard.Operation{Shape: guard.ShapeAck, Handle: conn}, handler)
		if err != nil {
			return err
		}
		stats.total.Add(1)
		if resp.Synthetic {
			stats.intercepted.Add(1)
		}
	}
	return nil
}

// printSummary 输出负载与引擎两侧的统计
func printSummary(g *resguard.Guard, stats *simStats) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════")
	fmt.Println("  模拟结果")
	fmt.Println("═══════════════════════════════════════════════")
	fmt.Printf("  操作总数:       %d\n", stats.total.Load())
	fmt.Printf("  寄生操作:       %d\n", stats.leaky.Load())
	fmt.Printf("  被拦截（惰性）: %d\n", stats.intercepted.Load())
	fmt.Printf("  真实清理次数:   %d\n", stats.cleaned.Load())
	fmt.Printf("  在途清理任务:   %d\n", g.ActiveSanitizations())

	if gatherer := g.Gatherer(); gatherer != nil {
		families, err := gatherer.Gather()
		if err != nil {
			return
		}
		fmt.Println("───────────────────────────────────────────────")
		for _, f := range families {
			for _, m := range f.GetMetric() {
				if c := m.GetCounter(); c != nil && c.GetValue() > 0 {
					fmt.Printf("  %s%s = %.0f\n", f.GetName(), labelString(m.GetLabel()), c.GetValue())
				}
			}
		}
	}
	fmt.Println("═══════════════════════════════════════════════")
}

func labelString(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	s := "{"
	for i, p := range pairs {
		if i > 0 {
			s += ","
		}
		s += p.GetName() + "=" + p.GetValue()
	}
	return s + "}"
}

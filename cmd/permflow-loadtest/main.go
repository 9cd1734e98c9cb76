package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/permflow"
	"github.com/MrEthical07/permflow/catalog"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		subjects    = flag.Int("subjects", 1000, "number of subjects to seed")
		concurrency = flag.Int("concurrency", 128, "number of concurrent workers")
		flows       = flag.Int("flows", 50000, "full edit flows to run (select + preview + confirm + undo)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or in-memory stores are used")
	)
	flag.Parse()

	if *subjects <= 0 || *concurrency <= 0 || *flows <= 0 {
		fmt.Fprintln(os.Stderr, "subjects, concurrency, and flows must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	builder := permflow.New().WithGateway(newBenchGateway(*subjects))

	var cleanup func()
	switch {
	case addr != "":
		client := redis.NewClient(&redis.Options{Addr: addr})
		builder = builder.WithRedis(client)
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	default:
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		builder = builder.WithRedis(client)
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", mr.Addr())
	}
	defer cleanup()

	engine, err := builder.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	stats := runFlowPhase(ctx, engine, *subjects, *flows, *concurrency)

	fmt.Println("---- results ----")
	printStats("edit-flow", stats)
}

func runFlowPhase(ctx context.Context, engine *permflow.Engine, subjects, flows, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, flows)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			actorCtx := permflow.WithActor(ctx, "agent-admin")
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= flows {
					return
				}

				t0 := time.Now()
				err := runOneFlow(actorCtx, engine, r, subjects)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}

				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runOneFlow(ctx context.Context, engine *permflow.Engine, r *rand.Rand, subjects int) error {
	targetID := fmt.Sprintf("subject-%d", r.Intn(subjects))

	res, err := engine.ChooseTarget(ctx, permflow.TargetSelection{
		Context:  catalog.ContextSubject,
		Mode:     permflow.ModeAdd,
		TargetID: targetID,
	})
	if err != nil {
		return err
	}

	page := r.Intn(len(res.Pages))
	keys := make([]string, 0, 4)
	for _, b := range res.Pages[page] {
		if len(keys) == 4 {
			break
		}
		keys = append(keys, b.Key)
	}
	if _, err := engine.SelectPermissions(ctx, res.SessionID, page, keys); err != nil {
		return err
	}
	if _, err := engine.RequestPreview(ctx, res.SessionID); err != nil {
		return err
	}

	applied, err := engine.Confirm(ctx, res.SessionID)
	if err != nil {
		return err
	}
	if applied.UndoID != "" && r.Intn(4) == 0 {
		if _, err := engine.Undo(ctx, applied.UndoID); err != nil {
			return err
		}
	}
	return nil
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: flows=%d failures=%d total=%s flows/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

// benchGateway is an in-memory entity system: every subject exists, the
// acting agent is an administrator, and writes land in a mutex-guarded map.
type benchGateway struct {
	mu    sync.Mutex
	masks map[string]catalog.Mask128
}

func newBenchGateway(subjects int) *benchGateway {
	g := &benchGateway{masks: make(map[string]catalog.Mask128, subjects)}
	for i := 0; i < subjects; i++ {
		g.masks[fmt.Sprintf("subject-%d", i)] = catalog.Mask128{}
	}
	return g
}

func (g *benchGateway) CurrentMask(_ context.Context, subjectID string) (catalog.Mask128, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.masks[subjectID]
	if !ok {
		return catalog.Mask128{}, permflow.ErrTargetNotFound
	}
	return m, nil
}

func (g *benchGateway) SetMask(_ context.Context, subjectID string, mask catalog.Mask128) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.masks[subjectID]; !ok {
		return permflow.ErrTargetNotFound
	}
	g.masks[subjectID] = mask
	return nil
}

func (g *benchGateway) SubjectRank(_ context.Context, _ string) (int, error) {
	return 1, nil
}

func (g *benchGateway) Overwrite(_ context.Context, _, _ string) (catalog.Mask128, catalog.Mask128, error) {
	return catalog.Mask128{}, catalog.Mask128{}, nil
}

func (g *benchGateway) Overwrites(_ context.Context, _ string) ([]permflow.OverwriteState, error) {
	return nil, nil
}

func (g *benchGateway) SetOverwrite(_ context.Context, _, _ string, _, _ catalog.Mask128) error {
	return nil
}

func (g *benchGateway) AgentStanding(_ context.Context, _ string) (permflow.Standing, error) {
	return permflow.Standing{
		Capabilities:  map[string]bool{permflow.CapAdministrator: true},
		HierarchyRank: 100,
	}, nil
}

func (g *benchGateway) ScopeCapabilities(_ context.Context, _, _ string) (map[string]bool, error) {
	return map[string]bool{permflow.CapAdministrator: true}, nil
}

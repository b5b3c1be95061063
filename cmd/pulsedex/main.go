package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/standardbeagle/pulsedex/internal/abtree"
	"github.com/standardbeagle/pulsedex/internal/assoc"
	"github.com/standardbeagle/pulsedex/internal/cluster"
	"github.com/standardbeagle/pulsedex/internal/config"
	"github.com/standardbeagle/pulsedex/internal/coordinator"
	"github.com/standardbeagle/pulsedex/internal/hitlist"
	"github.com/standardbeagle/pulsedex/internal/idcodec"
	"github.com/standardbeagle/pulsedex/internal/lexicon"
	"github.com/standardbeagle/pulsedex/internal/linkgraph"
	"github.com/standardbeagle/pulsedex/internal/pipeline"
	"github.com/standardbeagle/pulsedex/internal/pulserank"
	"github.com/standardbeagle/pulsedex/internal/sortedhits"
	"github.com/standardbeagle/pulsedex/internal/version"

	"github.com/urfave/cli/v2"
)

var Version = version.Version

// stageFuncs is the full registry of domain packages' stage entrypoints, in
// DAG order. run and stage look stage functions up in this single list;
// status instead walks the stages of the loaded configuration.
func stageFuncs() []struct {
	Name string
	Fn   pipeline.StageFunc
} {
	return []struct {
		Name string
		Fn   pipeline.StageFunc
	}{
		{"lexicon", lexicon.Run},
		{"hitlist", hitlist.Run},
		{"linkgraph", linkgraph.Run},
		{"pulserank", pulserank.Run},
		{"cluster", cluster.Run},
		{"abtree", abtree.Run},
		{"sortedhits", sortedhits.Run},
		{"assoc", assoc.Run},
	}
}

func buildRunner() *pipeline.Runner {
	r := pipeline.NewRunner()
	for _, s := range stageFuncs() {
		r.Register(s.Name, s.Fn)
	}
	return r
}

// loadConfigWithOverrides resolves the pipeline config from the --config
// flag (rooted at --root), or a bare default when neither is given.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}

	cfg, err := config.Load(c.String("config"), root)
	if err != nil {
		return nil, err
	}

	if seed := c.Int64("seed"); seed != 0 {
		cfg.Pipeline.RandomSeed = seed
	}
	if workers := c.Int("workers"); workers > 0 {
		cfg.Pipeline.MaxProcessNum = workers
	}
	return cfg, nil
}

// signalContext returns a context canceled on SIGINT/SIGTERM, the way a
// long-running pipeline run or coordinator listener needs to shut down
// cleanly when an operator interrupts it.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx, cancel
}

func main() {
	app := &cli.App{
		Name:                   "pulsedex",
		Usage:                  "offline inverted-index build pipeline",
		Version:                Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "pipeline root directory (GlobalData/... lives under here)",
				Value:   ".",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file path (.kdl or .toml); omit for defaults",
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			stageCommand(),
			coordinateCommand(),
			statusCommand(),
			decodeIDCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "pulsedex:", err)
		os.Exit(1)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "run the full stage DAG to completion",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "seed", Usage: "override the pipeline random seed"},
			&cli.IntFlag{Name: "workers", Usage: "override max concurrent stage workers"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}

			runner := buildRunner()
			runner.OnEvent(func(ev pipeline.Event) {
				if ev.Started {
					fmt.Printf("[pulsedex] %-12s start\n", ev.Stage)
					return
				}
				if ev.Err != nil {
					fmt.Printf("[pulsedex] %-12s failed: %v\n", ev.Stage, ev.Err)
					return
				}
				fmt.Printf("[pulsedex] %-12s done\n", ev.Stage)
			})

			ctx, cancel := signalContext()
			defer cancel()
			return runner.Run(ctx, cfg)
		},
	}
}

func stageCommand() *cli.Command {
	return &cli.Command{
		Name:      "stage",
		Usage:     "run a single named stage",
		ArgsUsage: "<stage-name>",
		Action: func(c *cli.Context) error {
			name := c.Args().First()
			if name == "" {
				return fmt.Errorf("stage: a stage name is required, one of %s", stageNames())
			}

			var fn pipeline.StageFunc
			for _, s := range stageFuncs() {
				if s.Name == name {
					fn = s.Fn
					break
				}
			}
			if fn == nil {
				return fmt.Errorf("stage: unknown stage %q, must be one of %s", name, stageNames())
			}

			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			if err := fn(ctx, cfg); err != nil {
				return err
			}
			fmt.Printf("[pulsedex] %s done\n", name)
			return nil
		},
	}
}

func stageNames() string {
	names := make([]string, 0, 8)
	for _, s := range stageFuncs() {
		names = append(names, s.Name)
	}
	return fmt.Sprintf("%v", names)
}

func coordinateCommand() *cli.Command {
	return &cli.Command{
		Name:  "coordinate",
		Usage: "run the worker-heartbeat coordinator (§5 control channel)",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Usage: "UDP port to listen on (0 picks an ephemeral port)"},
			&cli.IntFlag{Name: "heartbeat-ms", Usage: "heartbeat timeout in milliseconds", Value: 2000},
			&cli.IntFlag{Name: "max-process", Usage: "maximum concurrent dispatched workers", Value: 16},
		},
		Action: func(c *cli.Context) error {
			restart := func(id string) error {
				fmt.Printf("[pulsedex] worker %s missed its heartbeat, restart requested\n", id)
				return nil
			}

			co, err := coordinator.New(c.Int("port"), time.Duration(c.Int("heartbeat-ms"))*time.Millisecond, c.Int("max-process"), restart)
			if err != nil {
				return err
			}
			defer co.Close()

			fmt.Printf("[pulsedex] coordinator listening on %s\n", co.Addr())

			ctx, cancel := signalContext()
			defer cancel()

			errCh := make(chan error, 1)
			go func() { errCh <- co.Serve() }()

			monitorCh := make(chan error, 1)
			checkInterval := time.Duration(c.Int("heartbeat-ms")) * time.Millisecond / 4
			if checkInterval <= 0 {
				checkInterval = time.Millisecond
			}
			go func() { monitorCh <- co.MonitorTimeouts(checkInterval) }()

			select {
			case <-ctx.Done():
				return co.Close()
			case err := <-errCh:
				return err
			case err := <-monitorCh:
				return err
			}
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "report which stages have produced output under the pipeline root",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}

			order, err := pipeline.TopoSort(cfg.Stages)
			if err != nil {
				return err
			}

			for _, s := range order {
				state := stageState(cfg, s)
				fmt.Printf("%-12s %-10s %s\n", s.Name, state, filepath.Join(cfg.Pipeline.RootDir, s.OutputDir))
			}
			return nil
		},
	}
}

// stageState reports whether a stage node's output directory has anything
// in it at all: a coarse complete/pending signal, not a progress percentage
// (the coordinator, not this CLI, tracks in-flight worker state).
func stageState(cfg *config.Config, s config.StageNode) string {
	dir := filepath.Join(cfg.Pipeline.RootDir, s.OutputDir)
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		return "pending"
	}
	return "done"
}

func decodeIDCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode-id",
		Usage:     "decode a base-63 operator-facing id",
		ArgsUsage: "<word|doc|assoc|cluster> <encoded-id>",
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 2 {
				return fmt.Errorf("decode-id: usage: decode-id <word|doc|assoc|cluster> <encoded-id>")
			}
			kind := c.Args().Get(0)
			encoded := c.Args().Get(1)

			switch kind {
			case "word":
				id, err := idcodec.DecodeWordId(encoded)
				if err != nil {
					return err
				}
				fmt.Printf("%s -> word_id=%d\n", encoded, id)
			case "doc":
				id, err := idcodec.DecodeDocId(encoded)
				if err != nil {
					return err
				}
				fmt.Printf("%s -> doc_id=%d\n", encoded, id)
			case "assoc":
				id, err := idcodec.DecodeAssocId(encoded)
				if err != nil {
					return err
				}
				fmt.Printf("%s -> assoc_id=%d\n", encoded, id)
			case "cluster":
				id, err := idcodec.DecodeClusterId(encoded)
				if err != nil {
					return err
				}
				fmt.Printf("%s -> cluster_id=%d\n", encoded, id)
			default:
				return fmt.Errorf("decode-id: unknown id kind %q, must be one of [word doc assoc cluster]", kind)
			}
			return nil
		},
	}
}

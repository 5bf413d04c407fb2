package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/arafateouronile-glitch/EDUZEN-sub009/internal/watch"
	"github.com/arafateouronile-glitch/EDUZEN-sub009/internal/web"
	"github.com/arafateouronile-glitch/EDUZEN-sub009/pkg/docrender"
)

const version = "0.3.0"

func usage() {
	fmt.Println("docrender - HTML document template renderer")
	fmt.Println("\nUsage: docrender <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  render   -template t.yaml -vars v.json [-out out.html]   Render a template")
	fmt.Println("  validate -template t.yaml                                Check template syntax")
	fmt.Println("  watch    -template t.yaml -vars v.json -out out.html     Re-render on change")
	fmt.Println("  serve    [-addr :8080]                                   Run the HTTP render service")
	fmt.Println("  version                                                  Show version information")
	fmt.Println("\nAll commands accept -config c.yaml.")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch command, args := os.Args[1], os.Args[2:]; command {
	case "version":
		fmt.Printf("docrender version %s\n", version)
	case "render":
		err = runRender(ctx, args)
	case "validate":
		err = runValidate(args)
	case "watch":
		err = runWatch(ctx, args)
	case "serve":
		err = runServe(ctx, args)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "docrender: %v\n", err)
		os.Exit(1)
	}
}

type commonFlags struct {
	config   string
	template string
	vars     string
	out      string
}

func newFlagSet(name string, cf *commonFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cf.config, "config", "", "YAML configuration file")
	fs.StringVar(&cf.template, "template", "", "template file (JSON or YAML)")
	fs.StringVar(&cf.vars, "vars", "", "variables file (JSON or YAML)")
	fs.StringVar(&cf.out, "out", "", "output file (default stdout)")
	return fs
}

// setup installs the configuration named by -config, or the environment
// configuration, as the global one and returns an engine built from it.
func setup(cf *commonFlags, opts ...docrender.Option) (*docrender.Engine, error) {
	if cf.config != "" {
		cfg, err := docrender.LoadConfigFile(cf.config)
		if err != nil {
			return nil, err
		}
		if err := docrender.SetGlobalConfig(cfg); err != nil {
			return nil, err
		}
	}
	return docrender.New(opts...), nil
}

func runRender(ctx context.Context, args []string) error {
	var cf commonFlags
	if err := newFlagSet("render", &cf).Parse(args); err != nil {
		return err
	}
	if cf.template == "" {
		return errors.New("render: -template is required")
	}
	engine, err := setup(&cf)
	if err != nil {
		return err
	}
	return renderOnce(ctx, engine, cf)
}

func renderOnce(ctx context.Context, engine *docrender.Engine, cf commonFlags) error {
	tpl, err := loadTemplate(cf.template)
	if err != nil {
		return err
	}
	vars := map[string]any{}
	if cf.vars != "" {
		if vars, err = loadVariables(cf.vars); err != nil {
			return err
		}
	}

	result, err := engine.Render(ctx, tpl, vars)
	if err != nil {
		return err
	}
	if err := writeOutput(cf.out, []byte(result.HTML)); err != nil {
		return err
	}
	if cf.out != "" {
		fmt.Fprintf(os.Stderr, "rendered %s (%d page(s) estimated)\n", cf.out, result.PageCount)
	}
	return nil
}

func runValidate(args []string) error {
	var cf commonFlags
	if err := newFlagSet("validate", &cf).Parse(args); err != nil {
		return err
	}
	if cf.template == "" {
		return errors.New("validate: -template is required")
	}
	tpl, err := loadTemplate(cf.template)
	if err != nil {
		return err
	}

	result := docrender.ValidateTemplate(tpl)
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if err := writeOutput(cf.out, append(data, '\n')); err != nil {
		return err
	}
	return result.Err()
}

func runWatch(ctx context.Context, args []string) error {
	var cf commonFlags
	fs := newFlagSet("watch", &cf)
	debounce := fs.Duration("debounce", watch.DefaultDebounce, "quiet period before re-rendering")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cf.template == "" || cf.out == "" {
		return errors.New("watch: -template and -out are required")
	}
	engine, err := setup(&cf)
	if err != nil {
		return err
	}

	paths := []string{cf.template}
	if cf.vars != "" {
		paths = append(paths, cf.vars)
	}
	logger := docrender.GetLogger().Zap()
	w, err := watch.New(paths, *debounce, logger)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := renderOnce(ctx, engine, cf); err != nil {
		logger.Error("initial render failed", zap.Error(err))
	}
	fmt.Fprintf(os.Stderr, "watching %v\n", paths)
	return w.Run(ctx, func(path string) {
		if err := renderOnce(ctx, engine, cf); err != nil {
			logger.Error("re-render failed", zap.String("trigger", path), zap.Error(err))
		}
	})
}

func runServe(ctx context.Context, args []string) error {
	var cf commonFlags
	fs := newFlagSet("serve", &cf)
	addr := fs.String("addr", ":8080", "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	engine, err := setup(&cf, docrender.WithObserver(web.NewMetrics(reg)))
	if err != nil {
		return err
	}

	logger := docrender.GetLogger().Zap()
	srv := &http.Server{
		Addr:              *addr,
		Handler:           web.NewServer(web.NewHandler(engine, logger), reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", *addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Command ggtargets lists the harness targets and runs a smoke pass over
// them: every selected target clears a surface, synchronizes and reads it
// back, optionally writing the image.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	harness "github.com/gogpu/gg-harness"
	"github.com/gogpu/gg-harness/config"
	"github.com/gogpu/gg-harness/runner"
	"github.com/gogpu/gg-harness/targets"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML configuration file")
		filter     = flag.String("targets", "", "comma-separated targets (default: all, or $"+config.EnvTarget+")")
		output     = flag.String("output", "", "directory for images (default: none, or $"+config.EnvOutput+")")
		list       = flag.Bool("list", false, "list targets and exit")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("ggtargets: %v", err)
	}
	if *filter != "" {
		cfg.Targets = *filter
	}
	if *output != "" {
		cfg.Output = *output
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}

	level, err := cfg.Level()
	if err != nil {
		log.Fatalf("ggtargets: %v", err)
	}
	harness.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	reg := targets.New(cfg)
	if *list {
		printTargets(os.Stdout, reg)
		return
	}

	mode, err := cfg.Mode()
	if err != nil {
		log.Fatalf("ggtargets: %v", err)
	}
	rep := runner.Run(reg, cfg.Targets, runner.Options{
		Request: harness.SurfaceRequest{Width: cfg.Run.Width, Height: cfg.Run.Height, Mode: mode},
		Output:  cfg.Output,
		Format:  cfg.Format,
	})
	printReport(os.Stdout, rep)
	if !rep.OK() {
		os.Exit(1)
	}
}

func printTargets(w io.Writer, reg *harness.Registry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tFAMILY\tKIND\tCONTENT\tCAPS")
	for _, t := range reg.List() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.Name, t.Family, t.Kind, t.Content, caps(t.Caps))
	}
	_ = tw.Flush()
}

func caps(c harness.Caps) string {
	var out []string
	if c.Vector {
		out = append(out, "vector")
	}
	if c.SimilarSurfaces {
		out = append(out, "similar")
	}
	if c.Measurable {
		out = append(out, "measurable")
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ",")
}

func printReport(w io.Writer, rep runner.Report) {
	p := message.NewPrinter(language.English)
	for _, r := range rep.Results {
		switch {
		case r.Err != nil:
			p.Fprintf(w, "%-16s %-8s %v\n", r.Target, r.Outcome, r.Err)
		case r.Image != nil:
			b := r.Image.Bounds()
			p.Fprintf(w, "%-16s %-8s %dx%d (%d pixels) in %v %s\n",
				r.Target, r.Outcome, b.Dx(), b.Dy(), b.Dx()*b.Dy(), r.Elapsed, r.Path)
		default:
			p.Fprintf(w, "%-16s %-8s\n", r.Target, r.Outcome)
		}
	}
	passed, failed, skipped := rep.Counts()
	p.Fprintf(w, "%d passed, %d failed, %d skipped\n", passed, failed, skipped)
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package runner drives drawing code across harness targets.
//
// Each target runs on its own OS thread: create the surface, draw,
// synchronize, extract the image, optionally write it, clean up. A failing
// or unavailable target is recorded and the run continues.
package runner

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"time"

	harness "github.com/gogpu/gg-harness"
	"github.com/gogpu/gg-harness/threadlocal"
)

// Outcome is the result class of one target.
type Outcome int

const (
	Passed Outcome = iota
	Failed
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Reasons a target is skipped.
var (
	ErrUnknownTarget = errors.New("runner: unknown target")
	ErrUnavailable   = errors.New("runner: backend unavailable")
)

// DrawFunc draws into a fresh surface.
type DrawFunc func(s harness.Surface) error

// Options configure a run.
type Options struct {
	// Request is the surface template; Name and Content are taken from
	// each target.
	Request harness.SurfaceRequest

	// Draw defaults to clearing the surface to opaque white.
	Draw DrawFunc

	// Output, if set, is the directory images are written to as
	// <target>.<Format>.
	Output string
	Format string
}

// Result is the outcome of one target.
type Result struct {
	Target  string
	Outcome Outcome
	Err     error
	Image   *image.RGBA
	Path    string
	Elapsed time.Duration
}

// Report aggregates a run.
type Report struct {
	Results []Result
}

// Counts returns the number of passed, failed and skipped targets.
func (r Report) Counts() (passed, failed, skipped int) {
	for _, res := range r.Results {
		switch res.Outcome {
		case Passed:
			passed++
		case Failed:
			failed++
		case Skipped:
			skipped++
		}
	}
	return passed, failed, skipped
}

// OK reports whether no target failed.
func (r Report) OK() bool {
	_, failed, _ := r.Counts()
	return failed == 0
}

// Run executes opts against the targets of reg selected by filter.
// Unknown names in filter are reported as skipped.
func Run(reg *harness.Registry, filter string, opts Options) Report {
	log := harness.Logger()
	selected, unknown := reg.Select(filter)

	var rep Report
	for _, name := range unknown {
		log.Warn("runner: unknown target", "name", name)
		rep.Results = append(rep.Results, Result{Target: name, Outcome: Skipped, Err: ErrUnknownTarget})
	}
	for i := range selected {
		t := selected[i]
		var res Result
		threadlocal.Run(func() { res = runTarget(&t, opts) })
		log.Info("runner: target done", "name", t.Name, "outcome", res.Outcome, "elapsed", res.Elapsed, "err", res.Err)
		rep.Results = append(rep.Results, res)
	}
	return rep
}

func runTarget(t *harness.Target, opts Options) (res Result) {
	res.Target = t.Name
	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	req := opts.Request
	req.Name = t.Name
	req.Content = t.Content
	defer func() {
		if r := recover(); r != nil {
			res.Outcome, res.Err, res.Image = Failed, fmt.Errorf("runner: %s panicked: %v", t.Name, r), nil
		}
	}()

	s, c := t.CreateSurface(req)
	if c != nil {
		defer t.Release(c)
	}
	if s == nil {
		res.Outcome, res.Err = Skipped, ErrUnavailable
		return res
	}

	if err := s.Status(); err != nil {
		res.Outcome, res.Err = Failed, err
		return res
	}

	draw := opts.Draw
	if draw == nil {
		draw = clearWhite
	}
	if err := draw(s); err != nil {
		res.Outcome, res.Err = Failed, fmt.Errorf("draw: %w", err)
		return res
	}
	if err := t.Sync(c); err != nil {
		res.Outcome, res.Err = Failed, fmt.Errorf("synchronize: %w", err)
		return res
	}
	img, err := t.Image(s)
	if err != nil {
		res.Outcome, res.Err = Failed, fmt.Errorf("image: %w", err)
		return res
	}
	res.Image = img

	if opts.Output != "" {
		format := opts.Format
		if format == "" {
			format = "png"
		}
		res.Path = filepath.Join(opts.Output, t.Name+"."+format)
		if err := t.Write(s, res.Path); err != nil {
			res.Outcome, res.Err = Failed, fmt.Errorf("write: %w", err)
			return res
		}
	}
	res.Outcome = Passed
	return res
}

func clearWhite(s harness.Surface) error {
	return s.Clear(color.White)
}

// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/db47h/gatesim"
	"github.com/db47h/gatesim/trace"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gonum.org/v1/plot/vg"
)

type runOptions struct {
	steps    int
	noSettle bool
	watch    []string
	vcd      string
	plot     string
	workers  int
	color    string
}

func newRunCmd(a *app) *cobra.Command {
	var o runOptions
	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Simulate a netlist",
		Long: `Load a netlist, settle it, then run the requested number of steps.
The state of the watched wires is printed at time 0, then each change is
printed at the step where it happens.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.OutOrStdout(), args[0], &o)
		},
	}
	f := cmd.Flags()
	f.IntVarP(&o.steps, "steps", "n", 10, "number of steps to run")
	f.BoolVar(&o.noSettle, "no-settle", false, "do not settle the circuit before stepping")
	f.StringSliceVarP(&o.watch, "watch", "w", nil, "wires to watch (default all named wires)")
	f.StringVar(&o.vcd, "vcd", "", "write a VCD trace of the watched wires to `file`")
	f.StringVar(&o.plot, "plot", "", "plot the watched wires to `file` (png, svg, pdf)")
	f.IntVar(&o.workers, "workers", 1, "number of goroutines evaluating gates")
	f.StringVar(&o.color, "color", "auto", "colorize output: auto, always or never")
	return cmd
}

var stateColors = [...]string{
	gatesim.Zero:     "8",
	gatesim.One:      "2",
	gatesim.HiZ:      "4",
	gatesim.Conflict: "1",
	gatesim.Unknown:  "3",
}

type printer struct {
	w   io.Writer
	out *termenv.Output
}

func newPrinter(w io.Writer, mode string) (*printer, error) {
	p := termenv.Ascii
	switch mode {
	case "never":
	case "always":
		p = termenv.ANSI
	case "auto":
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			p = termenv.EnvColorProfile()
		}
	default:
		return nil, errors.Errorf("invalid color mode %q", mode)
	}
	return &printer{w: w, out: termenv.NewOutput(w, termenv.WithProfile(p))}, nil
}

func (p *printer) state(s gatesim.Signal) string {
	if int(s) >= len(stateColors) {
		return s.String()
	}
	return p.out.String(s.String()).Foreground(p.out.Color(stateColors[s])).String()
}

func (p *printer) line(t uint64, names []string, states []gatesim.Signal) {
	var b strings.Builder
	fmt.Fprintf(&b, "%6d", t)
	for i, n := range names {
		b.WriteString("  ")
		b.WriteString(n)
		b.WriteByte('=')
		b.WriteString(p.state(states[i]))
	}
	fmt.Fprintln(p.w, b.String())
}

func (a *app) run(w io.Writer, file string, o *runOptions) error {
	if o.steps < 0 {
		return errors.Errorf("invalid step count %d", o.steps)
	}
	pr, err := newPrinter(w, o.color)
	if err != nil {
		return err
	}
	c, b, err := a.load(file, gatesim.WithWorkers(o.workers))
	if err != nil {
		return err
	}

	names := o.watch
	if len(names) == 0 {
		names = b.WireNames()
	}
	rec := trace.NewRecorder(c)
	watched := make(map[gatesim.WireID]int, len(names))
	for i, n := range names {
		id, err := b.Wire(n)
		if err != nil {
			return err
		}
		if err = rec.Watch(n, id); err != nil {
			return err
		}
		watched[id] = i
	}

	if !o.noSettle {
		r, err := c.Settle()
		if err != nil {
			return err
		}
		if !r.Settled {
			a.log.Warn("circuit did not settle before the first step")
		}
	}
	if err = rec.Sample(); err != nil {
		return err
	}
	pr.line(c.Time(), names, rec.Samples()[0].States)

	for i := 0; i < o.steps; i++ {
		r, err := rec.Step(1)
		var (
			cn []string
			cs []gatesim.Signal
		)
		for _, ws := range r.Changed {
			if k, ok := watched[ws.ID]; ok {
				cn = append(cn, names[k])
				cs = append(cs, ws.State)
			}
		}
		if len(cn) > 0 {
			pr.line(r.Time, cn, cs)
		}
		if err != nil {
			return err
		}
	}
	a.log.Info("simulation done", "time", c.Time())

	title := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	if o.vcd != "" {
		if err = writeVCD(rec, o.vcd, title); err != nil {
			return err
		}
	}
	if o.plot != "" {
		h := vg.Length(len(names)+1) * 0.6 * vg.Inch
		if err = rec.SavePlot(o.plot, title, 8*vg.Inch, h); err != nil {
			return errors.Wrap(err, o.plot)
		}
	}
	return nil
}

func writeVCD(rec *trace.Recorder, name, module string) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if e := f.Close(); err == nil {
			err = e
		}
	}()
	return errors.Wrap(rec.WriteVCD(f, module, ""), name)
}

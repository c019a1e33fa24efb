// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package trace

import (
	"io"

	"github.com/db47h/gatesim"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// vertical distance between two waveforms
const lane = 1.5

func level(s gatesim.Signal) float64 {
	switch s {
	case gatesim.Zero:
		return 0
	case gatesim.One:
		return 1
	}
	// floating or undefined
	return 0.5
}

// Plot renders the recorded samples as stacked step waveforms, the first
// watched wire at the top. Undefined states are drawn at mid level.
//
func (r *Recorder) Plot(title string) (*plot.Plot, error) {
	if len(r.samples) == 0 {
		return nil, errors.New("no samples")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time"

	var ticks []plot.Tick
	for i, name := range r.names {
		base := float64(len(r.names)-1-i) * lane
		xys := make(plotter.XYs, len(r.samples))
		for k, s := range r.samples {
			xys[k].X = float64(s.Time)
			xys[k].Y = base + level(s.States[i])
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, errors.Wrap(err, name)
		}
		l.StepStyle = plotter.PostStep
		l.LineStyle.Width = vg.Points(1)
		l.LineStyle.Color = plotutil.Color(i)
		p.Add(l)
		ticks = append(ticks, plot.Tick{Value: base + 0.5, Label: name})
	}
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Min = -0.25
	p.Y.Max = float64(len(r.names)-1)*lane + 1.25
	p.Add(plotter.NewGrid())
	return p, nil
}

// WritePlot renders the samples in the given format (png, svg, pdf, ...) to w.
//
func (r *Recorder) WritePlot(w io.Writer, title, format string, width, height vg.Length) error {
	p, err := r.Plot(title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// SavePlot renders the samples to a file. The format is selected from the
// file extension.
//
func (r *Recorder) SavePlot(file, title string, width, height vg.Length) error {
	p, err := r.Plot(title)
	if err != nil {
		return err
	}
	return p.Save(width, height, file)
}

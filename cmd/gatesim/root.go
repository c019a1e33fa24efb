// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"log/slog"

	"github.com/db47h/gatesim"
	"github.com/db47h/gatesim/gatelib"
	"github.com/db47h/gatesim/internal/logging"
	"github.com/db47h/gatesim/netlist"
	"github.com/spf13/cobra"
)

// app holds the state shared by all commands.
type app struct {
	log *slog.Logger
	reg *gatesim.Registry
}

func (a *app) load(file string, opts ...gatesim.Option) (*gatesim.Circuit, *netlist.Binding, error) {
	n, err := netlist.ReadFile(file)
	if err != nil {
		return nil, nil, err
	}
	opts = append([]gatesim.Option{gatesim.WithLogger(a.log)}, opts...)
	c, b, err := netlist.Load(n, a.reg, opts...)
	if err != nil {
		return nil, nil, err
	}
	a.log.Debug("netlist loaded", "file", file, "gates", c.Size(), "wires", len(b.Wires))
	return c, b, nil
}

func newRootCmd() *cobra.Command {
	a := &app{
		log: logging.NewNop(),
		reg: gatelib.NewRegistry(),
	}
	root := &cobra.Command{
		Use:           "gatesim",
		Short:         "gatesim is a digital logic simulator",
		Long:          `gatesim loads circuits described as YAML netlists and simulates them step by step.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, _ := cmd.Flags().GetString("log-level")
			lvl, err := logging.ParseLevel(s)
			if err != nil {
				return err
			}
			a.log = logging.NewWriter(cmd.ErrOrStderr(), lvl)
			return nil
		},
	}
	root.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn or error")
	root.AddCommand(newRunCmd(a), newValidateCmd(a), newKindsCmd(a))
	return root
}

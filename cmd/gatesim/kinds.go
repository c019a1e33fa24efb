// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newKindsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the available gate kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tPARAMETERS\tDESCRIPTION")
			for _, n := range a.reg.Names() {
				k, err := a.reg.Lookup(n)
				if err != nil {
					return err
				}
				name := n
				if k.Name != n {
					name += " (" + k.Name + ")"
				}
				params := strings.Join(k.Params, ", ")
				if params == "" {
					params = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", name, params, k.Doc)
			}
			return tw.Flush()
		},
	}
}

// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check that netlists build into valid circuits",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, f := range args {
				c, b, err := a.load(f)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", f, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok, %d gates, %d wires\n", f, c.Size(), len(b.Wires))
			}
			if failed > 0 {
				return errors.Errorf("%d of %d netlists failed validation", failed, len(args))
			}
			return nil
		},
	}
}

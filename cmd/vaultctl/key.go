package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/watchme-vault/internal/slot"
	"github.com/dharsanguruparan/watchme-vault/internal/storagekey"
	"github.com/dharsanguruparan/watchme-vault/internal/timestamp"
)

func newKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "key <device_id> <recorded_at>",
		Short: "Print the storage key a recording would be stored under",
		Example: `  vaultctl key device123 2025-07-19T13:30:00.123+09:00
  vaultctl key device123 "2025-07-19 01:15:00Z"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := timestamp.Parse(args[1])
			if err != nil {
				return err
			}
			labels := slot.For(ts)
			key, err := storagekey.Build(args[0], labels)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "key:         %s\n", key)
			fmt.Fprintf(out, "date:        %s\n", labels.Date)
			fmt.Fprintf(out, "slot:        %s\n", labels.Slot)
			fmt.Fprintf(out, "recorded_at: %s\n", ts)
			fmt.Fprintf(out, "offset:      %s\n", ts.OffsetString())
			return nil
		},
	}
}

package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/TechXTT/easyorm"
	"github.com/TechXTT/easyorm/pkg/config"
)

// opener connects using the loaded configuration.
type opener func(ctx context.Context) (*easyorm.Client, *config.Config, error)

// NewPingCmd builds the `ping` command.
func NewPingCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the configured database is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cfg, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			cmd.Printf("%s: ok\n", cfg.Driver)
			return nil
		},
	}
}

// NewReapCmd builds the `reap` command.
func NewReapCmd(open opener) *cobra.Command {
	var threshold time.Duration
	cmd := &cobra.Command{
		Use:   "reap",
		Short: "Kill sessions running longer than a threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cfg, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			if !cmd.Flags().Changed("threshold") {
				threshold = cfg.ReapThreshold
			}
			outcome, err := c.KillSessions(cmd.Context(), threshold)
			cmd.Println(outcome)
			return err
		},
	}
	cmd.Flags().DurationVar(&threshold, "threshold", easyorm.DefaultReapThreshold, "minimum session age")
	return cmd
}

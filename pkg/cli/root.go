package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/TechXTT/easyorm"
	"github.com/TechXTT/easyorm/pkg/config"
)

func version() string {
	return "v0.1.0"
}

// NewVersionCmd builds the `version` command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version())
		},
	}
}

// NewRootCmd builds the top-level `easyorm` command.
func NewRootCmd() *cobra.Command {
	var envFile string
	root := &cobra.Command{
		Use:           "easyorm",
		Short:         "EasyORM connection tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file to load")
	open := func(ctx context.Context) (*easyorm.Client, *config.Config, error) {
		cfg, err := config.Load(envFile)
		if err != nil {
			return nil, nil, err
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
		c, err := easyorm.Open(ctx, cfg.Driver, cfg.DSN, easyorm.Options{
			Database:      cfg.Database,
			ReapThreshold: cfg.ReapThreshold,
			Logger:        logger,
		})
		return c, cfg, err
	}
	root.AddCommand(NewPingCmd(open))
	root.AddCommand(NewReapCmd(open))
	root.AddCommand(NewVersionCmd())
	return root
}

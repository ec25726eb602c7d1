package main

import (
	"datpeek/cmd/datpeek/cli"
	"datpeek/internal/config"
	"datpeek/internal/errors"
	"datpeek/internal/gui"
	"datpeek/internal/log"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
	logJSON bool
	cfg     *config.Config
)

// NewRootCmd creates the root command. Without a subcommand it opens its
// arguments in the desktop previewer.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "datpeek [files...]",
		Short: "Preview obfuscated image-cache containers",
		Long: `Datpeek unmasks image-cache .dat containers and previews them.

Open containers in the desktop or terminal previewer, step through the
containers next to them, and export the decoded images.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			loadConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(args)
		},
	}

	rootCmd.SetHelpTemplate(cli.Logo() + "\n\n" + rootCmd.HelpTemplate())

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/datpeek/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "emit debug log entries")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log one JSON object per entry")

	// Add subcommands
	rootCmd.AddCommand(NewGUICmd())
	rootCmd.AddCommand(NewTUICmd())
	rootCmd.AddCommand(NewDecodeCmd())
	rootCmd.AddCommand(NewInfoCmd())
	rootCmd.AddCommand(NewLsCmd())

	return rootCmd
}

func loadConfig(cmd *cobra.Command) {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadConfigFile(cfgFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		cli.PrintWarning(cmd.ErrOrStderr(), err.Error())
		if errors.IsInvalidConfig(err) {
			cli.PrintInfo(cmd.ErrOrStderr(), "Using default settings until the configuration is fixed.")
		} else {
			cli.PrintInfo(cmd.ErrOrStderr(), "Using default settings.")
		}
		cfg = config.New()
	}

	var opts []log.Option
	opts = append(opts, log.WithOutput(cmd.ErrOrStderr()))
	if logJSON || cfg.Logging.JSON {
		opts = append(opts, log.WithJSON())
	}
	if cfg.Logging.File != "" {
		opts = append(opts, log.WithFile(cfg.Logging.File))
	}
	log.Configure(opts...)
	log.SetDebug(debug || cfg.Logging.Debug)
}

func runGUI(paths []string) error {
	if !gui.IsGUIAvailable() {
		return errGUIUnavailable
	}
	return gui.StartGUI(cfg, paths)
}

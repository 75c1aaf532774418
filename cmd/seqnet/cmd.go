package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/born-ml/seqnet/internal/envconfig"
	"github.com/born-ml/seqnet/internal/version"
)

// appendEnvDocs adds an "Environment Variables" section to cmd's usage.
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// NewCLI builds the seqnet root command.
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "seqnet",
		Short:         "Train and run small sequential neural networks",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: envconfig.LogLevel(),
			})
			slog.SetDefault(slog.New(handler))
		},
		Run: func(cmd *cobra.Command, args []string) {
			if v, _ := cmd.Flags().GetBool("version"); v {
				versionHandler(cmd, args)
				return
			}

			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	xorCmd := newXORCmd()
	mnistCmd := newMNISTCmd()
	convCmd := newConvCmd()
	inspectCmd := newInspectCmd()
	envCmd := newEnvCmd()
	versionCmd := newVersionCmd()

	envVars := envconfig.AsMap()
	trainEnvs := []envconfig.EnvVar{
		envVars["SEQNET_DEBUG"],
		envVars["SEQNET_SEED"],
		envVars["SEQNET_WORKERS"],
		envVars["SEQNET_EPOCHS"],
		envVars["SEQNET_BATCH_SIZE"],
		envVars["SEQNET_LEARNING_RATE"],
		envVars["SEQNET_PRECISION"],
		envVars["SEQNET_QUIET"],
	}
	appendEnvDocs(xorCmd, trainEnvs)
	appendEnvDocs(mnistCmd, append(trainEnvs[:len(trainEnvs):len(trainEnvs)], envVars["SEQNET_DATA_DIR"]))
	appendEnvDocs(convCmd, []envconfig.EnvVar{envVars["SEQNET_DEBUG"], envVars["SEQNET_DATA_DIR"]})

	rootCmd.AddCommand(
		xorCmd,
		mnistCmd,
		convCmd,
		inspectCmd,
		envCmd,
		versionCmd,
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run:   versionHandler,
	}
}

func versionHandler(cmd *cobra.Command, _ []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "seqnet version is %s\n", version.Version)
}

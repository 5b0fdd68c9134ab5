package cli

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type rootOptions struct {
	port       string
	configPath string
	logLevel   string
}

// Execute runs the CLI.
func Execute() error {
	// .env is optional
	_ = godotenv.Load()
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "exam-room-service",
		Short:         "Real-time multi-room exam service powered by Gorilla WebSocket",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			applyEnv(v, cmd.Flags())
		},
	}

	fs := cmd.PersistentFlags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.StringVar(&opts.port, "port", "", "port to listen on, overrides server.port (env: PORT)")
	fs.StringVar(&opts.configPath, "config", "config/config.yaml", "path to YAML config (env: CONFIG_PATH)")
	fs.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error, overrides log.level (env: LOG_LEVEL)")
	_ = v.BindEnv("config", "CONFIG_PATH")

	cmd.AddCommand(NewStartCmd(opts))
	cmd.AddCommand(NewMigrateCmd(opts))
	cmd.AddCommand(NewSeedCmd(opts))
	cmd.CompletionOptions.HiddenDefaultCmd = true
	return cmd
}

// applyEnv fills flags the user did not set from the environment.
func applyEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		if f.Name != "config" {
			_ = v.BindEnv(f.Name)
		}
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

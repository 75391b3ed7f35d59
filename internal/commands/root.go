package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/PratikDhanave/delivery-time-analytics/internal/config"
	"github.com/PratikDhanave/delivery-time-analytics/internal/logging"
	"github.com/PratikDhanave/delivery-time-analytics/internal/pipeline"
)

const envPrefix = "MOVINGAVG"

// longAliases are the single-dash long options accepted for compatibility
// with the original command line. pflag only knows one-letter shorthands, so
// they are rewritten before parsing.
var longAliases = map[string]string{
	"in":  "input_file",
	"out": "out_file",
}

// Execute runs the movingavg command line with args.
func Execute(ctx context.Context, args []string) error {
	log := logging.NewLogger()
	defer func() { _ = log.Sync() }()

	cmd := NewRootCommand()
	cmd.SetArgs(normalizeArgs(args))
	return cmd.ExecuteContext(logging.WithLogger(ctx, log))
}

func NewRootCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "movingavg",
		Short: "Compute the per-minute moving average of translation delivery times",
		Long: `movingavg reads a JSON log of translation delivery events and writes, for every
minute from the first event through one minute past the last, the average
delivery duration of the events inside the trailing window.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd)
			if err != nil {
				return err
			}
			windowMinutes, err := config.ParseWindowSize(v.GetString("window_size"))
			if err != nil {
				return err
			}
			_, err = pipeline.Run(cmd.Context(), config.Run{
				InputPath:     v.GetString("input_file"),
				OutputPath:    v.GetString("out_file"),
				WindowMinutes: windowMinutes,
				Filter:        v.GetString("filter"),
			})
			return err
		},
	}
	command.PersistentFlags().String("config", "", "Path to a YAML config file, defaults to ./movingavg.yaml when present.")
	command.Flags().String("input_file", "", "Path of the JSON event log to read (alias -in).")
	command.Flags().String("out_file", config.DefaultOutputPath, "Path of the JSON samples file to create (alias -out).")
	command.Flags().StringP("window_size", "w", fmt.Sprint(config.DefaultWindowSize), "Length of the trailing window in minutes.")
	command.Flags().String("filter", "", `Expression selecting the events to average, e.g. 'client_name == "easyjet"'.`)
	command.Flags().SetNormalizeFunc(aliasNormalizer)

	command.AddCommand(NewServeCommand())
	command.AddCommand(NewImportCommand())
	return command
}

func aliasNormalizer(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if long, ok := longAliases[name]; ok {
		name = long
	}
	return pflag.NormalizedName(name)
}

// normalizeArgs rewrites -in and -out (with or without "=value") to their
// long forms. Arguments after "--" are left alone.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if strings.HasPrefix(arg, "-") && !strings.HasPrefix(arg, "--") {
			name, value, hasValue := strings.Cut(arg[1:], "=")
			if long, ok := longAliases[name]; ok {
				arg = "--" + long
				if hasValue {
					arg += "=" + value
				}
			}
		}
		out = append(out, arg)
	}
	return out
}

// newViper layers flags over MOVINGAVG_* environment variables over the
// optional config file for cmd.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to load configuration file. %w", err)
		}
		return v, nil
	}
	v.SetConfigName("movingavg")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to load configuration file. %w", err)
		}
	}
	return v, nil
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package cli implements the regctl command tree.
package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/suparena/typeregistry/internal/config"
	"github.com/suparena/typeregistry/logging"
	"github.com/suparena/typeregistry/manifest"
	"github.com/suparena/typeregistry/registry"
)

// app carries flag values and the registry built for one invocation.
type app struct {
	configFile string
	envFile    string
	verbosity  int
	manifests  []string
	strict     bool

	cfg *config.Config
	tr  *registry.TypeRegistry
}

// NewRootCmd builds a fresh regctl command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "regctl",
		Short: "Inspect a type-indexed registry loaded from manifests",
		Long: `regctl loads typed entries from YAML or TOML manifests into a type registry
and lets you list, look up and unregister them. Every invocation starts from
an empty registry; manifests named in regctl.toml, REGCTL_MANIFESTS and -m
are loaded in that order.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&a.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	flags.StringSliceVarP(&a.manifests, "manifest", "m", nil, "Manifest file to load (repeatable)")
	flags.BoolVar(&a.strict, "strict", false, "Fail on duplicate entries instead of overwriting")
	flags.StringVar(&a.configFile, "config", "", "Config file (default ./"+config.DefaultConfigFile+" if present)")
	flags.StringVar(&a.envFile, "env-file", "", "Env file (default ./"+config.DefaultEnvFile+" if present)")

	rootCmd.AddCommand(
		newTypesCmd(a),
		newListCmd(a),
		newGetCmd(a),
		newUnregisterCmd(a),
		newKindsCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// setup merges configuration with flags and configures logging. Flags win;
// manifests from both sources are loaded, configured ones first.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configFile, a.envFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if !cmd.Flags().Changed("verbose") {
		a.verbosity = cfg.Verbosity
	}
	if !cmd.Flags().Changed("strict") {
		a.strict = cfg.Strict
	}
	a.manifests = append(append([]string{}, cfg.Manifests...), a.manifests...)

	logging.SetupLogger(a.verbosity, cfg.LogFile)
	log.Debug().Str("command", cmd.Name()).Strs("manifests", a.manifests).Msg("Command started")
	return nil
}

// load builds the registry for this invocation and loads every manifest.
func (a *app) load() (*registry.TypeRegistry, error) {
	if a.tr != nil {
		return a.tr, nil
	}
	tr := registry.New(registry.WithLogger(logging.GetLogger("registry")))

	opts := []manifest.LoadOption{manifest.WithLogger(logging.GetLogger("manifest"))}
	if a.strict {
		opts = append(opts, manifest.WithStrict())
	}
	for _, path := range a.manifests {
		n, err := manifest.LoadFile(tr, path, opts...)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", path).Int("entries", n).Msg("Manifest loaded")
	}
	a.tr = tr
	return tr, nil
}

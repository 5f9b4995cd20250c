package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/vidispine-client/internal/config"
	"github.com/tonimelisma/vidispine-client/internal/logger"
	"github.com/tonimelisma/vidispine-client/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the stored configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the configuration file with the password hidden",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrCreate()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		return configShowLogic(cfg)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one configuration value",
	Long:  "Changes one value of the configuration file. Keys: " + strings.Join(configKeys(), ", ") + ".",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrCreate()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		if err := configSetLogic(cfg, args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving configuration: %w", err)
		}
		ui.Success(fmt.Sprintf("Set %s.", args[0]))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the location of the configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := config.Path()
		if err != nil {
			return err
		}
		fmt.Println(p)
		return nil
	},
}

func configShowLogic(cfg *config.Configuration) error {
	shown := cfg.Snapshot()
	if shown.Server.Password != "" {
		shown.Server.Password = "[redacted]"
	}
	out, err := json.MarshalIndent(shown, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling configuration: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

type configSetter func(cfg *config.Configuration, v string) error

var configSetters = map[string]configSetter{
	"host":     func(c *config.Configuration, v string) error { c.Server.Host = v; return nil },
	"user":     func(c *config.Configuration, v string) error { c.Server.User = v; return nil },
	"password": func(c *config.Configuration, v string) error { c.Server.Password = v; return nil },
	"run-as":   func(c *config.Configuration, v string) error { c.Server.RunAs = v; return nil },
	"server": func(c *config.Configuration, v string) error {
		return c.Server.ParseServerURL(v)
	},
	"port":                intSetter(func(c *config.Configuration, n int) { c.Server.Port = n }),
	"retry-attempts":      intSetter(func(c *config.Configuration, n int) { c.Server.RetryAttempts = n }),
	"max-gateway-retries": intSetter(func(c *config.Configuration, n int) { c.Server.MaxGatewayRetries = n }),
	"page-size":           intSetter(func(c *config.Configuration, n int) { c.Server.PageSize = n }),
	"retry-delay":         durationSetter(func(c *config.Configuration, d time.Duration) { c.Server.RetryDelay = d }),
	"timeout":             durationSetter(func(c *config.Configuration, d time.Duration) { c.Server.Timeout = d }),
	"https":               boolSetter(func(c *config.Configuration, b bool) { c.Server.HTTPS = b }),
	"debug":               boolSetter(func(c *config.Configuration, b bool) { c.Debug = b }),
	"log-format": func(c *config.Configuration, v string) error {
		c.LogFormat = logger.Format(v)
		return nil
	},
}

func intSetter(set func(*config.Configuration, int)) configSetter {
	return func(c *config.Configuration, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%q is not a number", v)
		}
		set(c, n)
		return nil
	}
}

func durationSetter(set func(*config.Configuration, time.Duration)) configSetter {
	return func(c *config.Configuration, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%q is not a duration like 10s: %w", v, err)
		}
		set(c, d)
		return nil
	}
}

func boolSetter(set func(*config.Configuration, bool)) configSetter {
	return func(c *config.Configuration, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%q is not true or false", v)
		}
		set(c, b)
		return nil
	}
}

func configKeys() []string {
	keys := make([]string, 0, len(configSetters))
	for k := range configSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// configSetLogic applies one key and checks the result, so a bad value is
// never saved.
func configSetLogic(cfg *config.Configuration, key, value string) error {
	set, ok := configSetters[key]
	if !ok {
		return fmt.Errorf("unknown configuration key %q", key)
	}
	if err := set(cfg, value); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	if err := cfg.ValidateSettings(); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the journal CLI, a thin client
// over the remote journal-management backend. Manuscripts, referees,
// reviews, and users are each a subcommand group; all business rules
// except the client-side lifecycle checks live server-side.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/internal/api"
	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/internal/reviewcache"
	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/internal/secrets"
	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/internal/workflow"
	"github.com/Ricardo-A-Zapata/team-asare-spring-2025/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// defaultBackendURL is the hosted backend. Overridable via config,
// JOURNAL_BACKEND_BASE_URL, or the backend-url secret.
const defaultBackendURL = "https://teamasare.pythonanywhere.com"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the journal CLI.
var rootCmd = &cobra.Command{
	Use:   "journal",
	Short: "Command-line client for the academic journal backend",
	Long: `journal is a thin client over the remote journal-management backend:
authors submit manuscripts, editors assign referees and drive the editorial
pipeline, referees review. The backend owns validation, persistence, and
authorization; this client computes which lifecycle actions are legal for
you, issues them, and reconciles lost responses by re-fetching.

Your acting identity is an email (--as, identity.email in the config file,
or the user-email secret) sent with every request.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; absence is not an error.
		_ = godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./journal.yaml or ~/.config/journal/config.yaml)")
	rootCmd.PersistentFlags().String("as", "", "acting user email (overrides config and secrets)")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "skip confirmation prompts for destructive actions")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("journal")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "journal"))
		}
	}

	viper.SetEnvPrefix("JOURNAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("backend.base_url", defaultBackendURL)
	viper.SetDefault("backend.timeout", 10*time.Second)
	viper.SetDefault("backend.user_agent", "journal/"+version)
	viper.SetDefault("cache.dir", ".journal")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// clientConfig assembles the effective configuration from viper and
// secrets.
func clientConfig() types.ClientConfig {
	cfg := types.ClientConfig{
		Backend: types.BackendConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("backend.timeout"),
				UserAgent: viper.GetString("backend.user_agent"),
			},
			BaseURL: viper.GetString("backend.base_url"),
		},
		Cache: types.CacheConfig{
			Dir: viper.GetString("cache.dir"),
		},
		Identity: types.IdentityConfig{
			Email: viper.GetString("identity.email"),
		},
	}
	if url, ok := loadedSecrets["backend-url"]; ok && !viper.IsSet("backend.base_url") {
		cfg.Backend.BaseURL = url
	}
	if cfg.Identity.Email == "" {
		cfg.Identity.Email = loadedSecrets["user-email"]
	}
	return cfg
}

// newClient builds the backend client with the acting identity
// resolved from --as, config, then secrets.
func newClient(cmd *cobra.Command) *api.Client {
	cfg := clientConfig()
	email, _ := cmd.Flags().GetString("as")
	if email == "" {
		email = cfg.Identity.Email
	}
	return api.New(cfg.Backend, email)
}

// requireIdentity errors when no acting email could be resolved, for
// commands where an anonymous call is meaningless.
func requireIdentity(client *api.Client) error {
	if client.UserEmail == "" {
		return fmt.Errorf("acting user email required: pass --as, set identity.email, or add a user-email secret")
	}
	return nil
}

func newController(cmd *cobra.Command) *workflow.Controller {
	return &workflow.Controller{
		API:     newClient(cmd),
		Timeout: viper.GetDuration("backend.timeout"),
	}
}

func openCache() (*reviewcache.Store, error) {
	return reviewcache.NewStore(clientConfig().Cache)
}

// actingRoles resolves the acting user's role set from the backend
// user directory. An unknown email yields an empty role set; ownership
// checks still work without a directory entry.
func actingRoles(ctx context.Context, client *api.Client) ([]types.Role, error) {
	if client.UserEmail == "" {
		return nil, nil
	}
	users, err := client.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving roles for %s: %w", client.UserEmail, err)
	}
	for _, u := range users {
		if strings.EqualFold(strings.TrimSpace(u.Email), strings.TrimSpace(client.UserEmail)) {
			return u.RoleCodes, nil
		}
	}
	return nil, nil
}

// confirm asks the user to approve a destructive action. The --yes
// flag answers for scripted use.
func confirm(cmd *cobra.Command, prompt string) bool {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true
	}
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/celestiaorg/quill/internal/auth"
	"github.com/celestiaorg/quill/internal/constants"
	"github.com/celestiaorg/quill/internal/types"
)

// Website, settings and token flag names
const (
	flagName           = "name"
	flagURL            = "url"
	flagUsername       = "username"
	flagAppPassword    = "app-password"
	flagAPIKey         = "api-key"
	flagModel          = "model"
	flagFallbackModels = "fallback-models"
	flagUserID         = "user-id"
	flagEmail          = "email"
	flagTTL            = "ttl"
	flagSecret         = "secret"
)

// defaultTokenTTL is the lifetime of minted session tokens
const defaultTokenTTL = 24 * time.Hour

func init() {
	websitesCmd.AddCommand(addWebsiteCmd)
	websitesCmd.AddCommand(listWebsitesCmd)

	addWebsiteCmd.Flags().String(flagName, "", "Display name, defaults to the URL")
	addWebsiteCmd.Flags().String(flagURL, "", "WordPress site URL")
	addWebsiteCmd.Flags().String(flagUsername, "", "WordPress user")
	addWebsiteCmd.Flags().String(flagAppPassword, "", "WordPress application password")
	_ = addWebsiteCmd.MarkFlagRequired(flagURL)
	_ = addWebsiteCmd.MarkFlagRequired(flagUsername)
	_ = addWebsiteCmd.MarkFlagRequired(flagAppPassword)

	settingsCmd.AddCommand(setSettingsCmd)
	setSettingsCmd.Flags().String(flagAPIKey, "", "Google generation API key")
	setSettingsCmd.Flags().String(flagModel, "", "Preferred model name")
	setSettingsCmd.Flags().String(flagFallbackModels, "", "Comma separated fallback models")
	_ = setSettingsCmd.MarkFlagRequired(flagAPIKey)

	tokenCmd.AddCommand(mintTokenCmd)
	mintTokenCmd.Flags().String(flagUserID, "", "User ID the token is issued for")
	mintTokenCmd.Flags().String(flagEmail, "", "Email claim")
	mintTokenCmd.Flags().Duration(flagTTL, defaultTokenTTL, "Token lifetime")
	mintTokenCmd.Flags().String(flagSecret, "", "HMAC secret (env: "+constants.EnvJWTSecret+")")
	_ = mintTokenCmd.MarkFlagRequired(flagUserID)
}

var websitesCmd = &cobra.Command{
	Use:   "websites",
	Short: "Manage publishing targets",
}

var addWebsiteCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a WordPress website",
	RunE: func(cmd *cobra.Command, _ []string) error {
		req := types.CreateWebsiteRequest{}
		req.Name, _ = cmd.Flags().GetString(flagName)
		req.URL, _ = cmd.Flags().GetString(flagURL)
		req.Username, _ = cmd.Flags().GetString(flagUsername)
		req.AppPassword, _ = cmd.Flags().GetString(flagAppPassword)
		if err := req.Validate(); err != nil {
			return err
		}

		website, err := apiClient.CreateWebsite(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("error creating website: %w", err)
		}
		return printJSON(cmd, website)
	},
}

var listWebsitesCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered websites",
	RunE: func(cmd *cobra.Command, _ []string) error {
		websites, err := apiClient.ListWebsites(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing websites: %w", err)
		}
		return printJSON(cmd, websites)
	},
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage account settings",
}

var setSettingsCmd = &cobra.Command{
	Use:   "set",
	Short: "Replace the generation credentials of the account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		req := types.UpdateSettingsRequest{}
		req.GoogleAPIKey, _ = cmd.Flags().GetString(flagAPIKey)
		req.GoogleModelName, _ = cmd.Flags().GetString(flagModel)
		req.GoogleFallbackModels, _ = cmd.Flags().GetString(flagFallbackModels)
		if err := req.Validate(); err != nil {
			return err
		}

		if err := apiClient.UpdateSettings(cmd.Context(), req); err != nil {
			return fmt.Errorf("error updating settings: %w", err)
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "Settings updated")
		return err
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Session token helpers",
}

var mintTokenCmd = &cobra.Command{
	Use:   "mint",
	Short: "Sign a session token locally with the server's JWT secret",
	RunE: func(cmd *cobra.Command, _ []string) error {
		userID, _ := cmd.Flags().GetString(flagUserID)
		email, _ := cmd.Flags().GetString(flagEmail)
		ttl, _ := cmd.Flags().GetDuration(flagTTL)
		secret, _ := cmd.Flags().GetString(flagSecret)
		if secret == "" {
			secret = os.Getenv(constants.EnvJWTSecret)
		}
		if secret == "" {
			return fmt.Errorf("a JWT secret is required, use --%s or %s", flagSecret, constants.EnvJWTSecret)
		}

		signed, err := auth.NewAuthenticator(secret, "").MintToken(userID, email, ttl)
		if err != nil {
			return fmt.Errorf("error minting token: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), signed)
		return err
	},
}

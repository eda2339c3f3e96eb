package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/celestiaorg/quill/internal/db/models"
	"github.com/celestiaorg/quill/internal/types"
)

// Content flag names
const (
	flagWebsiteID = "website"
	flagTopic     = "topic"
	flagTitle     = "title"
	flagAt        = "at"
	flagLimit     = "limit"
	flagOffset    = "offset"
)

func init() {
	contentCmd.AddCommand(scheduleContentCmd)
	contentCmd.AddCommand(listContentCmd)
	contentCmd.AddCommand(deleteContentCmd)

	scheduleContentCmd.Flags().StringP(flagWebsiteID, "w", "", "Website ID to publish to")
	scheduleContentCmd.Flags().String(flagTopic, "", "Topic the agent writes about")
	scheduleContentCmd.Flags().String(flagTitle, "", "Working title, defaults to the topic")
	scheduleContentCmd.Flags().String(flagAt, "", "Publication time in RFC3339, leave empty for a draft")
	_ = scheduleContentCmd.MarkFlagRequired(flagWebsiteID)
	_ = scheduleContentCmd.MarkFlagRequired(flagTopic)

	listContentCmd.Flags().Int(flagLimit, models.DefaultLimit, "Maximum number of items")
	listContentCmd.Flags().Int(flagOffset, 0, "Number of items to skip")
}

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Manage content items",
}

var scheduleContentCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Create a content item, scheduled when --at is given",
	RunE: func(cmd *cobra.Command, _ []string) error {
		websiteID, _ := cmd.Flags().GetString(flagWebsiteID)
		topic, _ := cmd.Flags().GetString(flagTopic)
		title, _ := cmd.Flags().GetString(flagTitle)
		at, _ := cmd.Flags().GetString(flagAt)

		req := types.CreateContentRequest{
			WebsiteID: websiteID,
			Topic:     topic,
			Title:     title,
		}
		if at != "" {
			when, err := time.Parse(time.RFC3339, at)
			if err != nil {
				return fmt.Errorf("invalid --%s: %w", flagAt, err)
			}
			req.ScheduledFor = &when
		}
		if err := req.Validate(); err != nil {
			return err
		}

		item, err := apiClient.CreateContent(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("error creating content: %w", err)
		}
		return printJSON(cmd, item)
	},
}

var listContentCmd = &cobra.Command{
	Use:   "list",
	Short: "List content items with their effective status",
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt(flagLimit)
		offset, _ := cmd.Flags().GetInt(flagOffset)

		items, err := apiClient.ListContent(cmd.Context(), &models.ListOptions{Limit: limit, Offset: offset})
		if err != nil {
			return fmt.Errorf("error listing content: %w", err)
		}
		return printJSON(cmd, items)
	},
}

var deleteContentCmd = &cobra.Command{
	Use:   "delete <content-id>",
	Short: "Delete a content item and its jobs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiClient.DeleteContent(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("error deleting content: %w", err)
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted content %s\n", args[0])
		return err
	},
}

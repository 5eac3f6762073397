package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wtfBlog/domain"
)

// Groups have no http routes for writing, they are managed from here.
var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage the groups posts can be published in",
}

var (
	groupTitle       string
	groupDescription string
)

var groupCreateCmd = &cobra.Command{
	Use:   "create [slug]",
	Short: "Create a new group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			group := domain.Group{
				Title:       groupTitle,
				Slug:        args[0],
				Description: groupDescription,
			}
			if err := a.services.Group.Create(cmd.Context(), &group); err != nil {
				return err
			}
			a.logger.Info("created group", zap.Int("id", group.ID), zap.String("slug", group.Slug))
			return nil
		})
	},
}

var groupDeleteCmd = &cobra.Command{
	Use:   "delete [slug]",
	Short: "Delete a group. Its posts stay, without a group.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			group, err := a.services.Group.BySlug(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.services.Group.Delete(cmd.Context(), group.ID); err != nil {
				return err
			}
			a.logger.Info("deleted group", zap.Int("id", group.ID), zap.String("slug", group.Slug))
			return nil
		})
	},
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			groups, err := a.services.Group.All(cmd.Context())
			if err != nil {
				return err
			}
			for _, g := range groups {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", g.ID, g.Slug, g.Title)
			}
			return nil
		})
	},
}

func init() {
	groupCreateCmd.Flags().StringVar(&groupTitle, "title", "", "Title of the group.")
	groupCreateCmd.Flags().StringVar(&groupDescription, "description", "", "What the group is about.")
	groupCreateCmd.MarkFlagRequired("title")
	groupCmd.AddCommand(groupCreateCmd, groupDeleteCmd, groupListCmd)
	rootCmd.AddCommand(groupCmd)
}

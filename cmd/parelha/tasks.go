package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lewtec/parelha/annotation"
	"github.com/lewtec/parelha/internal/history"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List the tasks assigned to you and their progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.requireLogin(); err != nil {
			return err
		}

		entries, err := annotation.NewBoard(e.client, e.config.UI.BoardConcurrency).Load(cmd.Context())
		if err != nil {
			return e.apiFailure(err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, strings.Join([]string{"id", "title", "status", "progress", "deadline"}, "\t"))
		for _, entry := range entries {
			progress := fmt.Sprintf("%d/?", entry.Done)
			if entry.TotalKnown {
				progress = fmt.Sprintf("%d/%d", entry.Done, entry.Total)
			}
			deadline := "-"
			if entry.Task.Deadline != nil && !entry.Task.Deadline.IsZero() {
				deadline = entry.Task.Deadline.Format("2006-01-02")
			}
			fmt.Fprintln(out, strings.Join([]string{
				entry.Task.ID.String(), entry.Task.Title, string(entry.Status), progress, deadline,
			}, "\t"))
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show your annotations, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.requireLogin(); err != nil {
			return err
		}

		number, _ := cmd.Flags().GetInt("page")
		size, _ := cmd.Flags().GetInt("size")
		if size == 0 {
			size = e.config.UI.HistoryPageSize
		}
		records, err := e.client.History(cmd.Context())
		if err != nil {
			return e.apiFailure(err)
		}
		page := history.Paginate(records, number, size)
		out := cmd.OutOrStdout()
		for _, record := range page.Items {
			fmt.Fprintln(out, strings.Join([]string{
				record.ID.String(), record.ChosenClass, record.Pair.Text1, record.Pair.Text2, record.Notes,
			}, "\t"))
		}
		fmt.Fprintf(out, "page %d of %d (%d annotations)\n", page.Number, page.Pages, page.Total)
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("page", 1, "Page to show")
	historyCmd.Flags().Int("size", 0, "Annotations per page, defaults to ui.history_page_size")
	rootCmd.AddCommand(tasksCmd, historyCmd)
}

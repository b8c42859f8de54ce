package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lewtec/parelha/internal/domain"
	"github.com/lewtec/parelha/internal/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List the local record of submit attempts",
	Long: `List every submit attempt made from this machine, newest first. A
'failed' entry may still have reached the server; check 'parelha history'
before submitting again.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()
		if e.journal == nil {
			return fmt.Errorf("the journal is disabled in the configuration")
		}

		out := cmd.OutOrStdout()
		if summary, _ := cmd.Flags().GetBool("summary"); summary {
			counts, err := e.journal.Counts(cmd.Context())
			if err != nil {
				return err
			}
			for _, outcome := range []domain.SubmitOutcome{domain.OutcomeRecorded, domain.OutcomeCompleted, domain.OutcomeFailed} {
				fmt.Fprintf(out, "%s\t%d\n", outcome, counts[outcome])
			}
			return nil
		}

		task, _ := cmd.Flags().GetString("task")
		outcome, _ := cmd.Flags().GetString("outcome")
		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := e.journal.List(cmd.Context(), journal.Filter{
			TaskID:  domain.ID(task),
			Outcome: domain.SubmitOutcome(outcome),
			Limit:   limit,
		})
		if err != nil {
			return err
		}
		for _, s := range entries {
			fmt.Fprintln(out, strings.Join([]string{
				s.At.Local().Format(time.DateTime),
				s.TaskID.String(),
				strconv.Itoa(s.Index),
				s.CoupleID.String(),
				s.ClassID.String(),
				string(s.Outcome),
				s.Detail,
			}, "\t"))
		}
		return nil
	},
}

func init() {
	journalCmd.Flags().String("task", "", "Only show this task")
	journalCmd.Flags().String("outcome", "", "Only show recorded, completed or failed attempts")
	journalCmd.Flags().Int("limit", 50, "Maximum number of entries, 0 for all")
	journalCmd.Flags().Bool("summary", false, "Only count the attempts per outcome")
	rootCmd.AddCommand(journalCmd)
}

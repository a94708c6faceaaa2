package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lectio/pollgen/internal/quiz"
	"github.com/lectio/pollgen/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored questions for a room session",
	RunE: func(cmd *cobra.Command, args []string) error {
		roomID, _ := cmd.Flags().GetString("room")
		sessionID, _ := cmd.Flags().GetString("session")
		limit, _ := cmd.Flags().GetInt("limit")

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return err
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := st.ListQuestions(cmd.Context(), quiz.Scope{RoomID: roomID, SessionID: sessionID}, limit)
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no questions stored for this scope")
			return nil
		}

		for _, r := range records {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  [%s/%s]  %s\n    answer: %s (via %s)\n",
				r.CreatedAt.Format("2006-01-02 15:04:05"),
				r.Type, r.Difficulty, r.QuestionText, r.CorrectAnswer, r.Provider)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().String("room", "", "Room ID (required)")
	historyCmd.Flags().String("session", "", "Session ID (required)")
	historyCmd.Flags().Int("limit", 50, "Maximum rows to list")
	_ = historyCmd.MarkFlagRequired("room")
	_ = historyCmd.MarkFlagRequired("session")
}

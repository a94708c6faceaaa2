package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lectio/pollgen/internal/embed"
	"github.com/lectio/pollgen/internal/history"
	"github.com/lectio/pollgen/internal/llm"
	"github.com/lectio/pollgen/internal/logging"
	"github.com/lectio/pollgen/internal/quiz"
	"github.com/lectio/pollgen/internal/quizgen"
	"github.com/lectio/pollgen/internal/store"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate quiz questions from a transcript file",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)

		file, _ := cmd.Flags().GetString("file")
		roomID, _ := cmd.Flags().GetString("room")
		sessionID, _ := cmd.Flags().GetString("session")
		segmentID, _ := cmd.Flags().GetString("segment")
		count, _ := cmd.Flags().GetInt("count")
		holistic, _ := cmd.Flags().GetBool("holistic")

		text, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read transcript: %w", err)
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return err
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer st.Close()

		llmCfg := llm.ConfigFromEnv()
		genCfg := quizgen.ConfigFromEnv()

		chain := genCfg.FallbackChain
		if flagChain, _ := cmd.Flags().GetString("providers"); flagChain != "" {
			chain = splitChain(flagChain)
		}
		for _, name := range chain {
			if err := llmCfg.Validate(name); err != nil {
				return err
			}
		}

		clients, err := quizgen.BuildClients(chain, llmCfg, genCfg, st, logger)
		if err != nil {
			return err
		}

		// Context retrieval is optional: without an embedding key the
		// orchestrator simply generates without dedup context.
		var retriever quizgen.ContextRetriever
		embedCfg := embed.ConfigFromEnv()
		if embedCfg.APIKey != "" {
			embedder, err := embed.NewGeminiEmbedder(cmd.Context(), embedCfg)
			if err != nil {
				return err
			}
			retriever = history.NewRetriever(st, embedder, logger)
		}

		orch := quizgen.New(clients, retriever, st, nil, genCfg, logger)

		// Room and session ride the context so every log line below
		// carries them without threading them through each call.
		ctx := logging.WithAttrs(cmd.Context(),
			slog.String("room_id", roomID),
			slog.String("session_id", sessionID),
		)

		result, err := orch.GenerateQuestions(ctx, quizgen.Request{
			SourceText: string(text),
			Scope: quiz.Scope{
				RoomID:    roomID,
				SessionID: sessionID,
				SegmentID: segmentID,
			},
			RequestedCount: count,
			Holistic:       holistic,
		})
		if err != nil {
			return err
		}
		if result.SaveErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: questions generated but not persisted: %v\n", result.SaveErr)
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func splitChain(s string) []string {
	var names []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

func init() {
	generateCmd.Flags().String("file", "", "Transcript text file (required)")
	generateCmd.Flags().String("room", "", "Room ID (required)")
	generateCmd.Flags().String("session", "", "Session ID (required)")
	generateCmd.Flags().String("segment", "", "Segment ID")
	generateCmd.Flags().Int("count", 0, "Pin the question count (0 = derive from length)")
	generateCmd.Flags().Bool("holistic", false, "Whole-session mode (higher question-count ceiling)")
	generateCmd.Flags().String("providers", "", "Comma-separated fallback chain override, e.g. groq,ollama")
	_ = generateCmd.MarkFlagRequired("file")
	_ = generateCmd.MarkFlagRequired("room")
	_ = generateCmd.MarkFlagRequired("session")
}

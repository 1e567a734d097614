package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kerhoff/hearth/internal/intent"
	"github.com/Kerhoff/hearth/internal/llm"
	"github.com/Kerhoff/hearth/internal/models"
)

func init() {
	var document string
	var rulesOnly bool
	parseCmd := &cobra.Command{
		Use:   `parse "TEXT"`,
		Short: "Print the intents read from an utterance or a document",
		Long: "Parse prints the intent envelope as JSON. The AI tier is used when\n" +
			"AI_WORKER_URL/AI_WORKER_SECRET or GEMINI_API_KEY are set, unless --rules is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if document == "" && len(args) == 0 {
				return fmt.Errorf("text or --document required")
			}
			loc, err := location()
			if err != nil {
				return err
			}
			ctx := models.WithUser(cmd.Context(), &models.User{FirstName: "hearthctl"})

			var backend llm.Client
			if !rulesOnly {
				var closeFn func()
				backend, closeFn, err = envBackend(ctx)
				if err != nil {
					return err
				}
				defer closeFn()
			}
			parser := intent.NewParser(backend, newLogger(), intent.WithLocation(loc))

			var env *intent.Envelope
			if document != "" {
				raw, err := os.ReadFile(document)
				if err != nil {
					return fmt.Errorf("failed to read document: %w", err)
				}
				env = parser.ParseDocument(ctx, string(raw), document)
			} else {
				env = parser.Parse(ctx, strings.Join(args, " "))
			}
			return printJSON(cmd.OutOrStdout(), env)
		},
	}
	parseCmd.Flags().StringVarP(&document, "document", "d", "", "Parse a text file as a document")
	parseCmd.Flags().BoolVar(&rulesOnly, "rules", false, "Use only the rule parser")
	rootCmd.AddCommand(parseCmd)
}

// envBackend builds the AI tier from the same variables the server reads.
func envBackend(ctx context.Context) (llm.Client, func(), error) {
	if url := os.Getenv("AI_WORKER_URL"); url != "" {
		secret := os.Getenv("AI_WORKER_SECRET")
		if secret == "" {
			return nil, nil, fmt.Errorf("AI_WORKER_SECRET is required when AI_WORKER_URL is set")
		}
		return llm.NewWorkerClient(url, secret, 20*time.Second), func() {}, nil
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		model := os.Getenv("GEMINI_MODEL")
		if model == "" {
			model = "gemini-1.5-flash"
		}
		g, err := llm.NewGeminiClient(ctx, key, model)
		if err != nil {
			return nil, nil, err
		}
		return g, func() { g.Close() }, nil
	}
	return nil, func() {}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	menuPath   string
	areasPath  string
	ordersPath string
	model      string
	refine     bool
	maxTokens  int
	verbose    bool
)

// rootCmd starts an interactive session in the terminal.
var rootCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the restaurant assistant from the terminal",
	Long: `Starts an interactive session with the restaurant assistant.

Menu and delivery area sources may be local CSV files or s3://bucket/key
objects. General questions are answered by OpenAI when OPENAI_API_KEY is set.

Type "salir" to leave.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	RunE: runChat,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr at debug level")

	rootCmd.Flags().StringVar(&menuPath, "menu", "menu.csv", "menu CSV path or s3:// URI")
	rootCmd.Flags().StringVar(&areasPath, "areas", "us-cities.csv", "delivery areas CSV path or s3:// URI")
	rootCmd.Flags().StringVar(&ordersPath, "orders", "orders.csv", "CSV file confirmed orders are appended to")
	rootCmd.Flags().StringVar(&model, "model", "", "OpenAI model for general questions")
	rootCmd.Flags().BoolVar(&refine, "refine", false, "rewrite general answers with a second model call")
	rootCmd.Flags().IntVar(&maxTokens, "max-tokens", 150, "token cap for general answers")

	rootCmd.AddCommand(transcriptCmd, ordersCmd)
}

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"

	"restaurant-chatbot/internal/repository"
)

var (
	transcriptTable string
	transcriptLimit int
)

// transcriptCmd prints a session mirrored to DynamoDB by the Lambda.
var transcriptCmd = &cobra.Command{
	Use:   "transcript [session-id]",
	Short: "Print a conversation mirrored to DynamoDB",
	Long: `Reads the turns the Lambda mirrored for one session and prints them
in chronological order. With --limit only the latest turns are shown.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("load AWS config: %w", err)
		}
		repo, err := repository.New(awsdynamodb.NewFromConfig(cfg), transcriptTable)
		if err != nil {
			return err
		}
		turns, err := repo.GetTranscript(ctx, args[0], transcriptLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, t := range turns {
			fmt.Fprintf(out, "[%s] %s: %s\n", t.At.Local().Format(time.DateTime), t.Speaker, t.Text)
		}
		return nil
	},
}

func init() {
	transcriptCmd.Flags().StringVar(&transcriptTable, "table", "", "DynamoDB transcript table")
	transcriptCmd.Flags().IntVar(&transcriptLimit, "limit", 0, "show only the latest N turns (0 = all)")
	_ = transcriptCmd.MarkFlagRequired("table")
}

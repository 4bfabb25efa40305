package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"restaurant-chatbot/internal/app"
	"restaurant-chatbot/internal/domain"
	"restaurant-chatbot/internal/fallback"
	"restaurant-chatbot/internal/integrations/objectstore"
	"restaurant-chatbot/internal/integrations/openai"
	"restaurant-chatbot/internal/usecase"
)

var quitWords = []string{"salir", "exit", "quit"}

// Conversation is the part of the chat service the terminal loop drives.
type Conversation interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
	Transcript() []domain.Turn
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	deps := app.Deps{}
	if objectstore.IsURI(menuPath) || objectstore.IsURI(areasPath) {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("load AWS config: %w", err)
		}
		deps.Objects = awss3.NewFromConfig(cfg)
	}
	if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" {
		client, err := openai.NewClient(openai.StaticKey(key))
		if err != nil {
			return err
		}
		deps.LLM = client
	}

	svc, err := app.Build(ctx, app.Config{
		MenuLocation:  menuPath,
		AreasLocation: areasPath,
		OrdersFile:    ordersPath,
		Fallback: fallback.Config{
			Model:     model,
			MaxTokens: maxTokens,
			Refine:    refine,
		},
	}, deps)
	if err != nil {
		return err
	}
	return converse(ctx, svc, cmd.InOrStdin(), cmd.OutOrStdout())
}

// converse prints the greeting, then answers one line of input at a time
// until EOF, a quit word or ctx is done.
func converse(ctx context.Context, conv Conversation, in io.Reader, out io.Writer) error {
	for _, t := range conv.Transcript() {
		fmt.Fprintf(out, "%s: %s\n", t.Speaker, t.Text)
	}

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(sc.Text())
		if isQuit(line) {
			fmt.Fprintln(out, "¡Hasta pronto!")
			return nil
		}
		if line == "" {
			continue
		}

		res, err := conv.Chat(ctx, usecase.ChatInput{Message: line})
		var ue *usecase.Error
		switch {
		case errors.As(err, &ue) && ue.Code == usecase.ErrorInvalidInput:
			fmt.Fprintln(out, invalidInputMessage(ue.Reason))
			continue
		case err != nil:
			return err
		}
		fmt.Fprintf(out, "%s: %s\n", domain.SpeakerBot, res.Reply)
	}
}

func invalidInputMessage(reason string) string {
	switch reason {
	case usecase.ReasonMessageTooLong:
		return "Tu mensaje es demasiado largo. Por favor, acórtalo."
	case usecase.ReasonEmptyMessage:
		return "Escribe un mensaje para continuar."
	default:
		return "No pude procesar tu mensaje. Por favor, inténtalo de nuevo."
	}
}

func isQuit(line string) bool {
	for _, w := range quitWords {
		if strings.EqualFold(line, w) {
			return true
		}
	}
	return false
}

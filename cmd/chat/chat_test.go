package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"restaurant-chatbot/internal/domain"
	"restaurant-chatbot/internal/usecase"
)

type stubConversation struct {
	seen []string
	err  error
}

func (s *stubConversation) Chat(_ context.Context, in usecase.ChatInput) (usecase.ChatOutput, error) {
	s.seen = append(s.seen, in.Message)
	if s.err != nil {
		return usecase.ChatOutput{}, s.err
	}
	return usecase.ChatOutput{Reply: "eco: " + in.Message}, nil
}

func (s *stubConversation) Transcript() []domain.Turn {
	return []domain.Turn{{Speaker: domain.SpeakerBot, Text: "¡Hola!"}}
}

func TestConverse_GreetsAndAnswersUntilQuit(t *testing.T) {
	conv := &stubConversation{}
	var out bytes.Buffer

	err := converse(context.Background(), conv, strings.NewReader("menú\n\n  SALIR \nignorado\n"), &out)
	require.NoError(t, err)
	require.Equal(t, []string{"menú"}, conv.seen)
	require.Contains(t, out.String(), "Bot: ¡Hola!\n")
	require.Contains(t, out.String(), "Bot: eco: menú\n")
	require.Contains(t, out.String(), "¡Hasta pronto!")
}

func TestConverse_StopsAtEOF(t *testing.T) {
	conv := &stubConversation{}
	var out bytes.Buffer

	require.NoError(t, converse(context.Background(), conv, strings.NewReader("hola"), &out))
	require.Equal(t, []string{"hola"}, conv.seen)
}

func TestConverse_InvalidInputKeepsGoing(t *testing.T) {
	conv := &stubConversation{err: &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: usecase.ReasonMessageTooLong}}
	var out bytes.Buffer

	require.NoError(t, converse(context.Background(), conv, strings.NewReader("uno\ndos\n"), &out))
	require.Len(t, conv.seen, 2)
	require.Contains(t, out.String(), "demasiado largo")
}

func TestConverse_UnexpectedErrorStops(t *testing.T) {
	conv := &stubConversation{err: errors.New("boom")}
	var out bytes.Buffer

	err := converse(context.Background(), conv, strings.NewReader("uno\ndos\n"), &out)
	require.EqualError(t, err, "boom")
	require.Len(t, conv.seen, 1)
}

func TestConverse_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	conv := &stubConversation{}

	require.NoError(t, converse(ctx, conv, strings.NewReader("hola\n"), &bytes.Buffer{}))
	require.Empty(t, conv.seen)
}

func TestInvalidInputMessage_ByReason(t *testing.T) {
	require.Contains(t, invalidInputMessage(usecase.ReasonMessageTooLong), "demasiado largo")
	require.NotContains(t, invalidInputMessage(usecase.ReasonEmptyMessage), "demasiado largo")
	require.NotContains(t, invalidInputMessage("other"), "demasiado largo")
}

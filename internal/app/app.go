// Package app assembles a ChatService from its sources and integrations.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"restaurant-chatbot/internal/catalog"
	"restaurant-chatbot/internal/conversation"
	"restaurant-chatbot/internal/delivery"
	"restaurant-chatbot/internal/fallback"
	"restaurant-chatbot/internal/integrations/objectstore"
	"restaurant-chatbot/internal/intent"
	"restaurant-chatbot/internal/moderation"
	"restaurant-chatbot/internal/order"
	"restaurant-chatbot/internal/orderlog"
	"restaurant-chatbot/internal/source"
	"restaurant-chatbot/internal/usecase"
)

// ObjectGetter fetches s3:// sources.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// LLM is the generation and screening backend of the fallback responder.
type LLM interface {
	fallback.Generator
	fallback.Screener
}

type Config struct {
	MenuLocation  string
	AreasLocation string
	OrdersFile    string
	MaxMessageLen int
	Fallback      fallback.Config

	// SessionID names the transcript when Recorder is set.
	SessionID string
}

type Deps struct {
	// Objects is required only when a location is an s3:// URI.
	Objects ObjectGetter
	// LLM may be nil; the fallback then answers that it is unavailable.
	LLM      LLM
	Recorder conversation.Recorder
	Logger   *slog.Logger
}

// SourceFor resolves location to an S3 object or a local file.
func SourceFor(location string, objects ObjectGetter) (source.Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("app: source location is empty")
	}
	if !objectstore.IsURI(location) {
		return source.File{Path: location}, nil
	}
	if objects == nil {
		return nil, fmt.Errorf("app: %s needs an S3 client", location)
	}
	return objectstore.New(objects, location)
}

// Build loads the menu and delivery areas and wires the chat service.
// Source problems are logged and leave the affected store empty or partial.
func Build(ctx context.Context, cfg Config, deps Deps) (*usecase.ChatService, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	menuSrc, err := SourceFor(cfg.MenuLocation, deps.Objects)
	if err != nil {
		return nil, err
	}
	areasSrc, err := SourceFor(cfg.AreasLocation, deps.Objects)
	if err != nil {
		return nil, err
	}

	menu := catalog.NewStore()
	n, err := menu.Load(ctx, menuSrc)
	reportLoad(ctx, logger, "menu", menuSrc.Name(), n, err)

	areas := delivery.NewStore()
	n, err = areas.Load(ctx, areasSrc)
	reportLoad(ctx, logger, "delivery areas", areasSrc.Name(), n, err)

	sink, err := orderlog.NewCSVSink(cfg.OrdersFile)
	if err != nil {
		return nil, err
	}
	session, err := order.NewSession(sink)
	if err != nil {
		return nil, err
	}

	var responder *fallback.Responder
	if deps.LLM != nil {
		responder = fallback.New(deps.LLM, cfg.Fallback, fallback.WithScreener(deps.LLM), fallback.WithLogger(logger))
	} else {
		logger.WarnContext(ctx, "no LLM configured; general questions will not be answered")
		responder = fallback.New(nil, cfg.Fallback, fallback.WithLogger(logger))
	}

	logOpts := []conversation.Option{conversation.WithLogger(logger)}
	if deps.Recorder != nil {
		logOpts = append(logOpts, conversation.WithRecorder(cfg.SessionID, deps.Recorder))
	}

	return usecase.NewChatService(ctx, usecase.Deps{
		Menu:      menu,
		Areas:     areas,
		Moderator: moderation.New(moderation.DefaultDenylist...),
		Router:    intent.NewRouter(),
		Session:   session,
		Fallback:  responder,
		Log:       conversation.NewLog(logOpts...),
	}, usecase.WithMaxMessageLength(cfg.MaxMessageLen), usecase.WithLogger(logger))
}

func reportLoad(ctx context.Context, logger *slog.Logger, what, name string, n int, err error) {
	var mal *source.MalformedRecordError
	switch {
	case err == nil:
		logger.InfoContext(ctx, "loaded "+what, "source", name, "count", n)
	case errors.Is(err, source.ErrUnavailable), errors.Is(err, delivery.ErrUnsupportedSchema):
		logger.WarnContext(ctx, what+" unavailable", "source", name, "err", err)
	case errors.As(err, &mal):
		logger.WarnContext(ctx, "skipped malformed "+what+" records", "source", name, "count", n, "err", err)
	default:
		logger.ErrorContext(ctx, "failed to load "+what, "source", name, "count", n, "err", err)
	}
}

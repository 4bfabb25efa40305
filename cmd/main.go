package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/google/uuid"

	"restaurant-chatbot/handler"
	"restaurant-chatbot/internal/app"
	"restaurant-chatbot/internal/fallback"
	"restaurant-chatbot/internal/integrations/openai"
	"restaurant-chatbot/internal/integrations/paramstore"
	"restaurant-chatbot/internal/repository"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	menuSource := mustEnv("MENU_SOURCE")
	areasSource := mustEnv("AREAS_SOURCE")
	ordersFile := envString("ORDERS_FILE", "/tmp/orders.csv")
	transcriptTable := os.Getenv("TRANSCRIPT_TABLE")
	paramPrefix := strings.TrimRight(os.Getenv("PARAM_PREFIX"), "/")
	maxMessageLen := envInt("MAX_MESSAGE_LENGTH", 500)
	fallbackCfg := fallback.Config{
		MaxTokens: envInt("FALLBACK_MAX_TOKENS", fallback.DefaultMaxTokens),
		Timeout:   time.Duration(envInt("FALLBACK_TIMEOUT_SECONDS", 10)) * time.Second,
		Refine:    envBool("FALLBACK_REFINE", false),
	}

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	deps := app.Deps{Objects: awss3.NewFromConfig(cfg), Logger: slog.Default()}

	if paramPrefix != "" {
		ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
		if err != nil {
			slog.Error("failed to create SSM client", "err", err)
			os.Exit(1)
		}
		llm, model := openAIFromParamStore(ctx, ssmClient, paramPrefix)
		if llm != nil {
			deps.LLM = llm
			fallbackCfg.Model = model
		}
	}

	sessionID := uuid.NewString()
	if transcriptTable != "" {
		recorder, err := repository.New(awsdynamodb.NewFromConfig(cfg), transcriptTable)
		if err != nil {
			slog.Error("failed to create transcript client", "err", err)
			os.Exit(1)
		}
		deps.Recorder = recorder
		slog.Info("mirroring transcript", "table", transcriptTable, "session", sessionID)
	}

	// ---- Handler ----
	chatService, err := app.Build(ctx, app.Config{
		MenuLocation:  menuSource,
		AreasLocation: areasSource,
		OrdersFile:    ordersFile,
		MaxMessageLen: maxMessageLen,
		Fallback:      fallbackCfg,
		SessionID:     sessionID,
	}, deps)
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(chatService)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

// openAIFromParamStore returns nil when the token parameter is absent. The
// model parameter is optional.
func openAIFromParamStore(ctx context.Context, ssmClient *paramstore.Client, prefix string) (*openai.Client, string) {
	tokenParam := prefix + "/open-ai-token"
	if _, ok, err := ssmClient.LookupParameter(ctx, tokenParam); err != nil || !ok {
		slog.Warn("OpenAI token not available; fallback disabled", "param", tokenParam, "err", err)
		return nil, ""
	}
	model, _, err := ssmClient.LookupParameter(ctx, prefix+"/config/openai_model")
	if err != nil {
		slog.Warn("failed to read OpenAI model; using default", "err", err)
	}
	client, err := openai.NewClient(openai.ParamStoreKey{Getter: ssmClient, Name: tokenParam})
	if err != nil {
		slog.Error("failed to create OpenAI client", "err", err)
		os.Exit(1)
	}
	return client, strings.TrimSpace(model)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

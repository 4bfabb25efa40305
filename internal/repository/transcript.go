package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"restaurant-chatbot/internal/domain"
)

const (
	skPrefixTurn = "TURN#"
	ttlDuration  = 30 * 24 * time.Hour // 30-day TTL
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Client wraps a DynamoDB table holding conversation transcripts.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

// sessionPK returns the DynamoDB partition key for a chat session.
func sessionPK(sessionID string) string {
	return "SESSION#" + sessionID
}

// turnSK returns the sort key for a turn. Zero padding keeps lexical order
// equal to turn order.
func turnSK(seq int) string {
	return fmt.Sprintf("%s%08d", skPrefixTurn, seq)
}

// ttlValue returns a Unix timestamp 30 days in the future.
func ttlValue() int64 {
	return time.Now().Add(ttlDuration).Unix()
}

// NewTranscriptItem builds the persisted form of a turn.
func NewTranscriptItem(sessionID string, seq int, turn domain.Turn) domain.TranscriptItem {
	return domain.TranscriptItem{
		PK:        sessionPK(sessionID),
		SK:        turnSK(seq),
		SessionID: sessionID,
		Seq:       seq,
		Speaker:   turn.Speaker,
		Text:      turn.Text,
		At:        turn.At.UTC().Format(time.RFC3339Nano),
		TTL:       ttlValue(),
	}
}

// AppendTurn writes one turn. Turns are immutable, so an existing key is an
// error.
func (c *Client) AppendTurn(ctx context.Context, sessionID string, seq int, turn domain.Turn) error {
	if strings.TrimSpace(sessionID) == "" {
		return errors.New("repository: AppendTurn: session id is required")
	}
	if seq < 0 {
		return errors.New("repository: AppendTurn: seq must not be negative")
	}
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                transcriptItem(NewTranscriptItem(sessionID, seq, turn)),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: AppendTurn: %w", err)
	}
	return nil
}

// GetTranscript returns the most recent limit turns of a session in
// chronological order. limit <= 0 returns every turn.
func (c *Client) GetTranscript(ctx context.Context, sessionID string, limit int) ([]domain.Turn, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: sessionPK(sessionID)},
			":prefix": &types.AttributeValueMemberS{Value: skPrefixTurn},
		},
		// Read newest first so LIMIT favors the most recent turns.
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		in.Limit = aws.Int32(int32(limit))
	}

	var turns []domain.Turn
	for {
		out, err := c.api.Query(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("repository: GetTranscript query: %w", err)
		}
		for _, item := range out.Items {
			turn, err := itemToTurn(item)
			if err != nil {
				return nil, fmt.Errorf("repository: GetTranscript unmarshal: %w", err)
			}
			turns = append(turns, turn)
		}
		if limit > 0 || len(out.LastEvaluatedKey) == 0 {
			break
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}

	// Reverse to chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

func transcriptItem(t domain.TranscriptItem) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":        &types.AttributeValueMemberS{Value: t.PK},
		"SK":        &types.AttributeValueMemberS{Value: t.SK},
		"sessionId": &types.AttributeValueMemberS{Value: t.SessionID},
		"seq":       &types.AttributeValueMemberN{Value: strconv.Itoa(t.Seq)},
		"speaker":   &types.AttributeValueMemberS{Value: string(t.Speaker)},
		"text":      &types.AttributeValueMemberS{Value: t.Text},
		"at":        &types.AttributeValueMemberS{Value: t.At},
		"ttl":       &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", t.TTL)},
	}
}

// itemToTurn converts a DynamoDB attribute map to a Turn.
func itemToTurn(item map[string]types.AttributeValue) (domain.Turn, error) {
	speaker, err := strAttr(item, "speaker")
	if err != nil {
		return domain.Turn{}, err
	}
	text, err := strAttr(item, "text")
	if err != nil {
		return domain.Turn{}, err
	}
	rawAt, err := strAttr(item, "at")
	if err != nil {
		return domain.Turn{}, err
	}
	at, err := time.Parse(time.RFC3339Nano, rawAt)
	if err != nil {
		return domain.Turn{}, fmt.Errorf("repository: parse attribute %q: %w", "at", err)
	}
	return domain.Turn{Speaker: domain.Speaker(speaker), Text: text, At: at}, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

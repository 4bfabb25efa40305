package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"restaurant-chatbot/internal/catalog"
	"restaurant-chatbot/internal/conversation"
	"restaurant-chatbot/internal/domain"
	"restaurant-chatbot/internal/intent"
	"restaurant-chatbot/internal/order"
)

const (
	defaultMaxMessage = 500
	drinkSuggestions  = 5
)

type MenuReader interface {
	Categories() []catalog.Category
	FindByName(name string) (domain.MenuItem, bool)
}

type AreaReader interface {
	Preview(limit int) []domain.DeliveryArea
	Len() int
}

type ContentModerator interface {
	IsAcceptable(text string) bool
}

type FallbackResponder interface {
	Generate(ctx context.Context, utterance string) string
}

// Deps are the collaborators of a ChatService. All are required.
type Deps struct {
	Menu      MenuReader
	Areas     AreaReader
	Moderator ContentModerator
	Router    *intent.Router
	Session   *order.Session
	Fallback  FallbackResponder
	Log       *conversation.Log
}

func (d Deps) validate() error {
	switch {
	case d.Menu == nil:
		return errors.New("usecase: menu must not be nil")
	case d.Areas == nil:
		return errors.New("usecase: delivery areas must not be nil")
	case d.Moderator == nil:
		return errors.New("usecase: moderator must not be nil")
	case d.Router == nil:
		return errors.New("usecase: router must not be nil")
	case d.Session == nil:
		return errors.New("usecase: order session must not be nil")
	case d.Fallback == nil:
		return errors.New("usecase: fallback responder must not be nil")
	case d.Log == nil:
		return errors.New("usecase: conversation log must not be nil")
	}
	return nil
}

type handlerFunc func(ctx context.Context, in intent.Intent) string

// ChatService runs one conversation turn at a time: moderation, routing,
// the intent handler, then the transcript.
type ChatService struct {
	deps          Deps
	handlers      map[intent.Kind]handlerFunc
	maxMessageLen int
	now           func() time.Time
	logger        *slog.Logger

	mu sync.Mutex
}

type ChatInput struct {
	Message string
}

type ChatOutput struct {
	Reply    string
	Intent   string
	Rejected bool
}

type Option func(*ChatService)

// WithMaxMessageLength caps the accepted message length in characters.
func WithMaxMessageLength(n int) Option {
	return func(s *ChatService) {
		if n > 0 {
			s.maxMessageLen = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *ChatService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *ChatService) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewChatService validates deps and appends the greeting to the log.
func NewChatService(ctx context.Context, deps Deps, opts ...Option) (*ChatService, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	s := &ChatService{
		deps:          deps,
		maxMessageLen: defaultMaxMessage,
		now:           time.Now,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handlers = map[intent.Kind]handlerFunc{
		intent.ShowMenu:          s.showMenu,
		intent.PlaceOrder:        s.placeOrder,
		intent.CancelOrder:       s.cancelOrder,
		intent.ConfirmOrder:      s.confirmOrder,
		intent.ShowDeliveryAreas: s.showDeliveryAreas,
		intent.NutritionLookup:   s.nutritionLookup,
		intent.SuggestDrinks:     s.suggestDrinks,
		intent.Fallback:          s.fallback,
	}
	deps.Log.Append(ctx, domain.SpeakerBot, greetingMessage)
	return s, nil
}

// Chat processes one user message. The only errors are invalid input;
// everything else is answered in the reply.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	msg := strings.TrimSpace(in.Message)
	if msg == "" {
		return ChatOutput{}, newError(ErrorInvalidInput, ReasonEmptyMessage, nil)
	}
	if utf8.RuneCountInString(msg) > s.maxMessageLen {
		return ChatOutput{}, newError(ErrorInvalidInput, ReasonMessageTooLong, nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.deps.Moderator.IsAcceptable(msg) {
		s.logger.InfoContext(ctx, "message rejected by moderation")
		return ChatOutput{Reply: rejectedMessage, Rejected: true}, nil
	}

	s.deps.Log.Append(ctx, domain.SpeakerUser, msg)
	decided := s.deps.Router.Route(msg)
	handle, ok := s.handlers[decided.Kind]
	if !ok {
		handle = s.fallback
	}
	reply := handle(ctx, decided)
	s.deps.Log.Append(ctx, domain.SpeakerBot, reply)

	return ChatOutput{Reply: reply, Intent: decided.Kind.String()}, nil
}

// Transcript returns every logged turn in order.
func (s *ChatService) Transcript() []domain.Turn {
	return s.deps.Log.Turns()
}

func (s *ChatService) showMenu(_ context.Context, _ intent.Intent) string {
	return formatMenu(s.deps.Menu.Categories())
}

func (s *ChatService) placeOrder(_ context.Context, in intent.Intent) string {
	name := intent.ExtractItemName(in.Text, intent.ItemPreposition)
	if name == "" {
		return orderHelpMessage
	}
	item, ok := s.deps.Menu.FindByName(name)
	if !ok {
		return itemNotFound(name)
	}
	line := s.deps.Session.AddItem(item, intent.ExtractQuantity(in.Text))
	return lineAdded(line, s.deps.Session.Total())
}

func (s *ChatService) cancelOrder(_ context.Context, _ intent.Intent) string {
	if _, err := s.deps.Session.Cancel(); err != nil {
		return noOrderToCancelMessage
	}
	return orderCanceledMessage
}

func (s *ChatService) confirmOrder(ctx context.Context, _ intent.Intent) string {
	rcpt, err := s.deps.Session.Confirm(ctx, s.now())
	switch {
	case errors.Is(err, order.ErrNoActiveOrder):
		return noOrderToConfirmMessage
	case err != nil:
		s.logger.ErrorContext(ctx, "failed to record order", "err", err)
		return orderRecordFailedMessage
	}
	s.logger.InfoContext(ctx, "order confirmed", "order", rcpt.OrderID, "lines", len(rcpt.Lines), "total", rcpt.Total.StringFixed(2))
	return orderConfirmed(rcpt)
}

func (s *ChatService) showDeliveryAreas(_ context.Context, _ intent.Intent) string {
	return formatAreas(s.deps.Areas.Preview(0), s.deps.Areas.Len())
}

func (s *ChatService) nutritionLookup(_ context.Context, in intent.Intent) string {
	item, ok := s.deps.Menu.FindByName(intent.ExtractItemName(in.Text, intent.ItemPreposition))
	if !ok {
		return nutritionNotFoundMessage
	}
	return formatNutrition(item)
}

func (s *ChatService) suggestDrinks(_ context.Context, _ intent.Intent) string {
	var drinks []domain.MenuItem
	for _, c := range s.deps.Menu.Categories() {
		if !isDrinkCategory(c.Name) {
			continue
		}
		for _, item := range c.Items {
			if len(drinks) == drinkSuggestions {
				break
			}
			drinks = append(drinks, item)
		}
	}
	return formatDrinks(drinks)
}

func (s *ChatService) fallback(ctx context.Context, in intent.Intent) string {
	return s.deps.Fallback.Generate(ctx, in.Text)
}

var drinkCategoryHints = []string{"bebida", "beverage", "drink", "coffee", "café", "cafe"}

func isDrinkCategory(name string) bool {
	lower := strings.ToLower(name)
	for _, h := range drinkCategoryHints {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

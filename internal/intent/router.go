// Package intent classifies user utterances with ordered keyword rules.
package intent

import "strings"

// Kind is the classified purpose of an utterance.
type Kind int

const (
	Fallback Kind = iota
	ShowMenu
	PlaceOrder
	CancelOrder
	ConfirmOrder
	ShowDeliveryAreas
	NutritionLookup
	SuggestDrinks
)

var kindNames = map[Kind]string{
	Fallback:          "fallback",
	ShowMenu:          "show_menu",
	PlaceOrder:        "place_order",
	CancelOrder:       "cancel_order",
	ConfirmOrder:      "confirm_order",
	ShowDeliveryAreas: "show_delivery_areas",
	NutritionLookup:   "nutrition_lookup",
	SuggestDrinks:     "suggest_drinks",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// carriesText lists the kinds whose handlers need the raw utterance.
func (k Kind) carriesText() bool {
	return k == PlaceOrder || k == NutritionLookup || k == Fallback
}

// Intent is the router's decision. Text holds the trimmed original utterance
// for PlaceOrder, NutritionLookup and Fallback.
type Intent struct {
	Kind Kind
	Text string
}

// Rule maps a set of keywords to a Kind. A rule matches when any keyword
// occurs as a substring of the lowercased utterance.
type Rule struct {
	Kind     Kind
	Keywords []string
}

func (r Rule) matches(lower string) bool {
	for _, k := range r.Keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// DefaultRules returns the canonical rule list. Order is precedence: keyword
// sets overlap, and the first matching rule wins.
func DefaultRules() []Rule {
	return []Rule{
		{Kind: ShowMenu, Keywords: []string{"menú", "menu", "carta"}},
		{Kind: PlaceOrder, Keywords: []string{"pedir", "ordenar"}},
		{Kind: CancelOrder, Keywords: []string{"cancelar", "anular"}},
		{Kind: ConfirmOrder, Keywords: []string{"confirmar"}},
		{Kind: ShowDeliveryAreas, Keywords: []string{"entrega", "reparto", "domicilio"}},
		{Kind: NutritionLookup, Keywords: []string{"información nutricional", "informacion nutricional", "calorías", "calorias"}},
		{Kind: SuggestDrinks, Keywords: []string{"bebida", "beber", "tomar"}},
	}
}

// Router evaluates its rules top to bottom.
type Router struct {
	rules []Rule
}

// NewRouter builds a Router over rules, or DefaultRules when none are given.
// Keywords are lowercased.
func NewRouter(rules ...Rule) *Router {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	r := &Router{rules: make([]Rule, len(rules))}
	for i, rule := range rules {
		kw := make([]string, len(rule.Keywords))
		for j, k := range rule.Keywords {
			kw[j] = strings.ToLower(k)
		}
		r.rules[i] = Rule{Kind: rule.Kind, Keywords: kw}
	}
	return r
}

// Rules returns a copy of the rule list in evaluation order.
func (r *Router) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	for i, rule := range r.rules {
		out[i] = Rule{Kind: rule.Kind, Keywords: append([]string(nil), rule.Keywords...)}
	}
	return out
}

// Route classifies utterance. Unmatched input yields Fallback.
func (r *Router) Route(utterance string) Intent {
	text := strings.TrimSpace(utterance)
	lower := strings.ToLower(text)
	kind := Fallback
	for _, rule := range r.rules {
		if rule.matches(lower) {
			kind = rule.Kind
			break
		}
	}
	in := Intent{Kind: kind}
	if kind.carriesText() {
		in.Text = text
	}
	return in
}

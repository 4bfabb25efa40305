package usecase

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"restaurant-chatbot/internal/catalog"
	"restaurant-chatbot/internal/domain"
	"restaurant-chatbot/internal/fallback"
	"restaurant-chatbot/internal/order"
)

const (
	greetingMessage          = "¡Hola! Soy tu asistente virtual de restaurante. ¿En qué puedo ayudarte hoy?"
	rejectedMessage          = fallback.RejectedMessage
	menuUnavailableMessage   = "Lo siento, el menú no está disponible en este momento."
	orderHelpMessage         = "¿Qué te gustaría pedir? Por ejemplo: \"quiero pedir 2 de Soda\"."
	orderCanceledMessage     = "Tu pedido ha sido cancelado."
	noOrderToCancelMessage   = "No tienes ningún pedido en curso para cancelar."
	noOrderToConfirmMessage  = "No tienes ningún pedido en curso para confirmar."
	orderRecordFailedMessage = "Lo siento, no pudimos registrar tu pedido. Por favor, intenta confirmarlo de nuevo."
	noAreasMessage           = "Por ahora no tenemos zonas de entrega disponibles."
	nutritionNotFoundMessage = "Lo siento, no encontré información nutricional para ese artículo."
	noDrinksMessage          = "Lo siento, no tenemos bebidas disponibles en este momento."
)

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func formatMenu(categories []catalog.Category) string {
	if len(categories) == 0 {
		return menuUnavailableMessage
	}
	var b strings.Builder
	b.WriteString("Aquí está nuestro menú:\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "\n**%s**\n", c.Name)
		for _, item := range c.Items {
			fmt.Fprintf(&b, "- %s: %s, %d calorías, %s\n", item.Name, item.ServingSize, item.Calories, money(item.Price))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func itemNotFound(name string) string {
	return fmt.Sprintf("Lo siento, no encontré \"%s\" en el menú.", name)
}

func lineAdded(line domain.OrderLine, total decimal.Decimal) string {
	return fmt.Sprintf(
		"Agregué %d x %s (%s) a tu pedido. Total actual: %s. Escribe \"confirmar\" para finalizar o \"cancelar\" para anularlo.",
		line.Quantity, line.Name, money(line.Price), money(total),
	)
}

func orderConfirmed(r order.Receipt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "¡Pedido confirmado! Número de orden: %s\n", r.OrderID)
	for _, l := range r.Lines {
		fmt.Fprintf(&b, "- %d x %s: %s\n", l.Quantity, l.Name, money(l.Price))
	}
	fmt.Fprintf(&b, "Total: %s", money(r.Total))
	return b.String()
}

func formatAreas(preview []domain.DeliveryArea, total int) string {
	if len(preview) == 0 {
		return noAreasMessage
	}
	var b strings.Builder
	b.WriteString("Realizamos entregas en las siguientes ciudades:\n")
	for _, a := range preview {
		fmt.Fprintf(&b, "- %s\n", a)
	}
	if total > len(preview) {
		b.WriteString("… y más.\n")
	}
	b.WriteString("¿Hay alguna ciudad específica que te interese?")
	return b.String()
}

func formatNutrition(item domain.MenuItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Información nutricional para %s:\n", item.Name)
	fmt.Fprintf(&b, "Tamaño de porción: %s\n", item.ServingSize)
	fmt.Fprintf(&b, "Calorías: %d\n", item.Calories)
	writeNutrient(&b, "Grasa total", "g", item.TotalFat)
	writeNutrient(&b, "Sodio", "mg", item.Sodium)
	writeNutrient(&b, "Carbohidratos", "g", item.Carbohydrates)
	writeNutrient(&b, "Proteínas", "g", item.Protein)
	return strings.TrimRight(b.String(), "\n")
}

// writeNutrient skips nutrients the source left blank.
func writeNutrient(b *strings.Builder, label, unit string, n domain.Nutrient) {
	if n.Amount == "" {
		return
	}
	if n.DailyValue == "" {
		fmt.Fprintf(b, "%s: %s%s\n", label, n.Amount, unit)
		return
	}
	fmt.Fprintf(b, "%s: %s%s (%s%% VD)\n", label, n.Amount, unit, n.DailyValue)
}

func formatDrinks(drinks []domain.MenuItem) string {
	if len(drinks) == 0 {
		return noDrinksMessage
	}
	var b strings.Builder
	b.WriteString("Te recomiendo estas bebidas:\n")
	for _, d := range drinks {
		fmt.Fprintf(&b, "- %s (%s)\n", d.Name, money(d.Price))
	}
	return strings.TrimRight(b.String(), "\n")
}

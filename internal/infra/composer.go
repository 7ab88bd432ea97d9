package infra

import (
	"fmt"
	"strings"

	"github.com/DrgGomes/cft-estoque-fast/internal/dto"
)

// TextComposer renders an order list as a plain-text message ready to paste
// into a chat app. One line per item, quantity last.
type TextComposer struct{}

func NewTextComposer() *TextComposer { return &TextComposer{} }

func (TextComposer) Compose(customerName string, lines []dto.OrderLine) (string, error) {
	if len(lines) == 0 {
		return "", fmt.Errorf("order for %s has no items", customerName)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Order — %s\n", customerName)
	for _, line := range lines {
		fmt.Fprintf(&b, "- %s x%d\n", line.Description, line.Quantity)
	}
	return b.String(), nil
}

package cart

import (
	"autoparts-storefront/models"
	"autoparts-storefront/utils"

	"github.com/shopspring/decimal"
)

// ActionType names a cart mutation
type ActionType string

const (
	ActionAdd       ActionType = "add"
	ActionRemove    ActionType = "remove"
	ActionIncrement ActionType = "increment"
	ActionDecrement ActionType = "decrement"
	ActionClear     ActionType = "clear"
)

// Action is one cart mutation. Line is used by ActionAdd, ID by the per-line actions.
type Action struct {
	Type ActionType
	Line models.CartLine
	ID   int64
}

// Add returns an action merging line into the cart
func Add(line models.CartLine) Action { return Action{Type: ActionAdd, Line: line} }

// Remove returns an action dropping the line with id
func Remove(id int64) Action { return Action{Type: ActionRemove, ID: id} }

// Increment returns an action raising the quantity of id by one
func Increment(id int64) Action { return Action{Type: ActionIncrement, ID: id} }

// Decrement returns an action lowering the quantity of id by one, never below one
func Decrement(id int64) Action { return Action{Type: ActionDecrement, ID: id} }

// Clear returns an action emptying the cart
func Clear() Action { return Action{Type: ActionClear} }

// Reduce applies a to lines and returns the new collection. lines is never modified.
// Adding a product already in the cart merges quantities; unknown ids are ignored.
func Reduce(lines []models.CartLine, a Action) []models.CartLine {
	out := make([]models.CartLine, 0, len(lines)+1)

	switch a.Type {
	case ActionAdd:
		qty := a.Line.Quantity
		if qty < 1 {
			qty = 1
		}
		merged := false
		for _, l := range lines {
			if l.ID == a.Line.ID {
				l.Quantity += qty
				merged = true
			}
			out = append(out, l)
		}
		if !merged {
			line := a.Line
			line.Quantity = qty
			out = append(out, line)
		}

	case ActionRemove:
		for _, l := range lines {
			if l.ID != a.ID {
				out = append(out, l)
			}
		}

	case ActionIncrement, ActionDecrement:
		for _, l := range lines {
			if l.ID == a.ID {
				if a.Type == ActionIncrement {
					l.Quantity++
				} else if l.Quantity > 1 {
					l.Quantity--
				}
			}
			out = append(out, l)
		}

	case ActionClear:

	default:
		out = append(out, lines...)
	}

	return out
}

// Summary returns the total quantity and the subtotal of lines
func Summary(lines []models.CartLine) (count int, subtotal decimal.Decimal) {
	for _, l := range lines {
		count += l.Quantity
		subtotal = subtotal.Add(utils.LineTotal(&l.Price, l.Quantity))
	}
	return count, subtotal
}

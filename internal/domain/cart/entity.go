// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidCart = errors.New("cart: invalid")

	// ErrPurchased is returned when mutating a cart that has already been
	// finalized. A purchased cart is an immutable order record.
	ErrPurchased = errors.New("cart: already purchased")
)

// Item represents "one line item" in a cart.
// Drug name, image and unit price are denormalized snapshots captured at add
// time, so later catalog edits never change historical lines.
type Item struct {
	DrugID   string  `json:"drugId" firestore:"drugId"`
	Quantity int     `json:"quantity" firestore:"quantity"`
	DrugName string  `json:"drug_name" firestore:"drug_name"`
	Image    string  `json:"image" firestore:"image"`
	Price    float64 `json:"price" firestore:"price"`
	Total    float64 `json:"total" firestore:"total"`
}

// NewItem builds a line item snapshot. Total is derived (price * quantity).
func NewItem(drugID string, quantity int, drugName, image string, price float64) (Item, error) {
	id := strings.TrimSpace(drugID)
	if id == "" || quantity <= 0 || price < 0 {
		return Item{}, ErrInvalidCart
	}
	return Item{
		DrugID:   id,
		Quantity: quantity,
		DrugName: strings.TrimSpace(drugName),
		Image:    strings.TrimSpace(image),
		Price:    price,
		Total:    price * float64(quantity),
	}, nil
}

// Cart represents "a cart document".
//   - docId = random id (Firestore)
//   - exactly one cart with purchased=false may exist per user (the open
//     cart); once purchased=true the cart becomes order history and is never
//     mutated or deleted again.
//
// NOTE: lines for the same drug are kept as separate entries; duplicates are
// not merged. Remove drops every line for the drug.
type Cart struct {
	// ID is the Firestore docId.
	ID string `json:"id" firestore:"id"`

	UserUID   string  `json:"user_uid" firestore:"user_uid"`
	Purchased bool    `json:"purchased" firestore:"purchased"`
	Items     []Item  `json:"items" firestore:"items"`
	SubTotal  float64 `json:"subtotal" firestore:"subtotal"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// NewCart creates a new open cart for userUID.
// id may be empty; the repository assigns the docId on create.
// items can be nil (treated as empty).
func NewCart(id, userUID string, items []Item, now time.Time) (*Cart, error) {
	c := &Cart{
		ID:        strings.TrimSpace(id),
		UserUID:   strings.TrimSpace(userUID),
		Purchased: false,
		Items:     cloneItems(items),
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.recalc()
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// AddItem appends a line to an open cart and recomputes the subtotal.
func (c *Cart) AddItem(it Item, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	if c.Purchased {
		return ErrPurchased
	}
	if strings.TrimSpace(it.DrugID) == "" || it.Quantity <= 0 {
		return ErrInvalidCart
	}

	if c.Items == nil {
		c.Items = []Item{}
	}
	c.Items = append(c.Items, it)
	c.recalc()
	c.UpdatedAt = now
	return c.validate()
}

// RemoveItem drops every line matching drugID and recomputes the subtotal.
// Returns false when no line matched.
func (c *Cart) RemoveItem(drugID string, now time.Time) (bool, error) {
	if c == nil {
		return false, ErrInvalidCart
	}
	if c.Purchased {
		return false, ErrPurchased
	}

	id := strings.TrimSpace(drugID)
	if id == "" {
		return false, ErrInvalidCart
	}

	kept := make([]Item, 0, len(c.Items))
	removed := false
	for _, it := range c.Items {
		if it.DrugID == id {
			removed = true
			continue
		}
		kept = append(kept, it)
	}
	if !removed {
		return false, nil
	}

	c.Items = kept
	c.recalc()
	c.UpdatedAt = now
	return true, c.validate()
}

// MarkPurchased finalizes the cart. The transition is one-way.
//
// NOTE: an empty cart may be purchased; the original flow has no guard and
// the business rule is still undecided, so the behavior is preserved.
func (c *Cart) MarkPurchased(now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	if c.Purchased {
		return ErrPurchased
	}
	c.Purchased = true
	c.recalc()
	c.UpdatedAt = now
	return c.validate()
}

func (c *Cart) recalc() {
	var sum float64
	for _, it := range c.Items {
		sum += it.Total
	}
	c.SubTotal = sum
}

func (c *Cart) validate() error {
	if c == nil {
		return ErrInvalidCart
	}
	if strings.TrimSpace(c.UserUID) == "" {
		return ErrInvalidCart
	}
	if c.CreatedAt.IsZero() || c.UpdatedAt.IsZero() {
		return ErrInvalidCart
	}
	if c.UpdatedAt.Before(c.CreatedAt) {
		return ErrInvalidCart
	}
	for _, it := range c.Items {
		if strings.TrimSpace(it.DrugID) == "" || it.Quantity <= 0 || it.Price < 0 {
			return ErrInvalidCart
		}
	}
	return nil
}

func cloneItems(src []Item) []Item {
	if len(src) == 0 {
		return []Item{}
	}
	out := make([]Item, 0, len(src))
	out = append(out, src...)
	return out
}

// internal/adapters/out/firestore/cart_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	cartdom "pharmacy/internal/domain/cart"
)

// CartRepositoryFS implements cart.Repository using Firestore.
//
// Collection design:
// - collection: carts
// - docId: random uuid (assigned on Create)
// - the open cart is the single doc with (user_uid==uid, purchased==false)
type CartRepositoryFS struct {
	Client *firestore.Client
}

func NewCartRepositoryFS(client *firestore.Client) *CartRepositoryFS {
	return &CartRepositoryFS{Client: client}
}

func (r *CartRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("carts")
}

// GetOpenByUserUID returns (nil, nil) if the user has no open cart.
func (r *CartRepositoryFS) GetOpenByUserUID(ctx context.Context, userUID string) (*cartdom.Cart, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("cart_repository_fs: firestore client is nil")
	}

	uid := strings.TrimSpace(userUID)
	if uid == "" {
		return nil, errors.New("cart_repository_fs: userUID is empty")
	}

	it := r.col().
		Where("user_uid", "==", uid).
		Where("purchased", "==", false).
		Limit(1).
		Documents(ctx)
	defer it.Stop()

	snap, err := it.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var doc cartDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}

	d := doc.toDomain()
	// docId is the source of truth for the cart id.
	d.ID = snap.Ref.ID
	return d, nil
}

// Create persists a new cart under a fresh docId and fills in c.ID.
func (r *CartRepositoryFS) Create(ctx context.Context, c *cartdom.Cart) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}
	if c == nil {
		return errors.New("cart_repository_fs: cart is nil")
	}

	id := strings.TrimSpace(c.ID)
	if id == "" {
		id = uuid.NewString()
	}

	// Create (not Set): a docId collision must fail loudly.
	if _, err := r.col().Doc(id).Create(ctx, cartDocFromDomain(c)); err != nil {
		return err
	}
	c.ID = id
	return nil
}

// Update overwrites the full doc (simple and predictable).
func (r *CartRepositoryFS) Update(ctx context.Context, c *cartdom.Cart) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}
	if c == nil {
		return errors.New("cart_repository_fs: cart is nil")
	}

	id := strings.TrimSpace(c.ID)
	if id == "" {
		return errors.New("cart_repository_fs: Update requires cart.ID as docId")
	}

	_, err := r.col().Doc(id).Set(ctx, cartDocFromDomain(c))
	return err
}

// GetHistoryByUserUID returns all purchased carts for the user.
func (r *CartRepositoryFS) GetHistoryByUserUID(ctx context.Context, userUID string) ([]cartdom.Cart, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("cart_repository_fs: firestore client is nil")
	}

	uid := strings.TrimSpace(userUID)
	if uid == "" {
		return nil, errors.New("cart_repository_fs: userUID is empty")
	}

	it := r.col().
		Where("user_uid", "==", uid).
		Where("purchased", "==", true).
		Documents(ctx)
	return collectCarts(it)
}

// ListAll returns every cart (debug/testing surface).
func (r *CartRepositoryFS) ListAll(ctx context.Context) ([]cartdom.Cart, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("cart_repository_fs: firestore client is nil")
	}
	return collectCarts(r.col().Documents(ctx))
}

func collectCarts(it *firestore.DocumentIterator) ([]cartdom.Cart, error) {
	defer it.Stop()

	out := []cartdom.Cart{}
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var doc cartDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, err
		}
		d := doc.toDomain()
		d.ID = snap.Ref.ID
		out = append(out, *d)
	}
	return out, nil
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

// NOTE: the domain struct is not used as the Firestore DTO directly; the DTO
// keeps the wire shape stable even if the domain type changes.
type cartDoc struct {
	UserUID   string        `firestore:"user_uid"`
	Purchased bool          `firestore:"purchased"`
	Items     []cartItemDoc `firestore:"items"`
	SubTotal  float64       `firestore:"subtotal"`
	CreatedAt time.Time     `firestore:"createdAt"`
	UpdatedAt time.Time     `firestore:"updatedAt"`
}

type cartItemDoc struct {
	DrugID   string  `firestore:"drugId"`
	Quantity int     `firestore:"quantity"`
	DrugName string  `firestore:"drug_name"`
	Image    string  `firestore:"image"`
	Price    float64 `firestore:"price"`
	Total    float64 `firestore:"total"`
}

func cartDocFromDomain(c *cartdom.Cart) cartDoc {
	items := make([]cartItemDoc, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, cartItemDoc{
			DrugID:   it.DrugID,
			Quantity: it.Quantity,
			DrugName: it.DrugName,
			Image:    it.Image,
			Price:    it.Price,
			Total:    it.Total,
		})
	}
	return cartDoc{
		UserUID:   c.UserUID,
		Purchased: c.Purchased,
		Items:     items,
		SubTotal:  c.SubTotal,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (d cartDoc) toDomain() *cartdom.Cart {
	items := make([]cartdom.Item, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, cartdom.Item{
			DrugID:   it.DrugID,
			Quantity: it.Quantity,
			DrugName: it.DrugName,
			Image:    it.Image,
			Price:    it.Price,
			Total:    it.Total,
		})
	}
	return &cartdom.Cart{
		// ID is filled by the caller from the docId.
		UserUID:   d.UserUID,
		Purchased: d.Purchased,
		Items:     items,
		SubTotal:  d.SubTotal,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

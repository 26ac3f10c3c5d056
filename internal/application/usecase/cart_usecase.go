// internal/application/usecase/cart_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	cartdom "pharmacy/internal/domain/cart"
	drugdom "pharmacy/internal/domain/drug"
	userdom "pharmacy/internal/domain/user"
)

var (
	ErrCartInvalidArgument = errors.New("cart_usecase: invalid argument")
	ErrCartNotFound        = errors.New("cart_usecase: no open cart")
	ErrCartItemNotFound    = errors.New("cart_usecase: item not in cart")
	ErrCartDrugNotFound    = errors.New("cart_usecase: drug not found")
)

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// CatalogReader resolves a drug id into the snapshot fields captured on a
// cart line (name, image, unit price).
type CatalogReader interface {
	GetByID(ctx context.Context, id string) (*drugdom.Drug, error)
}

// AdminFinder locates the administrator who receives purchase notices.
type AdminFinder interface {
	FindAdmin(ctx context.Context) (*userdom.User, error)
}

// PushSender delivers a push notice to a device token. Best-effort.
type PushSender interface {
	Send(ctx context.Context, deviceToken, title, body string) error
}

// ReceiptSender mails an order summary to the buyer. Best-effort.
type ReceiptSender interface {
	SendPurchaseReceipt(ctx context.Context, to, username string, c *cartdom.Cart) error
}

// CartUsecase implements the cart lifecycle: fetch-or-create the open cart,
// item mutation, and the one-way open -> purchased transition with a
// best-effort notification afterwards.
//
// Open-cart mutations for one user serialize through a per-uid lock so
// concurrent fetch-or-create calls cannot both observe "no open cart" and
// create two (the store has no uniqueness constraint on user_uid+purchased).
type CartUsecase struct {
	repo    cartdom.Repository
	catalog CatalogReader
	admins  AdminFinder
	push    PushSender
	mail    ReceiptSender
	clock   Clock
	locks   *userLocks

	// dispatch runs the post-purchase notification. Defaults to a goroutine,
	// replaced with an inline call in tests.
	dispatch func(func())
}

func NewCartUsecase(
	repo cartdom.Repository,
	catalog CatalogReader,
	admins AdminFinder,
	push PushSender,
	mail ReceiptSender,
) *CartUsecase {
	return &CartUsecase{
		repo:     repo,
		catalog:  catalog,
		admins:   admins,
		push:     push,
		mail:     mail,
		clock:    systemClock{},
		locks:    newUserLocks(),
		dispatch: func(fn func()) { go fn() },
	}
}

// NewCartUsecaseWithClock is useful for tests.
func NewCartUsecaseWithClock(
	repo cartdom.Repository,
	catalog CatalogReader,
	admins AdminFinder,
	push PushSender,
	mail ReceiptSender,
	clock Clock,
) *CartUsecase {
	uc := NewCartUsecase(repo, catalog, admins, push, mail)
	if clock != nil {
		uc.clock = clock
	}
	return uc
}

// SetDispatch overrides how the post-purchase notification is scheduled.
// Tests pass an inline func to observe the notification synchronously.
func (uc *CartUsecase) SetDispatch(d func(func())) {
	if d != nil {
		uc.dispatch = d
	}
}

// GetOrCreate returns the user's open cart, creating an empty one when none
// exists. Two immediate calls with no intervening mutation return the same
// cart identity.
func (uc *CartUsecase) GetOrCreate(ctx context.Context, userUID string) (*cartdom.Cart, error) {
	uid := strings.TrimSpace(userUID)
	if uid == "" {
		return nil, ErrCartInvalidArgument
	}

	unlock := uc.locks.lock(uid)
	defer unlock()

	return uc.getOrCreateLocked(ctx, uid)
}

func (uc *CartUsecase) getOrCreateLocked(ctx context.Context, uid string) (*cartdom.Cart, error) {
	c, err := uc.repo.GetOpenByUserUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}

	now := uc.clock.Now()
	newCart, err := cartdom.NewCart("", uid, nil, now)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, newCart); err != nil {
		return nil, err
	}
	return newCart, nil
}

// AddItem resolves drugID through the catalog, snapshots name/image/unit
// price at this moment, and appends the line to the open cart (creating the
// cart seeded with the line when none exists). Lines for the same drug stay
// separate; they are not merged.
func (uc *CartUsecase) AddItem(ctx context.Context, userUID, drugID string, quantity int) (*cartdom.Cart, error) {
	uid := strings.TrimSpace(userUID)
	if uid == "" || quantity <= 0 {
		return nil, ErrCartInvalidArgument
	}
	if !validDocID(drugID) {
		return nil, ErrBadDrugID
	}

	unlock := uc.locks.lock(uid)
	defer unlock()

	d, err := uc.catalog.GetByID(ctx, strings.TrimSpace(drugID))
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrCartDrugNotFound
	}

	item, err := cartdom.NewItem(d.ID, quantity, d.DrugName, d.PrimaryImage(), d.Price)
	if err != nil {
		return nil, ErrCartInvalidArgument
	}

	now := uc.clock.Now()

	c, err := uc.repo.GetOpenByUserUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c, err = cartdom.NewCart("", uid, []cartdom.Item{item}, now)
		if err != nil {
			return nil, err
		}
		if err := uc.repo.Create(ctx, c); err != nil {
			return nil, err
		}
		return c, nil
	}

	if err := c.AddItem(item, now); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveItem drops every line for drugID from the caller's open cart.
// The identifier format is validated before any store access.
func (uc *CartUsecase) RemoveItem(ctx context.Context, userUID, drugID string) error {
	uid := strings.TrimSpace(userUID)
	if uid == "" {
		return ErrCartInvalidArgument
	}
	if !validDocID(drugID) {
		return ErrBadDrugID
	}

	unlock := uc.locks.lock(uid)
	defer unlock()

	c, err := uc.repo.GetOpenByUserUID(ctx, uid)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrCartNotFound
	}

	removed, err := c.RemoveItem(strings.TrimSpace(drugID), uc.clock.Now())
	if err != nil {
		return err
	}
	if !removed {
		return ErrCartItemNotFound
	}

	return uc.repo.Update(ctx, c)
}

// Purchase finalizes the caller's open cart and returns it. After the write
// commits, a purchase notice goes out to the administrator (push) and the
// buyer (receipt mail); both are best-effort and never affect the result.
func (uc *CartUsecase) Purchase(ctx context.Context, userUID, username, email string) (*cartdom.Cart, error) {
	uid := strings.TrimSpace(userUID)
	if uid == "" {
		return nil, ErrCartInvalidArgument
	}

	unlock := uc.locks.lock(uid)
	defer unlock()

	c, err := uc.repo.GetOpenByUserUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCartNotFound
	}

	if err := c.MarkPurchased(uc.clock.Now()); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	finalized := *c
	uc.dispatch(func() {
		uc.notifyPurchase(&finalized, username, email)
	})

	return c, nil
}

// History returns the user's purchased carts (may be empty).
func (uc *CartUsecase) History(ctx context.Context, userUID string) ([]cartdom.Cart, error) {
	uid := strings.TrimSpace(userUID)
	if uid == "" {
		return nil, ErrCartInvalidArgument
	}
	return uc.repo.GetHistoryByUserUID(ctx, uid)
}

// ListAll returns every cart. Admin/debug surface only.
func (uc *CartUsecase) ListAll(ctx context.Context) ([]cartdom.Cart, error) {
	return uc.repo.ListAll(ctx)
}

// notifyPurchase runs after the purchase committed. Every failure here is
// logged and swallowed; the purchase already succeeded.
func (uc *CartUsecase) notifyPurchase(c *cartdom.Cart, username, email string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buyer := strings.TrimSpace(username)
	if buyer == "" {
		buyer = c.UserUID
	}

	if uc.admins != nil && uc.push != nil {
		admin, err := uc.admins.FindAdmin(ctx)
		switch {
		case err != nil:
			log.Printf("[cart_usecase] WARN: admin lookup for purchase notice failed: %v (continuing)", err)
		case admin == nil || strings.TrimSpace(admin.DeviceToken) == "":
			log.Printf("[cart_usecase] no admin device token registered; purchase notice skipped")
		default:
			msg := fmt.Sprintf("%s purchased %.2f L.E. worth of items", buyer, c.SubTotal)
			if err := uc.push.Send(ctx, admin.DeviceToken, "Order Purchased", msg); err != nil {
				log.Printf("[cart_usecase] WARN: purchase push failed: %v (continuing)", err)
			}
		}
	}

	if uc.mail != nil && strings.TrimSpace(email) != "" {
		if err := uc.mail.SendPurchaseReceipt(ctx, email, buyer, c); err != nil {
			log.Printf("[cart_usecase] WARN: receipt mail failed: %v (continuing)", err)
		}
	}
}

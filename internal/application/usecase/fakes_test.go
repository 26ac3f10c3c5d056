package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	cartdom "pharmacy/internal/domain/cart"
	drugdom "pharmacy/internal/domain/drug"
	userdom "pharmacy/internal/domain/user"
)

// ----------------------------
// clock
// ----------------------------

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var clockNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// ----------------------------
// cart repository
// ----------------------------

type fakeCartRepo struct {
	mu    sync.Mutex
	seq   int
	carts map[string]*cartdom.Cart

	reads      int
	failUpdate bool
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: map[string]*cartdom.Cart{}}
}

func copyCart(c *cartdom.Cart) *cartdom.Cart {
	cp := *c
	cp.Items = append([]cartdom.Item{}, c.Items...)
	return &cp
}

func (r *fakeCartRepo) GetOpenByUserUID(_ context.Context, uid string) (*cartdom.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	for _, c := range r.carts {
		if c.UserUID == uid && !c.Purchased {
			return copyCart(c), nil
		}
	}
	return nil, nil
}

func (r *fakeCartRepo) Create(_ context.Context, c *cartdom.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		r.seq++
		c.ID = fmt.Sprintf("cart-%d", r.seq)
	}
	if _, exists := r.carts[c.ID]; exists {
		return errors.New("fake: duplicate cart id")
	}
	r.carts[c.ID] = copyCart(c)
	return nil
}

func (r *fakeCartRepo) Update(_ context.Context, c *cartdom.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdate {
		return errors.New("fake: update failed")
	}
	if _, exists := r.carts[c.ID]; !exists {
		return errors.New("fake: cart not stored")
	}
	r.carts[c.ID] = copyCart(c)
	return nil
}

func (r *fakeCartRepo) GetHistoryByUserUID(_ context.Context, uid string) ([]cartdom.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []cartdom.Cart{}
	for _, c := range r.carts {
		if c.UserUID == uid && c.Purchased {
			out = append(out, *copyCart(c))
		}
	}
	return out, nil
}

func (r *fakeCartRepo) ListAll(_ context.Context) ([]cartdom.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []cartdom.Cart{}
	for _, c := range r.carts {
		out = append(out, *copyCart(c))
	}
	return out, nil
}

func (r *fakeCartRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}

func (r *fakeCartRepo) stored(id string) *cartdom.Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[id]
	if !ok {
		return nil
	}
	return copyCart(c)
}

// ----------------------------
// catalog
// ----------------------------

type fakeCatalog struct {
	mu    sync.Mutex
	drugs map[string]*drugdom.Drug
	reads int
}

func newFakeCatalog(drugs ...*drugdom.Drug) *fakeCatalog {
	m := map[string]*drugdom.Drug{}
	for _, d := range drugs {
		m[d.ID] = d
	}
	return &fakeCatalog{drugs: m}
}

func (f *fakeCatalog) GetByID(_ context.Context, id string) (*drugdom.Drug, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	d, ok := f.drugs[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (f *fakeCatalog) setPrice(id string, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drugs[id].Price = price
}

// ----------------------------
// admins / push / mail
// ----------------------------

type fakeAdmins struct {
	admin *userdom.User
	err   error
}

func (f *fakeAdmins) FindAdmin(context.Context) (*userdom.User, error) {
	return f.admin, f.err
}

type fakePush struct {
	mu   sync.Mutex
	fail bool
	sent []string
}

func (f *fakePush) Send(_ context.Context, token, title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("fake: provider outage")
	}
	f.sent = append(f.sent, token+"|"+title+"|"+body)
	return nil
}

type fakeMail struct {
	mu   sync.Mutex
	fail bool
	to   []string
}

func (f *fakeMail) SendPurchaseReceipt(_ context.Context, to, username string, c *cartdom.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("fake: mail outage")
	}
	f.to = append(f.to, to)
	return nil
}

// ----------------------------
// drug repository
// ----------------------------

type fakeDrugRepo struct {
	mu    sync.Mutex
	seq   int
	drugs map[string]*drugdom.Drug
}

func newFakeDrugRepo(drugs ...*drugdom.Drug) *fakeDrugRepo {
	r := &fakeDrugRepo{drugs: map[string]*drugdom.Drug{}}
	for _, d := range drugs {
		r.seq++
		if d.ID == "" {
			d.ID = fmt.Sprintf("drug-%d", r.seq)
		}
		r.drugs[d.ID] = d
	}
	return r
}

func (r *fakeDrugRepo) matches(d *drugdom.Drug, f drugdom.Filter) bool {
	if f.Name != "" && !strings.HasPrefix(d.DrugName, f.Name) {
		return false
	}
	if f.Form != "" {
		found := false
		for _, t := range d.FormTypes() {
			if t == f.Form {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if f.ActiveIngredient != "" {
		found := false
		for _, a := range d.ActiveIngredients {
			if a == f.ActiveIngredient {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (r *fakeDrugRepo) filtered(f drugdom.Filter) []drugdom.Drug {
	out := []drugdom.Drug{}
	for _, d := range r.drugs {
		if r.matches(d, f) {
			out = append(out, *d)
		}
	}
	return out
}

func (r *fakeDrugRepo) GetByID(_ context.Context, id string) (*drugdom.Drug, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drugs[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	cp.Forms = append([]drugdom.Form{}, d.Forms...)
	return &cp, nil
}

func (r *fakeDrugRepo) GetByName(_ context.Context, name string) (*drugdom.Drug, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.drugs {
		if d.DrugName == name {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeDrugRepo) List(_ context.Context, f drugdom.Filter, offset, limit int) ([]drugdom.Drug, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.filtered(f)
	if offset >= len(all) {
		return []drugdom.Drug{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *fakeDrugRepo) Count(_ context.Context, f drugdom.Filter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.filtered(f)), nil
}

func (r *fakeDrugRepo) Create(_ context.Context, d *drugdom.Drug) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if d.ID == "" {
		d.ID = fmt.Sprintf("drug-%d", r.seq)
	}
	r.drugs[d.ID] = d
	return nil
}

func (r *fakeDrugRepo) Update(_ context.Context, d *drugdom.Drug) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drugs[d.ID]; !ok {
		return errors.New("fake: drug not stored")
	}
	r.drugs[d.ID] = d
	return nil
}

func (r *fakeDrugRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.drugs, id)
	return nil
}

func (r *fakeDrugRepo) FormTypes(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]struct{}{}
	out := []string{}
	for _, d := range r.drugs {
		for _, t := range d.FormTypes() {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out, nil
}

// ----------------------------
// users
// ----------------------------

type fakeUserRepo struct {
	mu         sync.Mutex
	users      map[string]*userdom.User
	failUpsert bool
}

func newFakeUserRepo(users ...*userdom.User) *fakeUserRepo {
	m := map[string]*userdom.User{}
	for _, u := range users {
		m[u.UID] = u
	}
	return &fakeUserRepo{users: m}
}

func (r *fakeUserRepo) GetByUID(_ context.Context, uid string) (*userdom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[uid]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindAdmin(_ context.Context) (*userdom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Role == userdom.RoleAdmin {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Upsert(_ context.Context, u *userdom.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpsert {
		return errors.New("fake: upsert failed")
	}
	cp := *u
	r.users[u.UID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, uid)
	return nil
}

func (r *fakeUserRepo) ListAll(_ context.Context) ([]userdom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []userdom.User{}
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

type fakeIdentity struct {
	mu      sync.Mutex
	seq     int
	created map[string]string // uid -> email
	deleted []string
	failDel bool
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{created: map[string]string{}}
}

func (f *fakeIdentity) CreateUser(_ context.Context, email, password, displayName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	uid := fmt.Sprintf("uid-%d", f.seq)
	f.created[uid] = email
	return uid, nil
}

func (f *fakeIdentity) DeleteUser(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDel {
		return errors.New("fake: no such account")
	}
	if _, ok := f.created[uid]; !ok {
		return errors.New("fake: no such account")
	}
	delete(f.created, uid)
	f.deleted = append(f.deleted, uid)
	return nil
}

// ----------------------------
// shared builders
// ----------------------------

func testDrug(id, name string, price float64) *drugdom.Drug {
	return &drugdom.Drug{
		ID:                id,
		DrugName:          name,
		Forms:             []drugdom.Form{{Form: "tablet", Image: "http://img/" + id + ".png"}},
		Strength:          "500mg",
		ActiveIngredients: []string{"ingredient-" + id},
		Status:            "Available",
		Price:             price,
	}
}

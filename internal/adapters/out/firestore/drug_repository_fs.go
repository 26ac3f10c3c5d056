// internal/adapters/out/firestore/drug_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"sort"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	drugdom "pharmacy/internal/domain/drug"
)

// DrugRepositoryFS implements drug.Repository using Firestore.
//
// Collection design:
// - collection: drugs
// - docId: random uuid
// - form_types is denormalized from forms[].form so the catalog can use an
//   array-contains filter (Firestore cannot query into forms[].form).
type DrugRepositoryFS struct {
	Client *firestore.Client
}

func NewDrugRepositoryFS(client *firestore.Client) *DrugRepositoryFS {
	return &DrugRepositoryFS{Client: client}
}

func (r *DrugRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("drugs")
}

// GetByID returns (nil, nil) if not found.
func (r *DrugRepositoryFS) GetByID(ctx context.Context, id string) (*drugdom.Drug, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("drug_repository_fs: firestore client is nil")
	}

	did := strings.TrimSpace(id)
	if did == "" {
		return nil, errors.New("drug_repository_fs: id is empty")
	}

	snap, err := r.col().Doc(did).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc drugDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}

	d := doc.toDomain()
	d.ID = did
	return d, nil
}

// GetByName returns (nil, nil) if no drug carries the exact name.
func (r *DrugRepositoryFS) GetByName(ctx context.Context, name string) (*drugdom.Drug, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("drug_repository_fs: firestore client is nil")
	}

	n := strings.TrimSpace(name)
	if n == "" {
		return nil, errors.New("drug_repository_fs: name is empty")
	}

	it := r.col().Where("drug_name", "==", n).Limit(1).Documents(ctx)
	defer it.Stop()

	snap, err := it.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var doc drugDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	d := doc.toDomain()
	d.ID = snap.Ref.ID
	return d, nil
}

// List returns a window of drugs matching the filter.
//
// Firestore allows a single array-contains clause per query. When both Form
// and ActiveIngredient are set, the ingredient goes into the query and the
// form is applied in memory (the combined filter is rare; catalog sizes make
// this acceptable).
func (r *DrugRepositoryFS) List(ctx context.Context, f drugdom.Filter, offset, limit int) ([]drugdom.Drug, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("drug_repository_fs: firestore client is nil")
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}

	q, residual := r.query(f)

	if residual == nil {
		return collectDrugs(q.Offset(offset).Limit(limit).Documents(ctx))
	}

	all, err := collectDrugs(q.Documents(ctx))
	if err != nil {
		return nil, err
	}
	matched := make([]drugdom.Drug, 0, len(all))
	for _, d := range all {
		if residual(&d) {
			matched = append(matched, d)
		}
	}
	if offset >= len(matched) {
		return []drugdom.Drug{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

// Count returns how many drugs match the filter.
func (r *DrugRepositoryFS) Count(ctx context.Context, f drugdom.Filter) (int, error) {
	if r == nil || r.Client == nil {
		return 0, errors.New("drug_repository_fs: firestore client is nil")
	}

	q, residual := r.query(f)

	if residual == nil {
		// keys-only iteration; no aggregation index required
		it := q.Select().Documents(ctx)
		defer it.Stop()

		n := 0
		for {
			_, err := it.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return 0, err
			}
			n++
		}
		return n, nil
	}

	all, err := collectDrugs(q.Documents(ctx))
	if err != nil {
		return 0, err
	}
	n := 0
	for _, d := range all {
		if residual(&d) {
			n++
		}
	}
	return n, nil
}

// Create persists a new drug under a fresh docId and fills in d.ID.
func (r *DrugRepositoryFS) Create(ctx context.Context, d *drugdom.Drug) error {
	if r == nil || r.Client == nil {
		return errors.New("drug_repository_fs: firestore client is nil")
	}
	if d == nil {
		return errors.New("drug_repository_fs: drug is nil")
	}

	id := strings.TrimSpace(d.ID)
	if id == "" {
		id = uuid.NewString()
	}

	if _, err := r.col().Doc(id).Create(ctx, drugDocFromDomain(d)); err != nil {
		return err
	}
	d.ID = id
	return nil
}

// Update overwrites the full doc.
func (r *DrugRepositoryFS) Update(ctx context.Context, d *drugdom.Drug) error {
	if r == nil || r.Client == nil {
		return errors.New("drug_repository_fs: firestore client is nil")
	}
	if d == nil {
		return errors.New("drug_repository_fs: drug is nil")
	}

	id := strings.TrimSpace(d.ID)
	if id == "" {
		return errors.New("drug_repository_fs: Update requires drug.ID as docId")
	}

	_, err := r.col().Doc(id).Set(ctx, drugDocFromDomain(d))
	return err
}

func (r *DrugRepositoryFS) Delete(ctx context.Context, id string) error {
	if r == nil || r.Client == nil {
		return errors.New("drug_repository_fs: firestore client is nil")
	}

	did := strings.TrimSpace(id)
	if did == "" {
		return errors.New("drug_repository_fs: id is empty")
	}

	_, err := r.col().Doc(did).Delete(ctx)
	return err
}

// FormTypes returns the distinct form type names across the catalog, sorted.
func (r *DrugRepositoryFS) FormTypes(ctx context.Context) ([]string, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("drug_repository_fs: firestore client is nil")
	}

	it := r.col().Documents(ctx)
	defer it.Stop()

	seen := map[string]struct{}{}
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var doc drugDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, err
		}
		for _, t := range doc.FormTypes {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			seen[t] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

// query builds the Firestore query for the filter and returns an optional
// residual predicate applied in memory (nil when the store covers everything).
func (r *DrugRepositoryFS) query(f drugdom.Filter) (firestore.Query, func(*drugdom.Drug) bool) {
	q := r.col().Query

	if name := strings.TrimSpace(f.Name); name != "" {
		// prefix range scan over drug_name
		q = q.Where("drug_name", ">=", name).
			Where("drug_name", "<", name+"").
			OrderBy("drug_name", firestore.Asc)
	}

	form := strings.TrimSpace(f.Form)
	ingredient := strings.TrimSpace(f.ActiveIngredient)

	switch {
	case ingredient != "" && form != "":
		q = q.Where("active_ingredients", "array-contains", ingredient)
		return q, func(d *drugdom.Drug) bool {
			for _, t := range d.FormTypes() {
				if t == form {
					return true
				}
			}
			return false
		}
	case ingredient != "":
		return q.Where("active_ingredients", "array-contains", ingredient), nil
	case form != "":
		return q.Where("form_types", "array-contains", form), nil
	default:
		return q, nil
	}
}

func collectDrugs(it *firestore.DocumentIterator) ([]drugdom.Drug, error) {
	defer it.Stop()

	out := []drugdom.Drug{}
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var doc drugDoc
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

type drugDoc struct {
	DrugName          string        `firestore:"drug_name"`
	Forms             []drugFormDoc `firestore:"forms"`
	FormTypes         []string      `firestore:"form_types"`
	Strength          string        `firestore:"strength"`
	ActiveIngredients []string      `firestore:"active_ingredients"`
	Status            string        `firestore:"status"`
	Price             float64       `firestore:"price"`
}

type drugFormDoc struct {
	Form  string `firestore:"form"`
	Image string `firestore:"image"`
}

func drugDocFromDomain(d *drugdom.Drug) drugDoc {
	forms := make([]drugFormDoc, 0, len(d.Forms))
	for _, f := range d.Forms {
		forms = append(forms, drugFormDoc{Form: f.Form, Image: f.Image})
	}
	return drugDoc{
		DrugName:          d.DrugName,
		Forms:             forms,
		FormTypes:         d.FormTypes(),
		Strength:          d.Strength,
		ActiveIngredients: d.ActiveIngredients,
		Status:            d.Status,
		Price:             d.Price,
	}
}

func (doc drugDoc) toDomain() *drugdom.Drug {
	forms := make([]drugdom.Form, 0, len(doc.Forms))
	for _, f := range doc.Forms {
		forms = append(forms, drugdom.Form{Form: f.Form, Image: f.Image})
	}
	return &drugdom.Drug{
		// ID is filled by the caller from the docId.
		DrugName:          doc.DrugName,
		Forms:             forms,
		Strength:          doc.Strength,
		ActiveIngredients: doc.ActiveIngredients,
		Status:            doc.Status,
		Price:             doc.Price,
	}
}

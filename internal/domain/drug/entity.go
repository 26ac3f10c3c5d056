// internal/domain/drug/entity.go
package drug

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidDrug = errors.New("drug: invalid")
)

const (
	// DefaultStatus is used when a drug is created without an explicit status.
	DefaultStatus = "Discontinued"

	// DefaultPrice is used when a drug is created without a price.
	DefaultPrice = 1
)

// Form is one dosage form of a drug (tablet, syrup, ...) with its image URL.
type Form struct {
	Form  string `json:"form" firestore:"form"`
	Image string `json:"image" firestore:"image"`
}

// Drug represents "a catalog document".
//   - docId = drug ID (Firestore)
//   - DrugName is unique across the catalog; the uniqueness is enforced by a
//     lookup-before-create at the usecase layer, not by the store.
type Drug struct {
	// ID is the Firestore docId.
	ID string `json:"id" firestore:"id"`

	DrugName          string   `json:"drug_name" firestore:"drug_name"`
	Forms             []Form   `json:"forms" firestore:"forms"`
	Strength          string   `json:"strength" firestore:"strength"`
	ActiveIngredients []string `json:"active_ingredients" firestore:"active_ingredients"`
	Status            string   `json:"status" firestore:"status"`
	Price             float64  `json:"price" firestore:"price"`
}

// New creates a new catalog drug, applying defaults for status and price.
func New(name, strength string, forms []Form, ingredients []string, status string, price float64) (*Drug, error) {
	d := &Drug{
		DrugName:          strings.TrimSpace(name),
		Strength:          strings.TrimSpace(strength),
		Forms:             cloneForms(forms),
		ActiveIngredients: cloneStrings(ingredients),
		Status:            strings.TrimSpace(status),
		Price:             price,
	}
	if d.Status == "" {
		d.Status = DefaultStatus
	}
	if d.Price == 0 {
		d.Price = DefaultPrice
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks the minimal catalog invariants.
func (d *Drug) Validate() error {
	if d == nil {
		return ErrInvalidDrug
	}
	if strings.TrimSpace(d.DrugName) == "" {
		return ErrInvalidDrug
	}
	if d.Price < 0 {
		return ErrInvalidDrug
	}
	return nil
}

// PrimaryImage returns the image of the first form, or "" when no form has one.
// Cart lines snapshot this value at add time.
func (d *Drug) PrimaryImage() string {
	if d == nil || len(d.Forms) == 0 {
		return ""
	}
	return strings.TrimSpace(d.Forms[0].Image)
}

// FormTypes returns the distinct form type names, sorted.
// Persisted denormalized on the document so the catalog can filter on it.
func (d *Drug) FormTypes() []string {
	if d == nil {
		return nil
	}
	seen := map[string]struct{}{}
	out := make([]string, 0, len(d.Forms))
	for _, f := range d.Forms {
		t := strings.TrimSpace(f.Form)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func cloneForms(src []Form) []Form {
	if len(src) == 0 {
		return []Form{}
	}
	out := make([]Form, 0, len(src))
	for _, f := range src {
		out = append(out, Form{
			Form:  strings.TrimSpace(f.Form),
			Image: strings.TrimSpace(f.Image),
		})
	}
	return out
}

func cloneStrings(src []string) []string {
	if len(src) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(src))
	for _, s := range src {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

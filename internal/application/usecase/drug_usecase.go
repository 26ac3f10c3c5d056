// internal/application/usecase/drug_usecase.go
package usecase

import (
	"context"
	"errors"
	"strings"

	drugdom "pharmacy/internal/domain/drug"
)

var (
	ErrDrugInvalidArgument = errors.New("drug_usecase: invalid argument")
	ErrDrugNotFound        = errors.New("drug_usecase: drug not found")
	ErrDrugExists          = errors.New("drug_usecase: drug already exists")
	ErrBadDrugID           = errors.New("drug_usecase: bad drug id")
	ErrNoMorePages         = errors.New("drug_usecase: no more pages")
	ErrImagesNotConfigured = errors.New("drug_usecase: image storage not configured")
)

const defaultPageLimit = 20

// ImageStore uploads a drug form image and returns its public URL.
type ImageStore interface {
	Upload(ctx context.Context, drugID string, formIndex int, data []byte, contentType string) (string, error)
}

// DrugPage is a catalog listing window plus its paging envelope.
type DrugPage struct {
	Data  []drugdom.Drug
	Total int
	Page  int
	Pages int
}

// DrugUsecase serves the catalog: filtered paginated listings, single-drug
// lookups, and the admin CRUD behind them.
type DrugUsecase struct {
	repo   drugdom.Repository
	images ImageStore
}

func NewDrugUsecase(repo drugdom.Repository, images ImageStore) *DrugUsecase {
	return &DrugUsecase{repo: repo, images: images}
}

// List returns one page of the catalog.
// pages = ceil(total/limit); requesting a page past the last is a client
// error ("no more pages", kept from the original flow).
func (uc *DrugUsecase) List(ctx context.Context, f drugdom.Filter, page, limit int) (*DrugPage, error) {
	if page < 0 {
		return nil, ErrDrugInvalidArgument
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}

	total, err := uc.repo.Count(ctx, f)
	if err != nil {
		return nil, err
	}

	pages := (total + limit - 1) / limit
	if page > pages {
		return nil, ErrNoMorePages
	}

	data, err := uc.repo.List(ctx, f, page*limit, limit)
	if err != nil {
		return nil, err
	}

	return &DrugPage{
		Data:  data,
		Total: total,
		Page:  page,
		Pages: pages,
	}, nil
}

// GetByID returns a single drug.
func (uc *DrugUsecase) GetByID(ctx context.Context, id string) (*drugdom.Drug, error) {
	if !validDocID(id) {
		return nil, ErrBadDrugID
	}
	d, err := uc.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDrugNotFound
	}
	return d, nil
}

// Create adds a drug to the catalog. drug_name must be unique; uniqueness is
// enforced by a lookup before the write (the store has no such constraint).
func (uc *DrugUsecase) Create(ctx context.Context, d *drugdom.Drug) (*drugdom.Drug, error) {
	if d == nil {
		return nil, ErrDrugInvalidArgument
	}
	if err := d.Validate(); err != nil {
		return nil, ErrDrugInvalidArgument
	}

	existing, err := uc.repo.GetByName(ctx, d.DrugName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDrugExists
	}

	if err := uc.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Update overwrites the document for id with d.
func (uc *DrugUsecase) Update(ctx context.Context, id string, d *drugdom.Drug) (*drugdom.Drug, error) {
	if !validDocID(id) {
		return nil, ErrBadDrugID
	}
	if d == nil {
		return nil, ErrDrugInvalidArgument
	}
	if err := d.Validate(); err != nil {
		return nil, ErrDrugInvalidArgument
	}

	existing, err := uc.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrDrugNotFound
	}

	// renaming onto another drug's unique name is rejected
	if d.DrugName != existing.DrugName {
		dup, err := uc.repo.GetByName(ctx, d.DrugName)
		if err != nil {
			return nil, err
		}
		if dup != nil && dup.ID != existing.ID {
			return nil, ErrDrugExists
		}
	}

	d.ID = existing.ID
	if err := uc.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// DrugPatch carries a partial catalog update. Nil fields keep the stored
// value.
type DrugPatch struct {
	DrugName          *string
	Forms             *[]drugdom.Form
	Strength          *string
	ActiveIngredients *[]string
	Status            *string
	Price             *float64
}

func (p *DrugPatch) empty() bool {
	return p == nil ||
		(p.DrugName == nil && p.Forms == nil && p.Strength == nil &&
			p.ActiveIngredients == nil && p.Status == nil && p.Price == nil)
}

// Patch overlays the supplied fields on the stored document and writes the
// result. The same name-uniqueness rule as Update applies when the patch
// renames the drug.
func (uc *DrugUsecase) Patch(ctx context.Context, id string, p *DrugPatch) (*drugdom.Drug, error) {
	if !validDocID(id) {
		return nil, ErrBadDrugID
	}
	if p.empty() {
		return nil, ErrDrugInvalidArgument
	}

	existing, err := uc.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrDrugNotFound
	}

	merged := *existing
	merged.Forms = append([]drugdom.Form{}, existing.Forms...)
	merged.ActiveIngredients = append([]string{}, existing.ActiveIngredients...)

	if p.DrugName != nil {
		merged.DrugName = strings.TrimSpace(*p.DrugName)
	}
	if p.Forms != nil {
		merged.Forms = *p.Forms
	}
	if p.Strength != nil {
		merged.Strength = strings.TrimSpace(*p.Strength)
	}
	if p.ActiveIngredients != nil {
		merged.ActiveIngredients = *p.ActiveIngredients
	}
	if p.Status != nil {
		merged.Status = strings.TrimSpace(*p.Status)
	}
	if p.Price != nil {
		merged.Price = *p.Price
	}

	return uc.Update(ctx, existing.ID, &merged)
}

// Delete removes a drug from the catalog.
func (uc *DrugUsecase) Delete(ctx context.Context, id string) error {
	if !validDocID(id) {
		return ErrBadDrugID
	}

	existing, err := uc.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrDrugNotFound
	}

	return uc.repo.Delete(ctx, existing.ID)
}

// FormTypes returns the distinct dosage form names across the catalog.
func (uc *DrugUsecase) FormTypes(ctx context.Context) ([]string, error) {
	return uc.repo.FormTypes(ctx)
}

// AttachImage uploads an image for one form of a drug and records the public
// URL on the drug document.
func (uc *DrugUsecase) AttachImage(ctx context.Context, id string, formIndex int, data []byte, contentType string) (*drugdom.Drug, error) {
	if !validDocID(id) {
		return nil, ErrBadDrugID
	}
	if uc.images == nil {
		return nil, ErrImagesNotConfigured
	}
	if len(data) == 0 {
		return nil, ErrDrugInvalidArgument
	}

	d, err := uc.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDrugNotFound
	}
	if formIndex < 0 || formIndex >= len(d.Forms) {
		return nil, ErrDrugInvalidArgument
	}

	url, err := uc.images.Upload(ctx, d.ID, formIndex, data, contentType)
	if err != nil {
		return nil, err
	}

	d.Forms[formIndex].Image = url
	if err := uc.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

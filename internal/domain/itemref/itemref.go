// internal/domain/itemref/itemref.go
package itemref

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pawverse/petstore-backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Kind is the closed set of purchasable catalog types
type Kind string

const (
	KindPet     Kind = "pet"
	KindProduct Kind = "product"
)

var (
	// ErrUnknownKind is a validation failure: the tag is not pet or product
	ErrUnknownKind = errors.New("invalid item type")
	// ErrItemNotFound means the tag was valid but no row has that id
	ErrItemNotFound = errors.New("item not found")
)

// ParseKind validates a type tag coming from a request
func ParseKind(tag string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(tag))) {
	case KindPet:
		return KindPet, nil
	case KindProduct:
		return KindProduct, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, tag)
	}
}

// Ref points at a pet or a product. It is embedded as item_type/item_id
// columns wherever a row refers to "some purchasable thing".
type Ref struct {
	Kind Kind `gorm:"column:item_type;size:20;not null" json:"model"`
	ID   uint `gorm:"column:item_id;not null" json:"object_id"`
}

// NewRef builds a reference from an untrusted type tag
func NewRef(tag string, id uint) (Ref, error) {
	kind, err := ParseKind(tag)
	if err != nil {
		return Ref{}, err
	}
	return Ref{Kind: kind, ID: id}, nil
}

func (r Ref) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// Item is a resolved reference with the fields carts and orders need
type Item struct {
	Ref   Ref             `json:"ref"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

type lookupFunc func(db *gorm.DB, ids []uint) ([]Item, error)

// Resolver dereferences item references against the catalog tables
type Resolver struct {
	db      *gorm.DB
	lookups map[Kind]lookupFunc
}

// NewResolver creates a resolver with one lookup per kind
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{
		db: db,
		lookups: map[Kind]lookupFunc{
			KindPet:     lookupPets,
			KindProduct: lookupProducts,
		},
	}
}

// WithDB returns a resolver bound to another handle, typically a transaction
func (r *Resolver) WithDB(db *gorm.DB) *Resolver {
	return &Resolver{db: db, lookups: r.lookups}
}

// Resolve loads one referenced item
func (r *Resolver) Resolve(ref Ref) (*Item, error) {
	lookup, ok := r.lookups[ref.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, ref.Kind)
	}

	items, err := lookup(r.db, []uint{ref.ID})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, ref)
	}

	return &items[0], nil
}

// ResolveMany loads many references with one query per kind. References
// whose target no longer exists are simply absent from the result.
func (r *Resolver) ResolveMany(refs []Ref) (map[Ref]Item, error) {
	idsByKind := make(map[Kind][]uint)
	for _, ref := range refs {
		idsByKind[ref.Kind] = append(idsByKind[ref.Kind], ref.ID)
	}

	resolved := make(map[Ref]Item, len(refs))
	for kind, ids := range idsByKind {
		lookup, ok := r.lookups[kind]
		if !ok {
			continue
		}
		items, err := lookup(r.db, ids)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			resolved[item.Ref] = item
		}
	}

	return resolved, nil
}

func lookupPets(db *gorm.DB, ids []uint) ([]Item, error) {
	var pets []catalog.Pet
	if err := db.Where("id IN ?", ids).Find(&pets).Error; err != nil {
		return nil, fmt.Errorf("failed to load pets: %w", err)
	}

	items := make([]Item, len(pets))
	for i, pet := range pets {
		items[i] = Item{
			Ref:   Ref{Kind: KindPet, ID: pet.ID},
			Name:  pet.Name,
			Price: pet.Price,
			Image: pet.Image,
		}
	}
	return items, nil
}

func lookupProducts(db *gorm.DB, ids []uint) ([]Item, error) {
	var products []catalog.Product
	if err := db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	items := make([]Item, len(products))
	for i, product := range products {
		items[i] = Item{
			Ref:   Ref{Kind: KindProduct, ID: product.ID},
			Name:  product.Name,
			Price: product.Price,
			Image: product.Image,
		}
	}
	return items, nil
}

package itemref_test

import (
	"testing"

	"github.com/pawverse/petstore-backend/internal/domain/itemref"
	"github.com/pawverse/petstore-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	kind, err := itemref.ParseKind(" Pet ")
	require.NoError(t, err)
	assert.Equal(t, itemref.KindPet, kind)

	kind, err = itemref.ParseKind("product")
	require.NoError(t, err)
	assert.Equal(t, itemref.KindProduct, kind)

	for _, bad := range []string{"", "pets", "service", "user"} {
		_, err := itemref.ParseKind(bad)
		assert.ErrorIs(t, err, itemref.ErrUnknownKind, bad)
	}
}

func TestResolver_Resolve(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.SeedCatalog(t, db)
	r := itemref.NewResolver(db)

	item, err := r.Resolve(itemref.Ref{Kind: itemref.KindProduct, ID: fx.Food.ID})
	require.NoError(t, err)
	assert.Equal(t, "Kibble", item.Name)
	assert.Equal(t, "10.25", item.Price.StringFixed(2))

	_, err = r.Resolve(itemref.Ref{Kind: itemref.KindPet, ID: fx.Food.ID + 1000})
	assert.ErrorIs(t, err, itemref.ErrItemNotFound)

	_, err = r.Resolve(itemref.Ref{Kind: "store", ID: fx.Store.ID})
	assert.ErrorIs(t, err, itemref.ErrUnknownKind)
}

func TestResolver_ResolveMany(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.SeedCatalog(t, db)
	r := itemref.NewResolver(db)

	dog := itemref.Ref{Kind: itemref.KindPet, ID: fx.Dog.ID}
	toy := itemref.Ref{Kind: itemref.KindProduct, ID: fx.Toy.ID}
	stale := itemref.Ref{Kind: itemref.KindPet, ID: 4242}

	// a pet and a product may share an id; the kind keeps them apart
	items, err := r.ResolveMany([]itemref.Ref{dog, toy, stale})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "Rex", items[dog].Name)
	assert.Equal(t, "Ball", items[toy].Name)
	_, ok := items[stale]
	assert.False(t, ok)
}

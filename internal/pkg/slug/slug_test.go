package slug_test

import (
	"testing"

	"github.com/pawverse/petstore-backend/internal/pkg/slug"
	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Dog Food Dogs":       "dog-food-dogs",
		"  Grooming & Spa  ":  "grooming-spa",
		"Bird_Cages":          "bird-cages",
		"Fish / Aquarium 101": "fish-aquarium-101",
		"":                    "",
	}
	for in, want := range cases {
		assert.Equal(t, want, slug.Make(in), in)
	}
}

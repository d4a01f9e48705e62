package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaticDirectoryDegradesToDefault(t *testing.T) {
	dir := StaticDirectory{
		1: {Name: "Ann", Rating: 1800, HasRating: true},
		2: {Rating: 1500, HasRating: true},
	}
	ctx := context.Background()

	assert.Equal(t, Profile{ID: 1, Name: "Ann", Rating: 1800, HasRating: true}, dir.Lookup(ctx, 1))
	assert.Equal(t, "Participant 2", dir.Lookup(ctx, 2).Name)
	assert.Equal(t, DefaultProfile(3), dir.Lookup(ctx, 3))

	rating, ok := Ratings{Directory: dir}.Rating(ctx, 1)
	assert.True(t, ok)
	assert.Equal(t, 1800.0, rating)

	_, ok = Ratings{Directory: dir}.Rating(ctx, 3)
	assert.False(t, ok)
}

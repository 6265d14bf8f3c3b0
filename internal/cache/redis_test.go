package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.Equal(t, "order:42", c.GenerateKey("order", "42"))
}

func TestRedisCache_GenerateKey(t *testing.T) {
	c := NewRedisCache("localhost:0", "homechef")
	assert.Equal(t, "homechef:order:42", c.GenerateKey("order", "42"))
}

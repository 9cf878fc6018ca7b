package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetStringwithDefault(t *testing.T) {
	assert.Equal(t, "default", GetStringwithDefault("", "default"))
	assert.Equal(t, "value", GetStringwithDefault("value", "default"))
}

func TestArrayDistinct(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, ArrayDistinct([]string{"a", "b", "a", "", "c", "b"}))
}

func TestArraySearch(t *testing.T) {
	assert.True(t, ArraySearch("beta", []string{"alpha", "beta"}))
	assert.False(t, ArraySearch("gamma", []string{"alpha", "beta"}))
}

func TestDeepCopyByGob(t *testing.T) {
	type inner struct {
		Names []string
	}
	src := map[string]inner{"x": {Names: []string{"a", "b"}}}
	var dst map[string]inner
	err := DeepCopyByGob(&dst, &src)
	assert.Nil(t, err)
	assert.Equal(t, src, dst)

	dst["x"].Names[0] = "changed"
	assert.Equal(t, "a", src["x"].Names[0])
}

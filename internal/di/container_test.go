// internal/di/container_test.go
package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainer(t *testing.T) {
	c := NewContainer()

	assert.False(t, c.Has("svc"))
	assert.Nil(t, c.Get("svc"))
	assert.Empty(t, c.GetNames())

	c.Register("svc", 42)

	assert.True(t, c.Has("svc"))
	assert.Equal(t, 42, c.Get("svc"))
	assert.ElementsMatch(t, []string{"svc"}, c.GetNames())
}

func TestGetContainerIsSingleton(t *testing.T) {
	assert.Same(t, GetContainer(), GetContainer())
}

package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type label string

func TestFlightKey(t *testing.T) {
	assert.Equal(t, flightKey("a"), flightKey("a"))
	assert.NotEqual(t, flightKey("a"), flightKey("b"))

	assert.NotEqual(t, flightKey[any](int(1)), flightKey[any](int64(1)))
	assert.NotEqual(t, flightKey[any]("x"), flightKey[any](label("x")))
	assert.NotEqual(t, flightKey[any](nil), flightKey[any]("<nil>"))
}

package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeParams, CodeOf(Params("bad input")))
	assert.Equal(t, CodeNoAuth, CodeOf(NoAuth("nope")))
	assert.Equal(t, CodeNotFound, CodeOf(NotFound("gone")))
	assert.Equal(t, CodeOperation, CodeOf(Operation("conflict")))
	assert.Equal(t, CodeSystem, CodeOf(System("boom", errors.New("io"))))
	assert.Equal(t, CodeSystem, CodeOf(errors.New("plain")), "unknown errors default to system")
}

func TestCodeSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("picture not found"))
	assert.Equal(t, CodeNotFound, CodeOf(err))
	assert.True(t, IsCode(err, CodeNotFound))
	assert.False(t, IsCode(err, CodeParams))
}

func TestUnwrapRetainsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := System("put object", cause)
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "put object: connection reset", err.Error())
	assert.Equal(t, "quota exhausted", Operation("quota exhausted").Error())
}

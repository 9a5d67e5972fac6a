package post

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Kinds(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFound(3)))
	assert.True(t, IsNotFound(NewTargetNotFound("twitter")))
	assert.True(t, IsInvalidField(NewInvalidField(0, FieldTitle, "is immutable")))
	assert.True(t, IsParseFailure(NewParseFailure(errors.New("bad"))))
	assert.True(t, IsValidation(NewValidation(1, errors.New("empty"))))

	assert.False(t, IsNotFound(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestError_Wrapped(t *testing.T) {
	err := fmt.Errorf("edit body: %w", NewNotFound(7))
	assert.True(t, IsNotFound(err))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestError_Message(t *testing.T) {
	err := NewInvalidField(4, FieldLink, "is immutable")
	assert.Equal(t, `INVALID_FIELD: field "link" is immutable (target=4)`, err.Error())

	cause := errors.New("unexpected EOF")
	pf := NewParseFailure(cause)
	assert.Equal(t, "PARSE_FAILURE: serialized view does not decode: unexpected EOF", pf.Error())
	assert.ErrorIs(t, pf, cause)
}

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := InvalidInput("bad age range")
	wrapped := Wrap(base, "render chart")

	assert.Equal(t, CodeInvalidInput, GetCode(wrapped))
	assert.Equal(t, "render chart: bad age range", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, base))
}

func TestWrapPlainErrorIsInternal(t *testing.T) {
	wrapped := Wrapf(fmt.Errorf("disk full"), "write %s", "model")

	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestGetCodeThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("chart foo", nil))

	assert.Equal(t, CodeNotFound, GetCode(err))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeDataError, fmt.Errorf("row 3"))
	assert.Equal(t, CodeDataError, GetCode(err))
	assert.Equal(t, CodeValidationError, GetCode(WithCode(CodeValidationError, ConfigInvalid("x"))))
}

func TestConstructorsKeepCause(t *testing.T) {
	cause := stderrors.New("connection refused")

	db := DatabaseError("failed to save model", cause)
	assert.Equal(t, CodeDatabaseError, GetCode(db))
	assert.ErrorIs(t, db, cause)
	assert.Equal(t, "failed to save model: connection refused", db.Error())

	nf := NotFound(`chart "x"`, cause)
	assert.Equal(t, CodeNotFound, GetCode(nf))
	assert.ErrorIs(t, nf, cause)

	assert.Equal(t, CodeValidationError, GetCode(ValidationError("age out of range")))
}

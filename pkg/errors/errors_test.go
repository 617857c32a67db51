package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeDockingBadExit, "vina exited nonzero")
	assert.Equal(t, ErrCodeDockingBadExit, err.Code)
	assert.Contains(t, err.Error(), "DOCK_002")
	assert.Contains(t, err.Error(), "vina exited nonzero")
	assert.NotEmpty(t, err.Stack)
}

func TestErrorWithDetail(t *testing.T) {
	err := New(ErrCodeFoldBadStatus, "fold request rejected").WithDetail("status=503")
	assert.Contains(t, err.Error(), "status=503")

	// WithDetail must not mutate the receiver.
	base := New(ErrCodeInternal, "base")
	_ = base.WithDetail("extra")
	assert.Empty(t, base.Detail)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "ignored"))
}

func TestWrapPreservesCodeForUnknown(t *testing.T) {
	inner := New(ErrCodeDesignServiceFailed, "design service unreachable")
	outer := Wrap(inner, CodeUnknown, "propose failed")
	assert.Equal(t, ErrCodeDesignServiceFailed, outer.Code)
}

func TestUnwrapChain(t *testing.T) {
	root := stderrors.New("connection refused")
	wrapped := Wrap(root, ErrCodeExternalService, "remote call failed")
	assert.True(t, stderrors.Is(wrapped, root))

	var ae *AppError
	assert.True(t, stderrors.As(wrapped, &ae))
	assert.Equal(t, ErrCodeExternalService, ae.Code)
}

func TestIsCode(t *testing.T) {
	inner := New(ErrCodeStabilityUnparsed, "report missing")
	outer := Wrap(inner, ErrCodeInternal, "scoring failed")
	assert.True(t, IsCode(outer, ErrCodeStabilityUnparsed))
	assert.True(t, IsCode(outer, ErrCodeInternal))
	assert.False(t, IsCode(outer, ErrCodeDockingBadExit))
	assert.False(t, IsCode(nil, ErrCodeInternal))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeGenerationEmpty, GetCode(New(ErrCodeGenerationEmpty, "no candidates")))
	assert.Equal(t, CodeInternal, GetCode(stderrors.New("plain")))
}

func TestClassifiers(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("missing")))
	assert.True(t, IsNotFound(New(ErrCodeSessionNotFound, "no session")))
	assert.True(t, IsValidation(NewValidationError("smiles", "empty")))
	assert.True(t, IsTimeout(Timeout("deadline exceeded")))
	assert.False(t, IsNotFound(Internal("boom")))
}

// Package errors_test exercises the AppError type, its factory functions and
// the error-chain helpers.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/meisai-checker/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// New
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"document missing", errors.CodeDocumentNotFound, "draft.docx not found"},
		{"invalid param", errors.CodeInvalidParam, "document field is required"},
		{"llm failure", errors.CodeLLMRequestFailed, "connection refused"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
		})
	}
}

func TestNew_StackIsPopulated(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.CodeInternal, "test")
	assert.Contains(t, ae.Stack, "errors_test.go")
}

// ─────────────────────────────────────────────────────────────────────────────
// Wrap
// ─────────────────────────────────────────────────────────────────────────────

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "should not matter"))
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("dial tcp: connection refused")
	wrapped := errors.Wrap(root, errors.ErrCodeLLMRequestFailed, "chat completion failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, errors.ErrCodeLLMRequestFailed, wrapped.Code)
	assert.Equal(t, "chat completion failed", wrapped.Message)
	assert.Equal(t, root, wrapped.Cause)
	assert.Equal(t, root, stderrors.Unwrap(wrapped))
	assert.True(t, stderrors.Is(wrapped, root))
}

func TestWrap_PreservesOriginalCodeWhenCodeUnknown(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.CodeDocumentNotFound, "not found")
	outer := errors.Wrap(inner, errors.CodeUnknown, "adding context")

	require.NotNil(t, outer)
	assert.Equal(t, errors.CodeDocumentNotFound, outer.Code)
}

func TestWrap_UnknownOnPlainErrorBecomesInternal(t *testing.T) {
	t.Parallel()

	outer := errors.Wrap(stderrors.New("boom"), errors.CodeUnknown, "ctx")
	assert.Equal(t, errors.ErrCodeInternal, outer.Code)
}

func TestWrap_OverridesCodeWhenExplicit(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.CodeDocumentNotFound, "not found")
	outer := errors.Wrap(inner, errors.CodeInternal, "unexpected state")

	assert.Equal(t, errors.CodeInternal, outer.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Error()
// ─────────────────────────────────────────────────────────────────────────────

func TestError_Format(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  *errors.AppError
		want string
	}{
		{"bare", errors.New(errors.ErrCodeDocumentNotFound, "input document not found"),
			"[DOC_001] input document not found"},
		{"detail", errors.New(errors.ErrCodeDocumentNotFound, "input document not found").WithDetail("a.docx"),
			"[DOC_001] input document not found: a.docx"},
		{"cause", errors.Wrap(fmt.Errorf("eof"), errors.ErrCodeDocumentReadFailed, "read"),
			"[DOC_002] read: eof"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestWithDetail_DoesNotMutateReceiver(t *testing.T) {
	t.Parallel()

	base := errors.New(errors.CodeInternal, "x")
	withDetail := base.WithDetail("d")
	assert.Empty(t, base.Detail)
	assert.Equal(t, "d", withDetail.Detail)

	var nilErr *errors.AppError
	assert.Nil(t, nilErr.WithDetail("d"))
	assert.Nil(t, nilErr.WithCause(stderrors.New("c")))
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain helpers
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_WalksChain(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeLLMStatus, "status 401")
	outer := errors.Wrap(inner, errors.ErrCodeLLMRequestFailed, "semantic review")
	wrappedStd := fmt.Errorf("run: %w", outer)

	assert.True(t, errors.IsCode(wrappedStd, errors.ErrCodeLLMRequestFailed))
	assert.True(t, errors.IsCode(wrappedStd, errors.ErrCodeLLMStatus))
	assert.False(t, errors.IsCode(wrappedStd, errors.ErrCodeDocumentNotFound))
	assert.False(t, errors.IsCode(nil, errors.ErrCodeInternal))
	assert.False(t, errors.IsCode(stderrors.New("plain"), errors.ErrCodeInternal))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsNotFound(errors.NotFound("x")))
	assert.True(t, errors.IsNotFound(errors.New(errors.ErrCodeDocumentNotFound, "x")))
	assert.True(t, errors.IsNotFound(fmt.Errorf("wrap: %w", errors.New(errors.ErrCodeReviewNotFound, "x"))))
	assert.False(t, errors.IsNotFound(errors.Internal("x")))
	assert.False(t, errors.IsNotFound(nil))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.ErrCodeInternal, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeBadRequest, errors.GetCode(errors.InvalidParam("bad")))
}

//Personal.AI order the ending

package apierrors

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithFormattedMessage(t *testing.T) {
	err := ErrUnsupportedExportFormat.WithFormattedMessage("docx")
	assert.Equal(t, "unsupported export format docx", err.Error())
	assert.Equal(t, "unsupported export format %s", ErrUnsupportedExportFormat.Err)

	assert.Equal(t, "unsupported export format", ErrUnsupportedExportFormat.WithFormattedMessage().Err)
}

func TestDefinedErrorJSON(t *testing.T) {
	b, err := json.Marshal(ErrPostNotFound)
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":2001,"error":"post not found","pt_error":"Post não encontrado"}`, string(b))
}

func TestCodesUnique(t *testing.T) {
	all := []DefinedError{
		ErrSessionNotFound, ErrSessionIDInvalid,
		ErrPostNotFound, ErrInvalidSlug, ErrPostSaveFailed,
		ErrInvalidSelection, ErrInvalidAttribute, ErrInvalidTableSize, ErrEmptyHref, ErrInvalidHref,
		ErrNotAtomic, ErrUnsupportedKind, ErrUnknownOp,
		ErrUnsupportedExportFormat, ErrExportFailed,
		ErrGeneric, ErrBadRequestBody, ErrValidation, ErrEntityToLarge, ErrInternal,
	}
	seen := map[int]string{}
	for _, e := range all {
		if prev, ok := seen[e.Code]; ok {
			t.Errorf("code %d used by %q and %q", e.Code, prev, e.Err)
		}
		seen[e.Code] = e.Err
		assert.NotZero(t, e.StatusCode, e.Err)
	}
}

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactorHTMLJSON(t *testing.T) {
	var r RedactorHTML
	require.NoError(t, json.Unmarshal([]byte(`"<p>Oi\u200b<script>alert(1)</script> &amp; tchau</p>"`), &r))
	assert.Equal(t, "<p>Oi &amp; tchau</p>", r.Body)
	assert.True(t, r.AlreadySanitized)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `"<p>Oi &amp; tchau</p>"`, string(b))
}

func TestRedactorHTMLValue(t *testing.T) {
	v, err := RedactorHTML{Body: `<p onclick="x()">a</p>`}.Value()
	require.NoError(t, err)
	assert.Equal(t, "<p>a</p>", v)

	v, err = NewRedactorHTML("<p>b</p>").Value()
	require.NoError(t, err)
	assert.Equal(t, "<p>b</p>", v)
}

func TestRedactorHTMLScan(t *testing.T) {
	var r RedactorHTML
	require.NoError(t, r.Scan([]byte("<p>x</p>")))
	assert.Equal(t, "<p>x</p>", r.Body)
	assert.Error(t, r.Scan(42))
	assert.Equal(t, "x", r.StripTags())
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONMap_ValueScanRoundTrip(t *testing.T) {
	m := JSONMap{"filePath": "docs/features/auth/PRD.md", "count": float64(3)}

	v, err := m.Value()
	require.NoError(t, err)

	var out JSONMap
	require.NoError(t, out.Scan(v))
	assert.Equal(t, m, out)
}

func TestJSONMap_Scan_Nil(t *testing.T) {
	var m JSONMap
	require.NoError(t, m.Scan(nil))
	assert.Equal(t, JSONMap{}, m)
}

func TestStringList_ValueScanRoundTrip(t *testing.T) {
	l := StringList{"docs/a.md", "docs/b.md"}

	v, err := l.Value()
	require.NoError(t, err)

	var out StringList
	require.NoError(t, out.Scan(v))
	assert.Equal(t, l, out)
}

func TestStringList_Scan_EmptyString(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan(""))
	assert.Equal(t, StringList{}, l)
}

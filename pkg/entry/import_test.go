package entry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmdbkit/cmdbkit/pkg/eav"
	"github.com/cmdbkit/cmdbkit/pkg/model"
)

func TestCoerceImportValue(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		v, err := coerceImportValue(model.TypeString, "web-01")
		require.NoError(t, err)
		assert.Equal(t, eav.String("web-01"), v)
	})

	t.Run("non-string scalars stringify", func(t *testing.T) {
		// yaml decodes unquoted numbers as ints.
		v, err := coerceImportValue(model.TypeString, 42)
		require.NoError(t, err)
		assert.Equal(t, eav.String("42"), v)
	})

	t.Run("boolean", func(t *testing.T) {
		v, err := coerceImportValue(model.TypeBoolean, true)
		require.NoError(t, err)
		assert.Equal(t, eav.Bool(true), v)

		_, err = coerceImportValue(model.TypeBoolean, "yes")
		assert.Error(t, err)
	})

	t.Run("object", func(t *testing.T) {
		v, err := coerceImportValue(model.TypeObject, 7)
		require.NoError(t, err)
		assert.Equal(t, eav.Ref(7), v)

		_, err = coerceImportValue(model.TypeObject, "web-01")
		assert.Error(t, err)
	})

	t.Run("group", func(t *testing.T) {
		v, err := coerceImportValue(model.TypeGroup, 5)
		require.NoError(t, err)
		assert.Equal(t, eav.GroupRef(5), v)
	})

	t.Run("named object", func(t *testing.T) {
		v, err := coerceImportValue(model.TypeNamedObject, map[string]interface{}{"name": "eth0", "id": 7})
		require.NoError(t, err)
		assert.Equal(t, eav.Named{Name: "eth0", Ref: 7}, v)

		// A label-only pair is valid.
		v, err = coerceImportValue(model.TypeNamedObject, map[string]interface{}{"name": "eth1"})
		require.NoError(t, err)
		assert.Equal(t, eav.Named{Name: "eth1"}, v)

		_, err = coerceImportValue(model.TypeNamedObject, "eth0")
		assert.Error(t, err)
	})

	t.Run("array", func(t *testing.T) {
		v, err := coerceImportValue(model.TypeArrayString, []interface{}{"a", "b"})
		require.NoError(t, err)
		assert.Equal(t, eav.Array{eav.String("a"), eav.String("b")}, v)

		_, err = coerceImportValue(model.TypeArrayString, "a")
		assert.Error(t, err)

		// A nil element fails rather than silently writing an empty value.
		_, err = coerceImportValue(model.TypeArrayString, []interface{}{"a", nil})
		assert.Error(t, err)
	})

	t.Run("nil rejected", func(t *testing.T) {
		_, err := coerceImportValue(model.TypeString, nil)
		assert.Error(t, err)
	})
}

func TestYamlUint(t *testing.T) {
	for _, raw := range []interface{}{int(7), uint(7), int64(7), float64(7)} {
		n, ok := yamlUint(raw)
		assert.True(t, ok)
		assert.Equal(t, uint(7), n)
	}

	_, ok := yamlUint(-1)
	assert.False(t, ok)

	_, ok = yamlUint("7")
	assert.False(t, ok)

	_, ok = yamlUint(nil)
	assert.False(t, ok)
}

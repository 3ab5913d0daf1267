package eav

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmdbkit/cmdbkit/pkg/model"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", d.String())

	_, err = ParseDate("2024/03/15")
	assert.Error(t, err)
	_, err = ParseDate("2024-13-01")
	assert.Error(t, err)
}

func TestCoerceScalars(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		v, err := coerce(model.TypeString, String("hello"))
		require.NoError(t, err)
		assert.Equal(t, String("hello"), v)

		_, err = coerce(model.TypeString, Bool(true))
		var invalid *InvalidValueError
		assert.ErrorAs(t, err, &invalid)
	})

	t.Run("boolean", func(t *testing.T) {
		v, err := coerce(model.TypeBoolean, Bool(true))
		require.NoError(t, err)
		assert.Equal(t, Bool(true), v)

		_, err = coerce(model.TypeBoolean, String("true"))
		assert.Error(t, err)
	})

	t.Run("object reference", func(t *testing.T) {
		v, err := coerce(model.TypeObject, Ref(7))
		require.NoError(t, err)
		assert.Equal(t, Ref(7), v)
	})

	t.Run("named object", func(t *testing.T) {
		v, err := coerce(model.TypeNamedObject, Named{Name: "eth0", Ref: 3})
		require.NoError(t, err)
		assert.Equal(t, Named{Name: "eth0", Ref: 3}, v)

		_, err = coerce(model.TypeNamedObject, String("eth0"))
		assert.Error(t, err)
	})

	t.Run("date accepts Date and canonical strings", func(t *testing.T) {
		want, _ := time.Parse(DateLayout, "2023-01-02")

		v, err := coerce(model.TypeDate, Date(want))
		require.NoError(t, err)
		assert.Equal(t, Date(want), v)

		v, err = coerce(model.TypeDate, String("2023-01-02"))
		require.NoError(t, err)
		assert.Equal(t, "2023-01-02", v.(Date).String())

		_, err = coerce(model.TypeDate, String("02/01/2023"))
		assert.Error(t, err)
	})

	t.Run("nil is rejected", func(t *testing.T) {
		_, err := coerce(model.TypeString, nil)
		assert.Error(t, err)
	})
}

func TestCoerceArrays(t *testing.T) {
	v, err := coerce(model.TypeArrayString, Array{String("a"), String("b")})
	require.NoError(t, err)
	assert.Equal(t, Array{String("a"), String("b")}, v)

	t.Run("scalar for array type is rejected", func(t *testing.T) {
		_, err := coerce(model.TypeArrayString, String("a"))
		assert.Error(t, err)
	})

	t.Run("nested lists are rejected", func(t *testing.T) {
		_, err := coerce(model.TypeArrayString, Array{Array{String("a")}})
		assert.Error(t, err)
	})

	t.Run("elements are validated against the leaf type", func(t *testing.T) {
		_, err := coerce(model.TypeArrayObject, Array{String("not-a-ref")})
		assert.Error(t, err)
	})
}

func TestCoerceSizeCap(t *testing.T) {
	huge := String(strings.Repeat("x", model.MaxValueSize+1))
	_, err := coerce(model.TypeString, huge)
	var tooLarge *ValueTooLargeError
	assert.ErrorAs(t, err, &tooLarge)

	ok := String(strings.Repeat("x", model.MaxValueSize))
	_, err = coerce(model.TypeString, ok)
	assert.NoError(t, err)
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, isEmpty(nil))
	assert.True(t, isEmpty(String("")))
	assert.True(t, isEmpty(Ref(0)))
	assert.True(t, isEmpty(GroupRef(0)))
	assert.True(t, isEmpty(Named{}))
	assert.True(t, isEmpty(Array{}))
	assert.True(t, isEmpty(Date{}))
	// False booleans count as "never set".
	assert.True(t, isEmpty(Bool(false)))

	assert.False(t, isEmpty(String("x")))
	assert.False(t, isEmpty(Bool(true)))
	assert.False(t, isEmpty(Ref(1)))
	assert.False(t, isEmpty(Named{Name: "a"}))
	assert.False(t, isEmpty(Array{String("a")}))
}

package eav

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cmdbkit/cmdbkit/pkg/model"
)

func TestEqualValuesScalars(t *testing.T) {
	assert.True(t, equalValues(model.TypeString, String("a"), String("a")))
	assert.False(t, equalValues(model.TypeString, String("a"), String("b")))

	assert.True(t, equalValues(model.TypeBoolean, Bool(true), Bool(true)))
	assert.False(t, equalValues(model.TypeBoolean, Bool(true), Bool(false)))

	assert.True(t, equalValues(model.TypeObject, Ref(3), Ref(3)))
	assert.False(t, equalValues(model.TypeObject, Ref(3), Ref(4)))

	assert.True(t, equalValues(model.TypeNamedObject,
		Named{Name: "eth0", Ref: 1}, Named{Name: "eth0", Ref: 1}))
	assert.False(t, equalValues(model.TypeNamedObject,
		Named{Name: "eth0", Ref: 1}, Named{Name: "eth1", Ref: 1}))

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, equalValues(model.TypeDate, Date(day), Date(day)))
	// Dates compare on the day, not the instant.
	later := day.Add(6 * time.Hour)
	assert.True(t, equalValues(model.TypeDate, Date(day), Date(later)))

	// Mismatched concrete types never compare equal.
	assert.False(t, equalValues(model.TypeString, Bool(true), String("true")))
}

func TestEqualArraysIgnoresOrder(t *testing.T) {
	a := Array{String("x"), String("y")}
	b := Array{String("y"), String("x")}
	assert.True(t, equalArrays(model.TypeArrayString, a, b))

	assert.False(t, equalArrays(model.TypeArrayString,
		Array{String("x")}, Array{String("x"), String("x")}))
	assert.False(t, equalArrays(model.TypeArrayString,
		Array{String("x")}, Array{String("z")}))
}

func TestEqualArraysNamed(t *testing.T) {
	a := Array{Named{Name: "a", Ref: 1}, Named{Name: "b", Ref: 2}}
	b := Array{Named{Name: "b", Ref: 2}, Named{Name: "a", Ref: 1}}
	assert.True(t, equalArrays(model.TypeArrayNamedObject, a, b))

	// Labels and referral targets are compared as independent multisets:
	// swapping which label carries which referral is not an update.
	crossed := Array{Named{Name: "a", Ref: 2}, Named{Name: "b", Ref: 1}}
	assert.True(t, equalArrays(model.TypeArrayNamedObject, a, crossed))

	changed := Array{Named{Name: "a", Ref: 1}, Named{Name: "c", Ref: 2}}
	assert.False(t, equalArrays(model.TypeArrayNamedObject, a, changed))
}

func TestEqualArraysRefs(t *testing.T) {
	a := Array{Ref(1), Ref(2)}
	b := Array{Ref(2), Ref(1)}
	assert.True(t, equalArrays(model.TypeArrayObject, a, b))
	assert.False(t, equalArrays(model.TypeArrayObject, a, Array{Ref(1), Ref(3)}))
}

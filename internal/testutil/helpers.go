// internal/testutil/helpers.go
package testutil

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// AssertEqual verifica que dos valores sean iguales.
func AssertEqual(t *testing.T, got, want interface{}, msg string) {
	t.Helper()
	assert.Equal(t, want, got, msg)
}

// AssertNotEqual verifica que dos valores sean diferentes.
func AssertNotEqual(t *testing.T, got, want interface{}, msg string) {
	t.Helper()
	assert.NotEqual(t, want, got, msg)
}

// AssertNil verifica que un valor sea nil.
func AssertNil(t *testing.T, got interface{}, msg string) {
	t.Helper()
	assert.Nil(t, got, msg)
}

// AssertNotNil verifica que un valor no sea nil.
func AssertNotNil(t *testing.T, got interface{}, msg string) {
	t.Helper()
	assert.NotNil(t, got, msg)
}

// AssertError verifica que un error no sea nil.
func AssertError(t *testing.T, err error, msg string) {
	t.Helper()
	assert.Error(t, err, msg)
}

// AssertErrorIs verifica que err envuelva target.
func AssertErrorIs(t *testing.T, err, target error, msg string) {
	t.Helper()
	assert.ErrorIs(t, err, target, msg)
}

// AssertNoError verifica que no haya error.
func AssertNoError(t *testing.T, err error, msg string) {
	t.Helper()
	assert.NoError(t, err, msg)
}

// RequireNoError aborta el test si hay error.
func RequireNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if !assert.NoError(t, err, msg) {
		t.FailNow()
	}
}

// AssertTrue verifica que una condición sea verdadera.
func AssertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()
	assert.True(t, condition, msg)
}

// AssertFalse verifica que una condición sea falsa.
func AssertFalse(t *testing.T, condition bool, msg string) {
	t.Helper()
	assert.False(t, condition, msg)
}

// AssertContains verifica que un slice contenga un elemento o que un string contenga un substring.
func AssertContains(t *testing.T, container interface{}, element interface{}, msg string) {
	t.Helper()
	assert.Contains(t, container, element, msg)
}

// AssertNotContains es el inverso de AssertContains.
func AssertNotContains(t *testing.T, container interface{}, element interface{}, msg string) {
	t.Helper()
	assert.NotContains(t, container, element, msg)
}

// AssertLen verifica la longitud de un slice, map o string.
func AssertLen(t *testing.T, object interface{}, want int, msg string) {
	t.Helper()
	assert.Len(t, object, want, msg)
}

// AssertJSONEq compara dos documentos JSON ignorando formato y orden de claves.
func AssertJSONEq(t *testing.T, got, want string, msg string) {
	t.Helper()
	assert.JSONEq(t, want, got, msg)
}

// AssertEventually reintenta cond hasta que sea cierta o venza wait.
func AssertEventually(t *testing.T, cond func() bool, wait time.Duration, msg string) {
	t.Helper()
	assert.Eventually(t, cond, wait, 5*time.Millisecond, msg)
}

// ContainsStr verifica si un string contiene un substring.
func ContainsStr(s, substr string) bool {
	return strings.Contains(s, substr)
}

package firvharden

import (
	"fmt"
	"testing"

	"github.com/llir/llvm/ir/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flattte/firv-rust-llvm-project/internal/passconfig"
)

type recordingDiagnostics struct {
	declines []string
	warns    []string
}

func (d *recordingDiagnostics) Declinef(format string, args ...any) {
	d.declines = append(d.declines, fmt.Sprintf(format, args...))
}

func (d *recordingDiagnostics) Warnf(format string, args ...any) {
	d.warns = append(d.warns, fmt.Sprintf(format, args...))
}

func TestGate_NoAttribute_Declines(t *testing.T) {
	f := newFooFunc()
	diag := &recordingDiagnostics{}

	retType, sret, ok := gate(f, passconfig.Default(), diag)

	assert.False(t, ok)
	assert.Nil(t, retType)
	assert.Nil(t, sret)
	assert.Empty(t, diag.declines, "attribute-absent is the common case and shouldn't be reported")
}

func TestGate_IneligibleReturnType_Declines(t *testing.T) {
	f := newBarFunc()
	diag := &recordingDiagnostics{}

	_, _, ok := gate(f, passconfig.Default(), diag)

	assert.False(t, ok)
	require.Len(t, diag.declines, 1)
}

func TestGate_EligibleScalar_Accepts(t *testing.T) {
	f := newAddFunc()
	diag := &recordingDiagnostics{}

	retType, sret, ok := gate(f, passconfig.Default(), diag)

	assert.True(t, ok)
	assert.Equal(t, types.I32, retType)
	assert.Nil(t, sret)
}

func TestGate_SRetStruct_Accepts(t *testing.T) {
	f, pointT := newBazFunc()
	diag := &recordingDiagnostics{}

	retType, sret, ok := gate(f, passconfig.Default(), diag)

	assert.True(t, ok)
	assert.Equal(t, pointT, retType)
	require.NotNil(t, sret)
	assert.Equal(t, "agg.result", sret.LocalName)
}

func TestWouldHarden(t *testing.T) {
	diag := &recordingDiagnostics{}
	assert.True(t, WouldHarden(newAddFunc(), passconfig.Default(), diag))
	assert.False(t, WouldHarden(newFooFunc(), passconfig.Default(), diag))
	assert.False(t, WouldHarden(newBarFunc(), passconfig.Default(), diag))
}

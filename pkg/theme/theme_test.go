package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupFallbacks(t *testing.T) {
	p := Default()

	assert.Equal(t, Color{Hex: "#10B981", Class: "bg-emerald-500"}, p.Lookup("order_status", "COMPLETED"))
	assert.Equal(t, Color{Hex: "#64748B", Class: "bg-slate-500"}, p.Lookup("certificate_concept", "UNKNOWN"))
	// category without default
	assert.Equal(t, Fallback, p.Lookup("company_kind", "OTRO"))
	assert.Equal(t, Fallback, p.Lookup("nope", "x"))
}

func TestParse(t *testing.T) {
	p, err := Parse([]byte("x:\n  a: { hex: \"#000000\", class: bg-black }\n"))
	require.NoError(t, err)
	assert.Equal(t, "bg-black", p.Lookup("x", "a").Class)

	_, err = Parse([]byte("x: [unclosed"))
	assert.Error(t, err)

	assert.Contains(t, Default().Categories(), "solicitud_status")
}

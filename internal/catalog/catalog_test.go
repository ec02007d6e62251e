package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, []string{"Dark Store", "Maadi", "Masr El Gededa", "Tagamo3"}, c.BranchNames())
	assert.Equal(t, []string{"Talabat", "Instashop", "Call Center", "Website & App"}, c.ChannelNames())
}

func TestParse(t *testing.T) {
	doc := `
branches:
  - name: Zamalek
    label: الزمالك
  - name: Dokki
channels:
  - name: Walk-in
    label: حضوري
headers:
  sales:
    - revenue
    - ايراد
`
	c, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, []string{"Zamalek", "Dokki"}, c.BranchNames())
	assert.Equal(t, "الزمالك", c.Branches[0].Label)
	assert.Empty(t, c.Branches[1].Label)
	assert.Equal(t, []string{"revenue", "ايراد"}, c.Headers["sales"])
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "no branches", doc: "channels:\n  - name: A\n"},
		{name: "no channels", doc: "branches:\n  - name: A\n"},
		{name: "duplicate branch", doc: "branches:\n  - name: A\n  - name: a\nchannels:\n  - name: B\n"},
		{name: "empty name", doc: "branches:\n  - label: x\nchannels:\n  - name: B\n"},
		{name: "unknown header field", doc: "branches:\n  - name: A\nchannels:\n  - name: B\nheaders:\n  price: [p]\n"},
		{name: "not yaml", doc: "branches: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("branches:\n  - name: A\nchannels:\n  - name: B\n"), 0o644))

	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, c.BranchNames())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

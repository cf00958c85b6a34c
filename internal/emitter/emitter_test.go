package emitter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test plan:
// 1. Two declarations produce twelve artifacts in suffix-major order
// 2. k declarations produce k contiguous groups of six
// 3. Only the last segment of the dotted name is used
// 4. Documents without a qualifying tag fail with ErrNoInterfaceFound
// 5. Repeated predictions are identical
// 6. Artifacts of several documents are concatenated in input order
// 7. LoadDocuments reads files and reports missing ones

const widgetGadget = `<node>
  <interface name="com.example.Widget">
    <method name="Spin"/>
  </interface>
  <interface name="com.example.Gadget">
    <property name="Size" type="i"/>
  </interface>
</node>`

func TestPredict_TwoDeclarations(t *testing.T) {
	// Test: declaration order, then suffix, then extension
	got, err := Predict([]Document{{Path: "widgets.xml", Content: []byte(widgetGadget)}})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"generated/WidgetTypeDescription.h",
		"generated/WidgetTypeDescription.cc",
		"generated/WidgetInterface.h",
		"generated/WidgetInterface.cc",
		"generated/WidgetProxy.h",
		"generated/WidgetProxy.cc",
		"generated/GadgetTypeDescription.h",
		"generated/GadgetTypeDescription.cc",
		"generated/GadgetInterface.h",
		"generated/GadgetInterface.cc",
		"generated/GadgetProxy.h",
		"generated/GadgetProxy.cc",
	}, got)
}

func TestPredict_GroupsOfSix(t *testing.T) {
	// Test: each declaration contributes a contiguous group of six
	names := []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon"}
	var sb strings.Builder
	for _, n := range names {
		sb.WriteString(`<interface name="org.test.` + n + `"></interface>` + "\n")
	}

	got, err := Predict([]Document{{Path: "many.xml", Content: []byte(sb.String())}})
	require.NoError(t, err)
	require.Len(t, got, 6*len(names))

	for i, n := range names {
		assert.Equal(t, Artifacts(n), got[i*6:(i+1)*6])
	}
}

func TestDeclarationNames(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "deeply qualified",
			content: `<interface name="org.allseen.sample.door.Door">`,
			want:    []string{"Door"},
		},
		{
			name:    "single qualifier",
			content: `<interface name="a.B">`,
			want:    []string{"B"},
		},
		{
			name:    "unqualified name is ignored",
			content: `<interface name="Door">`,
			want:    []string{},
		},
		{
			name:    "extra attributes are ignored",
			content: `<interface name="a.b.Door" version="2">`,
			want:    []string{},
		},
		{
			name:    "other elements do not match",
			content: `<method name="com.example.Spin"><signal name="x.Y"/>`,
			want:    []string{},
		},
		{
			name:    "declarations on one line keep order",
			content: `<interface name="x.Second"></interface><interface name="x.First">`,
			want:    []string{"Second", "First"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeclarationNames([]byte(tt.content)))
		})
	}
}

func TestPredict_NoInterfaceFound(t *testing.T) {
	// Test: a document without declarations is an error, even after valid ones
	docs := []Document{
		{Path: "ok.xml", Content: []byte(`<interface name="a.Ok">`)},
		{Path: "empty.xml", Content: []byte(`<node><method name="a.b.C"/></node>`)},
	}

	got, err := Predict(docs)
	assert.ErrorIs(t, err, ErrNoInterfaceFound)
	assert.Contains(t, err.Error(), "empty.xml")
	assert.Nil(t, got)
}

func TestPredict_Deterministic(t *testing.T) {
	// Test: identical inputs give identical, identically ordered outputs
	docs := []Document{{Path: "widgets.xml", Content: []byte(widgetGadget)}}

	first, err := Predict(docs)
	require.NoError(t, err)
	second, err := Predict(docs)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPredict_MultipleDocuments(t *testing.T) {
	// Test: documents contribute in input order
	docs := []Document{
		{Path: "b.xml", Content: []byte(`<interface name="x.Beta">`)},
		{Path: "a.xml", Content: []byte(`<interface name="x.Alpha">`)},
	}

	got, err := Predict(docs)
	require.NoError(t, err)

	assert.Equal(t, append(Artifacts("Beta"), Artifacts("Alpha")...), got)
}

func TestLoadDocuments(t *testing.T) {
	// Test: files are read in order and missing files are reported
	dir := t.TempDir()
	a := filepath.Join(dir, "a.xml")
	b := filepath.Join(dir, "b.xml")
	require.NoError(t, os.WriteFile(a, []byte("A"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("B"), 0644))

	docs, err := LoadDocuments([]string{b, a})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, Document{Path: b, Content: []byte("B")}, docs[0])
	assert.Equal(t, Document{Path: a, Content: []byte("A")}, docs[1])

	_, err = LoadDocuments([]string{filepath.Join(dir, "missing.xml")})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read definition")
}

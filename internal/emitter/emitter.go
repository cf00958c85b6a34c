// Package emitter predicts the files the code generator writes for an
// interface definition document without running the generator.
package emitter

import (
	"errors"
	"fmt"
	"os"
	"path"
	"regexp"
)

// GeneratedDir is the directory, relative to the output directory, that the
// generator writes into.
const GeneratedDir = "generated"

var (
	// ErrNoInterfaceFound means a document declares no interface
	ErrNoInterfaceFound = errors.New("failed to detect interface name")
)

// Suffixes are appended to a declaration name, in emission order.
var Suffixes = []string{"TypeDescription", "Interface", "Proxy"}

// Extensions are the header/source pair emitted per suffix.
var Extensions = []string{"h", "cc"}

// interfaceNamePattern captures the last segment of a dotted interface name.
var interfaceNamePattern = regexp.MustCompile(`<interface name="[^"]*\.([^."]*)">`)

// Document is an interface definition file and its content.
type Document struct {
	Path    string
	Content []byte
}

// LoadDocuments reads each path into a Document, preserving order.
func LoadDocuments(paths []string) ([]Document, error) {
	docs := make([]Document, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read definition %s: %w", p, err)
		}
		docs = append(docs, Document{Path: p, Content: content})
	}
	return docs, nil
}

// DeclarationNames returns the unqualified interface names in content, in
// document order.
func DeclarationNames(content []byte) []string {
	matches := interfaceNamePattern.FindAllSubmatch(content, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, string(m[1]))
	}
	return names
}

// Artifacts returns the six artifacts generated for one declaration.
func Artifacts(name string) []string {
	out := make([]string, 0, len(Suffixes)*len(Extensions))
	for _, suffix := range Suffixes {
		for _, ext := range Extensions {
			out = append(out, path.Join(GeneratedDir, name+suffix+"."+ext))
		}
	}
	return out
}

// PredictDocument returns the artifacts for a single document.
func PredictDocument(doc Document) ([]string, error) {
	names := DeclarationNames(doc.Content)
	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoInterfaceFound, doc.Path)
	}

	var out []string
	for _, name := range names {
		out = append(out, Artifacts(name)...)
	}
	return out, nil
}

// Predict returns the artifacts of all documents, in input order. Paths are
// slash-separated and relative to the output directory.
func Predict(docs []Document) ([]string, error) {
	var out []string
	for _, doc := range docs {
		artifacts, err := PredictDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, artifacts...)
	}
	return out, nil
}

package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
)

// AppendIndex is passed to AddUnit to place an element after every existing child.
const AppendIndex = 99

// outputMode is the permission given to written documents.
const outputMode = 0o644

// Document is a PREMIS document under construction.
// It is owned by a single run and is not safe for concurrent use.
type Document struct {
	doc  *etree.Document
	root *etree.Element

	objects int // objects mapped so far, used when preserving order
}

// NewDocument creates the empty premis:premis root with its namespace
// bindings, schema location and version.
func NewDocument() *Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement(PremisPrefix + ":premis")
	root.CreateAttr("xmlns:"+PremisPrefix, PremisNamespace)
	root.CreateAttr("xmlns:xlink", XlinkNamespace)
	root.CreateAttr("xmlns:xsi", XSINamespace)
	root.CreateAttr("xsi:schemaLocation", SchemaLocation)
	root.CreateAttr("version", PremisVersion)

	return &Document{doc: doc, root: root}
}

// Root returns the premis:premis element.
func (d *Document) Root() *etree.Element {
	return d.root
}

// AddUnit creates a PREMIS element called name and inserts it into parent's
// children at index. An index past the last child appends.
func AddUnit(index int, parent *etree.Element, name string) *etree.Element {
	el := etree.NewElement(name)
	el.Space = PremisPrefix
	parent.InsertChildAt(index, el)
	return el
}

// addText is AddUnit followed by SetText.
func addText(index int, parent *etree.Element, name, text string) *etree.Element {
	el := AddUnit(index, parent, name)
	el.SetText(text)
	return el
}

// WriteTo writes the document to w, indented by indent spaces per level.
// The tree itself is not modified.
func (d *Document) WriteTo(w io.Writer, indent int) (int64, error) {
	out := d.doc.Copy()
	if indent > 0 {
		out.Indent(indent)
	}
	return out.WriteTo(w)
}

// String returns the indented document; it is used for diagnostic dumps.
func (d *Document) String() string {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf, 2); err != nil {
		return fmt.Sprintf("<!-- %v -->", err)
	}
	return buf.String()
}

// WriteFile writes the document to path. Readers of path never see a
// partially written document.
func (d *Document) WriteFile(path string, indent int) error {
	staged, err := d.StageFile(path, indent)
	if err != nil {
		return err
	}
	return staged.Commit()
}

// StagedFile is a document written next to its destination but not yet
// renamed into place.
type StagedFile struct {
	tmp  string
	path string
}

// StageFile writes the document to a temporary file in path's directory.
// The caller must Commit or Discard the result.
func (d *Document) StageFile(path string, indent int) (staged *StagedFile, err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, &IOError{Op: "write", Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &IOError{Op: "write", Path: path, Err: cerr}
		}
		if err != nil {
			os.Remove(f.Name())
			staged = nil
		}
	}()

	if err := f.Chmod(outputMode); err != nil {
		return nil, &IOError{Op: "write", Path: path, Err: err}
	}
	if _, err := d.WriteTo(f, indent); err != nil {
		return nil, &IOError{Op: "write", Path: path, Err: err}
	}
	return &StagedFile{tmp: f.Name(), path: path}, nil
}

// Commit renames the staged file to its destination, replacing any file there.
func (s *StagedFile) Commit() error {
	if err := os.Rename(s.tmp, s.path); err != nil {
		os.Remove(s.tmp)
		return &IOError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

// Discard removes the staged file. The destination is left untouched.
func (s *StagedFile) Discard() error {
	if err := os.Remove(s.tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &IOError{Op: "write", Path: s.tmp, Err: err}
	}
	return nil
}

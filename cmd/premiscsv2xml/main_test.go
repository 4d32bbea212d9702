package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JonMunkholm/premiscsv2xml/internal/core"
)

func TestReportError(t *testing.T) {
	var out bytes.Buffer
	reportError(&out, &core.IOError{Op: "write", Path: "/archive/premis.xml", Err: os.ErrPermission})

	assert.Equal(t,
		"Error: Output file could not be written (Code: FILE007). Check that the output directory exists and is writable\n"+
			"Detail: write /archive/premis.xml: permission denied\n",
		out.String())
}

func TestReportError_MalformedIdentifier(t *testing.T) {
	_, _, err := core.ParseObjectIdentifier("[onlyonepart]")

	var out bytes.Buffer
	reportError(&out, err)

	assert.Contains(t, out.String(), "Error: Object identifier is malformed (Code: ID001).")
	assert.Contains(t, out.String(), `Detail: malformed object identifier "[onlyonepart]"`)
}

package core

import (
	"context"
	"errors"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileRow(line int, id string) ObjectRow {
	return ObjectRow{
		Line:                        line,
		ObjectIdentifier:            id,
		ObjectCategory:              "file",
		LinkingEventIdentifierValue: "e1|e2",
		Size:                        "1024",
		MessageDigestAlgorithm:      "MD5",
		MessageDigest:               "abc",
		MessageDigestOriginator:     "tool",
		FormatRegistryName:          "PRONOM",
		FormatRegistryKey:           "fmt/43",
		FormatRegistryRole:          "specification",
		ContentLocationType:         "URI",
		ContentLocationValue:        "file:///a.jpg",
	}
}

func identifierValue(t *testing.T, object *etree.Element) string {
	t.Helper()
	el := object.FindElement("./premis:objectIdentifier/premis:objectIdentifierValue")
	require.NotNil(t, el)
	return el.Text()
}

func TestParseObjectIdentifier(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantType  string
		wantValue string
	}{
		{name: "bracketed", raw: "[UUID, 1234]", wantType: "UUID", wantValue: "1234"},
		{name: "single quotes", raw: "['local', 'obj-1']", wantType: "local", wantValue: "obj-1"},
		{name: "double quotes", raw: `["ARK", "ark:/1/2"]`, wantType: "ARK", wantValue: "ark:/1/2"},
		{name: "no brackets", raw: "UUID, abc", wantType: "UUID", wantValue: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idType, idValue, err := ParseObjectIdentifier(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, idType)
			assert.Equal(t, tt.wantValue, idValue)
		})
	}
}

func TestParseObjectIdentifier_Malformed(t *testing.T) {
	for _, raw := range []string{"[onlyonepart]", "", "[a, b, c]", "[a,b]"} {
		_, _, err := ParseObjectIdentifier(raw)
		assert.ErrorIs(t, err, ErrMalformedIdentifier, raw)
	}
}

func TestLinkedEvents(t *testing.T) {
	assert.Equal(t, []string{"u1", "u2"}, LinkedEvents("u1|u2|"))
	assert.Equal(t, []string{"u1"}, LinkedEvents("|u1||"))
	assert.Nil(t, LinkedEvents(""))
}

func TestDescribeObjects_FileStructure(t *testing.T) {
	d := NewDocument()
	require.NoError(t, DescribeObjects(context.Background(), d, []ObjectRow{fileRow(1, "[UUID, 1234]")}, DefaultOptions()))

	objects := d.Root().ChildElements()
	require.Len(t, objects, 1)
	object := objects[0]

	assert.Equal(t, "premis:object", object.FullTag())
	assert.Equal(t, "premis:file", object.SelectAttrValue("xsi:type", ""))
	assert.Equal(t, []string{
		"premis:objectIdentifier",
		"premis:objectCharacteristics",
		"premis:storage",
		"premis:linkingEventIdentifier",
		"premis:linkingEventIdentifier",
	}, childTags(object))

	identifier := object.SelectElement("objectIdentifier")
	assert.Equal(t, []string{"premis:objectIdentifierType", "premis:objectIdentifierValue"}, childTags(identifier))
	assert.Equal(t, "UUID", identifier.SelectElement("objectIdentifierType").Text())
	assert.Equal(t, "1234", identifierValue(t, object))

	characteristics := object.SelectElement("objectCharacteristics")
	assert.Equal(t, []string{"premis:fixity", "premis:size", "premis:format"}, childTags(characteristics))
	assert.Equal(t, "1024", characteristics.SelectElement("size").Text())

	fixity := characteristics.SelectElement("fixity")
	assert.Equal(t, []string{
		"premis:messageDigestAlgorithm",
		"premis:messageDigest",
		"premis:messageDigestOriginator",
	}, childTags(fixity))
	assert.Equal(t, "abc", fixity.SelectElement("messageDigest").Text())

	registry := characteristics.FindElement("./premis:format/premis:formatRegistry")
	require.NotNil(t, registry)
	assert.Equal(t, []string{
		"premis:formatRegistryName",
		"premis:formatRegistryKey",
		"premis:formatRegistryRole",
	}, childTags(registry))
	assert.Equal(t, "fmt/43", registry.SelectElement("formatRegistryKey").Text())

	location := object.FindElement("./premis:storage/premis:contentLocation")
	require.NotNil(t, location)
	assert.Equal(t, []string{"premis:contentLocationType", "premis:contentLocationValue"}, childTags(location))
	assert.Equal(t, "file:///a.jpg", location.SelectElement("contentLocationValue").Text())

	links := object.SelectElements("linkingEventIdentifier")
	require.Len(t, links, 2)
	for i, want := range []string{"e1", "e2"} {
		assert.Equal(t, "UUID", links[i].SelectElement("linkingEventIdentifierType").Text())
		assert.Equal(t, want, links[i].SelectElement("linkingEventIdentifierValue").Text())
	}
}

func TestDescribeObjects_NonFileHasNoCharacteristics(t *testing.T) {
	d := NewDocument()
	row := ObjectRow{
		Line:                        1,
		ObjectIdentifier:            "[local, rep-1]",
		ObjectCategory:              "representation",
		LinkingEventIdentifierValue: "u1|u2|",
	}
	require.NoError(t, DescribeObjects(context.Background(), d, []ObjectRow{row}, DefaultOptions()))

	object := d.Root().SelectElement("object")
	require.NotNil(t, object)
	assert.Equal(t, "premis:representation", object.SelectAttrValue("xsi:type", ""))
	assert.Equal(t, []string{
		"premis:objectIdentifier",
		"premis:linkingEventIdentifier",
		"premis:linkingEventIdentifier",
	}, childTags(object))
}

func TestDescribeObjects_NoLinkedEvents(t *testing.T) {
	d := NewDocument()
	row := ObjectRow{Line: 1, ObjectIdentifier: "[local, a]", ObjectCategory: "intellectual entity"}
	require.NoError(t, DescribeObjects(context.Background(), d, []ObjectRow{row}, DefaultOptions()))

	object := d.Root().SelectElement("object")
	assert.Equal(t, []string{"premis:objectIdentifier"}, childTags(object))
}

func TestDescribeObjects_ReverseOrder(t *testing.T) {
	rows := []ObjectRow{
		{Line: 1, ObjectIdentifier: "[local, R1]", ObjectCategory: "representation"},
		{Line: 2, ObjectIdentifier: "[local, R2]", ObjectCategory: "representation"},
		{Line: 3, ObjectIdentifier: "[local, R3]", ObjectCategory: "representation"},
	}

	d := NewDocument()
	require.NoError(t, DescribeObjects(context.Background(), d, rows, DefaultOptions()))

	var got []string
	for _, object := range d.Root().ChildElements() {
		got = append(got, identifierValue(t, object))
	}
	assert.Equal(t, []string{"R3", "R2", "R1"}, got)
}

func TestDescribeObjects_PreserveOrder(t *testing.T) {
	rows := []ObjectRow{
		{Line: 1, ObjectIdentifier: "[local, R1]", ObjectCategory: "representation"},
		{Line: 2, ObjectIdentifier: "[local, R2]", ObjectCategory: "representation"},
		{Line: 3, ObjectIdentifier: "[local, R3]", ObjectCategory: "representation"},
	}

	d := NewDocument()
	opts := DefaultOptions()
	opts.PreserveObjectOrder = true
	require.NoError(t, DescribeObjects(context.Background(), d, rows, opts))
	require.NoError(t, DescribeEvents(context.Background(), d, []EventRow{{EventIdentifierValue: "E1"}}))

	var got []string
	for _, el := range d.Root().ChildElements() {
		if el.Tag == "object" {
			got = append(got, identifierValue(t, el))
		}
	}
	assert.Equal(t, []string{"R1", "R2", "R3"}, got)
	assert.Equal(t, "premis:event", d.Root().ChildElements()[3].FullTag())
}

func TestDescribeObjects_Malformed(t *testing.T) {
	rows := []ObjectRow{
		{Line: 1, ObjectIdentifier: "[local, ok]", ObjectCategory: "representation"},
		{Line: 2, ObjectIdentifier: "[onlyonepart]", ObjectCategory: "representation"},
	}

	err := DescribeObjects(context.Background(), NewDocument(), rows, DefaultOptions())
	require.ErrorIs(t, err, ErrMalformedIdentifier)

	var idErr *IdentifierError
	require.True(t, errors.As(err, &idErr))
	assert.Equal(t, 2, idErr.Row)
	assert.Equal(t, "[onlyonepart]", idErr.Raw)
	assert.Equal(t, 1, idErr.Parts)
}

func TestDescribeObjects_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := DescribeObjects(ctx, NewDocument(), []ObjectRow{fileRow(1, "[UUID, 1]")}, DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

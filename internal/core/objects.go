package core

import (
	"context"
	"strings"

	"github.com/beevik/etree"
)

// identifierCutset holds the characters dropped from an objectIdentifier cell.
const identifierCutset = "[]'\""

// ParseObjectIdentifier decodes "[type, value]" into its two components.
// Bracket and quote characters are removed and the rest is split on ", ".
func ParseObjectIdentifier(raw string) (idType, idValue string, err error) {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(identifierCutset, r) {
			return -1
		}
		return r
	}, raw)

	parts := strings.Split(cleaned, ", ")
	if len(parts) != 2 {
		return "", "", &IdentifierError{Raw: raw, Parts: len(parts)}
	}
	return parts[0], parts[1], nil
}

// LinkedEvents splits a pipe-delimited list of event ids, dropping empty tokens.
func LinkedEvents(value string) []string {
	var ids []string
	for _, id := range strings.Split(value, "|") {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// DescribeObjects maps every object row to a premis:object under the root.
//
// By default each object is inserted at index 0, so the document lists
// objects in reverse input order. opts.PreserveObjectOrder keeps input order.
func DescribeObjects(ctx context.Context, d *Document, rows []ObjectRow, opts Options) error {
	for i, row := range rows {
		if i%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := d.describeObject(row, opts); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) describeObject(row ObjectRow, opts Options) error {
	idType, idValue, err := ParseObjectIdentifier(row.ObjectIdentifier)
	if err != nil {
		if ie, ok := err.(*IdentifierError); ok {
			ie.Row = row.Line
		}
		return err
	}

	index := 0
	if opts.PreserveObjectOrder {
		index = d.objects
	}
	object := AddUnit(index, d.root, "object")
	object.CreateAttr("xsi:type", PremisPrefix+":"+row.ObjectCategory)
	d.objects++

	identifier := AddUnit(2, object, "objectIdentifier")
	addText(1, identifier, "objectIdentifierType", idType)
	addText(2, identifier, "objectIdentifierValue", idValue)

	if row.IsFile() {
		describeFile(object, row)
	}

	for _, id := range LinkedEvents(row.LinkingEventIdentifierValue) {
		link := AddUnit(AppendIndex, object, "linkingEventIdentifier")
		addText(1, link, "linkingEventIdentifierType", LinkingEventIdentifierType)
		addText(2, link, "linkingEventIdentifierValue", id)
	}
	return nil
}

// describeFile adds objectCharacteristics and storage to a file object.
func describeFile(object *etree.Element, row ObjectRow) {
	characteristics := AddUnit(5, object, "objectCharacteristics")
	storage := AddUnit(7, object, "storage")

	location := AddUnit(0, storage, "contentLocation")
	addText(0, location, "contentLocationType", row.ContentLocationType)
	addText(1, location, "contentLocationValue", row.ContentLocationValue)

	fixity := AddUnit(0, characteristics, "fixity")
	addText(1, characteristics, "size", row.Size)
	format := AddUnit(2, characteristics, "format")

	registry := AddUnit(1, format, "formatRegistry")
	addText(0, registry, "formatRegistryName", row.FormatRegistryName)
	addText(1, registry, "formatRegistryKey", row.FormatRegistryKey)
	addText(2, registry, "formatRegistryRole", row.FormatRegistryRole)

	addText(0, fixity, "messageDigestAlgorithm", row.MessageDigestAlgorithm)
	addText(1, fixity, "messageDigest", row.MessageDigest)
	addText(2, fixity, "messageDigestOriginator", row.MessageDigestOriginator)
}

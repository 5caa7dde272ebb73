package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/orgmap-cli/internal/model"
)

// Output formats accepted by --format.
const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatXLSX = "xlsx"
)

// writeMap renders m to w in format.
func writeMap(w io.Writer, m *model.AccountMap, format string) error {
	switch strings.ToLower(format) {
	case formatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(m), "write json")
	case formatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return eris.Wrap(err, "write yaml")
		}
		return eris.Wrap(enc.Close(), "write yaml")
	case formatXLSX:
		return writeXLSX(w, m)
	default:
		return eris.Errorf("unknown format %q (want json, yaml or xlsx)", format)
	}
}

// writeMapTo writes to path, or stdout when path is empty or "-".
func writeMapTo(path string, m *model.AccountMap, format string) error {
	if path == "" || path == "-" {
		if strings.EqualFold(format, formatXLSX) {
			return eris.New("xlsx output needs --out")
		}
		return writeMap(os.Stdout, m, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "create output file")
	}
	if err := writeMap(f, m, format); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrap(f.Close(), "close output file")
}

func addRow(sheet *xlsx.Sheet, cells ...string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}

// writeXLSX lays the map out as one sheet per section.
func writeXLSX(w io.Writer, m *model.AccountMap) error {
	f := xlsx.NewFile()

	snapshot, err := f.AddSheet("Snapshot")
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}
	addRow(snapshot, "Field", "Value")
	addRow(snapshot, "Company", m.Company)
	addRow(snapshot, "Domain", m.Domain)
	addRow(snapshot, "Status", string(m.Status))
	addRow(snapshot, "Industry", m.CompanySnapshot.Industry)
	addRow(snapshot, "HQ", m.CompanySnapshot.HQ)
	addRow(snapshot, "Size", m.CompanySnapshot.Size)
	addRow(snapshot, "Revenue", m.CompanySnapshot.Revenue)
	addRow(snapshot, "Structure", m.CompanySnapshot.StructureSummary)

	tree, err := f.AddSheet("Org Tree")
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}
	addRow(tree, "Name", "Title", "Reports To", "Inferred", "Level", "Function", "Confidence", "Sources")
	for _, n := range m.OrgTree {
		inferred := "no"
		if n.ReportsToInferred {
			inferred = "yes"
		}
		addRow(tree, n.Name, n.Title, n.ReportsTo, inferred, n.Level.String(), n.RegionFunction,
			n.Confidence.String(), strings.Join(n.Sources, "\n"))
	}

	roles, err := f.AddSheet("Roles")
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}
	addRow(roles, "Name", "Title", "Role", "Notes")
	for _, r := range m.RoleAnalysis {
		addRow(roles, r.Name, r.Title, r.Role.String(), r.Notes)
	}

	gaps, err := f.AddSheet("Gaps")
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}
	addRow(gaps, "Gap")
	for _, g := range m.Gaps {
		addRow(gaps, g)
	}

	citations, err := f.AddSheet("Citations")
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}
	addRow(citations, "Source")
	for _, c := range m.Citations {
		addRow(citations, c)
	}

	return eris.Wrap(f.Write(w), "xlsx: write")
}

package cif

import (
	"bytes"
	"strings"
	"testing"
)

const sample = `# a comment
data_comp_XYZ
_chem_comp.id XYZ
_chem_comp.name 'unknown ligand'
_chem_comp.desc
;a multi-line
description
;
loop_
_chem_comp_atom.atom_id
_chem_comp_atom.type_symbol
C1 C
"O1'" O
N1 N
`

func TestParse(Te *testing.T) {
	doc, err := Parse(strings.NewReader(sample))
	if err != nil {
		Te.Fatal(err)
	}
	block := doc.Block("comp_XYZ")
	if block == nil {
		Te.Fatalf("block not found; blocks: %v", doc.Blocks)
	}
	if v, _ := block.Item("_chem_comp.id"); v != "XYZ" {
		Te.Errorf("item: got %q", v)
	}
	if v, _ := block.Item("_CHEM_COMP.NAME"); v != "unknown ligand" {
		Te.Errorf("quoted item, case-insensitive lookup: got %q", v)
	}
	if v, _ := block.Item("_chem_comp.desc"); !strings.Contains(v, "multi-line") {
		Te.Errorf("text field: got %q", v)
	}
	loop := block.LoopWithTag("_chem_comp_atom.atom_id")
	if loop == nil {
		Te.Fatal("loop not found")
	}
	if len(loop.Rows) != 3 {
		Te.Fatalf("expected 3 rows, got %d", len(loop.Rows))
	}
	if loop.Rows[1][0] != "O1'" {
		Te.Errorf("quoted loop value: got %q", loop.Rows[1][0])
	}
	if i := loop.Column("_chem_comp_atom.TYPE_SYMBOL"); i != 1 {
		Te.Errorf("case-insensitive column lookup: got %d", i)
	}
}

func TestParseIncompleteRow(Te *testing.T) {
	bad := "data_x\nloop_\n_a.one\n_a.two\nv1 v2 v3\n"
	if _, err := Parse(strings.NewReader(bad)); err == nil {
		Te.Error("a loop with a dangling value should fail to parse")
	}
}

//Writing the same document twice must give identical bytes, and the output
//must parse back to the same content.
func TestWriteStable(Te *testing.T) {
	doc := &Document{Blocks: []*Block{{
		Name:  "out",
		Items: map[string]string{"_entry.id": "out", "_cell.length_a": "50.0"},
		Loops: []*Loop{{
			Tags: []string{"_x.a", "_x.b"},
			Rows: [][]string{{"1", "a value"}, {"2", "plain"}},
		}},
	}}}
	var b1, b2 bytes.Buffer
	if err := Write(&b1, doc); err != nil {
		Te.Fatal(err)
	}
	if err := Write(&b2, doc); err != nil {
		Te.Fatal(err)
	}
	if b1.String() != b2.String() {
		Te.Error("two writes of the same document differ")
	}
	back, err := Parse(bytes.NewReader(b1.Bytes()))
	if err != nil {
		Te.Fatalf("written document does not parse back: %v\n%s", err, b1.String())
	}
	block := back.Block("out")
	if block == nil {
		Te.Fatal("block lost in round trip")
	}
	if v, _ := block.Item("_cell.length_a"); v != "50.0" {
		Te.Errorf("item lost in round trip: %q", v)
	}
	loop := block.LoopWithTag("_x.a")
	if loop == nil || len(loop.Rows) != 2 || loop.Rows[0][1] != "a value" {
		Te.Errorf("loop mangled in round trip: %+v", loop)
	}
}

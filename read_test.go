/*
 * read_test.go, part of goprep.
 *
 *
 * Copyright 2024 Raul Mera <rmeraaatacademicosdotutadotcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 * goprep is developed at Universidad de Tarapaca (UTA)
 *
 */

package prep

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func pdbAtomLine(serial int, name, resname, chain string, seq int, x, y, z float64, element string) string {
	return fmt.Sprintf("ATOM  %5d  %-3s %3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s\n",
		serial, name, resname, chain, seq, x, y, z, 1.0, 20.0, element)
}

func samplePDB() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("CRYST1%9.3f%9.3f%9.3f%7.2f%7.2f%7.2f P 1\n", 50.0, 60.0, 70.0, 90.0, 90.0, 90.0))
	b.WriteString(fmt.Sprintf("%-59s%6s %6s %5s\n", "SSBOND   1 CYS A    6    CYS A   11", "1555", "1555", "2.04"))
	b.WriteString("CISPEP   1 ALA A    2    GLY A    3\n")
	b.WriteString(pdbAtomLine(1, "N", "ALA", "A", 2, 1.0, 2.0, 3.0, "N"))
	b.WriteString(pdbAtomLine(2, "CA", "ALA", "A", 2, 2.0, 2.0, 3.0, "C"))
	b.WriteString(pdbAtomLine(3, "N", "GLY", "A", 3, 3.5, 2.0, 3.0, "N"))
	b.WriteString(pdbAtomLine(4, "SG", "CYS", "A", 6, 9.0, 9.0, 9.0, "S"))
	b.WriteString("TER\n")
	b.WriteString(pdbAtomLine(5, "O", "HOH", "B", 1, 20.0, 20.0, 20.0, "O"))
	b.WriteString("END\n")
	return b.String()
}

func TestPDBRead(Te *testing.T) {
	st, err := PDBRead(strings.NewReader(samplePDB()))
	if err != nil {
		Te.Fatal(err)
	}
	model, err := st.FirstModel()
	if err != nil {
		Te.Fatal(err)
	}
	if len(model.Chains) != 2 {
		Te.Fatalf("expected 2 chains, got %d", len(model.Chains))
	}
	if model.AtomCount() != 5 {
		Te.Errorf("expected 5 atoms, got %d", model.AtomCount())
	}
	if !st.Cell.IsSet() || st.Cell.A != 50.0 {
		Te.Errorf("cell not read: %+v", st.Cell)
	}
	ala := model.Chain("A").Residue(2, 0)
	if ala == nil || ala.Name != "ALA" || ala.Atom("CA") == nil {
		Te.Fatalf("residue A/2 not read correctly: %v", ala)
	}
	if ca := ala.Atom("CA"); ca.Element != "C" || ca.Pos.X != 2.0 {
		Te.Errorf("CA atom misparsed: %+v", ca)
	}
	//name order follows first appearance
	names := model.AllResidueNames()
	want := []string{"ALA", "GLY", "CYS", "HOH"}
	if len(names) != len(want) {
		Te.Fatalf("residue names: got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			Te.Fatalf("residue names: got %v, want %v", names, want)
		}
	}
	if len(st.Connections) != 1 {
		Te.Fatalf("expected 1 connection, got %d", len(st.Connections))
	}
	conn := st.Connections[0]
	if conn.Type != ConnDisulf || conn.Partner1.AtomName != "SG" || conn.Partner2.ResSeq != 11 {
		Te.Errorf("SSBOND misparsed: %+v", conn)
	}
	gly := model.Chain("A").Residue(3, 0)
	if gly == nil || !gly.Cis {
		Te.Error("CISPEP record did not set the cis flag on GLY 3")
	}
	if ala.Cis {
		Te.Error("cis flag set on the wrong residue")
	}
}

func TestPDBReadNoAtoms(Te *testing.T) {
	st, err := PDBRead(strings.NewReader("HEADER    TEST\nEND\n"))
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := st.FirstModel(); err == nil {
		Te.Error("an atom-less file should yield no model")
	}
}

const sampleCIF = `data_test
_cell.length_a 50.0
_cell.length_b 60.0
_cell.length_c 70.0
_cell.angle_alpha 90.0
_cell.angle_beta 90.0
_cell.angle_gamma 90.0
loop_
_atom_site.group_PDB
_atom_site.id
_atom_site.type_symbol
_atom_site.label_atom_id
_atom_site.label_comp_id
_atom_site.auth_asym_id
_atom_site.auth_seq_id
_atom_site.Cartn_x
_atom_site.Cartn_y
_atom_site.Cartn_z
_atom_site.occupancy
_atom_site.B_iso_or_equiv
_atom_site.pdbx_PDB_model_num
ATOM   1 N N   ALA A 2 1.0 2.0 3.0 1.00 20.0 1
ATOM   2 C CA  ALA A 2 2.0 2.0 3.0 1.00 20.0 1
HETATM 3 ZN ZN  ZN A 90 9.0 9.0 9.0 1.00 30.0 1
loop_
_struct_conn.id
_struct_conn.conn_type_id
_struct_conn.ptnr1_auth_asym_id
_struct_conn.ptnr1_auth_comp_id
_struct_conn.ptnr1_auth_seq_id
_struct_conn.ptnr1_label_atom_id
_struct_conn.ptnr1_symmetry
_struct_conn.ptnr2_auth_asym_id
_struct_conn.ptnr2_auth_comp_id
_struct_conn.ptnr2_auth_seq_id
_struct_conn.ptnr2_label_atom_id
_struct_conn.ptnr2_symmetry
_struct_conn.pdbx_dist_value
metalc1 metalc A ALA 2 N 1_555 A ZN 90 ZN 2_555 2.1
`

func TestCIFRead(Te *testing.T) {
	st, doc, err := CIFRead(strings.NewReader(sampleCIF))
	if err != nil {
		Te.Fatal(err)
	}
	if doc == nil {
		Te.Fatal("CIFRead must return the parsed document")
	}
	model, err := st.FirstModel()
	if err != nil {
		Te.Fatal(err)
	}
	if model.AtomCount() != 3 {
		Te.Fatalf("expected 3 atoms, got %d", model.AtomCount())
	}
	zn := model.Chain("A").Residue(90, 0)
	if zn == nil || !zn.Het {
		Te.Fatalf("HETATM residue misread: %v", zn)
	}
	if at := zn.Atom("ZN"); at == nil || at.Element != "Zn" {
		Te.Errorf("Zn element not normalized: %+v", zn.Atoms)
	}
	if len(st.Connections) != 1 {
		Te.Fatalf("expected 1 connection, got %d", len(st.Connections))
	}
	conn := st.Connections[0]
	if conn.Type != ConnMetal {
		Te.Errorf("expected metalc, got %v", conn.Type)
	}
	if conn.Asu != AsuDifferent {
		Te.Error("mismatched symmetry codes should mark the connection cross-asu")
	}
	if conn.ReportedDistance != 2.1 {
		Te.Errorf("distance: got %f", conn.ReportedDistance)
	}
}

func TestDetectFormat(Te *testing.T) {
	if f := DetectFormat("x.pdb", nil); f != FormatPDB {
		Te.Error("pdb extension not detected")
	}
	if f := DetectFormat("x.cif.gz", nil); f != FormatMMCIF {
		Te.Error("cif.gz extension not detected")
	}
	if f := DetectFormat("x", []byte("data_foo\nloop_\n")); f != FormatMMCIF {
		Te.Error("data_ sniffing failed")
	}
	if f := DetectFormat("x", []byte("ATOM      1  N   ALA\n")); f != FormatPDB {
		Te.Error("non-cif content should fall back to PDB")
	}
}

//TestReadStructureFileGz writes a gzipped PDB to a temporary directory and
//reads it back through the format/compression detection path.
func TestReadStructureFileGz(Te *testing.T) {
	dir := Te.TempDir()
	path := filepath.Join(dir, "sample.pdb.gz")
	f, err := os.Create(path)
	if err != nil {
		Te.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	if _, err := io.WriteString(gz, samplePDB()); err != nil {
		Te.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		Te.Fatal(err)
	}
	if err := f.Close(); err != nil {
		Te.Fatal(err)
	}
	st, doc, err := ReadStructureFile(path)
	if err != nil {
		Te.Fatal(err)
	}
	if doc != nil {
		Te.Error("PDB input should not produce a cif document")
	}
	model, err := st.FirstModel()
	if err != nil {
		Te.Fatal(err)
	}
	if model.AtomCount() != 5 {
		Te.Errorf("expected 5 atoms after decompression, got %d", model.AtomCount())
	}
}

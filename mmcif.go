/*
 * mmcif.go, part of goprep.
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
	"strconv"
	"strings"

	"github.com/rmera/goprep/cif"
)

//cifcol looks up a column index for tag, falling back to alt (the
//label_/auth_ pairs of the mmCIF scheme).
func cifcol(loop *cif.Loop, tag, alt string) int {
	if i := loop.Column(tag); i >= 0 {
		return i
	}
	return loop.Column(alt)
}

func cifval(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	v := row[i]
	if v == "." || v == "?" {
		return ""
	}
	return v
}

//CIFToStructure builds a Structure from a parsed mmCIF document. Only the
//first data block is considered, which is what coordinate files contain.
func CIFToStructure(doc *cif.Document) (*Structure, error) {
	if len(doc.Blocks) == 0 {
		return nil, NewError("Empty mmCIF document", "CIFToStructure")
	}
	block := doc.Blocks[0]
	st := &Structure{Name: block.Name, Cell: &UnitCell{}}
	readCIFCell(block, st)
	if err := readCIFAtoms(block, st); err != nil {
		return nil, errDecorate(err, "CIFToStructure")
	}
	readCIFConnections(block, st)
	return st, nil
}

func readCIFCell(block *cif.Block, st *Structure) {
	g := func(tag string) float64 {
		s, ok := block.Item(tag)
		if !ok {
			return 0
		}
		v, _ := strconv.ParseFloat(s, 64)
		return v
	}
	a := g("_cell.length_a")
	if a > 0 {
		st.Cell = NewUnitCell(a, g("_cell.length_b"), g("_cell.length_c"),
			g("_cell.angle_alpha"), g("_cell.angle_beta"), g("_cell.angle_gamma"))
	}
}

func readCIFAtoms(block *cif.Block, st *Structure) error {
	loop := block.LoopWithTag("_atom_site.cartn_x")
	if loop == nil {
		return NewError("No _atom_site loop in the mmCIF block", "readCIFAtoms")
	}
	ixX := loop.Column("_atom_site.cartn_x")
	ixY := loop.Column("_atom_site.cartn_y")
	ixZ := loop.Column("_atom_site.cartn_z")
	ixName := cifcol(loop, "_atom_site.auth_atom_id", "_atom_site.label_atom_id")
	ixComp := cifcol(loop, "_atom_site.auth_comp_id", "_atom_site.label_comp_id")
	ixChain := cifcol(loop, "_atom_site.auth_asym_id", "_atom_site.label_asym_id")
	ixSeq := cifcol(loop, "_atom_site.auth_seq_id", "_atom_site.label_seq_id")
	ixModel := loop.Column("_atom_site.pdbx_pdb_model_num")
	ixSymbol := loop.Column("_atom_site.type_symbol")
	ixGroup := loop.Column("_atom_site.group_pdb")
	ixID := loop.Column("_atom_site.id")
	ixOcc := loop.Column("_atom_site.occupancy")
	ixBfac := loop.Column("_atom_site.b_iso_or_equiv")
	ixIns := loop.Column("_atom_site.pdbx_pdb_ins_code")
	currentmodel := ""
	var model *Model
	var state *pdbState
	for nrow, row := range loop.Rows {
		if m := cifval(row, ixModel); m != currentmodel {
			currentmodel = m
			model = &Model{}
			st.Models = append(st.Models, model)
			state = &pdbState{}
		} else if model == nil {
			model = &Model{}
			st.Models = append(st.Models, model)
			state = &pdbState{}
		}
		at := new(Atom)
		var err [3]error
		at.Pos.X, err[0] = strconv.ParseFloat(cifval(row, ixX), 64)
		at.Pos.Y, err[1] = strconv.ParseFloat(cifval(row, ixY), 64)
		at.Pos.Z, err[2] = strconv.ParseFloat(cifval(row, ixZ), 64)
		for _, e := range err {
			if e != nil {
				return CError{msg: fmt.Sprintf("Couldn't parse coordinates in _atom_site row %d", nrow+1), deco: []string{"readCIFAtoms"}}
			}
		}
		at.Name = cifval(row, ixName)
		at.Element = cifval(row, ixSymbol)
		if len(at.Element) == 2 {
			at.Element = at.Element[0:1] + strings.ToLower(at.Element[1:2])
		}
		if at.Element == "" {
			at.Element, _ = SymbolFromName(at.Name)
		}
		at.Het = cifval(row, ixGroup) != "ATOM"
		at.SerialID, _ = strconv.Atoi(cifval(row, ixID))
		at.Occupancy, _ = strconv.ParseFloat(cifval(row, ixOcc), 64)
		at.Bfactor, _ = strconv.ParseFloat(cifval(row, ixBfac), 64)
		seqid, errseq := strconv.Atoi(cifval(row, ixSeq))
		if errseq != nil {
			return CError{msg: fmt.Sprintf("Couldn't parse residue number in _atom_site row %d", nrow+1), deco: []string{"readCIFAtoms"}}
		}
		var icode byte
		if ins := cifval(row, ixIns); ins != "" {
			icode = ins[0]
		}
		state.place(model, cifval(row, ixChain), cifval(row, ixComp), seqid, icode, at)
	}
	return nil
}

func readCIFConnections(block *cif.Block, st *Structure) {
	loop := block.LoopWithTag("_struct_conn.conn_type_id")
	if loop == nil {
		return
	}
	ixID := loop.Column("_struct_conn.id")
	ixType := loop.Column("_struct_conn.conn_type_id")
	ixDist := loop.Column("_struct_conn.pdbx_dist_value")
	partner := func(row []string, n string) AtomAddress {
		seq, _ := strconv.Atoi(cifval(row, cifcol(loop,
			"_struct_conn.ptnr"+n+"_auth_seq_id", "_struct_conn.ptnr"+n+"_label_seq_id")))
		var icode byte
		if ins := cifval(row, loop.Column("_struct_conn.pdbx_ptnr"+n+"_pdb_ins_code")); ins != "" {
			icode = ins[0]
		}
		return AtomAddress{
			Chain: cifval(row, cifcol(loop,
				"_struct_conn.ptnr"+n+"_auth_asym_id", "_struct_conn.ptnr"+n+"_label_asym_id")),
			ResName: cifval(row, cifcol(loop,
				"_struct_conn.ptnr"+n+"_auth_comp_id", "_struct_conn.ptnr"+n+"_label_comp_id")),
			ResSeq:   seq,
			ICode:    icode,
			AtomName: cifval(row, loop.Column("_struct_conn.ptnr"+n+"_label_atom_id")),
		}
	}
	for _, row := range loop.Rows {
		conn := &Connection{
			Name:     cifval(row, ixID),
			Partner1: partner(row, "1"),
			Partner2: partner(row, "2"),
		}
		switch strings.ToLower(cifval(row, ixType)) {
		case "covale":
			conn.Type = ConnCovalent
		case "disulf":
			conn.Type = ConnDisulf
		case "metalc":
			conn.Type = ConnMetal
		case "hydrog":
			conn.Type = ConnHydrog
		}
		s1 := cifval(row, loop.Column("_struct_conn.ptnr1_symmetry"))
		s2 := cifval(row, loop.Column("_struct_conn.ptnr2_symmetry"))
		if s1 != s2 {
			conn.Asu = AsuDifferent
		}
		conn.ReportedDistance, _ = strconv.ParseFloat(cifval(row, ixDist), 64)
		st.AddConnection(conn)
	}
}

//CIFRead parses an mmCIF coordinate file and returns both the structure and
//the raw document, which may carry embedded restraint-dictionary blocks.
func CIFRead(r io.Reader) (*Structure, *cif.Document, error) {
	doc, err := cif.Parse(r)
	if err != nil {
		return nil, nil, errDecorate(err, "CIFRead")
	}
	st, err := CIFToStructure(doc)
	if err != nil {
		return nil, nil, errDecorate(err, "CIFRead")
	}
	return st, doc, nil
}

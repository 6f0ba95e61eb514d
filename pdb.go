/*
 * pdb.go, part of goprep.
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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

//pdbField extracts the trimmed column range [from,to) of a PDB record line,
//or "" if the line is too short.
func pdbField(line string, from, to int) string {
	if len(line) < to {
		if len(line) <= from {
			return ""
		}
		to = len(line)
	}
	return strings.TrimSpace(line[from:to])
}

//Parses a valid ATOM or HETATM line of a PDB file and appends the atom to
//the structure under construction.
func readFullPDBLine(line string, model *Model, state *pdbState) error {
	err := make([]error, 3)
	atom := new(Atom)
	atom.Het = strings.HasPrefix(line, "HETATM")
	atom.SerialID, _ = strconv.Atoi(pdbField(line, 6, 11))
	atom.Name = pdbField(line, 12, 16)
	//PDB says that pos. 17 is for other thing but it is
	//used for residue name in many cases
	resname := pdbField(line, 17, 20)
	chain := pdbField(line, 21, 22)
	seqid, errseq := strconv.Atoi(pdbField(line, 22, 26))
	if errseq != nil {
		return CError{msg: fmt.Sprintf("Couldn't parse residue number from %q", line), deco: []string{"readFullPDBLine"}}
	}
	var icode byte
	if len(line) > 26 && line[26] != ' ' {
		icode = line[26]
	}
	atom.Pos.X, err[0] = strconv.ParseFloat(pdbField(line, 30, 38), 64)
	atom.Pos.Y, err[1] = strconv.ParseFloat(pdbField(line, 38, 46), 64)
	atom.Pos.Z, err[2] = strconv.ParseFloat(pdbField(line, 46, 54), 64)
	for _, e := range err {
		if e != nil {
			return CError{msg: fmt.Sprintf("Couldn't parse coordinates from %q", line), deco: []string{"readFullPDBLine"}}
		}
	}
	//occupancy and b-factor are nice to have but not critical
	atom.Occupancy, _ = strconv.ParseFloat(pdbField(line, 54, 60), 64)
	atom.Bfactor, _ = strconv.ParseFloat(pdbField(line, 60, 66), 64)
	atom.Element = pdbField(line, 76, 78)
	if len(atom.Element) == 2 {
		atom.Element = atom.Element[0:1] + strings.ToLower(atom.Element[1:2])
	}
	if atom.Element == "" {
		atom.Element, _ = SymbolFromName(atom.Name)
	}
	if ch := pdbField(line, 78, 80); len(ch) == 2 {
		q, e := strconv.Atoi(string(ch[0]))
		if e == nil {
			atom.Charge = float64(q)
			if ch[1] == '-' {
				atom.Charge = -atom.Charge
			}
		}
	}
	state.place(model, chain, resname, seqid, icode, atom)
	return nil
}

//pdbState tracks the chain/residue the reader is currently filling.
type pdbState struct {
	chain *Chain
	res   *Residue
}

func (s *pdbState) place(model *Model, chain, resname string, seqid int, icode byte, atom *Atom) {
	if s.chain == nil || s.chain.Name != chain {
		s.chain = model.Chain(chain)
		if s.chain == nil {
			s.chain = &Chain{Name: chain}
			model.Chains = append(model.Chains, s.chain)
		}
		s.res = nil
	}
	if s.res == nil || s.res.SeqID != seqid || s.res.ICode != icode || s.res.Name != resname {
		s.res = &Residue{Name: resname, SeqID: seqid, ICode: icode, Het: atom.Het}
		s.chain.Residues = append(s.chain.Residues, s.res)
	}
	s.res.Atoms = append(s.res.Atoms, atom)
}

func readCryst1(line string, st *Structure) {
	f := func(from, to int) float64 {
		v, _ := strconv.ParseFloat(pdbField(line, from, to), 64)
		return v
	}
	st.Cell = NewUnitCell(f(6, 15), f(15, 24), f(24, 33), f(33, 40), f(40, 47), f(47, 54))
}

func readSSBond(line string, st *Structure) {
	seq1, _ := strconv.Atoi(pdbField(line, 17, 21))
	seq2, _ := strconv.Atoi(pdbField(line, 31, 35))
	var ic1, ic2 byte
	if len(line) > 21 && line[21] != ' ' {
		ic1 = line[21]
	}
	if len(line) > 35 && line[35] != ' ' {
		ic2 = line[35]
	}
	conn := &Connection{
		Name: fmt.Sprintf("disulf%s", pdbField(line, 7, 10)),
		Type: ConnDisulf,
		Partner1: AtomAddress{Chain: pdbField(line, 15, 16), ResName: pdbField(line, 11, 14),
			ResSeq: seq1, ICode: ic1, AtomName: "SG"},
		Partner2: AtomAddress{Chain: pdbField(line, 29, 30), ResName: pdbField(line, 25, 28),
			ResSeq: seq2, ICode: ic2, AtomName: "SG"},
	}
	if s1, s2 := pdbField(line, 59, 65), pdbField(line, 66, 72); s1 != s2 {
		conn.Asu = AsuDifferent
	}
	conn.ReportedDistance, _ = strconv.ParseFloat(pdbField(line, 73, 78), 64)
	st.AddConnection(conn)
}

func readLink(line string, st *Structure, counter int) {
	seq1, _ := strconv.Atoi(pdbField(line, 22, 26))
	seq2, _ := strconv.Atoi(pdbField(line, 52, 56))
	var ic1, ic2 byte
	if len(line) > 26 && line[26] != ' ' {
		ic1 = line[26]
	}
	if len(line) > 56 && line[56] != ' ' {
		ic2 = line[56]
	}
	conn := &Connection{
		Name: fmt.Sprintf("link%d", counter),
		Type: ConnCovalent,
		Partner1: AtomAddress{Chain: pdbField(line, 21, 22), ResName: pdbField(line, 17, 20),
			ResSeq: seq1, ICode: ic1, AtomName: pdbField(line, 12, 16)},
		Partner2: AtomAddress{Chain: pdbField(line, 51, 52), ResName: pdbField(line, 47, 50),
			ResSeq: seq2, ICode: ic2, AtomName: pdbField(line, 42, 46)},
	}
	if s1, s2 := pdbField(line, 59, 65), pdbField(line, 66, 72); s1 != s2 {
		conn.Asu = AsuDifferent
	}
	conn.ReportedDistance, _ = strconv.ParseFloat(pdbField(line, 73, 78), 64)
	st.AddConnection(conn)
}

func readCisPep(line string, st *Structure) {
	//marks the second residue of the record: the peptide bond from its
	//predecessor is cis.
	if len(st.Models) == 0 {
		return
	}
	chain := st.Models[0].Chain(pdbField(line, 29, 30))
	if chain == nil {
		return
	}
	seq, err := strconv.Atoi(pdbField(line, 31, 35))
	if err != nil {
		return
	}
	var icode byte
	if len(line) > 35 && line[35] != ' ' {
		icode = line[35]
	}
	if res := chain.Residue(seq, icode); res != nil {
		res.Cis = true
	}
}

//PDBRead reads a PDB-format structure from r. All models are read; atom
//records are parsed in full for each model, as atoms carry their own
//coordinates. LINK, SSBOND and CRYST1 records become structure-level
//annotations, CISPEP records set per-residue cis flags.
func PDBRead(r io.Reader) (*Structure, error) {
	st := &Structure{Cell: &UnitCell{}}
	model := &Model{}
	st.Models = append(st.Models, model)
	state := &pdbState{}
	linkCount := 0
	var cispeps []string
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			break
		}
		//icode columns are read positionally, a trailing newline would
		//masquerade as one
		line = strings.TrimRight(line, "\r\n")
		switch {
		case strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM"):
			if err2 := readFullPDBLine(line, model, state); err2 != nil {
				return nil, errDecorate(err2, "PDBRead")
			}
		case strings.HasPrefix(line, "MODEL"):
			n, _ := strconv.Atoi(pdbField(line, 6, 14))
			if n > 1 {
				model = &Model{}
				st.Models = append(st.Models, model)
				state = &pdbState{}
			}
		case strings.HasPrefix(line, "TER"):
			state.chain = nil
			state.res = nil
		case strings.HasPrefix(line, "CRYST1"):
			readCryst1(line, st)
		case strings.HasPrefix(line, "SSBOND"):
			readSSBond(line, st)
		case strings.HasPrefix(line, "LINK"):
			linkCount++
			readLink(line, st, linkCount)
		case strings.HasPrefix(line, "CISPEP"):
			//deferred: the residues may not have been read yet
			cispeps = append(cispeps, line)
		case strings.HasPrefix(line, "HEADER"):
			st.Name = pdbField(line, 62, 66)
		}
		if err != nil {
			break
		}
	}
	for _, line := range cispeps {
		readCisPep(line, st)
	}
	if st.Models[0].AtomCount() == 0 {
		st.Models = nil //an atom-less model is no model at all
	}
	return st, nil
}

/*
 * structure.go, part of goprep.
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
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

//Atom contains the data for one atom read from a coordinate file. Unlike in
//a trajectory-oriented representation, the position is kept in the atom
//itself: a refinement model has exactly one set of coordinates.
type Atom struct {
	Name      string
	Element   string
	Pos       r3.Vec
	Occupancy float64
	Bfactor   float64
	Charge    float64
	Het       bool //was it a HETATM record in the PDB file?
	Calc      bool //position computed by the pipeline, not read from the input
	SerialID  int
}

//Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	newat := *A
	return &newat
}

//IsHydrogen is true for H and D atoms.
func (A *Atom) IsHydrogen() bool {
	return A.Element == "H" || A.Element == "D"
}

//PartialOccupancy is true if the atom has occupancy below 1.
func (A *Atom) PartialOccupancy() bool {
	return A.Occupancy < 1.0
}

//Residue is an ordered set of atoms with a chemical-component name, a
//sequence number and an insertion code.
type Residue struct {
	Name  string
	SeqID int
	ICode byte
	Atoms []*Atom
	//Cis marks the peptide bond between this residue and the previous
	//one in the chain as cis.
	Cis bool
	Het bool
}

//Atom returns the atom named name, or nil.
func (R *Residue) Atom(name string) *Atom {
	for _, at := range R.Atoms {
		if at.Name == name {
			return at
		}
	}
	return nil
}

func (R *Residue) String() string {
	if R.ICode != 0 {
		return fmt.Sprintf("%s %d%c", R.Name, R.SeqID, R.ICode)
	}
	return fmt.Sprintf("%s %d", R.Name, R.SeqID)
}

//Chain is a named, ordered sequence of residues.
type Chain struct {
	Name     string
	Residues []*Residue
}

//Residue returns the residue with the given sequence number and insertion
//code, or nil.
func (C *Chain) Residue(seqid int, icode byte) *Residue {
	for _, r := range C.Residues {
		if r.SeqID == seqid && r.ICode == icode {
			return r
		}
	}
	return nil
}

//Model is one set of chains. Multi-model files (NMR ensembles) produce
//several models, of which the preparation pipeline uses the first.
type Model struct {
	Chains []*Chain
}

//Chain returns the chain named name, or nil.
func (M *Model) Chain(name string) *Chain {
	for _, c := range M.Chains {
		if c.Name == name {
			return c
		}
	}
	return nil
}

//AllResidueNames returns the set of residue names present in the model, each
//name once, in order of first appearance. The order is stable for a given
//input, which keeps everything downstream (library lookups, error messages)
//reproducible.
func (M *Model) AllResidueNames() []string {
	seen := make(map[string]bool)
	names := make([]string, 0, 20)
	for _, c := range M.Chains {
		for _, r := range c.Residues {
			if !seen[r.Name] {
				seen[r.Name] = true
				names = append(names, r.Name)
			}
		}
	}
	return names
}

//AtomCount returns the total number of atoms in the model.
func (M *Model) AtomCount() int {
	n := 0
	for _, c := range M.Chains {
		for _, r := range c.Residues {
			n += len(r.Atoms)
		}
	}
	return n
}

//AtomAddress identifies one atom in a model by names, not pointers, so it
//stays valid across copies and can be serialized.
type AtomAddress struct {
	Chain    string
	ResName  string
	ResSeq   int
	ICode    byte
	AtomName string
}

func (a AtomAddress) String() string {
	icode := ""
	if a.ICode != 0 {
		icode = string(a.ICode)
	}
	return fmt.Sprintf("%s/%s %d%s/%s", a.Chain, a.ResName, a.ResSeq, icode, a.AtomName)
}

//ConnType is the chemical kind of a recorded connection.
type ConnType int

const (
	ConnUnknown ConnType = iota
	ConnCovalent
	ConnDisulf
	ConnMetal
	ConnHydrog
)

func (t ConnType) String() string {
	switch t {
	case ConnCovalent:
		return "covale"
	case ConnDisulf:
		return "disulf"
	case ConnMetal:
		return "metalc"
	case ConnHydrog:
		return "hydrog"
	}
	return "unknown"
}

//Asu says whether the two partners of a connection belong to the same
//asymmetric unit or to symmetry-related copies.
type Asu int

const (
	AsuSame Asu = iota
	AsuDifferent
)

//Connection is a bond-like link between two atoms, as recorded in the input
//(LINK/SSBOND records, struct_conn) or found by link discovery. Connections
//are only ever appended to a structure, never edited in place.
type Connection struct {
	Name             string
	Type             ConnType
	Asu              Asu
	Partner1         AtomAddress
	Partner2         AtomAddress
	ReportedDistance float64
}

//UnitCell holds crystallographic cell parameters. Lengths in A, angles in
//degrees. A zero A means "no cell": spatial searches then skip periodic
//images.
type UnitCell struct {
	A, B, C            float64
	Alpha, Beta, Gamma float64
	orth, frac         [3][3]float64
	set                bool
}

//NewUnitCell builds a cell and precomputes the orthogonalization and
//fractionalization matrices.
func NewUnitCell(a, b, c, alpha, beta, gamma float64) *UnitCell {
	u := &UnitCell{A: a, B: b, C: c, Alpha: alpha, Beta: beta, Gamma: gamma}
	if a <= 0 || b <= 0 || c <= 0 {
		return u
	}
	deg2rad := math.Pi / 180
	ca := math.Cos(alpha * deg2rad)
	cb := math.Cos(beta * deg2rad)
	cg := math.Cos(gamma * deg2rad)
	sg := math.Sin(gamma * deg2rad)
	//standard PDB orthogonalization convention
	v := math.Sqrt(1 - ca*ca - cb*cb - cg*cg + 2*ca*cb*cg)
	u.orth = [3][3]float64{
		{a, b * cg, c * cb},
		{0, b * sg, c * (ca - cb*cg) / sg},
		{0, 0, c * v / sg},
	}
	//analytic inverse of the upper-triangular matrix above
	o := u.orth
	u.frac = [3][3]float64{
		{1 / o[0][0], -o[0][1] / (o[0][0] * o[1][1]), (o[0][1]*o[1][2] - o[0][2]*o[1][1]) / (o[0][0] * o[1][1] * o[2][2])},
		{0, 1 / o[1][1], -o[1][2] / (o[1][1] * o[2][2])},
		{0, 0, 1 / o[2][2]},
	}
	u.set = true
	return u
}

//IsSet is true when actual cell parameters are available.
func (u *UnitCell) IsSet() bool {
	return u != nil && u.set
}

func matvec(m [3][3]float64, v r3.Vec) r3.Vec {
	return r3.Vec{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

//Orthogonalize converts fractional to cartesian coordinates.
func (u *UnitCell) Orthogonalize(v r3.Vec) r3.Vec {
	return matvec(u.orth, v)
}

//Fractionalize converts cartesian to fractional coordinates.
func (u *UnitCell) Fractionalize(v r3.Vec) r3.Vec {
	return matvec(u.frac, v)
}

//Structure is the root of the hierarchy: models plus structure-level
//annotations (cell, recorded connections).
type Structure struct {
	Name        string
	Cell        *UnitCell
	Models      []*Model
	Connections []*Connection
}

//FirstModel returns the first model, or an error if the structure has none.
func (S *Structure) FirstModel() (*Model, error) {
	if len(S.Models) == 0 {
		return nil, NewError("No models found in the structure", "FirstModel")
	}
	return S.Models[0], nil
}

//FindConnection returns the first connection linking the two addresses, in
//either order, or nil.
func (S *Structure) FindConnection(a1, a2 AtomAddress) *Connection {
	for _, conn := range S.Connections {
		if (conn.Partner1 == a1 && conn.Partner2 == a2) ||
			(conn.Partner1 == a2 && conn.Partner2 == a1) {
			return conn
		}
	}
	return nil
}

//AddConnection appends a connection. Connections are append-only.
func (S *Structure) AddConnection(conn *Connection) {
	S.Connections = append(S.Connections, conn)
}

/*
 * topo.go, part of goprep.
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

//Package topo builds the restraint topology of a prepared structure: the
//per-residue restraints from the monomer dictionary, the polymer links
//between consecutive residues, the extra links recorded as connections,
//plus the model edits that precede all that (hydrogen normalization,
//cis/trans classification). It also writes the result as a Refmac-style
//intermediate (crd) mmCIF file.
package topo

import (
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	prep "github.com/rmera/goprep"
	"github.com/rmera/goprep/monlib"
)

//Reference geometry of the polymer links. A candidate polymer bond longer
//than maxPolymerGap is taken as a chain break and not restrained.
const (
	peptideBondIdeal = 1.329
	peptideBondEsd   = 0.014
	phosphateIdeal   = 1.607
	phosphateEsd     = 0.015
	linkBondEsd      = 0.02
	maxPolymerGap    = 2.5
)

//Bond is one distance restraint of the final topology, with the atoms it
//applies to resolved both by pointer and by address.
type Bond struct {
	A1, A2     *prep.Atom
	Ad1, Ad2   prep.AtomAddress
	Ideal, Esd float64
	Observed   float64
	//Link names the polymer link or connection that produced the bond.
	//Empty for bonds internal to a monomer.
	Link      string
	Synthetic bool
}

//Angle is one angle restraint of the final topology. Ideal in degrees.
type Angle struct {
	A1, A2, A3 *prep.Atom
	Ideal, Esd float64
	Synthetic  bool
}

//Topology is the applied restraint set for one model.
type Topology struct {
	Bonds  []Bond
	Angles []Angle
}

//Builder assembles a Topology from a structure and a monomer dictionary.
type Builder struct {
	Lib       *monlib.MonLib
	Hydrogens HydrogenChange
	//AutoCis recomputes the cis flags from the coordinates; when false the
	//flags read from the input are kept.
	AutoCis bool
	Verbose bool
	Out     io.Writer //defaults to os.Stdout
}

func (b *Builder) out() io.Writer {
	if b.Out != nil {
		return b.Out
	}
	return os.Stdout
}

func addressOf(chain *prep.Chain, res *prep.Residue, atom string) prep.AtomAddress {
	return prep.AtomAddress{
		Chain:    chain.Name,
		ResName:  res.Name,
		ResSeq:   res.SeqID,
		ICode:    res.ICode,
		AtomName: atom,
	}
}

//Build edits the first model in place (hydrogens, cis flags) and derives
//the restraint topology from it. Every residue of the model must have a
//definition in the dictionary; resolution is expected to have run first.
func (b *Builder) Build(st *prep.Structure) (*Topology, error) {
	model, err := st.FirstModel()
	if err != nil {
		return nil, errDecorate(err, "Build")
	}
	NormalizeHydrogens(model, b.Lib, b.Hydrogens)
	if b.AutoCis {
		AssignCisFlags(model)
	}
	topo := &Topology{}
	linkBonds := 0
	for _, chain := range model.Chains {
		for _, res := range chain.Residues {
			def := b.Lib.Get(res.Name)
			if def == nil {
				return nil, prep.NewError("Missing monomer description: "+res.Name, "Build")
			}
			b.applyMonomer(topo, chain, res, def)
		}
		linkBonds += b.applyPolymerLinks(topo, chain)
	}
	n, err := b.applyConnections(topo, model, st)
	if err != nil {
		return nil, errDecorate(err, "Build")
	}
	linkBonds += n
	if b.Verbose {
		fmt.Fprintf(b.out(), "Topology: %d bond restraints (%d from links), %d angle restraints\n",
			len(topo.Bonds), linkBonds, len(topo.Angles))
	}
	return topo, nil
}

//applyMonomer instantiates the dictionary restraints on one residue. A
//restraint is applied only when every atom it names is present; absent
//atoms are a normal occurrence (terminal residues, unmodeled side chains)
//and are skipped silently.
func (b *Builder) applyMonomer(topo *Topology, chain *prep.Chain, res *prep.Residue, def *monlib.ChemComp) {
	for _, bd := range def.Bonds {
		a1 := res.Atom(bd.Atom1)
		a2 := res.Atom(bd.Atom2)
		if a1 == nil || a2 == nil {
			continue
		}
		topo.Bonds = append(topo.Bonds, Bond{
			A1: a1, A2: a2,
			Ad1:   addressOf(chain, res, a1.Name),
			Ad2:   addressOf(chain, res, a2.Name),
			Ideal: bd.Dist, Esd: bd.Esd,
			Observed:  r3.Norm(r3.Sub(a2.Pos, a1.Pos)),
			Synthetic: def.Synthetic,
		})
	}
	for _, an := range def.Angles {
		a1 := res.Atom(an.Atom1)
		a2 := res.Atom(an.Atom2)
		a3 := res.Atom(an.Atom3)
		if a1 == nil || a2 == nil || a3 == nil {
			continue
		}
		topo.Angles = append(topo.Angles, Angle{
			A1: a1, A2: a2, A3: a3,
			Ideal: an.Angle, Esd: an.Esd,
			Synthetic: def.Synthetic,
		})
	}
}

//applyPolymerLinks restrains the backbone bond between each pair of
//consecutive residues: peptide C-N, or phosphodiester O3'-P for nucleic
//acids. It returns the number of bonds added.
func (b *Builder) applyPolymerLinks(topo *Topology, chain *prep.Chain) int {
	added := 0
	for i := 1; i < len(chain.Residues); i++ {
		prev := chain.Residues[i-1]
		res := chain.Residues[i]
		a1, a2 := prev.Atom("C"), res.Atom("N")
		ideal, esd := peptideBondIdeal, peptideBondEsd
		link := "TRANS"
		if res.Cis {
			link = "CIS"
		}
		if a1 == nil || a2 == nil {
			a1, a2 = prev.Atom("O3'"), res.Atom("P")
			ideal, esd = phosphateIdeal, phosphateEsd
			link = "p"
		}
		if a1 == nil || a2 == nil {
			continue
		}
		dist := r3.Norm(r3.Sub(a2.Pos, a1.Pos))
		if dist > maxPolymerGap { //chain break
			continue
		}
		topo.Bonds = append(topo.Bonds, Bond{
			A1: a1, A2: a2,
			Ad1:   addressOf(chain, prev, a1.Name),
			Ad2:   addressOf(chain, res, a2.Name),
			Ideal: ideal, Esd: esd,
			Observed: dist,
			Link:     link,
		})
		added++
	}
	return added
}

//applyConnections restrains the bonds recorded as connections. A partner
//that can't be resolved in the model is an error: a connection naming a
//nonexistent atom means the input is inconsistent. For connections across
//asymmetric units the naive interatomic distance is meaningless and the
//distance reported with the connection is used instead.
func (b *Builder) applyConnections(topo *Topology, model *prep.Model, st *prep.Structure) (int, error) {
	added := 0
	for _, conn := range st.Connections {
		if conn.Type == prep.ConnHydrog {
			continue
		}
		a1, err := resolveAddress(model, conn.Partner1)
		if err != nil {
			return added, errDecorate(err, "applyConnections "+conn.Name)
		}
		a2, err := resolveAddress(model, conn.Partner2)
		if err != nil {
			return added, errDecorate(err, "applyConnections "+conn.Name)
		}
		dist := conn.ReportedDistance
		if conn.Asu == prep.AsuSame {
			dist = r3.Norm(r3.Sub(a2.Pos, a1.Pos))
		}
		ideal := dist
		if ideal <= 0 {
			ideal = prep.CovalentRadius(a1.Element) + prep.CovalentRadius(a2.Element)
		}
		topo.Bonds = append(topo.Bonds, Bond{
			A1: a1, A2: a2,
			Ad1: conn.Partner1, Ad2: conn.Partner2,
			Ideal: ideal, Esd: linkBondEsd,
			Observed: dist,
			Link:     conn.Name,
		})
		added++
	}
	return added, nil
}

func resolveAddress(model *prep.Model, a prep.AtomAddress) (*prep.Atom, error) {
	chain := model.Chain(a.Chain)
	if chain == nil {
		return nil, prep.NewError("No chain "+a.Chain+" for connection partner "+a.String(), "resolveAddress")
	}
	res := chain.Residue(a.ResSeq, a.ICode)
	if res == nil {
		return nil, prep.NewError("No residue for connection partner "+a.String(), "resolveAddress")
	}
	at := res.Atom(a.AtomName)
	if at == nil {
		return nil, prep.NewError("No atom for connection partner "+a.String(), "resolveAddress")
	}
	return at, nil
}

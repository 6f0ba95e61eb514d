package monlib

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	prep "github.com/rmera/goprep"
)

//esds for restraints derived from observed geometry. Loose on purpose:
//the observed coordinates are not reference chemistry.
const (
	synthBondEsd  = 0.02
	synthAngleEsd = 3.0
)

//FindMostCompleteResidue returns the residue instance with the given name
//that has the most atoms, or nil if the name does not occur in the model.
//Ties go to the first occurrence, which keeps synthesis reproducible.
func FindMostCompleteResidue(name string, model *prep.Model) *prep.Residue {
	var best *prep.Residue
	for _, chain := range model.Chains {
		for _, res := range chain.Residues {
			if res.Name == name && (best == nil || len(res.Atoms) > len(best.Atoms)) {
				best = res
			}
		}
	}
	return best
}

//FromResidue synthesizes a restraint template from one observed residue
//instance: the atom list is taken as is, bonds are inferred from
//interatomic distances and covalent radii, and angle restraints are
//generated for each bonded triple with the observed values as targets. No
//chemical knowledge beyond the per-element radii enters here, so the
//result is explicitly marked Synthetic. Residues with no atoms cannot be
//synthesized and yield an error.
func FromResidue(res *prep.Residue) (*ChemComp, error) {
	if len(res.Atoms) == 0 {
		return nil, prep.NewError("Can't synthesize restraints for an atom-less residue "+res.String(), "FromResidue")
	}
	comp := &ChemComp{Name: res.Name, Synthetic: true}
	for _, at := range res.Atoms {
		comp.Atoms = append(comp.Atoms, ChemCompAtom{Name: at.Name, Element: at.Element, Charge: at.Charge})
	}
	bonds := prep.InferBonds(res.Atoms)
	for _, b := range bonds {
		comp.Bonds = append(comp.Bonds, ChemCompBond{
			Atom1: res.Atoms[b.I].Name,
			Atom2: res.Atoms[b.J].Name,
			Dist:  b.Dist,
			Esd:   synthBondEsd,
		})
	}
	//an angle for every pair of bonds sharing an atom
	for i := range res.Atoms {
		var partners []int
		for _, b := range bonds {
			if b.I == i || b.J == i {
				partners = append(partners, b.Other(i))
			}
		}
		for x := 0; x < len(partners); x++ {
			for y := x + 1; y < len(partners); y++ {
				v1 := r3.Sub(res.Atoms[partners[x]].Pos, res.Atoms[i].Pos)
				v2 := r3.Sub(res.Atoms[partners[y]].Pos, res.Atoms[i].Pos)
				comp.Angles = append(comp.Angles, ChemCompAngle{
					Atom1: res.Atoms[partners[x]].Name,
					Atom2: res.Atoms[i].Name,
					Atom3: res.Atoms[partners[y]].Name,
					Angle: prep.Angle(v1, v2) * 180 / math.Pi,
					Esd:   synthAngleEsd,
				})
			}
		}
	}
	if err := comp.Consistent(); err != nil {
		return nil, err
	}
	return comp, nil
}

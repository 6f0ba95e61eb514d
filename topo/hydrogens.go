package topo

import (
	"gonum.org/v1/gonum/spatial/r3"

	prep "github.com/rmera/goprep"
	"github.com/rmera/goprep/monlib"
)

//HydrogenChange says what to do with hydrogen atoms before building the
//topology.
type HydrogenChange int

const (
	//ReAdd strips the hydrogens read from the input and generates new ones
	//on riding positions, except for waters. The default.
	ReAdd HydrogenChange = iota
	//Remove strips hydrogens and does not add any back.
	Remove
	//NoChange preserves the input hydrogens as they are.
	NoChange
)

func isWater(name string) bool {
	return name == "HOH" || name == "WAT" || name == "DOD"
}

//RemoveHydrogens strips every hydrogen (and deuterium) atom from the model.
func RemoveHydrogens(model *prep.Model) {
	for _, chain := range model.Chains {
		for _, res := range chain.Residues {
			kept := res.Atoms[:0]
			for _, at := range res.Atoms {
				if !at.IsHydrogen() {
					kept = append(kept, at)
				}
			}
			res.Atoms = kept
		}
	}
}

//ridingPosition derives a hydrogen position from its parent heavy atom:
//the hydrogen sits at the bond length from the parent, along the direction
//that points away from the parent's other bonded neighbors. With no other
//neighbor present there is no geometric information, and an arbitrary
//direction is as good as any.
func ridingPosition(parent *prep.Atom, neighbors []*prep.Atom, length float64) r3.Vec {
	dir := r3.Vec{X: 1}
	if len(neighbors) > 0 {
		sum := r3.Vec{}
		for _, nb := range neighbors {
			sum = r3.Add(sum, r3.Unit(r3.Sub(nb.Pos, parent.Pos)))
		}
		if r3.Norm(sum) > 1e-6 {
			dir = r3.Scale(-1, r3.Unit(sum))
		}
	}
	return r3.Add(parent.Pos, r3.Scale(length, dir))
}

//AddRidingHydrogens generates, for every non-water residue with a
//dictionary entry, the hydrogens the entry expects, positioned ridingly on
//their parent heavy atoms. Hydrogens whose parent atom is absent from the
//model are skipped. Occupancy and b-factor are inherited from the parent.
func AddRidingHydrogens(model *prep.Model, lib *monlib.MonLib) {
	for _, chain := range model.Chains {
		for _, res := range chain.Residues {
			if isWater(res.Name) {
				continue
			}
			def := lib.Get(res.Name)
			if def == nil {
				continue
			}
			for _, defat := range def.Atoms {
				if defat.Element != "H" && defat.Element != "D" {
					continue
				}
				if res.Atom(defat.Name) != nil {
					continue
				}
				bonds := def.BondsOf(defat.Name)
				if len(bonds) == 0 {
					continue
				}
				b := bonds[0] //hydrogens have exactly one bond
				parentName := b.Atom1
				if parentName == defat.Name {
					parentName = b.Atom2
				}
				parent := res.Atom(parentName)
				if parent == nil || parent.IsHydrogen() {
					continue
				}
				length := b.Dist
				if length <= 0 {
					length = prep.CovalentRadius("H") + prep.CovalentRadius(parent.Element)
				}
				var neighbors []*prep.Atom
				for _, pb := range def.BondsOf(parentName) {
					other := pb.Atom1
					if other == parentName {
						other = pb.Atom2
					}
					if other == defat.Name {
						continue
					}
					if at := res.Atom(other); at != nil {
						neighbors = append(neighbors, at)
					}
				}
				h := &prep.Atom{
					Name:      defat.Name,
					Element:   "H",
					Pos:       ridingPosition(parent, neighbors, length),
					Occupancy: parent.Occupancy,
					Bfactor:   parent.Bfactor,
					Het:       parent.Het,
					Calc:      true,
				}
				res.Atoms = append(res.Atoms, h)
			}
		}
	}
}

//NormalizeHydrogens applies the selected hydrogen policy to the model.
func NormalizeHydrogens(model *prep.Model, lib *monlib.MonLib, change HydrogenChange) {
	switch change {
	case Remove:
		RemoveHydrogens(model)
	case ReAdd:
		RemoveHydrogens(model)
		AddRidingHydrogens(model, lib)
	case NoChange:
	}
}

//Package monlib implements monomer restraint libraries: per-residue
//restraint templates (ChemComp), their accumulation from prioritized
//sources into a single dictionary (MonLib), lookup of the CCP4-layout
//system monomer library, and ad-hoc synthesis of restraints for residues
//with no dictionary entry.
package monlib

import (
	"fmt"
	"sort"
	"strings"
)

//ChemCompAtom is one expected atom of a monomer.
type ChemCompAtom struct {
	Name    string
	Element string
	Charge  float64
}

//ChemCompBond is a bond restraint between two named atoms of a monomer.
type ChemCompBond struct {
	Atom1, Atom2 string
	Type         string //single, double, aromatic... empty means unknown
	Dist         float64
	Esd          float64
}

//ChemCompAngle is an angle restraint among three named atoms.
type ChemCompAngle struct {
	Atom1, Atom2, Atom3 string
	Angle               float64 //degrees
	Esd                 float64
}

//ChemCompTorsion is a torsion restraint among four named atoms.
type ChemCompTorsion struct {
	ID                         string
	Atom1, Atom2, Atom3, Atom4 string
	Angle                      float64 //degrees
	Esd                        float64
	Period                     int
}

//ChemCompChirality is a chirality restraint on a center and three ligands.
type ChemCompChirality struct {
	ID                    string
	Center, At1, At2, At3 string
	Sign                  string //positive, negative or both
}

//ChemCompPlane is a planarity restraint: atoms expected on a common plane.
type ChemCompPlane struct {
	ID    string
	Atoms []string
	Esd   float64
}

//ChemComp is the restraint template for one residue name: the expected atom
//list and the restraints among those atoms.
type ChemComp struct {
	Name     string
	Atoms    []ChemCompAtom
	Bonds    []ChemCompBond
	Angles   []ChemCompAngle
	Torsions []ChemCompTorsion
	Chirals  []ChemCompChirality
	Planes   []ChemCompPlane
	//Synthetic marks definitions derived from observed coordinates rather
	//than read from a curated dictionary. Downstream consumers treat those
	//as approximate.
	Synthetic bool
}

//Atom returns the atom definition with the given name, or nil.
func (c *ChemComp) Atom(name string) *ChemCompAtom {
	for i := range c.Atoms {
		if c.Atoms[i].Name == name {
			return &c.Atoms[i]
		}
	}
	return nil
}

//BondsOf returns the bonds involving the named atom.
func (c *ChemComp) BondsOf(name string) []ChemCompBond {
	var ret []ChemCompBond
	for _, b := range c.Bonds {
		if b.Atom1 == name || b.Atom2 == name {
			ret = append(ret, b)
		}
	}
	return ret
}

//Consistent checks that every restraint references atoms present in the
//atom list. Curated dictionaries are trusted; this guards the synthesized
//ones.
func (c *ChemComp) Consistent() error {
	names := make(map[string]bool, len(c.Atoms))
	for _, a := range c.Atoms {
		names[a.Name] = true
	}
	for _, b := range c.Bonds {
		if !names[b.Atom1] || !names[b.Atom2] {
			return fmt.Errorf("monomer %s: bond %s-%s references an atom not in the definition", c.Name, b.Atom1, b.Atom2)
		}
	}
	for _, a := range c.Angles {
		if !names[a.Atom1] || !names[a.Atom2] || !names[a.Atom3] {
			return fmt.Errorf("monomer %s: angle %s-%s-%s references an atom not in the definition", c.Name, a.Atom1, a.Atom2, a.Atom3)
		}
	}
	return nil
}

//MonLib is a monomer dictionary: residue name to restraint template. It is
//filled by applying source loaders in priority order; within that order the
//first definition for a name wins, later ones are ignored. Priority is thus
//entirely a matter of call order, never of per-entry bookkeeping.
type MonLib struct {
	Monomers map[string]*ChemComp
}

//New returns an empty monomer dictionary.
func New() *MonLib {
	return &MonLib{Monomers: make(map[string]*ChemComp)}
}

//Has is true if a definition for the name is already present.
func (lib *MonLib) Has(name string) bool {
	_, ok := lib.Monomers[name]
	return ok
}

//Insert adds a definition if, and only if, no definition for the same name
//is present yet. It reports whether the definition was added.
func (lib *MonLib) Insert(comp *ChemComp) bool {
	if lib.Has(comp.Name) {
		return false
	}
	lib.Monomers[comp.Name] = comp
	return true
}

//Get returns the definition for a name, or nil.
func (lib *MonLib) Get(name string) *ChemComp {
	return lib.Monomers[name]
}

//Missing filters the required names down to those with no definition,
//preserving their order.
func (lib *MonLib) Missing(required []string) []string {
	missing := make([]string, 0)
	for _, name := range required {
		if !lib.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

//Names returns the monomer names present, sorted, for reporting.
func (lib *MonLib) Names() []string {
	names := make([]string, 0, len(lib.Monomers))
	for n := range lib.Monomers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (lib *MonLib) String() string {
	return strings.Join(lib.Names(), " ")
}

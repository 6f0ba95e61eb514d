package topo

import (
	"math"

	prep "github.com/rmera/goprep"
)

//peptide bonds with |omega| at most this many degrees are cis
const cisThreshold = 30.0

//AssignCisFlags classifies every peptide bond of the model as cis or trans
//from the omega dihedral (CA-C-N-CA), overwriting whatever flags the input
//carried. Residue pairs lacking any of the four backbone atoms are left
//as trans.
func AssignCisFlags(model *prep.Model) {
	for _, chain := range model.Chains {
		for i := 1; i < len(chain.Residues); i++ {
			prev := chain.Residues[i-1]
			res := chain.Residues[i]
			res.Cis = false
			ca1 := prev.Atom("CA")
			c := prev.Atom("C")
			n := res.Atom("N")
			ca2 := res.Atom("CA")
			if ca1 == nil || c == nil || n == nil || ca2 == nil {
				continue
			}
			omega := prep.Dihedral(ca1.Pos, c.Pos, n.Pos, ca2.Pos) * 180 / math.Pi
			res.Cis = math.Abs(omega) <= cisThreshold
		}
	}
}

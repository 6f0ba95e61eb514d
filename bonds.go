/*
 * bonds.go, part of goprep.
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
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

//constants from DOI:10.1186/1758-2946-3-33
const (
	tooclose = 0.63
	bondtol  = 0.45
)

//covalent radius used for elements missing from the table. Generous on
//purpose: over-bonding is pruned afterwards, missing a bond is not.
const defaultCovrad = 1.5

//Bond is a bond inferred between two atoms of the same atom slice,
//identified by their indices in it.
type Bond struct {
	I, J int
	Dist float64
}

//Other returns the index on the other side of the bond from i.
//Panics if i is on neither side, as that is a programming error.
func (b Bond) Other(i int) int {
	if i == b.I {
		return b.J
	}
	if i == b.J {
		return b.I
	}
	panic("Trying to cross a bond from an atom not present in it")
}

func covrad(symbol string) float64 {
	if r := symbolCovrad[symbol]; r > 0 {
		return r
	}
	return defaultCovrad
}

//InferBonds assigns bonds among the given atoms based on a simple distance
//criterion, similar to that described in DOI:10.1186/1758-2946-3-33: two
//atoms are bonded if they are closer than the sum of their covalent radii
//plus a tolerance, but not too close. Atoms that end up with more bonds than
//their element allows lose their longest bonds. It is meant for single
//residues, not macromolecules: the scan is quadratic.
func InferBonds(atoms []*Atom) []Bond {
	bonds := make([]Bond, 0, len(atoms))
	for i := 0; i < len(atoms); i++ {
		cov1 := covrad(atoms[i].Element)
		for j := i + 1; j < len(atoms); j++ {
			cov2 := covrad(atoms[j].Element)
			d := r3.Norm(r3.Sub(atoms[j].Pos, atoms[i].Pos))
			if d < cov1+cov2+bondtol && d > tooclose {
				bonds = append(bonds, Bond{I: i, J: j, Dist: d})
			}
		}
	}
	//Now we check that no atom has too many bonds, dropping the longest
	//ones until each atom is within its element's limit.
	for i := range atoms {
		max := symbolMaxBonds[atoms[i].Element]
		if max == 0 { //no specified number of bonds for this element
			continue
		}
		mine := make([]int, 0, 4) //indices into bonds
		for bi, b := range bonds {
			if b.I == i || b.J == i {
				mine = append(mine, bi)
			}
		}
		if len(mine) <= max {
			continue
		}
		sort.SliceStable(mine, func(a, b int) bool { return bonds[mine[a]].Dist < bonds[mine[b]].Dist })
		drop := make(map[int]bool)
		for _, bi := range mine[max:] {
			drop[bi] = true
		}
		kept := bonds[:0]
		for bi, b := range bonds {
			if !drop[bi] {
				kept = append(kept, b)
			}
		}
		bonds = kept
	}
	return bonds
}

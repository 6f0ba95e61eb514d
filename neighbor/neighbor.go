//Package neighbor provides a radius-bounded spatial index over the atoms of
//a model, with optional periodic images from the unit cell, and contact
//enumeration on top of it. It is the geometric engine behind automatic
//covalent-link discovery.
package neighbor

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	prep "github.com/rmera/goprep"
)

//Mark is one indexed atom position: the address of the atom in the model
//hierarchy plus the image that produced the position. Image 0 is the
//asymmetric unit itself; higher values are periodic cell translations.
type Mark struct {
	ChainIdx, ResIdx, AtomIdx int
	Image                     int
	Pos                       r3.Vec
}

//Search is a cell-list index of atoms within a bounded radius.
type Search struct {
	Model  *prep.Model
	Cell   *prep.UnitCell
	Radius float64

	marks   []Mark
	ids     []int           //linear ASU atom id per mark (same for all images of an atom)
	buckets map[[3]int][]int //bucket coordinates to indices into marks
}

//New builds an empty search index for the model. Radius bounds the
//distances the index can answer for; queries beyond it miss neighbors.
func New(model *prep.Model, cell *prep.UnitCell, radius float64) *Search {
	return &Search{Model: model, Cell: cell, Radius: radius,
		buckets: make(map[[3]int][]int)}
}

func (ns *Search) bucketOf(p r3.Vec) [3]int {
	return [3]int{
		int(math.Floor(p.X / ns.Radius)),
		int(math.Floor(p.Y / ns.Radius)),
		int(math.Floor(p.Z / ns.Radius)),
	}
}

func (ns *Search) addMark(m Mark, id int) {
	idx := len(ns.marks)
	ns.marks = append(ns.marks, m)
	ns.ids = append(ns.ids, id)
	b := ns.bucketOf(m.Pos)
	ns.buckets[b] = append(ns.buckets[b], idx)
}

//cellImages returns the fractional translations used as periodic images:
//the 26 neighboring cells, in a fixed order so that enumeration, and with
//it everything derived from it, is reproducible.
func cellImages() [][3]float64 {
	images := make([][3]float64, 0, 26)
	for a := -1.0; a <= 1; a++ {
		for b := -1.0; b <= 1; b++ {
			for c := -1.0; c <= 1; c++ {
				if a == 0 && b == 0 && c == 0 {
					continue
				}
				images = append(images, [3]float64{a, b, c})
			}
		}
	}
	return images
}

//Populate fills the index with every atom of the model and, when the unit
//cell is set, with its periodic images. Atoms are indexed in model order.
func (ns *Search) Populate() {
	var images [][3]float64
	if ns.Cell.IsSet() {
		images = cellImages()
	}
	id := 0
	for ci, chain := range ns.Model.Chains {
		for ri, res := range chain.Residues {
			for ai, at := range res.Atoms {
				ns.addMark(Mark{ChainIdx: ci, ResIdx: ri, AtomIdx: ai, Image: 0, Pos: at.Pos}, id)
				frac := r3.Vec{}
				if len(images) > 0 {
					frac = ns.Cell.Fractionalize(at.Pos)
				}
				for ii, tr := range images {
					shifted := ns.Cell.Orthogonalize(r3.Vec{
						X: frac.X + tr[0], Y: frac.Y + tr[1], Z: frac.Z + tr[2]})
					ns.addMark(Mark{ChainIdx: ci, ResIdx: ri, AtomIdx: ai,
						Image: ii + 1, Pos: shifted}, id)
				}
				id++
			}
		}
	}
}

//Atom resolves a mark back to its atom.
func (ns *Search) Atom(m Mark) *prep.Atom {
	return ns.Model.Chains[m.ChainIdx].Residues[m.ResIdx].Atoms[m.AtomIdx]
}

//Address resolves a mark to a by-name atom address.
func (ns *Search) Address(m Mark) prep.AtomAddress {
	chain := ns.Model.Chains[m.ChainIdx]
	res := chain.Residues[m.ResIdx]
	return prep.AtomAddress{
		Chain:    chain.Name,
		ResName:  res.Name,
		ResSeq:   res.SeqID,
		ICode:    res.ICode,
		AtomName: res.Atoms[m.AtomIdx].Name,
	}
}

//ForEachContact calls f for every pair of indexed atoms closer than cutoff,
//each pair exactly once. The first mark of a pair is always in the
//asymmetric unit; the second may be a periodic image. The scan order is a
//pure function of the index contents, so repeated runs on the same input
//enumerate pairs identically. cutoff must not exceed the index radius.
func (ns *Search) ForEachContact(cutoff float64, f func(m1, m2 Mark, dist float64) error) error {
	if cutoff > ns.Radius {
		return prep.NewError("Contact cutoff larger than the index radius", "ForEachContact")
	}
	for i, m1 := range ns.marks {
		if m1.Image != 0 {
			continue
		}
		b := ns.bucketOf(m1.Pos)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for dz := -1; dz <= 1; dz++ {
					for _, j := range ns.buckets[[3]int{b[0] + dx, b[1] + dy, b[2] + dz}] {
						m2 := ns.marks[j]
						//each pair once: strictly later atoms within the
						//unit, later-or-same atoms across images
						if m2.Image == 0 {
							if ns.ids[j] <= ns.ids[i] {
								continue
							}
						} else if ns.ids[j] < ns.ids[i] {
							continue
						}
						d := r3.Norm(r3.Sub(m2.Pos, m1.Pos))
						if d > cutoff {
							continue
						}
						if err := f(m1, m2, d); err != nil {
							return err
						}
					}
				}
			}
		}
	}
	return nil
}

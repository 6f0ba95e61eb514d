package neighbor

import (
	"io"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	prep "github.com/rmera/goprep"
)

//twoChainModel puts one nitrogen in each of two chains, the given distance
//apart. Different chains, so the adjacency exclusion never applies.
func twoChainModel(dist float64) *prep.Model {
	mk := func(chain string, x float64) *prep.Chain {
		return &prep.Chain{Name: chain, Residues: []*prep.Residue{
			{Name: "LIG", SeqID: 1, Atoms: []*prep.Atom{
				{Name: "N1", Element: "N", Pos: r3.Vec{X: x}},
			}},
		}}
	}
	return &prep.Model{Chains: []*prep.Chain{mk("A", 0), mk("B", dist)}}
}

//Covalent radii of N are 0.71: the threshold is 0.71+0.71+0.5 = 1.92.
//A 1.3 A pair is a link, a 2.5 A pair is not.
func TestFindLinksDistanceCriterion(Te *testing.T) {
	lf := NewLinkFinder()
	lf.Out = io.Discard

	st := &prep.Structure{}
	added, err := lf.FindLinks(twoChainModel(1.3), st)
	if err != nil {
		Te.Fatal(err)
	}
	if len(added) != 1 {
		Te.Fatalf("1.3 A pair: expected 1 link, got %d", len(added))
	}
	conn := added[0]
	if conn.Name != "added1" || conn.Type != prep.ConnCovalent || conn.Asu != prep.AsuSame {
		Te.Errorf("link metadata: %+v", conn)
	}
	if d := conn.ReportedDistance - 1.3; d > 1e-9 || d < -1e-9 {
		Te.Errorf("recorded distance: got %f, want 1.3", conn.ReportedDistance)
	}

	st = &prep.Structure{}
	added, err = lf.FindLinks(twoChainModel(2.5), st)
	if err != nil {
		Te.Fatal(err)
	}
	if len(added) != 0 {
		Te.Errorf("2.5 A pair: expected no link, got %d", len(added))
	}
}

func TestFindLinksSkipsAdjacentResidues(Te *testing.T) {
	model := &prep.Model{Chains: []*prep.Chain{{Name: "A", Residues: []*prep.Residue{
		{Name: "ALA", SeqID: 1, Atoms: []*prep.Atom{{Name: "C", Element: "C", Pos: r3.Vec{}}}},
		{Name: "GLY", SeqID: 2, Atoms: []*prep.Atom{{Name: "N", Element: "N", Pos: r3.Vec{X: 1.33}}}},
	}}}}
	lf := NewLinkFinder()
	st := &prep.Structure{}
	added, err := lf.FindLinks(model, st)
	if err != nil {
		Te.Fatal(err)
	}
	if len(added) != 0 {
		Te.Errorf("peptide bond between consecutive residues reported as link: %+v", added[0])
	}
}

func TestFindLinksSkipsExistingConnections(Te *testing.T) {
	model := twoChainModel(1.3)
	st := &prep.Structure{}
	st.AddConnection(&prep.Connection{
		Name:     "link1",
		Type:     prep.ConnCovalent,
		Partner1: prep.AtomAddress{Chain: "A", ResName: "LIG", ResSeq: 1, AtomName: "N1"},
		Partner2: prep.AtomAddress{Chain: "B", ResName: "LIG", ResSeq: 1, AtomName: "N1"},
	})
	lf := NewLinkFinder()
	added, err := lf.FindLinks(model, st)
	if err != nil {
		Te.Fatal(err)
	}
	if len(added) != 0 {
		Te.Errorf("already recorded pair reported again: %+v", added[0])
	}
	if len(st.Connections) != 1 {
		Te.Errorf("connection list grew: %d", len(st.Connections))
	}
}

//Adjacency only shields pairs within the asymmetric unit. Here the two
//residues are consecutive in the chain, but the only contact is with a
//periodic image of the second one, which no polymer restraint covers.
func TestFindLinksAdjacentAcrossImages(Te *testing.T) {
	model := &prep.Model{Chains: []*prep.Chain{{Name: "A", Residues: []*prep.Residue{
		{Name: "ALA", SeqID: 1, Atoms: []*prep.Atom{
			{Name: "C", Element: "C", Pos: r3.Vec{X: 0.5, Y: 5, Z: 5}}}},
		{Name: "GLY", SeqID: 2, Atoms: []*prep.Atom{
			{Name: "N", Element: "N", Pos: r3.Vec{X: 9.3, Y: 5, Z: 5}}}},
	}}}}
	st := &prep.Structure{Cell: prep.NewUnitCell(10, 10, 10, 90, 90, 90)}
	lf := NewLinkFinder()
	lf.Out = io.Discard
	added, err := lf.FindLinks(model, st)
	if err != nil {
		Te.Fatal(err)
	}
	if len(added) != 1 {
		Te.Fatalf("expected 1 cross-image link, got %d", len(added))
	}
	conn := added[0]
	if conn.Asu != prep.AsuDifferent {
		Te.Errorf("cross-image link not marked as crossing asymmetric units: %+v", conn)
	}
	if d := conn.ReportedDistance - 1.2; d > 1e-9 || d < -1e-9 {
		Te.Errorf("recorded distance: got %f, want 1.2", conn.ReportedDistance)
	}
}

//Two runs on the same input must enumerate the same links with the same
//generated names.
func TestFindLinksDeterministic(Te *testing.T) {
	build := func() (*prep.Model, *prep.Structure) {
		model := &prep.Model{Chains: []*prep.Chain{
			{Name: "A", Residues: []*prep.Residue{
				{Name: "LIG", SeqID: 1, Atoms: []*prep.Atom{
					{Name: "N1", Element: "N", Pos: r3.Vec{}},
					{Name: "O1", Element: "O", Pos: r3.Vec{Y: 30}},
				}},
			}},
			{Name: "B", Residues: []*prep.Residue{
				{Name: "LIG", SeqID: 1, Atoms: []*prep.Atom{
					{Name: "N1", Element: "N", Pos: r3.Vec{X: 1.3}},
					{Name: "C1", Element: "C", Pos: r3.Vec{Y: 31.2}},
				}},
			}},
		}}
		return model, &prep.Structure{}
	}
	lf := NewLinkFinder()
	model1, st1 := build()
	added1, err := lf.FindLinks(model1, st1)
	if err != nil {
		Te.Fatal(err)
	}
	model2, st2 := build()
	added2, err := lf.FindLinks(model2, st2)
	if err != nil {
		Te.Fatal(err)
	}
	if len(added1) != 2 || len(added2) != 2 {
		Te.Fatalf("expected 2 links per run, got %d and %d", len(added1), len(added2))
	}
	for i := range added1 {
		if added1[i].Name != added2[i].Name {
			Te.Errorf("names differ between runs: %s vs %s", added1[i].Name, added2[i].Name)
		}
		if added1[i].Partner1 != added2[i].Partner1 || added1[i].Partner2 != added2[i].Partner2 {
			Te.Errorf("partners differ between runs at %d", i)
		}
	}
}

package neighbor

import (
	"fmt"
	"io"
	"os"

	prep "github.com/rmera/goprep"
)

//Default geometry of the automatic link search: the index covers anything
//that could possibly bond (plus margin), candidate contacts are capped
//well above the longest covalent bond, and a pair is accepted as bonded if
//it is within the covalent-radius sum plus the tolerance.
const (
	DefaultIndexRadius   = 5.0
	DefaultContactCutoff = 3.5
	DefaultBondTolerance = 0.5
)

//LinkFinder detects covalent links present in the coordinates but not
//recorded as connections, and appends them to the structure.
type LinkFinder struct {
	IndexRadius   float64
	ContactCutoff float64
	Tolerance     float64
	Verbose       bool
	Out           io.Writer //defaults to os.Stdout
}

//NewLinkFinder returns a finder with the default search geometry.
func NewLinkFinder() *LinkFinder {
	return &LinkFinder{
		IndexRadius:   DefaultIndexRadius,
		ContactCutoff: DefaultContactCutoff,
		Tolerance:     DefaultBondTolerance,
	}
}

func (lf *LinkFinder) out() io.Writer {
	if lf.Out != nil {
		return lf.Out
	}
	return os.Stdout
}

//skipPair is the exclusion policy for candidate contacts: pairs within one
//residue or between chain-adjacent residues are covered by standard
//monomer and polymer restraints, and pairs already recorded as a
//connection need no second record. The adjacency exclusion only applies
//within one asymmetric unit: a periodic image of an adjacent residue is
//not covered by polymer linkage. It is a pure predicate of the pair, the
//chain topology and the standing connections.
func skipPair(m1, m2 Mark, a1, a2 prep.AtomAddress, st *prep.Structure) bool {
	if m1.ChainIdx == m2.ChainIdx && m1.Image == m2.Image {
		dr := m1.ResIdx - m2.ResIdx
		if dr >= -1 && dr <= 1 {
			return true
		}
	}
	return st.FindConnection(a1, a2) != nil
}

//FindLinks runs the search and appends one covalent connection per
//accepted pair. The pair is accepted iff its distance does not exceed the
//sum of the two covalent radii plus the tolerance. Generated names are
//added1, added2... in enumeration order, which is stable for a given
//input. The newly added connections are returned.
func (lf *LinkFinder) FindLinks(model *prep.Model, st *prep.Structure) ([]*prep.Connection, error) {
	ns := New(model, st.Cell, lf.IndexRadius)
	ns.Populate()
	counter := 0
	var added []*prep.Connection
	err := ns.ForEachContact(lf.ContactCutoff, func(m1, m2 Mark, dist float64) error {
		at1 := ns.Atom(m1)
		at2 := ns.Atom(m2)
		r1 := prep.CovalentRadius(at1.Element)
		r2 := prep.CovalentRadius(at2.Element)
		if r1 == 0 || r2 == 0 { //unknown element, no radius to test against
			return nil
		}
		if dist > r1+r2+lf.Tolerance {
			return nil
		}
		a1 := ns.Address(m1)
		a2 := ns.Address(m2)
		if skipPair(m1, m2, a1, a2, st) {
			return nil
		}
		counter++
		conn := &prep.Connection{
			Name:             fmt.Sprintf("added%d", counter),
			Type:             prep.ConnCovalent,
			Partner1:         a1,
			Partner2:         a2,
			ReportedDistance: dist,
		}
		if m2.Image != 0 {
			conn.Asu = prep.AsuDifferent
		}
		st.AddConnection(conn)
		added = append(added, conn)
		if lf.Verbose {
			fmt.Fprintf(lf.out(), "Automatic link: %s - %s\n", a1, a2)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

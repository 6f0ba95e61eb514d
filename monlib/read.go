package monlib

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	prep "github.com/rmera/goprep"
	"github.com/rmera/goprep/cif"
)

func floatOr(s string, def float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

func loopVal(l *cif.Loop, row []string, tag string) string {
	i := l.Column(tag)
	if i < 0 || i >= len(row) {
		return ""
	}
	v := row[i]
	if v == "." || v == "?" {
		return ""
	}
	return v
}

//compFromBlock builds a ChemComp from the restraint loops of one data
//block, for the given component name. Dictionary files keyed by comp_id
//(several components per block) are handled by filtering rows on the name.
func compFromBlock(block *cif.Block, name string) *ChemComp {
	comp := &ChemComp{Name: name}
	match := func(l *cif.Loop, row []string) bool {
		id := loopVal(l, row, "_chem_comp_atom.comp_id")
		if id == "" {
			//bond/angle/... loops use their own comp_id tag; an absent tag
			//means the whole block belongs to a single component
			return true
		}
		return id == name
	}
	if l := block.LoopWithTag("_chem_comp_atom.atom_id"); l != nil {
		for _, row := range l.Rows {
			if !match(l, row) {
				continue
			}
			comp.Atoms = append(comp.Atoms, ChemCompAtom{
				Name:    loopVal(l, row, "_chem_comp_atom.atom_id"),
				Element: normalizeElement(loopVal(l, row, "_chem_comp_atom.type_symbol")),
				Charge:  floatOr(loopVal(l, row, "_chem_comp_atom.partial_charge"), 0),
			})
		}
	}
	if l := block.LoopWithTag("_chem_comp_bond.atom_id_1"); l != nil {
		for _, row := range l.Rows {
			if id := loopVal(l, row, "_chem_comp_bond.comp_id"); id != "" && id != name {
				continue
			}
			comp.Bonds = append(comp.Bonds, ChemCompBond{
				Atom1: loopVal(l, row, "_chem_comp_bond.atom_id_1"),
				Atom2: loopVal(l, row, "_chem_comp_bond.atom_id_2"),
				Type:  loopVal(l, row, "_chem_comp_bond.type"),
				Dist:  floatOr(loopVal(l, row, "_chem_comp_bond.value_dist"), 0),
				Esd:   floatOr(loopVal(l, row, "_chem_comp_bond.value_dist_esd"), 0.02),
			})
		}
	}
	if l := block.LoopWithTag("_chem_comp_angle.atom_id_1"); l != nil {
		for _, row := range l.Rows {
			if id := loopVal(l, row, "_chem_comp_angle.comp_id"); id != "" && id != name {
				continue
			}
			comp.Angles = append(comp.Angles, ChemCompAngle{
				Atom1: loopVal(l, row, "_chem_comp_angle.atom_id_1"),
				Atom2: loopVal(l, row, "_chem_comp_angle.atom_id_2"),
				Atom3: loopVal(l, row, "_chem_comp_angle.atom_id_3"),
				Angle: floatOr(loopVal(l, row, "_chem_comp_angle.value_angle"), 0),
				Esd:   floatOr(loopVal(l, row, "_chem_comp_angle.value_angle_esd"), 3.0),
			})
		}
	}
	if l := block.LoopWithTag("_chem_comp_tor.atom_id_1"); l != nil {
		for _, row := range l.Rows {
			if id := loopVal(l, row, "_chem_comp_tor.comp_id"); id != "" && id != name {
				continue
			}
			period, _ := strconv.Atoi(loopVal(l, row, "_chem_comp_tor.period"))
			comp.Torsions = append(comp.Torsions, ChemCompTorsion{
				ID:     loopVal(l, row, "_chem_comp_tor.id"),
				Atom1:  loopVal(l, row, "_chem_comp_tor.atom_id_1"),
				Atom2:  loopVal(l, row, "_chem_comp_tor.atom_id_2"),
				Atom3:  loopVal(l, row, "_chem_comp_tor.atom_id_3"),
				Atom4:  loopVal(l, row, "_chem_comp_tor.atom_id_4"),
				Angle:  floatOr(loopVal(l, row, "_chem_comp_tor.value_angle"), 0),
				Esd:    floatOr(loopVal(l, row, "_chem_comp_tor.value_angle_esd"), 3.0),
				Period: period,
			})
		}
	}
	if l := block.LoopWithTag("_chem_comp_chir.atom_centre"); l != nil {
		for _, row := range l.Rows {
			if id := loopVal(l, row, "_chem_comp_chir.comp_id"); id != "" && id != name {
				continue
			}
			comp.Chirals = append(comp.Chirals, ChemCompChirality{
				ID:     loopVal(l, row, "_chem_comp_chir.id"),
				Center: loopVal(l, row, "_chem_comp_chir.atom_centre"),
				At1:    loopVal(l, row, "_chem_comp_chir.atom_id_1"),
				At2:    loopVal(l, row, "_chem_comp_chir.atom_id_2"),
				At3:    loopVal(l, row, "_chem_comp_chir.atom_id_3"),
				Sign:   loopVal(l, row, "_chem_comp_chir.volume_sign"),
			})
		}
	}
	if l := block.LoopWithTag("_chem_comp_plane_atom.plane_id"); l != nil {
		planes := make(map[string]*ChemCompPlane)
		order := make([]string, 0, 2)
		for _, row := range l.Rows {
			if id := loopVal(l, row, "_chem_comp_plane_atom.comp_id"); id != "" && id != name {
				continue
			}
			pid := loopVal(l, row, "_chem_comp_plane_atom.plane_id")
			p, ok := planes[pid]
			if !ok {
				p = &ChemCompPlane{ID: pid, Esd: floatOr(loopVal(l, row, "_chem_comp_plane_atom.dist_esd"), 0.02)}
				planes[pid] = p
				order = append(order, pid)
			}
			p.Atoms = append(p.Atoms, loopVal(l, row, "_chem_comp_plane_atom.atom_id"))
		}
		for _, pid := range order {
			comp.Planes = append(comp.Planes, *planes[pid])
		}
	}
	return comp
}

func normalizeElement(symbol string) string {
	if len(symbol) == 2 {
		return symbol[0:1] + strings.ToLower(symbol[1:2])
	}
	return symbol
}

//blockCompNames returns the component names a data block defines, in file
//order: the block-name convention (data_comp_XXX) when it applies,
//otherwise the distinct comp_id values of the atom loop.
func blockCompNames(block *cif.Block) []string {
	lower := strings.ToLower(block.Name)
	if strings.HasPrefix(lower, "comp_") && lower != "comp_list" {
		return []string{block.Name[len("comp_"):]}
	}
	l := block.LoopWithTag("_chem_comp_atom.atom_id")
	if l == nil {
		return nil
	}
	seen := make(map[string]bool)
	var names []string
	for _, row := range l.Rows {
		id := loopVal(l, row, "_chem_comp_atom.comp_id")
		if id == "" {
			//no comp_id column: single anonymous component named after the block
			return []string{block.Name}
		}
		if !seen[id] {
			seen[id] = true
			names = append(names, id)
		}
	}
	return names
}

//ReadMonomerDoc inserts into lib every monomer definition found in an
//already-parsed CIF document, skipping names already present.
func (lib *MonLib) ReadMonomerDoc(doc *cif.Document) {
	for _, block := range doc.Blocks {
		for _, name := range blockCompNames(block) {
			if lib.Has(name) {
				continue
			}
			comp := compFromBlock(block, name)
			if len(comp.Atoms) == 0 {
				continue
			}
			lib.Insert(comp)
		}
	}
}

//ReadMonomerFile loads a user dictionary file (optionally gzipped) into
//lib, with insert-if-absent semantics. An unreadable file is a hard error:
//silently skipping a user-supplied source would corrupt the priority
//ordering.
func (lib *MonLib) ReadMonomerFile(path string) error {
	r, err := prep.OpenDecompressing(path)
	if err != nil {
		return fmt.Errorf("monlib: can't open user library %s: %w", path, err)
	}
	defer r.Close()
	doc, err := cif.Parse(r)
	if err != nil {
		return fmt.Errorf("monlib: can't parse user library %s: %w", path, err)
	}
	lib.ReadMonomerDoc(doc)
	return nil
}

//monomerPath returns the conventional path of a monomer file under a
//CCP4-layout library root: ROOT/<lowercased initial>/<NAME>.cif.
func monomerPath(root, name string) string {
	initial := strings.ToLower(name[0:1])
	return filepath.Join(root, initial, name+".cif")
}

//ReadMonomerLib queries the system monomer library for exactly the given
//names, inserting those found. Names with no library file are not an
//error that aborts: they are enumerated in the returned message, and the
//caller decides the policy. A file that exists but cannot be parsed is a
//hard error.
func (lib *MonLib) ReadMonomerLib(root string, names []string) (missesMsg string, err error) {
	var misses strings.Builder
	for _, name := range names {
		if lib.Has(name) || name == "" {
			continue
		}
		path := monomerPath(root, name)
		if _, serr := os.Stat(path); serr != nil {
			if _, serr = os.Stat(path + ".gz"); serr != nil {
				fmt.Fprintf(&misses, "Monomer library has no definition for %s\n", name)
				continue
			}
			path += ".gz"
		}
		if err := lib.ReadMonomerFile(path); err != nil {
			return misses.String(), err
		}
		if !lib.Has(name) {
			fmt.Fprintf(&misses, "File %s has no definition for %s\n", path, name)
		}
	}
	return misses.String(), nil
}

package topo

import (
	"fmt"
	"io"
	"strconv"

	prep "github.com/rmera/goprep"
	"github.com/rmera/goprep/cif"
	"github.com/rmera/goprep/monlib"
)

func ftoa(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

//atomSerials renumbers the atoms of the model consecutively from 1, in
//model order, updating SerialID. The returned map resolves an atom pointer
//to its new serial. Renumbering makes output serials dense and stable no
//matter what the input carried or what the hydrogen edits did.
func atomSerials(model *prep.Model) map[*prep.Atom]int {
	serials := make(map[*prep.Atom]int, model.AtomCount())
	n := 0
	for _, chain := range model.Chains {
		for _, res := range chain.Residues {
			for _, at := range res.Atoms {
				n++
				at.SerialID = n
				serials[at] = n
			}
		}
	}
	return serials
}

func cellItems(block *cif.Block, cell *prep.UnitCell) {
	if !cell.IsSet() {
		return
	}
	block.Items["_cell.length_a"] = ftoa(cell.A, 3)
	block.Items["_cell.length_b"] = ftoa(cell.B, 3)
	block.Items["_cell.length_c"] = ftoa(cell.C, 3)
	block.Items["_cell.angle_alpha"] = ftoa(cell.Alpha, 2)
	block.Items["_cell.angle_beta"] = ftoa(cell.Beta, 2)
	block.Items["_cell.angle_gamma"] = ftoa(cell.Gamma, 2)
}

func atomSiteLoop(model *prep.Model) *cif.Loop {
	loop := &cif.Loop{Tags: []string{
		"_atom_site.group_pdb",
		"_atom_site.id",
		"_atom_site.label_atom_id",
		"_atom_site.label_comp_id",
		"_atom_site.auth_asym_id",
		"_atom_site.auth_seq_id",
		"_atom_site.pdbx_pdb_ins_code",
		"_atom_site.cartn_x",
		"_atom_site.cartn_y",
		"_atom_site.cartn_z",
		"_atom_site.occupancy",
		"_atom_site.b_iso_or_equiv",
		"_atom_site.type_symbol",
		"_atom_site.calc_flag",
	}}
	for _, chain := range model.Chains {
		for _, res := range chain.Residues {
			for _, at := range res.Atoms {
				group := "ATOM"
				if at.Het {
					group = "HETATM"
				}
				icode := "."
				if res.ICode != 0 {
					icode = string(res.ICode)
				}
				//atoms placed by the pipeline, rather than read from the
				//input, are flagged as calculated
				calc := "."
				if at.Calc {
					calc = "M"
				}
				loop.Rows = append(loop.Rows, []string{
					group,
					strconv.Itoa(at.SerialID),
					at.Name,
					res.Name,
					chain.Name,
					strconv.Itoa(res.SeqID),
					icode,
					ftoa(at.Pos.X, 3),
					ftoa(at.Pos.Y, 3),
					ftoa(at.Pos.Z, 3),
					ftoa(at.Occupancy, 2),
					ftoa(at.Bfactor, 2),
					at.Element,
					calc,
				})
			}
		}
	}
	return loop
}

func connLoop(st *prep.Structure) *cif.Loop {
	if len(st.Connections) == 0 {
		return nil
	}
	loop := &cif.Loop{Tags: []string{
		"_struct_conn.id",
		"_struct_conn.conn_type_id",
		"_struct_conn.ptnr1_auth_asym_id",
		"_struct_conn.ptnr1_auth_comp_id",
		"_struct_conn.ptnr1_auth_seq_id",
		"_struct_conn.ptnr1_label_atom_id",
		"_struct_conn.ptnr2_auth_asym_id",
		"_struct_conn.ptnr2_auth_comp_id",
		"_struct_conn.ptnr2_auth_seq_id",
		"_struct_conn.ptnr2_label_atom_id",
		"_struct_conn.pdbx_dist_value",
	}}
	for _, conn := range st.Connections {
		dist := "."
		if conn.ReportedDistance > 0 {
			dist = ftoa(conn.ReportedDistance, 3)
		}
		loop.Rows = append(loop.Rows, []string{
			conn.Name,
			conn.Type.String(),
			conn.Partner1.Chain,
			conn.Partner1.ResName,
			strconv.Itoa(conn.Partner1.ResSeq),
			conn.Partner1.AtomName,
			conn.Partner2.Chain,
			conn.Partner2.ResName,
			strconv.Itoa(conn.Partner2.ResSeq),
			conn.Partner2.AtomName,
			dist,
		})
	}
	return loop
}

func cisLoop(model *prep.Model) *cif.Loop {
	var rows [][]string
	n := 0
	for _, chain := range model.Chains {
		for i, res := range chain.Residues {
			if !res.Cis || i == 0 {
				continue
			}
			prev := chain.Residues[i-1]
			n++
			rows = append(rows, []string{
				strconv.Itoa(n),
				chain.Name,
				prev.Name,
				strconv.Itoa(prev.SeqID),
				chain.Name,
				res.Name,
				strconv.Itoa(res.SeqID),
			})
		}
	}
	if rows == nil {
		return nil
	}
	return &cif.Loop{Tags: []string{
		"_struct_mon_prot_cis.pdbx_id",
		"_struct_mon_prot_cis.auth_asym_id",
		"_struct_mon_prot_cis.auth_comp_id",
		"_struct_mon_prot_cis.auth_seq_id",
		"_struct_mon_prot_cis.pdbx_auth_asym_id_2",
		"_struct_mon_prot_cis.pdbx_auth_comp_id_2",
		"_struct_mon_prot_cis.pdbx_auth_seq_id_2",
	}, Rows: rows}
}

func compLoop(model *prep.Model, lib *monlib.MonLib) *cif.Loop {
	loop := &cif.Loop{Tags: []string{
		"_chem_comp.id",
		"_chem_comp.source",
	}}
	for _, name := range model.AllResidueNames() {
		source := "lib"
		if def := lib.Get(name); def != nil && def.Synthetic {
			source = "coords"
		}
		loop.Rows = append(loop.Rows, []string{name, source})
	}
	return loop
}

func restraintLoops(topo *Topology) []*cif.Loop {
	bonds := &cif.Loop{Tags: []string{
		"_restr_bond.id",
		"_restr_bond.atom_id_1",
		"_restr_bond.atom_id_2",
		"_restr_bond.ideal",
		"_restr_bond.esd",
		"_restr_bond.observed",
		"_restr_bond.link_id",
	}}
	for i, bd := range topo.Bonds {
		link := "."
		if bd.Link != "" {
			link = bd.Link
		}
		bonds.Rows = append(bonds.Rows, []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(bd.A1.SerialID),
			strconv.Itoa(bd.A2.SerialID),
			ftoa(bd.Ideal, 3),
			ftoa(bd.Esd, 3),
			ftoa(bd.Observed, 3),
			link,
		})
	}
	angles := &cif.Loop{Tags: []string{
		"_restr_angle.id",
		"_restr_angle.atom_id_1",
		"_restr_angle.atom_id_2",
		"_restr_angle.atom_id_3",
		"_restr_angle.ideal",
		"_restr_angle.esd",
	}}
	for i, an := range topo.Angles {
		angles.Rows = append(angles.Rows, []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(an.A1.SerialID),
			strconv.Itoa(an.A2.SerialID),
			strconv.Itoa(an.A3.SerialID),
			ftoa(an.Ideal, 2),
			ftoa(an.Esd, 2),
		})
	}
	var loops []*cif.Loop
	if len(bonds.Rows) > 0 {
		loops = append(loops, bonds)
	}
	if len(angles.Rows) > 0 {
		loops = append(loops, angles)
	}
	return loops
}

//PrepareCRD assembles the Refmac-style intermediate document: coordinates,
//connections and cis-peptide records in the first block, applied restraints
//in the second. Atoms are renumbered consecutively first.
func PrepareCRD(st *prep.Structure, topo *Topology, lib *monlib.MonLib) (*cif.Document, error) {
	model, err := st.FirstModel()
	if err != nil {
		return nil, errDecorate(err, "PrepareCRD")
	}
	atomSerials(model)
	name := st.Name
	if name == "" {
		name = "prep"
	}
	coords := &cif.Block{Name: name, Items: make(map[string]string)}
	coords.Items["_entry.id"] = name
	cellItems(coords, st.Cell)
	coords.Loops = append(coords.Loops, compLoop(model, lib))
	coords.Loops = append(coords.Loops, atomSiteLoop(model))
	if l := connLoop(st); l != nil {
		coords.Loops = append(coords.Loops, l)
	}
	if l := cisLoop(model); l != nil {
		coords.Loops = append(coords.Loops, l)
	}
	restr := &cif.Block{Name: name + "_restraints", Items: make(map[string]string)}
	restr.Loops = restraintLoops(topo)
	return &cif.Document{Blocks: []*cif.Block{coords, restr}}, nil
}

//WriteCRD writes the intermediate document for a built topology to w.
func WriteCRD(w io.Writer, st *prep.Structure, topo *Topology, lib *monlib.MonLib) error {
	doc, err := PrepareCRD(st, topo, lib)
	if err != nil {
		return errDecorate(err, "WriteCRD")
	}
	if err := cif.Write(w, doc); err != nil {
		return prep.NewError(fmt.Sprintf("Failed to write output: %v", err), "WriteCRD")
	}
	return nil
}

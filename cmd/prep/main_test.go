package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmera/goprep/cif"
	"github.com/rmera/goprep/topo"
)

func TestParseArgsDefaults(Te *testing.T) {
	Te.Setenv(monomerDirEnv, "")
	cfg, err := parseArgs([]string{"--monomers", "/lib/mon", "in.pdb", "out.cif"})
	if err != nil {
		Te.Fatal(err)
	}
	if cfg.Input != "in.pdb" || cfg.Output != "out.cif" {
		Te.Errorf("positionals: %+v", cfg)
	}
	if cfg.MonomerDir != "/lib/mon" {
		Te.Errorf("monomer dir: %q", cfg.MonomerDir)
	}
	if !cfg.AutoCis || cfg.AutoLink || cfg.AutoLigand {
		Te.Errorf("default toggles: %+v", cfg)
	}
	if cfg.Hydrogens != topo.ReAdd {
		Te.Errorf("default hydrogen mode: %v", cfg.Hydrogens)
	}
}

func TestParseArgsEnvFallback(Te *testing.T) {
	Te.Setenv(monomerDirEnv, "/env/mon")
	cfg, err := parseArgs([]string{"in.pdb", "out.cif"})
	if err != nil {
		Te.Fatal(err)
	}
	if cfg.MonomerDir != "/env/mon" {
		Te.Errorf("env fallback: %q", cfg.MonomerDir)
	}
}

func TestParseArgsNoMonomerDir(Te *testing.T) {
	Te.Setenv(monomerDirEnv, "")
	if _, err := parseArgs([]string{"in.pdb", "out.cif"}); err == nil {
		Te.Error("missing monomer dir must be a configuration error")
	}
}

func TestParseArgsHydrogenModes(Te *testing.T) {
	Te.Setenv(monomerDirEnv, "/env/mon")
	cfg, err := parseArgs([]string{"-H", "in.pdb", "out.cif"})
	if err != nil {
		Te.Fatal(err)
	}
	if cfg.Hydrogens != topo.Remove {
		Te.Errorf("-H: %v", cfg.Hydrogens)
	}
	cfg, err = parseArgs([]string{"--keep-hydrogens", "in.pdb", "out.cif"})
	if err != nil {
		Te.Fatal(err)
	}
	if cfg.Hydrogens != topo.NoChange {
		Te.Errorf("--keep-hydrogens: %v", cfg.Hydrogens)
	}
	if _, err := parseArgs([]string{"-H", "--keep-hydrogens", "in.pdb", "out.cif"}); err == nil {
		Te.Error("conflicting hydrogen flags must be rejected")
	}
}

func TestParseArgsToggles(Te *testing.T) {
	Te.Setenv(monomerDirEnv, "/env/mon")
	cfg, err := parseArgs([]string{"--auto-cis=N", "--auto-link=Y", "--auto-ligand=y", "in.pdb", "out.cif"})
	if err != nil {
		Te.Fatal(err)
	}
	if cfg.AutoCis || !cfg.AutoLink || !cfg.AutoLigand {
		Te.Errorf("toggles: %+v", cfg)
	}
	if _, err := parseArgs([]string{"--auto-link=maybe", "in.pdb", "out.cif"}); err == nil {
		Te.Error("tri-state flags only accept Y or N")
	}
}

func TestParseArgsRepeatableLibs(Te *testing.T) {
	Te.Setenv(monomerDirEnv, "/env/mon")
	cfg, err := parseArgs([]string{"--lib", "a.cif", "--lib", "+", "--low", "z.cif", "in.pdb", "out.cif"})
	if err != nil {
		Te.Fatal(err)
	}
	if len(cfg.Lib) != 2 || cfg.Lib[0] != "a.cif" || cfg.Lib[1] != "+" {
		Te.Errorf("--lib order: %v", cfg.Lib)
	}
	if len(cfg.Low) != 1 || cfg.Low[0] != "z.cif" {
		Te.Errorf("--low: %v", cfg.Low)
	}
}

func pipelineAtomLine(record string, serial int, name, resname, chain string, seq int, x, y, z float64, element string) string {
	return fmt.Sprintf("%-6s%5d  %-3s %3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s\n",
		record, serial, name, resname, chain, seq, x, y, z, 1.0, 20.0, element)
}

//writePipelinePDB writes an ALA-GLY dipeptide plus an XYZ ligand the
//monomer library fixture does not know about.
func writePipelinePDB(Te *testing.T, dir string) string {
	var b strings.Builder
	b.WriteString(pipelineAtomLine("ATOM", 1, "N", "ALA", "A", 1, 0.0, 0.0, 0.0, "N"))
	b.WriteString(pipelineAtomLine("ATOM", 2, "CA", "ALA", "A", 1, 1.46, 0.0, 0.0, "C"))
	b.WriteString(pipelineAtomLine("ATOM", 3, "C", "ALA", "A", 1, 2.20, 1.30, 0.0, "C"))
	b.WriteString(pipelineAtomLine("ATOM", 4, "O", "ALA", "A", 1, 2.00, 2.40, 0.0, "O"))
	b.WriteString(pipelineAtomLine("ATOM", 5, "N", "GLY", "A", 2, 3.51, 1.40, 0.0, "N"))
	b.WriteString(pipelineAtomLine("ATOM", 6, "CA", "GLY", "A", 2, 4.97, 2.80, 0.0, "C"))
	b.WriteString("TER\n")
	b.WriteString(pipelineAtomLine("HETATM", 7, "C1", "XYZ", "B", 1, 10.00, 0.0, 0.0, "C"))
	b.WriteString(pipelineAtomLine("HETATM", 8, "C2", "XYZ", "B", 1, 11.54, 0.0, 0.0, "C"))
	b.WriteString(pipelineAtomLine("HETATM", 9, "O1", "XYZ", "B", 1, 11.54, 1.43, 0.0, "O"))
	b.WriteString("END\n")
	path := filepath.Join(dir, "in.pdb")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		Te.Fatal(err)
	}
	return path
}

func pipelineConfig(input, output string) *Config {
	return &Config{
		Input:      input,
		Output:     output,
		MonomerDir: "../../monlib/test/monomers",
		AutoCis:    true,
		Hydrogens:  topo.NoChange,
	}
}

//A residue with no dictionary entry fails the run, naming the residue, and
//no output file may appear.
func TestRunUnknownResidue(Te *testing.T) {
	dir := Te.TempDir()
	output := filepath.Join(dir, "out.crd")
	cfg := pipelineConfig(writePipelinePDB(Te, dir), output)
	err := run(cfg)
	if err == nil {
		Te.Fatal("an unknown residue without ligand synthesis must fail the run")
	}
	if !strings.Contains(err.Error(), "XYZ") {
		Te.Errorf("error does not name the offending residue: %v", err)
	}
	if _, serr := os.Stat(output); serr == nil {
		Te.Error("a failed run left an output file behind")
	}
}

//With ligand synthesis on, the same input goes through: the output carries
//all atoms, marks XYZ as derived from coordinates, and restrains the
//inferred ligand bonds alongside the dictionary ones and the peptide link.
func TestRunSynthesizedLigand(Te *testing.T) {
	dir := Te.TempDir()
	output := filepath.Join(dir, "out.crd")
	cfg := pipelineConfig(writePipelinePDB(Te, dir), output)
	cfg.AutoLigand = true
	if err := run(cfg); err != nil {
		Te.Fatal(err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		Te.Fatal(err)
	}
	doc, err := cif.Parse(bytes.NewReader(data))
	if err != nil {
		Te.Fatal(err)
	}
	if len(doc.Blocks) != 2 {
		Te.Fatalf("expected coordinate and restraint blocks, got %d", len(doc.Blocks))
	}
	sites := doc.Blocks[0].LoopWithTag("_atom_site.id")
	if sites == nil || len(sites.Rows) != 9 {
		Te.Fatalf("atom_site loop wrong: %+v", sites)
	}
	comps := doc.Blocks[0].LoopWithTag("_chem_comp.id")
	if comps == nil {
		Te.Fatal("no chem_comp loop in the output")
	}
	idCol := comps.Column("_chem_comp.id")
	srcCol := comps.Column("_chem_comp.source")
	sources := make(map[string]string)
	for _, row := range comps.Rows {
		sources[row[idCol]] = row[srcCol]
	}
	if sources["XYZ"] != "coords" {
		Te.Errorf("synthesized ligand provenance: %q", sources["XYZ"])
	}
	if sources["ALA"] != "lib" || sources["GLY"] != "lib" {
		Te.Errorf("dictionary provenance: %+v", sources)
	}
	//3 ALA bonds (CB absent), 1 GLY bond (only N and CA modeled), 2
	//inferred XYZ bonds, plus the peptide link
	bonds := doc.Blocks[1].LoopWithTag("_restr_bond.id")
	if bonds == nil || len(bonds.Rows) != 7 {
		Te.Fatalf("bond restraint loop wrong: %+v", bonds)
	}
	linkCol := bonds.Column("_restr_bond.link_id")
	links := 0
	for _, row := range bonds.Rows {
		if row[linkCol] != "." {
			links++
		}
	}
	if links != 1 {
		Te.Errorf("expected exactly the peptide link, got %d linked bonds", links)
	}
}

func TestParseArgsPositionals(Te *testing.T) {
	Te.Setenv(monomerDirEnv, "/env/mon")
	if _, err := parseArgs([]string{"in.pdb"}); err == nil {
		Te.Error("one positional argument must be rejected")
	}
	if _, err := parseArgs([]string{"in.pdb", "out.cif", "extra"}); err == nil {
		Te.Error("three positional arguments must be rejected")
	}
}

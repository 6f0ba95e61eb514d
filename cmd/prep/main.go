/*
 * main.go, part of goprep.
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

//prep reads a coordinate file, resolves restraint definitions for every
//residue in it, optionally discovers unrecorded covalent links, normalizes
//cis/trans flags and hydrogens, and writes a restraint-annotated mmCIF
//file ready for refinement.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	prep "github.com/rmera/goprep"
	"github.com/rmera/goprep/cif"
	"github.com/rmera/goprep/monlib"
	"github.com/rmera/goprep/neighbor"
	"github.com/rmera/goprep/topo"
)

//the environment variable with the system monomer library location, as set
//by CCP4 setup scripts
const monomerDirEnv = "CLIBD_MON"

//embeddedLibSentinel as a --lib/--low value selects the restraint blocks
//embedded in the input file instead of an external dictionary.
const embeddedLibSentinel = "+"

//Config is the fully resolved run configuration: every default and
//environment fallback has already been applied by parseArgs.
type Config struct {
	Input      string
	Output     string
	MonomerDir string
	Lib        []string //highest-priority dictionary sources, in order
	Low        []string //lowest-priority dictionary sources, in order
	AutoCis    bool
	AutoLink   bool
	AutoLigand bool
	Hydrogens  topo.HydrogenChange
	Verbose    bool
}

func yesNo(name, v string) (bool, error) {
	switch strings.ToUpper(v) {
	case "Y":
		return true, nil
	case "N":
		return false, nil
	}
	return false, fmt.Errorf("--%s must be Y or N, got %q", name, v)
}

//parseArgs builds the configuration from command-line arguments,
//applying the CLIBD_MON fallback for the monomer library location. All
//configuration errors are caught here, before any file is touched.
func parseArgs(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("prep", pflag.ContinueOnError)
	monomers := fs.String("monomers", "", "monomer library directory (default: $CLIBD_MON)")
	libs := fs.StringArray("lib", nil, "extra dictionary file, highest priority (repeatable; '+' reads the input file's own restraint blocks)")
	lows := fs.StringArray("low", nil, "extra dictionary file, lowest priority (repeatable)")
	autoCis := fs.String("auto-cis", "Y", "assign cis/trans from coordinates (Y|N)")
	autoLink := fs.String("auto-link", "N", "find and add covalent links (Y|N)")
	autoLigand := fs.String("auto-ligand", "N", "synthesize restraints for unknown residues from coordinates (Y|N)")
	noH := fs.BoolP("no-hydrogens", "H", false, "remove hydrogens")
	keepH := fs.Bool("keep-hydrogens", false, "keep the input hydrogens instead of re-generating them")
	verbose := fs.BoolP("verbose", "v", false, "print progress")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: prep [options] INPUT_FILE OUTPUT_FILE")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 2 {
		return nil, fmt.Errorf("expected INPUT_FILE and OUTPUT_FILE, got %d positional arguments", fs.NArg())
	}
	cfg := &Config{
		Input:      fs.Arg(0),
		Output:     fs.Arg(1),
		MonomerDir: *monomers,
		Lib:        *libs,
		Low:        *lows,
		Verbose:    *verbose,
	}
	if cfg.MonomerDir == "" {
		cfg.MonomerDir = os.Getenv(monomerDirEnv)
	}
	if cfg.MonomerDir == "" {
		return nil, fmt.Errorf("no monomer library: give --monomers or set $%s", monomerDirEnv)
	}
	var err error
	if cfg.AutoCis, err = yesNo("auto-cis", *autoCis); err != nil {
		return nil, err
	}
	if cfg.AutoLink, err = yesNo("auto-link", *autoLink); err != nil {
		return nil, err
	}
	if cfg.AutoLigand, err = yesNo("auto-ligand", *autoLigand); err != nil {
		return nil, err
	}
	if *noH && *keepH {
		return nil, fmt.Errorf("--no-hydrogens and --keep-hydrogens are mutually exclusive")
	}
	switch {
	case *noH:
		cfg.Hydrogens = topo.Remove
	case *keepH:
		cfg.Hydrogens = topo.NoChange
	default:
		cfg.Hydrogens = topo.ReAdd
	}
	return cfg, nil
}

//makeSources turns the --lib/--low values into resolver sources, mapping
//the '+' sentinel to the input file's own parsed document.
func makeSources(specs []string, doc *cif.Document) []monlib.Source {
	var srcs []monlib.Source
	for _, s := range specs {
		if s == embeddedLibSentinel {
			srcs = append(srcs, monlib.DocSource(doc))
		} else {
			srcs = append(srcs, monlib.FileSource(s))
		}
	}
	return srcs
}

//run is the pipeline: read, resolve, link, build, write. The output file
//is created only after every other stage has succeeded, so a failed run
//never leaves a partial file behind.
func run(cfg *Config) error {
	if cfg.Verbose {
		fmt.Printf("Reading %s\n", cfg.Input)
	}
	st, doc, err := prep.ReadStructureFile(cfg.Input)
	if err != nil {
		return err
	}
	model, err := st.FirstModel()
	if err != nil {
		return err
	}
	required := model.AllResidueNames()
	rv := &monlib.Resolver{
		High:    makeSources(cfg.Lib, doc),
		Low:     makeSources(cfg.Low, doc),
		LibDir:  cfg.MonomerDir,
		Verbose: cfg.Verbose,
	}
	lib, missing, err := rv.Resolve(required)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		if !cfg.AutoLigand {
			return fmt.Errorf("no restraint definition for: %s (use --auto-ligand=Y to derive restraints from coordinates)",
				strings.Join(missing, ", "))
		}
		for _, name := range missing {
			res := monlib.FindMostCompleteResidue(name, model)
			if res == nil {
				return fmt.Errorf("residue %s required but not found in the model", name)
			}
			comp, err := monlib.FromResidue(res)
			if err != nil {
				return err
			}
			lib.Insert(comp)
			fmt.Printf("Warning: restraints for %s derived from its coordinates; they are cruder than a proper dictionary entry\n", name)
		}
	}
	if cfg.AutoLink {
		lf := neighbor.NewLinkFinder()
		lf.Verbose = cfg.Verbose
		added, err := lf.FindLinks(model, st)
		if err != nil {
			return err
		}
		if cfg.Verbose {
			fmt.Printf("Added %d links\n", len(added))
		}
	}
	builder := &topo.Builder{
		Lib:       lib,
		Hydrogens: cfg.Hydrogens,
		AutoCis:   cfg.AutoCis,
		Verbose:   cfg.Verbose,
	}
	topology, err := builder.Build(st)
	if err != nil {
		return err
	}
	f, err := os.Create(cfg.Output)
	if err != nil {
		return err
	}
	if err := topo.WriteCRD(f, st, topology, lib); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if cfg.Verbose {
		fmt.Printf("Wrote %s\n", cfg.Output)
	}
	return nil
}

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if err == pflag.ErrHelp {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

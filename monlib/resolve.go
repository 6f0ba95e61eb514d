package monlib

import (
	"fmt"
	"io"
	"os"

	"github.com/rmera/goprep/cif"
)

//Source loads monomer definitions from somewhere into a library. Sources
//must follow insert-if-absent semantics, so that applying them in order
//makes the order itself the priority.
type Source func(lib *MonLib) error

//FileSource reads a dictionary file (optionally gzipped).
func FileSource(path string) Source {
	return func(lib *MonLib) error {
		return lib.ReadMonomerFile(path)
	}
}

//DocSource reads definitions embedded in an already-parsed document, as
//when the coordinate mmCIF file carries its own restraint blocks.
func DocSource(doc *cif.Document) Source {
	return func(lib *MonLib) error {
		if doc == nil {
			return fmt.Errorf("monlib: no parsed document to read embedded definitions from (input is not mmCIF)")
		}
		lib.ReadMonomerDoc(doc)
		return nil
	}
}

//Resolver merges monomer definitions from prioritized sources into one
//dictionary. Tiers, from highest to lowest priority: the High sources in
//their given order, then the system library under LibDir (queried only for
//names still unresolved), then the Low sources.
type Resolver struct {
	High    []Source
	Low     []Source
	LibDir  string
	Verbose bool
	Out     io.Writer //progress and warnings; defaults to os.Stdout
}

func (rv *Resolver) out() io.Writer {
	if rv.Out != nil {
		return rv.Out
	}
	return os.Stdout
}

//Resolve builds the merged dictionary for the required residue names and
//returns it together with the names that remained unresolved after all
//tiers. Unresolved names are not an error here: whether they are fatal is
//the caller's policy. A source that cannot be read at all is an error.
func (rv *Resolver) Resolve(required []string) (*MonLib, []string, error) {
	lib := New()
	for _, src := range rv.High {
		if err := src(lib); err != nil {
			return nil, nil, err
		}
	}
	if rv.Verbose && len(lib.Monomers) > 0 {
		fmt.Fprintf(rv.out(), "Monomers read so far: %s\n", lib)
	}
	needed := lib.Missing(required)
	if rv.Verbose {
		fmt.Fprintln(rv.out(), "Reading monomer library...")
	}
	misses, err := lib.ReadMonomerLib(rv.LibDir, needed)
	if err != nil {
		return nil, nil, err
	}
	if misses != "" {
		fmt.Fprint(rv.out(), misses)
	}
	for _, src := range rv.Low {
		if err := src(lib); err != nil {
			return nil, nil, err
		}
	}
	return lib, lib.Missing(required), nil
}

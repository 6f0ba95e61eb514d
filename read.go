/*
 * read.go, part of goprep.
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
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/rmera/goprep/cif"
)

//OpenDecompressing opens the named file and returns a reader that will
//deliver data from the file 'as is' or decompressing first, depending on
//whether the name ends in ".gz".
func OpenDecompressing(fname string) (io.ReadCloser, error) {
	fhandle, err := os.Open(fname)
	if err != nil {
		return nil, errDecorate(err, "OpenDecompressing")
	}
	if !strings.HasSuffix(strings.ToLower(fname), ".gz") {
		return fhandle, nil
	}
	gz, err := gzip.NewReader(bufio.NewReader(fhandle))
	if err != nil {
		fhandle.Close()
		return nil, errDecorate(err, "OpenDecompressing")
	}
	return &gzCloser{Reader: gz, file: fhandle}, nil
}

//gzCloser closes both the decompressor and the underlying file.
type gzCloser struct {
	*gzip.Reader
	file *os.File
}

func (g *gzCloser) Close() error {
	err := g.Reader.Close()
	if err2 := g.file.Close(); err == nil {
		err = err2
	}
	return err
}

//CoorFormat is a coordinate file format.
type CoorFormat int

const (
	FormatUnknown CoorFormat = iota
	FormatPDB
	FormatMMCIF
)

//DetectFormat guesses the coordinate format from the file name (ignoring a
//trailing .gz) and, if the extension is not conclusive, from content: mmCIF
//files open with a data_ block.
func DetectFormat(fname string, head []byte) CoorFormat {
	name := strings.TrimSuffix(strings.ToLower(fname), ".gz")
	switch {
	case strings.HasSuffix(name, ".cif") || strings.HasSuffix(name, ".mmcif"):
		return FormatMMCIF
	case strings.HasSuffix(name, ".pdb") || strings.HasSuffix(name, ".ent") || strings.HasSuffix(name, ".brk"):
		return FormatPDB
	}
	for _, line := range strings.Split(string(head), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), "data_") {
			return FormatMMCIF
		}
		return FormatPDB
	}
	return FormatUnknown
}

//ReadStructureFile reads a coordinate file in a detected format,
//decompressing if needed. For mmCIF input the parsed document is returned
//alongside the structure so embedded restraint dictionaries can be
//extracted from it; for PDB input the document is nil.
func ReadStructureFile(fname string) (*Structure, *cif.Document, error) {
	r, err := OpenDecompressing(fname)
	if err != nil {
		return nil, nil, errDecorate(err, "ReadStructureFile")
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errDecorate(err, "ReadStructureFile")
	}
	switch DetectFormat(fname, data) {
	case FormatMMCIF:
		st, doc, err := CIFRead(bytes.NewReader(data))
		return st, doc, errDecorate(err, "ReadStructureFile")
	case FormatPDB:
		st, err := PDBRead(bytes.NewReader(data))
		return st, nil, errDecorate(err, "ReadStructureFile")
	}
	return nil, nil, CError{msg: "Couldn't detect the format of " + fname, deco: []string{"ReadStructureFile"}}
}

//Package cif implements a reader and writer for the subset of the CIF 1.1
//syntax used by macromolecular coordinate files (mmCIF) and monomer
//restraint dictionaries: data blocks, key-value items, loops, quoted and
//semicolon-delimited values.
package cif

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

//Loop is one loop_ construct: parallel columns of values under a set of tags.
type Loop struct {
	Tags []string
	Rows [][]string
}

//Column returns the index of the given tag in the loop, case-insensitively,
//or -1 if the tag is not part of the loop.
func (l *Loop) Column(tag string) int {
	for i, t := range l.Tags {
		if strings.EqualFold(t, tag) {
			return i
		}
	}
	return -1
}

//Block is one data_ block: scalar items plus loops, in file order.
type Block struct {
	Name  string
	Items map[string]string
	Loops []*Loop
}

//Item returns the value of a scalar item, case-insensitively. The bool
//reports whether the item was present.
func (b *Block) Item(tag string) (string, bool) {
	if v, ok := b.Items[strings.ToLower(tag)]; ok {
		return v, true
	}
	return "", false
}

//LoopWithTag returns the first loop containing the given tag, or nil.
func (b *Block) LoopWithTag(tag string) *Loop {
	for _, l := range b.Loops {
		if l.Column(tag) >= 0 {
			return l
		}
	}
	return nil
}

//Document is a parsed CIF file: data blocks in file order.
type Document struct {
	Blocks []*Block
}

//Block returns the block with the given name (case-insensitive), or nil.
func (d *Document) Block(name string) *Block {
	for _, b := range d.Blocks {
		if strings.EqualFold(b.Name, name) {
			return b
		}
	}
	return nil
}

type parser struct {
	sc     *bufio.Scanner
	peeked []string //tokens left over from the current line
	lineno int
}

//nextTokens returns the tokens of the next non-empty, non-comment line.
//Semicolon text fields are joined into a single token.
func (p *parser) nextTokens() ([]string, error) {
	if p.peeked != nil {
		t := p.peeked
		p.peeked = nil
		return t, nil
	}
	for p.sc.Scan() {
		p.lineno++
		line := p.sc.Text()
		if strings.HasPrefix(line, ";") {
			//multi-line text value, terminated by a lone ";"
			var text strings.Builder
			text.WriteString(strings.TrimPrefix(line, ";"))
			for p.sc.Scan() {
				p.lineno++
				l := p.sc.Text()
				if strings.HasPrefix(l, ";") {
					return []string{text.String()}, nil
				}
				if text.Len() > 0 {
					text.WriteByte('\n')
				}
				text.WriteString(l)
			}
			return nil, fmt.Errorf("cif: line %d: unterminated text field", p.lineno)
		}
		toks := splitTokens(line)
		if len(toks) == 0 {
			continue
		}
		return toks, nil
	}
	if err := p.sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (p *parser) pushBack(toks []string) {
	p.peeked = toks
}

//splitTokens splits a CIF line into tokens, honoring single and double
//quotes and dropping comments.
func splitTokens(line string) []string {
	toks := make([]string, 0, 8)
	i := 0
	n := len(line)
	for i < n {
		for i < n && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i >= n || line[i] == '#' {
			break
		}
		if line[i] == '\'' || line[i] == '"' {
			q := line[i]
			j := i + 1
			for j < n {
				//a closing quote must be followed by whitespace or EOL
				if line[j] == q && (j+1 >= n || line[j+1] == ' ' || line[j+1] == '\t') {
					break
				}
				j++
			}
			toks = append(toks, line[i+1:min(j, n)])
			i = j + 1
			continue
		}
		j := i
		for j < n && line[j] != ' ' && line[j] != '\t' {
			j++
		}
		toks = append(toks, line[i:j])
		i = j
	}
	return toks
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

//Parse reads a CIF document from r.
func Parse(r io.Reader) (*Document, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	p := &parser{sc: sc}
	doc := &Document{}
	var block *Block
	for {
		toks, err := p.nextTokens()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch {
		case strings.HasPrefix(strings.ToLower(toks[0]), "data_"):
			block = &Block{Name: toks[0][len("data_"):], Items: make(map[string]string)}
			doc.Blocks = append(doc.Blocks, block)
			if len(toks) > 1 {
				p.pushBack(toks[1:])
			}
		case strings.EqualFold(toks[0], "loop_"):
			if block == nil {
				return nil, fmt.Errorf("cif: line %d: loop_ outside a data block", p.lineno)
			}
			loop, err := p.parseLoop()
			if err != nil {
				return nil, err
			}
			block.Loops = append(block.Loops, loop)
		case strings.HasPrefix(toks[0], "_"):
			if block == nil {
				return nil, fmt.Errorf("cif: line %d: item outside a data block", p.lineno)
			}
			val := ""
			if len(toks) >= 2 {
				val = toks[1]
			} else {
				//value on the following line (possibly a text field)
				vtoks, err := p.nextTokens()
				if err != nil {
					return nil, fmt.Errorf("cif: line %d: item %s has no value", p.lineno, toks[0])
				}
				val = vtoks[0]
				if len(vtoks) > 1 {
					p.pushBack(vtoks[1:])
				}
			}
			block.Items[strings.ToLower(toks[0])] = val
		default:
			//stray values (e.g. global_) are skipped
		}
	}
	return doc, nil
}

func (p *parser) parseLoop() (*Loop, error) {
	loop := &Loop{}
	//header: one or more tag lines
	for {
		toks, err := p.nextTokens()
		if err != nil {
			return nil, fmt.Errorf("cif: line %d: loop_ without tags", p.lineno)
		}
		if !strings.HasPrefix(toks[0], "_") {
			p.pushBack(toks)
			break
		}
		for _, t := range toks {
			loop.Tags = append(loop.Tags, strings.ToLower(t))
		}
	}
	//body: values until the next tag, loop_ or data_ keyword. Values for one
	//row may span lines.
	ncol := len(loop.Tags)
	if ncol == 0 {
		return nil, fmt.Errorf("cif: line %d: empty loop header", p.lineno)
	}
	row := make([]string, 0, ncol)
	for {
		toks, err := p.nextTokens()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		first := strings.ToLower(toks[0])
		if strings.HasPrefix(first, "_") || first == "loop_" ||
			strings.HasPrefix(first, "data_") || first == "stop_" {
			p.pushBack(toks)
			break
		}
		for _, t := range toks {
			row = append(row, t)
			if len(row) == ncol {
				loop.Rows = append(loop.Rows, row)
				row = make([]string, 0, ncol)
			}
		}
	}
	if len(row) != 0 {
		return nil, fmt.Errorf("cif: line %d: loop with incomplete last row (%d of %d values)", p.lineno, len(row), ncol)
	}
	return loop, nil
}

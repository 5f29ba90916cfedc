// Package lxcat reads cross sections in the LXCat text format.
//
// A file is a sequence of blocks. Each block starts with a kind keyword on
// its own line, then the target line, a numeric line (mass ratio or
// threshold, absent for attachment), free KEY: value lines, and the table
// of energy / cross section pairs between two dashed lines. Everything
// outside the blocks is ignored.
package lxcat

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"nepc/xsec"
)

// Kinds of collision process.
const (
	Elastic    = "ELASTIC"
	Effective  = "EFFECTIVE"
	Excitation = "EXCITATION"
	Ionization = "IONIZATION"
	Attachment = "ATTACHMENT"
	Rotational = "ROTATIONAL"
)

var kinds = map[string]bool{
	Elastic: true, Effective: true, Excitation: true,
	Ionization: true, Attachment: true, Rotational: true,
}

// ParseFile parses the LXCat file at path.
func ParseFile(path string) ([]xsec.Process, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	procs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return procs, nil
}

// Parse reads every process block from r.
func Parse(r io.Reader) ([]xsec.Process, error) {
	p := &parser{sc: bufio.NewScanner(r)}
	p.sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var procs []xsec.Process
	for p.next() {
		kind := strings.ToUpper(p.line)
		if !kinds[kind] {
			continue
		}
		proc, err := p.block(kind)
		if err != nil {
			return nil, err
		}
		procs = append(procs, proc)
	}
	if err := p.sc.Err(); err != nil {
		return nil, err
	}
	return procs, nil
}

// Filter keeps the processes of the given kind.
func Filter(procs []xsec.Process, kind string) []xsec.Process {
	kind = strings.ToUpper(kind)
	var out []xsec.Process
	for _, p := range procs {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

type parser struct {
	sc   *bufio.Scanner
	line string
	n    int
}

func (p *parser) next() bool {
	if !p.sc.Scan() {
		return false
	}
	p.n++
	p.line = strings.TrimSpace(p.sc.Text())
	return true
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s", p.n, fmt.Sprintf(format, args...))
}

func (p *parser) block(kind string) (xsec.Process, error) {
	proc := xsec.Process{Kind: kind}

	if !p.next() {
		return proc, p.errorf("%s: missing target line", kind)
	}
	proc.Target, proc.Product = splitTarget(p.line)

	if kind != Attachment {
		if !p.next() {
			return proc, p.errorf("%s: missing parameter line", kind)
		}
		fields := strings.Fields(p.line)
		if len(fields) == 0 {
			return proc, p.errorf("%s: empty parameter line", kind)
		}
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return proc, p.errorf("%s: %v", kind, err)
		}
		if kind == Elastic || kind == Effective {
			proc.MassRatio = v
		} else {
			proc.Threshold = v
		}
	}

	var comments []string
	for {
		if !p.next() {
			return proc, p.errorf("%s %s: table not found", kind, proc.Target)
		}
		if isRule(p.line) {
			break
		}
		key, value, ok := strings.Cut(p.line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "PROCESS":
			proc.Process = value
		case "COMMENT":
			comments = append(comments, value)
		}
	}
	proc.Comment = strings.Join(comments, "\n")

	for {
		if !p.next() {
			return proc, p.errorf("%s %s: unterminated table", kind, proc.Target)
		}
		if isRule(p.line) {
			break
		}
		fields := strings.Fields(p.line)
		if len(fields) < 2 {
			return proc, p.errorf("want energy and cross section, got %q", p.line)
		}
		e, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return proc, p.errorf("%v", err)
		}
		s, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return proc, p.errorf("%v", err)
		}
		proc.Data = append(proc.Data, [2]float64{e, s})
	}

	if proc.Process == "" {
		proc.Process = defaultLabel(proc)
	}
	return proc, nil
}

func splitTarget(line string) (target, product string) {
	for _, arrow := range []string{"<->", "->"} {
		if t, prod, ok := strings.Cut(line, arrow); ok {
			return strings.TrimSpace(t), strings.TrimSpace(prod)
		}
	}
	return line, ""
}

func defaultLabel(p xsec.Process) string {
	if p.Product == "" {
		return fmt.Sprintf("%s, %s", p.Target, p.Kind)
	}
	return fmt.Sprintf("%s -> %s, %s", p.Target, p.Product, p.Kind)
}

func isRule(line string) bool {
	return len(line) >= 5 && strings.Trim(line, "-") == ""
}

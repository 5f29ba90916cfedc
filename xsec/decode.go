package xsec

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DecodeCurve builds a Curve from a mapping-typed record such as the rows
// returned by the NEPC model accessor.
func DecodeCurve(m map[string]any) (Curve, error) {
	var c Curve
	if err := decode(m, &c, "e", "sigma", "units_sigma"); err != nil {
		return Curve{}, fmt.Errorf("decode curve: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Curve{}, err
	}
	return c, nil
}

// DecodeProcess builds a Process from a mapping with at least "data".
func DecodeProcess(m map[string]any) (Process, error) {
	var p Process
	if err := decode(m, &p, "data"); err != nil {
		return Process{}, fmt.Errorf("decode process: %w", err)
	}
	return p, nil
}

func decode(m map[string]any, out any, required ...string) error {
	for _, key := range required {
		if _, ok := m[key]; !ok {
			return fmt.Errorf("missing field %q", key)
		}
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(m)
}

// LoadModel reads a list of curve records from a YAML or JSON file.
func LoadModel(path string) ([]Curve, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadModel(f)
}

// ReadModel is LoadModel over an arbitrary reader.
func ReadModel(r io.Reader) ([]Curve, error) {
	var rows []map[string]any
	if err := yaml.NewDecoder(r).Decode(&rows); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read model: %w", err)
	}
	model := make([]Curve, 0, len(rows))
	for i, row := range rows {
		c, err := DecodeCurve(row)
		if err != nil {
			return nil, fmt.Errorf("model record %d: %w", i, err)
		}
		model = append(model, c)
	}
	return model, nil
}

// LoadColumns reads whitespace or comma separated energy/cross-section
// pairs. Blank lines and lines starting with '#' are skipped.
func LoadColumns(path string) ([][2]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadColumns(f)
}

// ReadColumns is LoadColumns over an arbitrary reader.
func ReadColumns(r io.Reader) ([][2]float64, error) {
	var data [][2]float64
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: want 2 columns, got %d", n, len(fields))
		}
		e, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		s, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		data = append(data, [2]float64{e, s})
	}
	return data, sc.Err()
}

package tuning

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrTooFewValues is returned when a tuning source holds fewer than 12
// usable cent values.
var ErrTooFewValues = errors.New("tuning: fewer than 12 cent values")

// Parse reads one cents value per line. Blank lines and lines starting with
// '!' or '#' are comments. Lines that do not parse as a number are skipped.
// The first 12 values fill C..B; anything after that is ignored.
func Parse(r io.Reader) ([12]float32, error) {
	var cents [12]float32
	n := 0
	sc := bufio.NewScanner(r)
	for n < len(cents) && sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '!' || line[0] == '#' {
			continue
		}
		// Allow trailing annotations: "70.7 ; C#".
		if i := strings.IndexAny(line, " \t;"); i > 0 {
			line = line[:i]
		}
		v, err := strconv.ParseFloat(line, 32)
		if err != nil {
			continue
		}
		cents[n] = float32(v)
		n++
	}
	if err := sc.Err(); err != nil {
		return [12]float32{}, fmt.Errorf("tuning: read: %w", err)
	}
	if n < len(cents) {
		return [12]float32{}, fmt.Errorf("%w (got %d)", ErrTooFewValues, n)
	}
	return cents, nil
}

// LoadFile parses a .tun file into a Custom table named after the file.
func LoadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("tuning: open %s: %w", path, err)
	}
	defer f.Close()

	cents, err := Parse(f)
	if err != nil {
		return Table{}, fmt.Errorf("%s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return NewCustom(name, cents), nil
}

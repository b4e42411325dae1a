package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/c360studio/semevents/triples"
)

// EncodeJSONL writes one description per line. Non-ASCII text is written as is.
func EncodeJSONL(w io.Writer, descs []triples.Description) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, d := range descs {
		if d.Triples == nil {
			d.Triples = []triples.Triple{}
		}
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encode description %d: %w", i, err)
		}
	}
	return nil
}

// WriteJSONL writes descriptions to path, creating parent directories.
func WriteJSONL(path string, descs []triples.Description) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	if err := EncodeJSONL(w, descs); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

// ReadJSONL reads descriptions written by WriteJSONL. Blank lines are skipped.
func ReadJSONL(path string) ([]triples.Description, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var descs []triples.Description
	dec := json.NewDecoder(bufio.NewReader(f))
	for {
		var d triples.Description
		err := dec.Decode(&d)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s entry %d: %w", path, len(descs)+1, err)
		}
		descs = append(descs, d)
	}
	return descs, nil
}

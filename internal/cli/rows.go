package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/roach88/rowcook/internal/ir"
)

// maxRowBytes bounds a single JSON line.
const maxRowBytes = 16 << 20

// inputRow is one row read from a JSON lines file.
type inputRow struct {
	Line int
	Row  ir.Row
}

// readRows reads JSON lines from path, or from stdin when path is "-".
// Blank lines are skipped.
func readRows(path string, stdin io.Reader) ([]inputRow, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open rows: %w", err)
		}
		defer file.Close()
		r = file
	}
	return decodeRows(r)
}

func decodeRows(r io.Reader) ([]inputRow, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRowBytes)

	var rows []inputRow
	line := 0
	for scanner.Scan() {
		line++
		data := bytes.TrimSpace(scanner.Bytes())
		if len(data) == 0 {
			continue
		}
		var row ir.Row
		if err := json.Unmarshal(data, &row); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, inputRow{Line: line, Row: row})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}

// writeRow writes one row as a JSON line.
func writeRow(w io.Writer, row ir.Row) error {
	data, err := row.MarshalJSON()
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

package extract

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/baberabb/cce-go/internal/cce"
)

const maxRecordBytes = 4 * 1024 * 1024

// SaveRegistrations writes one registration per line as JSON.
func SaveRegistrations(path string, regs []*cce.Registration) error {
	return saveLines(path, len(regs), func(enc *json.Encoder, i int) error {
		return enc.Encode(regs[i])
	})
}

// LoadRegistrations reads a registration-per-line file back into an arena,
// preserving file order.
func LoadRegistrations(path string) (*cce.Arena, error) {
	arena := cce.NewArena()
	err := loadLines(path, func(line []byte) error {
		var reg cce.Registration
		if err := json.Unmarshal(line, &reg); err != nil {
			return err
		}
		arena.Add(&reg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return arena, nil
}

// SaveRenewals writes one renewal per line as JSON.
func SaveRenewals(path string, renewals []*cce.Renewal) error {
	return saveLines(path, len(renewals), func(enc *json.Encoder, i int) error {
		return enc.Encode(renewals[i])
	})
}

// LoadRenewals reads a renewal-per-line file.
func LoadRenewals(path string) ([]*cce.Renewal, error) {
	var renewals []*cce.Renewal
	err := loadLines(path, func(line []byte) error {
		var r cce.Renewal
		if err := json.Unmarshal(line, &r); err != nil {
			return err
		}
		renewals = append(renewals, &r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return renewals, nil
}

func saveLines(path string, n int, encode func(*json.Encoder, int) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for i := 0; i < n; i++ {
		if err := encode(enc, i); err != nil {
			f.Close()
			return fmt.Errorf("failed to write record to %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func loadLines(path string, decode func([]byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := decode(line); err != nil {
			return fmt.Errorf("bad record at %s:%d: %w", path, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

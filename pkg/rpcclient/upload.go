package rpcclient

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
)

type startWriteProgramResult struct {
	BlockSize  int    `json:"blocksize"`
	TransferID string `json:"transferid"`
}

// Upload implements spec §4.8's chunked upload procedure: start_write_program
// yields a blocksize and transferid; the source file is read in chunks of
// exactly blocksize bytes, base64-encoded, and sent as write_package calls
// until EOF. If start is true, program_execute follows.
func (c *Client) Upload(path string, slot int, name string, start bool, nowMs int64) error {
	if name == "" {
		name = filepath.Base(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	size := int(info.Size())

	startResult, err := c.startWriteProgram(name, size, slot, nowMs, nowMs)
	if err != nil {
		return fmt.Errorf("start_write_program: %w", err)
	}
	var swp startWriteProgramResult
	if err := json.Unmarshal(startResult, &swp); err != nil {
		return fmt.Errorf("decode start_write_program reply: %w", err)
	}
	if swp.BlockSize <= 0 {
		return fmt.Errorf("gateway returned non-positive blocksize %d", swp.BlockSize)
	}

	bar := progressbar.DefaultBytes(int64(size), "uploading")
	buf := make([]byte, swp.BlockSize)
	for {
		n, readErr := io.ReadFull(f, buf)
		if n > 0 {
			chunk := base64.StdEncoding.EncodeToString(buf[:n])
			if _, err := c.writePackage(chunk, swp.TransferID); err != nil {
				return fmt.Errorf("write_package: %w", err)
			}
			_ = bar.Add(n)
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("read %s: %w", path, readErr)
		}
	}
	_ = bar.Finish()

	if start {
		if _, err := c.ProgramExecute(slot); err != nil {
			return fmt.Errorf("program_execute: %w", err)
		}
	}
	return nil
}

package discovery

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/linuxmatters/albumprep/internal/metadata"
)

const delimiter = "----------------------------------------------------------------"

// Emit writes the captured blocks as pretty JSON. When console is set they
// go to w between delimiter lines; when path is non-empty they are also
// written to that file.
func Emit(w io.Writer, console bool, path string, blocks metadata.BlockList) error {
	if blocks == nil {
		blocks = metadata.BlockList{}
	}

	var buf bytes.Buffer
	if err := metadata.WriteJSON(&buf, blocks); err != nil {
		return fmt.Errorf("failed to encode existing tags: %w", err)
	}

	if console {
		if _, err := fmt.Fprintf(w, "Emitting existing tags for %d input file(s) below this line...\n%s\n", len(blocks), delimiter); err != nil {
			return err
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "\n%s\n", delimiter); err != nil {
			return err
		}
	}

	if path != "" {
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write existing tags: %w", err)
		}
	}

	return nil
}

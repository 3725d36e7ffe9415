package library

import (
	"context"
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

// CopyFile copies src to dst verbatim.
// dst is created with mode 0644 or truncated if it exists; src is only read.
func CopyFile(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return errors.Wrap(err, "failed to open source file")
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrap(err, "failed to create destination file")
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrap(err, "failed to copy file contents")
	}
	return errors.Wrap(out.Close(), "failed to close destination file")
}

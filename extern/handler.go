package extern

import (
	"context"
	"io"
	"os"
)

// ExecHandlerFunc runs a SimpleCommand's resolved argv, modeled on
// mvdan.cc/sh/v3/interp.ExecHandlerFunc. An executor built on this
// core's AST (syntax.SimpleCommand) supplies one of these; nothing in
// this repository calls it.
type ExecHandlerFunc func(ctx context.Context, args []string) error

// OpenHandlerFunc opens a file for a Redirect's operand, modeled on
// mvdan.cc/sh/v3/interp.OpenHandlerFunc.
type OpenHandlerFunc func(ctx context.Context, path string, flag int, perm os.FileMode) (io.ReadWriteCloser, error)

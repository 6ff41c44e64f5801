// Package memo runs external commands with their stdout memoized through an
// on-disk squirrel cache.
package memo

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/keksclan/rawrsquirrel/pkg/squirrel"
)

// Config holds run settings that may be overridden from the environment.
// TTL is a pointer so an explicit SQUIRREL_TTL=0 (caching off) can be told
// apart from the variable being unset.
type Config struct {
	CacheDir string `env:"SQUIRREL_CACHE_DIR"`
	TTL      *int   `env:"SQUIRREL_TTL"`
	Compress bool   `env:"SQUIRREL_COMPRESS"`
}

// Runner executes commands and memoizes their standard output. Stderr is
// streamed through uncached, and only successful runs are persisted.
type Runner struct {
	CacheDir   string
	TTLSeconds int
	Compress   bool
	Logger     *log.Logger
	Stdout     io.Writer
	Stderr     io.Writer
}

// Run executes argv, returning the command's exit code. On a cache hit the
// stored output is replayed without starting the process at all.
func (r *Runner) Run(argv []string) (int, error) {
	if len(argv) == 0 {
		return 1, errors.New("no command given")
	}

	var codec squirrel.Codec[[]byte] = squirrel.RawCodec{}
	if r.Compress {
		zc, err := squirrel.NewZstdCodec[[]byte](squirrel.RawCodec{}, 3)
		if err != nil {
			return 1, fmt.Errorf("unable to set up compression: %w", err)
		}
		codec = zc
	}

	cache, err := squirrel.New[[]byte](r.CacheDir, r.TTLSeconds,
		squirrel.WithCodec[[]byte](codec),
		squirrel.WithLogger[[]byte](r.Logger),
	)
	if err != nil {
		return 1, err
	}
	defer cache.Close()

	key := cacheKey(argv)
	out, err := cache.Squirrel(key, func() ([]byte, error) {
		r.Logger.Debug("running command", "argv", argv)

		var buf bytes.Buffer
		cmd := exec.Command(argv[0], argv[1:]...)
		cmd.Stdout = &buf
		cmd.Stderr = r.Stderr
		cmd.Stdin = os.Stdin

		if err := cmd.Run(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), err
		}
		return 1, err
	}

	if _, err := r.Stdout.Write(out); err != nil {
		return 1, fmt.Errorf("unable to write output: %w", err)
	}
	return 0, nil
}

// cacheKey derives the memoization key for argv. The working directory is
// folded in so the same command run from different places never shares an
// entry.
func cacheKey(argv []string) string {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}
	return cwd + "\x00" + strings.Join(argv, "\x00")
}

package cmd

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/klauspost/readahead"

	"github.com/MOARdV/AvionicsSystems-sub005/lang"
	"github.com/MOARdV/AvionicsSystems-sub005/log"
	"github.com/MOARdV/AvionicsSystems-sub005/pkg"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	outputKey  struct{}
	symbolsKey struct{}
)

// WithOutput returns a new context.Context directing command output to w.
// Commands write to os.Stdout when no writer is set.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// WithSymbols returns a new context.Context containing the symbol table used
// to scan expressions. Commands use [lang.DefaultSymbols] when none is set.
func WithSymbols(ctx context.Context, symbols lang.SymbolTable) context.Context {
	return context.WithValue(ctx, symbolsKey{}, symbols)
}

func symbolsFrom(ctx context.Context) lang.SymbolTable {
	if t, ok := ctx.Value(symbolsKey{}).(lang.SymbolTable); ok && t != nil {
		return t
	}

	return lang.DefaultSymbols()
}

// compileOptions returns the lang options shared by every command: the
// scanner for the active symbol table and the default logger.
func compileOptions(ctx context.Context) ([]lang.Option, error) {
	opts := []lang.Option{lang.WithLogger(log.Default())}

	symbols, ok := ctx.Value(symbolsKey{}).(lang.SymbolTable)
	if !ok || symbols == nil {
		return opts, nil
	}

	scanner, err := lang.NewScanner(symbols)
	if err != nil {
		return nil, err
	}

	return append(opts, lang.WithScanner(scanner)), nil
}

type (
	sourceFilesKey struct{}
	sourceFiles    struct {
		read     []io.Reader
		multi    io.Reader
		hasStdin bool
	}

	SourceFiles interface {
		IsZero() bool
		Stdin() io.Reader
		io.Reader
		io.WriterTo
	}
)

// IsZero reports whether there are no source files.
func (s *sourceFiles) IsZero() bool { return len(s.read) == 0 && !s.hasStdin }

// Stdin returns os.Stdin if stdin was included as a source, or nil otherwise.
func (s *sourceFiles) Stdin() io.Reader {
	if s.hasStdin {
		return os.Stdin
	}

	return nil
}

func (s *sourceFiles) reader() io.Reader {
	if s.multi == nil {
		readers := s.read
		if s.hasStdin {
			readers = append(readers[:len(readers):len(readers)], os.Stdin)
		}

		s.multi = io.MultiReader(readers...)
	}

	return s.multi
}

// Read implements io.Reader by reading from all source files in order,
// including stdin if present.
func (s *sourceFiles) Read(p []byte) (n int, err error) {
	return s.reader().Read(p)
}

// WriteTo implements io.WriterTo by writing all source files to w in order,
// including stdin if present.
func (s *sourceFiles) WriteTo(w io.Writer) (n int64, err error) {
	return io.Copy(w, s.reader())
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// WithSourceFiles returns a new context.Context containing an [io.Reader] that
// reads from the given source files.
//
// The function deduplicates readers by resolving symlinks and comparing device/
// inode pairs. All occurrences of "-" are replaced with a single stdin reader.
// The stdin reader is placed last so it reads after all regular files.
func WithSourceFiles(ctx context.Context, sources []string) context.Context {
	return context.WithValue(ctx, sourceFilesKey{}, buildSourceFiles(sources))
}

// buildSourceFiles constructs a SourceFiles from the given source paths.
func buildSourceFiles(sources []string) SourceFiles {
	if len(sources) == 0 {
		return nil
	}

	var srcs sourceFiles

	srcs.read = make([]io.Reader, 0, len(sources))
	seen := make(map[fileKey]struct{})

	stdinInfo, _ := os.Stdin.Stat()
	stdinKey, _ := makeFileKey(stdinInfo)

	for _, src := range sources {
		if src == stdinSource {
			seen[stdinKey] = struct{}{}

			continue
		}

		reader, ok := openUniqueFile(src, seen)
		if !ok {
			continue
		}

		srcs.read = append(srcs.read, reader)
	}

	// Stdin may have been included via "-" or as a named file.
	// Both of which will be represented by stdinKey in seen.
	_, srcs.hasStdin = seen[stdinKey]

	if srcs.IsZero() {
		return nil
	}

	return &srcs
}

// openUniqueFile opens the file at path if it hasn't been seen before.
// It resolves symlinks and uses device/inode to detect duplicates.
// Returns the opened file and true if successful, or nil and false if the file
// is a duplicate or cannot be opened.
func openUniqueFile(path string, seen map[fileKey]struct{}) (io.Reader, bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, false
	}

	key, ok := makeFileKey(info)
	if !ok {
		return nil, false
	}

	if _, exists := seen[key]; exists {
		return nil, false
	}

	seen[key] = struct{}{}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, false
	}

	return file, true
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	if info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// sourceFilesFrom retrieves the reader stored in ctx by WithSourceFiles.
// Returns nil if no reader was stored.
func sourceFilesFrom(ctx context.Context) SourceFiles {
	r, _ := ctx.Value(sourceFilesKey{}).(SourceFiles)

	return r
}

// inputReader returns the reader for expression source: the --source files,
// or stdin when none were given.
func inputReader(ctx context.Context) io.Reader {
	if src := sourceFilesFrom(ctx); src != nil {
		return src
	}

	return os.Stdin
}

// commentPrefix starts a line ignored by [eachSource].
const commentPrefix = "--"

// eachSource calls fn for every expression to process with its 1-based
// line number. Arguments are used when given. Otherwise each non-blank line
// of the input is one expression, and lines beginning with "--" are skipped.
// Iteration stops at the first error returned by fn.
func eachSource(
	ctx context.Context,
	args []string,
	fn func(line int, source string) error,
) error {
	if len(args) > 0 {
		for i, arg := range args {
			if err := fn(i+1, arg); err != nil {
				return err
			}
		}

		return nil
	}

	ra := readahead.NewReader(inputReader(ctx))
	defer ra.Close()

	scanner := bufio.NewScanner(ra)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, commentPrefix) {
			continue
		}

		if err := fn(line, text); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return pkg.ErrReadInput.Wrap(err)
	}

	return nil
}

package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ardnew/mung"

	"github.com/MOARdV/AvionicsSystems-sub005/pkg"
)

const (
	// baseConfig is the base name of the configuration file.
	baseConfig = "config"

	// baseSymbols is the symbol table file used when --symbols is not given.
	baseSymbols = "symbols.yaml"
)

// DefaultDirMode is the default permission mode for created directories.
var defaultDirMode os.FileMode = 0o700

// basePrefix returns the base prefix string used to construct the path to the
// configuration directory.
//
// By default, basePrefix is the base name of the executable file unless it
// matches one of the following substitution rules:
//   - "__debug_bin" (default output of the dlv debugger): replaced with cmd
//   - "^\.+" (dot-prefixed names): remove the dot prefix
var basePrefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		exe, err := os.Executable()
		if err == nil {
			id = exe
		}

		ext := filepath.Ext(filepath.Base(id))
		id = strings.TrimSuffix(filepath.Base(id), ext)

		for rex, rep := range map[*regexp.Regexp]string{
			regexp.MustCompile(`^__debug_bin\d+$`): pkg.Name, // dlv default output
			regexp.MustCompile(`^\.+`):             "",       // remove leading dot(s)
		} {
			id = rex.ReplaceAllString(id, rep)
		}

		return id
	},
)

// userDir returns the per-user directory from primary, falling back to the
// given subdirectory of the home directory and then the working directory.
func userDir(primary func() (string, error), homeSub string) string {
	dir, err := primary()
	if err == nil {
		return filepath.Join(dir, basePrefix())
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, homeSub, basePrefix())
	}

	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, basePrefix())
	}

	return basePrefix()
}

// configDir returns the configuration directory path.
var configDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config")
})

// cacheDir returns the cache directory path used for transient files.
var cacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache")
})

// configPath returns the absolute path to a file or directory formed by joining
// the global configuration directory path with the given path elements.
//
// If no elements are given, it is equivalent to calling [configDir].
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}

// symbolPathEnv returns the name of the environment variable holding extra
// symbol table directories, e.g. MASEXPR_SYMBOL_PATH.
func symbolPathEnv() string {
	return pkg.EnvPrefix() + "SYMBOL_PATH"
}

// symbolSearchPath returns the directories searched for a symbol table, in
// order: dirs, the entries of the symbol path environment variable, and
// the configuration directory. Entries that are not directories are
// dropped.
func symbolSearchPath(dirs ...string) []string {
	list := mung.Make(
		mung.WithSubjectItems(os.Getenv(symbolPathEnv())),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(dirs...),
		mung.WithFilter(isDir),
	).String()

	return append(filepath.SplitList(list), configDir())
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

// findSymbols returns the path of the symbol table file name. A name with a
// directory component is used as given. A bare name is looked up in each
// directory of the search path in turn.
func findSymbols(name string, dirs []string) (string, error) {
	if filepath.Base(name) != name {
		if _, err := os.Stat(name); err != nil {
			return "", pkg.ErrSymbolsNotFound.Wrap(err)
		}

		return name, nil
	}

	search := symbolSearchPath(dirs...)

	for _, dir := range search {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}

	return "", pkg.ErrSymbolsNotFound.Wrapf("%s in %s",
		name, strings.Join(search, string(os.PathListSeparator)))
}

// Package ignore resolves gitignore-style ignore rules for a directory walk.
//
// Rules are hierarchical: each visited directory contributes the patterns found in
// its own ignore files, appended after those of its ancestors. Patterns are
// evaluated last-to-first, so a rule in a nearer directory overrides an ancestor's
// rule for the same path. The ignore files of the directories above a walk root
// are loaded too, so scanning a subdirectory of a repository honors the
// repository's rules. Git sources (.gitignore, .git/info/exclude and the global
// excludes) only apply inside a git repository unless RequireGit is off.
// Machine-global sources (the git core.excludesfile of the system and user
// config, or $XDG_CONFIG_HOME/git/ignore) sit below every directory rule. Extra
// patterns from configuration are checked before everything else.
package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// File names consulted in every directory.
const (
	GitIgnoreFile = ".gitignore"
	DotIgnoreFile = ".ignore"
	GitDir        = ".git"
)

var gitExcludePath = []string{GitDir, "info", "exclude"}

// Options selects which rule sources are honored.
type Options struct {
	Enabled    bool     // false disables every ignore file; Patterns still apply
	GitIgnore  bool     // .gitignore in each directory
	DotIgnore  bool     // .ignore in each directory
	GitExclude bool     // .git/info/exclude next to a .git directory
	GitGlobal  bool     // system and user core.excludesfile
	Parents    bool     // also read the ignore files of directories above a walk root
	RequireGit bool     // git sources only apply inside a directory tree holding .git
	Patterns   []string // extra gitignore-style patterns relative to each root
}

// DefaultOptions enables every source.
func DefaultOptions() Options {
	return Options{
		Enabled:    true,
		GitIgnore:  true,
		DotIgnore:  true,
		GitExclude: true,
		GitGlobal:  true,
		Parents:    true,
		RequireGit: true,
	}
}

// Loader reads ignore files through a billy filesystem. Global patterns are read
// once, when the Loader is created. A Loader is safe for concurrent use.
type Loader struct {
	fs            billy.Filesystem
	opts          Options
	global        []gitignore.Pattern
	extra         gitignore.Matcher
	warnings      []error
	xdgConfigHome string
}

// NewOSLoader returns a Loader over the host filesystem. Paths handed to it must
// be absolute.
func NewOSLoader(opts Options) *Loader {
	return NewLoader(osfs.New("/"), opts)
}

// NewLoader returns a Loader reading from fs.
func NewLoader(fs billy.Filesystem, opts Options) *Loader {
	l := &Loader{
		fs:            fs,
		opts:          opts,
		xdgConfigHome: xdg.ConfigHome,
	}
	if len(opts.Patterns) > 0 {
		ps := make([]gitignore.Pattern, 0, len(opts.Patterns))
		for _, p := range opts.Patterns {
			if strings.TrimSpace(p) == "" {
				continue
			}
			ps = append(ps, gitignore.ParsePattern(p, nil))
		}
		l.extra = gitignore.NewMatcher(ps)
	}

	if opts.Enabled && opts.GitGlobal {
		l.loadGlobal()
	}
	return l
}

func (l *Loader) loadGlobal() {
	system, err := gitignore.LoadSystemPatterns(l.fs)
	if err != nil {
		l.warnings = append(l.warnings, fmt.Errorf("failed to load system ignore patterns: %w", err))
	}
	l.global = append(l.global, system...)

	user, err := gitignore.LoadGlobalPatterns(l.fs)
	if err != nil {
		l.warnings = append(l.warnings, fmt.Errorf("failed to load global ignore patterns: %w", err))
	}
	if len(user) == 0 && l.xdgConfigHome != "" {
		// git falls back to $XDG_CONFIG_HOME/git/ignore when core.excludesfile is unset
		path := filepath.Join(l.xdgConfigHome, "git", "ignore")
		user, err = l.readFile(path, nil)
		if err != nil {
			l.warnings = append(l.warnings, err)
		}
	}
	l.global = append(l.global, user...)
}

// Warnings returns non-fatal problems met while loading global sources.
func (l *Loader) Warnings() []error {
	return l.warnings
}

// Root returns the rules in force at the walk root before the root's own ignore
// files are read. root must be an absolute path the Loader's filesystem can open.
// The ignore files of every directory above root are loaded, the git ones only
// within the enclosing repository. An error reports unreadable files; the
// returned rules are usable either way.
func (l *Loader) Root(root string) (*Rules, error) {
	if !l.opts.Enabled {
		if l.extra == nil {
			return nil, nil
		}
		return &Rules{extra: l.extra}, nil
	}

	root = filepath.Clean(root)
	rules := &Rules{
		prefix: []string{},
		global: l.global,
		extra:  l.extra,
		git:    !l.opts.RequireGit,
	}

	var repo string
	if l.opts.RequireGit {
		repo = l.findRepo(root)
		rules.git = repo != ""
	}
	if !l.opts.Parents {
		return rules, nil
	}

	type source struct {
		dir   string
		lines []string
	}
	var (
		found []source
		errs  []error
	)
	for _, dir := range ancestors(root) {
		git := !l.opts.RequireGit || (repo != "" && within(dir, repo))
		var lines []string
		for _, name := range l.sourceFiles(dir, git) {
			ls, err := l.readLines(name)
			lines = append(lines, ls...)
			errs = append(errs, err)
		}
		if len(lines) > 0 {
			found = append(found, source{dir: dir, lines: lines})
		}
	}
	if len(found) == 0 {
		return rules, errors.Join(errs...)
	}

	// patterns are anchored at the outermost directory that contributed any
	base := found[0].dir
	rules.prefix = components(base, root)
	for _, src := range found {
		rules.patterns = append(rules.patterns, parsePatterns(src.lines, components(base, src.dir))...)
	}
	return rules, errors.Join(errs...)
}

// Descend returns the rules for directory dir, whose path relative to the walk root
// is rel. dir must be a path the Loader's filesystem can open. When the
// directory holds no ignore files and does not start a repository the parent
// rules are returned unchanged.
func (l *Loader) Descend(parent *Rules, dir string, rel []string) (*Rules, error) {
	if !l.opts.Enabled || parent == nil {
		return parent, nil
	}

	git := parent.git || l.isRepo(dir)
	domain := append(parent.prefix[:len(parent.prefix):len(parent.prefix)], rel...)

	var (
		local []gitignore.Pattern
		errs  []error
	)
	for _, name := range l.sourceFiles(dir, git) {
		lines, err := l.readLines(name)
		local = append(local, parsePatterns(lines, domain)...)
		errs = append(errs, err)
	}

	err := errors.Join(errs...)
	if len(local) == 0 && git == parent.git {
		return parent, err
	}

	child := *parent
	child.git = git
	if len(local) > 0 {
		child.patterns = append(parent.patterns[:len(parent.patterns):len(parent.patterns)], local...)
	}
	return &child, err
}

// sourceFiles lists the ignore files of dir, lowest precedence first: exclude,
// then .gitignore, then .ignore.
func (l *Loader) sourceFiles(dir string, git bool) []string {
	var files []string
	if git && l.opts.GitExclude {
		files = append(files, filepath.Join(append([]string{dir}, gitExcludePath...)...))
	}
	if git && l.opts.GitIgnore {
		files = append(files, filepath.Join(dir, GitIgnoreFile))
	}
	if l.opts.DotIgnore {
		files = append(files, filepath.Join(dir, DotIgnoreFile))
	}
	return files
}

// findRepo returns the nearest directory at or above dir holding .git, or "".
func (l *Loader) findRepo(dir string) string {
	for {
		if l.isRepo(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func (l *Loader) isRepo(dir string) bool {
	_, err := l.fs.Stat(filepath.Join(dir, GitDir))
	return err == nil
}

// readFile parses one ignore file. A missing file yields no patterns and no error.
func (l *Loader) readFile(path string, domain []string) ([]gitignore.Pattern, error) {
	lines, err := l.readLines(path)
	return parsePatterns(lines, domain), err
}

// readLines returns the pattern lines of one ignore file, without comments and
// blank lines. A missing file yields nothing and no error.
func (l *Loader) readLines(path string) ([]string, error) {
	f, err := l.fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open ignore file %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, trimTrailingSpace(line))
	}
	if err := sc.Err(); err != nil {
		return lines, fmt.Errorf("failed to read ignore file %s: %w", path, err)
	}
	return lines, nil
}

func parsePatterns(lines []string, domain []string) []gitignore.Pattern {
	if len(lines) == 0 {
		return nil
	}
	ps := make([]gitignore.Pattern, len(lines))
	for i, line := range lines {
		ps[i] = gitignore.ParsePattern(line, domain)
	}
	return ps
}

// trimTrailingSpace drops trailing spaces unless they are escaped with a backslash.
func trimTrailingSpace(line string) string {
	for strings.HasSuffix(line, " ") && !strings.HasSuffix(line, `\ `) {
		line = line[:len(line)-1]
	}
	return line
}

// ancestors returns the directories strictly above dir, outermost first.
func ancestors(dir string) []string {
	var out []string
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		out = append(out, parent)
		dir = parent
	}
	slices.Reverse(out)
	return out
}

// within reports whether dir is base or lies below it.
func within(dir, base string) bool {
	rel, err := filepath.Rel(base, dir)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// components splits the path of dir relative to base; base itself yields none.
func components(base, dir string) []string {
	rel, err := filepath.Rel(base, dir)
	if err != nil || rel == "." {
		return []string{}
	}
	return strings.Split(filepath.ToSlash(rel), "/")
}

// Rules is the immutable set of ignore rules in force for one directory.
// A nil *Rules ignores nothing.
type Rules struct {
	prefix   []string            // the walk root relative to the directory patterns are anchored at
	patterns []gitignore.Pattern // directory rules, lowest precedence first
	global   []gitignore.Pattern // git global excludes
	extra    gitignore.Matcher
	git      bool // git sources apply
}

// Match reports whether the entry at path (components relative to the walk root)
// is ignored.
func (r *Rules) Match(path []string, isDir bool) bool {
	if r == nil || len(path) == 0 {
		return false
	}
	if r.extra != nil && r.extra.Match(path, isDir) {
		return true
	}

	if len(r.patterns) > 0 {
		full := path
		if len(r.prefix) > 0 {
			full = append(r.prefix[:len(r.prefix):len(r.prefix)], path...)
		}
		if res, ok := lastMatch(r.patterns, full, isDir); ok {
			return res == gitignore.Exclude
		}
	}

	if r.git {
		if res, ok := lastMatch(r.global, path, isDir); ok {
			return res == gitignore.Exclude
		}
	}
	return false
}

// lastMatch returns the verdict of the last pattern matching path.
func lastMatch(patterns []gitignore.Pattern, path []string, isDir bool) (gitignore.MatchResult, bool) {
	for i := len(patterns) - 1; i >= 0; i-- {
		if res := patterns[i].Match(path, isDir); res != gitignore.NoMatch {
			return res, true
		}
	}
	return gitignore.NoMatch, false
}

// Len returns the number of directory and global patterns.
func (r *Rules) Len() int {
	if r == nil {
		return 0
	}
	return len(r.patterns) + len(r.global)
}

package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/odvcencio/grit/pkg/object"
)

// markerDir is the directory that marks a repository root.
const markerDir = ".grit"

// initMu serializes Init calls within the process. Init is the one
// operation expected to race with itself; everything else relies on
// write-if-absent objects and atomic ref/index replacement.
var initMu sync.Mutex

// Repo is a handle to an opened repository. All operations take the
// root from the handle; nothing in this package consults global state.
type Repo struct {
	// RootDir is the working tree root (the directory holding markerDir).
	RootDir string
	// GritDir is RootDir/.grit.
	GritDir string
	// Store reads and writes objects under GritDir/objects.
	Store *object.Store
}

// InitOptions control repository creation. Zero values pick the
// defaults: SHA-1 object ids and a "main" initial branch.
type InitOptions struct {
	Algorithm object.Algorithm
	Branch    string
}

// Init creates a repository at dir with default options.
func Init(dir string) (*Repo, error) {
	return InitWith(dir, InitOptions{})
}

// InitWith creates a repository at dir: the marker directory, the
// object and ref layout, HEAD attached to the initial branch, and that
// branch's empty ref file (the branch starts unborn). The chosen
// algorithm and branch are persisted to config.toml. Fails with
// ErrAlreadyInitialized when dir already holds a repository.
func InitWith(dir string, opts InitOptions) (*Repo, error) {
	initMu.Lock()
	defer initMu.Unlock()

	alg := opts.Algorithm
	if alg == "" {
		alg = object.DefaultAlgorithm
	}
	branch := opts.Branch
	if branch == "" {
		branch = DefaultBranch
	}
	if err := validBranchName(branch); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	gritDir := filepath.Join(absDir, markerDir)
	if _, err := os.Stat(gritDir); err == nil {
		return nil, fmt.Errorf("%s: %w", absDir, ErrAlreadyInitialized)
	}

	for _, sub := range []string{
		filepath.Join(gritDir, "objects"),
		filepath.Join(gritDir, "refs", "heads"),
	} {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return nil, fmt.Errorf("init: %w", err)
		}
	}

	head := "ref: refs/heads/" + branch + "\n"
	if err := os.WriteFile(filepath.Join(gritDir, "HEAD"), []byte(head), 0o644); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	// The ref file exists from the start but records no commit yet.
	if err := os.WriteFile(filepath.Join(gritDir, "refs", "heads", branch), nil, 0o644); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	var cfg Config
	cfg.Core.Hash = alg.String()
	cfg.Core.Branch = branch
	if err := writeConfig(gritDir, cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	return &Repo{
		RootDir: absDir,
		GritDir: gritDir,
		Store:   object.NewStoreWith(gritDir, alg),
	}, nil
}

// Open locates the repository containing dir by walking toward the
// filesystem root and returns a handle bound to the configured hash
// algorithm.
func Open(dir string) (*Repo, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	cur := absDir
	for {
		gritDir := filepath.Join(cur, markerDir)
		if info, err := os.Stat(gritDir); err == nil && info.IsDir() {
			cfg, err := loadConfig(gritDir)
			if err != nil {
				return nil, err
			}
			alg, err := object.ParseAlgorithm(cfg.Core.Hash)
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", cur, err)
			}
			return &Repo{
				RootDir: cur,
				GritDir: gritDir,
				Store:   object.NewStoreWith(gritDir, alg),
			}, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("%w (searched %s and every parent)", ErrNotRepository, absDir)
		}
		cur = parent
	}
}

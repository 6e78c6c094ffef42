// Package vault models the on-disk secret tree a workstation carries:
// <root>/<environment>/<layerN>/*.yaml. Encrypting and decrypting the tree
// is an external tool's job; this package discovers the tree, iterates
// decrypted files, and reports encryption state.
package vault

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/systmms/kstack/pkg/stack"
)

const (
	// EnvVaultDir points directly at a vault directory.
	EnvVaultDir = "KSTACK_VAULT_DIR"
	// EnvRoot points at a project root whose vault lives at <root>/vault.
	EnvRoot = "KSTACK_ROOT"
)

// searchDepth is how many parent directories discovery walks when looking
// for a conventional vault/ directory.
const searchDepth = 3

// encryptedPrefix marks a file's encrypted counterpart; such files are
// opaque to kstack.
const encryptedPrefix = "secret."

// CredentialsFile holds per-service cloud credentials inside a layer
// directory. It is not a secret bundle and never merges into one.
const CredentialsFile = "cloud-credentials.yaml"

// Vault is a resolved vault location. The directory does not have to
// exist: reads through a missing vault yield empty results.
type Vault struct {
	root string
}

// At wraps an explicit vault directory.
func At(dir string) Vault {
	return Vault{root: dir}
}

// Discover resolves the vault directory: an explicit path wins, then
// KSTACK_VAULT_DIR, then KSTACK_ROOT/vault, then a vault/ directory found
// at the project root or up to three parents. When nothing exists the
// conventional <projectRoot>/vault is assumed.
func Discover(explicit, projectRoot string) Vault {
	if explicit != "" {
		return Vault{root: explicit}
	}
	if dir := os.Getenv(EnvVaultDir); dir != "" {
		return Vault{root: dir}
	}
	if root := os.Getenv(EnvRoot); root != "" {
		return Vault{root: filepath.Join(root, "vault")}
	}

	base := projectRoot
	if base == "" {
		if cwd, err := os.Getwd(); err == nil {
			base = cwd
		} else {
			base = "."
		}
	}

	dir := base
	for i := 0; i <= searchDepth; i++ {
		candidate := filepath.Join(dir, "vault")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return Vault{root: candidate}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return Vault{root: filepath.Join(base, "vault")}
}

// Path returns the vault directory.
func (v Vault) Path() string {
	return v.root
}

// Exists reports whether the vault directory is present.
func (v Vault) Exists() bool {
	info, err := os.Stat(v.root)
	return err == nil && info.IsDir()
}

// LayerDir returns the directory holding one (environment, layer) pair.
func (v Vault) LayerDir(env stack.Environment, layer stack.Layer) string {
	return filepath.Join(v.root, string(env), layer.Short())
}

// CredentialsPath returns where a layer's cloud credentials file lives.
func (v Vault) CredentialsPath(env stack.Environment, layer stack.Layer) string {
	return filepath.Join(v.LayerDir(env, layer), CredentialsFile)
}

// Environments lists the environment directories present under the root.
func (v Vault) Environments() ([]string, error) {
	entries, err := os.ReadDir(v.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading vault root %s: %w", v.root, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// SecretFiles lists the decrypted secret bundle files for one
// (environment, layer) pair in sorted order. Encrypted counterparts
// (secret.*), example/template files, and the cloud credentials file are
// skipped. A missing directory yields nil.
func (v Vault) SecretFiles(env stack.Environment, layer stack.Layer) ([]string, error) {
	dir := v.LayerDir(env, layer)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading vault layer dir %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == CredentialsFile {
			continue
		}
		if strings.HasPrefix(name, encryptedPrefix) {
			continue
		}
		if strings.HasSuffix(name, ".example") || strings.HasSuffix(name, ".template") {
			continue
		}
		ext := filepath.Ext(name)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// Encrypted reports whether any secret.* file in the tree lacks its
// decrypted counterpart (the filename minus the secret. prefix). Tool
// metadata files (secret.map.cfg and friends) are not encrypted payloads
// and are skipped.
func (v Vault) Encrypted() (bool, error) {
	encrypted := false
	err := filepath.WalkDir(v.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || encrypted {
			return nil
		}
		name := d.Name()
		if !strings.HasPrefix(name, encryptedPrefix) {
			return nil
		}
		switch filepath.Ext(name) {
		case ".cfg", ".conf", ".config":
			return nil
		}
		counterpart := filepath.Join(filepath.Dir(path), strings.TrimPrefix(name, encryptedPrefix))
		if _, statErr := os.Stat(counterpart); os.IsNotExist(statErr) {
			encrypted = true
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("scanning vault %s: %w", v.root, err)
	}
	return encrypted, nil
}

// ageHeader opens every age-encrypted file.
var ageHeader = []byte("age-encryption.org/v1")

// FileEncrypted sniffs whether a single file holds age-encrypted content.
func FileEncrypted(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	header := make([]byte, len(ageHeader))
	n, err := f.Read(header)
	if err != nil && n == 0 {
		return false, nil
	}
	return bytes.HasPrefix(header[:n], ageHeader), nil
}

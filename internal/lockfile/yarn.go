package lockfile

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// YarnLockfile holds the resolved version of every descriptor found in a
// yarn.lock, keyed by package name.
type YarnLockfile struct {
	Berry    bool
	versions map[string]string
}

// DecodeYarn parses yarn.lock contents. Berry (v2+) lockfiles are YAML and
// carry a __metadata entry; classic (v1) lockfiles use yarn's own format.
func DecodeYarn(contents []byte) (Lockfile, error) {
	if bytes.Contains(contents, []byte("__metadata:")) {
		return decodeBerry(contents)
	}
	return decodeClassic(contents)
}

// ToolVersion implements Lockfile.
func (l *YarnLockfile) ToolVersion() (string, bool) {
	v, ok := l.versions[ToolPackage]
	if !ok {
		return "", false
	}
	return exact(v)
}

func decodeBerry(contents []byte) (Lockfile, error) {
	var entries map[string]struct {
		Version string `yaml:"version"`
	}
	if err := yaml.Unmarshal(contents, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse yarn.lock: %w", err)
	}
	lf := &YarnLockfile{Berry: true, versions: make(map[string]string)}
	for key, entry := range entries {
		if key == "__metadata" {
			continue
		}
		for _, descriptor := range strings.Split(key, ",") {
			if name := descriptorName(descriptor); name != "" {
				lf.versions[name] = entry.Version
			}
		}
	}
	return lf, nil
}

func decodeClassic(contents []byte) (Lockfile, error) {
	lf := &YarnLockfile{versions: make(map[string]string)}
	var current []string

	scanner := bufio.NewScanner(bytes.NewReader(contents))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		// Unindented lines open a new entry: `titan@^1.2.0, "titan@~1.2.3":`
		if !strings.HasPrefix(line, " ") {
			if !strings.HasSuffix(trimmed, ":") {
				return nil, fmt.Errorf("failed to parse yarn.lock: unexpected line %q", line)
			}
			current = current[:0]
			for _, descriptor := range strings.Split(strings.TrimSuffix(trimmed, ":"), ",") {
				if name := descriptorName(descriptor); name != "" {
					current = append(current, name)
				}
			}
			continue
		}

		if rest, ok := strings.CutPrefix(trimmed, "version "); ok {
			version := strings.Trim(strings.TrimSpace(rest), `"`)
			for _, name := range current {
				lf.versions[name] = version
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read yarn.lock: %w", err)
	}
	return lf, nil
}

package lockfile

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/khulnasoft/titan/internal/jsonc"
)

// BunLockfile is the subset of the text bun.lock format needed to find the
// tool version. Each package entry is an array whose first element is the
// resolved "name@version" identifier.
type BunLockfile struct {
	LockfileVersion int                          `json:"lockfileVersion"`
	Packages        map[string][]json.RawMessage `json:"packages"`
}

// DecodeBun parses bun.lock contents. The file allows trailing commas.
func DecodeBun(contents []byte) (Lockfile, error) {
	var lf BunLockfile
	if err := jsonc.Unmarshal(contents, &lf); err != nil {
		return nil, fmt.Errorf("failed to parse bun.lock: %w", err)
	}
	return &lf, nil
}

// ToolVersion implements Lockfile.
func (l *BunLockfile) ToolVersion() (string, bool) {
	entry, ok := l.Packages[ToolPackage]
	if !ok || len(entry) == 0 {
		return "", false
	}
	var ident string
	if err := json.Unmarshal(entry[0], &ident); err != nil {
		return "", false
	}
	at := strings.LastIndex(ident, "@")
	if at <= 0 {
		return "", false
	}
	return exact(ident[at+1:])
}

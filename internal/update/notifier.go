// Package update compares release versions and tells the user when a
// newer titan release is published.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const (
	// CheckInterval is the minimum time between two release lookups.
	CheckInterval = 24 * time.Hour
	// CheckTimeout bounds a single release lookup.
	CheckTimeout = 800 * time.Millisecond

	defaultOwner = "khulnasoft"
	defaultRepo  = "titanrepo"
)

// Info describes the outcome of a check.
type Info struct {
	Available      bool
	CurrentVersion string
	LatestVersion  string
	ReleaseURL     string
}

// release is the subset of the GitHub release response we read.
type release struct {
	TagName    string `json:"tag_name"`
	HTMLURL    string `json:"html_url"`
	Prerelease bool   `json:"prerelease"`
}

// checkState is persisted between runs so the lookup happens at most once
// per CheckInterval.
type checkState struct {
	LastChecked   time.Time `json:"lastChecked"`
	LatestVersion string    `json:"latestVersion"`
	ReleaseURL    string    `json:"releaseUrl"`
}

// Notifier checks GitHub for the latest release.
type Notifier struct {
	currentVersion string
	statePath      string
	owner          string
	repo           string
	baseURL        string
	client         *http.Client
	now            func() time.Time
	logger         *zap.Logger
}

// NewNotifier returns a Notifier for currentVersion that records its last
// check in statePath.
func NewNotifier(currentVersion, statePath string) *Notifier {
	return &Notifier{
		currentVersion: currentVersion,
		statePath:      statePath,
		owner:          defaultOwner,
		repo:           defaultRepo,
		baseURL:        "https://api.github.com",
		client:         &http.Client{},
		now:            time.Now,
		logger:         zap.NewNop(),
	}
}

// StatePath returns the default location of the check state inside the
// user config directory.
func StatePath(configDir string) string {
	return filepath.Join(configDir, "titanrepo", "update-check.json")
}

// WithBaseURL points the notifier at a different API host.
func (n *Notifier) WithBaseURL(url string) *Notifier {
	n.baseURL = url
	return n
}

// WithLogger sets the logger used for check failures.
func (n *Notifier) WithLogger(logger *zap.Logger) *Notifier {
	if logger != nil {
		n.logger = logger
	}
	return n
}

// WithClock replaces the time source.
func (n *Notifier) WithClock(now func() time.Time) *Notifier {
	n.now = now
	return n
}

// Check reports whether a newer release exists. A recent recorded check
// is reused without contacting GitHub.
func (n *Notifier) Check(ctx context.Context) (*Info, error) {
	current, err := ParseVersion(n.currentVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid current version: %w", err)
	}

	state, err := n.readState()
	if err != nil || n.now().Sub(state.LastChecked) >= CheckInterval {
		rel, err := n.latestRelease(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest release: %w", err)
		}
		state = checkState{
			LastChecked:   n.now(),
			LatestVersion: NormalizeVersion(rel.TagName),
			ReleaseURL:    rel.HTMLURL,
		}
		if err := n.writeState(state); err != nil {
			n.logger.Debug("failed to record update check", zap.Error(err))
		}
	}

	latest, err := ParseVersion(state.LatestVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid latest version: %w", err)
	}

	return &Info{
		Available:      latest.IsGreaterThan(current),
		CurrentVersion: current.String(),
		LatestVersion:  latest.String(),
		ReleaseURL:     state.ReleaseURL,
	}, nil
}

// Notify runs Check with CheckTimeout and prints a notice to w when a
// newer release exists. Failures are logged at debug level only.
func (n *Notifier) Notify(ctx context.Context, w io.Writer) {
	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	info, err := n.Check(ctx)
	if err != nil {
		n.logger.Debug("update check failed", zap.Error(err))
		return
	}
	if !info.Available {
		return
	}
	fmt.Fprintf(w, "Update available for titan: %s -> %s\n", info.CurrentVersion, info.LatestVersion)
	if info.ReleaseURL != "" {
		fmt.Fprintf(w, "Release notes: %s\n", info.ReleaseURL)
	}
}

func (n *Notifier) latestRelease(ctx context.Context) (*release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", n.baseURL, n.owner, n.repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if rel.TagName == "" {
		return nil, errors.New("release has no tag")
	}
	return &rel, nil
}

func (n *Notifier) readState() (checkState, error) {
	var state checkState
	data, err := os.ReadFile(n.statePath)
	if err != nil {
		return state, err
	}
	err = json.Unmarshal(data, &state)
	return state, err
}

func (n *Notifier) writeState(state checkState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(n.statePath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(n.statePath, data, 0o644)
}

// Package ytdlp implements [resolver.Resolver] on top of the yt-dlp
// extractor via the lrstanley/go-ytdlp wrapper. One invocation resolves a
// URL or free-text query to a single track with a direct audio stream URL.
package ytdlp

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/yaudiocord/yaudiocord/internal/resolver"
	"github.com/yaudiocord/yaudiocord/internal/track"
)

// printTemplate yields one line per field so the output can be split
// mechanically. The stream URL goes last because it is the only field that
// is guaranteed single-line but hardest to sanity-check.
const printTemplate = "%(title)s\n%(webpage_url)s\n%(duration)s\n%(url)s"

// Options tunes the yt-dlp invocation.
type Options struct {
	// Proxy routes extractor traffic through the given proxy URL.
	Proxy string

	// SocketTimeout is the per-connection timeout in seconds. Zero selects 30.
	SocketTimeout int

	// Retries is the extractor retry count. Zero selects 3.
	Retries int
}

// Resolver resolves queries by shelling out to yt-dlp.
type Resolver struct {
	opts Options
	log  *slog.Logger
}

// Compile-time interface assertion.
var _ resolver.Resolver = (*Resolver)(nil)

// New creates a Resolver with the given options.
func New(opts Options, log *slog.Logger) *Resolver {
	if opts.SocketTimeout == 0 {
		opts.SocketTimeout = 30
	}
	if opts.Retries == 0 {
		opts.Retries = 3
	}
	return &Resolver{opts: opts, log: log}
}

// EnsureInstalled provisions a yt-dlp binary when none is available on
// PATH, using the wrapper library's pinned download.
func EnsureInstalled(ctx context.Context) error {
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return fmt.Errorf("resolver: install yt-dlp: %w", err)
	}
	return nil
}

// Resolve implements [resolver.Resolver]. Callers are expected to hold the
// process-wide resolution gate: yt-dlp is not safe under concurrent use.
func (r *Resolver) Resolve(ctx context.Context, query string) (*track.Track, error) {
	cmd := ytdlp.New().
		Quiet().
		NoWarnings().
		NoPlaylist().
		Print(printTemplate)
	if r.opts.Proxy != "" {
		cmd.Proxy(r.opts.Proxy)
	}

	args := append(jsRuntimeArgs(),
		"--default-search", "auto",
		"--format", "bestaudio/best",
		"--socket-timeout", strconv.Itoa(r.opts.SocketTimeout),
		"--retries", strconv.Itoa(r.opts.Retries),
		"--source-address", "0.0.0.0",
		"--extractor-args", "youtube:player_client=default",
	)

	res, err := cmd.Run(ctx, append(args, query)...)
	if err != nil {
		return nil, fmt.Errorf("resolver: yt-dlp failed for %q: %w", query, err)
	}

	t, err := parseOutput(res.Stdout, query)
	if err != nil {
		return nil, err
	}
	r.log.Debug("query resolved", "query", query, "title", t.Title)
	return t, nil
}

// parseOutput maps the printTemplate lines back onto a Track.
func parseOutput(stdout, query string) (*track.Track, error) {
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) < 4 {
		return nil, fmt.Errorf("resolver: yt-dlp returned no usable output for %q", query)
	}

	// Playlists are disabled, so only the first entry matters even if the
	// extractor printed several.
	title := strings.TrimSpace(lines[0])
	webURL := strings.TrimSpace(lines[1])
	streamURL := strings.TrimSpace(lines[3])

	if streamURL == "" || streamURL == "NA" {
		return nil, fmt.Errorf("resolver: no stream URL for %q", query)
	}
	if title == "" || title == "NA" {
		title = "Unknown title"
	}
	if webURL == "NA" {
		webURL = ""
	}

	var duration time.Duration
	if raw := strings.TrimSpace(lines[2]); raw != "" && raw != "NA" {
		if secs, err := strconv.ParseFloat(raw, 64); err == nil {
			duration = time.Duration(secs * float64(time.Second))
		}
	}

	return &track.Track{
		Title:     title,
		StreamURL: streamURL,
		WebURL:    webURL,
		Query:     query,
		Duration:  duration,
	}, nil
}

// jsRuntimeArgs detects a JavaScript runtime once per process and tells
// yt-dlp to use it for extractor challenge scripts.
var (
	jsOnce sync.Once
	jsArgs []string
)

func jsRuntimeArgs() []string {
	jsOnce.Do(func() {
		for _, rt := range []string{"deno", "node", "bun", "quickjs"} {
			if path, err := exec.LookPath(rt); err == nil {
				jsArgs = []string{"--js-runtimes", rt + ":" + path}
				break
			}
		}
	})
	return append([]string(nil), jsArgs...)
}

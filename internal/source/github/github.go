// Package github feeds documentation files from a GitHub repository into
// a bot's knowledge base.
package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v81/github"
)

// Doc is one documentation file fetched from a repository.
type Doc struct {
	Path    string // relative path within the base directory
	Content string // full file content
	SHA     string // git blob SHA
	URL     string // raw URL
}

// Source lists and fetches documentation files from one repository
// directory. Rate limits are handled transparently with automatic waits.
type Source struct {
	client   *github.Client
	owner    string
	repo     string
	basePath string
}

// docExtensions are the file types worth ingesting from a repository.
var docExtensions = []string{".md", ".markdown", ".txt", ".html"}

// NewSource creates a GitHub source for owner/repo, limited to basePath.
// An empty token uses unauthenticated access with its lower rate limits.
func NewSource(token, owner, repo, basePath string) (*Source, error) {
	rateLimiter, err := github_ratelimit.NewRateLimitWaiterClient(nil)
	if err != nil {
		return nil, fmt.Errorf("creating rate limiter: %w", err)
	}

	client := github.NewClient(rateLimiter)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	return &Source{
		client:   client,
		owner:    owner,
		repo:     repo,
		basePath: basePath,
	}, nil
}

// List recursively collects the documentation files under the base path.
func (s *Source) List(ctx context.Context) ([]string, error) {
	return s.listRecursive(ctx, s.basePath, "")
}

func (s *Source) listRecursive(ctx context.Context, fullPath, relativePath string) ([]string, error) {
	var docs []string

	_, dirContents, _, err := s.client.Repositories.GetContents(
		ctx, s.owner, s.repo, fullPath, nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get contents of %s: %w", fullPath, err)
	}

	for _, item := range dirContents {
		if item.Type == nil || item.Name == nil {
			continue
		}

		itemRelPath := path.Join(relativePath, *item.Name)

		switch *item.Type {
		case "file":
			if isDocFile(*item.Name) {
				docs = append(docs, itemRelPath)
			}
		case "dir":
			subDocs, err := s.listRecursive(ctx, path.Join(fullPath, *item.Name), itemRelPath)
			if err != nil {
				return nil, err
			}
			docs = append(docs, subDocs...)
		}
	}

	return docs, nil
}

func isDocFile(name string) bool {
	for _, ext := range docExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Fetch downloads one file by its relative path.
func (s *Source) Fetch(ctx context.Context, relativePath string) (*Doc, error) {
	fullPath := path.Join(s.basePath, relativePath)

	fileContent, _, _, err := s.client.Repositories.GetContents(
		ctx, s.owner, s.repo, fullPath, nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get content of %s: %w", fullPath, err)
	}
	if fileContent == nil {
		return nil, fmt.Errorf("no file content returned for %s", fullPath)
	}

	content, err := base64.StdEncoding.DecodeString(*fileContent.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode content of %s: %w", fullPath, err)
	}

	rawURL := fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/main/%s",
		s.owner, s.repo, fullPath)

	return &Doc{
		Path:    relativePath,
		Content: string(content),
		SHA:     *fileContent.SHA,
		URL:     rawURL,
	}, nil
}

// LatestCommitSHA returns the SHA of the newest commit touching the base
// path, for recording what revision a sync captured.
func (s *Source) LatestCommitSHA(ctx context.Context) (string, error) {
	commits, _, err := s.client.Repositories.ListCommits(
		ctx, s.owner, s.repo,
		&github.CommitsListOptions{
			Path:        s.basePath,
			ListOptions: github.ListOptions{PerPage: 1},
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to get latest commit: %w", err)
	}
	if len(commits) == 0 {
		return "", fmt.Errorf("no commits found for path %s", s.basePath)
	}
	if commits[0].SHA == nil {
		return "", fmt.Errorf("commit SHA is nil")
	}
	return *commits[0].SHA, nil
}

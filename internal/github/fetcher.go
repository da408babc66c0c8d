package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"
)

// Fetcher downloads course documents from one directory of a GitHub
// repository. It satisfies rag.Fetcher.
type Fetcher struct {
	client   *Client
	owner    string
	repo     string
	basePath string
}

// NewFetcher creates a fetcher for the given repository directory. basePath
// may be empty to fetch from the repository root.
func NewFetcher(client *Client, owner, repo, basePath string) *Fetcher {
	return &Fetcher{
		client:   client,
		owner:    owner,
		repo:     repo,
		basePath: basePath,
	}
}

// courseFile reports whether a repository file looks like a course document.
func courseFile(name string) bool {
	return strings.HasSuffix(name, ".txt") || strings.HasSuffix(name, ".md")
}

// FetchDocuments lists and downloads every course document under the base
// path, recursing into subdirectories. Names are repository-relative paths;
// contents[i] is the decoded body of names[i].
func (f *Fetcher) FetchDocuments(ctx context.Context) ([]string, [][]byte, error) {
	paths, err := f.listRecursive(ctx, f.basePath, "")
	if err != nil {
		return nil, nil, err
	}

	names := make([]string, 0, len(paths))
	contents := make([][]byte, 0, len(paths))
	for _, rel := range paths {
		data, err := f.fetchFile(ctx, rel)
		if err != nil {
			return nil, nil, err
		}
		names = append(names, rel)
		contents = append(contents, data)
	}
	return names, contents, nil
}

func (f *Fetcher) listRecursive(ctx context.Context, fullPath, relativePath string) ([]string, error) {
	var docs []string

	_, dirContents, _, err := f.client.Repositories.GetContents(ctx, f.owner, f.repo, fullPath, nil)
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
			if courseFile(*item.Name) {
				docs = append(docs, itemRelPath)
			}

		case "dir":
			itemFullPath := path.Join(fullPath, *item.Name)
			subDocs, err := f.listRecursive(ctx, itemFullPath, itemRelPath)
			if err != nil {
				return nil, err
			}
			docs = append(docs, subDocs...)
		}
	}

	return docs, nil
}

func (f *Fetcher) fetchFile(ctx context.Context, relativePath string) ([]byte, error) {
	fullPath := path.Join(f.basePath, relativePath)

	fileContent, _, _, err := f.client.Repositories.GetContents(ctx, f.owner, f.repo, fullPath, nil)
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
	return content, nil
}

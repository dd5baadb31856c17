package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/m-mizutani/shipit/pkg/domain/model"
	"github.com/m-mizutani/shipit/pkg/utils/cmdline"
)

// runCall is a command received by mockRunner
type runCall struct {
	Command string // as received, including the read-only sentinel
	Dir     string
}

type mockResponse struct {
	output string
	err    error
}

// mockRunner records commands and answers by the longest matching command prefix.
// Commands without a registered response succeed with empty output.
type mockRunner struct {
	mu        sync.Mutex
	calls     []runCall
	responses map[string]mockResponse
}

func newMockRunner() *mockRunner {
	return &mockRunner{responses: make(map[string]mockResponse)}
}

func (m *mockRunner) on(prefix, output string, err error) *mockRunner {
	m.responses[prefix] = mockResponse{output: output, err: err}
	return m
}

func (m *mockRunner) Run(ctx context.Context, command string, opts ...model.RunOption) (*model.CommandResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o := model.NewRunOptions(opts...)
	m.calls = append(m.calls, runCall{Command: command, Dir: o.Dir})

	line, _ := cmdline.Parse(command)
	matched, found := "", false
	for prefix := range m.responses {
		if strings.HasPrefix(line, prefix) && len(prefix) >= len(matched) {
			matched, found = prefix, true
		}
	}
	if !found {
		return &model.CommandResult{}, nil
	}

	resp := m.responses[matched]
	if resp.err != nil {
		return nil, resp.err
	}
	return &model.CommandResult{Output: resp.output}, nil
}

func (m *mockRunner) commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmds := make([]string, len(m.calls))
	for i, c := range m.calls {
		cmds[i] = c.Command
	}
	return cmds
}

// index returns the position of the first command starting with prefix, or -1
func (m *mockRunner) index(prefix string) int {
	for i, cmd := range m.commands() {
		line, _ := cmdline.Parse(cmd)
		if strings.HasPrefix(line, prefix) {
			return i
		}
	}
	return -1
}

func (m *mockRunner) has(prefix string) bool {
	return m.index(prefix) >= 0
}

func exitErr(command string, code int) error {
	return &model.CommandError{
		Command:  command,
		ExitCode: code,
		Err:      errors.New("exit status"),
	}
}

// mockReleaseClient is a mock implementation of interfaces.ReleaseClient
type mockReleaseClient struct {
	mu sync.Mutex

	createReleaseFunc func(ctx context.Context, repo *model.RepoIdentity, req *model.ReleaseRequest) (*model.Release, error)
	uploadAssetFunc   func(ctx context.Context, repo *model.RepoIdentity, releaseID int64, filePath string) (*model.Asset, error)

	createCalls []*model.ReleaseRequest
	uploadCalls []uploadCall
}

type uploadCall struct {
	Repository string
	ReleaseID  int64
	FilePath   string
}

func (m *mockReleaseClient) CreateRelease(ctx context.Context, repo *model.RepoIdentity, req *model.ReleaseRequest) (*model.Release, error) {
	m.mu.Lock()
	m.createCalls = append(m.createCalls, req)
	m.mu.Unlock()

	if m.createReleaseFunc != nil {
		return m.createReleaseFunc(ctx, repo, req)
	}
	return &model.Release{ID: 1, TagName: req.TagName, Name: req.Name, HTMLURL: "https://github.com/" + repo.Repository + "/releases/1"}, nil
}

func (m *mockReleaseClient) UploadAsset(ctx context.Context, repo *model.RepoIdentity, releaseID int64, filePath string) (*model.Asset, error) {
	m.mu.Lock()
	m.uploadCalls = append(m.uploadCalls, uploadCall{Repository: repo.Repository, ReleaseID: releaseID, FilePath: filePath})
	m.mu.Unlock()

	if m.uploadAssetFunc != nil {
		return m.uploadAssetFunc(ctx, repo, releaseID, filePath)
	}
	return &model.Asset{Name: filePath, URL: "https://example.com/" + filePath}, nil
}

func (m *mockReleaseClient) createCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.createCalls)
}

func (m *mockReleaseClient) uploadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.uploadCalls)
}

// mockFinder is a mock implementation of interfaces.AssetFinder
type mockFinder struct {
	files    map[string][]string
	err      error
	patterns []string
}

func (m *mockFinder) Find(pattern string) ([]string, error) {
	m.patterns = append(m.patterns, pattern)
	if m.err != nil {
		return nil, m.err
	}
	return m.files[pattern], nil
}

// mockNotifier is a mock implementation of interfaces.Notifier
type mockNotifier struct {
	err   error
	calls []*model.RunState
}

func (m *mockNotifier) Notify(ctx context.Context, repo *model.RepoIdentity, state *model.RunState) error {
	m.calls = append(m.calls, state)
	return m.err
}

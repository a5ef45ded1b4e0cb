package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/buildforge-io/jenkins/internal/http"
	"github.com/buildforge-io/jenkins/pkg/jenkins"
)

// JobsClient implements jenkins.JobsClient
type JobsClient struct {
	httpClient *http.Client
}

// NewJobsClient creates a new jobs client
func NewJobsClient(httpClient *http.Client) *JobsClient {
	return &JobsClient{httpClient: httpClient}
}

// List implements jenkins.JobsClient.List
func (c *JobsClient) List(ctx context.Context) (*jenkins.JobList, error) {
	req := jenkins.Get("api", "json").WithQuery("tree", "jobs[name,url,color]")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}

	var list jenkins.JobList
	if err := resp.JSON(&list); err != nil {
		return nil, fmt.Errorf("parsing job list response: %w", err)
	}

	return &list, nil
}

// Get implements jenkins.JobsClient.Get
func (c *JobsClient) Get(ctx context.Context, job jenkins.JobPath, tree string) (json.RawMessage, error) {
	segments := append(job.Segments(), "api", "json")
	req := withTree(jenkins.Get(segments...), tree)

	return getJSON(ctx, c.httpClient, req, "getting job")
}

// selector fetches GET /job/<path>/<selector>/api/json.
func (c *JobsClient) selector(ctx context.Context, job jenkins.JobPath, selector, tree string) (json.RawMessage, error) {
	segments := append(job.Segments(), selector, "api", "json")
	req := withTree(jenkins.Get(segments...), tree)

	return getJSON(ctx, c.httpClient, req, "getting "+selector)
}

// LastBuild implements jenkins.JobsClient.LastBuild
func (c *JobsClient) LastBuild(ctx context.Context, job jenkins.JobPath, tree string) (json.RawMessage, error) {
	return c.selector(ctx, job, "lastBuild", tree)
}

// LastCompletedBuild implements jenkins.JobsClient.LastCompletedBuild
func (c *JobsClient) LastCompletedBuild(ctx context.Context, job jenkins.JobPath, tree string) (json.RawMessage, error) {
	return c.selector(ctx, job, "lastCompletedBuild", tree)
}

// LastSuccessfulBuild implements jenkins.JobsClient.LastSuccessfulBuild
func (c *JobsClient) LastSuccessfulBuild(ctx context.Context, job jenkins.JobPath, tree string) (json.RawMessage, error) {
	return c.selector(ctx, job, "lastSuccessfulBuild", tree)
}

// LastFailedBuild implements jenkins.JobsClient.LastFailedBuild
func (c *JobsClient) LastFailedBuild(ctx context.Context, job jenkins.JobPath, tree string) (json.RawMessage, error) {
	return c.selector(ctx, job, "lastFailedBuild", tree)
}

// LastStableBuild implements jenkins.JobsClient.LastStableBuild
func (c *JobsClient) LastStableBuild(ctx context.Context, job jenkins.JobPath, tree string) (json.RawMessage, error) {
	return c.selector(ctx, job, "lastStableBuild", tree)
}

// LastUnstableBuild implements jenkins.JobsClient.LastUnstableBuild
func (c *JobsClient) LastUnstableBuild(ctx context.Context, job jenkins.JobPath, tree string) (json.RawMessage, error) {
	return c.selector(ctx, job, "lastUnstableBuild", tree)
}

// LastUnsuccessfulBuild implements jenkins.JobsClient.LastUnsuccessfulBuild
func (c *JobsClient) LastUnsuccessfulBuild(ctx context.Context, job jenkins.JobPath, tree string) (json.RawMessage, error) {
	return c.selector(ctx, job, "lastUnsuccessfulBuild", tree)
}

// BuildInfo implements jenkins.JobsClient.BuildInfo
func (c *JobsClient) BuildInfo(ctx context.Context, job jenkins.JobPath, build int, tree string) (json.RawMessage, error) {
	segments := append(job.Segments(), strconv.Itoa(build), "api", "json")
	req := withTree(jenkins.Get(segments...), tree)

	return getJSON(ctx, c.httpClient, req, "getting build info")
}

// ConsoleText implements jenkins.JobsClient.ConsoleText
func (c *JobsClient) ConsoleText(ctx context.Context, job jenkins.JobPath, build int) (string, error) {
	segments := append(job.Segments(), strconv.Itoa(build), "consoleText")

	resp, err := c.httpClient.Do(ctx, jenkins.Get(segments...).WithHeader("Accept", "text/plain"))
	if err != nil {
		return "", fmt.Errorf("getting console text: %w", err)
	}

	return string(resp.Body), nil
}

// ProgressiveConsoleText implements jenkins.JobsClient.ProgressiveConsoleText
func (c *JobsClient) ProgressiveConsoleText(ctx context.Context, job jenkins.JobPath, build int, start int64) (*jenkins.ProgressiveText, error) {
	segments := append(job.Segments(), strconv.Itoa(build), "logText", "progressiveText")
	req := jenkins.Get(segments...).
		WithQuery("start", strconv.FormatInt(start, 10)).
		WithHeader("Accept", "text/plain")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("getting progressive console text: %w", err)
	}

	nextStart := int64(-1)
	if size := resp.Headers.Get("X-Text-Size"); size != "" {
		if parsed, parseErr := strconv.ParseInt(size, 10, 64); parseErr == nil {
			nextStart = parsed
		}
	}

	return &jenkins.ProgressiveText{
		Text:      string(resp.Body),
		NextStart: nextStart,
		MoreData:  strings.EqualFold(resp.Headers.Get("X-More-Data"), "true"),
	}, nil
}

// DownloadArtifact implements jenkins.JobsClient.DownloadArtifact
func (c *JobsClient) DownloadArtifact(ctx context.Context, job jenkins.JobPath, build int, artifact string) ([]byte, error) {
	segments := append(job.Segments(), strconv.Itoa(build), "artifact")

	// The artifact path keeps its directory structure; each component is
	// escaped on its own.
	for _, part := range strings.Split(artifact, "/") {
		if part == "" {
			continue
		}

		segments = append(segments, part)
	}

	resp, err := c.httpClient.Do(ctx, jenkins.Get(segments...).WithHeader("Accept", "*/*"))
	if err != nil {
		return nil, fmt.Errorf("downloading artifact: %w", err)
	}

	return resp.Body, nil
}

// Build implements jenkins.JobsClient.Build
func (c *JobsClient) Build(ctx context.Context, job jenkins.JobPath) (*jenkins.TriggeredBuild, error) {
	segments := append(job.Segments(), "build")

	resp, err := c.httpClient.Do(ctx, jenkins.Post(segments...))
	if err != nil {
		return nil, fmt.Errorf("triggering build: %w", err)
	}

	return triggeredBuild(resp), nil
}

// BuildWithParameters implements jenkins.JobsClient.BuildWithParameters
func (c *JobsClient) BuildWithParameters(ctx context.Context, job jenkins.JobPath, params []jenkins.Param) (*jenkins.TriggeredBuild, error) {
	segments := append(job.Segments(), "buildWithParameters")
	req := jenkins.Post(segments...)

	for _, param := range params {
		req = req.WithForm(param.Key, param.Value)
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("triggering parameterized build: %w", err)
	}

	return triggeredBuild(resp), nil
}

// buildAction posts to GET-less build verbs like stop, term and kill.
func (c *JobsClient) buildAction(ctx context.Context, job jenkins.JobPath, build int, action, op string) error {
	segments := append(job.Segments(), strconv.Itoa(build), action)

	return send(ctx, c.httpClient, jenkins.Post(segments...), op)
}

// StopBuild implements jenkins.JobsClient.StopBuild
func (c *JobsClient) StopBuild(ctx context.Context, job jenkins.JobPath, build int) error {
	return c.buildAction(ctx, job, build, "stop", "stopping build")
}

// TermBuild implements jenkins.JobsClient.TermBuild
func (c *JobsClient) TermBuild(ctx context.Context, job jenkins.JobPath, build int) error {
	return c.buildAction(ctx, job, build, "term", "terminating build")
}

// KillBuild implements jenkins.JobsClient.KillBuild
func (c *JobsClient) KillBuild(ctx context.Context, job jenkins.JobPath, build int) error {
	return c.buildAction(ctx, job, build, "kill", "killing build")
}

// DeleteBuild implements jenkins.JobsClient.DeleteBuild
func (c *JobsClient) DeleteBuild(ctx context.Context, job jenkins.JobPath, build int) error {
	return c.buildAction(ctx, job, build, "doDelete", "deleting build")
}

// ToggleKeepLog implements jenkins.JobsClient.ToggleKeepLog
func (c *JobsClient) ToggleKeepLog(ctx context.Context, job jenkins.JobPath, build int) error {
	return c.buildAction(ctx, job, build, "toggleLogKeep", "toggling keep log")
}

// SetBuildDescription implements jenkins.JobsClient.SetBuildDescription
func (c *JobsClient) SetBuildDescription(ctx context.Context, job jenkins.JobPath, build int, description string) error {
	segments := append(job.Segments(), strconv.Itoa(build), "submitDescription")
	req := jenkins.Post(segments...).WithForm("description", description)

	return send(ctx, c.httpClient, req, "setting build description")
}

// SetDescription implements jenkins.JobsClient.SetDescription
func (c *JobsClient) SetDescription(ctx context.Context, job jenkins.JobPath, description string) error {
	segments := append(job.Segments(), "submitDescription")
	req := jenkins.Post(segments...).WithForm("description", description)

	return send(ctx, c.httpClient, req, "setting job description")
}

// GetConfigXML implements jenkins.JobsClient.GetConfigXML
func (c *JobsClient) GetConfigXML(ctx context.Context, job jenkins.JobPath) ([]byte, error) {
	segments := append(job.Segments(), "config.xml")

	resp, err := c.httpClient.Do(ctx, jenkins.Get(segments...).WithHeader("Accept", "application/xml"))
	if err != nil {
		return nil, fmt.Errorf("getting job config: %w", err)
	}

	return resp.Body, nil
}

// UpdateConfigXML implements jenkins.JobsClient.UpdateConfigXML
func (c *JobsClient) UpdateConfigXML(ctx context.Context, job jenkins.JobPath, config []byte) error {
	segments := append(job.Segments(), "config.xml")
	req := jenkins.Post(segments...).WithBody("application/xml", config)

	return send(ctx, c.httpClient, req, "updating job config")
}

// CreateFromXML implements jenkins.JobsClient.CreateFromXML
func (c *JobsClient) CreateFromXML(ctx context.Context, name string, config []byte) error {
	req := jenkins.Post("createItem").
		WithQuery("name", name).
		WithBody("application/xml", config)

	return send(ctx, c.httpClient, req, "creating job")
}

// Copy implements jenkins.JobsClient.Copy
func (c *JobsClient) Copy(ctx context.Context, from, to string) error {
	req := jenkins.Post("createItem").
		WithQuery("name", to).
		WithQuery("mode", "copy").
		WithQuery("from", from)

	return send(ctx, c.httpClient, req, "copying job")
}

// Delete implements jenkins.JobsClient.Delete
func (c *JobsClient) Delete(ctx context.Context, job jenkins.JobPath) error {
	segments := append(job.Segments(), "doDelete")

	return send(ctx, c.httpClient, jenkins.Post(segments...), "deleting job")
}

// Disable implements jenkins.JobsClient.Disable
func (c *JobsClient) Disable(ctx context.Context, job jenkins.JobPath) error {
	segments := append(job.Segments(), "disable")

	return send(ctx, c.httpClient, jenkins.Post(segments...), "disabling job")
}

// Enable implements jenkins.JobsClient.Enable
func (c *JobsClient) Enable(ctx context.Context, job jenkins.JobPath) error {
	segments := append(job.Segments(), "enable")

	return send(ctx, c.httpClient, jenkins.Post(segments...), "enabling job")
}

// Rename implements jenkins.JobsClient.Rename
func (c *JobsClient) Rename(ctx context.Context, job jenkins.JobPath, newName string) error {
	segments := append(job.Segments(), "doRename")
	req := jenkins.Post(segments...).WithQuery("newName", newName)

	return send(ctx, c.httpClient, req, "renaming job")
}

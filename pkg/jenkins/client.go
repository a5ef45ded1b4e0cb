package jenkins

import (
	"context"
	"encoding/json"
	"time"
)

// JobsClient provides access to job and build operations.
type JobsClient interface {
	// List fetches GET /api/json?tree=jobs[name,url,color].
	List(ctx context.Context) (*JobList, error)
	// Get fetches GET /job/<path>/api/json. tree optionally narrows the
	// returned fields.
	Get(ctx context.Context, job JobPath, tree string) (json.RawMessage, error)
	// LastBuild and its sibling selectors fetch
	// GET /job/<path>/<selector>/api/json.
	LastBuild(ctx context.Context, job JobPath, tree string) (json.RawMessage, error)
	LastCompletedBuild(ctx context.Context, job JobPath, tree string) (json.RawMessage, error)
	LastSuccessfulBuild(ctx context.Context, job JobPath, tree string) (json.RawMessage, error)
	LastFailedBuild(ctx context.Context, job JobPath, tree string) (json.RawMessage, error)
	LastStableBuild(ctx context.Context, job JobPath, tree string) (json.RawMessage, error)
	LastUnstableBuild(ctx context.Context, job JobPath, tree string) (json.RawMessage, error)
	LastUnsuccessfulBuild(ctx context.Context, job JobPath, tree string) (json.RawMessage, error)
	// BuildInfo fetches GET /job/<path>/<build>/api/json.
	BuildInfo(ctx context.Context, job JobPath, build int, tree string) (json.RawMessage, error)
	// ConsoleText fetches the complete console log of a build as plain text.
	ConsoleText(ctx context.Context, job JobPath, build int) (string, error)
	// ProgressiveConsoleText fetches a console log chunk starting at the
	// given byte offset.
	ProgressiveConsoleText(ctx context.Context, job JobPath, build int, start int64) (*ProgressiveText, error)
	// DownloadArtifact fetches GET /job/<path>/<build>/artifact/<artifact>.
	DownloadArtifact(ctx context.Context, job JobPath, build int, artifact string) ([]byte, error)
	// Build triggers POST /job/<path>/build.
	Build(ctx context.Context, job JobPath) (*TriggeredBuild, error)
	// BuildWithParameters triggers POST /job/<path>/buildWithParameters
	// with the given form parameters.
	BuildWithParameters(ctx context.Context, job JobPath, params []Param) (*TriggeredBuild, error)
	StopBuild(ctx context.Context, job JobPath, build int) error
	TermBuild(ctx context.Context, job JobPath, build int) error
	KillBuild(ctx context.Context, job JobPath, build int) error
	DeleteBuild(ctx context.Context, job JobPath, build int) error
	ToggleKeepLog(ctx context.Context, job JobPath, build int) error
	SetBuildDescription(ctx context.Context, job JobPath, build int, description string) error
	SetDescription(ctx context.Context, job JobPath, description string) error
	GetConfigXML(ctx context.Context, job JobPath) ([]byte, error)
	UpdateConfigXML(ctx context.Context, job JobPath, config []byte) error
	// CreateFromXML creates a top-level item: POST /createItem?name=<name>.
	CreateFromXML(ctx context.Context, name string, config []byte) error
	// Copy clones an existing item:
	// POST /createItem?name=<to>&mode=copy&from=<from>.
	Copy(ctx context.Context, from, to string) error
	Delete(ctx context.Context, job JobPath) error
	Disable(ctx context.Context, job JobPath) error
	Enable(ctx context.Context, job JobPath) error
	Rename(ctx context.Context, job JobPath, newName string) error
}

// QueueClient provides access to the build queue.
type QueueClient interface {
	List(ctx context.Context, tree string) (json.RawMessage, error)
	Item(ctx context.Context, id int64, tree string) (json.RawMessage, error)
	Cancel(ctx context.Context, id int64) error
}

// ComputersClient provides access to build agents.
type ComputersClient interface {
	List(ctx context.Context, tree string) (json.RawMessage, error)
	ExecutorsInfo(ctx context.Context) (*ExecutorsInfo, error)
	Get(ctx context.Context, name string, tree string) (json.RawMessage, error)
	ToggleOffline(ctx context.Context, name, reason string) error
	Connect(ctx context.Context, name string) error
	Disconnect(ctx context.Context, name string) error
	LaunchAgent(ctx context.Context, name string) error
	Delete(ctx context.Context, name string) error
	CreateFromXML(ctx context.Context, name string, config []byte) error
	Copy(ctx context.Context, from, to string) error
	GetConfigXML(ctx context.Context, name string) ([]byte, error)
	UpdateConfigXML(ctx context.Context, name string, config []byte) error
}

// ViewsClient provides access to views.
type ViewsClient interface {
	List(ctx context.Context) (*ViewList, error)
	Get(ctx context.Context, name string, tree string) (json.RawMessage, error)
	CreateFromXML(ctx context.Context, name string, config []byte) error
	Delete(ctx context.Context, name string) error
	Rename(ctx context.Context, name, newName string) error
	AddJob(ctx context.Context, view, job string) error
	RemoveJob(ctx context.Context, view, job string) error
	GetConfigXML(ctx context.Context, name string) ([]byte, error)
	UpdateConfigXML(ctx context.Context, name string, config []byte) error
}

// UsersClient provides access to user accounts.
type UsersClient interface {
	Get(ctx context.Context, id string, tree string) (json.RawMessage, error)
	WhoAmI(ctx context.Context) (*WhoAmI, error)
	GetConfigXML(ctx context.Context, id string) ([]byte, error)
	UpdateConfigXML(ctx context.Context, id string, config []byte) error
	People(ctx context.Context, tree string) (json.RawMessage, error)
	PeopleAsync(ctx context.Context, tree string) (json.RawMessage, error)
}

// SystemClient provides access to instance-level operations.
type SystemClient interface {
	Root(ctx context.Context, tree string) (json.RawMessage, error)
	OverallLoad(ctx context.Context) (json.RawMessage, error)
	LoadStatistics(ctx context.Context) (json.RawMessage, error)
	Crumb(ctx context.Context) (*Crumb, error)
	GetConfigXML(ctx context.Context) ([]byte, error)
	UpdateConfigXML(ctx context.Context, config []byte) error
	QuietDown(ctx context.Context) error
	CancelQuietDown(ctx context.Context) error
	ReloadConfiguration(ctx context.Context) error
	SafeRestart(ctx context.Context) error
	Restart(ctx context.Context) error
}

// Client is the full API surface.
type Client interface {
	Jobs() JobsClient
	Queue() QueueClient
	Computers() ComputersClient
	Views() ViewsClient
	Users() UsersClient
	System() SystemClient

	// Raw executes an unmodeled request through the same middleware
	// pipeline as the typed operations. Non-2xx statuses are returned as
	// errors; the response is returned alongside for inspection.
	Raw(ctx context.Context, req *Request) (*Response, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a jenkins.Client.
//
// # Authentication
//
// Username+APIToken select HTTP basic auth, the server's native scheme for
// API tokens. BearerToken selects bearer auth for installations fronted by
// an OIDC proxy. When both are set, basic auth wins.
type Config struct {
	// BaseURL is the root URL of the server, with or without a trailing
	// slash, optionally including a sub-path ("https://host/jenkins").
	BaseURL string

	Username    string
	APIToken    string
	BearerToken string

	UserAgent string
	// Timeout bounds each HTTP attempt. Zero selects the default.
	Timeout time.Duration

	// Proxy forces all requests through the given proxy URL. NoProxy
	// disables proxies entirely, including the environment-configured one.
	Proxy   string
	NoProxy bool

	// SkipTLSVerify disables certificate verification. Test
	// installations only.
	SkipTLSVerify bool

	// DisableCrumb turns off the CSRF handshake for servers with crumb
	// protection disabled. CrumbTTL bounds how long a fetched crumb is
	// reused; zero selects the default.
	DisableCrumb bool
	CrumbTTL     time.Duration

	// RetryMax is the number of retries after the initial attempt; zero
	// disables retrying. The delay before retry n is
	// RetryBaseDelay * RetryMultiplier^(n-1), capped at RetryMaxDelay.
	// RetryableStatus overrides the status-code classification; nil
	// selects DefaultRetryableStatus.
	RetryMax        int
	RetryBaseDelay  time.Duration
	RetryMultiplier float64
	RetryMaxDelay   time.Duration
	RetryableStatus func(status int) bool

	Logger Logger
	Debug  bool
}

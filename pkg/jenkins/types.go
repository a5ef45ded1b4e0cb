package jenkins

// Crumb is the JSON payload of GET /crumbIssuer/api/json.
type Crumb struct {
	CrumbRequestField string `json:"crumbRequestField"`
	Crumb             string `json:"crumb"`
}

// JobRef is a job entry in GET /api/json?tree=jobs[name,url,color].
type JobRef struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Color string `json:"color"`
}

// JobList is the payload of the job listing endpoint.
type JobList struct {
	Jobs []JobRef `json:"jobs"`
}

// ViewRef is a view entry in GET /api/json?tree=views[name,url].
type ViewRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ViewList is the payload of the view listing endpoint.
type ViewList struct {
	Views []ViewRef `json:"views"`
}

// ExecutorsInfo is the typed subset of GET /computer/api/json.
type ExecutorsInfo struct {
	TotalExecutors int `json:"totalExecutors"`
	BusyExecutors  int `json:"busyExecutors"`
}

// IdleExecutors returns the number of executors not currently busy.
func (e ExecutorsInfo) IdleExecutors() int {
	return e.TotalExecutors - e.BusyExecutors
}

// TriggeredBuild identifies a build queued by a trigger request. The server
// answers with a Location header pointing at the queue item.
type TriggeredBuild struct {
	// QueueItemID is the queue item identifier parsed from Location, empty
	// when the header was missing or unrecognized.
	QueueItemID string
	// Location is the raw Location header value.
	Location string
}

// ProgressiveText is a chunk of console output from the progressive log
// endpoint.
type ProgressiveText struct {
	Text string
	// NextStart is the byte offset to pass as start on the next call,
	// taken from the X-Text-Size header. Negative when the header was
	// absent.
	NextStart int64
	// MoreData reports whether the build is still producing output
	// (X-More-Data header).
	MoreData bool
}

// WhoAmI is the payload of GET /whoAmI/api/json.
type WhoAmI struct {
	Name        string   `json:"name"`
	Anonymous   bool     `json:"anonymous"`
	Authorities []string `json:"authorities"`
}

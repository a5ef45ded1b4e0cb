package jenkins

// Version is the client library version, reported in the default
// User-Agent header.
const Version = "1.0.0"

// Package jenkinsclient provides the primary entry point for constructing a
// build server API client that implements the jenkins.Client interface.
//
// It layers configuration, the HTTP transport, the CSRF crumb handshake and
// retry handling on top of the resource interfaces and types defined in the
// jenkins package. Most applications should import jenkinsclient to build a
// client, then use the returned jenkins.Client to access resource-specific
// clients, for example Jobs(), Queue(), Computers(), etc.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/buildforge-io/jenkins/pkg/jenkins"
//	  "github.com/buildforge-io/jenkins/pkg/jenkinsclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // Username and API token, the server's native credential scheme.
//	  cli, err := jenkinsclient.New(&jenkins.Config{
//	    BaseURL:  "https://ci.example.com",
//	    Username: "admin",
//	    APIToken: "11abcdef...",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with a bearer token for installations behind an OIDC proxy:
//	  cli, err = jenkinsclient.New(&jenkins.Config{
//	    BaseURL:     "https://ci.example.com",
//	    BearerToken: "eyJhbGciOi...",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Use resource clients via the jenkins.Client interface
//	  jobs, err := cli.Jobs().List(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = jobs
//	}
//
// # CSRF protection
//
// State-changing requests automatically carry a crumb fetched from the
// server's crumb issuer. The crumb is cached and refreshed transparently;
// set Config.DisableCrumb for installations with CSRF protection turned
// off.
//
// # Helpers
//
// The package also provides convenience constructors NewWithAPIToken and
// NewWithToken that wrap New with the appropriate configuration.
package jenkinsclient

// Package jenkins provides the public types for the Jenkins REST API client.
//
// The package defines the request/response model shared by every API
// operation, the error taxonomy, the typed payloads returned by common
// endpoints, and the service interfaces implemented by the concrete client
// in internal/client.
//
// Create a client with the jenkinsclient package:
//
//	client, err := jenkinsclient.New(&jenkins.Config{
//		BaseURL:  "https://ci.example.com/jenkins",
//		Username: "admin",
//		APIToken: "token",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	jobs, err := client.Jobs().List(ctx)
//
// Every state-changing request automatically carries a CSRF crumb obtained
// from the server's crumb issuer; transient failures are retried with
// exponential backoff. Unmodeled server operations remain reachable through
// Client.Raw, which goes through the same middleware and returns the same
// error taxonomy as the typed operations.
package jenkins

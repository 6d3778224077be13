/*
Package profilesdk is the HTTP client for the reels Backend Profile Service.

The service exposes four account endpoints plus health probes:

	GET  /api/auth/profile         bearer   -> 200 {"user": User}
	POST /api/auth/update-profile  bearer   -> 200 {"token"?: "...", "user": User}
	POST /api/auth/register        none     -> 200 {"token": "...", "user": User}
	POST /api/auth/logout          bearer   -> 2xx

Usage:

	client := profilesdk.NewClient("https://api.example.com", logger)

	user, err := client.GetProfile(ctx, token)
	switch {
	case profilesdk.IsUnauthorized(err):
		// token rejected; purge local credentials
	case profilesdk.IsNotFound(err):
		// no profile yet; register
	case err != nil:
		// transport or server failure
	}

# Error Handling

Non-success responses are returned as *APIError carrying the status code and
the server's "message" field when one was sent. Transport failures are
returned wrapped as "failed to send request: ..." and never as *APIError, so
callers can tell a rejected token apart from an unreachable service.

Every request carries an X-Request-ID header which the service echoes into
its request log.
*/
package profilesdk

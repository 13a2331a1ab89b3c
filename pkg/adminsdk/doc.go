/*
Package adminsdk is a client for the model catalog API used by the admin
console.

# SDKClient vs APIClient

SDKClient covers the calls that need no session: login, token refresh and
first-time setup. APIClient wraps an SDKClient with an Authenticator and
covers everything else:

	client := adminsdk.NewSDKClient("https://catalog.example.com")

	tokens, err := client.Login(ctx, "admin", password)
	if err != nil {
		return err
	}

	mgr := session.NewManager(session.Config{Store: store, Refresher: client})
	if err := mgr.Login(ctx, tokens.AccessToken, tokens.RefreshToken); err != nil {
		return err
	}

	api := client.WithSession(mgr)
	models, err := api.ListModels(ctx, adminsdk.ModelListOptions{})

# Token Refresh

Every APIClient request carries "Authorization: Bearer <token>" when the
session holds one. When a request to anything outside /auth/ comes back 401
the client asks the Authenticator for a new token and sends the same request
once more. The second response is returned whatever its status; a request is
never sent more than twice.

A 401 from an /auth/ endpoint means the credentials were rejected, so the
session is logged out and no refresh is attempted.

Concurrent requests that all hit 401 share one refresh; see session.Manager.

# Error Handling

Non-2xx responses are returned as *APIError. Its Error method returns the
server's "detail" field, falling back to "message" and then to
DefaultErrorMessage:

	_, err := api.GetLicense(ctx, id)
	var apiErr *adminsdk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		// ...
	}

IDs are checked to be UUIDs before a request is made; a malformed id fails
with ErrInvalidID.
*/
package adminsdk

package model

// RequestContext carries the request state the auth core needs. It is built by
// the transport layer and passed explicitly into every gateway operation.
type RequestContext struct {
	IP            string
	UserAgent     string
	SessionID     string
	RememberToken string
	// CSRFToken is the candidate presented by the client, not the session's token.
	CSRFToken string
}

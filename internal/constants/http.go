package constants

const (
	APIFieldRequestID = "request_id"
)

const (
	ContentTypeJSON     = "application/json"
	ContentTypeHTML     = "text/html; charset=utf-8"
	ContentTypeTextUTF8 = "text/plain; charset=utf-8"
)

const (
	HeaderAccept        = "Accept"
	HeaderAuthorization = "Authorization"
	HeaderContentLength = "Content-Length"
	HeaderContentType   = "Content-Type"
	HeaderContentDigest = "Content-Digest"
	HeaderOrigin        = "Origin"

	HeaderAccessControlAllowHeaders = "Access-Control-Allow-Headers"

	HeaderXAPIKey        = "X-API-KEY" // #nosec G101
	HeaderXRequestID     = "X-Request-ID"
	HeaderXRequestedWith = "X-Requested-With"
)

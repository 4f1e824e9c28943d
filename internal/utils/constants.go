package utils

const (
	ContentTypeHeader = "Content-Type"
	AcceptHeader      = "Accept"
	UserAgentHeader   = "User-Agent"
	SessionIDHeader   = "VSCode-SessionId"
	MarketUserHeader  = "X-Market-User-Id"
)

const (
	JSONContentType = "application/json"
	HTTPAPIVersion  = "application/json;api-version=3.0-preview.1"
	UserAgent       = "vsxctl"
)

const (
	VSIXPackageAssetType = "Microsoft.VisualStudio.Services.VSIXPackage"
)

const (
	DefaultPageSize = 10
)

package liflo

import "embed"

// ContentFS holds the markdown served by the flow guide.
//
//go:embed content
var ContentFS embed.FS

// Package providers registers all bundled completion backends.
// Import it for side effects:
//
//	import _ "github.com/codemodkit/codemod/providers"
package providers

import (
	_ "github.com/codemodkit/codemod/openai"
)

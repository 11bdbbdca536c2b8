// Copyright © 2024 The ELPS authors

// Package docs embeds the mal language guide for use by the CLI.
package docs

import _ "embed"

//go:embed guide.md
var LangGuide string

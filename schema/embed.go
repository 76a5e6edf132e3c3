package schema

import _ "embed"

//go:embed npm-manifest.schema.json
var ManifestSchema []byte

//go:embed npm-dist-verifier-config.schema.json
var ConfigSchema []byte

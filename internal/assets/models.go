package assets

import _ "embed"

// ModelsData is the built-in model catalog with per-model request budgets.
//
//go:embed models.json
var ModelsData []byte

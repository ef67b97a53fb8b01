//go:build !sonic

package assets

import "github.com/goccy/go-json"

var (
	jsonUnmarshal = json.Unmarshal
	jsonMarshal   = json.MarshalIndent
)

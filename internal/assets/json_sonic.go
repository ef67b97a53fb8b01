//go:build sonic

package assets

import "github.com/bytedance/sonic"

var (
	jsonUnmarshal = sonic.ConfigStd.Unmarshal
	jsonMarshal   = sonic.ConfigStd.MarshalIndent
)

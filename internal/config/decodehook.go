package config

import (
	"reflect"

	"github.com/go-viper/mapstructure/v2"

	"github.com/bnema/wayoutd/internal/store"
)

// decodeHook composes the default string-to-slice/duration conversions
// viper normally registers with enumDecodeHook; passing a bare
// DecodeHook option to Unmarshal replaces viper's default chain
// instead of extending it.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.StringToTimeDurationHookFunc(),
		enumDecodeHook(),
	)
}

// enumDecodeHook converts the bare-word spellings TOML authors write
// ("normal", "flipped-90", "enabled") into their store.Transform /
// store.AdaptiveSync values, since mapstructure only auto-converts
// strings to other strings or numbers, not named enum types.
func enumDecodeHook() mapstructure.DecodeHookFunc {
	transformType := reflect.TypeOf(store.Transform(0))
	adaptiveSyncType := reflect.TypeOf(store.AdaptiveSync(0))

	return func(from, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String {
			return data, nil
		}
		s, _ := data.(string)
		switch to {
		case transformType:
			return parseTransform(s)
		case adaptiveSyncType:
			return parseAdaptiveSync(s)
		default:
			return data, nil
		}
	}
}

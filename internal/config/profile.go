package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bnema/wayoutd/internal/profile"
	"github.com/bnema/wayoutd/internal/search"
	"github.com/bnema/wayoutd/internal/store"
)

// rawProfile mirrors one [[profile]] TOML table before its Search
// strings and tagged-union fields are converted to domain types.
type rawProfile struct {
	Name    string      `mapstructure:"name"`
	Outputs []rawOutput `mapstructure:"output"`
	Exec    []string    `mapstructure:"exec"`
}

type rawOutput struct {
	Enable       *bool               `mapstructure:"enable"`
	Search       any                 `mapstructure:"search"`
	Mode         any                 `mapstructure:"mode"`
	Position     any                 `mapstructure:"position"`
	Scale        *float64            `mapstructure:"scale"`
	Transform    *store.Transform    `mapstructure:"transform"`
	AdaptiveSync *store.AdaptiveSync `mapstructure:"adaptive_sync"`
	Exec         []string            `mapstructure:"exec"`
}

func (rp rawProfile) toProfile(index int) (profile.Profile, error) {
	p := profile.Profile{Name: rp.Name, Index: index, Exec: rp.Exec}
	for i, ro := range rp.Outputs {
		out, err := ro.toOutput()
		if err != nil {
			return profile.Profile{}, fmt.Errorf("output %d: %w", i, err)
		}
		p.Outputs = append(p.Outputs, out)
	}
	return p, nil
}

func (ro rawOutput) toOutput() (profile.Output, error) {
	ms, err := parseSearch(ro.Search)
	if err != nil {
		return profile.Output{}, fmt.Errorf("search %v: %w", ro.Search, err)
	}

	out := profile.Output{
		Enable: ro.Enable == nil || *ro.Enable,
		Search: ms,
		Exec:   ro.Exec,
	}

	if ro.Mode != nil {
		tm, err := parseTargetMode(ro.Mode)
		if err != nil {
			return profile.Output{}, err
		}
		out.Mode = tm
	}

	if ro.Position != nil {
		pos, err := parsePosition(ro.Position)
		if err != nil {
			return profile.Output{}, err
		}
		out.Position = pos
	}

	out.Scale = ro.Scale
	out.Transform = ro.Transform
	out.AdaptiveSync = ro.AdaptiveSync

	return out, nil
}

// parseSearch accepts the `search: string | [string]` TOML forms: a
// scalar string is parsed as the ';'-joined multi-search text form, an
// array parses each element as one single search. Every inner search
// must match the same head for the output to pair with it.
func parseSearch(v any) (search.MultiSearch, error) {
	switch val := v.(type) {
	case string:
		return search.ParseMulti(val)
	case []string:
		return searchList(val)
	case []any:
		strs := make([]string, len(val))
		for i, e := range val {
			s, ok := e.(string)
			if !ok {
				return search.MultiSearch{}, fmt.Errorf("pattern list element %d is %T, want string", i, e)
			}
			strs[i] = s
		}
		return searchList(strs)
	case nil:
		return search.MultiSearch{}, fmt.Errorf("missing search pattern")
	default:
		return search.MultiSearch{}, fmt.Errorf("unsupported TOML shape %T, want string or [string]", v)
	}
}

func searchList(strs []string) (search.MultiSearch, error) {
	if len(strs) == 0 {
		return search.MultiSearch{}, fmt.Errorf("empty pattern list")
	}
	var m search.MultiSearch
	for _, s := range strs {
		ss, err := search.Parse(s)
		if err != nil {
			return search.MultiSearch{}, err
		}
		m.Searches = append(m.Searches, ss)
	}
	return m, nil
}

// parseTargetMode accepts a bare keyword ("best", "preferred"), the
// "WxH" / "WxH@RHz" / "!WxH@RHz" string grammar (the leading "!" marks
// the mode as a custom/non-advertised one), or a table {width, height,
// refresh?, custom?}.
func parseTargetMode(v any) (*profile.TargetMode, error) {
	switch val := v.(type) {
	case string:
		switch strings.ToLower(val) {
		case "best":
			return &profile.TargetMode{Kind: profile.ModeBest}, nil
		case "preferred":
			return &profile.TargetMode{Kind: profile.ModePreferred}, nil
		default:
			return parseModeString(val)
		}
	case map[string]any:
		width, err := intField(val, "width")
		if err != nil {
			return nil, fmt.Errorf("mode: %w", err)
		}
		height, err := intField(val, "height")
		if err != nil {
			return nil, fmt.Errorf("mode: %w", err)
		}
		tm := &profile.TargetMode{Kind: profile.ModeWiHe, Width: width, Height: height}
		if refresh, ok := val["refresh"]; ok {
			r, err := toInt32(refresh)
			if err != nil {
				return nil, fmt.Errorf("mode: refresh: %w", err)
			}
			tm.Refresh = r
			tm.Kind = profile.ModeWiHeRe
		}
		if custom, ok := val["custom"].(bool); ok && custom {
			tm.Kind = profile.ModeWiHeReCustom
		}
		return tm, nil
	default:
		return nil, fmt.Errorf("mode: unsupported TOML shape %T", v)
	}
}

// parseModeString parses the "WxH", "WxH@RHz", and "!WxH@RHz" forms: a
// leading "!" flags the mode as custom (ModeWiHeReCustom, requiring a
// refresh rate); otherwise a bare "WxH" is ModeWiHe and "WxH@RHz" is
// ModeWiHeRe. Refresh is given in Hz and stored scaled to mHz.
func parseModeString(s string) (*profile.TargetMode, error) {
	custom := false
	if strings.HasPrefix(s, "!") {
		custom = true
		s = s[1:]
	}

	whPart, rhPart, hasRefresh := strings.Cut(s, "@")
	if custom && !hasRefresh {
		return nil, fmt.Errorf("mode: custom mode %q requires an @refresh rate", "!"+s)
	}

	wStr, hStr, ok := strings.Cut(whPart, "x")
	if !ok {
		return nil, fmt.Errorf("mode: unrecognized mode string %q, want WxH, WxH@RHz, or !WxH@RHz", s)
	}
	width, err := strconv.ParseInt(wStr, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("mode: width: %w", err)
	}
	height, err := strconv.ParseInt(hStr, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("mode: height: %w", err)
	}

	tm := &profile.TargetMode{Kind: profile.ModeWiHe, Width: int32(width), Height: int32(height)}
	if hasRefresh {
		rhPart = strings.TrimSuffix(strings.TrimSuffix(rhPart, "Hz"), "hz")
		refreshHz, err := strconv.ParseFloat(rhPart, 64)
		if err != nil {
			return nil, fmt.Errorf("mode: refresh: %w", err)
		}
		tm.Refresh = int32(refreshHz * 1000)
		tm.Kind = profile.ModeWiHeRe
	}
	if custom {
		tm.Kind = profile.ModeWiHeReCustom
	}
	return tm, nil
}

// parsePosition accepts a "x,y" string, a two-element array [x, y], or a
// table {x, y}.
func parsePosition(v any) (*profile.Position, error) {
	switch val := v.(type) {
	case string:
		xStr, yStr, ok := strings.Cut(val, ",")
		if !ok {
			return nil, fmt.Errorf("position: unrecognized string %q, want \"x,y\"", val)
		}
		x, err := strconv.ParseInt(strings.TrimSpace(xStr), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("position: x: %w", err)
		}
		y, err := strconv.ParseInt(strings.TrimSpace(yStr), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("position: y: %w", err)
		}
		return &profile.Position{X: int32(x), Y: int32(y)}, nil
	case []any:
		if len(val) != 2 {
			return nil, fmt.Errorf("position: expected [x, y], got %d elements", len(val))
		}
		x, err := toInt32(val[0])
		if err != nil {
			return nil, fmt.Errorf("position: x: %w", err)
		}
		y, err := toInt32(val[1])
		if err != nil {
			return nil, fmt.Errorf("position: y: %w", err)
		}
		return &profile.Position{X: x, Y: y}, nil
	case map[string]any:
		x, err := intField(val, "x")
		if err != nil {
			return nil, fmt.Errorf("position: %w", err)
		}
		y, err := intField(val, "y")
		if err != nil {
			return nil, fmt.Errorf("position: %w", err)
		}
		return &profile.Position{X: x, Y: y}, nil
	default:
		return nil, fmt.Errorf("position: unsupported TOML shape %T", v)
	}
}

func parseTransform(s string) (store.Transform, error) {
	switch strings.ToLower(s) {
	case "normal":
		return store.TransformNormal, nil
	case "90":
		return store.Transform90, nil
	case "180":
		return store.Transform180, nil
	case "270":
		return store.Transform270, nil
	case "flipped":
		return store.TransformFlipped, nil
	case "flipped-90":
		return store.TransformFlipped90, nil
	case "flipped-180":
		return store.TransformFlipped180, nil
	case "flipped-270":
		return store.TransformFlipped270, nil
	default:
		return 0, fmt.Errorf("transform: unknown value %q", s)
	}
}

func parseAdaptiveSync(s string) (store.AdaptiveSync, error) {
	switch strings.ToLower(s) {
	case "enabled", "true", "on":
		return store.AdaptiveSyncEnabled, nil
	case "disabled", "false", "off":
		return store.AdaptiveSyncDisabled, nil
	default:
		return 0, fmt.Errorf("adaptive_sync: unknown value %q", s)
	}
}

func intField(m map[string]any, key string) (int32, error) {
	v, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("missing %q", key)
	}
	return toInt32(v)
}

func toInt32(v any) (int32, error) {
	switch n := v.(type) {
	case int:
		return int32(n), nil
	case int32:
		return n, nil
	case int64:
		return int32(n), nil
	case float64:
		return int32(n), nil
	case string:
		parsed, err := strconv.ParseInt(n, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", n)
		}
		return int32(parsed), nil
	default:
		return 0, fmt.Errorf("not an integer: %T", v)
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// ErrInvalid 配置值不合法
var ErrInvalid = errors.New("invalid config")

const MinBufferSize = 4096

// Duration TOML 中写成字符串，例如 "500ms"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type Values struct {
	Volumes            []string `toml:"volumes,omitempty"`
	BufferSize         int      `toml:"buffer_size"`
	RequeryBackoff     Duration `toml:"requery_backoff"`
	TransientBackoff   Duration `toml:"transient_backoff"`
	ExcludeSystemFiles bool     `toml:"exclude_system_files"`
	ExclusionDB        string   `toml:"exclusion_db,omitempty"`
	MetricsAddr        string   `toml:"metrics_addr,omitempty"`
	DebugLogging       bool     `toml:"debug_logging"`
}

// Defaults 与不带任何配置运行时的行为一致。
// exclude_system_files 默认关闭：排除谓词目前保持停用，只作为显式开关暴露。
var Defaults = Values{
	BufferSize:       64 * 1024,
	RequeryBackoff:   Duration{time.Second},
	TransientBackoff: Duration{500 * time.Millisecond},
}

// Load path 为空时返回默认值；文件中未出现的键保留默认值
func Load(path string) (Values, error) {
	vals := Defaults
	if path == "" {
		return vals, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return vals, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &vals); err != nil {
		return vals, fmt.Errorf("parse config %s: %w", path, err)
	}
	return vals, vals.Validate()
}

// Validate 检查取值范围并规范化盘符
func (v *Values) Validate() error {
	if v.BufferSize < MinBufferSize {
		return fmt.Errorf("%w: buffer_size %d is below %d", ErrInvalid, v.BufferSize, MinBufferSize)
	}
	if v.RequeryBackoff.Duration <= 0 {
		return fmt.Errorf("%w: requery_backoff must be positive", ErrInvalid)
	}
	if v.TransientBackoff.Duration <= 0 {
		return fmt.Errorf("%w: transient_backoff must be positive", ErrInvalid)
	}
	for i, vol := range v.Volumes {
		letter := strings.ToUpper(strings.TrimSuffix(strings.TrimSpace(vol), ":"))
		if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
			return fmt.Errorf("%w: volume %q is not a drive letter", ErrInvalid, vol)
		}
		v.Volumes[i] = letter
	}
	return nil
}

// ParseVolumes "C,d:" -> ["C", "d:"]，规范化交给 Validate
func ParseVolumes(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

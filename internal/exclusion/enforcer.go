package exclusion

import (
	"fmt"
	"strings"
)

// Kind 规则的匹配方式
type Kind string

const (
	KindPrefix Kind = "prefix"
	KindSuffix Kind = "suffix"
	KindExact  Kind = "exact"
)

// Rule 一条文件名排除规则，匹配不区分大小写
type Rule struct {
	Kind    Kind
	Pattern string
	Reason  string
}

// Match 判断文件名是否命中规则
func (r Rule) Match(name string) bool {
	n, p := strings.ToLower(name), strings.ToLower(r.Pattern)
	switch r.Kind {
	case KindPrefix:
		return strings.HasPrefix(n, p)
	case KindSuffix:
		return strings.HasSuffix(n, p)
	case KindExact:
		return n == p
	}
	return false
}

func (r Rule) validate() error {
	switch r.Kind {
	case KindPrefix, KindSuffix, KindExact:
	default:
		return fmt.Errorf("unknown rule kind %q", r.Kind)
	}
	if r.Pattern == "" {
		return fmt.Errorf("empty pattern for %s rule", r.Kind)
	}
	return nil
}

// DefaultRules 系统文件和临时文件
var DefaultRules = []Rule{
	{KindPrefix, "~$", "office lock file"},
	{KindPrefix, "$", "ntfs metadata file"},
	{KindSuffix, ".tmp", "temp file"},
	{KindSuffix, ".temp", "temp file"},
	{KindSuffix, "~", "editor backup"},
	{KindExact, "thumbs.db", "explorer thumbnail cache"},
	{KindExact, "desktop.ini", "explorer folder settings"},
	{KindExact, ".ds_store", "finder metadata"},
}

// Filter 系统/临时文件排除谓词。
// 未启用时 Excluded 永远返回 false (默认关闭)。
type Filter struct {
	enabled bool
	rules   []Rule
}

// NewFilter 创建过滤器；rules 为空时使用 DefaultRules
func NewFilter(enabled bool, rules ...Rule) *Filter {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Filter{enabled: enabled, rules: rules}
}

// Enabled 是否启用
func (f *Filter) Enabled() bool {
	return f != nil && f.enabled
}

// Excluded 返回是否排除以及命中的原因
func (f *Filter) Excluded(name string) (bool, string) {
	if !f.Enabled() {
		return false, ""
	}
	for _, r := range f.rules {
		if r.Match(name) {
			return true, r.Reason
		}
	}
	return false, ""
}

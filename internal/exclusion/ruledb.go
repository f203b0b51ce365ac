package exclusion

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// RuleDB 用户自定义的排除规则，存放在 sqlite 中
type RuleDB struct {
	db *sql.DB
}

// OpenRuleDB 打开数据库并初始化表结构
func OpenRuleDB(dbPath string) (*RuleDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 联合主键 (kind, pattern) 防止重复
	schema := `
	CREATE TABLE IF NOT EXISTS exclusion_rules (
		kind TEXT NOT NULL,
		pattern TEXT NOT NULL,
		reason TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (kind, pattern)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return &RuleDB{db: db}, nil
}

// AddRule 添加规则，已存在时忽略
func (d *RuleDB) AddRule(r Rule) error {
	if err := r.validate(); err != nil {
		return err
	}
	_, err := d.db.Exec(
		"INSERT OR IGNORE INTO exclusion_rules(kind, pattern, reason) VALUES (?, ?, ?)",
		string(r.Kind), r.Pattern, r.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert rule: %w", err)
	}
	return nil
}

// Rules 按插入顺序返回所有规则
func (d *RuleDB) Rules() ([]Rule, error) {
	rows, err := d.db.Query("SELECT kind, pattern, COALESCE(reason, '') FROM exclusion_rules ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var rules []Rule
	for rows.Next() {
		var kind, pattern, reason string
		if err := rows.Scan(&kind, &pattern, &reason); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		r := Rule{Kind: Kind(kind), Pattern: pattern, Reason: reason}
		if r.validate() != nil {
			// 手工写入的坏规则直接跳过
			continue
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func (d *RuleDB) Close() error {
	return d.db.Close()
}

// LoadFilter 内置规则 + 数据库规则
func LoadFilter(enabled bool, dbPath string) (*Filter, error) {
	rules := append([]Rule(nil), DefaultRules...)
	if dbPath == "" {
		return NewFilter(enabled, rules...), nil
	}
	db, err := OpenRuleDB(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	extra, err := db.Rules()
	if err != nil {
		return nil, err
	}
	return NewFilter(enabled, append(rules, extra...)...), nil
}

package admin

import (
	"regexp"
	"strings"

	"github.com/hatlonely/hms/statement"
	"github.com/pkg/errors"
)

const (
	ModeDisabled     = "disabled"
	ModeReadOnly     = "readonly"
	ModeUnrestricted = "unrestricted"
)

var ErrCustomQueryDenied = errors.New("custom query denied")

type PolicyOptions struct {
	// Mode 自定义 SQL 的放行策略
	//   - disabled: 拒绝所有自定义 SQL
	//   - readonly: 只允许单条只读语句
	//   - unrestricted: 原样执行，拥有与应用相同的数据库权限
	Mode string `cfg:"mode" def:"disabled" validate:"oneof=disabled readonly unrestricted"`
}

// PolicyError 自定义 SQL 被策略拒绝
type PolicyError struct {
	Mode   string
	Reason string
}

func (e *PolicyError) Error() string {
	return "Custom query denied (" + e.Mode + "): " + e.Reason
}

func (e *PolicyError) Unwrap() error {
	return ErrCustomQueryDenied
}

var (
	readOnlyKeywords = map[string]bool{
		"SELECT": true, "WITH": true, "SHOW": true, "DESCRIBE": true, "DESC": true, "EXPLAIN": true,
	}

	forbiddenKeywords = regexp.MustCompile(`(?i)\b(DROP|DELETE|UPDATE|INSERT|ALTER|TRUNCATE|CREATE|GRANT|REVOKE|REPLACE|CALL|OUTFILE|DUMPFILE)\b`)
)

// CheckCustom 按策略检查自定义 SQL，拒绝时返回 *PolicyError
func CheckCustom(mode string, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return &PolicyError{Mode: mode, Reason: "statement is empty"}
	}

	switch mode {
	case ModeUnrestricted:
		return nil
	case ModeReadOnly:
		return checkReadOnly(sql)
	case ModeDisabled, "":
		return &PolicyError{Mode: ModeDisabled, Reason: "custom queries are disabled"}
	default:
		return &PolicyError{Mode: mode, Reason: "unknown policy mode"}
	}
}

func checkReadOnly(sql string) error {
	// 字符串字面量和注释里的关键字不算
	parsed := statement.ParseSQLText(sql)
	if parsed.ConditionalComment {
		return &PolicyError{Mode: ModeReadOnly, Reason: "executable comments are not allowed"}
	}
	stripped := strings.TrimSpace(parsed.Text)
	stripped = strings.TrimSpace(strings.TrimSuffix(stripped, ";"))

	if strings.Contains(stripped, ";") {
		return &PolicyError{Mode: ModeReadOnly, Reason: "multiple statements are not allowed"}
	}

	if !readOnlyKeywords[statement.FirstKeyword(stripped)] {
		return &PolicyError{Mode: ModeReadOnly, Reason: "only SELECT, WITH, SHOW, DESCRIBE and EXPLAIN statements are allowed"}
	}

	if kw := forbiddenKeywords.FindString(stripped); kw != "" {
		return &PolicyError{Mode: ModeReadOnly, Reason: "keyword " + strings.ToUpper(kw) + " is not allowed"}
	}
	return nil
}

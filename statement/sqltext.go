package statement

import "strings"

// SQLText 去掉注释并把字面量替换为 '' 之后的 SQL 文本
type SQLText struct {
	Text string
	// ConditionalComment 出现 /*! */ 或 /*+ */，MySQL 会执行其中的内容
	ConditionalComment bool
}

// ParseSQLText 按 MySQL 的注释规则扫描 SQL
// `-- ` 只有后面跟空白或结束时才是注释，`#` 到行尾，块注释替换为一个空格
func ParseSQLText(sql string) SQLText {
	var res SQLText
	var buf strings.Builder
	buf.Grow(len(sql))

	for i := 0; i < len(sql); {
		c := sql[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			i = skipQuoted(sql, i)
			buf.WriteString("''")
		case c == '#':
			i = skipLine(sql, i)
			buf.WriteByte(' ')
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-' && (i+2 == len(sql) || isSpace(sql[i+2])):
			i = skipLine(sql, i)
			buf.WriteByte(' ')
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			if i+2 < len(sql) && (sql[i+2] == '!' || sql[i+2] == '+') {
				res.ConditionalComment = true
			}
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				i = len(sql)
			} else {
				i += 2 + end + 2
			}
			buf.WriteByte(' ')
		default:
			buf.WriteByte(c)
			i++
		}
	}

	res.Text = buf.String()
	return res
}

// FirstKeyword 返回跳过注释和左括号之后的第一个单词（大写）
func FirstKeyword(sql string) string {
	text := strings.TrimLeft(ParseSQLText(sql).Text, " \t\r\n(")
	end := 0
	for end < len(text) && isLetter(text[end]) {
		end++
	}
	return strings.ToUpper(text[:end])
}

// skipQuoted 返回引号字面量结束后的位置，支持反斜杠转义和重复引号
func skipQuoted(sql string, i int) int {
	quote := sql[i]
	for i++; i < len(sql); i++ {
		switch sql[i] {
		case '\\':
			if quote != '`' {
				i++
			}
		case quote:
			if i+1 < len(sql) && sql[i+1] == quote {
				i++
				continue
			}
			return i + 1
		}
	}
	return len(sql)
}

func skipLine(sql string, i int) int {
	if end := strings.IndexByte(sql[i:], '\n'); end >= 0 {
		return i + end
	}
	return len(sql)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

package query

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownQuery    = errors.New("unknown query")
)

type Category string

const (
	CategorySetOperations Category = "Set Operations"
	CategorySetMembership Category = "Set Membership"
	CategorySetComparison Category = "Set Comparison"
	CategoryWith          Category = "Subqueries using the WITH clause"
	CategoryAggregate     Category = "Advanced Aggregate Functions"
	CategoryOLAP          Category = "OLAP"
	// CategoryCustom 自定义 SQL 入口，不包含模板
	CategoryCustom Category = "Other Query"
)

// Definition 预先编写的查询模板，Columns 与 SELECT 列表一一对应
type Definition struct {
	ID       string
	Label    string
	Category Category
	SQL      string
	Columns  []string
}

type group struct {
	category    Category
	description string
	queries     []*Definition
}

var (
	groups   []*group
	byID     = map[string]*Definition{}
	byLabel  = map[Category]map[string]*Definition{}
	category = map[Category]*group{}
)

func init() {
	register(CategorySetOperations, "Set operations combine the results of two or more SELECT queries with UNION, INTERSECT or EXCEPT.", setOperations)
	register(CategorySetMembership, "Set membership queries test whether rows belong to a set with IN, NOT IN, EXISTS or NOT EXISTS.", setMembership)
	register(CategorySetComparison, "Set comparison queries compare row sets through EXCEPT, INTERSECT or correlated subqueries.", setComparison)
	register(CategoryWith, "Common table expressions define named intermediate result sets referenced by the main query.", withClause)
	register(CategoryAggregate, "Aggregate functions such as SUM, AVG and COUNT summarise groups of rows.", aggregates)
	register(CategoryOLAP, "Window functions and ROLLUP produce running totals, rankings and subtotal rows.", olap)
	register(CategoryCustom, "Operator supplied SQL executed verbatim, subject to the configured custom query policy.", nil)
}

func register(c Category, description string, defs []*Definition) {
	g := &group{category: c, description: description}
	byLabel[c] = map[string]*Definition{}
	for _, def := range defs {
		def.Category = c
		def.ID = Slug(c, def.Label)
		if _, ok := byID[def.ID]; ok {
			panic("query: duplicate id " + def.ID)
		}
		byID[def.ID] = def
		byLabel[c][def.Label] = def
		g.queries = append(g.queries, def)
	}
	groups = append(groups, g)
	category[c] = g
}

// ListCategories 按菜单顺序返回全部分类，最后一项是自定义查询
func ListCategories() []Category {
	out := make([]Category, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.category)
	}
	return out
}

// Describe 返回分类说明
func Describe(c Category) (string, error) {
	g, ok := category[c]
	if !ok {
		return "", errors.Wrapf(ErrUnknownCategory, "category %q", c)
	}
	return g.description, nil
}

// ListQueries 返回分类下的模板，顺序固定
func ListQueries(c Category) ([]*Definition, error) {
	g, ok := category[c]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownCategory, "category %q", c)
	}
	out := make([]*Definition, len(g.queries))
	copy(out, g.queries)
	return out, nil
}

// Find 按分类和标题查找模板
func Find(c Category, label string) (*Definition, error) {
	labels, ok := byLabel[c]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownCategory, "category %q", c)
	}
	def, ok := labels[label]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownQuery, "%s / %q", c, label)
	}
	return def, nil
}

// Lookup 按 ID 查找模板
func Lookup(id string) (*Definition, error) {
	def, ok := byID[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownQuery, "id %q", id)
	}
	return def, nil
}

// All 返回全部模板
func All() []*Definition {
	var out []*Definition
	for _, g := range groups {
		out = append(out, g.queries...)
	}
	return out
}

// Slug 由分类和标题生成稳定的 ID，例如 olap/total-billing-per-branch-with-subtotals
func Slug(c Category, label string) string {
	return slugify(string(c)) + "/" + slugify(label)
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

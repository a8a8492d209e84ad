package cfg

import (
	"reflect"
	"strings"
	"time"
	"unicode"
)

// expand 遍历结构体的叶子字段，用 lookup 查找扁平键并还原成嵌套 map。
// 字段路径 database.maxConns 对应 DATABASE_MAXCONNS 和 DATABASE_MAX_CONNS 两种写法。
func expand(rt reflect.Type, lookup func(key string) (string, bool)) map[string]any {
	result := map[string]any{}
	walkLeaves(rt, nil, func(path []string) {
		for _, key := range flatKeys(path) {
			if value, ok := lookup(key); ok {
				setPath(result, path, value)
				return
			}
		}
	})
	return result
}

func walkLeaves(rt reflect.Type, prefix []string, fn func(path []string)) {
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := fieldName(field)
		if name == "-" {
			continue
		}
		path := append(append([]string(nil), prefix...), name)

		ft := field.Type
		for ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct && ft != reflect.TypeOf(time.Time{}) {
			walkLeaves(ft, path, fn)
			continue
		}
		fn(path)
	}
}

func flatKeys(path []string) []string {
	upper := make([]string, len(path))
	snake := make([]string, len(path))
	for i, p := range path {
		upper[i] = strings.ToUpper(p)
		snake[i] = strings.ToUpper(toSnake(p))
	}
	keys := []string{strings.Join(upper, "_")}
	if s := strings.Join(snake, "_"); s != keys[0] {
		keys = append(keys, s)
	}
	return keys
}

// toSnake maxConns -> max_conns, machineID -> machine_id
func toSnake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) ||
			(i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func splitPath(path string) []string {
	return strings.Split(path, ".")
}

// setPath 按路径写入嵌套 map，键大小写不敏感
func setPath(data map[string]any, path []string, value any) {
	target := data
	for _, part := range path[:len(path)-1] {
		key := findKey(target, part)
		child, ok := target[key].(map[string]any)
		if !ok {
			child = map[string]any{}
			target[key] = child
		}
		target = child
	}
	target[findKey(target, path[len(path)-1])] = value
}

// merge 把 src 合并进 dst，src 优先
func merge(dst, src map[string]any) {
	for k, v := range src {
		key := findKey(dst, k)
		sm, sok := v.(map[string]any)
		dm, dok := dst[key].(map[string]any)
		if sok && dok {
			merge(dm, sm)
			continue
		}
		dst[key] = v
	}
}

// findKey 返回 data 中与 name 大小写不敏感相等的已有键，没有时返回 name
func findKey(data map[string]any, name string) string {
	if _, ok := data[name]; ok {
		return name
	}
	for k := range data {
		if strings.EqualFold(k, name) {
			return k
		}
	}
	return name
}

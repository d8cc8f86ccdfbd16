package conv

import "testing"

func TestToFloat64(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"float64", 3.14, 3.14, true},
		{"float32", float32(2.5), 2.5, true},
		{"int", 7, 7.0, true},
		{"int64", int64(-3), -3.0, true},
		{"int32", int32(9), 9.0, true},
		{"bool true", true, 1.0, true},
		{"bool false", false, 0.0, true},
		{"string", "3.14", 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat64(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ToFloat64(%v) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestToInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
		ok   bool
	}{
		{"int", 5, 5, true},
		{"int64", int64(8), 8, true},
		{"float64 truncates", 3.9, 3, true},
		{"string", "5", 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToInt(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ToInt(%v) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestToString(t *testing.T) {
	if s, ok := ToString("hello"); !ok || s != "hello" {
		t.Errorf("ToString(hello) = (%q, %v)", s, ok)
	}
	if _, ok := ToString(42); ok {
		t.Error("ToString(42) should fail")
	}
	if _, ok := ToString(nil); ok {
		t.Error("ToString(nil) should fail")
	}
}

func TestConvertSlice(t *testing.T) {
	in := []any{"a", 1, "b", nil}
	out := ConvertSlice(in, func(v any) (string, bool) {
		s, ok := v.(string)
		return s, ok
	})
	if len(out) != 2 || out[0] != "a" || out[1] != "b" {
		t.Errorf("ConvertSlice = %v, want [a b]", out)
	}

	if got := ConvertSlice[int, int](nil, func(v int) (int, bool) { return v, true }); got != nil {
		t.Errorf("ConvertSlice(nil) = %v, want nil", got)
	}
}

func TestSliceAnyToString(t *testing.T) {
	got := SliceAnyToString([]any{"x", 3.0, 7, true})
	// 数字格式化为整数形式；bool 经 ToFloat64 转为 1
	want := []string{"x", "3", "7", "1"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d = %q, want %q", i, got[i], want[i])
		}
	}

	if got := SliceAnyToString("not a slice"); got != nil {
		t.Errorf("SliceAnyToString(non-slice) = %v, want nil", got)
	}
	if got := SliceAnyToString(nil); got != nil {
		t.Errorf("SliceAnyToString(nil) = %v, want nil", got)
	}
}

func TestConfigGet(t *testing.T) {
	m := map[string]any{"name": "fanout", "n": 5, "ratio": 0.8}

	if got := ConfigGet(m, "name", "default"); got != "fanout" {
		t.Errorf("ConfigGet(name) = %q", got)
	}
	if got := ConfigGet(m, "missing", "default"); got != "default" {
		t.Errorf("ConfigGet(missing) = %q, want default", got)
	}
	// 类型不符时回落默认值
	if got := ConfigGet(m, "n", "default"); got != "default" {
		t.Errorf("ConfigGet(n as string) = %q, want default", got)
	}
	if got := ConfigGet[string](nil, "k", "d"); got != "d" {
		t.Errorf("ConfigGet(nil map) = %q, want d", got)
	}
}

func TestConfigGetInt(t *testing.T) {
	// YAML 解析整数得到 int，JSON 得到 float64，两者都要兼容
	m := map[string]any{"yaml": 5, "json": 5.0, "bad": "x"}

	if got := ConfigGetInt(m, "yaml", 0); got != 5 {
		t.Errorf("ConfigGetInt(yaml) = %d", got)
	}
	if got := ConfigGetInt(m, "json", 0); got != 5 {
		t.Errorf("ConfigGetInt(json) = %d", got)
	}
	if got := ConfigGetInt(m, "bad", 9); got != 9 {
		t.Errorf("ConfigGetInt(bad) = %d, want 9", got)
	}
	if got := ConfigGetInt(m, "missing", 7); got != 7 {
		t.Errorf("ConfigGetInt(missing) = %d, want 7", got)
	}
}

func TestConfigGetFloat64(t *testing.T) {
	m := map[string]any{"f": 0.8, "i": 4}

	if got := ConfigGetFloat64(m, "f", 0); got != 0.8 {
		t.Errorf("ConfigGetFloat64(f) = %v", got)
	}
	if got := ConfigGetFloat64(m, "i", 0); got != 4.0 {
		t.Errorf("ConfigGetFloat64(i) = %v", got)
	}
	if got := ConfigGetFloat64(m, "missing", 1.5); got != 1.5 {
		t.Errorf("ConfigGetFloat64(missing) = %v, want 1.5", got)
	}
}

package calc

import (
	"errors"
	"testing"
)

func TestEval(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"1", 1},
		{"1 + 2", 3},
		{"2 * 3 + 4", 10},
		{"2 * (3 + 4)", 14},
		{"10 / 4", 2.5},
		{"7 % 3", 1},
		{"-5 + 2", -3},
		{"+5", 5},
		{"-(-5)", 5},
		{"-7 % 3", 2},
		{"7 % -3", -2},
		{"1.5e2", 150},
		{"0x10", 16},
		{"1_000 * 2", 2000},
		{"((((1))))", 1},
		{"5.5 % 2", 1.5},
		{"2 ** 3", 8},
		{"2**-1", 0.5},
		{"-2 ** 2", -4},
		{"2 ** 3 ** 2", 512},
		{"(-8) ** 2", 64},
		{"2 * 3 ** 2", 18},
		{"7 // 2", 3},
		{"-7 // 2", -4},
		{"7.5 // 2", 3},
		{"1 + 7 // 2 * 2", 7},
		{"0", 0},
		{"00", 0},
		{"0.5", 0.5},
		{"010.5", 10.5},
		{"0o17", 15},
		{"9007199254740993", 9007199254740992},
		{"1 +\n2", 3},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Eval(tt.expr)
			if err != nil {
				t.Fatalf("Eval(%q) error = %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Eval(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvalRejects(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"empty", "   "},
		{"identifier", "x + 1"},
		{"call", `print("hi")`},
		{"import trick", `__import__("os").system("ls")`},
		{"string", `"abc"`},
		{"spaced power", "2 * * 3"},
		{"triple star", "2 *** 3"},
		{"fractional power of negative", "(-8) ** 0.5"},
		{"index", "a[0]"},
		{"selector", "os.Exit"},
		{"bitwise", "1 | 2"},
		{"shift", "1 << 2"},
		{"comparison", "1 < 2"},
		{"not", "!1"},
		{"char", "'a'"},
		{"syntax", "1 +"},
		{"triple slash", "7 /// 2"},
		{"and not", "7 &^ 2"},
		{"leading zero", "010 + 1"},
		{"leading zeros", "007"},
		{"unclosed paren", "(1 + 2"},
		{"illegal character", "1 $ 2"},
		{"semicolon", "1; 2"},
		{"comment", "1 /* x */ + 2"},
		{"overflow", "1e308 * 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Eval(tt.expr)
			var calcErr *Error
			if !errors.As(err, &calcErr) {
				t.Fatalf("Eval(%q) error = %v, want *Error", tt.expr, err)
			}
			if calcErr.Expr != tt.expr {
				t.Errorf("Expr = %q", calcErr.Expr)
			}
		})
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	for _, expr := range []string{"1 / 0", "5 % 0", "1 / (2 - 2)", "7 // 0", "0 ** -1"} {
		t.Run(expr, func(t *testing.T) {
			_, err := Eval(expr)
			if !errors.Is(err, ErrDivisionByZero) {
				t.Errorf("Eval(%q) error = %v, want division by zero", expr, err)
			}
		})
	}
}

func TestErrorPosition(t *testing.T) {
	_, err := Eval("1 + foo")

	var calcErr *Error
	if !errors.As(err, &calcErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if calcErr.Pos != 4 {
		t.Errorf("Pos = %d, want 4", calcErr.Pos)
	}
}

func TestOperatorErrorPosition(t *testing.T) {
	tests := []struct {
		expr string
		pos  int
	}{
		{"1 // 0", 2},
		{"2 ** x", 5},
		{"1 | 2", 2},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := Eval(tt.expr)
			var calcErr *Error
			if !errors.As(err, &calcErr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if calcErr.Pos != tt.pos {
				t.Errorf("Pos = %d, want %d", calcErr.Pos, tt.pos)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := map[float64]string{
		3:    "3",
		2.5:  "2.5",
		-0.1: "-0.1",
	}
	for v, want := range tests {
		if got := Format(v); got != want {
			t.Errorf("Format(%v) = %q, want %q", v, got, want)
		}
	}
}
